package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/annel0/tileworld/internal/config"
	"github.com/annel0/tileworld/internal/game"
	"github.com/annel0/tileworld/internal/logging"
	"github.com/annel0/tileworld/internal/observability"
	"github.com/annel0/tileworld/internal/storage"
	"github.com/annel0/tileworld/internal/vec"
	"github.com/annel0/tileworld/internal/world"
	"github.com/annel0/tileworld/internal/world/block"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func main() {
	var (
		configPath = flag.String("config", "", "Путь к конфигурации (.yaml, .yml, .toml)")
		frames     = flag.Int("frames", 0, "Число кадров, 0 - из конфигурации")
		snapshot   = flag.String("snapshot", "", "Файл снимка мира, пусто - из конфигурации")
	)
	flag.Parse()

	if err := run(*configPath, *frames, *snapshot); err != nil {
		fmt.Fprintf(os.Stderr, "worldsim: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, frames int, snapshotPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if frames > 0 {
		cfg.Sim.Frames = frames
	}
	if snapshotPath != "" {
		cfg.Sim.SnapshotPath = snapshotPath
	}

	log, err := logging.Init(logging.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer logging.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// === НАБЛЮДАЕМОСТЬ ===
	reg := prometheus.NewRegistry()
	metrics := world.NewMetrics(reg)
	procStats := observability.NewProcessStats(reg)

	if cfg.Metrics.Enabled {
		srv := observability.NewMetricsServer(cfg.Metrics.Address, reg, logging.GetComponentLogger("metrics"))
		srv.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	if cfg.Tracing.Enabled {
		shutdown, err := observability.InitTelemetry(ctx, observability.TelemetryOptions{
			ServiceName: cfg.Tracing.ServiceName,
			Endpoint:    cfg.Tracing.Endpoint,
			Insecure:    true,
		}, log)
		if err != nil {
			log.Warn("Трассировка недоступна", zap.Error(err))
		} else {
			defer func() { _ = shutdown(context.Background()) }()
		}
	}

	// === МИР ===
	blocks, err := loadCatalog(cfg.World.BlockCatalog)
	if err != nil {
		return err
	}
	gen := world.NewTerrainGenerator(cfg.World.Seed)
	gen.DepthLimit = cfg.World.DepthLimit
	gen.Decorate = cfg.World.Decorations

	w := world.New(world.Options{
		Seed:       cfg.World.Seed,
		Registry:   blocks,
		Generator:  gen,
		ViewRadius: cfg.World.ViewRadius,
		Logger:     logging.GetWorldLogger(),
		Metrics:    metrics,
	})
	g := game.New(w, game.Options{
		Seed:         cfg.World.Seed,
		BreakSpeed:   cfg.Player.BreakSpeed,
		PickupRadius: cfg.Player.PickupRadius,
		PlayerHealth: cfg.Player.Health,
		PlayerSpawn:  vec.Vec2Float{X: cfg.Player.Spawn[0], Y: cfg.Player.Spawn[1]},
		Logger:       logging.GetGameLogger(),
	})

	log.Info("Симуляция запущена",
		zap.String("world", w.ID.String()),
		zap.Int64("seed", cfg.World.Seed),
		zap.Int("frames", cfg.Sim.Frames),
		zap.Int("fps", cfg.Sim.FPS))

	dt := time.Second / time.Duration(cfg.Sim.FPS)
	script := newScript(g, cfg.Sim.CameraSpeed)
	var last game.FrameStats
loop:
	for i := 0; i < cfg.Sim.Frames; i++ {
		select {
		case <-ctx.Done():
			log.Info("Получен сигнал остановки", zap.Int("frame", i))
			break loop
		default:
		}

		script.before(dt)
		last = g.Frame(dt)
		script.after(last)

		if last.Index%uint64(cfg.Sim.FPS) == 0 {
			ps := procStats.Refresh()
			log.Info("Состояние симуляции",
				zap.Uint64("frame", last.Index),
				zap.Int("chunks", len(w.Chunks())),
				zap.Int("entities", last.Entities),
				zap.Duration("frame_took", last.Took),
				zap.Float64("cpu_percent", ps.CPUPercent),
				zap.Uint64("rss_bytes", ps.RSSBytes))
		}
	}

	log.Info("Симуляция завершена",
		zap.Uint64("frames", last.Index),
		zap.Uint64("digest", w.Digest()),
		zap.Any("inventory", g.Inventory()))

	if cfg.Sim.SnapshotPath != "" {
		snap, err := g.Export()
		if err != nil {
			return fmt.Errorf("export snapshot: %w", err)
		}
		if err := storage.SaveFile(cfg.Sim.SnapshotPath, snap); err != nil {
			return fmt.Errorf("save snapshot: %w", err)
		}
		log.Info("Снимок сохранён", zap.String("path", cfg.Sim.SnapshotPath), zap.Int("chunks", len(snap.Chunks)))
	}
	return nil
}

func loadCatalog(path string) (*block.Registry, error) {
	if path == "" {
		return block.Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open block catalog: %w", err)
	}
	defer f.Close()
	reg, err := block.Load(f)
	if err != nil {
		return nil, fmt.Errorf("load block catalog %s: %w", path, err)
	}
	return reg, nil
}
