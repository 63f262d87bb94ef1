package game

import (
	"context"
	"math/rand"
	"time"

	"github.com/annel0/tileworld/internal/ecs"
	"github.com/annel0/tileworld/internal/vec"
	"github.com/annel0/tileworld/internal/world"
	"github.com/annel0/tileworld/internal/world/block"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Options - параметры игровой части поверх мира
type Options struct {
	Seed         int64         // сид генератора случайных чисел ИИ и дропа
	BreakSpeed   float64       // прочности в секунду
	PickupRadius float64       // пикселей
	PlayerHealth float64
	PlayerSpawn  vec.Vec2Float // левый верхний угол хитбокса игрока
	Renderer     EntityRenderer
	Logger       *zap.Logger
	Tracer       trace.Tracer
}

// DefaultOptions возвращает параметры по умолчанию
func DefaultOptions() Options {
	return Options{
		Seed:         1,
		BreakSpeed:   4,
		PickupRadius: 45,
		PlayerHealth: 100,
		PlayerSpawn:  vec.Vec2Float{X: 0, Y: -240},
	}
}

// Размер хитбокса игрока
const (
	playerWidth  = 20.0
	playerHeight = 50.0
)

// FrameStats - итоги одного кадра
type FrameStats struct {
	Index    uint64
	Visible  int
	Entities int
	Broke    bool
	Took     time.Duration
}

// Game связывает мир тайлов с миром сущностей и выполняет кадры
type Game struct {
	world   *world.World
	ecs     *ecs.World
	comps   *Components
	spawner *Spawner
	runner  *ecs.Runner
	env     *env

	breakSpeed float64
	scroll     vec.Vec2Float
	frame      uint64

	log    *zap.Logger
	tracer trace.Tracer
}

// New создаёт игру поверх мира, подключает себя как Spawner мира и создаёт игрока
func New(w *world.World, opts Options) *Game {
	g := newGame(w, opts)
	g.spawnPlayer()
	return g
}

func newGame(w *world.World, opts Options) *Game {
	def := DefaultOptions()
	if opts.BreakSpeed <= 0 {
		opts.BreakSpeed = def.BreakSpeed
	}
	if opts.PickupRadius <= 0 {
		opts.PickupRadius = def.PickupRadius
	}
	if opts.PlayerHealth <= 0 {
		opts.PlayerHealth = def.PlayerHealth
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer("github.com/annel0/tileworld/internal/game")
	}

	r := rand.New(rand.NewSource(opts.Seed))
	ew := ecs.NewWorld()
	comps := NewComponents(ew)
	spawner := NewSpawner(ew, comps, w.Registry(), r, log.Named("spawner"))
	e := &env{
		ecs:         ew,
		c:           comps,
		world:       w,
		spawner:     spawner,
		log:         log,
		playerSpawn: opts.PlayerSpawn,
		health:      opts.PlayerHealth,
	}

	g := &Game{
		world:      w,
		ecs:        ew,
		comps:      comps,
		spawner:    spawner,
		runner:     ecs.NewRunner(),
		env:        e,
		breakSpeed: opts.BreakSpeed,
		log:        log,
		tracer:     tracer,
	}
	g.runner.Register(RepositionSystem{e})
	g.runner.Register(PhysicsSystem{e})
	g.runner.Register(MobSystem{env: e, rand: r})
	g.runner.Register(CombatSystem{e})
	g.runner.Register(HealthSystem{e})
	g.runner.Register(RenderSystem{env: e, renderer: opts.Renderer})
	g.runner.Register(DamageTextSystem{e})
	g.runner.Register(PickupSystem{env: e, radius: opts.PickupRadius})
	g.runner.Register(CleanupSystem{e})

	w.SetSpawner(spawner)
	return g
}

// spawnPlayer создаёт игрока как глобальную сущность: он обрабатывается
// в любом окне видимости
func (g *Game) spawnPlayer() {
	g.env.player = g.ecs.Spawn(nil,
		ecs.With(g.comps.Transform, Transform{Pos: g.env.playerSpawn, Gravity: dropGravity}),
		ecs.With(g.comps.Hitbox, Hitbox{W: playerWidth, H: playerHeight}),
		ecs.With(g.comps.Sprite, Sprite{Name: "player"}),
		ecs.With(g.comps.Health, Health{HP: g.env.health, Max: g.env.health}),
		ecs.With(g.comps.Player, Player{Inventory: make(map[block.ID]int)}),
	)
}

// World возвращает мир тайлов
func (g *Game) World() *world.World { return g.world }

// Entities возвращает мир сущностей
func (g *Game) Entities() *ecs.World { return g.ecs }

// Components возвращает хранилища компонентов
func (g *Game) Components() *Components { return g.comps }

// Spawner возвращает создателя сущностей
func (g *Game) Spawner() *Spawner { return g.spawner }

// Player возвращает id игрока
func (g *Game) Player() ecs.EntityID { return g.env.player }

// Systems возвращает системы в порядке выполнения
func (g *Game) Systems() []ecs.System { return g.runner.Systems() }

// SetScroll устанавливает позицию камеры в мировых пикселях
func (g *Game) SetScroll(scroll vec.Vec2Float) { g.scroll = scroll }

// Scroll возвращает позицию камеры
func (g *Game) Scroll() vec.Vec2Float { return g.scroll }

// SetPlayerVelocity задаёт скорость игрока в пикселях/с
func (g *Game) SetPlayerVelocity(v vec.Vec2Float) {
	if t, ok := g.comps.Transform.Get(g.env.player); ok {
		t.Vel = v
	}
}

// PlayerPosition возвращает позицию игрока
func (g *Game) PlayerPosition() vec.Vec2Float {
	if t, ok := g.comps.Transform.Get(g.env.player); ok {
		return t.Pos
	}
	return vec.Vec2Float{}
}

// StartBreaking выбирает тайл для разрушения
func (g *Game) StartBreaking(tile vec.Vec2) { g.world.StartBreaking(tile) }

// StopBreaking прекращает разрушение
func (g *Game) StopBreaking() { g.world.StopBreaking() }

// Place ставит блок из инвентаря игрока. Возвращает false, если блока нет
// в инвентаре или мир отказал в установке.
func (g *Game) Place(tile vec.Vec2, id block.ID) bool {
	p, ok := g.comps.Player.Get(g.env.player)
	if !ok || p.Inventory[id.Front()] <= 0 {
		return false
	}
	if !g.world.Place(tile, id) {
		return false
	}
	p.Inventory[id.Front()]--
	if p.Inventory[id.Front()] == 0 {
		delete(p.Inventory, id.Front())
	}
	return true
}

// Strike ставит в очередь удар игрока в мировую точку. Применяется в следующем кадре.
func (g *Game) Strike(point vec.Vec2Float, damage float64) {
	g.env.strikes = append(g.env.strikes, strike{point: point, damage: damage})
}

// Inventory возвращает копию инвентаря игрока с текстовыми идентификаторами
func (g *Game) Inventory() map[string]int {
	p, ok := g.comps.Player.Get(g.env.player)
	if !ok {
		return map[string]int{}
	}
	return inventoryCopy(g.world.Registry(), p.Inventory)
}

// Frame выполняет кадр: обновление мира, разрушение блока, системы по фазам
func (g *Game) Frame(dt time.Duration) FrameStats {
	start := time.Now()
	g.frame++
	_, span := g.tracer.Start(context.Background(), "game.Frame",
		trace.WithAttributes(attribute.Int64("frame", int64(g.frame))))
	defer span.End()

	visible := g.world.Update(g.scroll)
	broke := g.world.TickBreaking(g.breakSpeed * dt.Seconds())

	g.runner.Tick(ecs.Frame{
		Index:   g.frame,
		DT:      dt,
		Visible: ecs.NewChunkSet(visible...),
	})

	stats := FrameStats{
		Index:    g.frame,
		Visible:  len(visible),
		Entities: g.ecs.Len(),
		Broke:    broke,
		Took:     time.Since(start),
	}
	span.SetAttributes(
		attribute.Int("visible", stats.Visible),
		attribute.Int("entities", stats.Entities),
	)
	if broke {
		g.log.Debug("Блок разрушен", zap.Uint64("frame", g.frame))
	}
	return stats
}
