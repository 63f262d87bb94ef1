package world

import (
	"math"
	"time"

	"github.com/annel0/tileworld/internal/vec"
	"go.uber.org/zap"
)

// CameraChunk возвращает чанк, вокруг которого строится окно видимости
func CameraChunk(scroll vec.Vec2Float) vec.Vec2 {
	return vec.Vec2{
		X: int(math.Round(scroll.X / (ChunkWidth * vec.TileSize))),
		Y: int(math.Round(scroll.Y / (ChunkHeight * vec.TileSize))),
	}
}

// VisibleChunks возвращает окно чанков вокруг камеры построчно
func (w *World) VisibleChunks(scroll vec.Vec2Float) []vec.Vec2 {
	center := CameraChunk(scroll)
	r := w.viewRadius
	out := make([]vec.Vec2, 0, (2*r+1)*(2*r+1))
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			out = append(out, vec.Vec2{X: center.X + dx, Y: center.Y + dy})
		}
	}
	return out
}

// Update - шаг мира за кадр: создаёт недостающие видимые чанки (генерация и
// начальный свет внутри EnsureChunk), применяет отложенные записи, уведомляет
// Renderer об изменённых чанках и возвращает список видимых чанков.
func (w *World) Update(scroll vec.Vec2Float) []vec.Vec2 {
	start := time.Now()
	visible := w.VisibleChunks(scroll)
	created := 0
	for _, coords := range visible {
		if _, ok := w.Chunk(coords); !ok {
			created++
		}
		w.EnsureChunk(coords)
		w.FlushLateWrites(coords)
	}
	w.FlushDirty()
	w.metrics.frame(time.Since(start), len(visible))
	if created > 0 {
		w.log.Debug("Окно видимости обновлено", zap.Int("created", created), zap.Int("visible", len(visible)))
	}
	return visible
}
