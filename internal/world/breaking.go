package world

import (
	"github.com/annel0/tileworld/internal/vec"
	"github.com/annel0/tileworld/internal/world/block"
	"go.uber.org/zap"
)

// breakEpsilon гасит накопленную ошибку суммирования прогресса
const breakEpsilon = 1e-9

// Breaking - состояние разрушения: не больше одного тайла одновременно
type Breaking struct {
	Active   bool
	Tile     vec.Vec2
	Progress float64
}

// Breaking возвращает текущее состояние разрушения
func (w *World) Breaking() Breaking {
	return w.breaking
}

// StartBreaking выбирает тайл для разрушения. Смена цели сбрасывает прогресс.
func (w *World) StartBreaking(tile vec.Vec2) {
	if w.breaking.Active && w.breaking.Tile == tile {
		return
	}
	w.breaking = Breaking{Active: true, Tile: tile}
}

// StopBreaking возвращает состояние в Idle
func (w *World) StopBreaking() {
	w.breaking = Breaking{}
}

// TickBreaking добавляет amount к прогрессу. Когда прогресс достигает твёрдости
// блока, создаётся дроп, тайл разрушается и состояние возвращается в Idle.
// Если тайл исчез или стал неразрушимым, состояние сбрасывается без дропа.
func (w *World) TickBreaking(amount float64) bool {
	if !w.breaking.Active {
		return false
	}
	tile := w.breaking.Tile
	id, ok := w.Tile(tile)
	if !ok || w.reg.IsEmpty(id) || w.reg.Has(id, block.Unbreakable) {
		w.StopBreaking()
		return false
	}

	w.breaking.Progress += amount
	if w.breaking.Progress+breakEpsilon < w.reg.Params(id.Base).Hardness {
		return false
	}

	if def, ok := w.reg.Get(id.Base); ok && def.Drop != block.NoneBase && w.spawner != nil {
		w.spawner.SpawnDrop(block.Of(def.Drop), tile)
	}
	w.Break(tile)
	w.StopBreaking()
	w.log.Debug("Тайл разрушен", zap.Int("x", tile.X), zap.Int("y", tile.Y), zap.Stringer("block", id))
	return true
}
