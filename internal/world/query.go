package world

import (
	"encoding/binary"

	"github.com/annel0/tileworld/internal/vec"
	"github.com/annel0/tileworld/internal/world/block"
	"github.com/cespare/xxhash/v2"
)

// TileRect - тайл вокруг прямоугольника сущности для проверки коллизий
type TileRect struct {
	Tile    vec.Vec2
	Rect    vec.Rect
	ID      block.ID
	Present bool // false - чанк не сгенерирован или клетка пуста
}

// Solid сообщает, блокирует ли тайл движение
func (t TileRect) Solid(reg *block.Registry) bool {
	if !t.Present || t.ID.Background {
		return false
	}
	return reg.Lacks(t.ID, block.Walkable)
}

// BlocksAround возвращает тайлы, покрываемые rect, расширенным на rng тайлов
// в каждую сторону. Обход построчный.
func (w *World) BlocksAround(rect vec.Rect, rng int) []TileRect {
	if rng < 0 {
		rng = 0
	}
	lo := vec.PosToTile(vec.Vec2Float{X: rect.X, Y: rect.Y})
	hi := vec.PosToTile(vec.Vec2Float{X: rect.Right(), Y: rect.Bottom()})
	lo = lo.Sub(vec.Vec2{X: rng, Y: rng})
	hi = hi.Add(vec.Vec2{X: rng, Y: rng})

	out := make([]TileRect, 0, (hi.X-lo.X+1)*(hi.Y-lo.Y+1))
	for y := lo.Y; y <= hi.Y; y++ {
		for x := lo.X; x <= hi.X; x++ {
			t := vec.Vec2{X: x, Y: y}
			id, ok := w.Tile(t)
			out = append(out, TileRect{Tile: t, Rect: vec.TileRect(t), ID: id, Present: ok})
		}
	}
	return out
}

// Around возвращает абсолютные тайлы в круге радиуса r вокруг center,
// ближние первыми (см. vec.RadiusAround)
func Around(center vec.Vec2, r int) []vec.Vec2 {
	offs := vec.RadiusAround(r)
	out := make([]vec.Vec2, len(offs))
	for i, d := range offs {
		out[i] = center.Add(d)
	}
	return out
}

// Digest возвращает хеш всех сгенерированных чанков в порядке (y, x)
func (w *World) Digest() uint64 {
	h := xxhash.New()
	var buf [16]byte
	for _, k := range w.Chunks() {
		binary.LittleEndian.PutUint32(buf[0:4], uint32(int32(k.X)))
		binary.LittleEndian.PutUint32(buf[4:8], uint32(int32(k.Y)))
		binary.LittleEndian.PutUint64(buf[8:16], w.chunks[k].Digest())
		_, _ = h.Write(buf[:])
	}
	return h.Sum64()
}
