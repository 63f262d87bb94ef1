package world

import (
	"encoding/binary"

	"github.com/annel0/tileworld/internal/vec"
	"github.com/annel0/tileworld/internal/world/block"
	"github.com/cespare/xxhash/v2"
)

const (
	ChunkWidth  = vec.ChunkWidth
	ChunkHeight = vec.ChunkHeight
)

// Стороны тайла в маске стен
const (
	WallRight uint8 = 1 << iota
	WallLeft
	WallDown
	WallUp
)

// Chunk представляет участок мира размером 16x16 тайлов.
// Массивы индексируются как [x][y] по локальным координатам.
type Chunk struct {
	Coords vec.Vec2 // Координаты чанка в мире

	// Generated == false означает запись "только свет": в неё заходил свет соседей,
	// но генератор её ещё не заполнял. Тайлы такой записи невидимы для чтения.
	Generated bool

	Blocks [MaxLayers][ChunkWidth][ChunkHeight]block.ID
	Light  [ChunkWidth][ChunkHeight]uint8
	// Walls - для каждого непустого тайла стороны, граничащие с пустотой (обводка при отрисовке)
	Walls [ChunkWidth][ChunkHeight]uint8

	ChangeCounter int // Счетчик изменений тайлов
}

// NewChunk создаёт пустую запись чанка
func NewChunk(coords vec.Vec2) *Chunk {
	return &Chunk{Coords: coords}
}

// Get возвращает блок слоя по локальным координатам
func (c *Chunk) Get(layer BlockLayer, local vec.Vec2) block.ID {
	if layer >= MaxLayers || !vec.InChunk(local) {
		return block.None
	}
	return c.Blocks[layer][local.X][local.Y]
}

// Set записывает блок слоя без какой-либо логики слоёв и света
func (c *Chunk) Set(layer BlockLayer, local vec.Vec2, id block.ID) {
	if layer >= MaxLayers || !vec.InChunk(local) {
		return
	}
	c.Blocks[layer][local.X][local.Y] = id
	c.ChangeCounter++
}

// Foreground возвращает блок переднего слоя
func (c *Chunk) Foreground(local vec.Vec2) block.ID {
	return c.Get(LayerForeground, local)
}

// Background возвращает блок заднего слоя
func (c *Chunk) Background(local vec.Vec2) block.ID {
	return c.Get(LayerBackground, local)
}

// LightAt возвращает уровень света тайла
func (c *Chunk) LightAt(local vec.Vec2) int {
	return int(c.Light[local.X][local.Y])
}

// place применяет правило слоёв: фоновый блок уходит в задний слой и занимает
// передний только если тот пуст (не записан, пустой блок или отражение фона).
// Декор и любые другие блоки переднего слоя сохраняются.
func (c *Chunk) place(reg *block.Registry, local vec.Vec2, id block.ID) {
	if !id.Background {
		c.Set(LayerForeground, local, id)
		return
	}
	c.Set(LayerBackground, local, id)
	fore := c.Foreground(local)
	if reg.IsEmpty(fore) || fore.Background {
		c.Set(LayerForeground, local, id)
	}
}

// Each обходит все тайлы построчно: y снаружи, x внутри
func (c *Chunk) Each(fn func(local vec.Vec2)) {
	for y := 0; y < ChunkHeight; y++ {
		for x := 0; x < ChunkWidth; x++ {
			fn(vec.Vec2{X: x, Y: y})
		}
	}
}

// Digest возвращает хеш содержимого обоих слоёв (без света)
func (c *Chunk) Digest() uint64 {
	h := xxhash.New()
	var buf [3]byte
	for layer := BlockLayer(0); layer < MaxLayers; layer++ {
		c.Each(func(local vec.Vec2) {
			id := c.Blocks[layer][local.X][local.Y]
			binary.LittleEndian.PutUint16(buf[:2], uint16(id.Base))
			buf[2] = 0
			if id.Background {
				buf[2] = 1
			}
			_, _ = h.Write(buf[:])
		})
	}
	return h.Sum64()
}
