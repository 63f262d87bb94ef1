package world

import (
	"math"
	"math/rand"

	"github.com/annel0/tileworld/internal/util"
	"github.com/annel0/tileworld/internal/vec"
	"github.com/annel0/tileworld/internal/world/block"
)

// BiomeType представляет тип биома колонки или яруса
type BiomeType int

const (
	BiomeSky BiomeType = iota
	BiomeForest
	BiomeBeach
	BiomeUnderground
	BiomeDepth
)

func (b BiomeType) String() string {
	switch b {
	case BiomeSky:
		return "sky"
	case BiomeForest:
		return "forest"
	case BiomeBeach:
		return "beach"
	case BiomeUnderground:
		return "underground"
	case BiomeDepth:
		return "depth"
	}
	return "unknown"
}

// Ярусы по вертикали в координатах чанка
const (
	SurfaceChunkY     = -1 // полоса поверхности
	DefaultDepthLimit = 8  // с этого cy начинается неразрушимый blackstone
)

// Generator заполняет только что созданный чанк
type Generator interface {
	Generate(g *GenContext)
}

// MobSpawn - отложенное появление моба, выполняется после генерации чанка
type MobSpawn struct {
	Kind string
	Tile vec.Vec2
}

type outWrite struct {
	chunk vec.Vec2
	write LateWrite
}

// GenContext - всё, что генератор видит при заполнении одного чанка.
// Записи за пределы чанка не применяются сразу, а возвращаются миру.
type GenContext struct {
	Chunk *Chunk
	Rand  *rand.Rand
	Reg   *block.Registry

	outward []outWrite
	spawns  []MobSpawn
}

// ChunkSeed смешивает сид мира с координатами чанка
func ChunkSeed(seed int64, chunk vec.Vec2, salt int64) int64 {
	return seed ^ (int64(chunk.X)*341873128712 + int64(chunk.Y)*132897987541 + salt)
}

// NewGenContext создаёт контекст генерации с детерминированным ГПСЧ чанка
func NewGenContext(c *Chunk, reg *block.Registry, seed int64) *GenContext {
	return &GenContext{
		Chunk: c,
		Rand:  rand.New(rand.NewSource(ChunkSeed(seed, c.Coords, 0))),
		Reg:   reg,
	}
}

// Tile возвращает абсолютные координаты локальной позиции
func (g *GenContext) Tile(local vec.Vec2) vec.Vec2 {
	return vec.Tile(g.Chunk.Coords, local)
}

// Get читает передний слой своего чанка; за его пределами - None
func (g *GenContext) Get(local vec.Vec2) block.ID {
	return g.Chunk.Foreground(local)
}

// Set пишет блок; позиция может выходить за пределы чанка
func (g *GenContext) Set(local vec.Vec2, id block.ID) {
	g.SetIf(local, id, CondAny)
}

// SetIf пишет блок при выполнении условия. Для соседних чанков условие
// проверяется позже, в момент применения записи.
func (g *GenContext) SetIf(local vec.Vec2, id block.ID, cond Cond) bool {
	if vec.InChunk(local) {
		if !cond.allows(g.Reg, g.Chunk.Foreground(local)) {
			return false
		}
		g.Chunk.place(g.Reg, local, id)
		return true
	}
	chunk, l := vec.Correct(g.Chunk.Coords, local)
	g.outward = append(g.outward, outWrite{chunk: chunk, write: LateWrite{Local: l, ID: id, Cond: cond}})
	return true
}

// Spawn планирует появление моба в локальной позиции
func (g *GenContext) Spawn(kind string, local vec.Vec2) {
	g.spawns = append(g.spawns, MobSpawn{Kind: kind, Tile: g.Tile(local)})
}

// Chance возвращает true с вероятностью 1/n
func (g *GenContext) Chance(n int) bool {
	return g.Rand.Intn(n) == 0
}

// Gaussian возвращает нормально распределённое значение
func (g *GenContext) Gaussian(mean, stddev float64) float64 {
	return g.Rand.NormFloat64()*stddev + mean
}

// Spawns возвращает запланированных мобов
func (g *GenContext) Spawns() []MobSpawn {
	return g.spawns
}

// Flat заполняет каждый чанк одним блоком; None оставляет мир пустым.
type Flat struct {
	Fill block.ID
}

func (f Flat) Generate(g *GenContext) {
	if f.Fill.IsZero() {
		return
	}
	g.Chunk.Each(func(local vec.Vec2) {
		g.Chunk.place(g.Reg, local, f.Fill)
	})
}

// TerrainGenerator генерирует ландшафт: небо, поверхность, подземелье, дно мира
type TerrainGenerator struct {
	Noise *util.Noise

	SurfaceScale     float64 // Масштаб шума высоты поверхности
	SurfaceAmplitude float64 // Максимальное отклонение поверхности от середины полосы, в тайлах
	CaveScale        float64 // Масштаб шума пещер
	CaveThreshold    float64 // Выше порога - пещера (фоновый камень)
	BiomeScale       float64 // Масштаб шума биомов
	BeachThreshold   float64 // Выше порога - пляж
	DepthLimit       int     // cy, с которого начинается дно мира
	Decorate         bool    // Выполнять ли проход декораций
}

// NewTerrainGenerator создаёт генератор с настройками по умолчанию
func NewTerrainGenerator(seed int64) *TerrainGenerator {
	return &TerrainGenerator{
		Noise:            util.NewNoise(seed),
		SurfaceScale:     0.08,
		SurfaceAmplitude: 8,
		CaveScale:        0.08,
		CaveThreshold:    0.2,
		BiomeScale:       0.01,
		BeachThreshold:   0.62,
		DepthLimit:       DefaultDepthLimit,
		Decorate:         true,
	}
}

// Generate выполняет Terraform и Decorate
func (t *TerrainGenerator) Generate(g *GenContext) {
	t.Terraform(g)
	if t.Decorate {
		t.decorate(g)
	}
}

// SurfaceRow возвращает локальную строку поверхности в полосе SurfaceChunkY
func (t *TerrainGenerator) SurfaceRow(bx int) int {
	h := int(t.Noise.Noise2D(float64(bx)*t.SurfaceScale, 0.5) * t.SurfaceAmplitude)
	row := ChunkHeight/2 + h
	if row < 1 {
		row = 1
	}
	if row > ChunkHeight-1 {
		row = ChunkHeight - 1
	}
	return row
}

// BiomeAt возвращает биом колонки bx в ярусе cy
func (t *TerrainGenerator) BiomeAt(bx, cy int) BiomeType {
	switch {
	case cy < SurfaceChunkY:
		return BiomeSky
	case cy >= t.DepthLimit:
		return BiomeDepth
	case cy > SurfaceChunkY:
		return BiomeUnderground
	}
	if t.Noise.Normalized(float64(bx)*t.BiomeScale, 7.5) > t.BeachThreshold {
		return BiomeBeach
	}
	return BiomeForest
}

// Terraform заполняет базовый рельеф чанка. Под твёрдыми блоками поверхности
// и подземелья лежит фон того же материала, поэтому выкопанная клетка остаётся тёмной.
func (t *TerrainGenerator) Terraform(g *GenContext) {
	c := g.Chunk
	reg := g.Reg
	for x := 0; x < ChunkWidth; x++ {
		bx := c.Coords.X*ChunkWidth + x
		biome := t.BiomeAt(bx, c.Coords.Y)
		surface := -1
		if biome == BiomeForest || biome == BiomeBeach {
			surface = t.SurfaceRow(bx)
		}
		for y := 0; y < ChunkHeight; y++ {
			local := vec.Vec2{X: x, Y: y}
			by := c.Coords.Y*ChunkHeight + y
			fore, back := t.terrainAt(biome, surface, y, bx, by)
			if !back.IsZero() {
				c.place(reg, local, back)
			}
			c.place(reg, local, fore)
		}
	}
}

// terrainAt возвращает передний и задний блок клетки
func (t *TerrainGenerator) terrainAt(biome BiomeType, surface, y, bx, by int) (block.ID, block.ID) {
	switch biome {
	case BiomeSky:
		return block.Air, block.None
	case BiomeDepth:
		return block.Of(block.BlackstoneBase), block.None
	case BiomeUnderground:
		cave := t.Noise.Noise2D(float64(bx)*t.CaveScale, float64(by)*t.CaveScale)
		if cave > t.CaveThreshold {
			return block.Stone.Back(), block.None
		}
		return block.Stone, block.Stone.Back()
	}

	switch {
	case y < surface:
		return block.Air, block.None
	case biome == BiomeBeach:
		sand := block.Of(block.SandBase)
		return sand, sand.Back()
	case y == surface:
		return block.Of(block.SoilBase), block.Of(block.DirtBase).Back()
	}
	dirt := block.Of(block.DirtBase)
	return dirt, dirt.Back()
}

// roundPositive округляет и ограничивает снизу
func roundPositive(v float64, lo int) int {
	n := int(math.Round(v))
	if n < lo {
		return lo
	}
	return n
}
