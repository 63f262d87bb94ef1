package world

import (
	"math/rand"
	"testing"

	"github.com/annel0/tileworld/internal/vec"
	"github.com/annel0/tileworld/internal/world/block"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTileMissingChunk(t *testing.T) {
	w := emptyWorld()
	_, ok := w.GetTile(vec.Vec2{X: 3, Y: 3}, vec.Vec2{})
	assert.False(t, ok, "несуществующий чанк - нет тайла")
	assert.False(t, w.Exists(vec.Vec2{X: 3, Y: 3}, vec.Vec2{}))

	w.EnsureChunk(vec.Vec2{X: 3, Y: 3})
	_, ok = w.GetTile(vec.Vec2{X: 3, Y: 3}, vec.Vec2{})
	assert.False(t, ok, "незаписанная клетка - нет тайла")
}

func TestSetTileCreatesChunkAndCorrectsPosition(t *testing.T) {
	w := stoneWorld()
	// локальная позиция (17, -1) в чанке (0,0) - это (1, 15) в чанке (1,-1)
	w.SetTile(vec.Vec2{}, vec.Vec2{X: 17, Y: -1}, block.Of(block.DirtBase))

	id, ok := w.GetTile(vec.Vec2{X: 1, Y: -1}, vec.Vec2{X: 1, Y: 15})
	require.True(t, ok)
	assert.Equal(t, block.Of(block.DirtBase), id)
	_, ok = w.Chunk(vec.Vec2{})
	assert.False(t, ok, "чанк (0,0) не должен создаваться")
}

func TestBackgroundPlacementIntoEmpty(t *testing.T) {
	w := emptyWorld()
	c, p := vec.Vec2{}, vec.Vec2{X: 4, Y: 4}
	w.SetTile(c, p, block.Stone.Back())

	fore, ok := w.GetTile(c, p)
	require.True(t, ok)
	assert.Equal(t, block.Stone.Back(), fore, "пустой передний слой занимает отражение фона")
	back, ok := w.GetBackground(c, p)
	require.True(t, ok)
	assert.Equal(t, block.Stone.Back(), back)

	// разрушение отражения очищает фон
	require.True(t, w.BreakTile(c, p))
	fore, _ = w.GetTile(c, p)
	assert.Equal(t, block.Air, fore)
	_, ok = w.GetBackground(c, p)
	assert.False(t, ok)
}

func TestBackgroundKeepsDecorForeground(t *testing.T) {
	w := emptyWorld()
	c, p := vec.Vec2{}, vec.Vec2{X: 2, Y: 9}
	poppy := block.Of(block.PoppyBase)
	w.SetTile(c, p, poppy)
	w.SetTile(c, p, block.Stone.Back())

	fore, _ := w.GetTile(c, p)
	assert.Equal(t, poppy, fore, "декор переднего слоя сохраняется")
	back, _ := w.GetBackground(c, p)
	assert.Equal(t, block.Stone.Back(), back)

	// разрушение декора открывает фон, второе разрушение - воздух
	require.True(t, w.BreakTile(c, p))
	fore, _ = w.GetTile(c, p)
	assert.Equal(t, block.Stone.Back(), fore)
	require.True(t, w.BreakTile(c, p))
	fore, _ = w.GetTile(c, p)
	assert.Equal(t, block.Air, fore)
}

func TestBreakRestoresBackground(t *testing.T) {
	w := emptyWorld()
	c, p := vec.Vec2{}, vec.Vec2{X: 1, Y: 1}
	w.SetTile(c, p, block.Of(block.DirtBase).Back())
	w.SetTile(c, p, block.Stone)

	fore, _ := w.GetTile(c, p)
	assert.Equal(t, block.Stone, fore)
	require.True(t, w.BreakTile(c, p))
	fore, _ = w.GetTile(c, p)
	assert.Equal(t, block.Of(block.DirtBase).Back(), fore)
}

func TestBreakUnbreakable(t *testing.T) {
	w := New(Options{Generator: Flat{Fill: block.Of(block.BlackstoneBase)}})
	c, p := vec.Vec2{}, vec.Vec2{X: 5, Y: 5}
	w.EnsureChunk(c)
	assert.False(t, w.BreakTile(c, p))
	id, _ := w.GetTile(c, p)
	assert.Equal(t, block.Of(block.BlackstoneBase), id)

	w.SetTile(c, p, block.Air)
	assert.False(t, w.BreakTile(c, p), "воздух неразрушим")
	assert.False(t, w.BreakTile(vec.Vec2{X: 50}, p), "несуществующий чанк")
}

func TestPlaceRules(t *testing.T) {
	w := stoneWorld()
	tile := vec.Vec2{X: 3, Y: 3}
	assert.False(t, w.Place(tile, block.Of(block.DirtBase)), "занятая клетка")
	assert.False(t, w.Place(tile, block.Of(block.AppleBase)), "UNPLACEABLE")

	require.True(t, w.Break(tile))
	assert.True(t, w.Place(tile, block.Of(block.DirtBase)))
	id, _ := w.Tile(tile)
	assert.Equal(t, block.Of(block.DirtBase), id)
}

func TestTorchLightLine(t *testing.T) {
	w := emptyWorld()
	origin := vec.Vec2{}
	w.SetTile(vec.ChunkOf(origin), vec.Local(origin), torch())

	for x := 0; x <= 11; x++ {
		assert.Equal(t, 12-x, w.LightLevel(vec.Vec2{X: x}), "x=%d", x)
	}
	assert.Equal(t, 0, w.LightLevel(vec.Vec2{X: 12}))
	assert.Equal(t, 0, w.LightLevel(vec.Vec2{X: 13}))
	assert.Equal(t, 11, w.LightLevel(vec.Vec2{X: -1}), "свет переходит в соседний чанк")
	_, ok := w.Chunk(vec.Vec2{X: -1})
	assert.False(t, ok, "запись только со светом не считается сгенерированной")
	require.NoError(t, w.Light().Check())

	// убираем источник: на его месте обычный камень
	w.SetTile(vec.ChunkOf(origin), vec.Local(origin), block.Stone)
	for x := -13; x <= 13; x++ {
		assert.Equal(t, 0, w.LightLevel(vec.Vec2{X: x}))
	}
	assert.Equal(t, 0, w.Light().Attribution().Len())
}

func TestLightOnlyChunkKeepsLightAfterGeneration(t *testing.T) {
	w := emptyWorld()
	w.SetTile(vec.Vec2{}, vec.Vec2{X: 15, Y: 8}, torch())
	assert.Equal(t, 11, w.LightLevel(vec.Vec2{X: 16, Y: 8}))

	w.EnsureChunk(vec.Vec2{X: 1})
	assert.Equal(t, 11, w.LightLevel(vec.Vec2{X: 16, Y: 8}))
	require.NoError(t, w.Light().Check())
}

func TestReplacingSourceRelights(t *testing.T) {
	w := emptyWorld()
	tile := vec.Vec2{X: 8, Y: 8}
	w.SetTile(vec.ChunkOf(tile), vec.Local(tile), torch())
	w.SetTile(vec.ChunkOf(tile), vec.Local(tile), block.Of(block.LanternBase))
	assert.Equal(t, 14, w.LightLevel(tile))
	assert.Equal(t, 10, w.LightLevel(vec.Vec2{X: 12, Y: 8}))

	w.SetTile(vec.ChunkOf(tile), vec.Local(tile), block.Stone)
	assert.Equal(t, 0, w.LightLevel(tile))
	assert.Equal(t, 0, w.Light().Attribution().Len())
}

func TestBulkPropagationTieBreak(t *testing.T) {
	// оба факела ставятся генератором, свет распространяется одним проходом
	w := New(Options{Generator: genFunc(func(g *GenContext) {
		if g.Chunk.Coords != (vec.Vec2{}) {
			return
		}
		g.Set(vec.Vec2{X: 8, Y: 5}, torch())
		g.Set(vec.Vec2{X: 2, Y: 5}, torch())
	})})
	w.EnsureChunk(vec.Vec2{})

	mid := vec.Vec2{X: 5, Y: 5}
	assert.Equal(t, 9, w.LightLevel(mid))
	src, ok := w.Light().Attribution().Source(mid)
	require.True(t, ok)
	assert.Equal(t, vec.Vec2{X: 2, Y: 5}, src, "при равенстве побеждает источник с меньшими (y, x)")
}

func TestRandomEditsKeepLightConsistent(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	w := emptyWorld()
	ids := []block.ID{torch(), block.Of(block.LanternBase), block.Stone, block.Of(block.PoppyBase)}

	for step := 0; step < 300; step++ {
		tile := vec.Vec2{X: rng.Intn(48) - 24, Y: rng.Intn(48) - 24}
		if rng.Intn(3) == 0 {
			w.Break(tile)
		} else {
			w.SetTile(vec.ChunkOf(tile), vec.Local(tile), ids[rng.Intn(len(ids))])
		}
		require.NoError(t, w.Light().Check(), "шаг %d", step)
	}

	// полный пересчёт по формуле совпадает с инкрементальным результатом
	var sources []vec.Vec2
	for _, k := range w.Chunks() {
		sources = append(sources, lightGrid{w}.Emitters(k)...)
	}
	for y := -40; y <= 40; y++ {
		for x := -40; x <= 40; x++ {
			p := vec.Vec2{X: x, Y: y}
			want := 0
			for _, s := range sources {
				power, falloff, _ := lightGrid{w}.Emitter(s)
				if v := power - falloff*s.Manhattan(p); v > want {
					want = v
				}
			}
			require.Equal(t, want, w.LightLevel(p), "тайл %v", p)
		}
	}
}

func TestRendererInvalidation(t *testing.T) {
	r := &recordingRenderer{}
	w := New(Options{Generator: Flat{Fill: block.Stone}, Renderer: r})
	w.EnsureChunk(vec.Vec2{})
	w.FlushDirty()
	assert.Equal(t, []vec.Vec2{{}}, r.invalidated)

	r.invalidated = nil
	w.SetTile(vec.Vec2{}, vec.Vec2{X: 3, Y: 3}, block.Of(block.DirtBase))
	assert.Equal(t, []vec.Vec2{{}}, r.invalidated, "одно уведомление на операцию")

	r.invalidated = nil
	w.FlushDirty()
	assert.Empty(t, r.invalidated)
}

func TestWallsMask(t *testing.T) {
	w := emptyWorld()
	w.SetTile(vec.Vec2{}, vec.Vec2{X: 4, Y: 4}, block.Stone)
	w.SetTile(vec.Vec2{}, vec.Vec2{X: 5, Y: 4}, block.Stone)
	c, ok := w.Chunk(vec.Vec2{})
	require.True(t, ok)
	assert.Equal(t, WallLeft|WallDown|WallUp, c.Walls[4][4])
	assert.Equal(t, WallRight|WallDown|WallUp, c.Walls[5][4])
	assert.Zero(t, c.Walls[6][4])
}
