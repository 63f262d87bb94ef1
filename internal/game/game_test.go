package game

import (
	"fmt"
	"testing"
	"time"

	"github.com/annel0/tileworld/internal/vec"
	"github.com/annel0/tileworld/internal/world"
	"github.com/annel0/tileworld/internal/world/block"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemOrder(t *testing.T) {
	g := newTestGame(t, Options{})

	var names []string
	for _, s := range g.Systems() {
		names = append(names, fmt.Sprintf("%T", s))
	}
	assert.Equal(t, []string{
		"game.RepositionSystem",
		"game.PhysicsSystem",
		"game.MobSystem",
		"game.CombatSystem",
		"game.HealthSystem",
		"game.RenderSystem",
		"game.DamageTextSystem",
		"game.PickupSystem",
		"game.CleanupSystem",
	}, names)
}

func TestFrameCreatesVisibleChunks(t *testing.T) {
	g := newTestGame(t, Options{})

	stats := g.Frame(frameDT)
	assert.Equal(t, uint64(1), stats.Index)
	assert.Equal(t, 9, stats.Visible, "радиус 1 - окно 3x3")
	assert.Equal(t, 1, stats.Entities, "только игрок")
	assert.Len(t, g.World().Chunks(), 9)
}

func TestPlayerLandsOnGround(t *testing.T) {
	g := newTestGame(t, Options{})

	run(g, 120)
	tr, _ := g.Components().Transform.Get(g.Player())
	assert.InDelta(t, groundLevel*vec.TileSize-playerHeight, tr.Pos.Y, 1e-6, "игрок стоит на камне")
	assert.True(t, tr.OnGround)
	assert.Zero(t, tr.Vel.Y)
}

func TestPlayerWalksIntoWall(t *testing.T) {
	g := newTestGame(t, Options{})
	run(g, 120)

	// стена из двух блоков справа от игрока
	wall := vec.Vec2{X: 3, Y: groundLevel - 1}
	g.World().Place(wall, block.Stone)
	g.World().Place(wall.Sub(vec.Vec2{Y: 1}), block.Stone)

	for i := 0; i < 60; i++ {
		g.SetPlayerVelocity(vec.Vec2Float{X: 120})
		g.Frame(frameDT)
	}
	tr, _ := g.Components().Transform.Get(g.Player())
	assert.InDelta(t, 3*vec.TileSize-playerWidth, tr.Pos.X, 1e-6, "упёрся в стену")
}

func TestDropFallsAndLands(t *testing.T) {
	g := newTestGame(t, Options{})

	g.Spawner().SpawnDrop(block.Stone, vec.Vec2{X: 6, Y: 3})
	id := g.Components().Drop.IDs()[0]

	run(g, 120)
	tr, _ := g.Components().Transform.Get(id)
	assert.InDelta(t, groundLevel*vec.TileSize-dropSize, tr.Pos.Y, 1e-6)
	assert.True(t, tr.OnGround)
	assert.Zero(t, tr.Vel.X, "на земле дроп не скользит")
}

func TestRepositionFollowsCenter(t *testing.T) {
	g := newTestGame(t, Options{})

	id := g.Spawner().SpawnDropAt(block.Stone, 1, vec.Vec2Float{X: 100, Y: 100})
	tr := freeze(g, id)
	assert.Equal(t, vec.Vec2{}, *g.Entities().Affinity(id))

	tr.Pos = vec.Vec2Float{X: 500, Y: 100}
	g.Frame(frameDT)
	assert.Equal(t, vec.Vec2{X: 1, Y: 0}, *g.Entities().Affinity(id))
	assert.Contains(t, g.Entities().InChunk(vec.Vec2{X: 1, Y: 0}), id)
	assert.Empty(t, g.Entities().InChunk(vec.Vec2{}))

	assert.Nil(t, g.Entities().Affinity(g.Player()), "игрок остаётся глобальным")
}

func TestEntitiesOutsideWindowAreFrozen(t *testing.T) {
	g := newTestGame(t, Options{})

	// чанк (5, 0) вне окна радиуса 1
	id := g.Spawner().SpawnDropAt(block.Stone, 1, vec.Vec2Float{X: 5*16*vec.TileSize + 50, Y: 50})
	before, _ := g.Components().Transform.Get(id)
	pos := before.Pos

	run(g, 10)
	after, _ := g.Components().Transform.Get(id)
	assert.Equal(t, pos, after.Pos, "невидимые сущности не обновляются")
}

func TestStrikeKillsMobAndDropsLoot(t *testing.T) {
	rec := &recordingRenderer{}
	g := newTestGame(t, Options{Renderer: rec})

	bee := g.Spawner().SpawnMobAt(world.MobBee, MobKinds[world.MobBee], vec.Vec2Float{X: 150, Y: 60})
	center := vec.Vec2Float{X: 162, Y: 70}

	g.Strike(center, 30)
	g.Frame(frameDT)
	hp, _ := g.Components().Health.Get(bee)
	assert.Equal(t, 70.0, hp.HP)
	assert.Equal(t, 1, g.Components().DamageText.Len())
	assert.Contains(t, rec.texts, "30")

	g.Strike(center, 80)
	g.Frame(frameDT)
	assert.False(t, g.Entities().Alive(bee), "пчела погибла и удалена в конце кадра")
	assert.False(t, g.Components().Health.Has(bee))

	ids := g.Components().Drop.IDs()
	require.Len(t, ids, 1)
	d, _ := g.Components().Drop.Get(ids[0])
	assert.Equal(t, block.Of(block.AppleBase), d.ID)
	assert.Equal(t, 1, d.Count)
}

func TestStrikeMissesEmptyPoint(t *testing.T) {
	g := newTestGame(t, Options{})
	bee := g.Spawner().SpawnMobAt(world.MobBee, MobKinds[world.MobBee], vec.Vec2Float{X: 150, Y: 60})

	g.Strike(vec.Vec2Float{X: 400, Y: 60}, 50)
	g.Frame(frameDT)
	hp, _ := g.Components().Health.Get(bee)
	assert.Equal(t, 100.0, hp.HP)
	assert.Zero(t, g.Components().DamageText.Len())
}

func TestContactDamageHasCooldown(t *testing.T) {
	g := newTestGame(t, Options{})
	tr := freeze(g, g.Player())
	tr.Pos = vec.Vec2Float{X: 100, Y: 100}

	g.Spawner().SpawnMobAt(world.MobBee, MobKinds[world.MobBee], tr.Pos)

	g.Frame(frameDT)
	hp, _ := g.Components().Health.Get(g.Player())
	p, _ := g.Components().Player.Get(g.Player())
	assert.Equal(t, 95.0, hp.HP)
	assert.InDelta(t, contactCooldown-frameDT.Seconds(), p.HitCooldown, 1e-9)

	g.Frame(frameDT)
	assert.Equal(t, 95.0, hp.HP, "повторный урон только после перезарядки")
}

func TestPlayerRespawnsAfterDeath(t *testing.T) {
	spawn := vec.Vec2Float{X: 30, Y: -120}
	g := newTestGame(t, Options{PlayerSpawn: spawn, PlayerHealth: 40})
	run(g, 60)

	hp, _ := g.Components().Health.Get(g.Player())
	hp.HP = -5
	g.Frame(frameDT)

	assert.Equal(t, 40.0, hp.HP)
	tr, _ := g.Components().Transform.Get(g.Player())
	assert.Equal(t, spawn, tr.Pos)
	assert.True(t, g.Entities().Alive(g.Player()))
}

func TestPickupAfterDelay(t *testing.T) {
	g := newTestGame(t, Options{})
	ptr := freeze(g, g.Player())
	ptr.Pos = vec.Vec2Float{X: 100, Y: 100}

	dirt := block.Of(block.DirtBase)
	id := g.Spawner().SpawnDropAt(dirt, 3, vec.Vec2Float{X: 130, Y: 125})
	freeze(g, id)

	run(g, 10)
	assert.True(t, g.Entities().Alive(id), "сразу после появления дроп не подбирается")
	assert.Empty(t, g.Inventory())

	run(g, 20)
	assert.False(t, g.Entities().Alive(id))
	assert.Equal(t, map[string]int{"dirt": 3}, g.Inventory())
}

func TestPickupIgnoresFarDrops(t *testing.T) {
	g := newTestGame(t, Options{PickupRadius: 10})
	ptr := freeze(g, g.Player())
	ptr.Pos = vec.Vec2Float{X: 100, Y: 100}

	id := g.Spawner().SpawnDropAt(block.Stone, 1, vec.Vec2Float{X: 140, Y: 125})
	freeze(g, id)

	run(g, 30)
	assert.True(t, g.Entities().Alive(id))
	assert.Empty(t, g.Inventory())
}

func TestDamageTextRisesAndExpires(t *testing.T) {
	g := newTestGame(t, Options{})
	id := g.Spawner().SpawnDamageText("12", vec.Vec2Float{X: 50, Y: 50})

	run(g, 10)
	tr, _ := g.Components().Transform.Get(id)
	assert.InDelta(t, 50-damageTextRise*10*frameDT.Seconds(), tr.Pos.Y, 1e-9)

	run(g, 50)
	assert.False(t, g.Entities().Alive(id), "надпись исчезает по истечении времени жизни")
}

func TestRendererReceivesSprites(t *testing.T) {
	rec := &recordingRenderer{}
	g := newTestGame(t, Options{Renderer: rec})

	g.Frame(frameDT)
	require.Len(t, rec.sprites, 1)
	assert.Equal(t, g.Player(), rec.sprites[0].id)
	assert.Equal(t, "player", rec.sprites[0].name)
	assert.Equal(t, playerWidth, rec.sprites[0].rect.W)
}

func TestBreakingThroughFrames(t *testing.T) {
	g := newTestGame(t, Options{BreakSpeed: 1})
	g.Frame(frameDT)

	target := vec.Vec2{X: 3, Y: groundLevel}
	g.StartBreaking(target)
	dt := 250 * time.Millisecond
	for frame := 1; frame <= 7; frame++ {
		assert.False(t, g.Frame(dt).Broke, "кадр %d", frame)
	}
	require.True(t, g.Frame(dt).Broke, "камень твёрдостью 2 при 0.25 за кадр ломается на восьмом кадре")

	id, _ := g.World().Tile(target)
	assert.Equal(t, block.Air, id)

	ids := g.Components().Drop.IDs()
	require.Len(t, ids, 1)
	d, _ := g.Components().Drop.Get(ids[0])
	assert.Equal(t, block.Stone, d.ID)
}

func TestPlaceConsumesInventory(t *testing.T) {
	g := newTestGame(t, Options{})
	g.Frame(frameDT)

	tile := vec.Vec2{X: 5, Y: 5}
	assert.False(t, g.Place(tile, block.Stone), "в инвентаре нет камня")

	p, _ := g.Components().Player.Get(g.Player())
	p.Inventory[block.Stone] = 1
	require.True(t, g.Place(tile, block.Stone))
	assert.Empty(t, g.Inventory())

	id, _ := g.World().Tile(tile)
	assert.Equal(t, block.Stone, id)
}
