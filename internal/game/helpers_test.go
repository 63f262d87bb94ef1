package game

import (
	"testing"
	"time"

	"github.com/annel0/tileworld/internal/ecs"
	"github.com/annel0/tileworld/internal/vec"
	"github.com/annel0/tileworld/internal/world"
	"github.com/annel0/tileworld/internal/world/block"
	"github.com/stretchr/testify/require"
)

const frameDT = time.Second / 60

// groundLevel - первая строка камня в тестовом мире (y = 300 пикселей)
const groundLevel = 10

// groundGen заполняет мир воздухом выше groundLevel и камнем ниже
type groundGen struct{}

func (groundGen) Generate(g *world.GenContext) {
	g.Chunk.Each(func(local vec.Vec2) {
		id := block.Air
		if g.Tile(local).Y >= groundLevel {
			id = block.Stone
		}
		g.Set(local, id)
	})
}

type sprite struct {
	id   ecs.EntityID
	name string
	rect vec.Rect
}

type recordingRenderer struct {
	sprites []sprite
	texts   []string
}

func (r *recordingRenderer) DrawSprite(id ecs.EntityID, name string, rect vec.Rect) {
	r.sprites = append(r.sprites, sprite{id, name, rect})
}

func (r *recordingRenderer) DrawText(text string, _ vec.Vec2Float) {
	r.texts = append(r.texts, text)
}

func worldOptions() world.Options {
	return world.Options{Seed: 1, Generator: groundGen{}, ViewRadius: 1}
}

func newTestGame(t *testing.T, opts Options) *Game {
	t.Helper()
	if opts.Seed == 0 {
		opts.Seed = 7
	}
	if opts.PlayerSpawn == (vec.Vec2Float{}) {
		opts.PlayerSpawn = DefaultOptions().PlayerSpawn
	}
	g := New(world.New(worldOptions()), opts)
	require.True(t, g.Entities().Alive(g.Player()))
	return g
}

// freeze убирает гравитацию и скорость сущности
func freeze(g *Game, id ecs.EntityID) *Transform {
	tr, _ := g.Components().Transform.Get(id)
	tr.Gravity = 0
	tr.Vel = vec.Vec2Float{}
	return tr
}

func run(g *Game, frames int) {
	for i := 0; i < frames; i++ {
		g.Frame(frameDT)
	}
}
