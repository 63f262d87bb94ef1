package world

import (
	"github.com/annel0/tileworld/internal/vec"
	"github.com/annel0/tileworld/internal/world/block"
)

// genFunc позволяет описать генератор прямо в тесте
type genFunc func(g *GenContext)

func (f genFunc) Generate(g *GenContext) { f(g) }

type recordingRenderer struct {
	invalidated []vec.Vec2
}

func (r *recordingRenderer) InvalidateChunk(c vec.Vec2) {
	r.invalidated = append(r.invalidated, c)
}

type drop struct {
	id   block.ID
	tile vec.Vec2
}

type mob struct {
	kind string
	tile vec.Vec2
}

type recordingSpawner struct {
	drops []drop
	mobs  []mob
}

func (s *recordingSpawner) SpawnMob(kind string, tile vec.Vec2) {
	s.mobs = append(s.mobs, mob{kind, tile})
}

func (s *recordingSpawner) SpawnDrop(id block.ID, tile vec.Vec2) {
	s.drops = append(s.drops, drop{id, tile})
}

// emptyWorld - мир без блоков: чанки создаются пустыми, источников света нет
func emptyWorld() *World {
	return New(Options{Seed: 1, Generator: Flat{}})
}

func stoneWorld() *World {
	return New(Options{Seed: 1, Generator: Flat{Fill: block.Stone}})
}

func torch() block.ID { return block.Of(block.TorchBase) }
