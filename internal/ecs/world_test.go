package ecs

import (
	"testing"

	"github.com/annel0/tileworld/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type position struct{ X, Y float64 }
type name struct{ Value string }

func chunkPtr(x, y int) *vec.Vec2 {
	return &vec.Vec2{X: x, Y: y}
}

func TestSpawnAndDelete(t *testing.T) {
	w := NewWorld()
	pos := NewStore[position]("position")
	names := NewStore[name]("name")
	w.Register(pos, names)

	id := w.Spawn(chunkPtr(1, 2), With(pos, position{X: 3}), With(names, name{"bee"}))
	require.True(t, w.Alive(id))
	p, ok := pos.Get(id)
	require.True(t, ok)
	assert.Equal(t, 3.0, p.X)
	assert.Equal(t, &vec.Vec2{X: 1, Y: 2}, w.Affinity(id))
	assert.Equal(t, []EntityID{id}, w.InChunk(vec.Vec2{X: 1, Y: 2}))

	require.True(t, w.Delete(id))
	assert.False(t, w.Alive(id))
	assert.False(t, pos.Has(id))
	assert.False(t, names.Has(id))
	assert.Nil(t, w.Affinity(id))
	assert.Empty(t, w.InChunk(vec.Vec2{X: 1, Y: 2}))

	assert.False(t, w.Delete(id), "удаление мёртвой сущности ничего не делает")
	assert.Zero(t, w.Len())
}

func TestWithCopiesValue(t *testing.T) {
	w := NewWorld()
	pos := NewStore[position]("position")
	v := position{X: 1}
	a := w.Spawn(nil, With(pos, v))
	b := w.Spawn(nil, With(pos, v))
	pa, _ := pos.Get(a)
	pa.X = 10
	pb, _ := pos.Get(b)
	assert.Equal(t, 1.0, pb.X, "каждая сущность получает свою копию")
}

func TestRelocate(t *testing.T) {
	w := NewWorld()
	pos := NewStore[position]("position")
	w.Register(pos)
	id := w.Spawn(chunkPtr(0, 0), With(pos, position{X: 5}))

	assert.False(t, w.Relocate(id, chunkPtr(1, 1), chunkPtr(2, 2)), "старая привязка не совпадает")
	assert.False(t, w.Relocate(id, nil, chunkPtr(2, 2)), "сущность не глобальная")
	assert.Equal(t, &vec.Vec2{}, w.Affinity(id))

	require.True(t, w.Relocate(id, chunkPtr(0, 0), chunkPtr(1, 0)))
	assert.Equal(t, &vec.Vec2{X: 1}, w.Affinity(id))
	assert.Empty(t, w.InChunk(vec.Vec2{}))
	assert.Equal(t, []EntityID{id}, w.InChunk(vec.Vec2{X: 1}))
	p, _ := pos.Get(id)
	assert.Equal(t, 5.0, p.X, "компоненты не трогаются")

	require.True(t, w.Relocate(id, chunkPtr(1, 0), nil))
	assert.Nil(t, w.Affinity(id))
	require.True(t, w.Relocate(id, nil, chunkPtr(-1, -1)))
	assert.Equal(t, &vec.Vec2{X: -1, Y: -1}, w.Affinity(id))

	require.True(t, w.Delete(id))
	assert.False(t, w.Relocate(id, chunkPtr(-1, -1), nil), "мёртвая сущность")
}

func TestDeferredDestruction(t *testing.T) {
	w := NewWorld()
	pos := NewStore[position]("position")
	w.Register(pos)
	a := w.Spawn(nil, With(pos, position{}))
	b := w.Spawn(nil, With(pos, position{}))

	w.MarkForDestruction(a)
	w.MarkForDestruction(a)
	assert.True(t, w.Alive(a), "до сброса очереди сущность жива")

	assert.Equal(t, 1, w.FlushDestroyed())
	assert.False(t, w.Alive(a))
	assert.True(t, w.Alive(b))
	assert.Equal(t, 1, pos.Len())
	assert.Zero(t, w.FlushDestroyed())
}
