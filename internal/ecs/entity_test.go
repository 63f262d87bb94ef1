package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolGenerations(t *testing.T) {
	p := NewPool()
	a := p.Create()
	b := p.Create()
	assert.False(t, a.IsZero(), "нулевой id не выдаётся")
	assert.Equal(t, uint32(0), a.Index())
	assert.Equal(t, uint32(1), b.Index())
	assert.Equal(t, 2, p.Len())

	require.True(t, p.Destroy(a))
	assert.False(t, p.Alive(a))
	assert.False(t, p.Destroy(a), "повторное удаление - no-op")

	c := p.Create()
	assert.Equal(t, a.Index(), c.Index(), "индекс переиспользуется")
	assert.Equal(t, a.Generation()+1, c.Generation())
	assert.NotEqual(t, a, c)
	assert.True(t, p.Alive(c))
	assert.False(t, p.Alive(a), "старая ссылка остаётся мёртвой")
	assert.False(t, p.Alive(NewEntityID(99, 1)))
	assert.Equal(t, 2, p.Len())
}

func TestStoreEachAscending(t *testing.T) {
	s := NewStore[int]("n")
	for _, id := range []EntityID{NewEntityID(5, 1), NewEntityID(1, 1), NewEntityID(3, 2)} {
		v := int(id.Index())
		s.Set(id, &v)
	}
	var seen []uint32
	s.Each(func(id EntityID, v *int) {
		seen = append(seen, id.Index())
		assert.Equal(t, int(id.Index()), *v)
	})
	assert.Equal(t, []uint32{1, 5, 3}, seen, "порядок по возрастанию id: поколение в старших битах")
	assert.Equal(t, "n", s.Name())

	s.Remove(NewEntityID(5, 1))
	assert.False(t, s.Has(NewEntityID(5, 1)))
	assert.Equal(t, 2, s.Len())
}
