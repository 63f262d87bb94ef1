package ecs

import (
	"fmt"
	"testing"

	"github.com/annel0/tileworld/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type compA struct{ N int }
type compB struct{ N int }
type compC struct{ N int }
type compD struct{ N int }

type fixture struct {
	w          *World
	a          *Store[compA]
	b          *Store[compB]
	c          *Store[compC]
	d          *Store[compD]
	mask       map[EntityID]int
	affinities map[EntityID]*vec.Vec2
}

var (
	chunkX = vec.Vec2{X: 0, Y: 0}
	chunkY = vec.Vec2{X: 5, Y: -3}
)

// newFixture создаёт по сущности на каждое подмножество {A,B,C,D} и каждую
// привязку {нет, X, Y}
func newFixture() *fixture {
	f := &fixture{
		w:          NewWorld(),
		a:          NewStore[compA]("a"),
		b:          NewStore[compB]("b"),
		c:          NewStore[compC]("c"),
		d:          NewStore[compD]("d"),
		mask:       make(map[EntityID]int),
		affinities: make(map[EntityID]*vec.Vec2),
	}
	f.w.Register(f.a, f.b, f.c, f.d)

	for _, aff := range []*vec.Vec2{nil, &chunkX, &chunkY} {
		for mask := 0; mask < 16; mask++ {
			var opts []Option
			if mask&1 != 0 {
				opts = append(opts, With(f.a, compA{mask}))
			}
			if mask&2 != 0 {
				opts = append(opts, With(f.b, compB{mask}))
			}
			if mask&4 != 0 {
				opts = append(opts, With(f.c, compC{mask}))
			}
			if mask&8 != 0 {
				opts = append(opts, With(f.d, compD{mask}))
			}
			id := f.w.Spawn(aff, opts...)
			f.mask[id] = mask
			f.affinities[id] = aff
		}
	}
	return f
}

// expected перебирает все сущности и отбирает подходящие по маске и чанкам
func (f *fixture) expected(need int, chunks ChunkSet) []EntityID {
	var out []EntityID
	for id, m := range f.mask {
		if !f.w.Alive(id) || m&need != need {
			continue
		}
		if aff := f.affinities[id]; chunks != nil && aff != nil && !chunks.Has(*aff) {
			continue
		}
		out = append(out, id)
	}
	sortIDs(out)
	return out
}

func chunkSets() map[string]ChunkSet {
	return map[string]ChunkSet{
		"nil":   nil,
		"empty": NewChunkSet(),
		"X":     NewChunkSet(chunkX),
		"Y":     NewChunkSet(chunkY),
		"XY":    NewChunkSet(chunkX, chunkY),
	}
}

func TestQueryExactness(t *testing.T) {
	f := newFixture()
	require.Equal(t, 48, f.w.Len())

	for label, chunks := range chunkSets() {
		t.Run(label, func(t *testing.T) {
			var got []EntityID
			Each1(f.w, chunks, f.a, func(id EntityID, aff *vec.Vec2, a *compA) {
				assert.Equal(t, f.mask[id], a.N)
				assert.Equal(t, f.affinities[id], aff)
				got = append(got, id)
			})
			assert.Equal(t, f.expected(1, chunks), got, "Each1")

			got = nil
			Each2(f.w, chunks, f.b, f.d, func(id EntityID, _ *vec.Vec2, b *compB, d *compD) {
				assert.Equal(t, b.N, d.N)
				got = append(got, id)
			})
			assert.Equal(t, f.expected(2|8, chunks), got, "Each2")

			got = nil
			Each3(f.w, chunks, f.a, f.b, f.c, func(id EntityID, _ *vec.Vec2, a *compA, b *compB, c *compC) {
				assert.Equal(t, a.N, c.N)
				got = append(got, id)
			})
			assert.Equal(t, f.expected(1|2|4, chunks), got, "Each3")

			got = nil
			Each4(f.w, chunks, f.a, f.b, f.c, f.d, func(id EntityID, _ *vec.Vec2, _ *compA, _ *compB, _ *compC, _ *compD) {
				got = append(got, id)
			})
			assert.Equal(t, f.expected(15, chunks), got, "Each4")
		})
	}
}

func TestQueryAllPairs(t *testing.T) {
	f := newFixture()
	type pair struct {
		need int
		run  func(ChunkSet, func(EntityID))
	}
	pairs := []pair{
		{1 | 2, func(cs ChunkSet, add func(EntityID)) {
			Each2(f.w, cs, f.a, f.b, func(id EntityID, _ *vec.Vec2, _ *compA, _ *compB) { add(id) })
		}},
		{1 | 4, func(cs ChunkSet, add func(EntityID)) {
			Each2(f.w, cs, f.a, f.c, func(id EntityID, _ *vec.Vec2, _ *compA, _ *compC) { add(id) })
		}},
		{4 | 8, func(cs ChunkSet, add func(EntityID)) {
			Each2(f.w, cs, f.c, f.d, func(id EntityID, _ *vec.Vec2, _ *compC, _ *compD) { add(id) })
		}},
		{2 | 4 | 8, func(cs ChunkSet, add func(EntityID)) {
			Each3(f.w, cs, f.b, f.c, f.d, func(id EntityID, _ *vec.Vec2, _ *compB, _ *compC, _ *compD) { add(id) })
		}},
		{8, func(cs ChunkSet, add func(EntityID)) {
			Each1(f.w, cs, f.d, func(id EntityID, _ *vec.Vec2, _ *compD) { add(id) })
		}},
	}
	for i, p := range pairs {
		for label, chunks := range chunkSets() {
			var got []EntityID
			p.run(chunks, func(id EntityID) { got = append(got, id) })
			assert.Equal(t, f.expected(p.need, chunks), got, fmt.Sprintf("запрос %d, чанки %s", i, label))
		}
	}
}

func TestQuerySkipsDeletedDuringIteration(t *testing.T) {
	f := newFixture()
	var visited int
	Each1(f.w, nil, f.a, func(id EntityID, _ *vec.Vec2, _ *compA) {
		visited++
		// удаляем следующую по порядку сущность с A
		for other := range f.mask {
			if other > id && f.a.Has(other) {
				f.w.Delete(other)
				break
			}
		}
	})
	assert.Less(t, visited, 24)
	assert.Positive(t, visited)
}

func TestQueryAfterRelocateAndDelete(t *testing.T) {
	f := newFixture()
	for id, aff := range f.affinities {
		if aff != nil && *aff == chunkX && f.mask[id]&1 != 0 {
			require.True(t, f.w.Relocate(id, aff, &chunkY))
			f.affinities[id] = &chunkY
		}
	}
	for id, m := range f.mask {
		if m == 15 {
			require.True(t, f.w.Delete(id))
		}
	}

	var got []EntityID
	Each1(f.w, NewChunkSet(chunkX), f.a, func(id EntityID, _ *vec.Vec2, _ *compA) {
		got = append(got, id)
	})
	assert.Equal(t, f.expected(1, NewChunkSet(chunkX)), got)
	for _, id := range got {
		assert.Nil(t, f.w.Affinity(id), "в X остались только глобальные сущности с A")
	}
}
