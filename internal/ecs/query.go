package ecs

import "github.com/annel0/tileworld/internal/vec"

// keyed - то, что запросу нужно знать о хранилище независимо от типа компонента
type keyed interface {
	Len() int
	Has(id EntityID) bool
	IDs() []EntityID
}

// match возвращает по возрастанию id живые сущности, у которых есть компоненты
// всех хранилищ и привязка которых разрешена набором чанков.
// Перебирается самое маленькое хранилище, остальные только проверяются.
func match(w *World, chunks ChunkSet, stores ...keyed) []EntityID {
	smallest := stores[0]
	for _, s := range stores[1:] {
		if s.Len() < smallest.Len() {
			smallest = s
		}
	}

	ids := smallest.IDs()
	out := ids[:0]
	for _, id := range ids {
		if !w.pool.Alive(id) || !hasAll(id, stores) {
			continue
		}
		if chunks != nil {
			if c, bound := w.affinity[id]; bound && !chunks.Has(c) {
				continue
			}
		}
		out = append(out, id)
	}
	return out
}

func hasAll(id EntityID, stores []keyed) bool {
	for _, s := range stores {
		if !s.Has(id) {
			return false
		}
	}
	return true
}

// Each1 обходит сущности с компонентом A.
// Компоненты, удалённые предыдущими вызовами fn, пропускаются.
func Each1[A any](w *World, chunks ChunkSet, sa *Store[A], fn func(EntityID, *vec.Vec2, *A)) {
	for _, id := range match(w, chunks, sa) {
		a, ok := sa.Get(id)
		if !ok {
			continue
		}
		fn(id, w.Affinity(id), a)
	}
}

// Each2 обходит сущности, у которых есть A и B
func Each2[A, B any](w *World, chunks ChunkSet, sa *Store[A], sb *Store[B], fn func(EntityID, *vec.Vec2, *A, *B)) {
	for _, id := range match(w, chunks, sa, sb) {
		a, okA := sa.Get(id)
		b, okB := sb.Get(id)
		if !okA || !okB {
			continue
		}
		fn(id, w.Affinity(id), a, b)
	}
}

// Each3 обходит сущности, у которых есть A, B и C
func Each3[A, B, C any](w *World, chunks ChunkSet, sa *Store[A], sb *Store[B], sc *Store[C], fn func(EntityID, *vec.Vec2, *A, *B, *C)) {
	for _, id := range match(w, chunks, sa, sb, sc) {
		a, okA := sa.Get(id)
		b, okB := sb.Get(id)
		c, okC := sc.Get(id)
		if !okA || !okB || !okC {
			continue
		}
		fn(id, w.Affinity(id), a, b, c)
	}
}

// Each4 обходит сущности, у которых есть все четыре компонента
func Each4[A, B, C, D any](w *World, chunks ChunkSet, sa *Store[A], sb *Store[B], sc *Store[C], sd *Store[D], fn func(EntityID, *vec.Vec2, *A, *B, *C, *D)) {
	for _, id := range match(w, chunks, sa, sb, sc, sd) {
		a, okA := sa.Get(id)
		b, okB := sb.Get(id)
		c, okC := sc.Get(id)
		d, okD := sd.Get(id)
		if !okA || !okB || !okC || !okD {
			continue
		}
		fn(id, w.Affinity(id), a, b, c, d)
	}
}
