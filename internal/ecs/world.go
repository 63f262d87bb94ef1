package ecs

import (
	"github.com/annel0/tileworld/internal/vec"
	"github.com/zyedidia/generic/mapset"
)

// ChunkSet - набор чанков для ограничения запросов. nil означает "без ограничения".
type ChunkSet map[vec.Vec2]struct{}

// NewChunkSet создаёт набор из перечисленных чанков
func NewChunkSet(chunks ...vec.Vec2) ChunkSet {
	s := make(ChunkSet, len(chunks))
	for _, c := range chunks {
		s[c] = struct{}{}
	}
	return s
}

// Has сообщает, входит ли чанк в набор
func (s ChunkSet) Has(c vec.Vec2) bool {
	_, ok := s[c]
	return ok
}

// allows - сущность без привязки видна всегда, с привязкой - если nil-набор или чанк в наборе
func (s ChunkSet) allows(aff *vec.Vec2) bool {
	if s == nil || aff == nil {
		return true
	}
	return s.Has(*aff)
}

// World - контейнер ECS: пул идентификаторов, хранилища компонентов,
// индекс привязки сущностей к чанкам и очередь отложенного удаления.
type World struct {
	pool     *Pool
	registry *Registry

	affinity map[EntityID]vec.Vec2
	byChunk  map[vec.Vec2]mapset.Set[EntityID]

	destroyQueue []EntityID
}

// NewWorld создаёт пустой мир сущностей
func NewWorld() *World {
	return &World{
		pool:         NewPool(),
		registry:     NewRegistry(),
		affinity:     make(map[EntityID]vec.Vec2),
		byChunk:      make(map[vec.Vec2]mapset.Set[EntityID]),
		destroyQueue: make([]EntityID, 0, 64),
	}
}

func (w *World) Pool() *Pool         { return w.pool }
func (w *World) Registry() *Registry { return w.registry }

// Register подключает хранилище компонентов к удалению сущностей
func (w *World) Register(stores ...Removable) {
	for _, s := range stores {
		w.registry.Register(s)
	}
}

// Create создаёт сущность. affinity == nil - глобальная сущность.
func (w *World) Create(affinity *vec.Vec2) EntityID {
	id := w.pool.Create()
	if affinity != nil {
		w.attach(id, *affinity)
	}
	return id
}

// Option задаёт компонент новой сущности (см. With)
type Option func(id EntityID)

// With записывает копию value в хранилище при создании сущности
func With[T any](s *Store[T], value T) Option {
	return func(id EntityID) {
		v := value
		s.Set(id, &v)
	}
}

// Spawn создаёт сущность с компонентами
func (w *World) Spawn(affinity *vec.Vec2, opts ...Option) EntityID {
	id := w.Create(affinity)
	for _, opt := range opts {
		opt(id)
	}
	return id
}

// Alive сообщает, что сущность существует
func (w *World) Alive(id EntityID) bool {
	return w.pool.Alive(id)
}

// Len возвращает число живых сущностей
func (w *World) Len() int {
	return w.pool.Len()
}

// Affinity возвращает чанк привязки. nil - глобальная или удалённая сущность.
func (w *World) Affinity(id EntityID) *vec.Vec2 {
	c, ok := w.affinity[id]
	if !ok {
		return nil
	}
	return &c
}

// InChunk возвращает сущности, привязанные к чанку, по возрастанию id
func (w *World) InChunk(chunk vec.Vec2) []EntityID {
	set, ok := w.byChunk[chunk]
	if !ok {
		return nil
	}
	ids := make([]EntityID, 0, set.Size())
	set.Each(func(id EntityID) {
		ids = append(ids, id)
	})
	sortIDs(ids)
	return ids
}

// Delete удаляет сущность из всех хранилищ и индекса привязки.
// Для удалённого или несуществующего id ничего не делает и возвращает false.
func (w *World) Delete(id EntityID) bool {
	if !w.pool.Alive(id) {
		return false
	}
	w.registry.RemoveAll(id)
	w.detach(id)
	return w.pool.Destroy(id)
}

// Relocate переносит привязку сущности из from в to, не трогая компоненты.
// Если сущность мертва или её текущая привязка не равна from, возвращает false.
func (w *World) Relocate(id EntityID, from, to *vec.Vec2) bool {
	if !w.pool.Alive(id) {
		return false
	}
	cur, bound := w.affinity[id]
	if bound != (from != nil) || (bound && cur != *from) {
		return false
	}
	if bound {
		w.detach(id)
	}
	if to != nil {
		w.attach(id, *to)
	}
	return true
}

// MarkForDestruction ставит сущность в очередь удаления в конце кадра
func (w *World) MarkForDestruction(id EntityID) {
	w.destroyQueue = append(w.destroyQueue, id)
}

// FlushDestroyed удаляет сущности из очереди и возвращает число удалённых
func (w *World) FlushDestroyed() int {
	n := 0
	for _, id := range w.destroyQueue {
		if w.Delete(id) {
			n++
		}
	}
	w.destroyQueue = w.destroyQueue[:0]
	return n
}

func (w *World) attach(id EntityID, chunk vec.Vec2) {
	w.affinity[id] = chunk
	set, ok := w.byChunk[chunk]
	if !ok {
		set = mapset.New[EntityID]()
		w.byChunk[chunk] = set
	}
	set.Put(id)
}

func (w *World) detach(id EntityID) {
	chunk, ok := w.affinity[id]
	if !ok {
		return
	}
	delete(w.affinity, id)
	if set, ok := w.byChunk[chunk]; ok {
		set.Remove(id)
		if set.Size() == 0 {
			delete(w.byChunk, chunk)
		}
	}
}
