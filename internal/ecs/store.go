package ecs

import "sort"

// Removable реализуют все хранилища компонентов, чтобы World мог удалить
// данные сущности из каждого из них.
type Removable interface {
	Remove(id EntityID)
}

// Store - типизированная таблица компонентов одного вида
type Store[T any] struct {
	name string
	data map[EntityID]*T
}

// NewStore создаёт хранилище. name используется в снимках и логах.
func NewStore[T any](name string) *Store[T] {
	return &Store[T]{
		name: name,
		data: make(map[EntityID]*T, 64),
	}
}

// Name возвращает имя вида компонента
func (s *Store[T]) Name() string { return s.name }

// Set записывает компонент сущности
func (s *Store[T]) Set(id EntityID, c *T) {
	s.data[id] = c
}

// Get возвращает компонент сущности
func (s *Store[T]) Get(id EntityID) (*T, bool) {
	c, ok := s.data[id]
	return c, ok
}

func (s *Store[T]) Remove(id EntityID) {
	delete(s.data, id)
}

func (s *Store[T]) Has(id EntityID) bool {
	_, ok := s.data[id]
	return ok
}

func (s *Store[T]) Len() int {
	return len(s.data)
}

// Each обходит компоненты по возрастанию id
func (s *Store[T]) Each(fn func(EntityID, *T)) {
	for _, id := range s.IDs() {
		if c, ok := s.data[id]; ok {
			fn(id, c)
		}
	}
}

// IDs возвращает идентификаторы по возрастанию
func (s *Store[T]) IDs() []EntityID {
	ids := make([]EntityID, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sortIDs(ids)
	return ids
}

func sortIDs(ids []EntityID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
