package ecs

// Registry хранит все зарегистрированные хранилища компонентов
type Registry struct {
	stores []Removable
}

func NewRegistry() *Registry {
	return &Registry{
		stores: make([]Removable, 0, 16),
	}
}

// Register добавляет хранилище
func (r *Registry) Register(store Removable) {
	r.stores = append(r.stores, store)
}

// RemoveAll удаляет сущность из всех хранилищ
func (r *Registry) RemoveAll(id EntityID) {
	for _, s := range r.stores {
		s.Remove(id)
	}
}

// Len возвращает число хранилищ
func (r *Registry) Len() int {
	return len(r.stores)
}
