package ecs

// EntityID хранит индекс в младших 32 битах и поколение в старших.
// Поколение растёт при удалении, поэтому устаревшие ссылки перестают быть живыми.
// Нулевой EntityID никогда не выдаётся.
type EntityID uint64

// NewEntityID собирает идентификатор из индекса и поколения
func NewEntityID(index, generation uint32) EntityID {
	return EntityID(uint64(generation)<<32 | uint64(index))
}

func (id EntityID) Index() uint32      { return uint32(id) }
func (id EntityID) Generation() uint32 { return uint32(id >> 32) }
func (id EntityID) IsZero() bool       { return id == 0 }

// Pool выдаёт идентификаторы с поколениями и переиспользует освобождённые индексы
type Pool struct {
	generations []uint32
	freeList    []uint32
	alive       int
}

// NewPool создаёт пустой пул
func NewPool() *Pool {
	return &Pool{
		generations: make([]uint32, 0, 256),
		freeList:    make([]uint32, 0, 64),
	}
}

// Create выдаёт новый идентификатор
func (p *Pool) Create() EntityID {
	p.alive++
	if n := len(p.freeList); n > 0 {
		idx := p.freeList[n-1]
		p.freeList = p.freeList[:n-1]
		return NewEntityID(idx, p.generations[idx])
	}
	idx := uint32(len(p.generations))
	p.generations = append(p.generations, 1)
	return NewEntityID(idx, 1)
}

// Alive сообщает, что идентификатор выдан и ещё не удалён
func (p *Pool) Alive(id EntityID) bool {
	idx := id.Index()
	if int(idx) >= len(p.generations) {
		return false
	}
	return p.generations[idx] == id.Generation()
}

// Destroy освобождает идентификатор. Для устаревшего id возвращает false.
func (p *Pool) Destroy(id EntityID) bool {
	if !p.Alive(id) {
		return false
	}
	idx := id.Index()
	p.generations[idx]++
	if p.generations[idx] == 0 {
		// переполнение поколения: 0 зарезервирован
		p.generations[idx] = 1
	}
	p.freeList = append(p.freeList, idx)
	p.alive--
	return true
}

// Len возвращает число живых сущностей
func (p *Pool) Len() int {
	return p.alive
}
