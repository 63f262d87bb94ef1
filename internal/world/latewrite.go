package world

import (
	"sort"

	"github.com/annel0/tileworld/internal/vec"
	"github.com/annel0/tileworld/internal/world/block"
)

// Cond - условие, проверяемое в момент применения отложенной записи
type Cond uint8

const (
	CondAny   Cond = iota // писать всегда
	CondStone             // только поверх обычного камня переднего слоя
	CondEmpty             // только в пустую клетку
)

// LateWrite - запись декорации в ещё не созданный чанк
type LateWrite struct {
	Local vec.Vec2
	ID    block.ID
	Cond  Cond
}

// LateWrites буферизует записи по чанкам до момента их создания.
// Для одной клетки действует последняя запись.
type LateWrites struct {
	pending map[vec.Vec2]map[vec.Vec2]LateWrite
	total   int
}

// NewLateWrites создаёт пустой буфер
func NewLateWrites() *LateWrites {
	return &LateWrites{pending: make(map[vec.Vec2]map[vec.Vec2]LateWrite)}
}

// Add откладывает запись в чанк chunk
func (l *LateWrites) Add(chunk vec.Vec2, w LateWrite) {
	m, ok := l.pending[chunk]
	if !ok {
		m = make(map[vec.Vec2]LateWrite)
		l.pending[chunk] = m
	}
	if _, dup := m[w.Local]; !dup {
		l.total++
	}
	m[w.Local] = w
}

// Take забирает и удаляет записи чанка в порядке (y, x)
func (l *LateWrites) Take(chunk vec.Vec2) []LateWrite {
	m, ok := l.pending[chunk]
	if !ok {
		return nil
	}
	delete(l.pending, chunk)
	l.total -= len(m)

	out := make([]LateWrite, 0, len(m))
	for _, w := range m {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Local.Less(out[j].Local)
	})
	return out
}

// Pending возвращает число отложенных записей чанка
func (l *LateWrites) Pending(chunk vec.Vec2) int {
	return len(l.pending[chunk])
}

// Len возвращает общее число отложенных записей
func (l *LateWrites) Len() int {
	return l.total
}

// allows проверяет условие записи против текущего блока переднего слоя
func (c Cond) allows(reg *block.Registry, fore block.ID) bool {
	switch c {
	case CondStone:
		return fore == block.Stone
	case CondEmpty:
		return reg.IsEmpty(fore)
	}
	return true
}
