package light

import (
	"fmt"
	"sort"

	"github.com/annel0/tileworld/internal/vec"
	"github.com/zyedidia/generic/mapset"
)

// Attribution - двунаправленный индекс "источник света -> освещённые им тайлы".
// Прямой индекс (тайл -> источник) и обратный (источник -> дети) меняются только
// через методы этого типа, поэтому не могут разойтись.
type Attribution struct {
	source   map[vec.Vec2]vec.Vec2
	children map[vec.Vec2]mapset.Set[vec.Vec2]
}

// NewAttribution создаёт пустой индекс
func NewAttribution() *Attribution {
	return &Attribution{
		source:   make(map[vec.Vec2]vec.Vec2),
		children: make(map[vec.Vec2]mapset.Set[vec.Vec2]),
	}
}

// Attach приписывает тайл источнику. Предыдущая привязка снимается.
func (a *Attribution) Attach(child, src vec.Vec2) {
	if prev, ok := a.source[child]; ok {
		if prev == src {
			return
		}
		a.unlink(child, prev)
	}
	a.source[child] = src
	set, ok := a.children[src]
	if !ok {
		set = mapset.New[vec.Vec2]()
		a.children[src] = set
	}
	set.Put(child)
}

// Detach снимает привязку тайла и возвращает бывший источник
func (a *Attribution) Detach(child vec.Vec2) (vec.Vec2, bool) {
	src, ok := a.source[child]
	if !ok {
		return vec.Vec2{}, false
	}
	delete(a.source, child)
	a.unlink(child, src)
	return src, true
}

func (a *Attribution) unlink(child, src vec.Vec2) {
	set, ok := a.children[src]
	if !ok {
		return
	}
	set.Remove(child)
	if set.Size() == 0 {
		delete(a.children, src)
	}
}

// Source возвращает источник, которому приписан тайл
func (a *Attribution) Source(child vec.Vec2) (vec.Vec2, bool) {
	src, ok := a.source[child]
	return src, ok
}

// Children возвращает детей источника в порядке (y, x)
func (a *Attribution) Children(src vec.Vec2) []vec.Vec2 {
	set, ok := a.children[src]
	if !ok {
		return nil
	}
	out := make([]vec.Vec2, 0, set.Size())
	set.Each(func(c vec.Vec2) {
		out = append(out, c)
	})
	sortTiles(out)
	return out
}

// RemoveSource отвязывает всех детей источника и возвращает их в порядке (y, x).
func (a *Attribution) RemoveSource(src vec.Vec2) []vec.Vec2 {
	kids := a.Children(src)
	for _, c := range kids {
		delete(a.source, c)
	}
	delete(a.children, src)
	return kids
}

// Len - количество привязанных тайлов
func (a *Attribution) Len() int {
	return len(a.source)
}

// Sources - количество источников, у которых есть дети
func (a *Attribution) Sources() int {
	return len(a.children)
}

// Validate проверяет согласованность прямого и обратного индексов.
func (a *Attribution) Validate() error {
	total := 0
	for src, set := range a.children {
		if set.Size() == 0 {
			return fmt.Errorf("source %v has empty children set", src)
		}
		var err error
		set.Each(func(c vec.Vec2) {
			if err != nil {
				return
			}
			if got, ok := a.source[c]; !ok || got != src {
				err = fmt.Errorf("child %v listed under %v but attributed to %v (%t)", c, src, got, ok)
			}
		})
		if err != nil {
			return err
		}
		total += set.Size()
	}
	if total != len(a.source) {
		return fmt.Errorf("forward index has %d entries, reverse index %d", len(a.source), total)
	}
	return nil
}

func sortTiles(ts []vec.Vec2) {
	sort.Slice(ts, func(i, j int) bool {
		return ts[i].Less(ts[j])
	})
}
