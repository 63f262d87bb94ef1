// Package light реализует освещение тайлового мира: BFS-распространение от
// нескольких источников по принципу "ярчайший побеждает" и инкрементальное
// снятие света при удалении источника с переназначением освещённых тайлов.
package light

import (
	"fmt"
	"sort"

	"github.com/annel0/tileworld/internal/vec"
	"github.com/annel0/tileworld/internal/world/block"
	"github.com/zyedidia/generic/queue"
)

// MaxLevel - уровни освещения лежат в [0, MaxLevel)
const MaxLevel = block.MaxLight

// DefaultSearchRadius - радиус в чанках, в котором ищутся источники-замены
const DefaultSearchRadius = 2

// Grid - хранилище уровней света и источников. Все координаты - абсолютные тайлы.
type Grid interface {
	// Level возвращает уровень света тайла, 0 если не записан
	Level(tile vec.Vec2) int
	// SetLevel записывает уровень света, создавая запись чанка при необходимости
	SetLevel(tile vec.Vec2, level int)
	// Emitter сообщает, является ли тайл источником света
	Emitter(tile vec.Vec2) (power, falloff int, ok bool)
	// Emitters перечисляет источники чанка построчно: y снаружи, x внутри
	Emitters(chunk vec.Vec2) []vec.Vec2
}

// Stats - счётчики работы движка
type Stats struct {
	Updates   uint64 // вызовы UpdateLightmap
	Enqueued  uint64 // элементы, прошедшие через очередь BFS
	PeakQueue int    // максимальная длина очереди
	Reassigns uint64 // дети, переназначенные при снятии источника
}

type item struct {
	tile    vec.Vec2
	level   int
	src     vec.Vec2
	falloff int
}

// Engine распространяет и снимает свет на Grid
type Engine struct {
	grid Grid
	attr *Attribution

	// OnChange вызывается на каждое изменение уровня тайла
	OnChange func(tile vec.Vec2)
	// SearchRadius - радиус поиска замен при снятии источника, в чанках
	SearchRadius int

	stats Stats
}

// NewEngine создаёт движок поверх Grid
func NewEngine(grid Grid) *Engine {
	return &Engine{
		grid:         grid,
		attr:         NewAttribution(),
		SearchRadius: DefaultSearchRadius,
	}
}

// Attribution возвращает индекс привязок (только для чтения)
func (e *Engine) Attribution() *Attribution {
	return e.attr
}

// Stats возвращает накопленные счётчики
func (e *Engine) Stats() Stats {
	return e.stats
}

// Level возвращает уровень света тайла
func (e *Engine) Level(tile vec.Vec2) int {
	return e.grid.Level(tile)
}

// UpdateLightmap - единственная точка изменения уровня света. Если src задан,
// тайл приписывается ему (с отвязкой от прежнего), иначе привязка снимается.
func (e *Engine) UpdateLightmap(tile vec.Vec2, level int, src *vec.Vec2) {
	if level < 0 {
		level = 0
	}
	if level >= MaxLevel {
		level = MaxLevel - 1
	}
	e.grid.SetLevel(tile, level)
	if src != nil && level > 0 {
		e.attr.Attach(tile, *src)
	} else {
		e.attr.Detach(tile)
	}
	e.stats.Updates++
	if e.OnChange != nil {
		e.OnChange(tile)
	}
}

// Propagate распространяет свет от всех источников чанка. Источники засеваются
// построчно, поэтому при равной силе и равном расстоянии тайл достаётся источнику
// с меньшими (y, x).
func (e *Engine) Propagate(chunk vec.Vec2) {
	q := queue.New[item]()
	n := 0
	for _, src := range e.grid.Emitters(chunk) {
		if e.seed(q, src) {
			n++
		}
	}
	e.drain(q, n)
}

// PropagateFrom распространяет свет от одного (нового) источника
func (e *Engine) PropagateFrom(src vec.Vec2) {
	q := queue.New[item]()
	if e.seed(q, src) {
		e.drain(q, 1)
	}
}

func (e *Engine) seed(q *queue.Queue[item], src vec.Vec2) bool {
	power, falloff, ok := e.grid.Emitter(src)
	if !ok || power <= 0 {
		return false
	}
	if power >= MaxLevel {
		power = MaxLevel - 1
	}
	if falloff < 1 {
		falloff = 1
	}
	cur := e.grid.Level(src)
	if cur > power {
		// тайл источника уже освещён ярче - его вклад нигде не победит
		return false
	}
	if power > cur {
		e.UpdateLightmap(src, power, &src)
	}
	q.Enqueue(item{tile: src, level: power, src: src, falloff: falloff})
	return true
}

func (e *Engine) drain(q *queue.Queue[item], size int) {
	if size > e.stats.PeakQueue {
		e.stats.PeakQueue = size
	}
	for !q.Empty() {
		it := q.Dequeue()
		size--
		e.stats.Enqueued++

		// устаревший элемент: тайл уже перезаписан более ярким источником
		if e.grid.Level(it.tile) > it.level {
			continue
		}
		next := it.level - it.falloff
		if next <= 0 {
			continue
		}
		for _, n := range it.tile.Neighbors4() {
			if next <= e.grid.Level(n) {
				continue
			}
			src := it.src
			e.UpdateLightmap(n, next, &src)
			q.Enqueue(item{tile: n, level: next, src: it.src, falloff: it.falloff})
			size++
		}
		if size > e.stats.PeakQueue {
			e.stats.PeakQueue = size
		}
	}
}

type candidate struct {
	pos            vec.Vec2
	power, falloff int
}

// Depropagate снимает свет удалённого (или перезаписанного) источника. Каждый
// его ребёнок переназначается источнику с наибольшим вкладом power-falloff*d
// среди источников в радиусе SearchRadius чанков; при равенстве выигрывает
// источник с меньшими (y, x). Если положительного вклада нет, уровень сбрасывается в 0.
func (e *Engine) Depropagate(src vec.Vec2) {
	children := e.attr.RemoveSource(src)
	if len(children) == 0 {
		return
	}

	reach := 0
	for _, c := range children {
		if d := c.Manhattan(src); d > reach {
			reach = d
		}
	}
	cands := e.candidates(src, reach)

	for _, c := range children {
		best := 0
		var bestPos vec.Vec2
		for _, s := range cands {
			if v := s.power - s.falloff*s.pos.Manhattan(c); v > best {
				best = v
				bestPos = s.pos
			}
		}
		e.stats.Reassigns++
		if best > 0 {
			e.UpdateLightmap(c, best, &bestPos)
		} else {
			e.UpdateLightmap(c, 0, nil)
		}
	}
}

// candidates собирает источники вокруг src, способные дотянуться до тайлов
// на расстоянии не больше reach от него. Результат упорядочен по (y, x).
func (e *Engine) candidates(src vec.Vec2, reach int) []candidate {
	center := vec.ChunkOf(src)
	r := e.SearchRadius
	var out []candidate
	for cy := center.Y - r; cy <= center.Y+r; cy++ {
		for cx := center.X - r; cx <= center.X+r; cx++ {
			for _, p := range e.grid.Emitters(vec.Vec2{X: cx, Y: cy}) {
				if p == src {
					continue
				}
				power, falloff, ok := e.grid.Emitter(p)
				if !ok || power <= 0 {
					continue
				}
				if power >= MaxLevel {
					power = MaxLevel - 1
				}
				if falloff < 1 {
					falloff = 1
				}
				// дальше reach + power/falloff вклад источника нулевой
				if p.Manhattan(src) > reach+power/falloff {
					continue
				}
				out = append(out, candidate{pos: p, power: power, falloff: falloff})
			}
		}
	}
	// обход чанков уже построчный, но внутри строки чанков порядок (y, x) нарушен
	sortCandidates(out)
	return out
}

func sortCandidates(cs []candidate) {
	sort.Slice(cs, func(i, j int) bool {
		return cs[i].pos.Less(cs[j].pos)
	})
}

// Check проверяет, что каждый привязанный тайл освещён ровно настолько, насколько
// его источник может обосновать расстоянием, и что индексы согласованы.
func (e *Engine) Check() error {
	if err := e.attr.Validate(); err != nil {
		return err
	}
	for child, src := range e.attr.source {
		power, falloff, ok := e.grid.Emitter(src)
		if !ok {
			return fmt.Errorf("tile %v attributed to %v which is not a light source", child, src)
		}
		if power >= MaxLevel {
			power = MaxLevel - 1
		}
		want := power - falloff*child.Manhattan(src)
		if got := e.grid.Level(child); got != want || got <= 0 {
			return fmt.Errorf("tile %v: level %d, source %v justifies %d", child, got, src, want)
		}
	}
	return nil
}
