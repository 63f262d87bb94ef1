package ecs

import (
	"sort"
	"time"
)

// Phase задаёт порядок систем внутри кадра
type Phase int

const (
	PhasePreUpdate  Phase = iota // привязка к чанкам
	PhaseUpdate                  // физика, ИИ, бой
	PhasePostUpdate              // здоровье, смерть
	PhaseOutput                  // передача отрисовке, эффекты, подбор
	PhaseCleanup                 // удаление помеченных сущностей
)

// Frame - входные данные кадра для систем
type Frame struct {
	Index   uint64
	DT      time.Duration
	Visible ChunkSet // видимые чанки; системы ограничивают ими запросы
}

// Seconds возвращает длительность кадра в секундах
func (f Frame) Seconds() float64 {
	return f.DT.Seconds()
}

// System - интерфейс, который реализует каждая система
type System interface {
	Phase() Phase
	Update(f Frame)
}

// Runner выполняет системы по фазам. Внутри фазы сохраняется порядок регистрации.
type Runner struct {
	systems []System
	sorted  bool
}

func NewRunner() *Runner {
	return &Runner{
		systems: make([]System, 0, 16),
	}
}

func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	r.sorted = false
}

// Tick выполняет все системы
func (r *Runner) Tick(f Frame) {
	r.ensureSorted()
	for _, s := range r.systems {
		s.Update(f)
	}
}

// Systems возвращает системы в порядке выполнения
func (r *Runner) Systems() []System {
	r.ensureSorted()
	return append([]System(nil), r.systems...)
}

func (r *Runner) ensureSorted() {
	if !r.sorted {
		sort.SliceStable(r.systems, func(i, j int) bool {
			return r.systems[i].Phase() < r.systems[j].Phase()
		})
		r.sorted = true
	}
}
