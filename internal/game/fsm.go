package game

import (
	"math"
	"math/rand"

	"github.com/annel0/tileworld/internal/ecs"
	"github.com/annel0/tileworld/internal/vec"
)

// MobState представляет состояние конечного автомата моба
type MobState interface {
	Name() string
	Enter(m *MobContext)
	Update(m *MobContext, dt float64) MobState
	Exit(m *MobContext)
}

// MobContext - то, с чем состояние работает в течение одного кадра
type MobContext struct {
	ID        ecs.EntityID
	Mob       *Mob
	Transform *Transform
	Hitbox    *Hitbox
	Rand      *rand.Rand
	// CanMoveTo сообщает, поместится ли хитбокс в позицию
	CanMoveTo func(pos vec.Vec2Float) bool
}

// Step продвигает автомат моба на dt секунд
func (m *MobContext) Step(dt float64) {
	if m.Mob.State == nil {
		m.SetState(NewIdleState(m.Rand))
	}
	next := m.Mob.State.Update(m, dt)
	if next != m.Mob.State {
		m.SetState(next)
	}
	if m.Mob.Hover {
		m.Transform.Phase += dt
		m.Transform.Vel.Y += hoverAmplitude * math.Sin(m.Transform.Phase*hoverFrequency)
	}
}

// SetState устанавливает новое состояние моба
func (m *MobContext) SetState(state MobState) {
	if m.Mob.State != nil {
		m.Mob.State.Exit(m)
	}
	m.Mob.State = state
	if state != nil {
		state.Enter(m)
	}
}

// Покачивание парящих мобов поверх скорости состояния
const (
	hoverAmplitude = 12.0 // пикселей/с
	hoverFrequency = 3.0  // рад/с
)

// === Конкретные состояния ===

// IdleState - состояние бездействия
type IdleState struct {
	TimeInState float64
	MaxIdleTime float64
}

// NewIdleState создаёт новое состояние бездействия
func NewIdleState(r *rand.Rand) *IdleState {
	return &IdleState{
		MaxIdleTime: 2.0 + r.Float64()*3.0, // 2-5 секунд
	}
}

func (s *IdleState) Name() string { return "idle" }

func (s *IdleState) Enter(m *MobContext) {
	s.TimeInState = 0
	m.Transform.Vel.X = 0
	if m.Mob.Hover {
		m.Transform.Vel.Y = 0
	}
}

func (s *IdleState) Update(m *MobContext, dt float64) MobState {
	s.TimeInState += dt
	if m.Mob.Hover {
		m.Transform.Vel.Y = 0
	}
	if s.TimeInState >= s.MaxIdleTime {
		return NewWanderState(m.Rand)
	}
	return s
}

func (s *IdleState) Exit(m *MobContext) {}

// WanderState - состояние блуждания к случайной точке
type WanderState struct {
	Target        vec.Vec2Float
	TimeInState   float64
	MaxWanderTime float64

	angle    float64
	distance float64
}

// NewWanderState создаёт новое состояние блуждания
func NewWanderState(r *rand.Rand) *WanderState {
	return &WanderState{
		MaxWanderTime: 3.0 + r.Float64()*5.0, // 3-8 секунд
		angle:         r.Float64() * 2 * math.Pi,
		distance:      (2.0 + r.Float64()*3.0) * vec.TileSize, // 2-5 тайлов
	}
}

func (s *WanderState) Name() string { return "wander" }

func (s *WanderState) Enter(m *MobContext) {
	s.TimeInState = 0
	dy := s.distance * math.Sin(s.angle)
	if !m.Mob.Hover {
		dy = 0
	}
	s.Target = m.Transform.Pos.Add(vec.Vec2Float{X: s.distance * math.Cos(s.angle), Y: dy})
}

// arriveDistance - ближе этого цель считается достигнутой
const arriveDistance = 2.0

func (s *WanderState) Update(m *MobContext, dt float64) MobState {
	s.TimeInState += dt
	toTarget := s.Target.Sub(m.Transform.Pos)
	if s.TimeInState >= s.MaxWanderTime || toTarget.Length() < arriveDistance {
		return NewIdleState(m.Rand)
	}

	dir := toTarget.Normalized().Mul(m.Mob.Speed)
	next := m.Transform.Pos.Add(dir.Mul(dt))
	if m.CanMoveTo != nil && !m.CanMoveTo(next) {
		// упёрлись в блок
		return NewIdleState(m.Rand)
	}

	m.Transform.Vel.X = dir.X
	if m.Mob.Hover {
		m.Transform.Vel.Y = dir.Y
	}
	return s
}

func (s *WanderState) Exit(m *MobContext) {
	m.Transform.Vel.X = 0
}
