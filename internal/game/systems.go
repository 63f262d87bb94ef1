package game

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/annel0/tileworld/internal/ecs"
	"github.com/annel0/tileworld/internal/physics"
	"github.com/annel0/tileworld/internal/vec"
	"github.com/annel0/tileworld/internal/world"
	"github.com/annel0/tileworld/internal/world/block"
	"go.uber.org/zap"
)

// EntityRenderer получает от игры то, что нужно нарисовать в этом кадре
type EntityRenderer interface {
	DrawSprite(id ecs.EntityID, sprite string, rect vec.Rect)
	DrawText(text string, pos vec.Vec2Float)
}

const (
	terminalVelocity = 600.0 // пикселей/с
	contactCooldown  = 1.0   // секунд неуязвимости после контакта
	pickupDelay      = 0.3   // дроп нельзя подобрать сразу после появления
	damageTextTTL    = 0.8
	damageTextRise   = 30.0
)

// env - общее состояние, с которым работают системы
type env struct {
	ecs     *ecs.World
	c       *Components
	world   *world.World
	spawner *Spawner
	log     *zap.Logger

	player      ecs.EntityID
	playerSpawn vec.Vec2Float
	health      float64
	strikes     []strike
}

type strike struct {
	point  vec.Vec2Float
	damage float64
}

// solidAround возвращает проверку твёрдости для тайлов вокруг rect.
// Тайлы вне выборки проверяются напрямую через мир.
func (e *env) solidAround(rect vec.Rect) physics.SolidFunc {
	reg := e.world.Registry()
	known := make(map[vec.Vec2]bool)
	for _, t := range e.world.BlocksAround(rect, 1) {
		known[t.Tile] = t.Solid(reg)
	}
	return func(tile vec.Vec2) bool {
		if s, ok := known[tile]; ok {
			return s
		}
		id, ok := e.world.Tile(tile)
		return world.TileRect{ID: id, Present: ok}.Solid(reg)
	}
}

func (e *env) playerComponents() (*Transform, *Hitbox, *Health, *Player, bool) {
	t, ok1 := e.c.Transform.Get(e.player)
	h, ok2 := e.c.Hitbox.Get(e.player)
	hp, ok3 := e.c.Health.Get(e.player)
	p, ok4 := e.c.Player.Get(e.player)
	return t, h, hp, p, ok1 && ok2 && ok3 && ok4
}

// RepositionSystem переносит привязку сущности в чанк, где теперь её центр.
// Глобальные сущности (без привязки) не трогает.
type RepositionSystem struct{ *env }

func (s RepositionSystem) Phase() ecs.Phase { return ecs.PhasePreUpdate }

func (s RepositionSystem) Update(f ecs.Frame) {
	ecs.Each2(s.ecs, f.Visible, s.c.Transform, s.c.Hitbox, func(id ecs.EntityID, aff *vec.Vec2, t *Transform, h *Hitbox) {
		if aff == nil {
			return
		}
		chunk := vec.ChunkOf(vec.PosToTile(h.Rect(t.Pos).Center()))
		if chunk != *aff {
			from := *aff
			s.ecs.Relocate(id, &from, &chunk)
		}
	})
}

// PhysicsSystem применяет гравитацию и двигает сущности с учётом тайлов
type PhysicsSystem struct{ *env }

func (s PhysicsSystem) Phase() ecs.Phase { return ecs.PhaseUpdate }

func (s PhysicsSystem) Update(f ecs.Frame) {
	dt := f.Seconds()
	ecs.Each2(s.ecs, f.Visible, s.c.Transform, s.c.Hitbox, func(id ecs.EntityID, _ *vec.Vec2, t *Transform, h *Hitbox) {
		if t.Gravity > 0 {
			t.Vel.Y = math.Min(t.Vel.Y+t.Gravity*dt, terminalVelocity)
		}
		delta := t.Vel.Mul(dt)
		if delta == (vec.Vec2Float{}) {
			return
		}
		area := h.Rect(t.Pos)
		solid := s.solidAround(vec.Rect{
			X: math.Min(area.X, area.X+delta.X),
			Y: math.Min(area.Y, area.Y+delta.Y),
			W: area.W + math.Abs(delta.X),
			H: area.H + math.Abs(delta.Y),
		})
		res := physics.MoveAndCollide(t.Pos, h.Collider(), delta, solid)
		t.Pos = res.Pos
		if res.HitX {
			t.Vel.X = 0
		}
		t.OnGround = res.HitY && t.Vel.Y > 0
		if res.HitY {
			t.Vel.Y = 0
		}
		if t.OnGround && s.c.Drop.Has(id) {
			t.Vel.X = 0
		}
	})
}

// MobSystem продвигает автоматы состояний мобов
type MobSystem struct {
	*env
	rand *rand.Rand
}

func (s MobSystem) Phase() ecs.Phase { return ecs.PhaseUpdate }

func (s MobSystem) Update(f ecs.Frame) {
	dt := f.Seconds()
	ecs.Each3(s.ecs, f.Visible, s.c.Mob, s.c.Transform, s.c.Hitbox, func(id ecs.EntityID, _ *vec.Vec2, m *Mob, t *Transform, h *Hitbox) {
		collider := h.Collider()
		ctx := &MobContext{
			ID:        id,
			Mob:       m,
			Transform: t,
			Hitbox:    h,
			Rand:      s.rand,
			CanMoveTo: func(pos vec.Vec2Float) bool {
				return physics.CanMoveToPosition(pos, collider, s.solidAround(h.Rect(pos)))
			},
		}
		ctx.Step(dt)
	})
}

// CombatSystem применяет удары игрока и контактный урон мобов
type CombatSystem struct{ *env }

func (s CombatSystem) Phase() ecs.Phase { return ecs.PhaseUpdate }

func (s CombatSystem) Update(f ecs.Frame) {
	for _, st := range s.strikes {
		hit := false
		ecs.Each3(s.ecs, f.Visible, s.c.Health, s.c.Transform, s.c.Hitbox, func(id ecs.EntityID, _ *vec.Vec2, hp *Health, t *Transform, h *Hitbox) {
			if hit || id == s.player || hp.HP <= 0 {
				return
			}
			if !h.Collider().IsPointInside(t.Pos, st.point) {
				return
			}
			hit = true
			hp.HP -= st.damage
			s.damageText(st.damage, h.Rect(t.Pos))
		})
	}
	s.strikes = s.strikes[:0]

	pt, ph, php, pp, ok := s.playerComponents()
	if !ok || pp.HitCooldown > 0 || php.HP <= 0 {
		return
	}
	ecs.Each3(s.ecs, f.Visible, s.c.Mob, s.c.Transform, s.c.Hitbox, func(id ecs.EntityID, _ *vec.Vec2, m *Mob, t *Transform, h *Hitbox) {
		if pp.HitCooldown > 0 || m.ContactDamage <= 0 {
			return
		}
		if !physics.CheckBoxCollision(pt.Pos, ph.Collider(), t.Pos, h.Collider()) {
			return
		}
		php.HP -= m.ContactDamage
		pp.HitCooldown = contactCooldown
		s.damageText(m.ContactDamage, ph.Rect(pt.Pos))
	})
}

func (s CombatSystem) damageText(dmg float64, target vec.Rect) {
	pos := vec.Vec2Float{X: target.Center().X, Y: target.Y}
	s.spawner.SpawnDamageText(fmt.Sprintf("%.0f", dmg), pos)
}

// HealthSystem обрабатывает смерть: мобы оставляют добычу и удаляются,
// игрок возрождается в точке появления
type HealthSystem struct{ *env }

func (s HealthSystem) Phase() ecs.Phase { return ecs.PhasePostUpdate }

func (s HealthSystem) Update(f ecs.Frame) {
	if p, ok := s.c.Player.Get(s.player); ok && p.HitCooldown > 0 {
		p.HitCooldown = math.Max(0, p.HitCooldown-f.Seconds())
	}

	ecs.Each3(s.ecs, nil, s.c.Health, s.c.Transform, s.c.Hitbox, func(id ecs.EntityID, _ *vec.Vec2, hp *Health, t *Transform, h *Hitbox) {
		if hp.HP > 0 {
			return
		}
		if id == s.player {
			hp.HP = hp.Max
			t.Pos = s.playerSpawn
			t.Vel = vec.Vec2Float{}
			s.log.Info("Игрок возрождён", zap.Float64("x", t.Pos.X), zap.Float64("y", t.Pos.Y))
			return
		}
		if loot, ok := s.c.Loot.Get(id); ok {
			center := h.Rect(t.Pos).Center()
			for _, item := range loot.Items {
				s.spawner.SpawnDropAt(item.ID, item.Count, center)
			}
		}
		s.ecs.MarkForDestruction(id)
	})
}

// RenderSystem передаёт отрисовке спрайты и всплывающие надписи видимых сущностей
type RenderSystem struct {
	*env
	renderer EntityRenderer
}

func (s RenderSystem) Phase() ecs.Phase { return ecs.PhaseOutput }

func (s RenderSystem) Update(f ecs.Frame) {
	if s.renderer == nil {
		return
	}
	ecs.Each2(s.ecs, f.Visible, s.c.Transform, s.c.Sprite, func(id ecs.EntityID, _ *vec.Vec2, t *Transform, sp *Sprite) {
		rect := vec.Rect{X: t.Pos.X, Y: t.Pos.Y}
		if h, ok := s.c.Hitbox.Get(id); ok {
			rect = h.Rect(t.Pos)
		}
		s.renderer.DrawSprite(id, sp.Name, rect)
	})
	ecs.Each2(s.ecs, f.Visible, s.c.Transform, s.c.DamageText, func(_ ecs.EntityID, _ *vec.Vec2, t *Transform, d *DamageText) {
		s.renderer.DrawText(d.Text, t.Pos)
	})
}

// DamageTextSystem поднимает надписи урона и удаляет истёкшие
type DamageTextSystem struct{ *env }

func (s DamageTextSystem) Phase() ecs.Phase { return ecs.PhaseOutput }

func (s DamageTextSystem) Update(f ecs.Frame) {
	dt := f.Seconds()
	ecs.Each2(s.ecs, nil, s.c.Transform, s.c.DamageText, func(id ecs.EntityID, _ *vec.Vec2, t *Transform, d *DamageText) {
		d.TTL -= dt
		t.Pos.Y -= d.Rise * dt
		if d.TTL <= 0 {
			s.ecs.MarkForDestruction(id)
		}
	})
}

// PickupSystem складывает в инвентарь игрока дроп в радиусе подбора
type PickupSystem struct {
	*env
	radius float64
}

func (s PickupSystem) Phase() ecs.Phase { return ecs.PhaseOutput }

func (s PickupSystem) Update(f ecs.Frame) {
	dt := f.Seconds()
	pt, ph, _, pp, ok := s.playerComponents()
	if !ok {
		return
	}
	center := ph.Rect(pt.Pos).Center()
	ecs.Each3(s.ecs, f.Visible, s.c.Drop, s.c.Transform, s.c.Hitbox, func(id ecs.EntityID, _ *vec.Vec2, d *Drop, t *Transform, h *Hitbox) {
		d.Age += dt
		if d.Age < pickupDelay || d.Count <= 0 {
			return
		}
		if h.Rect(t.Pos).Center().DistanceTo(center) > s.radius {
			return
		}
		pp.Inventory[d.ID] += d.Count
		d.Count = 0
		s.ecs.MarkForDestruction(id)
	})
}

// CleanupSystem удаляет сущности, помеченные за кадр
type CleanupSystem struct{ *env }

func (s CleanupSystem) Phase() ecs.Phase { return ecs.PhaseCleanup }

func (s CleanupSystem) Update(ecs.Frame) {
	if n := s.ecs.FlushDestroyed(); n > 0 {
		s.log.Debug("Сущности удалены", zap.Int("count", n))
	}
}

// inventoryCopy возвращает копию инвентаря с текстовыми идентификаторами
func inventoryCopy(reg *block.Registry, inv map[block.ID]int) map[string]int {
	out := make(map[string]int, len(inv))
	for id, n := range inv {
		if n > 0 {
			out[reg.Format(id)] = n
		}
	}
	return out
}
