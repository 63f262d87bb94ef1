package game

import (
	"math/rand"

	"github.com/annel0/tileworld/internal/ecs"
	"github.com/annel0/tileworld/internal/vec"
	"github.com/annel0/tileworld/internal/world"
	"github.com/annel0/tileworld/internal/world/block"
	"go.uber.org/zap"
)

// MobKind - описание вида моба
type MobKind struct {
	Sprite        string
	Size          vec.Vec2Float
	Health        float64
	Speed         float64
	Hover         bool
	ContactDamage float64
	Loot          []LootItem
}

// MobKinds - известные виды мобов
var MobKinds = map[string]MobKind{
	world.MobBee: {
		Sprite:        "mobs/bee",
		Size:          vec.Vec2Float{X: 24, Y: 20},
		Health:        100,
		Speed:         40,
		Hover:         true,
		ContactDamage: 5,
		Loot:          []LootItem{{ID: block.Of(block.AppleBase), Count: 1}},
	},
}

// Параметры дропа
const (
	dropSize    = 12.0
	dropGravity = 900.0
	dropToss    = 40.0 // разброс начальной скорости по X, пикселей/с
)

// Spawner создаёт сущности по запросам мира. Реализует world.Spawner.
type Spawner struct {
	ecs  *ecs.World
	c    *Components
	reg  *block.Registry
	rand *rand.Rand
	log  *zap.Logger

	mobs  int
	drops int
}

// NewSpawner создаёт спавнер поверх мира сущностей
func NewSpawner(w *ecs.World, c *Components, reg *block.Registry, r *rand.Rand, log *zap.Logger) *Spawner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Spawner{ecs: w, c: c, reg: reg, rand: r, log: log}
}

// SpawnMob создаёт моба в тайле. Неизвестный вид игнорируется.
func (s *Spawner) SpawnMob(kind string, tile vec.Vec2) {
	k, ok := MobKinds[kind]
	if !ok {
		s.log.Warn("Неизвестный вид моба", zap.String("kind", kind))
		return
	}
	s.SpawnMobAt(kind, k, vec.TileToWorld(tile))
}

// SpawnMobAt создаёт моба вида k с левым верхним углом хитбокса в pos
func (s *Spawner) SpawnMobAt(kind string, k MobKind, pos vec.Vec2Float) ecs.EntityID {
	gravity := 0.0
	if !k.Hover {
		gravity = dropGravity
	}
	opts := []ecs.Option{
		ecs.With(s.c.Transform, Transform{Pos: pos, Gravity: gravity, Phase: s.rand.Float64() * 6}),
		ecs.With(s.c.Hitbox, Hitbox{W: k.Size.X, H: k.Size.Y}),
		ecs.With(s.c.Sprite, Sprite{Name: k.Sprite}),
		ecs.With(s.c.Health, Health{HP: k.Health, Max: k.Health}),
		ecs.With(s.c.Mob, Mob{Kind: kind, Speed: k.Speed, Hover: k.Hover, ContactDamage: k.ContactDamage}),
	}
	if len(k.Loot) > 0 {
		opts = append(opts, ecs.With(s.c.Loot, Loot{Items: append([]LootItem(nil), k.Loot...)}))
	}
	id := s.ecs.Spawn(chunkAt(pos), opts...)
	s.mobs++
	s.log.Debug("Моб создан", zap.String("kind", kind), zap.Uint64("entity", uint64(id)),
		zap.Float64("x", pos.X), zap.Float64("y", pos.Y))
	return id
}

// SpawnDrop создаёт предмет в центре тайла
func (s *Spawner) SpawnDrop(id block.ID, tile vec.Vec2) {
	if id.IsZero() {
		return
	}
	center := vec.TileRect(tile).Center()
	s.SpawnDropAt(id, 1, center)
}

// SpawnDropAt создаёт count предметов id с центром в center
func (s *Spawner) SpawnDropAt(id block.ID, count int, center vec.Vec2Float) ecs.EntityID {
	pos := center.Sub(vec.Vec2Float{X: dropSize / 2, Y: dropSize / 2})
	vel := vec.Vec2Float{X: (s.rand.Float64()*2 - 1) * dropToss}
	e := s.ecs.Spawn(chunkAt(pos),
		ecs.With(s.c.Transform, Transform{Pos: pos, Vel: vel, Gravity: dropGravity}),
		ecs.With(s.c.Hitbox, Hitbox{W: dropSize, H: dropSize}),
		ecs.With(s.c.Sprite, Sprite{Name: "blocks/" + s.reg.Format(id.Front())}),
		ecs.With(s.c.Drop, Drop{ID: id.Front(), Count: count}),
	)
	s.drops++
	return e
}

// SpawnDamageText создаёт всплывающий текст урона
func (s *Spawner) SpawnDamageText(text string, pos vec.Vec2Float) ecs.EntityID {
	return s.ecs.Spawn(chunkAt(pos),
		ecs.With(s.c.Transform, Transform{Pos: pos}),
		ecs.With(s.c.DamageText, DamageText{Text: text, TTL: damageTextTTL, Rise: damageTextRise}),
	)
}

// Counts возвращает число созданных мобов и дропов
func (s *Spawner) Counts() (mobs, drops int) {
	return s.mobs, s.drops
}

// chunkAt возвращает чанк привязки для мировой позиции
func chunkAt(pos vec.Vec2Float) *vec.Vec2 {
	c := vec.ChunkOf(vec.PosToTile(pos))
	return &c
}
