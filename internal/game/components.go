package game

import (
	"github.com/annel0/tileworld/internal/ecs"
	"github.com/annel0/tileworld/internal/physics"
	"github.com/annel0/tileworld/internal/vec"
	"github.com/annel0/tileworld/internal/world/block"
)

// Transform - положение (левый верхний угол хитбокса) и скорость в пикселях
type Transform struct {
	Pos      vec.Vec2Float `json:"pos"`
	Vel      vec.Vec2Float `json:"vel"`
	Gravity  float64       `json:"gravity"` // пикселей/с², 0 - парит
	OnGround bool          `json:"on_ground"`
	Phase    float64       `json:"phase"` // фаза покачивания парящих мобов
}

// Hitbox - размер сущности в пикселях
type Hitbox struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Collider возвращает коллайдер для физики
func (h Hitbox) Collider() *physics.BoxCollider {
	return physics.NewBoxCollider(h.W, h.H)
}

// Rect возвращает прямоугольник хитбокса в позиции pos
func (h Hitbox) Rect(pos vec.Vec2Float) vec.Rect {
	return vec.Rect{X: pos.X, Y: pos.Y, W: h.W, H: h.H}
}

// Sprite - имя изображения, передаваемое отрисовке
type Sprite struct {
	Name string `json:"name"`
}

type Health struct {
	HP  float64 `json:"hp"`
	Max float64 `json:"max"`
}

// Mob - параметры поведения моба и текущее состояние автомата
type Mob struct {
	Kind          string  `json:"kind"`
	Speed         float64 `json:"speed"` // пикселей/с
	Hover         bool    `json:"hover"`
	ContactDamage float64 `json:"contact_damage"`

	State MobState `json:"-"`
}

// Drop - предмет, лежащий в мире
type Drop struct {
	ID    block.ID
	Count int
	Age   float64 // секунд с момента появления
}

// LootItem - запись таблицы добычи
type LootItem struct {
	ID    block.ID
	Count int
}

// Loot - что выпадает при смерти
type Loot struct {
	Items []LootItem
}

// DamageText - всплывающее число урона
type DamageText struct {
	Text string  `json:"text"`
	TTL  float64 `json:"ttl"`  // секунд до исчезновения
	Rise float64 `json:"rise"` // пикселей/с вверх
}

// Player - данные игрока
type Player struct {
	Inventory   map[block.ID]int
	HitCooldown float64 // секунд до следующего контактного урона
}

// Components - хранилища всех компонентов игры
type Components struct {
	Transform  *ecs.Store[Transform]
	Hitbox     *ecs.Store[Hitbox]
	Sprite     *ecs.Store[Sprite]
	Health     *ecs.Store[Health]
	Mob        *ecs.Store[Mob]
	Drop       *ecs.Store[Drop]
	Loot       *ecs.Store[Loot]
	DamageText *ecs.Store[DamageText]
	Player     *ecs.Store[Player]
}

// NewComponents создаёт хранилища и регистрирует их в мире сущностей
func NewComponents(w *ecs.World) *Components {
	c := &Components{
		Transform:  ecs.NewStore[Transform]("transform"),
		Hitbox:     ecs.NewStore[Hitbox]("hitbox"),
		Sprite:     ecs.NewStore[Sprite]("sprite"),
		Health:     ecs.NewStore[Health]("health"),
		Mob:        ecs.NewStore[Mob]("mob"),
		Drop:       ecs.NewStore[Drop]("drop"),
		Loot:       ecs.NewStore[Loot]("loot"),
		DamageText: ecs.NewStore[DamageText]("damage_text"),
		Player:     ecs.NewStore[Player]("player"),
	}
	w.Register(c.Transform, c.Hitbox, c.Sprite, c.Health, c.Mob, c.Drop, c.Loot, c.DamageText, c.Player)
	return c
}
