package game

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/annel0/tileworld/internal/ecs"
	"github.com/annel0/tileworld/internal/storage"
	"github.com/annel0/tileworld/internal/vec"
	"github.com/annel0/tileworld/internal/world"
	"github.com/annel0/tileworld/internal/world/block"
	"go.uber.org/zap"
)

// codec сохраняет компонент одного хранилища под его именем
type codec struct {
	name   string
	encode func(id ecs.EntityID) (json.RawMessage, bool, error)
	decode func(id ecs.EntityID, raw json.RawMessage) error
}

// mappedCodec сохраняет компонент T через запись R
func mappedCodec[T, R any](s *ecs.Store[T], to func(*T) R, from func(R) (T, error)) codec {
	return codec{
		name: s.Name(),
		encode: func(id ecs.EntityID) (json.RawMessage, bool, error) {
			v, ok := s.Get(id)
			if !ok {
				return nil, false, nil
			}
			raw, err := json.Marshal(to(v))
			return raw, true, err
		},
		decode: func(id ecs.EntityID, raw json.RawMessage) error {
			var r R
			if err := json.Unmarshal(raw, &r); err != nil {
				return err
			}
			v, err := from(r)
			if err != nil {
				return err
			}
			s.Set(id, &v)
			return nil
		},
	}
}

func plainCodec[T any](s *ecs.Store[T]) codec {
	return mappedCodec(s,
		func(v *T) T { return *v },
		func(v T) (T, error) { return v, nil })
}

type dropRecord struct {
	ID    string  `json:"id"`
	Count int     `json:"count"`
	Age   float64 `json:"age"`
}

type lootRecord struct {
	ID    string `json:"id"`
	Count int    `json:"count"`
}

type playerRecord struct {
	Inventory   map[string]int `json:"inventory"`
	HitCooldown float64        `json:"hit_cooldown"`
}

// codecs перечисляет сохраняемые хранилища. Идентификаторы блоков пишутся
// текстом, как в палитре снимка.
func (g *Game) codecs() []codec {
	reg := g.world.Registry()
	c := g.comps
	return []codec{
		plainCodec(c.Transform),
		plainCodec(c.Hitbox),
		plainCodec(c.Sprite),
		plainCodec(c.Health),
		plainCodec(c.Mob),
		plainCodec(c.DamageText),
		mappedCodec(c.Drop,
			func(d *Drop) dropRecord { return dropRecord{ID: reg.Format(d.ID), Count: d.Count, Age: d.Age} },
			func(r dropRecord) (Drop, error) {
				id, err := reg.ParseID(r.ID)
				return Drop{ID: id, Count: r.Count, Age: r.Age}, err
			}),
		mappedCodec(c.Loot,
			func(l *Loot) []lootRecord {
				out := make([]lootRecord, len(l.Items))
				for i, it := range l.Items {
					out[i] = lootRecord{ID: reg.Format(it.ID), Count: it.Count}
				}
				return out
			},
			func(rs []lootRecord) (Loot, error) {
				l := Loot{Items: make([]LootItem, len(rs))}
				for i, r := range rs {
					id, err := reg.ParseID(r.ID)
					if err != nil {
						return Loot{}, err
					}
					l.Items[i] = LootItem{ID: id, Count: r.Count}
				}
				return l, nil
			}),
		mappedCodec(c.Player,
			func(p *Player) playerRecord {
				return playerRecord{Inventory: inventoryCopy(reg, p.Inventory), HitCooldown: p.HitCooldown}
			},
			func(r playerRecord) (Player, error) {
				p := Player{Inventory: make(map[block.ID]int, len(r.Inventory)), HitCooldown: r.HitCooldown}
				for name, n := range r.Inventory {
					id, err := reg.ParseID(name)
					if err != nil {
						return Player{}, err
					}
					p.Inventory[id] = n
				}
				return p, nil
			}),
	}
}

// Export снимает мир и все сущности. Каждая сущность игры имеет Transform,
// поэтому перечисление идёт по нему.
func (g *Game) Export() (*storage.Snapshot, error) {
	snap := g.world.Export()
	codecs := g.codecs()
	for _, id := range g.comps.Transform.IDs() {
		rec := storage.EntityRecord{
			ID:         uint64(id),
			Components: make(map[string]json.RawMessage, len(codecs)),
		}
		if aff := g.ecs.Affinity(id); aff != nil {
			rec.Affinity = &[2]int{aff.X, aff.Y}
		}
		for _, cd := range codecs {
			raw, ok, err := cd.encode(id)
			if err != nil {
				return nil, fmt.Errorf("encode %s of entity %d: %w", cd.name, id, err)
			}
			if ok {
				rec.Components[cd.name] = raw
			}
		}
		snap.Entities = append(snap.Entities, rec)
	}
	return snap, nil
}

// Restore восстанавливает мир и сущности из снимка. Сущности получают новые id
// в порядке записей. Если в снимке нет игрока, он создаётся заново.
func Restore(snap *storage.Snapshot, wopts world.Options, opts Options) (*Game, error) {
	w, err := world.Restore(wopts, snap)
	if err != nil {
		return nil, err
	}
	g := newGame(w, opts)

	byName := make(map[string]codec)
	for _, cd := range g.codecs() {
		byName[cd.name] = cd
	}
	for _, rec := range snap.Entities {
		var aff *vec.Vec2
		if rec.Affinity != nil {
			aff = &vec.Vec2{X: rec.Affinity[0], Y: rec.Affinity[1]}
		}
		id := g.ecs.Create(aff)

		names := make([]string, 0, len(rec.Components))
		for name := range rec.Components {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			cd, ok := byName[name]
			if !ok {
				return nil, fmt.Errorf("%w: entity %d: unknown component %q", storage.ErrBadSnapshot, rec.ID, name)
			}
			if err := cd.decode(id, rec.Components[name]); err != nil {
				return nil, fmt.Errorf("%w: entity %d: %s: %v", storage.ErrBadSnapshot, rec.ID, name, err)
			}
		}
	}

	if players := g.comps.Player.IDs(); len(players) > 0 {
		g.env.player = players[0]
	} else {
		g.spawnPlayer()
	}
	g.log.Info("Сущности восстановлены", zap.Int("entities", g.ecs.Len()))
	return g, nil
}
