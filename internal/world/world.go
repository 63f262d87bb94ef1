package world

import (
	"context"
	"sort"
	"time"

	"github.com/annel0/tileworld/internal/vec"
	"github.com/annel0/tileworld/internal/world/block"
	"github.com/annel0/tileworld/internal/world/light"
	"github.com/google/uuid"
	"github.com/zyedidia/generic/mapset"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Renderer получает уведомления о том, что кэш отрисовки чанка устарел
type Renderer interface {
	InvalidateChunk(chunk vec.Vec2)
}

// Spawner создаёт сущности по запросу мира (мобы при генерации, дроп при разрушении)
type Spawner interface {
	SpawnMob(kind string, tile vec.Vec2)
	SpawnDrop(id block.ID, tile vec.Vec2)
}

// Options - параметры создания мира
type Options struct {
	Seed       int64
	Registry   *block.Registry // nil - встроенный каталог
	Generator  Generator       // nil - TerrainGenerator с сидом Seed
	ViewRadius int             // радиус окна видимых чанков, 0 - DefaultViewRadius
	Renderer   Renderer
	Spawner    Spawner
	Logger     *zap.Logger
	Metrics    *Metrics
	Tracer     trace.Tracer
}

// DefaultViewRadius - окно видимости range(-3, 4) вокруг чанка камеры
const DefaultViewRadius = 3

// World владеет чанками, генератором, отложенными записями, светом и состоянием
// разрушения. Однопоточный: все методы вызываются из игрового цикла.
type World struct {
	ID   uuid.UUID
	seed int64

	reg    *block.Registry
	gen    Generator
	chunks map[vec.Vec2]*Chunk
	late   *LateWrites
	light  *light.Engine
	dirty  mapset.Set[vec.Vec2]

	viewRadius int
	renderer   Renderer
	spawner    Spawner
	breaking   Breaking

	log     *zap.Logger
	metrics *Metrics
	tracer  trace.Tracer
}

// New создаёт пустой мир. Чанки создаются лениво при первом обращении.
func New(opts Options) *World {
	w := &World{
		ID:         uuid.New(),
		seed:       opts.Seed,
		reg:        opts.Registry,
		gen:        opts.Generator,
		chunks:     make(map[vec.Vec2]*Chunk),
		late:       NewLateWrites(),
		dirty:      mapset.New[vec.Vec2](),
		viewRadius: opts.ViewRadius,
		renderer:   opts.Renderer,
		spawner:    opts.Spawner,
		log:        opts.Logger,
		metrics:    opts.Metrics,
		tracer:     opts.Tracer,
	}
	if w.reg == nil {
		w.reg = block.Default()
	}
	if w.gen == nil {
		w.gen = NewTerrainGenerator(opts.Seed)
	}
	if w.viewRadius <= 0 {
		w.viewRadius = DefaultViewRadius
	}
	if w.log == nil {
		w.log = zap.NewNop()
	}
	if w.tracer == nil {
		w.tracer = otel.Tracer("github.com/annel0/tileworld/internal/world")
	}
	w.log = w.log.With(zap.String("world", w.ID.String()))

	w.light = light.NewEngine(lightGrid{w})
	w.light.OnChange = func(tile vec.Vec2) {
		w.dirty.Put(vec.ChunkOf(tile))
	}
	return w
}

// Seed возвращает сид мира
func (w *World) Seed() int64 { return w.seed }

// Registry возвращает справочник блоков мира
func (w *World) Registry() *block.Registry { return w.reg }

// Light возвращает движок освещения
func (w *World) Light() *light.Engine { return w.light }

// LateWrites возвращает буфер отложенных записей
func (w *World) LateWrites() *LateWrites { return w.late }

// SetSpawner подключает создателя сущностей после конструирования мира
func (w *World) SetSpawner(s Spawner) { w.spawner = s }

// SetRenderer подключает получателя уведомлений об изменении чанков
func (w *World) SetRenderer(r Renderer) { w.renderer = r }

// Chunk возвращает сгенерированный чанк
func (w *World) Chunk(coords vec.Vec2) (*Chunk, bool) {
	c, ok := w.chunks[coords]
	if !ok || !c.Generated {
		return nil, false
	}
	return c, true
}

// Chunks возвращает координаты сгенерированных чанков в порядке (y, x)
func (w *World) Chunks() []vec.Vec2 {
	out := make([]vec.Vec2, 0, len(w.chunks))
	for k, c := range w.chunks {
		if c.Generated {
			out = append(out, k)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// EnsureChunk возвращает чанк, создавая и генерируя его при необходимости.
// Порядок: генерация -> применение отложенных записей -> свет -> запись соседям -> мобы.
func (w *World) EnsureChunk(coords vec.Vec2) *Chunk {
	c, ok := w.chunks[coords]
	if ok && c.Generated {
		return c
	}
	if !ok {
		c = NewChunk(coords)
		w.chunks[coords] = c
	}

	_, span := w.tracer.Start(context.Background(), "world.generate_chunk",
		trace.WithAttributes(attribute.Int("chunk.x", coords.X), attribute.Int("chunk.y", coords.Y)))
	defer span.End()
	start := time.Now()

	ctx := NewGenContext(c, w.reg, w.seed)
	w.gen.Generate(ctx)
	c.Generated = true

	late := w.late.Take(coords)
	for _, lw := range late {
		if lw.Cond.allows(w.reg, c.Foreground(lw.Local)) {
			c.place(w.reg, lw.Local, lw.ID)
		}
	}

	w.light.Propagate(coords)
	w.dirty.Put(coords)

	for _, o := range ctx.outward {
		w.writeOutward(o)
	}
	if w.spawner != nil {
		for _, s := range ctx.Spawns() {
			w.spawner.SpawnMob(s.Kind, s.Tile)
		}
	}

	span.SetAttributes(attribute.Int("late_writes", len(late)), attribute.Int("outward_writes", len(ctx.outward)))
	w.metrics.chunkGenerated(time.Since(start))
	w.metrics.syncWorld(w)
	w.log.Debug("Чанк сгенерирован",
		zap.Int("cx", coords.X), zap.Int("cy", coords.Y),
		zap.Int("late", len(late)), zap.Int("outward", len(ctx.outward)),
		zap.Duration("took", time.Since(start)))
	return c
}

// writeOutward применяет запись декорации в соседний чанк или откладывает её
func (w *World) writeOutward(o outWrite) {
	c, ok := w.Chunk(o.chunk)
	if !ok {
		w.late.Add(o.chunk, o.write)
		return
	}
	if o.write.Cond.allows(w.reg, c.Foreground(o.write.Local)) {
		w.setTile(c, o.write.Local, o.write.ID)
	}
}

// FlushLateWrites применяет отложенные записи уже существующего чанка
func (w *World) FlushLateWrites(coords vec.Vec2) int {
	c, ok := w.Chunk(coords)
	if !ok || w.late.Pending(coords) == 0 {
		return 0
	}
	n := 0
	for _, lw := range w.late.Take(coords) {
		if lw.Cond.allows(w.reg, c.Foreground(lw.Local)) {
			w.setTile(c, lw.Local, lw.ID)
			n++
		}
	}
	return n
}

// GetTile возвращает блок переднего слоя. false - чанк не сгенерирован или клетка пуста.
func (w *World) GetTile(chunk, pos vec.Vec2) (block.ID, bool) {
	chunk, pos = vec.Correct(chunk, pos)
	c, ok := w.Chunk(chunk)
	if !ok {
		return block.None, false
	}
	id := c.Foreground(pos)
	return id, !id.IsZero()
}

// GetBackground возвращает блок заднего слоя
func (w *World) GetBackground(chunk, pos vec.Vec2) (block.ID, bool) {
	chunk, pos = vec.Correct(chunk, pos)
	c, ok := w.Chunk(chunk)
	if !ok {
		return block.None, false
	}
	id := c.Background(pos)
	return id, !id.IsZero()
}

// Exists сообщает, записан ли тайл в сгенерированном чанке
func (w *World) Exists(chunk, pos vec.Vec2) bool {
	_, ok := w.GetTile(chunk, pos)
	return ok
}

// SetTile записывает блок с учётом правила слоёв и обновляет свет.
// Чанк создаётся, если его ещё нет.
func (w *World) SetTile(chunk, pos vec.Vec2, id block.ID) {
	chunk, pos = vec.Correct(chunk, pos)
	c := w.EnsureChunk(chunk)
	w.setTile(c, pos, id)
	w.FlushDirty()
}

// BreakTile разрушает передний слой. Неразрушимые блоки не меняются.
// Если на месте был фон, он становится передним слоем, иначе остаётся воздух.
// Разрушение отражения фона очищает и сам фон.
func (w *World) BreakTile(chunk, pos vec.Vec2) bool {
	chunk, pos = vec.Correct(chunk, pos)
	c, ok := w.Chunk(chunk)
	if !ok {
		return false
	}
	fore := c.Foreground(pos)
	if fore.IsZero() || w.reg.Has(fore, block.Unbreakable) {
		return false
	}

	replacement := block.Air
	if fore.Background {
		w.mutate(c, pos, func() {
			c.Set(LayerBackground, pos, block.None)
			c.Set(LayerForeground, pos, replacement)
		})
	} else {
		if back := c.Background(pos); !back.IsZero() {
			replacement = back
		}
		w.mutate(c, pos, func() {
			c.Set(LayerForeground, pos, replacement)
		})
	}
	w.metrics.tileBroken()
	w.FlushDirty()
	return true
}

// Place - запись от игрока по абсолютному тайлу. Блоки UNPLACEABLE не ставятся,
// занятая клетка переднего слоя не перезаписывается.
func (w *World) Place(tile vec.Vec2, id block.ID) bool {
	if w.reg.Has(id, block.Unplaceable) || id.IsZero() {
		return false
	}
	chunk, pos := vec.ChunkOf(tile), vec.Local(tile)
	c := w.EnsureChunk(chunk)
	if !id.Background && !w.reg.IsEmpty(c.Foreground(pos)) && !c.Foreground(pos).Background {
		return false
	}
	w.setTile(c, pos, id)
	w.FlushDirty()
	return true
}

// Break - разрушение по абсолютному тайлу
func (w *World) Break(tile vec.Vec2) bool {
	return w.BreakTile(vec.ChunkOf(tile), vec.Local(tile))
}

// Tile возвращает блок переднего слоя по абсолютному тайлу
func (w *World) Tile(tile vec.Vec2) (block.ID, bool) {
	return w.GetTile(vec.ChunkOf(tile), vec.Local(tile))
}

// LightLevel возвращает уровень света по абсолютному тайлу
func (w *World) LightLevel(tile vec.Vec2) int {
	return w.light.Level(tile)
}

func (w *World) setTile(c *Chunk, pos vec.Vec2, id block.ID) {
	w.mutate(c, pos, func() {
		c.place(w.reg, pos, id)
	})
	w.metrics.tileSet()
}

// mutate выполняет изменение клетки и обновляет свет: сначала снимается свет
// прежнего источника, затем распространяется свет нового.
func (w *World) mutate(c *Chunk, pos vec.Vec2, change func()) {
	tile := vec.Tile(c.Coords, pos)
	old := c.Foreground(pos)
	_, _, wasEmitter := w.reg.Emits(old)

	change()
	w.dirty.Put(c.Coords)

	cur := c.Foreground(pos)
	if cur == old {
		return
	}
	if wasEmitter {
		w.light.Depropagate(tile)
	}
	if _, _, ok := w.reg.Emits(cur); ok {
		w.light.PropagateFrom(tile)
	}
	w.metrics.syncWorld(w)
}

// FlushDirty пересчитывает обводку изменённых чанков и уведомляет Renderer
func (w *World) FlushDirty() []vec.Vec2 {
	if w.dirty.Size() == 0 {
		return nil
	}
	var out []vec.Vec2
	w.dirty.Each(func(k vec.Vec2) {
		if c, ok := w.Chunk(k); ok {
			w.refreshWalls(c)
			out = append(out, k)
		}
	})
	w.dirty.Clear()
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	if w.renderer != nil {
		for _, k := range out {
			w.renderer.InvalidateChunk(k)
		}
	}
	return out
}

// refreshWalls пересчитывает маску сторон, граничащих с пустотой
func (w *World) refreshWalls(c *Chunk) {
	c.Each(func(local vec.Vec2) {
		id := c.Foreground(local)
		if w.solid(id) {
			var mask uint8
			for i, n := range local.Neighbors4() {
				var nid block.ID
				if vec.InChunk(n) {
					nid = c.Foreground(n)
				} else {
					nid, _ = w.GetTile(c.Coords, n)
				}
				if !w.solid(nid) {
					mask |= 1 << uint(i)
				}
			}
			c.Walls[local.X][local.Y] = mask
		} else {
			c.Walls[local.X][local.Y] = 0
		}
	})
}

// solid - блок переднего слоя, сквозь который нельзя пройти
func (w *World) solid(id block.ID) bool {
	if id.IsZero() || id.Background {
		return false
	}
	return !w.reg.Has(id, block.Walkable)
}

// lightGrid адаптирует мир к интерфейсу light.Grid
type lightGrid struct {
	w *World
}

func (g lightGrid) Level(tile vec.Vec2) int {
	c, ok := g.w.chunks[vec.ChunkOf(tile)]
	if !ok {
		return 0
	}
	return c.LightAt(vec.Local(tile))
}

func (g lightGrid) SetLevel(tile vec.Vec2, level int) {
	coords := vec.ChunkOf(tile)
	c, ok := g.w.chunks[coords]
	if !ok {
		// свет зашёл в ещё не созданный чанк - заводим запись "только свет"
		c = NewChunk(coords)
		g.w.chunks[coords] = c
	}
	l := vec.Local(tile)
	c.Light[l.X][l.Y] = uint8(level)
}

func (g lightGrid) Emitter(tile vec.Vec2) (int, int, bool) {
	c, ok := g.w.Chunk(vec.ChunkOf(tile))
	if !ok {
		return 0, 0, false
	}
	return g.w.reg.Emits(c.Foreground(vec.Local(tile)))
}

func (g lightGrid) Emitters(chunk vec.Vec2) []vec.Vec2 {
	c, ok := g.w.Chunk(chunk)
	if !ok {
		return nil
	}
	var out []vec.Vec2
	c.Each(func(local vec.Vec2) {
		if _, _, ok := g.w.reg.Emits(c.Foreground(local)); ok {
			out = append(out, vec.Tile(chunk, local))
		}
	})
	return out
}
