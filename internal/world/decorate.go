package world

import (
	"github.com/annel0/tileworld/internal/vec"
	"github.com/annel0/tileworld/internal/world/block"
)

// Вероятности декораций, 1/N
const (
	treeChance   = 6
	poppyChance  = 20
	rockChance   = 15
	palmChance   = 12
	oreChance    = 60
	mobChance    = 80
	branchChance = 3

	treeHeightMean = 9.0
	treeHeightSD   = 2.0
	palmHeightMean = 6.0
	palmHeightSD   = 1.5

	// VeinStdDev - разброс длины рудной жилы
	VeinStdDev = 3.0
	// MobBee - вид моба, появляющегося на поверхности
	MobBee = "bee"
)

// decorate проходит по тайлам чанка построчно и расставляет деревья, цветы,
// камни, рудные жилы и мобов.
func (t *TerrainGenerator) decorate(g *GenContext) {
	c := g.Chunk
	depth := c.Coords.Y
	c.Each(func(local vec.Vec2) {
		id := g.Get(local)
		above := vec.Vec2{X: local.X, Y: local.Y - 1}
		openAbove := local.Y > 0 && g.Reg.IsEmpty(g.Get(above))

		switch {
		case id.Base == block.SoilBase && openAbove:
			switch {
			case g.Chance(treeChance):
				growTree(g, above)
			case g.Chance(poppyChance):
				poppy := block.Of(block.YellowPoppyBase)
				if g.Rand.Float64() < 0.6 {
					poppy = block.Of(block.PoppyBase)
				}
				g.SetIf(above, poppy, CondEmpty)
			case g.Chance(mobChance):
				g.Spawn(MobBee, above)
			}
		case id.Base == block.SandBase && openAbove:
			switch {
			case g.Chance(rockChance):
				g.SetIf(above, block.Stone.Back(), CondEmpty)
			case g.Chance(palmChance):
				growPalm(g, above)
			}
		case id == block.Stone && depth >= 0 && veinStart(g, local):
			if g.Chance(oreChance) {
				ore := pickOre(g, depth)
				GrowVein(g, local, ore)
			}
		}
	})
}

// growTree ставит ствол вверх от base, ветви-листья по бокам и крону наверху.
func growTree(g *GenContext, base vec.Vec2) {
	height := roundPositive(g.Gaussian(treeHeightMean, treeHeightSD), 3)
	wood := block.Of(block.WoodBase)
	leaf := block.Of(block.LeafBase)

	top := base
	for i := 0; i < height; i++ {
		p := vec.Vec2{X: base.X, Y: base.Y - i}
		g.SetIf(p, wood, CondEmpty)
		top = p
		if i < 2 || i == height-1 {
			continue
		}
		if g.Chance(branchChance) {
			g.SetIf(vec.Vec2{X: p.X - 1, Y: p.Y}, leaf, CondEmpty)
		}
		if g.Chance(branchChance) {
			g.SetIf(vec.Vec2{X: p.X + 1, Y: p.Y}, leaf, CondEmpty)
		}
	}

	// крона - ромб радиуса 2 над вершиной ствола
	for dy := -2; dy <= 2; dy++ {
		for dx := -2; dx <= 2; dx++ {
			if abs(dx)+abs(dy) > 2 {
				continue
			}
			g.SetIf(vec.Vec2{X: top.X + dx, Y: top.Y - 1 + dy}, leaf, CondEmpty)
		}
	}
}

// growPalm ставит пальму: ствол wood_p и листья буквой Т
func growPalm(g *GenContext, base vec.Vec2) {
	height := roundPositive(g.Gaussian(palmHeightMean, palmHeightSD), 3)
	trunk := block.Of(block.PalmWoodBase)
	leaf := block.Of(block.LeafBase)
	for i := 0; i < height; i++ {
		g.SetIf(vec.Vec2{X: base.X, Y: base.Y - i}, trunk, CondEmpty)
	}
	top := vec.Vec2{X: base.X, Y: base.Y - height}
	for dx := -2; dx <= 2; dx++ {
		g.SetIf(vec.Vec2{X: top.X + dx, Y: top.Y}, leaf, CondEmpty)
	}
	g.SetIf(vec.Vec2{X: top.X, Y: top.Y - 1}, leaf, CondEmpty)
}

// veinStart - жила может начаться на камне, все четыре соседа которого внутри
// чанка заполнены и не являются рудой.
func veinStart(g *GenContext, local vec.Vec2) bool {
	for _, n := range local.Neighbors4() {
		if !vec.InChunk(n) {
			return false
		}
		id := g.Get(n)
		if id.IsZero() || g.Reg.Has(id, block.Ore) {
			return false
		}
	}
	return true
}

func pickOre(g *GenContext, depth int) block.ID {
	ores := []block.BaseID{block.CoalBase}
	if depth >= 1 {
		ores = append(ores, block.IronBase)
	}
	if depth >= 3 {
		ores = append(ores, block.DiamondBase)
	}
	return block.Of(ores[g.Rand.Intn(len(ores))])
}

// VeinSteps возвращает длину случайного блуждания жилы: gaussian(mean, 3),
// ограниченная так, что жила вместе со стартовым тайлом не длиннее mean + 6*stddev.
func VeinSteps(g *GenContext, mean int) int {
	steps := roundPositive(g.Gaussian(float64(mean), VeinStdDev), 1)
	if limit := mean + int(6*VeinStdDev) - 1; steps > limit {
		steps = limit
	}
	return steps
}

// GrowVein превращает start в руду и делает случайное блуждание по четырём
// направлениям, заменяя только обычный камень. Возвращает число изменённых тайлов
// внутри чанка; записи в соседние чанки откладываются с условием CondStone.
func GrowVein(g *GenContext, start vec.Vec2, ore block.ID) int {
	mean := g.Reg.Params(ore.Base).VeinSize
	if mean <= 0 {
		mean = 1
	}
	steps := VeinSteps(g, mean)

	converted := 0
	if vec.InChunk(start) && g.SetIf(start, ore, CondStone) {
		converted++
	}
	p := start
	dirs := [4]vec.Vec2{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}}
	for i := 0; i < steps; i++ {
		p = p.Add(dirs[g.Rand.Intn(4)])
		if vec.InChunk(p) {
			if g.SetIf(p, ore, CondStone) {
				converted++
			}
			continue
		}
		g.SetIf(p, ore, CondStone)
	}
	return converted
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
