package physics

import (
	"math"

	"github.com/annel0/tileworld/internal/vec"
)

// BoxCollider представляет прямоугольный коллайдер в пикселях.
// Позиция сущности - левый верхний угол коллайдера.
type BoxCollider struct {
	Width  float64
	Height float64
}

// NewBoxCollider создаёт новый коллайдер с указанными размерами
func NewBoxCollider(width, height float64) *BoxCollider {
	return &BoxCollider{
		Width:  width,
		Height: height,
	}
}

// Bounds возвращает прямоугольник коллайдера в позиции pos
func (bc *BoxCollider) Bounds(pos vec.Vec2Float) vec.Rect {
	return vec.Rect{X: pos.X, Y: pos.Y, W: bc.Width, H: bc.Height}
}

// IsPointInside проверяет, находится ли точка внутри коллайдера
func (bc *BoxCollider) IsPointInside(colliderPos, point vec.Vec2Float) bool {
	r := bc.Bounds(colliderPos)
	return point.X >= r.X && point.X < r.Right() && point.Y >= r.Y && point.Y < r.Bottom()
}

// CheckBoxCollision проверяет столкновение двух коллайдеров
func CheckBoxCollision(pos1 vec.Vec2Float, collider1 *BoxCollider, pos2 vec.Vec2Float, collider2 *BoxCollider) bool {
	return collider1.Bounds(pos1).Intersects(collider2.Bounds(pos2))
}

// SolidFunc сообщает, блокирует ли тайл движение
type SolidFunc func(tile vec.Vec2) bool

// TilesUnder возвращает тайлы, которые перекрывает прямоугольник.
// Касание границы тайла перекрытием не считается.
func TilesUnder(r vec.Rect) []vec.Vec2 {
	lo := vec.PosToTile(vec.Vec2Float{X: r.X, Y: r.Y})
	hiX := int(math.Ceil(r.Right()/vec.TileSize)) - 1
	hiY := int(math.Ceil(r.Bottom()/vec.TileSize)) - 1
	if hiX < lo.X {
		hiX = lo.X
	}
	if hiY < lo.Y {
		hiY = lo.Y
	}
	out := make([]vec.Vec2, 0, (hiX-lo.X+1)*(hiY-lo.Y+1))
	for y := lo.Y; y <= hiY; y++ {
		for x := lo.X; x <= hiX; x++ {
			out = append(out, vec.Vec2{X: x, Y: y})
		}
	}
	return out
}

// CanMoveToPosition проверяет, может ли сущность с указанным коллайдером встать в позицию
func CanMoveToPosition(newPos vec.Vec2Float, collider *BoxCollider, solid SolidFunc) bool {
	for _, t := range TilesUnder(collider.Bounds(newPos)) {
		if solid(t) {
			return false
		}
	}
	return true
}

// Result - итог перемещения с учётом столкновений
type Result struct {
	Pos  vec.Vec2Float
	HitX bool // движение по X упёрлось в тайл
	HitY bool // движение по Y упёрлось в тайл
}

// maxStep - наибольший шаг за одну итерацию, чтобы не проскочить тайл
const maxStep = vec.TileSize / 2

// MoveAndCollide сдвигает коллайдер на delta: сначала по X, затем по Y.
// При столкновении коллайдер прижимается к грани тайла, скорость по этой оси
// дальше не применяется.
func MoveAndCollide(pos vec.Vec2Float, collider *BoxCollider, delta vec.Vec2Float, solid SolidFunc) Result {
	res := Result{Pos: pos}
	steps := int(math.Ceil(math.Max(math.Abs(delta.X), math.Abs(delta.Y)) / maxStep))
	if steps < 1 {
		steps = 1
	}
	step := delta.Mul(1 / float64(steps))

	for i := 0; i < steps; i++ {
		if !res.HitX && step.X != 0 {
			res.Pos.X += step.X
			if edge, hit := blockingEdge(collider.Bounds(res.Pos), step.X > 0, true, solid); hit {
				if step.X > 0 {
					res.Pos.X = edge - collider.Width
				} else {
					res.Pos.X = edge
				}
				res.HitX = true
			}
		}
		if !res.HitY && step.Y != 0 {
			res.Pos.Y += step.Y
			if edge, hit := blockingEdge(collider.Bounds(res.Pos), step.Y > 0, false, solid); hit {
				if step.Y > 0 {
					res.Pos.Y = edge - collider.Height
				} else {
					res.Pos.Y = edge
				}
				res.HitY = true
			}
		}
	}
	return res
}

// blockingEdge находит ближайшую грань твёрдого тайла, в которую упёрся r
func blockingEdge(r vec.Rect, positive, horizontal bool, solid SolidFunc) (float64, bool) {
	edge := 0.0
	hit := false
	for _, t := range TilesUnder(r) {
		if !solid(t) {
			continue
		}
		tr := vec.TileRect(t)
		var e float64
		switch {
		case horizontal && positive:
			e = tr.X
		case horizontal:
			e = tr.Right()
		case positive:
			e = tr.Y
		default:
			e = tr.Bottom()
		}
		if !hit || (positive && e < edge) || (!positive && e > edge) {
			edge = e
			hit = true
		}
	}
	return edge, hit
}
