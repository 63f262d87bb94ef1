package vec

import "math"

// Vec2Float представляет 2D координаты с плавающей точкой (пиксели, скорости)
type Vec2Float struct {
	X, Y float64
}

// Floor округляет координаты вниз
func (v Vec2Float) Floor() Vec2 {
	return Vec2{X: int(math.Floor(v.X)), Y: int(math.Floor(v.Y))}
}

// FromVec2 создает Vec2Float из Vec2
func FromVec2(v Vec2) Vec2Float {
	return Vec2Float{X: float64(v.X), Y: float64(v.Y)}
}

// Add складывает два вектора
func (v Vec2Float) Add(other Vec2Float) Vec2Float {
	return Vec2Float{X: v.X + other.X, Y: v.Y + other.Y}
}

// Sub вычитает вектор
func (v Vec2Float) Sub(other Vec2Float) Vec2Float {
	return Vec2Float{X: v.X - other.X, Y: v.Y - other.Y}
}

// Mul умножает вектор на скаляр
func (v Vec2Float) Mul(scalar float64) Vec2Float {
	return Vec2Float{X: v.X * scalar, Y: v.Y * scalar}
}

// Length возвращает длину вектора
func (v Vec2Float) Length() float64 {
	return math.Hypot(v.X, v.Y)
}

// Normalized возвращает нормализованный вектор; нулевой вектор остаётся нулевым.
func (v Vec2Float) Normalized() Vec2Float {
	l := v.Length()
	if l == 0 {
		return Vec2Float{}
	}
	return Vec2Float{X: v.X / l, Y: v.Y / l}
}

// DistanceTo вычисляет расстояние до другой точки
func (v Vec2Float) DistanceTo(other Vec2Float) float64 {
	return v.Sub(other).Length()
}

// Rect - прямоугольник в пикселях, (X, Y) - левый верхний угол.
type Rect struct {
	X, Y, W, H float64
}

// Right возвращает правую границу
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom возвращает нижнюю границу
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Center возвращает центр прямоугольника
func (r Rect) Center() Vec2Float {
	return Vec2Float{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Intersects проверяет пересечение двух прямоугольников (касание не считается).
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.Right() && o.X < r.Right() && r.Y < o.Bottom() && o.Y < r.Bottom()
}

// Moved возвращает прямоугольник, сдвинутый на d
func (r Rect) Moved(d Vec2Float) Rect {
	return Rect{X: r.X + d.X, Y: r.Y + d.Y, W: r.W, H: r.H}
}
