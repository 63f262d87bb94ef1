package vec

import "math"

// Vec2 представляет целочисленные 2D координаты: тайл, локальная позиция в чанке
// или координаты самого чанка.
type Vec2 struct {
	X, Y int
}

// Add складывает два вектора
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{X: v.X + other.X, Y: v.Y + other.Y}
}

// Sub вычитает вектор
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{X: v.X - other.X, Y: v.Y - other.Y}
}

// ToChunkCoords преобразует абсолютные координаты тайла в координаты чанка.
// Арифметический сдвиг даёт деление с округлением вниз и для отрицательных значений.
func (v Vec2) ToChunkCoords() Vec2 {
	return Vec2{X: v.X >> chunkShift, Y: v.Y >> chunkShift}
}

// LocalInChunk возвращает локальные координаты внутри чанка (0..15)
func (v Vec2) LocalInChunk() Vec2 {
	return Vec2{X: v.X & chunkMask, Y: v.Y & chunkMask}
}

// Manhattan возвращает манхэттенское расстояние до другой точки
func (v Vec2) Manhattan(other Vec2) int {
	return abs(v.X-other.X) + abs(v.Y-other.Y)
}

// DistanceTo вычисляет евклидово расстояние до другой точки
func (v Vec2) DistanceTo(other Vec2) float64 {
	dx := float64(v.X - other.X)
	dy := float64(v.Y - other.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// Less задаёт порядок (y, x), используемый для детерминированных tie-break'ов.
func (v Vec2) Less(other Vec2) bool {
	if v.Y != other.Y {
		return v.Y < other.Y
	}
	return v.X < other.X
}

// Neighbors4 возвращает четырёх соседей по сторонам в порядке: вправо, влево, вниз, вверх.
func (v Vec2) Neighbors4() [4]Vec2 {
	return [4]Vec2{
		{X: v.X + 1, Y: v.Y},
		{X: v.X - 1, Y: v.Y},
		{X: v.X, Y: v.Y + 1},
		{X: v.X, Y: v.Y - 1},
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
