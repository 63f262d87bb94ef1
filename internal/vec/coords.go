package vec

import (
	"math"
	"sort"
)

const (
	// ChunkWidth и ChunkHeight - размер чанка в тайлах
	ChunkWidth  = 16
	ChunkHeight = 16
	// TileSize - размер тайла в пикселях экрана
	TileSize = 30

	chunkShift = 4
	chunkMask  = ChunkWidth - 1

	// eps компенсирует ошибку округления при обратном преобразовании экранных координат
	eps = 1e-9
)

// ChunkOf возвращает чанк, которому принадлежит абсолютный тайл
func ChunkOf(tile Vec2) Vec2 {
	return tile.ToChunkCoords()
}

// Local возвращает позицию тайла внутри его чанка
func Local(tile Vec2) Vec2 {
	return tile.LocalInChunk()
}

// Tile собирает абсолютные координаты тайла из чанка и локальной позиции.
// Локальная позиция может выходить за пределы чанка.
func Tile(chunk, local Vec2) Vec2 {
	return Vec2{X: chunk.X*ChunkWidth + local.X, Y: chunk.Y*ChunkHeight + local.Y}
}

// Correct нормализует пару (чанк, локальная позиция): если позиция вышла за границы
// чанка, она переносится в соседний чанк. Единственное место с такой арифметикой.
func Correct(chunk, local Vec2) (Vec2, Vec2) {
	t := Tile(chunk, local)
	return ChunkOf(t), Local(t)
}

// InChunk проверяет, лежит ли локальная позиция внутри чанка
func InChunk(local Vec2) bool {
	return local.X >= 0 && local.X < ChunkWidth && local.Y >= 0 && local.Y < ChunkHeight
}

// PosToTile переводит мировую позицию в пикселях в тайл
func PosToTile(pos Vec2Float) Vec2 {
	return Vec2{
		X: int(math.Floor(pos.X/TileSize + eps)),
		Y: int(math.Floor(pos.Y/TileSize + eps)),
	}
}

// TileToWorld возвращает мировую позицию левого верхнего угла тайла в пикселях
func TileToWorld(tile Vec2) Vec2Float {
	return Vec2Float{X: float64(tile.X * TileSize), Y: float64(tile.Y * TileSize)}
}

// TileToScreen возвращает экранную позицию тайла с учётом прокрутки камеры
func TileToScreen(tile Vec2, scroll Vec2Float) Vec2Float {
	return TileToWorld(tile).Sub(scroll)
}

// ScreenToTile возвращает тайл под экранной точкой с учётом прокрутки камеры
func ScreenToTile(screen, scroll Vec2Float) Vec2 {
	return PosToTile(screen.Add(scroll))
}

// TileRect возвращает прямоугольник тайла в мировых пикселях
func TileRect(tile Vec2) Rect {
	p := TileToWorld(tile)
	return Rect{X: p.X, Y: p.Y, W: TileSize, H: TileSize}
}

// RadiusAround возвращает смещения (dx, dy) внутри круга радиуса r, отсортированные
// по квадрату расстояния. При равенстве сохраняется порядок обхода: y снаружи, x внутри.
// Для r <= 0 результат пустой.
func RadiusAround(r int) []Vec2 {
	if r <= 0 {
		return nil
	}
	out := make([]Vec2, 0, (2*r+1)*(2*r+1))
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				out = append(out, Vec2{X: dx, Y: dy})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return sq(out[i]) < sq(out[j])
	})
	return out
}

func sq(v Vec2) int {
	return v.X*v.X + v.Y*v.Y
}
