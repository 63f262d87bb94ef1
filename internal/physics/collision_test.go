package physics

import (
	"testing"

	"github.com/annel0/tileworld/internal/vec"
	"github.com/stretchr/testify/assert"
)

// floorAt - сплошной пол на строке тайлов y
func floorAt(y int) SolidFunc {
	return func(t vec.Vec2) bool { return t.Y >= y }
}

func TestTilesUnder(t *testing.T) {
	assert.Equal(t, []vec.Vec2{{X: 0, Y: 0}}, TilesUnder(vec.Rect{W: 30, H: 30}), "касание соседей не считается")
	assert.Len(t, TilesUnder(vec.Rect{X: 15, Y: 15, W: 30, H: 30}), 4)
	assert.Equal(t, []vec.Vec2{{X: -1, Y: -1}}, TilesUnder(vec.Rect{X: -20, Y: -20, W: 10, H: 10}))
}

func TestCheckBoxCollision(t *testing.T) {
	c := NewBoxCollider(20, 20)
	assert.True(t, CheckBoxCollision(vec.Vec2Float{}, c, vec.Vec2Float{X: 19}, c))
	assert.False(t, CheckBoxCollision(vec.Vec2Float{}, c, vec.Vec2Float{X: 20}, c), "касание - не столкновение")
	assert.True(t, c.IsPointInside(vec.Vec2Float{X: 10, Y: 10}, vec.Vec2Float{X: 10, Y: 29}))
	assert.False(t, c.IsPointInside(vec.Vec2Float{X: 10, Y: 10}, vec.Vec2Float{X: 30, Y: 10}))
}

func TestMoveAndCollideLandsOnFloor(t *testing.T) {
	c := NewBoxCollider(20, 20)
	res := MoveAndCollide(vec.Vec2Float{X: 5, Y: 0}, c, vec.Vec2Float{X: 3, Y: 100}, floorAt(2))
	assert.True(t, res.HitY)
	assert.False(t, res.HitX)
	assert.InDelta(t, 40, res.Pos.Y, 1e-9, "нижняя грань на верхней грани пола")
	assert.InDelta(t, 8, res.Pos.X, 1e-9)
	assert.True(t, CanMoveToPosition(res.Pos, c, floorAt(2)))
}

func TestMoveAndCollideWall(t *testing.T) {
	wall := func(t vec.Vec2) bool { return t.X == 3 || t.X == -2 }
	c := NewBoxCollider(20, 20)

	res := MoveAndCollide(vec.Vec2Float{X: 10, Y: 5}, c, vec.Vec2Float{X: 200}, wall)
	assert.True(t, res.HitX)
	assert.InDelta(t, 70, res.Pos.X, 1e-9, "без прохода сквозь стену при большом шаге")

	res = MoveAndCollide(vec.Vec2Float{X: 10, Y: 5}, c, vec.Vec2Float{X: -200}, wall)
	assert.True(t, res.HitX)
	assert.InDelta(t, -30, res.Pos.X, 1e-9)
}

func TestMoveWithoutObstacles(t *testing.T) {
	c := NewBoxCollider(10, 10)
	none := func(vec.Vec2) bool { return false }
	res := MoveAndCollide(vec.Vec2Float{X: 1, Y: 2}, c, vec.Vec2Float{X: -45, Y: 61}, none)
	assert.False(t, res.HitX || res.HitY)
	assert.InDelta(t, -44, res.Pos.X, 1e-9)
	assert.InDelta(t, 63, res.Pos.Y, 1e-9)
	assert.False(t, CanMoveToPosition(vec.Vec2Float{X: 0, Y: 55}, c, floorAt(2)))
}
