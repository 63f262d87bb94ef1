package main

import (
	"time"

	"github.com/annel0/tileworld/internal/game"
	"github.com/annel0/tileworld/internal/vec"
	"github.com/annel0/tileworld/internal/world/block"
)

// script управляет камерой и игроком без ввода: камера едет вправо,
// игрок копает под собой, ставит добытые блоки и бьёт ближайшего моба
type script struct {
	g           *game.Game
	cameraSpeed float64
	frame       int
	digging     bool
}

const (
	digEvery    = 90 // кадров между попытками копать
	strikeEvery = 30
	strikeDmg   = 25.0
)

func newScript(g *game.Game, cameraSpeed float64) *script {
	return &script{g: g, cameraSpeed: cameraSpeed}
}

func (s *script) before(dt time.Duration) {
	s.frame++
	scroll := s.g.Scroll()
	scroll.X += s.cameraSpeed * dt.Seconds()
	s.g.SetScroll(scroll)

	if !s.digging && s.frame%digEvery == 0 {
		s.g.StartBreaking(s.underPlayer())
		s.digging = true
	}
	if s.frame%strikeEvery == 0 {
		s.strikeNearestMob()
	}
}

func (s *script) after(st game.FrameStats) {
	if !st.Broke {
		if s.digging && !s.g.World().Breaking().Active {
			// цель оказалась неразрушимой или исчезла
			s.digging = false
		}
		return
	}
	s.digging = false
	// ставим первый добытый блок рядом с игроком
	side := s.underPlayer().Add(vec.Vec2{X: 2, Y: -1})
	reg := s.g.World().Registry()
	for name := range s.g.Inventory() {
		id, err := reg.ParseID(name)
		if err != nil || reg.Has(id, block.Unplaceable) {
			continue
		}
		if s.g.Place(side, id) {
			return
		}
	}
}

func (s *script) underPlayer() vec.Vec2 {
	pos := s.g.PlayerPosition()
	c := s.g.Components()
	h, ok := c.Hitbox.Get(s.g.Player())
	if !ok {
		return vec.PosToTile(pos)
	}
	foot := vec.Vec2Float{X: pos.X + h.W/2, Y: pos.Y + h.H + 1}
	return vec.PosToTile(foot)
}

func (s *script) strikeNearestMob() {
	c := s.g.Components()
	player := s.g.PlayerPosition()
	best := -1.0
	var target vec.Vec2Float
	for _, id := range c.Mob.IDs() {
		t, ok1 := c.Transform.Get(id)
		h, ok2 := c.Hitbox.Get(id)
		if !ok1 || !ok2 {
			continue
		}
		center := h.Rect(t.Pos).Center()
		if d := center.DistanceTo(player); best < 0 || d < best {
			best, target = d, center
		}
	}
	if best >= 0 {
		s.g.Strike(target, strikeDmg)
	}
}
