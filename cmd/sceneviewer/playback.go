package main

import (
	"fmt"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/midgard-scene/internal/config"
	"github.com/Faultbox/midgard-scene/internal/engine/model"
)

type action int

const (
	actionNone action = iota
	actionQuit
	actionWireframe
	actionFit
	actionScreenshot
)

// playback tracks which animation runs and whether it is paused.
type playback struct {
	m      *model.Model
	active int
	paused bool
	speed  float32
}

func newPlayback(m *model.Model, cfg config.AnimationConfig) *playback {
	p := &playback{
		m:      m,
		active: cfg.Active,
		paused: !cfg.Enabled,
		speed:  cfg.Speed,
	}
	if n := len(m.Animations()); n > 0 && (p.active < 0 || p.active >= n) {
		p.active = 0
	}
	return p
}

// Tick advances the active animation by dt scaled by speed.
func (p *playback) Tick(dt float32) {
	if p.paused || len(p.m.Animations()) == 0 {
		return
	}
	p.m.Update(dt*p.speed, p.active)
}

// HandleKey applies playback keys and returns actions the viewer owns.
func (p *playback) HandleKey(key sdl.Scancode) action {
	switch key {
	case sdl.SCANCODE_ESCAPE:
		return actionQuit
	case sdl.SCANCODE_SPACE:
		p.paused = !p.paused
	case sdl.SCANCODE_N:
		if n := len(p.m.Animations()); n > 0 {
			p.active = (p.active + 1) % n
			p.m.Animator.Reset(p.active)
		}
	case sdl.SCANCODE_R:
		if len(p.m.Animations()) > 0 {
			p.m.Animator.Reset(p.active)
		}
	case sdl.SCANCODE_W:
		return actionWireframe
	case sdl.SCANCODE_F:
		return actionFit
	case sdl.SCANCODE_P:
		return actionScreenshot
	}
	return actionNone
}

// Status describes the playback state for the title bar.
func (p *playback) Status() string {
	anims := p.m.Animations()
	if len(anims) == 0 {
		return "no animations"
	}
	state := "playing"
	if p.paused {
		state = "paused"
	}
	a := &anims[p.active]
	return fmt.Sprintf("%s [%d/%d] %.2fs %s", a.Name, p.active+1, len(anims), a.CurrentTime, state)
}
