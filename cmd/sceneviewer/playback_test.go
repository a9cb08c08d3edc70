package main

import (
	"strings"
	"testing"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/midgard-scene/internal/config"
	"github.com/Faultbox/midgard-scene/internal/engine/backend"
	"github.com/Faultbox/midgard-scene/internal/engine/loader"
	"github.com/Faultbox/midgard-scene/internal/engine/model"
	"github.com/Faultbox/midgard-scene/pkg/document"
)

// twoClips animates the sky cube with two translation clips.
func twoClips() *document.Document {
	doc := skyCube()
	doc.Accessors = append(doc.Accessors,
		document.Accessor{Count: 2, Components: 1, Floats: []float32{0, 1}},
		document.Accessor{Count: 2, Components: 3, Floats: []float32{0, 0, 0, 1, 0, 0}},
		document.Accessor{Count: 2, Components: 3, Floats: []float32{0, 0, 0, 0, 1, 0}},
	)
	for i, name := range []string{"right", "up"} {
		doc.Animations = append(doc.Animations, document.Animation{
			Name:     name,
			Samplers: []document.AnimationSampler{{Input: 2, Output: 3 + i, Interpolation: document.InterpolationLinear}},
			Channels: []document.AnimationChannel{{Sampler: 0, TargetNode: 0, TargetPath: document.PathTranslation}},
		})
	}
	return doc
}

func loadClips(t *testing.T) *model.Model {
	t.Helper()
	m, err := loader.Load(twoClips(), backend.NewRecorder(), loader.DefaultOptions())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	t.Cleanup(m.Destroy)
	return m
}

func TestPlaybackKeys(t *testing.T) {
	m := loadClips(t)
	p := newPlayback(m, config.Default().Animation)

	p.Tick(0.5)
	if got := m.Animations()[0].CurrentTime; got != 0.5 {
		t.Fatalf("time after tick = %f", got)
	}

	p.HandleKey(sdl.SCANCODE_SPACE)
	p.Tick(0.25)
	if got := m.Animations()[0].CurrentTime; got != 0.5 {
		t.Errorf("paused tick moved time to %f", got)
	}
	if !strings.Contains(p.Status(), "paused") {
		t.Errorf("status %q should say paused", p.Status())
	}

	p.HandleKey(sdl.SCANCODE_R)
	if got := m.Animations()[0].CurrentTime; got != 0 {
		t.Errorf("reset left time at %f", got)
	}

	p.HandleKey(sdl.SCANCODE_N)
	if p.active != 1 {
		t.Errorf("next animation: active = %d", p.active)
	}
	p.HandleKey(sdl.SCANCODE_N)
	if p.active != 0 {
		t.Errorf("next should wrap to 0, got %d", p.active)
	}

	tests := []struct {
		key  sdl.Scancode
		want action
	}{
		{sdl.SCANCODE_ESCAPE, actionQuit},
		{sdl.SCANCODE_W, actionWireframe},
		{sdl.SCANCODE_F, actionFit},
		{sdl.SCANCODE_P, actionScreenshot},
		{sdl.SCANCODE_SPACE, actionNone},
	}
	for _, tt := range tests {
		if got := p.HandleKey(tt.key); got != tt.want {
			t.Errorf("key %d: action %d, want %d", tt.key, got, tt.want)
		}
	}
}

func TestPlaybackSpeedAndRange(t *testing.T) {
	m := loadClips(t)
	cfg := config.AnimationConfig{Enabled: true, Active: 7, Speed: 0.5}
	p := newPlayback(m, cfg)

	if p.active != 0 {
		t.Errorf("out of range active should fall back to 0, got %d", p.active)
	}
	p.Tick(1)
	if got := m.Animations()[0].CurrentTime; got != 0.5 {
		t.Errorf("half speed tick: time = %f", got)
	}
}

func TestSkyCube(t *testing.T) {
	rec := backend.NewRecorder()
	opts := loader.DefaultOptions()
	opts.DontLoadImages = true
	m, err := loader.Load(skyCube(), rec, opts)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer m.Destroy()

	if m.VertexCount != 8 || m.IndexCount != 36 {
		t.Errorf("cube: %d vertices, %d indices", m.VertexCount, m.IndexCount)
	}
	rec.Reset()
	if st := m.DrawEnvironment(rec, 9); st.Draws != 1 {
		t.Errorf("expected one environment draw, got %d", st.Draws)
	}
}
