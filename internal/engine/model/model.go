// Package model ties a loaded scene graph to the backend resources it owns
// and drives it frame by frame.
package model

import (
	"github.com/Faultbox/midgard-scene/internal/engine/animation"
	"github.com/Faultbox/midgard-scene/internal/engine/backend"
	"github.com/Faultbox/midgard-scene/internal/engine/draw"
	"github.com/Faultbox/midgard-scene/internal/engine/scene"
)

// Model owns everything created for one loaded document.
type Model struct {
	Graph     *scene.Graph
	Materials []scene.Material
	Textures  []scene.Texture
	Images    []scene.Image
	Animator  *animation.Engine

	// Geometry is the shared vertex and index buffer.
	Geometry    backend.GeometryHandle
	VertexCount int
	IndexCount  int
	// Bounds covers every vertex in the rest pose, in model space.
	Bounds Bounds

	dev       backend.Device
	destroyed bool
}

// New returns an empty model whose resources will be released through dev.
func New(dev backend.Device) *Model {
	return &Model{dev: dev, Bounds: EmptyBounds()}
}

// SetGraph installs g and prepares an animator for it.
func (m *Model) SetGraph(g *scene.Graph, anims []animation.Animation) {
	m.Graph = g
	m.Animator = animation.NewEngine(g, anims, m.dev)
}

// Animations returns the model's animations.
func (m *Model) Animations() []animation.Animation {
	if m.Animator == nil {
		return nil
	}
	return m.Animator.Animations
}

// AnimationIndex returns the index of the animation called name, or -1.
func (m *Model) AnimationIndex(name string) int {
	for i, a := range m.Animations() {
		if a.Name == name {
			return i
		}
	}
	return -1
}

// Update advances animation active by dt seconds. Transform resources are
// up to date when it returns, so a following Draw sees the new pose.
func (m *Model) Update(dt float32, active int) bool {
	if m.destroyed || m.Animator == nil {
		return false
	}
	return m.Animator.Advance(dt, active)
}

// Draw records the model with its materials.
func (m *Model) Draw(enc backend.Encoder) draw.Stats {
	if m.destroyed || m.Graph == nil {
		return draw.Stats{}
	}
	return draw.Scene(enc, m.Graph, m.Geometry, m.Materials)
}

// DrawEnvironment records the model as an environment pass bound to env.
func (m *Model) DrawEnvironment(enc backend.Encoder, env backend.EnvironmentHandle) draw.Stats {
	if m.destroyed || m.Graph == nil {
		return draw.Stats{}
	}
	return draw.Environment(enc, m.Graph, m.Geometry, env)
}

// Destroy releases node transforms from the roots down, then materials,
// images and the shared geometry. It is safe to call more than once and on
// a partially built model.
func (m *Model) Destroy() {
	if m.destroyed {
		return
	}
	m.destroyed = true

	if m.Graph != nil {
		m.Graph.Release(m.dev)
	}
	for i := range m.Materials {
		if h := m.Materials[i].Resource; h != 0 {
			m.dev.ReleaseMaterial(h)
			m.Materials[i].Resource = 0
		}
	}
	for i := range m.Images {
		if h := m.Images[i].Resource; h != 0 {
			m.dev.ReleaseImage(h)
			m.Images[i].Resource = 0
		}
	}
	if m.Geometry != 0 {
		m.dev.ReleaseGeometry(m.Geometry)
		m.Geometry = 0
	}
}

// Destroyed reports whether Destroy has run.
func (m *Model) Destroyed() bool {
	return m.destroyed
}
