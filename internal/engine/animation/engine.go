package animation

import (
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-scene/internal/engine/backend"
	"github.com/Faultbox/midgard-scene/internal/engine/scene"
	"github.com/Faultbox/midgard-scene/internal/logger"
	"github.com/Faultbox/midgard-scene/pkg/math"
)

// Engine plays one animation at a time over a scene graph.
type Engine struct {
	Animations []Animation

	graph  *scene.Graph
	writer backend.TransformWriter

	badIndex logger.Once
	degraded logger.Once
}

// NewEngine creates an engine driving g. Channel and sampler indices must
// already be validated against g; w receives refreshed transforms and may
// be nil.
func NewEngine(g *scene.Graph, anims []Animation, w backend.TransformWriter) *Engine {
	return &Engine{
		Animations: anims,
		graph:      g,
		writer:     w,
	}
}

type degradedKey struct {
	animation, sampler int
}

// Advance moves animation active forward by dt, writes every channel's
// value into its target node and refreshes the graph. It returns false
// without touching anything when active is out of range.
func (e *Engine) Advance(dt float32, active int) bool {
	if active < 0 || active >= len(e.Animations) {
		if e.badIndex.Do(active) {
			logger.Log.Warn("animation index out of range",
				zap.Int("index", active),
				zap.Int("count", len(e.Animations)))
		}
		return false
	}

	anim := &e.Animations[active]
	anim.Advance(dt)
	e.apply(active)
	e.graph.Refresh(e.writer)
	return true
}

// Reset rewinds animation active to its start and applies that pose.
func (e *Engine) Reset(active int) bool {
	if active < 0 || active >= len(e.Animations) {
		return false
	}
	anim := &e.Animations[active]
	anim.CurrentTime = anim.Start
	e.apply(active)
	e.graph.Refresh(e.writer)
	return true
}

func (e *Engine) apply(active int) {
	anim := &e.Animations[active]
	for _, ch := range anim.Channels {
		s := &anim.Samplers[ch.Sampler]
		if s.Mode() != s.Interpolation && e.degraded.Do(degradedKey{active, ch.Sampler}) {
			logger.Log.Warn("interpolation unavailable, sampling as STEP",
				zap.String("animation", anim.Name),
				zap.Int("sampler", ch.Sampler),
				zap.Stringer("interpolation", s.Interpolation))
		}

		v, ok := s.Sample(anim.CurrentTime, ch.Path)
		if !ok {
			continue
		}

		n := &e.graph.Nodes[ch.Node]
		switch ch.Path {
		case Translation:
			n.Translation = v.Vec3()
		case Rotation:
			n.Rotation = math.QuatFromVec4(v)
		case Scale:
			n.Scale = v.Vec3()
		}
	}
}
