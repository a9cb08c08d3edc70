// Package animation samples keyframed node transforms and applies them to
// a scene graph.
package animation

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/midgard-scene/pkg/document"
	"github.com/Faultbox/midgard-scene/pkg/math"
)

// Interpolation selects how a sampler blends between keyframes.
type Interpolation int

const (
	Step Interpolation = iota
	Linear
	CubicSpline
	// Unknown is kept for modes the loader did not recognize; it samples
	// like Step.
	Unknown
)

// ParseInterpolation maps a document interpolation name. An empty name is
// the format default, LINEAR.
func ParseInterpolation(s string) Interpolation {
	switch s {
	case document.InterpolationStep:
		return Step
	case document.InterpolationLinear, "":
		return Linear
	case document.InterpolationCubicSpline:
		return CubicSpline
	default:
		return Unknown
	}
}

func (i Interpolation) String() string {
	switch i {
	case Step:
		return document.InterpolationStep
	case Linear:
		return document.InterpolationLinear
	case CubicSpline:
		return document.InterpolationCubicSpline
	default:
		return "UNKNOWN"
	}
}

// Path is the node property a channel drives.
type Path int

const (
	Translation Path = iota
	Rotation
	Scale
)

// ParsePath maps a document target path. Weights and unknown paths are
// not supported.
func ParsePath(s string) (Path, bool) {
	switch s {
	case document.PathTranslation:
		return Translation, true
	case document.PathRotation:
		return Rotation, true
	case document.PathScale:
		return Scale, true
	}
	return 0, false
}

func (p Path) String() string {
	switch p {
	case Translation:
		return document.PathTranslation
	case Rotation:
		return document.PathRotation
	case Scale:
		return document.PathScale
	}
	return "unknown"
}

// Sampler holds keyframe times and values. Vec3 outputs are stored with
// w = 0; rotations are x, y, z, w quaternions. CubicSpline samplers store
// three outputs per keyframe: in-tangent, value, out-tangent.
type Sampler struct {
	Interpolation Interpolation
	Inputs        []float32
	Outputs       []mgl32.Vec4
}

// Mode returns the interpolation actually used when sampling. Unknown
// modes and samplers with too few outputs for their mode fall back to Step.
func (s *Sampler) Mode() Interpolation {
	switch s.Interpolation {
	case Linear:
		if len(s.Outputs) >= len(s.Inputs) {
			return Linear
		}
	case CubicSpline:
		if len(s.Outputs) == 3*len(s.Inputs) {
			return CubicSpline
		}
	}
	return Step
}

// value returns the keyframe value at index i for the effective mode.
func (s *Sampler) value(i int, mode Interpolation) mgl32.Vec4 {
	if mode == CubicSpline {
		return s.Outputs[3*i+1]
	}
	if i >= len(s.Outputs) {
		i = len(s.Outputs) - 1
	}
	return s.Outputs[i]
}

// Sample evaluates the sampler at time t. Times before the first keyframe
// clamp to the first value and times after the last clamp to the last.
// It returns false when the sampler has no keyframes.
func (s *Sampler) Sample(t float32, path Path) (mgl32.Vec4, bool) {
	n := len(s.Inputs)
	if n == 0 || len(s.Outputs) == 0 {
		return mgl32.Vec4{}, false
	}
	mode := s.Mode()

	// first keyframe strictly after t
	next := sort.Search(n, func(i int) bool { return s.Inputs[i] > t })
	switch {
	case next == 0:
		return finish(s.value(0, mode), path), true
	case next == n:
		return finish(s.value(n-1, mode), path), true
	}
	i := next - 1

	dt := s.Inputs[next] - s.Inputs[i]
	var u float32
	if dt > 0 {
		u = (t - s.Inputs[i]) / dt
	}

	switch mode {
	case Linear:
		a, b := s.Outputs[i], s.Outputs[next]
		if path == Rotation {
			q := math.Slerp(math.QuatFromVec4(a), math.QuatFromVec4(b), u)
			return math.QuatToVec4(q), true
		}
		return math.LerpVec4(a, b, u), true
	case CubicSpline:
		p0 := s.Outputs[3*i+1]
		m0 := s.Outputs[3*i+2].Mul(dt)
		p1 := s.Outputs[3*next+1]
		m1 := s.Outputs[3*next].Mul(dt)
		return finish(math.Hermite(p0, m0, p1, m1, u), path), true
	default:
		return finish(s.value(i, mode), path), true
	}
}

// finish normalizes rotation results.
func finish(v mgl32.Vec4, path Path) mgl32.Vec4 {
	if path == Rotation {
		return math.QuatToVec4(math.QuatFromVec4(v).Normalize())
	}
	return v
}

// Channel binds a sampler to one property of one node.
type Channel struct {
	Path    Path
	Node    int
	Sampler int
}

// Animation is a named set of channels playing over [Start, End].
type Animation struct {
	Name        string
	Samplers    []Sampler
	Channels    []Channel
	Start       float32
	End         float32
	CurrentTime float32
}

// ComputeRange sets Start and End to the earliest and latest keyframe
// across all samplers and rewinds CurrentTime to Start.
func (a *Animation) ComputeRange() {
	first := true
	for _, s := range a.Samplers {
		for _, t := range s.Inputs {
			if first {
				a.Start, a.End = t, t
				first = false
				continue
			}
			a.Start = min(a.Start, t)
			a.End = max(a.End, t)
		}
	}
	a.CurrentTime = a.Start
}

// Duration returns End - Start.
func (a *Animation) Duration() float32 {
	return a.End - a.Start
}

// Advance moves CurrentTime forward by dt and wraps it back into
// [Start, End] once it passes End. A zero-length animation stays at Start.
func (a *Animation) Advance(dt float32) {
	a.CurrentTime += dt
	if a.CurrentTime <= a.End {
		return
	}
	length := a.End - a.Start
	if length <= 0 {
		a.CurrentTime = a.Start
		return
	}
	a.CurrentTime = a.Start + math.Mod(a.CurrentTime-a.Start, length)
}
