package backend

import (
	"errors"
	"fmt"
	"image"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrInjected is returned by a Recorder create call matching FailOn.
var ErrInjected = errors.New("injected backend failure")

// Op identifies a recorded backend operation.
type Op int

const (
	OpNone Op = iota
	OpCreateGeometry
	OpCreateTransform
	OpCreateImage
	OpCreateMaterial
	OpCreateEnvironment
	OpWriteTransform
	OpRelease
	OpBindGeometry
	OpBindMaterial
	OpBindEnvironment
	OpPushTransform
	OpDrawIndexed
)

var opNames = map[Op]string{
	OpNone:              "none",
	OpCreateGeometry:    "create-geometry",
	OpCreateTransform:   "create-transform",
	OpCreateImage:       "create-image",
	OpCreateMaterial:    "create-material",
	OpCreateEnvironment: "create-environment",
	OpWriteTransform:    "write-transform",
	OpRelease:           "release",
	OpBindGeometry:      "bind-geometry",
	OpBindMaterial:      "bind-material",
	OpBindEnvironment:   "bind-environment",
	OpPushTransform:     "push-transform",
	OpDrawIndexed:       "draw-indexed",
}

// String returns the operation name.
func (o Op) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// Command is one recorded operation. Only the fields relevant to Op are set.
type Command struct {
	Op         Op
	Handle     uint32
	Slot       uint32
	Matrix     mgl32.Mat4
	IndexCount uint32
	FirstIndex uint32
}

// String formats the command for dumps.
func (c Command) String() string {
	switch c.Op {
	case OpDrawIndexed:
		return fmt.Sprintf("%s count=%d first=%d", c.Op, c.IndexCount, c.FirstIndex)
	case OpBindMaterial, OpBindEnvironment:
		return fmt.Sprintf("%s slot=%d handle=%d", c.Op, c.Slot, c.Handle)
	case OpPushTransform:
		return fmt.Sprintf("%s t=(%.3f, %.3f, %.3f)", c.Op, c.Matrix[12], c.Matrix[13], c.Matrix[14])
	case OpWriteTransform:
		return fmt.Sprintf("%s handle=%d t=(%.3f, %.3f, %.3f)", c.Op, c.Handle, c.Matrix[12], c.Matrix[13], c.Matrix[14])
	default:
		return fmt.Sprintf("%s handle=%d", c.Op, c.Handle)
	}
}

// Geometry is the data captured by CreateGeometry.
type Geometry struct {
	Vertices []Vertex
	Indices  []uint32
}

// Recorder is a headless Device and Encoder that records every call.
// It keeps the last value written to each transform and tracks live
// resources so callers can verify teardown.
type Recorder struct {
	// FailOn makes the matching create call return ErrInjected.
	FailOn Op

	commands   []Command
	next       uint32
	live       map[uint32]Op
	transforms map[TransformHandle]mgl32.Mat4
	geometry   map[GeometryHandle]Geometry
	materials  map[MaterialHandle]MaterialDesc
}

var (
	_ Device  = (*Recorder)(nil)
	_ Encoder = (*Recorder)(nil)
)

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		live:       make(map[uint32]Op),
		transforms: make(map[TransformHandle]mgl32.Mat4),
		geometry:   make(map[GeometryHandle]Geometry),
		materials:  make(map[MaterialHandle]MaterialDesc),
	}
}

func (r *Recorder) create(op Op) (uint32, error) {
	if r.FailOn == op {
		return 0, fmt.Errorf("%s: %w", op, ErrInjected)
	}
	r.next++
	r.live[r.next] = op
	r.commands = append(r.commands, Command{Op: op, Handle: r.next})
	return r.next, nil
}

func (r *Recorder) release(h uint32) {
	if h == 0 {
		return
	}
	delete(r.live, h)
	r.commands = append(r.commands, Command{Op: OpRelease, Handle: h})
}

// CreateGeometry records the shared buffers.
func (r *Recorder) CreateGeometry(vertices []Vertex, indices []uint32) (GeometryHandle, error) {
	h, err := r.create(OpCreateGeometry)
	if err != nil {
		return 0, err
	}
	r.geometry[GeometryHandle(h)] = Geometry{
		Vertices: append([]Vertex(nil), vertices...),
		Indices:  append([]uint32(nil), indices...),
	}
	return GeometryHandle(h), nil
}

// CreateTransform records a transform resource holding initial.
func (r *Recorder) CreateTransform(initial mgl32.Mat4) (TransformHandle, error) {
	h, err := r.create(OpCreateTransform)
	if err != nil {
		return 0, err
	}
	r.transforms[TransformHandle(h)] = initial
	return TransformHandle(h), nil
}

// CreateImage records an image resource.
func (r *Recorder) CreateImage(img *image.RGBA) (ImageHandle, error) {
	h, err := r.create(OpCreateImage)
	return ImageHandle(h), err
}

// CreateMaterial records a material resource set.
func (r *Recorder) CreateMaterial(desc MaterialDesc) (MaterialHandle, error) {
	h, err := r.create(OpCreateMaterial)
	if err != nil {
		return 0, err
	}
	r.materials[MaterialHandle(h)] = desc
	return MaterialHandle(h), nil
}

// CreateEnvironment records an environment resource.
func (r *Recorder) CreateEnvironment(img *image.RGBA) (EnvironmentHandle, error) {
	h, err := r.create(OpCreateEnvironment)
	return EnvironmentHandle(h), err
}

// WriteTransform stores m as the current value of h.
func (r *Recorder) WriteTransform(h TransformHandle, m mgl32.Mat4) {
	r.transforms[h] = m
	r.commands = append(r.commands, Command{Op: OpWriteTransform, Handle: uint32(h), Matrix: m})
}

func (r *Recorder) ReleaseGeometry(h GeometryHandle) {
	delete(r.geometry, h)
	r.release(uint32(h))
}

func (r *Recorder) ReleaseTransform(h TransformHandle) {
	delete(r.transforms, h)
	r.release(uint32(h))
}

func (r *Recorder) ReleaseImage(h ImageHandle) { r.release(uint32(h)) }

func (r *Recorder) ReleaseMaterial(h MaterialHandle) {
	delete(r.materials, h)
	r.release(uint32(h))
}

func (r *Recorder) ReleaseEnvironment(h EnvironmentHandle) { r.release(uint32(h)) }

func (r *Recorder) BindGeometry(h GeometryHandle) {
	r.commands = append(r.commands, Command{Op: OpBindGeometry, Handle: uint32(h)})
}

func (r *Recorder) BindMaterial(slot uint32, h MaterialHandle) {
	r.commands = append(r.commands, Command{Op: OpBindMaterial, Slot: slot, Handle: uint32(h)})
}

func (r *Recorder) BindEnvironment(slot uint32, h EnvironmentHandle) {
	r.commands = append(r.commands, Command{Op: OpBindEnvironment, Slot: slot, Handle: uint32(h)})
}

func (r *Recorder) PushTransform(m mgl32.Mat4) {
	r.commands = append(r.commands, Command{Op: OpPushTransform, Matrix: m})
}

func (r *Recorder) DrawIndexed(indexCount, firstIndex uint32) {
	r.commands = append(r.commands, Command{Op: OpDrawIndexed, IndexCount: indexCount, FirstIndex: firstIndex})
}

// Commands returns every recorded command in order.
func (r *Recorder) Commands() []Command {
	return r.commands
}

// Filter returns the recorded commands with the given op, in order.
func (r *Recorder) Filter(op Op) []Command {
	var out []Command
	for _, c := range r.commands {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Reset drops recorded commands but keeps resource state.
func (r *Recorder) Reset() {
	r.commands = r.commands[:0]
}

// Live returns the number of resources created and not yet released.
func (r *Recorder) Live() int {
	return len(r.live)
}

// LiveOf returns the number of live resources created by op.
func (r *Recorder) LiveOf(op Op) int {
	n := 0
	for _, o := range r.live {
		if o == op {
			n++
		}
	}
	return n
}

// Transform returns the last value written to h.
func (r *Recorder) Transform(h TransformHandle) (mgl32.Mat4, bool) {
	m, ok := r.transforms[h]
	return m, ok
}

// Geometry returns the data uploaded for h.
func (r *Recorder) Geometry(h GeometryHandle) (Geometry, bool) {
	g, ok := r.geometry[h]
	return g, ok
}

// Material returns the description recorded for h.
func (r *Recorder) Material(h MaterialHandle) (MaterialDesc, bool) {
	m, ok := r.materials[h]
	return m, ok
}
