// Package backend defines the graphics capabilities the engine depends on.
//
// The engine never talks to a concrete graphics API. Loading needs a Device
// to create the shared geometry, per-mesh transform resources, images and
// material resource sets; drawing needs an Encoder that can bind those
// resources, push a per-draw transform and issue indexed draws.
package backend

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"
)

// Resource handles are opaque, backend-assigned identifiers. Zero means none.
type (
	GeometryHandle    uint32
	TransformHandle   uint32
	ImageHandle       uint32
	MaterialHandle    uint32
	EnvironmentHandle uint32
)

// Vertex is the interleaved vertex layout uploaded to the shared vertex buffer.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	UV       mgl32.Vec2
	Tangent  mgl32.Vec4
	Color    mgl32.Vec4
}

// VertexStride is the size of Vertex in bytes.
const VertexStride = (3 + 3 + 2 + 4 + 4) * 4

// MaterialDesc describes the resource set bound for a material.
// Image handles may be zero when images were not loaded; the backend
// substitutes its own fallback.
type MaterialDesc struct {
	BaseColorFactor   mgl32.Vec4
	BaseColor         ImageHandle
	Normal            ImageHandle
	Occlusion         ImageHandle
	MetallicRoughness ImageHandle
}

// TransformWriter updates a per-mesh transform resource.
// Writes must be visible to draws recorded after the call returns.
type TransformWriter interface {
	WriteTransform(h TransformHandle, m mgl32.Mat4)
}

// Device creates and releases backend resources.
type Device interface {
	TransformWriter

	// CreateGeometry uploads the model-wide shared vertex and index buffers.
	CreateGeometry(vertices []Vertex, indices []uint32) (GeometryHandle, error)
	// CreateTransform allocates a resource sized for one 4x4 matrix.
	CreateTransform(initial mgl32.Mat4) (TransformHandle, error)
	CreateImage(img *image.RGBA) (ImageHandle, error)
	CreateMaterial(desc MaterialDesc) (MaterialHandle, error)
	CreateEnvironment(img *image.RGBA) (EnvironmentHandle, error)

	ReleaseGeometry(h GeometryHandle)
	ReleaseTransform(h TransformHandle)
	ReleaseImage(h ImageHandle)
	ReleaseMaterial(h MaterialHandle)
	ReleaseEnvironment(h EnvironmentHandle)
}

// Encoder records draw operations for one pass.
type Encoder interface {
	BindGeometry(h GeometryHandle)
	BindMaterial(slot uint32, h MaterialHandle)
	BindEnvironment(slot uint32, h EnvironmentHandle)
	// PushTransform sets the per-draw constant block; distinct from resource binding.
	PushTransform(m mgl32.Mat4)
	DrawIndexed(indexCount, firstIndex uint32)
}
