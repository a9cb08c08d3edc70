// Package scene provides the index-addressed scene graph: nodes with local
// transforms, inline meshes and primitives, materials, textures and images.
package scene

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/midgard-scene/internal/engine/backend"
)

// NoParent marks a node without a parent.
const NoParent = -1

// Node is one arena entry. The local transform is either an explicit Matrix
// (HasMatrix) or the Translation/Rotation/Scale triplet; the unused
// representation stays neutral so composing both is harmless.
type Node struct {
	Index    int
	Name     string
	Parent   int
	Children []int

	Matrix      mgl32.Mat4
	HasMatrix   bool
	Translation mgl32.Vec3
	Rotation    mgl32.Quat
	Scale       mgl32.Vec3

	Mesh    Mesh
	HasMesh bool
}

// NewNode returns a node with a neutral transform and no mesh.
func NewNode(name string, children ...int) Node {
	return Node{
		Name:     name,
		Parent:   NoParent,
		Children: children,
		Matrix:   mgl32.Ident4(),
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// Mesh is the renderable content of a node.
type Mesh struct {
	Name       string
	Primitives []Primitive
	// Transform holds the node's world matrix on the backend.
	Transform backend.TransformHandle
}

// Primitive is one indexed draw into the model-wide index buffer.
type Primitive struct {
	FirstIndex uint32
	IndexCount uint32
	Material   int
}

// Material carries a base color factor and four resolved image indices.
type Material struct {
	Name                   string
	BaseColorFactor        mgl32.Vec4
	BaseColorImage         int
	NormalImage            int
	OcclusionImage         int
	MetallicRoughnessImage int
	Resource               backend.MaterialHandle
}

// Slots returns the image indices in binding order:
// base color, normal, occlusion, metallic-roughness.
func (m *Material) Slots() [4]int {
	return [4]int{m.BaseColorImage, m.NormalImage, m.OcclusionImage, m.MetallicRoughnessImage}
}

// Texture references exactly one image.
type Texture struct {
	Image int
}

// Image is decoded texture data. Pixels is nil when images were not loaded.
type Image struct {
	Name        string
	URI         string
	Pixels      *image.RGBA
	Placeholder bool
	Resource    backend.ImageHandle
}
