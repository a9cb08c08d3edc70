// Package document defines the parsed scene document consumed by the loader.
//
// A Document is a flat, index-addressed description of a scene: nodes
// reference children, meshes, and animations reference nodes by position in
// the corresponding slice. Accessor data arrives already decoded; the
// document never carries raw file bytes except for encoded images.
package document

// NoIndex marks an absent optional reference.
const NoIndex = -1

// Attribute names recognized on primitives.
const (
	AttrPosition  = "POSITION"
	AttrNormal    = "NORMAL"
	AttrTexCoord0 = "TEXCOORD_0"
	AttrTangent   = "TANGENT"
	AttrColor0    = "COLOR_0"
)

// Interpolation names used by animation samplers.
const (
	InterpolationStep        = "STEP"
	InterpolationLinear      = "LINEAR"
	InterpolationCubicSpline = "CUBICSPLINE"
)

// Target paths used by animation channels.
const (
	PathTranslation = "translation"
	PathRotation    = "rotation"
	PathScale       = "scale"
	PathWeights     = "weights"
)

// Document is a parsed scene description.
type Document struct {
	Nodes      []Node
	Meshes     []Mesh
	Accessors  []Accessor
	Materials  []Material
	Textures   []Texture
	Images     []Image
	Animations []Animation
	Scenes     []Scene
	// Scene is the default scene index, or NoIndex.
	Scene int
}

// Node is a hierarchy entry. Matrix and the TRS triplet are mutually
// exclusive; nil fields take their neutral value.
type Node struct {
	Name        string
	Matrix      *[16]float32 // column-major
	Translation *[3]float32
	Rotation    *[4]float32 // x, y, z, w
	Scale       *[3]float32
	Mesh        int
	Children    []int
}

// Mesh is an ordered list of primitives.
type Mesh struct {
	Name       string
	Primitives []Primitive
}

// Primitive is one indexed draw unit.
type Primitive struct {
	// Attributes maps attribute names to accessor indices.
	Attributes map[string]int
	Indices    int
	Material   int
}

// Accessor holds decoded element data. Float data is stored flat with
// Components values per element; index data is stored in Indices.
type Accessor struct {
	Name       string
	Count      int
	Components int
	Floats     []float32
	Indices    []uint32
}

// Vec returns element i as a slice of Components floats.
// Returns nil when i is out of range.
func (a *Accessor) Vec(i int) []float32 {
	start := i * a.Components
	end := start + a.Components
	if i < 0 || a.Components <= 0 || end > len(a.Floats) {
		return nil
	}
	return a.Floats[start:end]
}

// Material references textures for its four slots; NoIndex marks an empty slot.
type Material struct {
	Name                     string
	BaseColorFactor          *[4]float32
	BaseColorTexture         int
	NormalTexture            int
	OcclusionTexture         int
	MetallicRoughnessTexture int
}

// Texture references exactly one image.
type Texture struct {
	Name   string
	Source int
}

// Image carries encoded image bytes.
type Image struct {
	Name     string
	URI      string
	MimeType string
	Data     []byte
}

// Animation holds samplers and the channels that bind them to nodes.
type Animation struct {
	Name     string
	Samplers []AnimationSampler
	Channels []AnimationChannel
}

// AnimationSampler references input (time) and output (value) accessors.
type AnimationSampler struct {
	Input         int
	Output        int
	Interpolation string
}

// AnimationChannel binds a sampler to a node property.
type AnimationChannel struct {
	Sampler    int
	TargetNode int
	TargetPath string
}

// Scene lists root node indices.
type Scene struct {
	Name  string
	Nodes []int
}

// NewNode returns a node with no mesh and no explicit transform.
func NewNode(name string, children ...int) Node {
	return Node{Name: name, Mesh: NoIndex, Children: children}
}

// NewMaterial returns a material with every texture slot empty.
func NewMaterial(name string) Material {
	return Material{
		Name:                     name,
		BaseColorTexture:         NoIndex,
		NormalTexture:            NoIndex,
		OcclusionTexture:         NoIndex,
		MetallicRoughnessTexture: NoIndex,
	}
}

// RootNodes returns the roots of the default scene (or the first scene).
// The second result is false when the document declares no scene.
func (d *Document) RootNodes() ([]int, bool) {
	if len(d.Scenes) == 0 {
		return nil, false
	}
	idx := d.Scene
	if idx < 0 || idx >= len(d.Scenes) {
		idx = 0
	}
	return d.Scenes[idx].Nodes, true
}
