package gltfdoc

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/qmuntal/gltf"

	"github.com/Faultbox/midgard-scene/pkg/document"
)

func ptr(i int) *int { return &i }

func floatBytes(values ...float32) []byte {
	buf := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func uint16Bytes(values ...uint16) []byte {
	buf := make([]byte, 2*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint16(buf[i*2:], v)
	}
	return buf
}

// makeTriangleDoc builds a two-node document: a root with a translated
// child that carries one triangle and a one-channel animation.
func makeTriangleDoc() *gltf.Document {
	positions := floatBytes(0, 0, 0, 1, 0, 0, 0, 1, 0)
	indices := uint16Bytes(0, 1, 2, 0) // padded to 4-byte alignment
	times := floatBytes(0, 1)
	values := floatBytes(0, 0, 0, 10, 0, 0)

	var data []byte
	data = append(data, positions...)
	data = append(data, indices...)
	data = append(data, times...)
	data = append(data, values...)

	return &gltf.Document{
		Scene:  ptr(0),
		Scenes: []*gltf.Scene{{Name: "main", Nodes: []int{0}}},
		Nodes: []*gltf.Node{
			{Name: "root", Children: []int{1}},
			{Name: "child", Mesh: ptr(0), Translation: [3]float64{1, 2, 3}},
		},
		Meshes: []*gltf.Mesh{{
			Name: "tri",
			Primitives: []*gltf.Primitive{{
				Attributes: map[string]int{gltf.POSITION: 0},
				Indices:    ptr(1),
				Material:   ptr(0),
			}},
		}},
		Buffers: []*gltf.Buffer{{ByteLength: len(data), Data: data}},
		BufferViews: []*gltf.BufferView{
			{Buffer: 0, ByteOffset: 0, ByteLength: 36},
			{Buffer: 0, ByteOffset: 36, ByteLength: 6},
			{Buffer: 0, ByteOffset: 44, ByteLength: 8},
			{Buffer: 0, ByteOffset: 52, ByteLength: 24},
		},
		Accessors: []*gltf.Accessor{
			{BufferView: ptr(0), ComponentType: gltf.ComponentFloat, Count: 3, Type: gltf.AccessorVec3},
			{BufferView: ptr(1), ComponentType: gltf.ComponentUshort, Count: 3, Type: gltf.AccessorScalar},
			{BufferView: ptr(2), ComponentType: gltf.ComponentFloat, Count: 2, Type: gltf.AccessorScalar},
			{BufferView: ptr(3), ComponentType: gltf.ComponentFloat, Count: 2, Type: gltf.AccessorVec3},
		},
		Materials: []*gltf.Material{{
			Name: "mat",
			PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
				BaseColorFactor:  &[4]float64{1, 0.5, 0.25, 1},
				BaseColorTexture: &gltf.TextureInfo{Index: 0},
			},
			NormalTexture: &gltf.NormalTexture{Index: ptr(1)},
		}},
		Textures: []*gltf.Texture{{Source: ptr(0)}, {Source: ptr(0)}},
		Images:   []*gltf.Image{{Name: "missing", URI: "does-not-exist.png"}},
		Animations: []*gltf.Animation{{
			Name:     "slide",
			Samplers: []*gltf.AnimationSampler{{Input: 2, Output: 3, Interpolation: gltf.InterpolationLinear}},
			Channels: []*gltf.AnimationChannel{{Sampler: 0, Target: gltf.AnimationChannelTarget{Node: ptr(1), Path: gltf.TRSTranslation}}},
		}},
	}
}

func TestConvertHierarchyAndTransforms(t *testing.T) {
	doc, err := Convert(makeTriangleDoc(), t.TempDir())
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}

	if len(doc.Nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(doc.Nodes))
	}
	root, child := doc.Nodes[0], doc.Nodes[1]
	if len(root.Children) != 1 || root.Children[0] != 1 {
		t.Errorf("root children: got %v, want [1]", root.Children)
	}
	if root.Mesh != document.NoIndex {
		t.Errorf("root should have no mesh, got %d", root.Mesh)
	}
	if child.Mesh != 0 {
		t.Errorf("child mesh: got %d, want 0", child.Mesh)
	}
	if child.Translation == nil || *child.Translation != [3]float32{1, 2, 3} {
		t.Errorf("child translation: got %v", child.Translation)
	}
	if child.Rotation != nil || child.Scale != nil || child.Matrix != nil {
		t.Error("neutral rotation, scale and matrix should be omitted")
	}

	roots, ok := doc.RootNodes()
	if !ok || len(roots) != 1 || roots[0] != 0 {
		t.Errorf("RootNodes: got %v, %v", roots, ok)
	}
}

func TestConvertAccessors(t *testing.T) {
	doc, err := Convert(makeTriangleDoc(), t.TempDir())
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}

	pos := doc.Accessors[0]
	if pos.Components != 3 || len(pos.Floats) != 9 {
		t.Fatalf("position accessor: components=%d floats=%d", pos.Components, len(pos.Floats))
	}
	if v := pos.Vec(1); v[0] != 1 || v[1] != 0 {
		t.Errorf("position 1: got %v, want [1 0 0]", v)
	}

	idx := doc.Accessors[1]
	if len(idx.Indices) != 3 || idx.Indices[2] != 2 {
		t.Errorf("index accessor: got %v", idx.Indices)
	}

	prim := doc.Meshes[0].Primitives[0]
	if prim.Attributes[document.AttrPosition] != 0 || prim.Indices != 1 || prim.Material != 0 {
		t.Errorf("primitive references: %+v", prim)
	}
}

func TestConvertMaterialsAndImages(t *testing.T) {
	doc, err := Convert(makeTriangleDoc(), t.TempDir())
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}

	mat := doc.Materials[0]
	if mat.BaseColorTexture != 0 || mat.NormalTexture != 1 {
		t.Errorf("texture slots: base=%d normal=%d", mat.BaseColorTexture, mat.NormalTexture)
	}
	if mat.OcclusionTexture != document.NoIndex || mat.MetallicRoughnessTexture != document.NoIndex {
		t.Error("absent slots should be NoIndex")
	}
	if mat.BaseColorFactor == nil || mat.BaseColorFactor[1] != 0.5 {
		t.Errorf("base color factor: got %v", mat.BaseColorFactor)
	}

	if doc.Textures[0].Source != 0 || doc.Textures[1].Source != 0 {
		t.Errorf("textures should share image 0: %+v", doc.Textures)
	}
	if len(doc.Images) != 1 || doc.Images[0].Data != nil {
		t.Errorf("missing external image should convert with empty data: %+v", doc.Images)
	}
}

func TestConvertAnimation(t *testing.T) {
	doc, err := Convert(makeTriangleDoc(), t.TempDir())
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}

	anim := doc.Animations[0]
	if anim.Name != "slide" {
		t.Errorf("animation name: got %q", anim.Name)
	}
	s := anim.Samplers[0]
	if s.Input != 2 || s.Output != 3 || s.Interpolation != document.InterpolationLinear {
		t.Errorf("sampler: %+v", s)
	}
	c := anim.Channels[0]
	if c.Sampler != 0 || c.TargetNode != 1 || c.TargetPath != document.PathTranslation {
		t.Errorf("channel: %+v", c)
	}
}

func TestBufferViewBytesOutOfRange(t *testing.T) {
	doc := makeTriangleDoc()
	if _, err := bufferViewBytes(doc, 99); !errors.Is(err, ErrBufferViewOutOfRange) {
		t.Errorf("expected ErrBufferViewOutOfRange, got %v", err)
	}

	doc.BufferViews = append(doc.BufferViews, &gltf.BufferView{Buffer: 0, ByteOffset: 70, ByteLength: 100})
	if _, err := bufferViewBytes(doc, len(doc.BufferViews)-1); !errors.Is(err, ErrBufferOutOfRange) {
		t.Errorf("expected ErrBufferOutOfRange, got %v", err)
	}
}
