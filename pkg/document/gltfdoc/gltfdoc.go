// Package gltfdoc converts glTF 2.0 documents parsed by qmuntal/gltf into
// the flat document shape consumed by the loader.
package gltfdoc

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/midgard-scene/pkg/document"
)

var (
	ErrBufferViewOutOfRange = errors.New("buffer view out of range")
	ErrBufferOutOfRange     = errors.New("buffer out of range")
)

var (
	identity16  = [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}
	identityRot = [4]float64{0, 0, 0, 1}
	unitScale   = [3]float64{1, 1, 1}
)

// Open parses a .gltf or .glb file and converts it.
// Relative image URIs are resolved next to the file.
func Open(path string) (*document.Document, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return Convert(doc, filepath.Dir(path))
}

// Convert maps a parsed glTF document onto document.Document.
// baseDir is used to read images referenced by relative URI; an image
// whose file cannot be read is kept with empty Data.
func Convert(doc *gltf.Document, baseDir string) (*document.Document, error) {
	out := &document.Document{Scene: document.NoIndex}
	if doc.Scene != nil {
		out.Scene = *doc.Scene
	}

	for _, s := range doc.Scenes {
		out.Scenes = append(out.Scenes, document.Scene{Name: s.Name, Nodes: append([]int(nil), s.Nodes...)})
	}

	for _, n := range doc.Nodes {
		out.Nodes = append(out.Nodes, convertNode(n))
	}

	for _, m := range doc.Meshes {
		out.Meshes = append(out.Meshes, convertMesh(m))
	}

	for i, acr := range doc.Accessors {
		a, err := convertAccessor(doc, acr)
		if err != nil {
			return nil, fmt.Errorf("accessor %d: %w", i, err)
		}
		out.Accessors = append(out.Accessors, a)
	}

	for _, m := range doc.Materials {
		out.Materials = append(out.Materials, convertMaterial(m))
	}

	for _, t := range doc.Textures {
		tex := document.Texture{Name: t.Name, Source: document.NoIndex}
		if t.Source != nil {
			tex.Source = *t.Source
		}
		out.Textures = append(out.Textures, tex)
	}

	for i, img := range doc.Images {
		im, err := convertImage(doc, img, baseDir)
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", i, err)
		}
		out.Images = append(out.Images, im)
	}

	for _, a := range doc.Animations {
		out.Animations = append(out.Animations, convertAnimation(a))
	}

	return out, nil
}

func convertNode(n *gltf.Node) document.Node {
	out := document.NewNode(n.Name, append([]int(nil), n.Children...)...)
	if n.Mesh != nil {
		out.Mesh = *n.Mesh
	}

	if m := n.MatrixOrDefault(); m != identity16 {
		var mm [16]float32
		for i, v := range m {
			mm[i] = float32(v)
		}
		out.Matrix = &mm
	}
	if t := n.Translation; t != [3]float64{} {
		out.Translation = &[3]float32{float32(t[0]), float32(t[1]), float32(t[2])}
	}
	if r := n.RotationOrDefault(); r != identityRot {
		out.Rotation = &[4]float32{float32(r[0]), float32(r[1]), float32(r[2]), float32(r[3])}
	}
	if s := n.ScaleOrDefault(); s != unitScale {
		out.Scale = &[3]float32{float32(s[0]), float32(s[1]), float32(s[2])}
	}
	return out
}

func convertMesh(m *gltf.Mesh) document.Mesh {
	out := document.Mesh{Name: m.Name}
	for _, p := range m.Primitives {
		prim := document.Primitive{
			Attributes: make(map[string]int, len(p.Attributes)),
			Indices:    document.NoIndex,
			Material:   document.NoIndex,
		}
		for name, idx := range p.Attributes {
			prim.Attributes[name] = idx
		}
		if p.Indices != nil {
			prim.Indices = *p.Indices
		}
		if p.Material != nil {
			prim.Material = *p.Material
		}
		out.Primitives = append(out.Primitives, prim)
	}
	return out
}

func convertAccessor(doc *gltf.Document, acr *gltf.Accessor) (document.Accessor, error) {
	out := document.Accessor{Name: acr.Name, Count: acr.Count}

	data, err := modeler.ReadAccessor(doc, acr, nil)
	if err != nil {
		return out, err
	}

	switch v := data.(type) {
	case []float32:
		out.Components = 1
		out.Floats = v
	case [][2]float32:
		out.Components = 2
		for _, e := range v {
			out.Floats = append(out.Floats, e[:]...)
		}
	case [][3]float32:
		out.Components = 3
		for _, e := range v {
			out.Floats = append(out.Floats, e[:]...)
		}
	case [][4]float32:
		out.Components = 4
		for _, e := range v {
			out.Floats = append(out.Floats, e[:]...)
		}
	case []uint8:
		for _, e := range v {
			out.Indices = append(out.Indices, uint32(e))
		}
	case []uint16:
		for _, e := range v {
			out.Indices = append(out.Indices, uint32(e))
		}
	case []uint32:
		out.Indices = v
	case [][3]uint8:
		out.Components = 3
		for _, e := range v {
			for _, c := range e {
				out.Floats = append(out.Floats, normalize8(c, acr.Normalized))
			}
		}
	case [][4]uint8:
		out.Components = 4
		for _, e := range v {
			for _, c := range e {
				out.Floats = append(out.Floats, normalize8(c, acr.Normalized))
			}
		}
	case [][3]uint16:
		out.Components = 3
		for _, e := range v {
			for _, c := range e {
				out.Floats = append(out.Floats, normalize16(c, acr.Normalized))
			}
		}
	case [][4]uint16:
		out.Components = 4
		for _, e := range v {
			for _, c := range e {
				out.Floats = append(out.Floats, normalize16(c, acr.Normalized))
			}
		}
	}
	// Other layouts (matrices, signed integers) are not consumed by the loader
	return out, nil
}

func normalize8(c uint8, normalized bool) float32 {
	if normalized {
		return float32(c) / 255
	}
	return float32(c)
}

func normalize16(c uint16, normalized bool) float32 {
	if normalized {
		return float32(c) / 65535
	}
	return float32(c)
}

func convertMaterial(m *gltf.Material) document.Material {
	out := document.NewMaterial(m.Name)
	if pbr := m.PBRMetallicRoughness; pbr != nil {
		if f := pbr.BaseColorFactor; f != nil {
			out.BaseColorFactor = &[4]float32{float32(f[0]), float32(f[1]), float32(f[2]), float32(f[3])}
		}
		if pbr.BaseColorTexture != nil {
			out.BaseColorTexture = pbr.BaseColorTexture.Index
		}
		if pbr.MetallicRoughnessTexture != nil {
			out.MetallicRoughnessTexture = pbr.MetallicRoughnessTexture.Index
		}
	}
	if t := m.NormalTexture; t != nil && t.Index != nil {
		out.NormalTexture = *t.Index
	}
	if t := m.OcclusionTexture; t != nil && t.Index != nil {
		out.OcclusionTexture = *t.Index
	}
	return out
}

func convertImage(doc *gltf.Document, img *gltf.Image, baseDir string) (document.Image, error) {
	out := document.Image{Name: img.Name, URI: img.URI, MimeType: img.MimeType}

	switch {
	case img.BufferView != nil:
		data, err := bufferViewBytes(doc, *img.BufferView)
		if err != nil {
			return out, err
		}
		out.Data = data
	case img.IsEmbeddedResource():
		data, err := img.MarshalData()
		if err != nil {
			return out, fmt.Errorf("decoding data URI: %w", err)
		}
		out.Data = data
	case img.URI != "":
		name, err := url.PathUnescape(img.URI)
		if err != nil {
			name = img.URI
		}
		if data, err := os.ReadFile(filepath.Join(baseDir, filepath.FromSlash(name))); err == nil {
			out.Data = data
		}
	}
	return out, nil
}

func bufferViewBytes(doc *gltf.Document, index int) ([]byte, error) {
	if index < 0 || index >= len(doc.BufferViews) {
		return nil, fmt.Errorf("%w: %d", ErrBufferViewOutOfRange, index)
	}
	bv := doc.BufferViews[index]
	if bv.Buffer < 0 || bv.Buffer >= len(doc.Buffers) {
		return nil, fmt.Errorf("%w: %d", ErrBufferOutOfRange, bv.Buffer)
	}
	data := doc.Buffers[bv.Buffer].Data
	end := bv.ByteOffset + bv.ByteLength
	if end > len(data) {
		return nil, fmt.Errorf("%w: view %d ends at %d, buffer holds %d bytes", ErrBufferOutOfRange, index, end, len(data))
	}
	return data[bv.ByteOffset:end], nil
}

func convertAnimation(a *gltf.Animation) document.Animation {
	out := document.Animation{Name: a.Name}
	for _, s := range a.Samplers {
		out.Samplers = append(out.Samplers, document.AnimationSampler{
			Input:         s.Input,
			Output:        s.Output,
			Interpolation: interpolationName(s.Interpolation),
		})
	}
	for _, c := range a.Channels {
		ch := document.AnimationChannel{
			Sampler:    c.Sampler,
			TargetNode: document.NoIndex,
			TargetPath: pathName(c.Target.Path),
		}
		if c.Target.Node != nil {
			ch.TargetNode = *c.Target.Node
		}
		out.Channels = append(out.Channels, ch)
	}
	return out
}

func interpolationName(i gltf.Interpolation) string {
	switch i {
	case gltf.InterpolationStep:
		return document.InterpolationStep
	case gltf.InterpolationCubicSpline:
		return document.InterpolationCubicSpline
	default:
		return document.InterpolationLinear
	}
}

func pathName(p gltf.TRSProperty) string {
	switch p {
	case gltf.TRSTranslation:
		return document.PathTranslation
	case gltf.TRSRotation:
		return document.PathRotation
	case gltf.TRSScale:
		return document.PathScale
	case gltf.TRSWeights:
		return document.PathWeights
	default:
		return ""
	}
}
