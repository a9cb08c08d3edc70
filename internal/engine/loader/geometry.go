package loader

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/midgard-scene/internal/engine/backend"
	"github.com/Faultbox/midgard-scene/internal/engine/model"
	"github.com/Faultbox/midgard-scene/internal/engine/scene"
	"github.com/Faultbox/midgard-scene/pkg/document"
	"github.com/Faultbox/midgard-scene/pkg/math"
)

// span is a contiguous vertex range in the shared buffer.
type span struct {
	first, count int
}

// builtMesh caches the primitives and vertex spans appended for one
// document mesh so nodes sharing it also share its geometry.
type builtMesh struct {
	primitives []scene.Primitive
	spans      []span
}

type geometry struct {
	vertices []backend.Vertex
	indices  []uint32
}

// loadGeometry flattens every mesh node's primitives into one vertex and
// one index buffer and uploads them.
func (l *loadState) loadGeometry() error {
	var geo geometry
	built := make(map[int]*builtMesh)

	// World matrices are read before any node is neutralized.
	var world []mgl32.Mat4
	if l.opts.PreTransformVertices {
		world = make([]mgl32.Mat4, len(l.graph.Nodes))
		for i := range world {
			world[i] = l.graph.WorldMatrix(i)
		}
	}

	for i := range l.graph.Nodes {
		n := &l.graph.Nodes[i]
		if !n.HasMesh {
			continue
		}
		meshIdx := l.doc.Nodes[i].Mesh

		bm, ok := built[meshIdx]
		if !ok || l.opts.PreTransformVertices {
			xform := mgl32.Ident4()
			if world != nil {
				xform = world[i]
			}
			var err error
			bm, err = l.appendMesh(&geo, meshIdx, xform, world != nil)
			if err != nil {
				return fmt.Errorf("node %d: %w", i, err)
			}
			built[meshIdx] = bm
		}
		n.Mesh.Primitives = append([]scene.Primitive(nil), bm.primitives...)

		bm.extendBounds(&l.m.Bounds, geo.vertices, l.nodeMatrix(i, world != nil))
	}

	if world != nil {
		for i := range l.graph.Nodes {
			n := &l.graph.Nodes[i]
			n.Matrix = mgl32.Ident4()
			n.HasMatrix = false
			n.Translation = mgl32.Vec3{}
			n.Rotation = mgl32.QuatIdent()
			n.Scale = mgl32.Vec3{1, 1, 1}
		}
	}

	h, err := l.dev.CreateGeometry(geo.vertices, geo.indices)
	if err != nil {
		return fmt.Errorf("geometry: %w", err)
	}
	l.m.Geometry = h
	l.m.VertexCount = len(geo.vertices)
	l.m.IndexCount = len(geo.indices)
	return nil
}

// nodeMatrix is the matrix that places node i's vertices in model space.
func (l *loadState) nodeMatrix(i int, baked bool) mgl32.Mat4 {
	if baked {
		return mgl32.Ident4()
	}
	return l.graph.WorldMatrix(i)
}

func (bm *builtMesh) extendBounds(b *model.Bounds, vertices []backend.Vertex, m mgl32.Mat4) {
	for _, s := range bm.spans {
		for _, v := range vertices[s.first : s.first+s.count] {
			b.Extend(math.TransformPoint(m, v.Position))
		}
	}
}

func (l *loadState) appendMesh(geo *geometry, meshIdx int, xform mgl32.Mat4, baked bool) (*builtMesh, error) {
	dm := &l.doc.Meshes[meshIdx]
	bm := &builtMesh{}
	for p := range dm.Primitives {
		prim, s, err := l.appendPrimitive(geo, &dm.Primitives[p], xform, baked)
		if err != nil {
			return nil, fmt.Errorf("mesh %d primitive %d: %w", meshIdx, p, err)
		}
		bm.primitives = append(bm.primitives, prim)
		bm.spans = append(bm.spans, s)
	}
	return bm, nil
}

func (l *loadState) accessor(idx int) (*document.Accessor, error) {
	if idx < 0 || idx >= len(l.doc.Accessors) {
		return nil, fmt.Errorf("%w: %d (have %d)", ErrAccessorOutOfRange, idx, len(l.doc.Accessors))
	}
	return &l.doc.Accessors[idx], nil
}

// optionalAttribute returns the accessor for name, or nil when absent.
func (l *loadState) optionalAttribute(dp *document.Primitive, name string) (*document.Accessor, error) {
	idx, ok := dp.Attributes[name]
	if !ok {
		return nil, nil
	}
	return l.accessor(idx)
}

func (l *loadState) appendPrimitive(geo *geometry, dp *document.Primitive, xform mgl32.Mat4, baked bool) (scene.Primitive, span, error) {
	posIdx, ok := dp.Attributes[document.AttrPosition]
	if !ok {
		return scene.Primitive{}, span{}, ErrMissingPosition
	}
	pos, err := l.accessor(posIdx)
	if err != nil {
		return scene.Primitive{}, span{}, err
	}
	if pos.Components < 3 {
		return scene.Primitive{}, span{}, fmt.Errorf("%w: position accessor %d has %d components", ErrMissingPosition, posIdx, pos.Components)
	}

	attrs := make(map[string]*document.Accessor, 4)
	for _, name := range []string{document.AttrNormal, document.AttrTexCoord0, document.AttrTangent, document.AttrColor0} {
		a, err := l.optionalAttribute(dp, name)
		if err != nil {
			return scene.Primitive{}, span{}, fmt.Errorf("%s: %w", name, err)
		}
		attrs[name] = a
	}

	matIdx, err := l.materialFor(dp.Material)
	if err != nil {
		return scene.Primitive{}, span{}, err
	}

	vertexStart := len(geo.vertices)
	count := min(pos.Count, len(pos.Floats)/pos.Components)
	for v := 0; v < count; v++ {
		geo.vertices = append(geo.vertices, l.vertex(v, pos, attrs, xform, baked))
	}

	firstIndex := len(geo.indices)
	if dp.Indices != document.NoIndex {
		ia, err := l.accessor(dp.Indices)
		if err != nil {
			return scene.Primitive{}, span{}, fmt.Errorf("indices: %w", err)
		}
		for _, idx := range ia.Indices {
			if int(idx) >= count {
				return scene.Primitive{}, span{}, fmt.Errorf("%w: index %d exceeds %d vertices", ErrAccessorOutOfRange, idx, count)
			}
			geo.indices = append(geo.indices, idx+uint32(vertexStart))
		}
	} else {
		for v := 0; v < count; v++ {
			geo.indices = append(geo.indices, uint32(vertexStart+v))
		}
	}

	prim := scene.Primitive{
		FirstIndex: uint32(firstIndex),
		IndexCount: uint32(len(geo.indices) - firstIndex),
		Material:   matIdx,
	}
	return prim, span{first: vertexStart, count: count}, nil
}

// vertex assembles vertex v with the load options applied.
func (l *loadState) vertex(v int, pos *document.Accessor, attrs map[string]*document.Accessor, xform mgl32.Mat4, baked bool) backend.Vertex {
	p := pos.Vec(v)
	out := backend.Vertex{
		Position: mgl32.Vec3{p[0], p[1], p[2]},
		Color:    mgl32.Vec4{1, 1, 1, 1},
	}

	if a := attrs[document.AttrNormal]; a != nil {
		if n := a.Vec(v); len(n) >= 3 {
			out.Normal = mgl32.Vec3{n[0], n[1], n[2]}
			if out.Normal.Len() > 0 {
				out.Normal = out.Normal.Normalize()
			}
		}
	}
	if a := attrs[document.AttrTexCoord0]; a != nil {
		if uv := a.Vec(v); len(uv) >= 2 {
			out.UV = mgl32.Vec2{uv[0], uv[1]}
		}
	}
	if a := attrs[document.AttrTangent]; a != nil {
		if t := a.Vec(v); len(t) >= 4 {
			out.Tangent = mgl32.Vec4{t[0], t[1], t[2], t[3]}
		} else if len(t) == 3 {
			out.Tangent = mgl32.Vec4{t[0], t[1], t[2], 1}
		}
	}
	if a := attrs[document.AttrColor0]; a != nil {
		switch c := a.Vec(v); len(c) {
		case 3:
			out.Color = mgl32.Vec4{c[0], c[1], c[2], 1}
		case 4:
			out.Color = mgl32.Vec4{c[0], c[1], c[2], c[3]}
		}
	}

	if baked {
		out.Position = math.TransformPoint(xform, out.Position)
		out.Normal = math.TransformNormal(xform, out.Normal)
	}
	if l.opts.Scale != 1 {
		out.Position = out.Position.Mul(l.opts.Scale)
	}
	if l.opts.FlipY {
		out.Position[1] = -out.Position[1]
		out.Normal[1] = -out.Normal[1]
	}
	if l.opts.PreMultiplyVertexColors {
		a := out.Color[3]
		out.Color = mgl32.Vec4{out.Color[0] * a, out.Color[1] * a, out.Color[2] * a, a}
	}
	return out
}
