// Package draw walks a scene graph and records draw commands.
package draw

import (
	"github.com/Faultbox/midgard-scene/internal/engine/backend"
	"github.com/Faultbox/midgard-scene/internal/engine/scene"
)

// Binding slots used by the traversals.
const (
	MaterialSlot    uint32 = 1
	EnvironmentSlot uint32 = 0
)

// Stats counts what a traversal did.
type Stats struct {
	Nodes int
	Draws int
}

// Scene records one frame of g: the shared geometry is bound once, then
// every primitive is drawn depth-first in declared order with its material
// bound and its node's world matrix pushed. Primitives without indices are
// skipped.
func Scene(enc backend.Encoder, g *scene.Graph, geom backend.GeometryHandle, materials []scene.Material) Stats {
	enc.BindGeometry(geom)
	return traverse(enc, g, func(p *scene.Primitive) {
		enc.BindMaterial(MaterialSlot, materials[p.Material].Resource)
	})
}

// Environment records g as an environment pass: env is bound once for the
// whole traversal and no materials are bound.
func Environment(enc backend.Encoder, g *scene.Graph, geom backend.GeometryHandle, env backend.EnvironmentHandle) Stats {
	enc.BindGeometry(geom)
	enc.BindEnvironment(EnvironmentSlot, env)
	return traverse(enc, g, nil)
}

func traverse(enc backend.Encoder, g *scene.Graph, bind func(p *scene.Primitive)) Stats {
	var st Stats
	g.Walk(func(n *scene.Node) {
		st.Nodes++
		if !n.HasMesh {
			return
		}
		for i := range n.Mesh.Primitives {
			p := &n.Mesh.Primitives[i]
			if p.IndexCount == 0 {
				continue
			}
			if bind != nil {
				bind(p)
			}
			enc.PushTransform(g.World(n.Index))
			enc.DrawIndexed(p.IndexCount, p.FirstIndex)
			st.Draws++
		}
	})
	return st
}
