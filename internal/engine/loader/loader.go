// Package loader builds a model from a parsed document: it links the node
// hierarchy, flattens all primitives into one shared vertex and index
// buffer, resolves materials and images, and converts animations.
package loader

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-scene/internal/engine/backend"
	"github.com/Faultbox/midgard-scene/internal/engine/model"
	"github.com/Faultbox/midgard-scene/internal/engine/scene"
	"github.com/Faultbox/midgard-scene/internal/logger"
	"github.com/Faultbox/midgard-scene/pkg/document"
)

// Hierarchy errors are reported by scene.Link and surface unchanged.
var (
	ErrNodeIndexOutOfRange = scene.ErrNodeIndexOutOfRange
	ErrCyclicHierarchy     = scene.ErrCyclicHierarchy
	ErrMultipleParents     = scene.ErrMultipleParents
)

var (
	ErrMeshOutOfRange        = errors.New("mesh index out of range")
	ErrAccessorOutOfRange    = errors.New("accessor index out of range")
	ErrMaterialOutOfRange    = errors.New("material index out of range")
	ErrTextureOutOfRange     = errors.New("texture index out of range")
	ErrImageOutOfRange       = errors.New("image index out of range")
	ErrMissingPosition       = errors.New("primitive has no position attribute")
	ErrSamplerOutOfRange     = errors.New("animation sampler index out of range")
	ErrChannelNodeOutOfRange = errors.New("animation channel node out of range")
	ErrAnimatedMatrixNode    = errors.New("animation targets a node with an explicit matrix")
	ErrImageDecode           = errors.New("image decode failed")
)

// Options are load-time effects applied to the document.
type Options struct {
	// PreTransformVertices bakes every node's world matrix into its vertices
	// and leaves node transforms neutral.
	PreTransformVertices bool
	// PreMultiplyVertexColors multiplies vertex rgb by alpha.
	PreMultiplyVertexColors bool
	// FlipY negates the vertical axis of positions and normals.
	FlipY bool
	// DontLoadImages skips image decoding and image resource creation.
	DontLoadImages bool
	// DefaultImage is the image index substituted for empty texture slots.
	// A negative or out-of-range value makes the loader add a white 1x1 image.
	DefaultImage int
	// Scale multiplies vertex positions uniformly.
	Scale float32
}

// DefaultOptions returns options that leave the document unchanged.
func DefaultOptions() Options {
	return Options{
		DefaultImage: -1,
		Scale:        1,
	}
}

// Load builds a model from doc, creating its resources on dev. On error
// every resource created so far is released and no model is returned.
func Load(doc *document.Document, dev backend.Device, opts Options) (*model.Model, error) {
	if opts.Scale == 0 {
		opts.Scale = 1
	}

	l := &loadState{
		doc:  doc,
		dev:  dev,
		opts: opts,
		log:  logger.Named("loader"),
		m:    model.New(dev),
	}

	if err := l.load(); err != nil {
		l.m.Destroy()
		return nil, err
	}
	return l.m, nil
}

type loadState struct {
	doc  *document.Document
	dev  backend.Device
	opts Options
	log  *zap.Logger
	m    *model.Model

	graph *scene.Graph
	// imageOf maps document image indices to model image indices, -1 when
	// the document image has no data.
	imageOf     []int
	placeholder int
	// defaultMaterial is the index of the material used by primitives that
	// name none, or -1 until one is needed.
	defaultMaterial int
}

func (l *loadState) load() error {
	l.placeholder = -1
	l.defaultMaterial = -1

	if err := l.loadNodes(); err != nil {
		return err
	}
	if err := l.loadImages(); err != nil {
		return err
	}
	if err := l.loadTextures(); err != nil {
		return err
	}
	if err := l.loadMaterials(); err != nil {
		return err
	}
	if err := l.loadGeometry(); err != nil {
		return err
	}
	if err := l.createMaterials(); err != nil {
		return err
	}
	if err := l.createTransforms(); err != nil {
		return err
	}
	anims, err := l.loadAnimations()
	if err != nil {
		return err
	}

	l.m.SetGraph(l.graph, anims)
	l.graph.Refresh(l.dev)

	l.log.Debug("model loaded",
		zap.Int("nodes", len(l.graph.Nodes)),
		zap.Int("vertices", l.m.VertexCount),
		zap.Int("indices", l.m.IndexCount),
		zap.Int("materials", len(l.m.Materials)),
		zap.Int("images", len(l.m.Images)),
		zap.Int("animations", len(anims)))
	return nil
}

// loadNodes converts document nodes and links them into a graph rooted at
// the selected scene.
func (l *loadState) loadNodes() error {
	nodes := make([]scene.Node, len(l.doc.Nodes))
	for i, dn := range l.doc.Nodes {
		n := scene.NewNode(dn.Name, append([]int(nil), dn.Children...)...)
		if dn.Matrix != nil {
			n.Matrix = mgl32.Mat4(*dn.Matrix)
			n.HasMatrix = true
		}
		if dn.Translation != nil {
			n.Translation = mgl32.Vec3(*dn.Translation)
		}
		if dn.Rotation != nil {
			r := dn.Rotation
			n.Rotation = mgl32.Quat{W: r[3], V: mgl32.Vec3{r[0], r[1], r[2]}}
		}
		if dn.Scale != nil {
			n.Scale = mgl32.Vec3(*dn.Scale)
		}
		if dn.Mesh != document.NoIndex {
			if dn.Mesh < 0 || dn.Mesh >= len(l.doc.Meshes) {
				return fmt.Errorf("%w: node %d uses mesh %d (have %d)", ErrMeshOutOfRange, i, dn.Mesh, len(l.doc.Meshes))
			}
			n.HasMesh = true
			n.Mesh.Name = l.doc.Meshes[dn.Mesh].Name
		}
		nodes[i] = n
	}

	roots, ok := l.doc.RootNodes()
	if ok && roots == nil {
		roots = []int{}
	}
	g, err := scene.Link(nodes, roots)
	if err != nil {
		return err
	}
	l.graph = g
	l.m.Graph = g

	if detached := g.Detached(); len(detached) > 0 {
		l.log.Warn("nodes outside the scene are not drawn", zap.Ints("nodes", detached))
	}
	return nil
}

// createTransforms allocates a transform resource for every mesh node,
// initialized to its world matrix.
func (l *loadState) createTransforms() error {
	for i := range l.graph.Nodes {
		n := &l.graph.Nodes[i]
		if !n.HasMesh {
			continue
		}
		h, err := l.dev.CreateTransform(l.graph.WorldMatrix(i))
		if err != nil {
			return fmt.Errorf("node %d transform: %w", i, err)
		}
		n.Mesh.Transform = h
	}
	return nil
}
