package scene

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/midgard-scene/internal/engine/backend"
	"github.com/Faultbox/midgard-scene/pkg/math"
)

var (
	ErrNodeIndexOutOfRange = errors.New("node index out of range")
	ErrMultipleParents     = errors.New("node has more than one parent")
	ErrCyclicHierarchy     = errors.New("node hierarchy contains a cycle")
	ErrRootHasParent       = errors.New("root node has a parent")
	ErrDuplicateRoot       = errors.New("root node listed twice")
)

// Graph is a tree of nodes stored in one ordered arena.
type Graph struct {
	Nodes []Node
	// Roots lists the top-level nodes in draw order.
	Roots []int

	world []mgl32.Mat4
}

// Link resolves children lists into parent indices and validates the tree.
// Out-of-range indices, a node with two parents and cycles are rejected.
// When roots is nil every parentless node becomes a root, in index order.
func Link(nodes []Node, roots []int) (*Graph, error) {
	for i := range nodes {
		nodes[i].Index = i
		nodes[i].Parent = NoParent
	}

	for i := range nodes {
		for _, c := range nodes[i].Children {
			if c < 0 || c >= len(nodes) {
				return nil, fmt.Errorf("%w: node %d lists child %d (have %d nodes)", ErrNodeIndexOutOfRange, i, c, len(nodes))
			}
			if c == i {
				return nil, fmt.Errorf("%w: node %d is its own child", ErrCyclicHierarchy, i)
			}
			if nodes[c].Parent != NoParent {
				return nil, fmt.Errorf("%w: node %d claimed by %d and %d", ErrMultipleParents, c, nodes[c].Parent, i)
			}
			nodes[c].Parent = i
		}
	}

	if err := checkAcyclic(nodes); err != nil {
		return nil, err
	}

	g := &Graph{Nodes: nodes}
	if roots == nil {
		for i := range nodes {
			if nodes[i].Parent == NoParent {
				g.Roots = append(g.Roots, i)
			}
		}
		return g, nil
	}

	seen := make(map[int]bool, len(roots))
	for _, r := range roots {
		if r < 0 || r >= len(nodes) {
			return nil, fmt.Errorf("%w: root %d (have %d nodes)", ErrNodeIndexOutOfRange, r, len(nodes))
		}
		if nodes[r].Parent != NoParent {
			return nil, fmt.Errorf("%w: node %d (parent %d)", ErrRootHasParent, r, nodes[r].Parent)
		}
		if seen[r] {
			return nil, fmt.Errorf("%w: node %d", ErrDuplicateRoot, r)
		}
		seen[r] = true
	}
	g.Roots = append([]int(nil), roots...)
	return g, nil
}

// checkAcyclic follows parent links from every node. Each node has at most
// one parent, so a cycle shows up as a chain that revisits itself.
func checkAcyclic(nodes []Node) error {
	const (
		unvisited = iota
		onPath
		done
	)
	state := make([]uint8, len(nodes))
	var path []int

	for i := range nodes {
		path = path[:0]
		n := i
		for n != NoParent && state[n] == unvisited {
			state[n] = onPath
			path = append(path, n)
			n = nodes[n].Parent
		}
		if n != NoParent && state[n] == onPath {
			return fmt.Errorf("%w: through node %d", ErrCyclicHierarchy, n)
		}
		for _, p := range path {
			state[p] = done
		}
	}
	return nil
}

// Detached returns parentless nodes that are not roots. They stay in the
// arena but are never drawn.
func (g *Graph) Detached() []int {
	isRoot := make(map[int]bool, len(g.Roots))
	for _, r := range g.Roots {
		isRoot[r] = true
	}
	var out []int
	for i := range g.Nodes {
		if g.Nodes[i].Parent == NoParent && !isRoot[i] {
			out = append(out, i)
		}
	}
	return out
}

// LocalMatrix returns translate * rotate * scale * matrix for node i.
func (g *Graph) LocalMatrix(i int) mgl32.Mat4 {
	n := &g.Nodes[i]
	m := math.TRS(n.Translation, n.Rotation, n.Scale)
	if n.HasMatrix {
		m = m.Mul4(n.Matrix)
	}
	return m
}

// WorldMatrix walks from node i to its root, left-multiplying each
// ancestor's local matrix. Cost is proportional to depth.
func (g *Graph) WorldMatrix(i int) mgl32.Mat4 {
	m := g.LocalMatrix(i)
	for p := g.Nodes[i].Parent; p != NoParent; p = g.Nodes[p].Parent {
		m = g.LocalMatrix(p).Mul4(m)
	}
	return m
}

// World returns node i's world matrix as of the last refresh.
// Before the first refresh it falls back to WorldMatrix.
func (g *Graph) World(i int) mgl32.Mat4 {
	if g.world == nil {
		return g.WorldMatrix(i)
	}
	return g.world[i]
}

// Refresh recomputes every node's world matrix in one top-down pass and
// writes it into the transform resource of each mesh-bearing node.
// w may be nil to update the cache only.
func (g *Graph) Refresh(w backend.TransformWriter) {
	if len(g.world) != len(g.Nodes) {
		g.world = make([]mgl32.Mat4, len(g.Nodes))
	}
	ident := mgl32.Ident4()
	for _, r := range g.Roots {
		g.refresh(r, ident, w)
	}
	for _, d := range g.Detached() {
		g.refresh(d, ident, w)
	}
}

// RefreshNode recomputes the subtree rooted at i, reusing the cached world
// matrix of i's parent. The parent must be current.
func (g *Graph) RefreshNode(i int, w backend.TransformWriter) {
	if len(g.world) != len(g.Nodes) {
		g.Refresh(w)
		return
	}
	parent := mgl32.Ident4()
	if p := g.Nodes[i].Parent; p != NoParent {
		parent = g.world[p]
	}
	g.refresh(i, parent, w)
}

func (g *Graph) refresh(i int, parent mgl32.Mat4, w backend.TransformWriter) {
	world := parent.Mul4(g.LocalMatrix(i))
	g.world[i] = world

	n := &g.Nodes[i]
	if n.HasMesh && w != nil && n.Mesh.Transform != 0 {
		w.WriteTransform(n.Mesh.Transform, world)
	}
	for _, c := range n.Children {
		g.refresh(c, world, w)
	}
}

// Walk visits the nodes reachable from the roots depth-first in declared
// order, calling fn before descending into children.
func (g *Graph) Walk(fn func(n *Node)) {
	for _, r := range g.Roots {
		g.walk(r, fn, nil)
	}
}

func (g *Graph) walk(i int, pre, post func(n *Node)) {
	n := &g.Nodes[i]
	if pre != nil {
		pre(n)
	}
	for _, c := range n.Children {
		g.walk(c, pre, post)
	}
	if post != nil {
		post(n)
	}
}

// Release frees every mesh transform resource, children before parents.
// Calling it again is a no-op.
func (g *Graph) Release(dev backend.Device) {
	release := func(n *Node) {
		if n.HasMesh && n.Mesh.Transform != 0 {
			dev.ReleaseTransform(n.Mesh.Transform)
			n.Mesh.Transform = 0
		}
	}
	for _, r := range g.Roots {
		g.walk(r, nil, release)
	}
	for _, d := range g.Detached() {
		g.walk(d, nil, release)
	}
}
