package scene

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/midgard-scene/internal/engine/backend"
)

const eps = 1e-4

// threeLevel builds root -> child -> grandchild with
// translate(1,0,0), rotate 90 degrees about Y and scale(2).
func threeLevel(t *testing.T) *Graph {
	t.Helper()
	root := NewNode("root", 1)
	root.Translation = mgl32.Vec3{1, 0, 0}
	child := NewNode("child", 2)
	child.Rotation = mgl32.QuatRotate(float32(math.Pi/2), mgl32.Vec3{0, 1, 0})
	grandchild := NewNode("grandchild")
	grandchild.Scale = mgl32.Vec3{2, 2, 2}

	g, err := Link([]Node{root, child, grandchild}, nil)
	if err != nil {
		t.Fatalf("Link: %v", err)
	}
	return g
}

func TestWorldMatrixThreeLevels(t *testing.T) {
	g := threeLevel(t)

	want := mgl32.Translate3D(1, 0, 0).
		Mul4(mgl32.HomogRotate3DY(float32(math.Pi / 2))).
		Mul4(mgl32.Scale3D(2, 2, 2))
	got := g.WorldMatrix(2)
	if !got.ApproxEqualThreshold(want, eps) {
		t.Errorf("WorldMatrix(grandchild):\ngot  %v\nwant %v", got, want)
	}

	manual := g.LocalMatrix(0).Mul4(g.LocalMatrix(1)).Mul4(g.LocalMatrix(2))
	if !got.ApproxEqualThreshold(manual, eps) {
		t.Errorf("WorldMatrix should equal root.local * child.local * grandchild.local")
	}
}

func TestRefreshMatchesWorldMatrix(t *testing.T) {
	g := threeLevel(t)
	g.Refresh(nil)
	for i := range g.Nodes {
		if !g.World(i).ApproxEqualThreshold(g.WorldMatrix(i), eps) {
			t.Errorf("node %d: top-down refresh disagrees with root-ward walk", i)
		}
	}
}

func TestLocalMatrixComposesExplicitMatrix(t *testing.T) {
	n := NewNode("m")
	n.Matrix = mgl32.Translate3D(0, 5, 0)
	n.HasMatrix = true
	g, err := Link([]Node{n}, nil)
	if err != nil {
		t.Fatalf("Link: %v", err)
	}
	if !g.LocalMatrix(0).ApproxEqualThreshold(mgl32.Translate3D(0, 5, 0), eps) {
		t.Errorf("explicit matrix with neutral TRS should pass through, got %v", g.LocalMatrix(0))
	}
}

func TestLinkParents(t *testing.T) {
	// 0 -> {1, 2}, 2 -> {3}, 4 standalone
	nodes := []Node{
		NewNode("a", 1, 2),
		NewNode("b"),
		NewNode("c", 3),
		NewNode("d"),
		NewNode("e"),
	}
	g, err := Link(nodes, nil)
	if err != nil {
		t.Fatalf("Link: %v", err)
	}

	edges := map[int]int{1: 0, 2: 0, 3: 2}
	for child, parent := range edges {
		if g.Nodes[child].Parent != parent {
			t.Errorf("node %d: parent %d, want %d", child, g.Nodes[child].Parent, parent)
		}
	}

	wantRoots := []int{0, 4}
	if len(g.Roots) != len(wantRoots) {
		t.Fatalf("roots: got %v, want %v", g.Roots, wantRoots)
	}
	for i, r := range wantRoots {
		if g.Roots[i] != r {
			t.Errorf("roots: got %v, want %v", g.Roots, wantRoots)
		}
		if g.Nodes[r].Parent != NoParent {
			t.Errorf("root %d should have no parent", r)
		}
	}
}

func TestLinkRejectsMalformedHierarchies(t *testing.T) {
	tests := []struct {
		name    string
		nodes   []Node
		roots   []int
		wantErr error
	}{
		{"child out of range", []Node{NewNode("a", 5)}, nil, ErrNodeIndexOutOfRange},
		{"negative child", []Node{NewNode("a", -1)}, nil, ErrNodeIndexOutOfRange},
		{"self child", []Node{NewNode("a", 0)}, nil, ErrCyclicHierarchy},
		{"two node cycle", []Node{NewNode("a", 1), NewNode("b", 0)}, nil, ErrCyclicHierarchy},
		{"three node cycle", []Node{NewNode("a", 1), NewNode("b", 2), NewNode("c", 0)}, nil, ErrCyclicHierarchy},
		{"two parents", []Node{NewNode("a", 2), NewNode("b", 2), NewNode("c")}, nil, ErrMultipleParents},
		{"root out of range", []Node{NewNode("a")}, []int{3}, ErrNodeIndexOutOfRange},
		{"root with parent", []Node{NewNode("a", 1), NewNode("b")}, []int{1}, ErrRootHasParent},
		{"duplicate root", []Node{NewNode("a")}, []int{0, 0}, ErrDuplicateRoot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Link(tt.nodes, tt.roots)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDetached(t *testing.T) {
	g, err := Link([]Node{NewNode("a"), NewNode("b"), NewNode("c")}, []int{1})
	if err != nil {
		t.Fatalf("Link: %v", err)
	}
	d := g.Detached()
	if len(d) != 2 || d[0] != 0 || d[1] != 2 {
		t.Errorf("Detached: got %v, want [0 2]", d)
	}
}

func meshGraph(t *testing.T, rec *backend.Recorder) *Graph {
	t.Helper()
	root := NewNode("root", 1)
	root.Translation = mgl32.Vec3{0, 1, 0}
	leaf := NewNode("leaf")
	leaf.Translation = mgl32.Vec3{2, 0, 0}

	for _, n := range []*Node{&root, &leaf} {
		h, err := rec.CreateTransform(mgl32.Ident4())
		if err != nil {
			t.Fatalf("CreateTransform: %v", err)
		}
		n.HasMesh = true
		n.Mesh.Transform = h
	}

	g, err := Link([]Node{root, leaf}, nil)
	if err != nil {
		t.Fatalf("Link: %v", err)
	}
	return g
}

func TestRefreshWritesTransforms(t *testing.T) {
	rec := backend.NewRecorder()
	g := meshGraph(t, rec)

	g.Refresh(rec)

	got, _ := rec.Transform(g.Nodes[1].Mesh.Transform)
	want := mgl32.Translate3D(2, 1, 0)
	if !got.ApproxEqualThreshold(want, eps) {
		t.Errorf("leaf transform: got %v, want %v", got, want)
	}
	if n := len(rec.Filter(backend.OpWriteTransform)); n != 2 {
		t.Errorf("expected 2 transform writes, got %d", n)
	}
}

func TestRefreshNodeSubtree(t *testing.T) {
	rec := backend.NewRecorder()
	g := meshGraph(t, rec)
	g.Refresh(rec)
	rec.Reset()

	g.Nodes[1].Translation = mgl32.Vec3{5, 0, 0}
	g.RefreshNode(1, rec)

	writes := rec.Filter(backend.OpWriteTransform)
	if len(writes) != 1 {
		t.Fatalf("expected only the subtree to be written, got %d writes", len(writes))
	}
	if !writes[0].Matrix.ApproxEqualThreshold(mgl32.Translate3D(5, 1, 0), eps) {
		t.Errorf("subtree refresh used stale parent: %v", writes[0].Matrix)
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	rec := backend.NewRecorder()
	g := meshGraph(t, rec)

	g.Release(rec)
	if rec.Live() != 0 {
		t.Fatalf("expected all transforms released, %d live", rec.Live())
	}

	releases := rec.Filter(backend.OpRelease)
	// Children are torn down before parents
	if releases[0].Handle != uint32(2) || releases[1].Handle != uint32(1) {
		t.Errorf("release order: got %v", releases)
	}

	g.Release(rec)
	if n := len(rec.Filter(backend.OpRelease)); n != 2 {
		t.Errorf("second Release should be a no-op, got %d releases", n)
	}
}

func TestWalkOrder(t *testing.T) {
	g, err := Link([]Node{NewNode("a", 2, 1), NewNode("b"), NewNode("c", 3), NewNode("d")}, nil)
	if err != nil {
		t.Fatalf("Link: %v", err)
	}
	var order []int
	g.Walk(func(n *Node) { order = append(order, n.Index) })

	want := []int{0, 2, 3, 1}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("walk order: got %v, want %v", order, want)
		}
	}
}

func TestMaterialSlots(t *testing.T) {
	m := Material{BaseColorImage: 1, NormalImage: 2, OcclusionImage: 3, MetallicRoughnessImage: 4}
	if m.Slots() != [4]int{1, 2, 3, 4} {
		t.Errorf("Slots: got %v", m.Slots())
	}
}
