package draw

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/midgard-scene/internal/engine/backend"
	"github.com/Faultbox/midgard-scene/internal/engine/scene"
)

// siblings builds a root with three mesh children, each with two
// primitives using materials 0 and 1.
func siblings(t *testing.T) (*scene.Graph, []scene.Material) {
	t.Helper()
	nodes := []scene.Node{scene.NewNode("root", 1, 2, 3)}
	for i := 0; i < 3; i++ {
		n := scene.NewNode("child")
		n.Translation = mgl32.Vec3{float32(i + 1), 0, 0}
		n.HasMesh = true
		base := uint32(i * 6)
		n.Mesh.Primitives = []scene.Primitive{
			{FirstIndex: base, IndexCount: 3, Material: 0},
			{FirstIndex: base + 3, IndexCount: 3, Material: 1},
		}
		nodes = append(nodes, n)
	}
	g, err := scene.Link(nodes, nil)
	if err != nil {
		t.Fatalf("Link: %v", err)
	}
	g.Refresh(nil)

	materials := []scene.Material{{Resource: 10}, {Resource: 20}}
	return g, materials
}

func TestSceneOrder(t *testing.T) {
	g, materials := siblings(t)
	rec := backend.NewRecorder()

	st := Scene(rec, g, 7, materials)
	if st.Draws != 6 || st.Nodes != 4 {
		t.Errorf("stats: got %+v", st)
	}

	cmds := rec.Commands()
	if cmds[0].Op != backend.OpBindGeometry || cmds[0].Handle != 7 {
		t.Fatalf("first command: got %s", cmds[0])
	}
	if n := len(rec.Filter(backend.OpBindGeometry)); n != 1 {
		t.Errorf("geometry bound %d times", n)
	}

	draws := rec.Filter(backend.OpDrawIndexed)
	if len(draws) != 6 {
		t.Fatalf("expected 6 draws, got %d", len(draws))
	}
	for i, d := range draws {
		if d.FirstIndex != uint32(i*3) || d.IndexCount != 3 {
			t.Errorf("draw %d: got %s", i, d)
		}
	}

	// bind-material, push-transform, draw-indexed per primitive
	body := cmds[1:]
	if len(body) != 18 {
		t.Fatalf("expected 18 commands after bind-geometry, got %d", len(body))
	}
	for i := 0; i < 6; i++ {
		bind, push, draw := body[3*i], body[3*i+1], body[3*i+2]
		if bind.Op != backend.OpBindMaterial || push.Op != backend.OpPushTransform || draw.Op != backend.OpDrawIndexed {
			t.Fatalf("primitive %d: got %s, %s, %s", i, bind, push, draw)
		}
		if bind.Slot != MaterialSlot {
			t.Errorf("primitive %d: slot %d", i, bind.Slot)
		}
		wantMat := uint32(10)
		if i%2 == 1 {
			wantMat = 20
		}
		if bind.Handle != wantMat {
			t.Errorf("primitive %d: material %d, want %d", i, bind.Handle, wantMat)
		}
		wantX := float32(i/2 + 1)
		if push.Matrix[12] != wantX {
			t.Errorf("primitive %d: pushed x %v, want %v", i, push.Matrix[12], wantX)
		}
	}
}

func TestSceneIsDeterministic(t *testing.T) {
	g, materials := siblings(t)
	a, b := backend.NewRecorder(), backend.NewRecorder()
	Scene(a, g, 1, materials)
	Scene(b, g, 1, materials)

	ca, cb := a.Commands(), b.Commands()
	if len(ca) != len(cb) {
		t.Fatalf("lengths differ: %d vs %d", len(ca), len(cb))
	}
	for i := range ca {
		if ca[i] != cb[i] {
			t.Fatalf("command %d differs: %s vs %s", i, ca[i], cb[i])
		}
	}
}

func TestSceneSkipsEmptyPrimitives(t *testing.T) {
	n := scene.NewNode("n")
	n.HasMesh = true
	n.Mesh.Primitives = []scene.Primitive{
		{FirstIndex: 0, IndexCount: 0},
		{FirstIndex: 0, IndexCount: 6},
	}
	g, err := scene.Link([]scene.Node{n}, nil)
	if err != nil {
		t.Fatalf("Link: %v", err)
	}

	rec := backend.NewRecorder()
	st := Scene(rec, g, 1, []scene.Material{{Resource: 3}})
	if st.Draws != 1 {
		t.Errorf("draws: got %d, want 1", st.Draws)
	}
	if n := len(rec.Filter(backend.OpBindMaterial)); n != 1 {
		t.Errorf("empty primitive should not bind a material, got %d binds", n)
	}
}

func TestSceneSkipsDetachedNodes(t *testing.T) {
	a := scene.NewNode("a")
	a.HasMesh = true
	a.Mesh.Primitives = []scene.Primitive{{IndexCount: 3}}
	b := a
	b.Name = "b"
	b.Mesh.Primitives = []scene.Primitive{{FirstIndex: 3, IndexCount: 3}}

	g, err := scene.Link([]scene.Node{a, b}, []int{1})
	if err != nil {
		t.Fatalf("Link: %v", err)
	}
	rec := backend.NewRecorder()
	Scene(rec, g, 1, []scene.Material{{}})

	draws := rec.Filter(backend.OpDrawIndexed)
	if len(draws) != 1 || draws[0].FirstIndex != 3 {
		t.Errorf("expected only the root's draw, got %v", draws)
	}
}

func TestEnvironment(t *testing.T) {
	g, _ := siblings(t)
	rec := backend.NewRecorder()

	st := Environment(rec, g, 2, 9)
	if st.Draws != 6 {
		t.Errorf("draws: got %d", st.Draws)
	}

	cmds := rec.Commands()
	if cmds[0].Op != backend.OpBindGeometry || cmds[1].Op != backend.OpBindEnvironment {
		t.Fatalf("preamble: got %s, %s", cmds[0], cmds[1])
	}
	if cmds[1].Slot != EnvironmentSlot || cmds[1].Handle != 9 {
		t.Errorf("environment bind: got %s", cmds[1])
	}
	if n := len(rec.Filter(backend.OpBindEnvironment)); n != 1 {
		t.Errorf("environment bound %d times", n)
	}
	if n := len(rec.Filter(backend.OpBindMaterial)); n != 0 {
		t.Errorf("environment pass bound %d materials", n)
	}
}
