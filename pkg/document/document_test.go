package document

import "testing"

func TestAccessorVec(t *testing.T) {
	a := Accessor{Count: 2, Components: 3, Floats: []float32{1, 2, 3, 4, 5, 6}}

	tests := []struct {
		name string
		i    int
		want []float32
	}{
		{"first", 0, []float32{1, 2, 3}},
		{"second", 1, []float32{4, 5, 6}},
		{"past end", 2, nil},
		{"negative", -1, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.Vec(tt.i)
			if len(got) != len(tt.want) {
				t.Fatalf("Vec(%d): got %v, want %v", tt.i, got, tt.want)
			}
			for j := range got {
				if got[j] != tt.want[j] {
					t.Errorf("Vec(%d)[%d]: got %v, want %v", tt.i, j, got[j], tt.want[j])
				}
			}
		})
	}
}

func TestRootNodes(t *testing.T) {
	d := &Document{Scene: NoIndex}
	if _, ok := d.RootNodes(); ok {
		t.Error("document without scenes should report no roots")
	}

	d.Scenes = []Scene{{Nodes: []int{0}}, {Nodes: []int{2, 3}}}
	if roots, _ := d.RootNodes(); len(roots) != 1 || roots[0] != 0 {
		t.Errorf("NoIndex default scene should fall back to scene 0, got %v", roots)
	}

	d.Scene = 1
	if roots, _ := d.RootNodes(); len(roots) != 2 || roots[0] != 2 {
		t.Errorf("default scene 1: got %v", roots)
	}
}

func TestConstructors(t *testing.T) {
	n := NewNode("n", 1, 2)
	if n.Mesh != NoIndex || len(n.Children) != 2 {
		t.Errorf("NewNode: %+v", n)
	}

	m := NewMaterial("m")
	if m.BaseColorTexture != NoIndex || m.NormalTexture != NoIndex ||
		m.OcclusionTexture != NoIndex || m.MetallicRoughnessTexture != NoIndex {
		t.Errorf("NewMaterial should leave every slot empty: %+v", m)
	}
}
