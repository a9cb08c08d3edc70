// scenetool inspects glTF scenes headlessly: it loads a document onto a
// recording backend and prints what the runtime would create and draw.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/Faultbox/midgard-scene/internal/engine/animation"
	"github.com/Faultbox/midgard-scene/internal/engine/backend"
	"github.com/Faultbox/midgard-scene/internal/engine/loader"
	"github.com/Faultbox/midgard-scene/internal/engine/model"
	"github.com/Faultbox/midgard-scene/internal/engine/scene"
	"github.com/Faultbox/midgard-scene/internal/logger"
	"github.com/Faultbox/midgard-scene/pkg/document/gltfdoc"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "info":
		err = cmdInfo(os.Stdout, args)
	case "tree":
		err = cmdTree(os.Stdout, args)
	case "draws":
		err = cmdDraws(os.Stdout, args)
	case "animate", "anim":
		err = cmdAnimate(os.Stdout, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`scenetool - glTF scene runtime inspector

Usage:
  scenetool <command> [options] <file.gltf|file.glb>

Commands:
  info     Show resource counts, bounds and animations
  tree     Print the node hierarchy with local transforms
  draws    Print the backend commands for one frame
  animate  Step an animation and print animated node positions

Load options (all commands):
  -scale F          Uniform vertex scale
  -flip-y           Negate the vertical axis
  -pretransform     Bake node transforms into vertices
  -premultiply      Multiply vertex colors by alpha
  -no-images        Skip image decoding
  -debug            Log loader diagnostics

Examples:
  scenetool info Box.glb
  scenetool draws -pretransform CesiumMan.gltf
  scenetool animate -anim 0 -dt 0.25 -frames 8 AnimatedCube.gltf`)
}

// loadFlags registers the load options shared by every command.
type loadFlags struct {
	scale        float64
	flipY        bool
	pretransform bool
	premultiply  bool
	noImages     bool
	debug        bool
}

func (f *loadFlags) register(fs *flag.FlagSet) {
	fs.Float64Var(&f.scale, "scale", 1, "Uniform vertex scale")
	fs.BoolVar(&f.flipY, "flip-y", false, "Negate the vertical axis")
	fs.BoolVar(&f.pretransform, "pretransform", false, "Bake node transforms into vertices")
	fs.BoolVar(&f.premultiply, "premultiply", false, "Multiply vertex colors by alpha")
	fs.BoolVar(&f.noImages, "no-images", false, "Skip image decoding")
	fs.BoolVar(&f.debug, "debug", false, "Log loader diagnostics")
}

func (f *loadFlags) options() loader.Options {
	opts := loader.DefaultOptions()
	opts.Scale = float32(f.scale)
	opts.FlipY = f.flipY
	opts.PreTransformVertices = f.pretransform
	opts.PreMultiplyVertexColors = f.premultiply
	opts.DontLoadImages = f.noImages
	return opts
}

// open loads path onto a fresh recorder.
func (f *loadFlags) open(path string) (*model.Model, *backend.Recorder, error) {
	level := "warn"
	if f.debug {
		level = "debug"
	}
	if err := logger.Init(level, ""); err != nil {
		return nil, nil, err
	}

	doc, err := gltfdoc.Open(path)
	if err != nil {
		return nil, nil, err
	}
	rec := backend.NewRecorder()
	m, err := loader.Load(doc, rec, f.options())
	if err != nil {
		return nil, nil, fmt.Errorf("load %s: %w", path, err)
	}
	return m, rec, nil
}

func parse(name, usage string, args []string, extra func(fs *flag.FlagSet)) (*loadFlags, *flag.FlagSet) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: scenetool %s\n", usage)
		fs.PrintDefaults()
	}
	lf := &loadFlags{}
	lf.register(fs)
	if extra != nil {
		extra(fs)
	}
	fs.Parse(args)
	if fs.NArg() < 1 {
		fs.Usage()
		os.Exit(1)
	}
	return lf, fs
}

func cmdInfo(w io.Writer, args []string) error {
	lf, fs := parse("info", "info [options] <file>", args, nil)
	m, rec, err := lf.open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer m.Destroy()

	fmt.Fprintf(w, "Document: %s\n", fs.Arg(0))
	printInfo(w, m, rec)
	return nil
}

func printInfo(w io.Writer, m *model.Model, rec *backend.Recorder) {
	meshNodes, prims := 0, 0
	for i := range m.Graph.Nodes {
		if n := &m.Graph.Nodes[i]; n.HasMesh {
			meshNodes++
			prims += len(n.Mesh.Primitives)
		}
	}
	placeholders := 0
	for _, img := range m.Images {
		if img.Placeholder {
			placeholders++
		}
	}

	fmt.Fprintf(w, "Nodes:      %d (%d roots, %d with mesh, %d detached)\n",
		len(m.Graph.Nodes), len(m.Graph.Roots), meshNodes, len(m.Graph.Detached()))
	fmt.Fprintf(w, "Primitives: %d\n", prims)
	fmt.Fprintf(w, "Vertices:   %d\n", m.VertexCount)
	fmt.Fprintf(w, "Indices:    %d\n", m.IndexCount)
	fmt.Fprintf(w, "Materials:  %d\n", len(m.Materials))
	fmt.Fprintf(w, "Textures:   %d\n", len(m.Textures))
	fmt.Fprintf(w, "Images:     %d (%d placeholder)\n", len(m.Images), placeholders)
	if !m.Bounds.Empty() {
		c := m.Bounds.Center()
		fmt.Fprintf(w, "Bounds:     center=(%.3f, %.3f, %.3f) radius=%.3f\n", c[0], c[1], c[2], m.Bounds.Radius())
	}
	fmt.Fprintf(w, "Resources:  %d live\n", rec.Live())

	anims := m.Animations()
	if len(anims) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Animations:")
	for i, a := range anims {
		modes := make(map[string]int)
		for s := range a.Samplers {
			modes[a.Samplers[s].Mode().String()]++
		}
		var names []string
		for k := range modes {
			names = append(names, k)
		}
		sort.Strings(names)
		fmt.Fprintf(w, "  [%d] %-20s %.3fs..%.3fs  channels=%d  samplers=%s\n",
			i, a.Name, a.Start, a.End, len(a.Channels), strings.Join(names, ","))
	}
}

func cmdTree(w io.Writer, args []string) error {
	lf, fs := parse("tree", "tree [options] <file>", args, nil)
	m, _, err := lf.open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer m.Destroy()

	printTree(w, m.Graph)
	return nil
}

func printTree(w io.Writer, g *scene.Graph) {
	g.Walk(func(n *scene.Node) {
		depth := 0
		for p := n.Parent; p != scene.NoParent; p = g.Nodes[p].Parent {
			depth++
		}
		name := n.Name
		if name == "" {
			name = fmt.Sprintf("node_%d", n.Index)
		}

		var xform string
		if n.HasMatrix {
			xform = "matrix"
		} else {
			t, s := n.Translation, n.Scale
			xform = fmt.Sprintf("t=(%.3g, %.3g, %.3g) s=(%.3g, %.3g, %.3g)", t[0], t[1], t[2], s[0], s[1], s[2])
		}
		mesh := ""
		if n.HasMesh {
			mesh = fmt.Sprintf(" mesh=%q prims=%d", n.Mesh.Name, len(n.Mesh.Primitives))
		}
		fmt.Fprintf(w, "%s[%d] %s %s%s\n", strings.Repeat("  ", depth), n.Index, name, xform, mesh)
	})
	if d := g.Detached(); len(d) > 0 {
		fmt.Fprintf(w, "detached: %v\n", d)
	}
}

func cmdDraws(w io.Writer, args []string) error {
	lf, fs := parse("draws", "draws [options] <file>", args, nil)
	m, rec, err := lf.open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer m.Destroy()

	rec.Reset()
	st := m.Draw(rec)
	for _, c := range rec.Commands() {
		fmt.Fprintln(w, c)
	}
	fmt.Fprintf(w, "\n%d nodes visited, %d draws\n", st.Nodes, st.Draws)
	return nil
}

func cmdAnimate(w io.Writer, args []string) error {
	var (
		index  int
		dt     float64
		frames int
	)
	lf, fs := parse("animate", "animate [options] <file>", args, func(fs *flag.FlagSet) {
		fs.IntVar(&index, "anim", 0, "Animation index")
		fs.Float64Var(&dt, "dt", 1.0/30, "Seconds per step")
		fs.IntVar(&frames, "frames", 10, "Number of steps")
	})
	m, _, err := lf.open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer m.Destroy()

	return stepAnimation(w, m, index, float32(dt), frames)
}

// stepAnimation advances animation index and prints the world position of
// every node it targets after each step.
func stepAnimation(w io.Writer, m *model.Model, index int, dt float32, frames int) error {
	anims := m.Animations()
	if index < 0 || index >= len(anims) {
		return fmt.Errorf("animation %d out of range (have %d)", index, len(anims))
	}
	targets := animatedNodes(&anims[index])

	for f := 0; f < frames; f++ {
		m.Update(dt, index)
		fmt.Fprintf(w, "t=%.3f", m.Animator.Animations[index].CurrentTime)
		for _, n := range targets {
			p := m.Graph.World(n).Col(3)
			fmt.Fprintf(w, "  [%d]=(%.3f, %.3f, %.3f)", n, p[0], p[1], p[2])
		}
		fmt.Fprintln(w)
	}
	return nil
}

func animatedNodes(a *animation.Animation) []int {
	seen := make(map[int]bool)
	var nodes []int
	for _, c := range a.Channels {
		if !seen[c.Node] {
			seen[c.Node] = true
			nodes = append(nodes, c.Node)
		}
	}
	sort.Ints(nodes)
	return nodes
}
