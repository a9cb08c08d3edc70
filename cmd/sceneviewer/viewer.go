package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-scene/internal/config"
	"github.com/Faultbox/midgard-scene/internal/engine/backend"
	"github.com/Faultbox/midgard-scene/internal/engine/camera"
	"github.com/Faultbox/midgard-scene/internal/engine/debug"
	"github.com/Faultbox/midgard-scene/internal/engine/input"
	"github.com/Faultbox/midgard-scene/internal/engine/loader"
	"github.com/Faultbox/midgard-scene/internal/engine/model"
	"github.com/Faultbox/midgard-scene/internal/engine/renderer"
	"github.com/Faultbox/midgard-scene/internal/engine/window"
	"github.com/Faultbox/midgard-scene/internal/logger"
	"github.com/Faultbox/midgard-scene/pkg/document"
	"github.com/Faultbox/midgard-scene/pkg/document/gltfdoc"
)

type viewer struct {
	cfg    *config.Config
	win    *window.Window
	render *renderer.Renderer
	input  *input.Input
	cam    *camera.OrbitCamera
	state  *playback
	shots  *debug.ScreenshotCapture

	model   *model.Model
	env     *model.Model
	envTex  backend.EnvironmentHandle
	envDev  backend.Device
	log     *zap.Logger
	title   string
	frames  int
	elapsed float32
	capture bool // save the next rendered frame
}

func newViewer(cfg *config.Config) (*viewer, error) {
	v := &viewer{
		cfg:   cfg,
		input: input.New(),
		cam:   camera.NewOrbitCamera(),
		shots: debug.NewScreenshotCapture("screenshots", "scene"),
		log:   logger.Named("viewer"),
		title: "Midgard Scene - " + filepath.Base(cfg.Scene.Model),
	}

	var err error
	v.win, err = window.New(window.Config{
		Title:      v.title,
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return nil, err
	}

	w, h := v.win.DrawableSize()
	v.render, err = renderer.New(renderer.Config{Width: w, Height: h, Wireframe: cfg.Graphics.Wireframe})
	if err != nil {
		v.Close()
		return nil, err
	}

	if err := v.loadScene(); err != nil {
		v.Close()
		return nil, err
	}
	return v, nil
}

func (v *viewer) loadScene() error {
	dev := v.render.Device()

	doc, err := gltfdoc.Open(v.cfg.Scene.Model)
	if err != nil {
		return err
	}
	v.model, err = loader.Load(doc, dev, v.cfg.LoadOptions())
	if err != nil {
		return fmt.Errorf("load %s: %w", v.cfg.Scene.Model, err)
	}
	v.state = newPlayback(v.model, v.cfg.Animation)
	v.fitCamera()

	v.log.Info("model loaded",
		zap.String("path", v.cfg.Scene.Model),
		zap.Int("nodes", len(v.model.Graph.Nodes)),
		zap.Int("vertices", v.model.VertexCount),
		zap.Int("animations", len(v.model.Animations())))

	if v.cfg.Scene.EnvironmentImage == "" {
		return nil
	}
	return v.loadEnvironment(dev)
}

// loadEnvironment loads the environment image and the geometry it is drawn
// on: the configured environment model, or a unit cube.
func (v *viewer) loadEnvironment(dev backend.Device) error {
	data, err := os.ReadFile(v.cfg.Scene.EnvironmentImage)
	if err != nil {
		return fmt.Errorf("environment image: %w", err)
	}
	v.envTex, err = loader.LoadEnvironment(dev, data, "")
	if err != nil {
		return err
	}
	v.envDev = dev

	envDoc := skyCube()
	if path := v.cfg.Scene.EnvironmentModel; path != "" {
		if envDoc, err = gltfdoc.Open(path); err != nil {
			return err
		}
	}
	opts := loader.DefaultOptions()
	opts.DontLoadImages = true
	v.env, err = loader.Load(envDoc, dev, opts)
	if err != nil {
		return fmt.Errorf("environment model: %w", err)
	}
	return nil
}

func (v *viewer) fitCamera() {
	b := v.model.Bounds
	if b.Empty() {
		v.cam.FitToSphere(b.Center(), 1)
		return
	}
	v.cam.FitToSphere(b.Center(), b.Radius())
}

// Close releases the scene before the GL context goes away.
func (v *viewer) Close() {
	if v.model != nil {
		v.model.Destroy()
	}
	if v.env != nil {
		v.env.Destroy()
	}
	if v.envTex != 0 {
		v.envDev.ReleaseEnvironment(v.envTex)
		v.envTex = 0
	}
	if v.render != nil {
		v.render.Close()
	}
	if v.win != nil {
		v.win.Close()
	}
}

// Run drives the frame loop: input, animation tick, refresh, draw.
func (v *viewer) Run() {
	clock := window.NewClock()
	for {
		if v.input.Update() {
			return
		}
		if v.handleInput() {
			return
		}

		dt := clock.Tick()
		v.state.Tick(dt)
		v.frame()
		if v.capture {
			v.screenshot()
		}
		v.win.SwapBuffers()
		v.updateTitle(dt)
	}
}

func (v *viewer) handleInput() bool {
	for _, e := range v.input.Events() {
		switch e.Type {
		case input.EventWindowResize:
			w, h := v.win.DrawableSize()
			v.render.Resize(w, h)
		case input.EventKeyDown:
			switch v.state.HandleKey(e.Key) {
			case actionQuit:
				return true
			case actionWireframe:
				v.render.SetWireframe(!v.render.Wireframe())
			case actionFit:
				v.fitCamera()
			case actionScreenshot:
				v.capture = true
			}
		}
	}

	if dx, dy := v.input.Drag(sdl.BUTTON_LEFT); dx != 0 || dy != 0 {
		v.cam.HandleDrag(dx, dy)
	}
	if w := v.input.Wheel(); w != 0 {
		v.cam.HandleZoom(w)
	}
	return false
}

func (v *viewer) frame() {
	view := v.cam.ViewMatrix()
	proj := v.cam.ProjectionMatrix(v.render.Aspect())

	v.render.Begin()
	if v.env != nil {
		v.render.DrawEnvironment(v.env, v.envTex, view, proj)
	}
	v.render.DrawModel(v.model, view, proj)
	v.render.End()
}

func (v *viewer) screenshot() {
	v.capture = false
	pixels, w, h := v.render.ReadPixels()
	path, err := v.shots.CaptureFromPixels(pixels, w, h)
	if err != nil {
		v.log.Warn("screenshot failed", zap.Error(err))
		return
	}
	v.log.Info("screenshot saved", zap.String("path", path))
}

func (v *viewer) updateTitle(dt float32) {
	v.frames++
	v.elapsed += dt
	if v.elapsed < 1 {
		return
	}
	v.win.SetTitle(fmt.Sprintf("%s | %s | %.0f fps", v.title, v.state.Status(), float32(v.frames)/v.elapsed))
	v.frames = 0
	v.elapsed = 0
}

// skyCube is a unit cube around the origin used as environment geometry.
func skyCube() *document.Document {
	positions := []float32{
		-1, -1, -1, 1, -1, -1, 1, 1, -1, -1, 1, -1,
		-1, -1, 1, 1, -1, 1, 1, 1, 1, -1, 1, 1,
	}
	indices := []uint32{
		0, 2, 1, 0, 3, 2, // back
		4, 5, 6, 4, 6, 7, // front
		0, 4, 7, 0, 7, 3, // left
		1, 2, 6, 1, 6, 5, // right
		3, 7, 6, 3, 6, 2, // top
		0, 1, 5, 0, 5, 4, // bottom
	}
	node := document.NewNode("sky")
	node.Mesh = 0
	return &document.Document{
		Nodes: []document.Node{node},
		Meshes: []document.Mesh{{
			Name: "sky",
			Primitives: []document.Primitive{{
				Attributes: map[string]int{document.AttrPosition: 0},
				Indices:    1,
				Material:   document.NoIndex,
			}},
		}},
		Accessors: []document.Accessor{
			{Count: 8, Components: 3, Floats: positions},
			{Count: len(indices), Components: 1, Indices: indices},
		},
		Scene: document.NoIndex,
	}
}
