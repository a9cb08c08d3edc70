// Package renderer owns the GL frame: context setup, viewport, clearing and
// the device that models draw into.
package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-scene/internal/engine/backend"
	"github.com/Faultbox/midgard-scene/internal/engine/backend/glbackend"
	"github.com/Faultbox/midgard-scene/internal/engine/draw"
	"github.com/Faultbox/midgard-scene/internal/engine/model"
	"github.com/Faultbox/midgard-scene/internal/logger"
)

// Config holds renderer configuration.
type Config struct {
	Width     int
	Height    int
	Wireframe bool
}

// Renderer handles all OpenGL rendering.
type Renderer struct {
	config Config
	device *glbackend.Device

	// Lighting is applied to every scene pass.
	Lighting glbackend.Lighting
}

// New initializes OpenGL and creates the device.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config:   cfg,
		Lighting: glbackend.DefaultLighting,
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.ClearColor(0.1, 0.1, 0.15, 1.0)

	var err error
	r.device, err = glbackend.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create device: %w", err)
	}

	r.Resize(cfg.Width, cfg.Height)
	return r, nil
}

// Device returns the backend device models are loaded onto.
func (r *Renderer) Device() backend.Device {
	return r.device
}

// Close releases the device.
func (r *Renderer) Close() {
	logger.Info("closing renderer")
	if r.device != nil {
		r.device.Close()
		r.device = nil
	}
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Aspect returns the viewport aspect ratio.
func (r *Renderer) Aspect() float32 {
	if r.config.Height == 0 {
		return 1
	}
	return float32(r.config.Width) / float32(r.config.Height)
}

// SetWireframe toggles line rasterization for scene passes.
func (r *Renderer) SetWireframe(on bool) {
	r.config.Wireframe = on
}

// Wireframe reports whether scene passes draw lines.
func (r *Renderer) Wireframe() bool {
	return r.config.Wireframe
}

// Begin starts a new frame.
func (r *Renderer) Begin() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// DrawEnvironment draws env around the camera. It should run before the
// scene so scene depth wins.
func (r *Renderer) DrawEnvironment(env *model.Model, h backend.EnvironmentHandle, view, proj mgl32.Mat4) draw.Stats {
	pass := r.device.EnvironmentPass(view, proj)
	defer pass.End()
	return env.DrawEnvironment(pass, h)
}

// DrawModel draws m with its materials.
func (r *Renderer) DrawModel(m *model.Model, view, proj mgl32.Mat4) draw.Stats {
	if r.config.Wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
		defer gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}
	pass := r.device.ScenePass(proj.Mul4(view), r.Lighting)
	defer pass.End()
	return m.Draw(pass)
}

// ReadPixels reads the current frame as bottom-up RGBA rows.
func (r *Renderer) ReadPixels() ([]byte, int, int) {
	w, h := r.config.Width, r.config.Height
	if w <= 0 || h <= 0 {
		return nil, 0, 0
	}
	pixels := make([]byte, w*h*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels, w, h
}

// End finishes the current frame.
func (r *Renderer) End() {
	gl.UseProgram(0)
}
