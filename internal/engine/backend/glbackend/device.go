// Package glbackend implements the engine's backend interfaces on OpenGL 4.1.
//
// All calls must be made on the thread that owns the GL context.
package glbackend

import (
	"errors"
	"fmt"
	"image"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-scene/internal/engine/backend"
	"github.com/Faultbox/midgard-scene/internal/engine/shader"
	"github.com/Faultbox/midgard-scene/internal/engine/shader/shaders"
	"github.com/Faultbox/midgard-scene/internal/engine/texture"
	"github.com/Faultbox/midgard-scene/internal/logger"
)

var ErrEmptyImage = errors.New("image has no pixels")

var (
	_ backend.Device  = (*Device)(nil)
	_ backend.Encoder = (*Pass)(nil)
)

type geometry struct {
	vao, vbo, ebo uint32
	indexCount    int
}

// Device owns every GL object created for the engine.
type Device struct {
	scene *shader.Program
	env   *shader.Program
	white uint32

	handles      handles
	geometries   map[uint32]geometry
	transforms   map[uint32]mgl32.Mat4
	images       map[uint32]uint32
	materials    map[uint32]backend.MaterialDesc
	environments map[uint32]uint32

	log *zap.Logger
}

// New compiles the engine programs. A GL context must be current and
// gl.Init must have succeeded.
func New() (*Device, error) {
	d := &Device{
		geometries:   make(map[uint32]geometry),
		transforms:   make(map[uint32]mgl32.Mat4),
		images:       make(map[uint32]uint32),
		materials:    make(map[uint32]backend.MaterialDesc),
		environments: make(map[uint32]uint32),
		log:          logger.Named("glbackend"),
	}

	var err error
	d.scene, err = shader.NewProgram(shaders.SceneVertexShader, shaders.SceneFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("scene shader: %w", err)
	}
	d.env, err = shader.NewProgram(shaders.EnvironmentVertexShader, shaders.EnvironmentFragmentShader)
	if err != nil {
		d.scene.Delete()
		return nil, fmt.Errorf("environment shader: %w", err)
	}
	d.white = uploadTexture(texture.Solid(texture.White), true)
	return d, nil
}

// Close deletes the programs and any resource still alive.
func (d *Device) Close() {
	leaked := len(d.geometries) + len(d.images) + len(d.materials) + len(d.environments) + len(d.transforms)
	if leaked > 0 {
		d.log.Warn("closing device with live resources", zap.Int("count", leaked))
	}
	for h := range d.geometries {
		d.ReleaseGeometry(backend.GeometryHandle(h))
	}
	for h := range d.images {
		d.ReleaseImage(backend.ImageHandle(h))
	}
	for h := range d.environments {
		d.ReleaseEnvironment(backend.EnvironmentHandle(h))
	}
	clear(d.materials)
	clear(d.transforms)

	if d.white != 0 {
		gl.DeleteTextures(1, &d.white)
		d.white = 0
	}
	d.scene.Delete()
	d.env.Delete()
}

// CreateGeometry uploads the shared vertex and index buffers. Empty input
// yields a valid handle that draws nothing.
func (d *Device) CreateGeometry(vertices []backend.Vertex, indices []uint32) (backend.GeometryHandle, error) {
	var g geometry
	if len(vertices) > 0 && len(indices) > 0 {
		gl.GenVertexArrays(1, &g.vao)
		gl.BindVertexArray(g.vao)

		gl.GenBuffers(1, &g.vbo)
		gl.BindBuffer(gl.ARRAY_BUFFER, g.vbo)
		gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*backend.VertexStride, unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)

		for _, a := range vertexAttribs {
			gl.VertexAttribPointerWithOffset(a.location, a.size, gl.FLOAT, false, backend.VertexStride, a.offset)
			gl.EnableVertexAttribArray(a.location)
		}

		gl.GenBuffers(1, &g.ebo)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, g.ebo)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, unsafe.Pointer(&indices[0]), gl.STATIC_DRAW)

		gl.BindVertexArray(0)
		g.indexCount = len(indices)
	}

	h := d.handles.next()
	d.geometries[h] = g
	d.log.Debug("geometry created",
		zap.Uint32("handle", h),
		zap.Int("vertices", len(vertices)),
		zap.Int("indices", len(indices)))
	return backend.GeometryHandle(h), nil
}

// CreateTransform stores a node matrix. The GL path reads the matrix pushed
// with each draw, so transforms live on the CPU side.
func (d *Device) CreateTransform(initial mgl32.Mat4) (backend.TransformHandle, error) {
	h := d.handles.next()
	d.transforms[h] = initial
	return backend.TransformHandle(h), nil
}

// WriteTransform updates a stored node matrix.
func (d *Device) WriteTransform(h backend.TransformHandle, m mgl32.Mat4) {
	if _, ok := d.transforms[uint32(h)]; ok {
		d.transforms[uint32(h)] = m
	}
}

// Transform returns the last matrix written to h.
func (d *Device) Transform(h backend.TransformHandle) (mgl32.Mat4, bool) {
	m, ok := d.transforms[uint32(h)]
	return m, ok
}

func (d *Device) CreateImage(img *image.RGBA) (backend.ImageHandle, error) {
	if img == nil || len(img.Pix) == 0 {
		return 0, ErrEmptyImage
	}
	h := d.handles.next()
	d.images[h] = uploadTexture(img, true)
	return backend.ImageHandle(h), nil
}

// CreateMaterial records the material's factor and images. Zero image
// handles sample the white fallback.
func (d *Device) CreateMaterial(desc backend.MaterialDesc) (backend.MaterialHandle, error) {
	h := d.handles.next()
	d.materials[h] = desc
	return backend.MaterialHandle(h), nil
}

func (d *Device) CreateEnvironment(img *image.RGBA) (backend.EnvironmentHandle, error) {
	if img == nil || len(img.Pix) == 0 {
		return 0, ErrEmptyImage
	}
	h := d.handles.next()
	d.environments[h] = uploadTexture(img, false)
	return backend.EnvironmentHandle(h), nil
}

func (d *Device) ReleaseGeometry(h backend.GeometryHandle) {
	g, ok := d.geometries[uint32(h)]
	if !ok {
		return
	}
	if g.vao != 0 {
		gl.DeleteVertexArrays(1, &g.vao)
		gl.DeleteBuffers(1, &g.vbo)
		gl.DeleteBuffers(1, &g.ebo)
	}
	delete(d.geometries, uint32(h))
}

func (d *Device) ReleaseTransform(h backend.TransformHandle) {
	delete(d.transforms, uint32(h))
}

func (d *Device) ReleaseImage(h backend.ImageHandle) {
	if tex, ok := d.images[uint32(h)]; ok {
		gl.DeleteTextures(1, &tex)
		delete(d.images, uint32(h))
	}
}

func (d *Device) ReleaseMaterial(h backend.MaterialHandle) {
	delete(d.materials, uint32(h))
}

func (d *Device) ReleaseEnvironment(h backend.EnvironmentHandle) {
	if tex, ok := d.environments[uint32(h)]; ok {
		gl.DeleteTextures(1, &tex)
		delete(d.environments, uint32(h))
	}
}

// texture returns the GL texture for an image handle, or the white fallback.
func (d *Device) texture(h backend.ImageHandle) uint32 {
	if tex, ok := d.images[uint32(h)]; ok {
		return tex
	}
	return d.white
}

// uploadTexture creates a 2D texture from img. Tiled textures repeat and
// get mipmaps; environment maps clamp vertically.
func uploadTexture(img *image.RGBA, tiled bool) uint32 {
	var texID uint32
	gl.GenTextures(1, &texID)
	gl.BindTexture(gl.TEXTURE_2D, texID)
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, int32(img.Stride/4))
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(img.Bounds().Dx()), int32(img.Bounds().Dy()), 0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&img.Pix[0]))
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	if tiled {
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
		gl.TexParameterf(gl.TEXTURE_2D, gl.TEXTURE_MAX_ANISOTROPY, 8.0)
	} else {
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	}
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return texID
}
