package glbackend

import (
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/midgard-scene/internal/engine/backend"
	"github.com/Faultbox/midgard-scene/internal/engine/shader"
)

// Texture units used by the scene program, in material slot order.
const (
	unitBaseColor uint32 = iota
	unitNormal
	unitOcclusion
	unitMetallicRoughness
)

// Lighting holds the scene program's light uniforms.
type Lighting struct {
	Direction mgl32.Vec3
	Ambient   mgl32.Vec3
}

// DefaultLighting is a white key light from above and in front.
var DefaultLighting = Lighting{
	Direction: mgl32.Vec3{-0.3, -1, -0.5}.Normalize(),
	Ambient:   mgl32.Vec3{0.3, 0.3, 0.3},
}

// Pass records draws with one program. It implements backend.Encoder.
type Pass struct {
	d    *Device
	prog *shader.Program
	geom geometry
}

// ScenePass starts a pass with the material program.
func (d *Device) ScenePass(viewProj mgl32.Mat4, light Lighting) *Pass {
	p := &Pass{d: d, prog: d.scene}
	p.prog.Use()
	gl.UniformMatrix4fv(p.prog.Uniform("uViewProj"), 1, false, &viewProj[0])
	gl.Uniform3f(p.prog.Uniform("uLightDir"), light.Direction[0], light.Direction[1], light.Direction[2])
	gl.Uniform3f(p.prog.Uniform("uAmbient"), light.Ambient[0], light.Ambient[1], light.Ambient[2])
	gl.Uniform1i(p.prog.Uniform("uBaseColor"), int32(unitBaseColor))
	gl.Uniform1i(p.prog.Uniform("uNormalMap"), int32(unitNormal))
	gl.Uniform1i(p.prog.Uniform("uOcclusion"), int32(unitOcclusion))
	gl.Uniform1i(p.prog.Uniform("uMetallicRoughness"), int32(unitMetallicRoughness))
	return p
}

// EnvironmentPass starts a pass with the environment program. The view's
// translation is dropped so the environment stays centered on the camera.
func (d *Device) EnvironmentPass(view, proj mgl32.Mat4) *Pass {
	rot := view.Mat3().Mat4()
	viewProj := proj.Mul4(rot)

	p := &Pass{d: d, prog: d.env}
	p.prog.Use()
	gl.UniformMatrix4fv(p.prog.Uniform("uViewProj"), 1, false, &viewProj[0])
	gl.DepthFunc(gl.LEQUAL)
	gl.DepthMask(false)
	return p
}

// End restores state changed by the pass.
func (p *Pass) End() {
	if p.prog == p.d.env {
		gl.DepthMask(true)
		gl.DepthFunc(gl.LESS)
	}
	gl.BindVertexArray(0)
}

func (p *Pass) BindGeometry(h backend.GeometryHandle) {
	p.geom = p.d.geometries[uint32(h)]
	gl.BindVertexArray(p.geom.vao)
}

// BindMaterial binds the material's images to their texture units. The
// slot only matters to APIs with explicit resource sets.
func (p *Pass) BindMaterial(_ uint32, h backend.MaterialHandle) {
	desc, ok := p.d.materials[uint32(h)]
	if !ok {
		desc = backend.MaterialDesc{BaseColorFactor: mgl32.Vec4{1, 1, 1, 1}}
	}
	f := desc.BaseColorFactor
	gl.Uniform4f(p.prog.Uniform("uBaseColorFactor"), f[0], f[1], f[2], f[3])

	bind := []struct {
		unit  uint32
		image backend.ImageHandle
	}{
		{unitBaseColor, desc.BaseColor},
		{unitNormal, desc.Normal},
		{unitOcclusion, desc.Occlusion},
		{unitMetallicRoughness, desc.MetallicRoughness},
	}
	for _, b := range bind {
		gl.ActiveTexture(gl.TEXTURE0 + b.unit)
		gl.BindTexture(gl.TEXTURE_2D, p.d.texture(b.image))
	}
	gl.ActiveTexture(gl.TEXTURE0)
}

func (p *Pass) BindEnvironment(slot uint32, h backend.EnvironmentHandle) {
	tex, ok := p.d.environments[uint32(h)]
	if !ok {
		tex = p.d.white
	}
	gl.ActiveTexture(gl.TEXTURE0 + slot)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.Uniform1i(p.prog.Uniform("uEnvironment"), int32(slot))
	gl.ActiveTexture(gl.TEXTURE0)
}

func (p *Pass) PushTransform(m mgl32.Mat4) {
	gl.UniformMatrix4fv(p.prog.Uniform("uModel"), 1, false, &m[0])
}

// DrawIndexed draws from the bound geometry. Ranges past the uploaded
// indices are dropped.
func (p *Pass) DrawIndexed(indexCount, firstIndex uint32) {
	if p.geom.vao == 0 || int(firstIndex)+int(indexCount) > p.geom.indexCount {
		return
	}
	gl.DrawElementsWithOffset(gl.TRIANGLES, int32(indexCount), gl.UNSIGNED_INT, uintptr(firstIndex*4))
}
