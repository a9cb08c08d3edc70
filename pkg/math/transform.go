// Package math provides transform helpers for scene graph composition.
// All types are mgl32 types; matrices are column-major (OpenGL compatible).
package math

import (
	"github.com/go-gl/mathgl/mgl32"
)

// TRS composes translate * rotate * scale in that fixed order.
func TRS(t mgl32.Vec3, r mgl32.Quat, s mgl32.Vec3) mgl32.Mat4 {
	m := mgl32.Translate3D(t[0], t[1], t[2])
	m = m.Mul4(r.Normalize().Mat4())
	return m.Mul4(mgl32.Scale3D(s[0], s[1], s[2]))
}

// LerpVec3 performs component-wise linear interpolation between two 3D vectors.
func LerpVec3(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return mgl32.Vec3{
		a[0] + t*(b[0]-a[0]),
		a[1] + t*(b[1]-a[1]),
		a[2] + t*(b[2]-a[2]),
	}
}

// LerpVec4 performs component-wise linear interpolation between two 4D vectors.
func LerpVec4(a, b mgl32.Vec4, t float32) mgl32.Vec4 {
	return mgl32.Vec4{
		a[0] + t*(b[0]-a[0]),
		a[1] + t*(b[1]-a[1]),
		a[2] + t*(b[2]-a[2]),
		a[3] + t*(b[3]-a[3]),
	}
}

// Hermite evaluates the cubic Hermite spline between p0 and p1 with
// tangents m0 and m1 at t in [0, 1]. Tangents must already be scaled
// by the interval length.
func Hermite(p0, m0, p1, m1 mgl32.Vec4, t float32) mgl32.Vec4 {
	t2 := t * t
	t3 := t2 * t
	h00 := 2*t3 - 3*t2 + 1
	h10 := t3 - 2*t2 + t
	h01 := -2*t3 + 3*t2
	h11 := t3 - t2

	var out mgl32.Vec4
	for i := 0; i < 4; i++ {
		out[i] = h00*p0[i] + h10*m0[i] + h01*p1[i] + h11*m1[i]
	}
	return out
}

// TransformPoint applies m to p (w = 1).
func TransformPoint(m mgl32.Mat4, p mgl32.Vec3) mgl32.Vec3 {
	return m.Mul4x1(p.Vec4(1)).Vec3()
}

// TransformNormal applies the upper 3x3 of m to n and renormalizes.
// Zero-length normals stay zero.
func TransformNormal(m mgl32.Mat4, n mgl32.Vec3) mgl32.Vec3 {
	out := m.Mat3().Mul3x1(n)
	if out.Len() == 0 {
		return mgl32.Vec3{}
	}
	return out.Normalize()
}
