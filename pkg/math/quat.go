package math

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// QuatFromVec4 reads a quaternion stored as (x, y, z, w).
func QuatFromVec4(v mgl32.Vec4) mgl32.Quat {
	return mgl32.Quat{W: v[3], V: mgl32.Vec3{v[0], v[1], v[2]}}
}

// QuatToVec4 stores a quaternion as (x, y, z, w).
func QuatToVec4(q mgl32.Quat) mgl32.Vec4 {
	return mgl32.Vec4{q.V[0], q.V[1], q.V[2], q.W}
}

// ShortestArc returns other, negated if needed so that it lies in the same
// hemisphere as q. The second result reports whether negation happened.
func ShortestArc(q, other mgl32.Quat) (mgl32.Quat, bool) {
	if q.Dot(other) < 0 {
		return other.Scale(-1), true
	}
	return other, false
}

// Slerp performs spherical linear interpolation between two quaternions
// along the shorter arc. t should be in range [0, 1].
func Slerp(q, other mgl32.Quat, t float32) mgl32.Quat {
	other, _ = ShortestArc(q, other)
	dot := q.Dot(other)

	// Nearly parallel: fall back to normalized lerp to avoid dividing by sin(0)
	if dot > 0.9995 {
		return mgl32.Quat{
			W: q.W + t*(other.W-q.W),
			V: LerpVec3(q.V, other.V, t),
		}.Normalize()
	}

	theta0 := float32(math.Acos(float64(dot)))
	theta := theta0 * t
	sinTheta := float32(math.Sin(float64(theta)))
	sinTheta0 := float32(math.Sin(float64(theta0)))

	s0 := float32(math.Cos(float64(theta))) - dot*sinTheta/sinTheta0
	s1 := sinTheta / sinTheta0

	return mgl32.Quat{
		W: q.W*s0 + other.W*s1,
		V: q.V.Mul(s0).Add(other.V.Mul(s1)),
	}.Normalize()
}
