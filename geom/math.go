package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/setanarut/vec"
)

// CrossVS returns the cross product of a vector and a scalar, v x s.
func CrossVS(v vec.Vec2, s float64) vec.Vec2 {
	return vec.Vec2{X: s * v.Y, Y: -s * v.X}
}

// CrossSV returns the cross product of a scalar and a vector, s x v.
func CrossSV(s float64, v vec.Vec2) vec.Vec2 {
	return vec.Vec2{X: -s * v.Y, Y: s * v.X}
}

// Normalize returns the unit vector of v and its original length.
// Vectors shorter than epsilon are returned unchanged with length 0.
func Normalize(v vec.Vec2) (vec.Vec2, float64) {
	l := v.Mag()
	if l < Epsilon {
		return v, 0
	}
	inv := 1 / l
	return vec.Vec2{X: v.X * inv, Y: v.Y * inv}, l
}

// MinV returns the component-wise minimum.
func MinV(a, b vec.Vec2) vec.Vec2 {
	return vec.Vec2{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y)}
}

// MaxV returns the component-wise maximum.
func MaxV(a, b vec.Vec2) vec.Vec2 {
	return vec.Vec2{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y)}
}

// AbsV returns the component-wise absolute value.
func AbsV(a vec.Vec2) vec.Vec2 {
	return vec.Vec2{X: math.Abs(a.X), Y: math.Abs(a.Y)}
}

// Clamp restricts f to [lo, hi].
func Clamp(f, lo, hi float64) float64 {
	return math.Max(lo, math.Min(f, hi))
}

// IsValid reports whether v holds finite numbers.
func IsValid(v vec.Vec2) bool {
	return IsFinite(v.X) && IsFinite(v.Y)
}

// IsFinite reports whether f is neither NaN nor infinite.
func IsFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Mat22 builds a 2x2 matrix from its columns.
func Mat22(ex, ey vec.Vec2) mgl64.Mat2 {
	return mgl64.Mat2{ex.X, ex.Y, ey.X, ey.Y}
}

// MulM22 multiplies a 2x2 matrix and a vector.
func MulM22(m mgl64.Mat2, v vec.Vec2) vec.Vec2 {
	r := m.Mul2x1(mgl64.Vec2{v.X, v.Y})
	return vec.Vec2{X: r[0], Y: r[1]}
}

// Solve22 solves m * x = b. A singular matrix yields the zero vector.
func Solve22(m mgl64.Mat2, b vec.Vec2) vec.Vec2 {
	a11, a12, a21, a22 := m[0], m[2], m[1], m[3]
	det := a11*a22 - a12*a21
	if det != 0 {
		det = 1 / det
	}
	return vec.Vec2{X: det * (a22*b.X - a12*b.Y), Y: det * (a11*b.Y - a21*b.X)}
}

// Solve33 solves m * x = b. A singular matrix yields the zero vector.
func Solve33(m mgl64.Mat3, b mgl64.Vec3) mgl64.Vec3 {
	ex := mgl64.Vec3{m[0], m[1], m[2]}
	ey := mgl64.Vec3{m[3], m[4], m[5]}
	ez := mgl64.Vec3{m[6], m[7], m[8]}
	det := ex.Dot(ey.Cross(ez))
	if det != 0 {
		det = 1 / det
	}
	return mgl64.Vec3{
		det * b.Dot(ey.Cross(ez)),
		det * ex.Dot(b.Cross(ez)),
		det * ex.Dot(ey.Cross(b)),
	}
}

// Solve33x2 solves the upper-left 2x2 block of m against b.
func Solve33x2(m mgl64.Mat3, b vec.Vec2) vec.Vec2 {
	return Solve22(mgl64.Mat2{m[0], m[1], m[3], m[4]}, b)
}

// Epsilon is the machine epsilon for float64.
const Epsilon = 2.220446049250313e-16

// MaxFloat is the largest finite float64.
const MaxFloat = math.MaxFloat64
