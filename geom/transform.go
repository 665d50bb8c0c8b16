// Package geom holds the small value types shared by the collision and
// dynamics packages: rotations, rigid transforms and motion sweeps.
package geom

import (
	"math"

	"github.com/setanarut/vec"
)

// Rot is a rotation stored as its sine and cosine.
type Rot struct {
	S, C float64
}

// NewRot returns the rotation for angle in radians.
func NewRot(angle float64) Rot {
	return Rot{S: math.Sin(angle), C: math.Cos(angle)}
}

// RotIdentity returns the zero rotation.
func RotIdentity() Rot {
	return Rot{S: 0, C: 1}
}

// Angle returns the rotation angle in radians.
func (q Rot) Angle() float64 {
	return math.Atan2(q.S, q.C)
}

// XAxis returns the rotated x axis.
func (q Rot) XAxis() vec.Vec2 {
	return vec.Vec2{X: q.C, Y: q.S}
}

// YAxis returns the rotated y axis.
func (q Rot) YAxis() vec.Vec2 {
	return vec.Vec2{X: -q.S, Y: q.C}
}

// Apply rotates v.
func (q Rot) Apply(v vec.Vec2) vec.Vec2 {
	return vec.Vec2{X: q.C*v.X - q.S*v.Y, Y: q.S*v.X + q.C*v.Y}
}

// ApplyT rotates v by the inverse rotation.
func (q Rot) ApplyT(v vec.Vec2) vec.Vec2 {
	return vec.Vec2{X: q.C*v.X + q.S*v.Y, Y: -q.S*v.X + q.C*v.Y}
}

// Mul composes two rotations, q * r.
func (q Rot) Mul(r Rot) Rot {
	return Rot{
		S: q.S*r.C + q.C*r.S,
		C: q.C*r.C - q.S*r.S,
	}
}

// MulT returns transpose(q) * r.
func (q Rot) MulT(r Rot) Rot {
	return Rot{
		S: q.C*r.S - q.S*r.C,
		C: q.C*r.C + q.S*r.S,
	}
}

// Transform is a rigid transform: a translation followed by a rotation.
//
//	X' = Q * X + P
type Transform struct {
	P vec.Vec2
	Q Rot
}

// NewTransform creates a transform from a position and an angle.
func NewTransform(p vec.Vec2, angle float64) Transform {
	return Transform{P: p, Q: NewRot(angle)}
}

// TransformIdentity returns the identity transform.
func TransformIdentity() Transform {
	return Transform{Q: RotIdentity()}
}

// Apply transforms the point v.
func (t Transform) Apply(v vec.Vec2) vec.Vec2 {
	return vec.Vec2{
		X: t.Q.C*v.X - t.Q.S*v.Y + t.P.X,
		Y: t.Q.S*v.X + t.Q.C*v.Y + t.P.Y,
	}
}

// ApplyT transforms the point v by the inverse transform.
func (t Transform) ApplyT(v vec.Vec2) vec.Vec2 {
	px := v.X - t.P.X
	py := v.Y - t.P.Y
	return vec.Vec2{
		X: t.Q.C*px + t.Q.S*py,
		Y: -t.Q.S*px + t.Q.C*py,
	}
}

// Mul composes two transforms, t * b.
func (t Transform) Mul(b Transform) Transform {
	return Transform{
		Q: t.Q.Mul(b.Q),
		P: t.Q.Apply(b.P).Add(t.P),
	}
}

// MulT returns inverse(t) * b.
func (t Transform) MulT(b Transform) Transform {
	return Transform{
		Q: t.Q.MulT(b.Q),
		P: t.Q.ApplyT(b.P.Sub(t.P)),
	}
}
