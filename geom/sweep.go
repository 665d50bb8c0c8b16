package geom

import (
	"math"

	"github.com/setanarut/vec"
)

// Sweep describes the motion of a body over one time step. Shapes are
// defined relative to the body origin, which may not coincide with the
// center of mass, so the local center is kept to recover the transform.
type Sweep struct {
	LocalCenter vec.Vec2 // local center of mass
	C0, C       vec.Vec2 // center world positions
	A0, A       float64  // world angles

	// Alpha0 is the fraction of the current step already covered by C0 and A0.
	Alpha0 float64
}

// Transform returns the interpolated transform at beta in [0,1].
func (s *Sweep) Transform(beta float64) Transform {
	c := s.C0.Lerp(s.C, beta)
	angle := (1-beta)*s.A0 + beta*s.A
	xf := Transform{Q: NewRot(angle)}
	xf.P = c.Sub(xf.Q.Apply(s.LocalCenter))
	return xf
}

// Advance moves the sweep start forward to time alpha.
func (s *Sweep) Advance(alpha float64) {
	beta := (alpha - s.Alpha0) / (1 - s.Alpha0)
	s.C0 = s.C0.Add(s.C.Sub(s.C0).Scale(beta))
	s.A0 += beta * (s.A - s.A0)
	s.Alpha0 = alpha
}

// Normalize shifts both angles by a multiple of 2π so that A0 lies in [0, 2π).
func (s *Sweep) Normalize() {
	const twoPi = 2 * math.Pi
	d := twoPi * math.Floor(s.A0/twoPi)
	s.A0 -= d
	s.A -= d
}
