// Package scene builds the demo worlds stepped by b2dsim and the tests.
package scene

import (
	"fmt"
	"io"
	"math"

	"github.com/setanarut/b2d"
	"github.com/setanarut/b2d/collision"
	"github.com/setanarut/b2d/config"
	"github.com/setanarut/vec"
)

// Build populates w with the scene named in cfg.
func Build(w *b2d.World, cfg config.Scene) error {
	switch cfg.Name {
	case "pyramid":
		return Pyramid(w, cfg.Size)
	case "bullet":
		return Bullet(w, cfg.Bullets)
	case "pendulum":
		return Pendulum(w, cfg.Size)
	default:
		return fmt.Errorf("scene: unknown scene %q", cfg.Name)
	}
}

// ground adds a static edge along y = 0 from -halfWidth to halfWidth.
func ground(w *b2d.World, halfWidth float64) (*b2d.Body, error) {
	bd := b2d.DefaultBodyDef()
	body, err := w.CreateBody(&bd)
	if err != nil {
		return nil, err
	}
	edge := collision.NewEdge(vec.Vec2{X: -halfWidth}, vec.Vec2{X: halfWidth})
	if _, err := body.CreateFixtureFromShape(edge, 0); err != nil {
		return nil, err
	}
	return body, nil
}

// Pyramid stacks size rows of unit boxes on the ground.
func Pyramid(w *b2d.World, size int) error {
	if _, err := ground(w, 40); err != nil {
		return err
	}

	const a = 0.5
	box := collision.NewBox(a, a)

	x := vec.Vec2{X: -7, Y: 0.75}
	deltaX := vec.Vec2{X: 0.5625, Y: 1.25}
	deltaY := vec.Vec2{X: 1.125, Y: 0}

	for i := range size {
		y := x
		for j := i; j < size; j++ {
			bd := b2d.DefaultBodyDef()
			bd.Type = b2d.Dynamic
			bd.Position = y
			body, err := w.CreateBody(&bd)
			if err != nil {
				return err
			}
			if _, err := body.CreateFixtureFromShape(box, 5); err != nil {
				return err
			}
			y = y.Add(deltaY)
		}
		x = x.Add(deltaX)
	}
	return nil
}

// Bullet fires a small fast disc at a post in front of a thin static
// wall, inside a chain loop. With bullets off the disc is an ordinary
// dynamic body and may pass through the post.
func Bullet(w *b2d.World, bullets bool) error {
	bd := b2d.DefaultBodyDef()
	arena, err := w.CreateBody(&bd)
	if err != nil {
		return err
	}
	loop, err := collision.NewLoop([]vec.Vec2{
		{X: -20, Y: 0}, {X: 20, Y: 0}, {X: 20, Y: 20}, {X: -20, Y: 20},
	})
	if err != nil {
		return err
	}
	if _, err := arena.CreateFixtureFromShape(loop, 0); err != nil {
		return err
	}

	bd.Position = vec.Vec2{X: 8, Y: 4}
	wall, err := w.CreateBody(&bd)
	if err != nil {
		return err
	}
	if _, err := wall.CreateFixtureFromShape(collision.NewBox(0.05, 4), 0); err != nil {
		return err
	}

	// a post standing in the disc's path
	bd = b2d.DefaultBodyDef()
	bd.Type = b2d.Dynamic
	bd.Position = vec.Vec2{X: 0, Y: 1.5}
	target, err := w.CreateBody(&bd)
	if err != nil {
		return err
	}
	if _, err := target.CreateFixtureFromShape(collision.NewBox(0.5, 1.5), 1); err != nil {
		return err
	}

	bd = b2d.DefaultBodyDef()
	bd.Type = b2d.Dynamic
	bd.Position = vec.Vec2{X: -8, Y: 2}
	bd.LinearVelocity = vec.Vec2{X: 300}
	bd.Bullet = bullets
	disc, err := w.CreateBody(&bd)
	if err != nil {
		return err
	}
	fd := b2d.DefaultFixtureDef(collision.NewCircle(vec.Vec2{}, 0.125))
	fd.Density = 20
	fd.Restitution = 0.3
	_, err = disc.CreateFixture(&fd)
	return err
}

// Pendulum hangs a chain of links from revolute joints. A rope joint
// bounds the chain length and a soft distance joint holds a weight below
// the last link.
func Pendulum(w *b2d.World, links int) error {
	anchor, err := ground(w, 40)
	if err != nil {
		return err
	}

	const y = 25.0
	link := b2d.DefaultFixtureDef(collision.NewBox(0.6, 0.125))
	link.Density = 20
	link.Friction = 0.2
	// links never collide with each other
	link.Filter.GroupIndex = -1

	prev := anchor
	for i := range links {
		bd := b2d.DefaultBodyDef()
		bd.Type = b2d.Dynamic
		bd.Position = vec.Vec2{X: 0.5 + float64(i), Y: y}
		body, err := w.CreateBody(&bd)
		if err != nil {
			return err
		}
		if _, err := body.CreateFixture(&link); err != nil {
			return err
		}

		var jd b2d.RevoluteJointDef
		jd.Initialize(prev, body, vec.Vec2{X: float64(i), Y: y})
		if err := w.CreateJoint(b2d.NewRevoluteJoint(&jd)); err != nil {
			return err
		}
		prev = body
	}

	rd := b2d.DefaultRopeJointDef()
	rd.BodyA = anchor
	rd.BodyB = prev
	rd.LocalAnchorA = vec.Vec2{X: 0, Y: y}
	rd.LocalAnchorB = vec.Vec2{}
	rd.MaxLength = float64(links) - 0.5 + 0.01
	if err := w.CreateJoint(b2d.NewRopeJoint(&rd)); err != nil {
		return err
	}

	bd := b2d.DefaultBodyDef()
	bd.Type = b2d.Dynamic
	bd.Position = vec.Vec2{X: float64(links), Y: y - 2}
	weight, err := w.CreateBody(&bd)
	if err != nil {
		return err
	}
	if _, err := weight.CreateFixtureFromShape(collision.NewCircle(vec.Vec2{}, 0.5), 10); err != nil {
		return err
	}

	dd := b2d.DefaultDistanceJointDef()
	dd.Initialize(prev, weight, prev.WorldPoint(vec.Vec2{X: 0.5}), weight.WorldCenter())
	dd.FrequencyHz = 4
	dd.DampingRatio = 0.5
	return w.CreateJoint(b2d.NewDistanceJoint(&dd))
}

// Trace writes one line per body with its position, angle and sleep
// state. Bodies are listed in creation order so traces of identical runs
// compare equal.
func Trace(out io.Writer, w *b2d.World, step int) error {
	for i, b := range w.Bodies() {
		p := b.Position()
		_, err := fmt.Fprintf(out, "%d %d %s %.6f %.6f %.6f %t\n",
			step, i, b.Type(), clean(p.X), clean(p.Y), clean(b.Angle()), b.IsAwake())
		if err != nil {
			return err
		}
	}
	return nil
}

// clean rounds to 1e-9 and maps negative zero to zero.
func clean(f float64) float64 {
	r := math.Round(f*1e9) / 1e9
	if r == 0 {
		return 0
	}
	return r
}
