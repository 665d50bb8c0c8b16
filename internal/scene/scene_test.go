package scene_test

import (
	"strings"
	"testing"

	"github.com/setanarut/b2d"
	"github.com/setanarut/b2d/config"
	"github.com/setanarut/b2d/internal/scene"
)

func TestBuild(t *testing.T) {
	tests := []struct {
		scene  config.Scene
		bodies int
		joints int
	}{
		{config.Scene{Name: "pyramid", Size: 3}, 1 + 6, 0},
		{config.Scene{Name: "bullet", Size: 1, Bullets: true}, 4, 0},
		{config.Scene{Name: "pendulum", Size: 5}, 1 + 5 + 1, 5 + 2},
	}
	for _, tt := range tests {
		t.Run(tt.scene.Name, func(t *testing.T) {
			w := b2d.NewWorld(b2d.DefaultWorldDef())
			if err := scene.Build(w, tt.scene); err != nil {
				t.Fatal(err)
			}
			if got, want := w.BodyCount(), tt.bodies; got != want {
				t.Errorf("bodies: got %v want %v", got, want)
			}
			if got, want := w.JointCount(), tt.joints; got != want {
				t.Errorf("joints: got %v want %v", got, want)
			}
			for range 30 {
				if err := w.Step(1.0/60, 8, 3); err != nil {
					t.Fatal(err)
				}
			}
		})
	}
}

func TestBuildUnknown(t *testing.T) {
	w := b2d.NewWorld(b2d.DefaultWorldDef())
	if err := scene.Build(w, config.Scene{Name: "tower", Size: 1}); err == nil {
		t.Fatal("expected an error")
	}
}

func TestBulletStopsAtWall(t *testing.T) {
	w := b2d.NewWorld(b2d.DefaultWorldDef())
	if err := scene.Bullet(w, true); err != nil {
		t.Fatal(err)
	}
	disc := w.Bodies()[3]
	for i := range 120 {
		if err := w.Step(1.0/60, 8, 3); err != nil {
			t.Fatal(err)
		}
		if x := disc.Position().X; x > 8 {
			t.Fatalf("step %d: disc passed the wall at x=%v", i, x)
		}
	}
}

func TestPendulumStaysBelowRope(t *testing.T) {
	w := b2d.NewWorld(b2d.DefaultWorldDef())
	const links = 6
	if err := scene.Pendulum(w, links); err != nil {
		t.Fatal(err)
	}
	last := w.Bodies()[links]
	for range 180 {
		if err := w.Step(1.0/60, 8, 3); err != nil {
			t.Fatal(err)
		}
	}
	// the rope anchors at (0, 25) and allows links - 0.5 plus slack
	p := last.Position()
	dx, dy := p.X, p.Y-25
	if d2 := dx*dx + dy*dy; d2 > (links-0.5+0.1)*(links-0.5+0.1) {
		t.Errorf("last link at %v is beyond the rope length", p)
	}
}

func TestTrace(t *testing.T) {
	w := b2d.NewWorld(b2d.DefaultWorldDef())
	if err := scene.Pyramid(w, 2); err != nil {
		t.Fatal(err)
	}
	var sb strings.Builder
	if err := scene.Trace(&sb, w, 7); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	if got, want := len(lines), w.BodyCount(); got != want {
		t.Fatalf("got %v lines want %v", got, want)
	}
	if !strings.HasPrefix(lines[0], "7 0 static ") {
		t.Errorf("unexpected first line %q", lines[0])
	}
}
