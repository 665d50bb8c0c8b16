package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/setanarut/b2d/config"
)

func TestLoadMissingFile(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := cfg, config.Default(); got != want {
		t.Errorf("got %+v want %+v", got, want)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim.yaml")
	data := []byte("step:\n  hz: 120\n  steps: 10\nscene:\n  name: pendulum\n  size: 5\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Step.Hz != 120 || cfg.Step.Steps != 10 {
		t.Errorf("got step %+v", cfg.Step)
	}
	if cfg.Scene.Name != "pendulum" || cfg.Scene.Size != 5 {
		t.Errorf("got scene %+v", cfg.Scene)
	}
	// untouched fields keep their defaults
	if got, want := cfg.Step.VelocityIterations, 8; got != want {
		t.Errorf("got %v want %v", got, want)
	}
	if got, want := cfg.Dt(), 1.0/120; got != want {
		t.Errorf("got %v want %v", got, want)
	}
}

func TestParseWorld(t *testing.T) {
	cfg, err := config.Parse([]byte("world:\n  gravity: [0, -3.5]\n  allow_sleep: false\n  sub_stepping: true\n"))
	if err != nil {
		t.Fatal(err)
	}

	def := cfg.WorldDef(nil)
	if def.Gravity.X != 0 || def.Gravity.Y != -3.5 {
		t.Errorf("got gravity %v", def.Gravity)
	}
	if def.AllowSleep {
		t.Error("allow_sleep should be false")
	}
	if !def.SubStepping {
		t.Error("sub_stepping should be true")
	}
	if !def.WarmStarting || !def.ContinuousPhysics || !def.BlockSolve {
		t.Errorf("defaults lost: %+v", def)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"hz", "step:\n  hz: 0\n", "step.hz"},
		{"velocity iterations", "step:\n  velocity_iterations: 0\n", "velocity_iterations"},
		{"position iterations", "step:\n  position_iterations: -1\n", "position_iterations"},
		{"steps", "step:\n  steps: -5\n", "step.steps"},
		{"scene", "scene:\n  name: tower\n", "unknown scene"},
		{"size", "scene:\n  size: 0\n", "scene.size"},
		{"syntax", "step: [", "config:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("got %q want it to mention %q", err, tt.want)
			}
		})
	}
}
