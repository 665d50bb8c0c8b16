// Package config loads the simulation settings used by b2dsim from YAML.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"slices"

	"github.com/setanarut/b2d"
	"github.com/setanarut/vec"
	"gopkg.in/yaml.v3"
)

// Scenes lists the scene names Validate accepts.
var Scenes = []string{"pyramid", "bullet", "pendulum"}

// Config is the root YAML document.
type Config struct {
	World World `yaml:"world"`
	Step  Step  `yaml:"step"`
	Scene Scene `yaml:"scene"`
}

// World holds the b2d.WorldDef switches.
type World struct {
	Gravity           [2]float64 `yaml:"gravity"`
	AllowSleep        bool       `yaml:"allow_sleep"`
	WarmStarting      bool       `yaml:"warm_starting"`
	ContinuousPhysics bool       `yaml:"continuous_physics"`
	SubStepping       bool       `yaml:"sub_stepping"`
	BlockSolve        bool       `yaml:"block_solve"`
}

// Step holds the fixed time step and solver iterations.
type Step struct {
	Hz                 float64 `yaml:"hz"`
	VelocityIterations int     `yaml:"velocity_iterations"`
	PositionIterations int     `yaml:"position_iterations"`
	Steps              int     `yaml:"steps"`
}

// Scene selects the demo scene.
type Scene struct {
	Name string `yaml:"name"`
	// Size is the pyramid base or the pendulum link count.
	Size int `yaml:"size"`
	// Bullets marks fast projectiles as bullets.
	Bullets bool `yaml:"bullets"`
}

// Default returns 60 Hz stepping with 8 velocity and 3 position
// iterations over a 20 box pyramid.
func Default() Config {
	d := b2d.DefaultWorldDef()
	return Config{
		World: World{
			Gravity:           [2]float64{d.Gravity.X, d.Gravity.Y},
			AllowSleep:        d.AllowSleep,
			WarmStarting:      d.WarmStarting,
			ContinuousPhysics: d.ContinuousPhysics,
			SubStepping:       d.SubStepping,
			BlockSolve:        d.BlockSolve,
		},
		Step: Step{
			Hz:                 60,
			VelocityIterations: 8,
			PositionIterations: 3,
			Steps:              600,
		},
		Scene: Scene{
			Name:    "pyramid",
			Size:    20,
			Bullets: true,
		},
	}
}

// Load reads the file at path. A missing file yields Default().
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, err
	}
	return Parse(data)
}

// Parse decodes YAML on top of Default() and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges and the scene name.
func (c *Config) Validate() error {
	var errs []error
	if c.Step.Hz <= 0 {
		errs = append(errs, fmt.Errorf("config: step.hz must be positive, got %v", c.Step.Hz))
	}
	if c.Step.VelocityIterations < 1 {
		errs = append(errs, fmt.Errorf("config: step.velocity_iterations must be at least 1, got %d", c.Step.VelocityIterations))
	}
	if c.Step.PositionIterations < 1 {
		errs = append(errs, fmt.Errorf("config: step.position_iterations must be at least 1, got %d", c.Step.PositionIterations))
	}
	if c.Step.Steps < 0 {
		errs = append(errs, fmt.Errorf("config: step.steps must not be negative, got %d", c.Step.Steps))
	}
	if !slices.Contains(Scenes, c.Scene.Name) {
		errs = append(errs, fmt.Errorf("config: unknown scene %q", c.Scene.Name))
	}
	if c.Scene.Size < 1 {
		errs = append(errs, fmt.Errorf("config: scene.size must be at least 1, got %d", c.Scene.Size))
	}
	return errors.Join(errs...)
}

// Dt returns the fixed time step in seconds.
func (c *Config) Dt() float64 {
	return 1 / c.Step.Hz
}

// WorldDef converts the world section. logger may be nil.
func (c *Config) WorldDef(logger *slog.Logger) b2d.WorldDef {
	def := b2d.DefaultWorldDef()
	def.Gravity = vec.Vec2{X: c.World.Gravity[0], Y: c.World.Gravity[1]}
	def.AllowSleep = c.World.AllowSleep
	def.WarmStarting = c.World.WarmStarting
	def.ContinuousPhysics = c.World.ContinuousPhysics
	def.SubStepping = c.World.SubStepping
	def.BlockSolve = c.World.BlockSolve
	def.Logger = logger
	return def
}
