// Command b2dsim steps one of the demo scenes and prints a body trace.
//
//	b2dsim -config sim.yaml -scene pendulum -steps 300 -trace
//
// With -compare the scene is simulated twice and the traces are diffed,
// which must produce no output for a deterministic build.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/setanarut/b2d"
	"github.com/setanarut/b2d/config"
	"github.com/setanarut/b2d/internal/scene"
)

func main() {
	configPath := flag.String("config", "b2dsim.yaml", "YAML configuration file")
	sceneName := flag.String("scene", "", "scene to run, overrides the configuration")
	steps := flag.Int("steps", -1, "number of steps, overrides the configuration")
	trace := flag.Bool("trace", false, "print every body after every step")
	compare := flag.Bool("compare", false, "run twice and diff the traces")
	verbose := flag.Bool("v", false, "log world debug events")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("load config", "path", *configPath, "err", err)
		os.Exit(1)
	}
	if *sceneName != "" {
		cfg.Scene.Name = *sceneName
	}
	if *steps >= 0 {
		cfg.Step.Steps = *steps
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "err", err)
		os.Exit(1)
	}

	if *compare {
		if err := compareRuns(cfg, logger); err != nil {
			logger.Error("compare", "err", err)
			os.Exit(1)
		}
		return
	}

	var out io.Writer = io.Discard
	if *trace {
		out = os.Stdout
	}
	if err := run(cfg, logger, out); err != nil {
		logger.Error("run", "err", err)
		os.Exit(1)
	}
}

// run builds the configured scene and steps it, writing the trace of
// every step to out.
func run(cfg config.Config, logger *slog.Logger, out io.Writer) error {
	w := b2d.NewWorld(cfg.WorldDef(logger))
	if err := scene.Build(w, cfg.Scene); err != nil {
		return err
	}
	logger.Info("scene ready", "scene", cfg.Scene.Name, "bodies", w.BodyCount(), "joints", w.JointCount())

	dt := cfg.Dt()
	for i := range cfg.Step.Steps {
		if err := w.Step(dt, cfg.Step.VelocityIterations, cfg.Step.PositionIterations); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
		if err := scene.Trace(out, w, i); err != nil {
			return err
		}
	}

	awake := 0
	for _, b := range w.Bodies() {
		if b.IsAwake() {
			awake++
		}
	}
	p := w.Profile()
	logger.Info("done",
		"steps", cfg.Step.Steps,
		"contacts", w.ContactCount(),
		"awake", awake,
		"proxies", w.ProxyCount(),
		"treeHeight", w.TreeHeight(),
		"lastStep", p.Step,
	)
	return nil
}

func compareRuns(cfg config.Config, logger *slog.Logger) error {
	var a, b bytes.Buffer
	if err := run(cfg, logger, &a); err != nil {
		return err
	}
	if err := run(cfg, logger, &b); err != nil {
		return err
	}
	if bytes.Equal(a.Bytes(), b.Bytes()) {
		logger.Info("traces match", "bytes", a.Len())
		return nil
	}

	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(a.String()),
		B:        difflib.SplitLines(b.String()),
		FromFile: "first",
		ToFile:   "second",
		Context:  0,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return err
	}
	return fmt.Errorf("traces differ:\n%s", text)
}
