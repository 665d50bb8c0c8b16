package main

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/setanarut/b2d/config"
)

func TestRun(t *testing.T) {
	cfg := config.Default()
	cfg.Scene.Size = 3
	cfg.Step.Steps = 5

	var out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := run(cfg, logger, &out); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	// ground plus six boxes per step
	if got, want := len(lines), 5*7; got != want {
		t.Errorf("got %v trace lines want %v", got, want)
	}
}

func TestCompareRuns(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	for _, name := range config.Scenes {
		t.Run(name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Scene.Name = name
			cfg.Scene.Size = 4
			cfg.Step.Steps = 60
			if err := compareRuns(cfg, logger); err != nil {
				t.Fatal(err)
			}
		})
	}
}
