package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Default()
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate defaults: %v", err)
	}

	if cfg.Run.Seed != 0 || cfg.Run.Generations != 10 {
		t.Fatalf("unexpected run defaults: %+v", cfg.Run)
	}
	if cfg.Storage.Backend != "memory" {
		t.Fatalf("unexpected storage backend: %s", cfg.Storage.Backend)
	}
	if cfg.Viewer.Addr != "127.0.0.1:8080" || cfg.Viewer.StepsPerSecond != 60 {
		t.Fatalf("unexpected viewer defaults: %+v", cfg.Viewer)
	}

	params := cfg.SimParams()
	if params.Animals != 40 || params.Foods != 60 || params.GenerationLength != 2500 {
		t.Fatalf("unexpected world params: %+v", params)
	}
	if params.SpeedMin != 0.001 || params.SpeedMax != 0.005 || params.InitialSpeed != 0.002 {
		t.Fatalf("unexpected movement params: %+v", params)
	}
	if params.EyeCells != 9 || params.EyeFovRange != 0.25 {
		t.Fatalf("unexpected eye params: %+v", params)
	}
	if math.Abs(params.RotationAccel-math.Pi/2) > 1e-12 {
		t.Fatalf("unexpected rotation accel: %v", params.RotationAccel)
	}
	if math.Abs(params.EyeFovAngle-(math.Pi+math.Pi/4)) > 1e-12 {
		t.Fatalf("unexpected fov angle: %v", params.EyeFovAngle)
	}
}

func TestLoadOverlaysUserFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aviary.yaml")
	userYAML := []byte("world:\n  animals: 10\nrun:\n  generations: 2\n")
	if err := os.WriteFile(path, userYAML, 0o644); err != nil {
		t.Fatalf("write user config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.World.Animals != 10 {
		t.Fatalf("expected overridden animal count, got=%d", cfg.World.Animals)
	}
	if cfg.Run.Generations != 2 {
		t.Fatalf("expected overridden generations, got=%d", cfg.Run.Generations)
	}
	// Untouched sections keep their defaults.
	if cfg.World.Foods != 60 || cfg.Mutation.Chance != 0.01 {
		t.Fatalf("expected defaults to survive overlay: %+v", cfg)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected missing file to fail")
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("world: ["), 0o644); err != nil {
		t.Fatalf("write broken config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected malformed yaml to fail")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Default()
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	cfg.World.Animals = 12

	path := filepath.Join(t.TempDir(), "written.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("write yaml: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.World.Animals != 12 {
		t.Fatalf("expected written override to survive reload, got=%d", loaded.World.Animals)
	}
}

func TestValidateCatchesBadValues(t *testing.T) {
	cases := map[string]func(*Config){
		"zero generations":   func(c *Config) { c.Run.Generations = 0 },
		"empty viewer addr":  func(c *Config) { c.Viewer.Addr = "" },
		"zero viewer rate":   func(c *Config) { c.Viewer.StepsPerSecond = 0 },
		"zero animals":       func(c *Config) { c.World.Animals = 0 },
		"negative mutation":  func(c *Config) { c.Mutation.Coeff = -1 },
		"oversized fov":      func(c *Config) { c.Eye.FovAngle = 7 },
		"inverted speed":     func(c *Config) { c.Movement.SpeedMax = 0.0001 },
		"zero interaction":   func(c *Config) { c.World.InteractionRadius = 0 },
		"zero eye cells":     func(c *Config) { c.Eye.Cells = 0 },
		"zero steps per gen": func(c *Config) { c.World.GenerationLength = 0 },
	}
	for name, corrupt := range cases {
		cfg, err := Default()
		if err != nil {
			t.Fatalf("%s: load defaults: %v", name, err)
		}
		corrupt(cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}
