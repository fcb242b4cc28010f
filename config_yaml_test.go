package particles

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"
)

const testPreset = `
maxParticles: 200
size: [0.5, 1.5]
speed: 2
lifetime: [1, 3]
gravity: {y: -9.8}
direction:
  x: [-1, 1]
  y: [0.5, 1]
  z: [-1, 1]
colorStart:
  - [1, 0.5, 0]
  - [1, 1, 0]
emitterShape: cone
emitterAngle: 0.4
emitterHeight: [0.5, 2]
emitterDirection: [0, 1, 0]
turbulence:
  intensity: 1.5
  frequency: 0.5
collision:
  planeY: 0
  bounce: 0.4
  friction: 0.9
attractors:
  - position: [0, 5, 0]
    strength: 3
    kind: vortex
    axis: [0, 1, 0]
`

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preset.yaml")
	if err := os.WriteFile(path, []byte(testPreset), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.MaxParticles != 200 {
		t.Errorf("MaxParticles = %d", cfg.MaxParticles)
	}
	if cfg.Size == nil || *cfg.Size != (Range{Min: 0.5, Max: 1.5}) {
		t.Errorf("Size = %+v", cfg.Size)
	}
	if cfg.Speed == nil || *cfg.Speed != (Range{Min: 2, Max: 2}) {
		t.Errorf("Speed = %+v, want scalar collapsed", cfg.Speed)
	}
	if cfg.Gravity == nil || *cfg.Gravity != (Vec3{Y: -9.8}) {
		t.Errorf("Gravity = %+v", cfg.Gravity)
	}
	if cfg.Direction == nil || cfg.Direction.Y != (Range{Min: 0.5, Max: 1}) {
		t.Errorf("Direction = %+v", cfg.Direction)
	}
	if len(cfg.ColorStart) != 2 || cfg.ColorStart[0] != (Color{R: 1, G: 0.5, B: 0}) {
		t.Errorf("ColorStart = %+v", cfg.ColorStart)
	}
	if cfg.EmitterShape != "cone" {
		t.Errorf("EmitterShape = %q", cfg.EmitterShape)
	}
	if cfg.Turbulence == nil || cfg.Turbulence.Intensity != 1.5 {
		t.Errorf("Turbulence = %+v", cfg.Turbulence)
	}
	if cfg.Collision == nil || cfg.Collision.Bounce != 0.4 {
		t.Errorf("Collision = %+v", cfg.Collision)
	}
	if len(cfg.Attractors) != 1 || cfg.Attractors[0].Kind != "vortex" {
		t.Errorf("Attractors = %+v", cfg.Attractors)
	}

	// The loaded preset normalizes and builds a pool.
	p, err := NewPool(cfg, WithExecutor(ExecutorCPU), WithSeed(1))
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	defer p.Dispose()
	if p.Storage().Capacity != 200 {
		t.Errorf("capacity = %d", p.Storage().Capacity)
	}
	f := p.Features()
	if !f.Turbulence || !f.Collision || !f.Attractors || !f.NeedsColor {
		t.Errorf("features = %+v", f)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("maxParticles: [not a number"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestVec3UnmarshalYAMLForms(t *testing.T) {
	type doc struct {
		V Vec3 `yaml:"v"`
	}
	tests := []struct {
		name string
		in   string
		want Vec3
	}{
		{"sequence", "v: [1, 2, 3]", Vec3{X: 1, Y: 2, Z: 3}},
		{"mapping", "v: {x: 1, z: 3}", Vec3{X: 1, Z: 3}},
		{"scalar broadcasts", "v: [2]", Vec3{X: 2, Y: 2, Z: 2}},
		{"empty", "v: []", Vec3{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d doc
			if err := yaml.Unmarshal([]byte(tt.in), &d); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if d.V != tt.want {
				t.Errorf("got %+v, want %+v", d.V, tt.want)
			}
		})
	}
}
