package particles

import "testing"

func TestNormalizeEmptyConfig(t *testing.T) {
	n := Normalize(Config{})

	if n.MaxParticles != DefaultMaxParticles {
		t.Errorf("MaxParticles = %d, want %d", n.MaxParticles, DefaultMaxParticles)
	}
	if n.Size != (Range{Min: 1, Max: 1}) {
		t.Errorf("Size = %+v, want [1, 1]", n.Size)
	}
	if n.Speed != (Range{Min: 1, Max: 1}) {
		t.Errorf("Speed = %+v, want [1, 1]", n.Speed)
	}
	if n.Lifetime != (Range{Min: 1, Max: 1}) {
		t.Errorf("Lifetime = %+v, want [1, 1]", n.Lifetime)
	}
	want := AxisRange{X: Range{-1, 1}, Y: Range{-1, 1}, Z: Range{-1, 1}}
	if n.Direction != want {
		t.Errorf("Direction = %+v, want full [-1, 1] cube", n.Direction)
	}
	if n.Shape != ShapePoint {
		t.Errorf("Shape = %v, want point", n.Shape)
	}
	if n.EmitterDirection != (Vec3{Y: 1}) {
		t.Errorf("EmitterDirection = %v, want +y", n.EmitterDirection)
	}
	if n.ColorStartCount != 1 || n.ColorStart[0] != White {
		t.Errorf("ColorStart = %v x%d, want one white", n.ColorStart[0], n.ColorStartCount)
	}
	if n.HasColorEnd {
		t.Error("HasColorEnd = true for empty config")
	}
	if n.CollisionActive || n.HasFriction || n.AttractorCount != 0 {
		t.Error("optional stages active for empty config")
	}
}

func TestNormalizeLifetimeClamp(t *testing.T) {
	tests := []struct {
		name string
		in   *Range
		want Range
	}{
		{"nil defaults", nil, Range{Min: 1, Max: 1}},
		{"zero min clamps", RangeOf(0, 2), Range{Min: 1, Max: 2}},
		{"negative clamps", RangeOf(-3, -1), Range{Min: 1, Max: 1}},
		{"zero max copies min", RangeOf(2, 0), Range{Min: 2, Max: 2}},
		{"positive passes through", RangeOf(0.5, 3), Range{Min: 0.5, Max: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := Normalize(Config{Lifetime: tt.in})
			if n.Lifetime != tt.want {
				t.Errorf("Lifetime = %+v, want %+v", n.Lifetime, tt.want)
			}
		})
	}
}

func TestNormalizeEmitterDirection(t *testing.T) {
	n := Normalize(Config{EmitterDirection: &Vec3{X: 3}})
	if !vecNear(n.EmitterDirection, Vec3{X: 1}, 1e-6) {
		t.Errorf("EmitterDirection = %v, want normalized +x", n.EmitterDirection)
	}

	// A zero vector keeps the +Y default.
	n = Normalize(Config{EmitterDirection: &Vec3{}})
	if n.EmitterDirection != (Vec3{Y: 1}) {
		t.Errorf("EmitterDirection = %v, want +y fallback", n.EmitterDirection)
	}
}

func TestNormalizeTurbulenceFrequencyDefault(t *testing.T) {
	n := Normalize(Config{Turbulence: &TurbulenceConfig{Intensity: 2}})
	if n.Turbulence.Frequency != 1 {
		t.Errorf("Frequency = %v, want default 1", n.Turbulence.Frequency)
	}

	n = Normalize(Config{Turbulence: &TurbulenceConfig{Intensity: 2, Frequency: 0.25}})
	if n.Turbulence.Frequency != 0.25 {
		t.Errorf("Frequency = %v, want 0.25 preserved", n.Turbulence.Frequency)
	}
}

func TestNormalizeAttractors(t *testing.T) {
	cfg := Config{Attractors: []AttractorConfig{
		{Position: Vec3{X: 1}, Strength: 2},
		{Strength: 1, Kind: "vortex", Axis: Vec3{Z: 4}},
		{Strength: 1}, {Strength: 1}, {Strength: 1}, {Strength: 1},
	}}
	n := Normalize(cfg)

	if n.AttractorCount != MaxAttractors {
		t.Fatalf("AttractorCount = %d, want cap at %d", n.AttractorCount, MaxAttractors)
	}
	if n.Attractors[0].Axis != (Vec3{Y: 1}) {
		t.Errorf("default axis = %v, want +y", n.Attractors[0].Axis)
	}
	if n.Attractors[1].Kind != AttractorVortex {
		t.Errorf("kind = %v, want vortex", n.Attractors[1].Kind)
	}
	if !vecNear(n.Attractors[1].Axis, Vec3{Z: 1}, 1e-6) {
		t.Errorf("axis = %v, want normalized +z", n.Attractors[1].Axis)
	}
}

func TestNormalizeColorEndDefaultsToStart(t *testing.T) {
	red := Color{R: 1}
	n := Normalize(Config{ColorStart: []Color{red}})
	if n.HasColorEnd {
		t.Error("HasColorEnd = true without configured end palette")
	}
	if n.ColorEnd[0] != red || n.ColorEndCount != 1 {
		t.Errorf("ColorEnd = %v x%d, want start palette copied", n.ColorEnd[0], n.ColorEndCount)
	}
}

func TestParseEmitterShape(t *testing.T) {
	tests := []struct {
		in   string
		want EmitterShape
	}{
		{"", ShapePoint},
		{"point", ShapePoint},
		{"box", ShapeBox},
		{"sphere", ShapeSphere},
		{"cone", ShapeCone},
		{"disk", ShapeDisk},
		{"edge", ShapeEdge},
		{"bogus", ShapePoint},
	}
	for _, tt := range tests {
		if got := ParseEmitterShape(tt.in); got != tt.want {
			t.Errorf("ParseEmitterShape(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseFrictionEasing(t *testing.T) {
	tests := []struct {
		in   string
		want FrictionEasing
	}{
		{"", EaseLinear},
		{"linear", EaseLinear},
		{"easeIn", EaseIn},
		{"ease-in", EaseIn},
		{"easeOut", EaseOut},
		{"easeInOut", EaseInOut},
		{"ease-in-out", EaseInOut},
		{"bogus", EaseLinear},
	}
	for _, tt := range tests {
		if got := ParseFrictionEasing(tt.in); got != tt.want {
			t.Errorf("ParseFrictionEasing(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
