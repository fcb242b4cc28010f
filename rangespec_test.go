package particles

import (
	"testing"

	"gopkg.in/yaml.v3"
)

func TestRangeLerp(t *testing.T) {
	tests := []struct {
		name string
		r    Range
		t    float32
		want float32
	}{
		{"min at t=0", Range{Min: 2, Max: 8}, 0, 2},
		{"max at t=1", Range{Min: 2, Max: 8}, 1, 8},
		{"midpoint", Range{Min: 2, Max: 8}, 0.5, 5},
		{"degenerate", Range{Min: 3, Max: 3}, 0.7, 3},
		{"inverted bounds interpolate backwards", Range{Min: 8, Max: 2}, 0.5, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.Lerp(tt.t); !near(got, tt.want, 1e-6) {
				t.Errorf("Lerp(%v) = %v, want %v", tt.t, got, tt.want)
			}
		})
	}
}

func TestRangeUnmarshalYAML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Range
	}{
		{"scalar collapses", "2.5", Range{Min: 2.5, Max: 2.5}},
		{"pair", "[1, 4]", Range{Min: 1, Max: 4}},
		{"single element collapses", "[3]", Range{Min: 3, Max: 3}},
		{"extra elements collapse to first", "[3, 4, 5]", Range{Min: 3, Max: 3}},
		{"empty", "[]", Range{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r Range
			if err := yaml.Unmarshal([]byte(tt.in), &r); err != nil {
				t.Fatalf("Unmarshal(%q): %v", tt.in, err)
			}
			if r != tt.want {
				t.Errorf("Unmarshal(%q) = %+v, want %+v", tt.in, r, tt.want)
			}
		})
	}
}

func TestAxisRangeUnmarshalYAML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want AxisRange
	}{
		{
			"scalar broadcasts",
			"2",
			AxisRange{X: Range{2, 2}, Y: Range{2, 2}, Z: Range{2, 2}},
		},
		{
			"pair broadcasts",
			"[-1, 1]",
			AxisRange{X: Range{-1, 1}, Y: Range{-1, 1}, Z: Range{-1, 1}},
		},
		{
			"per-axis mapping",
			"{x: [0, 1], y: 5, z: [-2, 2]}",
			AxisRange{X: Range{0, 1}, Y: Range{5, 5}, Z: Range{-2, 2}},
		},
		{
			"partial mapping zero-fills",
			"{y: [1, 3]}",
			AxisRange{Y: Range{1, 3}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a AxisRange
			if err := yaml.Unmarshal([]byte(tt.in), &a); err != nil {
				t.Fatalf("Unmarshal(%q): %v", tt.in, err)
			}
			if a != tt.want {
				t.Errorf("Unmarshal(%q) = %+v, want %+v", tt.in, a, tt.want)
			}
		})
	}
}

func TestAxisRangeCorners(t *testing.T) {
	a := AxisRange{X: Range{-1, 1}, Y: Range{0, 2}, Z: Range{3, 5}}
	if got := a.MinCorner(); got != (Vec3{X: -1, Y: 0, Z: 3}) {
		t.Errorf("MinCorner = %v", got)
	}
	if got := a.MaxCorner(); got != (Vec3{X: 1, Y: 2, Z: 5}) {
		t.Errorf("MaxCorner = %v", got)
	}
}
