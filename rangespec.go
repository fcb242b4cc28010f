package particles

import "gopkg.in/yaml.v3"

// Range is a closed [Min, Max] interval a per-particle attribute is drawn
// from. A bare scalar in user input becomes the degenerate range [v, v].
type Range struct {
	Min, Max float32
}

// RangeOf creates a *Range from explicit bounds.
func RangeOf(min, max float32) *Range {
	return &Range{Min: min, Max: max}
}

// Scalar creates a degenerate *Range [v, v].
func Scalar(v float32) *Range {
	return &Range{Min: v, Max: v}
}

// Lerp interpolates within the range. t=0 returns Min, t=1 returns Max.
func (r Range) Lerp(t float32) float32 {
	return r.Min + (r.Max-r.Min)*t
}

// IsZero reports whether both bounds are zero.
func (r Range) IsZero() bool {
	return r.Min == 0 && r.Max == 0
}

// UnmarshalYAML accepts either a bare scalar or a sequence. Malformed shapes
// degrade to the nearest valid interpretation rather than erroring: a
// sequence that is not exactly two elements collapses to [v0, v0].
func (r *Range) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var v float32
		if err := node.Decode(&v); err != nil {
			return err
		}
		*r = Range{Min: v, Max: v}
		return nil
	}
	var vals []float32
	if err := node.Decode(&vals); err != nil {
		return err
	}
	*r = rangeFromSlice(vals)
	return nil
}

// rangeFromSlice applies the scalar-or-pair degradation rule.
func rangeFromSlice(vals []float32) Range {
	switch len(vals) {
	case 0:
		return Range{}
	case 2:
		return Range{Min: vals[0], Max: vals[1]}
	default:
		return Range{Min: vals[0], Max: vals[0]}
	}
}

// AxisRange is a per-axis range: one [Min, Max] interval for each of X, Y
// and Z. User input may be a scalar or a 2-tuple (both broadcast to all
// three axes) or an explicit per-axis structure.
type AxisRange struct {
	X, Y, Z Range
}

// AxisOf creates an *AxisRange with the same range on every axis.
func AxisOf(min, max float32) *AxisRange {
	r := Range{Min: min, Max: max}
	return &AxisRange{X: r, Y: r, Z: r}
}

// AxisXYZ creates an *AxisRange from explicit per-axis ranges.
func AxisXYZ(x, y, z Range) *AxisRange {
	return &AxisRange{X: x, Y: y, Z: z}
}

// MinCorner returns the (X.Min, Y.Min, Z.Min) corner.
func (a AxisRange) MinCorner() Vec3 {
	return Vec3{X: a.X.Min, Y: a.Y.Min, Z: a.Z.Min}
}

// MaxCorner returns the (X.Max, Y.Max, Z.Max) corner.
func (a AxisRange) MaxCorner() Vec3 {
	return Vec3{X: a.X.Max, Y: a.Y.Max, Z: a.Z.Max}
}

// IsZero reports whether every axis range is [0, 0].
func (a AxisRange) IsZero() bool {
	return a.X.IsZero() && a.Y.IsZero() && a.Z.IsZero()
}

// UnmarshalYAML accepts a scalar (broadcast), a 2-sequence (broadcast), or a
// mapping with x/y/z keys each holding a scalar-or-range.
func (a *AxisRange) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.MappingNode:
		var m struct {
			X Range `yaml:"x"`
			Y Range `yaml:"y"`
			Z Range `yaml:"z"`
		}
		if err := node.Decode(&m); err != nil {
			return err
		}
		*a = AxisRange{X: m.X, Y: m.Y, Z: m.Z}
		return nil
	default:
		var r Range
		if err := r.UnmarshalYAML(node); err != nil {
			return err
		}
		*a = AxisRange{X: r, Y: r, Z: r}
		return nil
	}
}
