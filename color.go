package particles

import "gopkg.in/yaml.v3"

// Color is an RGB triple with components in [0, 1].
type Color struct {
	R, G, B float32
}

// RGB creates a Color.
func RGB(r, g, b float32) Color {
	return Color{R: r, G: g, B: b}
}

// White is the default particle color.
var White = Color{R: 1, G: 1, B: 1}

// MaxPaletteColors is the fixed palette capacity per color channel. Shorter
// user-supplied color lists are padded by repeating the last color so the
// uniform layout stays fixed-size.
const MaxPaletteColors = 8

// palette resolves a user color list to a fixed 8-slot array plus the active
// count. An empty list yields one white slot.
func palette(colors []Color) ([MaxPaletteColors]Color, int) {
	var out [MaxPaletteColors]Color
	if len(colors) == 0 {
		for i := range out {
			out[i] = White
		}
		return out, 1
	}
	n := len(colors)
	if n > MaxPaletteColors {
		n = MaxPaletteColors
	}
	for i := 0; i < MaxPaletteColors; i++ {
		if i < n {
			out[i] = colors[i]
		} else {
			out[i] = colors[n-1]
		}
	}
	return out, n
}

// UnmarshalYAML accepts a 3-sequence [r, g, b]. Shorter sequences degrade to
// a gray value from the first element; an empty sequence is white.
func (c *Color) UnmarshalYAML(node *yaml.Node) error {
	var vals []float32
	if err := node.Decode(&vals); err != nil {
		return err
	}
	switch len(vals) {
	case 0:
		*c = White
	case 3:
		*c = Color{R: vals[0], G: vals[1], B: vals[2]}
	default:
		*c = Color{R: vals[0], G: vals[0], B: vals[0]}
	}
	return nil
}
