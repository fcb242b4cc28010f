package particles

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadConfig reads a YAML emitter preset from path. Range-valued fields
// accept bare scalars, pairs, or per-axis mappings (see Range and
// AxisRange); missing fields keep their documented defaults at Normalize
// time.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("particles: read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("particles: parse config: %w", err)
	}
	return cfg, nil
}

// UnmarshalYAML accepts a 3-sequence [x, y, z] or a mapping with x/y/z
// keys. Shorter sequences broadcast their first element; an empty value is
// the zero vector.
func (v *Vec3) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.MappingNode {
		var m struct {
			X float32 `yaml:"x"`
			Y float32 `yaml:"y"`
			Z float32 `yaml:"z"`
		}
		if err := node.Decode(&m); err != nil {
			return err
		}
		*v = Vec3{X: m.X, Y: m.Y, Z: m.Z}
		return nil
	}
	var vals []float32
	if err := node.Decode(&vals); err != nil {
		var s float32
		if err2 := node.Decode(&s); err2 != nil {
			return err
		}
		vals = []float32{s}
	}
	switch len(vals) {
	case 0:
		*v = Vec3{}
	case 3:
		*v = Vec3{X: vals[0], Y: vals[1], Z: vals[2]}
	default:
		*v = Vec3{X: vals[0], Y: vals[0], Z: vals[0]}
	}
	return nil
}
