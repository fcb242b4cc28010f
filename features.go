package particles

// Features are the boolean flags derived from a NormalizedConfig that decide
// which optional per-particle buffers and physics stages exist. They are the
// cheap/expensive boundary for reconfiguration: a change that flips any flag
// requires rebuilding storage and executors, while a change that only moves
// numeric magnitudes is an in-place parameter patch.
type Features struct {
	// NeedsRotation is set when any rotation or rotation-speed axis has a
	// non-zero range, allocating the per-particle rotation buffer.
	NeedsRotation bool
	// NeedsColor is set when particles can differ in color (more than one
	// start color, or an end palette), allocating the color buffers.
	NeedsColor bool
	// Turbulence is set when the curl-noise stage runs.
	Turbulence bool
	// Attractors is set when at least one attractor is configured.
	Attractors bool
	// Collision is set when the plane-collision stage runs.
	Collision bool
}

// ResolveFeatures derives the feature flags from a normalized configuration.
func ResolveFeatures(n *NormalizedConfig) Features {
	return Features{
		NeedsRotation: !n.Rotation.IsZero() || !n.RotationSpeed.IsZero(),
		NeedsColor:    n.ColorStartCount > 1 || n.HasColorEnd,
		Turbulence:    n.Turbulence.Intensity > 0,
		Attractors:    n.AttractorCount > 0,
		Collision:     n.CollisionActive,
	}
}

// structuralKeys are the config keys whose change always forces pool
// reconstruction regardless of feature flags: they alter buffer layouts or
// renderer-facing structure rather than numeric magnitudes.
var structuralKeys = map[string]bool{
	"maxParticles":      true,
	"lighting":          true,
	"appearance":        true,
	"castShadow":        true,
	"orientToDirection": true,
}

// NeedsRecreation reports whether applying a configuration delta requires a
// full pool rebuild. changedKeys names the config fields the delta touches;
// merged is the configuration after the delta is applied.
//
// The gate is deliberately conservative: any structural key change or any
// feature-flag difference rebuilds. A missed rebuild would leave stale
// buffer layouts behind, while a spurious rebuild only costs a frame.
func NeedsRecreation(old Features, changedKeys []string, merged *NormalizedConfig) bool {
	for _, k := range changedKeys {
		if structuralKeys[k] {
			return true
		}
	}
	return ResolveFeatures(merged) != old
}
