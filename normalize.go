package particles

// Default configuration values. An empty Config normalizes to a visible
// default emitter using these.
const (
	DefaultMaxParticles = 1000

	defaultSize     = 1.0
	defaultSpeed    = 1.0
	defaultLifetime = 1.0
)

// NormalizedConfig is the canonical form of a Config: every optional field
// resolved to a concrete value, every scalar-or-range resolved to [min, max],
// color lists padded to the fixed palette size, enum strings parsed.
// It is immutable once produced.
type NormalizedConfig struct {
	MaxParticles int

	Size     Range
	Speed    Range
	Lifetime Range

	Gravity          Vec3
	SizeBasedGravity float32
	Friction         Range
	FrictionEasing   FrictionEasing
	HasFriction      bool

	Direction     AxisRange
	StartPosition AxisRange
	Rotation      AxisRange
	RotationSpeed AxisRange

	ColorStart      [MaxPaletteColors]Color
	ColorStartCount int
	ColorEnd        [MaxPaletteColors]Color
	ColorEndCount   int
	HasColorEnd     bool

	Shape            EmitterShape
	Radius           Range
	Angle            float32
	Height           Range
	EmitterDirection Vec3
	SurfaceOnly      bool

	AttractToCenter          bool
	StartPositionAsDirection bool

	Turbulence TurbulenceConfig

	Attractors     [MaxAttractors]AttractorSlot
	AttractorCount int

	Collision       CollisionConfig
	CollisionActive bool

	Curves CurvesConfig

	SoftParticle  bool
	SoftDistance  float32
	StretchFactor float32
	StretchMax    float32

	Lighting          string
	Appearance        string
	CastShadow        bool
	OrientToDirection bool
	OrientAxis        Vec3
}

// MaxAttractors is the fixed number of attractor slots. Extra configured
// attractors are ignored.
const MaxAttractors = 4

// AttractorSlot is the resolved, numerically-indexed form of an
// AttractorConfig.
type AttractorSlot struct {
	Position Vec3
	Strength float32
	Radius   float32
	Kind     AttractorKind
	Axis     Vec3
	// InverseSquare selects inverse-square instead of linear falloff for
	// point attractors.
	InverseSquare bool
}

// Normalize resolves a raw Config into its canonical form. Malformed or
// missing fields degrade to documented defaults; Normalize never fails.
func Normalize(cfg Config) NormalizedConfig {
	n := NormalizedConfig{
		MaxParticles: cfg.MaxParticles,

		Size:     resolveRange(cfg.Size, defaultSize),
		Speed:    resolveRange(cfg.Speed, defaultSpeed),
		Lifetime: resolveRange(cfg.Lifetime, defaultLifetime),

		SizeBasedGravity: cfg.SizeBasedGravity,

		Direction:     resolveAxis(cfg.Direction, AxisRange{X: Range{-1, 1}, Y: Range{-1, 1}, Z: Range{-1, 1}}),
		StartPosition: resolveAxis(cfg.StartPosition, AxisRange{}),
		Rotation:      resolveAxis(cfg.Rotation, AxisRange{}),
		RotationSpeed: resolveAxis(cfg.RotationSpeed, AxisRange{}),

		Shape:       ParseEmitterShape(cfg.EmitterShape),
		Radius:      resolveRange(cfg.EmitterRadius, 1),
		Angle:       cfg.EmitterAngle,
		Height:      resolveRange(cfg.EmitterHeight, 1),
		SurfaceOnly: cfg.SurfaceOnly,

		AttractToCenter:          cfg.AttractToCenter,
		StartPositionAsDirection: cfg.StartPositionAsDirection,

		SoftParticle:  cfg.SoftParticle,
		SoftDistance:  cfg.SoftDistance,
		StretchFactor: cfg.StretchFactor,
		StretchMax:    cfg.StretchMax,

		Lighting:          cfg.Lighting,
		Appearance:        cfg.Appearance,
		CastShadow:        cfg.CastShadow,
		OrientToDirection: cfg.OrientToDirection,
	}

	if n.MaxParticles <= 0 {
		n.MaxParticles = DefaultMaxParticles
	}
	// Lifetime must be positive: fade rate is its reciprocal.
	if n.Lifetime.Min <= 0 {
		n.Lifetime.Min = defaultLifetime
	}
	if n.Lifetime.Max <= 0 {
		n.Lifetime.Max = n.Lifetime.Min
	}

	if cfg.Gravity != nil {
		n.Gravity = *cfg.Gravity
	}
	if cfg.Friction != nil {
		n.HasFriction = true
		n.Friction = cfg.Friction.Intensity
		n.FrictionEasing = ParseFrictionEasing(cfg.Friction.Easing)
	}

	n.ColorStart, n.ColorStartCount = palette(cfg.ColorStart)
	n.HasColorEnd = cfg.ColorEnd != nil
	if n.HasColorEnd {
		n.ColorEnd, n.ColorEndCount = palette(cfg.ColorEnd)
	} else {
		n.ColorEnd, n.ColorEndCount = n.ColorStart, n.ColorStartCount
	}

	n.EmitterDirection = Vec3{Y: 1}
	if cfg.EmitterDirection != nil && *cfg.EmitterDirection != (Vec3{}) {
		n.EmitterDirection = cfg.EmitterDirection.Normalize()
	}

	if cfg.Turbulence != nil {
		n.Turbulence = *cfg.Turbulence
		if n.Turbulence.Frequency == 0 {
			n.Turbulence.Frequency = 1
		}
	}

	for _, a := range cfg.Attractors {
		if n.AttractorCount >= MaxAttractors {
			break
		}
		axis := a.Axis
		if axis == (Vec3{}) {
			axis = Vec3{Y: 1}
		}
		n.Attractors[n.AttractorCount] = AttractorSlot{
			Position:      a.Position,
			Strength:      a.Strength,
			Radius:        a.Radius,
			Kind:          ParseAttractorKind(a.Kind),
			Axis:          axis.Normalize(),
			InverseSquare: a.InverseSquare,
		}
		n.AttractorCount++
	}

	if cfg.Collision != nil {
		n.CollisionActive = true
		n.Collision = *cfg.Collision
	}

	if cfg.Curves != nil {
		n.Curves = *cfg.Curves
	}

	n.OrientAxis = Vec3{Y: 1}
	if cfg.OrientAxis != nil && *cfg.OrientAxis != (Vec3{}) {
		n.OrientAxis = cfg.OrientAxis.Normalize()
	}

	return n
}

// resolveRange returns *r, or the degenerate [def, def] when r is nil.
func resolveRange(r *Range, def float32) Range {
	if r == nil {
		return Range{Min: def, Max: def}
	}
	return *r
}

// resolveAxis returns *a, or def when a is nil.
func resolveAxis(a *AxisRange, def AxisRange) AxisRange {
	if a == nil {
		return def
	}
	return *a
}
