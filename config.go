package particles

// EmitterShape selects the spatial distribution spawn offsets are drawn from.
type EmitterShape int

const (
	// ShapePoint emits every particle exactly at the spawn position.
	ShapePoint EmitterShape = iota
	// ShapeBox emits within the per-axis start-position ranges.
	ShapeBox
	// ShapeSphere emits uniformly within (or on) a spherical shell.
	ShapeSphere
	// ShapeCone emits within a cone opening along the emitter direction.
	ShapeCone
	// ShapeDisk emits on a flat circle perpendicular to the emitter direction.
	ShapeDisk
	// ShapeEdge emits along the segment between the start-position corners.
	ShapeEdge
)

// String returns the config-facing name of the shape.
func (s EmitterShape) String() string {
	switch s {
	case ShapePoint:
		return "point"
	case ShapeBox:
		return "box"
	case ShapeSphere:
		return "sphere"
	case ShapeCone:
		return "cone"
	case ShapeDisk:
		return "disk"
	case ShapeEdge:
		return "edge"
	default:
		return "point"
	}
}

// ParseEmitterShape maps a config string to an EmitterShape. Unrecognized
// names degrade to ShapePoint.
func ParseEmitterShape(s string) EmitterShape {
	switch s {
	case "box":
		return ShapeBox
	case "sphere":
		return ShapeSphere
	case "cone":
		return ShapeCone
	case "disk":
		return ShapeDisk
	case "edge":
		return ShapeEdge
	default:
		return ShapePoint
	}
}

// FrictionEasing selects how friction intensity is interpolated over a
// particle's life.
type FrictionEasing int

const (
	// EaseLinear interpolates intensity linearly.
	EaseLinear FrictionEasing = iota
	// EaseIn accelerates toward the end intensity.
	EaseIn
	// EaseOut decelerates toward the end intensity.
	EaseOut
	// EaseInOut combines both.
	EaseInOut
)

// ParseFrictionEasing maps a config string to a FrictionEasing.
// Unrecognized names degrade to EaseLinear.
func ParseFrictionEasing(s string) FrictionEasing {
	switch s {
	case "easeIn", "ease-in":
		return EaseIn
	case "easeOut", "ease-out":
		return EaseOut
	case "easeInOut", "ease-in-out":
		return EaseInOut
	default:
		return EaseLinear
	}
}

// AttractorKind selects the force model of an attractor.
type AttractorKind int

const (
	// AttractorPoint pulls particles toward the attractor position.
	AttractorPoint AttractorKind = iota
	// AttractorVortex applies a tangential force around the attractor axis.
	AttractorVortex
)

// ParseAttractorKind maps a config string to an AttractorKind.
// Unrecognized names degrade to AttractorPoint.
func ParseAttractorKind(s string) AttractorKind {
	if s == "vortex" {
		return AttractorVortex
	}
	return AttractorPoint
}

// FrictionConfig describes friction intensity over a particle's life.
type FrictionConfig struct {
	// Intensity is the start/end friction intensity in [0, 1].
	Intensity Range `yaml:"intensity"`
	// Easing names the interpolation: linear, easeIn, easeOut, easeInOut.
	Easing string `yaml:"easing"`
}

// TurbulenceConfig describes the curl-noise turbulence stage.
type TurbulenceConfig struct {
	// Intensity scales the curl force. Zero disables the stage.
	Intensity float32 `yaml:"intensity"`
	// Frequency scales particle positions before sampling the noise field.
	Frequency float32 `yaml:"frequency"`
	// Speed animates the noise field over time.
	Speed float32 `yaml:"speed"`
}

// AttractorConfig describes one attractor. Up to four are honored.
type AttractorConfig struct {
	Position Vec3    `yaml:"position"`
	Strength float32 `yaml:"strength"`
	// Radius bounds the linear falloff. Zero means unbounded.
	Radius float32 `yaml:"radius"`
	// Kind is "point" or "vortex".
	Kind string `yaml:"kind"`
	// Axis is the vortex axis (ignored for point attractors).
	Axis Vec3 `yaml:"axis"`
	// InverseSquare switches point attraction from linear to inverse-square
	// falloff.
	InverseSquare bool `yaml:"inverseSquare"`
}

// CollisionConfig describes the ground-plane collision stage. Its presence
// activates collision.
type CollisionConfig struct {
	// PlaneY is the world-space height of the collision plane.
	PlaneY float32 `yaml:"planeY"`
	// Bounce scales the reflected vertical velocity.
	Bounce float32 `yaml:"bounce"`
	// Friction scales horizontal velocity on contact.
	Friction float32 `yaml:"friction"`
	// Die kills particles on contact instead of reflecting them.
	Die bool `yaml:"die"`
}

// CurvesConfig supplies editable curves for the four baked channels. A nil
// channel falls back to the default linear 1→0 fade, except Velocity and
// RotationSpeed which are disabled when absent.
type CurvesConfig struct {
	Size          *Curve `yaml:"size"`
	Opacity       *Curve `yaml:"opacity"`
	Velocity      *Curve `yaml:"velocity"`
	RotationSpeed *Curve `yaml:"rotationSpeed"`
}

// Config is the declarative configuration surface of a particle pool. Every
// field is optional: the zero Config is valid and produces a visible default
// emitter. Range-valued fields accept bare scalars in YAML.
type Config struct {
	// MaxParticles is the fixed pool capacity. Default 1000.
	MaxParticles int `yaml:"maxParticles"`

	// Size is the per-particle size range. Default [1, 1].
	Size *Range `yaml:"size"`
	// Speed is the initial speed range. Default [1, 1].
	Speed *Range `yaml:"speed"`
	// Lifetime is the particle lifetime range in seconds. Default [1, 1].
	Lifetime *Range `yaml:"lifetime"`

	// Gravity is a constant acceleration. Default zero.
	Gravity *Vec3 `yaml:"gravity"`
	// SizeBasedGravity scales gravity by particle size:
	// effective = gravity * (1 + size*factor).
	SizeBasedGravity float32 `yaml:"sizeBasedGravity"`
	// Friction applies a time-varying speed damping unless a velocity curve
	// is set.
	Friction *FrictionConfig `yaml:"friction"`

	// Direction is the per-axis initial velocity direction range.
	// Default [-1, 1] on every axis.
	Direction *AxisRange `yaml:"direction"`
	// StartPosition is the per-axis spawn offset range, used by the box and
	// edge shapes. Default zero.
	StartPosition *AxisRange `yaml:"startPosition"`
	// Rotation is the per-axis initial rotation range in radians.
	Rotation *AxisRange `yaml:"rotation"`
	// RotationSpeed is the per-axis rotation speed range in radians/second.
	RotationSpeed *AxisRange `yaml:"rotationSpeed"`

	// ColorStart is the palette particles pick their birth color from.
	// Default white. More than one entry activates per-particle color.
	ColorStart []Color `yaml:"colorStart"`
	// ColorEnd, when set, gives each particle a second color to fade toward.
	ColorEnd []Color `yaml:"colorEnd"`

	// EmitterShape names the emission distribution: point, box, sphere,
	// cone, disk, edge. Default point.
	EmitterShape string `yaml:"emitterShape"`
	// EmitterRadius is the inner/outer radius for sphere, cone and disk.
	EmitterRadius *Range `yaml:"emitterRadius"`
	// EmitterAngle is the cone half-angle in radians.
	EmitterAngle float32 `yaml:"emitterAngle"`
	// EmitterHeight is the height range for the cone shape.
	EmitterHeight *Range `yaml:"emitterHeight"`
	// EmitterDirection orients cone and disk emission. Default +Y.
	EmitterDirection *Vec3 `yaml:"emitterDirection"`
	// SurfaceOnly emits on the shape surface instead of filling its volume.
	SurfaceOnly bool `yaml:"surfaceOnly"`

	// AttractToCenter gives every particle a velocity that converges back on
	// the spawn point exactly when its lifetime expires.
	AttractToCenter bool `yaml:"attractToCenter"`
	// StartPositionAsDirection uses the normalized spawn offset as the
	// initial velocity direction.
	StartPositionAsDirection bool `yaml:"startPositionAsDirection"`

	Turbulence *TurbulenceConfig `yaml:"turbulence"`
	Attractors []AttractorConfig `yaml:"attractors"`
	Collision  *CollisionConfig  `yaml:"collision"`

	Curves *CurvesConfig `yaml:"curves"`
	// CurveData is an optional pre-baked curve blob (see DecodeCurveTable).
	// On decode failure the pool falls back to baking from Curves.
	CurveData []byte `yaml:"-"`

	// SoftParticle enables depth-fade rendering hints.
	SoftParticle bool `yaml:"softParticle"`
	// SoftDistance is the depth-fade distance for soft particles.
	SoftDistance float32 `yaml:"softDistance"`
	// StretchFactor stretches particles along their velocity.
	StretchFactor float32 `yaml:"stretchFactor"`
	// StretchMax caps velocity stretching.
	StretchMax float32 `yaml:"stretchMax"`

	// Renderer-facing structural hints. The engine does not interpret them
	// beyond the recreation gate, but a change forces pool reconstruction
	// because the external renderer's buffer layout depends on them.
	Lighting          string `yaml:"lighting"`
	Appearance        string `yaml:"appearance"`
	CastShadow        bool   `yaml:"castShadow"`
	OrientToDirection bool   `yaml:"orientToDirection"`
	// OrientAxis is the billboard axis for oriented appearance modes.
	OrientAxis *Vec3 `yaml:"orientAxis"`
}

// Overrides is the subset of Config applicable to a single spawn call. It is
// merged over the pool's persistent parameters for the duration of one
// dispatch and restored afterwards.
type Overrides struct {
	Size     *Range
	Speed    *Range
	Lifetime *Range
	Gravity  *Vec3

	Direction     *AxisRange
	StartPosition *AxisRange
	Rotation      *AxisRange
	RotationSpeed *AxisRange

	ColorStart []Color
	ColorEnd   []Color

	EmitterShape     *EmitterShape
	EmitterRadius    *Range
	EmitterAngle     *float32
	EmitterHeight    *Range
	EmitterDirection *Vec3
	SurfaceOnly      *bool

	AttractToCenter          *bool
	StartPositionAsDirection *bool
}

// merged returns o layered over base: set fields of o win, nil fields keep
// the base value. base is not modified.
func (o *Overrides) merged(base *Overrides) *Overrides {
	if base == nil {
		return o
	}
	if o == nil {
		return base
	}
	out := *base
	if o.Size != nil {
		out.Size = o.Size
	}
	if o.Speed != nil {
		out.Speed = o.Speed
	}
	if o.Lifetime != nil {
		out.Lifetime = o.Lifetime
	}
	if o.Gravity != nil {
		out.Gravity = o.Gravity
	}
	if o.Direction != nil {
		out.Direction = o.Direction
	}
	if o.StartPosition != nil {
		out.StartPosition = o.StartPosition
	}
	if o.Rotation != nil {
		out.Rotation = o.Rotation
	}
	if o.RotationSpeed != nil {
		out.RotationSpeed = o.RotationSpeed
	}
	if o.ColorStart != nil {
		out.ColorStart = o.ColorStart
	}
	if o.ColorEnd != nil {
		out.ColorEnd = o.ColorEnd
	}
	if o.EmitterShape != nil {
		out.EmitterShape = o.EmitterShape
	}
	if o.EmitterRadius != nil {
		out.EmitterRadius = o.EmitterRadius
	}
	if o.EmitterAngle != nil {
		out.EmitterAngle = o.EmitterAngle
	}
	if o.EmitterHeight != nil {
		out.EmitterHeight = o.EmitterHeight
	}
	if o.EmitterDirection != nil {
		out.EmitterDirection = o.EmitterDirection
	}
	if o.SurfaceOnly != nil {
		out.SurfaceOnly = o.SurfaceOnly
	}
	if o.AttractToCenter != nil {
		out.AttractToCenter = o.AttractToCenter
	}
	if o.StartPositionAsDirection != nil {
		out.StartPositionAsDirection = o.StartPositionAsDirection
	}
	return &out
}
