package particles

import "math"

// Params is the mutable parameter store ("uniforms") shared by both
// executors: one cell per simulation scalar or vector. It is rebuilt in full
// by BuildParams whenever the owning pool is (re)configured, patched in
// place by Pool.Patch, and transiently mutated by spawn-time overrides via
// the Snapshot/Restore pair.
type Params struct {
	// Per-frame state.
	Dt      float32
	Elapsed float32

	// Current spawn batch descriptor.
	SpawnStart  int
	SpawnCount  int
	BatchSeed   uint32
	SpawnOrigin Vec3

	Capacity int

	Size  Range
	Speed Range
	// FadeRate is the per-second lifetime decay range, the reciprocal of the
	// configured lifetime: Min = 1/lifetime.Max, Max = 1/lifetime.Min.
	// Higher fade rate means shorter life.
	FadeRate Range

	Gravity          Vec3
	SizeBasedGravity float32

	Friction       Range
	FrictionEasing FrictionEasing
	HasFriction    bool

	Direction     AxisRange
	StartPosition AxisRange
	Rotation      AxisRange
	RotationSpeed AxisRange

	ColorStart      [MaxPaletteColors]Color
	ColorStartCount int
	ColorEnd        [MaxPaletteColors]Color
	ColorEndCount   int

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

	// Feature-derived buffer flags.
	RotationActive bool
	ColorActive    bool

	// Curves is the baked curve table both executors sample. Immutable once
	// built; snapshots share it by pointer.
	Curves *CurveTable
	// CurveMask holds the channel-active bits of the baked curve table.
	CurveMask uint32

	// Rendering hints carried for the external renderer.
	SoftParticle  bool
	SoftDistance  float32
	StretchFactor float32
	StretchMax    float32
	OrientAxis    Vec3
}

// BuildParams derives a full parameter store from a normalized
// configuration, its resolved features and the baked curve table.
func BuildParams(n *NormalizedConfig, f Features, curves *CurveTable) Params {
	p := Params{
		Capacity: n.MaxParticles,

		Size:     n.Size,
		Speed:    n.Speed,
		FadeRate: fadeRange(n.Lifetime),

		Gravity:          n.Gravity,
		SizeBasedGravity: n.SizeBasedGravity,

		Friction:       n.Friction,
		FrictionEasing: n.FrictionEasing,
		HasFriction:    n.HasFriction,

		Direction:     n.Direction,
		StartPosition: n.StartPosition,
		Rotation:      n.Rotation,
		RotationSpeed: n.RotationSpeed,

		ColorStart:      n.ColorStart,
		ColorStartCount: n.ColorStartCount,
		ColorEnd:        n.ColorEnd,
		ColorEndCount:   n.ColorEndCount,

		Shape:            n.Shape,
		Radius:           n.Radius,
		Angle:            n.Angle,
		Height:           n.Height,
		EmitterDirection: n.EmitterDirection,
		SurfaceOnly:      n.SurfaceOnly,

		AttractToCenter:          n.AttractToCenter,
		StartPositionAsDirection: n.StartPositionAsDirection,

		Turbulence: n.Turbulence,

		Attractors:     n.Attractors,
		AttractorCount: n.AttractorCount,

		Collision:       n.Collision,
		CollisionActive: n.CollisionActive,

		RotationActive: f.NeedsRotation,
		ColorActive:    f.NeedsColor,

		SoftParticle:  n.SoftParticle,
		SoftDistance:  n.SoftDistance,
		StretchFactor: n.StretchFactor,
		StretchMax:    n.StretchMax,
		OrientAxis:    n.OrientAxis,
	}
	if curves != nil {
		p.Curves = curves
		p.CurveMask = curves.Mask
	}
	return p
}

// fadeRange converts a lifetime range in seconds to a fade-rate range.
func fadeRange(lifetime Range) Range {
	min := lifetime.Min
	max := lifetime.Max
	if min <= 0 {
		min = defaultLifetime
	}
	if max <= 0 {
		max = min
	}
	return Range{Min: 1 / max, Max: 1 / min}
}

// Snapshot returns a save-point of the full store. Arrays are value types,
// so the copy is deep.
func (p *Params) Snapshot() Params {
	return *p
}

// Restore rewinds the store to a previously taken snapshot.
func (p *Params) Restore(s Params) {
	*p = s
}

// applyOverrides merges a per-spawn override set into the store. The caller
// is expected to Snapshot first and Restore after dispatch so back-to-back
// spawns in one frame do not see each other's overrides.
func (p *Params) applyOverrides(o *Overrides) {
	if o == nil {
		return
	}
	if o.Size != nil {
		p.Size = *o.Size
	}
	if o.Speed != nil {
		p.Speed = *o.Speed
	}
	if o.Lifetime != nil {
		p.FadeRate = fadeRange(*o.Lifetime)
	}
	if o.Gravity != nil {
		p.Gravity = *o.Gravity
	}
	if o.Direction != nil {
		p.Direction = *o.Direction
	}
	if o.StartPosition != nil {
		p.StartPosition = *o.StartPosition
	}
	if o.Rotation != nil {
		p.Rotation = *o.Rotation
	}
	if o.RotationSpeed != nil {
		p.RotationSpeed = *o.RotationSpeed
	}
	if o.ColorStart != nil {
		p.ColorStart, p.ColorStartCount = palette(o.ColorStart)
	}
	if o.ColorEnd != nil {
		p.ColorEnd, p.ColorEndCount = palette(o.ColorEnd)
	}
	if o.EmitterShape != nil {
		p.Shape = *o.EmitterShape
	}
	if o.EmitterRadius != nil {
		p.Radius = *o.EmitterRadius
	}
	if o.EmitterAngle != nil {
		p.Angle = *o.EmitterAngle
	}
	if o.EmitterHeight != nil {
		p.Height = *o.EmitterHeight
	}
	if o.EmitterDirection != nil && *o.EmitterDirection != (Vec3{}) {
		p.EmitterDirection = o.EmitterDirection.Normalize()
	}
	if o.SurfaceOnly != nil {
		p.SurfaceOnly = *o.SurfaceOnly
	}
	if o.AttractToCenter != nil {
		p.AttractToCenter = *o.AttractToCenter
	}
	if o.StartPositionAsDirection != nil {
		p.StartPositionAsDirection = *o.StartPositionAsDirection
	}
}

// UniformWords is the size of the encoded parameter block in 32-bit words.
// The GPU executor uploads this block as a uniform buffer of
// array<vec4<f32>, UniformWords/4>; the WGSL kernels index it with the same
// offsets listed below.
const UniformWords = 160

// Flat word offsets into the encoded uniform block. Mirrored as constants in
// the WGSL kernel sources; the two lists must stay in sync.
const (
	uDt           = 0
	uElapsed      = 1
	uSpawnStart   = 2
	uSpawnCount   = 3
	uBatchSeed    = 4 // bitcast u32
	uSpawnOrigin  = 5 // ..7
	uCapacity     = 8
	uSize         = 9  // ..10 min,max
	uSpeed        = 11 // ..12
	uFadeRate     = 13 // ..14
	uGravity      = 15 // ..17
	uSizeGravity  = 18
	uFriction     = 19 // ..20 start,end
	uFrictionEase = 21
	uFlags        = 22 // bitcast u32
	uShape        = 23
	uRadius       = 24 // ..25
	uAngle        = 26
	uHeight       = 27 // ..28
	uEmitterDir   = 29 // ..31
	uDirection    = 32 // ..37 x[min,max] y[min,max] z[min,max]
	uStartPos     = 38 // ..43
	uRotation     = 44 // ..49
	uRotSpeed     = 50 // ..55
	uColorStartN  = 56
	uColorEndN    = 57
	uColorStart   = 58 // ..81  8 × rgb
	uColorEnd     = 82 // ..105
	uTurbulence   = 106 // ..108 intensity,frequency,speed
	uCollision    = 109 // ..111 planeY,bounce,friction
	uAttractors   = 112 // ..159  4 × 12: pos3,strength,axis3,radius,kind,falloff,pad2
)

// Bits of the encoded flags word.
const (
	flagAttractToCenter = 1 << iota
	flagStartPosAsDir
	flagSurfaceOnly
	flagSizeCurve
	flagOpacityCurve
	flagVelocityCurve
	flagRotSpeedCurve
	flagCollisionActive
	flagCollisionDie
	flagTurbulence
	flagRotationActive
	flagColorActive
	flagHasFriction
)

// flagsWord packs the boolean cells into the uniform flags bitmask.
func (p *Params) flagsWord() uint32 {
	var f uint32
	set := func(cond bool, bit uint32) {
		if cond {
			f |= bit
		}
	}
	set(p.AttractToCenter, flagAttractToCenter)
	set(p.StartPositionAsDirection, flagStartPosAsDir)
	set(p.SurfaceOnly, flagSurfaceOnly)
	set(p.CurveMask&MaskSize != 0, flagSizeCurve)
	set(p.CurveMask&MaskOpacity != 0, flagOpacityCurve)
	set(p.CurveMask&MaskVelocity != 0, flagVelocityCurve)
	set(p.CurveMask&MaskRotationSpeed != 0, flagRotSpeedCurve)
	set(p.CollisionActive, flagCollisionActive)
	set(p.Collision.Die, flagCollisionDie)
	set(p.Turbulence.Intensity > 0, flagTurbulence)
	set(p.RotationActive, flagRotationActive)
	set(p.ColorActive, flagColorActive)
	set(p.HasFriction, flagHasFriction)
	return f
}

// EncodeUniform serializes the store into the fixed uniform block layout.
func (p *Params) EncodeUniform(dst *[UniformWords]float32) {
	putVec := func(off int, v Vec3) {
		dst[off], dst[off+1], dst[off+2] = v.X, v.Y, v.Z
	}
	putRange := func(off int, r Range) {
		dst[off], dst[off+1] = r.Min, r.Max
	}
	putAxis := func(off int, a AxisRange) {
		putRange(off, a.X)
		putRange(off+2, a.Y)
		putRange(off+4, a.Z)
	}

	dst[uDt] = p.Dt
	dst[uElapsed] = p.Elapsed
	dst[uSpawnStart] = float32(p.SpawnStart)
	dst[uSpawnCount] = float32(p.SpawnCount)
	dst[uBatchSeed] = math.Float32frombits(p.BatchSeed)
	putVec(uSpawnOrigin, p.SpawnOrigin)
	dst[uCapacity] = float32(p.Capacity)
	putRange(uSize, p.Size)
	putRange(uSpeed, p.Speed)
	putRange(uFadeRate, p.FadeRate)
	putVec(uGravity, p.Gravity)
	dst[uSizeGravity] = p.SizeBasedGravity
	putRange(uFriction, p.Friction)
	dst[uFrictionEase] = float32(p.FrictionEasing)
	dst[uFlags] = math.Float32frombits(p.flagsWord())
	dst[uShape] = float32(p.Shape)
	putRange(uRadius, p.Radius)
	dst[uAngle] = p.Angle
	putRange(uHeight, p.Height)
	putVec(uEmitterDir, p.EmitterDirection)
	putAxis(uDirection, p.Direction)
	putAxis(uStartPos, p.StartPosition)
	putAxis(uRotation, p.Rotation)
	putAxis(uRotSpeed, p.RotationSpeed)
	dst[uColorStartN] = float32(p.ColorStartCount)
	dst[uColorEndN] = float32(p.ColorEndCount)
	for i := 0; i < MaxPaletteColors; i++ {
		c := p.ColorStart[i]
		dst[uColorStart+i*3], dst[uColorStart+i*3+1], dst[uColorStart+i*3+2] = c.R, c.G, c.B
		c = p.ColorEnd[i]
		dst[uColorEnd+i*3], dst[uColorEnd+i*3+1], dst[uColorEnd+i*3+2] = c.R, c.G, c.B
	}
	dst[uTurbulence] = p.Turbulence.Intensity
	dst[uTurbulence+1] = p.Turbulence.Frequency
	dst[uTurbulence+2] = p.Turbulence.Speed
	dst[uCollision] = p.Collision.PlaneY
	dst[uCollision+1] = p.Collision.Bounce
	dst[uCollision+2] = p.Collision.Friction
	for i := 0; i < MaxAttractors; i++ {
		base := uAttractors + i*12
		a := p.Attractors[i]
		if i >= p.AttractorCount {
			a = AttractorSlot{}
		}
		putVec(base, a.Position)
		dst[base+3] = a.Strength
		putVec(base+4, a.Axis)
		dst[base+7] = a.Radius
		dst[base+8] = float32(a.Kind)
		if a.InverseSquare {
			dst[base+9] = 1
		} else {
			dst[base+9] = 0
		}
	}
}
