package particles

// EmitterOptions configures an Emitter's timing and per-emit behavior.
type EmitterOptions struct {
	// Count is the number of particles per emission. Default 1.
	Count int
	// Delay is the seconds between emissions. Zero or negative emits every
	// update call.
	Delay float32
	// Loop keeps emitting; when false the emitter fires once and stops.
	Loop bool
	// LocalDirection, when set, is a direction range in the emitter's local
	// space, rotated into world space by the orientation passed to Update
	// or Burst before being applied as a spawn override.
	LocalDirection *AxisRange
	// Overrides are merged into every emission this controller issues.
	// Caller-supplied per-emit overrides win over these.
	Overrides *Overrides
}

// Emitter is the thin timing layer over a pool: it decides when to call
// Spawn (immediate, delayed, one-shot or looping) and optionally re-targets
// spawn position and direction from an external transform. It performs no
// simulation itself.
type Emitter struct {
	pool *Pool
	opts EmitterOptions

	emitAccumulator float32
	hasEmittedOnce  bool
	isEmitting      bool
}

// NewEmitter wraps a pool with timer state. The emitter starts running.
func NewEmitter(pool *Pool, opts EmitterOptions) *Emitter {
	if opts.Count <= 0 {
		opts.Count = 1
	}
	return &Emitter{pool: pool, opts: opts, isEmitting: true}
}

// Start resets the timer and one-shot state and resumes emission.
func (e *Emitter) Start() {
	e.emitAccumulator = 0
	e.hasEmittedOnce = false
	e.isEmitting = true
}

// Stop halts emission. The accumulator is left untouched here; Start clears
// it, so a Stop/Start cycle restarts emission timing from zero.
func (e *Emitter) Stop() {
	e.isEmitting = false
}

// Emitting reports whether the emitter is running.
func (e *Emitter) Emitting() bool { return e.isEmitting }

// Update advances the emission timer by dt and emits at worldPosition when
// due. orientation rotates the configured local direction range into world
// space; pass QuatIdentity for an unoriented emitter.
func (e *Emitter) Update(dt float32, worldPosition Vec3, orientation Quat) {
	if !e.isEmitting {
		return
	}
	if !e.opts.Loop && e.hasEmittedOnce {
		return
	}
	if e.opts.Delay <= 0 {
		e.emitAt(worldPosition, orientation, e.opts.Count, nil)
		return
	}
	e.emitAccumulator += dt
	if e.emitAccumulator >= e.opts.Delay {
		e.emitAccumulator = 0
		e.emitAt(worldPosition, orientation, e.opts.Count, nil)
	}
}

// Burst emits count particles immediately at worldPosition, regardless of
// timer state. Caller overrides win over the controller's configured
// overrides, and an override direction wins over the controller's local
// direction.
func (e *Emitter) Burst(count int, worldPosition Vec3, orientation Quat, ov *Overrides) {
	if count <= 0 {
		count = e.opts.Count
	}
	e.emitAt(worldPosition, orientation, count, ov)
}

func (e *Emitter) emitAt(pos Vec3, orientation Quat, count int, caller *Overrides) {
	merged := caller.merged(e.opts.Overrides)
	if e.opts.LocalDirection != nil && (caller == nil || caller.Direction == nil) {
		world := worldDirection(*e.opts.LocalDirection, orientation)
		if merged == nil {
			merged = &Overrides{Direction: &world}
		} else {
			m := *merged
			m.Direction = &world
			merged = &m
		}
	}
	e.pool.Spawn(pos.X, pos.Y, pos.Z, count, merged)
	e.hasEmittedOnce = true
}

// worldDirection rotates a local per-axis direction range into world space
// by transforming its corner vectors.
func worldDirection(local AxisRange, orientation Quat) AxisRange {
	min := orientation.Rotate(local.MinCorner())
	max := orientation.Rotate(local.MaxCorner())
	return AxisRange{
		X: orderedRange(min.X, max.X),
		Y: orderedRange(min.Y, max.Y),
		Z: orderedRange(min.Z, max.Z),
	}
}

// orderedRange builds a Range with Min <= Max; rotation can swap corners.
func orderedRange(a, b float32) Range {
	if a > b {
		return Range{Min: b, Max: a}
	}
	return Range{Min: a, Max: b}
}
