package particles

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// Pool is a fixed-capacity particle pool: the struct-of-arrays buffers, the
// parameter store, the ring-buffer spawn cursor and the executor that
// mutates them. A pool's storage and parameters are exclusively owned by it;
// no concurrent writers are permitted.
type Pool struct {
	raw      Config
	norm     NormalizedConfig
	features Features
	curves   *CurveTable
	params   Params
	storage  *Storage
	exec     Executor
	cursor   int
	rng      *rand.Rand
	disposed bool
}

// Option configures pool construction.
type Option func(*poolOptions)

type poolOptions struct {
	executor string
	seed     uint64
	seeded   bool
}

// WithExecutor pins the pool to the named executor instead of walking the
// priority order (gpu first, cpu fallback).
func WithExecutor(name string) Option {
	return func(o *poolOptions) { o.executor = name }
}

// WithSeed fixes the batch-seed stream, making every spawn fully
// deterministic. Intended for tests and replays.
func WithSeed(seed uint64) Option {
	return func(o *poolOptions) { o.seed = seed; o.seeded = true }
}

// NewPool builds a pool from a declarative configuration. An empty Config is
// valid and produces the default emitter. Executor selection happens here,
// once; it does not change for the pool's lifetime.
func NewPool(cfg Config, opts ...Option) (*Pool, error) {
	var o poolOptions
	for _, opt := range opts {
		opt(&o)
	}
	if !o.seeded {
		o.seed = uint64(time.Now().UnixNano())
	}

	p := &Pool{raw: cfg}
	p.rng = rand.New(rand.NewPCG(o.seed, o.seed^0xda3e39cb94b95bdb))
	p.rebuild()

	if err := p.selectExecutor(o.executor); err != nil {
		return nil, err
	}
	Logger().Info("particle pool created",
		"capacity", p.storage.Capacity, "executor", p.exec.Name())
	return p, nil
}

// rebuild derives the normalized config, features, curve table, storage and
// parameter store from the raw configuration.
func (p *Pool) rebuild() {
	p.norm = Normalize(p.raw)
	p.features = ResolveFeatures(&p.norm)
	p.curves = buildCurveTable(&p.norm, p.raw.CurveData)
	p.storage = NewStorage(p.norm.MaxParticles, p.features)
	p.params = BuildParams(&p.norm, p.features, p.curves)
	p.cursor = 0
}

// selectExecutor initializes the pinned executor, or the first candidate in
// priority order that initializes successfully.
func (p *Pool) selectExecutor(name string) error {
	candidates := newExecutor(name)
	if len(candidates) == 0 {
		return fmt.Errorf("%w: %q not registered", ErrNoExecutor, name)
	}
	for _, e := range candidates {
		if err := e.Init(p.storage, &p.params); err != nil {
			Logger().Warn("executor unavailable", "executor", e.Name(), "err", err)
			continue
		}
		p.exec = e
		return nil
	}
	return ErrNoExecutor
}

// buildCurveTable decodes a pre-baked curve blob, falling back to baking
// from the configured curve properties when the blob is missing or rejected.
func buildCurveTable(n *NormalizedConfig, data []byte) *CurveTable {
	if len(data) > 0 {
		t, err := DecodeCurveTable(data)
		if err == nil {
			return t
		}
		Logger().Warn("curve data rejected, baking from curve props", "err", err)
	}
	c := n.Curves
	return BuildCombinedTable(c.Size, c.Opacity, c.Velocity, c.RotationSpeed)
}

// Spawn emits count particles at (x, y, z), filling the next count slots
// past the ring-buffer cursor. The oldest live particles are silently
// overwritten once the pool wraps; that is the recycling policy, not an
// error.
//
// Overrides apply to this call only: the parameter store is snapshotted,
// patched, and restored immediately after the dispatch is issued. The
// dispatch snapshots its inputs at issue time, so back-to-back spawns in
// one frame with different overrides do not race.
func (p *Pool) Spawn(x, y, z float32, count int, ov *Overrides) {
	if p.disposed || count <= 0 {
		return
	}
	saved := p.params.Snapshot()
	p.params.applyOverrides(ov)
	p.params.SpawnOrigin = Vec3{X: x, Y: y, Z: z}
	p.params.SpawnStart = p.cursor
	p.params.SpawnCount = count
	p.params.BatchSeed = p.rng.Uint32()

	if err := p.exec.Spawn(SpawnRange{Start: p.cursor, Count: count}); err != nil {
		Logger().Warn("spawn dispatch failed", "err", err)
	}
	p.cursor = (p.cursor + count) % p.storage.Capacity
	p.params.Restore(saved)
}

// Update advances the whole pool by dt seconds. Spawn dispatches issued
// earlier this frame are sequenced before the update on both executors.
func (p *Pool) Update(dt float32) error {
	if p.disposed {
		return ErrExecutorClosed
	}
	p.params.Dt = dt
	if err := p.exec.Update(); err != nil {
		return fmt.Errorf("particles: update: %w", err)
	}
	p.params.Elapsed += dt
	return nil
}

// Sync makes all prior mutations visible in the CPU-side Storage buffers.
// On the CPU executor this is a no-op; on the GPU executor it reads the
// device buffers back.
func (p *Pool) Sync() error {
	if p.disposed {
		return ErrExecutorClosed
	}
	return p.exec.Sync()
}

// Reconfigure applies a new configuration. When the delta only moves
// numeric magnitudes the parameter store is patched in place and live
// particles survive; when it changes structure (capacity, renderer-facing
// hints, or any feature flag) the pool is rebuilt and reports recreated.
//
// The gate is conservative: a spurious rebuild costs a frame, a missed one
// would leave stale buffer layouts.
func (p *Pool) Reconfigure(next Config) (recreated bool, err error) {
	if p.disposed {
		return false, ErrExecutorClosed
	}
	merged := Normalize(next)
	if NeedsRecreation(p.features, changedStructuralKeys(&p.raw, &next), &merged) {
		name := p.exec.Name()
		// Close blocks until in-flight dispatches retire, so the old
		// buffers are unreachable before they are dropped.
		p.exec.Close()
		p.raw = next
		p.rebuild()
		if err := p.selectExecutor(name); err != nil {
			return true, err
		}
		return true, nil
	}
	p.raw = next
	p.norm = merged
	p.curves = buildCurveTable(&p.norm, next.CurveData)
	p.rebuildParams()
	return false, nil
}

// Patch overwrites the parameter store from a configuration delta without
// touching storage or the executor. The caller is responsible for the delta
// being non-structural; Reconfigure is the checked path.
func (p *Pool) Patch(next Config) {
	p.raw = next
	p.norm = Normalize(next)
	p.curves = buildCurveTable(&p.norm, next.CurveData)
	p.rebuildParams()
}

// rebuildParams regenerates the parameter store from the current normalized
// config while carrying over the per-frame clock and the last spawn batch
// descriptor. BuildParams zero-initializes both; losing Elapsed would rewind
// every time-seeded field (turbulence phase above all) on a patch that
// changed nothing else.
func (p *Pool) rebuildParams() {
	prev := p.params
	p.params = BuildParams(&p.norm, p.features, p.curves)
	p.params.Dt = prev.Dt
	p.params.Elapsed = prev.Elapsed
	p.params.SpawnStart = prev.SpawnStart
	p.params.SpawnCount = prev.SpawnCount
	p.params.BatchSeed = prev.BatchSeed
	p.params.SpawnOrigin = prev.SpawnOrigin
}

// changedStructuralKeys names the structural config fields that differ
// between two raw configurations. Only keys in the structural set are
// reported; numeric deltas are invisible to the recreation gate unless they
// flip a feature flag.
func changedStructuralKeys(old, next *Config) []string {
	var keys []string
	if old.MaxParticles != next.MaxParticles {
		keys = append(keys, "maxParticles")
	}
	if old.Lighting != next.Lighting {
		keys = append(keys, "lighting")
	}
	if old.Appearance != next.Appearance {
		keys = append(keys, "appearance")
	}
	if old.CastShadow != next.CastShadow {
		keys = append(keys, "castShadow")
	}
	if old.OrientToDirection != next.OrientToDirection {
		keys = append(keys, "orientToDirection")
	}
	return keys
}

// Storage exposes the particle buffers for rendering. On the GPU executor
// call Sync first to read device buffers back; renderers that consume the
// device buffers directly do not need to.
func (p *Pool) Storage() *Storage { return p.storage }

// Features returns the feature flags the pool was built with.
func (p *Pool) Features() Features { return p.features }

// Curves returns the baked curve table.
func (p *Pool) Curves() *CurveTable { return p.curves }

// Cursor returns the ring-buffer spawn cursor.
func (p *Pool) Cursor() int { return p.cursor }

// ExecutorName returns the name of the executor serving this pool.
func (p *Pool) ExecutorName() string { return p.exec.Name() }

// PoolStats is a snapshot of pool occupancy for debug surfaces.
type PoolStats struct {
	Capacity int
	Live     int
	Cursor   int
	Executor string
}

// Stats reports current occupancy. Live counts CPU-visible lifetimes; on
// the GPU executor it reflects the last Sync.
func (p *Pool) Stats() PoolStats {
	return PoolStats{
		Capacity: p.storage.Capacity,
		Live:     p.storage.LiveCount(),
		Cursor:   p.cursor,
		Executor: p.exec.Name(),
	}
}

// Dispose releases the pool's executor resources. Dispose blocks until
// in-flight dispatches have retired; the pool must not be used afterwards.
func (p *Pool) Dispose() {
	if p.disposed {
		return
	}
	p.disposed = true
	p.exec.Close()
}
