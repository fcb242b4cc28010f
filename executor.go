package particles

import (
	"errors"
	"sync"
)

// Executor errors.
var (
	// ErrNoExecutor is returned when no executor could be initialized.
	ErrNoExecutor = errors.New("particles: no executor available")

	// ErrExecutorClosed is returned when operations are issued after Close.
	ErrExecutorClosed = errors.New("particles: executor is closed")
)

// SpawnRange describes one spawn dispatch: a possibly-wrapping index range
// of Count slots starting at Start. The randomized per-slot attributes are
// determined by the parameter store's batch descriptor at dispatch time.
type SpawnRange struct {
	Start int
	Count int
}

// Contains reports whether slot i falls inside the (wrapping) range within
// a pool of the given capacity.
func (r SpawnRange) Contains(i, capacity int) bool {
	if r.Count >= capacity {
		return true
	}
	end := (r.Start + r.Count) % capacity
	if r.Start <= end {
		return i >= r.Start && i < end
	}
	return i >= r.Start || i < end
}

// Executor realizes the spawn/update semantics against a shared Storage and
// Params. Exactly one executor serves a pool, selected at construction and
// never changed afterward; both implementations must be numerically
// equivalent for identical inputs.
//
// Spawn may be asynchronous (fire-and-forget) provided dispatches are
// sequenced: a spawn issued before Update must be visible to that Update.
// Update and Sync block until their effects are observable.
type Executor interface {
	// Name returns the executor identifier (e.g. "cpu", "gpu").
	Name() string

	// Init binds the executor to a pool's buffers and parameter store.
	// Called once; an executor that cannot serve (e.g. no GPU adapter)
	// returns an error and the pool falls through to the next candidate.
	Init(s *Storage, p *Params) error

	// Spawn fills the given slot range using the current batch descriptor
	// in the parameter store. Inputs are snapshotted at issue time.
	Spawn(r SpawnRange) error

	// Update advances every live particle by the timestep recorded in the
	// parameter store and retires particles whose lifetime reached zero.
	Update() error

	// Sync makes all prior mutations visible in the CPU-side Storage
	// buffers (a readback on the GPU path, a no-op on the CPU path).
	Sync() error

	// Close releases executor resources. Close blocks until any in-flight
	// dispatch has retired, so the pool's buffers are safe to drop
	// afterwards.
	Close()
}

// ExecutorFactory creates a new executor instance.
type ExecutorFactory func() Executor

// Executor names.
const (
	ExecutorCPU = "cpu"
	ExecutorGPU = "gpu"
)

var (
	executorsMu sync.RWMutex
	executors   = make(map[string]ExecutorFactory)
	// Selection order: first executor that initializes wins.
	executorPriority = []string{ExecutorGPU, ExecutorCPU}
)

// RegisterExecutor registers an executor factory under the given name,
// replacing any previous registration. Typically called from init()
// functions in executor packages; the gpu package registers itself behind a
// blank import.
func RegisterExecutor(name string, factory ExecutorFactory) {
	executorsMu.Lock()
	defer executorsMu.Unlock()
	executors[name] = factory
}

// AvailableExecutors returns the registered executor names.
func AvailableExecutors() []string {
	executorsMu.RLock()
	defer executorsMu.RUnlock()
	names := make([]string, 0, len(executors))
	for name := range executors {
		names = append(names, name)
	}
	return names
}

// newExecutor instantiates the named executor, or walks the priority order
// when name is empty. The returned executor is not yet initialized.
func newExecutor(name string) []Executor {
	executorsMu.RLock()
	defer executorsMu.RUnlock()
	if name != "" {
		if factory, ok := executors[name]; ok {
			return []Executor{factory()}
		}
		return nil
	}
	var candidates []Executor
	for _, n := range executorPriority {
		if factory, ok := executors[n]; ok {
			candidates = append(candidates, factory())
		}
	}
	return candidates
}

func init() {
	RegisterExecutor(ExecutorCPU, func() Executor { return &cpuExecutor{} })
}
