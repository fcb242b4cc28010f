package particles

// DeadY is the sentinel Y coordinate dead particles are parked at, far below
// any visible scene so they never render. A particle is dead exactly when
// its lifetime is <= 0, and a dead particle is always at the sentinel.
const DeadY float32 = -1000

// Storage holds the fixed-capacity struct-of-arrays particle buffers. Every
// buffer has one entry per slot; the vector buffers are flat float32 slices
// with stride 3 so they upload to the GPU without repacking.
//
// The optional buffers (Rotation, ColorStart, ColorEnd) are nil unless the
// corresponding feature flag was set when the storage was created.
type Storage struct {
	Capacity int

	Position []float32 // xyz per slot
	Velocity []float32 // xyz per slot
	// Life is 1 at birth and decays to 0; <= 0 means the slot is dead.
	Life []float32
	// FadeRate is the per-second Life decay, drawn at spawn.
	FadeRate []float32
	Size     []float32

	Rotation   []float32 // xyz per slot, nil unless rotation feature
	ColorStart []float32 // rgb per slot, nil unless color feature
	ColorEnd   []float32 // rgb per slot, nil unless color feature

	// dirty marks CPU-side mutation that an external renderer must upload.
	// The GPU executor never sets it: its mutations live on the device.
	dirty bool
}

// NewStorage allocates particle buffers for the given capacity and features,
// with every slot reset to the dead state.
func NewStorage(capacity int, f Features) *Storage {
	if capacity <= 0 {
		capacity = DefaultMaxParticles
	}
	s := &Storage{
		Capacity: capacity,
		Position: make([]float32, capacity*3),
		Velocity: make([]float32, capacity*3),
		Life:     make([]float32, capacity),
		FadeRate: make([]float32, capacity),
		Size:     make([]float32, capacity),
	}
	if f.NeedsRotation {
		s.Rotation = make([]float32, capacity*3)
	}
	if f.NeedsColor {
		s.ColorStart = make([]float32, capacity*3)
		s.ColorEnd = make([]float32, capacity*3)
	}
	s.Reset()
	return s
}

// Reset kills every slot: lifetimes to zero, positions to the sentinel,
// everything else cleared.
func (s *Storage) Reset() {
	for i := 0; i < s.Capacity; i++ {
		s.Position[i*3] = 0
		s.Position[i*3+1] = DeadY
		s.Position[i*3+2] = 0
		s.Velocity[i*3] = 0
		s.Velocity[i*3+1] = 0
		s.Velocity[i*3+2] = 0
		s.Life[i] = 0
		s.FadeRate[i] = 0
		s.Size[i] = 0
	}
	clear(s.Rotation)
	clear(s.ColorStart)
	clear(s.ColorEnd)
	s.dirty = true
}

// PositionAt returns slot i's position.
func (s *Storage) PositionAt(i int) Vec3 {
	return Vec3{X: s.Position[i*3], Y: s.Position[i*3+1], Z: s.Position[i*3+2]}
}

// VelocityAt returns slot i's velocity.
func (s *Storage) VelocityAt(i int) Vec3 {
	return Vec3{X: s.Velocity[i*3], Y: s.Velocity[i*3+1], Z: s.Velocity[i*3+2]}
}

func (s *Storage) setPosition(i int, v Vec3) {
	s.Position[i*3], s.Position[i*3+1], s.Position[i*3+2] = v.X, v.Y, v.Z
}

func (s *Storage) setVelocity(i int, v Vec3) {
	s.Velocity[i*3], s.Velocity[i*3+1], s.Velocity[i*3+2] = v.X, v.Y, v.Z
}

// kill parks slot i at the sentinel with zero lifetime.
func (s *Storage) kill(i int) {
	s.Life[i] = 0
	s.Position[i*3] = 0
	s.Position[i*3+1] = DeadY
	s.Position[i*3+2] = 0
}

// LiveCount returns the number of slots with positive lifetime.
func (s *Storage) LiveCount() int {
	n := 0
	for _, l := range s.Life {
		if l > 0 {
			n++
		}
	}
	return n
}

// Dirty reports whether CPU-side buffers changed since the last ClearDirty.
// Renderers on the CPU executor poll this to decide when to re-upload.
func (s *Storage) Dirty() bool { return s.dirty }

// ClearDirty acknowledges a completed upload.
func (s *Storage) ClearDirty() { s.dirty = false }

// MarkDirty flags the buffers for upload. Executors call this after any
// CPU-side mutation.
func (s *Storage) MarkDirty() { s.dirty = true }
