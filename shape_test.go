package particles

import (
	"testing"

	"gonum.org/v1/gonum/stat"
)

func shapeParams(cfg Config) *Params {
	n := Normalize(cfg)
	f := ResolveFeatures(&n)
	p := BuildParams(&n, f, nil)
	p.BatchSeed = 12345
	return &p
}

func TestShapeOffsetPoint(t *testing.T) {
	p := shapeParams(Config{})
	for seed := uint32(0); seed < 100; seed++ {
		if got := shapeOffset(p, seed); got != (Vec3{}) {
			t.Fatalf("point shape offset = %v, want zero", got)
		}
	}
}

func TestShapeOffsetBoxBounds(t *testing.T) {
	p := shapeParams(Config{
		EmitterShape: "box",
		StartPosition: AxisXYZ(
			Range{Min: -1, Max: 1},
			Range{Min: 0, Max: 2},
			Range{Min: -3, Max: -2},
		),
	})
	for seed := uint32(0); seed < 1000; seed++ {
		o := shapeOffset(p, seed)
		if o.X < -1 || o.X > 1 || o.Y < 0 || o.Y > 2 || o.Z < -3 || o.Z > -2 {
			t.Fatalf("box offset %v outside bounds", o)
		}
	}
}

func TestShapeOffsetSphereSurface(t *testing.T) {
	p := shapeParams(Config{
		EmitterShape:  "sphere",
		EmitterRadius: RangeOf(0, 1),
		SurfaceOnly:   true,
	})
	for seed := uint32(0); seed < 1000; seed++ {
		if l := shapeOffset(p, seed).Length(); !near(l, 1, 1e-5) {
			t.Fatalf("surface sample length = %v, want 1", l)
		}
	}
}

func TestShapeOffsetSphereShell(t *testing.T) {
	p := shapeParams(Config{
		EmitterShape:  "sphere",
		EmitterRadius: RangeOf(0.5, 2),
	})
	for seed := uint32(0); seed < 1000; seed++ {
		l := shapeOffset(p, seed).Length()
		if l < 0.5-1e-5 || l > 2+1e-5 {
			t.Fatalf("shell sample length = %v, want [0.5, 2]", l)
		}
	}
}

func TestShapeOffsetSphereCentered(t *testing.T) {
	// Component means of a uniform ball sample converge on zero.
	p := shapeParams(Config{
		EmitterShape:  "sphere",
		EmitterRadius: RangeOf(0, 1),
	})
	const n = 20000
	xs := make([]float64, n)
	ys := make([]float64, n)
	zs := make([]float64, n)
	for seed := 0; seed < n; seed++ {
		o := shapeOffset(p, uint32(seed)*31)
		xs[seed] = float64(o.X)
		ys[seed] = float64(o.Y)
		zs[seed] = float64(o.Z)
	}
	for axis, vals := range map[string][]float64{"x": xs, "y": ys, "z": zs} {
		if m := stat.Mean(vals, nil); m < -0.02 || m > 0.02 {
			t.Errorf("%s mean = %v, want ~0", axis, m)
		}
	}
}

func TestShapeOffsetDisk(t *testing.T) {
	p := shapeParams(Config{
		EmitterShape:  "disk",
		EmitterRadius: RangeOf(0.5, 1.5),
	})
	for seed := uint32(0); seed < 1000; seed++ {
		o := shapeOffset(p, seed)
		// Default emitter direction is +Y, so the disk lies in the XZ plane.
		if !near(o.Y, 0, 1e-5) {
			t.Fatalf("disk sample y = %v", o.Y)
		}
		r := o.Length()
		if r < 0.5-1e-5 || r > 1.5+1e-5 {
			t.Fatalf("disk sample radius = %v, want [0.5, 1.5]", r)
		}
	}
}

func TestShapeOffsetDiskOriented(t *testing.T) {
	p := shapeParams(Config{
		EmitterShape:     "disk",
		EmitterRadius:    RangeOf(1, 1),
		EmitterDirection: &Vec3{X: 1},
	})
	for seed := uint32(0); seed < 200; seed++ {
		o := shapeOffset(p, seed)
		// Disk normal follows the emitter direction.
		if !near(o.X, 0, 1e-4) {
			t.Fatalf("oriented disk sample x = %v, want 0", o.X)
		}
		if !near(o.Length(), 1, 1e-4) {
			t.Fatalf("oriented disk radius = %v", o.Length())
		}
	}
}

func TestShapeOffsetCone(t *testing.T) {
	angle := float32(0.5)
	p := shapeParams(Config{
		EmitterShape:  "cone",
		EmitterAngle:  angle,
		EmitterHeight: RangeOf(0.5, 2),
	})
	for seed := uint32(0); seed < 1000; seed++ {
		o := shapeOffset(p, seed)
		if o.Y < 0.5-1e-5 || o.Y > 2+1e-5 {
			t.Fatalf("cone sample height = %v, want [0.5, 2]", o.Y)
		}
		// Radial distance at height h stays within h*sin(angle).
		radial := sqrt32(o.X*o.X + o.Z*o.Z)
		if radial > o.Y*sin32(angle)+1e-4 {
			t.Fatalf("cone sample radial %v exceeds %v at height %v", radial, o.Y*sin32(angle), o.Y)
		}
	}
}

func TestShapeOffsetEdge(t *testing.T) {
	p := shapeParams(Config{
		EmitterShape: "edge",
		StartPosition: AxisXYZ(
			Range{Min: -1, Max: 1},
			Range{Min: 0, Max: 0},
			Range{Min: 2, Max: 4},
		),
	})
	for seed := uint32(0); seed < 1000; seed++ {
		o := shapeOffset(p, seed)
		// Samples lie on the segment between the two corners: the X and Z
		// interpolation parameters agree.
		tx := (o.X + 1) / 2
		tz := (o.Z - 2) / 2
		if !near(tx, tz, 1e-5) || o.Y != 0 {
			t.Fatalf("edge sample %v off the segment", o)
		}
	}
}

func TestSpawnVelocityAttractToCenter(t *testing.T) {
	p := shapeParams(Config{AttractToCenter: true})
	offset := Vec3{X: 2, Y: -1, Z: 0.5}
	fade := float32(0.5)
	got := spawnVelocity(p, 1, offset, fade)
	// Velocity*lifetime returns exactly to the spawn point.
	if !vecNear(got, offset.Mul(-fade), 1e-6) {
		t.Errorf("attract velocity = %v, want %v", got, offset.Mul(-fade))
	}
}

func TestSpawnVelocityStartPositionAsDirection(t *testing.T) {
	p := shapeParams(Config{
		StartPositionAsDirection: true,
		Speed:                    RangeOf(3, 3),
	})
	offset := Vec3{X: 0, Y: 4, Z: 0}
	got := spawnVelocity(p, 1, offset, 1)
	if !vecNear(got, Vec3{Y: 3}, 1e-5) {
		t.Errorf("radial velocity = %v, want (0, 3, 0)", got)
	}
}

func TestSpawnVelocitySpeedMagnitude(t *testing.T) {
	p := shapeParams(Config{Speed: RangeOf(2, 5)})
	for seed := uint32(0); seed < 500; seed++ {
		v := spawnVelocity(p, seed, Vec3{}, 1)
		l := v.Length()
		if l < 2-1e-4 || l > 5+1e-4 {
			t.Fatalf("speed = %v, want [2, 5]", l)
		}
	}
}

func TestSpawnSlotDeterministic(t *testing.T) {
	n := Normalize(Config{EmitterShape: "sphere", EmitterRadius: RangeOf(0, 1)})
	f := ResolveFeatures(&n)
	p := BuildParams(&n, f, nil)
	p.BatchSeed = 777

	a := NewStorage(8, f)
	b := NewStorage(8, f)
	for i := 0; i < 8; i++ {
		spawnSlot(a, &p, i)
		spawnSlot(b, &p, i)
	}
	for i := range a.Position {
		if a.Position[i] != b.Position[i] || a.Velocity[i] != b.Velocity[i] {
			t.Fatalf("slot data diverges at %d", i)
		}
	}

	// A different batch seed produces a different batch.
	p.BatchSeed = 778
	c := NewStorage(8, f)
	for i := 0; i < 8; i++ {
		spawnSlot(c, &p, i)
	}
	same := true
	for i := range a.Position {
		if a.Position[i] != c.Position[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different batch seeds produced identical batches")
	}
}

func TestSpawnSlotFills(t *testing.T) {
	n := Normalize(Config{
		Size:          RangeOf(0.5, 1.5),
		Lifetime:      RangeOf(2, 2),
		Rotation:      AxisOf(0, 1),
		ColorStart:    []Color{{R: 1}, {G: 1}},
		ColorEnd:      []Color{{B: 1}},
		RotationSpeed: AxisOf(-1, 1),
	})
	f := ResolveFeatures(&n)
	p := BuildParams(&n, f, nil)
	s := NewStorage(4, f)

	spawnSlot(s, &p, 2)

	if s.Life[2] != 1 {
		t.Errorf("Life = %v, want 1", s.Life[2])
	}
	if !near(s.FadeRate[2], 0.5, 1e-6) {
		t.Errorf("FadeRate = %v, want 0.5 for 2s lifetime", s.FadeRate[2])
	}
	if s.Size[2] < 0.5 || s.Size[2] > 1.5 {
		t.Errorf("Size = %v", s.Size[2])
	}
	cs := Vec3{X: s.ColorStart[6], Y: s.ColorStart[7], Z: s.ColorStart[8]}
	if cs != (Vec3{X: 1}) && cs != (Vec3{Y: 1}) {
		t.Errorf("ColorStart = %v, want a palette entry", cs)
	}
	ce := Vec3{X: s.ColorEnd[6], Y: s.ColorEnd[7], Z: s.ColorEnd[8]}
	if ce != (Vec3{Z: 1}) {
		t.Errorf("ColorEnd = %v, want blue", ce)
	}

	// Untouched slots stay dead.
	if s.Life[0] != 0 || s.PositionAt(0) != (Vec3{Y: DeadY}) {
		t.Error("spawn touched an out-of-range slot")
	}
}
