//go:build !nogpu

package gpu

import (
	"testing"

	"github.com/gogpu/particles"
)

// equivalenceConfig exercises the full kernel surface: shaped emission,
// gravity, friction, turbulence, a vortex attractor, collision and a baked
// size curve.
func equivalenceConfig() particles.Config {
	return particles.Config{
		MaxParticles:  64,
		Lifetime:      particles.RangeOf(3, 3),
		Speed:         particles.RangeOf(0.5, 1.5),
		Size:          particles.RangeOf(0.5, 1),
		Gravity:       &particles.Vec3{Y: -2},
		EmitterShape:  "sphere",
		EmitterRadius: particles.RangeOf(0, 1),
		Turbulence:    &particles.TurbulenceConfig{Intensity: 1, Frequency: 0.5, Speed: 1},
		Attractors: []particles.AttractorConfig{
			{Kind: "vortex", Strength: 2, Axis: particles.Vec3{Y: 1}},
		},
		Collision: &particles.CollisionConfig{PlaneY: -3, Bounce: 0.5},
		Curves: &particles.CurvesConfig{
			Size: &particles.Curve{Points: []particles.CurvePoint{{X: 0, Y: 1}, {X: 1, Y: 0}}},
		},
	}
}

// TestExecutorMatchesCPU runs the same seeded spawn/update sequence on the
// GPU and CPU executors and requires the pool buffers to agree within float
// tolerance. Both kernels and stepParticle share the same hash and stage
// order, so agreement here is the contract, not a coincidence. Skips when no
// adapter is available.
func TestExecutorMatchesCPU(t *testing.T) {
	cfg := equivalenceConfig()

	gpuPool, err := particles.NewPool(cfg,
		particles.WithExecutor(particles.ExecutorGPU), particles.WithSeed(7))
	if err != nil {
		t.Skipf("no GPU executor: %v", err)
	}
	defer gpuPool.Dispose()

	cpuPool, err := particles.NewPool(cfg,
		particles.WithExecutor(particles.ExecutorCPU), particles.WithSeed(7))
	if err != nil {
		t.Fatalf("NewPool(cpu): %v", err)
	}
	defer cpuPool.Dispose()

	// Mid-run curve patch: the size curve flips from fade-out to fade-in
	// without changing the curve mask, so the device-side table must be
	// re-uploaded for the executors to stay in agreement.
	patched := equivalenceConfig()
	patched.Curves.Size.Points = []particles.CurvePoint{{X: 0, Y: 0}, {X: 1, Y: 1}}

	drive := func(p *particles.Pool) {
		p.Spawn(0, 1, 0, 48, nil)
		for i := 0; i < 30; i++ {
			if err := p.Update(1.0 / 60); err != nil {
				t.Fatalf("Update: %v", err)
			}
		}
		p.Patch(patched)
		for i := 0; i < 30; i++ {
			if err := p.Update(1.0 / 60); err != nil {
				t.Fatalf("Update: %v", err)
			}
		}
		if err := p.Sync(); err != nil {
			t.Fatalf("Sync: %v", err)
		}
	}
	drive(gpuPool)
	drive(cpuPool)

	g, c := gpuPool.Storage(), cpuPool.Storage()
	buffers := []struct {
		name     string
		gpu, cpu []float32
	}{
		{"position", g.Position, c.Position},
		{"velocity", g.Velocity, c.Velocity},
		{"life", g.Life, c.Life},
		{"size", g.Size, c.Size},
	}
	const tol = 1e-3
	for _, b := range buffers {
		if len(b.gpu) != len(b.cpu) {
			t.Fatalf("%s length mismatch: %d != %d", b.name, len(b.gpu), len(b.cpu))
		}
		for i := range b.gpu {
			d := b.gpu[i] - b.cpu[i]
			if d < -tol || d > tol {
				t.Errorf("%s[%d]: gpu=%v cpu=%v", b.name, i, b.gpu[i], b.cpu[i])
			}
		}
	}
}
