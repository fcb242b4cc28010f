// Package particles implements a real-time particle simulation engine for
// 3D scenes.
//
// A Pool owns a fixed-capacity set of particle slots stored as
// struct-of-arrays buffers. Spawning fills a wrapping index range with
// randomized attributes drawn from one of six emission shapes; Update
// advances every live particle one frame (gravity, friction or velocity
// curve, curl-noise turbulence, attractors, plane collision, rotation,
// lifetime decay). Dead particles are parked at a sentinel position far
// below the scene and recycled by the ring-buffer cursor.
//
// The same spawn/update semantics are realized by two executors: a scalar
// CPU loop (always available) and a data-parallel GPU path built on
// gogpu/wgpu compute kernels. Both share a single pseudo-random hash so
// behavior is executor-independent. The GPU executor lives in the gpu
// subpackage and registers itself behind a blank import:
//
//	import _ "github.com/gogpu/particles/gpu" // enable GPU execution
//
// Basic usage:
//
//	pool, err := particles.NewPool(particles.Config{
//		MaxParticles: 4096,
//		Speed:        particles.RangeOf(1, 3),
//		Lifetime:     particles.RangeOf(0.5, 2),
//	})
//	if err != nil { ... }
//	defer pool.Dispose()
//
//	// per frame:
//	pool.Spawn(0, 0, 0, 64, nil)
//	pool.Update(dt)
//
// Rendering is out of scope: the position/size/color buffers exposed by
// Pool.Storage are consumed by an external renderer.
package particles
