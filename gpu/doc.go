//go:build !nogpu

// Package gpu registers the wgpu compute executor for data-parallel particle
// simulation.
//
// Import this package to let pools run spawn/update as GPU compute kernels.
// Registration happens from init(); if no Vulkan adapter is available the
// executor's Init fails and pool construction silently falls through to the
// scalar CPU executor.
//
// Usage:
//
//	import _ "github.com/gogpu/particles/gpu" // enable GPU execution
package gpu

import (
	"github.com/gogpu/particles"
)

func init() {
	particles.RegisterExecutor(particles.ExecutorGPU, func() particles.Executor {
		return &Executor{}
	})
}
