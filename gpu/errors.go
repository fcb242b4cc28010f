//go:build !nogpu

package gpu

import "errors"

// Executor errors.
var (
	// ErrNoAdapter is returned when no usable GPU adapter is found.
	ErrNoAdapter = errors.New("particles/gpu: no GPU adapter available")

	// ErrNotInitialized is returned when dispatching before Init.
	ErrNotInitialized = errors.New("particles/gpu: executor not initialized")

	// ErrDeviceProvider is returned when a shared device provider does not
	// expose the expected HAL types.
	ErrDeviceProvider = errors.New("particles/gpu: provider does not expose HAL device and queue")
)
