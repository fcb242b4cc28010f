//go:build !nogpu

package gpu

import (
	"fmt"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu/hal"
)

// shared holds a device handed in by an embedding application. Executors
// created after SetDeviceProvider use it instead of opening their own
// adapter, so the particle kernels run on the same queue as the app's
// renderer.
var shared struct {
	mu     sync.Mutex
	device hal.Device
	queue  hal.Queue
}

// SetDeviceProvider configures future executors to use a shared GPU device
// instead of opening their own adapter.
//
// The provider is typically a gpucontext.DeviceProvider whose backend also
// implements HalDevice() any and HalQueue() any returning hal.Device and
// hal.Queue. Executors already initialized keep their own device; rebuild
// the pool to migrate.
func SetDeviceProvider(provider gpucontext.DeviceProvider) error {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return ErrDeviceProvider
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return fmt.Errorf("%w: HalDevice is not hal.Device", ErrDeviceProvider)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return fmt.Errorf("%w: HalQueue is not hal.Queue", ErrDeviceProvider)
	}

	shared.mu.Lock()
	defer shared.mu.Unlock()
	shared.device = device
	shared.queue = queue
	return nil
}

// ClearDeviceProvider makes future executors open their own adapter again.
func ClearDeviceProvider() {
	shared.mu.Lock()
	defer shared.mu.Unlock()
	shared.device = nil
	shared.queue = nil
}

// sharedDevice returns the provider-supplied device, if any.
func sharedDevice() (hal.Device, hal.Queue, bool) {
	shared.mu.Lock()
	defer shared.mu.Unlock()
	return shared.device, shared.queue, shared.device != nil
}
