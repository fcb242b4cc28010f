//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"

	"github.com/gogpu/particles"
)

// submitTimeout bounds every wait on a queue submission.
const submitTimeout = 5 * time.Second

// Executor runs spawn/update as wgpu compute kernels over device-resident
// copies of the pool's struct-of-arrays buffers.
//
// Spawn is fire-and-forget: the parameter block is snapshotted into a fresh
// uniform buffer at issue time and the dispatch is submitted without waiting
// for completion. Update submits on the same queue and waits on its
// submission index, which also retires every earlier spawn dispatch
// (single-queue submission order is the host-side guarantee the engine
// documents). Sync reads the device buffers back into the CPU-side Storage
// for callers that need them.
type Executor struct {
	mu sync.Mutex

	storage *particles.Storage
	params  *particles.Params

	instance       hal.Instance
	device         hal.Device
	queue          hal.Queue
	externalDevice bool // true when using a shared device (don't destroy on Close)

	spawnShader    hal.ShaderModule
	updateShader   hal.ShaderModule
	bindLayout     hal.BindGroupLayout
	pipeLayout     hal.PipelineLayout
	spawnPipeline  hal.ComputePipeline
	updatePipeline hal.ComputePipeline

	// Device-resident pool buffers, bound in this order after the uniform
	// (0) and curve table (1).
	bufPosition   hal.Buffer
	bufVelocity   hal.Buffer
	bufLife       hal.Buffer
	bufFade       hal.Buffer
	bufSize       hal.Buffer
	bufRotation   hal.Buffer
	bufColorStart hal.Buffer
	bufColorEnd   hal.Buffer
	bufCurve      hal.Buffer
	staging       hal.Buffer
	stagingSize   uint64

	// curves is the table currently resident in bufCurve. A patch that
	// rebakes curves swaps the Params.Curves pointer without flipping any
	// feature flag, so the executor has to notice the swap itself.
	curves *particles.CurveTable

	// pending holds per-spawn uniform resources until their dispatches
	// retire. Freed after the next submission wait; never freed eagerly so
	// an in-flight kernel cannot read a destroyed buffer.
	pending []pendingDispatch

	// lastSubmission is the index of the most recent queue submission.
	lastSubmission uint64

	initialized bool
}

// pendingDispatch is one fire-and-forget spawn awaiting retirement.
type pendingDispatch struct {
	uniform    hal.Buffer
	bind       hal.BindGroup
	submission uint64
}

var _ particles.Executor = (*Executor)(nil)

// Name returns the executor identifier.
func (e *Executor) Name() string { return particles.ExecutorGPU }

// Init acquires a GPU device (unless one was shared via SetDeviceProvider),
// builds the spawn/update pipelines and uploads the pool's initial buffer
// contents. A missing adapter is reported as an error so the pool can fall
// through to the CPU executor.
func (e *Executor) Init(s *particles.Storage, p *particles.Params) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.storage = s
	e.params = p

	if e.device == nil {
		if dev, q, ok := sharedDevice(); ok {
			e.device = dev
			e.queue = q
			e.externalDevice = true
		} else if err := e.initDevice(); err != nil {
			return err
		}
	}
	if err := e.createPipelines(); err != nil {
		e.releaseDevice()
		return fmt.Errorf("particles/gpu: create pipelines: %w", err)
	}
	if err := e.createBuffers(); err != nil {
		e.destroyPipelines()
		e.releaseDevice()
		return fmt.Errorf("particles/gpu: create buffers: %w", err)
	}
	if err := e.uploadAll(); err != nil {
		e.destroyBuffers()
		e.destroyPipelines()
		e.releaseDevice()
		return fmt.Errorf("particles/gpu: upload buffers: %w", err)
	}
	e.initialized = true
	particles.Logger().Info("GPU executor initialized", "capacity", s.Capacity)
	return nil
}

// initDevice opens the first discrete or integrated Vulkan adapter.
func (e *Executor) initDevice() error {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return fmt.Errorf("%w: vulkan backend not registered", ErrNoAdapter)
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("particles/gpu: create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return ErrNoAdapter
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return fmt.Errorf("particles/gpu: open device: %w", err)
	}
	e.instance = instance
	e.device = openDev.Device
	e.queue = openDev.Queue
	particles.Logger().Debug("GPU adapter selected", "name", selected.Info.Name)
	return nil
}

func (e *Executor) createPipelines() error {
	spawnShader, err := compileShader(e.device, "particle_spawn", spawnShaderSource)
	if err != nil {
		return err
	}
	e.spawnShader = spawnShader

	updateShader, err := compileShader(e.device, "particle_update", updateShaderSource)
	if err != nil {
		return err
	}
	e.updateShader = updateShader

	storageEntry := func(binding uint32) gputypes.BindGroupLayoutEntry {
		return gputypes.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: gputypes.ShaderStageCompute,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage},
		}
	}
	bindLayout, err := e.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "particle_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
			{Binding: 1, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
			storageEntry(2), storageEntry(3), storageEntry(4), storageEntry(5),
			storageEntry(6), storageEntry(7), storageEntry(8), storageEntry(9),
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group layout: %w", err)
	}
	e.bindLayout = bindLayout

	pipeLayout, err := e.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: "particle_pipe_layout", BindGroupLayouts: []hal.BindGroupLayout{e.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	e.pipeLayout = pipeLayout

	spawnPipeline, err := e.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label: "particle_spawn_pipeline", Layout: e.pipeLayout,
		Compute: hal.ComputeState{Module: e.spawnShader, EntryPoint: "main"},
	})
	if err != nil {
		return fmt.Errorf("create spawn pipeline: %w", err)
	}
	e.spawnPipeline = spawnPipeline

	updatePipeline, err := e.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label: "particle_update_pipeline", Layout: e.pipeLayout,
		Compute: hal.ComputeState{Module: e.updateShader, EntryPoint: "main"},
	})
	if err != nil {
		return fmt.Errorf("create update pipeline: %w", err)
	}
	e.updatePipeline = updatePipeline
	return nil
}

func (e *Executor) createBuffers() error {
	cap := uint64(e.storage.Capacity)
	vecBytes := cap * 3 * 4
	scalarBytes := cap * 4
	curveBytes := uint64(particles.CurveResolution * particles.CurveChannels * 4)

	// MapWrite keeps the pool buffers host-visible: HAL-level WriteBuffer
	// writes through the persistent mapping and has no staging belt.
	create := func(label string, size uint64) (hal.Buffer, error) {
		return e.device.CreateBuffer(&hal.BufferDescriptor{
			Label: label, Size: size,
			Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc | gputypes.BufferUsageMapWrite,
		})
	}

	var err error
	if e.bufPosition, err = create("particle_position", vecBytes); err != nil {
		return err
	}
	if e.bufVelocity, err = create("particle_velocity", vecBytes); err != nil {
		return err
	}
	if e.bufLife, err = create("particle_life", scalarBytes); err != nil {
		return err
	}
	if e.bufFade, err = create("particle_fade", scalarBytes); err != nil {
		return err
	}
	if e.bufSize, err = create("particle_size", scalarBytes); err != nil {
		return err
	}
	// Optional buffers are allocated unconditionally so the bind group
	// layout stays fixed; kernels skip them when the feature flags are off.
	if e.bufRotation, err = create("particle_rotation", vecBytes); err != nil {
		return err
	}
	if e.bufColorStart, err = create("particle_color_start", vecBytes); err != nil {
		return err
	}
	if e.bufColorEnd, err = create("particle_color_end", vecBytes); err != nil {
		return err
	}
	e.bufCurve, err = e.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "particle_curve", Size: curveBytes,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageMapWrite,
	})
	if err != nil {
		return err
	}

	e.stagingSize = vecBytes*5 + scalarBytes*3
	e.staging, err = e.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "particle_staging", Size: e.stagingSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	return err
}

// uploadAll pushes the CPU-side buffers and the curve table to the device.
func (e *Executor) uploadAll() error {
	s := e.storage
	writes := []struct {
		buf  hal.Buffer
		data []float32
	}{
		{e.bufPosition, s.Position},
		{e.bufVelocity, s.Velocity},
		{e.bufLife, s.Life},
		{e.bufFade, s.FadeRate},
		{e.bufSize, s.Size},
		{e.bufRotation, s.Rotation},
		{e.bufColorStart, s.ColorStart},
		{e.bufColorEnd, s.ColorEnd},
	}
	for _, w := range writes {
		if w.data == nil {
			continue
		}
		if err := e.queue.WriteBuffer(w.buf, 0, floatBytes(w.data)); err != nil {
			return err
		}
	}
	if c := e.params.Curves; c != nil {
		if err := e.queue.WriteBuffer(e.bufCurve, 0, floatBytes(c.Data[:])); err != nil {
			return err
		}
		e.curves = c
	}
	return nil
}

// ensureCurves re-uploads the curve table after a patch swapped it. Curve
// rebakes never flip a feature flag, so no executor rebuild happens and the
// device copy would silently go stale without this check.
func (e *Executor) ensureCurves() error {
	c := e.params.Curves
	if c == e.curves {
		return nil
	}
	if c != nil {
		if err := e.queue.WriteBuffer(e.bufCurve, 0, floatBytes(c.Data[:])); err != nil {
			return fmt.Errorf("particles/gpu: upload curve table: %w", err)
		}
	}
	e.curves = c
	return nil
}

// Spawn snapshots the parameter block into a fresh uniform buffer and
// submits the spawn kernel without waiting. The kernel runs over the whole
// pool and range-tests each index against the (possibly wrapping) batch.
func (e *Executor) Spawn(r particles.SpawnRange) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialized {
		return ErrNotInitialized
	}
	if err := e.ensureCurves(); err != nil {
		return err
	}

	uniform, bind, err := e.createDispatchBindings("particle_spawn_params")
	if err != nil {
		return err
	}
	idx, err := e.submitPass(e.spawnPipeline, bind, "particle_spawn_pass")
	if err != nil {
		e.device.DestroyBindGroup(bind)
		e.device.DestroyBuffer(uniform)
		return err
	}
	e.pending = append(e.pending, pendingDispatch{uniform: uniform, bind: bind, submission: idx})
	particles.Logger().Debug("spawn dispatched", "start", r.Start, "count", r.Count)
	return nil
}

// Update submits the update kernel and waits for its submission to
// complete, which also retires all earlier spawn dispatches on the same
// queue.
func (e *Executor) Update() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialized {
		return ErrNotInitialized
	}
	if err := e.ensureCurves(); err != nil {
		return err
	}

	uniform, bind, err := e.createDispatchBindings("particle_update_params")
	if err != nil {
		return err
	}
	defer e.device.DestroyBindGroup(bind)
	defer e.device.DestroyBuffer(uniform)

	idx, err := e.submitPass(e.updatePipeline, bind, "particle_update_pass")
	if err != nil {
		return err
	}
	if err := e.waitSubmission(idx); err != nil {
		return err
	}
	e.freePending()
	return nil
}

// Sync copies the device buffers into the staging buffer and reads them
// back into the CPU-side Storage.
func (e *Executor) Sync() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialized {
		return ErrNotInitialized
	}

	s := e.storage
	vecBytes := uint64(s.Capacity) * 3 * 4
	scalarBytes := uint64(s.Capacity) * 4

	encoder, err := e.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "particle_sync_encoder"})
	if err != nil {
		return fmt.Errorf("particles/gpu: create sync encoder: %w", err)
	}
	if err := encoder.BeginEncoding("particle_sync"); err != nil {
		return fmt.Errorf("particles/gpu: begin sync encoding: %w", err)
	}
	var off uint64
	copyOut := func(src hal.Buffer, size uint64) {
		encoder.CopyBufferToBuffer(src, e.staging, []hal.BufferCopy{
			{SrcOffset: 0, DstOffset: off, Size: size},
		})
		off += size
	}
	copyOut(e.bufPosition, vecBytes)
	copyOut(e.bufVelocity, vecBytes)
	copyOut(e.bufLife, scalarBytes)
	copyOut(e.bufFade, scalarBytes)
	copyOut(e.bufSize, scalarBytes)
	copyOut(e.bufRotation, vecBytes)
	copyOut(e.bufColorStart, vecBytes)
	copyOut(e.bufColorEnd, vecBytes)

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("particles/gpu: end sync encoding: %w", err)
	}
	defer e.device.FreeCommandBuffer(cmdBuf)

	idx, err := e.queue.Submit([]hal.CommandBuffer{cmdBuf})
	if err != nil {
		return fmt.Errorf("particles/gpu: submit sync: %w", err)
	}
	e.lastSubmission = idx
	if err := e.waitSubmission(idx); err != nil {
		return err
	}

	// The GPU is idle past the copy, so mapping the staging buffer is safe.
	mapping, err := e.device.MapBuffer(e.staging, 0, e.stagingSize)
	if err != nil {
		return fmt.Errorf("particles/gpu: map staging: %w", err)
	}
	readback := make([]byte, e.stagingSize)
	copy(readback, unsafe.Slice((*byte)(mapping.Ptr), e.stagingSize))
	if err := e.device.UnmapBuffer(e.staging); err != nil {
		return fmt.Errorf("particles/gpu: unmap staging: %w", err)
	}

	off = 0
	scatter := func(dst []float32, size uint64) {
		if dst != nil {
			bytesToFloats(readback[off:off+size], dst)
		}
		off += size
	}
	scatter(s.Position, vecBytes)
	scatter(s.Velocity, vecBytes)
	scatter(s.Life, scalarBytes)
	scatter(s.FadeRate, scalarBytes)
	scatter(s.Size, scalarBytes)
	scatter(s.Rotation, vecBytes)
	scatter(s.ColorStart, vecBytes)
	scatter(s.ColorEnd, vecBytes)
	e.freePending()
	return nil
}

// Close waits for every in-flight dispatch to retire, then releases all GPU
// resources. The deferred wait is what makes pool reconstruction safe: the
// old buffers are never destroyed under a running kernel.
func (e *Executor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.device == nil {
		return
	}
	// Best effort: a lost device reports a timeout; resources are destroyed
	// either way since the kernel cannot still be running.
	_ = e.waitSubmission(e.lastSubmission)
	if !e.externalDevice {
		_ = e.device.WaitIdle()
	}
	e.freePending()
	e.destroyBuffers()
	e.destroyPipelines()
	e.releaseDevice()
	e.initialized = false
}

// createDispatchBindings snapshots the parameter store into a fresh uniform
// buffer and builds the bind group for one dispatch. Per-dispatch uniforms
// are what make fire-and-forget spawns safe: a later spawn's overrides
// cannot be seen by an earlier dispatch still in the queue.
func (e *Executor) createDispatchBindings(label string) (hal.Buffer, hal.BindGroup, error) {
	var block [particles.UniformWords]float32
	e.params.EncodeUniform(&block)
	blockBytes := floatBytes(block[:])

	uniform, err := e.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label, Size: uint64(len(blockBytes)),
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageMapWrite,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("particles/gpu: create uniform: %w", err)
	}
	if err := e.queue.WriteBuffer(uniform, 0, blockBytes); err != nil {
		e.device.DestroyBuffer(uniform)
		return nil, nil, fmt.Errorf("particles/gpu: write uniform: %w", err)
	}

	cap := uint64(e.storage.Capacity)
	vecBytes := cap * 3 * 4
	scalarBytes := cap * 4
	curveBytes := uint64(particles.CurveResolution * particles.CurveChannels * 4)
	bufferEntry := func(binding uint32, buf hal.Buffer, size uint64) gputypes.BindGroupEntry {
		return gputypes.BindGroupEntry{
			Binding:  binding,
			Resource: gputypes.BufferBinding{Buffer: buf.NativeHandle(), Offset: 0, Size: size},
		}
	}
	bind, err := e.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label: "particle_bind", Layout: e.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			bufferEntry(0, uniform, uint64(len(blockBytes))),
			bufferEntry(1, e.bufCurve, curveBytes),
			bufferEntry(2, e.bufPosition, vecBytes),
			bufferEntry(3, e.bufVelocity, vecBytes),
			bufferEntry(4, e.bufLife, scalarBytes),
			bufferEntry(5, e.bufFade, scalarBytes),
			bufferEntry(6, e.bufSize, scalarBytes),
			bufferEntry(7, e.bufRotation, vecBytes),
			bufferEntry(8, e.bufColorStart, vecBytes),
			bufferEntry(9, e.bufColorEnd, vecBytes),
		},
	})
	if err != nil {
		e.device.DestroyBuffer(uniform)
		return nil, nil, fmt.Errorf("particles/gpu: create bind group: %w", err)
	}
	return uniform, bind, nil
}

// submitPass encodes one compute pass over the whole pool and submits it,
// returning the submission index.
func (e *Executor) submitPass(pipeline hal.ComputePipeline, bind hal.BindGroup, label string) (uint64, error) {
	encoder, err := e.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return 0, fmt.Errorf("particles/gpu: create encoder: %w", err)
	}
	if err := encoder.BeginEncoding(label); err != nil {
		return 0, fmt.Errorf("particles/gpu: begin encoding: %w", err)
	}
	pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: label})
	pass.SetPipeline(pipeline)
	pass.SetBindGroup(0, bind, nil)
	groups := (uint32(e.storage.Capacity) + workgroupSize - 1) / workgroupSize
	pass.Dispatch(groups, 1, 1)
	pass.End()

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return 0, fmt.Errorf("particles/gpu: end encoding: %w", err)
	}
	defer e.device.FreeCommandBuffer(cmdBuf)

	idx, err := e.queue.Submit([]hal.CommandBuffer{cmdBuf})
	if err != nil {
		return 0, fmt.Errorf("particles/gpu: submit: %w", err)
	}
	e.lastSubmission = idx
	return idx, nil
}

// waitSubmission blocks until the queue reports the given submission index
// complete. The HAL manages its own internal fences; completion is exposed
// only through polling.
func (e *Executor) waitSubmission(idx uint64) error {
	if idx == 0 {
		return nil
	}
	deadline := time.Now().Add(submitTimeout)
	for e.queue.PollCompleted() < idx {
		if time.Now().After(deadline) {
			return fmt.Errorf("particles/gpu: submission %d not complete after %v", idx, submitTimeout)
		}
		time.Sleep(50 * time.Microsecond)
	}
	return nil
}

// freePending destroys retired per-spawn dispatch resources.
func (e *Executor) freePending() {
	for _, p := range e.pending {
		e.device.DestroyBindGroup(p.bind)
		e.device.DestroyBuffer(p.uniform)
	}
	e.pending = e.pending[:0]
}

func (e *Executor) destroyBuffers() {
	for _, b := range []hal.Buffer{
		e.bufPosition, e.bufVelocity, e.bufLife, e.bufFade, e.bufSize,
		e.bufRotation, e.bufColorStart, e.bufColorEnd, e.bufCurve, e.staging,
	} {
		if b != nil {
			e.device.DestroyBuffer(b)
		}
	}
	e.bufPosition, e.bufVelocity, e.bufLife, e.bufFade, e.bufSize = nil, nil, nil, nil, nil
	e.bufRotation, e.bufColorStart, e.bufColorEnd, e.bufCurve, e.staging = nil, nil, nil, nil, nil
	e.curves = nil
}

func (e *Executor) destroyPipelines() {
	if e.device == nil {
		return
	}
	if e.spawnPipeline != nil {
		e.device.DestroyComputePipeline(e.spawnPipeline)
		e.spawnPipeline = nil
	}
	if e.updatePipeline != nil {
		e.device.DestroyComputePipeline(e.updatePipeline)
		e.updatePipeline = nil
	}
	if e.pipeLayout != nil {
		e.device.DestroyPipelineLayout(e.pipeLayout)
		e.pipeLayout = nil
	}
	if e.bindLayout != nil {
		e.device.DestroyBindGroupLayout(e.bindLayout)
		e.bindLayout = nil
	}
	if e.spawnShader != nil {
		e.device.DestroyShaderModule(e.spawnShader)
		e.spawnShader = nil
	}
	if e.updateShader != nil {
		e.device.DestroyShaderModule(e.updateShader)
		e.updateShader = nil
	}
}

func (e *Executor) releaseDevice() {
	if e.externalDevice {
		// Shared resources are owned by the provider.
		e.device = nil
		e.queue = nil
		return
	}
	if e.device != nil {
		e.device.Destroy()
		e.device = nil
	}
	if e.instance != nil {
		e.instance.Destroy()
		e.instance = nil
	}
	e.queue = nil
}

// floatBytes views a float32 slice as little-endian bytes for upload.
func floatBytes(src []float32) []byte {
	out := make([]byte, len(src)*4)
	for i, v := range src {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}

// bytesToFloats decodes little-endian bytes into a float32 slice.
func bytesToFloats(src []byte, dst []float32) {
	for i := range dst {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(src[i*4:]))
	}
}
