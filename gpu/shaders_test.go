//go:build !nogpu

package gpu

import (
	"strings"
	"testing"

	"github.com/gogpu/particles"
)

func TestShaderSourcesEmbedded(t *testing.T) {
	for name, src := range map[string]string{
		"spawn":  spawnShaderSource,
		"update": updateShaderSource,
	} {
		if src == "" {
			t.Fatalf("%s shader source is empty", name)
		}
		if !strings.Contains(src, "@compute") {
			t.Errorf("%s shader missing @compute entry point", name)
		}
		if !strings.Contains(src, "@workgroup_size(64)") {
			t.Errorf("%s shader workgroup size does not match dispatch granularity", name)
		}
		if !strings.Contains(src, "fn main(") {
			t.Errorf("%s shader missing main entry point", name)
		}
	}
}

func TestShaderHashConstants(t *testing.T) {
	// The kernels must use the exact PCG constants of the host reference so
	// spawns are bit-identical across executors.
	for _, want := range []string{"747796405u", "2891336453u", "277803737u", "0x9E3779B9u"} {
		if !strings.Contains(spawnShaderSource, want) {
			t.Errorf("spawn shader missing hash constant %s", want)
		}
		if !strings.Contains(updateShaderSource, want) {
			t.Errorf("update shader missing hash constant %s", want)
		}
	}
	if !strings.Contains(updateShaderSource, "2654435761u") {
		t.Error("update shader missing rotation seed multiplier")
	}
}

func TestShaderBindingsCoverPoolBuffers(t *testing.T) {
	// Bindings 0..9: uniform, curve table, then the eight pool buffers.
	for i := 0; i <= 9; i++ {
		want := "@binding(" + string(rune('0'+i)) + ")"
		if !strings.Contains(spawnShaderSource, want) {
			t.Errorf("spawn shader missing %s", want)
		}
		if !strings.Contains(updateShaderSource, want) {
			t.Errorf("update shader missing %s", want)
		}
	}
}

func TestExecutorRegistered(t *testing.T) {
	found := false
	for _, name := range particles.AvailableExecutors() {
		if name == particles.ExecutorGPU {
			found = true
		}
	}
	if !found {
		t.Fatal("gpu executor not registered by package init")
	}
}

func TestExecutorName(t *testing.T) {
	e := &Executor{}
	if e.Name() != particles.ExecutorGPU {
		t.Errorf("Name = %q", e.Name())
	}
}

func TestExecutorNotInitialized(t *testing.T) {
	e := &Executor{}
	if err := e.Spawn(particles.SpawnRange{Count: 1}); err != ErrNotInitialized {
		t.Errorf("Spawn = %v, want ErrNotInitialized", err)
	}
	if err := e.Update(); err != ErrNotInitialized {
		t.Errorf("Update = %v, want ErrNotInitialized", err)
	}
	if err := e.Sync(); err != ErrNotInitialized {
		t.Errorf("Sync = %v, want ErrNotInitialized", err)
	}
	// Close before Init is a no-op.
	e.Close()
}

func TestPoolFallsBackWithoutAdapter(t *testing.T) {
	// With the gpu package imported, pool construction walks gpu first and
	// must land on a working executor either way.
	p, err := particles.NewPool(particles.Config{MaxParticles: 8}, particles.WithSeed(1))
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	defer p.Dispose()
	name := p.ExecutorName()
	if name != particles.ExecutorGPU && name != particles.ExecutorCPU {
		t.Errorf("executor = %q", name)
	}
	p.Spawn(0, 0, 0, 4, nil)
	if err := p.Update(0.016); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := p.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}
}

func TestDeviceProviderRejectsPlainValues(t *testing.T) {
	if err := SetDeviceProvider(nil); err == nil {
		t.Error("nil provider accepted")
	}
	ClearDeviceProvider()
}
