//go:build !nogpu

package gpu

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

// Embedded WGSL kernel sources. The arithmetic mirrors the scalar reference
// in the root package; the PCG hash, attribute salts and uniform offsets
// must stay in sync with hash.go and params.go.

//go:embed shaders/spawn.wgsl
var spawnShaderSource string

//go:embed shaders/update.wgsl
var updateShaderSource string

// workgroupSize is the dispatch granularity of both kernels. Must match the
// @workgroup_size attribute in the WGSL sources.
const workgroupSize = 64

// compileShader compiles WGSL to SPIR-V via naga and creates a HAL shader
// module from it.
func compileShader(device hal.Device, label, wgslSource string) (hal.ShaderModule, error) {
	spirvBytes, err := naga.Compile(wgslSource)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", label, err)
	}
	// SPIR-V is little-endian 32-bit words.
	spirvCode := make([]uint32, len(spirvBytes)/4)
	for i := range spirvCode {
		spirvCode[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label,
		Source: hal.ShaderSource{SPIRV: spirvCode},
	})
}
