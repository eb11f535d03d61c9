//go:build !nogpu

package gpu

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/wgpu/hal"
)

//go:embed shaders/composite.wgsl
var compositeShaderSource string

//go:embed shaders/sprite.wgsl
var spriteShaderSource string

//go:embed shaders/overlay.wgsl
var overlayShaderSource string

// createShader compiles a WGSL source into a shader module.
func createShader(device hal.Device, label, source string) (hal.ShaderModule, error) {
	if source == "" {
		return nil, fmt.Errorf("%s shader source is empty", label)
	}
	shader, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label + "_shader",
		Source: hal.ShaderSource{WGSL: source},
	})
	if err != nil {
		return nil, fmt.Errorf("compile %s shader: %w", label, err)
	}
	return shader, nil
}
