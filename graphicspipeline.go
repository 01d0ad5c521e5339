package vkframegraph

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"

	"github.com/andewx/vkframegraph/internal/vkctx"
)

// GraphicsPipeline is a compiled pipeline plus the resources a task
// needs to bind it: the pipeline object itself, its layout, and the
// shader program it was built from. A task that draws geometry builds
// one of these once (outside the per-frame declare/record cycle) and
// reuses it across frames, binding it inside Record against whatever
// vk.RenderPass that frame's RenderPassBuilder produced.
type GraphicsPipeline struct {
	Pipeline vk.Pipeline
	Layout   vk.PipelineLayout
	program  *vkctx.ShaderProgram
}

// NewGraphicsPipeline loads the vertex/fragment shader modules at
// vertPath/fragPath, builds an empty pipeline layout, and compiles a
// graphics pipeline against renderPass. extent sets the pipeline's
// fixed viewport/scissor; a task that needs to rebuild against a
// resized render target calls this again.
func NewGraphicsPipeline(device vk.Device, name, vertPath, fragPath string, renderPass vk.RenderPass, extent vk.Extent2D) (*GraphicsPipeline, error) {
	shaders := vkctx.NewCoreShader(map[string]int{
		vertPath: vkctx.VERTEX,
		fragPath: vkctx.FRAG,
	}, 1)
	shaders.CreateProgram(name, device, []string{vertPath, fragPath})

	program := shaders.Program(name)
	if program == nil {
		return nil, wrapErr(ErrAllocationFailure, "graphicsPipeline", "failed to load shader program "+name, nil)
	}

	var layout vk.PipelineLayout
	if ret := vk.CreatePipelineLayout(device, &vk.PipelineLayoutCreateInfo{
		SType: vk.StructureTypePipelineLayoutCreateInfo,
	}, nil, &layout); ret != vk.Success {
		return nil, wrapErr(ErrVulkan, "graphicsPipeline", "vkCreatePipelineLayout failed", vkResultError(ret))
	}

	viewport := vk.Viewport{
		Width:    float32(extent.Width),
		Height:   float32(extent.Height),
		MaxDepth: 1,
	}

	builder := vkctx.NewPiplelineBuilder(program)
	pipeline := builder.BuildPipeline(device, renderPass, viewport, extent, &layout)
	if pipeline == nil {
		vk.DestroyPipelineLayout(device, layout, nil)
		return nil, wrapErr(ErrVulkan, "graphicsPipeline", "vkCreateGraphicsPipelines failed", nil)
	}

	return &GraphicsPipeline{Pipeline: *pipeline, Layout: layout, program: program}, nil
}

// Bind records vkCmdBindPipeline for gp against cmd.
func (gp *GraphicsPipeline) Bind(cmd vk.CommandBuffer) {
	vk.CmdBindPipeline(cmd, vk.PipelineBindPointGraphics, gp.Pipeline)
}

// Destroy releases the pipeline and its layout. Shader modules loaded
// by NewGraphicsPipeline are not tracked for individual destruction
// here: they are cheap, device-local objects the driver frees along
// with the rest of its VkDevice-owned state on vkDestroyDevice.
func (gp *GraphicsPipeline) Destroy(device vk.Device) {
	vk.DestroyPipeline(device, gp.Pipeline, nil)
	vk.DestroyPipelineLayout(device, gp.Layout, nil)
}

// UniformBuffer is a per-frame-indexed uniform buffer a task can bind
// alongside a GraphicsPipeline, wrapping vkctx's descriptor-set-layout
// plus buffer allocation under one name.
type UniformBuffer struct {
	core vkctx.CoreBuffer
}

// NewUniformBuffer allocates one VkBuffer per frame-in-flight, sized
// for byteSize, bound at binding in the stages given by stageFlags.
func NewUniformBuffer(device vk.Device, name string, binding uint32, stageFlags vk.ShaderStageFlags, byteSize, framesInFlight int) *UniformBuffer {
	core := vkctx.NewCoreUniformBuffer(device, name, binding, stageFlags, byteSize, framesInFlight)
	return &UniformBuffer{core: core}
}

// Map maps the frame-indexed buffer's memory for a CPU write.
func (u *UniformBuffer) Map(data *unsafe.Pointer, frameIndex int, device vk.Device) {
	u.core.MapMemory(data, frameIndex, device)
}
