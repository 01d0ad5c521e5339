package vkframegraph

import (
	vk "github.com/vulkan-go/vulkan"

	"github.com/andewx/vkframegraph/vksync"
)

// DependencyKind classifies how a task relates to a texture resource.
// A task's dependency list can combine Read and Write on the same
// resource (a read/write dependency keeps its contents across the
// transition); Create always implies Write.
type DependencyKind uint8

const (
	DependencyRead DependencyKind = 1 << iota
	DependencyWrite
	DependencyCreate
)

func (k DependencyKind) has(bit DependencyKind) bool { return k&bit != 0 }

// Dependency is one edge in the task graph: task uses handle at
// access, in the way kind describes.
type Dependency struct {
	Kind   DependencyKind
	Handle TransientHandle
	Access vksync.AccessType
}

// RecordContext is handed to a task's record callback once the
// recorder has emitted that task's barriers. It carries everything a
// render task body needs from the ambient vkctx layer: the command
// buffer to record into, and access to the resources the task
// declared.
type RecordContext struct {
	CommandBuffer vk.CommandBuffer
	Resources     *TextureManager
	Task          *TaskInfo
}

// TaskInfo is the finalized declaration of one render (or compute)
// task: its name, its dependency list, and the record callback its
// declare phase returned. executionPriority
// is set by the resolver; -1 means "not reached, dead-code eliminated".
type TaskInfo struct {
	Name              string
	Dependencies      []Dependency
	Record            func(RecordContext) error
	executionPriority int32
}

// TaskBuilder accumulates the dependency list for one task before its
// declaration is finalized by Build. A coroutine-driven task builder
// collects the same read/create/write dependencies by suspending
// mid-function; since Go has no equivalent to a bare coroutine
// handoff, the builder simply collects dependencies synchronously and
// the task body is supplied as a plain closure up front.
type TaskBuilder struct {
	name         string
	textures     *TextureManager
	dependencies []Dependency
}

func newTaskBuilder(name string, textures *TextureManager) *TaskBuilder {
	return &TaskBuilder{name: name, textures: textures}
}

// Read declares that the task reads handle at access. A pure read
// (not also written) makes the task an input-only consumer for
// resolver purposes: reading it does not extend the resource's
// lifetime past the reading task's own execution priority.
func (b *TaskBuilder) Read(handle TransientHandle, access vksync.AccessType) TransientHandle {
	b.dependencies = append(b.dependencies, Dependency{Kind: DependencyRead, Handle: handle, Access: access})
	return handle
}

// Write declares that the task writes handle at access, advancing it
// to a new TransientHandle version downstream tasks must use to
// observe the write.
func (b *TaskBuilder) Write(handle TransientHandle, access vksync.AccessType) TransientHandle {
	next := b.textures.Bump(handle)
	b.dependencies = append(b.dependencies, Dependency{Kind: DependencyWrite, Handle: next, Access: access})
	return next
}

// Create declares a brand-new transient texture the task produces,
// returning the version-0 handle downstream tasks read or write.
func (b *TaskBuilder) Create(info TextureInfo, access vksync.AccessType) TransientHandle {
	handle := b.textures.CreateTexture(info)
	b.dependencies = append(b.dependencies, Dependency{Kind: DependencyCreate | DependencyWrite, Handle: handle, Access: access})
	return handle
}

// Build finalizes the task's dependency list against record, the
// closure the recorder invokes once this task's barriers are emitted.
func (b *TaskBuilder) Build(record func(RecordContext) error) TaskInfo {
	return TaskInfo{
		Name:              b.name,
		Dependencies:      b.dependencies,
		Record:            record,
		executionPriority: -1,
	}
}

// Attachment describes one color, depth or stencil target a render
// pass declaration accumulates.
type Attachment struct {
	Handle     TransientHandle
	LoadOp     vk.AttachmentLoadOp
	StoreOp    vk.AttachmentStoreOp
	ClearValue vk.ClearValue
}

// RenderPassBuilder accumulates attachments for one task's render
// pass, building a fresh VkRenderPass/VkFramebuffer from them on
// Begin: a per-task declaration generalizing the same
// vk.CreateRenderPass/vk.CreateFramebuffer/vk.CmdBeginRenderPass
// sequence to an arbitrary attachment set instead of one baked-in
// color+depth pair.
type RenderPassBuilder struct {
	color   []Attachment
	depth   *Attachment
	extent  vk.Extent2D
}

// NewRenderPassBuilder starts a render pass declaration for a render
// target of the given extent.
func NewRenderPassBuilder(extent vk.Extent2D) *RenderPassBuilder {
	return &RenderPassBuilder{extent: extent}
}

// Attach adds a color attachment.
func (r *RenderPassBuilder) Attach(a Attachment) *RenderPassBuilder {
	r.color = append(r.color, a)
	return r
}

// AttachDepth sets the depth attachment.
func (r *RenderPassBuilder) AttachDepth(a Attachment) *RenderPassBuilder {
	r.depth = &a
	return r
}

// Recording is the live render pass/framebuffer pair Begin created;
// End must be called on it exactly once to free them.
type Recording struct {
	renderPass  vk.RenderPass
	framebuffer vk.Framebuffer
}

func attachmentFormat(resources *TextureManager, handle TransientHandle) (vk.Format, error) {
	info, err := resources.Info(handle)
	if err != nil {
		return vk.FormatUndefined, err
	}
	return info.Format.vkFormat(), nil
}

// Begin creates a render pass and framebuffer for the accumulated
// attachments and records vkCmdBeginRenderPass for it.
func (r *RenderPassBuilder) Begin(device vk.Device, cmd vk.CommandBuffer, resources *TextureManager) (*Recording, error) {
	var descs []vk.AttachmentDescription
	var colorRefs []vk.AttachmentReference
	var views []vk.ImageView
	var clears []vk.ClearValue

	for _, a := range r.color {
		format, err := attachmentFormat(resources, a.Handle)
		if err != nil {
			return nil, err
		}
		_, view, err := resources.Image(a.Handle)
		if err != nil {
			return nil, err
		}
		colorRefs = append(colorRefs, vk.AttachmentReference{Attachment: uint32(len(descs)), Layout: vk.ImageLayoutColorAttachmentOptimal})
		descs = append(descs, vk.AttachmentDescription{
			Format:        format,
			Samples:       vk.SampleCount1Bit,
			LoadOp:        a.LoadOp,
			StoreOp:       a.StoreOp,
			InitialLayout: vk.ImageLayoutUndefined,
			FinalLayout:   vk.ImageLayoutColorAttachmentOptimal,
		})
		views = append(views, view)
		clears = append(clears, a.ClearValue)
	}

	subpass := vk.SubpassDescription{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: uint32(len(colorRefs)),
		PColorAttachments:    colorRefs,
	}

	if r.depth != nil {
		format, err := attachmentFormat(resources, r.depth.Handle)
		if err != nil {
			return nil, err
		}
		_, view, err := resources.Image(r.depth.Handle)
		if err != nil {
			return nil, err
		}
		depthRef := vk.AttachmentReference{Attachment: uint32(len(descs)), Layout: vk.ImageLayoutDepthStencilAttachmentOptimal}
		descs = append(descs, vk.AttachmentDescription{
			Format:        format,
			Samples:       vk.SampleCount1Bit,
			LoadOp:        r.depth.LoadOp,
			StoreOp:       r.depth.StoreOp,
			InitialLayout: vk.ImageLayoutUndefined,
			FinalLayout:   vk.ImageLayoutDepthStencilAttachmentOptimal,
		})
		subpass.PDepthStencilAttachment = &depthRef
		views = append(views, view)
		clears = append(clears, r.depth.ClearValue)
	}

	var renderPass vk.RenderPass
	if ret := vk.CreateRenderPass(device, &vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(descs)),
		PAttachments:    descs,
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
	}, nil, &renderPass); ret != vk.Success {
		return nil, wrapErr(ErrVulkan, "renderPassBuilder", "vkCreateRenderPass failed", vkResultError(ret))
	}

	var framebuffer vk.Framebuffer
	if ret := vk.CreateFramebuffer(device, &vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      renderPass,
		AttachmentCount: uint32(len(views)),
		PAttachments:    views,
		Width:           r.extent.Width,
		Height:          r.extent.Height,
		Layers:          1,
	}, nil, &framebuffer); ret != vk.Success {
		vk.DestroyRenderPass(device, renderPass, nil)
		return nil, wrapErr(ErrVulkan, "renderPassBuilder", "vkCreateFramebuffer failed", vkResultError(ret))
	}

	vk.CmdBeginRenderPass(cmd, &vk.RenderPassBeginInfo{
		SType:           vk.StructureTypeRenderPassBeginInfo,
		RenderPass:      renderPass,
		Framebuffer:     framebuffer,
		RenderArea:      vk.Rect2D{Extent: r.extent},
		ClearValueCount: uint32(len(clears)),
		PClearValues:    clears,
	}, vk.SubpassContentsInline)

	return &Recording{renderPass: renderPass, framebuffer: framebuffer}, nil
}

// RenderPass returns the live VkRenderPass Begin created, for a task
// body that needs it to build or look up a matching graphics pipeline.
func (rec *Recording) RenderPass() vk.RenderPass { return rec.renderPass }

// End closes the render pass and destroys the transient render
// pass/framebuffer objects Begin created.
func (rec *Recording) End(device vk.Device, cmd vk.CommandBuffer) {
	vk.CmdEndRenderPass(cmd)
	vk.DestroyFramebuffer(device, rec.framebuffer, nil)
	vk.DestroyRenderPass(device, rec.renderPass, nil)
}
