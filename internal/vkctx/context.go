package vkctx

import (
	"errors"

	vk "github.com/vulkan-go/vulkan"
)

// Context is the live Vulkan bootstrap state a framegraph is built
// against: the device/queue/physical device triple, the swapchain
// images a frame's external inputs come from, and the handful of
// device-wide defaults (sampler, pipeline layout, descriptor pool)
// tasks reach for instead of each building their own.
type Context interface {
	// OnPlatformUpdate sould be called upon platform update, e.g. when swapchain has been recreated.
	OnPlatformUpdate(platform Platform) error
	// SetOnPrepare sets callback that will be invoked to initialize and prepare application's vulkan state
	// upon context re-init, e.g. when OnPlatformUpdate is called. onCreate could create textures and pipelines,
	// descriptor layouts and render passes.
	SetOnPrepare(onPrepare func(ctx Context) error)
	// SetOnCleanup sets callback that will be invoked to cleanup application's vulkan state
	// upon context re-init, e.g. when OnPlatformUpdate is called. onCreate could destroy textures and pipelines,
	// descriptor layouts and render passes.
	SetOnCleanup(onCleanup func(ctx Context) error)
	// Device gets the Vulkan device assigned to the context.
	Device() vk.Device
	// Queue gets the Vulkan graphics queue assigned to the context.
	Queue() vk.Queue
	// Platform gets the current platform.
	Platform() Platform
	// PhysicalDevice gets the physical device the platform selected
	// and the context's device was created against.
	PhysicalDevice() vk.PhysicalDevice
	// DescriptorSets lazily creates (on first call) and returns the
	// context-wide descriptor pool tasks allocate sets from.
	DescriptorSets() (*DescriptorSetManager, error)
	// DefaultSampler lazily creates a linear-filter, clamp-to-edge
	// sampler tasks can bind against a sampled-image input without
	// building their own.
	DefaultSampler() (vk.Sampler, error)
	// DefaultPipelineLayout lazily creates an empty pipeline layout
	// (no descriptor sets, no push constants) for tasks that bind no
	// resources and just need a valid vk.PipelineLayout to draw with.
	DefaultPipelineLayout() (vk.PipelineLayout, error)
	// SwapchainImageCount reports how many images the current
	// swapchain was created with.
	SwapchainImageCount() int
	// SwapchainImage returns the image and view for swapchain index i,
	// for registering as a framegraph external input.
	SwapchainImage(i int) (vk.Image, vk.ImageView, error)
	// SwapchainExtent and SwapchainFormat report the dimensions and
	// pixel format the current swapchain was created with, for
	// building the TextureInfo a SwapchainImage is registered under.
	SwapchainExtent() vk.Extent2D
	SwapchainFormat() vk.Format
}

type context struct {
	platform       Platform
	device         vk.Device
	physicalDevice vk.PhysicalDevice
	queue          vk.Queue
	onPrepare      func(ctx Context) error
	onCleanup      func(ctx Context) error
	onInvalidate   func(ctx Context, imageIdx int) error

	descSetMgr      *DescriptorSetManager
	defaultSampler  vk.Sampler
	defaultLayout   vk.PipelineLayout
	cmdPool         vk.CommandPool
	presentCmdPool  vk.CommandPool

	swapchain               vk.Swapchain
	swapchainDimensions     *SwapchainDimensions
	swapchainImageResources []*SwapchainImageResources

	textures       []*Texture
	stagingTexture *Texture
	depth          Depth

	cmd           vk.CommandBuffer
	pipelineCache vk.PipelineCache
	renderPass    vk.RenderPass
	pipeline      vk.Pipeline

	fences []vk.Fence

	imageAcquiredSemaphores  []vk.Semaphore
	drawCompleteSemaphores   []vk.Semaphore
	imageOwnershipSemaphores []vk.Semaphore

	separatePresentQueue bool
	currentBuffer        int
	frameLag             uint32
	// queue                vk.Queue
	// swapchainIndex       uint32
	// renderingThreadCount uint
	// perFrameCtxs         []*perFrameCtx
}

func (c *context) destroy() {
	c.platform = nil

	// Wait for fences from present operations
	for i := 0; i < len(c.fences); i++ {
		vk.WaitForFences(c.device, 1, []vk.Fence{c.fences[i]}, vk.True, vk.MaxUint64)
		vk.DestroyFence(c.device, c.fences[i], nil)
		vk.DestroySemaphore(c.device, c.imageAcquiredSemaphores[i], nil)
		vk.DestroySemaphore(c.device, c.drawCompleteSemaphores[i], nil)
		if c.separatePresentQueue {
			vk.DestroySemaphore(c.device, c.imageOwnershipSemaphores[i], nil)
		}
	}

	for i := 0; i < len(c.swapchainImageResources); i++ {
		vk.DestroyFramebuffer(c.device, c.swapchainImageResources[i].framebuffer, nil)
	}
	if c.descSetMgr != nil {
		c.descSetMgr.Destroy()
	}
	if c.defaultSampler != vk.Sampler(vk.NullHandle) {
		vk.DestroySampler(c.device, c.defaultSampler, nil)
	}
	if c.defaultLayout != vk.PipelineLayout(vk.NullHandle) {
		vk.DestroyPipelineLayout(c.device, c.defaultLayout, nil)
	}

	vk.DestroyPipeline(c.device, c.pipeline, nil)
	vk.DestroyPipelineCache(c.device, c.pipelineCache, nil)
	vk.DestroyRenderPass(c.device, c.renderPass, nil)

	for i := 0; i < len(c.textures); i++ {
		c.textures[i].Destroy(c.device)
	}
	c.depth.Destroy(c.device)

	for i := 0; i < len(c.swapchainImageResources); i++ {
		c.swapchainImageResources[i].Destroy(c.device, c.cmdPool)
	}
	c.swapchainImageResources = nil
	vk.DestroyCommandPool(c.device, c.cmdPool, nil)
	if c.separatePresentQueue {
		vk.DestroyCommandPool(c.device, c.presentCmdPool, nil)
	}
}

func (c *context) Device() vk.Device {
	return c.device
}

func (c *context) Queue() vk.Queue {
	return c.queue
}

func (c *context) Platform() Platform {
	return c.platform
}

func (c *context) PhysicalDevice() vk.PhysicalDevice {
	return c.physicalDevice
}

// DescriptorSets lazily allocates the context-wide descriptor pool on
// first call; every later call returns the same manager.
func (c *context) DescriptorSets() (*DescriptorSetManager, error) {
	if c.descSetMgr == nil {
		mgr, err := newDescriptorSetManager(c.device, defaultDescriptorPoolMaxSets)
		if err != nil {
			return nil, err
		}
		c.descSetMgr = mgr
	}
	return c.descSetMgr, nil
}

// DefaultSampler lazily creates a linear-filter, clamp-to-edge sampler
// shared by every task that just needs to read a texture without a
// custom filtering/wrap setup.
func (c *context) DefaultSampler() (vk.Sampler, error) {
	if c.defaultSampler != vk.Sampler(vk.NullHandle) {
		return c.defaultSampler, nil
	}
	var sampler vk.Sampler
	ret := vk.CreateSampler(c.device, &vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		MagFilter:               vk.FilterLinear,
		MinFilter:               vk.FilterLinear,
		MipmapMode:              vk.SamplerMipmapModeLinear,
		AddressModeU:            vk.SamplerAddressModeClampToEdge,
		AddressModeV:            vk.SamplerAddressModeClampToEdge,
		AddressModeW:            vk.SamplerAddressModeClampToEdge,
		MaxAnisotropy:           1,
		CompareOp:               vk.CompareOpNever,
		BorderColor:             vk.BorderColorFloatOpaqueWhite,
	}, nil, &sampler)
	if ret != vk.Success {
		return vk.Sampler(vk.NullHandle), NewError(ret)
	}
	c.defaultSampler = sampler
	return sampler, nil
}

// DefaultPipelineLayout lazily creates an empty pipeline layout for
// tasks that draw without binding any descriptor sets or push
// constants, mirroring the empty vk.PipelineLayoutCreateInfo
// GraphicsPipeline itself builds when it owns its own layout.
func (c *context) DefaultPipelineLayout() (vk.PipelineLayout, error) {
	if c.defaultLayout != vk.PipelineLayout(vk.NullHandle) {
		return c.defaultLayout, nil
	}
	var layout vk.PipelineLayout
	ret := vk.CreatePipelineLayout(c.device, &vk.PipelineLayoutCreateInfo{
		SType: vk.StructureTypePipelineLayoutCreateInfo,
	}, nil, &layout)
	if ret != vk.Success {
		return vk.PipelineLayout(vk.NullHandle), NewError(ret)
	}
	c.defaultLayout = layout
	return layout, nil
}

// SwapchainImageCount reports how many images prepareSwapchain most
// recently fetched via vkGetSwapchainImagesKHR.
func (c *context) SwapchainImageCount() int {
	return len(c.swapchainImageResources)
}

// SwapchainImage returns the image/view pair for swapchain index i, so
// a caller can register it as a framegraph external input at the
// access it was left in by the previous present.
func (c *context) SwapchainImage(i int) (vk.Image, vk.ImageView, error) {
	if i < 0 || i >= len(c.swapchainImageResources) {
		return vk.Image(vk.NullHandle), vk.ImageView(vk.NullHandle), errors.New("vkctx: swapchain image index out of range")
	}
	res := c.swapchainImageResources[i]
	return res.image, res.view, nil
}

func (c *context) SwapchainExtent() vk.Extent2D {
	if c.swapchainDimensions == nil {
		return vk.Extent2D{}
	}
	return vk.Extent2D{Width: c.swapchainDimensions.Width, Height: c.swapchainDimensions.Height}
}

func (c *context) SwapchainFormat() vk.Format {
	if c.swapchainDimensions == nil {
		return vk.FormatUndefined
	}
	return c.swapchainDimensions.Format
}

func (c *context) SetOnPrepare(onPrepare func(ctx Context) error) {
	c.onPrepare = onPrepare
}

func (c *context) SetOnCleanup(onCleanup func(ctx Context) error) {
	c.onCleanup = onCleanup
}

func (c *context) SetOnInvalidate(onInvalidate func(ctx Context, imageIdx int) error) {
	c.onInvalidate = onInvalidate
}

// preparePresent allocates the per-frame-in-flight fences and
// semaphores the present/acquire loop waits on, sized to frameLag
// slots so the CPU can stay that many frames ahead of the GPU.
func (c *context) preparePresent() {
	lag := c.frameLag
	if lag == 0 {
		lag = 1
	}
	c.fences = make([]vk.Fence, lag)
	c.imageAcquiredSemaphores = make([]vk.Semaphore, lag)
	c.drawCompleteSemaphores = make([]vk.Semaphore, lag)
	if c.separatePresentQueue {
		c.imageOwnershipSemaphores = make([]vk.Semaphore, lag)
	}
	for i := uint32(0); i < lag; i++ {
		orPanic(NewError(vk.CreateFence(c.device, &vk.FenceCreateInfo{
			SType: vk.StructureTypeFenceCreateInfo,
			Flags: vk.FenceCreateFlags(vk.FenceCreateSignaledBit),
		}, nil, &c.fences[i])))
		orPanic(NewError(vk.CreateSemaphore(c.device, &vk.SemaphoreCreateInfo{
			SType: vk.StructureTypeSemaphoreCreateInfo,
		}, nil, &c.imageAcquiredSemaphores[i])))
		orPanic(NewError(vk.CreateSemaphore(c.device, &vk.SemaphoreCreateInfo{
			SType: vk.StructureTypeSemaphoreCreateInfo,
		}, nil, &c.drawCompleteSemaphores[i])))
		if c.separatePresentQueue {
			orPanic(NewError(vk.CreateSemaphore(c.device, &vk.SemaphoreCreateInfo{
				SType: vk.StructureTypeSemaphoreCreateInfo,
			}, nil, &c.imageOwnershipSemaphores[i])))
		}
	}
}

// prepare runs (or re-runs, on invalidate) the onPrepare hook set by an
// ApplicationContextPrepare; invalidate is true when called after a
// swapchain recreation rather than first-time setup.
func (c *context) prepare(invalidate bool) {
	if invalidate && c.onInvalidate != nil {
		orPanic(c.onInvalidate(c, c.currentBuffer))
		return
	}
	if c.onPrepare != nil {
		orPanic(c.onPrepare(c))
	}
}

// OnPlatformUpdate rebuilds the command pool/buffer the context's own
// prepare hooks record init-time uploads into, and re-runs those hooks
// whenever the platform signals a swapchain recreation (resize, device
// loss recovery). physicalDevice is re-captured here too, since a
// platform update can follow a fresh NewPlatform call.
func (c *context) OnPlatformUpdate(platform Platform) (err error) {
	defer checkErr(&err)
	c.device = platform.Device()
	c.physicalDevice = platform.PhysicalDevice()
	c.queue = platform.GraphicsQueue()
	c.platform = platform
	vk.DeviceWaitIdle(c.device)

	if c.onCleanup != nil {
		orPanic(c.onCleanup(c))
	}
	vk.DestroyCommandPool(c.device, c.cmdPool, nil)
	if c.separatePresentQueue {
		vk.DestroyCommandPool(c.device, c.presentCmdPool, nil)
	}

	ret := vk.CreateCommandPool(c.device, &vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: c.platform.GraphicsQueueFamilyIndex(),
	}, nil, &c.cmdPool)
	orPanic(NewError(ret))

	ret = vk.AllocateCommandBuffers(c.device, &vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        c.cmdPool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}, &c.cmd)
	orPanic(NewError(ret))

	ret = vk.BeginCommandBuffer(c.cmd, &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
	})
	orPanic(NewError(ret))

	if c.onPrepare != nil {
		orPanic(c.onPrepare(c))
	}
	// Prepare functions above may generate pipeline commands
	// that need to be flushed before beginning the render loop.
	orPanic(c.flushInitCmd())
	if c.stagingTexture != nil {
		c.stagingTexture.DestroyImage(c.device)
	}
	c.currentBuffer = 0
	return nil
}

// flushInitCmd submits and waits on the command buffer onPrepare
// recorded into (texture uploads, buffer staging copies) so those
// transfers are guaranteed complete before the render loop starts
// referencing their results. Safe to call more than once: after a
// flush it resets c.cmd to the null handle, so a second call is a
// no-op.
func (c *context) flushInitCmd() error {
	if c.cmd == vk.CommandBuffer(vk.NullHandle) {
		return nil
	}
	if ret := vk.EndCommandBuffer(c.cmd); ret != vk.Success {
		return NewError(ret)
	}

	var fence vk.Fence
	if ret := vk.CreateFence(c.device, &vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
	}, nil, &fence); ret != vk.Success {
		return NewError(ret)
	}

	cmdBufs := []vk.CommandBuffer{c.cmd}
	if ret := vk.QueueSubmit(c.queue, 1, []vk.SubmitInfo{{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    cmdBufs,
	}}, fence); ret != vk.Success {
		return NewError(ret)
	}

	if ret := vk.WaitForFences(c.device, 1, []vk.Fence{fence}, vk.True, vk.MaxUint64); ret != vk.Success {
		return NewError(ret)
	}

	vk.FreeCommandBuffers(c.device, c.cmdPool, 1, cmdBufs)
	vk.DestroyFence(c.device, fence, nil)
	c.cmd = vk.CommandBuffer(vk.NullHandle)
	return nil
}

// prepareSwapchain (re)creates the swapchain against surfaceCapabilities
// from physicalDevice/surface, retiring any previous swapchain once its
// in-flight fences are signaled. It records the resulting dimensions on
// the context so SwapchainExtent/SwapchainFormat stay in sync with
// SwapchainImage, and builds a view for each fetched image so a caller
// can register it as a framegraph external input immediately.
func (c *context) prepareSwapchain(pPhysicalDevice vk.PhysicalDevice, pSurface vk.Surface, dim *SwapchainDimensions) (*SwapchainDimensions, error) {
	// Read surface capabilities

	var surfaceCapabilities vk.SurfaceCapabilities
	ret := vk.GetPhysicalDeviceSurfaceCapabilities(pPhysicalDevice, pSurface, &surfaceCapabilities)
	orPanic(NewError(ret))
	surfaceCapabilities.Deref()

	// Get available surface pixel formats

	var formatCount uint32
	vk.GetPhysicalDeviceSurfaceFormats(pPhysicalDevice, pSurface, &formatCount, nil)
	formats := make([]vk.SurfaceFormat, formatCount)
	vk.GetPhysicalDeviceSurfaceFormats(pPhysicalDevice, pSurface, &formatCount, formats)

	// Select a proper surface format

	var format vk.SurfaceFormat
	if formatCount == 1 {
		formats[0].Deref()
		if formats[0].Format == vk.FormatUndefined {
			format = formats[0]
			format.Format = dim.Format
		} else {
			format = formats[0]
		}
	} else if formatCount == 0 {
		return dim, errors.New("vulkan error: surface has no pixel formats")
	} else {
		formats[0].Deref()
		// select the first one available
		format = formats[0]
	}

	// Setup swapchain parameters

	var swapchainSize vk.Extent2D
	surfaceCapabilities.CurrentExtent.Deref()
	if surfaceCapabilities.CurrentExtent.Width == vk.MaxUint32 {
		swapchainSize.Width = dim.Width
		swapchainSize.Height = dim.Height
	} else {
		swapchainSize = surfaceCapabilities.CurrentExtent
	}
	// FIFO must be supported by all implementations.
	swapchainPresentMode := vk.PresentModeFifo
	// Determine the number of VkImage's to use in the swapchain.
	// Ideally, we desire to own 1 image at a time, the rest of the images can either be rendered to and/or
	// being queued up for display.
	desiredSwapchainImages := surfaceCapabilities.MinImageCount + 1
	if surfaceCapabilities.MaxImageCount > 0 && desiredSwapchainImages > surfaceCapabilities.MaxImageCount {
		// Application must settle for fewer images than desired.
		desiredSwapchainImages = surfaceCapabilities.MaxImageCount
	}

	// Figure out a suitable surface transform.

	var preTransform vk.SurfaceTransformFlagBits
	requiredTransforms := vk.SurfaceTransformIdentityBit
	supportedTransforms := vk.SurfaceTransformFlagBits(surfaceCapabilities.SupportedTransforms)
	if supportedTransforms&requiredTransforms == requiredTransforms {
		preTransform = requiredTransforms
	} else {
		preTransform = surfaceCapabilities.CurrentTransform
	}

	// Create a swapchain

	var swapchain vk.Swapchain
	oldSwapchain := c.swapchain
	ret = vk.CreateSwapchain(c.device, &vk.SwapchainCreateInfo{
		SType:           vk.StructureTypeSwapchainCreateInfo,
		Surface:         pSurface,
		MinImageCount:   desiredSwapchainImages,
		ImageFormat:     format.Format,
		ImageColorSpace: format.ColorSpace,
		ImageExtent: vk.Extent2D{
			Width:  swapchainSize.Width,
			Height: swapchainSize.Height,
		},
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageSharingMode: vk.SharingModeExclusive,
		PreTransform:     preTransform,
		CompositeAlpha:   vk.CompositeAlphaInheritBit,
		PresentMode:      swapchainPresentMode,
		Clipped:          vk.True,
		OldSwapchain:     oldSwapchain,
	}, nil, &swapchain)
	orPanic(NewError(ret))
	if oldSwapchain != vk.NullSwapchain {
		// AMD driver times out waiting on fences used in AcquireNextImage on
		// a swapchain that is subsequently destroyed before the wait.
		vk.WaitForFences(c.device, len(c.fences), c.fences, vk.True, vk.MaxUint64)
		vk.DestroySwapchain(c.device, oldSwapchain, nil)
	}
	c.swapchain = swapchain

	newDimensions := &SwapchainDimensions{
		Width:  swapchainSize.Width,
		Height: swapchainSize.Height,
		Format: format.Format,
	}

	var imageCount uint32
	ret = vk.GetSwapchainImages(c.device, c.swapchain, &imageCount, nil)
	orPanic(NewError(ret))
	swapchainImages := make([]vk.Image, imageCount)
	ret = vk.GetSwapchainImages(c.device, c.swapchain, &imageCount, swapchainImages)
	orPanic(NewError(ret))
	for i := 0; i < len(c.swapchainImageResources); i++ {
		c.swapchainImageResources[i].Destroy(c.device, c.cmdPool)
	}
	c.swapchainImageResources = make([]*SwapchainImageResources, 0, imageCount)
	for i := 0; i < len(swapchainImages); i++ {
		var view vk.ImageView
		ret = vk.CreateImageView(c.device, &vk.ImageViewCreateInfo{
			SType:    vk.StructureTypeImageViewCreateInfo,
			Image:    swapchainImages[i],
			ViewType: vk.ImageViewType2d,
			Format:   newDimensions.Format,
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
				LevelCount: 1,
				LayerCount: 1,
			},
		}, nil, &view)
		orPanic(NewError(ret))

		c.swapchainImageResources = append(c.swapchainImageResources, &SwapchainImageResources{
			image: swapchainImages[i],
			view:  view,
		})
	}
	c.swapchainDimensions = newDimensions
	return newDimensions, nil
}

type Texture struct {
	sampler vk.Sampler

	image       vk.Image
	imageLayout vk.ImageLayout

	memAlloc vk.MemoryAllocateInfo
	mem      vk.DeviceMemory
	view     vk.ImageView

	texWidth  int32
	texHeight int32
}

func (t *Texture) Destroy(dev vk.Device) {
	vk.DestroyImageView(dev, t.view, nil)
	vk.DestroyImage(dev, t.image, nil)
	vk.FreeMemory(dev, t.mem, nil)
	vk.DestroySampler(dev, t.sampler, nil)
}

func (t *Texture) DestroyImage(dev vk.Device) {
	vk.FreeMemory(dev, t.mem, nil)
	vk.DestroyImage(dev, t.image, nil)
}

type Depth struct {
	format   vk.Format
	image    vk.Image
	memAlloc vk.MemoryAllocateInfo
	mem      vk.DeviceMemory
	view     vk.ImageView
}

func (d *Depth) Destroy(dev vk.Device) {
	vk.DestroyImageView(dev, d.view, nil)
	vk.DestroyImage(dev, d.image, nil)
	vk.FreeMemory(dev, d.mem, nil)
}

type SwapchainImageResources struct {
	image                vk.Image
	cmd                  vk.CommandBuffer
	graphicsToPresentCmd vk.CommandBuffer

	view          vk.ImageView
	framebuffer   vk.Framebuffer
	descriptorSet vk.DescriptorSet

	UniformBuffer vk.Buffer
	UniformMemory vk.DeviceMemory
	Fence         vk.Fence
}

func (s *SwapchainImageResources) Destroy(dev vk.Device, cmdPool ...vk.CommandPool) {
	vk.DestroyFramebuffer(dev, s.framebuffer, nil)
	vk.DestroyImageView(dev, s.view, nil)
	if len(cmdPool) > 0 {
		vk.FreeCommandBuffers(dev, cmdPool[0], 1, []vk.CommandBuffer{
			s.cmd,
		})
	}
	vk.DestroyBuffer(dev, s.UniformBuffer, nil)
	vk.FreeMemory(dev, s.UniformMemory, nil)
	vk.DestroyFence(dev, s.Fence, nil)
}

// SetImageOwnership records the graphics-to-present queue family
// ownership transfer for this image on graphicsToPresentCmd. Only
// meaningful when the platform reported a separate present queue
// (Platform.HasSeparatePresentQueue); a single-queue Context never
// allocates graphicsToPresentCmd, and then this returns without
// recording anything. Nothing in this module calls it.
func (s *SwapchainImageResources) SetImageOwnership(graphicsFamily, presentFamily uint32) {
	if s.graphicsToPresentCmd == vk.CommandBuffer(vk.NullHandle) {
		return
	}
	orPanic(NewError(vk.BeginCommandBuffer(s.graphicsToPresentCmd, &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageSimultaneousUseBit),
	})))
	vk.CmdPipelineBarrier(s.graphicsToPresentCmd,
		vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{{
			SType:               vk.StructureTypeImageMemoryBarrier,
			DstAccessMask:       vk.AccessFlags(vk.AccessColorAttachmentWriteBit),
			OldLayout:           vk.ImageLayoutPresentSrc,
			NewLayout:           vk.ImageLayoutPresentSrc,
			SrcQueueFamilyIndex: graphicsFamily,
			DstQueueFamilyIndex: presentFamily,
			Image:               s.image,
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
				LevelCount: 1,
				LayerCount: 1,
			},
		}})
	orPanic(NewError(vk.EndCommandBuffer(s.graphicsToPresentCmd)))
}
