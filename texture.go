package vkframegraph

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"

	"github.com/andewx/vkframegraph/vksync"
)

// PixelFormat is a reduced, framegraph-relevant subset of VkFormat:
// the formats transient render targets are actually declared in.
type PixelFormat int

const (
	FormatUndefined PixelFormat = iota
	FormatRGBA8Srgb
	FormatRGBA16Float
	FormatD32Float
	FormatD24UnormS8Uint
)

func (f PixelFormat) vkFormat() vk.Format {
	switch f {
	case FormatRGBA8Srgb:
		return vk.FormatR8g8b8a8Srgb
	case FormatRGBA16Float:
		return vk.FormatR16g16b16a16Sfloat
	case FormatD32Float:
		return vk.FormatD32Sfloat
	case FormatD24UnormS8Uint:
		return vk.FormatD24UnormS8Uint
	default:
		return vk.FormatUndefined
	}
}

func (f PixelFormat) isDepthFormat() bool {
	return f == FormatD32Float || f == FormatD24UnormS8Uint
}

// Extent3D is the pixel dimensions of a transient texture.
type Extent3D struct {
	Width, Height, Depth uint32
}

// TextureInfo is the declarative description of a transient texture,
// supplied at TaskBuilder.Create time, mirrored on TextureManager.Info
// for any handle version of the same resource.
type TextureInfo struct {
	Name   string
	Size   Extent3D
	Format PixelFormat
	// Usage is the VkImageUsage bits the caller supplies; task
	// dependencies do not add to it. Allocate substitutes a default
	// attachment-plus-sampled usage when it is zero.
	Usage vk.ImageUsageFlags
}

// TextureState is the synchronization state the manager tracked the
// last time this texture version was written or read: the access type
// the task used, from which the next transition derives its source
// stage/access mask and layout.
type TextureState struct {
	LastAccess vksync.AccessType
}

// TransientHandle identifies one version of one texture: Version
// advances (Bump) each time a task declares a Write or Create
// dependency on the texture, while Handle stays the same. A handle
// carrying an older version still reaches the same texture entry; the
// slot map does not reject it.
type TransientHandle struct {
	Handle  Handle
	Version uint32
}

type textureEntry struct {
	info     TextureInfo
	state    TextureState
	external bool
	image    vk.Image
	view     vk.ImageView
	memory   vk.DeviceMemory
	// firstUse/lastUse hold an execution-priority range. Only
	// accrueUsage writes them, and nothing in the package calls
	// accrueUsage, so the resolver leaves them untouched.
	firstUse, lastUse int32
}

// TextureManager owns every transient and external texture declared
// within one frame's framegraph, and the physical Vulkan resources
// backing the ones the resolver decided were actually required.
type TextureManager struct {
	device    vk.Device
	physical  vk.PhysicalDevice
	resources *SlotMap[textureEntry]
}

// NewTextureManager constructs an empty manager bound to a device;
// device/physical are needed only at Allocate time.
func NewTextureManager(device vk.Device, physical vk.PhysicalDevice) *TextureManager {
	return &TextureManager{
		device:    device,
		physical:  physical,
		resources: NewSlotMap[textureEntry](),
	}
}

// CreateTexture declares a brand-new transient texture at version 0;
// it carries no backing image until Allocate runs.
func (m *TextureManager) CreateTexture(info TextureInfo) TransientHandle {
	h := m.resources.Insert(textureEntry{info: info, firstUse: -1, lastUse: -1})
	return TransientHandle{Handle: h, Version: 0}
}

// RegisterExternal wraps an already-live Vulkan image (typically a
// swapchain image) as a framegraph input, at the access/layout it was
// last known to be in.
func (m *TextureManager) RegisterExternal(info TextureInfo, lastAccess vksync.AccessType, image vk.Image, view vk.ImageView) TransientHandle {
	h := m.resources.Insert(textureEntry{
		info:     info,
		state:    TextureState{LastAccess: lastAccess},
		external: true,
		image:    image,
		view:     view,
		firstUse: -1,
		lastUse:  -1,
	})
	return TransientHandle{Handle: h, Version: 0}
}

// Bump advances handle to the next version, recording that a task
// wrote or created it. Returns the new TransientHandle a downstream
// task must use to read this write.
func (m *TextureManager) Bump(handle TransientHandle) TransientHandle {
	return TransientHandle{Handle: handle.Handle, Version: handle.Version + 1}
}

// Info returns the declared TextureInfo for handle's underlying slot.
func (m *TextureManager) Info(handle TransientHandle) (TextureInfo, error) {
	e, ok := m.resources.Get(handle.Handle)
	if !ok {
		return TextureInfo{}, newErr(ErrStaleHandle, "textureManager", fmt.Sprintf("handle %v is stale", handle.Handle))
	}
	return e.info, nil
}

// State returns the last-known synchronization state for handle's
// underlying slot.
func (m *TextureManager) State(handle TransientHandle) (TextureState, error) {
	e, ok := m.resources.Get(handle.Handle)
	if !ok {
		return TextureState{}, newErr(ErrStaleHandle, "textureManager", fmt.Sprintf("handle %v is stale", handle.Handle))
	}
	return e.state, nil
}

// Image returns the backing vk.Image and vk.ImageView for handle, or
// an AllocationFailure-kind error if Allocate has not run for this
// resource yet.
func (m *TextureManager) Image(handle TransientHandle) (vk.Image, vk.ImageView, error) {
	e, ok := m.resources.Get(handle.Handle)
	if !ok {
		return vk.NullImage, vk.NullImageView, newErr(ErrStaleHandle, "textureManager", fmt.Sprintf("handle %v is stale", handle.Handle))
	}
	if e.image == vk.NullImage {
		return vk.NullImage, vk.NullImageView, newErr(ErrAllocationFailure, "textureManager", fmt.Sprintf("resource %q not yet allocated", e.info.Name))
	}
	return e.image, e.view, nil
}

// accrueUsage folds an additional image-usage requirement into the
// slot's TextureInfo so Allocate builds an image wide enough for
// every task that will ever touch it.
func (m *TextureManager) accrueUsage(h Handle, usage vk.ImageUsageFlags, priority int32) {
	e, ok := m.resources.Get(h)
	if !ok {
		return
	}
	e.info.Usage |= usage
	if e.firstUse < 0 || priority < e.firstUse {
		e.firstUse = priority
	}
	if priority > e.lastUse {
		e.lastUse = priority
	}
	m.resources.Set(h, e)
}

// Allocate creates backing vk.Image/vk.ImageView/vk.DeviceMemory for
// every non-external handle in required, skipping any already
// allocated or external resource. Mirrors
// TextureResourceManager::allocateAll, done eagerly per-handle rather
// than as a single aliasing pass (see the Open Questions note on
// aliasing in DESIGN.md).
func (m *TextureManager) Allocate(required []Handle) error {
	for _, h := range required {
		e, ok := m.resources.Get(h)
		if !ok {
			return newErr(ErrStaleHandle, "textureManager", fmt.Sprintf("handle %v is stale", h))
		}
		if e.external || e.image != vk.NullImage {
			continue
		}

		usage := e.info.Usage
		if usage == 0 {
			if e.info.Format.isDepthFormat() {
				usage = vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit) | vk.ImageUsageFlags(vk.ImageUsageSampledBit)
			} else {
				usage = vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit) | vk.ImageUsageFlags(vk.ImageUsageSampledBit)
			}
		}

		var image vk.Image
		ret := vk.CreateImage(m.device, &vk.ImageCreateInfo{
			SType:     vk.StructureTypeImageCreateInfo,
			ImageType: vk.ImageType2d,
			Format:    e.info.Format.vkFormat(),
			Extent: vk.Extent3D{
				Width:  e.info.Size.Width,
				Height: e.info.Size.Height,
				Depth:  max1(e.info.Size.Depth),
			},
			MipLevels:     1,
			ArrayLayers:   1,
			Samples:       vk.SampleCount1Bit,
			Tiling:        vk.ImageTilingOptimal,
			Usage:         usage,
			SharingMode:   vk.SharingModeExclusive,
			InitialLayout: vk.ImageLayoutUndefined,
		}, nil, &image)
		if ret != vk.Success {
			return wrapErr(ErrVulkan, "textureManager", fmt.Sprintf("vkCreateImage failed for %q", e.info.Name), vkResultError(ret))
		}

		var memReqs vk.MemoryRequirements
		vk.GetImageMemoryRequirements(m.device, image, &memReqs)
		memReqs.Deref()

		memTypeIndex, err := findMemoryType(m.physical, memReqs.MemoryTypeBits, vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
		if err != nil {
			vk.DestroyImage(m.device, image, nil)
			return wrapErr(ErrAllocationFailure, "textureManager", fmt.Sprintf("no suitable memory type for %q", e.info.Name), err)
		}

		var memory vk.DeviceMemory
		ret = vk.AllocateMemory(m.device, &vk.MemoryAllocateInfo{
			SType:           vk.StructureTypeMemoryAllocateInfo,
			AllocationSize:  memReqs.Size,
			MemoryTypeIndex: memTypeIndex,
		}, nil, &memory)
		if ret != vk.Success {
			vk.DestroyImage(m.device, image, nil)
			return wrapErr(ErrAllocationFailure, "textureManager", fmt.Sprintf("vkAllocateMemory failed for %q", e.info.Name), vkResultError(ret))
		}

		if ret := vk.BindImageMemory(m.device, image, memory, 0); ret != vk.Success {
			return wrapErr(ErrAllocationFailure, "textureManager", fmt.Sprintf("vkBindImageMemory failed for %q", e.info.Name), vkResultError(ret))
		}

		aspect := vk.ImageAspectFlags(vk.ImageAspectColorBit)
		if e.info.Format.isDepthFormat() {
			aspect = vk.ImageAspectFlags(vk.ImageAspectDepthBit)
		}

		var view vk.ImageView
		ret = vk.CreateImageView(m.device, &vk.ImageViewCreateInfo{
			SType:    vk.StructureTypeImageViewCreateInfo,
			Image:    image,
			ViewType: vk.ImageViewType2d,
			Format:   e.info.Format.vkFormat(),
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask:     aspect,
				LevelCount:     1,
				LayerCount:     1,
			},
		}, nil, &view)
		if ret != vk.Success {
			return wrapErr(ErrVulkan, "textureManager", fmt.Sprintf("vkCreateImageView failed for %q", e.info.Name), vkResultError(ret))
		}

		e.image = image
		e.view = view
		e.memory = memory
		m.resources.Set(h, e)
	}
	return nil
}

// Synchronize computes the ImageBarrier transitioning handle's
// underlying resource from its last known access to nextAccess, and
// advances the tracked state to nextAccess. contents controls whether
// the barrier preserves the image's current contents (a read/write
// dependency) or is free to discard them (a fresh write).
func (m *TextureManager) Synchronize(handle TransientHandle, nextAccess vksync.AccessType, contents vksync.ImageContents) (vksync.ImageBarrier, error) {
	e, ok := m.resources.Get(handle.Handle)
	if !ok {
		return vksync.ImageBarrier{}, newErr(ErrStaleHandle, "textureManager", fmt.Sprintf("handle %v is stale", handle.Handle))
	}
	if !e.external && e.image == vk.NullImage {
		return vksync.ImageBarrier{}, newErr(ErrAllocationFailure, "textureManager", fmt.Sprintf("resource %q not yet allocated", e.info.Name))
	}

	aspect := vk.ImageAspectFlags(vk.ImageAspectColorBit)
	if e.info.Format.isDepthFormat() {
		aspect = vk.ImageAspectFlags(vk.ImageAspectDepthBit)
	}

	barrier := vksync.ImageBarrier{
		PrevAccesses:     []vksync.AccessType{e.state.LastAccess},
		NextAccesses:     []vksync.AccessType{nextAccess},
		PrevLayout:       vksync.LayoutOptimal,
		NextLayout:       vksync.LayoutOptimal,
		DiscardContents:  contents == vksync.Discard,
		Image:            e.image,
		SubresourceRange: vk.ImageSubresourceRange{AspectMask: aspect, LevelCount: 1, LayerCount: 1},
	}

	e.state.LastAccess = nextAccess
	m.resources.Set(handle.Handle, e)

	return barrier, nil
}

// Clear drops every tracked resource and destroys the backing Vulkan
// objects for the non-external ones. Called at the top of
// ResetForNextFrame.
func (m *TextureManager) Clear() {
	for _, item := range m.resources.Items() {
		e := item.Value
		if e.external {
			continue
		}
		if e.view != vk.NullImageView {
			vk.DestroyImageView(m.device, e.view, nil)
		}
		if e.image != vk.NullImage {
			vk.DestroyImage(m.device, e.image, nil)
		}
		if e.memory != vk.NullDeviceMemory {
			vk.FreeMemory(m.device, e.memory, nil)
		}
	}
	m.resources.Clear()
}

func max1(v uint32) uint32 {
	if v == 0 {
		return 1
	}
	return v
}

func findMemoryType(physical vk.PhysicalDevice, typeBits uint32, properties vk.MemoryPropertyFlags) (uint32, error) {
	var memProps vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(physical, &memProps)
	memProps.Deref()

	for i := uint32(0); i < memProps.MemoryTypeCount; i++ {
		memProps.MemoryTypes[i].Deref()
		if typeBits&(1<<i) == 0 {
			continue
		}
		if memProps.MemoryTypes[i].PropertyFlags&properties == properties {
			return i, nil
		}
	}
	return 0, fmt.Errorf("no memory type supports requested properties")
}

func vkResultError(ret vk.Result) error {
	return fmt.Errorf("vkresult %d", ret)
}
