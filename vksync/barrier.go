package vksync

import vk "github.com/vulkan-go/vulkan"

// ImageContents tells a barrier whether the previous contents of an
// image need to survive the transition. Discard lets the driver skip
// a layout-preserving copy when the old contents are dead anyway (a
// freshly created transient texture, for instance).
type ImageContents int

const (
	Retain ImageContents = iota
	Discard
)

// GlobalBarrier is a full pipeline barrier with no resource scoping.
type GlobalBarrier struct {
	PrevAccesses []AccessType
	NextAccesses []AccessType
}

// BufferBarrier scopes a GlobalBarrier to one VkBuffer range, with
// optional queue family ownership transfer.
type BufferBarrier struct {
	PrevAccesses        []AccessType
	NextAccesses        []AccessType
	SrcQueueFamilyIndex uint32
	DstQueueFamilyIndex uint32
	Buffer              vk.Buffer
	Offset              vk.DeviceSize
	Size                vk.DeviceSize
}

// ImageBarrier scopes a GlobalBarrier to one VkImage (or a subresource
// range of it), additionally carrying the layout-transition and
// discard intent of the transition.
type ImageBarrier struct {
	PrevAccesses        []AccessType
	NextAccesses        []AccessType
	PrevLayout          ImageLayout
	NextLayout          ImageLayout
	DiscardContents     bool
	SrcQueueFamilyIndex uint32
	DstQueueFamilyIndex uint32
	Image               vk.Image
	SubresourceRange    vk.ImageSubresourceRange
}

const queueFamilyIgnored = vk.QueueFamilyIgnored

// accumulate folds a set of accesses into running stage/access masks,
// returning whether any of them was a write. accessMask ORs every
// access's mask; writeMask ORs the masks of the writes only. It is the
// common core of
// GetVulkanMemoryBarrier/GetVulkanBufferMemoryBarrier/GetVulkanImageMemoryBarrier:
// each of those builds its src* mask from prevAccesses (writeMask) and
// its dst* mask from nextAccesses (accessMask) via this same loop.
func accumulate(accesses []AccessType) (stageMask vk.PipelineStageFlags, accessMask, writeMask vk.AccessFlags, hasWrite bool, layout vk.ImageLayout) {
	for _, a := range accesses {
		info := accessMap[a]
		stageMask |= info.stageMask
		accessMask |= info.accessMask
		if a.IsWrite() {
			writeMask |= info.accessMask
			hasWrite = true
		}
		layout = info.imageLayout
	}
	return
}

func defaultStage(mask vk.PipelineStageFlags, fallback vk.PipelineStageFlagBits) vk.PipelineStageFlags {
	if mask == 0 {
		return vk.PipelineStageFlags(fallback)
	}
	return mask
}

// GetVulkanMemoryBarrier translates a GlobalBarrier into the
// pipeline-stage masks and a VkMemoryBarrier that CmdPipelineBarrier
// needs. srcAccessMask only accumulates over writes (reads need no
// availability operation);
// dstAccessMask is only populated when there was a preceding write,
// since a read-after-read or a fresh resource needs no visibility
// operation either (the WAR-hazard optimization from the original
// "Simpler Vulkan Synchronization" table).
func GetVulkanMemoryBarrier(barrier GlobalBarrier) (srcStages, dstStages vk.PipelineStageFlags, out vk.MemoryBarrier) {
	srcStageMask, _, srcAccessMask, srcHasWrite, _ := accumulate(barrier.PrevAccesses)
	dstStageMask, dstAccessMask, _, _, _ := accumulate(barrier.NextAccesses)

	out.SType = vk.StructureTypeMemoryBarrier
	out.SrcAccessMask = srcAccessMask
	if srcHasWrite {
		out.DstAccessMask = dstAccessMask
	}

	srcStages = defaultStage(srcStageMask, vk.PipelineStageTopOfPipeBit)
	dstStages = defaultStage(dstStageMask, vk.PipelineStageBottomOfPipeBit)
	return
}

// GetVulkanBufferMemoryBarrier translates a BufferBarrier the same way
// GetVulkanMemoryBarrier does, additionally carrying the buffer range
// and queue family transfer fields through untouched.
func GetVulkanBufferMemoryBarrier(barrier BufferBarrier) (srcStages, dstStages vk.PipelineStageFlags, out vk.BufferMemoryBarrier) {
	srcStageMask, _, srcAccessMask, srcHasWrite, _ := accumulate(barrier.PrevAccesses)
	dstStageMask, dstAccessMask, _, _, _ := accumulate(barrier.NextAccesses)

	out.SType = vk.StructureTypeBufferMemoryBarrier
	out.SrcAccessMask = srcAccessMask
	if srcHasWrite {
		out.DstAccessMask = dstAccessMask
	}
	out.SrcQueueFamilyIndex = barrier.SrcQueueFamilyIndex
	out.DstQueueFamilyIndex = barrier.DstQueueFamilyIndex
	out.Buffer = barrier.Buffer
	out.Offset = barrier.Offset
	out.Size = barrier.Size

	srcStages = defaultStage(srcStageMask, vk.PipelineStageTopOfPipeBit)
	dstStages = defaultStage(dstStageMask, vk.PipelineStageBottomOfPipeBit)
	return
}

// resolveLayout derives the concrete VkImageLayout for one side of a
// transition: General maps to either PresentSrcKHR (if Present is
// literally one of the accesses) or General; Optimal defers to
// whatever layout the access set implied.
func resolveLayout(mode ImageLayout, accesses []AccessType, implied vk.ImageLayout) vk.ImageLayout {
	if mode == LayoutGeneral {
		for _, a := range accesses {
			if a == Present {
				return vk.ImageLayoutPresentSrc
			}
		}
		return vk.ImageLayoutGeneral
	}
	return implied
}

// GetVulkanImageMemoryBarrier translates an ImageBarrier into the
// pipeline-stage masks and VkImageMemoryBarrier needed for
// CmdPipelineBarrier, the image-aware counterpart of
// GetVulkanMemoryBarrier. DiscardContents forces oldLayout to
// Undefined, matching the recorder's handling of freshly created or
// dead-content transient textures.
func GetVulkanImageMemoryBarrier(barrier ImageBarrier) (srcStages, dstStages vk.PipelineStageFlags, out vk.ImageMemoryBarrier) {
	srcStageMask, _, srcAccessMask, srcHasWrite, srcLayout := accumulate(barrier.PrevAccesses)
	dstStageMask, dstAccessMask, _, _, dstLayout := accumulate(barrier.NextAccesses)

	out.SType = vk.StructureTypeImageMemoryBarrier
	out.SrcAccessMask = srcAccessMask
	if srcHasWrite {
		out.DstAccessMask = dstAccessMask
	}

	if barrier.DiscardContents {
		out.OldLayout = vk.ImageLayoutUndefined
	} else {
		out.OldLayout = resolveLayout(barrier.PrevLayout, barrier.PrevAccesses, srcLayout)
	}
	out.NewLayout = resolveLayout(barrier.NextLayout, barrier.NextAccesses, dstLayout)

	srcQueue := barrier.SrcQueueFamilyIndex
	dstQueue := barrier.DstQueueFamilyIndex
	if srcQueue == 0 && dstQueue == 0 {
		srcQueue = queueFamilyIgnored
		dstQueue = queueFamilyIgnored
	}
	out.SrcQueueFamilyIndex = srcQueue
	out.DstQueueFamilyIndex = dstQueue
	out.Image = barrier.Image
	out.SubresourceRange = barrier.SubresourceRange

	srcStages = defaultStage(srcStageMask, vk.PipelineStageTopOfPipeBit)
	dstStages = defaultStage(dstStageMask, vk.PipelineStageBottomOfPipeBit)
	return
}

// CmdPipelineBarrier records a single vkCmdPipelineBarrier spanning an
// optional global barrier plus any number of image barriers, folding
// each sub-barrier's derived stage masks into the overall src/dst
// stage mask. Buffer barriers are omitted here: the framegraph only
// ever synchronizes transient textures, not buffer resources.
func CmdPipelineBarrier(cmd vk.CommandBuffer, global *GlobalBarrier, images []ImageBarrier) {
	var srcStages, dstStages vk.PipelineStageFlags
	var memoryBarriers []vk.MemoryBarrier
	var imageBarriers []vk.ImageMemoryBarrier

	if global != nil {
		s, d, mb := GetVulkanMemoryBarrier(*global)
		srcStages |= s
		dstStages |= d
		memoryBarriers = append(memoryBarriers, mb)
	}

	for _, ib := range images {
		s, d, vkib := GetVulkanImageMemoryBarrier(ib)
		srcStages |= s
		dstStages |= d
		imageBarriers = append(imageBarriers, vkib)
	}

	if srcStages == 0 {
		srcStages = vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit)
	}
	if dstStages == 0 {
		dstStages = vk.PipelineStageFlags(vk.PipelineStageBottomOfPipeBit)
	}

	vk.CmdPipelineBarrier(
		cmd,
		srcStages,
		dstStages,
		0,
		uint32(len(memoryBarriers)), memoryBarrierPtr(memoryBarriers),
		0, nil,
		uint32(len(imageBarriers)), imageBarrierPtr(imageBarriers),
	)
}

func memoryBarrierPtr(b []vk.MemoryBarrier) []vk.MemoryBarrier {
	if len(b) == 0 {
		return nil
	}
	return b
}

func imageBarrierPtr(b []vk.ImageMemoryBarrier) []vk.ImageMemoryBarrier {
	if len(b) == 0 {
		return nil
	}
	return b
}
