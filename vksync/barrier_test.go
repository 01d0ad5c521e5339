package vksync

import (
	"testing"

	vk "github.com/vulkan-go/vulkan"
	"github.com/stretchr/testify/require"
)

func TestGetVulkanMemoryBarrierReadToRead(t *testing.T) {
	srcStages, dstStages, mb := GetVulkanMemoryBarrier(GlobalBarrier{
		PrevAccesses: []AccessType{FragmentShaderReadOther},
		NextAccesses: []AccessType{VertexShaderReadOther},
	})
	require.NotZero(t, srcStages)
	require.NotZero(t, dstStages)
	require.Zero(t, mb.DstAccessMask, "no preceding write means no visibility operation needed")
}

func TestGetVulkanMemoryBarrierWriteToRead(t *testing.T) {
	_, _, mb := GetVulkanMemoryBarrier(GlobalBarrier{
		PrevAccesses: []AccessType{ColorAttachmentWrite},
		NextAccesses: []AccessType{FragmentShaderReadOther},
	})
	require.NotZero(t, mb.SrcAccessMask)
	require.NotZero(t, mb.DstAccessMask)
}

func TestGetVulkanImageMemoryBarrierDiscard(t *testing.T) {
	_, _, ib := GetVulkanImageMemoryBarrier(ImageBarrier{
		PrevAccesses:    []AccessType{None},
		NextAccesses:    []AccessType{ColorAttachmentWrite},
		DiscardContents: true,
		PrevLayout:      LayoutOptimal,
		NextLayout:      LayoutOptimal,
	})
	require.Equal(t, vk.ImageLayoutUndefined, ib.OldLayout)
	require.Equal(t, vk.ImageLayoutColorAttachmentOptimal, ib.NewLayout)
}

func TestGetVulkanImageMemoryBarrierRetain(t *testing.T) {
	_, _, ib := GetVulkanImageMemoryBarrier(ImageBarrier{
		PrevAccesses: []AccessType{ColorAttachmentWrite},
		NextAccesses: []AccessType{FragmentShaderReadSampledImageOrUniformTexelBuffer},
		PrevLayout:   LayoutOptimal,
		NextLayout:   LayoutOptimal,
	})
	require.Equal(t, vk.ImageLayoutColorAttachmentOptimal, ib.OldLayout)
	require.Equal(t, vk.ImageLayoutShaderReadOnlyOptimal, ib.NewLayout)
}

func TestGetVulkanImageMemoryBarrierGeneralPresent(t *testing.T) {
	_, _, ib := GetVulkanImageMemoryBarrier(ImageBarrier{
		PrevAccesses: []AccessType{ColorAttachmentWrite},
		NextAccesses: []AccessType{Present},
		PrevLayout:   LayoutOptimal,
		NextLayout:   LayoutGeneral,
	})
	require.Equal(t, vk.ImageLayoutPresentSrc, ib.NewLayout)
}

func TestGetVulkanImageMemoryBarrierQueueFamilyDefaults(t *testing.T) {
	_, _, ib := GetVulkanImageMemoryBarrier(ImageBarrier{
		PrevAccesses: []AccessType{ColorAttachmentWrite},
		NextAccesses: []AccessType{TransferRead},
	})
	require.Equal(t, uint32(vk.QueueFamilyIgnored), ib.SrcQueueFamilyIndex)
	require.Equal(t, uint32(vk.QueueFamilyIgnored), ib.DstQueueFamilyIndex)
}
