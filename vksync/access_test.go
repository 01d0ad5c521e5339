package vksync

import (
	"testing"

	vk "github.com/vulkan-go/vulkan"
	"github.com/stretchr/testify/require"
)

func TestIsWrite(t *testing.T) {
	require.False(t, None.IsWrite())
	require.False(t, VertexBuffer.IsWrite())
	require.False(t, Present.IsWrite())
	require.True(t, ColorAttachmentWrite.IsWrite())
	require.True(t, TransferWrite.IsWrite())
	require.True(t, General.IsWrite())
}

func TestGetAccessInfoSingleRead(t *testing.T) {
	info := GetAccessInfo([]AccessType{FragmentShaderReadSampledImageOrUniformTexelBuffer})
	require.False(t, info.HasWrite)
	require.Equal(t, vk.ImageLayoutShaderReadOnlyOptimal, info.Layout)
	require.NotZero(t, info.StageMask)
}

func TestGetAccessInfoCombinesReads(t *testing.T) {
	info := GetAccessInfo([]AccessType{
		FragmentShaderReadUniformBuffer,
		VertexShaderReadUniformBuffer,
	})
	require.False(t, info.HasWrite)
	wantStage := vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit) | vk.PipelineStageFlags(vk.PipelineStageVertexShaderBit)
	require.Equal(t, wantStage, info.StageMask)
}

func TestGetAccessInfoSingleWrite(t *testing.T) {
	info := GetAccessInfo([]AccessType{ColorAttachmentWrite})
	require.True(t, info.HasWrite)
	require.Equal(t, vk.ImageLayoutColorAttachmentOptimal, info.Layout)
}

func TestGetAccessInfoPanicsOnMixedWrite(t *testing.T) {
	require.Panics(t, func() {
		GetAccessInfo([]AccessType{ColorAttachmentWrite, TransferWrite})
	})
}

func TestGetAccessInfoPanicsOnWriteMixedWithRead(t *testing.T) {
	require.Panics(t, func() {
		GetAccessInfo([]AccessType{ColorAttachmentWrite, FragmentShaderReadOther})
	})
}

func TestGetAccessInfoPanicsOnMixedLayout(t *testing.T) {
	require.Panics(t, func() {
		GetAccessInfo([]AccessType{ColorAttachmentRead, FragmentShaderReadDepthStencilInputAttachment})
	})
}

func TestGetAccessInfoPanicsOnOutOfRange(t *testing.T) {
	require.Panics(t, func() {
		GetAccessInfo([]AccessType{numAccessTypes})
	})
}

func TestVkImageLayout(t *testing.T) {
	require.Equal(t, vk.ImageLayoutPresentSrc, VkImageLayout(Present))
	require.Equal(t, vk.ImageLayoutTransferDstOptimal, VkImageLayout(TransferWrite))
}
