package vkframegraph

import (
	"testing"

	vk "github.com/vulkan-go/vulkan"
	"github.com/stretchr/testify/require"

	"github.com/andewx/vkframegraph/vksync"
)

func newTestTextureManager() *TextureManager {
	var device vk.Device
	var physical vk.PhysicalDevice
	return NewTextureManager(device, physical)
}

func TestTextureManagerCreateAndInfo(t *testing.T) {
	m := newTestTextureManager()
	h := m.CreateTexture(TextureInfo{Name: "albedo", Size: Extent3D{Width: 256, Height: 256}, Format: FormatRGBA8Srgb})

	info, err := m.Info(h)
	require.NoError(t, err)
	require.Equal(t, "albedo", info.Name)
	require.Equal(t, uint32(0), h.Version)
}

func TestTextureManagerBumpAdvancesVersionOnly(t *testing.T) {
	m := newTestTextureManager()
	h0 := m.CreateTexture(TextureInfo{Name: "ping", Size: Extent3D{Width: 1, Height: 1}, Format: FormatRGBA8Srgb})
	h1 := m.Bump(h0)

	require.Equal(t, h0.Handle, h1.Handle)
	require.Equal(t, h0.Version+1, h1.Version)
}

func TestTextureManagerStaleHandleAfterClear(t *testing.T) {
	m := newTestTextureManager()
	h := m.CreateTexture(TextureInfo{Name: "scratch", Size: Extent3D{Width: 1, Height: 1}, Format: FormatRGBA8Srgb})

	m.Clear()

	_, err := m.Info(h)
	require.Error(t, err)
	fgErr, ok := err.(*FramegraphError)
	require.True(t, ok)
	require.Equal(t, ErrStaleHandle, fgErr.Kind)
}

func TestTextureManagerImageBeforeAllocateIsAllocationFailure(t *testing.T) {
	m := newTestTextureManager()
	h := m.CreateTexture(TextureInfo{Name: "unallocated", Size: Extent3D{Width: 1, Height: 1}, Format: FormatRGBA8Srgb})

	_, _, err := m.Image(h)
	require.Error(t, err)
	fgErr, ok := err.(*FramegraphError)
	require.True(t, ok)
	require.Equal(t, ErrAllocationFailure, fgErr.Kind)
}

func TestTextureManagerSynchronizeTracksLastAccess(t *testing.T) {
	m := newTestTextureManager()
	h := m.RegisterExternal(TextureInfo{Name: "target", Size: Extent3D{Width: 1, Height: 1}, Format: FormatRGBA8Srgb}, vksync.None, vk.NullImage, vk.NullImageView)

	barrier, err := m.Synchronize(h, vksync.ColorAttachmentWrite, vksync.Discard)
	require.NoError(t, err)
	require.True(t, barrier.DiscardContents)
	require.Equal(t, []vksync.AccessType{vksync.None}, barrier.PrevAccesses)
	require.Equal(t, []vksync.AccessType{vksync.ColorAttachmentWrite}, barrier.NextAccesses)

	state, err := m.State(h)
	require.NoError(t, err)
	require.Equal(t, vksync.ColorAttachmentWrite, state.LastAccess)

	barrier2, err := m.Synchronize(h, vksync.FragmentShaderReadOther, vksync.Retain)
	require.NoError(t, err)
	require.False(t, barrier2.DiscardContents)
	require.Equal(t, []vksync.AccessType{vksync.ColorAttachmentWrite}, barrier2.PrevAccesses)
}

func TestPixelFormatIsDepthFormat(t *testing.T) {
	require.True(t, FormatD32Float.isDepthFormat())
	require.True(t, FormatD24UnormS8Uint.isDepthFormat())
	require.False(t, FormatRGBA8Srgb.isDepthFormat())
}
