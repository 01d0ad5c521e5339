// Package vksync is a Go port of "simpler_vulkan_synchronization" by
// Tobias Hector: a 40-ish-slot table mapping a semantic AccessType to
// the Vulkan pipeline stage mask, access mask and image layout it
// implies.
//
// Copyright (c) 2017-2019 Tobias Hector (original table data and license).
package vksync

import vk "github.com/vulkan-go/vulkan"

// AccessType is a semantic resource usage. Values below EndOfReadAccess
// are reads; values above are writes. None is the zero value, which
// GetAccessInfo leaves out of its layout check; General comes after
// EndOfReadAccess, so IsWrite reports it as a write.
type AccessType uint32

const (
	None AccessType = iota

	// Read access
	IndirectBuffer
	IndexBuffer
	VertexBuffer
	VertexShaderReadUniformBuffer
	VertexShaderReadSampledImageOrUniformTexelBuffer
	VertexShaderReadOther
	TessellationControlShaderReadUniformBuffer
	TessellationControlShaderReadSampledImageOrUniformTexelBuffer
	TessellationControlShaderReadOther
	TessellationEvaluationShaderReadUniformBuffer
	TessellationEvaluationShaderReadSampledImageOrUniformTexelBuffer
	TessellationEvaluationShaderReadOther
	GeometryShaderReadUniformBuffer
	GeometryShaderReadSampledImageOrUniformTexelBuffer
	GeometryShaderReadOther
	FragmentShaderReadUniformBuffer
	FragmentShaderReadSampledImageOrUniformTexelBuffer
	FragmentShaderReadColorInputAttachment
	FragmentShaderReadDepthStencilInputAttachment
	FragmentShaderReadOther
	ColorAttachmentRead
	DepthStencilAttachmentRead
	ComputeShaderReadUniformBuffer
	ComputeShaderReadSampledImageOrUniformTexelBuffer
	ComputeShaderReadOther
	AnyShaderReadUniformBuffer
	AnyShaderReadUniformBufferOrVertexBuffer
	AnyShaderReadSampledImageOrUniformTexelBuffer
	AnyShaderReadOther
	TransferRead
	HostRead
	Present

	// EndOfReadAccess is a sentinel: every AccessType before it is a
	// read, every one after it is a write.
	EndOfReadAccess

	// Write access
	VertexShaderWrite
	TessellationControlShaderWrite
	TessellationEvaluationShaderWrite
	GeometryShaderWrite
	FragmentShaderWrite
	ColorAttachmentWrite
	DepthStencilAttachmentWrite
	DepthAttachmentWriteStencilReadOnly
	StencilAttachmentWriteDepthReadOnly
	ComputeShaderWrite
	AnyShaderWrite
	TransferWrite
	HostPreinitialized
	HostWrite

	ColorAttachmentReadWrite

	// General covers any access; useful for debugging, avoid otherwise.
	General

	numAccessTypes
)

// IsWrite reports whether access denotes a write (or the catch-all
// General/ColorAttachmentReadWrite accesses, which imply a write for
// hazard-checking purposes).
func (a AccessType) IsWrite() bool {
	return a > EndOfReadAccess
}

// ImageLayout is a reduced set of layout choices correlated with
// AccessType so that Optimal resolves to the right Vulkan layout per
// access and General forces a layout-transition-free General layout.
type ImageLayout int

const (
	LayoutOptimal ImageLayout = iota
	LayoutGeneral
)

type accessInfo struct {
	stageMask  vk.PipelineStageFlags
	accessMask vk.AccessFlags
	imageLayout vk.ImageLayout
}

// accessMap is the numAccessTypes-slot (50) table itself, ported
// entry-for-entry from the Access Table. It is a composite literal
// keyed by the enum constants (rather than by position), so a reorder
// of the enum keeps every entry attached to its constant; a constant
// with no entry gets the zero accessInfo.
var accessMap = [numAccessTypes]accessInfo{
	None: {0, 0, vk.ImageLayoutUndefined},

	IndirectBuffer: {vk.PipelineStageFlags(vk.PipelineStageDrawIndirectBit), vk.AccessFlags(vk.AccessIndirectCommandReadBit), vk.ImageLayoutUndefined},
	IndexBuffer:    {vk.PipelineStageFlags(vk.PipelineStageVertexInputBit), vk.AccessFlags(vk.AccessIndexReadBit), vk.ImageLayoutUndefined},
	VertexBuffer:   {vk.PipelineStageFlags(vk.PipelineStageVertexInputBit), vk.AccessFlags(vk.AccessVertexAttributeReadBit), vk.ImageLayoutUndefined},

	VertexShaderReadUniformBuffer:                     {vk.PipelineStageFlags(vk.PipelineStageVertexShaderBit), vk.AccessFlags(vk.AccessUniformReadBit), vk.ImageLayoutUndefined},
	VertexShaderReadSampledImageOrUniformTexelBuffer:  {vk.PipelineStageFlags(vk.PipelineStageVertexShaderBit), vk.AccessFlags(vk.AccessShaderReadBit), vk.ImageLayoutShaderReadOnlyOptimal},
	VertexShaderReadOther:                             {vk.PipelineStageFlags(vk.PipelineStageVertexShaderBit), vk.AccessFlags(vk.AccessShaderReadBit), vk.ImageLayoutGeneral},

	TessellationControlShaderReadUniformBuffer:                    {vk.PipelineStageFlags(vk.PipelineStageTessellationControlShaderBit), vk.AccessFlags(vk.AccessUniformReadBit), vk.ImageLayoutUndefined},
	TessellationControlShaderReadSampledImageOrUniformTexelBuffer: {vk.PipelineStageFlags(vk.PipelineStageTessellationControlShaderBit), vk.AccessFlags(vk.AccessShaderReadBit), vk.ImageLayoutShaderReadOnlyOptimal},
	TessellationControlShaderReadOther:                            {vk.PipelineStageFlags(vk.PipelineStageTessellationControlShaderBit), vk.AccessFlags(vk.AccessShaderReadBit), vk.ImageLayoutGeneral},

	TessellationEvaluationShaderReadUniformBuffer:                    {vk.PipelineStageFlags(vk.PipelineStageTessellationEvaluationShaderBit), vk.AccessFlags(vk.AccessUniformReadBit), vk.ImageLayoutUndefined},
	TessellationEvaluationShaderReadSampledImageOrUniformTexelBuffer: {vk.PipelineStageFlags(vk.PipelineStageTessellationEvaluationShaderBit), vk.AccessFlags(vk.AccessShaderReadBit), vk.ImageLayoutShaderReadOnlyOptimal},
	TessellationEvaluationShaderReadOther:                            {vk.PipelineStageFlags(vk.PipelineStageTessellationEvaluationShaderBit), vk.AccessFlags(vk.AccessShaderReadBit), vk.ImageLayoutGeneral},

	GeometryShaderReadUniformBuffer:                    {vk.PipelineStageFlags(vk.PipelineStageGeometryShaderBit), vk.AccessFlags(vk.AccessUniformReadBit), vk.ImageLayoutUndefined},
	GeometryShaderReadSampledImageOrUniformTexelBuffer: {vk.PipelineStageFlags(vk.PipelineStageGeometryShaderBit), vk.AccessFlags(vk.AccessShaderReadBit), vk.ImageLayoutShaderReadOnlyOptimal},
	GeometryShaderReadOther:                            {vk.PipelineStageFlags(vk.PipelineStageGeometryShaderBit), vk.AccessFlags(vk.AccessShaderReadBit), vk.ImageLayoutGeneral},

	FragmentShaderReadUniformBuffer:                    {vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit), vk.AccessFlags(vk.AccessUniformReadBit), vk.ImageLayoutUndefined},
	FragmentShaderReadSampledImageOrUniformTexelBuffer: {vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit), vk.AccessFlags(vk.AccessShaderReadBit), vk.ImageLayoutShaderReadOnlyOptimal},
	FragmentShaderReadColorInputAttachment:             {vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit), vk.AccessFlags(vk.AccessInputAttachmentReadBit), vk.ImageLayoutShaderReadOnlyOptimal},
	FragmentShaderReadDepthStencilInputAttachment:      {vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit), vk.AccessFlags(vk.AccessInputAttachmentReadBit), vk.ImageLayoutDepthStencilReadOnlyOptimal},
	FragmentShaderReadOther:                            {vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit), vk.AccessFlags(vk.AccessShaderReadBit), vk.ImageLayoutGeneral},
	ColorAttachmentRead:                                {vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit), vk.AccessFlags(vk.AccessColorAttachmentReadBit), vk.ImageLayoutColorAttachmentOptimal},
	DepthStencilAttachmentRead:                          {vk.PipelineStageFlags(vk.PipelineStageEarlyFragmentTestsBit) | vk.PipelineStageFlags(vk.PipelineStageLateFragmentTestsBit), vk.AccessFlags(vk.AccessDepthStencilAttachmentReadBit), vk.ImageLayoutDepthStencilReadOnlyOptimal},

	ComputeShaderReadUniformBuffer:                    {vk.PipelineStageFlags(vk.PipelineStageComputeShaderBit), vk.AccessFlags(vk.AccessUniformReadBit), vk.ImageLayoutUndefined},
	ComputeShaderReadSampledImageOrUniformTexelBuffer: {vk.PipelineStageFlags(vk.PipelineStageComputeShaderBit), vk.AccessFlags(vk.AccessShaderReadBit), vk.ImageLayoutShaderReadOnlyOptimal},
	ComputeShaderReadOther:                            {vk.PipelineStageFlags(vk.PipelineStageComputeShaderBit), vk.AccessFlags(vk.AccessShaderReadBit), vk.ImageLayoutGeneral},

	AnyShaderReadUniformBuffer:                    {vk.PipelineStageFlags(vk.PipelineStageAllCommandsBit), vk.AccessFlags(vk.AccessUniformReadBit), vk.ImageLayoutUndefined},
	AnyShaderReadUniformBufferOrVertexBuffer:      {vk.PipelineStageFlags(vk.PipelineStageAllCommandsBit), vk.AccessFlags(vk.AccessUniformReadBit) | vk.AccessFlags(vk.AccessVertexAttributeReadBit), vk.ImageLayoutUndefined},
	AnyShaderReadSampledImageOrUniformTexelBuffer: {vk.PipelineStageFlags(vk.PipelineStageAllCommandsBit), vk.AccessFlags(vk.AccessShaderReadBit), vk.ImageLayoutShaderReadOnlyOptimal},
	AnyShaderReadOther:                            {vk.PipelineStageFlags(vk.PipelineStageAllCommandsBit), vk.AccessFlags(vk.AccessShaderReadBit), vk.ImageLayoutGeneral},

	TransferRead: {vk.PipelineStageFlags(vk.PipelineStageTransferBit), vk.AccessFlags(vk.AccessTransferReadBit), vk.ImageLayoutTransferSrcOptimal},
	HostRead:     {vk.PipelineStageFlags(vk.PipelineStageHostBit), vk.AccessFlags(vk.AccessHostReadBit), vk.ImageLayoutGeneral},
	Present:      {0, 0, vk.ImageLayoutPresentSrc},

	EndOfReadAccess: {0, 0, vk.ImageLayoutUndefined},

	VertexShaderWrite:                   {vk.PipelineStageFlags(vk.PipelineStageVertexShaderBit), vk.AccessFlags(vk.AccessShaderWriteBit), vk.ImageLayoutGeneral},
	TessellationControlShaderWrite:      {vk.PipelineStageFlags(vk.PipelineStageTessellationControlShaderBit), vk.AccessFlags(vk.AccessShaderWriteBit), vk.ImageLayoutGeneral},
	TessellationEvaluationShaderWrite:   {vk.PipelineStageFlags(vk.PipelineStageTessellationEvaluationShaderBit), vk.AccessFlags(vk.AccessShaderWriteBit), vk.ImageLayoutGeneral},
	GeometryShaderWrite:                 {vk.PipelineStageFlags(vk.PipelineStageGeometryShaderBit), vk.AccessFlags(vk.AccessShaderWriteBit), vk.ImageLayoutGeneral},
	FragmentShaderWrite:                 {vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit), vk.AccessFlags(vk.AccessShaderWriteBit), vk.ImageLayoutGeneral},
	ColorAttachmentWrite:                {vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit), vk.AccessFlags(vk.AccessColorAttachmentWriteBit), vk.ImageLayoutColorAttachmentOptimal},
	DepthStencilAttachmentWrite:         {vk.PipelineStageFlags(vk.PipelineStageEarlyFragmentTestsBit) | vk.PipelineStageFlags(vk.PipelineStageLateFragmentTestsBit), vk.AccessFlags(vk.AccessDepthStencilAttachmentWriteBit), vk.ImageLayoutDepthStencilAttachmentOptimal},
	DepthAttachmentWriteStencilReadOnly: {vk.PipelineStageFlags(vk.PipelineStageEarlyFragmentTestsBit) | vk.PipelineStageFlags(vk.PipelineStageLateFragmentTestsBit), vk.AccessFlags(vk.AccessDepthStencilAttachmentWriteBit) | vk.AccessFlags(vk.AccessDepthStencilAttachmentReadBit), vk.ImageLayoutDepthStencilReadOnlyOptimal},
	StencilAttachmentWriteDepthReadOnly: {vk.PipelineStageFlags(vk.PipelineStageEarlyFragmentTestsBit) | vk.PipelineStageFlags(vk.PipelineStageLateFragmentTestsBit), vk.AccessFlags(vk.AccessDepthStencilAttachmentWriteBit) | vk.AccessFlags(vk.AccessDepthStencilAttachmentReadBit), vk.ImageLayoutDepthStencilReadOnlyOptimal},

	ComputeShaderWrite:  {vk.PipelineStageFlags(vk.PipelineStageComputeShaderBit), vk.AccessFlags(vk.AccessShaderWriteBit), vk.ImageLayoutGeneral},
	AnyShaderWrite:      {vk.PipelineStageFlags(vk.PipelineStageAllCommandsBit), vk.AccessFlags(vk.AccessShaderWriteBit), vk.ImageLayoutGeneral},
	TransferWrite:       {vk.PipelineStageFlags(vk.PipelineStageTransferBit), vk.AccessFlags(vk.AccessTransferWriteBit), vk.ImageLayoutTransferDstOptimal},
	HostPreinitialized:  {vk.PipelineStageFlags(vk.PipelineStageHostBit), vk.AccessFlags(vk.AccessHostWriteBit), vk.ImageLayoutPreinitialized},
	HostWrite:           {vk.PipelineStageFlags(vk.PipelineStageHostBit), vk.AccessFlags(vk.AccessHostWriteBit), vk.ImageLayoutGeneral},

	ColorAttachmentReadWrite: {vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit), vk.AccessFlags(vk.AccessColorAttachmentReadBit) | vk.AccessFlags(vk.AccessColorAttachmentWriteBit), vk.ImageLayoutColorAttachmentOptimal},

	General: {vk.PipelineStageFlags(vk.PipelineStageAllCommandsBit), vk.AccessFlags(vk.AccessMemoryReadBit) | vk.AccessFlags(vk.AccessMemoryWriteBit), vk.ImageLayoutGeneral},
}

// AccessInfo is the {stage mask, access mask, image layout, has-write}
// tuple the Access Table maps a set of access types to.
type AccessInfo struct {
	StageMask  vk.PipelineStageFlags
	AccessMask vk.AccessFlags
	Layout     vk.ImageLayout
	HasWrite   bool
}

// GetAccessInfo OR-combines stage/access masks across accesses and
// returns the single layout they imply. It panics (a ContractViolation
// upstream) if accesses mixes more than one write, or a write with any
// other access, or if the accesses disagree on image layout — the same
// hazard/mixed-layout checks the synchronization table's reference
// implementation gates behind debug-only asserts, promoted here to
// always-on checks since this module has no concept of a non-debug
// build.
func GetAccessInfo(accesses []AccessType) AccessInfo {
	var info AccessInfo
	layout := vk.ImageLayoutUndefined
	layoutSet := false

	for _, access := range accesses {
		if access >= numAccessTypes {
			panic("vksync: access type out of range")
		}
		if access.IsWrite() && len(accesses) != 1 {
			panic("vksync: write access must not be combined with any other access")
		}

		entry := accessMap[access]
		info.StageMask |= entry.stageMask
		info.AccessMask |= entry.accessMask
		if access.IsWrite() {
			info.HasWrite = true
		}

		if access == None {
			continue
		}
		if layoutSet && layout != entry.imageLayout {
			panic("vksync: mixed image layouts in access set")
		}
		layout = entry.imageLayout
		layoutSet = true
	}

	info.Layout = layout
	return info
}

// VkImageLayout returns the single Vulkan layout a lone access type
// implies (used by barrier construction below, where prev/next sets
// are frequently a single access).
func VkImageLayout(access AccessType) vk.ImageLayout {
	return accessMap[access].imageLayout
}
