package vkctx

import (
	vk "github.com/vulkan-go/vulkan"
)

// DescriptorSetManager owns one descriptor pool and hands out
// descriptor sets against caller-supplied layouts. A framegraph task
// that needs a descriptor set for a sampled texture or uniform buffer
// goes through the Context it was built against rather than creating
// its own pool, so every task's sets are freed together on Destroy
// instead of leaking one pool per task. Grounded on the same
// vk.CreateDescriptorSetLayout/vk.CreateDescriptorPool pattern the
// buffer helpers below it in this package already use.
type DescriptorSetManager struct {
	device vk.Device
	pool   vk.DescriptorPool
}

// defaultDescriptorPoolMaxSets bounds how many descriptor sets a
// Context's lazily-created pool can hand out, enough for a handful
// of framegraph tasks each binding a texture and a uniform buffer
// without the pool needing to grow.
const defaultDescriptorPoolMaxSets = 64

// defaultDescriptorPoolSizes covers the two binding kinds the
// framegraph's own buffer/pipeline helpers create: combined image
// samplers for the textures a task reads, and uniform buffers for the
// per-frame data GraphicsPipeline binds alongside them.
func defaultDescriptorPoolSizes(maxSets uint32) []vk.DescriptorPoolSize {
	return []vk.DescriptorPoolSize{
		{Type: vk.DescriptorTypeCombinedImageSampler, DescriptorCount: maxSets},
		{Type: vk.DescriptorTypeUniformBuffer, DescriptorCount: maxSets},
	}
}

func newDescriptorSetManager(device vk.Device, maxSets uint32) (*DescriptorSetManager, error) {
	var pool vk.DescriptorPool
	ret := vk.CreateDescriptorPool(device, &vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		MaxSets:       maxSets,
		PoolSizeCount: uint32(len(defaultDescriptorPoolSizes(maxSets))),
		PPoolSizes:    defaultDescriptorPoolSizes(maxSets),
	}, nil, &pool)
	if ret != vk.Success {
		return nil, NewError(ret)
	}
	return &DescriptorSetManager{device: device, pool: pool}, nil
}

// Allocate returns one descriptor set from the pool, bound to layout.
func (m *DescriptorSetManager) Allocate(layout vk.DescriptorSetLayout) (vk.DescriptorSet, error) {
	var set vk.DescriptorSet
	ret := vk.AllocateDescriptorSets(m.device, &vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     m.pool,
		DescriptorSetCount: 1,
		PSetLayouts:        []vk.DescriptorSetLayout{layout},
	}, &set)
	if ret != vk.Success {
		return vk.DescriptorSet(vk.NullHandle), NewError(ret)
	}
	return set, nil
}

// Free hands set back to the pool. The pool is created without
// vk.DescriptorPoolCreateFreeDescriptorSetBit, so Vulkan does not
// permit freeing individual sets from it; the result of
// vkFreeDescriptorSets is discarded. Destroy releases every set
// together with the pool.
func (m *DescriptorSetManager) Free(set vk.DescriptorSet) {
	vk.FreeDescriptorSets(m.device, m.pool, 1, []vk.DescriptorSet{set})
}

// Destroy releases the underlying descriptor pool and every set
// allocated from it.
func (m *DescriptorSetManager) Destroy() {
	if m.pool != vk.DescriptorPool(vk.NullHandle) {
		vk.DestroyDescriptorPool(m.device, m.pool, nil)
		m.pool = vk.DescriptorPool(vk.NullHandle)
	}
}
