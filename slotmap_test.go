package vkframegraph

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlotMapInsertGet(t *testing.T) {
	m := NewSlotMap[string]()
	h := m.Insert("hello")

	v, ok := m.Get(h)
	require.True(t, ok)
	require.Equal(t, "hello", v)
}

func TestSlotMapStaleHandleAfterRemove(t *testing.T) {
	m := NewSlotMap[int]()
	h := m.Insert(42)

	require.True(t, m.Remove(h))

	_, ok := m.Get(h)
	require.False(t, ok, "handle should be stale after Remove")
}

func TestSlotMapGenerationAdvancesOnReuse(t *testing.T) {
	m := NewSlotMap[int]()
	h1 := m.Insert(1)
	require.True(t, m.Remove(h1))

	h2 := m.Insert(2)
	require.Equal(t, h1.Index, h2.Index, "freed slot should be recycled")
	require.NotEqual(t, h1.Generation, h2.Generation, "generation must advance so h1 stays stale")

	_, ok := m.Get(h1)
	require.False(t, ok)

	v2, ok := m.Get(h2)
	require.True(t, ok)
	require.Equal(t, 2, v2)
}

func TestSlotMapInvalidIndexOutOfRange(t *testing.T) {
	m := NewSlotMap[int]()
	_, ok := m.Get(Handle{Index: 99, Generation: 1})
	require.False(t, ok)
}

func TestSlotMapItemsOnlyReturnsOccupied(t *testing.T) {
	m := NewSlotMap[int]()
	h1 := m.Insert(1)
	_ = m.Insert(2)
	m.Remove(h1)

	items := m.Items()
	require.Len(t, items, 1)
	require.Equal(t, 2, items[0].Value)
}

func TestSlotMapClearInvalidatesAllHandles(t *testing.T) {
	m := NewSlotMap[int]()
	h := m.Insert(1)
	m.Clear()

	_, ok := m.Get(h)
	require.False(t, ok)
	require.Equal(t, 0, m.Len())
}
