package common_test

import (
	"testing"

	"github.com/dargueta/myfs"
	c "github.com/dargueta/myfs/file_systems/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocator__FromSlotMap__FirstFit(t *testing.T) {
	alloc, err := c.NewAllocatorFromSlotMap([]byte("1101"), 4)
	require.NoError(t, err)
	assert.EqualValues(t, 3, alloc.CountAllocated())

	unit, err := alloc.AllocateSingle()
	require.NoError(t, err)
	assert.EqualValues(t, 2, unit, "should've picked the first free slot")

	_, err = alloc.AllocateSingle()
	assert.ErrorIs(t, err, myfs.ErrNoSpaceOnDevice)
}

func TestAllocator__FromSlotMap__IgnoresUnusableTail(t *testing.T) {
	slotMap := []byte("10000")
	alloc, err := c.NewAllocatorFromSlotMap(slotMap, 2)
	require.NoError(t, err)

	unit, err := alloc.AllocateSingle()
	require.NoError(t, err)
	assert.EqualValues(t, 1, unit)

	_, err = alloc.AllocateSingle()
	assert.Error(t, err, "slots past the usable range must never be allocated")
	assert.False(t, alloc.IsAllocated(4))

	require.NoError(t, alloc.WriteSlotMap(slotMap))
	assert.Equal(t, "11000", string(slotMap))
}

func TestAllocator__FromSlotMap__RejectsGarbage(t *testing.T) {
	_, err := c.NewAllocatorFromSlotMap([]byte("10x0"), 4)
	assert.ErrorIs(t, err, myfs.ErrFileSystemCorrupted)

	// Garbage past the managed range doesn't matter.
	_, err = c.NewAllocatorFromSlotMap([]byte("10\x00\x00"), 2)
	assert.NoError(t, err)

	_, err = c.NewAllocatorFromSlotMap([]byte("10"), 3)
	assert.ErrorIs(t, err, myfs.ErrInvalidArgument)
}

func TestAllocator__MarkAllocated(t *testing.T) {
	alloc := c.NewAllocator(8)
	require.NoError(t, alloc.MarkAllocated(0))
	require.NoError(t, alloc.MarkAllocated(0), "marking twice should be fine")
	assert.True(t, alloc.IsAllocated(0))
	assert.EqualValues(t, 1, alloc.CountAllocated())

	assert.ErrorIs(t, alloc.MarkAllocated(8), myfs.ErrInvalidArgument)

	slotMap := make([]byte, 8)
	require.NoError(t, alloc.WriteSlotMap(slotMap))
	assert.Equal(t, "10000000", string(slotMap))

	assert.ErrorIs(t, alloc.WriteSlotMap(make([]byte, 7)), myfs.ErrInvalidArgument)
}
