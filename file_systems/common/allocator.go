// Slot map allocator

package common

import (
	"fmt"

	"github.com/boljen/go-bitmap"
	"github.com/dargueta/myfs"
)

type UnitID uint32

// On-disk characters of a slot map, one per unit.
const (
	SlotFree  = byte('0')
	SlotInUse = byte('1')
)

type Allocator struct {
	AllocationBitmap bitmap.Bitmap
	TotalUnits       uint
}

// NewAllocator creates a new allocation bitmap with all bits cleared.
func NewAllocator(totalUnits uint) Allocator {
	return Allocator{
		AllocationBitmap: bitmap.New(int(totalUnits)),
		TotalUnits:       totalUnits,
	}
}

// NewAllocatorFromSlotMap creates an allocator from an ASCII slot map, where
// each byte is [SlotFree] or [SlotInUse]. Only the first `usableUnits` slots are
// managed; anything after that is ignored and is never allocated. Any byte other
// than the two slot characters in the managed range is treated as corruption.
func NewAllocatorFromSlotMap(slotMap []byte, usableUnits uint) (Allocator, error) {
	if usableUnits > uint(len(slotMap)) {
		msg := fmt.Sprintf(
			"can't manage %d units with a slot map of %d bytes",
			usableUnits,
			len(slotMap),
		)
		return Allocator{}, myfs.ErrInvalidArgument.WithMessage(msg)
	}

	alloc := NewAllocator(usableUnits)
	for i := 0; i < int(usableUnits); i++ {
		switch slotMap[i] {
		case SlotInUse:
			alloc.AllocationBitmap.Set(i, true)
		case SlotFree:
		default:
			msg := fmt.Sprintf("slot %d has invalid marker %#02x", i, slotMap[i])
			return Allocator{}, myfs.ErrFileSystemCorrupted.WithMessage(msg)
		}
	}
	return alloc, nil
}

// AllocateSingle allocates the first available unit it finds and returns its
// index. If no units are available, it returns an error.
func (alloc *Allocator) AllocateSingle() (UnitID, error) {
	for i := uint(0); i < alloc.TotalUnits; i++ {
		if !alloc.AllocationBitmap.Get(int(i)) {
			alloc.AllocationBitmap.Set(int(i), true)
			return UnitID(i), nil
		}
	}

	return 0, myfs.ErrNoSpaceOnDevice.WithMessage(
		fmt.Sprintf("all %d units are allocated", alloc.TotalUnits))
}

// MarkAllocated marks a single unit as in use, e.g. a reserved unit during
// formatting. Marking an allocated unit again is not an error.
func (alloc *Allocator) MarkAllocated(unit UnitID) error {
	if uint(unit) >= alloc.TotalUnits {
		msg := fmt.Sprintf(
			"invalid unit id: %d not in range [0, %d)",
			unit,
			alloc.TotalUnits)
		return myfs.ErrInvalidArgument.WithMessage(msg)
	}
	alloc.AllocationBitmap.Set(int(unit), true)
	return nil
}

// IsAllocated returns true if the unit is in use. Units outside the managed
// range are reported as not allocated.
func (alloc *Allocator) IsAllocated(unit UnitID) bool {
	if uint(unit) >= alloc.TotalUnits {
		return false
	}
	return alloc.AllocationBitmap.Get(int(unit))
}

// CountAllocated returns the number of units in use.
func (alloc *Allocator) CountAllocated() uint {
	count := uint(0)
	for i := 0; i < int(alloc.TotalUnits); i++ {
		if alloc.AllocationBitmap.Get(i) {
			count++
		}
	}
	return count
}

// WriteSlotMap serializes the allocation state into `slotMap` as ASCII slot
// characters. Bytes past the managed range are left untouched, so a slot map
// read from disk can be written back with only the managed slots changed.
func (alloc *Allocator) WriteSlotMap(slotMap []byte) error {
	if uint(len(slotMap)) < alloc.TotalUnits {
		msg := fmt.Sprintf(
			"slot map must be at least %d bytes, got %d",
			alloc.TotalUnits,
			len(slotMap),
		)
		return myfs.ErrInvalidArgument.WithMessage(msg)
	}

	for i := 0; i < int(alloc.TotalUnits); i++ {
		if alloc.AllocationBitmap.Get(i) {
			slotMap[i] = SlotInUse
		} else {
			slotMap[i] = SlotFree
		}
	}
	return nil
}
