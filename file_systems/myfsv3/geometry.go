package myfsv3

import (
	"fmt"
	"math"

	"github.com/dargueta/myfs"
)

const Magic = "MYFS"
const Version = uint8(0x03)

const MagicLength = 4
const HeaderSize = MagicLength + 1

// CursorWidth is the size of the used-byte cursor at the start of every block.
const CursorWidth = 4

// MaxCursorValue is the largest number a cursor can hold in CursorWidth ASCII
// digits.
const MaxCursorValue = 9999

const InodeSize = 32
const NumAddresses = 5

// NameLength is the longest name a directory entry can hold, in bytes.
const NameLength = 10
const DirentSize = NameLength + 1

const RootInumber = Inumber(0)

// Blocks with special uses. Files are only ever allocated from blocks at or
// after FirstAllocatableBlock.
const (
	InodeTableBlock       = BlockIndex(0)
	DirectoryBlock        = BlockIndex(1)
	FirstAllocatableBlock = BlockIndex(2)
)

// maxAddressableInodes is the number of distinct inode numbers a directory
// entry can refer to with its single byte.
const maxAddressableInodes = 256

type BlockIndex uint32
type Inumber uint

// Geometry gives the dimensions of a volume. Every region's position is derived
// from these three numbers.
type Geometry struct {
	// InodeCount is the number of slots in the inode slot map.
	InodeCount uint
	// BlockCount is the total number of data blocks, including the two reserved
	// ones.
	BlockCount uint
	// BytesPerBlock is the size of a data block including its cursor.
	BytesPerBlock uint
}

// DefaultGeometry is the geometry of every volume version 3 has ever produced.
var DefaultGeometry = Geometry{
	InodeCount:    132,
	BlockCount:    132,
	BytesPerBlock: 4100,
}

// Validate checks that a volume with this geometry can exist.
func (g Geometry) Validate() error {
	if g.InodeCount < 2 {
		return myfs.ErrInvalidArgument.WithMessage(
			fmt.Sprintf("need at least 2 inodes, got %d", g.InodeCount))
	}
	if g.BlockCount <= uint(FirstAllocatableBlock) {
		return myfs.ErrInvalidArgument.WithMessage(
			fmt.Sprintf(
				"need at least %d blocks, got %d",
				FirstAllocatableBlock+1,
				g.BlockCount,
			),
		)
	}
	if g.BytesPerBlock <= CursorWidth {
		return myfs.ErrInvalidArgument.WithMessage(
			fmt.Sprintf(
				"blocks must be larger than their %d-byte cursor, got %d",
				CursorWidth,
				g.BytesPerBlock,
			),
		)
	}

	payload := g.PayloadSize()
	if payload > MaxCursorValue {
		return myfs.ErrInvalidArgument.WithMessage(
			fmt.Sprintf(
				"block payload of %d bytes can't be tracked by a %d-digit cursor",
				payload,
				CursorWidth,
			),
		)
	}
	if payload < 2*InodeSize {
		return myfs.ErrInvalidArgument.WithMessage(
			fmt.Sprintf(
				"block payload of %d bytes can't hold two inodes", payload))
	}
	if g.MaxDirents() == 0 {
		return myfs.ErrInvalidArgument.WithMessage(
			fmt.Sprintf(
				"block payload of %d bytes can't hold a directory entry", payload))
	}

	// The root inode stores the absolute offset of the directory in an int32,
	// and block indices are stored as uint32.
	if g.TotalSize() > math.MaxInt32 {
		return myfs.ErrFileTooLarge.WithMessage(
			fmt.Sprintf(
				"volume of %d bytes is too large, max is %d",
				g.TotalSize(),
				math.MaxInt32,
			),
		)
	}
	return nil
}

func (g Geometry) BitmapOffset() int64 {
	return HeaderSize
}

// DataRegionOffset is the offset of block 0.
func (g Geometry) DataRegionOffset() int64 {
	return HeaderSize + int64(g.InodeCount)
}

// BlockOffset gives the offset of a block's cursor.
func (g Geometry) BlockOffset(block BlockIndex) int64 {
	return g.DataRegionOffset() + int64(block)*int64(g.BytesPerBlock)
}

// PayloadOffset gives the offset of the first byte after a block's cursor.
func (g Geometry) PayloadOffset(block BlockIndex) int64 {
	return g.BlockOffset(block) + CursorWidth
}

func (g Geometry) PayloadSize() uint {
	return g.BytesPerBlock - CursorWidth
}

func (g Geometry) InodeOffset(inumber Inumber) int64 {
	return g.PayloadOffset(InodeTableBlock) + int64(inumber)*InodeSize
}

// UsableInodes is the number of inode slots that can actually be allocated.
// Slots whose records wouldn't fit in block 0's payload, or that a directory
// entry couldn't refer to, stay free forever.
func (g Geometry) UsableInodes() uint {
	usable := g.InodeCount
	if fit := g.PayloadSize() / InodeSize; fit < usable {
		usable = fit
	}
	if usable > maxAddressableInodes {
		usable = maxAddressableInodes
	}
	return usable
}

// RootDirectoryOffset is the absolute offset of the root directory's entries.
func (g Geometry) RootDirectoryOffset() int64 {
	return g.PayloadOffset(DirectoryBlock)
}

// MaxDirents is the number of entries the root directory can hold.
func (g Geometry) MaxDirents() uint {
	return g.PayloadSize() / DirentSize
}

// TotalSize is the number of bytes a device needs to hold the volume.
func (g Geometry) TotalSize() int64 {
	return g.DataRegionOffset() + int64(g.BlockCount)*int64(g.BytesPerBlock)
}
