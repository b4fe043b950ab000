package myfsv3

import (
	"bytes"
	"encoding/binary"

	"github.com/noxer/bytewriter"
)

const (
	TypeFile      = uint8(0)
	TypeDirectory = uint8(1)
)

// RawInode is the on-disk representation of an inode.
type RawInode struct {
	Block BlockIndex
	Type  uint8
	_     [3]byte
	Size  uint32
	Addrs [NumAddresses]int32
}

// NewInode returns an empty, unwritten inode of the given type.
func NewInode(isDir bool) RawInode {
	inode := RawInode{Type: TypeFile}
	if isDir {
		inode.Type = TypeDirectory
	}
	return inode
}

// NewRootInode returns the root directory's inode for an empty volume.
func NewRootInode(geometry Geometry) RawInode {
	return RawInode{
		Block: InodeTableBlock,
		Type:  TypeDirectory,
		Addrs: [NumAddresses]int32{int32(geometry.RootDirectoryOffset())},
	}
}

func (inode RawInode) IsDir() bool {
	return inode.Type == TypeDirectory
}

// HasExtent returns true if content has ever been written to the inode. A file
// that has never been written isn't backed by any block.
func (inode RawInode) HasExtent() bool {
	return inode.Block >= FirstAllocatableBlock
}

// ExtentStart gives the offset of the file's content relative to the start of
// its block's payload.
func (inode RawInode) ExtentStart() int64 {
	return int64(inode.Addrs[0])
}

// ExtentEnd gives the offset one past the file's terminator, relative to the
// start of its block's payload.
func (inode RawInode) ExtentEnd() int64 {
	return inode.ExtentStart() + int64(inode.Size) + 1
}

func (inode RawInode) MarshalBinary() ([]byte, error) {
	buffer := make([]byte, InodeSize)
	err := binary.Write(bytewriter.New(buffer), binary.LittleEndian, &inode)
	return buffer, err
}

func (inode *RawInode) UnmarshalBinary(data []byte) error {
	return binary.Read(bytes.NewReader(data), binary.LittleEndian, inode)
}
