package myfsv3

import (
	"fmt"

	"github.com/dargueta/myfs"
	c "github.com/dargueta/myfs/file_systems/common"
	"github.com/dargueta/myfs/file_systems/common/blockcache"
)

// volume gives typed access to the regions of a volume through a staging cache.
// A volume lives for exactly one operation: everything it reads comes from the
// device as of the start of the operation (plus whatever the operation itself
// staged), and nothing it writes reaches the device until the cache is flushed.
type volume struct {
	geometry Geometry
	cache    *blockcache.BlockCache
}

func (v *volume) readHeader() (RawHeader, error) {
	var header RawHeader
	raw, err := v.cache.Read(0, HeaderSize)
	if err != nil {
		return header, err
	}
	err = header.UnmarshalBinary(raw)
	return header, err
}

func (v *volume) writeHeader(header RawHeader) error {
	raw, err := header.MarshalBinary()
	if err != nil {
		return myfs.CastToDriverError(err)
	}
	return v.cache.Write(0, raw)
}

func (v *volume) readSlotMap() ([]byte, error) {
	return v.cache.Read(v.geometry.BitmapOffset(), v.geometry.InodeCount)
}

// loadAllocator builds an inode allocator from the slot map. The raw slot map
// is returned as well so it can be written back after allocating.
func (v *volume) loadAllocator() (c.Allocator, []byte, error) {
	slotMap, err := v.readSlotMap()
	if err != nil {
		return c.Allocator{}, nil, err
	}

	alloc, err := c.NewAllocatorFromSlotMap(slotMap, v.geometry.UsableInodes())
	return alloc, slotMap, err
}

func (v *volume) writeSlotMap(alloc *c.Allocator, slotMap []byte) error {
	err := alloc.WriteSlotMap(slotMap)
	if err != nil {
		return err
	}
	return v.cache.Write(v.geometry.BitmapOffset(), slotMap)
}

func (v *volume) checkInumber(inumber Inumber) error {
	if uint(inumber) >= v.geometry.UsableInodes() {
		return myfs.ErrFileSystemCorrupted.WithMessage(
			fmt.Sprintf(
				"inode %d not in range [0, %d)",
				inumber,
				v.geometry.UsableInodes(),
			),
		)
	}
	return nil
}

func (v *volume) readInode(inumber Inumber) (RawInode, error) {
	var inode RawInode
	err := v.checkInumber(inumber)
	if err != nil {
		return inode, err
	}

	raw, err := v.cache.Read(v.geometry.InodeOffset(inumber), InodeSize)
	if err != nil {
		return inode, err
	}
	err = inode.UnmarshalBinary(raw)
	return inode, err
}

func (v *volume) writeInode(inumber Inumber, inode RawInode) error {
	err := v.checkInumber(inumber)
	if err != nil {
		return err
	}

	raw, err := inode.MarshalBinary()
	if err != nil {
		return myfs.CastToDriverError(err)
	}
	return v.cache.Write(v.geometry.InodeOffset(inumber), raw)
}

// readRootInode loads the root inode and makes sure its directory list is where
// it's supposed to be and has a sane size.
func (v *volume) readRootInode() (RawInode, error) {
	root, err := v.readInode(RootInumber)
	if err != nil {
		return root, err
	}

	if !root.IsDir() {
		return root, myfs.ErrFileSystemCorrupted.WithMessage(
			fmt.Sprintf("root inode has type %d, expected a directory", root.Type))
	}
	if int64(root.Addrs[0]) != v.geometry.RootDirectoryOffset() {
		return root, myfs.ErrFileSystemCorrupted.WithMessage(
			fmt.Sprintf(
				"root directory is at offset %d, expected %d",
				root.Addrs[0],
				v.geometry.RootDirectoryOffset(),
			),
		)
	}
	if root.Size%DirentSize != 0 || uint(root.Size) > v.geometry.MaxDirents()*DirentSize {
		return root, myfs.ErrFileSystemCorrupted.WithMessage(
			fmt.Sprintf("root directory has invalid size %d", root.Size))
	}
	return root, nil
}

// readDirents returns every entry in the root directory, in the order they were
// created.
func (v *volume) readDirents(root RawInode) ([]RawDirent, error) {
	raw, err := v.cache.Read(int64(root.Addrs[0]), uint(root.Size))
	if err != nil {
		return nil, err
	}

	dirents := make([]RawDirent, 0, len(raw)/DirentSize)
	for start := 0; start < len(raw); start += DirentSize {
		var dirent RawDirent
		err = dirent.UnmarshalBinary(raw[start : start+DirentSize])
		if err != nil {
			return nil, myfs.CastToDriverError(err)
		}
		dirents = append(dirents, dirent)
	}
	return dirents, nil
}

func (v *volume) appendDirent(root *RawInode, dirent RawDirent) error {
	if uint(root.Size)+DirentSize > v.geometry.MaxDirents()*DirentSize {
		return myfs.ErrDirectoryFull.WithMessage(
			fmt.Sprintf("all %d entries are in use", v.geometry.MaxDirents()))
	}

	raw, err := dirent.MarshalBinary()
	if err != nil {
		return myfs.CastToDriverError(err)
	}

	err = v.cache.Write(int64(root.Addrs[0])+int64(root.Size), raw)
	if err != nil {
		return err
	}
	root.Size += DirentSize
	return v.writeInode(RootInumber, *root)
}

// lookup finds the entry named `name` and loads its inode. If there's no such
// entry, it returns [myfs.ErrNotFound].
func (v *volume) lookup(name string) (Inumber, RawInode, error) {
	root, err := v.readRootInode()
	if err != nil {
		return 0, RawInode{}, err
	}

	dirents, err := v.readDirents(root)
	if err != nil {
		return 0, RawInode{}, err
	}

	for _, dirent := range dirents {
		if dirent.NameString() == name {
			inumber := Inumber(dirent.Inumber)
			inode, err := v.readInode(inumber)
			return inumber, inode, err
		}
	}
	return 0, RawInode{}, myfs.ErrNotFound.WithMessage(name)
}

func (v *volume) checkDataBlock(block BlockIndex) error {
	if block < FirstAllocatableBlock || uint(block) >= v.geometry.BlockCount {
		return myfs.ErrFileSystemCorrupted.WithMessage(
			fmt.Sprintf(
				"block %d not in range [%d, %d)",
				block,
				FirstAllocatableBlock,
				v.geometry.BlockCount,
			),
		)
	}
	return nil
}

func (v *volume) readCursor(block BlockIndex) (uint, error) {
	raw, err := v.cache.Read(v.geometry.BlockOffset(block), CursorWidth)
	if err != nil {
		return 0, err
	}

	cursor, err := DecodeCursor(raw)
	if err != nil {
		return 0, myfs.CastToDriverError(err).WithMessage(fmt.Sprintf("block %d", block))
	}
	if cursor > v.geometry.PayloadSize() {
		return 0, myfs.ErrFileSystemCorrupted.WithMessage(
			fmt.Sprintf(
				"block %d cursor %d is past the end of the %d-byte payload",
				block,
				cursor,
				v.geometry.PayloadSize(),
			),
		)
	}
	return cursor, nil
}

func (v *volume) writeCursor(block BlockIndex, cursor uint) error {
	raw, err := EncodeCursor(cursor)
	if err != nil {
		return err
	}
	return v.cache.Write(v.geometry.BlockOffset(block), raw)
}

// extentBounds checks that a file's extent lies inside its block's payload and
// returns the absolute offset of its first byte.
func (v *volume) extentBounds(inode RawInode) (int64, error) {
	err := v.checkDataBlock(inode.Block)
	if err != nil {
		return 0, err
	}

	if inode.ExtentStart() < 0 || inode.ExtentEnd() > int64(v.geometry.PayloadSize()) {
		return 0, myfs.ErrFileSystemCorrupted.WithMessage(
			fmt.Sprintf(
				"extent [%d, %d) of block %d doesn't fit in the %d-byte payload",
				inode.ExtentStart(),
				inode.ExtentEnd(),
				inode.Block,
				v.geometry.PayloadSize(),
			),
		)
	}
	return v.geometry.PayloadOffset(inode.Block) + inode.ExtentStart(), nil
}
