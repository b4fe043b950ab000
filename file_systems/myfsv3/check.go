package myfsv3

import (
	"fmt"

	"github.com/dargueta/myfs"
	c "github.com/dargueta/myfs/file_systems/common"
	"github.com/hashicorp/go-multierror"
)

// Check validates every structure on the volume without modifying anything,
// and returns all the problems it finds. Every problem is an
// [myfs.ErrFileSystemCorrupted]. The volume doesn't need to be mounted, and a
// device that doesn't hold a volume at all is reported as a single problem.
func (driver *Driver) Check() error {
	driver.lock.Lock()
	defer driver.lock.Unlock()

	checker := consistencyChecker{v: driver.newVolume()}
	return checker.run()
}

type consistencyChecker struct {
	v        *volume
	problems *multierror.Error
}

func (checker *consistencyChecker) report(err error) {
	checker.problems = multierror.Append(checker.problems, err)
}

func (checker *consistencyChecker) reportf(format string, args ...interface{}) {
	checker.report(myfs.ErrFileSystemCorrupted.WithMessage(fmt.Sprintf(format, args...)))
}

func (checker *consistencyChecker) run() error {
	header, err := checker.v.readHeader()
	if err != nil {
		return err
	}
	if !header.IsValid() {
		checker.reportf("bad header: %q version %d", header.Magic[:], header.Version)
		return checker.problems.ErrorOrNil()
	}

	alloc, ok := checker.checkSlotMap()
	cursors := checker.checkCursors()

	root, err := checker.v.readRootInode()
	if err != nil {
		// Without the directory there's nothing left to cross-check.
		checker.report(err)
		return checker.problems.ErrorOrNil()
	}
	dirents, err := checker.v.readDirents(root)
	if err != nil {
		return err
	}

	referenced := make(map[Inumber]string, len(dirents))
	for i, dirent := range dirents {
		name := dirent.NameString()
		inumber := Inumber(dirent.Inumber)

		if name == "" {
			checker.reportf("directory entry %d has an empty name", i)
		}
		if other, exists := referenced[inumber]; exists {
			checker.reportf("inode %d is referenced by both %q and %q", inumber, other, name)
			continue
		}
		for _, seen := range referenced {
			if seen == name {
				checker.reportf("name %q appears more than once", name)
			}
		}
		referenced[inumber] = name

		if inumber == RootInumber || uint(inumber) >= checker.v.geometry.UsableInodes() {
			checker.reportf("entry %q refers to invalid inode %d", name, inumber)
			continue
		}
		if ok && !alloc.IsAllocated(c.UnitID(inumber)) {
			checker.reportf("entry %q refers to free inode %d", name, inumber)
		}
		checker.checkFileInode(name, inumber, cursors)
	}

	if ok {
		for i := uint(1); i < alloc.TotalUnits; i++ {
			if _, exists := referenced[Inumber(i)]; alloc.IsAllocated(c.UnitID(i)) && !exists {
				checker.reportf("inode %d is in use but no entry refers to it", i)
			}
		}
	}
	return checker.problems.ErrorOrNil()
}

// checkSlotMap validates the inode slot map. The allocator is only usable if
// `ok` is true.
func (checker *consistencyChecker) checkSlotMap() (c.Allocator, bool) {
	alloc, slotMap, err := checker.v.loadAllocator()
	if err != nil {
		checker.report(err)
		return alloc, false
	}

	if !alloc.IsAllocated(c.UnitID(RootInumber)) {
		checker.reportf("root inode is marked free")
	}
	for i := alloc.TotalUnits; i < uint(len(slotMap)); i++ {
		if slotMap[i] != c.SlotFree {
			checker.reportf("unusable inode slot %d has marker %#02x", i, slotMap[i])
		}
	}
	return alloc, true
}

// checkCursors validates every data block's cursor, and returns the cursors of
// the allocatable blocks. Blocks with invalid cursors are left out.
func (checker *consistencyChecker) checkCursors() map[BlockIndex]uint {
	cursors := make(map[BlockIndex]uint, checker.v.geometry.BlockCount)
	for block := DirectoryBlock; uint(block) < checker.v.geometry.BlockCount; block++ {
		cursor, err := checker.v.readCursor(block)
		if err != nil {
			checker.report(err)
			continue
		}
		if block >= FirstAllocatableBlock {
			cursors[block] = cursor
		}
	}
	return cursors
}

func (checker *consistencyChecker) checkFileInode(
	name string, inumber Inumber, cursors map[BlockIndex]uint,
) {
	inode, err := checker.v.readInode(inumber)
	if err != nil {
		checker.report(err)
		return
	}

	switch {
	case inode.Type != TypeFile && inode.Type != TypeDirectory:
		checker.reportf("%q (inode %d) has invalid type %d", name, inumber, inode.Type)
	case inode.IsDir() && (inode.Size != 0 || inode.HasExtent()):
		checker.reportf("directory %q (inode %d) has content", name, inumber)
	case !inode.HasExtent() && inode.Size != 0:
		checker.reportf("%q (inode %d) has a size but no block", name, inumber)
	case inode.HasExtent():
		offset, err := checker.v.extentBounds(inode)
		if err != nil {
			checker.report(err)
			return
		}

		cursor, ok := cursors[inode.Block]
		if ok && inode.ExtentEnd() > int64(cursor) {
			checker.reportf(
				"%q (inode %d) ends at %d, past block %d's cursor %d",
				name,
				inumber,
				inode.ExtentEnd(),
				inode.Block,
				cursor,
			)
		}

		terminator, err := checker.v.cache.Read(offset+int64(inode.Size), 1)
		if err != nil {
			checker.report(err)
		} else if terminator[0] != 0 {
			checker.reportf("%q (inode %d) isn't null-terminated", name, inumber)
		}
	}
}
