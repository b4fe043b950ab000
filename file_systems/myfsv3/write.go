package myfsv3

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dargueta/myfs"
	log "github.com/sirupsen/logrus"
)

// SetContent replaces the content of the file at `path`.
//
// The new content goes at the end of the first block with enough room for it
// and its terminator. If the file's old content was the last thing appended to
// its block, that space is given back to the block first; otherwise it's left
// behind as a gap that's never reused.
//
// Either the whole write happens or the device isn't touched at all.
func (driver *Driver) SetContent(path string, content string) error {
	name, err := NormalizeName(path)
	if err != nil {
		return err
	}

	if strings.IndexByte(content, 0) >= 0 {
		return myfs.ErrInvalidArgument.WithMessage("content can't contain null bytes")
	}

	needed := uint(len(content)) + 1
	if needed > driver.geometry.PayloadSize() {
		return myfs.ErrOutOfSpace.WithMessage(
			fmt.Sprintf(
				"%d bytes won't fit in a %d-byte block",
				needed,
				driver.geometry.PayloadSize(),
			),
		)
	}

	return driver.update(func(v *volume) error {
		inumber, inode, err := v.lookup(name)
		if err != nil {
			if errors.Is(err, myfs.ErrNotFound) {
				driver.logger.WithField("path", path).Warn("no such file or directory")
			}
			return err
		}
		if inode.IsDir() {
			return myfs.ErrIsADirectory.WithMessage(name)
		}

		err = v.releaseExtent(inode)
		if err != nil {
			return err
		}

		block, cursor, err := v.findBlockWithSpace(needed)
		if err != nil {
			return err
		}

		err = v.cache.Write(
			v.geometry.PayloadOffset(block)+int64(cursor),
			append([]byte(content), 0),
		)
		if err != nil {
			return err
		}
		err = v.writeCursor(block, cursor+needed)
		if err != nil {
			return err
		}

		inode.Size = uint32(len(content))
		inode.Addrs[0] = int32(cursor)
		inode.Block = block
		err = v.writeInode(inumber, inode)
		if err != nil {
			return err
		}

		driver.logger.WithFields(log.Fields{
			"path":   path,
			"inode":  inumber,
			"block":  block,
			"offset": cursor,
			"size":   len(content),
		}).Debug("wrote file")
		return nil
	})
}

// releaseExtent gives a file's space back to its block if the file is the
// block's most recent occupant. Space in the middle of a block can't be
// reclaimed without moving other files, so it's abandoned.
func (v *volume) releaseExtent(inode RawInode) error {
	if !inode.HasExtent() {
		return nil
	}

	_, err := v.extentBounds(inode)
	if err != nil {
		return err
	}

	cursor, err := v.readCursor(inode.Block)
	if err != nil {
		return err
	}
	if int64(cursor) != inode.ExtentEnd() {
		return nil
	}
	return v.writeCursor(inode.Block, uint(inode.ExtentStart()))
}

// findBlockWithSpace returns the first allocatable block with at least `needed`
// free bytes, along with its cursor.
func (v *volume) findBlockWithSpace(needed uint) (BlockIndex, uint, error) {
	payloadSize := v.geometry.PayloadSize()

	for block := FirstAllocatableBlock; uint(block) < v.geometry.BlockCount; block++ {
		cursor, err := v.readCursor(block)
		if err != nil {
			return 0, 0, err
		}
		if payloadSize-cursor >= needed {
			return block, cursor, nil
		}
	}

	return 0, 0, myfs.ErrOutOfSpace.WithMessage(
		fmt.Sprintf("no block has %d bytes free", needed))
}
