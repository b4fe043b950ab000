package myfsv3

import (
	"bytes"

	c "github.com/dargueta/myfs/file_systems/common"
	log "github.com/sirupsen/logrus"
)

// Mount makes the volume available. If the device doesn't hold a version 3
// volume, it's formatted first, destroying whatever was on it. A device with a
// valid header is accepted as-is; use [Driver.Check] to validate the rest.
//
// Mounting an already mounted volume does nothing.
func (driver *Driver) Mount() error {
	driver.lock.Lock()
	defer driver.lock.Unlock()

	if driver.isMounted {
		return nil
	}

	header, err := driver.newVolume().readHeader()
	if err != nil {
		return err
	}

	if !header.IsValid() {
		driver.logger.WithFields(log.Fields{
			"magic":   string(bytes.TrimRight(header.Magic[:], "\x00")),
			"version": header.Version,
		}).Info("did not find a volume on the device, creating one")

		err = driver.format()
		if err != nil {
			return err
		}
		driver.logger.Info("finished formatting")
	}

	driver.isMounted = true
	return nil
}

// Format discards the contents of the device and creates an empty volume on it.
// The volume is mounted afterwards.
func (driver *Driver) Format() error {
	driver.lock.Lock()
	defer driver.lock.Unlock()

	err := driver.format()
	if err != nil {
		return err
	}
	driver.isMounted = true
	return nil
}

func (driver *Driver) format() error {
	geometry := driver.geometry

	return driver.commit(func(v *volume) error {
		err := v.writeHeader(NewHeader())
		if err != nil {
			return err
		}

		// Only the root directory's slot is in use.
		alloc := c.NewAllocator(geometry.UsableInodes())
		err = alloc.MarkAllocated(c.UnitID(RootInumber))
		if err != nil {
			return err
		}
		slotMap := bytes.Repeat([]byte{c.SlotFree}, int(geometry.InodeCount))
		err = v.writeSlotMap(&alloc, slotMap)
		if err != nil {
			return err
		}

		// Block 0 holds the inode table, so its cursor is never used.
		err = v.cache.Write(geometry.BlockOffset(InodeTableBlock), make([]byte, CursorWidth))
		if err != nil {
			return err
		}
		err = v.cache.Write(
			geometry.PayloadOffset(InodeTableBlock),
			make([]byte, geometry.UsableInodes()*InodeSize),
		)
		if err != nil {
			return err
		}
		err = v.writeInode(RootInumber, NewRootInode(geometry))
		if err != nil {
			return err
		}

		for block := DirectoryBlock; uint(block) < geometry.BlockCount; block++ {
			err = v.cache.Write(geometry.BlockOffset(block), []byte("0000"))
			if err != nil {
				return err
			}
		}

		driver.logger.WithFields(log.Fields{
			"inodes":          geometry.InodeCount,
			"usable_inodes":   geometry.UsableInodes(),
			"blocks":          geometry.BlockCount,
			"bytes_per_block": geometry.BytesPerBlock,
		}).Debug("formatted volume")
		return nil
	})
}
