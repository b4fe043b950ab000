package myfsv3

import (
	"errors"
	"fmt"

	"github.com/dargueta/myfs"
	log "github.com/sirupsen/logrus"
)

// CreateFile adds an empty file or directory named `path` to the root
// directory. A leading slash is ignored.
//
// If an entry with that name already exists, nothing changes and `created` is
// false. This isn't an error.
func (driver *Driver) CreateFile(path string, isDir bool) (bool, error) {
	name, err := NormalizeName(path)
	if err != nil {
		return false, err
	}

	created := false
	err = driver.update(func(v *volume) error {
		_, _, err := v.lookup(name)
		if err == nil {
			driver.logger.WithField("path", path).Info("file already exists")
			return nil
		} else if !errors.Is(err, myfs.ErrNotFound) {
			return err
		}

		root, err := v.readRootInode()
		if err != nil {
			return err
		}
		if uint(root.Size)/DirentSize >= v.geometry.MaxDirents() {
			return myfs.ErrDirectoryFull.WithMessage(
				fmt.Sprintf("can't create %q", name))
		}

		alloc, slotMap, err := v.loadAllocator()
		if err != nil {
			return err
		}
		unit, err := alloc.AllocateSingle()
		if err != nil {
			return myfs.ErrNoFreeInode.WithMessage(
				fmt.Sprintf(
					"can't create %q, all %d inodes are in use",
					name,
					v.geometry.UsableInodes(),
				),
			)
		}
		inumber := Inumber(unit)

		err = v.writeSlotMap(&alloc, slotMap)
		if err != nil {
			return err
		}
		err = v.writeInode(inumber, NewInode(isDir))
		if err != nil {
			return err
		}

		dirent, err := NewDirent(name, inumber)
		if err != nil {
			return err
		}
		err = v.appendDirent(&root, dirent)
		if err != nil {
			return err
		}

		driver.logger.WithFields(log.Fields{
			"path":    path,
			"inode":   inumber,
			"is_dir":  isDir,
			"entries": root.Size / DirentSize,
		}).Debug("created file")
		created = true
		return nil
	})
	return created, err
}
