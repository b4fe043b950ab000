package myfsv3

import (
	"errors"

	"github.com/dargueta/myfs"
)

// GetContent returns the content of the file at `path`. Files that have never
// been written are empty.
func (driver *Driver) GetContent(path string) (string, error) {
	name, err := NormalizeName(path)
	if err != nil {
		return "", err
	}

	content := ""
	err = driver.view(func(v *volume) error {
		_, inode, err := v.lookup(name)
		if err != nil {
			if errors.Is(err, myfs.ErrNotFound) {
				driver.logger.WithField("path", path).Warn("no such file or directory")
			}
			return err
		}

		if inode.IsDir() {
			return myfs.ErrIsADirectory.WithMessage(name)
		}
		if !inode.HasExtent() {
			if inode.Size != 0 {
				return myfs.ErrFileSystemCorrupted.WithMessage(
					"file has a size but no block: " + name)
			}
			return nil
		}

		offset, err := v.extentBounds(inode)
		if err != nil {
			return err
		}

		// The stored content includes its terminator, which isn't part of the
		// file.
		raw, err := v.cache.Read(offset, uint(inode.Size)+1)
		if err != nil {
			return err
		}
		content = string(raw[:inode.Size])
		return nil
	})
	return content, err
}
