package myfsv3

import (
	"bytes"
	"fmt"
	"io"

	"github.com/dargueta/myfs"
	"github.com/dargueta/myfs/utilities/compression"
)

// ExportSnapshot writes a compressed copy of the whole volume to `output`. The
// volume doesn't need to be mounted.
func (driver *Driver) ExportSnapshot(output io.Writer) error {
	driver.lock.Lock()
	defer driver.lock.Unlock()

	image, err := driver.newVolume().cache.Read(0, uint(driver.geometry.TotalSize()))
	if err != nil {
		return err
	}

	_, err = compression.CompressImage(bytes.NewReader(image), output)
	if err != nil {
		return myfs.ErrIOFailed.Wrap(err)
	}
	return nil
}

// ImportSnapshot replaces the volume with one previously saved with
// [Driver.ExportSnapshot]. The snapshot must have been taken of a volume with
// the same geometry. The volume is mounted afterwards.
func (driver *Driver) ImportSnapshot(input io.Reader) error {
	image, err := compression.DecompressImageToBytes(input)
	if err != nil {
		return myfs.ErrIOFailed.Wrap(err)
	}

	if int64(len(image)) != driver.geometry.TotalSize() {
		return myfs.ErrInvalidArgument.WithMessage(
			fmt.Sprintf(
				"snapshot is %d bytes, volume is %d",
				len(image),
				driver.geometry.TotalSize(),
			),
		)
	}

	var header RawHeader
	err = header.UnmarshalBinary(image[:HeaderSize])
	if err != nil {
		return myfs.CastToDriverError(err)
	}
	if !header.IsValid() {
		return myfs.ErrFileSystemCorrupted.WithMessage("snapshot doesn't contain a volume")
	}

	driver.lock.Lock()
	defer driver.lock.Unlock()

	err = driver.commit(func(v *volume) error {
		return v.cache.Write(0, image)
	})
	if err != nil {
		return err
	}
	driver.isMounted = true
	return nil
}
