package common

import (
	"fmt"
	"io"

	"github.com/dargueta/myfs"
	"github.com/xaionaro-go/bytesextra"
)

// BlockDevice is a linear, fixed-size array of bytes that can be read from and
// written to at arbitrary offsets. Implementations must fail any access that
// would extend past the end of the device, and must do so before touching any
// data.
type BlockDevice interface {
	// Size gives the total size of the device, in bytes.
	Size() int64
	// Read returns exactly `length` bytes beginning at `offset`.
	Read(offset int64, length uint) ([]byte, error)
	// Write overwrites len(data) bytes beginning at `offset`.
	Write(offset int64, data []byte) error
}

// StreamDevice is a [BlockDevice] on top of a seekable stream, e.g. an image
// file. The size of the device is fixed at construction; the stream must
// already be at least that large or be able to grow on write.
type StreamDevice struct {
	stream io.ReadWriteSeeker
	size   int64
}

// NewStreamDevice creates a device of `size` bytes backed by `stream`.
func NewStreamDevice(stream io.ReadWriteSeeker, size int64) *StreamDevice {
	return &StreamDevice{stream: stream, size: size}
}

// NewMemoryDevice creates a zero-filled in-memory device of the given size.
func NewMemoryDevice(size int64) *StreamDevice {
	return NewMemoryDeviceFromBytes(make([]byte, size))
}

// NewMemoryDeviceFromBytes creates an in-memory device that uses `data` as its
// storage. Writes to the device are visible in `data`, and vice versa.
func NewMemoryDeviceFromBytes(data []byte) *StreamDevice {
	return NewStreamDevice(bytesextra.NewReadWriteSeeker(data), int64(len(data)))
}

// Size implements [BlockDevice].
func (device *StreamDevice) Size() int64 {
	return device.size
}

// CheckIOBounds checks to see if `length` bytes can be read from or written to
// the device starting at `offset`. If the bounds check fails, it returns an
// error indicating exactly what went wrong.
func (device *StreamDevice) CheckIOBounds(offset int64, length uint) error {
	if offset < 0 {
		return myfs.ErrInvalidArgument.WithMessage(
			fmt.Sprintf("invalid offset %d: must be non-negative", offset))
	}
	if offset > device.size || uint64(device.size-offset) < uint64(length) {
		return myfs.ErrInvalidArgument.WithMessage(
			fmt.Sprintf(
				"can't access %d bytes at offset %d; range not in [0, %d)",
				length,
				offset,
				device.size,
			),
		)
	}
	return nil
}

// Read implements [BlockDevice].
func (device *StreamDevice) Read(offset int64, length uint) ([]byte, error) {
	err := device.CheckIOBounds(offset, length)
	if err != nil {
		return nil, err
	}

	_, err = device.stream.Seek(offset, io.SeekStart)
	if err != nil {
		return nil, myfs.ErrIOFailed.Wrap(err)
	}

	buffer := make([]byte, length)
	_, err = io.ReadFull(device.stream, buffer)
	if err != nil {
		return nil, myfs.ErrIOFailed.Wrap(err)
	}
	return buffer, nil
}

// Write implements [BlockDevice].
func (device *StreamDevice) Write(offset int64, data []byte) error {
	err := device.CheckIOBounds(offset, uint(len(data)))
	if err != nil {
		return err
	}

	_, err = device.stream.Seek(offset, io.SeekStart)
	if err != nil {
		return myfs.ErrIOFailed.Wrap(err)
	}

	nWritten, err := device.stream.Write(data)
	if err != nil {
		return myfs.ErrIOFailed.Wrap(err)
	} else if nWritten != len(data) {
		return myfs.ErrIOFailed.WithMessage(
			fmt.Sprintf("short write: expected %dB, wrote %d", len(data), nWritten))
	}
	return nil
}

// EnsureStreamSize grows `stream` to at least `size` bytes. Streams that are
// already large enough are left alone; growing a stream requires it to
// implement [Truncator].
func EnsureStreamSize(stream io.ReadWriteSeeker, size int64) error {
	currentSize, err := stream.Seek(0, io.SeekEnd)
	if err != nil {
		return myfs.ErrIOFailed.Wrap(err)
	}
	if currentSize >= size {
		return nil
	}

	truncator, ok := stream.(Truncator)
	if !ok {
		return myfs.ErrNotSupported.WithMessage(
			fmt.Sprintf(
				"stream is %d bytes, need %d, and it can't be resized",
				currentSize,
				size,
			),
		)
	}

	err = truncator.Truncate(size)
	if err != nil {
		return myfs.ErrIOFailed.Wrap(err)
	}
	return nil
}
