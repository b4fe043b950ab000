// Package blockcache provides a sector-oriented cache that sits between a file
// system driver and its device. Reads are served from the cache, loading
// sectors on demand; writes only modify the cache until [BlockCache.Flush] is
// called. Dropping a cache without flushing it discards every pending change,
// which is how drivers abort an operation halfway through.
//
// All sector indices begin at 0. Offsets are always byte offsets from the
// beginning of the device.

package blockcache

import (
	"fmt"

	"github.com/boljen/go-bitmap"
	"github.com/dargueta/myfs"
	c "github.com/dargueta/myfs/file_systems/common"
)

// FetchSectorCallback is a pointer to a function that writes the contents of a
// single sector from the backing storage into `buffer`. The following
// guarantees apply:
//
//   - `sector` is in the range [0, TotalSectors).
//   - `buffer` is BytesPerSector bytes, except for the last sector of a device
//     whose size isn't a multiple of the sector size. In that case it's only as
//     long as the remaining part of the device.
type FetchSectorCallback func(sector c.LogicalSector, buffer []byte) error

// FlushSectorCallback is a pointer to a function that writes the contents of
// the given buffer to a sector in the backing storage. All restrictions and
// guarantees in [FetchSectorCallback] apply here too.
type FlushSectorCallback func(sector c.LogicalSector, buffer []byte) error

type BlockCache struct {
	loadedSectors  bitmap.Bitmap
	dirtySectors   bitmap.Bitmap
	fetch          FetchSectorCallback
	flush          FlushSectorCallback
	bytesPerSector uint
	totalSectors   uint
	size           int64
	data           []byte
}

// New creates a new BlockCache covering `size` bytes, split into sectors of
// `bytesPerSector` bytes.
func New(
	bytesPerSector uint,
	size int64,
	fetchCb FetchSectorCallback,
	flushCb FlushSectorCallback,
) *BlockCache {
	totalSectors := uint((size + int64(bytesPerSector) - 1) / int64(bytesPerSector))

	return &BlockCache{
		loadedSectors:  bitmap.New(int(totalSectors)),
		dirtySectors:   bitmap.New(int(totalSectors)),
		data:           make([]byte, size),
		fetch:          fetchCb,
		flush:          flushCb,
		bytesPerSector: bytesPerSector,
		totalSectors:   totalSectors,
		size:           size,
	}
}

// WrapDevice creates a [BlockCache] over an entire [common.BlockDevice].
func WrapDevice(device c.BlockDevice, bytesPerSector uint) *BlockCache {
	offsetOf := func(sector c.LogicalSector) int64 {
		return int64(sector) * int64(bytesPerSector)
	}

	fetchCb := func(sector c.LogicalSector, buffer []byte) error {
		data, err := device.Read(offsetOf(sector), uint(len(buffer)))
		if err != nil {
			return err
		}
		copy(buffer, data)
		return nil
	}

	flushCb := func(sector c.LogicalSector, buffer []byte) error {
		return device.Write(offsetOf(sector), buffer)
	}

	return New(bytesPerSector, device.Size(), fetchCb, flushCb)
}

// BytesPerSector returns the size of a single sector, in bytes.
func (cache *BlockCache) BytesPerSector() uint {
	return cache.bytesPerSector
}

// TotalSectors returns the size of the cache, in sectors. The last sector may
// be partial.
func (cache *BlockCache) TotalSectors() uint {
	return cache.totalSectors
}

// Size gives the size of the cache, in bytes (not sectors!).
func (cache *BlockCache) Size() int64 {
	return cache.size
}

// checkBounds verifies that `length` bytes can be accessed in the cache
// starting from byte `offset`. If not, it returns an error describing the exact
// conditions. If no error would occur, this returns nil.
func (cache *BlockCache) checkBounds(offset int64, length uint) error {
	if offset < 0 || offset > cache.size || uint64(cache.size-offset) < uint64(length) {
		return myfs.ErrInvalidArgument.WithMessage(
			fmt.Sprintf(
				"can't access %d bytes at offset %d; range not in [0, %d)",
				length,
				offset,
				cache.size,
			),
		)
	}
	return nil
}

// sectorSpan gives the first sector and the number of sectors touched by
// `length` bytes starting at `offset`. Zero-length accesses touch no sectors.
func (cache *BlockCache) sectorSpan(offset int64, length uint) (c.LogicalSector, uint) {
	if length == 0 {
		return 0, 0
	}
	first := offset / int64(cache.bytesPerSector)
	last := (offset + int64(length) - 1) / int64(cache.bytesPerSector)
	return c.LogicalSector(first), uint(last-first) + 1
}

// sectorSlice returns the part of the cache's storage holding one sector. The
// slice is shorter than a full sector only for a trailing partial sector.
func (cache *BlockCache) sectorSlice(sector c.LogicalSector) []byte {
	start := int64(sector) * int64(cache.bytesPerSector)
	end := start + int64(cache.bytesPerSector)
	if end > cache.size {
		end = cache.size
	}
	return cache.data[start:end]
}

// loadSectorRange ensures that all sectors in the range [start, start + count)
// are present in the cache, and loads any missing ones from storage.
func (cache *BlockCache) loadSectorRange(start c.LogicalSector, count uint) error {
	for sector := int(start); uint(sector) < uint(start)+count; sector++ {
		// Skip if the sector is in the cache. Since dirty sectors are present by
		// definition, we don't need to check `dirtySectors`.
		if cache.loadedSectors.Get(sector) {
			continue
		}

		err := cache.fetch(c.LogicalSector(sector), cache.sectorSlice(c.LogicalSector(sector)))
		if err != nil {
			return myfs.ErrIOFailed.Wrap(
				fmt.Errorf("failed to load sector %d from source: %w", sector, err))
		}

		// Mark the sector as present and clean.
		cache.loadedSectors.Set(sector, true)
		cache.dirtySectors.Set(sector, false)
	}
	return nil
}

// ReadAt fills `buffer` with data beginning at byte `offset`, loading any
// missing sectors first.
//
// Attempting to read past the end of the cache will result in an error, and
// `buffer` will be left unmodified.
func (cache *BlockCache) ReadAt(buffer []byte, offset int64) (int, error) {
	err := cache.checkBounds(offset, uint(len(buffer)))
	if err != nil {
		return 0, err
	}

	err = cache.loadSectorRange(cache.sectorSpan(offset, uint(len(buffer))))
	if err != nil {
		return 0, err
	}
	return copy(buffer, cache.data[offset:]), nil
}

// Read is a convenience wrapper around [BlockCache.ReadAt] that allocates the
// buffer itself.
func (cache *BlockCache) Read(offset int64, length uint) ([]byte, error) {
	buffer := make([]byte, length)
	_, err := cache.ReadAt(buffer, offset)
	if err != nil {
		return nil, err
	}
	return buffer, nil
}

// WriteAt copies `data` into the cache beginning at byte `offset`. All
// modified sectors are marked as dirty; nothing reaches the backing storage
// until [BlockCache.Flush] is called.
//
// Sectors only partially covered by `data` are loaded first so that flushing
// them doesn't clobber the bytes around the write. Attempting to write past
// the end of the cache will result in an error, and the cache will be left
// unmodified.
func (cache *BlockCache) WriteAt(data []byte, offset int64) (int, error) {
	err := cache.checkBounds(offset, uint(len(data)))
	if err != nil {
		return 0, err
	}

	start, count := cache.sectorSpan(offset, uint(len(data)))
	err = cache.loadSectorRange(start, count)
	if err != nil {
		return 0, err
	}

	n := copy(cache.data[offset:], data)
	for i := uint(0); i < count; i++ {
		cache.dirtySectors.Set(int(start)+int(i), true)
	}
	return n, nil
}

// Write is [BlockCache.WriteAt] without the byte count.
func (cache *BlockCache) Write(offset int64, data []byte) error {
	_, err := cache.WriteAt(data, offset)
	return err
}

// IsDirty returns true if any sector has changes that haven't been flushed.
func (cache *BlockCache) IsDirty() bool {
	for i := 0; i < int(cache.totalSectors); i++ {
		if cache.dirtySectors.Get(i) {
			return true
		}
	}
	return false
}

// Flush writes out all dirty sectors (and only dirty sectors) to the
// underlying storage in ascending order, marking each one clean once it's
// written.
func (cache *BlockCache) Flush() error {
	for sector := 0; sector < int(cache.totalSectors); sector++ {
		// Skip if the sector is clean. This also skips over sectors that
		// aren't loaded, since missing sectors are considered clean.
		if !cache.dirtySectors.Get(sector) {
			continue
		}

		err := cache.flush(c.LogicalSector(sector), cache.sectorSlice(c.LogicalSector(sector)))
		if err != nil {
			return myfs.ErrIOFailed.Wrap(
				fmt.Errorf("failed to flush sector %d to storage: %w", sector, err))
		}
		cache.dirtySectors.Set(sector, false)
	}
	return nil
}

// Discard throws away every change that hasn't been flushed. The next read of
// a discarded sector fetches it from storage again.
func (cache *BlockCache) Discard() {
	for sector := 0; sector < int(cache.totalSectors); sector++ {
		if cache.dirtySectors.Get(sector) {
			cache.dirtySectors.Set(sector, false)
			cache.loadedSectors.Set(sector, false)
		}
	}
}
