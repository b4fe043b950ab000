package testing

import (
	"crypto/rand"
	"fmt"
	"testing"

	"github.com/dargueta/myfs"
	c "github.com/dargueta/myfs/file_systems/common"
	"github.com/dargueta/myfs/file_systems/common/blockcache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// CreateRandomImage creates an image of the given size filled with random bytes.
// It is guaranteed to either return a valid slice or fail the test and abort.
func CreateRandomImage(size int64, t *testing.T) []byte {
	backingData := make([]byte, size)

	_, err := rand.Read(backingData)
	require.NoErrorf(t, err, "failed to initialize %d bytes with random data", size)
	return backingData
}

// CreateDefaultCache creates a block cache with fetch/flush handlers that read
// from and write to a byte slice.
//
// Arguments:
//
//   - bytesPerSector: The number of bytes in a single sector.
//   - writable: `true` if the image is writable, `false` otherwise. The handler
//     will fail a test if an attempt is made to flush to the image if this is
//     false.
//   - backingData: The storage the cache sits on top of. Its length determines
//     the size of the cache. Use [CreateRandomImage] for random data.
//   - `t`: The testing fixture.
//
// The fetch and flush handlers check bounds and permissions for you, and fail
// with an appropriate error message. This means you won't be able to test
// negative conditions (i.e. ensure methods fail where they should) with it.
func CreateDefaultCache(
	bytesPerSector uint,
	writable bool,
	backingData []byte,
	t *testing.T,
) *blockcache.BlockCache {
	size := int64(len(backingData))
	totalSectors := (size + int64(bytesPerSector) - 1) / int64(bytesPerSector)

	sectorRange := func(sector c.LogicalSector, buffer []byte) (int64, int64, error) {
		start := int64(sector) * int64(bytesPerSector)
		end := start + int64(len(buffer))
		if int64(sector) >= totalSectors || end > size {
			message := fmt.Sprintf(
				"attempted to access outside bounds: sector %d (%d bytes) not in [0, %d)",
				sector,
				len(buffer),
				totalSectors,
			)
			t.Error(message)
			return 0, 0, myfs.ErrIOFailed.WithMessage(message)
		}
		return start, end, nil
	}

	fetchCallback := func(sector c.LogicalSector, buffer []byte) error {
		start, end, err := sectorRange(sector, buffer)
		if err != nil {
			return err
		}
		copy(buffer, backingData[start:end])
		return nil
	}

	var flushCallback blockcache.FlushSectorCallback
	if writable {
		flushCallback = func(sector c.LogicalSector, buffer []byte) error {
			start, end, err := sectorRange(sector, buffer)
			if err != nil {
				return err
			}
			copy(backingData[start:end], buffer)
			return nil
		}
	} else {
		flushCallback = func(sector c.LogicalSector, buffer []byte) error {
			message := fmt.Sprintf(
				"attempted to write %d bytes to sector %d of read-only image",
				len(buffer),
				sector,
			)
			t.Error(message)
			return myfs.ErrNotSupported.WithMessage(message)
		}
	}

	cache := blockcache.New(bytesPerSector, size, fetchCallback, flushCallback)
	assert.EqualValues(t, bytesPerSector, cache.BytesPerSector(), "wrong bytes per sector")
	assert.EqualValues(t, totalSectors, cache.TotalSectors(), "wrong total sectors")
	assert.EqualValues(t, size, cache.Size(), "total size is wrong")
	return cache
}
