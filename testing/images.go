package testing

import (
	"bytes"
	"testing"

	c "github.com/dargueta/myfs/file_systems/common"
	"github.com/dargueta/myfs/utilities/compression"
	"github.com/stretchr/testify/require"
)

// NewBlankDevice creates a zero-filled in-memory device of `size` bytes and
// returns it along with the slice backing it, so tests can inspect raw bytes.
func NewBlankDevice(t *testing.T, size int64) (*c.StreamDevice, []byte) {
	require.Greater(t, size, int64(0), "device size must be positive")
	backing := make([]byte, size)
	return c.NewMemoryDeviceFromBytes(backing), backing
}

// LoadDiskImage takes a compressed disk image and returns a device to access
// the uncompressed data.
//
//   - Writes to the device do not affect `compressedImageBytes`.
//   - The device's size is fixed to `expectedSize`. The test fails immediately
//     if the image doesn't decompress to exactly that many bytes.
func LoadDiskImage(
	t *testing.T, compressedImageBytes []byte, expectedSize int64,
) (*c.StreamDevice, []byte) {
	require.Greater(t, len(compressedImageBytes), 0, "compressed image is empty")

	imageBytes, err := compression.DecompressImageToBytes(
		bytes.NewReader(compressedImageBytes))
	require.NoError(t, err)

	require.EqualValues(
		t,
		expectedSize,
		len(imageBytes),
		"uncompressed image is wrong size",
	)
	return c.NewMemoryDeviceFromBytes(imageBytes), imageBytes
}

// SnapshotImage compresses a raw image, failing the test on error.
func SnapshotImage(t *testing.T, image []byte) []byte {
	compressed, err := compression.CompressImageToBytes(bytes.NewReader(image))
	require.NoError(t, err, "failed to compress image")
	return compressed
}
