package compression_test

import (
	"bytes"
	"crypto/rand"
	"testing"

	c "github.com/dargueta/myfs/utilities/compression"
	"github.com/noxer/bytewriter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func imageTestData() map[string][]byte {
	randomData := make([]byte, 119)
	rand.Read(randomData)

	// Looks like a fresh volume: a header, a slot map, and lots of padding.
	volumeLike := make([]byte, 9000)
	copy(volumeLike, "MYFS\x03")
	copy(volumeLike[5:], "1"+string(bytes.Repeat([]byte{'0'}, 131)))

	return map[string][]byte{
		"homogenous":   bytes.Repeat([]byte{100}, 9174),
		"empty":        {},
		"heterogenous": randomData,
		"volume":       volumeLike,
	}
}

func TestImageCompression__RoundTrip__Stream(t *testing.T) {
	for name, sourceData := range imageTestData() {
		sourceData := sourceData
		t.Run(name, func(t *testing.T) {
			compressedBuffer := bytes.Buffer{}
			_, err := c.CompressImage(bytes.NewReader(sourceData), &compressedBuffer)
			require.NoError(t, err, "unexpected error while compressing")
			t.Logf("image size after compression: %d -> %d", len(sourceData), compressedBuffer.Len())

			decompressedBuffer := make([]byte, len(sourceData))
			n, err := c.DecompressImage(&compressedBuffer, bytewriter.New(decompressedBuffer))
			require.NoError(t, err, "unexpected error while decompressing")
			assert.EqualValues(t, len(sourceData), n, "decompressed image has wrong size")
			assert.Equal(t, sourceData, decompressedBuffer, "decompressed data is wrong")
		})
	}
}

func TestImageCompression__RoundTrip__Bytes(t *testing.T) {
	for name, originalData := range imageTestData() {
		originalData := originalData
		t.Run(name, func(t *testing.T) {
			compressed, err := c.CompressImageToBytes(bytes.NewReader(originalData))
			require.NoError(t, err, "error while compressing")

			decompressed, err := c.DecompressImageToBytes(bytes.NewReader(compressed))
			require.NoError(t, err, "error while decompressing")
			assert.Equal(t, len(originalData), len(decompressed), "decompressed data length is wrong")
			assert.True(t, bytes.Equal(originalData, decompressed), "decompressed data is wrong")
		})
	}
}

func TestImageCompression__NotGzip(t *testing.T) {
	_, err := c.DecompressImageToBytes(bytes.NewReader([]byte("MYFS\x03 raw image")))
	assert.Error(t, err)
}
