package compression_test

import (
	"bytes"
	"crypto/rand"
	"io"
	"testing"

	c "github.com/dargueta/myfs/utilities/compression"
	"github.com/noxer/bytewriter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressRLE8__Basic(t *testing.T) {
	tests := []struct {
		Name           string
		Input          []byte
		ExpectedOutput []byte
	}{
		{"empty", []byte{}, []byte{}},
		{"run with two only", []byte{4, 4}, []byte{4, 4, 0}},
		{"no runs", []byte{0, 1, 2, 3, 4}, []byte{0, 1, 2, 3, 4}},
		{"three at end", []byte{6, 1, 0, 0, 0}, []byte{6, 1, 0, 0, 1}},
		{
			"adjacent runs",
			[]byte{9, 5, 5, 5, 5, 5, 5, 3, 3, 3, 3, 7, 2, 6},
			[]byte{9, 5, 5, 4, 3, 3, 2, 7, 2, 6},
		},
		{
			"single long run",
			bytes.Repeat([]byte{5}, 1024),
			[]byte{5, 5, 255, 5, 5, 255, 5, 5, 255, 5, 5, 251},
		},
		{"257", bytes.Repeat([]byte{8}, 257), []byte{8, 8, 255}},
		{"258", bytes.Repeat([]byte{8}, 258), []byte{8, 8, 255, 8}},
		{"259", bytes.Repeat([]byte{8}, 259), []byte{8, 8, 255, 8, 8, 0}},
		{
			"cursor",
			[]byte("0000\x00\x00\x00\x00\x00"),
			[]byte{'0', '0', 2, 0, 0, 3},
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.Name, func(t *testing.T) {
			outputBuffer := make([]byte, len(test.ExpectedOutput)*2)
			n, err := c.CompressRLE8(bytes.NewReader(test.Input), bytewriter.New(outputBuffer))
			require.NoError(t, err)
			assert.EqualValues(t, len(test.ExpectedOutput), n, "wrong number of bytes written")
			assert.Equal(t, test.ExpectedOutput, outputBuffer[:n])
		})
	}
}

func TestRLE8RoundTrip(t *testing.T) {
	randomData := make([]byte, 1852)
	rand.Read(randomData)

	tests := map[string][]byte{
		"random":      randomData,
		"nulls":       make([]byte, 571),
		"non-null":    bytes.Repeat([]byte{182}, 934),
		"empty":       {},
		"split group": append(bytes.Repeat([]byte{1}, 258), 1, 2, 2),
	}

	for name, originalData := range tests {
		originalData := originalData
		t.Run(name, func(t *testing.T) {
			// Random data can come out larger than it went in.
			compressedBuffer := make([]byte, len(originalData)*2)
			n, err := c.CompressRLE8(
				bytes.NewReader(originalData), bytewriter.New(compressedBuffer))
			require.NoError(t, err, "unexpected error while compressing")
			t.Logf("compressed %d to %d", len(originalData), n)

			outputBuffer := make([]byte, len(originalData))
			n, err = c.DecompressRLE8(
				bytes.NewReader(compressedBuffer[:n]), bytewriter.New(outputBuffer))
			require.NoError(t, err, "unexpected error while decompressing")
			assert.EqualValues(t, len(originalData), n, "decompressed size is wrong")
			assert.Equal(t, originalData, outputBuffer)
		})
	}
}

func TestRLE8Decompress__MissingRepeatCount(t *testing.T) {
	data := []byte{9, 1, 4, 4}
	decompressed := make([]byte, 16)

	_, err := c.DecompressRLE8(bytes.NewReader(data), bytewriter.New(decompressed))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}
