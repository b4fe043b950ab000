package myfsv3_test

import (
	"testing"

	"github.com/dargueta/myfs"
	"github.com/dargueta/myfs/file_systems/myfsv3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeCursor(t *testing.T) {
	tests := map[uint]string{
		0:    "0\x00\x00\x00",
		6:    "6\x00\x00\x00",
		42:   "42\x00\x00",
		4096: "4096",
		9999: "9999",
	}
	for value, expected := range tests {
		raw, err := myfsv3.EncodeCursor(value)
		require.NoError(t, err)
		assert.Equal(t, expected, string(raw))
	}

	_, err := myfsv3.EncodeCursor(10000)
	assert.ErrorIs(t, err, myfs.ErrInvalidArgument)
}

func TestDecodeCursor(t *testing.T) {
	valid := map[string]uint{
		"0000":          0,
		"0\x00\x00\x00": 0,
		"6\x00\x00\x00": 6,
		"0042":          42,
		"4096":          4096,
		"5\x0034":       5,
		"12\x009\x00":   12,
	}
	for raw, expected := range valid {
		value, err := myfsv3.DecodeCursor([]byte(raw))
		require.NoErrorf(t, err, "failed to decode %q", raw)
		assert.Equalf(t, expected, value, "wrong value for %q", raw)
	}

	for _, raw := range []string{"\x00\x00\x00\x00", "12a\x00", "\x00123", "-1\x00\x00", "    "} {
		_, err := myfsv3.DecodeCursor([]byte(raw))
		assert.ErrorIsf(t, err, myfs.ErrFileSystemCorrupted, "decoding %q should fail", raw)
	}

	_, err := myfsv3.DecodeCursor([]byte("123"))
	assert.ErrorIs(t, err, myfs.ErrInvalidArgument)
}

func TestRawHeader(t *testing.T) {
	raw, err := myfsv3.NewHeader().MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, []byte("MYFS\x03"), raw)

	var header myfsv3.RawHeader
	require.NoError(t, header.UnmarshalBinary([]byte("MYFS\x02")))
	assert.False(t, header.IsValid(), "wrong version should be rejected")

	require.NoError(t, header.UnmarshalBinary([]byte("MYFS\x03")))
	assert.True(t, header.IsValid())
}

func TestRawInode__RootLayout(t *testing.T) {
	raw, err := myfsv3.NewRootInode(myfsv3.DefaultGeometry).MarshalBinary()
	require.NoError(t, err)

	expected := make([]byte, 32)
	expected[4] = 1 // directory
	// addrs[0] = 4241 = 0x1091, little endian
	expected[12] = 0x91
	expected[13] = 0x10
	assert.Equal(t, expected, raw)
}

func TestRawInode__RoundTrip(t *testing.T) {
	inode := myfsv3.NewInode(false)
	inode.Block = 17
	inode.Size = 1234
	inode.Addrs[0] = 99

	raw, err := inode.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, raw, myfsv3.InodeSize)
	assert.Equal(t, []byte{17, 0, 0, 0, 0, 0, 0, 0, 0xd2, 0x04, 0, 0, 99, 0, 0, 0}, raw[:16])

	var decoded myfsv3.RawInode
	require.NoError(t, decoded.UnmarshalBinary(raw))
	assert.Equal(t, inode, decoded)
	assert.False(t, decoded.IsDir())
	assert.True(t, decoded.HasExtent())
	assert.EqualValues(t, 99, decoded.ExtentStart())
	assert.EqualValues(t, 99+1234+1, decoded.ExtentEnd())
}

func TestRawDirent(t *testing.T) {
	dirent, err := myfsv3.NewDirent("a", 3)
	require.NoError(t, err)

	raw, err := dirent.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, []byte("a\x00\x00\x00\x00\x00\x00\x00\x00\x00\x03"), raw)
	assert.Equal(t, "a", dirent.NameString())

	// Names using the whole field have no terminator.
	dirent, err = myfsv3.NewDirent("0123456789", 255)
	require.NoError(t, err)
	raw, err = dirent.MarshalBinary()
	require.NoError(t, err)

	var decoded myfsv3.RawDirent
	require.NoError(t, decoded.UnmarshalBinary(raw))
	assert.Equal(t, "0123456789", decoded.NameString())
	assert.EqualValues(t, 255, decoded.Inumber)

	_, err = myfsv3.NewDirent("big", 256)
	assert.ErrorIs(t, err, myfs.ErrInvalidArgument)
}

func TestNormalizeName(t *testing.T) {
	valid := map[string]string{
		"/a":          "a",
		"a":           "a",
		"/x/y":        "x/y",
		"//a":         "/a",
		"/0123456789": "0123456789",
		"/with space": "with space",
	}
	for path, expected := range valid {
		name, err := myfsv3.NormalizeName(path)
		require.NoErrorf(t, err, "%q should be valid", path)
		assert.Equal(t, expected, name)
	}

	_, err := myfsv3.NormalizeName("/01234567890")
	assert.ErrorIs(t, err, myfs.ErrNameTooLong)

	for _, path := range []string{"", "/", "/a\x00b"} {
		_, err = myfsv3.NormalizeName(path)
		assert.ErrorIsf(t, err, myfs.ErrInvalidArgument, "%q should be rejected", path)
	}
}
