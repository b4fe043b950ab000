package myfsv3_test

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/dargueta/myfs"
	"github.com/dargueta/myfs/file_systems/myfsv3"
	myfstest "github.com/dargueta/myfs/testing"
	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// populate creates a few files and directories with content.
func populate(t *testing.T, f fixture) {
	f.createFile(t, "/a")
	f.createFile(t, "/b")
	_, err := f.driver.CreateFile("/dir", true)
	require.NoError(t, err)
	f.createFile(t, "/empty")

	f.mustWrite(t, "/a", "first")
	f.mustWrite(t, "/b", "second")
	f.mustWrite(t, "/a", "rewritten")
}

func countProblems(t *testing.T, err error) int {
	var merr *multierror.Error
	require.True(t, errors.As(err, &merr), "expected a multierror, got %v", err)
	return len(merr.Errors)
}

func TestCheck__Clean(t *testing.T) {
	f := newMountedDriver(t, myfsv3.DefaultGeometry)
	assert.NoError(t, f.driver.Check(), "fresh volume")

	populate(t, f)
	assert.NoError(t, f.driver.Check(), "populated volume")
}

func TestCheck__NotAVolume(t *testing.T) {
	device, backing := myfstest.NewBlankDevice(t, myfsv3.DefaultGeometry.TotalSize())
	driver, err := myfsv3.NewDriver(device, myfsv3.DefaultGeometry)
	require.NoError(t, err)

	err = driver.Check()
	assert.ErrorIs(t, err, myfs.ErrFileSystemCorrupted)
	assert.Equal(t, 1, countProblems(t, err))
	assert.Equal(t, make([]byte, len(backing)), backing, "check modified the device")
}

func TestCheck__Corruption(t *testing.T) {
	geometry := myfsv3.DefaultGeometry

	tests := []struct {
		Name    string
		Corrupt func(backing []byte)
	}{
		{
			"bad slot marker",
			func(backing []byte) { backing[5+10] = 'x' },
		},
		{
			"root slot free",
			func(backing []byte) { backing[5] = '0' },
		},
		{
			"entry refers to free inode",
			func(backing []byte) { backing[5+1] = '0' },
		},
		{
			"allocated inode without entry",
			func(backing []byte) { backing[5+50] = '1' },
		},
		{
			"unusable slot in use",
			func(backing []byte) { backing[5+130] = '1' },
		},
		{
			"garbage cursor",
			func(backing []byte) { copy(backing[geometry.BlockOffset(7):], "1x\x00\x00") },
		},
		{
			"cursor past payload",
			func(backing []byte) { copy(backing[geometry.BlockOffset(7):], "5000") },
		},
		{
			"extent past cursor",
			func(backing []byte) { copy(backing[geometry.BlockOffset(2):], "1\x00\x00\x00") },
		},
		{
			"missing terminator",
			func(backing []byte) {
				// Block 2 holds "first\x00second\x00rewritten\x00".
				backing[geometry.PayloadOffset(2)+12] = '!'
			},
		},
		{
			"duplicate name",
			func(backing []byte) {
				// Rename the second entry to match the first.
				copy(backing[geometry.RootDirectoryOffset()+myfsv3.DirentSize:], "a\x00")
			},
		},
		{
			"entry refers to root",
			func(backing []byte) {
				backing[geometry.RootDirectoryOffset()+myfsv3.DirentSize-1] = 0
			},
		},
		{
			"directory with content",
			func(backing []byte) {
				// "/dir" is inode 3.
				binary.LittleEndian.PutUint32(backing[geometry.InodeOffset(3)+8:], 12)
			},
		},
		{
			"bad inode type",
			func(backing []byte) { backing[geometry.InodeOffset(4)+4] = 7 },
		},
		{
			"extent outside payload",
			func(backing []byte) {
				binary.LittleEndian.PutUint32(backing[geometry.InodeOffset(1)+12:], 4095)
			},
		},
		{
			"file in reserved block",
			func(backing []byte) {
				binary.LittleEndian.PutUint32(backing[geometry.InodeOffset(1):], 1)
			},
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.Name, func(t *testing.T) {
			f := newMountedDriver(t, geometry)
			populate(t, f)
			test.Corrupt(f.backing)
			image := f.copyImage()

			err := f.driver.Check()
			assert.ErrorIs(t, err, myfs.ErrFileSystemCorrupted)
			assert.GreaterOrEqual(t, countProblems(t, err), 1)
			assert.Equal(t, image, f.backing, "check modified the device")
		})
	}
}

func TestCheck__ReportsEverything(t *testing.T) {
	geometry := myfsv3.DefaultGeometry
	f := newMountedDriver(t, geometry)
	populate(t, f)

	f.backing[5+50] = '1'
	f.backing[5+51] = '1'
	copy(f.backing[geometry.BlockOffset(9):], "zzzz")

	assert.Equal(t, 3, countProblems(t, f.driver.Check()))
}

// A corrupted root inode is reported by regular operations too, not just Check.
func TestOperations__CorruptedRoot(t *testing.T) {
	geometry := myfsv3.DefaultGeometry
	f := newMountedDriver(t, geometry)
	populate(t, f)
	binary.LittleEndian.PutUint32(f.backing[geometry.InodeOffset(0)+12:], 0)

	_, err := f.driver.ListDir("/")
	assert.ErrorIs(t, err, myfs.ErrFileSystemCorrupted)
	_, err = f.driver.GetContent("/a")
	assert.ErrorIs(t, err, myfs.ErrFileSystemCorrupted)
	_, err = f.driver.CreateFile("/new", false)
	assert.ErrorIs(t, err, myfs.ErrFileSystemCorrupted)
}
