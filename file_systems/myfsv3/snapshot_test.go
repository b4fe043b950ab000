package myfsv3_test

import (
	"bytes"
	"testing"

	"github.com/dargueta/myfs"
	"github.com/dargueta/myfs/file_systems/myfsv3"
	myfstest "github.com/dargueta/myfs/testing"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot__RoundTrip(t *testing.T) {
	source := newMountedDriver(t, myfsv3.DefaultGeometry)
	populate(t, source)

	snapshot := bytes.Buffer{}
	require.NoError(t, source.driver.ExportSnapshot(&snapshot))
	assert.Less(t, snapshot.Len(), 1024, "snapshot of a nearly empty volume should be tiny")

	device, backing := myfstest.NewBlankDevice(t, myfsv3.DefaultGeometry.TotalSize())
	target, err := myfsv3.NewDriver(device, myfsv3.DefaultGeometry)
	require.NoError(t, err)
	require.NoError(t, target.ImportSnapshot(&snapshot))

	assert.True(t, target.IsMounted())
	assert.Equal(t, source.backing, backing)

	content, err := target.GetContent("/a")
	require.NoError(t, err)
	assert.Equal(t, "rewritten", content)
	assert.NoError(t, target.Check())
}

// A compressed image can be loaded as a device and mounted without being
// reformatted.
func TestSnapshot__LoadAsDevice(t *testing.T) {
	source := newMountedDriver(t, myfsv3.DefaultGeometry)
	populate(t, source)
	compressed := myfstest.SnapshotImage(t, source.backing)

	device, _ := myfstest.LoadDiskImage(t, compressed, myfsv3.DefaultGeometry.TotalSize())
	logger, hook := logtest.NewNullLogger()
	driver, err := myfsv3.NewDriver(device, myfsv3.DefaultGeometry, myfsv3.WithLogger(logger))
	require.NoError(t, err)
	require.NoError(t, driver.Mount())
	assert.Empty(t, hook.AllEntries(), "volume shouldn't have been reformatted")

	entries, err := driver.ListDir("/")
	require.NoError(t, err)
	require.Len(t, entries, 4)
	assert.Equal(t, "dir", entries[2].Name())
	assert.True(t, entries[2].IsDir())
}

func TestSnapshot__Import__Rejects(t *testing.T) {
	f := newMountedDriver(t, myfsv3.DefaultGeometry)
	populate(t, f)
	image := f.copyImage()

	// Not compressed at all.
	err := f.driver.ImportSnapshot(bytes.NewReader(image))
	assert.ErrorIs(t, err, myfs.ErrIOFailed)

	// Wrong size.
	small := newMountedDriver(t, smallGeometry)
	snapshot := bytes.Buffer{}
	require.NoError(t, small.driver.ExportSnapshot(&snapshot))
	err = f.driver.ImportSnapshot(&snapshot)
	assert.ErrorIs(t, err, myfs.ErrInvalidArgument)

	// Right size, but not a volume.
	blank := myfstest.SnapshotImage(t, make([]byte, len(image)))
	err = f.driver.ImportSnapshot(bytes.NewReader(blank))
	assert.ErrorIs(t, err, myfs.ErrFileSystemCorrupted)

	assert.Equal(t, image, f.backing, "failed imports modified the volume")
}
