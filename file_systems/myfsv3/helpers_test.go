package myfsv3_test

import (
	"testing"

	"github.com/dargueta/myfs/file_systems/myfsv3"
	myfstest "github.com/dargueta/myfs/testing"
	log "github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// smallGeometry gives a volume with two allocatable blocks of 256 bytes each,
// small enough to fill up in a few writes.
var smallGeometry = myfsv3.Geometry{InodeCount: 8, BlockCount: 4, BytesPerBlock: 260}

type fixture struct {
	driver  *myfsv3.Driver
	backing []byte
	hook    *logtest.Hook
}

// newMountedDriver creates a blank device for `geometry` and mounts a driver on
// it, which formats it. Log entries from mounting are discarded.
func newMountedDriver(t *testing.T, geometry myfsv3.Geometry) fixture {
	device, backing := myfstest.NewBlankDevice(t, geometry.TotalSize())

	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(log.DebugLevel)

	driver, err := myfsv3.NewDriver(device, geometry, myfsv3.WithLogger(logger))
	require.NoError(t, err)
	require.NoError(t, driver.Mount())

	hook.Reset()
	return fixture{driver: driver, backing: backing, hook: hook}
}

// copyImage returns a copy of the device's current contents.
func (f fixture) copyImage() []byte {
	image := make([]byte, len(f.backing))
	copy(image, f.backing)
	return image
}

// cursor returns the raw cursor of a block as stored on disk.
func (f fixture) cursor(geometry myfsv3.Geometry, block myfsv3.BlockIndex) string {
	offset := geometry.BlockOffset(block)
	return string(f.backing[offset : offset+myfsv3.CursorWidth])
}

func (f fixture) createFile(t *testing.T, path string) {
	created, err := f.driver.CreateFile(path, false)
	require.NoErrorf(t, err, "failed to create %q", path)
	require.Truef(t, created, "%q already existed", path)
}

func (f fixture) mustWrite(t *testing.T, path, content string) {
	require.NoErrorf(t, f.driver.SetContent(path, content), "failed to write to %q", path)
}

func (f fixture) assertContent(t *testing.T, path, expected string) {
	content, err := f.driver.GetContent(path)
	if assert.NoErrorf(t, err, "failed to read %q", path) {
		assert.Equalf(t, expected, content, "content of %q is wrong", path)
	}
}

// logged returns the messages of all log entries at `level`.
func (f fixture) logged(level log.Level) []string {
	messages := []string{}
	for _, entry := range f.hook.AllEntries() {
		if entry.Level == level {
			messages = append(messages, entry.Message)
		}
	}
	return messages
}
