package myfsv3

import (
	"fmt"
	"sync"

	"github.com/dargueta/myfs"
	c "github.com/dargueta/myfs/file_systems/common"
	"github.com/dargueta/myfs/file_systems/common/blockcache"
	log "github.com/sirupsen/logrus"
)

// stagingSectorSize is the granularity of the staging cache. It has nothing to
// do with the on-disk format.
const stagingSectorSize = 512

// Driver implements [myfs.Driver] for version 3 volumes. All methods are safe
// to call concurrently; they're serialized internally.
type Driver struct {
	lock      sync.Mutex
	device    c.BlockDevice
	geometry  Geometry
	logger    log.FieldLogger
	isMounted bool
}

var _ myfs.Driver = (*Driver)(nil)

type Option func(driver *Driver)

// WithLogger makes the driver log to `logger` instead of the logrus standard
// logger.
func WithLogger(logger log.FieldLogger) Option {
	return func(driver *Driver) {
		driver.logger = logger
	}
}

// NewDriver creates a driver for the volume on `device`. Nothing is read from
// the device until [Driver.Mount] or [Driver.Format] is called.
func NewDriver(device c.BlockDevice, geometry Geometry, options ...Option) (*Driver, error) {
	err := geometry.Validate()
	if err != nil {
		return nil, err
	}

	if device.Size() < geometry.TotalSize() {
		return nil, myfs.ErrInvalidArgument.WithMessage(
			fmt.Sprintf(
				"device is %d bytes, volume needs %d",
				device.Size(),
				geometry.TotalSize(),
			),
		)
	}

	driver := &Driver{
		device:   device,
		geometry: geometry,
		logger:   log.StandardLogger(),
	}
	for _, option := range options {
		option(driver)
	}
	return driver, nil
}

func (driver *Driver) Geometry() Geometry {
	return driver.geometry
}

func (driver *Driver) IsMounted() bool {
	driver.lock.Lock()
	defer driver.lock.Unlock()
	return driver.isMounted
}

// newVolume starts an operation with a fresh staging cache.
func (driver *Driver) newVolume() *volume {
	return &volume{
		geometry: driver.geometry,
		cache:    blockcache.WrapDevice(driver.device, stagingSectorSize),
	}
}

// view runs a read-only operation on a mounted volume.
func (driver *Driver) view(operation func(v *volume) error) error {
	driver.lock.Lock()
	defer driver.lock.Unlock()

	if !driver.isMounted {
		return myfs.ErrNotMounted
	}
	return operation(driver.newVolume())
}

// update runs an operation that modifies a mounted volume. Changes only reach
// the device if `operation` succeeds; otherwise they're thrown away.
func (driver *Driver) update(operation func(v *volume) error) error {
	driver.lock.Lock()
	defer driver.lock.Unlock()

	if !driver.isMounted {
		return myfs.ErrNotMounted
	}
	return driver.commit(operation)
}

// commit runs `operation` on a new volume and flushes it. The caller must hold
// the lock.
func (driver *Driver) commit(operation func(v *volume) error) error {
	v := driver.newVolume()
	err := operation(v)
	if err != nil {
		v.cache.Discard()
		return err
	}
	return v.cache.Flush()
}
