// Package common contains definitions of fundamental types and functions used
// across the file system implementations.
package common

// LogicalSector is the index of a fixed-size sector of a device, counting from
// the beginning of the device.
type LogicalSector uint

// Truncator is an interface for objects that support a Truncate() method. This
// method must behave just like [os.File.Truncate].
type Truncator interface {
	Truncate(size int64) error
}
