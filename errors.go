package myfs

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

type DriverError interface {
	error
	WithMessage(message string) DriverError
	Wrap(err error) DriverError
}

type baseMyfsError string

const rootError = baseMyfsError("")

var ErrExists = rootError.WithMessage("File exists")
var ErrFileSystemCorrupted = rootError.WithMessage("Structure needs cleaning")
var ErrFileTooLarge = rootError.WithMessage("File too large")
var ErrInvalidArgument = rootError.WithMessage("Invalid argument")
var ErrIOFailed = rootError.WithMessage("Input/output error")
var ErrIsADirectory = rootError.WithMessage("Is a directory")
var ErrNameTooLong = rootError.WithMessage("File name too long")
var ErrNoDevice = rootError.WithMessage("No such device")
var ErrNoSpaceOnDevice = rootError.WithMessage("No space left on device")
var ErrNotFound = rootError.WithMessage("No such file or directory")
var ErrNotSupported = rootError.WithMessage("Operation not supported")

// ErrNoFreeInode is returned when every usable inode slot is already in use.
var ErrNoFreeInode = ErrNoSpaceOnDevice.WithMessage("no free inode")

// ErrOutOfSpace is returned when no data block has room for the content being
// written.
var ErrOutOfSpace = ErrNoSpaceOnDevice.WithMessage("no data block has enough free space")

// ErrDirectoryFull is returned when the root directory's block can't hold
// another entry.
var ErrDirectoryFull = ErrNoSpaceOnDevice.WithMessage("root directory is full")

var ErrNotMounted = ErrNoDevice.WithMessage("volume is not mounted")

func (e baseMyfsError) Error() string {
	return string(e)
}

func (e baseMyfsError) RootCause() DriverError {
	return e
}

func (e baseMyfsError) WithMessage(message string) DriverError {
	return customDriverError{
		message:       message,
		originalError: e,
	}
}

func (e baseMyfsError) Wrap(err error) DriverError {
	return customDriverError{
		message:       fmt.Sprintf("%s: %s", e.Error(), err.Error()),
		originalError: multierror.Append(e, err),
	}
}

// -----------------------------------------------------------------------------

type customDriverError struct {
	message       string
	originalError error
}

// Error implements the `error` object interface. When called, it returns a string
// describing the error.
func (e customDriverError) Error() string {
	return e.message
}

func (e customDriverError) WithMessage(message string) DriverError {
	return customDriverError{
		message:       fmt.Sprintf("%s: %s", e.message, message),
		originalError: e,
	}
}

func (e customDriverError) Wrap(err error) DriverError {
	return customDriverError{
		message:       fmt.Sprintf("%s: %s", e.Error(), err.Error()),
		originalError: multierror.Append(e, err),
	}
}

func (e customDriverError) Unwrap() error {
	return e.originalError
}

// CastToDriverError converts an arbitrary error into a [DriverError]. nil is
// passed through unchanged, existing DriverErrors are returned as-is, and
// everything else is wrapped in [ErrIOFailed].
func CastToDriverError(err error) DriverError {
	if err == nil {
		return nil
	}

	var driverErr DriverError
	if errors.As(err, &driverErr) {
		return driverErr
	}
	return ErrIOFailed.Wrap(err)
}
