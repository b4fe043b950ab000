package myfs

import (
	"os"
	"time"
)

// Driver is the interface implemented by mounted myfs volumes. Implementations
// must serialize calls themselves; every method is safe to call from multiple
// goroutines but only one runs at a time.
type Driver interface {
	// CreateFile creates an empty file or directory in the root directory. If
	// the name already exists nothing is changed and `created` is false.
	CreateFile(path string, isDir bool) (created bool, err error)

	// GetContent returns the whole content of the file at `path`.
	GetContent(path string) (string, error)

	// SetContent replaces the whole content of the file at `path`. Either the
	// entire write is applied, or the volume is left untouched.
	SetContent(path string, content string) error

	// ListDir returns the entries of the root directory in creation order. The
	// path is ignored since the root is the only directory there is.
	ListDir(path string) ([]DirectoryEntry, error)

	// FSStat returns usage information about the volume.
	FSStat() (FSStat, error)
}

// DirectoryEntry describes one entry of the root directory. It implements
// [os.FileInfo]; the volume stores no timestamps or permissions, so ModTime is
// always the zero time and Mode only carries the directory bit.
type DirectoryEntry struct {
	EntryName   string
	IsDirectory bool
	FileSize    int64
	Inumber     uint
}

// Name returns the name of the entry as stored in the root directory.
func (d *DirectoryEntry) Name() string {
	return d.EntryName
}

// Size returns the length of the file's content, in bytes. Directories are
// always 0.
func (d *DirectoryEntry) Size() int64 {
	return d.FileSize
}

func (d *DirectoryEntry) Mode() os.FileMode {
	if d.IsDirectory {
		return os.ModeDir | 0o777
	}
	return 0o666
}

func (d *DirectoryEntry) ModTime() time.Time {
	return time.Time{}
}

// IsDir returns true if it's a directory.
func (d *DirectoryEntry) IsDir() bool {
	return d.IsDirectory
}

// Sys returns a copy of the entry.
func (d *DirectoryEntry) Sys() interface{} {
	return *d
}

// FSStat gives usage information about a volume.
type FSStat struct {
	// BlockSize is the size of a data block's payload, in bytes. It doesn't
	// include the block's cursor.
	BlockSize uint64
	// TotalBlocks is the number of blocks files can be allocated from.
	TotalBlocks uint64
	// BlocksFree is the number of allocatable blocks nothing has been written
	// to yet.
	BlocksFree uint64
	// BytesFree is the sum of the free space at the end of every allocatable
	// block.
	BytesFree uint64
	// Files is the number of inodes in use, including the root directory.
	Files uint64
	// FilesFree is the number of inodes that can still be allocated.
	FilesFree     uint64
	MaxNameLength uint64
}
