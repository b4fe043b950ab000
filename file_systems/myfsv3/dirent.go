package myfsv3

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/dargueta/myfs"
	"github.com/noxer/bytewriter"
)

// RawDirent is a single entry in the root directory.
type RawDirent struct {
	Name    [NameLength]byte
	Inumber uint8
}

// NormalizeName turns a path given by a caller into the name stored in the
// root directory. A single leading slash is removed; everything else is kept
// as-is, including any other slashes, since there are no subdirectories to
// resolve them against.
func NormalizeName(path string) (string, error) {
	name := strings.TrimPrefix(path, "/")
	if name == "" {
		return "", myfs.ErrInvalidArgument.WithMessage(
			fmt.Sprintf("%q doesn't name a file", path))
	}
	if strings.IndexByte(name, 0) >= 0 {
		return "", myfs.ErrInvalidArgument.WithMessage(
			fmt.Sprintf("name %q contains a null byte", name))
	}
	if len(name) > NameLength {
		return "", myfs.ErrNameTooLong.WithMessage(
			fmt.Sprintf(
				"%q is %d bytes, max is %d",
				name,
				len(name),
				NameLength,
			),
		)
	}
	return name, nil
}

// NewDirent creates an entry. `name` must already be normalized.
func NewDirent(name string, inumber Inumber) (RawDirent, error) {
	if inumber >= maxAddressableInodes {
		return RawDirent{}, myfs.ErrInvalidArgument.WithMessage(
			fmt.Sprintf("inode %d can't be stored in a directory entry", inumber))
	}

	dirent := RawDirent{Inumber: uint8(inumber)}
	copy(dirent.Name[:], name)
	return dirent, nil
}

// NameString returns the entry's name without the NUL padding.
func (d RawDirent) NameString() string {
	if end := bytes.IndexByte(d.Name[:], 0); end >= 0 {
		return string(d.Name[:end])
	}
	return string(d.Name[:])
}

func (d RawDirent) MarshalBinary() ([]byte, error) {
	buffer := make([]byte, DirentSize)
	err := binary.Write(bytewriter.New(buffer), binary.LittleEndian, &d)
	return buffer, err
}

func (d *RawDirent) UnmarshalBinary(data []byte) error {
	return binary.Read(bytes.NewReader(data), binary.LittleEndian, d)
}
