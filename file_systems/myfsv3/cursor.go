package myfsv3

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/dargueta/myfs"
)

// EncodeCursor renders a block's used-byte count the way it's stored on disk:
// decimal digits, left-justified, with the rest of the field filled with NULs.
func EncodeCursor(value uint) ([]byte, error) {
	if value > MaxCursorValue {
		return nil, myfs.ErrInvalidArgument.WithMessage(
			fmt.Sprintf("cursor value %d doesn't fit in %d digits", value, CursorWidth))
	}

	raw := make([]byte, CursorWidth)
	copy(raw, strconv.FormatUint(uint64(value), 10))
	return raw, nil
}

// DecodeCursor parses a cursor field. The digits run up to the first NUL or the
// end of the field, whichever comes first. Whatever follows the first NUL is
// ignored; shorter numbers written over longer ones leave stale digits there.
func DecodeCursor(raw []byte) (uint, error) {
	if len(raw) != CursorWidth {
		return 0, myfs.ErrInvalidArgument.WithMessage(
			fmt.Sprintf("cursor must be %d bytes, got %d", CursorWidth, len(raw)))
	}

	digits := raw
	if end := bytes.IndexByte(raw, 0); end >= 0 {
		digits = raw[:end]
	}
	if len(digits) == 0 {
		return 0, myfs.ErrFileSystemCorrupted.WithMessage("cursor is blank")
	}

	for _, digit := range digits {
		if digit < '0' || digit > '9' {
			return 0, myfs.ErrFileSystemCorrupted.WithMessage(
				fmt.Sprintf("cursor isn't a decimal number: %q", raw))
		}
	}

	// Can't fail, we know it's at most four digits.
	value, _ := strconv.ParseUint(string(digits), 10, 32)
	return uint(value), nil
}
