package compression

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
)

// maxRunPerGroup is the longest run a single RLE8 group can describe: the two
// literal bytes plus 255 repetitions.
const maxRunPerGroup = 257

// readRun consumes the next run of identical bytes from `source` and returns
// the byte and how many times it occurred. A length of 0 means `err` is set.
func readRun(source *bufio.Reader) (byte, int, error) {
	first, err := source.ReadByte()
	if err != nil {
		return 0, 0, err
	}

	length := 1
	for {
		next, err := source.ReadByte()
		if errors.Is(err, io.EOF) {
			return first, length, nil
		} else if err != nil {
			return 0, 0, err
		}

		if next != first {
			// Already known to succeed, we just read a byte.
			_ = source.UnreadByte()
			return first, length, nil
		}
		length++
	}
}

// encodeRun appends the RLE8 encoding of `length` copies of `value` to `out`.
func encodeRun(out []byte, value byte, length int) []byte {
	for length >= 2 {
		group := length
		if group > maxRunPerGroup {
			group = maxRunPerGroup
		}
		out = append(out, value, value, byte(group-2))
		length -= group
	}
	if length == 1 {
		out = append(out, value)
	}
	return out
}

// CompressRLE8 reads bytes from the input and writes compressed data to the
// output until the input is exhausted. The return value is the number of bytes
// written, only valid if no error occurred.
func CompressRLE8(input io.Reader, output io.Writer) (int64, error) {
	source := bufio.NewReader(input)
	encoded := make([]byte, 0, 16)
	totalBytesWritten := int64(0)

	for {
		value, length, err := readRun(source)
		if errors.Is(err, io.EOF) {
			return totalBytesWritten, nil
		} else if err != nil {
			return totalBytesWritten, fmt.Errorf("error reading input: %w", err)
		}

		encoded = encodeRun(encoded[:0], value, length)
		n, err := output.Write(encoded)
		totalBytesWritten += int64(n)
		if err != nil {
			return totalBytesWritten, fmt.Errorf("failed to write to output: %w", err)
		}
	}
}

// DecompressRLE8 reverses [CompressRLE8]. A stream that ends right after a
// doubled byte, i.e. without its repeat count, fails with an error wrapping
// [io.ErrUnexpectedEOF].
func DecompressRLE8(input io.Reader, output io.Writer) (int64, error) {
	source := bufio.NewReader(input)
	previous := -1
	totalBytesWritten := int64(0)

	for {
		current, err := source.ReadByte()
		if errors.Is(err, io.EOF) {
			return totalBytesWritten, nil
		} else if err != nil {
			return totalBytesWritten, fmt.Errorf("error reading input: %w", err)
		}

		var chunk []byte
		if int(current) == previous {
			repeatCount, err := source.ReadByte()
			if errors.Is(err, io.EOF) {
				return totalBytesWritten, fmt.Errorf(
					"%w: missing repeat count after two %02x bytes",
					io.ErrUnexpectedEOF,
					current,
				)
			} else if err != nil {
				return totalBytesWritten, fmt.Errorf("error reading input: %w", err)
			}

			// The first of the pair went out on the previous iteration.
			chunk = bytes.Repeat([]byte{current}, int(repeatCount)+1)
			// A group is closed by its count, so the next byte starts fresh even
			// if it has the same value.
			previous = -1
		} else {
			chunk = []byte{current}
			previous = int(current)
		}

		n, err := output.Write(chunk)
		totalBytesWritten += int64(n)
		if err != nil {
			return totalBytesWritten, fmt.Errorf("failed to write to output: %w", err)
		}
	}
}
