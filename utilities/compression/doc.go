// Package compression packs volume images into compact snapshots and back.
//
// A freshly formatted volume is mostly NUL padding with a handful of ASCII
// markers, so images are run-length encoded (RLE8, the scheme used by BMP
// files) and the result is gzipped. If a byte B occurs N >= 2 times in a row, B
// is written twice followed by an unsigned byte giving the number of additional
// repetitions:
//
//	WXXXXXXXXXXXXXXXYZZ
//	W XX 13 Y ZZ 0
//
// Runs longer than 257 bytes are split, so 300 "X" is stored as `XX 255 XX 41`.
// A byte that occurs exactly twice costs three bytes.

package compression
