package myfsv3

import (
	"bytes"
	"encoding/binary"

	"github.com/noxer/bytewriter"
)

type RawHeader struct {
	Magic   [MagicLength]byte
	Version uint8
}

// NewHeader returns the header written by Format.
func NewHeader() RawHeader {
	header := RawHeader{Version: Version}
	copy(header.Magic[:], Magic)
	return header
}

// IsValid returns true if the magic and version identify a version 3 volume.
func (h RawHeader) IsValid() bool {
	return string(h.Magic[:]) == Magic && h.Version == Version
}

func (h RawHeader) MarshalBinary() ([]byte, error) {
	buffer := make([]byte, HeaderSize)
	err := binary.Write(bytewriter.New(buffer), binary.LittleEndian, &h)
	return buffer, err
}

func (h *RawHeader) UnmarshalBinary(data []byte) error {
	return binary.Read(bytes.NewReader(data), binary.LittleEndian, h)
}
