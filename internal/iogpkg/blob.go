package iogpkg

import (
	"encoding/binary"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
)

// GeoPackage geometry blobs wrap standard WKB in a small header:
// the "GP" magic, a version byte, a flags byte (endianness, envelope
// shape, empty-geometry bit) and the srs_id, then an optional envelope.

const (
	blobMagic1 = 0x47 // 'G'
	blobMagic2 = 0x50 // 'P'

	flagLittleEndian = 0x01
	flagEmpty        = 0x20
)

// envelopeSize returns the byte length of the envelope for the
// indicator encoded in the flags byte.
func envelopeSize(flags byte) (int, error) {
	switch (flags >> 1) & 0x07 {
	case 0:
		return 0, nil
	case 1:
		return 32, nil
	case 2, 3:
		return 48, nil
	case 4:
		return 64, nil
	default:
		return 0, fmt.Errorf("invalid envelope indicator in flags %#x", flags)
	}
}

// encodeGeometry renders a geometry as a GeoPackage blob without an
// envelope.
func encodeGeometry(g orb.Geometry, srsID int32) ([]byte, error) {
	data, err := wkb.Marshal(g)
	if err != nil {
		return nil, err
	}
	header := make([]byte, 8)
	header[0] = blobMagic1
	header[1] = blobMagic2
	header[2] = 0 // version
	header[3] = flagLittleEndian
	binary.LittleEndian.PutUint32(header[4:], uint32(srsID))
	return append(header, data...), nil
}

// decodeGeometry parses a GeoPackage blob back into a geometry. An
// empty-geometry blob decodes to nil.
func decodeGeometry(blob []byte) (orb.Geometry, error) {
	if len(blob) < 8 || blob[0] != blobMagic1 || blob[1] != blobMagic2 {
		return nil, fmt.Errorf("not a GeoPackage geometry blob")
	}
	flags := blob[3]
	envSize, err := envelopeSize(flags)
	if err != nil {
		return nil, err
	}
	if flags&flagEmpty != 0 {
		return nil, nil
	}
	offset := 8 + envSize
	if len(blob) <= offset {
		return nil, fmt.Errorf("geometry blob truncated")
	}
	return wkb.Unmarshal(blob[offset:])
}
