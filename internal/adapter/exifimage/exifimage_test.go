package exifimage

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/couchcryptid/geolookup/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ifdEntry struct {
	tag, typ uint16
	count    uint32
	value    [4]byte
}

func ascii(s string) [4]byte {
	var v [4]byte
	copy(v[:], s)
	return v
}

func offset(n uint32) [4]byte {
	var v [4]byte
	binary.LittleEndian.PutUint32(v[:], n)
	return v
}

func writeIFD(buf *bytes.Buffer, entries []ifdEntry) {
	_ = binary.Write(buf, binary.LittleEndian, uint16(len(entries)))
	for _, e := range entries {
		_ = binary.Write(buf, binary.LittleEndian, e.tag)
		_ = binary.Write(buf, binary.LittleEndian, e.typ)
		_ = binary.Write(buf, binary.LittleEndian, e.count)
		buf.Write(e.value[:])
	}
	_ = binary.Write(buf, binary.LittleEndian, uint32(0))
}

// gpsTIFF builds a little-endian TIFF whose GPS IFD holds the given
// references and degree/minute/second rationals.
func gpsTIFF(latRef string, lat [6]uint32, lonRef string, lon [6]uint32) []byte {
	const (
		typeASCII    = 2
		typeLong     = 4
		typeRational = 5
		gpsIFD       = 26
		latData      = 80
		lonData      = 104
	)

	var buf bytes.Buffer
	buf.WriteString("II")
	_ = binary.Write(&buf, binary.LittleEndian, uint16(42))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(8))

	writeIFD(&buf, []ifdEntry{{tag: 0x8825, typ: typeLong, count: 1, value: offset(gpsIFD)}})
	writeIFD(&buf, []ifdEntry{
		{tag: 0x0001, typ: typeASCII, count: 2, value: ascii(latRef)},
		{tag: 0x0002, typ: typeRational, count: 3, value: offset(latData)},
		{tag: 0x0003, typ: typeASCII, count: 2, value: ascii(lonRef)},
		{tag: 0x0004, typ: typeRational, count: 3, value: offset(lonData)},
	})
	_ = binary.Write(&buf, binary.LittleEndian, lat)
	_ = binary.Write(&buf, binary.LittleEndian, lon)
	return buf.Bytes()
}

func TestGPSFields(t *testing.T) {
	img := gpsTIFF("N", [6]uint32{40, 1, 4586, 100, 0, 1}, "W", [6]uint32{73, 1, 5841, 100, 0, 1})

	fields, err := GPSFields(bytes.NewReader(img))
	require.NoError(t, err)
	assert.Equal(t, "N", fields[domain.ExifLatitudeRef])
	assert.Equal(t, []string{"40/1", "4586/100", "0/1"}, fields[domain.ExifLatitude])
	assert.Equal(t, "W", fields[domain.ExifLongitudeRef])
	assert.Equal(t, []string{"73/1", "5841/100", "0/1"}, fields[domain.ExifLongitude])
}

func TestCoordinates(t *testing.T) {
	img := gpsTIFF("N", [6]uint32{40, 1, 4586, 100, 0, 1}, "W", [6]uint32{73, 1, 5841, 100, 0, 1})

	coords, err := Coordinates(bytes.NewReader(img))
	require.NoError(t, err)
	assert.Equal(t, domain.Coordinates{Latitude: 40.7643, Longitude: -73.9735}, coords)
}

func TestCoordinates_NotAnImage(t *testing.T) {
	_, err := Coordinates(bytes.NewReader([]byte("plain text")))
	assert.Error(t, err)
}
