// Package exifimage reads GPS tags from image files.
package exifimage

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/couchcryptid/geolookup/internal/domain"
	"github.com/rwcarlsen/goexif/exif"
)

// ErrNoGPS is returned when an image carries no usable GPS tags.
var ErrNoGPS = errors.New("image has no GPS coordinates")

var (
	refFields   = []exif.FieldName{exif.GPSLatitudeRef, exif.GPSLongitudeRef}
	valueFields = []exif.FieldName{exif.GPSLatitude, exif.GPSLongitude}
)

// GPSFields decodes the EXIF block of a JPEG or TIFF image and returns its
// GPS tags keyed by tag name. Rationals are rendered as "num/den" strings.
// Missing tags are omitted.
func GPSFields(r io.Reader) (map[string]any, error) {
	x, err := exif.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode exif: %w", err)
	}

	fields := make(map[string]any, 4)
	for _, name := range refFields {
		tag, err := x.Get(name)
		if err != nil {
			continue
		}
		ref, err := tag.StringVal()
		if err != nil {
			continue
		}
		fields[string(name)] = strings.TrimRight(ref, "\x00 ")
	}
	for _, name := range valueFields {
		tag, err := x.Get(name)
		if err != nil {
			continue
		}
		values := make([]string, 0, tag.Count)
		for i := 0; i < int(tag.Count); i++ {
			num, den, err := tag.Rat2(i)
			if err != nil {
				break
			}
			values = append(values, fmt.Sprintf("%d/%d", num, den))
		}
		fields[string(name)] = values
	}
	return fields, nil
}

// Coordinates reads the GPS position of an image.
func Coordinates(r io.Reader) (domain.Coordinates, error) {
	fields, err := GPSFields(r)
	if err != nil {
		return domain.Coordinates{}, err
	}
	coords, ok := domain.ExifCoords(fields)
	if !ok {
		return domain.Coordinates{}, ErrNoGPS
	}
	return coords, nil
}
