package domain

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// EXIF GPS tag names read by ExifCoords.
const (
	ExifLatitudeRef  = "GPSLatitudeRef"
	ExifLatitude     = "GPSLatitude"
	ExifLongitudeRef = "GPSLongitudeRef"
	ExifLongitude    = "GPSLongitude"
)

// DegreesToDecimal combines a degrees/minutes pair into one value. Each
// argument is a number or a "num/den" rational whose parts are read as
// integers. The minutes are scaled by 166⅔, rounded, and appended as the
// fractional digits of degrees.
func DegreesToDecimal(degrees, minutes any) float64 {
	d := exifNumber(degrees)
	m := math.Round(exifNumber(minutes) * (166 + 2.0/3))
	return leadingFloat(formatNumber(d) + "." + formatNumber(m))
}

// ExifCoords reads GPS coordinates from decoded EXIF tags. All four GPS
// tags must be present; otherwise ok is false. Only the degrees and minutes
// elements are used; seconds are ignored. "S" and "W" references negate.
func ExifCoords(data map[string]any) (Coordinates, bool) {
	for _, key := range []string{ExifLatitudeRef, ExifLatitude, ExifLongitudeRef, ExifLongitude} {
		if _, ok := data[key]; !ok {
			return Coordinates{}, false
		}
	}
	return Coordinates{
		Latitude:  exifAxis(data[ExifLatitude], data[ExifLatitudeRef]),
		Longitude: exifAxis(data[ExifLongitude], data[ExifLongitudeRef]),
	}, true
}

func exifAxis(value, ref any) float64 {
	degrees, minutes := firstTwo(value)
	v := DegreesToDecimal(degrees, minutes)
	switch strings.ToUpper(fmt.Sprint(ref)) {
	case "S", "W":
		v = -v
	}
	return v
}

// firstTwo returns the first two elements of a slice or array value. Missing
// elements are nil.
func firstTwo(v any) (any, any) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, nil
	}
	var out [2]any
	for i := 0; i < 2 && i < rv.Len(); i++ {
		out[i] = rv.Index(i).Interface()
	}
	return out[0], out[1]
}

func exifNumber(v any) float64 {
	s, ok := v.(string)
	if !ok {
		return ToFloat(v)
	}
	if i := strings.Index(s, "/"); i > 0 {
		num, den := leadingInt(s[:i]), leadingInt(s[i+1:])
		if den == 0 {
			return 0
		}
		return float64(num) / float64(den)
	}
	return leadingFloat(s)
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
