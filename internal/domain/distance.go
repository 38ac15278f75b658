package domain

import (
	"math"
	"slices"
)

// milesPerDegree is the great-circle length of one degree used by Distance.
const milesPerDegree = 69.09

// unitFactors converts miles into the keyed unit.
var unitFactors = map[string]float64{
	"K": 1.609344,
	"N": 0.868976242,
	"F": 5280,
	"I": 63360,
	"M": 1,
}

// UnitCodes lists the named distance units.
func UnitCodes() []string {
	codes := make([]string, 0, len(unitFactors))
	for k := range unitFactors {
		codes = append(codes, k)
	}
	slices.Sort(codes)
	return codes
}

// UnitFactor returns the miles multiplier for unit. Unknown codes are read
// as a decimal multiplier ("2.5" → 2.5); empty or non-numeric input is 0.
func UnitFactor(unit string) float64 {
	if f, ok := unitFactors[unit]; ok {
		return f
	}
	return leadingFloat(unit)
}

// Distance returns the spherical law of cosines distance between a and b
// expressed in unit.
func Distance(a, b Coordinates, unit string) float64 {
	lat1, lat2 := radians(a.Latitude), radians(b.Latitude)
	cosine := math.Sin(lat1)*math.Sin(lat2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Cos(radians(a.Longitude-b.Longitude))

	// Rounding can push identical points just past 1.
	cosine = math.Max(-1, math.Min(1, cosine))

	miles := milesPerDegree * degrees(math.Acos(cosine))
	return miles * UnitFactor(unit)
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func degrees(rad float64) float64 { return rad * 180 / math.Pi }
