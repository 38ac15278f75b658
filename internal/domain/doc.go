// Package domain models canonical geocoding results and the pure
// conversions around them.
//
// # Canonical Location
//
// Every geocoding provider answers in its own shape. Adapters map those
// payloads onto [Location]:
//
//	coordinates  {latitude, longitude} in decimal degrees, may be absent
//	address      canonical keys only: title, number, street, neighborhood,
//	             city, county, state, province, postalCode, country, continent
//	bounds       {southwest, northeast} corners, may be absent
//	license      provider attribution text (OpenStreetMap "licence")
//	raw          the decoded provider payload, kept for callers that need it
//
// A nil *Location means "no match". It is never an error.
//
// # Service Templates
//
// Provider endpoints are URL templates with a closed placeholder set:
//
//	{:address}    percent-encoded query text ("A location" → "A%20location")
//	{:latitude}   plain decimal
//	{:longitude}  plain decimal
//	{:key}        API key for (service, host), empty when unset
//
// Unknown placeholders are rejected when a service is registered. See
// [ParseURLTemplate].
//
// # Place Names
//
// Country names are canonicalized through a small alias table ("USA" and
// "United States of America" become "United States") and mapped to a
// continent with [ContinentOf]. Comparison uses Unicode NFC so decomposed
// input such as "São Tomé" still matches the table.
//
// # Distance
//
// [Distance] uses the spherical law of cosines with 69.09 miles per degree,
// not Haversine. Results are kept numerically compatible with existing
// consumers. Unit codes: M miles, K kilometers, N nautical miles, F feet,
// I inches, or any decimal multiplier.
//
// # EXIF GPS
//
// [ExifCoords] converts GPSLatitude/GPSLongitude rationals using the
// historical "{degrees}.{round(minutes*166.67)}" formula. It is not a true
// DMS conversion: "40/1", "4586/100" gives 40.7643.
package domain
