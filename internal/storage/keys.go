package storage

import "time"

const (
	rootPrefix = "weather/"

	// TimestampLayout renders an instant the way the snapshot keys carry it:
	// UTC, millisecond precision, trailing Z.
	TimestampLayout = "2006-01-02T15:04:05.000Z"

	ContentTypeJSON = "application/json"
)

// CityPrefix is the listing prefix for every snapshot of a city. The city is
// embedded verbatim.
func CityPrefix(city string) string {
	return rootPrefix + city + "/"
}

// SnapshotKey builds weather/<city>/<timestamp>.json for the given instant.
func SnapshotKey(city string, at time.Time) string {
	return CityPrefix(city) + at.UTC().Format(TimestampLayout) + ".json"
}
