package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSnapshotKey(t *testing.T) {
	tests := []struct {
		name string
		city string
		at   time.Time
		want string
	}{
		{
			name: "UTC instant",
			city: "Paris",
			at:   time.Date(2024, 3, 9, 14, 5, 7, 123_456_789, time.UTC),
			want: "weather/Paris/2024-03-09T14:05:07.123Z.json",
		},
		{
			name: "Whole second keeps millis",
			city: "Oslo",
			at:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			want: "weather/Oslo/2024-01-01T00:00:00.000Z.json",
		},
		{
			name: "Non UTC zone is converted",
			city: "Tokyo",
			at:   time.Date(2024, 6, 1, 9, 0, 0, 5_000_000, time.FixedZone("JST", 9*3600)),
			want: "weather/Tokyo/2024-06-01T00:00:00.005Z.json",
		},
		{
			name: "City kept verbatim",
			city: "New York",
			at:   time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			want: "weather/New York/2024-06-01T00:00:00.000Z.json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SnapshotKey(tt.city, tt.at))
		})
	}
}

func TestCityPrefix(t *testing.T) {
	assert.Equal(t, "weather/Paris/", CityPrefix("Paris"))
	assert.Equal(t, "weather//", CityPrefix(""))
}

func TestSnapshotKey_DistinctInstants(t *testing.T) {
	at := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	assert.NotEqual(t, SnapshotKey("Paris", at), SnapshotKey("Paris", at.Add(time.Millisecond)))
}
