package core

import (
	"math"
	"testing"
)

func TestHaversineMeters(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64
		tolerance              float64
	}{
		{name: "same point", lat1: -4.325, lon1: 15.3222, lat2: -4.325, lon2: 15.3222},
		{
			// one degree of latitude is ~111.2km anywhere
			name: "one degree of latitude",
			lat1: 0, lon1: 0, lat2: 1, lon2: 0,
			want: 111195, tolerance: 50,
		},
		{
			// Paris <-> London
			name: "paris to london",
			lat1: 48.8566, lon1: 2.3522, lat2: 51.5074, lon2: -0.1278,
			want: 343556, tolerance: 1000,
		},
		{
			name: "short campus distance",
			lat1: -4.3250, lon1: 15.3222, lat2: -4.3259, lon2: 15.3222,
			want: 100, tolerance: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HaversineMeters(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("HaversineMeters() = %f, want %f (±%f)", got, tt.want, tt.tolerance)
			}

			// symmetric
			rev := HaversineMeters(tt.lat2, tt.lon2, tt.lat1, tt.lon1)
			if math.Abs(got-rev) > 1e-9 {
				t.Errorf("HaversineMeters() not symmetric: %f vs %f", got, rev)
			}
		})
	}
}
