package geo

import (
	"math"
	"testing"
)

func TestDistanceZeroAtIdentity(t *testing.T) {
	if d := Distance(-23.55, -46.63, -23.55, -46.63); d != 0 {
		t.Errorf("Distance(A, A) = %f, want 0", d)
	}
}

func TestDistanceSymmetry(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
	}{
		{"sao paulo block", -23.55, -46.63, -23.551, -46.631},
		{"equator crossing", -0.01, 10.0, 0.01, 10.0},
		{"long haul", -23.55, -46.63, 40.71, -74.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ab := Distance(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			ba := Distance(tt.lat2, tt.lon2, tt.lat1, tt.lon1)
			if math.Abs(ab-ba) > 1e-9 {
				t.Errorf("asymmetric: A->B=%f, B->A=%f", ab, ba)
			}
		})
	}
}

func TestDistanceKnownValues(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64 // meters
		tolerance              float64
	}{
		// One street block in Sao Paulo, the classifier's reference scenario.
		{"sao paulo block", -23.55, -46.63, -23.551, -46.631, 151, 10},
		// One degree of latitude is about 111.19 km on the 6371 km sphere.
		{"one degree latitude", 0, 0, 1, 0, 111195, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("Distance = %f, want %f +/- %f", got, tt.want, tt.tolerance)
			}
		})
	}
}
