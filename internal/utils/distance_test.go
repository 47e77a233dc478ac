package utils

import (
	"math"
	"testing"
)

func TestCalculateDistance(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		wantKM                 float64
		tolerance              float64
	}{
		{"same point", 18.52, 73.85, 18.52, 73.85, 0, 0.001},
		{"one degree of latitude", 18.0, 73.0, 19.0, 73.0, 111.19, 0.5},
		{"pune to mumbai", 18.5204, 73.8567, 19.0760, 72.8777, 120, 5},
		{"across the date line", 0, 179.5, 0, -179.5, 111.19, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateDistance(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.Abs(got-tt.wantKM) > tt.tolerance {
				t.Errorf("CalculateDistance() = %.3f km, want %.3f +/- %.3f", got, tt.wantKM, tt.tolerance)
			}
		})
	}
}

func TestCalculateDistanceMeters(t *testing.T) {
	km := CalculateDistance(18.0, 73.0, 19.0, 73.0)
	m := CalculateDistanceMeters(18.0, 73.0, 19.0, 73.0)
	if math.Abs(m-km*1000) > 0.001 {
		t.Errorf("meters = %.3f, want %.3f", m, km*1000)
	}
}

func TestIsWithinRadius(t *testing.T) {
	// Pune center against a point roughly 1.5 km away.
	if !IsWithinRadius(18.5204, 73.8567, 18.5300, 73.8660, 5) {
		t.Error("nearby point should fall within a 5 km radius")
	}
	if IsWithinRadius(18.5204, 73.8567, 19.0760, 72.8777, 5) {
		t.Error("Mumbai should not fall within 5 km of Pune")
	}
}

func TestIsValidCoordinates(t *testing.T) {
	valid := [][2]float64{{0, 0}, {90, 180}, {-90, -180}, {18.52, 73.85}}
	for _, c := range valid {
		if !IsValidCoordinates(c[0], c[1]) {
			t.Errorf("(%g, %g) should be valid", c[0], c[1])
		}
	}
	invalid := [][2]float64{{90.1, 0}, {-90.1, 0}, {0, 180.1}, {0, -180.1}}
	for _, c := range invalid {
		if IsValidCoordinates(c[0], c[1]) {
			t.Errorf("(%g, %g) should be invalid", c[0], c[1])
		}
	}
}
