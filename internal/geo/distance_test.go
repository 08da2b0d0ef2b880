package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name       string
		lat1, lon1 float64
		lat2, lon2 float64
		wantKm     float64
	}{
		{"same point", 55.7989, 49.1064, 55.7989, 49.1064, 0},
		{"kremlin to arena", 55.7989, 49.1064, 55.8208, 49.1605, 4.166},
		{"kazan to moscow", 55.7887, 49.1221, 55.7558, 37.6173, 718.754},
		{"one degree of latitude", 55.0, 49.0, 56.0, 49.0, 111.195},
		{"one degree of longitude at the equator", 0, 0, 0, 1, 111.195},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			assert.InDelta(t, tt.wantKm, got, 0.001)
		})
	}
}

func TestDistanceSymmetry(t *testing.T) {
	d1 := Distance(55.80, 49.10, 55.79, 49.11)
	d2 := Distance(55.79, 49.11, 55.80, 49.10)
	assert.Equal(t, d1, d2)
}

func TestPointDistanceTo(t *testing.T) {
	p := Point{Lat: 55.80, Lon: 49.10}
	q := Point{Lat: 55.79, Lon: 49.11}

	assert.InDelta(t, 1.2756, p.DistanceTo(q), 0.001)
	assert.Zero(t, p.DistanceTo(p))
}
