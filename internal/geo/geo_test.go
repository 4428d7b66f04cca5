package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceZeroForIdenticalPoints(t *testing.T) {
	assert.Equal(t, 0.0, Distance(52.52, 13.405, 52.52, 13.405))
	assert.Equal(t, 0.0, Distance(0, 0, 0, 0))
}

func TestDistanceOneDegreeOfLongitudeAtEquator(t *testing.T) {
	// One degree of longitude at the equator is roughly 111.2 km
	d := Distance(0, 0, 0, 1)
	assert.InEpsilon(t, 111195.0, d, 0.01)
}

func TestDistanceIsSymmetric(t *testing.T) {
	points := [][4]float64{
		{52.52, 13.405, 48.8566, 2.3522},   // Berlin <-> Paris
		{40.7128, -74.006, 34.0522, -118.2437}, // NYC <-> LA
		{-33.8688, 151.2093, 35.6762, 139.6503}, // Sydney <-> Tokyo
		{0.0001, 0.0001, -0.0001, -0.0001},
	}
	for _, p := range points {
		ab := Distance(p[0], p[1], p[2], p[3])
		ba := Distance(p[2], p[3], p[0], p[1])
		assert.InDelta(t, ab, ba, 1e-6)
	}
}

func TestDistanceShortRange(t *testing.T) {
	// ~11.1m north of the origin
	d := Distance(0, 0, 0.0001, 0)
	assert.InDelta(t, 11.1, d, 0.2)
}

func TestBearingCardinalDirections(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64
	}{
		{"due east", 0, 0, 0, 1, 90},
		{"due west", 0, 1, 0, 0, 270},
		{"due north", 0, 0, 1, 0, 0},
		{"due south", 1, 0, 0, 0, 180},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Bearing(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			assert.InDelta(t, tt.want, got, 0.01)
		})
	}
}

func TestBearingAlwaysInRange(t *testing.T) {
	coords := []float64{-89, -45, -1, 0, 1, 45, 89}
	for _, lat1 := range coords {
		for _, lat2 := range coords {
			for _, lon := range []float64{-179, -90, 0, 90, 179} {
				b := Bearing(lat1, lon, lat2, -lon)
				if b < 0 || b >= 360 {
					t.Fatalf("Bearing(%v,%v,%v,%v) = %v, out of [0,360)", lat1, lon, lat2, -lon, b)
				}
			}
		}
	}
}

func TestBearingNotSymmetric(t *testing.T) {
	ab := Bearing(10, 10, 20, 20)
	ba := Bearing(20, 20, 10, 10)
	// Reverse bearing differs by roughly 180 degrees (minus convergence)
	diff := math.Abs(ab - ba)
	assert.InDelta(t, 180, diff, 10)
}

func TestIsWithinRadius(t *testing.T) {
	// ~11.1m apart
	assert.True(t, IsWithinRadius(0, 0, 0.0001, 0, 15))
	assert.False(t, IsWithinRadius(0, 0, 0.0001, 0, 10))
}

func TestRelativeAngle(t *testing.T) {
	tests := []struct {
		bearing, heading, want float64
	}{
		{90, 50, 40},
		{50, 90, -40},
		{10, 350, 20},
		{350, 10, -20},
		{0, 180, 180},  // directly behind maps to +180, not -180
		{180, 0, 180},
		{90, 90, 0},
	}
	for _, tt := range tests {
		got := RelativeAngle(tt.bearing, tt.heading)
		assert.InDelta(t, tt.want, got, 1e-9, "RelativeAngle(%v, %v)", tt.bearing, tt.heading)
	}
}

func TestRelativeAngleRange(t *testing.T) {
	for b := 0.0; b < 360; b += 7 {
		for h := 0.0; h < 360; h += 11 {
			a := RelativeAngle(b, h)
			if a <= -180 || a > 180 {
				t.Fatalf("RelativeAngle(%v, %v) = %v, out of (-180, 180]", b, h, a)
			}
		}
	}
}
