package proximity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyTiers(t *testing.T) {
	tests := []struct {
		name     string
		distance float64
		radius   float64
		want     Level
	}{
		{"on top of it", 0, 10, VeryHot},
		{"quarter radius boundary", 2.5, 10, VeryHot},
		{"just past very hot", 2.51, 10, Hot},
		{"half radius boundary", 5, 10, Hot},
		{"three quarter boundary", 7.5, 10, Warm},
		{"exactly at radius", 10, 10, Cool},
		{"just outside radius", 10.01, 10, Cold},
		{"double radius boundary", 20, 10, Cold},
		{"far away", 20.01, 10, VeryCold},
		{"very far away", 500, 10, VeryCold},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.distance, tt.radius))
		})
	}
}

func TestClassifyMonotonicInColdness(t *testing.T) {
	order := map[Level]int{
		VeryHot: 0, Hot: 1, Warm: 2, Cool: 3, Cold: 4, VeryCold: 5,
	}
	prev := VeryHot
	for d := 0.0; d <= 120; d += 0.5 {
		level := Classify(d, 50)
		if order[level] < order[prev] {
			t.Fatalf("coldness decreased from %s to %s at distance %v", prev, level, d)
		}
		prev = level
	}
}

func TestClassifyPanicsOnNonPositiveRadius(t *testing.T) {
	assert.Panics(t, func() { Classify(10, 0) })
	assert.Panics(t, func() { Classify(10, -1) })
}

func TestIsDiscoverable(t *testing.T) {
	assert.True(t, IsDiscoverable(10, 10))
	assert.True(t, IsDiscoverable(0, 1))
	assert.False(t, IsDiscoverable(10.1, 10))
}
