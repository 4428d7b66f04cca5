package ar

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectCenteredItem(t *testing.T) {
	p := NewProjector()

	// Item dead ahead lands in the middle of the screen
	pos := p.Project(90, 90, 0, 400, 800)

	require.True(t, pos.Visible)
	assert.InDelta(t, 200, pos.X, 0.001)
	assert.InDelta(t, 400, pos.Y, 0.001)
}

func TestProjectOffsetWithinView(t *testing.T) {
	p := NewProjector()

	// 20 degrees right of heading, inside the 65 degree field of view
	pos := p.Project(110, 90, 0, 400, 800)

	require.True(t, pos.Visible)
	expectedX := ((20.0 / DefaultHorizontalFOV) + 0.5) * 400
	assert.InDelta(t, expectedX, pos.X, 0.001)
	assert.Greater(t, pos.X, 200.0)
}

func TestProjectOutsideFieldOfView(t *testing.T) {
	p := NewProjector()

	// 40 degrees off-axis exceeds half the 65 degree field of view
	pos := p.Project(130, 90, 0, 400, 800)

	assert.False(t, pos.Visible)
	assert.Equal(t, -1.0, pos.X)
	assert.Equal(t, -1.0, pos.Y)
}

func TestProjectBoundaryOfView(t *testing.T) {
	p := NewProjector()

	// Exactly half the field of view is still rendered, at the edge
	pos := p.Project(90+DefaultHorizontalFOV/2, 90, 0, 400, 800)

	require.True(t, pos.Visible)
	assert.InDelta(t, 400, pos.X, 0.001)
}

func TestProjectPitchShiftsVertically(t *testing.T) {
	p := NewProjector()

	up := p.Project(90, 90, 10, 400, 800)
	down := p.Project(90, 90, -10, 400, 800)

	require.True(t, up.Visible)
	require.True(t, down.Visible)
	expectedUp := 400 + (10.0/DefaultVerticalFOV)*400
	assert.InDelta(t, expectedUp, up.Y, 0.001)
	assert.Less(t, down.Y, 400.0)
}

func TestProjectWrapAroundHeading(t *testing.T) {
	p := NewProjector()

	// Bearing 10 with heading 350 is 20 degrees to the right, not 340
	pos := p.Project(10, 350, 0, 400, 800)

	require.True(t, pos.Visible)
	assert.Greater(t, pos.X, 200.0)
}

func TestProjectItemFromCoordinates(t *testing.T) {
	p := NewProjector()

	// Item due north of the observer while facing north
	pos := p.ProjectItem(40.001, -74.0, 40.0, -74.0, 0, 0, 400, 800)

	require.True(t, pos.Visible)
	assert.InDelta(t, 200, pos.X, 0.001)
}

func TestPulseScaleOscillates(t *testing.T) {
	assert.InDelta(t, 1.0, PulseScale(0), 0.001)

	// Peak of the sine at ms*0.003 == pi/2
	peakMs := math.Pi / 2 / 0.003
	peak := time.Duration(peakMs) * time.Millisecond
	assert.InDelta(t, 1.2, PulseScale(peak), 0.01)

	for ms := 0; ms < 5000; ms += 100 {
		scale := PulseScale(time.Duration(ms) * time.Millisecond)
		assert.GreaterOrEqual(t, scale, 0.8)
		assert.LessOrEqual(t, scale, 1.2)
	}
}
