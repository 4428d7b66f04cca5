package ar

import (
	"math"
	"time"

	"github.com/dwhittlesey/TreasureHunter2/internal/geo"
)

// Camera field of view (typical phone camera ~60-70 degrees)
const (
	DefaultHorizontalFOV = 65.0
	DefaultVerticalFOV   = 45.0
)

// ScreenPosition is a projected overlay position. X and Y are -1 when
// the item is outside the camera's field of view.
type ScreenPosition struct {
	X       float64
	Y       float64
	Visible bool
}

// NotVisible is the sentinel for items outside the field of view
var NotVisible = ScreenPosition{X: -1, Y: -1, Visible: false}

// Projector converts an item's geographic bearing plus the device
// orientation into screen coordinates
type Projector struct {
	HorizontalFOV float64
	VerticalFOV   float64
}

// NewProjector returns a projector with the default field of view
func NewProjector() Projector {
	return Projector{
		HorizontalFOV: DefaultHorizontalFOV,
		VerticalFOV:   DefaultVerticalFOV,
	}
}

// Project maps an item bearing and the current device heading/pitch to
// a screen position
func (p Projector) Project(itemBearing, deviceHeading, devicePitch, screenWidth, screenHeight float64) ScreenPosition {
	relativeAngle := geo.RelativeAngle(itemBearing, deviceHeading)

	if math.Abs(relativeAngle) > p.HorizontalFOV/2 {
		return NotVisible
	}

	normalizedX := (relativeAngle / p.HorizontalFOV) + 0.5
	screenX := normalizedX * screenWidth

	// Items sit in the vertical center, shifted by pitch
	verticalOffset := devicePitch / p.VerticalFOV
	screenY := screenHeight/2 + verticalOffset*screenHeight/2

	return ScreenPosition{X: screenX, Y: screenY, Visible: true}
}

// ProjectItem projects an item at the given coordinates as seen from
// the observer's location
func (p Projector) ProjectItem(itemLat, itemLon, observerLat, observerLon, deviceHeading, devicePitch, screenWidth, screenHeight float64) ScreenPosition {
	bearing := geo.Bearing(observerLat, observerLon, itemLat, itemLon)
	return p.Project(bearing, deviceHeading, devicePitch, screenWidth, screenHeight)
}

// PulseScale is the discovery-glow animation scale as a function of
// wall-clock elapsed time, independent of the location and render loops
func PulseScale(elapsed time.Duration) float64 {
	ms := float64(elapsed.Milliseconds())
	return 1.0 + math.Sin(ms*0.003)*0.2
}
