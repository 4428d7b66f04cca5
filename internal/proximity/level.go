package proximity

import "fmt"

// Level is a discrete "temperature" label derived from the ratio of
// distance to discovery radius
type Level string

const (
	VeryHot  Level = "VERY_HOT"
	Hot      Level = "HOT"
	Warm     Level = "WARM"
	Cool     Level = "COOL"
	Cold     Level = "COLD"
	VeryCold Level = "VERY_COLD"
)

// Classify maps a distance/radius ratio to a proximity level.
// discoveryRadius must be positive; a non-positive radius is a caller bug.
func Classify(distanceMeters, discoveryRadiusMeters float64) Level {
	if discoveryRadiusMeters <= 0 {
		panic(fmt.Sprintf("proximity: non-positive discovery radius %v", discoveryRadiusMeters))
	}

	ratio := distanceMeters / discoveryRadiusMeters

	switch {
	case ratio <= 0.25:
		return VeryHot
	case ratio <= 0.5:
		return Hot
	case ratio <= 0.75:
		return Warm
	case ratio <= 1.0:
		return Cool
	case ratio <= 2.0:
		return Cold
	default:
		return VeryCold
	}
}

// IsDiscoverable reports whether an item can be collected from the given
// distance, i.e. the observer is inside the item's own discovery radius
func IsDiscoverable(distanceMeters, discoveryRadiusMeters float64) bool {
	return distanceMeters <= discoveryRadiusMeters
}
