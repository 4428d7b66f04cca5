package geo

import "math"

// EarthRadiusKilometers is the fixed sphere radius used for all
// distance calculations
const EarthRadiusKilometers = 6371.0

// Distance calculates the great-circle distance in meters between two
// GPS coordinates using the Haversine formula
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	// Distance in meters
	return EarthRadiusKilometers * c * 1000
}

// Bearing calculates the initial compass bearing in degrees [0, 360)
// from point 1 to point 2 (0 = North)
func Bearing(lat1, lon1, lat2, lon2 float64) float64 {
	dLon := toRadians(lon2 - lon1)
	lat1Rad := toRadians(lat1)
	lat2Rad := toRadians(lat2)

	y := math.Sin(dLon) * math.Cos(lat2Rad)
	x := math.Cos(lat1Rad)*math.Sin(lat2Rad) -
		math.Sin(lat1Rad)*math.Cos(lat2Rad)*math.Cos(dLon)

	bearingDeg := toDegrees(math.Atan2(y, x))

	// Normalize to 0-360
	return math.Mod(bearingDeg+360, 360)
}

// IsWithinRadius reports whether the observer is within radiusMeters of
// the target location
func IsWithinRadius(userLat, userLon, targetLat, targetLon, radiusMeters float64) bool {
	return Distance(userLat, userLon, targetLat, targetLon) <= radiusMeters
}

// RelativeAngle normalizes the difference between a bearing and a device
// heading into (-180, 180], the signed angle left or right of straight ahead
func RelativeAngle(bearingDeg, headingDeg float64) float64 {
	angle := math.Mod(bearingDeg-headingDeg, 360)
	if angle > 180 {
		angle -= 360
	}
	if angle <= -180 {
		angle += 360
	}
	return angle
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180.0
}

func toDegrees(radians float64) float64 {
	return radians * 180.0 / math.Pi
}
