package proximity

import (
	"sort"

	"github.com/dwhittlesey/TreasureHunter2/internal/geo"
	"github.com/dwhittlesey/TreasureHunter2/internal/models"
)

// Sighting is a candidate item annotated with the observer's distance
// and bearing to it
type Sighting struct {
	Item           models.TreasureItem
	DistanceMeters float64
	BearingDegrees float64
}

// FindNearby annotates each candidate item with distance and bearing from
// the observer, keeps those within searchRadiusMeters and returns them
// sorted ascending by distance. Ties keep input order. Pure and
// synchronous; callers supply the candidate set.
func FindNearby(lat, lon float64, items []models.TreasureItem, searchRadiusMeters float64) []Sighting {
	sightings := make([]Sighting, 0, len(items))

	for _, item := range items {
		distance := geo.Distance(lat, lon, item.Latitude, item.Longitude)
		if distance > searchRadiusMeters {
			continue
		}
		sightings = append(sightings, Sighting{
			Item:           item,
			DistanceMeters: distance,
			BearingDegrees: geo.Bearing(lat, lon, item.Latitude, item.Longitude),
		})
	}

	sort.SliceStable(sightings, func(i, j int) bool {
		return sightings[i].DistanceMeters < sightings[j].DistanceMeters
	})

	return sightings
}
