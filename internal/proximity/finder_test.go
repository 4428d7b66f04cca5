package proximity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwhittlesey/TreasureHunter2/internal/models"
)

// itemAt places an item roughly meters north of the origin. One degree of
// latitude is ~111.2 km everywhere.
func itemAt(id string, metersNorth float64) models.TreasureItem {
	return models.TreasureItem{
		ID:                    id,
		Name:                  "treasure " + id,
		Latitude:              metersNorth / 111195.0,
		Longitude:             0,
		DiscoveryRadiusMeters: 10,
	}
}

func TestFindNearbyFiltersBySearchRadius(t *testing.T) {
	items := []models.TreasureItem{
		itemAt("near", 30),
		itemAt("far", 80),
	}

	got := FindNearby(0, 0, items, 50)

	require.Len(t, got, 1)
	assert.Equal(t, "near", got[0].Item.ID)
	assert.InDelta(t, 30, got[0].DistanceMeters, 1)
}

func TestFindNearbySortsAscendingByDistance(t *testing.T) {
	items := []models.TreasureItem{
		itemAt("c", 90),
		itemAt("a", 10),
		itemAt("b", 45),
	}

	got := FindNearby(0, 0, items, 100)

	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].Item.ID)
	assert.Equal(t, "b", got[1].Item.ID)
	assert.Equal(t, "c", got[2].Item.ID)
	for i := 1; i < len(got); i++ {
		assert.LessOrEqual(t, got[i-1].DistanceMeters, got[i].DistanceMeters)
	}
}

func TestFindNearbyNeverExceedsSearchRadius(t *testing.T) {
	items := []models.TreasureItem{
		itemAt("a", 99), itemAt("b", 100), itemAt("c", 101), itemAt("d", 250),
	}

	for _, s := range FindNearby(0, 0, items, 100) {
		assert.LessOrEqual(t, s.DistanceMeters, 100.0)
	}
}

func TestFindNearbyEmptyWhenNothingQualifies(t *testing.T) {
	items := []models.TreasureItem{itemAt("far", 500)}

	got := FindNearby(0, 0, items, 100)

	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFindNearbyEmptyCandidateSet(t *testing.T) {
	assert.Empty(t, FindNearby(0, 0, nil, 100))
}

func TestFindNearbyAnnotatesBearing(t *testing.T) {
	east := models.TreasureItem{ID: "east", Latitude: 0, Longitude: 0.0005}

	got := FindNearby(0, 0, []models.TreasureItem{east}, 100)

	require.Len(t, got, 1)
	assert.InDelta(t, 90, got[0].BearingDegrees, 0.5)
}

func TestFindNearbyStableOnTies(t *testing.T) {
	// Two items at the same spot keep input order
	items := []models.TreasureItem{itemAt("first", 20), itemAt("second", 20)}

	got := FindNearby(0, 0, items, 100)

	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Item.ID)
	assert.Equal(t, "second", got[1].Item.ID)
}
