package models

import "time"

// Game constants
const (
	MinDiscoveryRadiusMeters     = 1.0
	MaxDiscoveryRadiusMeters     = 50.0
	DefaultDiscoveryRadiusMeters = 5.0

	// Items beyond this range are never pushed to a live connection,
	// regardless of their own discovery radius.
	VisibilityRangeMeters = 100.0

	DefaultSearchRadiusMeters = 100.0

	MaxNameLength        = 200
	MaxDescriptionLength = 1000
)

// TreasureItem represents a collectible anchored to GPS coordinates.
// An item transitions Placed -> Collected exactly once; Collected is terminal.
type TreasureItem struct {
	ID                    string     `json:"id"`
	Name                  string     `json:"name"`
	Description           string     `json:"description,omitempty"`
	ItemTypeID            int        `json:"item_type_id"`
	Latitude              float64    `json:"latitude"`
	Longitude             float64    `json:"longitude"`
	Altitude              *float64   `json:"altitude,omitempty"`
	DiscoveryRadiusMeters float64    `json:"discovery_radius_meters"`
	PointValue            int        `json:"point_value"`
	Collected             bool       `json:"collected"`
	PlacedByUserID        string     `json:"placed_by_user_id"`
	CollectedByUserID     string     `json:"collected_by_user_id,omitempty"`
	PlacedAt              time.Time  `json:"placed_at"`
	CollectedAt           *time.Time `json:"collected_at,omitempty"`
	ModelURL              string     `json:"model_url,omitempty"`
	IconURL               string     `json:"icon_url,omitempty"`
}

// ItemType is a lookup for base point values and default presentation assets
type ItemType struct {
	ID              int    `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
	BasePointValue  int    `json:"base_point_value"`
	DefaultModelURL string `json:"default_model_url,omitempty"`
	DefaultIconURL  string `json:"default_icon_url,omitempty"`
}

// NearbyTreasure is a treasure item annotated with distance and bearing
// from the observer that requested it
type NearbyTreasure struct {
	TreasureItem
	DistanceMeters float64 `json:"distance_meters"`
	BearingDegrees float64 `json:"bearing_degrees"`
}

// PlaceItemRequest is the incoming request to place a new treasure
type PlaceItemRequest struct {
	Name                  string   `json:"name"`
	Description           string   `json:"description,omitempty"`
	ItemTypeID            int      `json:"item_type_id"`
	Latitude              float64  `json:"latitude"`
	Longitude             float64  `json:"longitude"`
	Altitude              *float64 `json:"altitude,omitempty"`
	DiscoveryRadiusMeters float64  `json:"discovery_radius_meters"`
}

// CollectItemRequest carries the collector's reported position
type CollectItemRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
