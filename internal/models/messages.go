package models

import "time"

// WebSocket message types
const (
	MessageTypeUpdateLocation       = "update_location"
	MessageTypeProximityUpdate      = "proximity_update"
	MessageTypeTreasureDiscoverable = "treasure_discoverable"
	MessageTypeStatus               = "status"
)

// Connection status values surfaced to the client as status, not data
const (
	StatusConnected = "connected"
	StatusClosing   = "closing"
)

// LocationReport is a single GPS fix reported by a client
type LocationReport struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// ClientMessage is the envelope for messages received over a live connection
type ClientMessage struct {
	Type      string  `json:"type"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ProximityItem is one entry of a proximity_update push, ordered by distance
type ProximityItem struct {
	ID                    string  `json:"id"`
	Name                  string  `json:"name"`
	Latitude              float64 `json:"latitude"`
	Longitude             float64 `json:"longitude"`
	DistanceMeters        float64 `json:"distance_meters"`
	BearingDegrees        float64 `json:"bearing_degrees"`
	ProximityLevel        string  `json:"proximity_level"`
	WithinDiscoveryRadius bool    `json:"within_discovery_radius"`
	DiscoveryRadiusMeters float64 `json:"discovery_radius_meters"`
	IconURL               string  `json:"icon_url,omitempty"`
	ModelURL              string  `json:"model_url,omitempty"`
}

// DiscoverableItem is one entry of a treasure_discoverable push
type DiscoverableItem struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	DistanceMeters float64 `json:"distance_meters"`
	PointValue     int     `json:"point_value"`
}

// ProximityUpdateMessage is pushed to the reporting connection only
type ProximityUpdateMessage struct {
	Type      string          `json:"type"`
	Treasures []ProximityItem `json:"treasures"`
}

// DiscoverableMessage is pushed when at least one item is within its
// own discovery radius
type DiscoverableMessage struct {
	Type      string             `json:"type"`
	Treasures []DiscoverableItem `json:"treasures"`
}

// StatusMessage carries connection lifecycle signals
type StatusMessage struct {
	Type     string `json:"type"`
	Status   string `json:"status"`
	ClientID string `json:"client_id,omitempty"`
}
