package models

import "time"

// Player represents a registered hunter. TotalPoints only ever increases,
// and only through successful collections.
type Player struct {
	ID           string     `json:"id"`
	DisplayName  string     `json:"display_name"`
	TotalPoints  int        `json:"total_points"`
	CreatedAt    time.Time  `json:"created_at"`
	LastActiveAt *time.Time `json:"last_active_at,omitempty"`
}

// InventoryEntry records a single successful collection, 1:1 with the
// item's collection event
type InventoryEntry struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	TreasureItemID   string    `json:"treasure_item_id"`
	TreasureItemName string    `json:"treasure_item_name"`
	CollectedAt      time.Time `json:"collected_at"`
	PointsEarned     int       `json:"points_earned"`
}
