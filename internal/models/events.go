package models

import "time"

// CollectionEvent is published when a treasure is successfully collected.
// This is sent to:
// 1. Redis Pub/Sub (so live proximity sessions drop the item promptly)
// 2. NATS JetStream (for archival to PostgreSQL)
type CollectionEvent struct {
	EventID          string    `json:"event_id"`
	TreasureItemID   string    `json:"treasure_item_id"`
	TreasureItemName string    `json:"treasure_item_name"`
	InventoryID      string    `json:"inventory_id"`
	UserID           string    `json:"user_id"`
	PlacedByUserID   string    `json:"placed_by_user_id"`
	PointsEarned     int       `json:"points_earned"`
	Timestamp        time.Time `json:"timestamp"`
}
