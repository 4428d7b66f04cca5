package service

import (
	"context"
	"time"

	"github.com/dwhittlesey/TreasureHunter2/internal/models"
)

// Store is the persistence collaborator for the engine. Implementations
// must return the sentinel errors from this package for unresolved
// identifiers and for a lost collection race.
type Store interface {
	CreateItem(ctx context.Context, item *models.TreasureItem) error
	ItemByID(ctx context.Context, id string) (*models.TreasureItem, error)
	UncollectedItems(ctx context.Context) ([]models.TreasureItem, error)
	ItemTypeByID(ctx context.Context, id int) (*models.ItemType, error)

	PlayerByID(ctx context.Context, id string) (*models.Player, error)
	CreatePlayer(ctx context.Context, player *models.Player) error

	// CollectItem commits the collection as a single atomic unit: mark
	// the item collected, create the inventory entry, add the points to
	// the player and bump their last-active timestamp. Exactly one of
	// any set of concurrent calls for the same item may succeed; the
	// rest get ErrAlreadyCollected.
	CollectItem(ctx context.Context, itemID, userID string, collectedAt time.Time) (*models.InventoryEntry, error)

	InventoryByUser(ctx context.Context, userID string) ([]models.InventoryEntry, error)
}
