package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dwhittlesey/TreasureHunter2/internal/models"
	"github.com/dwhittlesey/TreasureHunter2/internal/service"
)

// MemoryStore is an in-memory implementation of service.Store for tests
// and local single-process runs. The store mutex gives the same
// exactly-one-winner guarantee the Postgres conditional update does.
type MemoryStore struct {
	mu        sync.Mutex
	items     map[string]*models.TreasureItem
	itemTypes map[int]*models.ItemType
	players   map[string]*models.Player
	inventory []models.InventoryEntry
	events    []models.CollectionEvent
}

// NewMemoryStore creates an empty store pre-seeded with the default item
// types
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items:   make(map[string]*models.TreasureItem),
		players: make(map[string]*models.Player),
		itemTypes: map[int]*models.ItemType{
			1: {ID: 1, Name: "Coin", BasePointValue: 100, DefaultIconURL: "/assets/icons/coin.png"},
			2: {ID: 2, Name: "Gem", BasePointValue: 300, DefaultIconURL: "/assets/icons/gem.png"},
			3: {ID: 3, Name: "Chest", BasePointValue: 500, DefaultIconURL: "/assets/icons/chest.png"},
		},
	}
}

func (s *MemoryStore) CreateItem(_ context.Context, item *models.TreasureItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *item
	s.items[item.ID] = &copied
	return nil
}

func (s *MemoryStore) ItemByID(_ context.Context, id string) (*models.TreasureItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return nil, service.ErrItemNotFound
	}
	copied := *item
	return &copied, nil
}

func (s *MemoryStore) UncollectedItems(_ context.Context) ([]models.TreasureItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var items []models.TreasureItem
	for _, item := range s.items {
		if !item.Collected {
			items = append(items, *item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].PlacedAt.Before(items[j].PlacedAt)
	})
	return items, nil
}

func (s *MemoryStore) ItemTypeByID(_ context.Context, id int) (*models.ItemType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.itemTypes[id]
	if !ok {
		return nil, service.ErrItemTypeNotFound
	}
	copied := *it
	return &copied, nil
}

func (s *MemoryStore) PlayerByID(_ context.Context, id string) (*models.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.players[id]
	if !ok {
		return nil, service.ErrPlayerNotFound
	}
	copied := *p
	return &copied, nil
}

func (s *MemoryStore) CreatePlayer(_ context.Context, player *models.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *player
	s.players[player.ID] = &copied
	return nil
}

func (s *MemoryStore) CollectItem(_ context.Context, itemID, userID string, collectedAt time.Time) (*models.InventoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[itemID]
	if !ok {
		return nil, service.ErrItemNotFound
	}
	if item.Collected {
		return nil, service.ErrAlreadyCollected
	}
	player, ok := s.players[userID]
	if !ok {
		return nil, service.ErrPlayerNotFound
	}

	item.Collected = true
	item.CollectedByUserID = userID
	at := collectedAt
	item.CollectedAt = &at

	entry := models.InventoryEntry{
		ID:               uuid.New().String(),
		UserID:           userID,
		TreasureItemID:   item.ID,
		TreasureItemName: item.Name,
		CollectedAt:      collectedAt,
		PointsEarned:     item.PointValue,
	}
	s.inventory = append(s.inventory, entry)

	player.TotalPoints += item.PointValue
	lastActive := collectedAt
	player.LastActiveAt = &lastActive

	copied := entry
	return &copied, nil
}

func (s *MemoryStore) InventoryByUser(_ context.Context, userID string) ([]models.InventoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var entries []models.InventoryEntry
	for _, e := range s.inventory {
		if e.UserID == userID {
			entries = append(entries, e)
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CollectedAt.After(entries[j].CollectedAt)
	})
	return entries, nil
}

// InsertCollectionEvent appends to the in-memory audit log
func (s *MemoryStore) InsertCollectionEvent(_ context.Context, event *models.CollectionEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.events {
		if e.EventID == event.EventID {
			return nil
		}
	}
	s.events = append(s.events, *event)
	return nil
}
