package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/dwhittlesey/TreasureHunter2/internal/geo"
	"github.com/dwhittlesey/TreasureHunter2/internal/models"
	"github.com/dwhittlesey/TreasureHunter2/internal/proximity"
	redisClient "github.com/dwhittlesey/TreasureHunter2/internal/redis"
)

// CollectionStreamName is the JetStream stream holding collection events
// for archival
const CollectionStreamName = "TREASURE_COLLECTIONS"

// TreasureService handles the business logic for placing, finding and
// collecting treasures. The redis client and NATS connection are
// optional; when nil the corresponding event publish is skipped.
type TreasureService struct {
	store Store
	redis *redisClient.Client
	nats  *nats.Conn
	js    jetstream.JetStream // JetStream context for persistent messaging
}

// NewTreasureService creates the service and ensures the archival stream
// exists when a NATS connection is supplied
func NewTreasureService(store Store, redis *redisClient.Client, natsConn *nats.Conn) (*TreasureService, error) {
	s := &TreasureService{
		store: store,
		redis: redis,
		nats:  natsConn,
	}

	if natsConn != nil {
		js, err := jetstream.New(natsConn)
		if err != nil {
			return nil, fmt.Errorf("failed to create JetStream context: %w", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
			Name:        CollectionStreamName,
			Description: "Stream for collection events archival",
			Subjects:    []string{"treasure.collections.*"},
			Storage:     jetstream.FileStorage,
			Retention:   jetstream.WorkQueuePolicy,
			MaxAge:      24 * time.Hour,
			Replicas:    1,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create/update stream: %w", err)
		}
		fmt.Printf("[JETSTREAM] Stream '%s' ready\n", CollectionStreamName)

		s.js = js
	}

	return s, nil
}

// CreateItem validates and places a new treasure. The point value and
// default presentation assets come from the item type.
func (s *TreasureService) CreateItem(ctx context.Context, req *models.PlaceItemRequest, placedByUserID string) (*models.TreasureItem, error) {
	if req.Name == "" {
		return nil, validationf("name is required")
	}
	if len(req.Name) > models.MaxNameLength {
		return nil, validationf("name must not exceed %d characters", models.MaxNameLength)
	}
	if len(req.Description) > models.MaxDescriptionLength {
		return nil, validationf("description must not exceed %d characters", models.MaxDescriptionLength)
	}
	if err := validateCoordinates(req.Latitude, req.Longitude); err != nil {
		return nil, err
	}
	if req.DiscoveryRadiusMeters < models.MinDiscoveryRadiusMeters ||
		req.DiscoveryRadiusMeters > models.MaxDiscoveryRadiusMeters {
		return nil, validationf("discovery radius must be between %.0f and %.0f meters",
			models.MinDiscoveryRadiusMeters, models.MaxDiscoveryRadiusMeters)
	}

	itemType, err := s.store.ItemTypeByID(ctx, req.ItemTypeID)
	if err == ErrItemTypeNotFound {
		return nil, validationf("invalid item type ID %d", req.ItemTypeID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve item type: %w", err)
	}

	item := &models.TreasureItem{
		ID:                    uuid.New().String(),
		Name:                  req.Name,
		Description:           req.Description,
		ItemTypeID:            itemType.ID,
		Latitude:              req.Latitude,
		Longitude:             req.Longitude,
		Altitude:              req.Altitude,
		DiscoveryRadiusMeters: req.DiscoveryRadiusMeters,
		PointValue:            itemType.BasePointValue,
		PlacedByUserID:        placedByUserID,
		PlacedAt:              time.Now().UTC(),
		ModelURL:              itemType.DefaultModelURL,
		IconURL:               itemType.DefaultIconURL,
	}

	if err := s.store.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create treasure item: %w", err)
	}

	return item, nil
}

// GetNearby returns uncollected treasures within searchRadiusMeters of
// the observer, annotated with distance and bearing and sorted nearest
// first
func (s *TreasureService) GetNearby(ctx context.Context, lat, lon, searchRadiusMeters float64) ([]models.NearbyTreasure, error) {
	if err := validateCoordinates(lat, lon); err != nil {
		return nil, err
	}
	if searchRadiusMeters <= 0 {
		searchRadiusMeters = models.DefaultSearchRadiusMeters
	}

	items, err := s.store.UncollectedItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load treasure items: %w", err)
	}

	sightings := proximity.FindNearby(lat, lon, items, searchRadiusMeters)

	nearby := make([]models.NearbyTreasure, 0, len(sightings))
	for _, sighting := range sightings {
		nearby = append(nearby, models.NearbyTreasure{
			TreasureItem:   sighting.Item,
			DistanceMeters: sighting.DistanceMeters,
			BearingDegrees: sighting.BearingDegrees,
		})
	}

	return nearby, nil
}

// Collect validates and atomically commits a collection attempt.
// Preconditions are checked in order: item exists, not already
// collected, not the placer's own item, within discovery radius, player
// exists. On success the store commits all four mutations together and
// the collection event is published downstream, best effort.
func (s *TreasureService) Collect(ctx context.Context, itemID, userID string, lat, lon float64) (*models.InventoryEntry, error) {
	if err := validateCoordinates(lat, lon); err != nil {
		return nil, err
	}

	item, err := s.store.ItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if item.Collected {
		return nil, ErrAlreadyCollected
	}

	if item.PlacedByUserID == userID {
		return nil, ErrSelfCollection
	}

	distance := geo.Distance(lat, lon, item.Latitude, item.Longitude)
	if distance > item.DiscoveryRadiusMeters {
		return nil, &OutOfRangeError{
			DistanceMeters: distance,
			RadiusMeters:   item.DiscoveryRadiusMeters,
		}
	}

	if _, err := s.store.PlayerByID(ctx, userID); err != nil {
		return nil, err
	}

	// The store serializes concurrent attempts on the same item: a lost
	// race comes back as ErrAlreadyCollected here.
	entry, err := s.store.CollectItem(ctx, itemID, userID, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	event := &models.CollectionEvent{
		EventID:          uuid.New().String(),
		TreasureItemID:   item.ID,
		TreasureItemName: item.Name,
		InventoryID:      entry.ID,
		UserID:           userID,
		PlacedByUserID:   item.PlacedByUserID,
		PointsEarned:     entry.PointsEarned,
		Timestamp:        entry.CollectedAt,
	}

	// Publish to Redis Pub/Sub so live proximity sessions drop the item
	// promptly (non-blocking, best effort)
	if s.redis != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.redis.PublishCollectionEvent(ctx, event); err != nil {
				fmt.Printf("Warning: failed to publish collection event to Redis: %v\n", err)
			}
		}()
	}

	// Publish to NATS JetStream for archival (async, non-blocking): the
	// collection commit never depends on the archival path
	if s.js != nil {
		go func() {
			if err := s.publishToArchivalQueue(event); err != nil {
				fmt.Printf("Warning: failed to publish to archival queue: %v\n", err)
			}
		}()
	}

	return entry, nil
}

// Inventory returns the player's collected items, newest first
func (s *TreasureService) Inventory(ctx context.Context, userID string) ([]models.InventoryEntry, error) {
	return s.store.InventoryByUser(ctx, userID)
}

// Player returns the player's profile
func (s *TreasureService) Player(ctx context.Context, userID string) (*models.Player, error) {
	return s.store.PlayerByID(ctx, userID)
}

// RegisterPlayer creates the player record backing an externally issued
// identity
func (s *TreasureService) RegisterPlayer(ctx context.Context, displayName string) (*models.Player, error) {
	if displayName == "" {
		return nil, validationf("display name is required")
	}

	player := &models.Player{
		ID:          uuid.New().String(),
		DisplayName: displayName,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.CreatePlayer(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}
	return player, nil
}

// publishToArchivalQueue publishes the collection event to NATS
// JetStream for archival persistence (at-least-once semantics)
func (s *TreasureService) publishToArchivalQueue(event *models.CollectionEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	subject := fmt.Sprintf("treasure.collections.%s", event.TreasureItemID)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ack, err := s.js.Publish(ctx, subject, data)
	if err != nil {
		return fmt.Errorf("failed to publish to JetStream: %w", err)
	}

	fmt.Printf("[JETSTREAM] Published to %s, seq=%d\n", subject, ack.Sequence)
	return nil
}

func validateCoordinates(lat, lon float64) error {
	if lat < -90 || lat > 90 {
		return validationf("latitude must be between -90 and 90")
	}
	if lon < -180 || lon > 180 {
		return validationf("longitude must be between -180 and 180")
	}
	return nil
}
