package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dwhittlesey/TreasureHunter2/internal/models"
)

// channelPrefix is the Pub/Sub channel namespace for collection events
const channelPrefix = "collection_events:"

// Client wraps the Redis client with treasure-hunt specific operations
type Client struct {
	client *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{client: rdb}, nil
}

// PublishCollectionEvent publishes a collection event to Redis Pub/Sub.
// This is picked up by the proximity service so live sessions stop
// advertising the collected item.
func (c *Client) PublishCollectionEvent(ctx context.Context, event *models.CollectionEvent) error {
	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	channel := channelPrefix + event.TreasureItemID
	return c.client.Publish(ctx, channel, eventJSON).Err()
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.client.Close()
}
