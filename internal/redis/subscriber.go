package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/dwhittlesey/TreasureHunter2/internal/models"
)

// Subscriber wraps Redis Pub/Sub functionality for collection events
type Subscriber struct {
	client *redis.Client
	pubsub *redis.PubSub
}

// NewSubscriber creates a new Redis Pub/Sub subscriber
func NewSubscriber(addr, password string, db int) (*Subscriber, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Subscriber{client: rdb}, nil
}

// SubscribeToAll subscribes to collection events for every item.
// Channel pattern: "collection_events:*"
func (s *Subscriber) SubscribeToAll(ctx context.Context) error {
	s.pubsub = s.client.PSubscribe(ctx, channelPrefix+"*")
	return nil
}

// Message is a parsed collection event message
type Message struct {
	TreasureItemID string
	Event          models.CollectionEvent
}

// Listen starts listening for messages and sends them to the provided
// channel. Blocking; run in a goroutine.
func (s *Subscriber) Listen(ctx context.Context, messageChan chan<- *Message) error {
	if s.pubsub == nil {
		return fmt.Errorf("not subscribed to any channel")
	}

	ch := s.pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			var event models.CollectionEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				fmt.Printf("Warning: failed to parse collection event: %v\n", err)
				continue
			}

			messageChan <- &Message{
				TreasureItemID: extractItemIDFromChannel(msg.Channel),
				Event:          event,
			}
		}
	}
}

// extractItemIDFromChannel extracts the item ID from the channel name.
// Example: "collection_events:item123" -> "item123"
func extractItemIDFromChannel(channel string) string {
	if len(channel) > len(channelPrefix) {
		return channel[len(channelPrefix):]
	}
	return ""
}

// Close closes the subscriber
func (s *Subscriber) Close() error {
	if s.pubsub != nil {
		s.pubsub.Close()
	}
	return s.client.Close()
}
