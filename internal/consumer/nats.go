package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/dwhittlesey/TreasureHunter2/internal/models"
	"github.com/dwhittlesey/TreasureHunter2/internal/store"
)

// NATSConsumer consumes collection events from JetStream and persists
// them to the audit log
type NATSConsumer struct {
	conn *nats.Conn
	js   jetstream.JetStream
	db   *store.PostgresStore
}

// NewNATSConsumer connects to NATS and creates a JetStream context
func NewNATSConsumer(natsURL string, db *store.PostgresStore) (*NATSConsumer, error) {
	conn, err := nats.Connect(natsURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	return &NATSConsumer{conn: conn, js: js, db: db}, nil
}

// Start begins consuming collection events. Blocks until ctx is
// canceled.
func (c *NATSConsumer) Start(ctx context.Context) error {
	consumer, err := c.js.CreateOrUpdateConsumer(ctx, "TREASURE_COLLECTIONS", jetstream.ConsumerConfig{
		Durable:       "archival-worker",
		FilterSubject: "treasure.collections.*",
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	cc, err := consumer.Consume(func(msg jetstream.Msg) {
		c.handleMessage(ctx, msg)
	})
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}
	defer cc.Stop()

	fmt.Println("Consuming from stream TREASURE_COLLECTIONS (treasure.collections.*)")

	<-ctx.Done()
	return nil
}

// handleMessage processes a single collection event message
func (c *NATSConsumer) handleMessage(ctx context.Context, msg jetstream.Msg) {
	var event models.CollectionEvent
	if err := json.Unmarshal(msg.Data(), &event); err != nil {
		fmt.Printf("Failed to unmarshal event: %v\n", err)
		msg.Term()
		return
	}

	dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := c.db.InsertCollectionEvent(dbCtx, &event); err != nil {
		fmt.Printf("Failed to persist collection event %s: %v\n", event.EventID, err)
		// Leave unacked so JetStream redelivers
		msg.Nak()
		return
	}

	fmt.Printf("Persisted collection event %s (item: %s, user: %s, points: %d)\n",
		event.EventID, event.TreasureItemID, event.UserID, event.PointsEarned)

	msg.Ack()
}

// Close closes the NATS connection
func (c *NATSConsumer) Close() error {
	c.conn.Close()
	return nil
}
