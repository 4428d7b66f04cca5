package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/dwhittlesey/TreasureHunter2/internal/models"
	"github.com/dwhittlesey/TreasureHunter2/internal/service"
)

// PostgresStore wraps the PostgreSQL database connection
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL-backed store
func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &PostgresStore{db: db}, nil
}

// InitSchema creates the necessary database tables and seeds the item
// type lookup
func (s *PostgresStore) InitSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS item_types (
		id INTEGER PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		description TEXT,
		base_point_value INTEGER NOT NULL,
		default_model_url TEXT,
		default_icon_url TEXT
	);

	CREATE TABLE IF NOT EXISTS players (
		id VARCHAR(255) PRIMARY KEY,
		display_name VARCHAR(255) NOT NULL,
		total_points INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		last_active_at TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS items (
		id VARCHAR(255) PRIMARY KEY,
		name VARCHAR(200) NOT NULL,
		description TEXT,
		item_type_id INTEGER NOT NULL REFERENCES item_types(id),
		latitude DOUBLE PRECISION NOT NULL,
		longitude DOUBLE PRECISION NOT NULL,
		altitude DOUBLE PRECISION,
		discovery_radius_meters DOUBLE PRECISION NOT NULL,
		point_value INTEGER NOT NULL,
		collected BOOLEAN NOT NULL DEFAULT FALSE,
		placed_by_user_id VARCHAR(255) NOT NULL,
		collected_by_user_id VARCHAR(255),
		placed_at TIMESTAMP NOT NULL,
		collected_at TIMESTAMP,
		model_url TEXT,
		icon_url TEXT
	);

	CREATE TABLE IF NOT EXISTS inventory (
		id VARCHAR(255) PRIMARY KEY,
		user_id VARCHAR(255) NOT NULL REFERENCES players(id),
		treasure_item_id VARCHAR(255) NOT NULL REFERENCES items(id),
		treasure_item_name VARCHAR(200) NOT NULL,
		collected_at TIMESTAMP NOT NULL,
		points_earned INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS collection_events (
		event_id VARCHAR(255) PRIMARY KEY,
		treasure_item_id VARCHAR(255) NOT NULL,
		treasure_item_name VARCHAR(200) NOT NULL,
		inventory_id VARCHAR(255) NOT NULL,
		user_id VARCHAR(255) NOT NULL,
		placed_by_user_id VARCHAR(255) NOT NULL,
		points_earned INTEGER NOT NULL,
		timestamp TIMESTAMP NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_items_collected ON items(collected);
	CREATE INDEX IF NOT EXISTS idx_inventory_user_id ON inventory(user_id);
	CREATE INDEX IF NOT EXISTS idx_inventory_collected_at ON inventory(collected_at);
	`

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	seed := `
	INSERT INTO item_types (id, name, description, base_point_value, default_model_url, default_icon_url)
	VALUES
		(1, 'Coin', 'A common treasure coin', 100, '/assets/models/coin.glb', '/assets/icons/coin.png'),
		(2, 'Gem', 'A rare sparkling gem', 300, '/assets/models/gem.glb', '/assets/icons/gem.png'),
		(3, 'Chest', 'An epic treasure chest', 500, '/assets/models/chest.glb', '/assets/icons/chest.png')
	ON CONFLICT (id) DO NOTHING
	`

	if _, err := s.db.ExecContext(ctx, seed); err != nil {
		return fmt.Errorf("failed to seed item types: %w", err)
	}

	return nil
}

// CreateItem inserts a placed treasure item
func (s *PostgresStore) CreateItem(ctx context.Context, item *models.TreasureItem) error {
	query := `
		INSERT INTO items (id, name, description, item_type_id, latitude, longitude, altitude,
			discovery_radius_meters, point_value, collected, placed_by_user_id, placed_at,
			model_url, icon_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, FALSE, $10, $11, $12, $13)
	`

	_, err := s.db.ExecContext(ctx, query,
		item.ID, item.Name, nullString(item.Description), item.ItemTypeID,
		item.Latitude, item.Longitude, item.Altitude,
		item.DiscoveryRadiusMeters, item.PointValue,
		item.PlacedByUserID, item.PlacedAt,
		nullString(item.ModelURL), nullString(item.IconURL),
	)
	if err != nil {
		return fmt.Errorf("failed to insert item: %w", err)
	}

	return nil
}

const itemColumns = `id, name, COALESCE(description, ''), item_type_id, latitude, longitude,
	altitude, discovery_radius_meters, point_value, collected, placed_by_user_id,
	COALESCE(collected_by_user_id, ''), placed_at, collected_at,
	COALESCE(model_url, ''), COALESCE(icon_url, '')`

// ItemByID returns one item or service.ErrItemNotFound
func (s *PostgresStore) ItemByID(ctx context.Context, id string) (*models.TreasureItem, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id)

	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, service.ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query item: %w", err)
	}
	return item, nil
}

// UncollectedItems returns every item still in the Placed state
func (s *PostgresStore) UncollectedItems(ctx context.Context) ([]models.TreasureItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE collected = FALSE ORDER BY placed_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []models.TreasureItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, *item)
	}

	return items, rows.Err()
}

// ItemTypeByID returns one item type or service.ErrItemTypeNotFound
func (s *PostgresStore) ItemTypeByID(ctx context.Context, id int) (*models.ItemType, error) {
	query := `
		SELECT id, name, COALESCE(description, ''), base_point_value,
			COALESCE(default_model_url, ''), COALESCE(default_icon_url, '')
		FROM item_types WHERE id = $1
	`

	it := &models.ItemType{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&it.ID, &it.Name, &it.Description, &it.BasePointValue,
		&it.DefaultModelURL, &it.DefaultIconURL,
	)
	if err == sql.ErrNoRows {
		return nil, service.ErrItemTypeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query item type: %w", err)
	}
	return it, nil
}

// PlayerByID returns one player or service.ErrPlayerNotFound
func (s *PostgresStore) PlayerByID(ctx context.Context, id string) (*models.Player, error) {
	query := `SELECT id, display_name, total_points, created_at, last_active_at FROM players WHERE id = $1`

	p := &models.Player{}
	var lastActive sql.NullTime
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.DisplayName, &p.TotalPoints, &p.CreatedAt, &lastActive,
	)
	if err == sql.ErrNoRows {
		return nil, service.ErrPlayerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query player: %w", err)
	}
	if lastActive.Valid {
		p.LastActiveAt = &lastActive.Time
	}
	return p, nil
}

// CreatePlayer inserts a new player record
func (s *PostgresStore) CreatePlayer(ctx context.Context, player *models.Player) error {
	query := `INSERT INTO players (id, display_name, total_points, created_at) VALUES ($1, $2, $3, $4)`

	_, err := s.db.ExecContext(ctx, query,
		player.ID, player.DisplayName, player.TotalPoints, player.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert player: %w", err)
	}
	return nil
}

// CollectItem commits the collection as one transaction. The conditional
// UPDATE on "collected = FALSE" is what serializes concurrent attempts:
// exactly one transaction flips the flag, every other one sees zero rows
// and fails with ErrAlreadyCollected.
func (s *PostgresStore) CollectItem(ctx context.Context, itemID, userID string, collectedAt time.Time) (*models.InventoryEntry, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	claim := `
		UPDATE items
		SET collected = TRUE,
		    collected_by_user_id = $2,
		    collected_at = $3
		WHERE id = $1 AND collected = FALSE
		RETURNING name, point_value
	`

	var itemName string
	var pointValue int
	err = tx.QueryRowContext(ctx, claim, itemID, userID, collectedAt).Scan(&itemName, &pointValue)
	if err == sql.ErrNoRows {
		// Either the item never existed or someone else won the race
		var exists bool
		if checkErr := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM items WHERE id = $1)`, itemID).Scan(&exists); checkErr != nil {
			return nil, fmt.Errorf("failed to check item existence: %w", checkErr)
		}
		if !exists {
			return nil, service.ErrItemNotFound
		}
		return nil, service.ErrAlreadyCollected
	}
	if err != nil {
		return nil, fmt.Errorf("failed to claim item: %w", err)
	}

	entry := &models.InventoryEntry{
		ID:               uuid.New().String(),
		UserID:           userID,
		TreasureItemID:   itemID,
		TreasureItemName: itemName,
		CollectedAt:      collectedAt,
		PointsEarned:     pointValue,
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO inventory (id, user_id, treasure_item_id, treasure_item_name, collected_at, points_earned)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.ID, entry.UserID, entry.TreasureItemID, entry.TreasureItemName,
		entry.CollectedAt, entry.PointsEarned,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert inventory entry: %w", err)
	}

	// Relative increment keeps concurrent collections by the same player
	// from losing updates
	result, err := tx.ExecContext(ctx, `
		UPDATE players
		SET total_points = total_points + $2,
		    last_active_at = $3
		WHERE id = $1`,
		userID, pointValue, collectedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update player points: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return nil, service.ErrPlayerNotFound
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit collection: %w", err)
	}

	return entry, nil
}

// InventoryByUser returns the player's collection history, newest first
func (s *PostgresStore) InventoryByUser(ctx context.Context, userID string) ([]models.InventoryEntry, error) {
	query := `
		SELECT id, user_id, treasure_item_id, treasure_item_name, collected_at, points_earned
		FROM inventory
		WHERE user_id = $1
		ORDER BY collected_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query inventory: %w", err)
	}
	defer rows.Close()

	var entries []models.InventoryEntry
	for rows.Next() {
		var e models.InventoryEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.TreasureItemID, &e.TreasureItemName,
			&e.CollectedAt, &e.PointsEarned); err != nil {
			return nil, fmt.Errorf("failed to scan inventory entry: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// InsertCollectionEvent appends to the collection audit log, used by the
// archival worker
func (s *PostgresStore) InsertCollectionEvent(ctx context.Context, event *models.CollectionEvent) error {
	query := `
		INSERT INTO collection_events (event_id, treasure_item_id, treasure_item_name,
			inventory_id, user_id, placed_by_user_id, points_earned, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (event_id) DO NOTHING
	`

	_, err := s.db.ExecContext(ctx, query,
		event.EventID, event.TreasureItemID, event.TreasureItemName,
		event.InventoryID, event.UserID, event.PlacedByUserID,
		event.PointsEarned, event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert collection event: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(row rowScanner) (*models.TreasureItem, error) {
	item := &models.TreasureItem{}
	var altitude sql.NullFloat64
	var collectedAt sql.NullTime

	err := row.Scan(
		&item.ID, &item.Name, &item.Description, &item.ItemTypeID,
		&item.Latitude, &item.Longitude, &altitude,
		&item.DiscoveryRadiusMeters, &item.PointValue, &item.Collected,
		&item.PlacedByUserID, &item.CollectedByUserID,
		&item.PlacedAt, &collectedAt,
		&item.ModelURL, &item.IconURL,
	)
	if err != nil {
		return nil, err
	}

	if altitude.Valid {
		item.Altitude = &altitude.Float64
	}
	if collectedAt.Valid {
		item.CollectedAt = &collectedAt.Time
	}
	return item, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
