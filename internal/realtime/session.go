package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dwhittlesey/TreasureHunter2/internal/models"
	"github.com/dwhittlesey/TreasureHunter2/internal/proximity"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	sendBufferSize = 256
)

// Session is the per-connection proximity stream. It owns this
// connection's live state (last reported location, last push time) and
// shares nothing with other sessions beyond the read-only catalog.
type Session struct {
	ID      string
	UserID  string
	conn    *websocket.Conn
	catalog *Catalog

	send chan []byte

	// Latest-value mailbox for location reports: a newer report replaces
	// an unprocessed older one, so pushes are coalesced but never
	// reordered.
	reports chan models.LocationReport

	lastLocation *models.LocationReport
	lastPushAt   time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

// NewSession creates a session for an upgraded connection
func NewSession(id, userID string, conn *websocket.Conn, catalog *Catalog) *Session {
	return &Session{
		ID:      id,
		UserID:  userID,
		conn:    conn,
		catalog: catalog,
		send:    make(chan []byte, sendBufferSize),
		reports: make(chan models.LocationReport, 1),
		done:    make(chan struct{}),
	}
}

// Run drives the session until the connection drops or ctx is canceled.
// It blocks; the handler calls it from the connection's goroutine.
func (s *Session) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	defer cancel()

	go s.writePump(ctx)
	go s.processLoop(ctx)

	s.enqueueStatus(models.StatusConnected)

	// readPump runs on this goroutine; returning tears the session down
	s.readPump(ctx)

	cancel()
	close(s.done)
}

// Close cancels the session from outside (server shutdown)
func (s *Session) Close() {
	if s.cancel != nil {
		s.cancel()
	}
	s.conn.Close()
}

// Done is closed when the session has fully torn down
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// readPump consumes client messages and feeds the location mailbox
func (s *Session) readPump(ctx context.Context) {
	defer s.conn.Close()

	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				fmt.Printf("[SESSION %s] read error: %v\n", s.ID, err)
			}
			return
		}

		var msg models.ClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			fmt.Printf("[SESSION %s] malformed message: %v\n", s.ID, err)
			continue
		}

		if msg.Type != models.MessageTypeUpdateLocation {
			continue
		}
		if msg.Latitude < -90 || msg.Latitude > 90 || msg.Longitude < -180 || msg.Longitude > 180 {
			continue
		}

		s.offer(models.LocationReport{
			Latitude:  msg.Latitude,
			Longitude: msg.Longitude,
			Timestamp: time.Now(),
		})

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

// offer replaces any unprocessed report with the newer one
func (s *Session) offer(report models.LocationReport) {
	for {
		select {
		case s.reports <- report:
			return
		default:
			// Mailbox full: drop the stale report and retry
			select {
			case <-s.reports:
			default:
			}
		}
	}
}

// processLoop recomputes proximity on every report it dequeues and
// pushes the results back to this connection only
func (s *Session) processLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case report := <-s.reports:
			if err := s.process(ctx, report); err != nil {
				fmt.Printf("[SESSION %s] proximity update failed: %v\n", s.ID, err)
			}
		}
	}
}

func (s *Session) process(ctx context.Context, report models.LocationReport) error {
	items, err := s.catalog.Uncollected(ctx)
	if err != nil {
		return err
	}

	// Fixed outer visibility bound, irrespective of per-item radii
	sightings := proximity.FindNearby(report.Latitude, report.Longitude, items, models.VisibilityRangeMeters)

	treasures := make([]models.ProximityItem, 0, len(sightings))
	discoverable := make([]models.DiscoverableItem, 0)

	for _, sighting := range sightings {
		item := sighting.Item
		within := proximity.IsDiscoverable(sighting.DistanceMeters, item.DiscoveryRadiusMeters)

		treasures = append(treasures, models.ProximityItem{
			ID:                    item.ID,
			Name:                  item.Name,
			Latitude:              item.Latitude,
			Longitude:             item.Longitude,
			DistanceMeters:        sighting.DistanceMeters,
			BearingDegrees:        sighting.BearingDegrees,
			ProximityLevel:        string(proximity.Classify(sighting.DistanceMeters, item.DiscoveryRadiusMeters)),
			WithinDiscoveryRadius: within,
			DiscoveryRadiusMeters: item.DiscoveryRadiusMeters,
			IconURL:               item.IconURL,
			ModelURL:              item.ModelURL,
		})

		if within {
			discoverable = append(discoverable, models.DiscoverableItem{
				ID:             item.ID,
				Name:           item.Name,
				DistanceMeters: sighting.DistanceMeters,
				PointValue:     item.PointValue,
			})
		}
	}

	if err := s.enqueueJSON(models.ProximityUpdateMessage{
		Type:      models.MessageTypeProximityUpdate,
		Treasures: treasures,
	}); err != nil {
		return err
	}

	if len(discoverable) > 0 {
		if err := s.enqueueJSON(models.DiscoverableMessage{
			Type:      models.MessageTypeTreasureDiscoverable,
			Treasures: discoverable,
		}); err != nil {
			return err
		}
	}

	s.lastLocation = &report
	s.lastPushAt = time.Now()
	return nil
}

func (s *Session) enqueueStatus(status string) {
	s.enqueueJSON(models.StatusMessage{
		Type:     models.MessageTypeStatus,
		Status:   status,
		ClientID: s.ID,
	})
}

func (s *Session) enqueueJSON(v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	select {
	case s.send <- payload:
		return nil
	default:
		// Send buffer full: the client is too slow, drop the connection
		// rather than block everyone behind it
		s.conn.Close()
		return fmt.Errorf("send buffer full, closing session %s", s.ID)
	}
}

// writePump pumps messages from the send channel to the websocket
// connection and keeps it alive with pings
func (s *Session) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			s.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
