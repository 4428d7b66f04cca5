package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dwhittlesey/TreasureHunter2/internal/ar"
	"github.com/dwhittlesey/TreasureHunter2/internal/models"
)

// hunter-sim walks a simulated player through the world: it registers a
// player, opens a live proximity connection and feeds the AR update
// manager with a scripted walk. The manager's throttled pushes become
// update_location reports, its rendered frames are logged, and anything
// the server marks discoverable gets collected over REST.

const degreesPerMeterLat = 1.0 / 111195.0

// walk produces GPS fixes along a straight northward stroll
type walk struct {
	mu         sync.Mutex
	lat, lon   float64
	stepMeters float64
	lastFix    time.Time
}

func (w *walk) CurrentLocation(ctx context.Context) (models.LocationReport, error) {
	if err := ctx.Err(); err != nil {
		return models.LocationReport{}, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	now := time.Now()
	if !w.lastFix.IsZero() {
		elapsed := now.Sub(w.lastFix).Seconds()
		w.lat += w.stepMeters * elapsed * degreesPerMeterLat
	}
	w.lastFix = now
	return models.LocationReport{Latitude: w.lat, Longitude: w.lon, Timestamp: now.UTC()}, nil
}

func (w *walk) position() (float64, float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lat, w.lon
}

// panning slowly sweeps the device heading left and right
type panning struct {
	start time.Time
}

func (p panning) Heading() float64 {
	elapsed := time.Since(p.start).Seconds()
	return math.Mod(30*math.Sin(elapsed*0.5)+360, 360)
}

func (p panning) Pitch() float64 { return 0 }

func main() {
	apiURL := flag.String("api", "http://localhost:8080", "API gateway base URL")
	wsURL := flag.String("ws", "ws://localhost:8081/ws/hunt", "Proximity service WebSocket URL")
	name := flag.String("name", "sim-hunter", "Display name for the simulated player")
	startLat := flag.Float64("lat", 40.7128, "Starting latitude")
	startLon := flag.Float64("lon", -74.0060, "Starting longitude")
	speed := flag.Float64("speed", 1.4, "Walking speed in meters per second, due north")
	flag.Parse()

	client := &http.Client{Timeout: 10 * time.Second}

	token, err := register(client, *apiURL, *name)
	if err != nil {
		log.Fatalf("failed to register player: %v", err)
	}
	log.Printf("registered player %s", token)

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	conn, _, err := websocket.DefaultDialer.Dial(*wsURL, header)
	if err != nil {
		log.Fatalf("failed to connect to proximity service: %v", err)
	}
	defer conn.Close()
	log.Printf("connected to %s", *wsURL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stroll := &walk{lat: *startLat, lon: *startLon, stepMeters: *speed}
	manager := ar.NewUpdateManager(stroll, panning{start: time.Now()}, 400, 800)
	manager.Start(ctx)
	defer manager.Stop()

	collected := make(map[string]bool)

	// Reader: server pushes drive the tracked item set and collects
	go func() {
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				log.Printf("connection closed: %v", err)
				stop()
				return
			}
			var envelope struct {
				Type string `json:"type"`
			}
			if err := json.Unmarshal(data, &envelope); err != nil {
				continue
			}
			switch envelope.Type {
			case models.MessageTypeStatus:
				var msg models.StatusMessage
				if err := json.Unmarshal(data, &msg); err == nil {
					log.Printf("status: %s", msg.Status)
				}
			case models.MessageTypeProximityUpdate:
				var msg models.ProximityUpdateMessage
				if err := json.Unmarshal(data, &msg); err != nil {
					continue
				}
				items := make([]ar.TrackedItem, 0, len(msg.Treasures))
				for _, t := range msg.Treasures {
					log.Printf("nearby: %s at %.1fm bearing %.0f (%s)", t.Name, t.DistanceMeters, t.BearingDegrees, t.ProximityLevel)
					items = append(items, ar.TrackedItem{
						ID:        t.ID,
						Name:      t.Name,
						Latitude:  t.Latitude,
						Longitude: t.Longitude,
					})
				}
				manager.SetItems(items)
			case models.MessageTypeTreasureDiscoverable:
				var msg models.DiscoverableMessage
				if err := json.Unmarshal(data, &msg); err != nil {
					continue
				}
				lat, lon := stroll.position()
				for _, t := range msg.Treasures {
					if collected[t.ID] {
						continue
					}
					log.Printf("discoverable: %s at %.1fm, attempting collect", t.Name, t.DistanceMeters)
					if err := collect(client, *apiURL, token, t.ID, lat, lon); err != nil {
						log.Printf("collect %s failed: %v", t.Name, err)
						continue
					}
					collected[t.ID] = true
					log.Printf("collected %s for %d points", t.Name, t.PointValue)
				}
			}
		}
	}()

	// Frame logger: roughly once a second, show what is on screen
	go func() {
		start := time.Now()
		var lastLogged time.Time
		for {
			select {
			case <-ctx.Done():
				return
			case frame := <-manager.Frames():
				if time.Since(lastLogged) < time.Second {
					continue
				}
				lastLogged = time.Now()
				for _, pos := range frame.Positions {
					if !pos.Screen.Visible {
						continue
					}
					log.Printf("on screen: %s %s at (%.0f, %.0f) %s away, pulse %.2f",
						pos.Item.Name, compassDirection(pos.Bearing),
						pos.Screen.X, pos.Screen.Y,
						formatDistance(pos.Distance), ar.PulseScale(time.Since(start)))
				}
			}
		}
	}()

	// Writer: the throttled push gate decides when the server hears
	// from us
	for {
		select {
		case <-ctx.Done():
			log.Print("received shutdown signal, disconnecting")
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case loc := <-manager.Pushes():
			msg := models.ClientMessage{
				Type:      models.MessageTypeUpdateLocation,
				Latitude:  loc.Latitude,
				Longitude: loc.Longitude,
			}
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("failed to report location: %v", err)
				return
			}
		}
	}
}

// compassDirection maps a bearing in degrees onto an eight-point rose
func compassDirection(bearing float64) string {
	points := []string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}
	index := int(math.Mod(bearing+22.5, 360) / 45)
	return points[index]
}

func formatDistance(meters float64) string {
	if meters >= 1000 {
		return fmt.Sprintf("%.1fkm", meters/1000)
	}
	return fmt.Sprintf("%.0fm", meters)
}

func register(client *http.Client, apiURL, name string) (string, error) {
	body, _ := json.Marshal(map[string]string{"display_name": name})
	resp, err := client.Post(apiURL+"/api/v1/users/register", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	var result struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	return result.Token, nil
}

func collect(client *http.Client, apiURL, token, itemID string, lat, lon float64) error {
	body, _ := json.Marshal(models.CollectItemRequest{Latitude: lat, Longitude: lon})
	req, err := http.NewRequest(http.MethodPost, apiURL+"/api/v1/treasures/"+itemID+"/collect", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		var detail struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&detail)
		return fmt.Errorf("status %d: %s", resp.StatusCode, detail.Error)
	}
	return nil
}
