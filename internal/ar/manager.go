package ar

import (
	"context"
	"sync"
	"time"

	"github.com/dwhittlesey/TreasureHunter2/internal/geo"
	"github.com/dwhittlesey/TreasureHunter2/internal/models"
)

// Loop timing defaults
const (
	DefaultLocationInterval = 1 * time.Second
	DefaultRenderInterval   = 33 * time.Millisecond // ~30 FPS
	DefaultPushInterval     = 2 * time.Second

	// Location changes under this distance are not worth re-notifying
	significantMovementMeters = 1.0
)

// LocationSource produces GPS fixes. CurrentLocation may block; it must
// honor ctx cancellation.
type LocationSource interface {
	CurrentLocation(ctx context.Context) (models.LocationReport, error)
}

// OrientationSource supplies the latest device sensor reading. Must be
// safe for concurrent reads.
type OrientationSource interface {
	Heading() float64
	Pitch() float64
}

// TrackedItem is an item the render loop projects every tick
type TrackedItem struct {
	ID        string
	Name      string
	Latitude  float64
	Longitude float64
}

// ItemPosition is a projected item in one rendered frame
type ItemPosition struct {
	Item     TrackedItem
	Bearing  float64
	Distance float64
	Screen   ScreenPosition
}

// Frame is the output of one render tick
type Frame struct {
	At        time.Time
	Location  models.LocationReport
	Heading   float64
	Pitch     float64
	Positions []ItemPosition
}

// UpdateManager drives the client-side AR loops: a location sampling
// loop, a render loop and a push-throttle gate. The three loops are
// independently clocked and coordinate only through the most-recent
// location cache; stopping the manager cancels all of them promptly.
type UpdateManager struct {
	source      LocationSource
	orientation OrientationSource
	projector   Projector

	locationInterval time.Duration
	renderInterval   time.Duration
	pushInterval     time.Duration

	screenWidth  float64
	screenHeight float64

	mu      sync.RWMutex
	current *models.LocationReport
	items   []TrackedItem
	running bool

	// Latest-wins hand-off from the sampling loop to the push gate
	moved chan models.LocationReport

	frames chan Frame
	pushes chan models.LocationReport

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewUpdateManager creates a manager with default loop intervals
func NewUpdateManager(source LocationSource, orientation OrientationSource, screenWidth, screenHeight float64) *UpdateManager {
	return &UpdateManager{
		source:           source,
		orientation:      orientation,
		projector:        NewProjector(),
		locationInterval: DefaultLocationInterval,
		renderInterval:   DefaultRenderInterval,
		pushInterval:     DefaultPushInterval,
		screenWidth:      screenWidth,
		screenHeight:     screenHeight,
		moved:            make(chan models.LocationReport, 1),
		frames:           make(chan Frame, 1),
		pushes:           make(chan models.LocationReport, 1),
	}
}

// SetIntervals overrides the loop timing (tests, slow devices)
func (m *UpdateManager) SetIntervals(location, render, push time.Duration) {
	m.locationInterval = location
	m.renderInterval = render
	m.pushInterval = push
}

// SetItems replaces the set of items the render loop projects
func (m *UpdateManager) SetItems(items []TrackedItem) {
	m.mu.Lock()
	m.items = items
	m.mu.Unlock()
}

// CurrentLocation returns the latest cached fix, or nil before the
// first one arrives
func (m *UpdateManager) CurrentLocation() *models.LocationReport {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Frames delivers rendered frames at the render cadence. Slow consumers
// see only the latest frame.
func (m *UpdateManager) Frames() <-chan Frame {
	return m.frames
}

// Pushes delivers the most recent location at most once per push
// interval; intermediate samples are dropped
func (m *UpdateManager) Pushes() <-chan models.LocationReport {
	return m.pushes
}

// Start launches the three loops. Returns immediately.
func (m *UpdateManager) Start(ctx context.Context) {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return
	}
	m.running = true
	m.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel

	m.wg.Add(3)
	go m.locationLoop(ctx)
	go m.renderLoop(ctx)
	go m.pushLoop(ctx)
}

// Stop cancels all loops and waits for them to exit. Safe to call more
// than once.
func (m *UpdateManager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	m.mu.Unlock()

	m.cancel()
	m.wg.Wait()
}

// locationLoop samples GPS fixes and refreshes the location cache when
// the device moved more than the significance threshold
func (m *UpdateManager) locationLoop(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.locationInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		fix, err := m.source.CurrentLocation(ctx)
		if err != nil {
			// Cancellation during a fix is silent teardown; transient
			// fix failures just wait for the next tick
			if ctx.Err() != nil {
				return
			}
			continue
		}

		m.mu.Lock()
		previous := m.current
		significant := previous == nil ||
			geo.Distance(previous.Latitude, previous.Longitude, fix.Latitude, fix.Longitude) > significantMovementMeters
		if significant {
			m.current = &fix
		}
		m.mu.Unlock()

		if significant {
			offerLatest(m.moved, fix)
		}
	}
}

// renderLoop re-projects every tracked item on each tick using the
// cached location and the latest sensor reading; it never waits for a
// new GPS fix
func (m *UpdateManager) renderLoop(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.renderInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		m.mu.RLock()
		location := m.current
		items := m.items
		m.mu.RUnlock()

		if location == nil {
			continue
		}

		heading := m.orientation.Heading()
		pitch := m.orientation.Pitch()

		positions := make([]ItemPosition, 0, len(items))
		for _, item := range items {
			bearing := geo.Bearing(location.Latitude, location.Longitude, item.Latitude, item.Longitude)
			distance := geo.Distance(location.Latitude, location.Longitude, item.Latitude, item.Longitude)
			positions = append(positions, ItemPosition{
				Item:     item,
				Bearing:  bearing,
				Distance: distance,
				Screen:   m.projector.Project(bearing, heading, pitch, m.screenWidth, m.screenHeight),
			})
		}

		offerLatest(m.frames, Frame{
			At:        time.Now(),
			Location:  *location,
			Heading:   heading,
			Pitch:     pitch,
			Positions: positions,
		})
	}
}

// pushLoop forwards the most recent significant location at a fixed
// minimum interval, dropping intermediate samples
func (m *UpdateManager) pushLoop(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.pushInterval)
	defer ticker.Stop()

	var pending *models.LocationReport

	for {
		select {
		case <-ctx.Done():
			return
		case loc := <-m.moved:
			pending = &loc
		case <-ticker.C:
			if pending == nil {
				continue
			}
			offerLatest(m.pushes, *pending)
			pending = nil
		}
	}
}

// offerLatest replaces an unconsumed value with the newer one
func offerLatest[T any](ch chan T, value T) {
	for {
		select {
		case ch <- value:
			return
		default:
			select {
			case <-ch:
			default:
			}
		}
	}
}
