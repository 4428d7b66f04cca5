package realtime

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow all origins for development (use proper CORS in production)
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler upgrades connections and tracks live sessions. Sessions never
// see each other; the registry exists only for stats and shutdown.
type Handler struct {
	catalog  *Catalog
	sessions sync.Map // map[string]*Session
}

// NewHandler creates a new realtime handler
func NewHandler(catalog *Catalog) *Handler {
	return &Handler{catalog: catalog}
}

// SetupRoutes configures the realtime routes
func (h *Handler) SetupRoutes() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/ws/hunt", h.HandleWebSocket)
	router.HandleFunc("/health", h.HealthCheck).Methods("GET")
	router.HandleFunc("/stats", h.GetStats).Methods("GET")

	return router
}

// HandleWebSocket upgrades the HTTP connection and runs the proximity
// stream until the client goes away
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	userID := bearerToken(r)
	if userID == "" {
		http.Error(w, "Missing or malformed Authorization header", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		fmt.Printf("Failed to upgrade connection: %v\n", err)
		return
	}

	session := NewSession(uuid.New().String(), userID, conn, h.catalog)
	h.sessions.Store(session.ID, session)
	fmt.Printf("[SESSION %s] connected (user %s)\n", session.ID, userID)

	session.Run(r.Context())

	h.sessions.Delete(session.ID)
	fmt.Printf("[SESSION %s] closed\n", session.ID)
}

// HealthCheck returns service health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"healthy","service":"proximity-service"}`)
}

// GetStats returns the number of live sessions
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	count := 0
	h.sessions.Range(func(_, _ interface{}) bool {
		count++
		return true
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"sessions":%d}`, count)
}

// CloseAll tears down every live session (server shutdown)
func (h *Handler) CloseAll() {
	h.sessions.Range(func(_, value interface{}) bool {
		value.(*Session).Close()
		return true
	})
}

// bearerToken extracts the opaque user identifier from the Authorization
// header, falling back to the token query parameter (browser WebSocket
// clients cannot set headers)
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) > len(prefix) && auth[:len(prefix)] == prefix {
		return auth[len(prefix):]
	}
	return r.URL.Query().Get("token")
}
