package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/dwhittlesey/TreasureHunter2/internal/models"
	"github.com/dwhittlesey/TreasureHunter2/internal/service"
)

// Handler contains HTTP request handlers
type Handler struct {
	treasureService *service.TreasureService
}

// NewHandler creates a new HTTP handler
func NewHandler(treasureService *service.TreasureService) *Handler {
	return &Handler{
		treasureService: treasureService,
	}
}

// SetupRoutes configures all HTTP routes
func (h *Handler) SetupRoutes() *mux.Router {
	router := mux.NewRouter()

	// Health check
	router.HandleFunc("/health", h.HealthCheck).Methods("GET")

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/users/register", h.RegisterPlayer).Methods("POST")

	authed := api.NewRoute().Subrouter()
	authed.Use(authMiddleware)
	authed.HandleFunc("/treasures", h.PlaceTreasure).Methods("POST")
	authed.HandleFunc("/treasures/nearby", h.GetNearbyTreasures).Methods("GET")
	authed.HandleFunc("/treasures/{id}/collect", h.CollectTreasure).Methods("POST")
	authed.HandleFunc("/users/me", h.GetMe).Methods("GET")
	authed.HandleFunc("/users/inventory", h.GetInventory).Methods("GET")

	// Middleware
	router.Use(loggingMiddleware)
	router.Use(corsMiddleware)

	return router
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "api-gateway",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// RegisterPlayer creates the player record for an externally issued
// identity and returns its opaque credential
func (h *Handler) RegisterPlayer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DisplayName string `json:"display_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	player, err := h.treasureService.RegisterPlayer(r.Context(), req.DisplayName)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"player": player,
		"token":  player.ID,
	})
}

// PlaceTreasure handles item placement requests
func (h *Handler) PlaceTreasure(w http.ResponseWriter, r *http.Request) {
	var req models.PlaceItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	item, err := h.treasureService.CreateItem(r.Context(), &req, userID(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, item)
}

// GetNearbyTreasures returns uncollected treasures near the caller,
// sorted nearest first
func (h *Handler) GetNearbyTreasures(w http.ResponseWriter, r *http.Request) {
	lat, err := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Query parameter 'lat' is required")
		return
	}
	lon, err := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Query parameter 'lon' is required")
		return
	}

	radius := models.DefaultSearchRadiusMeters
	if raw := r.URL.Query().Get("radius"); raw != "" {
		radius, err = strconv.ParseFloat(raw, 64)
		if err != nil || radius <= 0 {
			respondError(w, http.StatusBadRequest, "Query parameter 'radius' must be a positive number")
			return
		}
	}

	nearby, err := h.treasureService.GetNearby(r.Context(), lat, lon, radius)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, nearby)
}

// CollectTreasure handles a collection attempt
func (h *Handler) CollectTreasure(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	itemID := vars["id"]
	if itemID == "" {
		respondError(w, http.StatusBadRequest, "Item ID is required")
		return
	}

	var req models.CollectItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	entry, err := h.treasureService.Collect(r.Context(), itemID, userID(r), req.Latitude, req.Longitude)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, entry)
}

// GetMe returns the caller's player profile
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	player, err := h.treasureService.Player(r.Context(), userID(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, player)
}

// GetInventory returns the caller's collected items, newest first
func (h *Handler) GetInventory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.treasureService.Inventory(r.Context(), userID(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if entries == nil {
		entries = []models.InventoryEntry{}
	}
	respondJSON(w, http.StatusOK, entries)
}

// respondServiceError maps engine error kinds to HTTP status codes.
// Everything unrecognized is a transient collaborator failure.
func respondServiceError(w http.ResponseWriter, err error) {
	var verr *service.ValidationError
	var oor *service.OutOfRangeError

	switch {
	case errors.As(err, &verr):
		respondError(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, service.ErrItemNotFound), errors.Is(err, service.ErrPlayerNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrAlreadyCollected), errors.Is(err, service.ErrSelfCollection):
		respondError(w, http.StatusConflict, err.Error())
	case errors.As(err, &oor):
		respondJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":           oor.Error(),
			"distance_meters": oor.DistanceMeters,
			"radius_meters":   oor.RadiusMeters,
		})
	default:
		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, map[string]string{
		"error": message,
	})
}
