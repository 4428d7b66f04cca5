package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwhittlesey/TreasureHunter2/internal/models"
	"github.com/dwhittlesey/TreasureHunter2/internal/service"
	"github.com/dwhittlesey/TreasureHunter2/internal/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	svc, err := service.NewTreasureService(store.NewMemoryStore(), nil, nil)
	require.NoError(t, err)
	srv := httptest.NewServer(NewHandler(svc).SetupRoutes())
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, token string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func register(t *testing.T, srv *httptest.Server, name string) string {
	t.Helper()
	resp := doJSON(t, "POST", srv.URL+"/api/v1/users/register", "",
		map[string]string{"display_name": name})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var out struct {
		Token string `json:"token"`
	}
	decode(t, resp, &out)
	require.NotEmpty(t, out.Token)
	return out.Token
}

func place(t *testing.T, srv *httptest.Server, token string, lat, lon, radius float64) models.TreasureItem {
	t.Helper()
	resp := doJSON(t, "POST", srv.URL+"/api/v1/treasures", token, models.PlaceItemRequest{
		Name:                  "Test Coin",
		ItemTypeID:            1,
		Latitude:              lat,
		Longitude:             lon,
		DiscoveryRadiusMeters: radius,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var item models.TreasureItem
	decode(t, resp, &item)
	return item
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthRequired(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, "POST", srv.URL+"/api/v1/treasures", "", models.PlaceItemRequest{})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPlaceTreasureValidation(t *testing.T) {
	srv := newTestServer(t)
	token := register(t, srv, "placer")

	resp := doJSON(t, "POST", srv.URL+"/api/v1/treasures", token, models.PlaceItemRequest{
		Name:                  "Bad Radius",
		ItemTypeID:            1,
		DiscoveryRadiusMeters: 99,
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestNearbyReturnsSortedWithinRadius(t *testing.T) {
	srv := newTestServer(t)
	placer := register(t, srv, "placer")

	place(t, srv, placer, 30/111195.0, 0, 10) // 30m north
	place(t, srv, placer, 80/111195.0, 0, 10) // 80m north

	resp := doJSON(t, "GET",
		fmt.Sprintf("%s/api/v1/treasures/nearby?lat=0&lon=0&radius=50", srv.URL), placer, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var nearby []models.NearbyTreasure
	decode(t, resp, &nearby)
	require.Len(t, nearby, 1)
	assert.InDelta(t, 30, nearby[0].DistanceMeters, 1)
}

func TestCollectFlow(t *testing.T) {
	srv := newTestServer(t)
	placer := register(t, srv, "placer")
	hunter := register(t, srv, "hunter")

	item := place(t, srv, placer, 8/111195.0, 0, 10) // 8m north

	resp := doJSON(t, "POST", srv.URL+"/api/v1/treasures/"+item.ID+"/collect", hunter,
		models.CollectItemRequest{Latitude: 0, Longitude: 0})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var entry models.InventoryEntry
	decode(t, resp, &entry)
	assert.Equal(t, item.ID, entry.TreasureItemID)
	assert.Equal(t, 100, entry.PointsEarned)

	// Points show up on the profile
	resp = doJSON(t, "GET", srv.URL+"/api/v1/users/me", hunter, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var player models.Player
	decode(t, resp, &player)
	assert.Equal(t, 100, player.TotalPoints)

	// And in the inventory
	resp = doJSON(t, "GET", srv.URL+"/api/v1/users/inventory", hunter, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var inv []models.InventoryEntry
	decode(t, resp, &inv)
	require.Len(t, inv, 1)
}

func TestCollectTooFarReturns422WithDetails(t *testing.T) {
	srv := newTestServer(t)
	placer := register(t, srv, "placer")
	hunter := register(t, srv, "hunter")

	item := place(t, srv, placer, 15/111195.0, 0, 10) // 15m north

	resp := doJSON(t, "POST", srv.URL+"/api/v1/treasures/"+item.ID+"/collect", hunter,
		models.CollectItemRequest{Latitude: 0, Longitude: 0})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var out struct {
		Error          string  `json:"error"`
		DistanceMeters float64 `json:"distance_meters"`
		RadiusMeters   float64 `json:"radius_meters"`
	}
	decode(t, resp, &out)
	assert.InDelta(t, 15, out.DistanceMeters, 0.5)
	assert.Equal(t, 10.0, out.RadiusMeters)
	assert.Contains(t, out.Error, "too far")
}

func TestCollectConflicts(t *testing.T) {
	srv := newTestServer(t)
	placer := register(t, srv, "placer")
	hunter := register(t, srv, "hunter")
	rival := register(t, srv, "rival")

	item := place(t, srv, placer, 0, 0, 10)

	// Self-collection
	resp := doJSON(t, "POST", srv.URL+"/api/v1/treasures/"+item.ID+"/collect", placer,
		models.CollectItemRequest{})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// First collection wins
	resp = doJSON(t, "POST", srv.URL+"/api/v1/treasures/"+item.ID+"/collect", hunter,
		models.CollectItemRequest{})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// Second attempt conflicts
	resp = doJSON(t, "POST", srv.URL+"/api/v1/treasures/"+item.ID+"/collect", rival,
		models.CollectItemRequest{})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestCollectUnknownItemReturns404(t *testing.T) {
	srv := newTestServer(t)
	hunter := register(t, srv, "hunter")

	resp := doJSON(t, "POST", srv.URL+"/api/v1/treasures/nope/collect", hunter,
		models.CollectItemRequest{})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
