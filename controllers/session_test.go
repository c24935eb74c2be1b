package controllers_test

import (
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/najoro-git/CyberApp-manager/models"
)

func TestOpenSessionMarksStationOccupied(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(t, db)
	token := authToken(t)

	station := createStation(t, db, "PC-01", 1000)

	w := performRequest(t, r, "POST", "/api/sessions", map[string]any{"station_id": station.ID}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]any)
	assert.Equal(t, "active", data["status"])
	assert.Equal(t, "PC-01", data["station_name"])
	assert.Nil(t, data["end_time"])

	var reloaded models.Station
	require.NoError(t, db.First(&reloaded, station.ID).Error)
	assert.Equal(t, models.StationOccupied, reloaded.Status)
}

func TestOpenSessionStationNotFound(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(t, db)

	w := performRequest(t, r, "POST", "/api/sessions", map[string]any{"station_id": 999}, authToken(t))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOpenSessionConflictWhenOccupied(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(t, db)
	token := authToken(t)

	station := createStation(t, db, "PC-01", 1000)

	w := performRequest(t, r, "POST", "/api/sessions", map[string]any{"station_id": station.ID}, token)
	require.Equal(t, http.StatusCreated, w.Code)

	w = performRequest(t, r, "POST", "/api/sessions", map[string]any{"station_id": station.ID}, token)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "active session")
}

func TestConcurrentOpensSingleWinner(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(t, db)
	token := authToken(t)

	station := createStation(t, db, "PC-01", 1000)

	const attempts = 10
	codes := make(chan int, attempts)
	var wg sync.WaitGroup
	wg.Add(attempts)
	for i := 0; i < attempts; i++ {
		go func() {
			defer wg.Done()
			w := performRequest(t, r, "POST", "/api/sessions", map[string]any{"station_id": station.ID}, token)
			codes <- w.Code
		}()
	}
	wg.Wait()
	close(codes)

	created := 0
	for code := range codes {
		if code == http.StatusCreated {
			created++
		}
	}
	assert.Equal(t, 1, created, "exactly one concurrent open must win")

	var active int64
	require.NoError(t, db.Model(&models.Session{}).
		Where("station_id = ? AND status = ?", station.ID, models.SessionActive).
		Count(&active).Error)
	assert.EqualValues(t, 1, active)
}

func TestCloseSessionBillsCeilingMinutes(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(t, db)
	token := authToken(t)

	station := createStation(t, db, "PC-01", 1000)

	w := performRequest(t, r, "POST", "/api/sessions", map[string]any{"station_id": station.ID}, token)
	require.Equal(t, http.StatusCreated, w.Code)
	sessionID := decodeBody(t, w)["data"].(map[string]any)["id"].(float64)

	// 61 elapsed seconds must bill two full minutes.
	require.NoError(t, db.Model(&models.Session{}).Where("id = ?", sessionID).
		Update("start_time", time.Now().Add(-61*time.Second)).Error)

	w = performRequest(t, r, "POST", fmt.Sprintf("/api/sessions/%.0f/close", sessionID), nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	data := decodeBody(t, w)["data"].(map[string]any)
	assert.Equal(t, "completed", data["status"])
	assert.Equal(t, "pending", data["payment_status"])
	assert.EqualValues(t, 2, data["duration_minutes"])

	base := data["base_price"].(float64)
	assert.InDelta(t, 2.0/60.0*1000, base, 0.001)
	assert.EqualValues(t, 0, data["services_price"])
	assert.InDelta(t, base, data["total_price"].(float64), 0.001)
	assert.NotNil(t, data["end_time"])

	var reloaded models.Station
	require.NoError(t, db.First(&reloaded, station.ID).Error)
	assert.Equal(t, models.StationAvailable, reloaded.Status)
}

func TestCloseSessionNotActiveConflicts(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(t, db)
	token := authToken(t)

	station := createStation(t, db, "PC-01", 1000)

	w := performRequest(t, r, "POST", "/api/sessions", map[string]any{"station_id": station.ID}, token)
	require.Equal(t, http.StatusCreated, w.Code)
	sessionID := decodeBody(t, w)["data"].(map[string]any)["id"].(float64)

	path := fmt.Sprintf("/api/sessions/%.0f/close", sessionID)
	w = performRequest(t, r, "POST", path, nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	// Re-closing must conflict, not silently recompute.
	w = performRequest(t, r, "POST", path, nil, token)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = performRequest(t, r, "POST", "/api/sessions/999/close", nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestConcurrentClosesSingleWinner(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(t, db)
	token := authToken(t)

	station := createStation(t, db, "PC-01", 1000)
	client := createClient(t, db, "Alice", "0340011223")

	w := performRequest(t, r, "POST", "/api/sessions",
		map[string]any{"station_id": station.ID, "client_id": client.ID}, token)
	require.Equal(t, http.StatusCreated, w.Code)
	sessionID := decodeBody(t, w)["data"].(map[string]any)["id"].(float64)
	path := fmt.Sprintf("/api/sessions/%.0f/close", sessionID)

	const attempts = 20
	codes := make(chan int, attempts)
	var wg sync.WaitGroup
	wg.Add(attempts)
	for i := 0; i < attempts; i++ {
		go func() {
			defer wg.Done()
			codes <- performRequest(t, r, "POST", path, nil, token).Code
		}()
	}
	wg.Wait()
	close(codes)

	closed := 0
	for code := range codes {
		if code == http.StatusOK {
			closed++
		}
	}
	assert.Equal(t, 1, closed, "exactly one concurrent close must win")

	// The client stats bump rides the winning transaction only.
	var reloaded models.Client
	require.NoError(t, db.First(&reloaded, client.ID).Error)
	assert.Equal(t, 1, reloaded.VisitCount)

	var session models.Session
	require.NoError(t, db.First(&session, uint(sessionID)).Error)
	require.NotNil(t, session.TotalPrice)
	assert.InDelta(t, reloaded.TotalSpent, *session.TotalPrice, 0.001)
}

func TestServiceLineSnapshotSurvivesCatalogChange(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(t, db)
	token := authToken(t)

	station := createStation(t, db, "PC-01", 1000)
	scan := createCatalogService(t, db, "Scan", 200, true)

	w := performRequest(t, r, "POST", "/api/sessions", map[string]any{"station_id": station.ID}, token)
	require.Equal(t, http.StatusCreated, w.Code)
	sessionID := decodeBody(t, w)["data"].(map[string]any)["id"].(float64)

	w = performRequest(t, r, "POST", fmt.Sprintf("/api/sessions/%.0f/services", sessionID),
		map[string]any{"service_id": scan.ID, "quantity": 3}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	line := decodeBody(t, w)["data"].(map[string]any)
	assert.EqualValues(t, 200, line["unit_price"])
	assert.EqualValues(t, 600, line["total_price"])
	assert.Equal(t, "Scan", line["service_name"])

	// A later catalog price change must not touch the sold line.
	require.NoError(t, db.Model(&models.Service{}).Where("id = ?", scan.ID).
		Update("price", 500).Error)

	w = performRequest(t, r, "POST", fmt.Sprintf("/api/sessions/%.0f/close", sessionID), nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeBody(t, w)["data"].(map[string]any)
	assert.EqualValues(t, 600, data["services_price"])
	base := data["base_price"].(float64)
	assert.InDelta(t, base+600, data["total_price"].(float64), 0.001)
}

func TestAddServiceValidation(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(t, db)
	token := authToken(t)

	station := createStation(t, db, "PC-01", 1000)
	inactive := createCatalogService(t, db, "Legacy", 100, false)
	active := createCatalogService(t, db, "Drink", 50, true)

	w := performRequest(t, r, "POST", "/api/sessions", map[string]any{"station_id": station.ID}, token)
	require.Equal(t, http.StatusCreated, w.Code)
	sessionID := decodeBody(t, w)["data"].(map[string]any)["id"].(float64)
	servicesPath := fmt.Sprintf("/api/sessions/%.0f/services", sessionID)

	w = performRequest(t, r, "POST", servicesPath, map[string]any{"service_id": inactive.ID}, token)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = performRequest(t, r, "POST", servicesPath, map[string]any{"service_id": active.ID, "quantity": -1}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Missing quantity defaults to 1.
	w = performRequest(t, r, "POST", servicesPath, map[string]any{"service_id": active.ID}, token)
	require.Equal(t, http.StatusCreated, w.Code)
	line := decodeBody(t, w)["data"].(map[string]any)
	assert.EqualValues(t, 1, line["quantity"])
	assert.EqualValues(t, 50, line["total_price"])

	// No attaching to a completed session.
	w = performRequest(t, r, "POST", fmt.Sprintf("/api/sessions/%.0f/close", sessionID), nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	w = performRequest(t, r, "POST", servicesPath, map[string]any{"service_id": active.ID}, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRemoveServiceLine(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(t, db)
	token := authToken(t)

	station := createStation(t, db, "PC-01", 1000)
	drink := createCatalogService(t, db, "Drink", 50, true)

	w := performRequest(t, r, "POST", "/api/sessions", map[string]any{"station_id": station.ID}, token)
	require.Equal(t, http.StatusCreated, w.Code)
	sessionID := decodeBody(t, w)["data"].(map[string]any)["id"].(float64)

	w = performRequest(t, r, "POST", fmt.Sprintf("/api/sessions/%.0f/services", sessionID),
		map[string]any{"service_id": drink.ID}, token)
	require.Equal(t, http.StatusCreated, w.Code)
	lineID := decodeBody(t, w)["data"].(map[string]any)["id"].(float64)

	w = performRequest(t, r, "DELETE", fmt.Sprintf("/api/sessions/%.0f/services/%.0f", sessionID, lineID), nil, token)
	assert.Equal(t, http.StatusOK, w.Code)

	w = performRequest(t, r, "DELETE", fmt.Sprintf("/api/sessions/%.0f/services/%.0f", sessionID, lineID), nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestClientStatsAccumulateOnClose(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(t, db)
	token := authToken(t)

	client := createClient(t, db, "Alice", "0340011223")
	stations := []models.Station{
		createStation(t, db, "PC-01", 600),
		createStation(t, db, "PC-02", 1200),
		createStation(t, db, "PC-03", 3000),
	}

	var expected float64
	for _, station := range stations {
		w := performRequest(t, r, "POST", "/api/sessions",
			map[string]any{"station_id": station.ID, "client_id": client.ID}, token)
		require.Equal(t, http.StatusCreated, w.Code)
		sessionID := decodeBody(t, w)["data"].(map[string]any)["id"].(float64)

		require.NoError(t, db.Model(&models.Session{}).Where("id = ?", sessionID).
			Update("start_time", time.Now().Add(-10*time.Minute)).Error)

		w = performRequest(t, r, "POST", fmt.Sprintf("/api/sessions/%.0f/close", sessionID), nil, token)
		require.Equal(t, http.StatusOK, w.Code)
		expected += decodeBody(t, w)["data"].(map[string]any)["total_price"].(float64)
	}

	var reloaded models.Client
	require.NoError(t, db.First(&reloaded, client.ID).Error)
	assert.Equal(t, 3, reloaded.VisitCount)
	assert.InDelta(t, expected, reloaded.TotalSpent, 0.001)
}

func TestSessionListAndFilters(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(t, db)
	token := authToken(t)

	s1 := createStation(t, db, "PC-01", 1000)
	s2 := createStation(t, db, "PC-02", 1000)

	w := performRequest(t, r, "POST", "/api/sessions", map[string]any{"station_id": s1.ID}, token)
	require.Equal(t, http.StatusCreated, w.Code)
	first := decodeBody(t, w)["data"].(map[string]any)["id"].(float64)
	w = performRequest(t, r, "POST", "/api/sessions", map[string]any{"station_id": s2.ID}, token)
	require.Equal(t, http.StatusCreated, w.Code)

	w = performRequest(t, r, "POST", fmt.Sprintf("/api/sessions/%.0f/close", first), nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	w = performRequest(t, r, "GET", "/api/sessions", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.EqualValues(t, 2, body["count"])

	w = performRequest(t, r, "GET", "/api/sessions?status=completed", nil, token)
	body = decodeBody(t, w)
	assert.EqualValues(t, 1, body["count"])

	w = performRequest(t, r, "GET", "/api/sessions/active/all", nil, token)
	body = decodeBody(t, w)
	assert.EqualValues(t, 1, body["count"])
	active := body["data"].([]any)[0].(map[string]any)
	assert.Equal(t, "PC-02", active["station_name"])
}

func TestGetSessionDetailWithServices(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(t, db)
	token := authToken(t)

	station := createStation(t, db, "PC-01", 1000)
	drink := createCatalogService(t, db, "Drink", 50, true)

	w := performRequest(t, r, "POST", "/api/sessions", map[string]any{"station_id": station.ID}, token)
	require.Equal(t, http.StatusCreated, w.Code)
	sessionID := decodeBody(t, w)["data"].(map[string]any)["id"].(float64)

	w = performRequest(t, r, "POST", fmt.Sprintf("/api/sessions/%.0f/services", sessionID),
		map[string]any{"service_id": drink.ID, "quantity": 2}, token)
	require.Equal(t, http.StatusCreated, w.Code)

	w = performRequest(t, r, "GET", fmt.Sprintf("/api/sessions/%.0f", sessionID), nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeBody(t, w)["data"].(map[string]any)
	session := data["session"].(map[string]any)
	assert.Equal(t, "PC-01", session["station_name"])
	lines := data["services"].([]any)
	require.Len(t, lines, 1)
	assert.Equal(t, "Drink", lines[0].(map[string]any)["service_name"])

	w = performRequest(t, r, "GET", "/api/sessions/999", nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateSessionMetadata(t *testing.T) {
	db := setupTestDB(t)
	r := setupRouter(t, db)
	token := authToken(t)

	station := createStation(t, db, "PC-01", 1000)

	w := performRequest(t, r, "POST", "/api/sessions", map[string]any{"station_id": station.ID}, token)
	require.Equal(t, http.StatusCreated, w.Code)
	sessionID := decodeBody(t, w)["data"].(map[string]any)["id"].(float64)
	path := fmt.Sprintf("/api/sessions/%.0f", sessionID)

	w = performRequest(t, r, "PUT", path, map[string]any{"payment_status": "paid", "notes": "VIP"}, token)
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]any)
	assert.Equal(t, "paid", data["payment_status"])
	assert.Equal(t, "VIP", data["notes"])

	w = performRequest(t, r, "PUT", path, map[string]any{}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performRequest(t, r, "PUT", "/api/sessions/999", map[string]any{"notes": "x"}, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
