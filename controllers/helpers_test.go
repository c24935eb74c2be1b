package controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/najoro-git/CyberApp-manager/config"
	"github.com/najoro-git/CyberApp-manager/models"
	"github.com/najoro-git/CyberApp-manager/routes"
	"github.com/najoro-git/CyberApp-manager/services"
	"github.com/najoro-git/CyberApp-manager/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testConfig = config.Config{
	Port:           "0",
	FrontendURL:    "http://localhost:3000",
	JWTSecret:      "test-secret",
	JWTExpiryHours: 1,
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db") + "?_busy_timeout=5000"
	db, err := config.ConnectDB(path)
	require.NoError(t, err)
	return db
}

func setupRouter(t *testing.T, db *gorm.DB) *gin.Engine {
	t.Helper()
	logger := zerolog.Nop()
	pinger := services.NewPinger()
	monitor := services.NewMonitorService(db, pinger, logger, testConfig.PingInterval)
	return routes.SetupRouter(db, testConfig, logger, monitor, pinger)
}

func authToken(t *testing.T) string {
	t.Helper()
	token, err := utils.GenerateToken(testConfig.JWTSecret, 1, "admin", 1)
	require.NoError(t, err)
	return token
}

func performRequest(t *testing.T, r *gin.Engine, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func createStation(t *testing.T, db *gorm.DB, name string, hourlyRate float64) models.Station {
	t.Helper()
	station := models.Station{
		Name:             name,
		Type:             "standard",
		Status:           models.StationAvailable,
		HourlyRate:       hourlyRate,
		ConnectionStatus: models.ConnectionUnknown,
	}
	require.NoError(t, db.Create(&station).Error)
	return station
}

func createClient(t *testing.T, db *gorm.DB, name, phone string) models.Client {
	t.Helper()
	client := models.Client{Name: name, Phone: phone, Type: "occasional"}
	require.NoError(t, db.Create(&client).Error)
	return client
}

func createCatalogService(t *testing.T, db *gorm.DB, name string, price float64, active bool) models.Service {
	t.Helper()
	service := models.Service{Name: name, Price: price, Category: "misc", IsActive: true}
	require.NoError(t, db.Create(&service).Error)
	if !active {
		require.NoError(t, db.Model(&service).Update("is_active", false).Error)
		service.IsActive = false
	}
	return service
}
