// controllers/ping.go
package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/najoro-git/CyberApp-manager/models"
	"github.com/najoro-git/CyberApp-manager/services"
	"github.com/najoro-git/CyberApp-manager/utils"
)

// PingController exposes the station connectivity probes.
type PingController struct {
	DB      *gorm.DB
	Monitor *services.MonitorService
	Pinger  *services.Pinger
}

// ScanInput defines the expected JSON structure for a subnet sweep.
type ScanInput struct {
	Subnet string `json:"subnet" binding:"required"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
}

// ConnectionSummary is the last-known connectivity of one station.
type ConnectionSummary struct {
	ID               uint       `json:"id"`
	Name             string     `json:"name"`
	IPAddress        string     `json:"ip_address"`
	ConnectionStatus string     `json:"connection_status"`
	LastPingTime     *time.Time `json:"last_ping_time"`
	ResponseTime     *int       `json:"response_time"`
	Status           string     `json:"status"`
}

// PingStation probes one station's configured IP and persists the outcome.
func (pc *PingController) PingStation(c *gin.Context) {
	var station models.Station
	if err := pc.DB.First(&station, c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Station not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if station.IPAddress == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "Station has no IP address configured")
		return
	}

	result, err := pc.Monitor.ProbeStation(c.Request.Context(), &station)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Error pinging station")
		return
	}

	utils.RespondWithData(c, http.StatusOK, gin.H{
		"station_id":    station.ID,
		"station_name":  station.Name,
		"ip_address":    station.IPAddress,
		"online":        result.Online,
		"message":       result.Message,
		"response_time": result.ResponseTime,
		"last_checked":  result.LastChecked,
	})
}

// PingAll probes every station with a configured IP concurrently.
func (pc *PingController) PingAll(c *gin.Context) {
	probes, stats, err := pc.Monitor.ProbeAll(c.Request.Context())
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Error pinging stations")
		return
	}
	if len(probes) == 0 {
		utils.RespondWithMessage(c, http.StatusOK, "No stations with configured IP addresses", []services.StationProbe{})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    probes,
		"stats":   stats,
	})
}

// PingStatus reports the last-known connectivity of every station without
// probing.
func (pc *PingController) PingStatus(c *gin.Context) {
	var stations []ConnectionSummary
	if err := pc.DB.Model(&models.Station{}).
		Select("id, name, ip_address, connection_status, last_ping_time, response_time, status").
		Order("name").
		Scan(&stations).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Error fetching connection status")
		return
	}

	online, offline, unknown := 0, 0, 0
	for _, s := range stations {
		switch s.ConnectionStatus {
		case models.ConnectionOnline:
			online++
		case models.ConnectionOffline:
			offline++
		default:
			unknown++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    stations,
		"stats": gin.H{
			"total":   len(stations),
			"online":  online,
			"offline": offline,
			"unknown": unknown,
		},
	})
}

// ScanNetwork sweeps a numeric range within a /24 and reports responders.
// Best-effort discovery; nothing is persisted.
func (pc *PingController) ScanNetwork(c *gin.Context) {
	var input ScanInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, `Subnet is required (e.g., "192.168.1")`)
		return
	}

	start := input.Start
	if start == 0 {
		start = 1
	}
	end := input.End
	if end == 0 {
		end = 254
	}

	hits, err := pc.Pinger.Scan(c.Request.Context(), input.Subnet, start, end)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	if hits == nil {
		hits = []services.ScanHit{}
	}

	utils.RespondWithMessage(c, http.StatusOK, "Network scan completed", hits)
}
