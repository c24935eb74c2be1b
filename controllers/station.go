// controllers/station.go
package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/najoro-git/CyberApp-manager/models"
	"github.com/najoro-git/CyberApp-manager/utils"
)

// StationController handles the station registry.
type StationController struct {
	DB *gorm.DB
}

// CreateStationInput defines the expected JSON structure for creating a station.
type CreateStationInput struct {
	Name       string   `json:"name" binding:"required"`
	Type       string   `json:"type"`
	HourlyRate *float64 `json:"hourly_rate"`
	IPAddress  string   `json:"ip_address"`
}

// UpdateStationInput defines the expected JSON structure for updating a station.
type UpdateStationInput struct {
	Name       *string  `json:"name"`
	Type       *string  `json:"type"`
	HourlyRate *float64 `json:"hourly_rate"`
	IPAddress  *string  `json:"ip_address"`
	Status     *string  `json:"status"`
}

// StationStats aggregates the session history of one station.
type StationStats struct {
	TotalSessions     int      `json:"total_sessions"`
	CompletedSessions int      `json:"completed_sessions"`
	TotalMinutes      *int     `json:"total_minutes"`
	TotalRevenue      *float64 `json:"total_revenue"`
	AvgDuration       *float64 `json:"avg_duration"`
}

// GetStations lists stations, optionally filtered by status and type.
func (sc *StationController) GetStations(c *gin.Context) {
	query := sc.DB.Model(&models.Station{})

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if stationType := c.Query("type"); stationType != "" {
		query = query.Where("type = ?", stationType)
	}

	var stations []models.Station
	if err := query.Order("name").Find(&stations).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Error fetching stations")
		return
	}

	utils.RespondWithList(c, stations, len(stations))
}

// GetStation returns one station with its active session, if any.
func (sc *StationController) GetStation(c *gin.Context) {
	var station models.Station
	if err := sc.DB.First(&station, c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Station not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	var active SessionView
	err := sc.DB.Table("sessions s").
		Select("s.*, c.name AS client_name").
		Joins("LEFT JOIN clients c ON c.id = s.client_id").
		Where("s.station_id = ? AND s.status = ?", station.ID, models.SessionActive).
		Take(&active).Error

	var activeSession *SessionView
	if err == nil {
		activeSession = &active
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	utils.RespondWithData(c, http.StatusOK, gin.H{
		"station":        station,
		"active_session": activeSession,
	})
}

// CreateStation registers a new station.
func (sc *StationController) CreateStation(c *gin.Context) {
	var input CreateStationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Station name is required")
		return
	}

	if input.IPAddress != "" && !utils.ValidateIP(input.IPAddress) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid IP address")
		return
	}

	station := models.Station{
		Name:             input.Name,
		Type:             input.Type,
		IPAddress:        input.IPAddress,
		Status:           models.StationAvailable,
		ConnectionStatus: models.ConnectionUnknown,
	}
	if station.Type == "" {
		station.Type = "standard"
	}
	if input.HourlyRate != nil {
		station.HourlyRate = *input.HourlyRate
	} else {
		station.HourlyRate = 1000.00
	}

	if err := sc.DB.Create(&station).Error; err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			utils.RespondWithError(c, http.StatusBadRequest, "A station with this name already exists")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Error creating station")
		}
		return
	}

	utils.RespondWithMessage(c, http.StatusCreated, "Station created successfully", station)
}

// UpdateStation applies a partial update to a station.
func (sc *StationController) UpdateStation(c *gin.Context) {
	var input UpdateStationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Type != nil {
		updates["type"] = *input.Type
	}
	if input.HourlyRate != nil {
		updates["hourly_rate"] = *input.HourlyRate
	}
	if input.IPAddress != nil {
		if *input.IPAddress != "" && !utils.ValidateIP(*input.IPAddress) {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid IP address")
			return
		}
		updates["ip_address"] = *input.IPAddress
	}
	if input.Status != nil {
		updates["status"] = *input.Status
	}
	if len(updates) == 0 {
		utils.RespondWithError(c, http.StatusBadRequest, "No fields to update")
		return
	}

	result := sc.DB.Model(&models.Station{}).Where("id = ?", c.Param("id")).Updates(updates)
	if result.Error != nil {
		if strings.Contains(result.Error.Error(), "UNIQUE constraint") {
			utils.RespondWithError(c, http.StatusBadRequest, "A station with this name already exists")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Error updating station")
		}
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Station not found")
		return
	}

	var station models.Station
	if err := sc.DB.First(&station, c.Param("id")).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}
	utils.RespondWithMessage(c, http.StatusOK, "Station updated successfully", station)
}

// DeleteStation removes a station. Rejected while a session is running on it.
func (sc *StationController) DeleteStation(c *gin.Context) {
	var active int64
	if err := sc.DB.Model(&models.Session{}).
		Where("station_id = ? AND status = ?", c.Param("id"), models.SessionActive).
		Count(&active).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}
	if active > 0 {
		utils.RespondWithError(c, http.StatusConflict, "Cannot delete station with active session")
		return
	}

	result := sc.DB.Delete(&models.Station{}, c.Param("id"))
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Error deleting station")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Station not found")
		return
	}

	utils.RespondWithMessage(c, http.StatusOK, "Station deleted successfully", nil)
}

// GetStationStats aggregates the session history of one station.
func (sc *StationController) GetStationStats(c *gin.Context) {
	var station models.Station
	if err := sc.DB.First(&station, c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Station not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	var stats StationStats
	if err := sc.DB.Model(&models.Session{}).
		Select(`COUNT(*) AS total_sessions,
			SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END) AS completed_sessions,
			SUM(duration_minutes) AS total_minutes,
			SUM(total_price) AS total_revenue,
			AVG(duration_minutes) AS avg_duration`).
		Where("station_id = ?", station.ID).
		Scan(&stats).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Error fetching station stats")
		return
	}

	utils.RespondWithData(c, http.StatusOK, stats)
}
