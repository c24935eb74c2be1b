// controllers/report.go
package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/najoro-git/CyberApp-manager/models"
	"github.com/najoro-git/CyberApp-manager/utils"
)

// ReportController handles all reporting functions. Every endpoint is a
// pure read recomputed per request.
type ReportController struct {
	DB *gorm.DB
}

// RevenueTotals aggregates completed sessions over a period.
type RevenueTotals struct {
	TotalSessions   int      `json:"total_sessions"`
	TotalMinutes    *int     `json:"total_minutes"`
	BaseRevenue     *float64 `json:"base_revenue"`
	ServicesRevenue *float64 `json:"services_revenue"`
	TotalRevenue    *float64 `json:"total_revenue"`
	AvgRevenue      *float64 `json:"avg_revenue"`
}

// StationBreakdown is per-station activity for a period.
type StationBreakdown struct {
	StationName  string   `json:"station_name"`
	SessionCount int      `json:"session_count"`
	TotalMinutes *int     `json:"total_minutes"`
	Revenue      *float64 `json:"revenue"`
}

// ServiceRanking is a top-selling catalog service for a period.
type ServiceRanking struct {
	ServiceName   string  `json:"service_name"`
	TotalQuantity int     `json:"total_quantity"`
	TotalRevenue  float64 `json:"total_revenue"`
}

// ClientRanking is a top-spending client for a period.
type ClientRanking struct {
	Name       string  `json:"name"`
	VisitCount int     `json:"visit_count"`
	TotalSpent float64 `json:"total_spent"`
}

// DailyRevenue is one day of a monthly revenue series.
type DailyRevenue struct {
	Date         string  `json:"date"`
	SessionCount int     `json:"session_count"`
	Revenue      float64 `json:"revenue"`
}

// GlobalStats is the console-wide summary.
type GlobalStats struct {
	TotalStations      int      `json:"total_stations"`
	TotalClients       int      `json:"total_clients"`
	ActiveSessions     int      `json:"active_sessions"`
	CompletedSessions  int      `json:"completed_sessions"`
	TotalRevenue       *float64 `json:"total_revenue"`
	OccupancyRate      float64  `json:"occupancy_rate"`
	AvgSessionDuration float64  `json:"avg_session_duration"`
}

// GetDailyReport reports totals, per-station breakdown and top services
// for one calendar date (default today).
func (rc *ReportController) GetDailyReport(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	var revenue RevenueTotals
	if err := rc.DB.Model(&models.Session{}).
		Select(`COUNT(*) AS total_sessions,
			SUM(duration_minutes) AS total_minutes,
			SUM(base_price) AS base_revenue,
			SUM(services_price) AS services_revenue,
			SUM(total_price) AS total_revenue,
			AVG(total_price) AS avg_revenue`).
		Where("DATE(start_time) = ? AND status = ?", date, models.SessionCompleted).
		Scan(&revenue).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Error generating daily report")
		return
	}

	var stations []StationBreakdown
	if err := rc.DB.Table("stations st").
		Select(`st.name AS station_name,
			COUNT(s.id) AS session_count,
			SUM(s.duration_minutes) AS total_minutes,
			SUM(s.total_price) AS revenue`).
		Joins("LEFT JOIN sessions s ON st.id = s.station_id AND DATE(s.start_time) = ? AND s.status = ?",
			date, models.SessionCompleted).
		Group("st.id, st.name").
		Order("revenue DESC").
		Scan(&stations).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Error generating daily report")
		return
	}

	var topServices []ServiceRanking
	if err := rc.DB.Table("session_services ss").
		Select(`srv.name AS service_name,
			SUM(ss.quantity) AS total_quantity,
			SUM(ss.total_price) AS total_revenue`).
		Joins("JOIN services srv ON ss.service_id = srv.id").
		Joins("JOIN sessions s ON ss.session_id = s.id").
		Where("DATE(s.start_time) = ?", date).
		Group("srv.id, srv.name").
		Order("total_revenue DESC").
		Limit(10).
		Scan(&topServices).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Error generating daily report")
		return
	}

	utils.RespondWithData(c, http.StatusOK, gin.H{
		"date":          date,
		"revenue":       revenue,
		"station_stats": stations,
		"top_services":  topServices,
	})
}

// GetMonthlyReport reports totals, a per-day revenue series and top
// clients for one year+month (default current).
func (rc *ReportController) GetMonthlyReport(c *gin.Context) {
	now := time.Now()
	year := c.DefaultQuery("year", now.Format("2006"))
	month := c.DefaultQuery("month", now.Format("01"))
	if len(month) == 1 {
		month = "0" + month
	}

	var revenue RevenueTotals
	if err := rc.DB.Model(&models.Session{}).
		Select(`COUNT(*) AS total_sessions,
			SUM(duration_minutes) AS total_minutes,
			SUM(base_price) AS base_revenue,
			SUM(services_price) AS services_revenue,
			SUM(total_price) AS total_revenue`).
		Where("strftime('%Y', start_time) = ? AND strftime('%m', start_time) = ? AND status = ?",
			year, month, models.SessionCompleted).
		Scan(&revenue).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Error generating monthly report")
		return
	}

	var daily []DailyRevenue
	if err := rc.DB.Model(&models.Session{}).
		Select(`DATE(start_time) AS date,
			COUNT(*) AS session_count,
			SUM(total_price) AS revenue`).
		Where("strftime('%Y', start_time) = ? AND strftime('%m', start_time) = ? AND status = ?",
			year, month, models.SessionCompleted).
		Group("DATE(start_time)").
		Order("date").
		Scan(&daily).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Error generating monthly report")
		return
	}

	var topClients []ClientRanking
	if err := rc.DB.Table("clients c").
		Select(`c.name,
			COUNT(s.id) AS visit_count,
			SUM(s.total_price) AS total_spent`).
		Joins("JOIN sessions s ON c.id = s.client_id").
		Where("strftime('%Y', s.start_time) = ? AND strftime('%m', s.start_time) = ? AND s.status = ?",
			year, month, models.SessionCompleted).
		Group("c.id, c.name").
		Order("total_spent DESC").
		Limit(10).
		Scan(&topClients).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Error generating monthly report")
		return
	}

	utils.RespondWithData(c, http.StatusOK, gin.H{
		"period":        fmt.Sprintf("%s-%s", year, month),
		"revenue":       revenue,
		"daily_revenue": daily,
		"top_clients":   topClients,
	})
}

// GetGlobalStats reports console-wide counters, lifetime revenue, the
// occupancy rate and average session duration.
func (rc *ReportController) GetGlobalStats(c *gin.Context) {
	var stats GlobalStats

	var totalStations, totalClients, activeSessions, completedSessions int64
	if err := rc.DB.Model(&models.Station{}).Count(&totalStations).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Error fetching statistics")
		return
	}
	rc.DB.Model(&models.Client{}).Count(&totalClients)
	rc.DB.Model(&models.Session{}).Where("status = ?", models.SessionActive).Count(&activeSessions)
	rc.DB.Model(&models.Session{}).Where("status = ?", models.SessionCompleted).Count(&completedSessions)

	stats.TotalStations = int(totalStations)
	stats.TotalClients = int(totalClients)
	stats.ActiveSessions = int(activeSessions)
	stats.CompletedSessions = int(completedSessions)

	if err := rc.DB.Model(&models.Session{}).
		Where("status = ?", models.SessionCompleted).
		Select("SUM(total_price)").
		Scan(&stats.TotalRevenue).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Error fetching statistics")
		return
	}

	if totalStations > 0 {
		var occupied int64
		rc.DB.Model(&models.Station{}).Where("status = ?", models.StationOccupied).Count(&occupied)
		stats.OccupancyRate = float64(occupied) / float64(totalStations) * 100
	}

	var avgDuration *float64
	if err := rc.DB.Model(&models.Session{}).
		Where("status = ? AND duration_minutes IS NOT NULL", models.SessionCompleted).
		Select("AVG(duration_minutes)").
		Scan(&avgDuration).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Error fetching statistics")
		return
	}
	if avgDuration != nil {
		stats.AvgSessionDuration = *avgDuration
	}

	utils.RespondWithData(c, http.StatusOK, stats)
}

// GetCustomReport reports completed sessions over an arbitrary date range
// with optional station/client filters, plus summed totals.
func (rc *ReportController) GetCustomReport(c *gin.Context) {
	startDate := c.Query("start_date")
	endDate := c.Query("end_date")
	if startDate == "" || endDate == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "Start date and end date are required")
		return
	}

	query := rc.DB.Table("sessions s").
		Select("s.*, st.name AS station_name, c.name AS client_name").
		Joins("LEFT JOIN stations st ON s.station_id = st.id").
		Joins("LEFT JOIN clients c ON s.client_id = c.id").
		Where("DATE(s.start_time) BETWEEN ? AND ? AND s.status = ?",
			startDate, endDate, models.SessionCompleted)

	if stationID := c.Query("station_id"); stationID != "" {
		query = query.Where("s.station_id = ?", stationID)
	}
	if clientID := c.Query("client_id"); clientID != "" {
		query = query.Where("s.client_id = ?", clientID)
	}

	var sessions []SessionView
	if err := query.Order("s.start_time DESC").Scan(&sessions).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Error generating custom report")
		return
	}

	totals := struct {
		Count    int     `json:"count"`
		Duration int     `json:"duration"`
		Revenue  float64 `json:"revenue"`
	}{}
	for _, s := range sessions {
		totals.Count++
		if s.DurationMinutes != nil {
			totals.Duration += *s.DurationMinutes
		}
		if s.TotalPrice != nil {
			totals.Revenue += *s.TotalPrice
		}
	}

	utils.RespondWithData(c, http.StatusOK, gin.H{
		"period":   gin.H{"start_date": startDate, "end_date": endDate},
		"sessions": sessions,
		"totals":   totals,
	})
}
