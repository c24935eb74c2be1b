// controllers/session.go
package controllers

import (
	"errors"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/najoro-git/CyberApp-manager/metrics"
	"github.com/najoro-git/CyberApp-manager/models"
	"github.com/najoro-git/CyberApp-manager/utils"
)

// SessionController owns the session billing lifecycle.
type SessionController struct {
	DB *gorm.DB
}

// errSessionAlreadyClosed signals that a concurrent close finalized the
// session first.
var errSessionAlreadyClosed = errors.New("session already closed")

// SessionView is a session row joined with its station and client names.
type SessionView struct {
	models.Session
	StationName string  `json:"station_name"`
	StationType string  `json:"station_type,omitempty"`
	ClientName  *string `json:"client_name"`
	ClientPhone *string `json:"client_phone,omitempty"`
}

// SessionServiceView is a line item joined with the catalog service name.
type SessionServiceView struct {
	models.SessionService
	ServiceName string `json:"service_name"`
}

// CreateSessionInput defines the expected JSON structure for opening a session.
type CreateSessionInput struct {
	StationID uint   `json:"station_id" binding:"required"`
	ClientID  *uint  `json:"client_id"`
	Notes     string `json:"notes"`
}

// UpdateSessionInput defines the expected JSON structure for updating a session.
// Price fields are never client-writable.
type UpdateSessionInput struct {
	ClientID      *uint   `json:"client_id"`
	Notes         *string `json:"notes"`
	PaymentStatus *string `json:"payment_status"`
}

// CloseSessionInput defines the expected JSON structure for closing a session.
type CloseSessionInput struct {
	PaymentStatus string `json:"payment_status"`
}

// AddSessionServiceInput defines the expected JSON structure for attaching a line item.
type AddSessionServiceInput struct {
	ServiceID uint `json:"service_id" binding:"required"`
	Quantity  int  `json:"quantity"`
}

// GetSessions lists sessions with optional status/station/client/date filters.
func (sc *SessionController) GetSessions(c *gin.Context) {
	query := sc.viewQuery()

	if status := c.Query("status"); status != "" {
		query = query.Where("s.status = ?", status)
	}
	if stationID := c.Query("station_id"); stationID != "" {
		query = query.Where("s.station_id = ?", stationID)
	}
	if clientID := c.Query("client_id"); clientID != "" {
		query = query.Where("s.client_id = ?", clientID)
	}
	if from := c.Query("date_from"); from != "" {
		query = query.Where("DATE(s.start_time) >= ?", from)
	}
	if to := c.Query("date_to"); to != "" {
		query = query.Where("DATE(s.start_time) <= ?", to)
	}

	var sessions []SessionView
	if err := query.Order("s.start_time DESC").Scan(&sessions).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Error fetching sessions")
		return
	}

	utils.RespondWithList(c, sessions, len(sessions))
}

// GetActiveSessions lists every session currently running.
func (sc *SessionController) GetActiveSessions(c *gin.Context) {
	var sessions []SessionView
	if err := sc.viewQuery().
		Where("s.status = ?", models.SessionActive).
		Order("s.start_time").
		Scan(&sessions).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Error fetching active sessions")
		return
	}

	utils.RespondWithList(c, sessions, len(sessions))
}

// GetSession returns one session with its service line items.
func (sc *SessionController) GetSession(c *gin.Context) {
	var session SessionView
	if err := sc.viewQuery().Where("s.id = ?", c.Param("id")).Take(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Session not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Error fetching session")
		}
		return
	}

	var lines []SessionServiceView
	if err := sc.DB.Table("session_services ss").
		Select("ss.*, srv.name AS service_name").
		Joins("LEFT JOIN services srv ON srv.id = ss.service_id").
		Where("ss.session_id = ?", session.ID).
		Scan(&lines).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Error fetching session services")
		return
	}

	utils.RespondWithData(c, http.StatusOK, gin.H{
		"session":  session,
		"services": lines,
	})
}

// CreateSession opens a timed session against a station and marks the
// station occupied, atomically. The partial unique index on active
// sessions arbitrates concurrent opens; the prior read only produces the
// friendly message on the common path.
func (sc *SessionController) CreateSession(c *gin.Context) {
	var input CreateSessionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Station ID is required")
		return
	}

	var station models.Station
	if err := sc.DB.First(&station, input.StationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Station not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if input.ClientID != nil {
		var client models.Client
		if err := sc.DB.First(&client, *input.ClientID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.RespondWithError(c, http.StatusNotFound, "Client not found")
			} else {
				utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
			}
			return
		}
	}

	var active int64
	sc.DB.Model(&models.Session{}).
		Where("station_id = ? AND status = ?", input.StationID, models.SessionActive).
		Count(&active)
	if active > 0 {
		utils.RespondWithError(c, http.StatusConflict, "Station already has an active session")
		return
	}

	session := models.Session{
		StationID: input.StationID,
		ClientID:  input.ClientID,
		StartTime: time.Now(),
		Status:    models.SessionActive,
		Notes:     input.Notes,
	}

	err := sc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&session).Error; err != nil {
			return err
		}
		return tx.Model(&models.Station{}).Where("id = ?", input.StationID).
			Update("status", models.StationOccupied).Error
	})
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			utils.RespondWithError(c, http.StatusConflict, "Station already has an active session")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Error creating session")
		}
		return
	}

	metrics.SessionOpened()

	view, err := sc.sessionView(session.ID)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Error fetching created session")
		return
	}
	utils.RespondWithMessage(c, http.StatusCreated, "Session started successfully", view)
}

// UpdateSession updates the mutable metadata of a session.
func (sc *SessionController) UpdateSession(c *gin.Context) {
	var input UpdateSessionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	updates := map[string]interface{}{}
	if input.ClientID != nil {
		updates["client_id"] = *input.ClientID
	}
	if input.Notes != nil {
		updates["notes"] = *input.Notes
	}
	if input.PaymentStatus != nil {
		updates["payment_status"] = *input.PaymentStatus
	}
	if len(updates) == 0 {
		utils.RespondWithError(c, http.StatusBadRequest, "No fields to update")
		return
	}

	result := sc.DB.Model(&models.Session{}).Where("id = ?", c.Param("id")).Updates(updates)
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Error updating session")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Session not found")
		return
	}

	var session SessionView
	if err := sc.viewQuery().Where("s.id = ?", c.Param("id")).Take(&session).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Error fetching session")
		return
	}
	utils.RespondWithMessage(c, http.StatusOK, "Session updated successfully", session)
}

// CloseSession bills and finalizes an active session. Elapsed time is
// rounded up to the next whole minute; the base price is the exact
// fraction of an hour at the station's rate; the services total is
// recomputed from the line items, never trusted incrementally. The
// session, the station and the client stats move in one transaction.
func (sc *SessionController) CloseSession(c *gin.Context) {
	var input CloseSessionInput
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
			return
		}
	}

	var session models.Session
	if err := sc.DB.First(&session, c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Session not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if session.Status != models.SessionActive {
		utils.RespondWithError(c, http.StatusConflict, "Session is not active")
		return
	}

	var station models.Station
	if err := sc.DB.First(&station, session.StationID).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	now := time.Now()
	durationMinutes := int(math.Ceil(now.Sub(session.StartTime).Seconds() / 60))

	basePrice := float64(durationMinutes) / 60 * station.HourlyRate

	var servicesPrice float64
	if err := sc.DB.Model(&models.SessionService{}).
		Where("session_id = ?", session.ID).
		Select("COALESCE(SUM(total_price), 0)").
		Scan(&servicesPrice).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Error computing services total")
		return
	}

	totalPrice := basePrice + servicesPrice

	paymentStatus := input.PaymentStatus
	if paymentStatus == "" {
		paymentStatus = models.PaymentPending
	}

	err := sc.DB.Transaction(func(tx *gorm.DB) error {
		// Conditioned on status so a concurrent close cannot finalize
		// twice; the earlier read is only the friendly-message path.
		result := tx.Model(&models.Session{}).
			Where("id = ? AND status = ?", session.ID, models.SessionActive).
			Updates(map[string]interface{}{
				"end_time":         now,
				"duration_minutes": durationMinutes,
				"base_price":       basePrice,
				"services_price":   servicesPrice,
				"total_price":      totalPrice,
				"status":           models.SessionCompleted,
				"payment_status":   paymentStatus,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errSessionAlreadyClosed
		}

		if err := tx.Model(&models.Station{}).Where("id = ?", session.StationID).
			Update("status", models.StationAvailable).Error; err != nil {
			return err
		}

		if session.ClientID != nil {
			if err := tx.Model(&models.Client{}).Where("id = ?", *session.ClientID).
				Updates(map[string]interface{}{
					"total_spent": gorm.Expr("total_spent + ?", totalPrice),
					"visit_count": gorm.Expr("visit_count + ?", 1),
				}).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, errSessionAlreadyClosed) {
			utils.RespondWithError(c, http.StatusConflict, "Session is not active")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Error closing session")
		}
		return
	}

	metrics.SessionClosed()

	view, err := sc.sessionView(session.ID)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Error fetching closed session")
		return
	}
	utils.RespondWithMessage(c, http.StatusOK, "Session closed successfully", view)
}

// AddService attaches N units of an active catalog service to an active
// session, snapshotting the unit price at sale time.
func (sc *SessionController) AddService(c *gin.Context) {
	var input AddSessionServiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Service ID is required")
		return
	}

	var session models.Session
	if err := sc.DB.Where("id = ? AND status = ?", c.Param("id"), models.SessionActive).
		First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Active session not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	var service models.Service
	if err := sc.DB.Where("id = ? AND is_active = ?", input.ServiceID, true).
		First(&service).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Service not found or inactive")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	qty := input.Quantity
	if qty == 0 {
		qty = 1
	}
	if qty < 1 {
		utils.RespondWithError(c, http.StatusBadRequest, "Quantity must be at least 1")
		return
	}

	line := models.SessionService{
		SessionID:  session.ID,
		ServiceID:  service.ID,
		Quantity:   qty,
		UnitPrice:  service.Price,
		TotalPrice: service.Price * float64(qty),
	}
	if err := sc.DB.Create(&line).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Error adding service to session")
		return
	}

	view := SessionServiceView{SessionService: line, ServiceName: service.Name}
	utils.RespondWithMessage(c, http.StatusCreated, "Service added to session", view)
}

// RemoveService detaches a line item from a session.
func (sc *SessionController) RemoveService(c *gin.Context) {
	result := sc.DB.Where("session_id = ? AND id = ?", c.Param("id"), c.Param("service_id")).
		Delete(&models.SessionService{})
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Error removing service from session")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Service not found in session")
		return
	}

	utils.RespondWithMessage(c, http.StatusOK, "Service removed from session", nil)
}

func (sc *SessionController) viewQuery() *gorm.DB {
	return sc.DB.Table("sessions s").
		Select("s.*, st.name AS station_name, st.type AS station_type, c.name AS client_name, c.phone AS client_phone").
		Joins("LEFT JOIN stations st ON st.id = s.station_id").
		Joins("LEFT JOIN clients c ON c.id = s.client_id")
}

func (sc *SessionController) sessionView(id uint) (*SessionView, error) {
	var view SessionView
	if err := sc.viewQuery().Where("s.id = ?", id).Take(&view).Error; err != nil {
		return nil, err
	}
	return &view, nil
}
