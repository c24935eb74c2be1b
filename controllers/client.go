// controllers/client.go
package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/najoro-git/CyberApp-manager/models"
	"github.com/najoro-git/CyberApp-manager/utils"
)

// ClientController handles the customer registry.
type ClientController struct {
	DB *gorm.DB
}

// CreateClientInput defines the expected JSON structure for creating a client.
type CreateClientInput struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Type    string `json:"type"`
}

// UpdateClientInput defines the expected JSON structure for updating a client.
type UpdateClientInput struct {
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
	Address *string `json:"address"`
	Type    *string `json:"type"`
}

// ClientStats aggregates a client's completed sessions.
type ClientStats struct {
	TotalSessions      int      `json:"total_sessions"`
	TotalMinutes       *int     `json:"total_minutes"`
	TotalSpent         *float64 `json:"total_spent"`
	AvgSpentPerSession *float64 `json:"avg_spent_per_session"`
	LastVisit          *string  `json:"last_visit"`
}

// ClientSuggestion is one autocomplete entry.
type ClientSuggestion struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// GetClients lists clients with optional type filter and substring search
// over name, phone and email.
func (cc *ClientController) GetClients(c *gin.Context) {
	query := cc.DB.Model(&models.Client{})

	if clientType := c.Query("type"); clientType != "" {
		query = query.Where("type = ?", clientType)
	}
	if search := c.Query("search"); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("name LIKE ? OR phone LIKE ? OR email LIKE ?", pattern, pattern, pattern)
	}

	var clients []models.Client
	if err := query.Order("created_at DESC").Find(&clients).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Error fetching clients")
		return
	}

	utils.RespondWithList(c, clients, len(clients))
}

// GetClient returns one client with their recent session history.
func (cc *ClientController) GetClient(c *gin.Context) {
	var client models.Client
	if err := cc.DB.First(&client, c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Client not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	var recent []SessionView
	if err := cc.DB.Table("sessions s").
		Select("s.*, st.name AS station_name").
		Joins("LEFT JOIN stations st ON st.id = s.station_id").
		Where("s.client_id = ?", client.ID).
		Order("s.created_at DESC").
		Limit(10).
		Scan(&recent).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Error fetching client sessions")
		return
	}

	utils.RespondWithData(c, http.StatusOK, gin.H{
		"client":          client,
		"recent_sessions": recent,
	})
}

// CreateClient registers a new client.
func (cc *ClientController) CreateClient(c *gin.Context) {
	var input CreateClientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Client name is required")
		return
	}

	client := models.Client{
		Name:    input.Name,
		Phone:   input.Phone,
		Email:   input.Email,
		Address: input.Address,
		Type:    input.Type,
	}
	if client.Type == "" {
		client.Type = "occasional"
	}

	if err := cc.DB.Create(&client).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Error creating client")
		return
	}

	utils.RespondWithMessage(c, http.StatusCreated, "Client created successfully", client)
}

// UpdateClient applies a partial update to a client. The spend and visit
// counters are owned by the session lifecycle and cannot be set here.
func (cc *ClientController) UpdateClient(c *gin.Context) {
	var input UpdateClientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Phone != nil {
		updates["phone"] = *input.Phone
	}
	if input.Email != nil {
		updates["email"] = *input.Email
	}
	if input.Address != nil {
		updates["address"] = *input.Address
	}
	if input.Type != nil {
		updates["type"] = *input.Type
	}
	if len(updates) == 0 {
		utils.RespondWithError(c, http.StatusBadRequest, "No fields to update")
		return
	}

	result := cc.DB.Model(&models.Client{}).Where("id = ?", c.Param("id")).Updates(updates)
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Error updating client")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Client not found")
		return
	}

	var client models.Client
	if err := cc.DB.First(&client, c.Param("id")).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}
	utils.RespondWithMessage(c, http.StatusOK, "Client updated successfully", client)
}

// DeleteClient removes a client together with their session history, in
// one transaction.
func (cc *ClientController) DeleteClient(c *gin.Context) {
	var deleted int64
	err := cc.DB.Transaction(func(tx *gorm.DB) error {
		// Free any station still held by this client's active sessions;
		// the rows are about to disappear and nothing would ever flip the
		// station back.
		if err := tx.Model(&models.Station{}).
			Where("id IN (?)",
				tx.Model(&models.Session{}).Select("station_id").
					Where("client_id = ? AND status = ?", c.Param("id"), models.SessionActive),
			).
			Update("status", models.StationAvailable).Error; err != nil {
			return err
		}
		if err := tx.Where("session_id IN (?)",
			tx.Model(&models.Session{}).Select("id").Where("client_id = ?", c.Param("id")),
		).Delete(&models.SessionService{}).Error; err != nil {
			return err
		}
		if err := tx.Where("client_id = ?", c.Param("id")).Delete(&models.Session{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Client{}, c.Param("id"))
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected
		return nil
	})
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Error deleting client")
		return
	}
	if deleted == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Client not found")
		return
	}

	utils.RespondWithMessage(c, http.StatusOK, "Client and their sessions deleted successfully", nil)
}

// GetClientStats aggregates a client's completed sessions.
func (cc *ClientController) GetClientStats(c *gin.Context) {
	var client models.Client
	if err := cc.DB.First(&client, c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Client not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	var stats ClientStats
	if err := cc.DB.Model(&models.Session{}).
		Select(`COUNT(*) AS total_sessions,
			SUM(duration_minutes) AS total_minutes,
			SUM(total_price) AS total_spent,
			AVG(total_price) AS avg_spent_per_session,
			MAX(created_at) AS last_visit`).
		Where("client_id = ? AND status = ?", client.ID, models.SessionCompleted).
		Scan(&stats).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Error fetching client stats")
		return
	}

	utils.RespondWithData(c, http.StatusOK, stats)
}

// SearchClients serves name/phone autocomplete, most frequent visitors
// first. Queries under two characters return nothing.
func (cc *ClientController) SearchClients(c *gin.Context) {
	q := c.Query("q")
	if len(q) < 2 {
		utils.RespondWithData(c, http.StatusOK, []ClientSuggestion{})
		return
	}

	pattern := "%" + q + "%"
	var suggestions []ClientSuggestion
	if err := cc.DB.Model(&models.Client{}).
		Select("id, name, phone, email").
		Where("name LIKE ? OR phone LIKE ?", pattern, pattern).
		Order("visit_count DESC").
		Limit(10).
		Scan(&suggestions).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Error searching clients")
		return
	}

	utils.RespondWithData(c, http.StatusOK, suggestions)
}
