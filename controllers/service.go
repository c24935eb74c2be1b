// controllers/service.go
package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/najoro-git/CyberApp-manager/models"
	"github.com/najoro-git/CyberApp-manager/utils"
)

// ServiceController handles the add-on service catalog.
type ServiceController struct {
	DB *gorm.DB
}

// CreateServiceInput defines the expected JSON structure for creating a service.
type CreateServiceInput struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Price       *float64 `json:"price" binding:"required"`
	Category    string   `json:"category"`
}

// UpdateServiceInput defines the expected JSON structure for updating a service.
type UpdateServiceInput struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Category    *string  `json:"category"`
	IsActive    *bool    `json:"is_active"`
}

// GetServices lists catalog services with optional category/is_active filters.
func (sc *ServiceController) GetServices(c *gin.Context) {
	query := sc.DB.Model(&models.Service{})

	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if isActive := c.Query("is_active"); isActive != "" {
		query = query.Where("is_active = ?", isActive == "true")
	}

	var services []models.Service
	if err := query.Order("category, name").Find(&services).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Error fetching services")
		return
	}

	utils.RespondWithList(c, services, len(services))
}

// GetService returns one catalog service.
func (sc *ServiceController) GetService(c *gin.Context) {
	var service models.Service
	if err := sc.DB.First(&service, c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "Service not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	utils.RespondWithData(c, http.StatusOK, service)
}

// CreateService adds an item to the catalog.
func (sc *ServiceController) CreateService(c *gin.Context) {
	var input CreateServiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Name and price are required")
		return
	}

	service := models.Service{
		Name:        input.Name,
		Description: input.Description,
		Price:       *input.Price,
		Category:    input.Category,
		IsActive:    true,
	}

	if err := sc.DB.Create(&service).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Error creating service")
		return
	}

	utils.RespondWithMessage(c, http.StatusCreated, "Service created successfully", service)
}

// UpdateService applies a partial update to a catalog service. Changing the
// price never touches lines already sold; they keep their snapshot.
func (sc *ServiceController) UpdateService(c *gin.Context) {
	var input UpdateServiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Price != nil {
		updates["price"] = *input.Price
	}
	if input.Category != nil {
		updates["category"] = *input.Category
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if len(updates) == 0 {
		utils.RespondWithError(c, http.StatusBadRequest, "No fields to update")
		return
	}

	result := sc.DB.Model(&models.Service{}).Where("id = ?", c.Param("id")).Updates(updates)
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Error updating service")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Service not found")
		return
	}

	var service models.Service
	if err := sc.DB.First(&service, c.Param("id")).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}
	utils.RespondWithMessage(c, http.StatusOK, "Service updated successfully", service)
}

// DeleteService removes a catalog service.
func (sc *ServiceController) DeleteService(c *gin.Context) {
	result := sc.DB.Delete(&models.Service{}, c.Param("id"))
	if result.Error != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Error deleting service")
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondWithError(c, http.StatusNotFound, "Service not found")
		return
	}

	utils.RespondWithMessage(c, http.StatusOK, "Service deleted successfully", nil)
}

// GetCategories returns the distinct set of non-null categories.
func (sc *ServiceController) GetCategories(c *gin.Context) {
	var categories []string
	if err := sc.DB.Model(&models.Service{}).
		Distinct("category").
		Where("category IS NOT NULL AND category <> ''").
		Order("category").
		Pluck("category", &categories).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Error fetching categories")
		return
	}

	utils.RespondWithData(c, http.StatusOK, categories)
}
