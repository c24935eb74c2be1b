// controllers/auth.go
package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/najoro-git/CyberApp-manager/config"
	"github.com/najoro-git/CyberApp-manager/models"
	"github.com/najoro-git/CyberApp-manager/utils"
)

// AuthController handles console user accounts.
type AuthController struct {
	DB  *gorm.DB
	Cfg config.Config
}

type RegisterInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register creates a console user account.
func (ac *AuthController) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var existing models.User
	result := ac.DB.Where("username = ?", input.Username).First(&existing)
	if result.Error == nil {
		utils.RespondWithError(c, http.StatusConflict, "Username already registered")
		return
	} else if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		return
	}

	user := models.User{
		Username: input.Username,
		Password: input.Password, // hashed in BeforeCreate hook
		Name:     input.Name,
		Role:     input.Role,
		IsActive: true,
	}
	if user.Role == "" {
		user.Role = "admin"
	}

	if err := ac.DB.Create(&user).Error; err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create user")
		return
	}

	utils.RespondWithMessage(c, http.StatusCreated, "User registered successfully", user)
}

// Login verifies credentials and issues a JWT.
func (ac *AuthController) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	var user models.User
	if err := ac.DB.Where("username = ?", input.Username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if !user.IsActive {
		utils.RespondWithError(c, http.StatusUnauthorized, "Account is disabled")
		return
	}

	if !user.CheckPassword(input.Password) {
		utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := utils.GenerateToken(ac.Cfg.JWTSecret, user.ID, user.Role, ac.Cfg.JWTExpiryHours)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	utils.RespondWithData(c, http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

// Me returns the authenticated user.
func (ac *AuthController) Me(c *gin.Context) {
	sub := c.GetString("userId")
	id, err := strconv.Atoi(sub)
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "Invalid token subject")
		return
	}

	var user models.User
	if err := ac.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "User not found")
		} else {
			utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
		}
		return
	}

	utils.RespondWithData(c, http.StatusOK, user)
}
