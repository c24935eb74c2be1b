package utils

import (
	"github.com/gin-gonic/gin"
)

// Response is the JSON envelope every endpoint speaks.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Count   *int   `json:"count,omitempty"`
}

// RespondWithData writes a successful envelope around a payload.
func RespondWithData(c *gin.Context, status int, data any) {
	c.JSON(status, Response{Success: true, Data: data})
}

// RespondWithList writes a successful envelope with a count field.
func RespondWithList(c *gin.Context, data any, count int) {
	c.JSON(200, Response{Success: true, Data: data, Count: &count})
}

// RespondWithMessage writes a successful envelope carrying a message and an
// optional payload.
func RespondWithMessage(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Response{Success: true, Message: message, Data: data})
}

// RespondWithError writes a failure envelope.
func RespondWithError(c *gin.Context, status int, message string) {
	c.JSON(status, Response{Success: false, Message: message})
}
