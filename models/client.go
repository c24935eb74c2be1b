package models

import (
	"time"
)

type Client struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Name    string `gorm:"not null" json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Type    string `gorm:"type:varchar(20);default:'occasional'" json:"type"`

	// Incremented only when a session closes, never recomputed.
	VisitCount int     `gorm:"default:0" json:"visit_count"`
	TotalSpent float64 `gorm:"type:decimal(10,2);default:0" json:"total_spent"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Sessions []Session `gorm:"foreignKey:ClientID" json:"-"`
}
