package models

import (
	"time"
)

// Service is a sellable add-on (print page, drink, rental). IsActive gates
// whether it may be attached to a session.
type Service struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Name        string  `gorm:"not null" json:"name"`
	Description string  `json:"description"`
	Price       float64 `gorm:"type:decimal(10,2);not null" json:"price"`
	Category    string  `json:"category"`
	IsActive    bool    `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	SessionServices []SessionService `gorm:"foreignKey:ServiceID" json:"-"`
}
