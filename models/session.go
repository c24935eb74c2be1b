package models

import (
	"time"
)

// Session statuses. A session is born active and dies completed; there is
// no pause or cancel transition.
const (
	SessionActive    = "active"
	SessionCompleted = "completed"
)

// Payment statuses.
const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
)

type Session struct {
	ID        uint  `gorm:"primaryKey" json:"id"`
	StationID uint  `gorm:"index;not null" json:"station_id"`
	ClientID  *uint `gorm:"index" json:"client_id"`

	StartTime       time.Time  `gorm:"not null" json:"start_time"`
	EndTime         *time.Time `json:"end_time"`
	DurationMinutes *int       `json:"duration_minutes"`

	BasePrice     float64  `gorm:"type:decimal(10,2);default:0" json:"base_price"`
	ServicesPrice float64  `gorm:"type:decimal(10,2);default:0" json:"services_price"`
	TotalPrice    *float64 `gorm:"type:decimal(10,2)" json:"total_price"`

	Status        string `gorm:"type:varchar(20);default:'active';index" json:"status"`
	PaymentStatus string `gorm:"type:varchar(20);default:'pending'" json:"payment_status"`
	Notes         string `json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Services []SessionService `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"-"`
}

// SessionService is one priced line item sold against an active session.
// UnitPrice is a snapshot of the catalog price at sale time, not a live
// reference.
type SessionService struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	SessionID uint `gorm:"index;not null" json:"session_id"`
	ServiceID uint `gorm:"index;not null" json:"service_id"`

	Quantity   int     `gorm:"default:1" json:"quantity"`
	UnitPrice  float64 `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	TotalPrice float64 `gorm:"type:decimal(10,2);not null" json:"total_price"`

	CreatedAt time.Time `json:"created_at"`
}
