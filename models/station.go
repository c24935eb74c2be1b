package models

import (
	"time"
)

// Station statuses. "occupied" is owned by the session lifecycle: it holds
// exactly while an active session references the station.
const (
	StationAvailable    = "available"
	StationOccupied     = "occupied"
	StationMaintenance  = "maintenance"
	StationOutOfService = "out_of_service"
)

// Connection statuses maintained by the ping probe.
const (
	ConnectionUnknown = "unknown"
	ConnectionOnline  = "online"
	ConnectionOffline = "offline"
)

type Station struct {
	ID         uint    `gorm:"primaryKey" json:"id"`
	Name       string  `gorm:"uniqueIndex;not null" json:"name"`
	Type       string  `gorm:"default:'standard'" json:"type"`
	Status     string  `gorm:"type:varchar(20);default:'available'" json:"status"`
	HourlyRate float64 `gorm:"type:decimal(10,2);default:1000.00" json:"hourly_rate"`
	IPAddress  string  `gorm:"column:ip_address" json:"ip_address"`

	ConnectionStatus string     `gorm:"type:varchar(20);default:'unknown'" json:"connection_status"`
	LastPingTime     *time.Time `json:"last_ping_time"`
	ResponseTime     *int       `json:"response_time"` // milliseconds

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Sessions []Session `gorm:"foreignKey:StationID" json:"-"`
}
