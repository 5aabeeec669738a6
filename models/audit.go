package models

import (
	"time"

	"gorm.io/gorm"
)

// AuditEntry records one successful mutation issued through the portal.
type AuditEntry struct {
	gorm.Model
	RequestID string    `gorm:"index;not null" json:"request_id"`
	Actor     string    `gorm:"index" json:"actor"`
	Action    string    `gorm:"index;not null" json:"action"`
	CreatorID *int64    `gorm:"index" json:"creator_id,omitempty"`
	ClientID  *int64    `gorm:"index" json:"client_id,omitempty"`
	Count     int       `gorm:"default:1" json:"count"`
	Detail    string    `gorm:"type:text" json:"detail"`
	At        time.Time `gorm:"not null" json:"at"`
}
