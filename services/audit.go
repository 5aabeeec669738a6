package services

import (
	"context"
	"time"

	"creatorpulse/models"
	"creatorpulse/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditRecorder appends one row per successful mutation. Recording failures
// are logged and never fail the mutation itself.
type AuditRecorder interface {
	Record(ctx context.Context, entry models.AuditEntry)
}

type gormAuditRecorder struct {
	db *gorm.DB
}

type nopAuditRecorder struct{}

func (nopAuditRecorder) Record(context.Context, models.AuditEntry) {}

// NewAuditRecorder writes to db, or discards entries when db is nil.
func NewAuditRecorder(db *gorm.DB) AuditRecorder {
	if db == nil {
		return nopAuditRecorder{}
	}
	return &gormAuditRecorder{db: db}
}

func (r *gormAuditRecorder) Record(ctx context.Context, entry models.AuditEntry) {
	fillAuditDefaults(&entry)
	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		utils.LogError("audit_write_failed", err, map[string]interface{}{
			"action":     entry.Action,
			"actor":      entry.Actor,
			"request_id": entry.RequestID,
		})
	}
}

func fillAuditDefaults(entry *models.AuditEntry) {
	if entry.RequestID == "" {
		entry.RequestID = uuid.NewString()
	}
	if entry.At.IsZero() {
		entry.At = time.Now()
	}
	if entry.Count == 0 {
		entry.Count = 1
	}
}
