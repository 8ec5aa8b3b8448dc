package repository

import (
	"github.com/deceroacien/backend/app/models"
	"gorm.io/gorm"
)

// auditLogRepository implements the AuditLogRepository interface
type auditLogRepository struct {
	db *gorm.DB
}

// NewAuditLogRepository creates a new audit log repository instance
func NewAuditLogRepository(db *gorm.DB) AuditLogRepository {
	return &auditLogRepository{db: db}
}

// Append writes one audit entry.
func (r *auditLogRepository) Append(actor, action, detail string) error {
	return r.db.Create(&models.AuditLog{
		Actor:  actor,
		Action: action,
		Detail: detail,
	}).Error
}
