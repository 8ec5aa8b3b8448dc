package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// DownloadLead captures a marketing lead from a gated-download form.
type DownloadLead struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"type:varchar(200);not null;index:ux_download_leads_email_source,unique,priority:1" json:"email" validate:"required,email"`
	Name         string    `gorm:"type:varchar(200)" json:"name"`
	Source       string    `gorm:"type:varchar(100);default:'';index:ux_download_leads_email_source,unique,priority:2" json:"source"`
	Tags         string    `gorm:"type:varchar(500)" json:"tags"`
	MetadataJSON string    `gorm:"type:text" json:"metadata_json"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (l *DownloadLead) Validate() error {
	v := validator.New()

	return v.Struct(l)
}
