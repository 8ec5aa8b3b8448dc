package models

import "time"

// AuditLog records operator-relevant mutations (guest merges, grants from
// webhooks) for later inspection.
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Actor     string    `gorm:"type:varchar(100)" json:"actor"`
	Action    string    `gorm:"type:varchar(100);index" json:"action"`
	Detail    string    `gorm:"type:text" json:"detail"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
