package models

import "time"

// WebhookEvent is an append-only audit trail of incoming processor
// notifications. It is diagnostic only; processing decisions are driven by
// the processed_payments ledger, never by this table.
type WebhookEvent struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Topic      string    `gorm:"type:varchar(100);index" json:"topic"`
	ResourceID string    `gorm:"type:varchar(64);index" json:"resource_id"`
	Payload    string    `gorm:"type:text" json:"payload"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
