package models

import "time"

const (
	OrderStatusCreated   = "created"
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusCancelled = "cancelled"
)

// Order records a checkout attempt. It is persisted with status "created"
// before the processor is called, so a session-creation crash leaves an
// auditable but harmless row and never an invented payment.
type Order struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       *uint     `gorm:"index" json:"user_id"`
	Email        string    `gorm:"type:varchar(200);index" json:"email"`
	ItemsJSON    string    `gorm:"type:text;not null" json:"items_json"`
	Total        float64   `gorm:"not null" json:"total"`
	Currency     string    `gorm:"type:varchar(10);not null" json:"currency"`
	PreferenceID string    `gorm:"type:varchar(191);index" json:"preference_id"`
	Status       string    `gorm:"type:varchar(20);not null;default:'created';index" json:"status"`
	MetadataJSON string    `gorm:"type:text" json:"metadata_json"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
