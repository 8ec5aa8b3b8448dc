package models

import "time"

// Payment mirrors the processor's authoritative payment object. MPPaymentID
// is the processor-side id and the global idempotency key: at most one row
// exists per processor payment (upsert-ignore-on-conflict).
type Payment struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	MPPaymentID       string    `gorm:"uniqueIndex;type:varchar(64);not null" json:"mp_payment_id"`
	OrderID           *uint     `gorm:"index" json:"order_id"`
	UserID            *uint     `gorm:"index" json:"user_id"`
	ExternalReference string    `gorm:"type:varchar(191)" json:"external_reference"`
	PayerEmail        string    `gorm:"type:varchar(200);index" json:"payer_email"`
	Status            string    `gorm:"type:varchar(30);not null" json:"status"`
	Amount            float64   `json:"amount"`
	Currency          string    `gorm:"type:varchar(10)" json:"currency"`
	Method            string    `gorm:"type:varchar(50)" json:"method"`
	RawPayloadJSON    string    `gorm:"type:text" json:"raw_payload_json"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// ProcessedPayment is the idempotency ledger. A row's existence means the
// entitlement-granting side effects for that processor payment were already
// attempted; the insert-with-conflict-do-nothing on this table is the single
// atomic statement that prevents double-granting on redelivery.
type ProcessedPayment struct {
	PaymentID string    `gorm:"primaryKey;type:varchar(64)" json:"payment_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
