package repository

import (
	"github.com/deceroacien/backend/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// paymentRepository implements the PaymentRepository interface
type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository instance
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

// CreateIfNotExists inserts the payment mirror row, ignoring duplicates of
// the processor payment id. Returns whether a new row was written.
func (r *paymentRepository) CreateIfNotExists(payment *models.Payment) (bool, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "mp_payment_id"},
		},
		DoNothing: true,
	}).Create(payment)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// InsertProcessed attempts to claim a processor payment id in the
// idempotency ledger. The insert is a single atomic statement; only the
// request that actually wrote the row (RowsAffected > 0) may run
// entitlement-granting side effects.
func (r *paymentRepository) InsertProcessed(paymentID string) (bool, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "payment_id"},
		},
		DoNothing: true,
	}).Create(&models.ProcessedPayment{PaymentID: paymentID})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// RecordWebhookEvent appends to the webhook audit trail.
func (r *paymentRepository) RecordWebhookEvent(event *models.WebhookEvent) error {
	return r.db.Create(event).Error
}
