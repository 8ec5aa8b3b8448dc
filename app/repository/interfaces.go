package repository

import (
	"github.com/deceroacien/backend/app/models"
)

// UserRepository defines the user-directory database operations. Emails are
// expected pre-normalized (lowercased) by the caller.
type UserRepository interface {
	UpsertBySubject(subject, email string, firstName, lastName *string) (*models.User, error)
	GetByID(id uint) (*models.User, error)
	GetBySubject(subject string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	ListByEmail(email string) ([]models.User, error)
	AssignSubject(userID uint, subject string) error
	MergeOwnership(realUserID, guestUserID uint) error
}

// OrderRepository defines order-ledger operations.
type OrderRepository interface {
	Create(order *models.Order) error
	GetByID(id uint) (*models.Order, error)
	MarkPending(id uint, preferenceID string) error
	MarkPaid(id uint) (bool, error)
}

// PaymentRepository covers the payment mirror table, the idempotency ledger
// and the webhook audit trail.
type PaymentRepository interface {
	CreateIfNotExists(payment *models.Payment) (bool, error)
	InsertProcessed(paymentID string) (bool, error)
	RecordWebhookEvent(event *models.WebhookEvent) error
}

// EnrollmentRepository defines entitlement-store operations.
type EnrollmentRepository interface {
	Grant(userID uint, entitlement, source string) error
	ListKeysByUser(userID uint) ([]string, error)
}

// LeadRepository stores download leads.
type LeadRepository interface {
	CreateIfNotExists(lead *models.DownloadLead) (bool, error)
}

// AuditLogRepository appends operator-facing audit entries.
type AuditLogRepository interface {
	Append(actor, action, detail string) error
}
