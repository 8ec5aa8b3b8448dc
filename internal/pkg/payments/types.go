package payments

import (
	"context"

	"github.com/deceroacien/backend/internal/pkg/mercadopago"
)

// Notification is the normalized shape of an incoming processor webhook,
// assembled by the controller from query params, headers and body.
type Notification struct {
	Topic           string
	ResourceID      string
	RequestID       string
	SignatureHeader string
	Action          string
	LiveMode        bool
}

// PaymentSource fetches authoritative resource state from the processor.
// The REST client satisfies it; tests substitute a fake.
type PaymentSource interface {
	GetPayment(ctx context.Context, id string) (*mercadopago.PaymentResponse, error)
	GetMerchantOrder(ctx context.Context, id string) (*mercadopago.MerchantOrderResponse, error)
}

// Mailer sends the transactional emails triggered by a newly processed
// payment. Failures are logged and never fail the webhook response.
type Mailer interface {
	SendPurchaseConfirmation(to string, items []string) error
	SendWelcome(to string) error
}

// Outcome classifies how a notification was handled. Everything except
// OutcomeUnauthorized is acknowledged with HTTP 200.
type Outcome int

const (
	// OutcomeAcknowledged covers malformed payloads, ignored topics,
	// non-approved payments and swallowed downstream errors.
	OutcomeAcknowledged Outcome = iota
	OutcomeUnauthorized
	OutcomeDuplicate
	OutcomeGranted
)
