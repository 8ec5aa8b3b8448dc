// Package payments reconciles processor webhook notifications into local
// state: it authenticates the delivery, fetches the authoritative payment,
// deduplicates against the idempotency ledger and grants entitlements exactly
// once per payment.
package payments

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/deceroacien/backend/app/models"
	"github.com/deceroacien/backend/app/repository"
	"github.com/deceroacien/backend/internal/pkg/cache"
	"github.com/deceroacien/backend/internal/pkg/directory"
	"github.com/deceroacien/backend/internal/pkg/env"
	"github.com/deceroacien/backend/internal/pkg/mercadopago"
	"gorm.io/gorm"
)

const grantSource = "webhook_mp"

// Service is the webhook reconciler.
type Service struct {
	source      PaymentSource
	payments    repository.PaymentRepository
	enrollments repository.EnrollmentRepository
	orders      repository.OrderRepository
	users       *directory.Service
	mailer      Mailer

	webhookSecret string

	invalidate func(userID uint)
}

// NewService creates a reconciler from injected collaborators. mailer may be
// nil when transactional email is not configured.
func NewService(
	source PaymentSource,
	repos *repository.Repositories,
	users *directory.Service,
	mailer Mailer,
	webhookSecret string,
) *Service {
	return &Service{
		source:        source,
		payments:      repos.Payment,
		enrollments:   repos.Enrollment,
		orders:        repos.Order,
		users:         users,
		mailer:        mailer,
		webhookSecret: webhookSecret,
		invalidate: func(userID uint) {
			if err := cache.Delete(cache.EnrollmentsKey(userID)); err != nil {
				log.Printf("webhook: cache invalidation for user %d failed: %v", userID, err)
			}
		},
	}
}

// NewServiceFromDB wires the reconciler against the live database, the REST
// client and environment configuration.
func NewServiceFromDB(db *gorm.DB, source PaymentSource, mailer Mailer) *Service {
	repos := repository.NewRepositories(db)
	return NewService(
		source,
		repos,
		directory.NewService(repos.User, repos.AuditLog),
		mailer,
		env.GetEnv("MP_WEBHOOK_SECRET", ""),
	)
}

// Process runs one notification through the reconciliation state machine.
// Every outcome except OutcomeUnauthorized must be acknowledged with 200 —
// the processor retries any non-200 with backoff forever, and retrying
// business-logic failures is never useful.
func (s *Service) Process(ctx context.Context, n Notification) Outcome {
	topic := strings.ToLower(strings.TrimSpace(n.Topic))
	resourceID := strings.TrimSpace(n.ResourceID)
	if topic == "" || resourceID == "" {
		log.Printf("webhook: payload missing topic or resource id (topic=%q id=%q)", n.Topic, n.ResourceID)
		return OutcomeAcknowledged
	}

	switch CheckSignature(n.SignatureHeader, resourceID, n.RequestID, s.webhookSecret) {
	case SignatureInvalid:
		log.Printf("webhook: signature mismatch for %s %s", topic, resourceID)
		return OutcomeUnauthorized
	case SignatureSkipped:
		log.Printf("webhook: signature not verified for %s %s (no secret or signature material)", topic, resourceID)
	}

	s.recordEvent(topic, resourceID, n)

	switch {
	case strings.Contains(topic, "payment"):
		return s.processPayment(ctx, resourceID)
	case strings.Contains(topic, "merchant_order"):
		// Audit only. Merchant-order notifications never mutate state.
		if mo, err := s.source.GetMerchantOrder(ctx, resourceID); err != nil {
			log.Printf("webhook: merchant order %s lookup failed: %v", resourceID, err)
		} else {
			log.Printf("webhook: merchant order %s status=%s order_status=%s ref=%s",
				resourceID, mo.Status, mo.OrderStatus, mo.ExternalReference)
		}
		return OutcomeAcknowledged
	default:
		// Chargebacks, claims and fraud alerts are logged for manual review.
		log.Printf("webhook: topic %q for resource %s acknowledged without side effects", topic, resourceID)
		return OutcomeAcknowledged
	}
}

func (s *Service) processPayment(ctx context.Context, paymentID string) Outcome {
	payment, err := s.source.GetPayment(ctx, paymentID)
	if err != nil {
		log.Printf("webhook: payment %s lookup failed: %v", paymentID, err)
		return OutcomeAcknowledged
	}

	if payment.Status != "approved" {
		log.Printf("webhook: payment %s status=%s (%s), nothing to grant", paymentID, payment.Status, payment.StatusDetail)
		return OutcomeAcknowledged
	}

	// The ledger insert is the atomic linchpin: only the delivery that wins
	// it runs the side effects below.
	fresh, err := s.payments.InsertProcessed(paymentID)
	if err != nil {
		log.Printf("webhook: idempotency insert for payment %s failed: %v", paymentID, err)
		return OutcomeAcknowledged
	}
	if !fresh {
		log.Printf("webhook: payment %s already processed", paymentID)
		return OutcomeDuplicate
	}

	subject := mercadopago.MetadataString(payment.Metadata, mercadopago.MetadataUserSubject)
	email := strings.ToLower(strings.TrimSpace(payment.Payer.Email))
	if email == "" {
		email = strings.ToLower(strings.TrimSpace(mercadopago.MetadataString(payment.Metadata, mercadopago.MetadataUserEmail)))
	}
	entitlements := mercadopago.MetadataStrings(payment.Metadata, mercadopago.MetadataEntitlements)

	if email == "" {
		log.Printf("webhook: payment %s approved but carries no payer email, cannot resolve a user", paymentID)
		return OutcomeAcknowledged
	}

	user, wasGuest, err := s.resolveUser(ctx, subject, email, payment.ExternalReference)
	if err != nil {
		log.Printf("webhook: resolving user for payment %s failed: %v", paymentID, err)
		return OutcomeAcknowledged
	}

	for _, key := range entitlements {
		if err := s.enrollments.Grant(user.ID, key, grantSource); err != nil {
			log.Printf("webhook: granting %q to user %d failed: %v", key, user.ID, err)
		}
	}
	if len(entitlements) > 0 {
		s.invalidate(user.ID)
	}

	s.recordPayment(payment, user, email)
	s.markOrderPaid(payment, paymentID)
	s.sendEmails(email, entitlements, subject == "" || wasGuest)

	return OutcomeGranted
}

// resolveUser maps payment metadata onto a user row: subject upsert when the
// checkout was authenticated, email lookup otherwise, and a synthetic guest
// row as a last resort.
func (s *Service) resolveUser(ctx context.Context, subject, email, externalRef string) (*models.User, bool, error) {
	if subject != "" {
		u, err := s.users.UpsertBySubject(ctx, subject, email, nil, nil)
		return u, false, err
	}
	u, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return u, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}
	u, err = s.users.CreateGuest(ctx, email, externalRef)
	return u, true, err
}

func (s *Service) recordEvent(topic, resourceID string, n Notification) {
	payload := fmt.Sprintf(`{"topic":%q,"resource_id":%q,"action":%q,"live_mode":%t}`,
		topic, resourceID, n.Action, n.LiveMode)
	event := &models.WebhookEvent{Topic: topic, ResourceID: resourceID, Payload: payload}
	if err := s.payments.RecordWebhookEvent(event); err != nil {
		log.Printf("webhook: recording event %s %s failed: %v", topic, resourceID, err)
	}
}

func (s *Service) recordPayment(payment *mercadopago.PaymentResponse, user *models.User, email string) {
	row := &models.Payment{
		MPPaymentID:       payment.ID.String(),
		UserID:            &user.ID,
		ExternalReference: payment.ExternalReference,
		PayerEmail:        email,
		Status:            payment.Status,
		Amount:            payment.TransactionAmount,
		Currency:          payment.CurrencyID,
		Method:            payment.PaymentMethodID,
		RawPayloadJSON:    string(payment.Raw),
	}
	if orderID := mercadopago.MetadataUint(payment.Metadata, mercadopago.MetadataOrderID); orderID > 0 {
		row.OrderID = &orderID
	}
	if _, err := s.payments.CreateIfNotExists(row); err != nil {
		log.Printf("webhook: recording payment %s failed: %v", row.MPPaymentID, err)
	}
}

// markOrderPaid is best-effort: the webhook can outrun the checkout's own
// pending-update commit, and the authoritative side effect is the grant.
func (s *Service) markOrderPaid(payment *mercadopago.PaymentResponse, paymentID string) {
	orderID := mercadopago.MetadataUint(payment.Metadata, mercadopago.MetadataOrderID)
	if orderID == 0 {
		return
	}
	if _, err := s.orders.MarkPaid(orderID); err != nil {
		log.Printf("webhook: marking order %d paid for payment %s failed: %v", orderID, paymentID, err)
	}
}

func (s *Service) sendEmails(email string, entitlements []string, sendWelcome bool) {
	if s.mailer == nil || len(entitlements) == 0 {
		return
	}
	if err := s.mailer.SendPurchaseConfirmation(email, entitlements); err != nil {
		log.Printf("webhook: purchase confirmation to %s failed: %v", email, err)
	}
	if sendWelcome {
		if err := s.mailer.SendWelcome(email); err != nil {
			log.Printf("webhook: welcome email to %s failed: %v", email, err)
		}
	}
}
