// Package directory maps external identity subjects to internal user rows
// and reconciles guest rows created from anonymous checkouts.
package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/deceroacien/backend/app/models"
	"github.com/deceroacien/backend/app/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrMissingFields = errors.New("missing_fields")

// Service provides the user-directory operations used by the auth endpoints
// and the webhook reconciler.
type Service struct {
	users repository.UserRepository
	audit repository.AuditLogRepository
}

// NewService creates a directory service from injected repositories.
func NewService(users repository.UserRepository, audit repository.AuditLogRepository) *Service {
	return &Service{users: users, audit: audit}
}

// NewServiceFromDB creates a directory service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	repos := repository.NewRepositories(db)
	return NewService(repos.User, repos.AuditLog)
}

// UpsertBySubject provisions (or refreshes) the user row for a verified
// identity-provider subject.
func (s *Service) UpsertBySubject(ctx context.Context, subject, email string, firstName, lastName *string) (*models.User, error) {
	_ = ctx
	subject = strings.TrimSpace(subject)
	email = models.NormalizeEmail(email)
	if subject == "" || email == "" {
		return nil, ErrMissingFields
	}
	return s.users.UpsertBySubject(subject, email, firstName, lastName)
}

// FindBySubject is a pure lookup.
func (s *Service) FindBySubject(ctx context.Context, subject string) (*models.User, error) {
	_ = ctx
	return s.users.GetBySubject(strings.TrimSpace(subject))
}

// FindByEmail is a pure lookup on the normalized email.
func (s *Service) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	_ = ctx
	return s.users.GetByEmail(models.NormalizeEmail(email))
}

// GetByID is a pure lookup by internal id.
func (s *Service) GetByID(ctx context.Context, id uint) (*models.User, error) {
	_ = ctx
	return s.users.GetByID(id)
}

// CreateGuest provisions a placeholder user for a payment whose payer has no
// account yet. The synthetic subject is scoped to the checkout's external
// reference so repeated webhooks for one checkout stay distinguishable.
func (s *Service) CreateGuest(ctx context.Context, email, externalRef string) (*models.User, error) {
	ref := strings.TrimSpace(externalRef)
	if ref == "" {
		ref = "ref"
	}
	subject := models.GuestSubjectPrefix + ref + "_" + uuid.NewString()
	if len(subject) > 128 {
		subject = subject[:128]
	}
	return s.UpsertBySubject(ctx, subject, email, nil, nil)
}

// ReconcileGuest makes the row owned by the authenticating subject absorb
// every other row sharing its email. Tie-break: the row already carrying the
// subject wins; otherwise the oldest row becomes the real identity and the
// subject is attached to it. Returns whether any merge happened and the
// surviving user.
func (s *Service) ReconcileGuest(ctx context.Context, subject, email string) (bool, *models.User, error) {
	_ = ctx
	subject = strings.TrimSpace(subject)
	email = models.NormalizeEmail(email)
	if subject == "" || email == "" {
		return false, nil, ErrMissingFields
	}

	rows, err := s.users.ListByEmail(email)
	if err != nil {
		return false, nil, err
	}
	if len(rows) == 0 {
		return false, nil, nil
	}

	real := rows[0]
	for _, r := range rows {
		if r.ExternalSubject != nil && *r.ExternalSubject == subject {
			real = r
			break
		}
	}
	if real.ExternalSubject == nil || *real.ExternalSubject != subject {
		if err := s.users.AssignSubject(real.ID, subject); err != nil {
			return false, nil, err
		}
		real.ExternalSubject = &subject
	}

	merged := false
	for _, r := range rows {
		if r.ID == real.ID {
			continue
		}
		if err := s.users.MergeOwnership(real.ID, r.ID); err != nil {
			return merged, &real, err
		}
		merged = true
		if s.audit != nil {
			detail := fmt.Sprintf("merged user %d into %d (email %s)", r.ID, real.ID, email)
			if err := s.audit.Append(subject, "guest_merge", detail); err != nil {
				// Audit writes never abort a merge.
				continue
			}
		}
	}
	return merged, &real, nil
}
