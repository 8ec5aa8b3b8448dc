// Package controllers holds the HTTP handlers. Collaborating services are
// wired once at startup via Initialize; missing required configuration fails
// the boot instead of surfacing later as per-request errors.
package controllers

import (
	"context"
	"fmt"

	"github.com/deceroacien/backend/app/repository"
	"github.com/deceroacien/backend/internal/pkg/checkout"
	"github.com/deceroacien/backend/internal/pkg/database"
	"github.com/deceroacien/backend/internal/pkg/directory"
	"github.com/deceroacien/backend/internal/pkg/grantlink"
	"github.com/deceroacien/backend/internal/pkg/identity"
	"github.com/deceroacien/backend/internal/pkg/mail"
	"github.com/deceroacien/backend/internal/pkg/mercadopago"
	"github.com/deceroacien/backend/internal/pkg/payments"
)

var (
	directoryService *directory.Service
	checkoutService  *checkout.Service
	webhookService   *payments.Service
	grantSigner      *grantlink.Signer
	enrollmentRepo   repository.EnrollmentRepository
	leadRepo         repository.LeadRepository
)

// Initialize wires every controller dependency and returns the identity
// verifier for the auth middleware.
func Initialize(ctx context.Context) (*identity.Verifier, error) {
	db := database.GetDB()
	if db == nil {
		return nil, fmt.Errorf("controllers: database is not initialized")
	}

	verifier, err := identity.NewVerifierFromEnv(ctx)
	if err != nil {
		return nil, fmt.Errorf("controllers: %w", err)
	}

	repository.InitializeFactory(db)
	repos := repository.GetGlobalRepositories()
	directoryService = directory.NewService(repos.User, repos.AuditLog)
	enrollmentRepo = repos.Enrollment
	leadRepo = repos.Lead
	grantSigner = grantlink.NewSignerFromEnv()

	checkoutService, err = checkout.NewServiceFromEnv(db)
	if err != nil {
		return nil, fmt.Errorf("controllers: %w", err)
	}

	// A nil *Mailer must stay a nil interface inside the reconciler.
	var mailer payments.Mailer
	if m := mail.NewMailerFromEnv(); m != nil {
		mailer = m
	}
	webhookService = payments.NewServiceFromDB(db, mercadopago.NewClientFromEnv(), mailer)

	return verifier, nil
}
