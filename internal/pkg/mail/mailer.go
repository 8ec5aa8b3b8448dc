// Package mail sends the transactional emails triggered by checkout and
// webhook processing. Sending is always best-effort: callers log failures and
// move on.
package mail

import (
	"fmt"
	"log"
	"net/smtp"

	"github.com/deceroacien/backend/internal/pkg/env"
	"github.com/jordan-wright/email"
)

type Mailer struct {
	addr   string
	host   string
	sender string
	auth   smtp.Auth

	siteBaseURL string
}

// NewMailerFromEnv builds the mailer from SMTP_* configuration. Returns nil
// when no SMTP host is configured, which disables transactional email.
func NewMailerFromEnv() *Mailer {
	host := env.GetEnv("SMTP_HOST", "")
	if host == "" {
		log.Printf("SMTP_HOST not set, transactional email disabled")
		return nil
	}
	port := env.GetEnv("SMTP_PORT", "587")
	username := env.GetEnv("SMTP_USERNAME", "")
	password := env.GetEnv("SMTP_PASSWORD", "")

	sender := env.GetEnv("SMTP_SENDER", "")
	if sender == "" {
		sender = "no-reply@deceroacien.app"
		log.Printf("SMTP_SENDER not set, using default sender: %s", sender)
	}

	var auth smtp.Auth
	if username != "" && password != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}

	return &Mailer{
		addr:        fmt.Sprintf("%s:%s", host, port),
		host:        host,
		sender:      sender,
		auth:        auth,
		siteBaseURL: env.GetEnv("MP_BASE_URL", "https://deceroacien.app"),
	}
}

// Send delivers one email with both HTML and plain-text bodies.
func (m *Mailer) Send(to, subject, htmlBody, textBody string) error {
	e := email.NewEmail()
	e.From = m.sender
	e.To = []string{to}
	e.Subject = subject
	e.HTML = []byte(htmlBody)
	e.Text = []byte(textBody)

	if err := e.Send(m.addr, m.auth); err != nil {
		log.Printf("SMTP send error: %v", err)
		return err
	}
	log.Printf("Email sent to %s via %s", to, m.addr)
	return nil
}

// SendWelcome greets a buyer whose account was created from a guest checkout.
func (m *Mailer) SendWelcome(to string) error {
	subject, html, text := welcomeEmail(to, m.siteBaseURL)
	return m.Send(to, subject, html, text)
}

// SendPurchaseConfirmation lists the entitlements unlocked by a payment.
func (m *Mailer) SendPurchaseConfirmation(to string, items []string) error {
	subject, html, text := purchaseConfirmationEmail(items, m.siteBaseURL)
	return m.Send(to, subject, html, text)
}
