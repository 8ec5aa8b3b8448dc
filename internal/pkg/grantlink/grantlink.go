// Package grantlink signs and verifies the short-lived grant parameter that
// the checkout success URL carries back to the site. It lets the front-end
// unlock content optimistically before the payment webhook lands; the webhook
// remains the authoritative grant mechanism.
package grantlink

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/deceroacien/backend/internal/pkg/env"
)

// DefaultTolerance bounds how far a signed timestamp may drift from now
// before verification fails, so a returned link cannot be replayed
// indefinitely.
const DefaultTolerance = 10 * time.Minute

type Signer struct {
	secret    []byte
	tolerance time.Duration

	// now is swappable for tests.
	now func() time.Time
}

func NewSigner(secret string, tolerance time.Duration) *Signer {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &Signer{
		secret:    []byte(secret),
		tolerance: tolerance,
		now:       time.Now,
	}
}

// NewSignerFromEnv builds the signer from GRANT_SECRET (falling back to the
// webhook secret, then a dev placeholder) and GRANT_TOLERANCE_MINUTES.
func NewSignerFromEnv() *Signer {
	secret := env.GetEnv("GRANT_SECRET", "")
	if secret == "" {
		secret = env.GetEnv("MP_WEBHOOK_SECRET", "")
	}
	if secret == "" {
		secret = "dev-secret"
	}
	tolerance := DefaultTolerance
	if raw := env.GetEnv("GRANT_TOLERANCE_MINUTES", ""); raw != "" {
		if minutes, err := strconv.Atoi(raw); err == nil && minutes > 0 {
			tolerance = time.Duration(minutes) * time.Minute
		}
	}
	return NewSigner(secret, tolerance)
}

// Sign computes the hex HMAC-SHA256 over "grant|timestamp|ref". The
// timestamp is Unix milliseconds, matching what the front-end sends back.
func (s *Signer) Sign(grant string, timestampMillis int64, ref string) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s|%d|%s", grant, timestampMillis, ref)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify recomputes the signature with constant-time comparison and requires
// the timestamp to be within the tolerance window of the current time.
func (s *Signer) Verify(grant string, timestampMillis int64, ref, signature string) bool {
	expected := s.Sign(grant, timestampMillis, ref)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return false
	}
	drift := s.now().UnixMilli() - timestampMillis
	if drift < 0 {
		drift = -drift
	}
	return time.Duration(drift)*time.Millisecond <= s.tolerance
}
