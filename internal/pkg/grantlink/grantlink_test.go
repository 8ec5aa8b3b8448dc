package grantlink

import (
	"testing"
	"time"
)

func fixedSigner(secret string, tolerance time.Duration, now time.Time) *Signer {
	s := NewSigner(secret, tolerance)
	s.now = func() time.Time { return now }
	return s
}

func TestSignVerifyRoundTrip(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s := fixedSigner("test-secret", 10*time.Minute, now)

	ts := now.UnixMilli()
	sig := s.Sign("course.pmv", ts, "a@x.com")
	if !s.Verify("course.pmv", ts, "a@x.com", sig) {
		t.Fatalf("expected signature to verify")
	}
}

func TestVerifyRejectsMutations(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s := fixedSigner("test-secret", 10*time.Minute, now)
	ts := now.UnixMilli()
	sig := s.Sign("course.pmv", ts, "a@x.com")

	tests := []struct {
		name  string
		grant string
		ts    int64
		ref   string
		sig   string
	}{
		{name: "mutated grant", grant: "course.pmf", ts: ts, ref: "a@x.com", sig: sig},
		{name: "mutated timestamp", grant: "course.pmv", ts: ts + 1, ref: "a@x.com", sig: sig},
		{name: "mutated ref", grant: "course.pmv", ts: ts, ref: "b@x.com", sig: sig},
		{name: "mutated signature", grant: "course.pmv", ts: ts, ref: "a@x.com", sig: "0" + sig[1:]},
		{name: "truncated signature", grant: "course.pmv", ts: ts, ref: "a@x.com", sig: sig[:len(sig)-1]},
	}
	for _, tt := range tests {
		if s.Verify(tt.grant, tt.ts, tt.ref, tt.sig) {
			t.Fatalf("%s: expected verification to fail", tt.name)
		}
	}
}

func TestVerifyToleranceWindow(t *testing.T) {
	tolerance := 10 * time.Minute
	issued := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	ts := issued.UnixMilli()

	// One second inside the window still verifies.
	s := fixedSigner("test-secret", tolerance, issued.Add(tolerance-time.Second))
	sig := s.Sign("course.pmv", ts, "ref")
	if !s.Verify("course.pmv", ts, "ref", sig) {
		t.Fatalf("expected signature inside the window to verify")
	}

	// One second past the window fails.
	s.now = func() time.Time { return issued.Add(tolerance + time.Second) }
	if s.Verify("course.pmv", ts, "ref", sig) {
		t.Fatalf("expected signature past the window to fail")
	}

	// Future timestamps beyond the window fail too.
	s.now = func() time.Time { return issued.Add(-tolerance - time.Second) }
	if s.Verify("course.pmv", ts, "ref", sig) {
		t.Fatalf("expected far-future timestamp to fail")
	}
}

func TestDifferentSecretsDoNotVerify(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	a := fixedSigner("secret-a", 10*time.Minute, now)
	b := fixedSigner("secret-b", 10*time.Minute, now)
	ts := now.UnixMilli()
	if b.Verify("course.pmv", ts, "ref", a.Sign("course.pmv", ts, "ref")) {
		t.Fatalf("signature from a different secret must not verify")
	}
}
