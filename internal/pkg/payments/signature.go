package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// SignatureStatus is the outcome of webhook signature authentication.
type SignatureStatus int

const (
	// SignatureSkipped means no secret or no usable signature material was
	// present; verification was not performed.
	SignatureSkipped SignatureStatus = iota
	SignatureValid
	SignatureInvalid
)

// CheckSignature validates a Mercado Pago x-signature header. The header
// carries `ts=<unix>,v1=<hex hmac>`; the HMAC-SHA256 is computed over the
// manifest `id:<resourceId>;request-id:<x-request-id>;ts:<ts>;` with empty
// fields omitted.
func CheckSignature(signatureHeader, resourceID, requestID, secret string) SignatureStatus {
	secret = strings.TrimSpace(secret)
	header := strings.TrimSpace(signatureHeader)
	if secret == "" || header == "" {
		return SignatureSkipped
	}

	var ts, v1 string
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		switch {
		case strings.HasPrefix(part, "ts="):
			ts = strings.TrimPrefix(part, "ts=")
		case strings.HasPrefix(part, "v1="):
			v1 = strings.TrimPrefix(part, "v1=")
		}
	}

	manifest := buildManifest(resourceID, requestID, ts)
	if v1 == "" || manifest == "" {
		// Not enough material to validate. The caller logs this and treats
		// the notification as trusted, matching the dev/local posture.
		return SignatureSkipped
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(manifest))
	computed := hex.EncodeToString(mac.Sum(nil))
	if hmac.Equal([]byte(computed), []byte(strings.ToLower(v1))) {
		return SignatureValid
	}
	return SignatureInvalid
}

func buildManifest(resourceID, requestID, ts string) string {
	var b strings.Builder
	if resourceID != "" {
		b.WriteString("id:" + resourceID + ";")
	}
	if requestID != "" {
		b.WriteString("request-id:" + requestID + ";")
	}
	if ts != "" {
		b.WriteString("ts:" + ts + ";")
	}
	return b.String()
}
