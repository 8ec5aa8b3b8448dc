package mail

import (
	"strings"
	"testing"
)

func TestWelcomeEmail(t *testing.T) {
	subject, html, text := welcomeEmail("buyer@x.com", "https://deceroacien.app")
	if subject != "Bienvenido a DE CERO A CIEN" {
		t.Fatalf("unexpected subject: %s", subject)
	}
	if !strings.Contains(html, "buyer@x.com") {
		t.Fatalf("html body should mention the recipient")
	}
	if !strings.Contains(text, "https://deceroacien.app/auth/login.html") {
		t.Fatalf("text body should carry the login url")
	}
}

func TestPurchaseConfirmationEmail(t *testing.T) {
	subject, html, text := purchaseConfirmationEmail([]string{"course.pmv", "comunidad.acceso"}, "https://deceroacien.app")
	if subject != "Confirmación de compra" {
		t.Fatalf("unexpected subject: %s", subject)
	}
	for _, key := range []string{"course.pmv", "comunidad.acceso"} {
		if !strings.Contains(html, "<li>"+key+"</li>") {
			t.Fatalf("html body missing item %s", key)
		}
		if !strings.Contains(text, "- "+key) {
			t.Fatalf("text body missing item %s", key)
		}
	}
	if !strings.Contains(html, "portal-alumno.html") {
		t.Fatalf("html body should link the portal")
	}
}
