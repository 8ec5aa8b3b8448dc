package mail

import (
	"fmt"
	"strings"
)

func welcomeEmail(to, siteBaseURL string) (subject, html, text string) {
	loginURL := siteBaseURL + "/auth/login.html"
	subject = "Bienvenido a DE CERO A CIEN"
	html = fmt.Sprintf(`<p>¡Hola!</p>
<p>Tu correo (%s) ha sido registrado. Si aún no tienes cuenta, crea tu contraseña iniciando sesión desde nuestro portal:</p>
<p><a href="%s">Ir a Iniciar Sesión</a></p>
<p>Si usas Google, simplemente inicia sesión y tus accesos se sincronizarán.</p>`, to, loginURL)
	text = "Bienvenido. Inicia sesión en " + loginURL
	return subject, html, text
}

func purchaseConfirmationEmail(items []string, siteBaseURL string) (subject, html, text string) {
	portalURL := siteBaseURL + "/portal-alumno.html"

	var htmlList, textList strings.Builder
	for _, item := range items {
		htmlList.WriteString("<li>" + item + "</li>")
		textList.WriteString("- " + item + "\n")
	}

	subject = "Confirmación de compra"
	html = fmt.Sprintf(`<p>¡Gracias por tu compra!</p>
<p>Se habilitó el acceso a:</p>
<ul>%s</ul>
<p>Ingresa a tu portal: <a href="%s">portal-alumno</a></p>`, htmlList.String(), portalURL)
	text = fmt.Sprintf("Gracias por tu compra. Accesos:\n%sPortal: %s", textList.String(), portalURL)
	return subject, html, text
}
