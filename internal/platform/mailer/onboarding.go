package mailer

import (
	"fmt"
	"html"
	"strings"
)

const onboardingSubject = "Your visitor desk host account"

// onboardingMessage renders the welcome email carrying the password reset link.
func onboardingMessage(toName, resetURL string) (subject, text, htmlBody string) {
	greeting := "Hello"
	if name := strings.TrimSpace(toName); name != "" {
		greeting = "Hello " + name
	}
	text = fmt.Sprintf("%s,\n\nA host account was created for you on the visitor desk.\n"+
		"Set your password here (the link expires in 72 hours):\n%s\n", greeting, resetURL)
	htmlBody = fmt.Sprintf(`<p>%s,</p>
<p>A host account was created for you on the visitor desk.</p>
<p><a href="%s">Set your password</a>. The link expires in 72 hours.</p>`,
		html.EscapeString(greeting), html.EscapeString(resetURL))
	return onboardingSubject, text, htmlBody
}
