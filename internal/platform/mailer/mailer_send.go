package mailer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mailersend/mailersend-go"
)

const apiSendTimeout = 10 * time.Second

var errAPIMailerDisabled = errors.New("mailersend disabled: MAILERSEND_API_KEY and SMTP_FROM are required")

// APIMailer sends onboarding mail through the MailerSend HTTP API.
type APIMailer struct {
	client  *mailersend.Mailersend
	from    mailersend.From
	timeout time.Duration
}

func NewAPIMailer(apiKey, fromName, fromEmail string) *APIMailer {
	m := &APIMailer{
		from:    mailersend.From{Name: fromName, Email: fromEmail},
		timeout: apiSendTimeout,
	}
	if apiKey != "" && fromEmail != "" {
		m.client = mailersend.NewMailersend(apiKey)
	}
	return m
}

func (m *APIMailer) Enabled() bool { return m.client != nil }

// Send returns the MailerSend message id.
func (m *APIMailer) Send(toEmail, toName, subject, text, html string) (string, error) {
	if !m.Enabled() {
		return "", errAPIMailerDisabled
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	res, err := m.client.Email.Send(ctx, m.compose(toEmail, toName, subject, text, html))
	if err != nil {
		return "", fmt.Errorf("mailersend: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode/100 != 2 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return "", fmt.Errorf("mailersend: status %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}
	return res.Header.Get("X-Message-Id"), nil
}

func (m *APIMailer) compose(toEmail, toName, subject, text, html string) *mailersend.Message {
	msg := m.client.Email.NewMessage()
	msg.SetFrom(m.from)
	msg.SetRecipients([]mailersend.Recipient{{Name: toName, Email: toEmail}})
	msg.SetSubject(subject)
	if strings.TrimSpace(text) != "" {
		msg.SetText(text)
	}
	if strings.TrimSpace(html) != "" {
		msg.SetHTML(html)
	}
	return msg
}

func (m *APIMailer) SendOnboarding(toEmail, toName, resetURL string) error {
	subject, text, html := onboardingMessage(toName, resetURL)
	_, err := m.Send(toEmail, toName, subject, text, html)
	return err
}
