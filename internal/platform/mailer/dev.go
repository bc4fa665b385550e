package mailer

import (
	"sync"

	"github.com/diagnosis/visitor-hosts/pkg/logger"
	"github.com/google/uuid"
)

// DevMailer logs messages instead of delivering them and keeps the last ones
// for inspection.
type DevMailer struct {
	mu   sync.Mutex
	sent []Message
}

type Message struct {
	ID      string
	To      string
	Name    string
	Subject string
	Text    string
}

func NewDevMailer() *DevMailer { return &DevMailer{} }

func (d *DevMailer) Send(toEmail, toName, subject, text, html string) (string, error) {
	msg := Message{ID: uuid.NewString(), To: toEmail, Name: toName, Subject: subject, Text: text}
	d.mu.Lock()
	d.sent = append(d.sent, msg)
	d.mu.Unlock()

	logger.Info("Dev email",
		"message_id", msg.ID,
		"to", toEmail,
		"subject", subject,
		"text", text)
	return msg.ID, nil
}

func (d *DevMailer) SendOnboarding(toEmail, toName, resetURL string) error {
	subject, text, html := onboardingMessage(toName, resetURL)
	_, err := d.Send(toEmail, toName, subject, text, html)
	return err
}

// Sent returns a copy of the logged messages.
func (d *DevMailer) Sent() []Message {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Message(nil), d.sent...)
}
