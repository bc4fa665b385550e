package mailer

import (
	"strings"
	"testing"

	"github.com/diagnosis/visitor-hosts/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPicksSender(t *testing.T) {
	assert.IsType(t, &DevMailer{}, New(config.EmailConfig{DevMode: true, MailerSendKey: "key"}))
	assert.IsType(t, &APIMailer{}, New(config.EmailConfig{MailerSendKey: "key", SMTPFrom: "desk@example.com"}))
	assert.IsType(t, &SMTPMailer{}, New(config.EmailConfig{SMTPHost: "localhost", SMTPPort: 1025}))
}

func TestDevMailerRecordsOnboarding(t *testing.T) {
	m := NewDevMailer()

	require.NoError(t, m.SendOnboarding("dana@acme.com", "Dana", "https://admin.example.com/reset-password?token=t1"))

	sent := m.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "dana@acme.com", sent[0].To)
	assert.Equal(t, onboardingSubject, sent[0].Subject)
	assert.Contains(t, sent[0].Text, "Hello Dana")
	assert.Contains(t, sent[0].Text, "https://admin.example.com/reset-password?token=t1")
	assert.NotEmpty(t, sent[0].ID)
}

func TestOnboardingMessageEscapesHTML(t *testing.T) {
	_, text, html := onboardingMessage("", "https://x.test/reset-password?token=a&b")

	assert.True(t, strings.HasPrefix(text, "Hello,"))
	assert.Contains(t, html, `href="https://x.test/reset-password?token=a&amp;b"`)
}

func TestDisabledMailerSendFails(t *testing.T) {
	m := NewAPIMailer("", "Visitor Desk", "desk@example.com")

	assert.False(t, m.Enabled())
	assert.ErrorIs(t, m.SendOnboarding("dana@acme.com", "Dana", "https://x.test"), errAPIMailerDisabled)
	assert.True(t, NewAPIMailer("key", "Visitor Desk", "desk@example.com").Enabled())
}

func TestSMTPBuildMessage(t *testing.T) {
	s := NewSMTPMailer(" localhost ", 1025, "desk@example.com", "", "", false)

	msg := string(s.buildMessage("dana@acme.com", "Dana Reyes", "Welcome", "plain body", "<p>html body</p>"))

	assert.Equal(t, "localhost", s.Host)
	assert.Contains(t, msg, "From: desk@example.com\r\n")
	assert.Contains(t, msg, "To: Dana Reyes <dana@acme.com>\r\n")
	assert.Contains(t, msg, "Subject: Welcome\r\n")
	assert.Contains(t, msg, "plain body")
	assert.Contains(t, msg, "<p>html body</p>")
	assert.True(t, strings.HasSuffix(msg, "--hostsync-alt-boundary--\r\n"))
}

func TestSMTPRejectsEmptyRecipient(t *testing.T) {
	s := NewSMTPMailer("localhost", 1025, "desk@example.com", "", "", false)

	_, err := s.Send("  ", "", "s", "t", "h")
	assert.Error(t, err)
}
