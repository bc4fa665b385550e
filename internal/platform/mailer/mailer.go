package mailer

import (
	"github.com/diagnosis/visitor-hosts/pkg/config"
	"github.com/diagnosis/visitor-hosts/pkg/logger"
)

type Service interface {
	Send(toEmail, toName, subject, text, html string) (string, error)
	SendOnboarding(toEmail, toName, resetURL string) error
}

// New picks the sender for cfg: dev mode logs messages, a MailerSend key uses
// the API, anything else goes over SMTP.
func New(cfg config.EmailConfig) Service {
	switch {
	case cfg.DevMode:
		logger.Info("Email dev mode enabled, onboarding emails will be logged")
		return NewDevMailer()
	case cfg.MailerSendKey != "":
		return NewAPIMailer(cfg.MailerSendKey, cfg.FromName, cfg.SMTPFrom)
	default:
		return NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPUseTLS)
	}
}
