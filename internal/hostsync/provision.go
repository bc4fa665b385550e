package hostsync

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"

	"github.com/alexedwards/argon2id"
	"github.com/diagnosis/visitor-hosts/internal/domain"
	"github.com/diagnosis/visitor-hosts/pkg/events"
	"github.com/diagnosis/visitor-hosts/pkg/logger"
	"github.com/google/uuid"
)

const secretBytes = 24

// provisionUser creates the login for a freshly created host. A host whose
// email (or id) already has a user is left alone. Failures are logged and
// never undo the host.
func (e *Engine) provisionUser(ctx context.Context, host *domain.Host, c contact) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(c.Email))
	if email == "" {
		email = domain.SyntheticEmail(host.ID)
	}

	existing, err := e.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to look up user by email: %v", ErrProvisioning, err)
	}
	if existing != nil {
		logger.InfoContext(ctx, "user already exists for email, skipping provisioning",
			"host_id", host.ID,
			"user_id", existing.ID)
		return nil, nil
	}

	existing, err = e.users.FindByHostID(ctx, host.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to look up user by host: %v", ErrProvisioning, err)
	}
	if existing != nil {
		logger.InfoContext(ctx, "user already bound to host, skipping provisioning",
			"host_id", host.ID,
			"user_id", existing.ID)
		return nil, nil
	}

	secret, err := e.newSecret()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to generate secret: %v", ErrProvisioning, err)
	}
	hash, err := e.hashSecret(secret)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to hash secret: %v", ErrProvisioning, err)
	}

	hostID := host.ID
	req := &domain.CreateUserRequest{
		Email:  email,
		Name:   c.Name,
		Role:   domain.RoleHost,
		HostID: &hostID,
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvisioning, err)
	}

	user, err := e.users.Create(ctx, req, hash)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create user: %v", ErrProvisioning, err)
	}
	return user, nil
}

// onboard issues a reset token and sends the welcome message. It reports
// whether the notifier accepted the message; failures are only logged.
func (e *Engine) onboard(ctx context.Context, user *domain.User) bool {
	if domain.IsSyntheticEmail(user.Email) {
		return false
	}

	token := uuid.NewString()
	expiresAt := e.now().Add(e.opts.ResetTokenTTL)
	if err := e.resets.CreatePasswordReset(ctx, user.ID, token, expiresAt); err != nil {
		logger.WarnContext(ctx, "failed to issue reset token",
			"user_id", user.ID,
			"error", err)
		return false
	}

	link := resetURL(e.opts.AdminBaseURL, token)
	if err := e.notifier.SendOnboarding(user.Email, user.Name, link); err != nil {
		logger.WarnContext(ctx, "failed to send onboarding email",
			"user_id", user.ID,
			"error", err)
		return false
	}
	return true
}

func (e *Engine) publish(ctx context.Context, subject string, data interface{}) {
	if err := e.events.Publish(ctx, subject, data); err != nil {
		logger.WarnContext(ctx, "failed to publish event",
			"subject", subject,
			"error", err)
	}
}

func (e *Engine) userProvisioned(ctx context.Context, user *domain.User, hostID int64, notified bool) {
	e.publish(ctx, events.HostUserProvision, events.UserProvisionedEvent{
		UserID:    user.ID,
		HostID:    hostID,
		Email:     user.Email,
		Notified:  notified,
		CreatedAt: e.now(),
	})
}

func resetURL(adminBaseURL, token string) string {
	return strings.TrimRight(adminBaseURL, "/") + "/reset-password?token=" + url.QueryEscape(token)
}

func randomSecret() (string, error) {
	b := make([]byte, secretBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func hashSecret(secret string) (string, error) {
	return argon2id.CreateHash(secret, argon2id.DefaultParams)
}
