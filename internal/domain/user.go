package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

type User struct {
	ID           int64     `json:"id"`
	Role         string    `json:"role"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	HostID       *int64    `json:"host_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type CreateUserRequest struct {
	Email  string
	Name   string
	Role   string
	HostID *int64
}

// Roles
const (
	RoleAdmin     = "ADMIN"
	RoleReception = "RECEPTION"
	RoleHost      = "HOST"
)

// PasswordReset is a single-use credential reset token.
type PasswordReset struct {
	UserID    int64
	Token     string
	ExpiresAt time.Time
}

const syntheticEmailDomain = "system.local"

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// SyntheticEmail is the placeholder login for a host without a usable mailbox.
func SyntheticEmail(hostID int64) string {
	return fmt.Sprintf("host_%d@%s", hostID, syntheticEmailDomain)
}

// IsSyntheticEmail reports whether email was produced by SyntheticEmail and so
// cannot receive mail.
func IsSyntheticEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	return strings.HasPrefix(email, "host_") && strings.HasSuffix(email, "@"+syntheticEmailDomain)
}

func (r *CreateUserRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Name = strings.TrimSpace(r.Name)
	if r.Role == "" {
		r.Role = RoleHost
	}
}

func (r *CreateUserRequest) Validate() error {
	if r.Email == "" {
		return fmt.Errorf("email is required")
	}
	if !IsSyntheticEmail(r.Email) && !IsValidEmail(r.Email) {
		return fmt.Errorf("invalid email format")
	}
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}
