package domain

import (
	"fmt"
	"strings"
	"time"
)

type HostStatus string

const (
	HostActive   HostStatus = "active"
	HostInactive HostStatus = "inactive"
)

// Location is one of the buildings the visitor desk serves.
type Location string

const (
	LocationBarwaTowers    Location = "BARWA_TOWERS"
	LocationElementMariott Location = "ELEMENT_MARIOTT"
	LocationMarina50       Location = "MARINA_50"
)

func (l Location) Valid() bool {
	switch l {
	case LocationBarwaTowers, LocationElementMariott, LocationMarina50:
		return true
	}
	return false
}

// Host is a tenant company. ExternalID is nil for hosts created by hand in the
// admin console; the reconciliation job never touches those.
type Host struct {
	ID         int64      `json:"id"`
	ExternalID *string    `json:"external_id,omitempty"`
	Name       string     `json:"name"`
	Company    string     `json:"company"`
	Email      *string    `json:"email,omitempty"`
	Phone      *string    `json:"phone,omitempty"`
	Location   *Location  `json:"location,omitempty"`
	Status     HostStatus `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// PhoneValue returns the stored phone or "" when unset.
func (h *Host) PhoneValue() string {
	if h == nil || h.Phone == nil {
		return ""
	}
	return *h.Phone
}

type CreateHostRequest struct {
	ExternalID string
	Name       string
	Company    string
	Email      *string
	Phone      *string
	Location   *Location
	Status     HostStatus
}

func (r *CreateHostRequest) Normalize() {
	r.ExternalID = strings.TrimSpace(r.ExternalID)
	r.Name = strings.TrimSpace(r.Name)
	r.Company = strings.TrimSpace(r.Company)
	if r.Company == "" {
		r.Company = r.Name
	}
	if r.Email != nil {
		e := strings.ToLower(strings.TrimSpace(*r.Email))
		if e == "" {
			r.Email = nil
		} else {
			r.Email = &e
		}
	}
	if r.Status == "" {
		r.Status = HostActive
	}
}

func (r *CreateHostRequest) Validate() error {
	if r.ExternalID == "" {
		return fmt.Errorf("external id is required")
	}
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	if r.Email != nil && !IsValidEmail(*r.Email) {
		return fmt.Errorf("invalid email format")
	}
	if r.Location != nil && !r.Location.Valid() {
		return fmt.Errorf("invalid location")
	}
	return nil
}
