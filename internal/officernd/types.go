package officernd

import (
	"encoding/json"
	"fmt"
	"strings"
)

// PhoneProperty is the custom company field holding the contact number.
const PhoneProperty = "Phone Number"

// Properties holds the free-form custom fields of a record. Values arrive as
// strings, numbers or nested objects depending on how the field was defined.
type Properties map[string]json.RawMessage

// String returns the property as text, or "" when absent or not scalar.
func (p Properties) String(key string) string {
	raw, ok := p[key]
	if !ok || len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

type Company struct {
	ID         string     `json:"_id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Location   string     `json:"location"`
	Status     string     `json:"status"`
	Properties Properties `json:"properties"`
}

type Member struct {
	ID         string     `json:"_id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Phone      string     `json:"phone"`
	Company    string     `json:"company"`
	Properties Properties `json:"properties"`
}

// PhoneNumber prefers the member's own phone field over its custom property.
func (m Member) PhoneNumber() string {
	if p := strings.TrimSpace(m.Phone); p != "" {
		return p
	}
	return m.Properties.String(PhoneProperty)
}

type Location struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

type envelope[T any] struct {
	Results    []T    `json:"results"`
	CursorNext string `json:"cursorNext"`
}

// StatusError is returned for any non-2xx response from the platform.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: status %d", e.Method, e.URL, e.StatusCode)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}
