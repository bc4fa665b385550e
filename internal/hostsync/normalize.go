package hostsync

import (
	"strings"
	"unicode"

	"github.com/diagnosis/visitor-hosts/internal/domain"
)

// PhoneClass names the dialing rule NormalizePhone applied.
type PhoneClass string

const (
	PhoneEmpty         PhoneClass = "empty"
	PhoneLocal         PhoneClass = "local"     // primary market, country code added
	PhoneSecondary     PhoneClass = "secondary" // 0-prefixed secondary market number
	PhoneInternational PhoneClass = "international"
	PhoneUnclassified  PhoneClass = "unclassified"
)

const (
	primaryCountryCode   = "974"
	secondaryCountryCode = "2"
)

// NormalizePhone reduces a free-text phone value to digits with a country code
// and no leading '+'. Dual numbers ("a/b") keep only the first one.
func NormalizePhone(raw string) string {
	digits, class := classifyPhone(raw)
	switch class {
	case PhoneLocal:
		return primaryCountryCode + digits
	case PhoneSecondary:
		return secondaryCountryCode + digits
	}
	return digits
}

// ClassifyPhone reports which rule NormalizePhone would apply to raw.
func ClassifyPhone(raw string) PhoneClass {
	_, class := classifyPhone(raw)
	return class
}

func classifyPhone(raw string) (string, PhoneClass) {
	if i := strings.Index(raw, "/"); i >= 0 {
		raw = raw[:i]
	}
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '-', '(', ')':
			return -1
		}
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)
	cleaned = strings.TrimPrefix(cleaned, "+")

	switch {
	case cleaned == "":
		return "", PhoneEmpty
	case !allDigits(cleaned):
		return cleaned, PhoneUnclassified
	case len(cleaned) == 6 || len(cleaned) == 8:
		return cleaned, PhoneLocal
	case len(cleaned) == 11 && cleaned[0] == '0':
		return cleaned, PhoneSecondary
	case len(cleaned) >= 11:
		return cleaned, PhoneInternational
	}
	return cleaned, PhoneUnclassified
}

// PhoneOrNil converts the empty normalized form to nil for storage.
func PhoneOrNil(phone string) *string {
	if phone == "" {
		return nil
	}
	return &phone
}

// ResolveLocation maps free-text location names onto the known buildings.
// Unknown text is not an error and yields nil.
func ResolveLocation(text string) *domain.Location {
	t := strings.ToLower(text)
	var loc domain.Location
	switch {
	case t == "":
		return nil
	case strings.Contains(t, "barwa"):
		loc = domain.LocationBarwaTowers
	case strings.Contains(t, "element"), strings.Contains(t, "mariott"), strings.Contains(t, "marriott"):
		loc = domain.LocationElementMariott
	case strings.Contains(t, "marina"):
		loc = domain.LocationMarina50
	default:
		return nil
	}
	return &loc
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
