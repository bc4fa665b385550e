package hostsync

import (
	"context"
	"fmt"
	"strings"

	"github.com/diagnosis/visitor-hosts/internal/domain"
	"github.com/diagnosis/visitor-hosts/internal/officernd"
	"github.com/diagnosis/visitor-hosts/pkg/logger"
)

// companyView resolves a company's contact and phone against a Directory.
// The first member is fetched at most once and shared by both chains.
type companyView struct {
	dir     Directory
	company officernd.Company

	memberLoaded bool
	member       officernd.Member
	hasMember    bool
}

func newCompanyView(dir Directory, c officernd.Company) *companyView {
	return &companyView{dir: dir, company: c}
}

func (v *companyView) firstMember(ctx context.Context) (officernd.Member, bool) {
	if !v.memberLoaded {
		v.member, v.hasMember = v.dir.FirstMember(ctx, v.company.ID)
		v.memberLoaded = true
	}
	return v.member, v.hasMember
}

type contact struct {
	Name  string
	Email string
}

// resolveContact prefers the first member's name and email over the company's.
func (v *companyView) resolveContact(ctx context.Context) (contact, error) {
	c := contact{
		Name:  strings.TrimSpace(v.company.Name),
		Email: strings.TrimSpace(v.company.Email),
	}
	if m, ok := v.firstMember(ctx); ok {
		if name := strings.TrimSpace(m.Name); name != "" {
			c.Name = name
		}
		if email := strings.TrimSpace(m.Email); email != "" {
			c.Email = email
		}
	}
	if c.Name == "" {
		return c, fmt.Errorf("%w: blank name", ErrValidation)
	}
	if c.Email != "" && !domain.IsValidEmail(c.Email) {
		return c, fmt.Errorf("%w: invalid email %q", ErrValidation, c.Email)
	}
	return c, nil
}

// resolvePhone walks company property, first member, company detail; first
// non-empty raw value wins. The result is normalized.
func (v *companyView) resolvePhone(ctx context.Context) string {
	raw := v.company.Properties.String(officernd.PhoneProperty)
	if raw == "" {
		if m, ok := v.firstMember(ctx); ok {
			raw = m.PhoneNumber()
		}
	}
	if raw == "" {
		if d, ok := v.dir.CompanyDetail(ctx, v.company.ID); ok {
			raw = d.Properties.String(officernd.PhoneProperty)
		}
	}
	if raw == "" {
		return ""
	}

	phone, class := NormalizePhone(raw), ClassifyPhone(raw)
	if class == PhoneUnclassified {
		logger.WarnContext(ctx, "phone matches no dialing rule",
			"company_id", v.company.ID,
			"raw", raw,
			"digits", len(phone))
	}
	return phone
}

// resolveLocation looks the company's location id up in the locations map,
// falling back to the raw value as free text.
func (v *companyView) resolveLocation(locations map[string]string) *domain.Location {
	text := v.company.Location
	if name, ok := locations[text]; ok {
		text = name
	}
	return ResolveLocation(text)
}
