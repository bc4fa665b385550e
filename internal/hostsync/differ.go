package hostsync

import (
	"context"
	"fmt"
	"strings"

	"github.com/diagnosis/visitor-hosts/internal/domain"
	"github.com/diagnosis/visitor-hosts/internal/officernd"
)

// matched pairs a listed company with the host already stored for it.
type matched struct {
	Company officernd.Company
	Host    domain.Host
}

// Partition splits companies into those already stored (phone refresh only)
// and fresh ones that need creating, using a single batch lookup. Companies
// without an id cannot be correlated and are returned as unusable; repeated
// ids keep their first occurrence.
func Partition(ctx context.Context, store HostStore, companies []officernd.Company) (existing []matched, fresh []officernd.Company, unusable []officernd.Company, err error) {
	seen := make(map[string]struct{}, len(companies))
	ids := make([]string, 0, len(companies))
	unique := make([]officernd.Company, 0, len(companies))
	for _, c := range companies {
		c.ID = strings.TrimSpace(c.ID)
		if c.ID == "" {
			unusable = append(unusable, c)
			continue
		}
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		ids = append(ids, c.ID)
		unique = append(unique, c)
	}
	if len(ids) == 0 {
		return nil, nil, unusable, nil
	}

	hosts, err := store.FindByExternalIDs(ctx, ids)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: failed to look up existing hosts: %v", ErrPersistence, err)
	}
	byID := make(map[string]domain.Host, len(hosts))
	for _, h := range hosts {
		if h.ExternalID != nil {
			byID[*h.ExternalID] = h
		}
	}

	for _, c := range unique {
		if h, ok := byID[c.ID]; ok {
			existing = append(existing, matched{Company: c, Host: h})
			continue
		}
		fresh = append(fresh, c)
	}
	return existing, fresh, unusable, nil
}
