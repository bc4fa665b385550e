package hostsync

import (
	"sync"
	"time"
)

// Summary is the outcome of one reconciliation pass.
type Summary struct {
	RunID         string      `json:"run_id"`
	StartedAt     time.Time   `json:"started_at"`
	FinishedAt    time.Time   `json:"finished_at"`
	Fetched       int         `json:"fetched"`
	Existing      int         `json:"existing"`
	Inserted      int         `json:"inserted"`
	UsersCreated  int         `json:"users_created"`
	Rejected      int         `json:"rejected"`
	PhonesUpdated int         `json:"phones_updated"`
	Rejections    []Rejection `json:"rejections,omitempty"`
	Err           string      `json:"error,omitempty"`
}

// Rejection records why a company was skipped in a run.
type Rejection struct {
	ExternalID string `json:"external_id"`
	Name       string `json:"name"`
	Reason     string `json:"reason"`
}

func (s *Summary) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// LogAttrs flattens the counters for the per-run summary log line.
func (s *Summary) LogAttrs() []any {
	return []any{
		"inserted", s.Inserted,
		"usersCreated", s.UsersCreated,
		"rejected", s.Rejected,
		"phonesUpdated", s.PhonesUpdated,
		"existing", s.Existing,
		"fetched", s.Fetched,
		"duration_ms", s.Duration().Milliseconds(),
	}
}

// tally guards a Summary while workers update it.
type tally struct {
	mu sync.Mutex
	s  *Summary
}

func (t *tally) inserted()     { t.mu.Lock(); t.s.Inserted++; t.mu.Unlock() }
func (t *tally) userCreated()  { t.mu.Lock(); t.s.UsersCreated++; t.mu.Unlock() }
func (t *tally) phoneUpdated() { t.mu.Lock(); t.s.PhonesUpdated++; t.mu.Unlock() }

func (t *tally) reject(externalID, name string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.s.Rejected++
	t.s.Rejections = append(t.s.Rejections, Rejection{ExternalID: externalID, Name: name, Reason: err.Error()})
}
