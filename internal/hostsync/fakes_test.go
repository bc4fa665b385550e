package hostsync

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/diagnosis/visitor-hosts/internal/domain"
	"github.com/diagnosis/visitor-hosts/internal/officernd"
)

// Directory

type fakeDirectory struct {
	mu           sync.Mutex
	locations    []officernd.Location
	companies    []officernd.Company
	members      map[string]officernd.Member
	details      map[string]officernd.Company
	locationsErr error
	companiesErr error

	memberCalls map[string]int
	detailCalls map[string]int
}

func newFakeDirectory(companies ...officernd.Company) *fakeDirectory {
	return &fakeDirectory{
		companies:   companies,
		members:     map[string]officernd.Member{},
		details:     map[string]officernd.Company{},
		memberCalls: map[string]int{},
		detailCalls: map[string]int{},
	}
}

func (d *fakeDirectory) Locations(ctx context.Context) ([]officernd.Location, error) {
	return d.locations, d.locationsErr
}

func (d *fakeDirectory) Companies(ctx context.Context) ([]officernd.Company, error) {
	if d.companiesErr != nil {
		return nil, d.companiesErr
	}
	return d.companies, nil
}

func (d *fakeDirectory) FirstMember(ctx context.Context, companyID string) (officernd.Member, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.memberCalls[companyID]++
	m, ok := d.members[companyID]
	return m, ok
}

func (d *fakeDirectory) CompanyDetail(ctx context.Context, companyID string) (officernd.Company, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.detailCalls[companyID]++
	c, ok := d.details[companyID]
	return c, ok
}

func (d *fakeDirectory) totalMemberCalls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, v := range d.memberCalls {
		n += v
	}
	return n
}

type fakeConnector struct {
	dir   Directory
	err   error
	calls atomic.Int32

	// entered is closed on the first Connect; release unblocks it.
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (c *fakeConnector) Connect(ctx context.Context) (Directory, error) {
	c.calls.Add(1)
	if c.entered != nil {
		c.once.Do(func() { close(c.entered) })
	}
	if c.release != nil {
		<-c.release
	}
	if c.err != nil {
		return nil, c.err
	}
	return c.dir, nil
}

// Hosts

type fakeHostStore struct {
	mu        sync.Mutex
	nextID    int64
	hosts     map[string]*domain.Host
	createErr map[string]error
	updateErr error
	findErr   error

	findCalls    int
	createCalls  int
	updateCalls  int
	phoneUpdates map[int64]string
}

func newFakeHostStore() *fakeHostStore {
	return &fakeHostStore{
		hosts:        map[string]*domain.Host{},
		createErr:    map[string]error{},
		phoneUpdates: map[int64]string{},
	}
}

func (s *fakeHostStore) seed(externalID, phone string) *domain.Host {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	ext := externalID
	h := &domain.Host{ID: s.nextID, ExternalID: &ext, Name: "seeded " + externalID, Status: domain.HostActive}
	if phone != "" {
		p := phone
		h.Phone = &p
	}
	s.hosts[externalID] = h
	return h
}

func (s *fakeHostStore) FindByExternalIDs(ctx context.Context, ids []string) ([]domain.Host, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.findCalls++
	if s.findErr != nil {
		return nil, s.findErr
	}
	var out []domain.Host
	for _, id := range ids {
		if h, ok := s.hosts[id]; ok {
			out = append(out, *h)
		}
	}
	return out, nil
}

func (s *fakeHostStore) Create(ctx context.Context, req *domain.CreateHostRequest) (*domain.Host, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createCalls++
	if err := s.createErr[req.ExternalID]; err != nil {
		return nil, err
	}
	s.nextID++
	ext := req.ExternalID
	h := &domain.Host{
		ID:         s.nextID,
		ExternalID: &ext,
		Name:       req.Name,
		Company:    req.Company,
		Email:      req.Email,
		Phone:      req.Phone,
		Location:   req.Location,
		Status:     req.Status,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	s.hosts[ext] = h
	return h, nil
}

func (s *fakeHostStore) UpdatePhone(ctx context.Context, id int64, phone *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateCalls++
	if s.updateErr != nil {
		return s.updateErr
	}
	for _, h := range s.hosts {
		if h.ID == id {
			p := *phone
			h.Phone = &p
			s.phoneUpdates[id] = p
			return nil
		}
	}
	return errors.New("host not found")
}

func (s *fakeHostStore) byExternalID(id string) *domain.Host {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hosts[id]
}

// Users

type fakeUserStore struct {
	mu        sync.Mutex
	nextID    int64
	users     []*domain.User
	hashes    map[int64]string
	createErr error
	created   int
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{hashes: map[int64]string{}}
}

func (s *fakeUserStore) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (s *fakeUserStore) FindByHostID(ctx context.Context, hostID int64) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.HostID != nil && *u.HostID == hostID {
			return u, nil
		}
	}
	return nil, nil
}

func (s *fakeUserStore) Create(ctx context.Context, req *domain.CreateUserRequest, passwordHash string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.nextID++
	s.created++
	u := &domain.User{ID: s.nextID, Email: req.Email, Name: req.Name, Role: req.Role, HostID: req.HostID}
	s.users = append(s.users, u)
	s.hashes[u.ID] = passwordHash
	return u, nil
}

func (s *fakeUserStore) byEmail(email string) *domain.User {
	u, _ := s.FindByEmail(context.Background(), email)
	return u
}

// Reset tokens, notifications, events

type fakeResetStore struct {
	mu       sync.Mutex
	err      error
	purgeErr error
	purges   int
	issued   []domain.PasswordReset
}

func (s *fakeResetStore) DeleteExpiredTokens(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purges++
	if s.purgeErr != nil {
		return 0, s.purgeErr
	}
	return 2, nil
}

func (s *fakeResetStore) CreatePasswordReset(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.issued = append(s.issued, domain.PasswordReset{UserID: userID, Token: token, ExpiresAt: expiresAt})
	return nil
}

type sentMail struct {
	To, Name, URL string
}

type fakeNotifier struct {
	mu   sync.Mutex
	err  error
	sent []sentMail
}

func (n *fakeNotifier) SendOnboarding(toEmail, toName, resetURL string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMail{To: toEmail, Name: toName, URL: resetURL})
	return n.err
}

type fakePublisher struct {
	mu       sync.Mutex
	subjects []string
	payloads []interface{}
}

func (p *fakePublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	p.payloads = append(p.payloads, data)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) count(subject string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, s := range p.subjects {
		if s == subject {
			n++
		}
	}
	return n
}

type fakeSummaryStore struct {
	mu    sync.Mutex
	saved []*Summary
}

func (s *fakeSummaryStore) Save(ctx context.Context, sum *Summary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, sum)
	return nil
}

// harness wires an Engine to fakes with a cheap secret hash.
type harness struct {
	dir       *fakeDirectory
	connector *fakeConnector
	hosts     *fakeHostStore
	users     *fakeUserStore
	resets    *fakeResetStore
	notifier  *fakeNotifier
	events    *fakePublisher
	engine    *Engine
}

var fixedNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newHarness(workers int, companies ...officernd.Company) *harness {
	h := &harness{
		dir:      newFakeDirectory(companies...),
		hosts:    newFakeHostStore(),
		users:    newFakeUserStore(),
		resets:   &fakeResetStore{},
		notifier: &fakeNotifier{},
		events:   &fakePublisher{},
	}
	h.connector = &fakeConnector{dir: h.dir}
	h.engine = NewEngine(Deps{
		Connector: h.connector,
		Hosts:     h.hosts,
		Users:     h.users,
		Resets:    h.resets,
		Notifier:  h.notifier,
		Events:    h.events,
	}, Options{
		AdminBaseURL: "https://admin.example.com/",
		Workers:      workers,
	})
	h.engine.now = func() time.Time { return fixedNow }
	h.engine.newSecret = func() (string, error) { return "s3cret", nil }
	h.engine.hashSecret = func(s string) (string, error) { return "hashed:" + s, nil }
	return h
}

func company(id, name string) officernd.Company {
	return officernd.Company{ID: id, Name: name}
}

func withPhone(c officernd.Company, phone string) officernd.Company {
	c.Properties = officernd.Properties{officernd.PhoneProperty: []byte(`"` + phone + `"`)}
	return c
}
