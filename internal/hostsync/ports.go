package hostsync

import (
	"context"
	"time"

	"github.com/diagnosis/visitor-hosts/internal/domain"
	"github.com/diagnosis/visitor-hosts/internal/officernd"
)

// Directory is one authenticated session against the membership platform.
type Directory interface {
	Locations(ctx context.Context) ([]officernd.Location, error)
	Companies(ctx context.Context) ([]officernd.Company, error)
	FirstMember(ctx context.Context, companyID string) (officernd.Member, bool)
	CompanyDetail(ctx context.Context, companyID string) (officernd.Company, bool)
}

// Connector opens a Directory; called once per run.
type Connector interface {
	Connect(ctx context.Context) (Directory, error)
}

type platformConnector struct {
	client *officernd.Client
}

// NewPlatformConnector adapts the platform client to a Connector.
func NewPlatformConnector(client *officernd.Client) Connector {
	return platformConnector{client: client}
}

func (p platformConnector) Connect(ctx context.Context) (Directory, error) {
	s, err := p.client.Connect(ctx)
	if err != nil {
		return nil, err
	}
	return s, nil
}

type HostStore interface {
	FindByExternalIDs(ctx context.Context, externalIDs []string) ([]domain.Host, error)
	Create(ctx context.Context, req *domain.CreateHostRequest) (*domain.Host, error)
	UpdatePhone(ctx context.Context, id int64, phone *string) error
}

// UserStore lookups return (nil, nil) when nothing matches.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByHostID(ctx context.Context, hostID int64) (*domain.User, error)
	Create(ctx context.Context, req *domain.CreateUserRequest, passwordHash string) (*domain.User, error)
}

type ResetTokenStore interface {
	CreatePasswordReset(ctx context.Context, userID int64, token string, expiresAt time.Time) error
	DeleteExpiredTokens(ctx context.Context) (int64, error)
}

// Notifier delivers the onboarding message for a new host login.
type Notifier interface {
	SendOnboarding(toEmail, toName, resetURL string) error
}

// SummaryStore keeps the outcome of finished runs.
type SummaryStore interface {
	Save(ctx context.Context, s *Summary) error
}
