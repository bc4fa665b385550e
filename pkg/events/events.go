package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/diagnosis/visitor-hosts/pkg/logger"
	"github.com/nats-io/nats.go"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type NATSEventBus struct {
	conn *nats.Conn
}

func NewNATSEventBus(url string) (*NATSEventBus, error) {
	conn, err := nats.Connect(url, nats.Name("hostsync"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSEventBus{conn: conn}, nil
}

func (n *NATSEventBus) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.DebugContext(ctx, "Publishing event", "subject", subject, "data", string(payload))

	return n.conn.Publish(subject, payload)
}

func (n *NATSEventBus) Close() error {
	if err := n.conn.Drain(); err != nil {
		n.conn.Close()
		return err
	}
	return nil
}

// NopPublisher drops every event. Used when NATS is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, interface{}) error { return nil }
func (NopPublisher) Close() error                                       { return nil }

// Event subjects
const (
	HostCreated       = "host.created"
	HostUserProvision = "host.user.provisioned"
	SyncCompleted     = "hostsync.completed"
)

// Event payloads
type HostCreatedEvent struct {
	HostID     int64     `json:"host_id"`
	ExternalID string    `json:"external_id"`
	Name       string    `json:"name"`
	Location   string    `json:"location,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type UserProvisionedEvent struct {
	UserID    int64     `json:"user_id"`
	HostID    int64     `json:"host_id"`
	Email     string    `json:"email"`
	Notified  bool      `json:"notified"`
	CreatedAt time.Time `json:"created_at"`
}

type SyncCompletedEvent struct {
	RunID         string    `json:"run_id"`
	Fetched       int       `json:"fetched"`
	Inserted      int       `json:"inserted"`
	UsersCreated  int       `json:"users_created"`
	Rejected      int       `json:"rejected"`
	PhonesUpdated int       `json:"phones_updated"`
	Error         string    `json:"error,omitempty"`
	FinishedAt    time.Time `json:"finished_at"`
}
