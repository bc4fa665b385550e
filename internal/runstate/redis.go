package runstate

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/diagnosis/visitor-hosts/internal/hostsync"
	"github.com/diagnosis/visitor-hosts/pkg/config"
	"github.com/redis/go-redis/v9"
)

const (
	lastKey    = "hostsync:summary:last"
	historyKey = "hostsync:summary:history"
)

// RedisStore keeps summaries in Redis with a TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore builds a store from a redis:// URL. Password and DB from cfg
// override the URL when set.
func NewRedisStore(cfg config.RedisConfig) (*RedisStore, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("redis url is required")
	}
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	if cfg.DB != 0 {
		opts.DB = cfg.DB
	}
	return &RedisStore{client: redis.NewClient(opts), ttl: cfg.SummaryTTL}, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) Save(ctx context.Context, sum *hostsync.Summary) error {
	data, err := json.Marshal(sum)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, lastKey, data, s.ttl)
	pipe.LPush(ctx, historyKey, data)
	pipe.LTrim(ctx, historyKey, 0, historySize-1)
	if s.ttl > 0 {
		pipe.Expire(ctx, historyKey, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save summary: %w", err)
	}
	return nil
}

func (s *RedisStore) Last(ctx context.Context) (*hostsync.Summary, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	data, err := s.client.Get(ctx, lastKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var sum hostsync.Summary
	if err := json.Unmarshal(data, &sum); err != nil {
		return nil, fmt.Errorf("failed to decode summary: %w", err)
	}
	return &sum, nil
}

func (s *RedisStore) History(ctx context.Context, n int) ([]hostsync.Summary, error) {
	if n <= 0 || n > historySize {
		n = historySize
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	items, err := s.client.LRange(ctx, historyKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]hostsync.Summary, 0, len(items))
	for _, item := range items {
		var sum hostsync.Summary
		if err := json.Unmarshal([]byte(item), &sum); err != nil {
			return nil, fmt.Errorf("failed to decode summary: %w", err)
		}
		out = append(out, sum)
	}
	return out, nil
}
