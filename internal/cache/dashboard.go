package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/andresuchdata/autopo-sim/internal/config"
	"github.com/andresuchdata/autopo-sim/internal/domain"
	"github.com/redis/go-redis/v9"
)

const dashboardKeyPrefix = "simulation:dashboard"

// DashboardCache stores rendered dashboards per session revision. A
// revision changes whenever the session state mutates, so stale entries are
// never served even before they are invalidated.
type DashboardCache interface {
	GetDashboard(ctx context.Context, sessionID string, revision uint64) (*domain.Dashboard, bool, error)
	SetDashboard(ctx context.Context, dashboard *domain.Dashboard) error
	InvalidateSession(ctx context.Context, sessionID string) error
}

type redisDashboardCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopDashboardCache struct{}

func NewDashboardCache(cfg config.CacheConfig) (DashboardCache, error) {
	if !cfg.Enabled {
		return &noopDashboardCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return NewRedisDashboardCache(client, ttl), nil
}

// NewRedisDashboardCache wraps an existing client.
func NewRedisDashboardCache(client *redis.Client, ttl time.Duration) DashboardCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &redisDashboardCache{
		client: client,
		ttl:    ttl,
	}
}

func NewNoopDashboardCache() DashboardCache {
	return &noopDashboardCache{}
}

func (c *redisDashboardCache) GetDashboard(ctx context.Context, sessionID string, revision uint64) (*domain.Dashboard, bool, error) {
	key := buildDashboardKey(sessionID, revision)

	payload, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var dashboard domain.Dashboard
	if err := json.Unmarshal(payload, &dashboard); err != nil {
		return nil, false, fmt.Errorf("decode dashboard cache: %w", err)
	}

	return &dashboard, true, nil
}

func (c *redisDashboardCache) SetDashboard(ctx context.Context, dashboard *domain.Dashboard) error {
	if dashboard == nil {
		return nil
	}

	key := buildDashboardKey(dashboard.SessionID, dashboard.Revision)
	payload, err := json.Marshal(dashboard)
	if err != nil {
		return fmt.Errorf("encode dashboard cache: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}

func (c *redisDashboardCache) InvalidateSession(ctx context.Context, sessionID string) error {
	return deleteKeysWithPrefix(ctx, c.client, sessionKeyPrefix(sessionID), scanBatchSize)
}

func (n *noopDashboardCache) GetDashboard(ctx context.Context, sessionID string, revision uint64) (*domain.Dashboard, bool, error) {
	return nil, false, nil
}

func (n *noopDashboardCache) SetDashboard(ctx context.Context, dashboard *domain.Dashboard) error {
	return nil
}

func (n *noopDashboardCache) InvalidateSession(ctx context.Context, sessionID string) error {
	return nil
}

func sessionKeyPrefix(sessionID string) string {
	if sessionID == "" {
		sessionID = "default"
	}
	return fmt.Sprintf("%s:%s:", dashboardKeyPrefix, sessionID)
}

func buildDashboardKey(sessionID string, revision uint64) string {
	return fmt.Sprintf("%s%d", sessionKeyPrefix(sessionID), revision)
}
