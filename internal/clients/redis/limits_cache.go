package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	types "github.com/yungbote/idea2sns-backend/internal/domain"
	"github.com/yungbote/idea2sns-backend/internal/platform/logger"
)

const keyPrefix = "idea2sns:limits:"

// LimitsCache holds resolved entitlements per user for a short TTL.
type LimitsCache interface {
	Get(ctx context.Context, userID string) (types.Entitlements, bool, error)
	Set(ctx context.Context, userID string, ent types.Entitlements) error
	Invalidate(ctx context.Context, userID string) error
	Client() *goredis.Client
	Close() error
}

type limitsCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

func NewLimitsCache(log *logger.Logger, addr, password string, db int, ttl time.Duration) (LimitsCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	if ttl <= 0 {
		ttl = 60 * time.Second
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &limitsCache{
		log: log.With("service", "RedisLimitsCache"),
		rdb: rdb,
		ttl: ttl,
	}, nil
}

func key(userID string) string { return keyPrefix + userID }

func (c *limitsCache) Get(ctx context.Context, userID string) (types.Entitlements, bool, error) {
	raw, err := c.rdb.Get(ctx, key(userID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return types.Entitlements{}, false, nil
	}
	if err != nil {
		return types.Entitlements{}, false, err
	}
	var ent types.Entitlements
	if err := json.Unmarshal(raw, &ent); err != nil {
		c.log.Warn("dropping undecodable cached limits", "user_id", userID, "error", err)
		_ = c.rdb.Del(ctx, key(userID)).Err()
		return types.Entitlements{}, false, nil
	}
	return ent, true, nil
}

func (c *limitsCache) Set(ctx context.Context, userID string, ent types.Entitlements) error {
	raw, err := json.Marshal(ent)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key(userID), raw, c.ttl).Err()
}

func (c *limitsCache) Invalidate(ctx context.Context, userID string) error {
	return c.rdb.Del(ctx, key(userID)).Err()
}

func (c *limitsCache) Client() *goredis.Client { return c.rdb }

func (c *limitsCache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
