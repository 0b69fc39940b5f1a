package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"

	types "github.com/yungbote/idea2sns-backend/internal/domain"
	"github.com/yungbote/idea2sns-backend/internal/platform/logger"
)

func newTestCache(t *testing.T) (LimitsCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := NewLimitsCache(logger.Nop(), mr.Addr(), "", 0, time.Minute)
	if err != nil {
		t.Fatalf("NewLimitsCache: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestLimitsCacheRoundTrip(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	userID := uuid.NewString()

	if _, ok, err := c.Get(ctx, userID); err != nil || ok {
		t.Fatalf("expected miss: ok=%v err=%v", ok, err)
	}
	three := 3
	want := types.Entitlements{Plan: types.PlanPro, Limits: types.PlanLimits{MaxPlatformsPerRequest: &three, BlogToSNS: true}}
	if err := c.Set(ctx, userID, want); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if ttl := mr.TTL(key(userID)); ttl != time.Minute {
		t.Fatalf("ttl=%v", ttl)
	}
	got, ok, err := c.Get(ctx, userID)
	if err != nil || !ok || got.Plan != types.PlanPro || got.Limits.MaxPlatformsPerRequest == nil || *got.Limits.MaxPlatformsPerRequest != 3 || !got.Limits.BlogToSNS || got.Limits.DailyGenerations != nil {
		t.Fatalf("Get: got=%+v ok=%v err=%v", got, ok, err)
	}
	if err := c.Invalidate(ctx, userID); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, ok, _ := c.Get(ctx, userID); ok {
		t.Fatalf("expected miss after Invalidate")
	}
}

func TestLimitsCacheExpires(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	userID := uuid.NewString()

	if err := c.Set(ctx, userID, types.Entitlements{Plan: types.PlanFree}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	mr.FastForward(time.Minute + time.Second)
	if _, ok, err := c.Get(ctx, userID); err != nil || ok {
		t.Fatalf("expected miss after ttl: ok=%v err=%v", ok, err)
	}
}

func TestLimitsCacheDropsUndecodableEntry(t *testing.T) {
	c, mr := newTestCache(t)
	userID := uuid.NewString()
	if err := mr.Set(key(userID), "not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, ok, err := c.Get(context.Background(), userID); err != nil || ok {
		t.Fatalf("expected miss: ok=%v err=%v", ok, err)
	}
	if mr.Exists(key(userID)) {
		t.Fatalf("bad entry not deleted")
	}
}

func TestLimitsCacheSurfacesServerErrors(t *testing.T) {
	c, mr := newTestCache(t)
	mr.SetError("READONLY")
	if err := c.Set(context.Background(), uuid.NewString(), types.Entitlements{Plan: types.PlanFree}); err == nil {
		t.Fatalf("expected error from failing server")
	}
}

func TestNewLimitsCacheRequiresAddr(t *testing.T) {
	if _, err := NewLimitsCache(logger.Nop(), " ", "", 0, 0); err == nil {
		t.Fatalf("expected error for empty addr")
	}
}
