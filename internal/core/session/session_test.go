package session

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"sandwich-bot/internal/core/order"
	"sandwich-bot/internal/infrastructure/config"

	"github.com/go-redis/redis/v8"
)

func newTestSession(userID string) *Session {
	engine := order.MustNewEngine(order.DefaultMenu())
	o := engine.BuildOrder("แฮม ไส้กรอก 2")
	return New(userID, "tester", o, time.Now())
}

func newMemoryStore(t *testing.T, maxSize int) (*MemoryStore, *time.Time) {
	t.Helper()
	m := NewMemoryStore(config.SessionConfig{TTL: time.Hour, MaxSize: maxSize})
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	t.Cleanup(func() { m.Close() })
	return m, &now
}

func TestNew(t *testing.T) {
	s := newTestSession("U1")
	if s.ReceiptID == "" {
		t.Error("expected receipt id")
	}
	if s.Total != 78 {
		t.Errorf("expected total 78, got %d", s.Total)
	}
	if len(s.Summary) != 1 || s.Summary[0] != "ออเดอร์ 1 : แฮม ไส้กรอก 2" {
		t.Errorf("unexpected summary: %v", s.Summary)
	}
}

func TestMemoryStore_SaveLoadDelete(t *testing.T) {
	ctx := context.Background()
	m, _ := newMemoryStore(t, 10)

	if _, err := m.Load(ctx, "U1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	s := newTestSession("U1")
	if err := m.Save(ctx, s); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := m.Load(ctx, "U1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.ReceiptID != s.ReceiptID || got.Total != s.Total {
		t.Errorf("unexpected session: %+v", got)
	}

	if err := m.Delete(ctx, "U1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := m.Load(ctx, "U1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	// 刪除不存在的項目
	if err := m.Delete(ctx, "U1"); err != nil {
		t.Errorf("expected nil deleting missing session, got %v", err)
	}
}

func TestMemoryStore_SaveOverwrites(t *testing.T) {
	ctx := context.Background()
	m, _ := newMemoryStore(t, 1)

	first := newTestSession("U1")
	second := newTestSession("U1")
	if err := m.Save(ctx, first); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := m.Save(ctx, second); err != nil {
		t.Fatalf("Save overwrite at capacity: %v", err)
	}

	got, err := m.Load(ctx, "U1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.ReceiptID != second.ReceiptID {
		t.Errorf("expected latest receipt %s, got %s", second.ReceiptID, got.ReceiptID)
	}
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	m, now := newMemoryStore(t, 10)

	if err := m.Save(ctx, newTestSession("U1")); err != nil {
		t.Fatalf("Save: %v", err)
	}

	*now = now.Add(2 * time.Hour)
	if _, err := m.Load(ctx, "U1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected expired session to be gone, got %v", err)
	}
	if got := m.Stats()["evictions"].(int64); got != 1 {
		t.Errorf("expected 1 eviction, got %d", got)
	}
}

func TestMemoryStore_EvictsLeastUsed(t *testing.T) {
	ctx := context.Background()
	m, _ := newMemoryStore(t, 2)

	for _, id := range []string{"U1", "U2"} {
		if err := m.Save(ctx, newTestSession(id)); err != nil {
			t.Fatalf("Save %s: %v", id, err)
		}
	}
	// U1 被讀取過，U2 應被淘汰
	if _, err := m.Load(ctx, "U1"); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := m.Save(ctx, newTestSession("U3")); err != nil {
		t.Fatalf("Save U3: %v", err)
	}

	if _, err := m.Load(ctx, "U2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected U2 evicted, got %v", err)
	}
	for _, id := range []string{"U1", "U3"} {
		if _, err := m.Load(ctx, id); err != nil {
			t.Errorf("expected %s present, got %v", id, err)
		}
	}
}

func TestMemoryStore_Stats(t *testing.T) {
	ctx := context.Background()
	m, _ := newMemoryStore(t, 10)

	_ = m.Save(ctx, newTestSession("U1"))
	_, _ = m.Load(ctx, "U1")
	_, _ = m.Load(ctx, "missing")

	stats := m.Stats()
	if stats["size"].(int) != 1 || stats["hits"].(int64) != 1 || stats["misses"].(int64) != 1 {
		t.Errorf("unexpected stats: %v", stats)
	}
	if stats["hit_ratio"].(float64) != 0.5 {
		t.Errorf("expected hit ratio 0.5, got %v", stats["hit_ratio"])
	}
}

func TestMemoryStore_CloseIsIdempotent(t *testing.T) {
	m := NewMemoryStore(config.SessionConfig{TTL: time.Hour, MaxSize: 10, CleanupInterval: time.Millisecond})
	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func newRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("Redis not available: %v", err)
	}

	s := NewRedisStoreWithClient(client, time.Minute)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRedisStore_SaveLoadDelete(t *testing.T) {
	ctx := context.Background()
	s := newRedisStore(t)

	userID := "test-user-" + time.Now().Format("150405.000000")
	sess := newTestSession(userID)

	if err := s.Save(ctx, sess); err != nil {
		t.Fatalf("Save: %v", err)
	}
	t.Cleanup(func() { s.Delete(context.Background(), userID) })

	got, err := s.Load(ctx, userID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.ReceiptID != sess.ReceiptID || got.Total != 78 {
		t.Errorf("unexpected session: %+v", got)
	}
	if got.Order == nil || len(got.Order.Items) != 1 {
		t.Errorf("expected order round trip, got %+v", got.Order)
	}

	ttl, err := s.client.TTL(ctx, keyPrefix+userID).Result()
	if err != nil || ttl <= 0 || ttl > time.Minute {
		t.Errorf("unexpected ttl %v (err %v)", ttl, err)
	}

	if err := s.Delete(ctx, userID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Load(ctx, userID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
