package notify

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Priya8975/melon-site/internal/domain"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStoreWithClient(client, ttl), mr
}

func storeBackends(t *testing.T) map[string]func(t *testing.T) Store {
	return map[string]func(t *testing.T) Store{
		"memory": func(t *testing.T) Store { return NewMemoryStore(time.Hour) },
		"redis": func(t *testing.T) Store {
			s, _ := setupRedisStore(t, time.Hour)
			return s
		},
	}
}

func note(id string, at time.Time, read bool) domain.Notification {
	return domain.Notification{ID: id, Kind: domain.KindInfo, Title: id, Message: id, CreatedAt: at, Read: read}
}

func TestStore_Behaviour(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for name, newStore := range storeBackends(t) {
		t.Run(name, func(t *testing.T) {
			t.Run("seed once", func(t *testing.T) {
				s := newStore(t)
				ctx := context.Background()

				created, err := s.Seed(ctx, "v1", []domain.Notification{note("a", base, false)})
				if err != nil || !created {
					t.Fatalf("first seed: created=%v err=%v", created, err)
				}
				created, err = s.Seed(ctx, "v1", []domain.Notification{note("b", base, false)})
				if err != nil || created {
					t.Fatalf("second seed: created=%v err=%v", created, err)
				}

				ns, _ := s.List(ctx, "v1")
				if len(ns) != 1 || ns[0].ID != "a" {
					t.Errorf("expected only the first seed, got %+v", ns)
				}
			})

			t.Run("list newest first", func(t *testing.T) {
				s := newStore(t)
				ctx := context.Background()

				s.Seed(ctx, "v1", []domain.Notification{
					note("old", base.Add(-time.Hour), false),
					note("mid", base.Add(-time.Minute), false),
				})
				if err := s.Add(ctx, "v1", note("new", base, false)); err != nil {
					t.Fatalf("add failed: %v", err)
				}

				ns, err := s.List(ctx, "v1")
				if err != nil {
					t.Fatalf("list failed: %v", err)
				}
				got := []string{}
				for _, n := range ns {
					got = append(got, n.ID)
				}
				want := []string{"new", "mid", "old"}
				if len(got) != len(want) {
					t.Fatalf("expected %v, got %v", want, got)
				}
				for i := range want {
					if got[i] != want[i] {
						t.Errorf("position %d: expected %s, got %s", i, want[i], got[i])
					}
				}
			})

			t.Run("owners are isolated", func(t *testing.T) {
				s := newStore(t)
				ctx := context.Background()

				s.Seed(ctx, "v1", []domain.Notification{note("a", base, false)})

				ns, err := s.List(ctx, "v2")
				if err != nil {
					t.Fatalf("list failed: %v", err)
				}
				if len(ns) != 0 {
					t.Errorf("expected empty inbox for v2, got %d", len(ns))
				}
				if err := s.MarkRead(ctx, "v2", "a"); !errors.Is(err, ErrNotificationNotFound) {
					t.Errorf("expected ErrNotificationNotFound across owners, got %v", err)
				}
			})

			t.Run("mark read", func(t *testing.T) {
				s := newStore(t)
				ctx := context.Background()

				s.Seed(ctx, "v1", []domain.Notification{note("a", base, false), note("b", base.Add(-time.Minute), false)})

				if err := s.MarkRead(ctx, "v1", "a"); err != nil {
					t.Fatalf("mark read failed: %v", err)
				}
				if err := s.MarkRead(ctx, "v1", "missing"); !errors.Is(err, ErrNotificationNotFound) {
					t.Errorf("expected ErrNotificationNotFound, got %v", err)
				}

				ns, _ := s.List(ctx, "v1")
				if UnreadCount(ns) != 1 {
					t.Errorf("expected 1 unread, got %d", UnreadCount(ns))
				}
			})

			t.Run("mark all read", func(t *testing.T) {
				s := newStore(t)
				ctx := context.Background()

				s.Seed(ctx, "v1", []domain.Notification{note("a", base, false), note("b", base.Add(-time.Minute), true)})

				if err := s.MarkAllRead(ctx, "v1"); err != nil {
					t.Fatalf("mark all read failed: %v", err)
				}
				ns, _ := s.List(ctx, "v1")
				if len(ns) != 2 {
					t.Fatalf("expected 2 notifications, got %d", len(ns))
				}
				if UnreadCount(ns) != 0 {
					t.Errorf("expected 0 unread, got %d", UnreadCount(ns))
				}
				if err := s.MarkAllRead(ctx, "nobody"); err != nil {
					t.Errorf("mark all read on empty inbox should succeed, got %v", err)
				}
			})
		})
	}
}

func TestMemoryStore_Expires(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	s.Seed(ctx, "v1", []domain.Notification{note("a", now, false)})

	now = now.Add(2 * time.Hour)

	ns, _ := s.List(ctx, "v1")
	if len(ns) != 0 {
		t.Errorf("expected expired inbox to be empty, got %d", len(ns))
	}
	created, _ := s.Seed(ctx, "v1", []domain.Notification{note("b", now, false)})
	if !created {
		t.Error("expected expired inbox to be seeded again")
	}
}

func TestRedisStore_SetsTTL(t *testing.T) {
	s, mr := setupRedisStore(t, time.Hour)
	ctx := context.Background()

	s.Seed(ctx, "v1", []domain.Notification{note("a", time.Now(), false)})

	for _, key := range []string{itemsKey("v1"), orderKey("v1"), seededKey("v1")} {
		if ttl := mr.TTL(key); ttl != time.Hour {
			t.Errorf("expected TTL 1h on %s, got %v", key, ttl)
		}
	}

	mr.FastForward(2 * time.Hour)

	ns, err := s.List(ctx, "v1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(ns) != 0 {
		t.Errorf("expected inbox to expire, got %d items", len(ns))
	}
}

var errPipelineDown = errors.New("pipeline unavailable")

// failingPipelineHook fails every pipelined batch while fail is set. Single
// commands pass through.
type failingPipelineHook struct {
	fail atomic.Bool
}

func (h *failingPipelineHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return next(ctx, network, addr)
	}
}

func (h *failingPipelineHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		return next(ctx, cmd)
	}
}

func (h *failingPipelineHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		if h.fail.Load() {
			return errPipelineDown
		}
		return next(ctx, cmds)
	}
}

func TestRedisStore_FailedSeedIsRetried(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	ctx := context.Background()

	hook := &failingPipelineHook{}
	client.AddHook(hook)
	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("ping failed: %v", err)
	}

	s := NewRedisStoreWithClient(client, time.Hour)
	defaults := []domain.Notification{note("a", time.Now(), false)}

	hook.fail.Store(true)
	if _, err := s.Seed(ctx, "v1", defaults); !errors.Is(err, errPipelineDown) {
		t.Fatalf("expected seed to fail with the pipeline error, got %v", err)
	}
	if mr.Exists(seededKey("v1")) {
		t.Error("seeded marker should be cleared after a failed seed")
	}

	hook.fail.Store(false)
	created, err := s.Seed(ctx, "v1", defaults)
	if err != nil || !created {
		t.Fatalf("retry should seed: created=%v err=%v", created, err)
	}
	ns, err := s.List(ctx, "v1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(ns) != 1 {
		t.Errorf("expected seeded inbox after retry, got %d notifications", len(ns))
	}
}

func TestNewRedisStore_BadURL(t *testing.T) {
	if _, err := NewRedisStore(context.Background(), "not a url", time.Hour); err == nil {
		t.Error("expected error for malformed redis URL")
	}
}

func TestNewRedisStore_Connects(t *testing.T) {
	mr := miniredis.RunT(t)

	s, err := NewRedisStore(context.Background(), "redis://"+mr.Addr(), time.Hour)
	if err != nil {
		t.Fatalf("expected connection, got %v", err)
	}
	defer s.Close()
}
