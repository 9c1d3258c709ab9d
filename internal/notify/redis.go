package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Priya8975/melon-site/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each inbox as three keys sharing one TTL:
//
//	notify:{owner}:items   hash of id -> JSON notification
//	notify:{owner}:order   sorted set of ids scored by creation time
//	notify:{owner}:seeded  marker set once the defaults are written
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to redisURL and verifies the connection.
func NewRedisStore(ctx context.Context, redisURL string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	return NewRedisStoreWithClient(client, ttl), nil
}

func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func itemsKey(owner string) string  { return "notify:" + owner + ":items" }
func orderKey(owner string) string  { return "notify:" + owner + ":order" }
func seededKey(owner string) string { return "notify:" + owner + ":seeded" }

func (s *RedisStore) Seed(ctx context.Context, owner string, ns []domain.Notification) (bool, error) {
	created, err := s.client.SetNX(ctx, seededKey(owner), 1, s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("marking inbox seeded: %w", err)
	}
	if !created {
		return false, nil
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, n := range ns {
			if err := s.write(ctx, pipe, owner, n); err != nil {
				return err
			}
		}
		s.expire(ctx, pipe, owner)
		return nil
	})
	if err != nil {
		// Clear the marker so the next access seeds again.
		if delErr := s.client.Del(ctx, seededKey(owner)).Err(); delErr != nil {
			return false, fmt.Errorf("seeding inbox: %w (clearing marker: %v)", err, delErr)
		}
		return false, fmt.Errorf("seeding inbox: %w", err)
	}
	return true, nil
}

func (s *RedisStore) Add(ctx context.Context, owner string, n domain.Notification) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if err := s.write(ctx, pipe, owner, n); err != nil {
			return err
		}
		s.expire(ctx, pipe, owner)
		return nil
	})
	if err != nil {
		return fmt.Errorf("adding notification: %w", err)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context, owner string) ([]domain.Notification, error) {
	ids, err := s.client.ZRevRange(ctx, orderKey(owner), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("listing notification ids: %w", err)
	}
	if len(ids) == 0 {
		return []domain.Notification{}, nil
	}

	vals, err := s.client.HMGet(ctx, itemsKey(owner), ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("loading notifications: %w", err)
	}

	out := make([]domain.Notification, 0, len(vals))
	for _, v := range vals {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var n domain.Notification
		if err := json.Unmarshal([]byte(raw), &n); err != nil {
			return nil, fmt.Errorf("decoding notification: %w", err)
		}
		out = append(out, n)
	}
	return out, nil
}

// MarkRead is a read-modify-write without WATCH. The only change ever made
// to a stored notification is setting Read, so concurrent writers converge.
func (s *RedisStore) MarkRead(ctx context.Context, owner, id string) error {
	raw, err := s.client.HGet(ctx, itemsKey(owner), id).Result()
	if errors.Is(err, redis.Nil) {
		return ErrNotificationNotFound
	}
	if err != nil {
		return fmt.Errorf("loading notification: %w", err)
	}

	var n domain.Notification
	if err := json.Unmarshal([]byte(raw), &n); err != nil {
		return fmt.Errorf("decoding notification: %w", err)
	}
	n.Read = true

	return s.Add(ctx, owner, n)
}

func (s *RedisStore) MarkAllRead(ctx context.Context, owner string) error {
	all, err := s.client.HGetAll(ctx, itemsKey(owner)).Result()
	if err != nil {
		return fmt.Errorf("loading notifications: %w", err)
	}
	if len(all) == 0 {
		return nil
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, raw := range all {
			var n domain.Notification
			if err := json.Unmarshal([]byte(raw), &n); err != nil {
				return fmt.Errorf("decoding notification: %w", err)
			}
			if n.Read {
				continue
			}
			n.Read = true
			if err := s.write(ctx, pipe, owner, n); err != nil {
				return err
			}
		}
		s.expire(ctx, pipe, owner)
		return nil
	})
	if err != nil {
		return fmt.Errorf("marking all read: %w", err)
	}
	return nil
}

func (s *RedisStore) write(ctx context.Context, pipe redis.Pipeliner, owner string, n domain.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encoding notification: %w", err)
	}
	pipe.HSet(ctx, itemsKey(owner), n.ID, data)
	pipe.ZAdd(ctx, orderKey(owner), redis.Z{
		Score:  float64(n.CreatedAt.UnixMilli()),
		Member: n.ID,
	})
	return nil
}

func (s *RedisStore) expire(ctx context.Context, pipe redis.Pipeliner, owner string) {
	if s.ttl <= 0 {
		return
	}
	pipe.Expire(ctx, itemsKey(owner), s.ttl)
	pipe.Expire(ctx, orderKey(owner), s.ttl)
	pipe.Expire(ctx, seededKey(owner), s.ttl)
}
