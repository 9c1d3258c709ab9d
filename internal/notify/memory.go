package notify

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Priya8975/melon-site/internal/domain"
)

type memoryInbox struct {
	items     []domain.Notification
	expiresAt time.Time
}

// MemoryStore keeps inboxes in process memory. An inbox that has not been
// written for ttl is treated as absent.
type MemoryStore struct {
	mu      sync.Mutex
	inboxes map[string]*memoryInbox
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		inboxes: make(map[string]*memoryInbox),
		ttl:     ttl,
		now:     time.Now,
	}
}

// get returns the live inbox for owner, dropping it if it expired.
// Callers hold s.mu.
func (s *MemoryStore) get(owner string) (*memoryInbox, bool) {
	box, ok := s.inboxes[owner]
	if !ok {
		return nil, false
	}
	if s.ttl > 0 && !s.now().Before(box.expiresAt) {
		delete(s.inboxes, owner)
		return nil, false
	}
	return box, true
}

func (s *MemoryStore) touch(box *memoryInbox) {
	box.expiresAt = s.now().Add(s.ttl)
}

func (s *MemoryStore) Seed(_ context.Context, owner string, ns []domain.Notification) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.get(owner); ok {
		return false, nil
	}

	box := &memoryInbox{items: append([]domain.Notification(nil), ns...)}
	sortNewestFirst(box.items)
	s.touch(box)
	s.inboxes[owner] = box
	return true, nil
}

func (s *MemoryStore) Add(_ context.Context, owner string, n domain.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	box, ok := s.get(owner)
	if !ok {
		box = &memoryInbox{}
		s.inboxes[owner] = box
	}
	box.items = append([]domain.Notification{n}, box.items...)
	sortNewestFirst(box.items)
	s.touch(box)
	return nil
}

func (s *MemoryStore) List(_ context.Context, owner string) ([]domain.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	box, ok := s.get(owner)
	if !ok {
		return []domain.Notification{}, nil
	}
	return append([]domain.Notification(nil), box.items...), nil
}

func (s *MemoryStore) MarkRead(_ context.Context, owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	box, ok := s.get(owner)
	if !ok {
		return ErrNotificationNotFound
	}
	for i := range box.items {
		if box.items[i].ID == id {
			box.items[i].Read = true
			s.touch(box)
			return nil
		}
	}
	return ErrNotificationNotFound
}

func (s *MemoryStore) MarkAllRead(_ context.Context, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	box, ok := s.get(owner)
	if !ok {
		return nil
	}
	for i := range box.items {
		box.items[i].Read = true
	}
	s.touch(box)
	return nil
}

func sortNewestFirst(ns []domain.Notification) {
	sort.SliceStable(ns, func(i, j int) bool {
		return ns[i].CreatedAt.After(ns[j].CreatedAt)
	})
}
