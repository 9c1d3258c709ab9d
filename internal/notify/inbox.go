package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Priya8975/melon-site/internal/domain"
	"github.com/google/uuid"
)

// ErrInvalidNotification is returned by Add when title or message is empty.
var ErrInvalidNotification = errors.New("notification title and message are required")

// Publisher receives the new badge after every change to an owner's inbox.
type Publisher interface {
	PublishBadge(owner string, badge domain.Badge)
}

// Inbox is the notification service used by the API. It seeds each owner's
// inbox with the site defaults on first access and publishes badge changes.
type Inbox struct {
	store        Store
	publisher    Publisher
	logger       *slog.Logger
	now          func() time.Time
	welcomeDelay time.Duration

	mu      sync.Mutex
	pending map[string]*time.Timer
	closed  bool
}

type InboxOption func(*Inbox)

func WithPublisher(p Publisher) InboxOption {
	return func(i *Inbox) { i.publisher = p }
}

func WithInboxClock(now func() time.Time) InboxOption {
	return func(i *Inbox) { i.now = now }
}

// WithWelcomeDelay schedules a welcome notification d after an inbox is
// first created. Zero disables it.
func WithWelcomeDelay(d time.Duration) InboxOption {
	return func(i *Inbox) { i.welcomeDelay = d }
}

func NewInbox(store Store, logger *slog.Logger, opts ...InboxOption) *Inbox {
	i := &Inbox{
		store:   store,
		logger:  logger,
		now:     time.Now,
		pending: make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Defaults returns the four notifications every new inbox starts with.
func Defaults(now time.Time) []domain.Notification {
	seed := func(kind, name string, age time.Duration, read bool) domain.Notification {
		return domain.Notification{
			ID:         uuid.NewString(),
			Kind:       kind,
			TitleKey:   "notification-" + name + "-title",
			MessageKey: "notification-" + name + "-message",
			CreatedAt:  now.Add(-age).UTC(),
			Read:       read,
		}
	}
	return []domain.Notification{
		seed(domain.KindMusic, "music", 2*time.Minute, false),
		seed(domain.KindStar, "achievement", time.Hour, false),
		seed(domain.KindGift, "offer", 3*time.Hour, false),
		seed(domain.KindInfo, "update", 24*time.Hour, true),
	}
}

func (i *Inbox) ensure(ctx context.Context, owner string) error {
	created, err := i.store.Seed(ctx, owner, Defaults(i.now()))
	if err != nil {
		return fmt.Errorf("seeding inbox: %w", err)
	}
	if created {
		i.logger.DebugContext(ctx, "inbox seeded", "owner", owner)
		i.scheduleWelcome(owner)
	}
	return nil
}

// List returns owner's notifications newest first.
func (i *Inbox) List(ctx context.Context, owner string) ([]domain.Notification, error) {
	if err := i.ensure(ctx, owner); err != nil {
		return nil, err
	}
	ns, err := i.store.List(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	return ns, nil
}

// Badge returns the unread counter for owner.
func (i *Inbox) Badge(ctx context.Context, owner string) (domain.Badge, error) {
	ns, err := i.List(ctx, owner)
	if err != nil {
		return domain.Badge{}, err
	}
	return domain.NewBadge(UnreadCount(ns)), nil
}

// Add prepends an unread notification built from literal text.
func (i *Inbox) Add(ctx context.Context, owner string, req domain.CreateNotificationRequest) (domain.Notification, error) {
	title := strings.TrimSpace(req.Title)
	msg := strings.TrimSpace(req.Message)
	if title == "" || msg == "" {
		return domain.Notification{}, ErrInvalidNotification
	}

	n := domain.Notification{
		ID:        uuid.NewString(),
		Kind:      domain.NormalizeKind(req.Kind),
		Title:     title,
		Message:   msg,
		CreatedAt: i.now().UTC(),
	}
	if err := i.add(ctx, owner, n); err != nil {
		return domain.Notification{}, err
	}
	return n, nil
}

func (i *Inbox) add(ctx context.Context, owner string, n domain.Notification) error {
	if err := i.ensure(ctx, owner); err != nil {
		return err
	}
	if err := i.store.Add(ctx, owner, n); err != nil {
		return fmt.Errorf("adding notification: %w", err)
	}
	i.publish(ctx, owner)
	return nil
}

// MarkRead marks one notification read. Unknown ids return ErrNotificationNotFound.
func (i *Inbox) MarkRead(ctx context.Context, owner, id string) error {
	if err := i.ensure(ctx, owner); err != nil {
		return err
	}
	if err := i.store.MarkRead(ctx, owner, id); err != nil {
		if errors.Is(err, ErrNotificationNotFound) {
			return err
		}
		return fmt.Errorf("marking notification read: %w", err)
	}
	i.publish(ctx, owner)
	return nil
}

func (i *Inbox) MarkAllRead(ctx context.Context, owner string) error {
	if err := i.ensure(ctx, owner); err != nil {
		return err
	}
	if err := i.store.MarkAllRead(ctx, owner); err != nil {
		return fmt.Errorf("marking all read: %w", err)
	}
	i.publish(ctx, owner)
	return nil
}

func (i *Inbox) publish(ctx context.Context, owner string) {
	if i.publisher == nil {
		return
	}
	ns, err := i.store.List(ctx, owner)
	if err != nil {
		i.logger.WarnContext(ctx, "badge publish skipped", "owner", owner, "error", err)
		return
	}
	i.publisher.PublishBadge(owner, domain.NewBadge(UnreadCount(ns)))
}

func (i *Inbox) scheduleWelcome(owner string) {
	if i.welcomeDelay <= 0 {
		return
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	if i.closed {
		return
	}
	if _, ok := i.pending[owner]; ok {
		return
	}
	i.pending[owner] = time.AfterFunc(i.welcomeDelay, func() { i.deliverWelcome(owner) })
}

// deliverWelcome runs when a welcome timer fires. It does nothing once the
// inbox is closed, since the store may already be gone.
func (i *Inbox) deliverWelcome(owner string) {
	i.mu.Lock()
	delete(i.pending, owner)
	closed := i.closed
	i.mu.Unlock()
	if closed {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	n := domain.Notification{
		ID:         uuid.NewString(),
		Kind:       domain.KindInfo,
		TitleKey:   "notification-welcome-title",
		MessageKey: "notification-welcome-message",
		CreatedAt:  i.now().UTC(),
	}
	if err := i.add(ctx, owner, n); err != nil {
		i.logger.WarnContext(ctx, "welcome notification failed", "owner", owner, "error", err)
	}
}

// Close cancels welcome notifications that have not fired yet.
func (i *Inbox) Close() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.closed = true
	for owner, t := range i.pending {
		t.Stop()
		delete(i.pending, owner)
	}
}
