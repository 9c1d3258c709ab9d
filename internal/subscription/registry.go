package subscription

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sync"
	"time"

	"github.com/Priya8975/melon-site/internal/domain"
	"github.com/Priya8975/melon-site/internal/mailer"
	"github.com/google/uuid"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Registry owns every subscription record for the life of the process.
// All operations run under one mutex so that the duplicate check and the
// insert in Subscribe form a single critical section.
type Registry struct {
	mu      sync.Mutex
	records map[string]*domain.Subscription
	mailer  mailer.Mailer
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// WithMailer sets the mailer used for the welcome message.
func WithMailer(m mailer.Mailer) Option {
	return func(r *Registry) { r.mailer = m }
}

func NewRegistry(logger *slog.Logger, opts ...Option) *Registry {
	r := &Registry{
		records: make(map[string]*domain.Subscription),
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Subscribe validates the request and records a new active subscription.
func (r *Registry) Subscribe(ctx context.Context, name, email string, interests []string) (domain.Subscription, error) {
	if name == "" || email == "" || len(interests) == 0 {
		return domain.Subscription{}, ErrValidation
	}
	if !emailPattern.MatchString(email) {
		return domain.Subscription{}, fmt.Errorf("%w: %q", ErrFormat, email)
	}

	sub, err := r.insert(name, email, interests)
	if err != nil {
		return domain.Subscription{}, err
	}

	r.logger.InfoContext(ctx, "subscription created",
		"email", sub.Email,
		"interests", len(sub.Interests),
	)

	if r.mailer != nil {
		if err := r.mailer.Send(ctx, mailer.WelcomeMessage(sub.Name, sub.Email, sub.Interests)); err != nil {
			r.logger.WarnContext(ctx, "welcome email failed", "email", sub.Email, "error", err)
		}
	}

	return sub, nil
}

func (r *Registry) insert(name, email string, interests []string) (domain.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.records[email]; ok {
		return domain.Subscription{}, &ConflictError{Existing: clone(existing)}
	}

	rec := &domain.Subscription{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		Interests:    dedupe(interests),
		SubscribedAt: r.now().UTC(),
		Status:       domain.StatusActive,
	}
	r.records[email] = rec
	return clone(rec), nil
}

// Cancel marks the subscription for email as cancelled. Cancelling an
// already cancelled subscription succeeds and keeps the first cancellation time.
func (r *Registry) Cancel(ctx context.Context, email string) (domain.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[email]
	if !ok {
		return domain.Subscription{}, fmt.Errorf("%w: %q", ErrNotFound, email)
	}

	if rec.Status != domain.StatusCancelled {
		cancelledAt := r.now().UTC()
		rec.Status = domain.StatusCancelled
		rec.CancelledAt = &cancelledAt
		r.logger.InfoContext(ctx, "subscription cancelled", "email", email)
	}

	return clone(rec), nil
}

// Get returns a copy of the record for email.
func (r *Registry) Get(email string) (domain.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[email]
	if !ok {
		return domain.Subscription{}, fmt.Errorf("%w: %q", ErrNotFound, email)
	}
	return clone(rec), nil
}

// Stats counts records by status.
func (r *Registry) Stats() domain.SubscriptionStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := domain.SubscriptionStats{Total: len(r.records)}
	for _, rec := range r.records {
		if rec.IsActive() {
			stats.Active++
		}
	}
	stats.Cancelled = stats.Total - stats.Active
	return stats
}

func clone(rec *domain.Subscription) domain.Subscription {
	out := *rec
	out.Interests = append([]string(nil), rec.Interests...)
	if rec.CancelledAt != nil {
		t := *rec.CancelledAt
		out.CancelledAt = &t
	}
	return out
}

// dedupe drops repeated interests, keeping first-seen order.
func dedupe(interests []string) []string {
	seen := make(map[string]struct{}, len(interests))
	out := make([]string, 0, len(interests))
	for _, interest := range interests {
		if _, ok := seen[interest]; ok {
			continue
		}
		seen[interest] = struct{}{}
		out = append(out, interest)
	}
	return out
}
