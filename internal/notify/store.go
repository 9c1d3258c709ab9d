package notify

import (
	"context"
	"errors"

	"github.com/Priya8975/melon-site/internal/domain"
)

// ErrNotificationNotFound is returned when an owner has no notification with the given id.
var ErrNotificationNotFound = errors.New("notification not found")

// Store keeps notifications per owner. Implementations must be safe for
// concurrent use.
type Store interface {
	// Seed stores ns for owner only if owner has no inbox yet and reports
	// whether it did.
	Seed(ctx context.Context, owner string, ns []domain.Notification) (bool, error)
	Add(ctx context.Context, owner string, n domain.Notification) error
	// List returns the owner's notifications newest first.
	List(ctx context.Context, owner string) ([]domain.Notification, error)
	MarkRead(ctx context.Context, owner, id string) error
	MarkAllRead(ctx context.Context, owner string) error
}

// UnreadCount counts notifications not yet read.
func UnreadCount(ns []domain.Notification) int {
	n := 0
	for _, item := range ns {
		if !item.Read {
			n++
		}
	}
	return n
}
