package domain

import "time"

// Subscription statuses.
const (
	StatusActive    = "active"
	StatusCancelled = "cancelled"
)

// Subscription is one subscriber's stored state, keyed by email.
type Subscription struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Interests    []string   `json:"interests"`
	SubscribedAt time.Time  `json:"subscribed_at"`
	Status       string     `json:"status"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`
}

// IsActive reports whether the subscription has not been cancelled.
func (s Subscription) IsActive() bool {
	return s.Status == StatusActive
}

type SubscribeRequest struct {
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Interests []string `json:"interests"`
}

type CancelRequest struct {
	Email string `json:"email"`
}

// SubscribeResult is the data returned for a new subscription.
type SubscribeResult struct {
	Email        string    `json:"email"`
	SubscribedAt time.Time `json:"subscribed_at"`
	Interests    []string  `json:"interests"`
}

// ExistingSubscription is the data returned when an email is already registered.
type ExistingSubscription struct {
	Email        string    `json:"email"`
	SubscribedAt time.Time `json:"subscribed_at"`
}

type CancelResult struct {
	Email       string    `json:"email"`
	CancelledAt time.Time `json:"cancelled_at"`
}

// SubscriptionStats summarizes the registry. Cancelled is always Total - Active.
type SubscriptionStats struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Cancelled int `json:"cancelled"`
}
