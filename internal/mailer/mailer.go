package mailer

import (
	"context"
	"log/slog"
)

// Message is a single outgoing email.
type Message struct {
	To      string
	Name    string
	Subject string
	Body    string
}

// Mailer sends email. The registry only needs the welcome message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer records messages in the log instead of delivering them.
type LogMailer struct {
	from   string
	logger *slog.Logger
}

func NewLogMailer(from string, logger *slog.Logger) *LogMailer {
	return &LogMailer{from: from, logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	m.logger.InfoContext(ctx, "welcome email queued (not delivered)",
		"from", m.from,
		"to", msg.To,
		"subject", msg.Subject,
	)
	return nil
}

// WelcomeMessage builds the welcome email for a new subscriber.
func WelcomeMessage(name, email string, interests []string) Message {
	return Message{
		To:      email,
		Name:    name,
		Subject: "Welcome to Melon",
		Body:    welcomeBody(name, interests),
	}
}

func welcomeBody(name string, interests []string) string {
	body := "Hi " + name + ",\n\nThanks for subscribing to Melon updates."
	if len(interests) > 0 {
		body += "\nYou will hear from us about:"
		for _, interest := range interests {
			body += "\n  - " + interest
		}
	}
	return body + "\n"
}
