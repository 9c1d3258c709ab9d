package notify

import (
	"time"

	"github.com/Priya8975/melon-site/internal/domain"
	"github.com/Priya8975/melon-site/internal/i18n"
)

// Render resolves catalog keys and relative times for lang.
func Render(cat *i18n.Catalog, lang string, ns []domain.Notification, now time.Time) []domain.RenderedNotification {
	out := make([]domain.RenderedNotification, 0, len(ns))
	for _, n := range ns {
		title, msg := n.Title, n.Message
		if n.TitleKey != "" {
			title = cat.T(lang, n.TitleKey)
		}
		if n.MessageKey != "" {
			msg = cat.T(lang, n.MessageKey)
		}
		out = append(out, domain.RenderedNotification{
			ID:        n.ID,
			Kind:      domain.NormalizeKind(n.Kind),
			Icon:      domain.IconForKind(n.Kind),
			Title:     title,
			Message:   msg,
			Time:      cat.Relative(lang, n.CreatedAt, now),
			CreatedAt: n.CreatedAt,
			Unread:    !n.Read,
		})
	}
	return out
}
