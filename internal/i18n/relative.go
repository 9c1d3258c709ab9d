package i18n

import (
	"time"

	"golang.org/x/text/message"
)

// Relative formats the age of t at now as "2 minutes ago" in lang.
func (c *Catalog) Relative(lang string, t, now time.Time) string {
	p := c.Printer(lang)
	d := now.Sub(t)

	switch {
	case d < time.Minute:
		return p.Sprintf("time.just_now")
	case d < time.Hour:
		return plural(p, int(d/time.Minute), "time.minute_ago", "time.minutes_ago")
	case d < 24*time.Hour:
		return plural(p, int(d/time.Hour), "time.hour_ago", "time.hours_ago")
	default:
		return plural(p, int(d/(24*time.Hour)), "time.day_ago", "time.days_ago")
	}
}

func plural(p *message.Printer, n int, one, many string) string {
	if n == 1 {
		return p.Sprintf(one)
	}
	return p.Sprintf(many, n)
}
