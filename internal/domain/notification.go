package domain

import "time"

// Notification kinds. Each maps to an icon in the header dropdown.
const (
	KindMusic = "music"
	KindStar  = "star"
	KindGift  = "gift"
	KindInfo  = "info"
)

var kindIcons = map[string]string{
	KindMusic: "fas fa-music",
	KindStar:  "fas fa-star",
	KindGift:  "fas fa-gift",
	KindInfo:  "fas fa-info-circle",
}

// NormalizeKind returns kind if it is known, KindInfo otherwise.
func NormalizeKind(kind string) string {
	if _, ok := kindIcons[kind]; ok {
		return kind
	}
	return KindInfo
}

// IconForKind returns the icon class for a notification kind.
func IconForKind(kind string) string {
	return kindIcons[NormalizeKind(kind)]
}

// Notification is an entry in a visitor's inbox. When TitleKey or MessageKey
// is set the text is looked up in the catalog at render time; otherwise the
// literal Title and Message are shown.
type Notification struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	Title      string    `json:"title,omitempty"`
	Message    string    `json:"message,omitempty"`
	TitleKey   string    `json:"title_key,omitempty"`
	MessageKey string    `json:"message_key,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	Read       bool      `json:"read"`
}

type CreateNotificationRequest struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Kind    string `json:"kind,omitempty"`
}

// Badge is the unread counter shown on the bell icon.
type Badge struct {
	Unread  int  `json:"unread"`
	Visible bool `json:"visible"`
}

// NewBadge builds a badge that is hidden when nothing is unread.
func NewBadge(unread int) Badge {
	return Badge{Unread: unread, Visible: unread > 0}
}

// RenderedNotification is a notification with its text resolved for one language.
type RenderedNotification struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Icon      string    `json:"icon"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Time      string    `json:"time"`
	CreatedAt time.Time `json:"created_at"`
	Unread    bool      `json:"unread"`
}
