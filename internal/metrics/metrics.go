package metrics

import (
	"net/http"

	"github.com/Priya8975/melon-site/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Subscription results.
const (
	ResultOK        = "ok"
	ResultInvalid   = "invalid"
	ResultBadFormat = "bad_format"
	ResultConflict  = "conflict"
	ResultNotFound  = "not_found"
	ResultError     = "error"
)

var (
	Subscriptions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "melon_subscriptions_total",
		Help: "Total number of subscribe requests by result",
	}, []string{"result"})
	Cancellations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "melon_cancellations_total",
		Help: "Total number of cancel requests by result",
	}, []string{"result"})
	// Notification inbox actions: list, add, read, read_all.
	Notifications = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "melon_notifications_total",
		Help: "Total number of notification inbox operations by action",
	}, []string{"action"})
	LanguageSelections = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "melon_language_selections_total",
		Help: "Total number of explicit language selections",
	}, []string{"language"})

	ActiveSubscriptions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "melon_subscriptions_active",
		Help: "Number of active subscriptions",
	})
	CancelledSubscriptions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "melon_subscriptions_cancelled",
		Help: "Number of cancelled subscriptions",
	})
)

func init() {
	prometheus.MustRegister(Subscriptions)
	prometheus.MustRegister(Cancellations)
	prometheus.MustRegister(Notifications)
	prometheus.MustRegister(LanguageSelections)
	prometheus.MustRegister(ActiveSubscriptions)
	prometheus.MustRegister(CancelledSubscriptions)
}

// ObserveStats refreshes the subscription gauges.
func ObserveStats(stats domain.SubscriptionStats) {
	ActiveSubscriptions.Set(float64(stats.Active))
	CancelledSubscriptions.Set(float64(stats.Cancelled))
}

// RegisterWebsocketClients exposes the live connection count reported by count.
func RegisterWebsocketClients(count func() int) error {
	return prometheus.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "melon_websocket_clients",
		Help: "Number of connected websocket clients",
	}, func() float64 { return float64(count()) }))
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
