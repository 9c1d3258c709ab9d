package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Priya8975/melon-site/internal/domain"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountersIncrement(t *testing.T) {
	before := testutil.ToFloat64(Subscriptions.WithLabelValues(ResultConflict))
	Subscriptions.WithLabelValues(ResultConflict).Inc()
	if v := testutil.ToFloat64(Subscriptions.WithLabelValues(ResultConflict)); v != before+1 {
		t.Fatalf("expected %v, got %v", before+1, v)
	}

	Notifications.WithLabelValues("read_all").Add(2)
	if v := testutil.ToFloat64(Notifications.WithLabelValues("read_all")); v < 2 {
		t.Fatalf("expected notifications read_all >= 2, got %v", v)
	}
}

func TestObserveStats(t *testing.T) {
	ObserveStats(domain.SubscriptionStats{Total: 5, Active: 3, Cancelled: 2})

	if v := testutil.ToFloat64(ActiveSubscriptions); v != 3 {
		t.Errorf("expected active 3, got %v", v)
	}
	if v := testutil.ToFloat64(CancelledSubscriptions); v != 2 {
		t.Errorf("expected cancelled 2, got %v", v)
	}
}

func TestRegisterWebsocketClients(t *testing.T) {
	if err := RegisterWebsocketClients(func() int { return 7 }); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := RegisterWebsocketClients(func() int { return 7 }); err == nil {
		t.Error("expected duplicate registration to fail")
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	Cancellations.WithLabelValues(ResultOK).Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	for _, name := range []string{"melon_cancellations_total", "melon_subscriptions_active"} {
		if !strings.Contains(string(body), name) {
			t.Errorf("expected %s in exposition", name)
		}
	}
}
