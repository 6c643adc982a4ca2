package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveExport(t *testing.T) {
	m := New()

	m.ObserveExport("api", ResultOK, 2*time.Millisecond, 5000)
	m.ObserveExport("api", ResultOK, time.Millisecond, 7000)
	m.ObserveExport("api", ResultInvalid, 0, 0)

	if got := testutil.ToFloat64(m.Exports.WithLabelValues("api", ResultOK)); got != 2 {
		t.Errorf("ok exports = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.Exports.WithLabelValues("api", ResultInvalid)); got != 1 {
		t.Errorf("invalid exports = %v, want 1", got)
	}
}

func TestHandler(t *testing.T) {
	m := New()
	m.PlayersActive.Inc()
	m.FramesSent.WithLabelValues("websocket").Add(3)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{
		"flipdot_players_active 1",
		`flipdot_frames_sent_total{sink="websocket"} 3`,
		"go_goroutines",
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
