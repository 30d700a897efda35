package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, family := range families {
		if family.GetName() == name {
			var total float64
			for _, metric := range family.GetMetric() {
				total += metric.GetCounter().GetValue()
			}
			return total
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}

func TestCollectorCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.FriendRequestSent()
	c.FriendRequestSent()
	c.FriendRequestAccepted()
	c.PostCreated()
	c.CommentCreated()
	c.StoryCreated()
	c.CascadeDeleted("comment", 3)
	c.CascadeDeleted("post", 1)

	if got := counterValue(t, reg, "mingle_friend_requests_sent_total"); got != 2 {
		t.Errorf("requests sent = %v, want 2", got)
	}
	if got := counterValue(t, reg, "mingle_friend_requests_accepted_total"); got != 1 {
		t.Errorf("requests accepted = %v, want 1", got)
	}
	if got := counterValue(t, reg, "mingle_cascade_deleted_total"); got != 4 {
		t.Errorf("cascade deleted = %v, want 4", got)
	}
}

func TestCollectorHTTPStatusLabels(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(404)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, family := range families {
		if family.GetName() != "mingle_http_responses_total" {
			continue
		}
		if len(family.GetMetric()) != 2 {
			t.Fatalf("expected 2 label combinations, got %d", len(family.GetMetric()))
		}
		for _, metric := range family.GetMetric() {
			label := metric.GetLabel()[0].GetValue()
			value := metric.GetCounter().GetValue()
			switch label {
			case "200":
				if value != 2 {
					t.Errorf("status 200 = %v, want 2", value)
				}
			case "404":
				if value != 1 {
					t.Errorf("status 404 = %v, want 1", value)
				}
			default:
				t.Errorf("unexpected status label %q", label)
			}
		}
		return
	}
	t.Fatal("mingle_http_responses_total not found")
}

func TestCollectorLatencyHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPLatency(http.MethodGet, 100*time.Millisecond)
	c.RecordHTTPLatency(http.MethodGet, 2*time.Second)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, family := range families {
		if family.GetName() != "mingle_http_request_duration_seconds" {
			continue
		}
		histogram := family.GetMetric()[0].GetHistogram()
		if histogram.GetSampleCount() != 2 {
			t.Errorf("sample count = %d, want 2", histogram.GetSampleCount())
		}
		if sum := histogram.GetSampleSum(); sum < 2.0 || sum > 2.2 {
			t.Errorf("sample sum = %v, want ~2.1", sum)
		}
		return
	}
	t.Fatal("mingle_http_request_duration_seconds not found")
}

func TestHandlerServesPrometheusFormat(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.FriendRequestSent()
	c.PostCreated()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	body, _ := io.ReadAll(resp.Body)
	for _, name := range []string{"mingle_friend_requests_sent_total", "mingle_posts_created_total"} {
		if !strings.Contains(string(body), name) {
			t.Errorf("response body missing %q", name)
		}
	}
}
