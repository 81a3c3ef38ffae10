package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c interface{ Write(*dto.Metric) error }) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestObserveCache(t *testing.T) {
	before := counterValue(t, CacheLookups.WithLabelValues("hit"))
	ObserveCache(true)
	ObserveCache(false)
	if got := counterValue(t, CacheLookups.WithLabelValues("hit")); got != before+1 {
		t.Fatalf("hit counter = %v, want %v", got, before+1)
	}
}

func TestHandlerServesMetrics(t *testing.T) {
	ObserveValidator(20 * time.Millisecond)
	ScratchFiles.Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	for _, name := range []string{
		"glslcheck_files_validated_total",
		"glslcheck_validator_duration_seconds_bucket",
		"glslcheck_scratch_files_total",
	} {
		if !strings.Contains(string(body), name) {
			t.Errorf("metrics output misses %s", name)
		}
	}
}
