package tempo_test

import (
	"net/http/httptest"
	"testing"
	"time"

	Mo "github.com/maroda/tempo/obvy"
)

func TestNewStatsInternal(t *testing.T) {
	stats := Mo.NewStatsInternal()

	t.Run("Registry carries the collectors", func(t *testing.T) {
		stats.RecRun("full")
		stats.RecWWW("200", "GET")
		stats.RecAnalysisTimer(250 * time.Millisecond)

		families, err := stats.Registry.Gather()
		if err != nil {
			t.Fatalf("gather failed: %v", err)
		}
		if len(families) != 3 {
			t.Errorf("expected 3 metric families, got %d", len(families))
		}
	})

	t.Run("Handler serves the metrics endpoint", func(t *testing.T) {
		stats.RecRun("sparse_landmarks")

		r := httptest.NewRequest("GET", "/metrics", nil)
		w := httptest.NewRecorder()
		stats.Handler().ServeHTTP(w, r)

		if w.Code != 200 {
			t.Errorf("metrics endpoint status %d", w.Code)
		}
		if w.Body.Len() == 0 {
			t.Errorf("metrics endpoint served nothing")
		}
	})
}
