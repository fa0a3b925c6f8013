package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/julianstephens/reto21d/internal/models"
)

func TestMiddlewareUsesRouteTemplate(t *testing.T) {
	m := New()
	r := mux.NewRouter()
	r.Use(m.Middleware)
	r.HandleFunc("/habits/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"1", "2", "3"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/habits/"+id, nil))
	}

	got := testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("/habits/{id}", http.MethodGet, "404"))
	if got != 3 {
		t.Errorf("expected 3 requests under the template label, got %v", got)
	}
}

func TestRejectionCounters(t *testing.T) {
	m := New()
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

	if got := testutil.ToFloat64(m.authRejections.WithLabelValues("401_unauthorized")); got != 1 {
		t.Errorf("expected one 401 rejection, got %v", got)
	}
}

func TestDomainObservers(t *testing.T) {
	m := New()
	m.PointsAwarded(models.ActionHabitCompletion, 10, 10)
	m.PointsAwarded(models.ActionHabitCompletion, 10, 20)
	m.PointsAwarded(models.ActionPerfectDay, 20, 40)
	m.AchievementUnlocked(models.Achievement{Key: "dia_perfecto"})

	if got := testutil.ToFloat64(m.pointsAwarded.WithLabelValues(string(models.ActionHabitCompletion))); got != 20 {
		t.Errorf("habit points = %v, want 20", got)
	}
	if got := testutil.ToFloat64(m.pointsTotal); got != 40 {
		t.Errorf("balance = %v, want 40", got)
	}
	if got := testutil.ToFloat64(m.achievementsUnlocked.WithLabelValues("dia_perfecto")); got != 1 {
		t.Errorf("unlocks = %v, want 1", got)
	}
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New()
	m.SetPointsTotal(7)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "reto21d_points_balance 7") {
		t.Errorf("metrics output missing balance:\n%s", body)
	}
}
