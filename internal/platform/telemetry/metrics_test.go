package telemetry

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("scrape returned %d", rec.Code)
	}
	return rec.Body.String()
}

func TestMetrics_DomainCounters(t *testing.T) {
	m := New()
	m.AssociationCreated()
	m.AssociationResponded("ACEITA")
	m.AssociationResponded("ACEITA")
	m.NotificationCreated()
	m.NotificationRead()

	body := scrape(t, m)
	checks := []string{
		`carelink_associations_created_total 1`,
		`carelink_associations_responded_total{status="ACEITA"} 2`,
		`carelink_notifications_created_total 1`,
		`carelink_notifications_read_total 1`,
	}
	for _, want := range checks {
		if !strings.Contains(body, want) {
			t.Errorf("scrape output missing %q", want)
		}
	}
}

func TestMetrics_Middleware(t *testing.T) {
	m := New()
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/users/123", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/users/:id")

	h := m.Middleware()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	body := scrape(t, m)
	if !strings.Contains(body, `carelink_http_requests_total{method="GET",route="/users/:id",status="200"} 1`) {
		t.Errorf("scrape output missing request counter, got:\n%s", body)
	}
}

func TestMetrics_MiddlewareRecordsErrorStatus(t *testing.T) {
	m := New()
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/boom")

	h := m.Middleware()(func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "missing")
	})
	_ = h(c)

	body := scrape(t, m)
	if !strings.Contains(body, `carelink_http_requests_total{method="GET",route="/boom",status="404"} 1`) {
		t.Errorf("scrape output missing 404 counter, got:\n%s", body)
	}
}
