package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"PeerBench/internal/domain/models"
	"PeerBench/internal/service/ratelimit"

	"github.com/labstack/echo/v4"
)

type fakeService struct {
	req models.CompareRequest
	err error
}

func (f *fakeService) ParseRequest(req models.CompareRequest) (models.Query, error) {
	f.req = req
	return models.Query{Focal: req.Focal, Peers: req.Peers, Metrics: req.Metrics}, nil
}

func (f *fakeService) Compare(_ context.Context, q models.Query) (*models.ComparisonResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.ComparisonResult{ID: "abc", Status: models.StatusOK, Focal: models.Institution{ID: q.Focal}, Metrics: q.Metrics}, nil
}

func (f *fakeService) Metrics() []models.MetricInfo {
	return []models.MetricInfo{{Name: "return_on_assets"}}
}

func (f *fakeService) Institutions() []models.Institution {
	return []models.Institution{{ID: "33124", Name: "Goldman Sachs Bank USA"}}
}

func serve(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func newEcho(svc ComparisonService, limit RateLimitConfig) *echo.Echo {
	e := echo.New()
	NewComparisonEchoHandler(nil, svc, limit).RegisterRoutes(e)
	return e
}

func TestCompareFromQueryString(t *testing.T) {
	svc := &fakeService{}
	e := newEcho(svc, RateLimitConfig{})

	rec := serve(e, http.MethodGet, "/api/compare?focal=GS&peers=JPM,BAC", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	if len(svc.req.Peers) != 2 || svc.req.Peers[1] != "BAC" {
		t.Fatalf("peers = %v", svc.req.Peers)
	}
	if len(svc.req.Metrics) != 1 || svc.req.Metrics[0] != "return_on_assets" {
		t.Fatalf("default metric not applied: %v", svc.req.Metrics)
	}
	var env struct {
		Status int                     `json:"status"`
		Data   models.ComparisonResult `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil || env.Data.ID != "abc" {
		t.Fatalf("envelope = %s (%v)", rec.Body.String(), err)
	}
}

func TestCompareFromJSONBody(t *testing.T) {
	svc := &fakeService{}
	e := newEcho(svc, RateLimitConfig{})

	rec := serve(e, http.MethodPost, "/api/compare", `{"focal":"33124","peers":["628"],"metrics":["EFFICIENCY_RATIO"],"start":"2023Q1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	if svc.req.Metrics[0] != "efficiency_ratio" || svc.req.Start != "2023Q1" {
		t.Fatalf("request = %+v", svc.req)
	}
}

func TestCompareMissingPeersIsBadRequest(t *testing.T) {
	e := newEcho(&fakeService{}, RateLimitConfig{})
	rec := serve(e, http.MethodGet, "/api/compare?focal=GS", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"field":"peers"`) {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestCompareQueryErrorMapsToField(t *testing.T) {
	svc := &fakeService{err: &models.QueryError{Field: "end", Reason: "end precedes start"}}
	e := newEcho(svc, RateLimitConfig{})
	rec := serve(e, http.MethodGet, "/api/compare?focal=GS&peers=JPM", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"code":"ERR_INVALID_QUERY"`) || !strings.Contains(body, `"field":"end"`) {
		t.Fatalf("body = %s", body)
	}
}

func TestCompareRateLimited(t *testing.T) {
	e := newEcho(&fakeService{}, RateLimitConfig{Limiter: ratelimit.New(), Capacity: 1, RefillPerSec: 0.001})
	if rec := serve(e, http.MethodGet, "/api/compare?focal=GS&peers=JPM", ""); rec.Code != http.StatusOK {
		t.Fatalf("first status = %d", rec.Code)
	}
	if rec := serve(e, http.MethodGet, "/api/compare?focal=GS&peers=JPM", ""); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second status = %d", rec.Code)
	}
	// catalogue routes are not limited
	if rec := serve(e, http.MethodGet, "/api/metrics", ""); rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rec.Code)
	}
}

func TestCatalogueAndHealth(t *testing.T) {
	e := newEcho(&fakeService{}, RateLimitConfig{})
	rec := serve(e, http.MethodGet, "/api/institutions", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"total":1`) {
		t.Fatalf("institutions = %d %s", rec.Code, rec.Body.String())
	}
	rec = serve(e, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Fatalf("healthz = %d %s", rec.Code, rec.Body.String())
	}
}
