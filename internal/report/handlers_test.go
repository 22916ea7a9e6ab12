package report

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/noah-isme/backend-kasir/internal/invoice"
)

type failingSource struct {
	err error
}

func (f *failingSource) ListCompletedBetween(ctx context.Context, from, to time.Time) ([]invoice.Invoice, error) {
	return nil, f.err
}

func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) (code, message string) {
	t.Helper()
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body.Error.Code, body.Error.Message
}

func TestDailyHandlerRequiresDate(t *testing.T) {
	h := &Handler{Svc: &Service{Invoices: &memSource{}, Location: time.UTC}}
	rec := httptest.NewRecorder()
	h.Daily(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reports/daily", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if code, _ := decodeErrorBody(t, rec); code != "BAD_REQUEST" {
		t.Fatalf("expected code BAD_REQUEST, got %q", code)
	}
}

func TestDailyHandlerRejectsMalformedDate(t *testing.T) {
	h := &Handler{Svc: &Service{Invoices: &memSource{}, Location: time.UTC}}
	rec := httptest.NewRecorder()
	h.Daily(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reports/daily?date=15-03-2024", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if code, _ := decodeErrorBody(t, rec); code != "BAD_REQUEST" {
		t.Fatalf("expected code BAD_REQUEST, got %q", code)
	}
}

func TestDailyHandlerMapsSourceFailureToInternal(t *testing.T) {
	src := &failingSource{err: errors.New("pq: connection refused")}
	h := &Handler{Svc: &Service{Invoices: src, Location: time.UTC}}
	rec := httptest.NewRecorder()
	h.Daily(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reports/daily?date=2024-03-15", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	code, message := decodeErrorBody(t, rec)
	if code != "INTERNAL" {
		t.Fatalf("expected code INTERNAL, got %q", code)
	}
	if message == src.err.Error() {
		t.Fatal("source error text must not leak to the client")
	}
}
