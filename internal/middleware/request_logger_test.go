package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type fakeRecorder struct {
	statuses []int
	methods  []string
}

func (r *fakeRecorder) RecordHTTPStatus(status int) { r.statuses = append(r.statuses, status) }

func (r *fakeRecorder) RecordHTTPLatency(method string, _ time.Duration) {
	r.methods = append(r.methods, method)
}

func TestRequestLoggerRecordsObservations(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	recorder := &fakeRecorder{}

	handler := RequestLogger(logger, recorder)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/anything", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusTeapot {
		t.Fatalf("expected status %d got %d", http.StatusTeapot, rec.Code)
	}
	if len(recorder.statuses) != 1 || recorder.statuses[0] != http.StatusTeapot {
		t.Fatalf("expected recorded status, got %v", recorder.statuses)
	}
	if len(recorder.methods) != 1 || recorder.methods[0] != http.MethodGet {
		t.Fatalf("expected recorded method, got %v", recorder.methods)
	}
}

func TestRequestLoggerRecoversPanics(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	handler := RequestLogger(logger, nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "/anything", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d got %d", http.StatusInternalServerError, rec.Code)
	}
}
