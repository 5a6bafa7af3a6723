package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/schoolbridge/schoolbridge-backend/pkg/logger"
)

func TestLoggingRecordsStatus(t *testing.T) {
	var out bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.InfoLevel, Output: &out})

	handler := Logging(logg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil))

	if rec.Code != http.StatusTeapot {
		t.Fatalf("expected 418 got %d", rec.Code)
	}

	lines := bytes.Split(bytes.TrimSpace(out.Bytes()), []byte("\n"))
	if len(lines) != 2 {
		t.Fatalf("expected start and completion lines, got %d", len(lines))
	}
	var completion map[string]any
	if err := json.Unmarshal(lines[1], &completion); err != nil {
		t.Fatalf("decode completion line: %v", err)
	}
	if completion["message"] != "request.complete" {
		t.Fatalf("unexpected completion message %v", completion["message"])
	}
	if status, ok := completion["status"].(float64); !ok || int(status) != http.StatusTeapot {
		t.Fatalf("expected status 418 in log, got %v", completion["status"])
	}
}

func TestLoggingDefaultsStatusToOK(t *testing.T) {
	var out bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.InfoLevel, Output: &out})

	handler := Logging(logg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	lines := bytes.Split(bytes.TrimSpace(out.Bytes()), []byte("\n"))
	var completion map[string]any
	if err := json.Unmarshal(lines[len(lines)-1], &completion); err != nil {
		t.Fatalf("decode completion line: %v", err)
	}
	if status, ok := completion["status"].(float64); !ok || int(status) != http.StatusOK {
		t.Fatalf("expected status 200 in log, got %v", completion["status"])
	}
}
