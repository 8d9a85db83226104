package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRecoverReturnsJSON(t *testing.T) {
	handler := RequestID(Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	got := decodeError(t, rec)
	if got.Error != "Internal server error" {
		t.Errorf("error = %q", got.Error)
	}
	if got.RequestID == "" || got.RequestID != rec.Header().Get("X-Request-ID") {
		t.Errorf("request_id = %q, header %q", got.RequestID, rec.Header().Get("X-Request-ID"))
	}
}

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	tests := []struct {
		name       string
		allowed    []string
		method     string
		origin     string
		wantOrigin string
		wantStatus int
	}{
		{"wildcard", []string{"*"}, http.MethodGet, "https://a.example.com", "*", http.StatusTeapot},
		{"listed origin", []string{"https://a.example.com"}, http.MethodGet, "https://a.example.com", "https://a.example.com", http.StatusTeapot},
		{"unlisted origin", []string{"https://a.example.com"}, http.MethodGet, "https://b.example.com", "", http.StatusTeapot},
		{"preflight", []string{"https://a.example.com"}, http.MethodOptions, "https://a.example.com", "https://a.example.com", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/analyze", nil)
			req.Header.Set("Origin", tt.origin)
			rec := httptest.NewRecorder()
			CORS(tt.allowed)(next).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.wantOrigin)
			}
		})
	}
}

func TestResponseWriterKeepsFirstStatus(t *testing.T) {
	rw := &responseWriter{ResponseWriter: httptest.NewRecorder(), statusCode: http.StatusOK}
	rw.WriteHeader(http.StatusNotFound)
	rw.WriteHeader(http.StatusOK)
	if rw.statusCode != http.StatusNotFound {
		t.Errorf("statusCode = %d, want first written status", rw.statusCode)
	}
}
