package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCORSWithOrigins(t *testing.T) {
	tests := []struct {
		name         string
		allowOrigins []string
		origin       string
		wantHeader   string
	}{
		{
			name:         "empty list allows any origin",
			allowOrigins: nil,
			origin:       "https://app.example.com",
			wantHeader:   "https://app.example.com",
		},
		{
			name:         "wildcard allows any origin",
			allowOrigins: []string{"*"},
			origin:       "https://app.example.com",
			wantHeader:   "https://app.example.com",
		},
		{
			name:         "listed origin allowed",
			allowOrigins: []string{"https://app.example.com"},
			origin:       "https://app.example.com",
			wantHeader:   "https://app.example.com",
		},
		{
			name:         "unlisted origin gets no header",
			allowOrigins: []string{"https://app.example.com"},
			origin:       "https://evil.example.com",
			wantHeader:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			})
			wrapped := CORSWithOrigins(tt.allowOrigins)(next)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Origin", tt.origin)
			wrapped.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantHeader, rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("preflight must not reach the handler")
	})
	wrapped := CORSWithOrigins(nil)(next)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/auth/profile", nil)
	req.Header.Set("Origin", "https://app.example.com")
	wrapped.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestLoggerPassesThrough(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	wrapped := RequestLogger(next)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	wrapped.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTeapot, rec.Code)
}
