package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

func TestCORSMiddleware(t *testing.T) {
	tests := []struct {
		name         string
		allow        []string
		method       string
		origin       string
		wantStatus   int
		wantAllowHdr string
	}{
		{name: "allowed origin", allow: []string{"http://localhost:3000"}, method: http.MethodGet, origin: "http://localhost:3000", wantStatus: http.StatusOK, wantAllowHdr: "http://localhost:3000"},
		{name: "trailing slash in config", allow: []string{"http://localhost:3000/"}, method: http.MethodGet, origin: "http://localhost:3000", wantStatus: http.StatusOK, wantAllowHdr: "http://localhost:3000"},
		{name: "disallowed origin", allow: []string{"http://localhost:3000"}, method: http.MethodGet, origin: "http://evil.example", wantStatus: http.StatusOK},
		{name: "wildcard", allow: []string{"*"}, method: http.MethodGet, origin: "http://any.example", wantStatus: http.StatusOK, wantAllowHdr: "http://any.example"},
		{name: "no origin", allow: []string{"*"}, method: http.MethodGet, wantStatus: http.StatusOK},
		{name: "preflight", allow: []string{"http://localhost:3000"}, method: http.MethodOptions, origin: "http://localhost:3000", wantStatus: http.StatusNoContent, wantAllowHdr: "http://localhost:3000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := CORSMiddleware(tt.allow)(okHandler())
			req := httptest.NewRequest(tt.method, "/api/kpis", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantAllowHdr, rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}
