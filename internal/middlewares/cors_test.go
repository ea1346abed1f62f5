package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	tests := []struct {
		name          string
		origins       []string
		origin        string
		method        string
		preflight     bool
		expectedCode  int
		expectedAllow string
	}{
		{"allowed origin", []string{"http://localhost:3000"}, "http://localhost:3000", http.MethodGet, false, http.StatusOK, "http://localhost:3000"},
		{"unknown origin", []string{"http://localhost:3000"}, "http://evil.example", http.MethodGet, false, http.StatusOK, ""},
		{"wildcard", []string{"*"}, "http://any.example", http.MethodGet, false, http.StatusOK, "http://any.example"},
		{"preflight", []string{"http://localhost:3000"}, "http://localhost:3000", http.MethodOptions, true, http.StatusNoContent, "http://localhost:3000"},
		{"disabled", nil, "http://localhost:3000", http.MethodGet, false, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/transactions", nil)
			req.Header.Set("Origin", tt.origin)
			if tt.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}
			rr := httptest.NewRecorder()

			CORS(tt.origins)(next).ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedCode, rr.Code)
			assert.Equal(t, tt.expectedAllow, rr.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}
