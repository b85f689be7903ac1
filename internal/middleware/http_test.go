package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCORS(t *testing.T) {
	var reached bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusTeapot)
	})

	tests := []struct {
		name       string
		origin     string
		method     string
		wantStatus int
		wantNext   bool
		wantVary   string
	}{
		{"preflight is answered", "*", http.MethodOptions, http.StatusNoContent, false, ""},
		{"post passes through", "*", http.MethodPost, http.StatusTeapot, true, ""},
		{"fixed origin varies", "https://app.example.com", http.MethodPost, http.StatusTeapot, true, "Origin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reached = false
			rec := httptest.NewRecorder()
			CORS(tt.origin)(next).ServeHTTP(rec, httptest.NewRequest(tt.method, "/settleup.v1.SplitService/GetSplit", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantNext, reached)
			assert.Equal(t, tt.origin, rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")
			assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), "X-Request-Id")
			assert.Equal(t, tt.wantVary, rec.Header().Get("Vary"))
		})
	}
}

func TestAccessLogRecordsStatus(t *testing.T) {
	var seen int
	handler := AccessLog(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		if rec, ok := w.(*statusRecorder); ok {
			seen = rec.status
		}
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, http.StatusNotFound, seen)
}
