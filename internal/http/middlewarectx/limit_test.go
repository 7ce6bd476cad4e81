package middlewarectx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRateLimitMiddleware(t *testing.T) {
	handler := RateLimitMiddleware(newNoopLogger())(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	var limited bool
	for i := 0; i < 100; i++ {
		req := httptest.NewRequest(http.MethodGet, "/plants", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if i == 0 {
			assert.Equal(t, http.StatusOK, w.Code)
		}
		if w.Code == http.StatusTooManyRequests {
			limited = true
		}
	}

	assert.True(t, limited, "a burst above the limit should hit 429")
}
