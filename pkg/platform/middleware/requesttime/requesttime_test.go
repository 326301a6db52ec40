package requesttime

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Amsterdam/mijn-decos-join-api/pkg/requestcontext"
)

func TestMiddleware(t *testing.T) {
	before := time.Now()
	var first, second time.Time

	handler := Middleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		first = requestcontext.Now(r.Context())
		time.Sleep(time.Millisecond)
		second = requestcontext.Now(r.Context())
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/cases", nil))

	assert.Equal(t, first, second, "one reading per request")
	assert.False(t, first.Before(before))
}
