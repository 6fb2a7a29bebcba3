package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordRelay(t *testing.T) {
	before := testutil.ToFloat64(RelayEventsTotal.WithLabelValues("message-send", OutcomeOffline))
	RecordRelay("message-send", OutcomeOffline)
	after := testutil.ToFloat64(RelayEventsTotal.WithLabelValues("message-send", OutcomeOffline))
	assert.Equal(t, before+1, after)
}

func TestRecordExternal(t *testing.T) {
	RecordExternal("cloudinary", "upload", errors.New("boom"))
	RecordExternal("cloudinary", "upload", nil)
	assert.GreaterOrEqual(t, testutil.ToFloat64(ExternalCallsTotal.WithLabelValues("cloudinary", "upload", "failure")), 1.0)
	assert.GreaterOrEqual(t, testutil.ToFloat64(ExternalCallsTotal.WithLabelValues("cloudinary", "upload", "success")), 1.0)
}

func TestHandlerExposesCollectors(t *testing.T) {
	RecordRequest(http.MethodGet, "/api/posts", http.StatusOK, 10*time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "onyx_http_requests_total")
}
