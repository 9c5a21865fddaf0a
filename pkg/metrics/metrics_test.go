package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRegistriesAreIndependent(t *testing.T) {
	a := New("popdoc")
	b := New("popdoc")

	a.SpeechRequests.WithLabelValues("google", "success").Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(a.SpeechRequests.WithLabelValues("google", "success")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.SpeechRequests.WithLabelValues("google", "success")))
}

func TestHandlerExposesNamespacedSeries(t *testing.T) {
	m := New("popdoc")
	m.SpeechRequests.WithLabelValues("elevenlabs", Outcome(errors.New("x"))).Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `popdoc_speech_requests_total{outcome="error",provider="elevenlabs"} 1`)
}
