package observability

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_CountersAndHandler(t *testing.T) {
	m := NewMetrics("adhan_test")
	m.ObserveBroadcast("fajr", 3*time.Second)
	m.ObserveSession("finished")
	m.ObserveSession("errored")
	m.ObserveSession("finished")
	m.ObserveFetch(nil)
	m.ObserveFetch(errors.New("boom"))
	m.ObserveTrigger("fajr")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Broadcasts.WithLabelValues("fajr")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Sessions.WithLabelValues("finished")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ScheduleFetches.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Triggers.WithLabelValues("fajr")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "adhan_test_broadcast_duration_seconds_count 1")
	assert.Contains(t, string(body), `adhan_test_voice_sessions_total{state="errored"} 1`)
}

func TestMetrics_IndependentInstances(t *testing.T) {
	assert.NotPanics(t, func() {
		NewMetrics("adhan_test")
		NewMetrics("adhan_test")
	})
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveBroadcast("manual", time.Second)
		m.ObserveSession("finished")
		m.ObserveFetch(nil)
		m.ObserveTrigger("isha")
	})
}
