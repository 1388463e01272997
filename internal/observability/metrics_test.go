package observability

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordSave(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordSave(10*time.Millisecond, nil)
	m.RecordSave(20*time.Millisecond, nil)
	m.RecordSave(5*time.Millisecond, errors.New("disk full"))

	assert.Equal(t, float64(2), testutil.ToFloat64(m.sessionsSaved))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.saveFailures))
}

func TestRecordSkippedAndRestored(t *testing.T) {
	m := NewMetrics(nil)

	m.RecordSkipped()
	m.RecordSkipped()
	m.SetRestored(7)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.filesSkipped))
	assert.Equal(t, float64(7), testutil.ToFloat64(m.restoredGauge))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordSave(time.Second, nil)
		m.RecordSkipped()
		m.SetRestored(1)
	})
}

func TestHandlerExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.RecordSave(time.Millisecond, nil)

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "analog_sessions_saved_total 1")
	assert.Contains(t, string(body), "analog_session_save_duration_seconds")
}

func TestServeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- Serve(ctx, "127.0.0.1:0", prometheus.NewRegistry())
	}()

	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
