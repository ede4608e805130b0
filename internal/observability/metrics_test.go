package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics_SocketEvents(t *testing.T) {
	m := NewMetrics("test")

	m.RecordSocketEvent("hr/departments/add", OutcomeOK, 10*time.Millisecond)
	m.RecordSocketEvent("hr/departments/add", OutcomeOK, 5*time.Millisecond)
	m.RecordSocketEvent("hr/departments/add", OutcomeError, time.Millisecond)

	require.Equal(t, 2.0, testutil.ToFloat64(m.socketEvents.WithLabelValues("hr/departments/add", OutcomeOK)))
	require.Equal(t, 1.0, testutil.ToFloat64(m.socketEvents.WithLabelValues("hr/departments/add", OutcomeError)))
}

func TestMetrics_ClientGauge(t *testing.T) {
	m := NewMetrics("test")
	m.ClientConnected()
	m.ClientConnected()
	m.ClientDisconnected()

	require.Equal(t, 1.0, testutil.ToFloat64(m.socketConns))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	require.NotPanics(t, func() {
		m.RecordRequest("/health/live", "GET", 200, time.Millisecond)
		m.RecordError("/health/live", "GET", "INTERNAL_ERROR")
		m.RecordSocketEvent("task:getAllData", OutcomeTimeout, time.Second)
		m.ClientConnected()
		m.ClientDisconnected()
	})
}
