package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ConnectionAccepted("tcp")
		m.ConnectionClosed()
		m.RequestCompleted("user", "ok", time.Millisecond, 10)
		m.ReloadCompleted(nil)
		m.SetDirectory(3, 2)
	})
}

func TestMetrics_Connections(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ConnectionAccepted("tcp")
	m.ConnectionAccepted("tcp")
	m.ConnectionAccepted("unix")
	m.ConnectionClosed()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.connectionsTotal.WithLabelValues("tcp")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.connectionsTotal.WithLabelValues("unix")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.connectionsActive))
}

func TestMetrics_Requests(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RequestCompleted("user", "ok", 2*time.Millisecond, 7)
	m.RequestCompleted("user", "not_found", time.Millisecond, 16)
	m.RequestCompleted("", "invalid", time.Millisecond, 0)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("user", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("user", "not_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("none", "invalid")))
	assert.Equal(t, 23.0, testutil.ToFloat64(m.bytesWritten))
	assert.Equal(t, 2, testutil.CollectAndCount(m.requestDuration))
}

func TestMetrics_ReloadAndDirectory(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ReloadCompleted(nil)
	m.ReloadCompleted(errors.New("bad toml"))
	m.ReloadCompleted(errors.New("bad toml"))
	m.SetDirectory(4, 3)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.reloadsTotal.WithLabelValues(ReloadSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.reloadsTotal.WithLabelValues(ReloadError)))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.directoryUsers))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.directoryGeneration))
}

func TestNewMetrics_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(reg)
	assert.Panics(t, func() { NewMetrics(reg) })
}

func TestInitRegistry_Idempotent(t *testing.T) {
	first := InitRegistry()
	require.NotNil(t, first)
	assert.Same(t, first, InitRegistry())
	assert.Same(t, first, GetRegistry())
	assert.True(t, IsEnabled())
}
