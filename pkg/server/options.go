package server

import (
	"time"

	"github.com/google/uuid"

	"github.com/marmos91/fingered/pkg/directory"
	"github.com/marmos91/fingered/pkg/metrics"
)

// Config holds the accept loop limits.
type Config struct {
	// MaxConnections bounds concurrently served connections. 0 means unlimited.
	MaxConnections int

	// ShutdownTimeout bounds how long Serve waits for in-flight connections
	// and reloads after a shutdown event. They are not cancelled.
	ShutdownTimeout time.Duration
}

// ReloadFunc is called after every reload attempt. d is nil when err is set.
type ReloadFunc func(d *directory.Directory, err error)

// Option configures a Server.
type Option func(*Server)

// WithMetrics records connection, request and reload metrics on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithReloadHook registers fn to observe reload results.
func WithReloadHook(fn ReloadFunc) Option {
	return func(s *Server) {
		s.onReload = fn
	}
}

// WithConnectionIDs replaces the connection ID generator (uuid by default).
func WithConnectionIDs(next func() string) Option {
	return func(s *Server) {
		s.newConnID = next
	}
}

func defaultConnID() string {
	return uuid.NewString()
}
