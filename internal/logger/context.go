package logger

import (
	"context"
	"log/slog"
	"time"
)

// contextKey is a private type for context keys to avoid collisions
type contextKey struct{}

// logContextKey is the key for LogContext in context.Context
var logContextKey = contextKey{}

// LogContext holds connection-scoped logging context
type LogContext struct {
	TraceID      string    // OpenTelemetry trace ID
	SpanID       string    // OpenTelemetry span ID
	ConnectionID string    // Per-connection identifier
	Peer         string    // Peer display string (ip:port, unix, inetd)
	ClientIP     string    // Client IP address (without port)
	Transport    string    // tcp, unix or stream
	RequestKind  string    // list, user or forward
	Username     string    // Queried user, if any
	StartTime    time.Time // For duration calculation
}

// WithContext returns a new context with the given LogContext
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext retrieves the LogContext from context, or nil if not present
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// NewLogContext creates a new LogContext for a connection
func NewLogContext(connectionID, peer string) *LogContext {
	return &LogContext{
		ConnectionID: connectionID,
		Peer:         peer,
		StartTime:    time.Now(),
	}
}

// Clone creates a copy of the LogContext
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	clone := *lc
	return &clone
}

// WithRequest returns a copy with the request kind and username set
func (lc *LogContext) WithRequest(kind, username string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.RequestKind = kind
		clone.Username = username
	}
	return clone
}

// WithTrace returns a copy with trace info set
func (lc *LogContext) WithTrace(traceID, spanID string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.TraceID = traceID
		clone.SpanID = spanID
	}
	return clone
}

// DurationMs returns the duration since StartTime in milliseconds
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return float64(time.Since(lc.StartTime).Microseconds()) / 1000.0
}

// attrs returns the non-empty fields as log attributes, trace first.
func (lc *LogContext) attrs() []any {
	attrs := make([]any, 0, 8)
	add := func(v string, attr func(string) slog.Attr) {
		if v != "" {
			attrs = append(attrs, attr(v))
		}
	}
	add(lc.TraceID, TraceID)
	add(lc.SpanID, SpanID)
	add(lc.ConnectionID, ConnectionID)
	add(lc.Peer, Peer)
	add(lc.ClientIP, ClientIP)
	add(lc.Transport, Transport)
	add(lc.RequestKind, RequestKind)
	add(lc.Username, Username)
	return attrs
}
