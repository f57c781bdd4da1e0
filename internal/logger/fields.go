package logger

import (
	"log/slog"
)

// Standard field keys for structured logging.
// Use these keys consistently across all log statements so that log
// aggregation can correlate connections, requests and reloads.
const (
	// ========================================================================
	// Distributed Tracing
	// ========================================================================
	KeyTraceID = "trace_id" // OpenTelemetry trace ID for request correlation
	KeySpanID  = "span_id"  // OpenTelemetry span ID for operation tracking

	// ========================================================================
	// Connection
	// ========================================================================
	KeyConnectionID = "connection_id" // Per-connection identifier (uuid)
	KeyPeer         = "peer"          // Display form of the peer: ip:port, unix, inetd
	KeyClientIP     = "client_ip"     // Client IP address (without port)
	KeyTransport    = "transport"     // tcp, unix, stream
	KeyAddress      = "address"       // Listen address
	KeyActive       = "active"        // Active connection count

	// ========================================================================
	// Finger request
	// ========================================================================
	KeyRequestKind  = "request"       // list, user, forward
	KeyUsername     = "username"      // Queried username
	KeyVerbose      = "verbose"       // Whether /W was given
	KeyForwarding   = "forwarding"    // The @host... suffix
	KeyBytesRead    = "bytes_read"    // Request bytes consumed
	KeyBytesWritten = "bytes_written" // Reply bytes written
	KeyOutcome      = "outcome"       // ok, not_found, denied, invalid, io_error

	// ========================================================================
	// Directory
	// ========================================================================
	KeyUsersFile  = "users_file" // Path of the users directory file
	KeyUsers      = "users"      // Number of users in a directory
	KeyGeneration = "generation" // Directory generation after a reload
	KeyEvent      = "event"      // Signal/watch event name

	// ========================================================================
	// Operation Metadata
	// ========================================================================
	KeyDurationMs = "duration_ms" // Operation duration in milliseconds
	KeyError      = "error"       // Error message
)

// ============================================================================
// Field constructors for type safety
// ============================================================================

// TraceID returns a slog.Attr for OpenTelemetry trace ID
func TraceID(id string) slog.Attr {
	return slog.String(KeyTraceID, id)
}

// SpanID returns a slog.Attr for OpenTelemetry span ID
func SpanID(id string) slog.Attr {
	return slog.String(KeySpanID, id)
}

// ConnectionID returns a slog.Attr for the connection identifier
func ConnectionID(id string) slog.Attr {
	return slog.String(KeyConnectionID, id)
}

// Peer returns a slog.Attr for the peer display string
func Peer(peer string) slog.Attr {
	return slog.String(KeyPeer, peer)
}

// ClientIP returns a slog.Attr for client IP address
func ClientIP(addr string) slog.Attr {
	return slog.String(KeyClientIP, addr)
}

// Transport returns a slog.Attr for the transport kind
func Transport(kind string) slog.Attr {
	return slog.String(KeyTransport, kind)
}

// RequestKind returns a slog.Attr for the finger request kind
func RequestKind(kind string) slog.Attr {
	return slog.String(KeyRequestKind, kind)
}

// Username returns a slog.Attr for the queried username
func Username(name string) slog.Attr {
	return slog.String(KeyUsername, name)
}

// BytesWritten returns a slog.Attr for reply bytes written
func BytesWritten(n int) slog.Attr {
	return slog.Int(KeyBytesWritten, n)
}

// UsersFile returns a slog.Attr for the users file path
func UsersFile(path string) slog.Attr {
	return slog.String(KeyUsersFile, path)
}

// Generation returns a slog.Attr for the directory generation
func Generation(gen uint64) slog.Attr {
	return slog.Uint64(KeyGeneration, gen)
}

// DurationMs returns a slog.Attr for duration in milliseconds
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error (nil-safe)
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
