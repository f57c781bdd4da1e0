package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys. Client and network keys follow the OpenTelemetry semantic
// conventions; finger-specific keys use the "finger." prefix.
const (
	AttrClientAddr       = "client.address"
	AttrClientIP         = "client.ip"
	AttrTransport        = "network.transport"
	AttrRequestKind      = "finger.request.kind"
	AttrUsername         = "finger.user"
	AttrVerbose          = "finger.verbose"
	AttrOutcome          = "finger.outcome"
	AttrBytesWritten     = "finger.reply.bytes"
	AttrUsersFile        = "finger.users_file"
	AttrDirectoryUsers   = "finger.directory.users"
	AttrDirectoryVersion = "finger.directory.generation"
)

// Span names.
const (
	SpanConnection = "finger.connection"
	SpanReload     = "finger.reload"
)

// ClientAddr returns the peer as displayed in logs.
func ClientAddr(addr string) attribute.KeyValue {
	return attribute.String(AttrClientAddr, addr)
}

// ClientIP returns the client IP attribute.
func ClientIP(ip string) attribute.KeyValue {
	return attribute.String(AttrClientIP, ip)
}

// Transport returns the transport attribute (tcp, unix, stream).
func Transport(name string) attribute.KeyValue {
	return attribute.String(AttrTransport, name)
}

// RequestKind returns the request kind attribute (list, user, forward).
func RequestKind(kind string) attribute.KeyValue {
	return attribute.String(AttrRequestKind, kind)
}

// Username returns the queried username attribute.
func Username(name string) attribute.KeyValue {
	return attribute.String(AttrUsername, name)
}

// Verbose returns whether /W was requested.
func Verbose(v bool) attribute.KeyValue {
	return attribute.Bool(AttrVerbose, v)
}

// Outcome returns the reply outcome attribute.
func Outcome(outcome string) attribute.KeyValue {
	return attribute.String(AttrOutcome, outcome)
}

// BytesWritten returns the reply size attribute.
func BytesWritten(n int) attribute.KeyValue {
	return attribute.Int(AttrBytesWritten, n)
}

// UsersFile returns the users file path attribute.
func UsersFile(path string) attribute.KeyValue {
	return attribute.String(AttrUsersFile, path)
}

// DirectoryUsers returns the directory size attribute.
func DirectoryUsers(n int) attribute.KeyValue {
	return attribute.Int(AttrDirectoryUsers, n)
}

// DirectoryGeneration returns the snapshot generation attribute.
func DirectoryGeneration(gen uint64) attribute.KeyValue {
	return attribute.Int64(AttrDirectoryVersion, int64(gen))
}

// StartConnectionSpan starts the root span for one client connection.
// clientIP may be empty for Unix sockets and inetd streams.
func StartConnectionSpan(ctx context.Context, transport, peer, clientIP string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		Transport(transport),
		ClientAddr(peer),
	}
	if clientIP != "" {
		attrs = append(attrs, ClientIP(clientIP))
	}

	return StartSpan(ctx, SpanConnection,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithNewRoot(),
		trace.WithAttributes(attrs...),
	)
}

// StartReloadSpan starts a span for one users file reload.
func StartReloadSpan(ctx context.Context, source string) (context.Context, trace.Span) {
	return StartSpan(ctx, SpanReload,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(UsersFile(source)),
	)
}
