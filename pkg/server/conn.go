package server

import (
	"context"
	"time"

	"github.com/marmos91/fingered/internal/logger"
	"github.com/marmos91/fingered/internal/protocol/finger"
	"github.com/marmos91/fingered/internal/telemetry"
	"github.com/marmos91/fingered/pkg/directory"
	"github.com/marmos91/fingered/pkg/metrics"
	"github.com/marmos91/fingered/pkg/transport"
)

// ServeOnce answers one request on conn from dir and closes conn. It is the
// inetd mode entry point: no listener, no reloads.
func ServeOnce(ctx context.Context, conn *transport.Conn, dir *directory.Directory, opts ...Option) (finger.Result, error) {
	s := &Server{newConnID: defaultConnID}
	for _, opt := range opts {
		opt(s)
	}

	s.metrics.ConnectionAccepted(conn.Kind().String())
	defer s.metrics.ConnectionClosed()
	defer func() { _ = conn.Close() }()

	return serveConn(ctx, conn, dir, s.newConnID(), s.metrics)
}

// serveConn runs one finger exchange and reports it to logs, traces and
// metrics. It does not close conn.
func serveConn(ctx context.Context, conn *transport.Conn, dir *directory.Directory, connID string, m *metrics.Metrics) (finger.Result, error) {
	lc := logger.NewLogContext(connID, conn.PeerDisplay())
	lc.ClientIP = conn.PeerIP()
	lc.Transport = conn.Kind().String()

	ctx, span := telemetry.StartConnectionSpan(ctx, lc.Transport, lc.Peer, lc.ClientIP)
	defer span.End()

	lc = lc.WithTrace(telemetry.TraceID(ctx), telemetry.SpanID(ctx))
	ctx = logger.WithContext(ctx, lc)

	res, err := finger.Handle(ctx, dir, conn.Reader(), conn.Writer())

	// A zero Request reads as a list request; only trust it once parsed.
	var kind string
	if res.BytesRead > 0 && res.Outcome != finger.OutcomeInvalid {
		kind = res.Request.Kind().String()
		ctx = logger.WithContext(ctx, lc.WithRequest(kind, res.Request.User))
		span.SetAttributes(
			telemetry.RequestKind(kind),
			telemetry.Username(res.Request.User),
			telemetry.Verbose(res.Request.Verbose),
		)
	}
	span.SetAttributes(
		telemetry.Outcome(string(res.Outcome)),
		telemetry.BytesWritten(res.BytesWritten),
	)

	duration := time.Since(lc.StartTime)
	m.RequestCompleted(kind, string(res.Outcome), duration, res.BytesWritten)

	switch {
	case err == nil:
		logger.InfoCtx(ctx, "finger request served",
			logger.KeyOutcome, res.Outcome,
			logger.BytesWritten(res.BytesWritten),
			logger.DurationMs(lc.DurationMs()))
	case res.Outcome == finger.OutcomeInvalid:
		telemetry.RecordError(ctx, err)
		logger.WarnCtx(ctx, "rejected finger request",
			logger.KeyBytesRead, res.BytesRead,
			logger.Err(err))
	default:
		telemetry.RecordError(ctx, err)
		logger.DebugCtx(ctx, "finger connection failed",
			logger.BytesWritten(res.BytesWritten),
			logger.Err(err))
	}

	return res, err
}
