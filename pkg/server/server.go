package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/marmos91/fingered/internal/logger"
	"github.com/marmos91/fingered/internal/signals"
	"github.com/marmos91/fingered/internal/telemetry"
	"github.com/marmos91/fingered/pkg/directory"
	"github.com/marmos91/fingered/pkg/metrics"
	"github.com/marmos91/fingered/pkg/transport"
)

// Accept error backoff bounds.
const (
	minAcceptBackoff = 5 * time.Millisecond
	maxAcceptBackoff = time.Second
)

// Server is the finger accept loop. It is Running from Serve until the first
// shutdown event or context cancellation, then Stopped; it cannot be reused.
type Server struct {
	cfg   Config
	ln    *transport.Listener
	store *directory.Store
	src   directory.Source

	metrics   *metrics.Metrics
	onReload  ReloadFunc
	newConnID func() string

	// inflight tracks connection handlers and reloads.
	inflight  sync.WaitGroup
	connCount atomic.Int32

	// connSemaphore is nil when MaxConnections is 0.
	connSemaphore chan struct{}

	shutdownOnce sync.Once
	shutdown     chan struct{}
}

// New creates a Server answering connections from ln with the live
// directory in store. Reload events re-read src into store.
func New(cfg Config, ln *transport.Listener, store *directory.Store, src directory.Source, opts ...Option) *Server {
	s := &Server{
		cfg:       cfg,
		ln:        ln,
		store:     store,
		src:       src,
		newConnID: defaultConnID,
		shutdown:  make(chan struct{}),
	}
	if cfg.MaxConnections > 0 {
		s.connSemaphore = make(chan struct{}, cfg.MaxConnections)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Addr returns the listening address.
func (s *Server) Addr() transport.Addr {
	return s.ln.Addr()
}

// ActiveConnections returns the number of connections being served.
func (s *Server) ActiveConnections() int {
	return int(s.connCount.Load())
}

// Serve runs the accept loop until a shutdown event arrives on events or ctx
// is cancelled, then closes the listener and waits up to ShutdownTimeout for
// in-flight connections. A nil events channel is allowed.
//
// Serve returns nil after a shutdown, or an error if the listener fails for
// good (closed by someone else).
func (s *Server) Serve(ctx context.Context, events <-chan signals.Event) error {
	logger.Info("finger server listening",
		logger.KeyAddress, s.ln.Addr().String(),
		logger.Transport(s.ln.Kind().String()))
	if s.connSemaphore != nil {
		logger.Debug("finger connection limit", "max_connections", s.cfg.MaxConnections)
	}

	conns := make(chan *transport.Conn)
	acceptErr := make(chan error, 1)
	go s.acceptLoop(conns, acceptErr)

	// Handlers and reloads outlive ctx: shutdown waits for them, it does
	// not cancel them.
	workCtx := context.WithoutCancel(ctx)

	for {
		// Shutdown first: drain pending events and ctx before taking
		// another connection.
		select {
		case <-ctx.Done():
			return s.stop("context cancelled", nil)
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if s.handleEvent(workCtx, ev) {
				return s.stop("shutdown signal received", nil)
			}
			continue
		default:
		}

		select {
		case <-ctx.Done():
			return s.stop("context cancelled", nil)
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if s.handleEvent(workCtx, ev) {
				return s.stop("shutdown signal received", nil)
			}
		case conn := <-conns:
			s.startConn(workCtx, conn)
		case err := <-acceptErr:
			return s.stop("listener failed", fmt.Errorf("accept failed: %w", err))
		}
	}
}

// handleEvent starts a reload or reports a shutdown.
func (s *Server) handleEvent(ctx context.Context, ev signals.Event) (shutdown bool) {
	logger.Debug("event received", logger.KeyEvent, ev.String())

	switch ev {
	case signals.EventShutdown:
		return true
	case signals.EventReload:
		s.startReload(ctx)
	}
	return false
}

// acceptLoop accepts connections and hands them to Serve until shutdown.
// A connection slot is taken before Accept, so at most MaxConnections are
// accepted but unfinished.
func (s *Server) acceptLoop(conns chan<- *transport.Conn, acceptErr chan<- error) {
	backoff := time.Duration(0)

	for {
		if s.connSemaphore != nil {
			select {
			case s.connSemaphore <- struct{}{}:
			case <-s.shutdown:
				return
			}
		}

		conn, err := s.ln.Accept()
		if err != nil {
			s.releaseSlot()

			select {
			case <-s.shutdown:
				return
			default:
			}

			if errors.Is(err, net.ErrClosed) {
				acceptErr <- err
				return
			}

			if backoff == 0 {
				backoff = minAcceptBackoff
			} else {
				backoff = min(backoff*2, maxAcceptBackoff)
			}
			logger.Warn("error accepting finger connection",
				logger.Err(err),
				"retry_in", backoff.String())

			select {
			case <-time.After(backoff):
			case <-s.shutdown:
				return
			}
			continue
		}
		backoff = 0

		select {
		case conns <- conn:
		case <-s.shutdown:
			// Accepted by the kernel but never handed to Serve: closed unanswered.
			logger.Debug("finger connection dropped at shutdown", logger.Peer(conn.PeerDisplay()))
			_ = conn.Close()
			s.releaseSlot()
			return
		}
	}
}

func (s *Server) releaseSlot() {
	if s.connSemaphore != nil {
		<-s.connSemaphore
	}
}

// startConn serves conn in its own goroutine against the snapshot that is
// live right now.
func (s *Server) startConn(ctx context.Context, conn *transport.Conn) {
	dir := s.store.Current()

	s.inflight.Add(1)
	active := s.connCount.Add(1)
	s.metrics.ConnectionAccepted(conn.Kind().String())

	logger.Debug("finger connection accepted",
		logger.Peer(conn.PeerDisplay()),
		logger.KeyActive, active)

	go func() {
		defer func() {
			if err := conn.Close(); err != nil {
				logger.Debug("error closing finger connection", logger.Err(err))
			}
			s.connCount.Add(-1)
			s.metrics.ConnectionClosed()
			s.releaseSlot()
			s.inflight.Done()
		}()

		_, _ = serveConn(ctx, conn, dir, s.newConnID(), s.metrics)
	}()
}

// startReload re-reads the users source in the background. Failures keep
// the previous directory and are never fatal.
func (s *Server) startReload(ctx context.Context) {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		s.reload(ctx)
	}()
}

func (s *Server) reload(ctx context.Context) {
	start := time.Now()
	name := s.src.Name()

	ctx, span := telemetry.StartReloadSpan(ctx, name)
	defer span.End()

	d, err := s.store.Reload(ctx, s.src)
	s.metrics.ReloadCompleted(err)

	if err != nil {
		telemetry.RecordError(ctx, err)
		logger.ErrorCtx(ctx, "failed to reload users, keeping previous directory",
			logger.UsersFile(name),
			logger.Err(err))
		if s.onReload != nil {
			s.onReload(nil, err)
		}
		return
	}

	generation := s.store.Generation()
	s.metrics.SetDirectory(d.Len(), generation)
	span.SetAttributes(
		telemetry.DirectoryUsers(d.Len()),
		telemetry.DirectoryGeneration(generation),
	)

	for _, w := range directory.Warnings(d) {
		logger.WarnCtx(ctx, "users file warning", logger.UsersFile(name), "warning", w)
	}
	logger.InfoCtx(ctx, "users reloaded",
		logger.UsersFile(name),
		logger.KeyUsers, d.Len(),
		logger.Generation(generation),
		logger.DurationMs(logger.Duration(start)))

	if s.onReload != nil {
		s.onReload(d, nil)
	}
}

// stop closes the listener and waits for in-flight work. cause is returned
// unchanged.
func (s *Server) stop(reason string, cause error) error {
	s.shutdownOnce.Do(func() {
		logger.Info("finger server stopping", "reason", reason)
		close(s.shutdown)
		if err := s.ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			logger.Debug("error closing finger listener", logger.Err(err))
		}
	})

	s.waitInflight()
	return cause
}

// waitInflight waits for connections and reloads, at most ShutdownTimeout.
// Stragglers are left running; the process is about to exit.
func (s *Server) waitInflight() {
	active := s.connCount.Load()
	logger.Info("finger graceful shutdown: waiting for active connections",
		logger.KeyActive, active,
		"timeout", s.cfg.ShutdownTimeout.String())

	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("finger graceful shutdown complete")
	case <-time.After(s.cfg.ShutdownTimeout):
		logger.Warn("finger shutdown timeout exceeded, abandoning connections",
			logger.KeyActive, s.connCount.Load(),
			"timeout", s.cfg.ShutdownTimeout.String())
	}
}
