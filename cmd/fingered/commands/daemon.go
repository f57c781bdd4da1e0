package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/marmos91/fingered/internal/logger"
	"github.com/marmos91/fingered/internal/signals"
	"github.com/marmos91/fingered/pkg/config"
	"github.com/marmos91/fingered/pkg/directory"
	"github.com/marmos91/fingered/pkg/metrics"
	"github.com/marmos91/fingered/pkg/server"
	"github.com/marmos91/fingered/pkg/transport"
)

// runDaemon binds (or takes over an activated socket), loads the users file
// and serves until a shutdown signal.
func runDaemon(ctx context.Context, cfg *config.Config) error {
	if err := InitLogger(cfg, false); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	shutdownObservability, err := initObservability(ctx, cfg)
	if err != nil {
		return err
	}
	defer shutdownObservability()

	logger.Info("starting daemon",
		"version", Version,
		"config", getConfigSource(cfgFile),
		"level", cfg.Logging.Level)

	ln, err := openListener(ctx, cfg.Server.Listen)
	if err != nil {
		return err
	}
	defer func() { _ = ln.Close() }()

	src := directory.FileSource{Path: cfg.Server.UsersFile}
	dir, err := directory.Load(ctx, src)
	if err != nil {
		return err
	}
	for _, w := range directory.Warnings(dir) {
		logger.Warn("users file warning", logger.UsersFile(src.Name()), "warning", w)
	}
	logger.Info("users loaded", logger.UsersFile(src.Name()), logger.KeyUsers, dir.Len())
	store := directory.NewStore(dir)

	sub := signals.Subscribe(ctx)
	defer sub.Close()
	events := sub.Events()

	if cfg.Server.WatchUsersFile {
		changes, err := signals.WatchFile(ctx, src.Path)
		if err != nil {
			return fmt.Errorf("failed to watch users file: %w", err)
		}
		events = signals.Merge(ctx, events, changes)
		logger.Info("watching users file for changes", logger.UsersFile(src.Name()))
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.NewMetrics(metrics.InitRegistry())
		m.SetDirectory(dir.Len(), store.Generation())
	}

	srv := server.New(server.Config{
		MaxConnections:  cfg.Server.MaxConnections,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, ln, store, src, server.WithMetrics(m))

	metricsDone := make(chan struct{})
	if cfg.Metrics.Enabled {
		ms := metrics.NewServer(cfg.Metrics.Port, metrics.GetRegistry(), healthFunc(store, srv, time.Now()))
		go func() {
			defer close(metricsDone)
			if err := ms.Start(ctx); err != nil {
				logger.Error("metrics server error", logger.Err(err))
			}
		}()
	} else {
		close(metricsDone)
	}

	if cfg.Server.PidFile != "" {
		removePid, err := writePidFile(cfg.Server.PidFile)
		if err != nil {
			return err
		}
		defer removePid()
	}

	err = srv.Serve(ctx, events)
	cancel()
	<-metricsDone

	if err != nil {
		logger.Error("server error", logger.Err(err))
		return err
	}
	logger.Info("exited gracefully")
	return nil
}

// openListener binds listen, or takes the socket passed through LISTEN_FDS
// when listen is empty.
func openListener(ctx context.Context, listen string) (*transport.Listener, error) {
	if listen != "" {
		addr, err := transport.ParseAddr(listen)
		if err != nil {
			return nil, err
		}
		ln, err := transport.Listen(ctx, addr)
		if err != nil {
			return nil, err
		}
		logger.Info("listening", logger.KeyAddress, ln.Addr().String(), logger.Transport(ln.Kind().String()))
		return ln, nil
	}

	ln, err := transport.FromListenFDs()
	if errors.Is(err, transport.ErrNoListenFDs) {
		return nil, errNoListenAddr
	}
	if err != nil {
		return nil, err
	}
	logger.Info("socket descriptor given on LISTEN_FDS, listening on it",
		logger.KeyAddress, ln.Addr().String(),
		logger.Transport(ln.Kind().String()))
	return ln, nil
}

func healthFunc(store *directory.Store, srv *server.Server, startedAt time.Time) metrics.HealthFunc {
	return func() map[string]any {
		return map[string]any{
			"started_at":         startedAt.UTC().Format(time.RFC3339),
			"uptime":             time.Since(startedAt).Round(time.Second).String(),
			"users":              store.Current().Len(),
			"generation":         store.Generation(),
			"active_connections": srv.ActiveConnections(),
		}
	}
}
