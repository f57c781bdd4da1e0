package commands

import (
	"context"
	"io"
	"os"

	"github.com/marmos91/fingered/internal/logger"
	"github.com/marmos91/fingered/pkg/config"
	"github.com/marmos91/fingered/pkg/directory"
	"github.com/marmos91/fingered/pkg/server"
	"github.com/marmos91/fingered/pkg/transport"
)

// runInetd answers a single request on stdin/stdout.
func runInetd(ctx context.Context, cfg *config.Config) error {
	if err := InitLogger(cfg, true); err != nil {
		return err
	}

	shutdownObservability, err := initObservability(ctx, cfg)
	if err != nil {
		return err
	}
	defer shutdownObservability()

	return serveInetd(ctx, cfg, os.Stdin, os.Stdout)
}

// serveInetd loads the users file and answers one request read from in.
// Protocol errors are logged, not returned: the client simply gets no reply.
func serveInetd(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer) error {
	dir, err := directory.Load(ctx, directory.FileSource{Path: cfg.Server.UsersFile})
	if err != nil {
		return err
	}

	res, err := server.ServeOnce(ctx, transport.NewStreamConn(in, out), dir)
	if err != nil {
		logger.Debug("inetd request not answered", logger.KeyOutcome, res.Outcome, logger.Err(err))
	}
	return nil
}
