package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Alia5/catinput/internal/log"
	"github.com/Alia5/catinput/internal/server/feed"
)

type Feed struct {
	ServerConfig  feed.ServerConfig `embed:""`
	Input         string            `help:"File of JSON device events, one per line (default: stdin)" type:"path"`
	WaitForClient bool              `help:"Wait for a client to connect before reading input" default:"true" negatable:""`

	In io.Reader `kong:"-"`
}

// Run is called by Kong when the feed command is executed.
func (f *Feed) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return f.StartFeed(ctx, logger, rawLogger)
}

// StartFeed serves the websocket endpoint and forwards input lines until the
// input ends or ctx is done.
func (f *Feed) StartFeed(ctx context.Context, logger *slog.Logger, rawLogger log.RawLogger) error {
	in := f.In
	if f.Input != "" {
		file, err := os.Open(f.Input)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer file.Close()
		in = file
	}
	if in == nil {
		in = os.Stdin
	}

	srv := feed.New(f.ServerConfig, logger, rawLogger)
	srvErrCh := make(chan error, 1)
	go func() {
		srvErrCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-srvErrCh:
		return err
	case <-srv.Ready():
	}
	defer func() {
		_ = srv.Close()
		<-srvErrCh
	}()

	if f.WaitForClient {
		logger.Info("Waiting for a client", "addr", srv.Addr())
		if err := srv.WaitForClient(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}

	sent, err := srv.Feed(ctx, in)
	logger.Info("Input finished", "sent", sent)
	if err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
