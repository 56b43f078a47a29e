// Package loop wires a local game server and a terminal client for
// single-player play in the current terminal.
package loop

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/tomz197/containment/internal/draw"
	"github.com/tomz197/containment/internal/game"
	"github.com/tomz197/containment/internal/loop/client"
	"github.com/tomz197/containment/internal/loop/server"
)

// Options configures a local run.
type Options struct {
	Config       game.Config
	Logger       *log.Logger
	TermSizeFunc draw.TermSizeFunc
	Username     string
	RewardCode   string
	RewardURL    string
	// Tuning delivers updated rules, e.g. from a file watcher. May be nil.
	Tuning <-chan game.Config
}

// Run starts a private server and plays one client against it until the
// player quits.
func Run(r *bufio.Reader, w io.Writer, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	srv, err := server.NewServer(opts.Config, server.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.Run(ctx)
	if opts.Tuning != nil {
		go ApplyTuning(ctx, srv, opts.Tuning, logger)
	}

	c, err := client.NewClient(srv, r, w, client.ClientOptions{
		TermSizeFunc: opts.TermSizeFunc,
		Username:     opts.Username,
		Logger:       logger,
		RewardCode:   opts.RewardCode,
		RewardURL:    opts.RewardURL,
	})
	if err != nil {
		return err
	}
	return c.Run()
}

// ApplyTuning forwards rule updates to srv until ctx is done or updates closes.
func ApplyTuning(ctx context.Context, srv *server.Server, updates <-chan game.Config, logger *log.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case cfg, ok := <-updates:
			if !ok {
				return
			}
			if err := srv.SetConfig(cfg); err != nil {
				logger.Warn("Rejected tuning update", "err", err)
			}
		}
	}
}
