package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/numberdesk/internal/web"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Listen string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the record table over HTTP",
		Long: `Start the web server and the background refresh loop.

The full record sequence is loaded at startup (from the cache first, when
one is configured) and reloaded every refresh_interval.

Example:
  numberdesk serve --endpoint https://script.example.com/exec
  numberdesk serve --config numberdesk.yaml --listen :8080`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Listen, "listen", "", "listen address (overrides the config file)")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	cfg, err := opts.resolveConfig()
	if err != nil {
		return err
	}
	if opts.Listen != "" {
		cfg.Listen = opts.Listen
	}

	cache, err := openCache(cfg)
	if err != nil {
		return err
	}
	if cache != nil {
		defer func() {
			if closeErr := cache.Close(); closeErr != nil {
				slog.Error("error closing cache", "error", closeErr)
			}
		}()
	}

	d, err := opts.newDesk(cfg, cache)
	if err != nil {
		return err
	}

	if !opts.Verbose {
		gin.SetMode(gin.ReleaseMode)
	}
	server := web.New(d,
		web.WithPageSize(cfg.PageSize),
		web.WithReloadInterval(cfg.RefreshInterval),
		web.WithRefreshLimit(cfg.RatePerMinute, cfg.Burst),
	)

	ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("starting", "endpoint", cfg.Endpoint, "listen", cfg.Listen, "refresh", cfg.RefreshInterval)
	fmt.Fprintf(cmd.OutOrStdout(), "Serving on http://%s\n", cfg.Listen)
	fmt.Fprintln(cmd.OutOrStdout(), "Press Ctrl-C to stop.")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return d.Run(gctx, cfg.RefreshInterval)
	})
	g.Go(func() error {
		return server.ListenAndServe(gctx, cfg.Listen)
	})

	if err := g.Wait(); err != nil && err != context.Canceled && err != context.DeadlineExceeded {
		return WrapExitError(ExitFailure, "server error", err)
	}

	slog.Info("stopped gracefully")
	return nil
}
