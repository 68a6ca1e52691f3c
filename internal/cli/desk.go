package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/roach88/numberdesk/internal/config"
	"github.com/roach88/numberdesk/internal/desk"
	"github.com/roach88/numberdesk/internal/sheet"
	"github.com/roach88/numberdesk/internal/store"
)

// resolveConfig loads the effective configuration from --config and
// --endpoint.
func (o *RootOptions) resolveConfig() (config.Config, error) {
	cfg, err := config.Resolve(o.ConfigPath, o.Endpoint)
	if err != nil {
		return config.Config{}, WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	return cfg, nil
}

// openCache opens the configured cache. It returns nil when caching is
// disabled.
func openCache(cfg config.Config) (*store.Store, error) {
	if cfg.Cache == "" {
		return nil, nil
	}
	st, err := store.Open(cfg.Cache)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open cache", err)
	}
	return st, nil
}

// newDesk wires a Desk to the configured record store. cache may be nil.
func (o *RootOptions) newDesk(cfg config.Config, cache *store.Store) (*desk.Desk, error) {
	tag, err := cfg.Language()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	client := sheet.NewClient(cfg.Endpoint,
		sheet.WithTimeout(cfg.RequestTimeout),
		sheet.WithRateLimit(cfg.RatePerMinute, cfg.Burst),
	)

	deskOpts := []desk.Option{
		desk.WithLanguage(tag),
		desk.WithFetchTimeout(cfg.RequestTimeout),
	}
	if cache != nil {
		deskOpts = append(deskOpts, desk.WithCache(cache))
	}
	if o.IDGenerator != nil {
		deskOpts = append(deskOpts, desk.WithIDGenerator(o.IDGenerator))
	}
	if o.Now != nil {
		deskOpts = append(deskOpts, desk.WithNow(o.Now))
	}
	return desk.New(client, deskOpts...), nil
}

// cmdContext returns the command's context, or Background when the command
// was executed without one.
func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
