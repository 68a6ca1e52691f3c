package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/numberdesk/internal/config"
	"github.com/roach88/numberdesk/internal/record"
	"github.com/roach88/numberdesk/internal/store"
)

// ChangesOptions holds flags for the changes command.
type ChangesOptions struct {
	*RootOptions
	Cache string
	Limit int
}

// NewChangesCommand creates the changes command.
func NewChangesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ChangesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "changes",
		Short: "Show the journal of status changes",
		Long: `Print recorded status change attempts, newest first.

Every attempt made through serve or set-status is journaled in the cache,
including declined and failed ones. No record store access is needed.

Example:
  numberdesk changes --cache ./numberdesk.db
  numberdesk changes --config numberdesk.yaml --limit 20 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChanges(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Cache, "cache", "", "path to the cache database (overrides the config file)")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 50, "maximum entries to show (0 for all)")

	return cmd
}

func runChanges(opts *ChangesOptions, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	cfg := config.Default()
	if opts.ConfigPath != "" {
		var err error
		if cfg, err = config.Load(opts.ConfigPath); err != nil {
			return WrapExitError(ExitCommandError, "invalid configuration", err)
		}
	}
	if opts.Cache != "" {
		cfg.Cache = opts.Cache
	}
	if cfg.Cache == "" {
		return NewExitError(ExitCommandError, "no cache configured: set cache in the config file or pass --cache")
	}

	st, err := store.Open(cfg.Cache)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open cache", err)
	}
	defer st.Close()

	changes, err := st.ListChanges(cmdContext(cmd), opts.Limit)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to read changes", err)
	}

	if out.JSON() {
		return out.Success(changes)
	}
	return writeChanges(out.Writer, changes)
}

func writeChanges(w io.Writer, changes []store.Change) error {
	if len(changes) == 0 {
		_, err := fmt.Fprintln(w, "No changes recorded.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tROW\tMSISDN\tCHANGE\tOUTCOME\tERROR")
	for _, c := range changes {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s -> %s\t%s\t%s\n",
			c.CreatedAt.Format(time.RFC3339),
			c.RowIndex,
			record.DisplayMSISDN(c.MSISDN),
			c.OldStatus, c.NewStatus,
			c.Outcome,
			c.Error,
		)
	}
	return tw.Flush()
}
