package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/numberdesk/internal/desk"
	"github.com/roach88/numberdesk/internal/record"
	"github.com/roach88/numberdesk/internal/store"
)

// SetStatusOptions holds flags for the set-status command.
type SetStatusOptions struct {
	*RootOptions
	Yes bool
}

// NewSetStatusCommand creates the set-status command.
func NewSetStatusCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SetStatusOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "set-status <row> <Open|Reserved>",
		Short: "Change a record's call-center status",
		Long: `Change the call-center status of one record.

<row> is the record's index in the full sequence, as printed in the ROW
column of list. Reserving a number asks for confirmation first; --yes
answers it in advance.

Example:
  numberdesk set-status 42 Reserved
  numberdesk set-status 42 Open --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetStatus(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}

func runSetStatus(opts *SetStatusOptions, rowArg, statusArg string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	row, err := strconv.Atoi(rowArg)
	if err != nil || row < 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid row %q: must be a non-negative integer", rowArg))
	}
	status, err := record.ParseStatus(statusArg)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid arguments", err)
	}

	cfg, err := opts.resolveConfig()
	if err != nil {
		return err
	}
	cache, err := openCache(cfg)
	if err != nil {
		return err
	}
	if cache != nil {
		defer cache.Close()
	}
	d, err := opts.newDesk(cfg, cache)
	if err != nil {
		return err
	}

	ctx := cmdContext(cmd)
	// Row indexes refer to the current sequence, so a cached snapshot is
	// not good enough here.
	if err := d.Load(ctx); err != nil {
		_ = out.Error(ErrCodeFetchFailed, desk.MsgLoadFailed, err.Error())
		return WrapExitError(ExitFailure, "failed to load records", err)
	}

	confirm := desk.Confirmed(true)
	if !opts.Yes {
		confirm = promptConfirmer(cmd.InOrStdin(), out.GetErrWriter())
	}

	change, err := d.RequestStatusChange(ctx, row, status, confirm)
	switch {
	case err == nil:
	case errors.Is(err, desk.ErrRowNotFound):
		return WrapExitError(ExitCommandError, "invalid row", err)
	case errors.Is(err, desk.ErrDeclined):
		_ = out.Error(ErrCodeDeclined, "status change declined", change)
		return NewExitError(ExitFailure, "status change declined")
	default:
		_ = out.Error(ErrCodeUpdateFailed, desk.MsgUpdateFailed, change)
		return WrapExitError(ExitFailure, desk.MsgUpdateFailed, err)
	}

	if out.JSON() {
		return out.Success(change)
	}
	return out.Success(describeChange(change))
}

// promptConfirmer asks on w and reads a y/N answer from r.
func promptConfirmer(r io.Reader, w io.Writer) desk.Confirmer {
	reader := bufio.NewReader(r)
	return func(_ context.Context, req desk.ChangeRequest) bool {
		fmt.Fprintf(w, "Row %d (%s): are you sure you want to change the status to %s? [y/N] ",
			req.Index, record.DisplayMSISDN(req.Record.MSISDN), req.NewStatus)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(w)
			return false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		default:
			return false
		}
	}
}

func describeChange(c store.Change) string {
	return fmt.Sprintf("Row %d (%s): %s -> %s",
		c.RowIndex, record.DisplayMSISDN(c.MSISDN), c.OldStatus, c.NewStatus)
}
