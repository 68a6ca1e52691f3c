package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/numberdesk/internal/desk"
	"github.com/roach88/numberdesk/internal/query"
	"github.com/roach88/numberdesk/internal/record"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Search   string
	Sort     string
	Desc     bool
	PageSize string
	Page     int
}

// ListResult is the JSON payload of the list command.
type ListResult struct {
	query.Result
	Stale bool `json:"stale"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Search, sort and page through the records",
		Long: `Fetch the records once and print one page of them.

Search terms are whitespace separated and must all match. A term of the
form category:number matches records whose category contains the first
part and whose number contains the second.

The ROW column is the record's index in the full sequence; pass it to
set-status.

Example:
  numberdesk list --search gold --sort msisdn
  numberdesk list --search "gold:501" --page-size all --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Search, "search", "s", "", "search text")
	cmd.Flags().StringVar(&opts.Sort, "sort", "", "column to sort by (e.g. msisdn, category, owner)")
	cmd.Flags().BoolVar(&opts.Desc, "desc", false, "sort descending")
	cmd.Flags().StringVar(&opts.PageSize, "page-size", "", "rows per page, or \"all\" (default from config)")
	cmd.Flags().IntVar(&opts.Page, "page", 1, "page number")

	return cmd
}

func (o *ListOptions) params(defaultSize query.PageSize) (query.Params, error) {
	p := query.Params{Search: o.Search, PageSize: defaultSize, Page: o.Page}

	field, err := record.ParseField(o.Sort)
	if err != nil {
		return query.Params{}, err
	}
	if field != record.FieldNone {
		p.Sort = query.SortKey{Field: field, Direction: query.Asc}
		if o.Desc {
			p.Sort.Direction = query.Desc
		}
	}

	if o.PageSize != "" {
		if p.PageSize, err = query.ParsePageSize(o.PageSize); err != nil {
			return query.Params{}, err
		}
	}
	if o.Page < 1 {
		return query.Params{}, fmt.Errorf("invalid page %d: must be at least 1", o.Page)
	}
	return p, nil
}

func runList(opts *ListOptions, cmd *cobra.Command) error {
	out := opts.formatter(cmd)

	cfg, err := opts.resolveConfig()
	if err != nil {
		return err
	}
	params, err := opts.params(cfg.PageSize)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid arguments", err)
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
	if err := loadOrRestore(cmdContext(cmd), d); err != nil {
		_ = out.Error(ErrCodeFetchFailed, desk.MsgLoadFailed, err.Error())
		return WrapExitError(ExitFailure, "failed to load records", err)
	}

	result := ListResult{Result: d.Query(params), Stale: d.Status().Stale}
	if out.JSON() {
		return out.Success(result)
	}
	return writeTable(out.Writer, params, result)
}

// loadOrRestore fetches the records, falling back to the cached snapshot
// when the record store is unreachable.
func loadOrRestore(ctx context.Context, d *desk.Desk) error {
	err := d.Load(ctx)
	if err == nil {
		return nil
	}
	if restoreErr := d.Restore(ctx); restoreErr != nil || !d.Status().Stale {
		return err
	}
	slog.Warn("record store unreachable, using cached snapshot", "error", err)
	return nil
}

var tableFields = []record.Field{
	record.FieldMSISDN,
	record.FieldCategory,
	record.FieldCallCenterStatus,
	record.FieldBackOfficeStatus,
	record.FieldAssignDate,
	record.FieldDate,
	record.FieldOwner,
}

func writeTable(w io.Writer, p query.Params, res ListResult) error {
	if res.Stale {
		fmt.Fprintln(w, "(showing cached data)")
	}
	if p.Search != "" {
		fmt.Fprintf(w, "%d results\n", res.Matched)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprint(tw, "ROW")
	for _, f := range tableFields {
		fmt.Fprintf(tw, "\t%s", strings.ToUpper(f.Header()))
	}
	fmt.Fprintln(tw)
	for _, row := range res.Rows {
		fmt.Fprintf(tw, "%d", row.Index)
		for _, f := range tableFields {
			fmt.Fprintf(tw, "\t%s", row.Record.DisplayValue(f))
		}
		fmt.Fprintln(tw)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	from, to, of := res.Range()
	if res.PageSize.IsAll() {
		fmt.Fprintf(w, "Showing %d entries\n", of)
		return nil
	}
	_, err := fmt.Fprintf(w, "Showing %d to %d of %d entries (page %d of %d)\n", from, to, of, res.Page, res.TotalPages)
	return err
}
