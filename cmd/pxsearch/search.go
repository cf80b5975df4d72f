package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pxsearch/internal/domain/search/operator"
	"github.com/kailas-cloud/pxsearch/internal/domain/search/result"
	"github.com/kailas-cloud/pxsearch/internal/logger"
	"github.com/kailas-cloud/pxsearch/internal/usecase/search"
)

type searchOptions struct {
	database string
	filter   string
	limit    int
	operator string
	jsonOut  bool
}

func newSearchCmd(global *globalOptions) *cobra.Command {
	opts := &searchOptions{}

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search the index of a database",
		Long: `Search runs a free-text query against the index of a database.

The query supports AND, OR, NOT, +term, -term, "phrases", prefix* terms,
(groups) and field:term. Terms without an operator are joined with the
default operator (--operator, or search.default_operator).`,
		Example: `  pxsearch search -d ssd population
  pxsearch search -d ssd --filter title,values "housing AND region:stockholm"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, global, opts, strings.Join(args, " "))
		},
	}

	cmd.Flags().StringVarP(&opts.database, "database", "d", "", "Database identifier")
	cmd.Flags().StringVar(&opts.filter, "filter", "", "Comma-separated fields to search instead of the defaults")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "Maximum number of results (0 = configured default)")
	cmd.Flags().StringVar(&opts.operator, "operator", "", "Default operator: OR or AND")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Output results as JSON")
	_ = cmd.MarkFlagRequired("database")
	return cmd
}

func runSearch(cmd *cobra.Command, global *globalOptions, opts *searchOptions, text string) error {
	a, err := newApp(global)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	ctx := logger.ContextWithLogger(commandContext(cmd), a.logger.With(zap.String("command", "search")))
	resp, err := a.search().Search(ctx, search.Request{
		Database: opts.database,
		Text:     text,
		Filter:   opts.filter,
		Limit:    opts.limit,
		Operator: operator.Operator(opts.operator),
	})
	if err != nil {
		return err
	}

	if opts.jsonOut {
		return writeJSON(cmd.OutOrStdout(), resp)
	}
	return writeTable(cmd.OutOrStdout(), resp)
}

// searchOutput is the JSON shape of a search response.
type searchOutput struct {
	Status  result.Status  `json:"status"`
	Count   int            `json:"count"`
	Results []recordOutput `json:"results"`
}

type recordOutput struct {
	Path      string  `json:"path"`
	Table     string  `json:"table"`
	Title     string  `json:"title"`
	Score     float64 `json:"score"`
	Published string  `json:"published,omitempty"`
}

func toOutput(resp search.Response) searchOutput {
	out := searchOutput{
		Status:  resp.Status,
		Count:   len(resp.Records),
		Results: make([]recordOutput, 0, len(resp.Records)),
	}
	for i := range resp.Records {
		r := &resp.Records[i]
		rec := recordOutput{Path: r.Path(), Table: r.Table(), Title: r.Title(), Score: r.Score()}
		if r.HasPublished() {
			rec.Published = r.Published().Format(time.RFC3339)
		}
		out.Results = append(out.Results, rec)
	}
	return out
}

func writeJSON(w io.Writer, resp search.Response) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(toOutput(resp))
}

func writeTable(w io.Writer, resp search.Response) error {
	if resp.Status == result.NotIndexed {
		_, err := fmt.Fprintln(w, "database is not indexed")
		return err
	}
	if len(resp.Records) == 0 {
		_, err := fmt.Fprintln(w, "no results")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SCORE\tPATH\tTABLE\tPUBLISHED\tTITLE")
	for _, rec := range toOutput(resp).Results {
		fmt.Fprintf(tw, "%.3f\t%s\t%s\t%s\t%s\n", rec.Score, rec.Path, rec.Table, rec.Published, rec.Title)
	}
	return tw.Flush()
}
