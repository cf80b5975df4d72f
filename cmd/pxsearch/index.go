package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	dombatch "github.com/kailas-cloud/pxsearch/internal/domain/batch"
	"github.com/kailas-cloud/pxsearch/internal/logger"
	"github.com/kailas-cloud/pxsearch/internal/usecase/indexing"
)

type indexOptions struct {
	database string
	file     string
	create   bool
	mode     string
	verbose  bool
}

func newIndexCmd(global *globalOptions) *cobra.Command {
	opts := &indexOptions{}

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Index table metadata into a database index",
		Long: `Index reads table metadata from a YAML file and writes one document per
table into the index of the given database. The whole file is one session:
it is committed when every table was written and rolled back on the first
write error or on interrupt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runIndex(cmd, global, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.database, "database", "d", "", "Database identifier")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "YAML file with the datasets to index")
	cmd.Flags().BoolVar(&opts.create, "create", false, "Discard the existing index and build a new one")
	cmd.Flags().StringVar(&opts.mode, "mode", string(indexing.ModeUpdate), "Write mode: update or add")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "List the outcome of every dataset")
	_ = cmd.MarkFlagRequired("database")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runIndex(cmd *cobra.Command, global *globalOptions, opts *indexOptions) error {
	datasets, err := loadDatasets(opts.file)
	if err != nil {
		return err
	}

	a, err := newApp(global)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.ContextWithLogger(ctx, a.logger.With(zap.String("command", "index")))

	report, err := a.indexing().Run(ctx, indexing.Request{
		Database:  opts.database,
		Datasets:  datasets,
		Mode:      indexing.Mode(opts.mode),
		CreateNew: opts.create,
	})
	printReport(cmd, report, opts.verbose)
	return err
}

func printReport(cmd *cobra.Command, report indexing.Report, verbose bool) {
	out := cmd.OutOrStdout()
	if verbose {
		for _, r := range report.Results {
			if r.Status() == dombatch.StatusOK {
				fmt.Fprintf(out, "%-8s %s\n", r.Status(), r.ID())
				continue
			}
			fmt.Fprintf(out, "%-8s %s: %v\n", r.Status(), r.ID(), r.Err())
		}
	}

	state := "rolled back"
	if report.Committed {
		state = "committed"
	}
	fmt.Fprintf(out, "indexed %d, skipped %d, failed %d (%s)\n",
		report.Summary.OK, report.Summary.Skipped, report.Summary.Failed, state)
}

// commandContext returns the command context, or Background when none was set.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
