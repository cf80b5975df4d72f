package main

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pxsearch/internal/logger"
	"github.com/kailas-cloud/pxsearch/internal/usecase/health"
)

func newStatusCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status [database...]",
		Short: "Show the index state of databases",
		Long: `Status opens the index of each database read-only and reports ok,
not_indexed, locked (a writer session is running) or error. Without
arguments every database under the base directory is checked.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(global)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			ctx := logger.ContextWithLogger(commandContext(cmd), a.logger.With(zap.String("command", "status")))
			report, err := health.New(a.provider).Check(ctx, args, "")
			if err != nil {
				return err
			}
			return printStatus(cmd, report)
		},
	}
}

func printStatus(cmd *cobra.Command, report health.Report) error {
	names := make([]string, 0, len(report.Checks))
	for name := range report.Checks {
		names = append(names, name)
	}
	sort.Strings(names)

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATABASE\tINDEX")
	for _, name := range names {
		fmt.Fprintf(tw, "%s\t%s\n", name, report.Checks[name])
	}
	fmt.Fprintf(tw, "\nstatus: %s\n", report.Status)
	if err := tw.Flush(); err != nil {
		return err
	}
	if report.Status == health.Unhealthy {
		return fmt.Errorf("index status %s", report.Status)
	}
	return nil
}
