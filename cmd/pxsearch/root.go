package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/pxsearch/internal/domain"
)

// Exit codes.
const (
	exitError = 1
	// exitTempFail tells schedulers that retrying later may succeed.
	exitTempFail = 75
)

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "pxsearch",
		Short: "Full-text index for statistical tables",
		Long: `pxsearch builds and queries a full-text index over the metadata of
statistical tables (titles, variables, values, codes, groupings, synonyms).

Configuration is read from config/<ENV>.yaml (ENV defaults to "local")
unless --config is given.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to a configuration file")
	root.PersistentFlags().StringVar(&opts.baseDir, "base-dir", "", "Override index.base_dir")
	root.PersistentFlags().StringVar(&opts.language, "language", "", "Override index.language")

	root.AddCommand(newIndexCmd(opts))
	root.AddCommand(newSearchCmd(opts))
	root.AddCommand(newStatusCmd(opts))
	root.AddCommand(newVersionCmd())
	return root
}

func exitCode(err error) int {
	if errors.Is(err, domain.ErrIndexLocked) {
		return exitTempFail
	}
	return exitError
}
