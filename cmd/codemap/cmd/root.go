// Package cmd provides the CLI commands for codemap.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/codemap-dev/codemap/internal/config"
	"github.com/codemap-dev/codemap/internal/logging"
	"github.com/codemap-dev/codemap/pkg/engine"
	"github.com/codemap-dev/codemap/pkg/version"
)

var (
	flagRoot    string
	flagVerbose bool
	flagLogJSON bool
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "codemap",
		Short: "Rank the files of a codebase by relevance",
		Long: `codemap indexes a codebase and ranks its files for a query by
fusing text relevance, structural heuristics, import-graph centrality,
and git recency. The ranked selection fits a byte or token budget, so
the output can feed a context window directly.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logCfg := logging.DefaultConfig()
			if flagVerbose {
				logCfg.Level = "debug"
			}
			logCfg.JSON = flagLogJSON
			logging.Setup(logCfg)
		},
	}

	cmd.PersistentFlags().StringVarP(&flagRoot, "root", "C", ".", "project root directory")
	cmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().BoolVar(&flagLogJSON, "log-json", false, "log in JSON format")

	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newQueryCmd())
	cmd.AddCommand(newGraphCmd())
	cmd.AddCommand(newWatchCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// Execute runs the CLI.
func Execute() error {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return err
	}
	return nil
}

// loadEngine builds an Engine from the root flag and project config.
func loadEngine() (*engine.Engine, *config.Config, error) {
	cfg, err := config.Load(flagRoot)
	if err != nil {
		return nil, nil, err
	}
	eng, err := engine.New(flagRoot, cfg)
	if err != nil {
		return nil, nil, err
	}
	return eng, cfg, nil
}
