package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	cmerrors "github.com/codemap-dev/codemap/internal/errors"
	"github.com/codemap-dev/codemap/internal/output"
	"github.com/codemap-dev/codemap/pkg/engine"
)

func newQueryCmd() *cobra.Command {
	var (
		flagFormat    string
		flagExplain   bool
		flagAll       bool
		flagShallow   bool
		flagSignals   string
		flagMaxBytes  int64
		flagMaxTokens int64
		flagMinScore  float64
	)

	cmd := &cobra.Command{
		Use:   "query [terms...]",
		Short: "Rank files against a query and apply the budget",
		Long: `Scores every indexed file against the query, fuses the enabled
signals with reciprocal rank fusion, and prints the selection that fits
the configured budget. Builds the index first when none exists.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, cfg, err := loadEngine()
			if err != nil {
				return err
			}

			if flagSignals != "" {
				cfg.Signals.BM25F = false
				cfg.Signals.Heuristic = false
				cfg.Signals.Centrality = false
				cfg.Signals.Recency = false
				for _, name := range strings.Split(flagSignals, ",") {
					switch strings.TrimSpace(name) {
					case "bm25f":
						cfg.Signals.BM25F = true
					case "heuristic":
						cfg.Signals.Heuristic = true
					case "centrality":
						cfg.Signals.Centrality = true
					case "recency":
						cfg.Signals.Recency = true
					default:
						return cmerrors.ConfigError(fmt.Sprintf("unknown signal %q", name), nil)
					}
				}
			}
			if flagMaxBytes > 0 {
				cfg.Budget.MaxBytes = flagMaxBytes
			}
			if flagMaxTokens > 0 {
				cfg.Budget.MaxTokens = flagMaxTokens
			}
			if flagMinScore > 0 {
				cfg.Budget.MinScore = flagMinScore
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			query := strings.Join(args, " ")

			var scored []engine.ScoredFile
			if flagShallow {
				scored, err = eng.ScoreShallow(cmd.Context(), query)
				if err != nil {
					return err
				}
			} else {
				state, err := eng.LoadOrBuild(cmd.Context())
				if err != nil {
					return err
				}
				scored = eng.Score(cmd.Context(), query, state)
			}

			if !flagAll {
				scored = eng.Select(scored)
			}

			format := output.Detect(output.Format(flagFormat), os.Stdout)
			if err := output.Render(cmd.OutOrStdout(), format, scored, flagExplain); err != nil {
				return cmerrors.FileIOError("stdout", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&flagFormat, "format", "f", string(output.FormatAuto), "output format (human, json, jsonl, auto)")
	cmd.Flags().BoolVar(&flagExplain, "explain", false, "show per-signal ranks")
	cmd.Flags().BoolVar(&flagAll, "all", false, "print the full ranking, ignoring the budget")
	cmd.Flags().BoolVar(&flagShallow, "shallow", false, "score path names only, without an index")
	cmd.Flags().StringVar(&flagSignals, "signals", "", "comma-separated signals to use (default: all enabled)")
	cmd.Flags().Int64Var(&flagMaxBytes, "max-bytes", 0, "byte budget for the selection")
	cmd.Flags().Int64Var(&flagMaxTokens, "max-tokens", 0, "token budget for the selection")
	cmd.Flags().Float64Var(&flagMinScore, "min-score", 0, "drop files scoring below this")
	return cmd
}
