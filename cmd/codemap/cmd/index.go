package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codemap-dev/codemap/pkg/engine"
)

func newIndexCmd() *cobra.Command {
	var flagForce bool

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build or update the index",
		Long: `Scans the project, extracts chunks, and writes the index under
.codemap/. Reruns are incremental: only changed files are reprocessed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, _, err := loadEngine()
			if err != nil {
				return err
			}

			var res *engine.BuildResult
			if flagForce {
				res, err = eng.Rebuild(cmd.Context())
			} else {
				res, err = eng.BuildIndex(cmd.Context())
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "indexed %d files (%d added, %d changed, %d deleted, %d unchanged)\n",
				res.State.TotalDocs(), res.Stats.Added, res.Stats.Changed, res.Stats.Deleted, res.Stats.Unchanged)

			for _, w := range res.Warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&flagForce, "force", false, "rebuild from scratch, ignoring the existing index")
	return cmd
}
