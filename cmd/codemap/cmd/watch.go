package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/codemap-dev/codemap/internal/watch"
	"github.com/codemap-dev/codemap/pkg/engine"
)

func newWatchCmd() *cobra.Command {
	var flagDebounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep the index fresh as files change",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, _, err := loadEngine()
			if err != nil {
				return err
			}

			w := watch.New(flagRoot, eng, flagDebounce)
			w.OnRebuild = func(res *engine.BuildResult, err error) {
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "rebuild failed: %s\n", err)
					return
				}
				fmt.Fprintf(cmd.OutOrStdout(), "index updated: %d files (%d added, %d changed, %d deleted)\n",
					res.State.TotalDocs(), res.Stats.Added, res.Stats.Changed, res.Stats.Deleted)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "watching %s\n", flagRoot)
			return w.Run(cmd.Context())
		},
	}

	cmd.Flags().DurationVar(&flagDebounce, "debounce", watch.DefaultDebounce, "quiet period before reindexing")
	return cmd
}
