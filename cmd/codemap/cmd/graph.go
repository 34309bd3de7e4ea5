package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func newGraphCmd() *cobra.Command {
	var flagTop int

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Show import-graph centrality and edges",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, _, err := loadEngine()
			if err != nil {
				return err
			}

			state, err := eng.LoadOrBuild(cmd.Context())
			if err != nil {
				return err
			}

			type node struct {
				path  string
				score float64
			}
			nodes := make([]node, 0, len(state.Centrality))
			for p, s := range state.Centrality {
				nodes = append(nodes, node{p, s})
			}
			sort.Slice(nodes, func(i, j int) bool {
				if nodes[i].score != nodes[j].score {
					return nodes[i].score > nodes[j].score
				}
				return nodes[i].path < nodes[j].path
			})
			if flagTop > 0 && len(nodes) > flagTop {
				nodes = nodes[:flagTop]
			}

			out := cmd.OutOrStdout()
			for _, n := range nodes {
				fmt.Fprintf(out, "%.4f  %s\n", n.score, n.path)
				for _, to := range state.Edges[n.path] {
					fmt.Fprintf(out, "        -> %s\n", to)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&flagTop, "top", 20, "number of files to show (0 = all)")
	return cmd
}
