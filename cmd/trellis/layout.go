package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var layoutCmd = &cobra.Command{
	Use:     "layout <project-id>",
	Short:   "Compute grid positions for a project's nodes",
	GroupID: "graph",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		columns, _ := cmd.Flags().GetInt("columns")

		resp, err := api.GetLayout(context.Background(), args[0], columns)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(resp)
			return nil
		}

		ids := make([]string, 0, len(resp.Positions))
		for id := range resp.Positions {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool {
			a, b := resp.Positions[ids[i]], resp.Positions[ids[j]]
			if a.Y != b.Y {
				return a.Y < b.Y
			}
			if a.X != b.X {
				return a.X < b.X
			}
			return ids[i] < ids[j]
		})

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tX\tY")
		for _, id := range ids {
			p := resp.Positions[id]
			fmt.Fprintf(w, "%s\t%d\t%d\n", id, p.X, p.Y)
		}
		w.Flush()
		fmt.Printf("\nnode size %dx%d\n", resp.NodeWidth, resp.NodeHeight)
		return nil
	},
}

func init() {
	layoutCmd.Flags().Int("columns", 0, "grid columns (0 uses the server default)")
}
