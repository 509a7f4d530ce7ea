package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:     "graph <project-id>",
	Short:   "Show the project graph with aggregate status counts",
	GroupID: "graph",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := api.GetGraph(context.Background(), args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(resp)
			return nil
		}

		fmt.Printf("Graph: %d nodes, %d edges\n", len(resp.Nodes), len(resp.Edges))
		if resp.Stats != nil {
			fmt.Printf("  Blocked: %d\n", resp.Stats.TotalBlocked)
			fmt.Printf("  Todo:    %d\n", resp.Stats.TotalTodo)
			fmt.Printf("  Doing:   %d\n", resp.Stats.TotalDoing)
			fmt.Printf("  Done:    %d\n", resp.Stats.TotalDone)
		}
		return nil
	},
}
