package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var readyCmd = &cobra.Command{
	Use:     "ready <project-id>",
	Short:   "List nodes that are unblocked and ready to start",
	GroupID: "graph",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := api.GetReady(context.Background(), args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(resp.Nodes)
		} else {
			printNodeListTable(resp.Nodes, resp.Total)
		}
		return nil
	},
}
