package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var doneCmd = &cobra.Command{
	Use:     "done <node-id>",
	Short:   "Mark a node done and run the unblock cascade",
	GroupID: "nodes",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := api.CompleteNode(context.Background(), args[0], actor)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(resp)
			return nil
		}
		printNodeTable(resp.Node)
		if len(resp.Notified) > 0 {
			fmt.Printf("\nNotified: %s\n", strings.Join(resp.Notified, ", "))
		}
		return nil
	},
}

var reopenCmd = &cobra.Command{
	Use:     "reopen <node-id>",
	Short:   "Reopen a completed node",
	GroupID: "nodes",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		node, err := api.ReopenNode(context.Background(), args[0], actor)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(node)
		} else {
			printNodeTable(node)
		}
		return nil
	},
}
