package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/trellishq/trellis/internal/model"
)

var blockedCmd = &cobra.Command{
	Use:     "blocked <project-id>",
	Short:   "Show blocked nodes with their blocking reasons",
	GroupID: "graph",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := api.GetBlocked(context.Background(), args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(resp.Nodes)
			return nil
		}
		if len(resp.Nodes) == 0 {
			fmt.Println("No blocked nodes.")
			return nil
		}
		for _, b := range resp.Nodes {
			fmt.Printf("%s  %s [%s]\n", b.Node.ID, b.Node.Title, renderStatus(string(b.Display)))
			printReasons(b.Reasons)
		}
		return nil
	},
}

var blockingCmd = &cobra.Command{
	Use:     "blocking <node-id>",
	Short:   "Show why a node is blocked",
	GroupID: "graph",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reasons, err := api.GetBlocking(context.Background(), args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(reasons)
			return nil
		}
		if len(reasons) == 0 {
			fmt.Println("Not blocked.")
			return nil
		}
		printReasons(reasons)
		return nil
	},
}

func printReasons(reasons []model.BlockingReason) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, r := range reasons {
		if r.Kind == model.ReasonRequest {
			fmt.Fprintf(w, "  %s\t%s\t%s\n", r.Kind, r.RequestID, r.RequestStatus)
			continue
		}
		target := r.TargetID
		if r.TargetMissing {
			target += " (missing)"
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\n", r.Kind, target, r.TargetTitle)
	}
	w.Flush()
}
