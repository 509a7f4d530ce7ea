package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var depCmd = &cobra.Command{
	Use:     "dep",
	Short:   "Manage edges between nodes",
	GroupID: "graph",
}

var depAddCmd = &cobra.Command{
	Use:   "add <from-id> <to-id>",
	Short: "Add an edge between nodes",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		relation, _ := cmd.Flags().GetString("relation")

		edge, err := api.AddEdge(context.Background(), args[0], args[1], relation, actor)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(edge)
		} else {
			fmt.Printf("From:        %s\n", edge.From)
			fmt.Printf("To:          %s\n", edge.To)
			fmt.Printf("Relation:    %s\n", edge.Relation)
			if edge.CreatedBy != "" {
				fmt.Printf("Created By:  %s\n", edge.CreatedBy)
			}
			fmt.Printf("Created At:  %s\n", fmtTime(edge.CreatedAt))
		}
		return nil
	},
}

var depRemoveCmd = &cobra.Command{
	Use:   "remove <from-id> <to-id>",
	Short: "Remove an edge between nodes",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		relation, _ := cmd.Flags().GetString("relation")

		if err := api.RemoveEdge(context.Background(), args[0], args[1], relation); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Removed edge")
		return nil
	},
}

var depListCmd = &cobra.Command{
	Use:   "list <node-id>",
	Short: "List outgoing edges of a node",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		edges, err := api.GetEdges(context.Background(), args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(edges)
			return nil
		}
		if len(edges) == 0 {
			fmt.Println("No edges found.")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TO\tRELATION\tCREATED_BY\tCREATED_AT")
		for _, e := range edges {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.To, e.Relation, e.CreatedBy, fmtTime(e.CreatedAt))
		}
		w.Flush()
		return nil
	},
}

func init() {
	depAddCmd.Flags().StringP("relation", "r", "depends_on", "edge relation (depends_on, approval_by, needs_info_from, handoff_to)")
	depRemoveCmd.Flags().StringP("relation", "r", "depends_on", "edge relation")

	depCmd.AddCommand(depAddCmd)
	depCmd.AddCommand(depRemoveCmd)
	depCmd.AddCommand(depListCmd)
}
