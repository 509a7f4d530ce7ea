package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:     "status <project-id>",
	Short:   "Show computed statuses for every node in a project",
	GroupID: "graph",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		statuses, err := api.GetStatuses(context.Background(), args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(statuses)
			return nil
		}

		ids := make([]string, 0, len(statuses))
		for id := range statuses {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSTATUS\tDISPLAY")
		for _, id := range ids {
			s := statuses[id]
			fmt.Fprintf(w, "%s\t%s\t%s\n", id, s.Status, renderStatus(string(s.Display)))
		}
		w.Flush()
		return nil
	},
}
