package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/trellishq/trellis/internal/client"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List nodes",
	GroupID: "nodes",
	RunE: func(cmd *cobra.Command, args []string) error {
		project, _ := cmd.Flags().GetString("project")
		status, _ := cmd.Flags().GetStringSlice("status")
		nodeType, _ := cmd.Flags().GetStringSlice("type")
		owner, _ := cmd.Flags().GetString("owner")
		team, _ := cmd.Flags().GetString("team")
		search, _ := cmd.Flags().GetString("search")
		sort, _ := cmd.Flags().GetString("sort")
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		req := &client.ListNodesRequest{
			ProjectID: project,
			Status:    status,
			Type:      nodeType,
			Owner:     owner,
			Team:      team,
			Search:    search,
			Sort:      sort,
			Limit:     limit,
			Offset:    offset,
		}
		if cmd.Flags().Changed("priority") {
			priority, _ := cmd.Flags().GetInt("priority")
			req.Priority = &priority
		}

		resp, err := api.ListNodes(context.Background(), req)
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

func init() {
	listCmd.Flags().String("project", "", "filter by project")
	listCmd.Flags().StringSliceP("status", "s", nil, "filter by status (repeatable)")
	listCmd.Flags().StringSliceP("type", "t", nil, "filter by type (repeatable)")
	listCmd.Flags().String("owner", "", "filter by owner")
	listCmd.Flags().String("team", "", "filter by team")
	listCmd.Flags().IntP("priority", "p", 0, "filter by exact priority")
	listCmd.Flags().String("search", "", "search title and description")
	listCmd.Flags().String("sort", "", "sort field, prefix with - for descending")
	listCmd.Flags().Int("limit", 20, "maximum number of nodes to return")
	listCmd.Flags().Int("offset", 0, "offset for pagination")
}
