package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/trellishq/trellis/internal/client"
)

var createCmd = &cobra.Command{
	Use:     "create <title>",
	Short:   "Create a new node",
	GroupID: "nodes",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title := args[0]

		project, _ := cmd.Flags().GetString("project")
		description, _ := cmd.Flags().GetString("description")
		nodeType, _ := cmd.Flags().GetString("type")
		status, _ := cmd.Flags().GetString("status")
		priority, _ := cmd.Flags().GetInt("priority")
		owners, _ := cmd.Flags().GetStringSlice("owner")
		teams, _ := cmd.Flags().GetStringSlice("team")
		due, _ := cmd.Flags().GetString("due")

		req := &client.CreateNodeRequest{
			ProjectID:   project,
			Type:        nodeType,
			Title:       title,
			Description: description,
			Status:      status,
			Priority:    priority,
			Owners:      owners,
			Teams:       teams,
			CreatedBy:   actor,
		}
		if due != "" {
			t, err := time.Parse(time.RFC3339, due)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: invalid --due %q: %v\n", due, err)
				os.Exit(1)
			}
			req.DueAt = &t
		}

		node, err := api.CreateNode(context.Background(), req)
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

func init() {
	createCmd.Flags().String("project", "", "project the node belongs to (required)")
	createCmd.Flags().StringP("description", "d", "", "node description")
	createCmd.Flags().StringP("type", "t", "task", "node type (task, decision, blocker, info_request)")
	createCmd.Flags().StringP("status", "s", "", "initial status (defaults to todo)")
	createCmd.Flags().IntP("priority", "p", 0, "node priority")
	createCmd.Flags().StringSlice("owner", nil, "owner (repeatable)")
	createCmd.Flags().StringSlice("team", nil, "team (repeatable)")
	createCmd.Flags().String("due", "", "due date (RFC3339)")
	_ = createCmd.MarkFlagRequired("project")
}
