package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/trellishq/trellis/internal/client"
)

var updateCmd = &cobra.Command{
	Use:     "update <node-id>",
	Short:   "Update node fields",
	GroupID: "nodes",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		req := &client.UpdateNodeRequest{UpdatedBy: actor}

		if cmd.Flags().Changed("title") {
			v, _ := cmd.Flags().GetString("title")
			req.Title = &v
		}
		if cmd.Flags().Changed("description") {
			v, _ := cmd.Flags().GetString("description")
			req.Description = &v
		}
		if cmd.Flags().Changed("type") {
			v, _ := cmd.Flags().GetString("type")
			req.Type = &v
		}
		if cmd.Flags().Changed("status") {
			v, _ := cmd.Flags().GetString("status")
			req.Status = &v
		}
		if cmd.Flags().Changed("priority") {
			v, _ := cmd.Flags().GetInt("priority")
			req.Priority = &v
		}
		if cmd.Flags().Changed("owner") {
			req.Owners, _ = cmd.Flags().GetStringSlice("owner")
		}
		if cmd.Flags().Changed("team") {
			req.Teams, _ = cmd.Flags().GetStringSlice("team")
		}
		if cmd.Flags().Changed("due") {
			due, _ := cmd.Flags().GetString("due")
			t, err := time.Parse(time.RFC3339, due)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: invalid --due %q: %v\n", due, err)
				os.Exit(1)
			}
			req.DueAt = &t
		}

		node, err := api.UpdateNode(context.Background(), id, req)
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
	updateCmd.Flags().String("title", "", "new title")
	updateCmd.Flags().StringP("description", "d", "", "new description")
	updateCmd.Flags().StringP("type", "t", "", "new type")
	updateCmd.Flags().StringP("status", "s", "", "new status (todo, doing, done)")
	updateCmd.Flags().IntP("priority", "p", 0, "new priority")
	updateCmd.Flags().StringSlice("owner", nil, "replace owners (repeatable)")
	updateCmd.Flags().StringSlice("team", nil, "replace teams (repeatable)")
	updateCmd.Flags().String("due", "", "new due date (RFC3339)")
}
