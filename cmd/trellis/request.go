package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/trellishq/trellis/internal/client"
)

var requestCmd = &cobra.Command{
	Use:     "request",
	Short:   "Manage requests attached to nodes",
	GroupID: "graph",
}

var requestOpenCmd = &cobra.Command{
	Use:   "open <node-id> <question>",
	Short: "Open a request against a node",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		assignedTo, _ := cmd.Flags().GetString("assign")
		teamID, _ := cmd.Flags().GetString("team")

		req, err := api.OpenRequest(context.Background(), args[0], &client.OpenRequestRequest{
			Question:   args[1],
			AssignedTo: assignedTo,
			TeamID:     teamID,
			CreatedBy:  actor,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(req)
		} else {
			printRequestTable(req)
		}
		return nil
	},
}

var requestShowCmd = &cobra.Command{
	Use:   "show <request-id>",
	Short: "Show a request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := api.GetRequest(context.Background(), args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(req)
		} else {
			printRequestTable(req)
		}
		return nil
	},
}

var requestListCmd = &cobra.Command{
	Use:   "list <node-id>",
	Short: "List requests on a node",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reqs, err := api.ListRequests(context.Background(), args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(reqs)
			return nil
		}
		if len(reqs) == 0 {
			fmt.Println("No requests found.")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSTATUS\tASSIGNED_TO\tQUESTION")
		for _, r := range reqs {
			question := r.Question
			if len(question) > 60 {
				question = question[:57] + "..."
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.ID, r.Status, r.AssignedTo, question)
		}
		w.Flush()
		return nil
	},
}

// setRequestStatus builds the shared RunE for the respond/approve/close verbs.
func setRequestStatus(status string, withResponse bool) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		response := ""
		if withResponse {
			response = args[1]
		}

		req, err := api.UpdateRequestStatus(context.Background(), args[0], status, response)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(req)
		} else {
			printRequestTable(req)
		}
		return nil
	}
}

var requestRespondCmd = &cobra.Command{
	Use:   "respond <request-id> <response>",
	Short: "Record a response on an open request",
	Args:  cobra.ExactArgs(2),
	RunE:  setRequestStatus("responded", true),
}

var requestApproveCmd = &cobra.Command{
	Use:   "approve <request-id>",
	Short: "Approve a request",
	Args:  cobra.ExactArgs(1),
	RunE:  setRequestStatus("approved", false),
}

var requestCloseCmd = &cobra.Command{
	Use:   "close <request-id>",
	Short: "Close a request without approval",
	Args:  cobra.ExactArgs(1),
	RunE:  setRequestStatus("closed", false),
}

func init() {
	requestOpenCmd.Flags().String("assign", "", "user the request is assigned to")
	requestOpenCmd.Flags().String("team", "", "team the request is assigned to")

	requestCmd.AddCommand(requestOpenCmd)
	requestCmd.AddCommand(requestShowCmd)
	requestCmd.AddCommand(requestListCmd)
	requestCmd.AddCommand(requestRespondCmd)
	requestCmd.AddCommand(requestApproveCmd)
	requestCmd.AddCommand(requestCloseCmd)
}
