package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:     "events <node-id>",
	Short:   "Show the event history of a node",
	GroupID: "nodes",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		evts, err := api.GetEvents(context.Background(), args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(evts)
			return nil
		}
		if len(evts) == 0 {
			fmt.Println("No events found.")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TOPIC\tACTOR\tCREATED_AT")
		for _, e := range evts {
			fmt.Fprintf(w, "%s\t%s\t%s\n", e.Topic, e.Actor, fmtTime(e.CreatedAt))
		}
		w.Flush()
		return nil
	},
}

var notificationsCmd = &cobra.Command{
	Use:     "notifications <owner>",
	Short:   "List unblock notifications for an owner",
	GroupID: "nodes",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		notifs, err := api.ListNotifications(context.Background(), args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(notifs)
			return nil
		}
		if len(notifs) == 0 {
			fmt.Println("No notifications.")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NODE\tTITLE\tMESSAGE\tCREATED_AT")
		for _, n := range notifs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", n.NodeID, n.Title, n.Message, fmtTime(n.CreatedAt))
		}
		w.Flush()
		return nil
	},
}
