package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/trellishq/trellis/internal/model"
	"github.com/trellishq/trellis/internal/ui"
)

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func fmtTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}

func printNodeTable(n *model.Node) {
	fmt.Printf("ID:          %s\n", n.ID)
	fmt.Printf("Project:     %s\n", n.ProjectID)
	fmt.Printf("Title:       %s\n", n.Title)
	fmt.Printf("Type:        %s\n", n.Type)
	fmt.Printf("Status:      %s\n", renderStatus(string(n.Status)))
	fmt.Printf("Priority:    %d\n", n.Priority)
	if n.Description != "" {
		fmt.Printf("Description: %s\n", n.Description)
	}
	if len(n.Owners) > 0 {
		fmt.Printf("Owners:      %s\n", strings.Join(n.Owners, ", "))
	}
	if len(n.Teams) > 0 {
		fmt.Printf("Teams:       %s\n", strings.Join(n.Teams, ", "))
	}
	if n.DueAt != nil {
		fmt.Printf("Due At:      %s\n", fmtTime(*n.DueAt))
	}
	if n.CompletedAt != nil {
		fmt.Printf("Completed:   %s\n", fmtTime(*n.CompletedAt))
	}
	if n.CreatedBy != "" {
		fmt.Printf("Created By:  %s\n", n.CreatedBy)
	}
	fmt.Printf("Created At:  %s\n", fmtTime(n.CreatedAt))
	fmt.Printf("Updated At:  %s\n", fmtTime(n.UpdatedAt))
	if len(n.Edges) > 0 {
		fmt.Println("Edges:")
		for _, e := range n.Edges {
			fmt.Printf("  %s %s\n", ui.RenderMuted(string(e.Relation)), e.To)
		}
	}
	if len(n.Requests) > 0 {
		fmt.Println("Requests:")
		for _, r := range n.Requests {
			fmt.Printf("  %s [%s] %s\n", r.ID, r.Status, r.Question)
		}
	}
}

func printNodeListTable(nodes []*model.Node, total int) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tTYPE\tPRIORITY\tTITLE\tOWNERS")
	for _, n := range nodes {
		title := n.Title
		if len(title) > 50 {
			title = title[:47] + "..."
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			n.ID,
			n.Status,
			n.Type,
			n.Priority,
			title,
			strings.Join(n.Owners, ","),
		)
	}
	w.Flush()
	fmt.Printf("\n%d nodes (%d total)\n", len(nodes), total)
}

func printRequestTable(r *model.Request) {
	fmt.Printf("ID:          %s\n", r.ID)
	fmt.Printf("Node:        %s\n", r.NodeID)
	fmt.Printf("Status:      %s\n", r.Status)
	fmt.Printf("Question:    %s\n", r.Question)
	if r.Response != "" {
		fmt.Printf("Response:    %s\n", r.Response)
	}
	if r.AssignedTo != "" {
		fmt.Printf("Assigned To: %s\n", r.AssignedTo)
	}
	if r.TeamID != "" {
		fmt.Printf("Team:        %s\n", r.TeamID)
	}
	if r.CreatedBy != "" {
		fmt.Printf("Created By:  %s\n", r.CreatedBy)
	}
	fmt.Printf("Created At:  %s\n", fmtTime(r.CreatedAt))
	fmt.Printf("Updated At:  %s\n", fmtTime(r.UpdatedAt))
}

// renderStatus colors actionable statuses so they stand out in terminals.
func renderStatus(s string) string {
	switch s {
	case "doing":
		return ui.RenderAccent(s)
	case "blocked":
		return ui.RenderAlert(s)
	case "waiting":
		return ui.RenderMuted(s)
	default:
		return s
	}
}
