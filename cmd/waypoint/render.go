package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	agent "github.com/Protocol-Lattice/waypoint"
	"github.com/Protocol-Lattice/waypoint/src/conversation"
	"github.com/Protocol-Lattice/waypoint/src/observability"
	"github.com/Protocol-Lattice/waypoint/src/tools"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))
)

func renderReply(w io.Writer, res agent.Result, verbose bool) {
	fmt.Fprintln(w, res.Reply)
	if !verbose {
		return
	}
	trace := make([]string, 0, len(res.Turn.Trace))
	for _, st := range res.Turn.Trace {
		trace = append(trace, string(st))
	}
	meta := fmt.Sprintf("intent=%s tool_status=%s trace=%s", res.Intent, res.Turn.ToolStatus, strings.Join(trace, ">"))
	fmt.Fprintln(w, dimStyle.Render(meta))
}

func renderTools(w io.Writer, specs []tools.Spec) {
	fmt.Fprintln(w, titleStyle.Render("Tools"))
	for _, spec := range specs {
		status := successStyle.Render("enabled")
		if !spec.Enabled {
			status = errorStyle.Render("disabled")
		}
		fmt.Fprintf(w, "  %-13s %s\n", spec.Name, status)
		fmt.Fprintf(w, "  %s\n", dimStyle.Render(spec.Description))
	}
}

func renderReport(w io.Writer, report observability.Report) {
	fmt.Fprintln(w, titleStyle.Render("Status"))
	for _, c := range report.Checks {
		mark := successStyle.Render("✓")
		if !c.OK {
			mark = errorStyle.Render("✗")
		}
		fmt.Fprintf(w, "  %s %-20s %s\n", mark, c.Name, dimStyle.Render(c.Detail))
	}
}

func renderHistory(w io.Writer, entries []conversation.Entry) {
	fmt.Fprintln(w, titleStyle.Render("History"))
	if len(entries) == 0 {
		fmt.Fprintln(w, dimStyle.Render("  (empty)"))
		return
	}
	for _, e := range entries {
		who := string(e.Role)
		if e.ToolName != "" {
			who += ":" + e.ToolName
		}
		fmt.Fprintf(w, "  %s %s\n", dimStyle.Render(who+">"), e.Content)
	}
}
