package main

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/mattjoyce/clerk-sync/internal/config"
	"github.com/mattjoyce/clerk-sync/internal/users"
)

var (
	styleOK     = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
	styleError  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
	styleWarn   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00"))
	styleHeader = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#61AFEF"))
	styleDim    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

func printCheckResult(w io.Writer, cfg *config.Config, result *config.CheckResult) {
	fmt.Fprintln(w, styleHeader.Render("Configuration: "+cfg.SourcePath))
	fmt.Fprintf(w, "  listen  : %s\n", cfg.Webhook.Listen)
	fmt.Fprintf(w, "  path    : %s\n", cfg.Webhook.Path)
	fmt.Fprintf(w, "  state   : %s\n", cfg.State.Path)
	fmt.Fprintln(w)

	for _, e := range result.Errors {
		fmt.Fprintln(w, styleError.Render("✗ ")+e)
	}
	for _, warn := range result.Warnings {
		fmt.Fprintln(w, styleWarn.Render("! ")+warn)
	}

	if result.Passed {
		fmt.Fprintln(w, styleOK.Render("✓ ")+"Configuration check PASSED")
	} else {
		fmt.Fprintln(w, styleError.Render("✗ ")+"Configuration check FAILED")
	}
}

func printUserTable(w io.Writer, all []*users.User) {
	if len(all) == 0 {
		fmt.Fprintln(w, styleDim.Render("No users synced yet"))
		return
	}

	fmt.Fprintln(w, styleHeader.Render(fmt.Sprintf("%-32s %-32s %s", "EXTERNAL ID", "EMAIL", "NAME")))
	for _, u := range all {
		fmt.Fprintf(w, "%-32s %-32s %s\n", u.ExternalID, u.Email, u.Name)
	}
	fmt.Fprintln(w, styleDim.Render(fmt.Sprintf("%d user(s)", len(all))))
}

func printUser(w io.Writer, u *users.User) {
	fmt.Fprintln(w, styleHeader.Render("User "+u.ExternalID))
	fmt.Fprintf(w, "ID          : %s\n", u.ID)
	fmt.Fprintf(w, "Email       : %s\n", u.Email)
	fmt.Fprintf(w, "Name        : %s\n", u.Name)
	if u.ImageURL != "" {
		fmt.Fprintf(w, "Image       : %s\n", u.ImageURL)
	}
	fmt.Fprintf(w, "Created     : %s\n", u.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "Updated     : %s\n", u.UpdatedAt.Format(time.RFC3339))
}
