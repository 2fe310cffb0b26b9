package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/casaops/taskwright/internal/domain/task"
)

var (
	pendingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	runningStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Bold(true)
	completedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	failedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	headingStyle   = lipgloss.NewStyle().Bold(true)
)

// renderStatus renders a task status as a colored label.
func renderStatus(s task.Status) string {
	label := strings.ToUpper(string(s))
	switch s {
	case task.StatusPending:
		return pendingStyle.Render(label)
	case task.StatusRunning:
		return runningStyle.Render(label)
	case task.StatusCompleted:
		return completedStyle.Render(label)
	case task.StatusFailed:
		return failedStyle.Render(label)
	default:
		return label
	}
}

// renderTime renders a timestamp, or a dash when it is zero.
func renderTime(t time.Time) string {
	if t.IsZero() {
		return dimStyle.Render("-")
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

// shortID abbreviates a UUID for list output.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// heading renders a bold section heading.
func heading(s string) string {
	return headingStyle.Render(s)
}

// renderOutcome renders a success flag.
func renderOutcome(success bool) string {
	if success {
		return completedStyle.Render("OK")
	}
	return failedStyle.Render("FAILED")
}

// truncate shortens s to max runes for single-line table output.
func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return fmt.Sprintf("%s…", string(runes[:max-1]))
}
