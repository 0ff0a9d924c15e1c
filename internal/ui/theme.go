package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Jupiter theme (CLI + TUI). Small on purpose: shared styles plus a few
// icons.

const (
	IconRocket  = "🚀"
	IconTask    = "📥"
	IconHabit   = "🔁"
	IconChore   = "🧹"
	IconPlan    = "🗺️"
	IconMetric  = "📈"
	IconPerson  = "🤝"
	IconBeach   = "🏖️"
	IconJournal = "📓"
	IconGear    = "⚙️"
	IconTrophy  = "🏆"
	IconDone    = "✅"
	IconWarn    = "⚠️"
	IconError   = "🧨"
	IconSearch  = "🔍"
)

var (
	cPrimary = lipgloss.Color("39")  // cyan-blue
	cAccent  = lipgloss.Color("141") // violet
	cGood    = lipgloss.Color("42")  // green
	cWarn    = lipgloss.Color("214") // orange
	cBad     = lipgloss.Color("196") // red
	cMuted   = lipgloss.Color("244") // gray
	cGold    = lipgloss.Color("220") // gold
)

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(cAccent)
	H2    = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Muted = lipgloss.NewStyle().Foreground(cMuted)
	Key   = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Good  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	Warn  = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
	Bad   = lipgloss.NewStyle().Bold(true).Foreground(cBad)
	Gold  = lipgloss.NewStyle().Bold(true).Foreground(cGold)

	Panel       = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(cMuted).Padding(0, 1)
	PanelTitle  = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	SelectedRow = lipgloss.NewStyle().Bold(true).Foreground(cGold).Background(cPrimary)
)

func Heading(icon string, title string) string {
	icon = strings.TrimSpace(icon)
	if icon != "" {
		icon += " "
	}
	return Title.Render(icon + title)
}

func LabelValue(label string, value any) string {
	return fmt.Sprintf("%s %v", Key.Render(label+":"), value)
}

// StatusText colors an inbox task or big plan status.
func StatusText(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "done":
		return Good.Render("done")
	case "not-done":
		return Bad.Render("not-done")
	case "in-progress":
		return H2.Render("in-progress")
	case "blocked":
		return Warn.Render("blocked")
	default:
		return Muted.Render(status)
	}
}

// SourceIcon maps an inbox task source to its glyph.
func SourceIcon(source string) string {
	switch source {
	case "habit":
		return IconHabit
	case "chore":
		return IconChore
	case "metric":
		return IconMetric
	case "person-catch-up", "person-birthday":
		return IconPerson
	case "big-plan":
		return IconPlan
	case "journal":
		return IconJournal
	case "working-mem-cleanup":
		return IconGear
	default:
		return IconTask
	}
}
