package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Life Quest theme (CLI + TUI).

const (
	IconStar  = "🌟"
	IconMedal = "🏅"
	IconDone  = "✅"
	IconGift  = "🎁"
	IconParty = "🎉"
	IconTools = "🛠️"
	IconChart = "📊"
	IconReset = "🔄"
	IconTrash = "🗑️"
	IconPlus  = "➕"
	IconWarn  = "⚠️"
	IconError = "❌"
	IconLock  = "🔒"
)

var (
	cPrimary = lipgloss.Color("63")  // blue
	cAccent  = lipgloss.Color("205") // magenta
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
	SelectedRow = lipgloss.NewStyle().Bold(true).Foreground(cGold).Background(cPrimary)
	ActiveTab   = lipgloss.NewStyle().Bold(true).Foreground(cGold).Underline(true)
	InactiveTab = lipgloss.NewStyle().Foreground(cMuted)
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

// TotalPoints renders the points header, with the low-balance warning under it when low is set.
func TotalPoints(points int, low bool) string {
	line := Gold.Render(fmt.Sprintf("%s Total Points: %d", IconMedal, points))
	if low {
		line += "\n" + LowBalanceWarning()
	}
	return line
}

func LowBalanceWarning() string {
	return Warn.Render(IconWarn + " You have low points! Complete more tasks or redeem fewer rewards.")
}

func HabitLabel(name string, points int) string {
	return fmt.Sprintf("%s %s", name, Muted.Render(fmt.Sprintf("(+%d pts)", points)))
}

func RewardLabel(name string, cost int) string {
	return fmt.Sprintf("%s %s", name, Muted.Render(fmt.Sprintf("(-%d pts)", cost)))
}

func Checkbox(done bool) string {
	if done {
		return Good.Render("[x]")
	}
	return "[ ]"
}
