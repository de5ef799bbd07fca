package tui

import (
	"fmt"
	"strings"

	"lifequest/internal/engine"
	"lifequest/internal/ui"
)

func (m boardModel) View() string {
	if !m.loggedIn() {
		return ui.Panel.Render(m.auth.View()) + "\n" + m.statusLine() + "\n"
	}

	var b strings.Builder
	b.WriteString(ui.Heading(ui.IconStar, "Life Quest Habit") + "\n")
	if acct := m.gate.Account(); acct != nil {
		b.WriteString(ui.Muted.Render(fmt.Sprintf("Welcome, %s! Today is %s", acct.DisplayName(), m.snap.Date.Long())) + "\n")
	}
	b.WriteString(ui.TotalPoints(m.snap.TotalPoints, m.snap.LowBalance) + "\n\n")
	b.WriteString(m.tabBar() + "\n\n")

	switch m.tab {
	case tabHabits:
		b.WriteString(m.viewHabits())
	case tabRewards:
		b.WriteString(m.viewRewards())
	case tabCustomize:
		b.WriteString(m.viewCustomize())
	case tabProgress:
		b.WriteString(m.viewProgress())
	case tabReset:
		b.WriteString(m.viewReset())
	}

	b.WriteString("\n" + m.statusLine() + "\n")
	b.WriteString(ui.Muted.Render(m.helpLine()))
	if m.err != nil {
		b.WriteString("\n" + ui.Bad.Render("Error: "+m.err.Error()))
	}
	return b.String()
}

func (m boardModel) tabBar() string {
	parts := make([]string, 0, len(tabNames))
	for i, name := range tabNames {
		label := fmt.Sprintf("%d %s", i+1, name)
		if tab(i) == m.tab {
			parts = append(parts, ui.ActiveTab.Render(label))
		} else {
			parts = append(parts, ui.InactiveTab.Render(label))
		}
	}
	return strings.Join(parts, "  ")
}

func (m boardModel) row(idx int, text string) string {
	if idx == m.selected {
		return ui.SelectedRow.Render("> "+text) + "\n"
	}
	return "  " + text + "\n"
}

func (m boardModel) viewHabits() string {
	var b strings.Builder
	b.WriteString(ui.H2.Render(ui.IconDone+" Daily Tasks") + "\n")
	if len(m.snap.Habits) == 0 {
		b.WriteString(ui.Muted.Render("No tasks. Add some on the Customize tab.") + "\n")
	}
	for i, h := range m.snap.Habits {
		b.WriteString(m.row(i, ui.Checkbox(m.snap.IsCompleted(h.Name))+" "+ui.HabitLabel(h.Name, h.Points)))
	}
	return b.String()
}

func (m boardModel) viewRewards() string {
	var b strings.Builder
	b.WriteString(ui.H2.Render(ui.IconGift+" Redeem Rewards") + "\n")
	if len(m.snap.Rewards) == 0 {
		b.WriteString(ui.Muted.Render("No rewards. Add some on the Customize tab.") + "\n")
	}
	for i, r := range m.snap.Rewards {
		label := ui.RewardLabel(r.Name, r.Cost)
		if r.Cost > m.snap.TotalPoints {
			label = ui.Muted.Render(r.Name + fmt.Sprintf(" (-%d pts)", r.Cost))
		}
		b.WriteString(m.row(i, label))
	}
	return b.String()
}

func (m boardModel) viewCustomize() string {
	var b strings.Builder
	b.WriteString(ui.H2.Render(ui.IconTools+" Customize Tasks & Rewards") + "\n")
	if m.adding {
		kind, amount := "Task", "Points"
		if m.addReward {
			kind, amount = "Reward", "Cost"
		}
		b.WriteString(ui.Heading(ui.IconPlus, "Add "+kind) + "\n")
		b.WriteString(ui.Key.Render(kind+" name") + "\n" + m.addInputs[0].View() + "\n")
		b.WriteString(ui.Key.Render(amount) + "\n" + m.addInputs[1].View() + "\n")
		b.WriteString(ui.Muted.Render("enter: save • tab: next field • esc: cancel") + "\n")
		return b.String()
	}

	b.WriteString(ui.Key.Render("Tasks") + "\n")
	for i, h := range m.snap.Habits {
		b.WriteString(m.row(i, ui.HabitLabel(h.Name, h.Points)+customTag(m.snap.CustomHabits, h.Name)))
	}
	b.WriteString("\n" + ui.Key.Render("Rewards") + "\n")
	offset := len(m.snap.Habits)
	for i, r := range m.snap.Rewards {
		b.WriteString(m.row(offset+i, ui.RewardLabel(r.Name, r.Cost)+customRewardTag(m.snap.CustomRewards, r.Name)))
	}
	return b.String()
}

func customTag(custom []engine.Habit, name string) string {
	for _, h := range custom {
		if h.Name == name {
			return " " + ui.Muted.Render("custom")
		}
	}
	return ""
}

func customRewardTag(custom []engine.Reward, name string) string {
	for _, r := range custom {
		if r.Name == name {
			return " " + ui.Muted.Render("custom")
		}
	}
	return ""
}

func (m boardModel) viewProgress() string {
	p := m.progress
	width := 30
	if m.width > 0 && m.width/3 > width {
		width = m.width / 3
	}

	var b strings.Builder
	b.WriteString(ui.H2.Render(ui.IconChart+" Progress") + "\n")
	total := p.CompletedPoints + p.RemainingPoints
	b.WriteString(fmt.Sprintf("%s %s %d/%d (%.0f%%)\n",
		padRight("Completed", 12), progressBar(p.CompletedPoints, total, width),
		p.CompletedPoints, total, p.Ratio()*100))
	b.WriteString(ui.LabelValue("Remaining", p.RemainingPoints) + "\n\n")

	nameWidth := 0
	peak := 1
	for _, h := range p.Habits {
		if n := len([]rune(h.Name)); n > nameWidth {
			nameWidth = n
		}
		if h.Points > peak {
			peak = h.Points
		}
	}
	for _, h := range p.Habits {
		line := fmt.Sprintf("%s %s %d", padRight(h.Name, nameWidth), progressBar(h.Earned, peak, width), h.Earned)
		if h.Completed {
			line = ui.Good.Render(line)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (m boardModel) viewReset() string {
	var b strings.Builder
	b.WriteString(ui.H2.Render(ui.IconReset+" Reset") + "\n")
	for i, item := range resetItems {
		b.WriteString(m.row(i, fmt.Sprintf("%d. %s", i+1, item.label)))
	}
	return b.String()
}

func (m boardModel) statusLine() string {
	switch m.level {
	case logGood:
		return ui.Good.Render(m.lastLog)
	case logBad:
		return ui.Bad.Render(m.lastLog)
	default:
		return ui.Muted.Render(m.lastLog)
	}
}

func (m boardModel) helpLine() string {
	common := "tab/1-5: switch • ↑/↓: move • r: refresh • L: logout • q: quit"
	switch m.tab {
	case tabHabits:
		return "space: toggle • " + common
	case tabRewards:
		return "enter: redeem • " + common
	case tabCustomize:
		if m.adding {
			return ""
		}
		return "a: add task • w: add reward • d: delete • " + common
	case tabReset:
		return "enter: run reset • " + common
	default:
		return common
	}
}

func progressBar(value int, total int, width int) string {
	if total <= 0 {
		total = 1
	}
	if width <= 3 {
		width = 3
	}
	if value < 0 {
		value = 0
	}
	if value > total {
		value = total
	}
	filled := int(float64(value) / float64(total) * float64(width))
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}

func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) >= width {
		return string(r[:width])
	}
	return s + strings.Repeat(" ", width-len(r))
}
