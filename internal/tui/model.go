package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"lifequest/internal/auth"
	"lifequest/internal/engine"
	"lifequest/internal/ui"
)

type tab int

const (
	tabHabits tab = iota
	tabRewards
	tabCustomize
	tabProgress
	tabReset
	tabCount
)

var tabNames = []string{"Life Quest Habit", "Rewards", "Customize", "Progress Viz", "Reset"}

var resetItems = []struct {
	label string
	kind  engine.CommandKind
	done  string
}{
	{"Reset Custom Tasks", engine.CmdResetHabits, "Custom tasks reset!"},
	{"Reset Custom Rewards", engine.CmdResetRewards, "Custom rewards reset!"},
	{"Reset All Tasks & Rewards", engine.CmdResetAll, "All tasks and rewards reset!"},
}

type statusLevel int

const (
	logInfo statusLevel = iota
	logGood
	logBad
)

type boardModel struct {
	ctx     context.Context
	session *engine.Session
	gate    *auth.Gate
	logger  *zap.Logger

	width  int
	height int

	auth     authForm
	tab      tab
	selected int

	snap     engine.Snapshot
	progress engine.Progress

	// add form on the Customize tab
	adding    bool
	addReward bool
	addInputs [2]textinput.Model
	addFocus  int

	lastLog string
	level   statusLevel
	err     error
}

type loadedMsg struct {
	snap     engine.Snapshot
	progress engine.Progress
	err      error
}

type appliedMsg struct {
	cmd engine.Command
	out engine.Outcome
	err error
}

type tickMsg time.Time

func newBoardModel(ctx context.Context, sess *engine.Session, gate *auth.Gate, logger *zap.Logger) boardModel {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := boardModel{
		ctx:     ctx,
		session: sess,
		gate:    gate,
		logger:  logger,
		auth:    newAuthForm(),
		lastLog: "Welcome to Life Quest Habit!",
	}
	for i := range m.addInputs {
		ti := textinput.New()
		ti.CharLimit = 64
		m.addInputs[i] = ti
	}
	m.addInputs[0].Placeholder = "Name"
	m.addInputs[1].Placeholder = "5"
	return m
}

func (m boardModel) loggedIn() bool {
	return m.session.IsLoggedIn()
}

func (m boardModel) Init() tea.Cmd {
	if m.loggedIn() {
		return tea.Batch(m.loadCmd(), tick())
	}
	return tea.Batch(textinput.Blink, tick())
}

func tick() tea.Cmd {
	return tea.Tick(time.Minute, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// loadCmd runs a read-only interaction cycle, which also applies a pending rollover.
func (m boardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		snap, err := m.session.View()
		if err != nil {
			return loadedMsg{err: err}
		}
		p, err := m.session.Progress()
		return loadedMsg{snap: snap, progress: p, err: err}
	}
}

func (m boardModel) applyCmd(cmd engine.Command) tea.Cmd {
	return func() tea.Msg {
		out, err := m.session.Apply(cmd)
		return appliedMsg{cmd: cmd, out: out, err: err}
	}
}

func (m boardModel) authCmd() tea.Cmd {
	in := m.auth.input()
	signup := m.auth.signup
	return func() tea.Msg {
		if signup {
			acct, err := m.gate.Signup(m.ctx, in)
			return authDoneMsg{account: acct, signup: true, err: err}
		}
		acct, err := m.gate.Login(m.ctx, in.Username, in.Password)
		return authDoneMsg{account: acct, err: err}
	}
}

func (m *boardModel) setLog(level statusLevel, msg string) {
	m.level = level
	m.lastLog = msg
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		if m.loggedIn() {
			return m, tea.Batch(m.loadCmd(), tick())
		}
		return m, tick()
	case authDoneMsg:
		m.auth.busy = false
		if msg.err != nil {
			m.setLog(logBad, ui.IconError+" "+msg.err.Error())
			return m, nil
		}
		m.auth.reset()
		verb := "Welcome back"
		if msg.signup {
			verb = "Account created successfully! Welcome"
		}
		m.setLog(logGood, fmt.Sprintf("%s %s!", verb, msg.account.DisplayName()))
		m.logger.Info("logged in", zap.String("username", msg.account.Username))
		return m, m.loadCmd()
	case loadedMsg:
		if msg.err != nil {
			if errors.Is(msg.err, engine.ErrLoginRequired) {
				return m, nil
			}
			m.err = msg.err
			return m, nil
		}
		m.snap = msg.snap
		m.progress = msg.progress
		m.clampSelection()
		return m, nil
	case appliedMsg:
		return m.handleApplied(msg)
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if !m.loggedIn() {
			return m.updateAuth(msg)
		}
		if m.adding {
			return m.updateAddForm(msg)
		}
		return m.updateBoard(msg)
	}

	if !m.loggedIn() {
		return m.forwardAuth(msg)
	}
	if m.adding {
		var cmd tea.Cmd
		m.addInputs[m.addFocus], cmd = m.addInputs[m.addFocus].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m boardModel) handleApplied(msg appliedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		switch {
		case errors.Is(msg.err, engine.ErrLoginRequired):
			m.setLog(logBad, "Please log in again.")
		case engine.IsInsufficientPoints(msg.err):
			m.setLog(logBad, ui.IconError+" Not enough points!")
		case engine.IsAdvisory(msg.err):
			m.setLog(logBad, ui.IconError+" "+msg.err.Error())
		default:
			m.logger.Error("command failed", zap.String("kind", string(msg.cmd.Kind)), zap.Error(msg.err))
			m.setLog(logBad, "Error: "+msg.err.Error())
		}
		return m, m.loadCmd()
	}

	m.snap = msg.out.Snapshot
	switch msg.cmd.Kind {
	case engine.CmdRedeem:
		m.setLog(logGood, fmt.Sprintf("%s Enjoy %s!", ui.IconParty, msg.out.Redemption.Reward))
	case engine.CmdToggle:
		if msg.out.Delta >= 0 {
			m.setLog(logGood, fmt.Sprintf("%s %s (+%d pts)", ui.IconDone, msg.cmd.Name, msg.out.Delta))
		} else {
			m.setLog(logInfo, fmt.Sprintf("Unchecked %s (%d pts)", msg.cmd.Name, msg.out.Delta))
		}
	case engine.CmdAddHabit:
		m.setLog(logGood, "Task added!")
	case engine.CmdAddReward:
		m.setLog(logGood, "Reward added!")
	case engine.CmdDeleteHabit, engine.CmdDeleteReward:
		m.setLog(logGood, ui.IconTrash+" Deleted!")
	default:
		for _, item := range resetItems {
			if item.kind == msg.cmd.Kind {
				m.setLog(logGood, ui.IconDone+" "+item.done)
			}
		}
	}
	return m, m.loadCmd()
}

func (m boardModel) updateAuth(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.auth.busy {
		return m, nil
	}
	switch msg.String() {
	case "esc":
		return m, tea.Quit
	case "ctrl+t":
		return m, m.auth.toggleMode()
	case "tab", "down":
		return m, m.auth.setFocus(m.auth.focus + 1)
	case "shift+tab", "up":
		return m, m.auth.setFocus(m.auth.focus - 1)
	case "enter":
		if m.auth.focus < len(m.auth.fields())-1 {
			return m, m.auth.setFocus(m.auth.focus + 1)
		}
		m.auth.busy = true
		return m, m.authCmd()
	}
	return m.forwardAuth(msg)
}

func (m boardModel) forwardAuth(msg tea.Msg) (tea.Model, tea.Cmd) {
	idx := m.auth.fields()[m.auth.focus]
	var cmd tea.Cmd
	m.auth.inputs[idx], cmd = m.auth.inputs[idx].Update(msg)
	return m, cmd
}

func (m boardModel) updateAddForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.adding = false
		m.setLog(logInfo, "Cancelled.")
		return m, nil
	case "tab", "shift+tab", "up", "down":
		m.addInputs[m.addFocus].Blur()
		m.addFocus = 1 - m.addFocus
		return m, m.addInputs[m.addFocus].Focus()
	case "enter":
		name := m.addInputs[0].Value()
		amount, err := strconv.Atoi(strings.TrimSpace(m.addInputs[1].Value()))
		if strings.TrimSpace(m.addInputs[1].Value()) == "" {
			amount, err = 5, nil
		}
		if err != nil {
			m.setLog(logBad, ui.IconError+" Points must be a whole number.")
			return m, nil
		}
		if strings.TrimSpace(name) == "" {
			if m.addReward {
				m.setLog(logBad, ui.IconError+" Reward name cannot be empty!")
			} else {
				m.setLog(logBad, ui.IconError+" Task name cannot be empty!")
			}
			return m, nil
		}
		kind := engine.CmdAddHabit
		if m.addReward {
			kind = engine.CmdAddReward
		}
		m.adding = false
		return m, m.applyCmd(engine.Command{Kind: kind, Name: name, Amount: amount})
	}
	var cmd tea.Cmd
	m.addInputs[m.addFocus], cmd = m.addInputs[m.addFocus].Update(msg)
	return m, cmd
}

func (m boardModel) openAddForm(reward bool) (tea.Model, tea.Cmd) {
	m.adding = true
	m.addReward = reward
	m.addFocus = 0
	m.addInputs[0].SetValue("")
	m.addInputs[1].SetValue("")
	m.addInputs[1].Blur()
	return m, m.addInputs[0].Focus()
}

func (m boardModel) updateBoard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "tab", "right", "l":
		m.tab = (m.tab + 1) % tabCount
		m.selected = 0
		return m, m.loadCmd()
	case "shift+tab", "left", "h":
		m.tab = (m.tab + tabCount - 1) % tabCount
		m.selected = 0
		return m, m.loadCmd()
	case "1", "2", "3", "4", "5":
		m.tab = tab(msg.String()[0] - '1')
		m.selected = 0
		return m, m.loadCmd()
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
		return m, nil
	case "down", "j":
		if m.selected < m.rowCount()-1 {
			m.selected++
		}
		return m, nil
	case "r":
		m.setLog(logInfo, "Refreshed at "+time.Now().Format("15:04:05")+".")
		return m, m.loadCmd()
	case "L":
		m.gate.Logout()
		m.setLog(logInfo, "Logged out.")
		return m, textinput.Blink
	}

	switch m.tab {
	case tabHabits:
		if k := msg.String(); k == " " || k == "space" || k == "enter" {
			if h, ok := m.selectedHabit(); ok {
				return m, m.applyCmd(engine.Command{Kind: engine.CmdToggle, Name: h.Name})
			}
		}
	case tabRewards:
		if k := msg.String(); k == "enter" || k == " " || k == "space" {
			if r, ok := m.selectedReward(); ok {
				return m, m.applyCmd(engine.Command{Kind: engine.CmdRedeem, Name: r.Name})
			}
		}
	case tabCustomize:
		switch msg.String() {
		case "a":
			return m.openAddForm(false)
		case "w":
			return m.openAddForm(true)
		case "d", "x", "delete":
			if h, ok := m.selectedHabit(); ok {
				return m, m.applyCmd(engine.Command{Kind: engine.CmdDeleteHabit, Name: h.Name})
			}
			if r, ok := m.selectedReward(); ok {
				return m, m.applyCmd(engine.Command{Kind: engine.CmdDeleteReward, Name: r.Name})
			}
		}
	case tabReset:
		if msg.String() == "enter" && m.selected < len(resetItems) {
			return m, m.applyCmd(engine.Command{Kind: resetItems[m.selected].kind})
		}
	}
	return m, nil
}

// rowCount is the number of selectable rows on the current tab.
func (m boardModel) rowCount() int {
	switch m.tab {
	case tabHabits:
		return len(m.snap.Habits)
	case tabRewards:
		return len(m.snap.Rewards)
	case tabCustomize:
		return len(m.snap.Habits) + len(m.snap.Rewards)
	case tabReset:
		return len(resetItems)
	default:
		return 0
	}
}

func (m *boardModel) clampSelection() {
	if n := m.rowCount(); m.selected >= n {
		m.selected = n - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

// selectedHabit resolves the cursor on the Habits and Customize tabs.
func (m boardModel) selectedHabit() (engine.Habit, bool) {
	if m.tab != tabHabits && m.tab != tabCustomize {
		return engine.Habit{}, false
	}
	if m.selected < 0 || m.selected >= len(m.snap.Habits) {
		return engine.Habit{}, false
	}
	return m.snap.Habits[m.selected], true
}

// selectedReward resolves the cursor on the Rewards tab, and on the Customize
// tab where rewards are listed after habits.
func (m boardModel) selectedReward() (engine.Reward, bool) {
	idx := m.selected
	switch m.tab {
	case tabRewards:
	case tabCustomize:
		idx -= len(m.snap.Habits)
	default:
		return engine.Reward{}, false
	}
	if idx < 0 || idx >= len(m.snap.Rewards) {
		return engine.Reward{}, false
	}
	return m.snap.Rewards[idx], true
}
