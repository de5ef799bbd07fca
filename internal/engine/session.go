package engine

import (
	"fmt"
	"sync"
)

// Authenticator is the account collaborator that gates every interaction.
type Authenticator interface {
	IsLoggedIn() bool
}

// NoAuth lets every interaction through.
type NoAuth struct{}

func (NoAuth) IsLoggedIn() bool { return true }

type CommandKind string

const (
	CmdComplete     CommandKind = "complete"
	CmdUncomplete   CommandKind = "uncomplete"
	CmdToggle       CommandKind = "toggle"
	CmdRedeem       CommandKind = "redeem"
	CmdAddHabit     CommandKind = "add_habit"
	CmdAddReward    CommandKind = "add_reward"
	CmdDeleteHabit  CommandKind = "delete_habit"
	CmdDeleteReward CommandKind = "delete_reward"
	CmdResetHabits  CommandKind = "reset_habits"
	CmdResetRewards CommandKind = "reset_rewards"
	CmdResetAll     CommandKind = "reset_all"
)

// Command is one user intent. Amount is points for habits and cost for rewards.
type Command struct {
	Kind   CommandKind `json:"kind"`
	Name   string      `json:"name,omitempty"`
	Amount int         `json:"amount,omitempty"`
}

type ChangeKind string

const (
	ChangeHabitCompleted     ChangeKind = "habit_completed"
	ChangeHabitUncompleted   ChangeKind = "habit_uncompleted"
	ChangeRewardRedeemed     ChangeKind = "reward_redeemed"
	ChangeRedemptionRejected ChangeKind = "redemption_rejected"
	ChangeHabitAdded         ChangeKind = "habit_added"
	ChangeRewardAdded        ChangeKind = "reward_added"
	ChangeHabitDeleted       ChangeKind = "habit_deleted"
	ChangeRewardDeleted      ChangeKind = "reward_deleted"
	ChangeCustomHabitsReset  ChangeKind = "custom_habits_reset"
	ChangeCustomRewardsReset ChangeKind = "custom_rewards_reset"
	ChangeAllReset           ChangeKind = "all_reset"
	ChangeRollover           ChangeKind = "rollover"
)

// Change describes a state transition. Delta is the change in total points.
type Change struct {
	Kind     ChangeKind
	Name     string
	Delta    int
	Snapshot Snapshot
}

type Listener func(Change)

// Outcome is what one interaction returns to the presentation layer.
type Outcome struct {
	Snapshot   Snapshot    `json:"state"`
	Delta      int         `json:"delta"`
	Redemption *Redemption `json:"redemption,omitempty"`
}

// Session runs interaction cycles against one State: gate, rollover check,
// at most one mutation, snapshot. Cycles are serialized.
type Session struct {
	mu        sync.Mutex
	state     *State
	auth      Authenticator
	listeners []Listener
}

func NewSession(state *State, auth Authenticator) *Session {
	if auth == nil {
		auth = NoAuth{}
	}
	return &Session{state: state, auth: auth}
}

// OnChange registers a listener. Listeners run synchronously while the session is locked
// and must not call back into the session.
func (s *Session) OnChange(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

func (s *Session) IsLoggedIn() bool {
	return s.auth.IsLoggedIn()
}

func (s *Session) emit(c Change) {
	for _, l := range s.listeners {
		l(c)
	}
}

// begin starts a cycle. Callers must hold s.mu.
func (s *Session) begin() error {
	if !s.auth.IsLoggedIn() {
		return ErrLoginRequired
	}
	if s.state.CheckDailyRollover() {
		s.emit(Change{Kind: ChangeRollover, Snapshot: s.state.Snapshot()})
	}
	return nil
}

// View runs a read-only cycle.
func (s *Session) View() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(); err != nil {
		return Snapshot{}, err
	}
	return s.state.Snapshot(), nil
}

func (s *Session) Progress() (Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(); err != nil {
		return Progress{}, err
	}
	return s.state.Progress(), nil
}

// CheckDailyRollover runs a cycle with no mutation, so only the rollover check applies.
// It bypasses the login gate; the scheduled sweep uses it.
func (s *Session) CheckDailyRollover() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.CheckDailyRollover() {
		return false
	}
	s.emit(Change{Kind: ChangeRollover, Snapshot: s.state.Snapshot()})
	return true
}

// Apply runs one interaction cycle carrying cmd. On error the state is unchanged
// and the returned snapshot still reflects the current state when the gate passed.
func (s *Session) Apply(cmd Command) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.begin(); err != nil {
		return Outcome{}, err
	}

	change, out, err := s.dispatch(cmd)
	out.Snapshot = s.state.Snapshot()
	if err != nil {
		if change.Kind != "" {
			change.Snapshot = out.Snapshot
			s.emit(change)
		}
		return out, err
	}
	change.Snapshot = out.Snapshot
	s.emit(change)
	return out, nil
}

func (s *Session) dispatch(cmd Command) (Change, Outcome, error) {
	st := s.state
	switch cmd.Kind {
	case CmdComplete, CmdUncomplete, CmdToggle:
		var delta int
		var err error
		switch cmd.Kind {
		case CmdComplete:
			delta, err = st.Complete(cmd.Name)
		case CmdUncomplete:
			delta, err = st.Uncomplete(cmd.Name)
		default:
			delta, err = st.Toggle(cmd.Name)
		}
		if err != nil {
			return Change{}, Outcome{}, err
		}
		kind := ChangeHabitCompleted
		if delta < 0 {
			kind = ChangeHabitUncompleted
		}
		return Change{Kind: kind, Name: cmd.Name, Delta: delta}, Outcome{Delta: delta}, nil
	case CmdRedeem:
		r, err := st.Redeem(cmd.Name)
		if err != nil {
			if IsInsufficientPoints(err) {
				return Change{Kind: ChangeRedemptionRejected, Name: cmd.Name}, Outcome{}, err
			}
			return Change{}, Outcome{}, err
		}
		return Change{Kind: ChangeRewardRedeemed, Name: r.Reward, Delta: -r.Cost}, Outcome{Delta: -r.Cost, Redemption: &r}, nil
	case CmdAddHabit:
		h, err := st.AddHabit(cmd.Name, cmd.Amount)
		if err != nil {
			return Change{}, Outcome{}, err
		}
		return Change{Kind: ChangeHabitAdded, Name: h.Name}, Outcome{}, nil
	case CmdAddReward:
		r, err := st.AddReward(cmd.Name, cmd.Amount)
		if err != nil {
			return Change{}, Outcome{}, err
		}
		return Change{Kind: ChangeRewardAdded, Name: r.Name}, Outcome{}, nil
	case CmdDeleteHabit:
		h, err := st.DeleteHabit(cmd.Name)
		if err != nil {
			return Change{}, Outcome{}, err
		}
		return Change{Kind: ChangeHabitDeleted, Name: h.Name}, Outcome{}, nil
	case CmdDeleteReward:
		r, err := st.DeleteReward(cmd.Name)
		if err != nil {
			return Change{}, Outcome{}, err
		}
		return Change{Kind: ChangeRewardDeleted, Name: r.Name}, Outcome{}, nil
	case CmdResetHabits:
		st.ResetCustomHabits()
		return Change{Kind: ChangeCustomHabitsReset}, Outcome{}, nil
	case CmdResetRewards:
		st.ResetCustomRewards()
		return Change{Kind: ChangeCustomRewardsReset}, Outcome{}, nil
	case CmdResetAll:
		before := st.TotalPoints()
		st.ResetAll()
		return Change{Kind: ChangeAllReset, Delta: -before}, Outcome{Delta: -before}, nil
	default:
		return Change{}, Outcome{}, &ValidationError{Field: "command", Reason: fmt.Sprintf("unknown kind %q", cmd.Kind)}
	}
}

func (s *Session) CompleteHabit(name string) (Outcome, error) {
	return s.Apply(Command{Kind: CmdComplete, Name: name})
}

func (s *Session) UncompleteHabit(name string) (Outcome, error) {
	return s.Apply(Command{Kind: CmdUncomplete, Name: name})
}

func (s *Session) ToggleHabit(name string) (Outcome, error) {
	return s.Apply(Command{Kind: CmdToggle, Name: name})
}

func (s *Session) RedeemReward(name string) (Outcome, error) {
	return s.Apply(Command{Kind: CmdRedeem, Name: name})
}

func (s *Session) AddHabit(name string, points int) (Outcome, error) {
	return s.Apply(Command{Kind: CmdAddHabit, Name: name, Amount: points})
}

func (s *Session) AddReward(name string, cost int) (Outcome, error) {
	return s.Apply(Command{Kind: CmdAddReward, Name: name, Amount: cost})
}

func (s *Session) DeleteHabit(name string) (Outcome, error) {
	return s.Apply(Command{Kind: CmdDeleteHabit, Name: name})
}

func (s *Session) DeleteReward(name string) (Outcome, error) {
	return s.Apply(Command{Kind: CmdDeleteReward, Name: name})
}

func (s *Session) ResetCustomHabits() (Outcome, error) {
	return s.Apply(Command{Kind: CmdResetHabits})
}

func (s *Session) ResetCustomRewards() (Outcome, error) {
	return s.Apply(Command{Kind: CmdResetRewards})
}

func (s *Session) ResetAll() (Outcome, error) {
	return s.Apply(Command{Kind: CmdResetAll})
}
