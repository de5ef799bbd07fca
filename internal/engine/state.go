package engine

import "sort"

// State is the mutable habit/points/reward state of one session.
// It is not safe for concurrent use; Session serializes access.
type State struct {
	opts        Options
	initialized bool

	totalPoints    int
	completed      map[string]struct{}
	defaultHabits  []Habit
	customHabits   []Habit
	defaultRewards []Reward
	customRewards  []Reward
	currentDate    Date
}

// NewState returns an initialized state seeded from opts.Catalog.
func NewState(opts Options) *State {
	s := &State{opts: opts.withDefaults()}
	s.Initialize()
	return s
}

// Initialize seeds the state on first call and is a no-op afterwards.
func (s *State) Initialize() {
	if s.initialized {
		return
	}
	s.opts = s.opts.withDefaults()
	catalog := s.opts.Catalog.clone()
	s.totalPoints = 0
	s.completed = map[string]struct{}{}
	s.customHabits = nil
	s.customRewards = nil
	s.defaultHabits = catalog.Habits
	s.defaultRewards = catalog.Rewards
	s.currentDate = s.today()
	s.initialized = true
}

func (s *State) today() Date {
	return DateOf(s.opts.Clock.Now())
}

// CheckDailyRollover resets the day's progress when the calendar date has moved on.
// It reports whether a rollover happened.
func (s *State) CheckDailyRollover() bool {
	today := s.today()
	if s.currentDate == today {
		return false
	}
	s.resetDay(today)
	return true
}

// ResetAll clears points, completions and custom entries regardless of date.
// Default habits and rewards are kept.
func (s *State) ResetAll() {
	s.resetDay(s.today())
}

func (s *State) resetDay(today Date) {
	s.totalPoints = 0
	s.completed = map[string]struct{}{}
	s.customHabits = nil
	s.customRewards = nil
	s.currentDate = today
}

// ResetCustomHabits clears custom habits and every completion. Points are untouched.
func (s *State) ResetCustomHabits() {
	s.customHabits = nil
	s.completed = map[string]struct{}{}
}

func (s *State) ResetCustomRewards() {
	s.customRewards = nil
}

func (s *State) TotalPoints() int { return s.totalPoints }

func (s *State) CurrentDate() Date { return s.currentDate }

func (s *State) LowBalanceThreshold() int { return s.opts.LowBalanceThreshold }

func (s *State) DeletionPolicy() DeletionPolicy { return s.opts.DeletionPolicy }

// IsLowBalance reports whether the balance is under the warning threshold.
func (s *State) IsLowBalance() bool {
	return s.totalPoints < s.opts.LowBalanceThreshold
}

// AllHabits returns default habits followed by custom habits.
func (s *State) AllHabits() []Habit {
	out := make([]Habit, 0, len(s.defaultHabits)+len(s.customHabits))
	out = append(out, s.defaultHabits...)
	return append(out, s.customHabits...)
}

func (s *State) DefaultHabits() []Habit { return append(make([]Habit, 0, len(s.defaultHabits)), s.defaultHabits...) }

func (s *State) CustomHabits() []Habit { return append(make([]Habit, 0, len(s.customHabits)), s.customHabits...) }

// AllRewards returns default rewards followed by custom rewards.
func (s *State) AllRewards() []Reward {
	out := make([]Reward, 0, len(s.defaultRewards)+len(s.customRewards))
	out = append(out, s.defaultRewards...)
	return append(out, s.customRewards...)
}

func (s *State) DefaultRewards() []Reward { return append(make([]Reward, 0, len(s.defaultRewards)), s.defaultRewards...) }

func (s *State) CustomRewards() []Reward { return append(make([]Reward, 0, len(s.customRewards)), s.customRewards...) }

// CompletedHabits returns the completion set as a sorted slice.
func (s *State) CompletedHabits() []string {
	out := make([]string, 0, len(s.completed))
	for name := range s.completed {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (s *State) IsCompleted(name string) bool {
	_, ok := s.completed[name]
	return ok
}

func (s *State) findHabit(name string) (Habit, bool) {
	for _, h := range s.defaultHabits {
		if h.Name == name {
			return h, true
		}
	}
	for _, h := range s.customHabits {
		if h.Name == name {
			return h, true
		}
	}
	return Habit{}, false
}

func (s *State) findReward(name string) (Reward, bool) {
	for _, r := range s.defaultRewards {
		if r.Name == name {
			return r, true
		}
	}
	for _, r := range s.customRewards {
		if r.Name == name {
			return r, true
		}
	}
	return Reward{}, false
}
