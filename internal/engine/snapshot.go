package engine

// Snapshot is an immutable copy of a State, returned after every interaction.
type Snapshot struct {
	Date            Date     `json:"date"`
	TotalPoints     int      `json:"total_points"`
	LowBalance      bool     `json:"low_balance"`
	Habits          []Habit  `json:"habits"`
	CustomHabits    []Habit  `json:"custom_habits"`
	Rewards         []Reward `json:"rewards"`
	CustomRewards   []Reward `json:"custom_rewards"`
	CompletedHabits []string `json:"completed_habits"`
}

func (s *State) Snapshot() Snapshot {
	return Snapshot{
		Date:            s.currentDate,
		TotalPoints:     s.totalPoints,
		LowBalance:      s.IsLowBalance(),
		Habits:          s.AllHabits(),
		CustomHabits:    s.CustomHabits(),
		Rewards:         s.AllRewards(),
		CustomRewards:   s.CustomRewards(),
		CompletedHabits: s.CompletedHabits(),
	}
}

func (s Snapshot) IsCompleted(name string) bool {
	for _, n := range s.CompletedHabits {
		if n == name {
			return true
		}
	}
	return false
}
