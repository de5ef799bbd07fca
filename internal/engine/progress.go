package engine

// HabitProgress is one bar of the per-habit chart.
type HabitProgress struct {
	Name      string `json:"name"`
	Points    int    `json:"points"`
	Earned    int    `json:"earned"`
	Completed bool   `json:"completed"`
}

// Progress is the aggregate view the charts render.
type Progress struct {
	CompletedPoints int             `json:"completed_points"`
	RemainingPoints int             `json:"remaining_points"`
	AvailablePoints int             `json:"available_points"`
	Habits          []HabitProgress `json:"habits"`
}

// Ratio is the completed share of the donut, in [0,1].
func (p Progress) Ratio() float64 {
	total := p.CompletedPoints + p.RemainingPoints
	if total <= 0 || p.CompletedPoints <= 0 {
		return 0
	}
	return float64(p.CompletedPoints) / float64(total)
}

// Progress derives chart data. Completed points are the running balance, so
// redemptions shrink them; remaining points never drop below zero.
func (s *State) Progress() Progress {
	all := s.AllHabits()
	p := Progress{
		CompletedPoints: s.totalPoints,
		Habits:          make([]HabitProgress, 0, len(all)),
	}
	for _, h := range all {
		p.AvailablePoints += h.Points
		hp := HabitProgress{Name: h.Name, Points: h.Points}
		if s.IsCompleted(h.Name) {
			hp.Completed = true
			hp.Earned = h.Points
		}
		p.Habits = append(p.Habits, hp)
	}
	if rem := p.AvailablePoints - p.CompletedPoints; rem > 0 {
		p.RemainingPoints = rem
	}
	return p
}
