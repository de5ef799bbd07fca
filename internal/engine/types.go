package engine

import (
	"fmt"
	"strings"
)

// Habit is a task that awards a fixed number of points when completed.
type Habit struct {
	Name   string `json:"name" yaml:"name"`
	Points int    `json:"points" yaml:"points"`
}

// Reward is a redeemable item with a fixed point cost.
type Reward struct {
	Name string `json:"name" yaml:"name"`
	Cost int    `json:"cost" yaml:"cost"`
}

// DeletionPolicy controls whether deleting a habit also drops it from the completion set.
type DeletionPolicy string

const (
	// KeepCompletions leaves a deleted habit's name in the completion set until the next reset.
	KeepCompletions DeletionPolicy = "keep"
	// CascadeCompletions removes the name from the completion set on delete. Points are not refunded.
	CascadeCompletions DeletionPolicy = "cascade"
)

func (p DeletionPolicy) IsValid() bool {
	switch p {
	case KeepCompletions, CascadeCompletions:
		return true
	default:
		return false
	}
}

func ParseDeletionPolicy(input string) (DeletionPolicy, error) {
	s := strings.TrimSpace(strings.ToLower(input))
	if s == "" {
		return KeepCompletions, nil
	}
	p := DeletionPolicy(s)
	if !p.IsValid() {
		return "", fmt.Errorf("invalid deletion policy: %q", input)
	}
	return p, nil
}

// DefaultLowBalanceThreshold is the balance below which a low-points warning is shown.
const DefaultLowBalanceThreshold = 5

// Catalog is the set of built-in habits and rewards a fresh state starts with.
type Catalog struct {
	Habits  []Habit  `json:"habits" yaml:"habits"`
	Rewards []Reward `json:"rewards" yaml:"rewards"`
}

func DefaultCatalog() Catalog {
	return Catalog{
		Habits: []Habit{
			{Name: "Wake Up Early", Points: 10},
			{Name: "Gym Workout", Points: 15},
			{Name: "Meditate", Points: 10},
			{Name: "Study for 2 hours", Points: 20},
			{Name: "Study 8-11 AM", Points: 6},
			{Name: "Study 2-4 PM", Points: 4},
			{Name: "Study After 10 PM", Points: 2},
		},
		Rewards: []Reward{
			{Name: "Watch Netflix before 8 PM", Cost: 10},
			{Name: "Watch Netflix after 8 PM", Cost: 15},
			{Name: "Play Game for 30 minutes", Cost: 10},
			{Name: "Instagram for 30 minutes", Cost: 10},
		},
	}
}

// Validate checks that names are non-empty and unique within each list, and values are positive.
func (c Catalog) Validate() error {
	seen := map[string]bool{}
	for _, h := range c.Habits {
		if strings.TrimSpace(h.Name) == "" {
			return &ValidationError{Field: "habit.name", Reason: "is required"}
		}
		if h.Points < 1 {
			return &ValidationError{Field: "habit.points", Reason: fmt.Sprintf("must be >= 1 (got %d for %q)", h.Points, h.Name)}
		}
		if seen[h.Name] {
			return &ValidationError{Field: "habit.name", Reason: fmt.Sprintf("duplicate %q", h.Name)}
		}
		seen[h.Name] = true
	}
	seen = map[string]bool{}
	for _, r := range c.Rewards {
		if strings.TrimSpace(r.Name) == "" {
			return &ValidationError{Field: "reward.name", Reason: "is required"}
		}
		if r.Cost < 1 {
			return &ValidationError{Field: "reward.cost", Reason: fmt.Sprintf("must be >= 1 (got %d for %q)", r.Cost, r.Name)}
		}
		if seen[r.Name] {
			return &ValidationError{Field: "reward.name", Reason: fmt.Sprintf("duplicate %q", r.Name)}
		}
		seen[r.Name] = true
	}
	return nil
}

func (c Catalog) clone() Catalog {
	return Catalog{
		Habits:  append([]Habit(nil), c.Habits...),
		Rewards: append([]Reward(nil), c.Rewards...),
	}
}

// Options configures a State.
type Options struct {
	Catalog             Catalog
	LowBalanceThreshold int
	DeletionPolicy      DeletionPolicy
	Clock               Clock
}

func (o Options) withDefaults() Options {
	if o.Catalog.Habits == nil && o.Catalog.Rewards == nil {
		o.Catalog = DefaultCatalog()
	}
	if o.LowBalanceThreshold <= 0 {
		o.LowBalanceThreshold = DefaultLowBalanceThreshold
	}
	if !o.DeletionPolicy.IsValid() {
		o.DeletionPolicy = KeepCompletions
	}
	if o.Clock == nil {
		o.Clock = SystemClock{}
	}
	return o
}
