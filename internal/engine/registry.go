package engine

import (
	"fmt"
	"strings"
)

func normalizeName(name string) (string, error) {
	n := strings.TrimSpace(name)
	if n == "" {
		return "", &ValidationError{Field: "name", Reason: "cannot be empty"}
	}
	return n, nil
}

// coerceAmount mirrors the input layer, which never submits values below 1.
func coerceAmount(v int) int {
	if v < 1 {
		return 1
	}
	return v
}

// AddHabit appends a custom habit. Names must be unique among custom habits.
func (s *State) AddHabit(name string, points int) (Habit, error) {
	n, err := normalizeName(name)
	if err != nil {
		return Habit{}, err
	}
	for _, h := range s.customHabits {
		if h.Name == n {
			return Habit{}, &ValidationError{Field: "name", Reason: fmt.Sprintf("habit %q already exists", n)}
		}
	}
	h := Habit{Name: n, Points: coerceAmount(points)}
	s.customHabits = append(s.customHabits, h)
	return h, nil
}

// AddReward appends a custom reward. Names must be unique among custom rewards.
func (s *State) AddReward(name string, cost int) (Reward, error) {
	n, err := normalizeName(name)
	if err != nil {
		return Reward{}, err
	}
	for _, r := range s.customRewards {
		if r.Name == n {
			return Reward{}, &ValidationError{Field: "name", Reason: fmt.Sprintf("reward %q already exists", n)}
		}
	}
	r := Reward{Name: n, Cost: coerceAmount(cost)}
	s.customRewards = append(s.customRewards, r)
	return r, nil
}

// DeleteHabit removes the first habit named name, custom list first, then defaults.
func (s *State) DeleteHabit(name string) (Habit, error) {
	var removed Habit
	var ok bool
	if s.customHabits, removed, ok = removeHabit(s.customHabits, name); !ok {
		s.defaultHabits, removed, ok = removeHabit(s.defaultHabits, name)
	}
	if !ok {
		return Habit{}, notFound("habit", name)
	}
	if s.opts.DeletionPolicy == CascadeCompletions {
		if _, still := s.findHabit(name); !still {
			delete(s.completed, name)
		}
	}
	return removed, nil
}

// DeleteReward removes the first reward named name, custom list first, then defaults.
func (s *State) DeleteReward(name string) (Reward, error) {
	var removed Reward
	var ok bool
	if s.customRewards, removed, ok = removeReward(s.customRewards, name); !ok {
		s.defaultRewards, removed, ok = removeReward(s.defaultRewards, name)
	}
	if !ok {
		return Reward{}, notFound("reward", name)
	}
	return removed, nil
}

func removeHabit(list []Habit, name string) ([]Habit, Habit, bool) {
	for i, h := range list {
		if h.Name == name {
			out := make([]Habit, 0, len(list)-1)
			out = append(out, list[:i]...)
			return append(out, list[i+1:]...), h, true
		}
	}
	return list, Habit{}, false
}

func removeReward(list []Reward, name string) ([]Reward, Reward, bool) {
	for i, r := range list {
		if r.Name == name {
			out := make([]Reward, 0, len(list)-1)
			out = append(out, list[:i]...)
			return append(out, list[i+1:]...), r, true
		}
	}
	return list, Reward{}, false
}
