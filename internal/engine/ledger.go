package engine

// Complete marks a habit done for today and credits its points.
// Unknown or already-completed names leave the state unchanged.
func (s *State) Complete(name string) (int, error) {
	h, ok := s.findHabit(name)
	if !ok {
		return 0, notFound("habit", name)
	}
	if s.IsCompleted(name) {
		return 0, ErrAlreadyCompleted
	}
	s.totalPoints += h.Points
	s.completed[name] = struct{}{}
	return h.Points, nil
}

// Uncomplete reverses a completion using the habit's current point value.
// A completed name whose habit was deleted cannot be uncompleted; it stays in
// the set until a reset.
func (s *State) Uncomplete(name string) (int, error) {
	if !s.IsCompleted(name) {
		return 0, ErrNotCompleted
	}
	h, ok := s.findHabit(name)
	if !ok {
		return 0, notFound("habit", name)
	}
	s.totalPoints -= h.Points
	delete(s.completed, name)
	return -h.Points, nil
}

// Toggle completes an open habit or uncompletes a done one, like a checkbox.
func (s *State) Toggle(name string) (int, error) {
	if s.IsCompleted(name) {
		return s.Uncomplete(name)
	}
	return s.Complete(name)
}
