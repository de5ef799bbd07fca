package engine

// Redemption is the result of a successful reward purchase.
type Redemption struct {
	Reward  string `json:"reward"`
	Cost    int    `json:"cost"`
	Balance int    `json:"balance"`
}

// Redeem spends points on a reward. Every call re-checks the balance, so
// repeated calls keep succeeding until the points run out.
func (s *State) Redeem(name string) (Redemption, error) {
	r, ok := s.findReward(name)
	if !ok {
		return Redemption{}, notFound("reward", name)
	}
	if s.totalPoints < r.Cost {
		return Redemption{}, &InsufficientPointsError{Reward: r.Name, Cost: r.Cost, Balance: s.totalPoints}
	}
	s.totalPoints -= r.Cost
	return Redemption{Reward: r.Name, Cost: r.Cost, Balance: s.totalPoints}, nil
}
