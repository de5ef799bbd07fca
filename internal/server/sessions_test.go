package server

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"lifequest/internal/auth"
	"lifequest/internal/engine"
)

type stepClock struct {
	now time.Time
}

func (c *stepClock) Now() time.Time { return c.now }

func newTestManager(clock *stepClock) *SessionManager {
	m := NewSessionManager(func() (*engine.Session, *auth.Gate) {
		st := engine.NewState(engine.Options{Clock: clock})
		return engine.NewSession(st, engine.NoAuth{}), nil
	})
	m.now = clock.Now
	return m
}

func TestSweepRollsOverAndEvicts(t *testing.T) {
	clock := &stepClock{now: time.Date(2026, time.October, 14, 23, 0, 0, 0, time.UTC)}
	m := newTestManager(clock)

	var evicted []string
	m.onEvict = func(id string) { evicted = append(evicted, id) }

	stale := m.Create()
	clock.now = clock.now.Add(30 * time.Minute)
	fresh := m.Create()
	_, err := fresh.session.CompleteHabit("Gym Workout")
	require.NoError(t, err)

	clock.now = clock.now.Add(45 * time.Minute) // 00:15 next day
	rolled, gone := m.Sweep(time.Hour)
	assert.Equal(t, 1, rolled)
	assert.Equal(t, 1, gone)
	assert.Equal(t, []string{stale.id}, evicted)

	_, ok := m.Get(stale.id)
	assert.False(t, ok)
	got, ok := m.Get(fresh.id)
	require.True(t, ok)
	snap, err := got.session.View()
	require.NoError(t, err)
	assert.Zero(t, snap.TotalPoints)

	rolled, gone = m.Sweep(0)
	assert.Zero(t, rolled)
	assert.Zero(t, gone)
}

func TestGetRejectsMalformedID(t *testing.T) {
	m := newTestManager(&stepClock{now: time.Now()})
	_, ok := m.Get("not-a-uuid")
	assert.False(t, ok)
	_, ok = m.Get("")
	assert.False(t, ok)
}

func TestSweeperLifecycle(t *testing.T) {
	defer goleak.VerifyNone(t)

	m := newTestManager(&stepClock{now: time.Now()})
	m.Create()

	_, err := NewSweeper("not a schedule", nil, m, time.Hour, nil)
	assert.Error(t, err)

	s, err := NewSweeper("@every 1h", nil, m, time.Hour, nil)
	require.NoError(t, err)
	s.Start()
	s.Run()
	s.Stop()
	assert.Equal(t, 1, m.Len())
}

func TestSweeperUsesRolloverZone(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	s, err := NewSweeper("0 0 * * *", loc, newTestManager(&stepClock{now: time.Now()}), time.Hour, nil)
	require.NoError(t, err)
	assert.Equal(t, loc, s.cron.Location())

	entries := s.cron.Entries()
	require.Len(t, entries, 1)
	// The cron loop asks for the next run with "now" in its own location.
	now := time.Date(2026, time.October, 14, 12, 0, 0, 0, time.UTC).In(s.cron.Location())
	next := entries[0].Schedule.Next(now)
	want := time.Date(2026, time.October, 15, 0, 0, 0, 0, loc)
	assert.True(t, want.Equal(next), "next sweep %s, want %s", next, want)
}
