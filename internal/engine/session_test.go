package engine

import (
	"errors"
	"testing"
	"time"
)

type switchAuth struct {
	loggedIn bool
}

func (a *switchAuth) IsLoggedIn() bool { return a.loggedIn }

func newTestSession(t *testing.T) (*Session, *switchAuth, *fakeClock) {
	t.Helper()
	s, clock := newTestState(t)
	auth := &switchAuth{loggedIn: true}
	return NewSession(s, auth), auth, clock
}

func TestSessionRequiresLogin(t *testing.T) {
	sess, auth, _ := newTestSession(t)
	auth.loggedIn = false

	if _, err := sess.View(); !errors.Is(err, ErrLoginRequired) {
		t.Fatalf("View err=%v, want ErrLoginRequired", err)
	}
	if _, err := sess.CompleteHabit("Meditate"); !errors.Is(err, ErrLoginRequired) {
		t.Fatalf("CompleteHabit err=%v, want ErrLoginRequired", err)
	}

	auth.loggedIn = true
	snap, err := sess.View()
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if snap.TotalPoints != 0 {
		t.Fatalf("gated call mutated state: %d", snap.TotalPoints)
	}
}

func TestSessionRolloverOnNextInteraction(t *testing.T) {
	sess, _, clock := newTestSession(t)

	var changes []Change
	sess.OnChange(func(c Change) { changes = append(changes, c) })

	for _, cmd := range []Command{
		{Kind: CmdAddHabit, Name: "Journal", Amount: 3},
		{Kind: CmdAddHabit, Name: "Stretch", Amount: 12},
		{Kind: CmdComplete, Name: "Journal"},
		{Kind: CmdComplete, Name: "Stretch"},
		{Kind: CmdComplete, Name: "Gym Workout"},
	} {
		if _, err := sess.Apply(cmd); err != nil {
			t.Fatalf("Apply(%+v): %v", cmd, err)
		}
	}

	clock.advanceDays(1)
	out, err := sess.ToggleHabit("Meditate")
	if err != nil {
		t.Fatalf("ToggleHabit: %v", err)
	}
	if out.Snapshot.TotalPoints != 10 {
		t.Fatalf("TotalPoints=%d, want 10 (rollover then +10)", out.Snapshot.TotalPoints)
	}
	if len(out.Snapshot.CustomHabits) != 0 || len(out.Snapshot.Habits) != 7 {
		t.Fatalf("rollover should clear customs only: %+v", out.Snapshot)
	}
	if out.Snapshot.Date != (Date{2026, time.October, 15}) {
		t.Fatalf("Date=%v", out.Snapshot.Date)
	}

	var kinds []ChangeKind
	for _, c := range changes {
		kinds = append(kinds, c.Kind)
	}
	want := []ChangeKind{
		ChangeHabitAdded, ChangeHabitAdded,
		ChangeHabitCompleted, ChangeHabitCompleted, ChangeHabitCompleted,
		ChangeRollover, ChangeHabitCompleted,
	}
	if len(kinds) != len(want) {
		t.Fatalf("changes=%v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("changes=%v, want %v", kinds, want)
		}
	}
}

func TestSessionRedeemOutcome(t *testing.T) {
	sess, _, _ := newTestSession(t)

	var rejected int
	sess.OnChange(func(c Change) {
		if c.Kind == ChangeRedemptionRejected {
			rejected++
		}
	})

	out, err := sess.RedeemReward("Watch Netflix after 8 PM")
	if !IsInsufficientPoints(err) {
		t.Fatalf("err=%v, want insufficient points", err)
	}
	if out.Snapshot.TotalPoints != 0 || rejected != 1 {
		t.Fatalf("rejected redemption: points=%d rejected=%d", out.Snapshot.TotalPoints, rejected)
	}

	if _, err := sess.CompleteHabit("Study for 2 hours"); err != nil {
		t.Fatal(err)
	}
	out, err = sess.RedeemReward("Watch Netflix after 8 PM")
	if err != nil {
		t.Fatalf("RedeemReward: %v", err)
	}
	if out.Redemption == nil || out.Redemption.Reward != "Watch Netflix after 8 PM" || out.Delta != -15 {
		t.Fatalf("outcome=%+v", out)
	}
	if out.Snapshot.TotalPoints != 5 || out.Snapshot.LowBalance {
		t.Fatalf("snapshot=%+v", out.Snapshot)
	}
}

func TestSessionResetAllDelta(t *testing.T) {
	sess, _, _ := newTestSession(t)
	if _, err := sess.CompleteHabit("Gym Workout"); err != nil {
		t.Fatal(err)
	}
	out, err := sess.ResetAll()
	if err != nil {
		t.Fatal(err)
	}
	if out.Delta != -15 || out.Snapshot.TotalPoints != 0 {
		t.Fatalf("outcome=%+v", out)
	}
}

func TestSessionUnknownCommand(t *testing.T) {
	sess, _, _ := newTestSession(t)
	var ve *ValidationError
	if _, err := sess.Apply(Command{Kind: "dance"}); !errors.As(err, &ve) {
		t.Fatalf("err=%v, want ValidationError", err)
	}
}

func TestIsAdvisory(t *testing.T) {
	sess, _, _ := newTestSession(t)
	_, err := sess.DeleteReward("nope")
	if !IsAdvisory(err) {
		t.Fatalf("not-found should be advisory: %v", err)
	}
	if IsAdvisory(ErrLoginRequired) {
		t.Fatalf("login required is not advisory")
	}
}
