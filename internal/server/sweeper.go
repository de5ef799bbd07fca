package server

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweeper periodically rolls sessions over to the new day and evicts idle ones.
type Sweeper struct {
	cron     *cron.Cron
	sessions *SessionManager
	ttl      time.Duration
	logger   *zap.Logger
}

// NewSweeper schedules sweeps in loc, the zone days roll over in. A nil loc means local time.
func NewSweeper(schedule string, loc *time.Location, sessions *SessionManager, ttl time.Duration, logger *zap.Logger) (*Sweeper, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	s := &Sweeper{
		cron:     cron.New(cron.WithLocation(loc)),
		sessions: sessions,
		ttl:      ttl,
		logger:   logger,
	}
	if _, err := s.cron.AddFunc(schedule, s.Run); err != nil {
		return nil, fmt.Errorf("sweep schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Run performs one sweep.
func (s *Sweeper) Run() {
	rolled, evicted := s.sessions.Sweep(s.ttl)
	s.logger.Info("session sweep",
		zap.Int("rolled_over", rolled),
		zap.Int("evicted", evicted),
		zap.Int("active", s.sessions.Len()))
}

func (s *Sweeper) Start() {
	s.cron.Start()
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}
