package service

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// SessionSweeper periodically drops checkouts left idle, such as a wizard
// abandoned in a closed browser tab.
type SessionSweeper struct {
	cron     *cron.Cron
	sessions *Sessions
	idle     time.Duration
	every    time.Duration
	log      *zap.Logger
}

func NewSessionSweeper(sessions *Sessions, idle, every time.Duration, log *zap.Logger) *SessionSweeper {
	s := &SessionSweeper{
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		sessions: sessions,
		idle:     idle,
		every:    every,
		log:      log,
	}
	s.cron.Schedule(cron.Every(every), cron.FuncJob(s.Sweep))
	return s
}

func (s *SessionSweeper) Run() {
	s.cron.Start()
	s.log.Info("checkout sweeper started", zap.Duration("idle", s.idle), zap.Duration("every", s.every))
}

// Sweep runs one expiry pass.
func (s *SessionSweeper) Sweep() {
	if n := s.sessions.Expire(s.idle); n > 0 {
		s.log.Info("expired idle checkouts", zap.Int("count", n), zap.Int("open", s.sessions.Len()))
	}
}

// Shutdown stops scheduling and waits for a running pass, bounded by ctx.
func (s *SessionSweeper) Shutdown(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
