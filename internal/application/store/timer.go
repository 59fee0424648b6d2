package store

import (
	"context"
	"time"

	"github.com/gaspar-hub/academic-hub/internal/domain/document"
	"github.com/gaspar-hub/academic-hub/internal/domain/session"
	"github.com/gaspar-hub/academic-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// STUDY TIMER
// The timer lives outside the Document; only a stopped segment is committed.
// ══════════════════════════════════════════════════════════════════════════════

// StartTimer starts a new segment. It does nothing while running.
func (s *Store) StartTimer() {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	s.timer.Start()
}

// TickTimer adds one second to a running segment.
func (s *Store) TickTimer() {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	s.timer.Tick()
}

// TimerElapsed returns the seconds of the current segment.
func (s *Store) TimerElapsed() int {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	return s.timer.Elapsed()
}

// TimerState returns whether the timer is idle or running.
func (s *Store) TimerState() session.State {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	return s.timer.State()
}

// StopTimer ends the current segment and commits its seconds to the study
// session. It returns the committed seconds; an idle timer commits nothing.
func (s *Store) StopTimer(ctx context.Context) int {
	s.timerMu.Lock()
	elapsed, ok := s.timer.Stop()
	s.timerMu.Unlock()
	if !ok {
		return elapsed
	}

	// Listeners may read the timer, so commit without holding timerMu.
	s.Apply(ctx, func(d document.Document) document.Document { return document.CommitStudy(d, elapsed) })
	s.opts.log.Info("study segment committed", logger.Seconds(elapsed))
	return elapsed
}

// RunTimer starts the timer and ticks it every interval until ctx is done,
// then stops it and commits the segment. onTick, when set, receives the
// elapsed seconds after each tick.
func (s *Store) RunTimer(ctx context.Context, interval time.Duration, onTick func(elapsed int)) int {
	if interval <= 0 {
		interval = time.Second
	}
	s.StartTimer()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return s.StopTimer(context.WithoutCancel(ctx))
		case <-ticker.C:
			s.TickTimer()
			if onTick != nil {
				onTick(s.TimerElapsed())
			}
		}
	}
}
