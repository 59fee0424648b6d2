// Package session tracks focused study time: the persisted totals and the
// in-memory timer that feeds them.
package session

import (
	"fmt"

	"github.com/gaspar-hub/academic-hub/internal/domain/shared"
)

// StudySession is the persisted study-time summary.
type StudySession struct {
	TotalSeconds  int         `json:"totalSeconds"`
	TodaySeconds  int         `json:"todaySeconds"`
	LastStudyDate shared.Date `json:"lastStudyDate"`
}

// New returns a zeroed session stamped with today.
func New(today shared.Date) StudySession {
	return StudySession{LastStudyDate: today}
}

// CommitElapsed adds elapsed seconds to both counters. Negative values count
// as zero. LastStudyDate is left as is.
func CommitElapsed(s StudySession, elapsed int) StudySession {
	if elapsed < 0 {
		elapsed = 0
	}
	s.TotalSeconds += elapsed
	s.TodaySeconds += elapsed
	return s
}

// RollOver resets TodaySeconds when today is after LastStudyDate and stamps
// the session with today. It is only applied when daily rollover is enabled.
func RollOver(s StudySession, today shared.Date) StudySession {
	if today.IsZero() || !s.LastStudyDate.Before(today) {
		return s
	}
	s.TodaySeconds = 0
	s.LastStudyDate = today
	return s
}

// ══════════════════════════════════════════════════════════════════════════════
// TIMER
// ══════════════════════════════════════════════════════════════════════════════

// State is the timer's running state.
type State int

const (
	Idle State = iota
	Running
)

// String returns the state name.
func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "idle"
}

// Timer accumulates whole seconds while running. The zero value is an idle
// timer. Timer is not safe for concurrent use.
type Timer struct {
	state   State
	elapsed int
}

// Start moves an idle timer to running with a zeroed accumulator. Starting a
// running timer does nothing.
func (t *Timer) Start() {
	if t.state == Running {
		return
	}
	t.state = Running
	t.elapsed = 0
}

// Tick adds one second when running.
func (t *Timer) Tick() {
	if t.state == Running {
		t.elapsed++
	}
}

// Stop returns the accumulated seconds and resets the timer to idle. The
// second result is false when the timer was not running.
func (t *Timer) Stop() (int, bool) {
	if t.state != Running {
		return 0, false
	}
	elapsed := t.elapsed
	t.state = Idle
	t.elapsed = 0
	return elapsed, true
}

// Elapsed returns the seconds accumulated in the current segment.
func (t *Timer) Elapsed() int { return t.elapsed }

// Running reports whether the timer is running.
func (t *Timer) Running() bool { return t.state == Running }

// State returns the current state.
func (t *Timer) State() State { return t.state }

// ══════════════════════════════════════════════════════════════════════════════
// FORMATTING
// ══════════════════════════════════════════════════════════════════════════════

// Format renders seconds as HH:MM:SS.
func Format(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, seconds%3600/60, seconds%60)
}

// FormatShort renders seconds as "Xh Ym".
func FormatShort(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%dh %dm", seconds/3600, seconds%3600/60)
}
