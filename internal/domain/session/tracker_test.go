package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gaspar-hub/academic-hub/internal/domain/shared"
)

func TestCommitElapsed(t *testing.T) {
	start := New(shared.NewDate(2026, time.May, 4))
	start.TotalSeconds = 100
	start.TodaySeconds = 10

	s := CommitElapsed(CommitElapsed(start, 30), 45)

	assert.Equal(t, 175, s.TotalSeconds)
	assert.Equal(t, 85, s.TodaySeconds)
	assert.Equal(t, start.LastStudyDate, s.LastStudyDate)
	assert.Equal(t, 100, start.TotalSeconds, "input must not change")
}

func TestCommitElapsed_NegativeIsZero(t *testing.T) {
	s := CommitElapsed(StudySession{TotalSeconds: 5}, -20)
	assert.Equal(t, 5, s.TotalSeconds)
}

func TestRollOver(t *testing.T) {
	monday := shared.NewDate(2026, time.May, 4)
	tuesday := shared.NewDate(2026, time.May, 5)
	s := StudySession{TotalSeconds: 300, TodaySeconds: 120, LastStudyDate: monday}

	assert.Equal(t, s, RollOver(s, monday), "same day")

	next := RollOver(s, tuesday)
	assert.Equal(t, 0, next.TodaySeconds)
	assert.Equal(t, 300, next.TotalSeconds)
	assert.Equal(t, tuesday, next.LastStudyDate)

	assert.Equal(t, s, RollOver(s, shared.Date{}))
}

func TestTimer(t *testing.T) {
	var timer Timer
	assert.False(t, timer.Running())

	timer.Tick()
	assert.Zero(t, timer.Elapsed(), "idle timer ignores ticks")

	_, ok := timer.Stop()
	assert.False(t, ok)

	timer.Start()
	timer.Tick()
	timer.Tick()
	timer.Start()
	timer.Tick()
	assert.Equal(t, Running, timer.State())
	assert.Equal(t, 3, timer.Elapsed(), "restart while running keeps the segment")

	elapsed, ok := timer.Stop()
	assert.True(t, ok)
	assert.Equal(t, 3, elapsed)
	assert.Equal(t, Idle, timer.State())
	assert.Zero(t, timer.Elapsed())
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "00:00:00", Format(0))
	assert.Equal(t, "01:01:05", Format(3665))
	assert.Equal(t, "00:00:00", Format(-1))
	assert.Equal(t, "1h 1m", FormatShort(3665))
	assert.Equal(t, "0h 0m", FormatShort(59))
}
