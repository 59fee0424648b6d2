// Package timeutil provides the school timezone and a clock abstraction.
// Dates such as "today" or an event day are always taken in the school's
// local time, not in UTC.
package timeutil

import (
	"fmt"
	"sync"
	"time"
)

// DefaultZone is the school timezone used when none is configured.
const DefaultZone = "America/Sao_Paulo"

// brasilia is used when the tz database is not available. Brazil has not
// observed DST since 2019.
var brasilia = time.FixedZone("BRT", -3*60*60)

var (
	mu       sync.RWMutex
	location = loadOrFallback(DefaultZone)
)

func loadOrFallback(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return brasilia
	}
	return loc
}

// SetLocation changes the school timezone by IANA name.
func SetLocation(name string) error {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return fmt.Errorf("timeutil: load location %q: %w", name, err)
	}
	mu.Lock()
	location = loc
	mu.Unlock()
	return nil
}

// Location returns the school timezone.
func Location() *time.Location {
	mu.RLock()
	defer mu.RUnlock()
	return location
}

// ══════════════════════════════════════════════════════════════════════════════
// CLOCK
// ══════════════════════════════════════════════════════════════════════════════

// Clock tells the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time { return f() }

// System is the wall clock.
var System Clock = ClockFunc(time.Now)

// Fixed returns a clock that always reports t.
func Fixed(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}

// Now returns the current time in the school timezone.
func Now() time.Time {
	return time.Now().In(Location())
}

// Local converts t to the school timezone.
func Local(t time.Time) time.Time {
	return t.In(Location())
}

// Today returns midnight of the current school day according to c.
func Today(c Clock) time.Time {
	if c == nil {
		c = System
	}
	return StartOfDay(c.Now())
}

// ══════════════════════════════════════════════════════════════════════════════
// DAY ARITHMETIC
// ══════════════════════════════════════════════════════════════════════════════

// StartOfDay returns 00:00 of t's school day.
func StartOfDay(t time.Time) time.Time {
	l := Local(t)
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, l.Location())
}

// IsSameDay reports whether t1 and t2 fall on the same school day.
func IsSameDay(t1, t2 time.Time) bool {
	return StartOfDay(t1).Equal(StartOfDay(t2))
}

// DaysBetween returns the number of calendar days from t1 to t2. It is
// negative when t2 is earlier.
func DaysBetween(t1, t2 time.Time) int {
	a, b := StartOfDay(t1), StartOfDay(t2)
	// Calendar arithmetic in UTC avoids DST-length days.
	au := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bu := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bu.Sub(au).Hours() / 24)
}

// ══════════════════════════════════════════════════════════════════════════════
// FORMATTING
// ══════════════════════════════════════════════════════════════════════════════

const (
	// DateLayout is the wire format of dates (YYYY-MM-DD).
	DateLayout = "2006-01-02"
	// DisplayLayout is the Brazilian display format.
	DisplayLayout = "02/01/2006"
)

// FormatDate renders t's school day as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return Local(t).Format(DateLayout)
}

// FormatDisplay renders t's school day as DD/MM/YYYY.
func FormatDisplay(t time.Time) string {
	return Local(t).Format(DisplayLayout)
}

// ParseDate parses YYYY-MM-DD as midnight in the school timezone.
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, value, Location())
}

var weekdaysPt = [...]string{"domingo", "segunda-feira", "terça-feira", "quarta-feira", "quinta-feira", "sexta-feira", "sábado"}

var monthsPt = [...]string{"", "janeiro", "fevereiro", "março", "abril", "maio", "junho", "julho", "agosto", "setembro", "outubro", "novembro", "dezembro"}

// WeekdayPt returns the Portuguese weekday name.
func WeekdayPt(t time.Time) string {
	return weekdaysPt[Local(t).Weekday()]
}

// MonthPt returns the Portuguese month name.
func MonthPt(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthsPt[m]
}

// FormatLong renders e.g. "14 de abril".
func FormatLong(t time.Time) string {
	l := Local(t)
	return fmt.Sprintf("%d de %s", l.Day(), MonthPt(l.Month()))
}

// FormatRelative describes day in relation to today: "hoje", "amanhã",
// "em 3 dias", "ontem" or "há 2 dias".
func FormatRelative(day, today time.Time) string {
	switch n := DaysBetween(today, day); {
	case n == 0:
		return "hoje"
	case n == 1:
		return "amanhã"
	case n == -1:
		return "ontem"
	case n > 1:
		return fmt.Sprintf("em %d dias", n)
	default:
		return fmt.Sprintf("há %d dias", -n)
	}
}
