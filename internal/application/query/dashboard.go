// Package query contains read operations over the application Document.
package query

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/gaspar-hub/academic-hub/internal/domain/calendar"
	"github.com/gaspar-hub/academic-hub/internal/domain/document"
	"github.com/gaspar-hub/academic-hub/internal/domain/grade"
	"github.com/gaspar-hub/academic-hub/internal/domain/session"
	"github.com/gaspar-hub/academic-hub/internal/domain/shared"
	"github.com/gaspar-hub/academic-hub/internal/domain/subject"
	"github.com/gaspar-hub/academic-hub/pkg/timeutil"
)

// Source exposes the current Document and its revision.
type Source interface {
	Document() document.Document
	Revision() uint64
}

// ══════════════════════════════════════════════════════════════════════════════
// GET DASHBOARD QUERY
// Summary of the selected term: overall average, best subject, today's
// focus time and the agenda.
// ══════════════════════════════════════════════════════════════════════════════

// GetDashboardQuery holds the dashboard parameters.
type GetDashboardQuery struct {
	// Term overrides the selected term when set.
	Term subject.Term

	// UpcomingLimit caps the upcoming events (default 3).
	UpcomingLimit int
}

// Validate fills defaults.
func (q *GetDashboardQuery) Validate() error {
	if q.Term != 0 && !q.Term.Valid() {
		return shared.ErrInvalidTerm
	}
	if q.UpcomingLimit <= 0 {
		q.UpcomingLimit = 3
	}
	return nil
}

// SubjectSummaryDTO is one bar of the performance chart.
type SubjectSummaryDTO struct {
	ID          string
	Name        string
	Color       string
	Average     float64
	Status      grade.Status
	StatusLabel string
}

// DashboardDTO is the rendered dashboard.
type DashboardDTO struct {
	Greeting string
	Subtitle string
	Term     subject.Term

	// OverallAverage is the plain mean of the subject averages.
	OverallAverage     float64
	OverallAverageText string

	// BestSubject is "-" when there are no subjects.
	BestSubject        string
	BestSubjectAverage float64

	TodaySeconds int
	FocusToday   string
	TotalSeconds int

	EventCount int
	Upcoming   []calendar.Event

	Subjects []SubjectSummaryDTO
}

// GetDashboardHandler builds dashboards and memoizes them per revision.
// Every call returns a DTO the caller owns.
type GetDashboardHandler struct {
	source Source
	clock  timeutil.Clock
	cache  *cache.Cache
}

// NewGetDashboardHandler creates the handler. When memoize is false every
// call rebuilds the dashboard.
func NewGetDashboardHandler(source Source, clock timeutil.Clock, memoize bool) *GetDashboardHandler {
	if clock == nil {
		clock = timeutil.System
	}
	h := &GetDashboardHandler{source: source, clock: clock}
	if memoize {
		// No janitor goroutine; expired entries are dropped on the next Set.
		h.cache = cache.New(10*time.Minute, 0)
	}
	return h
}

// Handle returns the dashboard of the logged-in user.
func (h *GetDashboardHandler) Handle(ctx context.Context, q GetDashboardQuery) (*DashboardDTO, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}

	doc := h.source.Document()
	if !doc.HasUser() {
		return nil, shared.ErrNotLoggedIn
	}
	today := shared.DateOf(timeutil.Today(h.clock))

	if h.cache == nil {
		return BuildDashboard(doc, q, today), nil
	}

	key := fmt.Sprintf("%d/%d/%d/%s", h.source.Revision(), q.Term, q.UpcomingLimit, today)
	if cached, ok := h.cache.Get(key); ok {
		return cached.(*DashboardDTO).clone(), nil
	}
	dto := BuildDashboard(doc, q, today)
	h.cache.DeleteExpired()
	h.cache.SetDefault(key, dto)
	return dto.clone(), nil
}

// clone copies d so callers cannot reach the memoized entry.
func (d *DashboardDTO) clone() *DashboardDTO {
	out := *d
	out.Upcoming = slices.Clone(d.Upcoming)
	out.Subjects = slices.Clone(d.Subjects)
	return &out
}

// BuildDashboard computes the dashboard of doc.
func BuildDashboard(doc document.Document, q GetDashboardQuery, today shared.Date) *DashboardDTO {
	term := doc.CurrentTerm
	if q.Term.Valid() {
		term = q.Term
	}

	firstName := ""
	if doc.User != nil {
		firstName = doc.User.FirstName()
	}

	dto := &DashboardDTO{
		Greeting:     greeting(firstName),
		Subtitle:     fmt.Sprintf("Aqui está o resumo do seu %dº Trimestre.", term),
		Term:         term,
		BestSubject:  "-",
		TodaySeconds: doc.StudySession.TodaySeconds,
		FocusToday:   session.FormatShort(doc.StudySession.TodaySeconds),
		TotalSeconds: doc.StudySession.TotalSeconds,
		EventCount:   len(doc.Calendar),
		Upcoming:     upcoming(doc, today, q.UpcomingLimit),
		Subjects:     make([]SubjectSummaryDTO, 0, len(doc.Subjects)),
	}

	var sum float64
	for _, s := range doc.Subjects {
		avg := s.Average(term)
		status := grade.Classify(avg)
		dto.Subjects = append(dto.Subjects, SubjectSummaryDTO{
			ID:          s.ID,
			Name:        s.Name,
			Color:       s.Color,
			Average:     avg,
			Status:      status,
			StatusLabel: status.Label(),
		})
		sum += avg
	}

	if n := len(dto.Subjects); n > 0 {
		dto.OverallAverage = sum / float64(n)
		best := slices.Clone(dto.Subjects)
		slices.SortStableFunc(best, func(a, b SubjectSummaryDTO) int {
			switch {
			case a.Average > b.Average:
				return -1
			case a.Average < b.Average:
				return 1
			default:
				return 0
			}
		})
		dto.BestSubject = best[0].Name
		dto.BestSubjectAverage = best[0].Average
	}
	dto.OverallAverageText = fmt.Sprintf("%.1f", dto.OverallAverage)

	return dto
}

func greeting(firstName string) string {
	if strings.TrimSpace(firstName) == "" {
		return "Olá!"
	}
	return "Olá, " + firstName + "!"
}

// upcoming returns up to limit events dated today or later, soonest first.
func upcoming(doc document.Document, today shared.Date, limit int) []calendar.Event {
	out := make([]calendar.Event, 0, limit)
	for e := range doc.OrderedCalendar() {
		if len(out) == limit {
			break
		}
		if e.Date.Before(today) {
			continue
		}
		out = append(out, e)
	}
	return out
}
