package query

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/gaspar-hub/academic-hub/internal/domain/calendar"
	"github.com/gaspar-hub/academic-hub/internal/domain/document"
	"github.com/gaspar-hub/academic-hub/internal/domain/grade"
	"github.com/gaspar-hub/academic-hub/internal/domain/profile"
	"github.com/gaspar-hub/academic-hub/internal/domain/shared"
	"github.com/gaspar-hub/academic-hub/internal/domain/subject"
	"github.com/gaspar-hub/academic-hub/pkg/timeutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeSource struct {
	doc document.Document
	rev uint64
}

func (f *fakeSource) Document() document.Document { return f.doc }
func (f *fakeSource) Revision() uint64            { return f.rev }

var (
	today = shared.NewDate(2026, time.April, 14)
	clock = timeutil.Fixed(time.Date(2026, time.April, 14, 15, 0, 0, 0, time.UTC))
)

func graded() document.Document {
	d := document.Initialize(today)
	d = document.Login(d, profile.UserProfile{Name: "Ana Souza", Role: profile.RoleStudent, Grade: "2º Ano Médio"})
	d = document.AppendGrade(d, "mat", subject.FirstTerm, subject.KindAV1)
	d = document.SetGrade(d, "mat", subject.FirstTerm, subject.KindAV1, 0, "8")
	d = document.SetGrade(d, "mat", subject.FirstTerm, subject.KindAV2, 0, "7")
	d = document.SetPat(d, "mat", subject.FirstTerm, "7")
	d = document.CommitStudy(d, 3720)
	return d
}

func TestGetDashboard_NotLoggedIn(t *testing.T) {
	h := NewGetDashboardHandler(&fakeSource{doc: document.Initialize(today)}, clock, false)

	_, err := h.Handle(context.Background(), GetDashboardQuery{})

	assert.ErrorIs(t, err, shared.ErrNotLoggedIn)
}

func TestGetDashboard(t *testing.T) {
	d := graded()
	d = document.AddEvent(d, calendar.Event{ID: "e1", SubjectID: "mat", Type: calendar.TypeAV1, Date: shared.NewDate(2026, time.May, 2)})
	d = document.AddEvent(d, calendar.Event{ID: "e2", SubjectID: "por", Type: calendar.TypePAT, Date: shared.NewDate(2026, time.March, 2)})
	h := NewGetDashboardHandler(&fakeSource{doc: d}, clock, false)

	dto, err := h.Handle(context.Background(), GetDashboardQuery{})
	require.NoError(t, err)

	assert.Equal(t, "Olá, Ana!", dto.Greeting)
	assert.Equal(t, "Aqui está o resumo do seu 1º Trimestre.", dto.Subtitle)
	assert.InDelta(t, 3.8, dto.OverallAverage, 1e-9)
	assert.Equal(t, "3.8", dto.OverallAverageText)
	assert.Equal(t, "Matemática", dto.BestSubject)
	assert.InDelta(t, 7.6, dto.BestSubjectAverage, 1e-9)
	assert.Equal(t, "1h 2m", dto.FocusToday)
	assert.Equal(t, 2, dto.EventCount)

	require.Len(t, dto.Upcoming, 1, "past events are not upcoming")
	assert.Equal(t, "e1", dto.Upcoming[0].ID)

	require.Len(t, dto.Subjects, 2)
	assert.Equal(t, grade.StatusApproved, dto.Subjects[0].Status)
	assert.Equal(t, "Aprovado", dto.Subjects[0].StatusLabel)
	assert.Equal(t, grade.StatusNoGrade, dto.Subjects[1].Status)
}

func TestGetDashboard_OtherTerm(t *testing.T) {
	h := NewGetDashboardHandler(&fakeSource{doc: graded()}, clock, false)

	dto, err := h.Handle(context.Background(), GetDashboardQuery{Term: subject.SecondTerm})
	require.NoError(t, err)

	assert.Equal(t, "Aqui está o resumo do seu 2º Trimestre.", dto.Subtitle)
	assert.Equal(t, "0.0", dto.OverallAverageText)
	assert.Equal(t, "Matemática", dto.BestSubject, "ties keep the first subject")

	_, err = h.Handle(context.Background(), GetDashboardQuery{Term: subject.Term(7)})
	assert.ErrorIs(t, err, shared.ErrInvalidTerm)
}

func TestBuildDashboard_NoSubjects(t *testing.T) {
	d := graded()
	d.Subjects = nil

	dto := BuildDashboard(d, GetDashboardQuery{UpcomingLimit: 3}, today)

	assert.Equal(t, "-", dto.BestSubject)
	assert.Equal(t, "0.0", dto.OverallAverageText)
	assert.Empty(t, dto.Subjects)
}

func TestBuildDashboard_UpcomingLimit(t *testing.T) {
	d := graded()
	for _, id := range []string{"a", "b", "c", "d"} {
		d = document.AddEvent(d, calendar.Event{ID: id, SubjectID: "mat", Type: calendar.TypeAV1, Date: today})
	}

	dto := BuildDashboard(d, GetDashboardQuery{UpcomingLimit: 2}, today)

	require.Len(t, dto.Upcoming, 2)
	assert.Equal(t, "a", dto.Upcoming[0].ID)
	assert.Equal(t, "b", dto.Upcoming[1].ID)
}

func TestGetDashboard_MemoizedPerRevision(t *testing.T) {
	src := &fakeSource{doc: graded(), rev: 1}
	h := NewGetDashboardHandler(src, clock, true)
	ctx := context.Background()

	first, err := h.Handle(ctx, GetDashboardQuery{})
	require.NoError(t, err)

	src.doc = document.CommitStudy(src.doc, 600)
	same, err := h.Handle(ctx, GetDashboardQuery{})
	require.NoError(t, err)
	assert.Equal(t, first, same, "same revision hits the cache")
	assert.NotSame(t, first, same)

	src.rev = 2
	fresh, err := h.Handle(ctx, GetDashboardQuery{})
	require.NoError(t, err)
	assert.Equal(t, "1h 12m", fresh.FocusToday)
}

func TestGetDashboard_CallerCannotAlterCache(t *testing.T) {
	d := graded()
	d = document.AddEvent(d, calendar.Event{ID: "e1", SubjectID: "mat", Type: calendar.TypeAV1, Date: shared.NewDate(2026, time.May, 2)})
	h := NewGetDashboardHandler(&fakeSource{doc: d, rev: 1}, clock, true)
	ctx := context.Background()

	first, err := h.Handle(ctx, GetDashboardQuery{})
	require.NoError(t, err)
	require.NotEmpty(t, first.Subjects)
	require.Len(t, first.Upcoming, 1)
	want := *first
	want.Subjects = slices.Clone(first.Subjects)
	want.Upcoming = slices.Clone(first.Upcoming)

	first.Subjects[0].Name = "changed"
	first.Upcoming[0].Content = "changed"
	first.Greeting = "changed"

	again, err := h.Handle(ctx, GetDashboardQuery{})
	require.NoError(t, err)
	assert.Equal(t, &want, again)
}

func TestGetSubjectReport(t *testing.T) {
	h := NewGetSubjectReportHandler(&fakeSource{doc: graded()})

	dto, err := h.Handle(context.Background(), GetSubjectReportQuery{SubjectID: "mat"})
	require.NoError(t, err)

	require.Len(t, dto.Terms, 3)
	first := dto.Terms[0]
	assert.True(t, first.Current)
	assert.Equal(t, []float64{8}, first.AV1)
	assert.Equal(t, []float64{7}, first.AV2)
	require.NotNil(t, first.PAT)
	assert.InDelta(t, 7.0, *first.PAT, 1e-9)
	assert.InDelta(t, 7.6, first.Average, 1e-9)
	assert.Equal(t, grade.StatusNoGrade, dto.Terms[1].Status)

	_, err = h.Handle(context.Background(), GetSubjectReportQuery{SubjectID: "x"})
	assert.ErrorIs(t, err, shared.ErrSubjectNotFound)
}
