package calendar

import (
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaspar-hub/academic-hub/internal/domain/shared"
)

func day(d int) shared.Date {
	return shared.NewDate(2026, time.March, d)
}

func sample() []Event {
	return []Event{
		{ID: "e1", SubjectID: "mat", Type: TypeAV1, Date: day(20)},
		{ID: "e2", SubjectID: "por", Type: TypePAT, Date: day(5)},
		{ID: "e3", SubjectID: "mat", Type: TypeOther, Date: day(20)},
		{ID: "e4", SubjectID: "bio", Type: TypeAssignment, Date: day(1)},
	}
}

func ids(seq []Event) []string {
	out := make([]string, 0, len(seq))
	for _, e := range seq {
		out = append(out, e.ID)
	}
	return out
}

func TestOrdered_AscendingAndStable(t *testing.T) {
	events := sample()

	ordered := slices.Collect(Ordered(events))

	assert.Equal(t, []string{"e4", "e2", "e1", "e3"}, ids(ordered))
	assert.Equal(t, []string{"e1", "e2", "e3", "e4"}, ids(events), "storage order must not change")
}

func TestOrdered_Restartable(t *testing.T) {
	seq := Ordered(sample())

	first := slices.Collect(seq)
	second := slices.Collect(seq)

	assert.Equal(t, first, second)
}

func TestOrdered_EarlyStop(t *testing.T) {
	var got []string
	for e := range Ordered(sample()) {
		got = append(got, e.ID)
		if len(got) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"e4", "e2"}, got)
}

func TestAddRemove(t *testing.T) {
	events := Add(nil, Event{ID: "a", Date: day(2)})
	events = Add(events, Event{ID: "b", Date: day(1)})
	require.Len(t, events, 2)

	out := Remove(events, "a")

	assert.Equal(t, []string{"b"}, ids(out))
	assert.Len(t, events, 2)
}

func TestRemove_MissingIDIsNoop(t *testing.T) {
	events := sample()

	out := Remove(events, "nope")

	assert.Equal(t, events, out)
}

func TestNewEvent(t *testing.T) {
	e, err := NewEvent("id1", "mat", "", "", day(3), "Capítulos 1 a 3")
	require.NoError(t, err)
	assert.Equal(t, TypeAV1, e.Type)
	assert.Equal(t, GeneralSubjectName, e.SubjectName)

	_, err = NewEvent("id2", "", "Matemática", TypePAT, day(3), "")
	assert.ErrorIs(t, err, shared.ErrEmptyValue)

	_, err = NewEvent("id3", "mat", "Matemática", TypePAT, shared.Date{}, "")
	assert.ErrorIs(t, err, shared.ErrEmptyValue)

	_, err = NewEvent("id4", "mat", "Matemática", EventType("Quiz"), day(3), "")
	assert.True(t, shared.IsValidation(err))
}

func TestParseType(t *testing.T) {
	for in, want := range map[string]EventType{
		"av1":        TypeAV1,
		"PAT":        TypePAT,
		"trabalho":   TypeAssignment,
		"assignment": TypeAssignment,
		"other":      TypeOther,
	} {
		got, ok := ParseType(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got)
	}

	_, ok := ParseType("exam")
	assert.False(t, ok)
}
