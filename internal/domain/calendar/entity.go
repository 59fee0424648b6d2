// Package calendar contains academic calendar events (tests, assignments)
// and their chronological view.
package calendar

import (
	"iter"
	"slices"
	"strings"

	"github.com/gaspar-hub/academic-hub/internal/domain/shared"
)

// EventType classifies a calendar entry. The values are the labels stored
// in the persisted record.
type EventType string

const (
	TypeAV1        EventType = "AV1"
	TypeAV2        EventType = "AV2"
	TypePAT        EventType = "PAT"
	TypeAssignment EventType = "Trabalho"
	TypeOther      EventType = "Outros"
)

// AllTypes lists the event types in display order.
var AllTypes = []EventType{TypeAV1, TypeAV2, TypePAT, TypeAssignment, TypeOther}

// Valid reports whether t is a known event type.
func (t EventType) Valid() bool {
	return slices.Contains(AllTypes, t)
}

// ParseType matches s case-insensitively against the known types. The
// English names "assignment" and "other" are accepted as aliases.
func ParseType(s string) (EventType, bool) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "assignment":
		return TypeAssignment, true
	case "other":
		return TypeOther, true
	}
	for _, t := range AllTypes {
		if strings.EqualFold(string(t), s) {
			return t, true
		}
	}
	return "", false
}

// GeneralSubjectName labels events whose subject is unknown.
const GeneralSubjectName = "Geral"

// Event is a dated entry in the student's agenda.
type Event struct {
	ID string `json:"id"`

	// SubjectID references a Subject. The reference is not enforced.
	SubjectID string `json:"subjectId"`

	// SubjectName is the subject's name at the time the event was created.
	SubjectName string `json:"subjectName"`

	Type    EventType   `json:"type"`
	Date    shared.Date `json:"date"`
	Content string      `json:"content"`
}

// NewEvent builds an event the way the agenda form does: subject and date
// are required, an empty type defaults to AV1.
func NewEvent(id, subjectID, subjectName string, typ EventType, date shared.Date, content string) (Event, error) {
	if strings.TrimSpace(subjectID) == "" || date.IsZero() {
		return Event{}, shared.ErrEventMissingFields
	}
	if typ == "" {
		typ = TypeAV1
	}
	if !typ.Valid() {
		return Event{}, shared.NewDomainError("calendar", "Create", shared.ErrInvalidInput, "unknown event type "+string(typ))
	}
	if strings.TrimSpace(subjectName) == "" {
		subjectName = GeneralSubjectName
	}
	return Event{
		ID:          id,
		SubjectID:   subjectID,
		SubjectName: subjectName,
		Type:        typ,
		Date:        date,
		Content:     content,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// REGISTRY OPERATIONS
// ══════════════════════════════════════════════════════════════════════════════

// Add appends e and returns a new slice.
func Add(events []Event, e Event) []Event {
	out := make([]Event, 0, len(events)+1)
	out = append(out, events...)
	return append(out, e)
}

// Remove returns the events without the one whose id matches. When no event
// matches, the input slice is returned unchanged.
func Remove(events []Event, id string) []Event {
	if !slices.ContainsFunc(events, func(e Event) bool { return e.ID == id }) {
		return events
	}
	out := make([]Event, 0, len(events)-1)
	for _, e := range events {
		if e.ID != id {
			out = append(out, e)
		}
	}
	return out
}

// Ordered yields the events in ascending date order. Events on the same day
// keep their insertion order. The stored slice is never reordered, and the
// sequence can be ranged over any number of times.
func Ordered(events []Event) iter.Seq[Event] {
	return func(yield func(Event) bool) {
		idx := make([]int, len(events))
		for i := range idx {
			idx[i] = i
		}
		slices.SortStableFunc(idx, func(a, b int) int {
			return events[a].Date.Compare(events[b].Date)
		})
		for _, i := range idx {
			if !yield(events[i]) {
				return
			}
		}
	}
}
