// Package document defines the persisted application state and the pure
// transitions over it. A Document is never mutated in place: every
// transition returns a new value that shares untouched parts with its input.
package document

import (
	"fmt"
	"iter"
	"slices"

	"github.com/gaspar-hub/academic-hub/internal/domain/calendar"
	"github.com/gaspar-hub/academic-hub/internal/domain/grade"
	"github.com/gaspar-hub/academic-hub/internal/domain/group"
	"github.com/gaspar-hub/academic-hub/internal/domain/profile"
	"github.com/gaspar-hub/academic-hub/internal/domain/session"
	"github.com/gaspar-hub/academic-hub/internal/domain/shared"
	"github.com/gaspar-hub/academic-hub/internal/domain/subject"
)

// StorageKey identifies the persisted record.
const StorageKey = "gaspar_app_v2"

// Document is the whole application state.
type Document struct {
	// User is nil until someone logs in.
	User *profile.UserProfile `json:"user"`

	Subjects     []subject.Subject    `json:"subjects"`
	Calendar     []calendar.Event     `json:"calendar"`
	CurrentTerm  subject.Term         `json:"currentTrimester"`
	StudySession session.StudySession `json:"studySession"`
	StudyGroups  []group.Group        `json:"studyGroups"`

	// StudentsRegistry is carried through untouched.
	StudentsRegistry []RegistryEntry `json:"studentsRegistry"`
}

// Initialize returns the seed document used when nothing is persisted.
func Initialize(today shared.Date) Document {
	return Document{
		Subjects:         subject.Defaults(),
		Calendar:         []calendar.Event{},
		CurrentTerm:      subject.FirstTerm,
		StudySession:     session.New(today),
		StudyGroups:      group.Official(),
		StudentsRegistry: []RegistryEntry{},
	}
}

// HasUser reports whether a user is logged in.
func (d Document) HasUser() bool { return d.User != nil }

// UserGrade returns the logged-in student's grade, or "" when there is none.
func (d Document) UserGrade() string {
	if d.User == nil {
		return ""
	}
	return d.User.Grade
}

// ══════════════════════════════════════════════════════════════════════════════
// VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

// Validate checks the document invariants: a valid current term, unique ids
// per collection and grades within [0, 10].
func (d Document) Validate() error {
	if !d.CurrentTerm.Valid() {
		return shared.ErrInvalidTerm
	}
	if d.User != nil {
		if err := d.User.Validate(); err != nil {
			return err
		}
	}
	if err := uniqueIDs("subjects", d.Subjects, func(s subject.Subject) string { return s.ID }); err != nil {
		return err
	}
	if err := uniqueIDs("calendar", d.Calendar, func(e calendar.Event) string { return e.ID }); err != nil {
		return err
	}
	if err := uniqueIDs("studyGroups", d.StudyGroups, func(g group.Group) string { return g.ID }); err != nil {
		return err
	}
	for _, g := range d.StudyGroups {
		if err := uniqueIDs("messages of "+g.ID, g.Messages, func(m group.Message) string { return m.ID }); err != nil {
			return err
		}
	}
	for _, s := range d.Subjects {
		for _, t := range subject.AllTerms {
			if !gradesInRange(s.Terms.Get(t)) {
				return shared.WrapError("document", "Validate", shared.ErrValueOutOfRange,
					fmt.Sprintf("subject %s term %d", s.ID, t), shared.ErrGradeOutOfRange)
			}
		}
	}
	return nil
}

func uniqueIDs[T any](collection string, items []T, id func(T) string) error {
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		key := id(item)
		if _, ok := seen[key]; ok {
			return shared.WrapError("document", "Validate", shared.ErrAlreadyExists,
				fmt.Sprintf("%s: id %q", collection, key), shared.ErrDuplicateID)
		}
		seen[key] = struct{}{}
	}
	return nil
}

func gradesInRange(tg grade.TermGrades) bool {
	for _, v := range slices.Concat(tg.AV1, tg.AV2) {
		if !grade.InRange(v) {
			return false
		}
	}
	return tg.Pat == nil || grade.InRange(*tg.Pat)
}

// ══════════════════════════════════════════════════════════════════════════════
// QUERIES
// ══════════════════════════════════════════════════════════════════════════════

// VisibleGroups returns the study groups listed for the logged-in user.
func (d Document) VisibleGroups() []group.Group {
	return group.Visible(d.StudyGroups, d.UserGrade())
}

// OrderedCalendar returns the events in ascending date order.
func (d Document) OrderedCalendar() iter.Seq[calendar.Event] {
	return calendar.Ordered(d.Calendar)
}

// Subject returns the subject with the given id.
func (d Document) Subject(id string) (subject.Subject, bool) {
	return subject.Find(d.Subjects, id)
}

// Group returns the study group with the given id.
func (d Document) Group(id string) (group.Group, bool) {
	return group.Find(d.StudyGroups, id)
}

// CanParticipate reports whether the logged-in user may post to the group.
func (d Document) CanParticipate(groupID string) bool {
	g, ok := d.Group(groupID)
	return ok && group.CanParticipate(g, d.UserGrade())
}
