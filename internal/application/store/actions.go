package store

import (
	"context"
	"strings"

	"github.com/gaspar-hub/academic-hub/internal/domain/calendar"
	"github.com/gaspar-hub/academic-hub/internal/domain/document"
	"github.com/gaspar-hub/academic-hub/internal/domain/group"
	"github.com/gaspar-hub/academic-hub/internal/domain/profile"
	"github.com/gaspar-hub/academic-hub/internal/domain/shared"
	"github.com/gaspar-hub/academic-hub/internal/domain/subject"
	"github.com/gaspar-hub/academic-hub/pkg/logger"
)

var (
	// ErrEmptyMessage is returned when a message has no visible text.
	ErrEmptyMessage = shared.NewDomainError("group", "Post", shared.ErrEmptyValue, "message text is required")

	// ErrCannotPost is returned when the user may not post to a group.
	ErrCannotPost = shared.NewDomainError("group", "Post", shared.ErrForbidden, "user cannot post to this group")

	// ErrEmptyGroupName is returned when a group name is blank.
	ErrEmptyGroupName = shared.NewDomainError("group", "Create", shared.ErrEmptyValue, "group name is required")

	// ErrEmptySubjectName is returned when a subject name is blank.
	ErrEmptySubjectName = shared.NewDomainError("subject", "Add", shared.ErrEmptyValue, "subject name is required")
)

// ══════════════════════════════════════════════════════════════════════════════
// SESSION
// ══════════════════════════════════════════════════════════════════════════════

// LoginStudent logs a student in.
func (s *Store) LoginStudent(ctx context.Context, name, schoolGrade string) (profile.UserProfile, error) {
	user, err := profile.NewStudent(name, schoolGrade)
	if err != nil {
		return profile.UserProfile{}, err
	}
	s.Apply(ctx, func(d document.Document) document.Document { return document.Login(d, user) })
	s.opts.log.Info("user logged in", logger.Role(string(user.Role)))
	return user, nil
}

// LoginTeacher logs a teacher in. The email must be on the configured
// whitelist, or profile.DefaultTeachers when none was configured.
func (s *Store) LoginTeacher(ctx context.Context, name, email string) (profile.UserProfile, error) {
	authorized := s.opts.teachers
	if len(authorized) == 0 {
		authorized = profile.DefaultTeachers
	}
	user, err := profile.NewTeacher(name, email, authorized)
	if err != nil {
		s.opts.log.Warn("teacher login rejected", logger.Email(email), logger.Err(err))
		return profile.UserProfile{}, err
	}
	s.Apply(ctx, func(d document.Document) document.Document { return document.Login(d, user) })
	s.opts.log.Info("user logged in", logger.Role(string(user.Role)))
	return user, nil
}

// Logout removes the stored record and resets the Document to the seed.
// The in-memory reset happens even when clearing the record fails.
func (s *Store) Logout(ctx context.Context) error {
	today := s.today()
	s.Apply(ctx, func(d document.Document) document.Document { return document.Logout(d, today) })

	ctx, cancel := context.WithTimeout(ctx, s.opts.saveTimeout)
	defer cancel()
	if err := s.persistence.Clear(ctx); err != nil {
		s.opts.log.Warn("failed to clear stored record", logger.Err(err))
		return err
	}
	s.opts.log.Info("user logged out")
	return nil
}

// RequireUser returns ErrNotLoggedIn when nobody is logged in.
func (s *Store) RequireUser() (profile.UserProfile, error) {
	d := s.Document()
	if d.User == nil {
		return profile.UserProfile{}, shared.ErrNotLoggedIn
	}
	return *d.User, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// SUBJECTS AND GRADES
// ══════════════════════════════════════════════════════════════════════════════

// SetCurrentTerm selects the term shown by the dashboard and grade views.
func (s *Store) SetCurrentTerm(ctx context.Context, t subject.Term) error {
	if !t.Valid() {
		return shared.ErrInvalidTerm
	}
	s.Apply(ctx, func(d document.Document) document.Document { return document.SetCurrentTerm(d, t) })
	return nil
}

// AddSubject registers a subject under a fresh id.
func (s *Store) AddSubject(ctx context.Context, name string) (subject.Subject, error) {
	if strings.TrimSpace(name) == "" {
		return subject.Subject{}, ErrEmptySubjectName
	}
	id := s.newID()
	next := s.Apply(ctx, func(d document.Document) document.Document { return document.AddSubject(d, id, name) })
	created, _ := next.Subject(id)
	s.opts.log.Debug("subject added", logger.SubjectID(id))
	return created, nil
}

// SetGrade stores raw at index of the kind sequence of term t.
func (s *Store) SetGrade(ctx context.Context, subjectID string, t subject.Term, kind subject.Kind, index int, raw string) (subject.Subject, error) {
	if err := validKind(kind); err != nil {
		return subject.Subject{}, err
	}
	return s.updateSubject(ctx, subjectID, t, func(d document.Document) document.Document {
		return document.SetGrade(d, subjectID, t, kind, index, raw)
	})
}

// AppendGrade adds an empty (0) grade slot.
func (s *Store) AppendGrade(ctx context.Context, subjectID string, t subject.Term, kind subject.Kind) (subject.Subject, error) {
	if err := validKind(kind); err != nil {
		return subject.Subject{}, err
	}
	return s.updateSubject(ctx, subjectID, t, func(d document.Document) document.Document {
		return document.AppendGrade(d, subjectID, t, kind)
	})
}

// SetPat stores the PAT grade of term t. A blank raw clears it.
func (s *Store) SetPat(ctx context.Context, subjectID string, t subject.Term, raw string) (subject.Subject, error) {
	return s.updateSubject(ctx, subjectID, t, func(d document.Document) document.Document {
		return document.SetPat(d, subjectID, t, raw)
	})
}

func validKind(kind subject.Kind) error {
	if !kind.Valid() {
		return shared.NewDomainError("subject", "SetGrade", shared.ErrInvalidInput, "kind must be av1 or av2")
	}
	return nil
}

// updateSubject applies op once the term and the subject are known to exist.
func (s *Store) updateSubject(ctx context.Context, subjectID string, t subject.Term, op Op) (subject.Subject, error) {
	if !t.Valid() {
		return subject.Subject{}, shared.ErrInvalidTerm
	}
	if _, ok := s.Document().Subject(subjectID); !ok {
		return subject.Subject{}, shared.ErrSubjectNotFound
	}
	next := s.Apply(ctx, op)
	updated, _ := next.Subject(subjectID)
	return updated, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// CALENDAR
// ══════════════════════════════════════════════════════════════════════════════

// AddEvent schedules an assessment. The subject name is taken from the
// registry, or "Geral" when the subject is unknown.
func (s *Store) AddEvent(ctx context.Context, subjectID string, typ calendar.EventType, date shared.Date, content string) (calendar.Event, error) {
	name := ""
	if sub, ok := s.Document().Subject(subjectID); ok {
		name = sub.Name
	}
	e, err := calendar.NewEvent(s.newID(), subjectID, name, typ, date, content)
	if err != nil {
		return calendar.Event{}, err
	}
	s.Apply(ctx, func(d document.Document) document.Document { return document.AddEvent(d, e) })
	s.opts.log.Debug("event added", logger.EventID(e.ID), logger.SubjectID(subjectID))
	return e, nil
}

// RemoveEvent deletes an event. It reports false when no event has the id;
// the Document is left unchanged in that case.
func (s *Store) RemoveEvent(ctx context.Context, id string) bool {
	if !s.hasEvent(id) {
		return false
	}
	s.Apply(ctx, func(d document.Document) document.Document { return document.RemoveEvent(d, id) })
	return true
}

func (s *Store) hasEvent(id string) bool {
	for _, e := range s.Document().Calendar {
		if e.ID == id {
			return true
		}
	}
	return false
}

// ══════════════════════════════════════════════════════════════════════════════
// STUDY GROUPS
// ══════════════════════════════════════════════════════════════════════════════

// CreateGroup creates a custom study group.
func (s *Store) CreateGroup(ctx context.Context, name string, privacy group.Privacy) (group.Group, error) {
	if strings.TrimSpace(name) == "" {
		return group.Group{}, ErrEmptyGroupName
	}
	id := group.CustomPrefix + s.newID()
	next := s.Apply(ctx, func(d document.Document) document.Document {
		return document.CreateGroup(d, id, name, privacy)
	})
	created, _ := next.Group(id)
	s.opts.log.Debug("group created", logger.GroupID(id))
	return created, nil
}

// PostMessage posts text to a group as the logged-in user.
func (s *Store) PostMessage(ctx context.Context, groupID, text string) (group.Message, error) {
	d := s.Document()
	if _, ok := d.Group(groupID); !ok {
		return group.Message{}, shared.ErrGroupNotFound
	}
	if strings.TrimSpace(text) == "" {
		return group.Message{}, ErrEmptyMessage
	}
	if !d.CanParticipate(groupID) {
		return group.Message{}, ErrCannotPost
	}

	id := s.newID()
	next := s.Apply(ctx, func(d document.Document) document.Document {
		return document.PostMessage(d, groupID, id, text)
	})
	g, _ := next.Group(groupID)
	msg, _ := g.LastMessage()
	return msg, nil
}
