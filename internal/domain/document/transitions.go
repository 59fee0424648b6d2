package document

import (
	"strings"

	"github.com/gaspar-hub/academic-hub/internal/domain/calendar"
	"github.com/gaspar-hub/academic-hub/internal/domain/group"
	"github.com/gaspar-hub/academic-hub/internal/domain/profile"
	"github.com/gaspar-hub/academic-hub/internal/domain/session"
	"github.com/gaspar-hub/academic-hub/internal/domain/shared"
	"github.com/gaspar-hub/academic-hub/internal/domain/subject"
)

// ══════════════════════════════════════════════════════════════════════════════
// TRANSITIONS
// Each function takes a Document by value and returns the next one.
// Fresh ids are supplied by the caller.
// ══════════════════════════════════════════════════════════════════════════════

// Login sets the user profile.
func Login(d Document, user profile.UserProfile) Document {
	d.User = &user
	return d
}

// Logout returns a fresh seed document.
func Logout(_ Document, today shared.Date) Document {
	return Initialize(today)
}

// SetCurrentTerm switches the selected term. Invalid terms are ignored.
func SetCurrentTerm(d Document, t subject.Term) Document {
	if t.Valid() {
		d.CurrentTerm = t
	}
	return d
}

// AddSubject appends a subject. Blank names are ignored.
func AddSubject(d Document, id, name string) Document {
	d.Subjects = subject.Add(d.Subjects, id, name)
	return d
}

// SetGrade stores a parsed and clamped grade.
func SetGrade(d Document, subjectID string, t subject.Term, kind subject.Kind, index int, raw string) Document {
	d.Subjects = subject.SetGrade(d.Subjects, subjectID, t, kind, index, raw)
	return d
}

// AppendGrade appends a 0 grade slot.
func AppendGrade(d Document, subjectID string, t subject.Term, kind subject.Kind) Document {
	d.Subjects = subject.AppendGrade(d.Subjects, subjectID, t, kind)
	return d
}

// SetPat stores the PAT grade; blank raw clears it.
func SetPat(d Document, subjectID string, t subject.Term, raw string) Document {
	d.Subjects = subject.SetPat(d.Subjects, subjectID, t, raw)
	return d
}

// AddEvent appends e. When e carries no subject name, the subject's current
// name is used, falling back to "Geral".
func AddEvent(d Document, e calendar.Event) Document {
	if strings.TrimSpace(e.SubjectName) == "" {
		e.SubjectName = calendar.GeneralSubjectName
		if s, ok := d.Subject(e.SubjectID); ok {
			e.SubjectName = s.Name
		}
	}
	d.Calendar = calendar.Add(d.Calendar, e)
	return d
}

// RemoveEvent drops the event with the given id.
func RemoveEvent(d Document, id string) Document {
	d.Calendar = calendar.Remove(d.Calendar, id)
	return d
}

// CreateGroup appends a custom study group.
func CreateGroup(d Document, id, name string, privacy group.Privacy) Document {
	d.StudyGroups = group.Create(d.StudyGroups, id, name, privacy)
	return d
}

// PostMessage appends a message from the logged-in user. The sender is the
// user's first name.
func PostMessage(d Document, groupID, messageID, text string) Document {
	sender := ""
	if d.User != nil {
		sender = d.User.FirstName()
	}
	msg := group.Message{ID: messageID, Text: text, Sender: sender, IsMe: true}
	d.StudyGroups = group.Post(d.StudyGroups, groupID, msg, d.UserGrade())
	return d
}

// CommitStudy adds a stopped timer segment to the study session.
func CommitStudy(d Document, elapsedSeconds int) Document {
	d.StudySession = session.CommitElapsed(d.StudySession, elapsedSeconds)
	return d
}

// RollOverDay resets today's study time when the day has changed.
func RollOverDay(d Document, today shared.Date) Document {
	d.StudySession = session.RollOver(d.StudySession, today)
	return d
}
