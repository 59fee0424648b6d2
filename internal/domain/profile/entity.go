// Package profile contains the logged-in user's profile and the login rules
// for students and teachers.
package profile

import (
	"net/mail"
	"slices"
	"strings"

	"github.com/gaspar-hub/academic-hub/internal/domain/shared"
)

// Role distinguishes students from teachers.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleTeacher
}

// StudentGrades lists the school grades a student can pick at login.
var StudentGrades = []string{
	"1º Ano Médio",
	"2º Ano Médio",
	"3º Ano Médio",
	"9º Ano Fundamental",
}

// DefaultTeachers is the built-in list of teacher emails allowed to log in.
var DefaultTeachers = []string{
	"lara.rieger@gmail.com",
	"coordenacao.gaspar@gmail.com",
	"professor.exemplo@gmail.com",
}

// TeacherSubjects are the subject ids assigned to every teacher.
var TeacherSubjects = []string{"mat", "por"}

// UserProfile is the user that owns the document. Students carry a grade;
// teachers carry an email and their assigned subjects.
type UserProfile struct {
	Name             string   `json:"name"`
	Role             Role     `json:"role"`
	Grade            string   `json:"grade,omitempty"`
	Email            string   `json:"email,omitempty"`
	AssignedSubjects []string `json:"assignedSubjects,omitempty"`
}

// NewStudent creates a student profile. The grade must be one of
// StudentGrades.
func NewStudent(name, grade string) (UserProfile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return UserProfile{}, shared.ErrEmptyName
	}
	if !slices.Contains(StudentGrades, grade) {
		return UserProfile{}, shared.ErrInvalidGrade
	}
	return UserProfile{Name: name, Role: RoleStudent, Grade: grade}, nil
}

// NewTeacher creates a teacher profile. The email is compared
// case-insensitively against authorized; an email outside the list yields
// ErrAccessDenied.
func NewTeacher(name, email string, authorized []string) (UserProfile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return UserProfile{}, shared.ErrEmptyName
	}
	email = strings.TrimSpace(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return UserProfile{}, shared.ErrInvalidEmail
	}
	if !isAuthorized(email, authorized) {
		return UserProfile{}, shared.ErrAccessDenied
	}
	return UserProfile{
		Name:             name,
		Role:             RoleTeacher,
		Email:            email,
		AssignedSubjects: slices.Clone(TeacherSubjects),
	}, nil
}

func isAuthorized(email string, authorized []string) bool {
	email = strings.ToLower(email)
	return slices.ContainsFunc(authorized, func(a string) bool {
		return strings.ToLower(strings.TrimSpace(a)) == email
	})
}

// IsTeacher reports whether the profile belongs to a teacher.
func (u UserProfile) IsTeacher() bool { return u.Role == RoleTeacher }

// FirstName returns the first word of the name.
func (u UserProfile) FirstName() string {
	if fields := strings.Fields(u.Name); len(fields) > 0 {
		return fields[0]
	}
	return ""
}

// Validate checks a profile decoded from storage.
func (u UserProfile) Validate() error {
	if !u.Role.Valid() {
		return shared.ErrUnknownRole
	}
	if strings.TrimSpace(u.Name) == "" {
		return shared.ErrEmptyName
	}
	return nil
}
