// Package subject contains the Subject entity and the registry operations
// that record grades per term.
package subject

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/gaspar-hub/academic-hub/internal/domain/grade"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Term is an academic grading period (trimestre): 1, 2 or 3.
type Term int

const (
	FirstTerm  Term = 1
	SecondTerm Term = 2
	ThirdTerm  Term = 3
)

// TermCount is the number of terms in an academic year.
const TermCount = 3

// AllTerms lists the terms in order.
var AllTerms = []Term{FirstTerm, SecondTerm, ThirdTerm}

// Valid reports whether t is 1, 2 or 3.
func (t Term) Valid() bool {
	return t >= FirstTerm && t <= ThirdTerm
}

// String returns the short display form, e.g. "1º TRIM".
func (t Term) String() string {
	return fmt.Sprintf("%dº TRIM", int(t))
}

// ParseTerm parses "1", "2" or "3".
func ParseTerm(s string) (Term, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || !Term(n).Valid() {
		return 0, false
	}
	return Term(n), true
}

// Kind selects one of the two graded-assessment sequences of a term.
type Kind string

const (
	KindAV1 Kind = "av1"
	KindAV2 Kind = "av2"
)

// Valid reports whether k is av1 or av2.
func (k Kind) Valid() bool {
	return k == KindAV1 || k == KindAV2
}

// Label returns the display label including the weight.
func (k Kind) Label() string {
	switch k {
	case KindAV1:
		return "AV1 (Peso 5)"
	case KindAV2:
		return "AV2 (Peso 2)"
	default:
		return string(k)
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// TERMS
// ══════════════════════════════════════════════════════════════════════════════

// Terms holds the grades of the three terms. Being a fixed array, every
// subject always has all three terms.
type Terms [TermCount]grade.TermGrades

// EmptyTerms returns three empty term containers.
func EmptyTerms() Terms {
	return Terms{grade.Empty(), grade.Empty(), grade.Empty()}
}

// Get returns the grades of term t. Invalid terms yield empty grades.
func (ts Terms) Get(t Term) grade.TermGrades {
	if !t.Valid() {
		return grade.Empty()
	}
	return ts[t-1]
}

// With returns a copy of ts with term t replaced.
func (ts Terms) With(t Term, tg grade.TermGrades) Terms {
	if t.Valid() {
		ts[t-1] = tg
	}
	return ts
}

// MarshalJSON encodes the terms as {"1": …, "2": …, "3": …}.
func (ts Terms) MarshalJSON() ([]byte, error) {
	m := make(map[string]grade.TermGrades, TermCount)
	for _, t := range AllTerms {
		m[strconv.Itoa(int(t))] = ts.Get(t)
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes the object form. Missing terms decode as empty.
func (ts *Terms) UnmarshalJSON(data []byte) error {
	var m map[string]grade.TermGrades
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	out := EmptyTerms()
	for key, tg := range m {
		t, ok := ParseTerm(key)
		if !ok {
			continue
		}
		out[t-1] = tg
	}
	*ts = out
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: SUBJECT
// ══════════════════════════════════════════════════════════════════════════════

// DefaultColor is the display color given to subjects added by the student.
const DefaultColor = "#6366F1"

// Subject is a school subject with its per-term grades.
type Subject struct {
	// ID is generated at creation and never reused.
	ID string `json:"id"`

	// Name is the display name, e.g. "Matemática".
	Name string `json:"name"`

	// Color is a display token (hex color).
	Color string `json:"color"`

	// Terms holds the grades of terms 1..3.
	Terms Terms `json:"trimesters"`
}

// New creates a subject with empty grades in all three terms.
func New(id, name, color string) Subject {
	return Subject{
		ID:    id,
		Name:  name,
		Color: color,
		Terms: EmptyTerms(),
	}
}

// Average returns the computed average of term t.
func (s Subject) Average(t Term) float64 {
	return grade.ComputeAverage(s.Terms.Get(t))
}

// Status returns the performance status of term t.
func (s Subject) Status(t Term) grade.Status {
	return grade.Classify(s.Average(t))
}

// Defaults returns the subjects seeded into every fresh document.
func Defaults() []Subject {
	return []Subject{
		New("mat", "Matemática", "#6366F1"),
		New("por", "Português", "#EC4899"),
	}
}
