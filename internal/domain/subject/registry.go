package subject

import (
	"slices"
	"strings"

	"github.com/gaspar-hub/academic-hub/internal/domain/grade"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTRY OPERATIONS
// Every operation returns a new slice. Only the touched Subject and the
// touched TermGrades are copied; the other elements keep sharing memory with
// the input, so callers can detect changes cheaply. Unknown ids, invalid
// terms and invalid kinds leave the input untouched and return it as is.
// ══════════════════════════════════════════════════════════════════════════════

// Add appends a new subject with the given id and name. A blank name is a no-op.
func Add(subjects []Subject, id, name string) []Subject {
	name = strings.TrimSpace(name)
	if name == "" || id == "" {
		return subjects
	}
	out := make([]Subject, 0, len(subjects)+1)
	out = append(out, subjects...)
	return append(out, New(id, name, DefaultColor))
}

// Find returns the subject with the given id.
func Find(subjects []Subject, id string) (Subject, bool) {
	i := indexOf(subjects, id)
	if i < 0 {
		return Subject{}, false
	}
	return subjects[i], true
}

// SetGrade parses raw, clamps it to [0, 10] and stores it at index of the
// chosen sequence. A negative index writes the first slot; an index past the
// end appends.
func SetGrade(subjects []Subject, id string, term Term, kind Kind, index int, raw string) []Subject {
	if !kind.Valid() {
		return subjects
	}
	value := grade.ParseGrade(raw)
	return updateTerm(subjects, id, term, func(tg grade.TermGrades) grade.TermGrades {
		seq := slices.Clone(sequence(tg, kind))
		switch {
		case len(seq) == 0 || index >= len(seq):
			seq = append(seq, value)
		case index < 0:
			seq[0] = value
		default:
			seq[index] = value
		}
		return withSequence(tg, kind, seq)
	})
}

// AppendGrade appends a 0 entry to the chosen sequence.
func AppendGrade(subjects []Subject, id string, term Term, kind Kind) []Subject {
	if !kind.Valid() {
		return subjects
	}
	return updateTerm(subjects, id, term, func(tg grade.TermGrades) grade.TermGrades {
		seq := sequence(tg, kind)
		next := make([]float64, len(seq), len(seq)+1)
		copy(next, seq)
		return withSequence(tg, kind, append(next, 0))
	})
}

// SetPat parses raw and stores it as the PAT grade. Blank input clears it.
func SetPat(subjects []Subject, id string, term Term, raw string) []Subject {
	if strings.TrimSpace(raw) == "" {
		return ClearPat(subjects, id, term)
	}
	value := grade.ParseGrade(raw)
	return updateTerm(subjects, id, term, func(tg grade.TermGrades) grade.TermGrades {
		tg.Pat = grade.Ptr(value)
		return tg
	})
}

// ClearPat removes the PAT grade of the term.
func ClearPat(subjects []Subject, id string, term Term) []Subject {
	return updateTerm(subjects, id, term, func(tg grade.TermGrades) grade.TermGrades {
		tg.Pat = nil
		return tg
	})
}

// updateTerm copies the slice, then replaces the subject and its term with
// the result of fn. fn receives a shallow copy and must not mutate shared
// slices in place.
func updateTerm(subjects []Subject, id string, term Term, fn func(grade.TermGrades) grade.TermGrades) []Subject {
	if !term.Valid() {
		return subjects
	}
	i := indexOf(subjects, id)
	if i < 0 {
		return subjects
	}

	out := slices.Clone(subjects)
	s := out[i]
	s.Terms = s.Terms.With(term, fn(s.Terms.Get(term)))
	out[i] = s
	return out
}

func indexOf(subjects []Subject, id string) int {
	return slices.IndexFunc(subjects, func(s Subject) bool { return s.ID == id })
}

func sequence(tg grade.TermGrades, kind Kind) []float64 {
	if kind == KindAV2 {
		return tg.AV2
	}
	return tg.AV1
}

func withSequence(tg grade.TermGrades, kind Kind, seq []float64) grade.TermGrades {
	if kind == KindAV2 {
		tg.AV2 = seq
	} else {
		tg.AV1 = seq
	}
	return tg
}
