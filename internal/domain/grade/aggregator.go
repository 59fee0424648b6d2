// Package grade turns raw assessment grades into a term average and a
// qualitative performance status. Everything here is a pure function.
package grade

import (
	"errors"
	"math"
	"math/big"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONSTANTS
// ══════════════════════════════════════════════════════════════════════════════

// Assessment weights. They are a school rule, not configuration.
const (
	WeightPAT = 3
	WeightAV1 = 5
	WeightAV2 = 2
	// WeightTotal is the divisor applied to the weighted sum.
	WeightTotal = 10
)

// Grade bounds.
const (
	MinGrade = 0.0
	MaxGrade = 10.0
)

// Status thresholds, inclusive on the lower end of each band.
const (
	ApprovedThreshold = 7.0
	AtRiskThreshold   = 5.0
)

// ══════════════════════════════════════════════════════════════════════════════
// TERM GRADES
// ══════════════════════════════════════════════════════════════════════════════

// TermGrades holds the raw grades of one subject in one term.
type TermGrades struct {
	// AV1 grades, weight 5.
	AV1 []float64 `json:"av1"`

	// AV2 grades, weight 2.
	AV2 []float64 `json:"av2"`

	// Pat is the term-final evaluation, weight 3. nil means not graded yet.
	Pat *float64 `json:"pat"`
}

// Empty returns TermGrades with no grades recorded.
func Empty() TermGrades {
	return TermGrades{AV1: []float64{}, AV2: []float64{}}
}

// Clone returns a copy that shares no memory with tg.
func (tg TermGrades) Clone() TermGrades {
	out := TermGrades{
		AV1: cloneGrades(tg.AV1),
		AV2: cloneGrades(tg.AV2),
	}
	if tg.Pat != nil {
		out.Pat = Ptr(*tg.Pat)
	}
	return out
}

// HasGrades reports whether any AV1 or AV2 grade has been entered.
func (tg TermGrades) HasGrades() bool {
	return len(tg.AV1) > 0 || len(tg.AV2) > 0
}

// ══════════════════════════════════════════════════════════════════════════════
// AGGREGATION
// ══════════════════════════════════════════════════════════════════════════════

// ComputeAverage returns the weighted term average rounded to two decimals.
// A term without AV1 and AV2 grades averages 0, whatever its PAT.
func ComputeAverage(tg TermGrades) float64 {
	if !tg.HasGrades() {
		return 0
	}

	pat := 0.0
	if tg.Pat != nil {
		pat = *tg.Pat
	}

	weighted := pat*WeightPAT + mean(tg.AV1)*WeightAV1 + mean(tg.AV2)*WeightAV2
	return Round2(weighted / WeightTotal)
}

// Round2 rounds v to two decimal places, halves away from zero. It rounds
// the exact binary value of v, so 1.545 stored as 1.54499.. gives 1.54.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	neg := v < 0
	r := new(big.Rat).SetFloat64(math.Abs(v))
	r.Mul(r, big.NewRat(100, 1))
	r.Add(r, big.NewRat(1, 2))

	n := new(big.Int).Quo(r.Num(), r.Denom())
	if !n.IsInt64() {
		return v
	}
	out := float64(n.Int64()) / 100
	if neg {
		out = -out
	}
	return out
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// ══════════════════════════════════════════════════════════════════════════════
// STATUS
// ══════════════════════════════════════════════════════════════════════════════

// Status is the qualitative classification of an average.
type Status string

const (
	// StatusNoGrade - nothing graded yet (average is exactly 0).
	StatusNoGrade Status = "no_grade"
	// StatusApproved - average of 7 or more.
	StatusApproved Status = "approved"
	// StatusAtRisk - average from 5 up to, but excluding, 7.
	StatusAtRisk Status = "at_risk"
	// StatusDanger - average below 5.
	StatusDanger Status = "danger"
)

// Classify maps an average to its Status.
func Classify(average float64) Status {
	switch {
	case average == 0:
		return StatusNoGrade
	case average >= ApprovedThreshold:
		return StatusApproved
	case average >= AtRiskThreshold:
		return StatusAtRisk
	default:
		return StatusDanger
	}
}

// Label returns the label shown to students.
func (s Status) Label() string {
	switch s {
	case StatusApproved:
		return "Aprovado"
	case StatusAtRisk:
		return "Em Risco"
	case StatusDanger:
		return "Precisa Atenção"
	default:
		return "Nenhuma Nota"
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// INPUT
// ══════════════════════════════════════════════════════════════════════════════

var leadingNumber = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)

// ParseGrade converts user input into a grade. It reads the longest numeric
// prefix (a comma counts as the decimal point), treats anything unparsable as
// 0 and clamps the result to [0, 10]. It never fails.
func ParseGrade(raw string) float64 {
	s := strings.TrimSpace(strings.Replace(raw, ",", ".", 1))
	match := leadingNumber.FindString(s)
	if match == "" {
		return 0
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0
	}
	return Clamp(v)
}

// Clamp limits v to [MinGrade, MaxGrade]. NaN clamps to MinGrade.
func Clamp(v float64) float64 {
	if math.IsNaN(v) || v < MinGrade {
		return MinGrade
	}
	if v > MaxGrade {
		return MaxGrade
	}
	return v
}

// InRange reports whether v is a storable grade.
func InRange(v float64) bool {
	return v >= MinGrade && v <= MaxGrade
}

// Ptr returns a pointer to v, for building a PAT value.
func Ptr(v float64) *float64 {
	return &v
}

func cloneGrades(values []float64) []float64 {
	if values == nil {
		return nil
	}
	return slices.Clone(values)
}
