package query

import (
	"context"

	"github.com/gaspar-hub/academic-hub/internal/domain/grade"
	"github.com/gaspar-hub/academic-hub/internal/domain/shared"
	"github.com/gaspar-hub/academic-hub/internal/domain/subject"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET SUBJECT REPORT QUERY
// Grades, average and status of one subject in every term.
// ══════════════════════════════════════════════════════════════════════════════

// GetSubjectReportQuery selects the subject.
type GetSubjectReportQuery struct {
	SubjectID string
}

// TermReportDTO is one term of a subject.
type TermReportDTO struct {
	Term        subject.Term
	Current     bool
	AV1         []float64
	AV2         []float64
	PAT         *float64
	Average     float64
	Status      grade.Status
	StatusLabel string
}

// SubjectReportDTO is the full report.
type SubjectReportDTO struct {
	ID    string
	Name  string
	Color string
	Terms []TermReportDTO
}

// GetSubjectReportHandler builds subject reports.
type GetSubjectReportHandler struct {
	source Source
}

// NewGetSubjectReportHandler creates the handler.
func NewGetSubjectReportHandler(source Source) *GetSubjectReportHandler {
	return &GetSubjectReportHandler{source: source}
}

// Handle returns the report, or shared.ErrSubjectNotFound.
func (h *GetSubjectReportHandler) Handle(ctx context.Context, q GetSubjectReportQuery) (*SubjectReportDTO, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc := h.source.Document()
	s, ok := doc.Subject(q.SubjectID)
	if !ok {
		return nil, shared.ErrSubjectNotFound
	}

	dto := &SubjectReportDTO{ID: s.ID, Name: s.Name, Color: s.Color}
	for _, t := range subject.AllTerms {
		tg := s.Terms.Get(t).Clone()
		avg := s.Average(t)
		status := s.Status(t)
		dto.Terms = append(dto.Terms, TermReportDTO{
			Term:        t,
			Current:     t == doc.CurrentTerm,
			AV1:         tg.AV1,
			AV2:         tg.AV2,
			PAT:         tg.Pat,
			Average:     avg,
			Status:      status,
			StatusLabel: status.Label(),
		})
	}
	return dto, nil
}
