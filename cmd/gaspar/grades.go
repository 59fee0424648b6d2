package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gaspar-hub/academic-hub/internal/application/query"
	"github.com/gaspar-hub/academic-hub/internal/domain/subject"
)

// ══════════════════════════════════════════════════════════════════════════════
// SUBJECTS
// ══════════════════════════════════════════════════════════════════════════════

func newSubjectCmd(get appFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "subject",
		Aliases: []string{"subjects"},
		Short:   "Gerenciar matérias",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add NAME",
		Short: "Adicionar uma matéria",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			if err := requireLogin(a); err != nil {
				return err
			}
			s, err := a.store.AddSubject(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Matéria adicionada: %s (%s)\n", s.Name, s.ID)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Listar as matérias com a média do trimestre atual",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()
			if err := requireLogin(a); err != nil {
				return err
			}
			doc := a.store.Document()
			out := cmd.OutOrStdout()
			if len(doc.Subjects) == 0 {
				fmt.Fprintln(out, "Nenhuma matéria cadastrada.")
				return nil
			}
			for _, s := range doc.Subjects {
				fmt.Fprintf(out, "%-12s %-24s %5.1f  %s\n", s.ID, s.Name, s.Average(doc.CurrentTerm), s.Status(doc.CurrentTerm).Label())
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show ID",
		Short: "Mostrar as notas de uma matéria nos três trimestres",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			if err := requireLogin(a); err != nil {
				return err
			}
			report, err := a.report.Handle(cmd.Context(), query.GetSubjectReportQuery{SubjectID: args[0]})
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), report)
			return nil
		},
	})
	return cmd
}

func printReport(w io.Writer, r *query.SubjectReportDTO) {
	fmt.Fprintf(w, "%s (%s)\n", r.Name, r.ID)
	for _, t := range r.Terms {
		marker := " "
		if t.Current {
			marker = "*"
		}
		pat := "-"
		if t.PAT != nil {
			pat = fmt.Sprintf("%.1f", *t.PAT)
		}
		fmt.Fprintf(w, "%s %s  AV1 %s  AV2 %s  PAT %s  média %.1f  %s\n",
			marker, t.Term, formatGrades(t.AV1), formatGrades(t.AV2), pat, t.Average, t.StatusLabel)
	}
}

func formatGrades(values []float64) string {
	if len(values) == 0 {
		return "[]"
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%.1f", v)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// ══════════════════════════════════════════════════════════════════════════════
// GRADES
// ══════════════════════════════════════════════════════════════════════════════

type gradeFlags struct {
	term  int
	kind  string
	index int
}

func (f *gradeFlags) register(cmd *cobra.Command, withKind bool) {
	cmd.Flags().IntVarP(&f.term, "term", "t", 0, "trimestre (padrão: o atual)")
	if withKind {
		cmd.Flags().StringVarP(&f.kind, "kind", "k", string(subject.KindAV1), "av1 ou av2")
	}
}

func newGradeCmd(get appFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grade",
		Short: "Lançar notas (AV1, AV2 e PAT)",
	}

	var addFlags gradeFlags
	add := &cobra.Command{
		Use:   "add SUBJECT VALUE",
		Short: "Adicionar uma nota ao fim da sequência AV1 ou AV2",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			if err := requireLogin(a); err != nil {
				return err
			}
			term, err := resolveTerm(a, addFlags.term)
			if err != nil {
				return err
			}
			kind := subject.Kind(addFlags.kind)
			current, _ := a.store.Document().Subject(args[0])
			// An index past the end appends.
			next := len(sequence(current, term, kind))
			s, err := a.store.SetGrade(cmd.Context(), args[0], term, kind, next, args[1])
			if err != nil {
				return err
			}
			printSubjectTerm(cmd.OutOrStdout(), s, term)
			return nil
		},
	}
	addFlags.register(add, true)

	var setFlags gradeFlags
	set := &cobra.Command{
		Use:   "set SUBJECT VALUE",
		Short: "Corrigir uma nota existente",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			if err := requireLogin(a); err != nil {
				return err
			}
			term, err := resolveTerm(a, setFlags.term)
			if err != nil {
				return err
			}
			s, err := a.store.SetGrade(cmd.Context(), args[0], term, subject.Kind(setFlags.kind), setFlags.index, args[1])
			if err != nil {
				return err
			}
			printSubjectTerm(cmd.OutOrStdout(), s, term)
			return nil
		},
	}
	setFlags.register(set, true)
	set.Flags().IntVarP(&setFlags.index, "index", "i", 0, "posição da nota na sequência, a partir de 0")

	var patFlags gradeFlags
	pat := &cobra.Command{
		Use:   "pat SUBJECT [VALUE]",
		Short: "Lançar a PAT do trimestre; sem valor, apaga",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			if err := requireLogin(a); err != nil {
				return err
			}
			term, err := resolveTerm(a, patFlags.term)
			if err != nil {
				return err
			}
			raw := ""
			if len(args) == 2 {
				raw = args[1]
			}
			s, err := a.store.SetPat(cmd.Context(), args[0], term, raw)
			if err != nil {
				return err
			}
			printSubjectTerm(cmd.OutOrStdout(), s, term)
			return nil
		},
	}
	patFlags.register(pat, false)

	cmd.AddCommand(add, set, pat)
	return cmd
}

func sequence(s subject.Subject, t subject.Term, k subject.Kind) []float64 {
	tg := s.Terms.Get(t)
	if k == subject.KindAV2 {
		return tg.AV2
	}
	return tg.AV1
}

func printSubjectTerm(w io.Writer, s subject.Subject, t subject.Term) {
	tg := s.Terms.Get(t)
	pat := "-"
	if tg.Pat != nil {
		pat = fmt.Sprintf("%.1f", *tg.Pat)
	}
	fmt.Fprintf(w, "%s %s  AV1 %s  AV2 %s  PAT %s  média %.1f  %s\n",
		s.Name, t, formatGrades(tg.AV1), formatGrades(tg.AV2), pat, s.Average(t), s.Status(t).Label())
}
