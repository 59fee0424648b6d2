package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gaspar-hub/academic-hub/internal/application/query"
	"github.com/gaspar-hub/academic-hub/internal/application/tutor"
	"github.com/gaspar-hub/academic-hub/internal/domain/session"
	"github.com/gaspar-hub/academic-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// FOCUS TIMER
// ══════════════════════════════════════════════════════════════════════════════

func newFocusCmd(get appFunc) *cobra.Command {
	var (
		duration time.Duration
		quiet    bool
	)
	cmd := &cobra.Command{
		Use:   "focus",
		Short: "Cronômetro de estudo; Ctrl+C encerra e salva o tempo",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()
			if err := requireLogin(a); err != nil {
				return err
			}
			ctx := cmd.Context()
			if duration > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, duration)
				defer cancel()
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Foco iniciado. Ctrl+C para encerrar.")
			elapsed := a.store.RunTimer(ctx, time.Second, func(n int) {
				if !quiet {
					fmt.Fprintf(out, "\r%s", session.Format(n))
				}
			})

			s := a.store.Document().StudySession
			fmt.Fprintf(out, "\nSessão encerrada: %s. Hoje: %s.\n", session.Format(elapsed), session.FormatShort(s.TodaySeconds))
			return nil
		},
	}
	cmd.Flags().DurationVar(&duration, "for", 0, "encerrar automaticamente após a duração, e.g. 25m")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "não mostrar o cronômetro")
	return cmd
}

// ══════════════════════════════════════════════════════════════════════════════
// DASHBOARD
// ══════════════════════════════════════════════════════════════════════════════

func newDashboardCmd(get appFunc) *cobra.Command {
	var q query.GetDashboardQuery
	var term int
	cmd := &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"home"},
		Short:   "Resumo do trimestre",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()
			if err := requireLogin(a); err != nil {
				return err
			}
			t, err := resolveTerm(a, term)
			if err != nil {
				return err
			}
			q.Term = t
			dto, err := a.dashboard.Handle(cmd.Context(), q)
			if err != nil {
				return err
			}
			printDashboard(cmd.OutOrStdout(), dto)
			return nil
		},
	}
	cmd.Flags().IntVarP(&term, "term", "t", 0, "trimestre (padrão: o atual)")
	cmd.Flags().IntVarP(&q.UpcomingLimit, "upcoming", "n", 3, "número de próximas avaliações")
	return cmd
}

func printDashboard(w io.Writer, d *query.DashboardDTO) {
	fmt.Fprintf(w, "%s\n%s\n\n", d.Greeting, d.Subtitle)
	fmt.Fprintf(w, "Média geral:     %s\n", d.OverallAverageText)
	if d.BestSubject == "-" {
		fmt.Fprintln(w, "Melhor matéria:  -")
	} else {
		fmt.Fprintf(w, "Melhor matéria:  %s (%.1f)\n", d.BestSubject, d.BestSubjectAverage)
	}
	fmt.Fprintf(w, "Foco hoje:       %s\n", d.FocusToday)
	fmt.Fprintf(w, "Avaliações:      %d\n", d.EventCount)

	if len(d.Upcoming) > 0 {
		fmt.Fprintln(w, "\nPróximas avaliações")
		for _, e := range d.Upcoming {
			fmt.Fprintf(w, "  %s  %-8s %s\n", timeutil.FormatLong(schoolDay(e.Date)), e.Type, e.SubjectName)
		}
	}
	if len(d.Subjects) > 0 {
		fmt.Fprintln(w, "\nDesempenho")
		for _, s := range d.Subjects {
			fmt.Fprintf(w, "  %-24s %5.1f  %s\n", s.Name, s.Average, s.StatusLabel)
		}
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// AI TUTOR
// ══════════════════════════════════════════════════════════════════════════════

func newTutorCmd(get appFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "tutor [QUESTION]",
		Short: "Conversar com o Tutor IA; sem pergunta, abre uma conversa interativa",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			if err := requireLogin(a); err != nil {
				return err
			}
			conv := tutor.NewConversation()
			out := cmd.OutOrStdout()
			subjects := a.store.Document().Subjects

			ask := func(input string) error {
				reply, asked, err := a.tutor.Ask(cmd.Context(), conv, input, subjects)
				if err != nil {
					return err
				}
				if asked {
					fmt.Fprintf(out, "Tutor: %s\n", reply)
				}
				return nil
			}

			if len(args) > 0 {
				return ask(strings.Join(args, " "))
			}

			fmt.Fprintf(out, "Tutor: %s\n", tutor.Greeting)
			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				fmt.Fprint(out, "> ")
				if !scanner.Scan() {
					break
				}
				if err := ask(scanner.Text()); err != nil {
					return err
				}
				if cmd.Context().Err() != nil {
					break
				}
			}
			fmt.Fprintln(out)
			return scanner.Err()
		},
	}
}
