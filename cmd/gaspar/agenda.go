package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gaspar-hub/academic-hub/internal/domain/calendar"
	"github.com/gaspar-hub/academic-hub/internal/domain/group"
	"github.com/gaspar-hub/academic-hub/internal/domain/shared"
	"github.com/gaspar-hub/academic-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// CALENDAR
// ══════════════════════════════════════════════════════════════════════════════

func newEventCmd(get appFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "event",
		Aliases: []string{"events", "agenda"},
		Short:   "Agenda de avaliações",
	}

	var (
		subjectID string
		typ       string
		date      string
	)
	add := &cobra.Command{
		Use:   "add [CONTENT]",
		Short: "Agendar uma avaliação",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			if err := requireLogin(a); err != nil {
				return err
			}
			var d shared.Date
			if date != "" {
				var err error
				if d, err = shared.ParseDate(date); err != nil {
					return fmt.Errorf("data inválida %q: use AAAA-MM-DD", date)
				}
			}
			et := calendar.EventType("")
			if typ != "" {
				var ok bool
				if et, ok = calendar.ParseType(typ); !ok {
					return fmt.Errorf("tipo inválido %q", typ)
				}
			}
			e, err := a.store.AddEvent(cmd.Context(), subjectID, et, d, strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Agendado: %s de %s em %s (%s)\n", e.Type, e.SubjectName, e.Date.Time().Format(timeutil.DisplayLayout), e.ID)
			return nil
		},
	}
	add.Flags().StringVarP(&subjectID, "subject", "s", "", "id da matéria")
	add.Flags().StringVarP(&typ, "type", "t", "", "AV1, AV2, PAT, Trabalho ou Outros (padrão: AV1)")
	add.Flags().StringVarP(&date, "date", "d", "", "data no formato AAAA-MM-DD")

	rm := &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"remove"},
		Short:   "Remover uma avaliação",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			if err := requireLogin(a); err != nil {
				return err
			}
			if !a.store.RemoveEvent(cmd.Context(), args[0]) {
				return fmt.Errorf("avaliação %q não encontrada", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Avaliação removida.")
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Listar a agenda em ordem de data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()
			if err := requireLogin(a); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			today := timeutil.Today(timeutil.System)
			n := 0
			for e := range a.store.Document().OrderedCalendar() {
				n++
				fmt.Fprintf(out, "%s  %-10s %-8s %-16s %s  [%s]\n",
					e.Date.Time().Format(timeutil.DisplayLayout),
					timeutil.FormatRelative(schoolDay(e.Date), today),
					e.Type, e.SubjectName, e.Content, e.ID)
			}
			if n == 0 {
				fmt.Fprintln(out, "Nenhuma avaliação agendada.")
			}
			return nil
		},
	}

	cmd.AddCommand(add, rm, list)
	return cmd
}

// schoolDay returns midnight of d in the school timezone.
func schoolDay(d shared.Date) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, timeutil.Location())
}

// ══════════════════════════════════════════════════════════════════════════════
// STUDY GROUPS
// ══════════════════════════════════════════════════════════════════════════════

func newGroupCmd(get appFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "group",
		Aliases: []string{"groups"},
		Short:   "Grupos de estudo",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Listar os grupos visíveis para a sua série",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()
			if err := requireLogin(a); err != nil {
				return err
			}
			doc := a.store.Document()
			out := cmd.OutOrStdout()
			for _, g := range doc.VisibleGroups() {
				kind := "personalizado"
				if g.IsOfficial {
					kind = "oficial"
				}
				last := ""
				if m, ok := g.LastMessage(); ok {
					last = m.Sender + ": " + m.Text
				}
				fmt.Fprintf(out, "%-28s %-32s %-13s %-8s %3d membros  %s\n",
					g.ID, g.Name, kind, g.Privacy.Label(), g.MembersCount, last)
			}
			return nil
		},
	})

	var private bool
	create := &cobra.Command{
		Use:   "create NAME",
		Short: "Criar um grupo de estudo",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			if err := requireLogin(a); err != nil {
				return err
			}
			privacy := group.PrivacyPublic
			if private {
				privacy = group.PrivacyPrivate
			}
			g, err := a.store.CreateGroup(cmd.Context(), strings.Join(args, " "), privacy)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Grupo criado: %s (%s)\n", g.Name, g.ID)
			return nil
		},
	}
	create.Flags().BoolVar(&private, "private", false, "grupo privado")

	cmd.AddCommand(create, &cobra.Command{
		Use:   "post GROUP MESSAGE",
		Short: "Enviar uma mensagem ao grupo",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			if err := requireLogin(a); err != nil {
				return err
			}
			m, err := a.store.PostMessage(cmd.Context(), args[0], strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", m.Sender, m.Text)
			return nil
		},
	}, &cobra.Command{
		Use:   "show GROUP",
		Short: "Mostrar as mensagens de um grupo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			if err := requireLogin(a); err != nil {
				return err
			}
			doc := a.store.Document()
			g, ok := doc.Group(args[0])
			if !ok || !group.IsVisible(g, doc.UserGrade()) {
				return shared.ErrGroupNotFound
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s, %d membros)\n", g.Name, g.Privacy.Label(), g.MembersCount)
			for _, m := range g.Messages {
				sender := m.Sender
				if m.IsMe {
					sender = "Você"
				}
				fmt.Fprintf(out, "  %s: %s\n", sender, m.Text)
			}
			if !doc.CanParticipate(g.ID) {
				fmt.Fprintln(out, "  (somente leitura para a sua série)")
			}
			return nil
		},
	})
	return cmd
}
