package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/gaspar-hub/academic-hub/internal/domain/shared"
	"github.com/gaspar-hub/academic-hub/internal/domain/subject"
)

type appFunc func() *app

// ══════════════════════════════════════════════════════════════════════════════
// LOGIN / LOGOUT
// ══════════════════════════════════════════════════════════════════════════════

func newLoginCmd(get appFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Entrar como aluno ou professor",
	}

	var grade string
	student := &cobra.Command{
		Use:   "student NAME",
		Short: "Entrar como aluno",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := get().store.LoginStudent(cmd.Context(), args[0], grade)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Bem-vindo, %s! (%s)\n", u.FirstName(), u.Grade)
			return nil
		},
	}
	student.Flags().StringVarP(&grade, "grade", "g", "", "série, e.g. \"1º Ano Médio\"")
	_ = student.MarkFlagRequired("grade")

	var email string
	teacher := &cobra.Command{
		Use:   "teacher NAME",
		Short: "Entrar como professor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := get().store.LoginTeacher(cmd.Context(), args[0], email)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Bem-vindo, Prof. %s!\n", u.FirstName())
			return nil
		},
	}
	teacher.Flags().StringVarP(&email, "email", "e", "", "email institucional")
	_ = teacher.MarkFlagRequired("email")

	cmd.AddCommand(student, teacher)
	return cmd
}

func newLogoutCmd(get appFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sair e apagar os dados salvos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := get().store.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Sessão encerrada.")
			return nil
		},
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// TERM
// ══════════════════════════════════════════════════════════════════════════════

func newTermCmd(get appFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "term",
		Short: "Mostrar ou trocar o trimestre atual",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()
			if err := requireLogin(a); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%dº Trimestre\n", int(a.store.Document().CurrentTerm))
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set N",
		Short: "Trocar o trimestre atual (1, 2 ou 3)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := get()
			if err := requireLogin(a); err != nil {
				return err
			}
			t, ok := subject.ParseTerm(args[0])
			if !ok {
				return shared.ErrInvalidTerm
			}
			if err := a.store.SetCurrentTerm(cmd.Context(), t); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Trimestre atual: %dº\n", int(t))
			return nil
		},
	})
	return cmd
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

func requireLogin(a *app) error {
	_, err := a.store.RequireUser()
	return err
}

// resolveTerm returns the term flag value, or the current term when it is 0.
func resolveTerm(a *app, n int) (subject.Term, error) {
	if n == 0 {
		return a.store.Document().CurrentTerm, nil
	}
	t, ok := subject.ParseTerm(strconv.Itoa(n))
	if !ok {
		return 0, shared.ErrInvalidTerm
	}
	return t, nil
}

// checkSaved surfaces a failed save after a successful transition.
func checkSaved(cmd *cobra.Command, a *app) {
	if err := a.store.LastSaveError(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Aviso: não foi possível salvar (%v)\n", err)
	}
}
