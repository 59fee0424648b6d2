package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/gaspar-hub/academic-hub/internal/domain/shared"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// isolate points the CLI at a file store in a fresh directory.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "gaspar.json")
	t.Setenv("GASPAR_CONFIG", "")
	t.Setenv("STORAGE_DRIVER", "file")
	t.Setenv("STORAGE_PATH", path)
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "")
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root, release := newRootCmd()
	defer release()

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	require.NoError(t, err, "gaspar %s", strings.Join(args, " "))
	return out
}

func TestCLI_RequiresLogin(t *testing.T) {
	isolate(t)

	for _, args := range [][]string{
		{"dashboard"},
		{"subject", "list"},
		{"grade", "add", "mat", "8"},
		{"focus", "--for", "1ms"},
	} {
		_, err := run(t, args...)
		assert.ErrorIs(t, err, shared.ErrNotLoggedIn, "gaspar %s", strings.Join(args, " "))
	}
}

func TestCLI_StudentFlow(t *testing.T) {
	path := isolate(t)

	out := mustRun(t, "login", "student", "Ana Souza", "--grade", "1º Ano Médio")
	assert.Contains(t, out, "Bem-vindo, Ana!")
	assert.FileExists(t, path)

	out = mustRun(t, "grade", "add", "mat", "8", "--kind", "av1")
	assert.Contains(t, out, "AV1 [8.0]")

	out = mustRun(t, "grade", "add", "mat", "6")
	assert.Contains(t, out, "AV1 [8.0 6.0]")

	out = mustRun(t, "grade", "set", "mat", "7", "--index", "1")
	assert.Contains(t, out, "AV1 [8.0 7.0]")

	out = mustRun(t, "grade", "pat", "mat", "9")
	assert.Contains(t, out, "PAT 9.0")

	out = mustRun(t, "grade", "pat", "mat")
	assert.Contains(t, out, "PAT -")

	out = mustRun(t, "subject", "show", "mat")
	assert.Contains(t, out, "* 1º TRIM")
	assert.Contains(t, out, "  2º TRIM")

	out = mustRun(t, "subject", "add", "Química")
	assert.Contains(t, out, "Matéria adicionada: Química")

	out = mustRun(t, "subject", "list")
	assert.Contains(t, out, "Matemática")
	assert.Contains(t, out, "Química")

	out = mustRun(t, "event", "add", "--subject", "mat", "--type", "av2", "--date", "2099-05-10", "Funções")
	assert.Contains(t, out, "Agendado: AV2 de Matemática em 10/05/2099")

	out = mustRun(t, "event", "list")
	assert.Contains(t, out, "Funções")

	out = mustRun(t, "group", "post", "m1", "Olá", "turma")
	assert.Contains(t, out, "Olá turma")

	out = mustRun(t, "group", "show", "m1")
	assert.Contains(t, out, "Você: Olá turma")

	out = mustRun(t, "term", "set", "2")
	assert.Contains(t, out, "Trimestre atual: 2º")

	out = mustRun(t, "dashboard")
	assert.Contains(t, out, "Olá, Ana!")
	assert.Contains(t, out, "2º Trimestre")
	assert.Contains(t, out, "Matemática")

	mustRun(t, "logout")
	assert.NoFileExists(t, path)

	_, err := run(t, "dashboard")
	assert.ErrorIs(t, err, shared.ErrNotLoggedIn)
}

func TestCLI_Errors(t *testing.T) {
	isolate(t)
	mustRun(t, "login", "student", "Ana", "--grade", "1º Ano Médio")

	_, err := run(t, "grade", "add", "nope", "8")
	assert.ErrorIs(t, err, shared.ErrSubjectNotFound)

	_, err = run(t, "term", "set", "4")
	assert.ErrorIs(t, err, shared.ErrInvalidTerm)

	_, err = run(t, "event", "add", "--date", "2099-05-10", "sem matéria")
	assert.ErrorIs(t, err, shared.ErrEventMissingFields)

	_, err = run(t, "event", "add", "--subject", "mat", "--date", "10/05/2099")
	assert.ErrorContains(t, err, "data inválida")

	_, err = run(t, "event", "rm", "missing")
	assert.ErrorContains(t, err, "não encontrada")

	_, err = run(t, "group", "show", "m3")
	assert.ErrorIs(t, err, shared.ErrGroupNotFound)

	_, err = run(t, "tutor", "o que é mitose?")
	assert.ErrorIs(t, err, shared.ErrTutorDisabled)
}

func TestCLI_TeacherLogin(t *testing.T) {
	isolate(t)
	t.Setenv("TEACHER_EMAILS", "prof@gaspar.edu")

	out := mustRun(t, "login", "teacher", "Lara Rieger", "--email", "prof@gaspar.edu")
	assert.Contains(t, out, "Bem-vindo, Prof. Lara!")

	mustRun(t, "logout")
	_, err := run(t, "login", "teacher", "Lara", "--email", "someone@else.com")
	assert.ErrorIs(t, err, shared.ErrAccessDenied)
}

func TestCLI_FocusCommitsTime(t *testing.T) {
	isolate(t)
	mustRun(t, "login", "student", "Ana", "--grade", "1º Ano Médio")

	out := mustRun(t, "focus", "--for", "10ms", "--quiet")
	assert.Contains(t, out, "Sessão encerrada: 00:00:00")
}

func TestCLI_StorageFlagOverridesConfig(t *testing.T) {
	isolate(t)

	_, err := run(t, "--storage", "s3", "dashboard")
	assert.ErrorContains(t, err, `STORAGE_DRIVER "s3"`)

	out := mustRun(t, "--storage", "memory", "login", "student", "Ana", "--grade", "1º Ano Médio")
	assert.Contains(t, out, "Bem-vindo")
	_, statErr := os.Stat(filepath.Join(".", "gaspar.json"))
	assert.True(t, os.IsNotExist(statErr), "memory driver writes nothing")
}

func TestCLI_LogoutDiscardsMalformedRecord(t *testing.T) {
	path := isolate(t)
	require.NoError(t, os.WriteFile(path, []byte(`{"currentTrimester": 9}`), 0o600))

	_, err := run(t, "dashboard")
	assert.ErrorIs(t, err, shared.ErrMalformedDocument)

	mustRun(t, "logout")
	assert.NoFileExists(t, path)

	_, err = run(t, "dashboard")
	assert.ErrorIs(t, err, shared.ErrNotLoggedIn)
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{shared.ErrInvalidTerm, 2},
		{shared.ErrSubjectNotFound, 3},
		{shared.ErrNotLoggedIn, 4},
		{shared.ErrAccessDenied, 4},
		{fmt.Errorf("tutor: %w", shared.ErrServiceUnavailable), 5},
		{errors.New("boom"), 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, exitCode(tt.err), tt.err.Error())
	}
}
