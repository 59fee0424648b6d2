// Package main is the gaspar command line: the student's academic hub for
// grades, the assessment calendar, study groups, focus time and the AI tutor.
//
// Every command loads the persisted record, applies one change and saves it
// back through the configured storage backend.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gaspar-hub/academic-hub/config"
	"github.com/gaspar-hub/academic-hub/internal/application/query"
	"github.com/gaspar-hub/academic-hub/internal/application/store"
	"github.com/gaspar-hub/academic-hub/internal/application/tutor"
	"github.com/gaspar-hub/academic-hub/internal/domain/shared"
	"github.com/gaspar-hub/academic-hub/internal/infrastructure/external/gemini"
	"github.com/gaspar-hub/academic-hub/internal/infrastructure/persistence"
	"github.com/gaspar-hub/academic-hub/pkg/logger"
	"github.com/gaspar-hub/academic-hub/pkg/timeutil"
)

const appName = "gaspar"

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(70)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root, release := newRootCmd()
	err := root.ExecuteContext(ctx)
	release()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Erro: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	switch {
	case shared.IsValidation(err):
		return 2
	case shared.IsNotFound(err):
		return 3
	case errors.Is(err, shared.ErrForbidden):
		return 4
	case shared.IsExternalService(err):
		return 5
	default:
		return 1
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// APPLICATION WIRING
// ══════════════════════════════════════════════════════════════════════════════

// app holds the wired components for one command invocation.
type app struct {
	cfg       *config.Config
	log       *logger.Logger
	backend   *persistence.Backend
	store     *store.Store
	dashboard *query.GetDashboardHandler
	report    *query.GetSubjectReportHandler
	tutor     *tutor.Service
}

type globalFlags struct {
	configPath string
	storage    string
	logLevel   string

	// discardMalformed lets logout clear a record that no longer decodes.
	discardMalformed bool
}

func newApp(ctx context.Context, flags globalFlags) (*app, error) {
	if flags.configPath != "" {
		if err := os.Setenv(config.ConfigFileEnv, flags.configPath); err != nil {
			return nil, err
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flags.storage != "" {
		cfg.Storage.Driver = config.StorageDriver(flags.storage)
	}
	if flags.logLevel != "" {
		cfg.Observability.LogLevel = flags.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := timeutil.SetLocation(cfg.App.Timezone); err != nil {
		return nil, err
	}

	opts := logger.DefaultOptions()
	opts.Level = logger.ParseLevel(cfg.Observability.LogLevel)
	opts.Format = logger.Format(cfg.Observability.LogFormat)
	log := logger.New(opts).Named(appName).With(logger.String("env", string(cfg.App.Environment)))

	backend, err := persistence.Open(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	storeOpts := []store.Option{
		store.WithLogger(log.Named("store")),
		store.WithDailyRollover(cfg.Features.DailyRolloverEnabled()),
		store.WithSaveTimeout(cfg.Storage.Timeout),
		store.WithTeacherEmails(cfg.Auth.TeacherEmails),
	}
	st, err := store.Open(ctx, backend, storeOpts...)
	if errors.Is(err, shared.ErrMalformedDocument) && flags.discardMalformed {
		log.Warn("discarding unreadable stored record", logger.Err(err))
		if err = backend.Clear(ctx); err == nil {
			st, err = store.Open(ctx, backend, storeOpts...)
		}
	}
	if err != nil {
		_ = backend.Close()
		return nil, err
	}

	a := &app{
		cfg:       cfg,
		log:       log,
		backend:   backend,
		store:     st,
		dashboard: query.NewGetDashboardHandler(st, timeutil.System, cfg.Features.IsEnabled(config.FeatureDashboardCache)),
		report:    query.NewGetSubjectReportHandler(st),
	}
	a.tutor = tutor.NewService(a.newAssistant(ctx), cfg.Features.TutorEnabled, log)
	return a, nil
}

// newAssistant returns nil when no API key is configured; the tutor service
// then reports itself disabled.
func (a *app) newAssistant(ctx context.Context) tutor.Assistant {
	if !a.cfg.TutorConfigured() {
		return nil
	}
	client, err := gemini.New(ctx, gemini.Config{
		APIKey:           a.cfg.Tutor.APIKey,
		Model:            a.cfg.Tutor.Model,
		RequestTimeout:   a.cfg.Tutor.RequestTimeout,
		MaxRetries:       a.cfg.Tutor.MaxRetries,
		BreakerThreshold: a.cfg.Tutor.CircuitBreakerThreshold,
		BreakerTimeout:   a.cfg.Tutor.CircuitBreakerTimeout,
		Logger:           a.log,
	})
	if err != nil {
		a.log.Warn("tutor unavailable", logger.Err(err))
		return nil
	}
	return client
}

func (a *app) close() {
	if err := a.backend.Close(); err != nil {
		a.log.Warn("failed to close storage", logger.Err(err))
	}
	_ = a.log.Sync()
}

// ══════════════════════════════════════════════════════════════════════════════
// ROOT COMMAND
// ══════════════════════════════════════════════════════════════════════════════

// skipsWiring reports whether cmd runs without opening storage.
func skipsWiring(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "help" || c.Name() == "completion" {
			return true
		}
	}
	return false
}

// newRootCmd builds the command tree. release closes whatever the executed
// command opened.
func newRootCmd() (root *cobra.Command, release func()) {
	var (
		flags globalFlags
		a     *app
	)

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Central acadêmica do aluno do Colégio Gaspar",
		Long: `gaspar keeps a student's grades, assessment calendar, study groups and
focus time in one record, and gives access to an AI tutor.

Log in first with "gaspar login student" or "gaspar login teacher".`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if skipsWiring(cmd) {
				return nil
			}
			var err error
			flags.discardMalformed = cmd.Name() == "logout"
			a, err = newApp(cmd.Context(), flags)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if a != nil {
				checkSaved(cmd, a)
			}
		},
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "YAML config file")
	cmd.PersistentFlags().StringVar(&flags.storage, "storage", "", "storage driver (file, sqlite, postgres, redis, memory)")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	get := func() *app { return a }
	cmd.AddCommand(
		newLoginCmd(get),
		newLogoutCmd(get),
		newTermCmd(get),
		newSubjectCmd(get),
		newGradeCmd(get),
		newEventCmd(get),
		newGroupCmd(get),
		newFocusCmd(get),
		newDashboardCmd(get),
		newTutorCmd(get),
	)
	return cmd, func() {
		if a != nil {
			a.close()
			a = nil
		}
	}
}
