package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"questboard/internal/config"
	"questboard/internal/db"
	"questboard/internal/idgen"
	"questboard/internal/logger"
	"questboard/internal/reorder"
	"questboard/internal/store"
)

// App carries state shared by every command.
type App struct {
	ConfigPath string

	cfg    *config.Config
	log    *slog.Logger
	closer io.Closer
}

// NewRootCmd builds the questboard command tree.
func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "questboard",
		Short:        "Habit, task and project tracker API",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the API server (OpenAPI docs at /docs)
  questboard serve

  # Use a config file and a Postgres database
  QUESTBOARD_DATABASE_DRIVER=postgres questboard --config ./questboard.yaml serve

  # Move a task onto another task's position
  questboard reorder task <active-id> <over-id>

  # Print a stored project as JSON
  questboard show project <id>
`),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.init()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if app.closer != nil {
				return app.closer.Close()
			}
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", "", "path to a YAML config file")

	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newMigrateCmd(app))
	cmd.AddCommand(newReorderCmd(app))
	cmd.AddCommand(newShowCmd(app))
	return cmd
}

func (a *App) init() error {
	cfg, err := config.Load(a.ConfigPath)
	if err != nil {
		return err
	}
	logCfg, err := logger.FromConfig(cfg.Log)
	if err != nil {
		return err
	}
	log, closer, err := logger.New(logCfg)
	if err != nil {
		return err
	}
	slog.SetDefault(log)

	a.cfg = cfg
	a.log = log
	a.closer = closer
	return nil
}

func (a *App) openRepo() (*db.Repository, error) {
	repo, err := db.New(a.cfg.Database.Driver, a.cfg.Database.DSN, a.log)
	if err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}
	return repo, nil
}

// loadStore opens the repository and seeds an item store that writes back to it.
func (a *App) loadStore(cmd *cobra.Command) (*store.Store, *db.Repository, error) {
	repo, err := a.openRepo()
	if err != nil {
		return nil, nil, err
	}
	snap, err := repo.Load(cmd.Context())
	if err != nil {
		repo.Close()
		return nil, nil, fmt.Errorf("load items: %w", err)
	}
	ids, err := idgen.New(a.cfg.IDs.Mode)
	if err != nil {
		repo.Close()
		return nil, nil, err
	}

	st := store.New(ids, a.log, store.WithSink(repo))
	st.Load(snap.Habits, snap.Tasks, snap.Projects)
	a.log.Info("items loaded",
		slog.Int("habits", len(snap.Habits)),
		slog.Int("tasks", len(snap.Tasks)),
		slog.Int("projects", len(snap.Projects)),
	)
	return st, repo, nil
}

func (a *App) sensors() reorder.Sensors {
	return reorder.Sensors{
		Pointer: reorder.PointerSensor{Distance: a.cfg.Drag.PointerDistance},
		Touch: reorder.TouchSensor{
			Delay:     a.cfg.Drag.TouchDelay,
			Tolerance: a.cfg.Drag.TouchTolerance,
		},
	}
}
