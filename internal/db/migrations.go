package db

import (
	"context"
	"fmt"
	"log/slog"
)

// migration holds a single schema migration with its target version.
// Statements must run unchanged on both SQLite and PostgreSQL.
type migration struct {
	version    int
	statements []string
}

var migrations = []migration{
	{
		version: 1,
		statements: []string{
			`CREATE TABLE IF NOT EXISTS items (
				kind       TEXT      NOT NULL CHECK(kind IN ('habit', 'task', 'project')),
				id         TEXT      NOT NULL,
				position   INTEGER   NOT NULL DEFAULT 0,
				data       TEXT      NOT NULL,
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
				PRIMARY KEY (kind, id)
			)`,
			`CREATE INDEX IF NOT EXISTS idx_items_kind_position ON items(kind, position)`,
		},
	},
}

// Migrate applies every migration newer than the recorded schema version.
func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}

	var current int
	if err := r.db.GetContext(ctx, &current, `SELECT COALESCE(MAX(version), 0) FROM schema_version`); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := r.apply(ctx, m); err != nil {
			return fmt.Errorf("apply migration v%d: %w", m.version, err)
		}
		r.logger.Info("applied migration", slog.Int("version", m.version))
	}
	return nil
}

func (r *Repository) apply(ctx context.Context, m migration) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range m.statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(`INSERT INTO schema_version (version) VALUES (?)`), m.version); err != nil {
		return err
	}
	return tx.Commit()
}

// SchemaVersion returns the highest applied migration version.
func (r *Repository) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	if err := r.db.GetContext(ctx, &v, `SELECT COALESCE(MAX(version), 0) FROM schema_version`); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}
