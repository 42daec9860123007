package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"questboard/internal/model"
)

var ErrNotFound = errors.New("not found")

// Repository persists committed items as JSON documents keyed by kind and id,
// keeping each collection's display order in a position column.
type Repository struct {
	db     *sqlx.DB
	driver string
	logger *slog.Logger
}

// New opens the database for driver ("sqlite" or "postgres") and runs
// migrations. For sqlite, dsn is a file path or ":memory:".
func New(driver, dsn string, logger *slog.Logger) (*Repository, error) {
	source := dsn
	if driver == "sqlite" && dsn != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
		source = "file:" + dsn + "?mode=rwc&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sqlx.Open(driver, source)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if driver == "sqlite" {
		// SQLite has a single writer, and each :memory: connection is its own database.
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect database: %w", err)
	}

	repo := &Repository{db: db, driver: driver, logger: logger}
	if err := repo.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info("database initialized", slog.String("driver", driver))
	return repo, nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Upsert inserts rec at the end of its collection, or replaces the stored
// document if it already exists, keeping its position.
func (r *Repository) Upsert(ctx context.Context, rec model.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode %s %s: %w", rec.ItemKind(), rec.ItemID(), err)
	}

	query := r.db.Rebind(`
	INSERT INTO items (kind, id, position, data)
	VALUES (?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM items WHERE kind = ?), ?)
	ON CONFLICT (kind, id) DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP`)

	kind := string(rec.ItemKind())
	if _, err := r.db.ExecContext(ctx, query, kind, rec.ItemID(), kind, string(data)); err != nil {
		return fmt.Errorf("upsert %s %s: %w", kind, rec.ItemID(), err)
	}
	return nil
}

// Delete removes an item.
func (r *Repository) Delete(ctx context.Context, kind model.Kind, id string) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM items WHERE kind = ? AND id = ?`), string(kind), id)
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", kind, id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveOrder rewrites the positions of a collection to match ids.
func (r *Repository) SaveOrder(ctx context.Context, kind model.Kind, ids []string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, tx.Rebind(`UPDATE items SET position = ? WHERE kind = ? AND id = ?`))
	if err != nil {
		return fmt.Errorf("prepare reorder: %w", err)
	}
	defer stmt.Close()

	for i, id := range ids {
		if _, err := stmt.ExecContext(ctx, i+1, string(kind), id); err != nil {
			return fmt.Errorf("reorder %s %s: %w", kind, id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reorder: %w", err)
	}
	return nil
}

// Snapshot is every stored collection in display order.
type Snapshot struct {
	Habits   []model.Habit
	Tasks    []model.Task
	Projects []model.Project
}

type row struct {
	Kind string `db:"kind"`
	ID   string `db:"id"`
	Data string `db:"data"`
}

// Load reads all items back in position order.
func (r *Repository) Load(ctx context.Context) (Snapshot, error) {
	var rows []row
	err := r.db.SelectContext(ctx, &rows, `SELECT kind, id, data FROM items ORDER BY kind, position, id`)
	if err != nil {
		return Snapshot{}, fmt.Errorf("query items: %w", err)
	}

	var snap Snapshot
	for _, rw := range rows {
		if err := snap.add(rw); err != nil {
			return Snapshot{}, err
		}
	}
	return snap, nil
}

func (s *Snapshot) add(rw row) error {
	var err error
	switch model.Kind(rw.Kind) {
	case model.KindHabit:
		var h model.Habit
		if err = json.Unmarshal([]byte(rw.Data), &h); err == nil {
			s.Habits = append(s.Habits, h)
		}
	case model.KindTask:
		var t model.Task
		if err = json.Unmarshal([]byte(rw.Data), &t); err == nil {
			s.Tasks = append(s.Tasks, t)
		}
	case model.KindProject:
		var p model.Project
		if err = json.Unmarshal([]byte(rw.Data), &p); err == nil {
			s.Projects = append(s.Projects, p)
		}
	default:
		return fmt.Errorf("item %s has unknown kind %q", rw.ID, rw.Kind)
	}
	if err != nil {
		return fmt.Errorf("decode %s %s: %w", rw.Kind, rw.ID, err)
	}
	return nil
}

// Get loads a single stored item.
func (r *Repository) Get(ctx context.Context, kind model.Kind, id string) (model.Record, error) {
	var rw row
	err := r.db.GetContext(ctx, &rw, r.db.Rebind(`SELECT kind, id, data FROM items WHERE kind = ? AND id = ?`), string(kind), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s %s: %w", kind, id, err)
	}

	var snap Snapshot
	if err := snap.add(rw); err != nil {
		return nil, err
	}
	switch {
	case len(snap.Habits) == 1:
		return snap.Habits[0], nil
	case len(snap.Tasks) == 1:
		return snap.Tasks[0], nil
	default:
		return snap.Projects[0], nil
	}
}
