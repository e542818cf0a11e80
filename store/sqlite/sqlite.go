// Package sqlite is the durable draft store. Schema management goes through
// embedded golang-migrate migrations so binaries carry their own DDL; draft
// values serialize to a JSON blob per row.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/quharo/formwork/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store persists drafts in a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies pending
// migrations.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	return open(dsn)
}

// OpenInMemory opens a private in-memory database, one per call. Handy for
// tests and ephemeral tooling.
func OpenInMemory() (*Store, error) {
	// A named shared-cache memory DB keeps the data alive across the pool's
	// connections; the random name keeps separate opens separate.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	return open(dsn)
}

func open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	db.SetMaxOpenConns(1) // sqlite
	db.SetConnMaxLifetime(0)
	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// runMigrations applies all up migrations from the embedded set.
func runMigrations(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("sqlite: load migrations: %w", err)
	}
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("sqlite: migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("sqlite: migrator: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("sqlite: migrate up: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Save(ctx context.Context, d *store.Draft) error {
	ts := time.Now().UTC().Truncate(time.Second)
	if d.ID == "" {
		d.ID = uuid.NewString()
		d.CreatedAt = ts
	} else if d.CreatedAt.IsZero() {
		var created time.Time
		err := s.db.QueryRowContext(ctx, `SELECT created_at FROM drafts WHERE id = ?`, d.ID).Scan(&created)
		switch {
		case err == nil:
			d.CreatedAt = created
		case errors.Is(err, sql.ErrNoRows):
			d.CreatedAt = ts
		default:
			return fmt.Errorf("sqlite: save: %w", err)
		}
	}
	d.UpdatedAt = ts
	payload, err := sonic.Marshal(d.Values)
	if err != nil {
		return fmt.Errorf("sqlite: encode draft values: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
	INSERT INTO drafts(id, form, payload, created_at, updated_at)
	VALUES(?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
	 form = excluded.form, payload = excluded.payload, updated_at = excluded.updated_at;
	`, d.ID, d.Form, payload, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("sqlite: save: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (store.Draft, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, form, payload, created_at, updated_at FROM drafts WHERE id = ?`, id)
	d, err := scanDraft(row)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Draft{}, store.ErrNotFound
	}
	return d, err
}

func (s *Store) List(ctx context.Context, form string) ([]store.Draft, error) {
	query := `SELECT id, form, payload, created_at, updated_at FROM drafts`
	var args []any
	if form != "" {
		query += ` WHERE form = ?`
		args = append(args, form)
	}
	query += ` ORDER BY updated_at DESC, id ASC`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list: %w", err)
	}
	defer rows.Close()
	var out []store.Draft
	for rows.Next() {
		d, err := scanDraft(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM drafts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: delete: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDraft(row scanner) (store.Draft, error) {
	var (
		d       store.Draft
		payload []byte
	)
	if err := row.Scan(&d.ID, &d.Form, &payload, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return store.Draft{}, err
	}
	if err := sonic.Unmarshal(payload, &d.Values); err != nil {
		return store.Draft{}, fmt.Errorf("sqlite: decode draft values: %w", err)
	}
	return d, nil
}

var _ store.Store = (*Store)(nil)
