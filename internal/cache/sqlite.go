package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/bookly/internal/logger"
	"github.com/julianstephens/bookly/internal/migration"
	"github.com/julianstephens/bookly/migrations"
)

// SQLite is a file-backed cache that survives restarts.
type SQLite struct {
	path string
	db   *sql.DB
	now  func() time.Time
}

// OpenSQLite creates the database file if needed and brings its schema up
// to date. Expired rows are pruned on open.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	// modernc/sqlite serialises writers; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	s := &SQLite{path: path, db: db, now: time.Now}
	if err := s.runMigrations(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	if err := s.Prune(ctx); err != nil {
		logger.Warn("Failed to prune cache", "error", err)
	}
	return s, nil
}

func (s *SQLite) runner() (*migration.Runner, error) {
	subFS, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		return nil, fmt.Errorf("failed to access sqlite migrations: %w", err)
	}
	return migration.NewRunner(s.db, subFS), nil
}

func (s *SQLite) runMigrations(ctx context.Context) error {
	r, err := s.runner()
	if err != nil {
		return err
	}
	_, err = r.Apply(ctx, logger.Debug)
	return err
}

// Check verifies the database answers and its schema is current.
func (s *SQLite) Check(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("cache database unreachable: %w", err)
	}
	r, err := s.runner()
	if err != nil {
		return err
	}
	current, err := r.CurrentVersion(ctx)
	if err != nil {
		return err
	}
	all, err := r.ReadMigrations()
	if err != nil {
		return err
	}
	if len(all) > 0 && current < all[len(all)-1].Version {
		return fmt.Errorf("cache schema at version %d, latest is %d", current, all[len(all)-1].Version)
	}
	return nil
}

func (s *SQLite) Path() string {
	return s.path
}

func (s *SQLite) Get(ctx context.Context, key Key, dst any) (bool, error) {
	var (
		value     string
		expiresAt int64
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT value, expires_at FROM cache_entries WHERE key = ?", key.String(),
	).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}

	if s.now().UnixMilli() >= expiresAt {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM cache_entries WHERE key = ?", key.String()); err != nil {
			logger.Warn("Failed to drop expired cache entry", "key", key.String(), "error", err)
		}
		return false, nil
	}

	if err := json.Unmarshal([]byte(value), dst); err != nil {
		return false, fmt.Errorf("cache decode %s: %w", key, err)
	}
	return true, nil
}

func (s *SQLite) Set(ctx context.Context, key Key, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	now := s.now()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO cache_entries (key, kind, owner, value, expires_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at
	`, key.String(), string(key.Kind), key.Owner, string(data), now.Add(ttl).UnixMilli(), now.UnixMilli())
	if err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

func (s *SQLite) Delete(ctx context.Context, keys ...Key) error {
	if len(keys) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, k := range keys {
		if _, err := tx.ExecContext(ctx, "DELETE FROM cache_entries WHERE key = ?", k.String()); err != nil {
			return fmt.Errorf("cache delete %s: %w", k, err)
		}
	}
	return tx.Commit()
}

func (s *SQLite) DeleteKind(ctx context.Context, kinds ...Kind) error {
	for _, kind := range kinds {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM cache_entries WHERE kind = ?", string(kind)); err != nil {
			return fmt.Errorf("cache delete kind %s: %w", kind, err)
		}
	}
	return nil
}

func (s *SQLite) DeleteOwner(ctx context.Context, owner string) error {
	if owner == "" {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM cache_entries WHERE owner = ?", owner); err != nil {
		return fmt.Errorf("cache delete owner: %w", err)
	}
	return nil
}

func (s *SQLite) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM cache_entries")
	return err
}

// Prune deletes every expired entry.
func (s *SQLite) Prune(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM cache_entries WHERE expires_at <= ?", s.now().UnixMilli())
	return err
}

func (s *SQLite) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
