// Package repository provides a durable session.Store backed by SQLite.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/xiaot623/gogo/chatclient/internal/domain"
	"github.com/xiaot623/gogo/chatclient/internal/fixture"
	"github.com/xiaot623/gogo/chatclient/internal/session"
)

const counterSessionID = "session_id"

// SQLiteStore implements session.Store using SQLite so that simulated
// sessions survive across CLI invocations.
type SQLiteStore struct {
	db       *sql.DB
	fixtures fixture.Store
	logger   *zap.Logger
	now      func() time.Time

	seedMu sync.Mutex
	seeded bool
}

var _ session.Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens dsn and migrates the schema. The collection is
// seeded from fixtures the first time it is touched, unless the database
// has been seeded before.
func NewSQLiteStore(dsn string, fixtures fixture.Store, logger *zap.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	store := &SQLiteStore{
		db:       db,
		fixtures: fixtures,
		logger:   logger,
		now:      time.Now,
	}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY,
			title TEXT NOT NULL,
			create_time TEXT NOT NULL,
			update_time TEXT NOT NULL,
			last_message TEXT NOT NULL DEFAULT '',
			ord INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_ord ON sessions(ord)`,
		`CREATE TABLE IF NOT EXISTS counters (
			name TEXT PRIMARY KEY,
			value INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("failed to apply migration: %w", err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// List returns all sessions, newest first.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Session, error) {
	if err := s.ensureSeeded(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, create_time, update_time, last_message FROM sessions ORDER BY ord ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	sessions := []domain.Session{}
	for rows.Next() {
		var sess domain.Session
		if err := rows.Scan(&sess.ID, &sess.Title, &sess.CreateTime, &sess.UpdateTime, &sess.LastMessage); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

// Create inserts a session in front of all others.
func (s *SQLiteStore) Create(ctx context.Context, title string) (int64, error) {
	if err := s.ensureSeeded(ctx); err != nil {
		return 0, err
	}
	if title == "" {
		title = domain.DefaultSessionTitle
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var highWater, maxID, minOrd int64
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE((SELECT value FROM counters WHERE name = ?), 0)`, counterSessionID).Scan(&highWater); err != nil {
		return 0, fmt.Errorf("failed to read session counter: %w", err)
	}
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(id), 0), COALESCE(MIN(ord), 0) FROM sessions`).Scan(&maxID, &minOrd); err != nil {
		return 0, fmt.Errorf("failed to read session bounds: %w", err)
	}

	id := max(highWater, maxID) + 1
	ts := domain.FormatTime(s.now())
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (id, title, create_time, update_time, last_message, ord) VALUES (?, ?, ?, ?, '', ?)`,
		id, title, ts, ts, minOrd-1); err != nil {
		return 0, fmt.Errorf("failed to insert session: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO counters (name, value) VALUES (?, ?) ON CONFLICT(name) DO UPDATE SET value = excluded.value`,
		counterSessionID, id); err != nil {
		return 0, fmt.Errorf("failed to update session counter: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit session: %w", err)
	}

	s.logger.Debug("session created", zap.Int64("session_id", id), zap.String("title", title))
	return id, nil
}

// Rename updates the title of a session; unknown ids are ignored.
func (s *SQLiteStore) Rename(ctx context.Context, id int64, title string) error {
	if err := s.ensureSeeded(ctx); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET title = ?, update_time = ? WHERE id = ?`,
		title, domain.FormatTime(s.now()), id); err != nil {
		return fmt.Errorf("failed to rename session: %w", err)
	}
	return nil
}

// Delete removes a session; unknown ids are ignored.
func (s *SQLiteStore) Delete(ctx context.Context, id int64) error {
	if err := s.ensureSeeded(ctx); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ensureSeeded(ctx context.Context) error {
	s.seedMu.Lock()
	defer s.seedMu.Unlock()

	if s.seeded {
		return nil
	}

	var marker sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'seeded'`).Scan(&marker)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("failed to read seed marker: %w", err)
	}
	if marker.Valid {
		s.seeded = true
		return nil
	}

	var seed []domain.Session
	if s.fixtures != nil {
		raw, err := s.fixtures.Load(ctx, session.SeedFixture)
		if err != nil {
			s.logger.Error("failed to seed sessions", zap.Error(err))
			return err
		}
		var env struct {
			Data []domain.Session `json:"data"`
		}
		if err := json.Unmarshal(raw, &env); err != nil {
			return &domain.FixtureLoadError{Path: fixture.NormalizePath(session.SeedFixture), Err: fmt.Errorf("decode sessions: %w", err)}
		}
		seed = env.Data
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for i, sess := range seed {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO sessions (id, title, create_time, update_time, last_message, ord) VALUES (?, ?, ?, ?, ?, ?)`,
			sess.ID, sess.Title, sess.CreateTime, sess.UpdateTime, sess.LastMessage, i); err != nil {
			return fmt.Errorf("failed to seed session %d: %w", sess.ID, err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES ('seeded', ?)`, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("failed to mark sessions seeded: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to seed sessions: %w", err)
	}

	s.logger.Debug("session store seeded", zap.Int("count", len(seed)))
	s.seeded = true
	return nil
}
