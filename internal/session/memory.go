package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xiaot623/gogo/chatclient/internal/domain"
	"github.com/xiaot623/gogo/chatclient/internal/fixture"
)

// SeedFixture is the fixture the in-memory collection is seeded from.
const SeedFixture = "mock_session_list.json"

// MemoryStore is a process-scoped, lazily seeded session collection.
// A failed seed is reported to the caller and retried on the next call.
type MemoryStore struct {
	fixtures fixture.Store
	logger   *zap.Logger
	now      func() time.Time

	mu       sync.Mutex
	seeded   bool
	sessions []domain.Session
	maxID    int64
}

// NewMemoryStore creates a store seeded from fixtures on first use.
// A nil fixture store starts empty.
func NewMemoryStore(fixtures fixture.Store, logger *zap.Logger) *MemoryStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemoryStore{
		fixtures: fixtures,
		logger:   logger,
		now:      time.Now,
	}
}

var _ Store = (*MemoryStore)(nil)

// List returns a copy of the collection.
func (s *MemoryStore) List(ctx context.Context) ([]domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureSeeded(ctx); err != nil {
		return nil, err
	}
	out := make([]domain.Session, len(s.sessions))
	copy(out, s.sessions)
	return out, nil
}

// Create inserts a new session at the front.
func (s *MemoryStore) Create(ctx context.Context, title string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureSeeded(ctx); err != nil {
		return 0, err
	}
	if title == "" {
		title = domain.DefaultSessionTitle
	}

	s.maxID++
	ts := domain.FormatTime(s.now())
	created := domain.Session{
		ID:         s.maxID,
		Title:      title,
		CreateTime: ts,
		UpdateTime: ts,
	}
	s.sessions = append([]domain.Session{created}, s.sessions...)

	s.logger.Debug("session created", zap.Int64("session_id", created.ID), zap.String("title", title))
	return created.ID, nil
}

// Rename retitles the session with id; unknown ids are ignored.
func (s *MemoryStore) Rename(ctx context.Context, id int64, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureSeeded(ctx); err != nil {
		return err
	}
	for i := range s.sessions {
		if s.sessions[i].ID == id {
			s.sessions[i].Title = title
			s.sessions[i].UpdateTime = domain.FormatTime(s.now())
			return nil
		}
	}
	s.logger.Debug("rename of unknown session ignored", zap.Int64("session_id", id))
	return nil
}

// Delete removes the session with id; unknown ids are ignored.
func (s *MemoryStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureSeeded(ctx); err != nil {
		return err
	}
	kept := s.sessions[:0]
	for _, sess := range s.sessions {
		if sess.ID != id {
			kept = append(kept, sess)
		}
	}
	s.sessions = kept
	return nil
}

// ensureSeeded must be called with mu held.
func (s *MemoryStore) ensureSeeded(ctx context.Context) error {
	if s.seeded {
		return nil
	}
	if s.fixtures != nil {
		raw, err := s.fixtures.Load(ctx, SeedFixture)
		if err != nil {
			s.logger.Error("failed to seed sessions", zap.Error(err))
			return err
		}
		var env struct {
			Data []domain.Session `json:"data"`
		}
		if err := json.Unmarshal(raw, &env); err != nil {
			return &domain.FixtureLoadError{Path: fixture.NormalizePath(SeedFixture), Err: fmt.Errorf("decode sessions: %w", err)}
		}
		s.sessions = env.Data
	}
	for _, sess := range s.sessions {
		if sess.ID > s.maxID {
			s.maxID = sess.ID
		}
	}
	s.seeded = true
	return nil
}
