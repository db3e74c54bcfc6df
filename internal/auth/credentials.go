// Package auth holds the credential attached to outgoing requests.
package auth

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// CredentialSource supplies the Authorization value for outgoing requests.
// An empty token means no header is sent.
type CredentialSource interface {
	Token() string
}

// Static is a fixed credential, mostly useful in tests.
type Static string

// Token returns the credential itself.
func (s Static) Token() string { return string(s) }

// FileStore persists the token in a file and keeps the role in memory.
type FileStore struct {
	path string

	mu    sync.RWMutex
	token string
	role  string
}

var _ CredentialSource = (*FileStore)(nil)

// NewFileStore creates a store backed by path, loading any saved token.
// A missing file is not an error.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}
	s.token = strings.TrimSpace(string(data))
	return s, nil
}

// Token returns the current token.
func (s *FileStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// SetToken stores token and persists it. An empty token clears the
// in-memory value but leaves the file alone.
func (s *FileStore) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token == "" {
		s.token = ""
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create token dir: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	s.token = token
	return nil
}

// ClearToken forgets the token and removes the file.
func (s *FileStore) ClearToken() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}

// Role returns the role of the signed-in user, if known.
func (s *FileStore) Role() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.role
}

// SetRole records the role of the signed-in user.
func (s *FileStore) SetRole(role string) {
	s.mu.Lock()
	s.role = role
	s.mu.Unlock()
}

// ClearRole forgets the role.
func (s *FileStore) ClearRole() {
	s.SetRole("")
}
