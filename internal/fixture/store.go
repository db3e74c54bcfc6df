// Package fixture resolves logical fixture names to their JSON content.
package fixture

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/xiaot623/gogo/chatclient/internal/domain"
)

//go:embed data/*.json
var embedded embed.FS

// Embedded returns the fixtures shipped with the client, rooted so that
// "/mock_session_list.json" resolves to data/mock_session_list.json.
func Embedded() fs.FS {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		panic(err)
	}
	return sub
}

// Store loads fixture content by normalized path.
type Store interface {
	Load(ctx context.Context, path string) ([]byte, error)
}

// NormalizePath guarantees a leading slash.
func NormalizePath(path string) string {
	if strings.HasPrefix(path, "/") {
		return path
	}
	return "/" + path
}

// FSStore serves fixtures from a filesystem.
type FSStore struct {
	fsys fs.FS
}

// NewFSStore creates a store over fsys.
func NewFSStore(fsys fs.FS) *FSStore {
	return &FSStore{fsys: fsys}
}

// NewEmbeddedStore creates a store over the embedded fixtures.
func NewEmbeddedStore() *FSStore {
	return NewFSStore(Embedded())
}

var _ Store = (*FSStore)(nil)

// Load reads the fixture at path.
func (s *FSStore) Load(ctx context.Context, path string) ([]byte, error) {
	path = NormalizePath(path)
	if err := ctx.Err(); err != nil {
		return nil, &domain.FixtureLoadError{Path: path, Err: err}
	}

	data, err := fs.ReadFile(s.fsys, strings.TrimPrefix(path, "/"))
	if err != nil {
		return nil, &domain.FixtureLoadError{Path: path, Err: err}
	}
	if !json.Valid(data) {
		return nil, &domain.FixtureLoadError{Path: path, Err: errors.New("invalid JSON")}
	}
	return data, nil
}

// HTTPStore fetches fixtures as static JSON resources under a root URL.
// Requests carry no credentials.
type HTTPStore struct {
	baseURL    string
	root       string
	httpClient *http.Client
}

// NewHTTPStore creates a store fetching baseURL+root+path.
func NewHTTPStore(baseURL, root string, timeout time.Duration) *HTTPStore {
	return &HTTPStore{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		root:    strings.TrimSuffix(NormalizePath(root), "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

var _ Store = (*HTTPStore)(nil)

// Load fetches the fixture at path.
func (s *HTTPStore) Load(ctx context.Context, path string) ([]byte, error) {
	path = NormalizePath(path)
	url := s.baseURL + s.root + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &domain.FixtureLoadError{Path: path, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &domain.FixtureLoadError{Path: path, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.FixtureLoadError{Path: path, Err: fmt.Errorf("failed to read response: %w", err)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &domain.FixtureLoadError{Path: path, Err: fmt.Errorf("http status %d", resp.StatusCode)}
	}
	if !json.Valid(body) {
		return nil, &domain.FixtureLoadError{Path: path, Err: errors.New("invalid JSON")}
	}
	return body, nil
}
