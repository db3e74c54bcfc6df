// Package session holds the chat session collection that stands in for
// server-side session storage while the mock layer is active.
package session

import (
	"context"

	"github.com/xiaot623/gogo/chatclient/internal/domain"
)

// Store is the capability set the mock layer needs from a session backend.
// Rename and Delete of an unknown id succeed without changing anything.
type Store interface {
	// List returns the whole collection, newest first.
	List(ctx context.Context) ([]domain.Session, error)

	// Create inserts a new session at the front and returns its id. Ids are
	// never reused, not even after the newest session was deleted.
	Create(ctx context.Context, title string) (int64, error)

	// Rename replaces the title and bumps the update time.
	Rename(ctx context.Context, id int64, title string) error

	// Delete removes the session if present.
	Delete(ctx context.Context, id int64) error
}
