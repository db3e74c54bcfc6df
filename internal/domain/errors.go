package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyMessage is returned when a chat turn is started without text.
	ErrEmptyMessage = errors.New("message must not be empty")

	// ErrNoMockRule is returned when a request reaches the mock layer
	// without a matching rule.
	ErrNoMockRule = errors.New("no mock rule matches request")
)

// TransportError is a network or stream failure, or a non-200 HTTP status.
// It is never retried by the client.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: http status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// EnvelopeError is a successful transport carrying a non-success code.
type EnvelopeError struct {
	Code int
	Msg  string
}

func (e *EnvelopeError) Error() string {
	return fmt.Sprintf("api error [%d]: %s", e.Code, e.Msg)
}

// FixtureLoadError is returned when a mock fixture is missing or unreadable.
type FixtureLoadError struct {
	Path string
	Err  error
}

func (e *FixtureLoadError) Error() string {
	return fmt.Sprintf("failed to load fixture %s: %v", e.Path, e.Err)
}

func (e *FixtureLoadError) Unwrap() error { return e.Err }
