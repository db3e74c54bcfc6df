// Package stream delivers assistant replies chunk by chunk from either the
// live event stream or a scripted transcript.
package stream

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xiaot623/gogo/chatclient/internal/config"
	"github.com/xiaot623/gogo/chatclient/internal/domain"
	"github.com/xiaot623/gogo/chatclient/internal/fixture"
	"github.com/xiaot623/gogo/chatclient/internal/httpclient"
)

// Request identifies one chat turn.
type Request struct {
	Message   string
	SessionID string
	Mode      domain.Mode
}

// ChunkSource yields the chunks of one reply in order.
type ChunkSource interface {
	// Next blocks until the next chunk is available. It returns io.EOF
	// once the reply is complete.
	Next(ctx context.Context) (string, error)

	// Close releases the underlying stream or timer. It is safe to call
	// more than once.
	Close() error
}

// Source opens chunk sources for chat turns.
type Source interface {
	Open(ctx context.Context, req Request) (ChunkSource, error)
}

// NewSource picks the backend for the build configuration: the scripted
// transcript in development, the live event stream otherwise.
func NewSource(cfg *config.Config, client *httpclient.Client, fixtures fixture.Store, logger *zap.Logger) Source {
	if cfg.IsDevelopment() {
		logger.Debug("development mode, using scripted chat stream")
		return NewScriptedSource(fixtures, ScriptedOptions{
			Startup:  cfg.StreamStartup,
			Interval: cfg.StreamInterval,
			Logger:   logger,
		})
	}
	return NewLiveSource(client, logger)
}

// Defaults for the scripted stream pacing.
const (
	DefaultStartup  = 500 * time.Millisecond
	DefaultInterval = 100 * time.Millisecond
)
