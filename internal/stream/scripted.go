package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xiaot623/gogo/chatclient/internal/domain"
	"github.com/xiaot623/gogo/chatclient/internal/fixture"
)

// TranscriptFixture holds the scripted reply.
const TranscriptFixture = "mock_chat_stream.json"

// ScriptedOptions configures the pacing of a ScriptedSource.
type ScriptedOptions struct {
	Startup  time.Duration
	Interval time.Duration
	Logger   *zap.Logger
}

// ScriptedSource replays a transcript fixture, one entry per tick, after a
// simulated startup latency.
type ScriptedSource struct {
	fixtures fixture.Store
	startup  time.Duration
	interval time.Duration
	logger   *zap.Logger
}

// NewScriptedSource creates a scripted source reading from fixtures.
func NewScriptedSource(fixtures fixture.Store, opts ScriptedOptions) *ScriptedSource {
	if opts.Startup < 0 {
		opts.Startup = DefaultStartup
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &ScriptedSource{
		fixtures: fixtures,
		startup:  opts.Startup,
		interval: opts.Interval,
		logger:   opts.Logger,
	}
}

var _ Source = (*ScriptedSource)(nil)

// Open waits out the startup latency and loads the transcript. The reply
// does not depend on the request.
func (s *ScriptedSource) Open(ctx context.Context, req Request) (ChunkSource, error) {
	if s.startup > 0 {
		timer := time.NewTimer(s.startup)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	chunks, err := s.loadTranscript(ctx)
	if err != nil {
		s.logger.Error("failed to load chat transcript", zap.Error(err))
		return nil, err
	}
	s.logger.Debug("scripted stream opened",
		zap.String("session_id", req.SessionID),
		zap.Int("chunks", len(chunks)),
	)

	return &scriptedChunks{
		chunks: chunks,
		ticker: time.NewTicker(s.interval),
	}, nil
}

func (s *ScriptedSource) loadTranscript(ctx context.Context) ([]string, error) {
	raw, err := s.fixtures.Load(ctx, TranscriptFixture)
	if err != nil {
		return nil, err
	}
	var env struct {
		Data []string `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &domain.FixtureLoadError{
			Path: fixture.NormalizePath(TranscriptFixture),
			Err:  fmt.Errorf("decode transcript: %w", err),
		}
	}
	return env.Data, nil
}

// scriptedChunks consumes one tick per transcript entry, the sentinel
// included, and reports the end on the tick after the last entry.
type scriptedChunks struct {
	chunks    []string
	index     int
	ticker    *time.Ticker
	closeOnce sync.Once
}

func (c *scriptedChunks) Next(ctx context.Context) (string, error) {
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-c.ticker.C:
		}

		if c.index >= len(c.chunks) {
			c.Close()
			return "", io.EOF
		}
		chunk := c.chunks[c.index]
		c.index++
		if chunk == domain.StreamDone {
			continue
		}
		return chunk, nil
	}
}

func (c *scriptedChunks) Close() error {
	c.closeOnce.Do(c.ticker.Stop)
	return nil
}
