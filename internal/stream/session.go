package stream

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xiaot623/gogo/chatclient/internal/domain"
)

// Params describes a chat turn and the callbacks that receive it.
// Callbacks run on one goroutine per turn, in order.
type Params struct {
	Message   string
	SessionID string
	Mode      domain.Mode

	OnChunk  func(chunk string)
	OnFinish func()
	OnError  func(err error)
}

// Session starts streaming chat turns against a Source.
type Session struct {
	source Source
	logger *zap.Logger
}

// NewSession creates a streaming session over source.
func NewSession(source Source, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{source: source, logger: logger}
}

// Handle controls one in-flight chat turn.
type Handle struct {
	id        string
	cancel    context.CancelFunc
	cancelled atomic.Bool
	terminal  sync.Once
	done      chan struct{}

	// deliverMu is held while checking the flag and running a callback.
	deliverMu  sync.Mutex
	inCallback atomic.Bool
}

// ID identifies the turn in logs.
func (h *Handle) ID() string { return h.id }

// Cancel stops delivery. No callback starts after it returns; a callback
// that is already running is allowed to finish. It may be called from
// inside a callback, after the turn has ended, and more than once.
func (h *Handle) Cancel() {
	h.cancelled.Store(true)
	h.cancel()
	if h.inCallback.Load() {
		return
	}
	h.deliverMu.Lock()
	h.deliverMu.Unlock()
}

// Cancelled reports whether Cancel was called.
func (h *Handle) Cancelled() bool {
	return h.cancelled.Load()
}

// Done is closed once the turn has ended, however it ended.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the turn has ended or ctx is done.
func (h *Handle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Start begins a chat turn and returns immediately. An empty message is
// rejected before anything is opened.
func (s *Session) Start(ctx context.Context, p Params) (*Handle, error) {
	if p.Message == "" {
		return nil, domain.ErrEmptyMessage
	}

	runCtx, cancel := context.WithCancel(ctx)
	h := &Handle{
		id:     "stream_" + uuid.New().String()[:8],
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go s.run(runCtx, h, p)
	return h, nil
}

func (s *Session) run(ctx context.Context, h *Handle, p Params) {
	defer close(h.done)
	defer h.cancel()

	logger := s.logger.With(zap.String("stream_id", h.id), zap.String("session_id", p.SessionID))
	logger.Debug("stream started", zap.String("mode", string(p.Mode)))

	src, err := s.source.Open(ctx, Request{
		Message:   p.Message,
		SessionID: p.SessionID,
		Mode:      p.Mode,
	})
	if err != nil {
		s.fail(ctx, h, p, logger, err)
		return
	}
	defer src.Close()

	// Unblock a pending read when the turn is cancelled.
	stop := context.AfterFunc(ctx, func() { src.Close() })
	defer stop()

	chunks := 0
	for {
		chunk, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			h.finish(func() {
				logger.Debug("stream finished", zap.Int("chunks", chunks))
				if p.OnFinish != nil {
					p.OnFinish()
				}
			})
			return
		}
		if err != nil {
			s.fail(ctx, h, p, logger, err)
			return
		}

		delivered := h.deliver(func() {
			chunks++
			if p.OnChunk != nil {
				p.OnChunk(chunk)
			}
		})
		if !delivered {
			return
		}
	}
}

// fail reports err unless the turn was cancelled, by the handle or by the
// caller's context.
func (s *Session) fail(ctx context.Context, h *Handle, p Params, logger *zap.Logger, err error) {
	if ctx.Err() != nil {
		h.cancelled.Store(true)
		logger.Debug("stream cancelled")
		return
	}
	h.finish(func() {
		logger.Warn("stream failed", zap.Error(err))
		if p.OnError != nil {
			p.OnError(err)
		}
	})
}

func (h *Handle) finish(fn func()) {
	h.terminal.Do(func() { h.deliver(fn) })
}

// deliver runs fn unless the turn was cancelled.
func (h *Handle) deliver(fn func()) bool {
	h.deliverMu.Lock()
	defer h.deliverMu.Unlock()
	if h.cancelled.Load() {
		return false
	}
	h.inCallback.Store(true)
	defer h.inCallback.Store(false)
	fn()
	return true
}
