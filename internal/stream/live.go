package stream

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"sync"

	"go.uber.org/zap"

	"github.com/xiaot623/gogo/chatclient/internal/adapter/eventsource"
	"github.com/xiaot623/gogo/chatclient/internal/domain"
	"github.com/xiaot623/gogo/chatclient/internal/httpclient"
)

// ChatPath is the streaming chat endpoint, relative to the API prefix.
const ChatPath = "/assistant/chat"

// LiveSource streams replies from the backend over server-sent events.
// Failed opens are not retried.
type LiveSource struct {
	client *httpclient.Client
	logger *zap.Logger
}

// NewLiveSource creates a live source using client for transport.
func NewLiveSource(client *httpclient.Client, logger *zap.Logger) *LiveSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LiveSource{client: client, logger: logger}
}

var _ Source = (*LiveSource)(nil)

// Open posts the message and returns the event stream of the reply.
func (s *LiveSource) Open(ctx context.Context, req Request) (ChunkSource, error) {
	body, err := s.client.OpenStream(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   ChatPath,
		Query:  url.Values{"session": {req.SessionID + "/" + string(req.Mode)}},
		Body:   domain.ChatRequest{Message: req.Message},
	})
	if err != nil {
		return nil, err
	}
	return &liveChunks{
		body:   body,
		reader: eventsource.NewReader(body),
	}, nil
}

type liveChunks struct {
	body      io.ReadCloser
	reader    *eventsource.Reader
	closeOnce sync.Once
}

func (c *liveChunks) Next(ctx context.Context) (string, error) {
	for {
		event, err := c.reader.Next()
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}
			return "", &domain.TransportError{Op: "read " + ChatPath, Err: err}
		}
		if event.Data == "" {
			continue
		}
		return eventsource.NormalizePayload(event.Data), nil
	}
}

func (c *liveChunks) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.body.Close()
	})
	return err
}
