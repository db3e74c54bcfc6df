package httpclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xiaot623/gogo/chatclient/internal/adapter/response"
	"github.com/xiaot623/gogo/chatclient/internal/auth"
	"github.com/xiaot623/gogo/chatclient/internal/domain"
	"github.com/xiaot623/gogo/chatclient/internal/fixture"
	"github.com/xiaot623/gogo/chatclient/internal/mock"
	"github.com/xiaot623/gogo/chatclient/internal/policy"
	"github.com/xiaot623/gogo/chatclient/internal/session"
)

type recordingNotifier struct {
	mu   sync.Mutex
	errs []error
}

func (n *recordingNotifier) Notify(_ string, err error) {
	n.mu.Lock()
	n.errs = append(n.errs, err)
	n.mu.Unlock()
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.errs)
}

func newMockRouter(fixtures fixture.Store) *mock.Router {
	store := session.NewMemoryStore(nil, zap.NewNop())
	return mock.NewRouter(mock.DefaultRules(store), fixtures, "/api/v1", zap.NewNop())
}

func TestDoUnwrapsEnvelopeAndAttachesToken(t *testing.T) {
	var gotAuth, gotPath, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"code":200,"msg":"ok","data":{"id":5,"title":"t"}}`)
	}))
	defer server.Close()

	client := New(Options{
		BaseURL:     server.URL,
		APIPrefix:   "/api/v1",
		Credentials: auth.Static("tok-1"),
	})

	var out domain.Session
	err := client.Do(context.Background(), Request{
		Method: http.MethodGet,
		Path:   "/anything",
		Query:  url.Values{"a": {"b"}},
	}, &out)
	require.NoError(t, err)

	assert.Equal(t, "tok-1", gotAuth)
	assert.Equal(t, "/api/v1/anything", gotPath)
	assert.Equal(t, "a=b", gotQuery)
	assert.Equal(t, int64(5), out.ID)
}

func TestDoOmitsEmptyToken(t *testing.T) {
	var header http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Clone()
		io.WriteString(w, `{"code":200,"msg":"ok","data":null}`)
	}))
	defer server.Close()

	client := New(Options{BaseURL: server.URL, APIPrefix: "/api/v1", Credentials: auth.Static("")})
	require.NoError(t, client.Do(context.Background(), Request{Method: "GET", Path: "/x"}, nil))
	_, present := header["Authorization"]
	assert.False(t, present)
}

func TestDoEnvelopeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"code":401,"msg":"unauthorized","data":null}`)
	}))
	defer server.Close()

	notifier := &recordingNotifier{}
	client := New(Options{BaseURL: server.URL, APIPrefix: "/api/v1", Notifier: notifier})

	err := client.Do(context.Background(), Request{Method: "GET", Path: "/session"}, nil)
	var envErr *domain.EnvelopeError
	require.True(t, errors.As(err, &envErr))
	assert.Equal(t, 401, envErr.Code)
	assert.Equal(t, 1, notifier.count())
}

func TestDoHTTPStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	notifier := &recordingNotifier{}
	client := New(Options{BaseURL: server.URL, APIPrefix: "/api/v1", Notifier: notifier})

	err := client.Do(context.Background(), Request{Method: "GET", Path: "/session"}, nil)
	var tErr *domain.TransportError
	require.True(t, errors.As(err, &tErr))
	assert.Equal(t, http.StatusBadGateway, tErr.StatusCode)
	assert.Equal(t, 1, notifier.count())
}

func TestDoTransformBeforeUnwrap(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"code":200,"msg":"ok","data":{"id":12}}`)
	}))
	defer server.Close()

	client := New(Options{BaseURL: server.URL, APIPrefix: "/api/v1"})
	var id int64
	err := client.Do(context.Background(), Request{
		Method:    http.MethodPost,
		Path:      "/session",
		Transform: response.SessionCreate,
	}, &id)
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)
}

func TestDoServedByMockLayer(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		io.WriteString(w, `{"code":200,"msg":"ok","data":null}`)
	}))
	defer server.Close()

	client := New(Options{
		BaseURL:   server.URL,
		APIPrefix: "/api/v1",
		Router:    newMockRouter(fixture.NewEmbeddedStore()),
	})

	var result domain.LoginResult
	require.NoError(t, client.Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/user/login",
		Body:   domain.LoginRequest{Email: "a@b.c", Password: "pw"},
	}, &result))
	assert.Equal(t, "mock-token-7f3c2a", result.Token)

	var id int64
	require.NoError(t, client.Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/session",
		Query:  url.Values{"title": {"x"}},
	}, &id))
	assert.Equal(t, int64(1), id)

	// no rule, goes to the network
	require.NoError(t, client.Do(context.Background(), Request{Method: "GET", Path: "/unmocked"}, nil))
	assert.Equal(t, 1, hits)
}

func TestDoPolicyPassthrough(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		io.WriteString(w, `{"code":200,"msg":"ok","data":[]}`)
	}))
	defer server.Close()

	engine, err := policy.NewEngine(context.Background(), policy.DefaultPolicy)
	require.NoError(t, err)

	client := New(Options{
		BaseURL:   server.URL,
		APIPrefix: "/api/v1",
		Router:    newMockRouter(fixture.NewEmbeddedStore()),
		Policy:    engine,
		Env:       "production",
	})

	require.NoError(t, client.Do(context.Background(), Request{Method: "GET", Path: "/session"}, nil))
	assert.Equal(t, 1, hits)
}

func TestDoFixtureFailurePropagates(t *testing.T) {
	notifier := &recordingNotifier{}
	client := New(Options{
		BaseURL:   "http://127.0.0.1:1",
		APIPrefix: "/api/v1",
		Router:    newMockRouter(fixture.NewFSStore(fstest.MapFS{})),
		Notifier:  notifier,
	})

	err := client.Do(context.Background(), Request{Method: http.MethodPost, Path: "/user/login"}, nil)
	var loadErr *domain.FixtureLoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, 1, notifier.count())
}

func TestDoRawBypassesMock(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Test", "1")
		io.WriteString(w, `{"code":500,"msg":"boom","data":null}`)
	}))
	defer server.Close()

	client := New(Options{
		BaseURL:   server.URL,
		APIPrefix: "/api/v1",
		Router:    newMockRouter(fixture.NewEmbeddedStore()),
	})

	resp, err := client.DoRaw(context.Background(), Request{Method: http.MethodPost, Path: "/user/login"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "1", resp.Header.Get("X-Test"))
	assert.JSONEq(t, `{"code":500,"msg":"boom","data":null}`, string(resp.Body))
}

func TestOpenStream(t *testing.T) {
	var accept, authz string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accept = r.Header.Get("Accept")
		authz = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, "data: \"hi\"\n\n")
	}))
	defer server.Close()

	client := New(Options{BaseURL: server.URL, APIPrefix: "/api/v1", Credentials: auth.Static("tok")})
	body, err := client.OpenStream(context.Background(), Request{Method: http.MethodPost, Path: "/assistant/chat", Body: domain.ChatRequest{Message: "hi"}})
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "data: \"hi\"\n\n", string(data))
	assert.Equal(t, "text/event-stream", accept)
	assert.Equal(t, "tok", authz)
}

func TestOpenStreamStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := New(Options{BaseURL: server.URL, APIPrefix: "/api/v1", Notifier: &recordingNotifier{}})
	_, err := client.OpenStream(context.Background(), Request{Method: http.MethodPost, Path: "/assistant/chat"})
	var tErr *domain.TransportError
	require.True(t, errors.As(err, &tErr))
	assert.Equal(t, http.StatusInternalServerError, tErr.StatusCode)
}
