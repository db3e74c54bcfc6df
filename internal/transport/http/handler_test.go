package http

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xiaot623/gogo/chatclient/internal/domain"
	"github.com/xiaot623/gogo/chatclient/internal/fixture"
	"github.com/xiaot623/gogo/chatclient/internal/httpclient"
	"github.com/xiaot623/gogo/chatclient/internal/mock"
	"github.com/xiaot623/gogo/chatclient/internal/session"
	"github.com/xiaot623/gogo/chatclient/internal/stream"
)

func newTestHandler(fixtures fixture.Store) *Handler {
	router := mock.NewRouter(mock.DefaultRules(session.NewMemoryStore(fixtures, nil)), fixtures, "/api/v1", nil)
	source := stream.NewScriptedSource(fixtures, stream.ScriptedOptions{Interval: time.Millisecond})
	return NewHandler(router, source, fixtures, "/api/v1", "/mock", zap.NewNop())
}

func TestDispatchSessionDelete(t *testing.T) {
	e := echo.New()
	h := newTestHandler(fixture.NewEmbeddedStore())
	h.RegisterRoutes(e)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/session/7", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"code":200,"msg":"ok","data":null}`, rec.Body.String())
}

func TestDispatchNoRule(t *testing.T) {
	e := echo.New()
	h := newTestHandler(fixture.NewEmbeddedStore())
	h.RegisterRoutes(e)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/unknown", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, int64(404), gjson.Get(rec.Body.String(), "code").Int())
}

func TestDispatchMissingFixture(t *testing.T) {
	e := echo.New()
	h := newTestHandler(fixture.NewFSStore(fstest.MapFS{}))
	h.RegisterRoutes(e)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/user/login", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFixtureRoute(t *testing.T) {
	e := echo.New()
	h := newTestHandler(fixture.NewEmbeddedStore())
	h.RegisterRoutes(e)

	req := httptest.NewRequest(http.MethodGet, "/mock/mock_session_list.json", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, gjson.Get(rec.Body.String(), "data").IsArray())
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	e := echo.New()
	h := newTestHandler(fixture.NewEmbeddedStore())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/assistant/chat?session=1/LOCAL", strings.NewReader(`{"message":""}`))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.Chat(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatStreamsTranscript(t *testing.T) {
	fixtures := fixture.NewFSStore(fstest.MapFS{
		stream.TranscriptFixture: &fstest.MapFile{Data: []byte(`{"data":["a\nb","c","[DONE]"]}`)},
	})
	e := echo.New()
	h := newTestHandler(fixtures)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/assistant/chat?session=1/LOCAL", strings.NewReader(`{"message":"hi"}`))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.Chat(c))
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "data: \"a\\nb\"\n\ndata: \"c\"\n\n", rec.Body.String())
}

// The live client pointed at the mock server reproduces the transcript.
func TestLiveStreamAgainstMockServer(t *testing.T) {
	fixtures := fixture.NewEmbeddedStore()
	server := httptest.NewServer(NewMockServer(newTestHandler(fixtures), zap.NewNop()))
	defer server.Close()

	raw, err := fixtures.Load(context.Background(), stream.TranscriptFixture)
	require.NoError(t, err)
	var want strings.Builder
	for _, c := range gjson.GetBytes(raw, "data").Array() {
		if c.String() != domain.StreamDone {
			want.WriteString(c.String())
		}
	}

	client := httpclient.New(httpclient.Options{BaseURL: server.URL, APIPrefix: "/api/v1"})
	chat := stream.NewSession(stream.NewLiveSource(client, nil), nil)

	var got strings.Builder
	finished := 0
	h, err := chat.Start(context.Background(), stream.Params{
		Message:   "hi",
		SessionID: "1",
		Mode:      domain.ModeLocal,
		OnChunk:   func(c string) { got.WriteString(c) },
		OnFinish:  func() { finished++ },
		OnError:   func(err error) { t.Errorf("unexpected error: %v", err) },
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, h.Wait(ctx))

	assert.Equal(t, want.String(), got.String())
	assert.Equal(t, 1, finished)
}

func TestHealth(t *testing.T) {
	server := httptest.NewServer(NewMockServer(newTestHandler(fixture.NewEmbeddedStore()), zap.NewNop()))
	defer server.Close()

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "healthy")
}

func TestRegisterRoutesLogsRuleTable(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	fixtures := fixture.NewEmbeddedStore()
	router := mock.NewRouter(mock.DefaultRules(session.NewMemoryStore(fixtures, nil)), fixtures, "/api/v1", nil)
	h := NewHandler(router, nil, fixtures, "/api/v1", "/mock", zap.New(core))

	h.RegisterRoutes(echo.New())

	entries := logs.FilterMessage("mock rule registered").All()
	require.Len(t, entries, len(router.Rules()))
	assert.Equal(t, "user.login", entries[0].ContextMap()["rule"])
	assert.Equal(t, "POST", entries[0].ContextMap()["method"])
}
