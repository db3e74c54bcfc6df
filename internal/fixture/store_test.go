package fixture

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/xiaot623/gogo/chatclient/internal/domain"
)

func TestNormalizePath(t *testing.T) {
	assert.Equal(t, "/a.json", NormalizePath("a.json"))
	assert.Equal(t, "/a.json", NormalizePath("/a.json"))
}

func TestEmbeddedFixturesAreEnvelopes(t *testing.T) {
	store := NewEmbeddedStore()
	names := []string{
		"mock_user_login.json",
		"mock_user_register.json",
		"mock_admin_user_list.json",
		"mock_admin_user_delete.json",
		"mock_session_list.json",
		"mock_message_page_1.json",
		"mock_message_page_2.json",
		"mock_chat_stream.json",
	}
	for _, name := range names {
		data, err := store.Load(context.Background(), name)
		require.NoError(t, err, name)
		assert.Equal(t, int64(200), gjson.GetBytes(data, "code").Int(), name)
	}
}

func TestFSStoreMissingFixture(t *testing.T) {
	store := NewEmbeddedStore()
	_, err := store.Load(context.Background(), "/mock_message_page_99.json")

	var loadErr *domain.FixtureLoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, "/mock_message_page_99.json", loadErr.Path)
}

func TestFSStoreInvalidJSON(t *testing.T) {
	store := NewFSStore(fstest.MapFS{"broken.json": {Data: []byte("{nope")}})
	_, err := store.Load(context.Background(), "broken.json")
	assert.Error(t, err)
}

func TestHTTPStore(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Errorf("fixture fetch must not carry credentials")
		}
		switch r.URL.Path {
		case "/mock/mock_user_register.json":
			fmt.Fprint(w, `{"code":200,"msg":"ok","data":null}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	store := NewHTTPStore(server.URL, "mock", time.Second)

	data, err := store.Load(context.Background(), "mock_user_register.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":200,"msg":"ok","data":null}`, string(data))

	_, err = store.Load(context.Background(), "/missing.json")
	var loadErr *domain.FixtureLoadError
	assert.True(t, errors.As(err, &loadErr))
}
