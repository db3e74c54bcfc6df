package mock

import (
	"context"
	"net/http"
	"regexp"
	"strconv"

	"github.com/xiaot623/gogo/chatclient/internal/adapter/response"
	"github.com/xiaot623/gogo/chatclient/internal/domain"
	"github.com/xiaot623/gogo/chatclient/internal/session"
)

var (
	messagePagePath   = regexp.MustCompile(`/message/session/([^/]+)/page`)
	sessionDeletePath = regexp.MustCompile(`/session/(\d+)$`)
)

// DefaultRules is the rule table for the chat API. Session routes are
// served by store.
func DefaultRules(store session.Store) []Rule {
	h := SessionHandlers{Store: store}
	return []Rule{
		{
			Name:    "user.login",
			Method:  http.MethodPost,
			Pattern: regexp.MustCompile(`^/user/login$`),
			Action:  StaticFixture{Name: "mock_user_login.json"},
		},
		{
			Name:    "user.register",
			Method:  http.MethodPost,
			Pattern: regexp.MustCompile(`^/user/register$`),
			Action:  StaticFixture{Name: "mock_user_register.json"},
		},
		{
			Name:      "admin.users",
			Method:    http.MethodGet,
			Pattern:   regexp.MustCompile(`^/user/admin$`),
			Action:    StaticFixture{Name: "mock_admin_user_list.json"},
			Transform: response.AdminUserList,
		},
		{
			Name:    "admin.delete_user",
			Method:  http.MethodDelete,
			Pattern: regexp.MustCompile(`^/user/admin/[^/]+$`),
			Action:  StaticFixture{Name: "mock_admin_user_delete.json"},
		},
		{
			Name:    "session.list",
			Method:  http.MethodGet,
			Pattern: regexp.MustCompile(`^/session$`),
			Action:  StatefulHandler{Name: "session.list", Handle: h.List},
		},
		{
			Name:    "session.create",
			Method:  http.MethodPost,
			Pattern: regexp.MustCompile(`^/session$`),
			Action:  StatefulHandler{Name: "session.create", Handle: h.Create},
		},
		{
			Name:    "session.rename",
			Method:  http.MethodPut,
			Pattern: regexp.MustCompile(`^/session$`),
			Action:  StatefulHandler{Name: "session.rename", Handle: h.Rename},
		},
		{
			Name:    "session.delete",
			Method:  http.MethodDelete,
			Pattern: regexp.MustCompile(`^/session/[^/]+$`),
			Action:  StatefulHandler{Name: "session.delete", Handle: h.Delete},
		},
		{
			Name:      "message.page",
			Method:    http.MethodGet,
			Pattern:   regexp.MustCompile(`^/message/session/[^/]+/page$`),
			Action:    DynamicFixture{Resolve: MessagePageFixture},
			Transform: response.ChatMessagePage,
		},
	}
}

// MessagePageFixture names the history fixture for the chat in path,
// defaulting to chat 1.
func MessagePageFixture(path string) string {
	chatID := "1"
	if m := messagePagePath.FindStringSubmatch(path); m != nil {
		chatID = m[1]
	}
	return "mock_message_page_" + chatID + ".json"
}

// SessionHandlers adapts the HTTP request shape to a session.Store.
type SessionHandlers struct {
	Store session.Store
}

// List returns the whole collection.
func (h SessionHandlers) List(ctx context.Context, _ *http.Request) (any, error) {
	return h.Store.List(ctx)
}

// Create reads the title from the query string and returns the new id.
func (h SessionHandlers) Create(ctx context.Context, req *http.Request) (any, error) {
	title := req.URL.Query().Get("title")
	if title == "" {
		title = domain.DefaultSessionTitle
	}
	return h.Store.Create(ctx, title)
}

// Rename reads id and title from the query string. A missing or invalid
// id matches nothing.
func (h SessionHandlers) Rename(ctx context.Context, req *http.Request) (any, error) {
	q := req.URL.Query()
	id, err := strconv.ParseInt(q.Get("id"), 10, 64)
	if err != nil {
		return nil, nil
	}
	return nil, h.Store.Rename(ctx, id, q.Get("title"))
}

// Delete takes the id from the trailing path segment. A non-numeric or
// zero id is a no-op.
func (h SessionHandlers) Delete(ctx context.Context, req *http.Request) (any, error) {
	m := sessionDeletePath.FindStringSubmatch(req.URL.Path)
	if m == nil {
		return nil, nil
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || id == 0 {
		return nil, nil
	}
	return nil, h.Store.Delete(ctx, id)
}
