// Package mock answers API requests from fixtures and the in-process
// session simulator instead of the network.
package mock

import (
	"context"
	"net/http"
	"regexp"
	"strings"

	"github.com/xiaot623/gogo/chatclient/internal/adapter/response"
)

// Action is what a matched rule does. It is one of StaticFixture,
// DynamicFixture or StatefulHandler.
type Action interface {
	action()
}

// StaticFixture serves a fixture with a fixed name.
type StaticFixture struct {
	Name string
}

// DynamicFixture derives the fixture name from the request path.
type DynamicFixture struct {
	Resolve func(path string) string
}

// StatefulHandler computes the response data in process. The result is
// wrapped in a success envelope.
type StatefulHandler struct {
	Name   string
	Handle func(ctx context.Context, req *http.Request) (any, error)
}

func (StaticFixture) action()   {}
func (DynamicFixture) action()  {}
func (StatefulHandler) action() {}

// Rule binds a method and path pattern to an action.
type Rule struct {
	Name      string
	Method    string
	Pattern   *regexp.Regexp
	Action    Action
	Transform response.Transform
}

// Matches reports whether the rule applies to method and a path relative
// to the API prefix. Any query string is ignored.
func (r *Rule) Matches(method, path string) bool {
	if !strings.EqualFold(r.Method, method) {
		return false
	}
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	return r.Pattern.MatchString(path)
}

// Target names what the rule serves, for logging.
func (r *Rule) Target(path string) string {
	switch a := r.Action.(type) {
	case StaticFixture:
		return a.Name
	case DynamicFixture:
		return a.Resolve(path)
	case StatefulHandler:
		return "handler:" + a.Name
	default:
		return "unknown"
	}
}
