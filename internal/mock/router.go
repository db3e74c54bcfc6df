package mock

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/xiaot623/gogo/chatclient/internal/domain"
	"github.com/xiaot623/gogo/chatclient/internal/fixture"
)

// Router matches requests against an ordered rule table.
type Router struct {
	rules     []Rule
	fixtures  fixture.Store
	apiPrefix string
	logger    *zap.Logger
}

// NewRouter creates a router over rules, evaluated in order.
func NewRouter(rules []Rule, fixtures fixture.Store, apiPrefix string, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		rules:     rules,
		fixtures:  fixtures,
		apiPrefix: strings.TrimSuffix(apiPrefix, "/"),
		logger:    logger,
	}
}

// Rules returns the rule table in registration order.
func (r *Router) Rules() []Rule {
	return r.rules
}

// RelativePath strips the API prefix from an absolute request path.
func (r *Router) RelativePath(path string) string {
	if r.apiPrefix == "" {
		return path
	}
	rel := strings.TrimPrefix(path, r.apiPrefix)
	if rel == "" {
		return "/"
	}
	return rel
}

// Match returns the first rule matching method and path, where path is
// relative to the API prefix.
func (r *Router) Match(method, path string) (*Rule, bool) {
	for i := range r.rules {
		if r.rules[i].Matches(method, path) {
			return &r.rules[i], true
		}
	}
	return nil, false
}

// MatchRequest matches an outbound request by its URL path.
func (r *Router) MatchRequest(req *http.Request) (*Rule, bool) {
	return r.Match(req.Method, r.RelativePath(req.URL.Path))
}

// BuildResponse produces the envelope-shaped body for a matched rule.
func (r *Router) BuildResponse(ctx context.Context, rule *Rule, req *http.Request) ([]byte, error) {
	path := r.RelativePath(req.URL.Path)
	r.logger.Debug("[mock] intercept",
		zap.String("method", strings.ToUpper(req.Method)),
		zap.String("path", req.URL.RequestURI()),
		zap.String("target", rule.Target(path)),
	)

	var name string
	switch a := rule.Action.(type) {
	case StatefulHandler:
		data, err := a.Handle(ctx, req)
		if err != nil {
			r.logger.Error("mock handler failed", zap.String("rule", rule.Name), zap.Error(err))
			return nil, err
		}
		return domain.SuccessEnvelope(data)
	case StaticFixture:
		name = a.Name
	case DynamicFixture:
		name = a.Resolve(path)
	default:
		return nil, fmt.Errorf("rule %s: unsupported action %T", rule.Name, rule.Action)
	}

	payload, err := r.fixtures.Load(ctx, fixture.NormalizePath(name))
	if err != nil {
		r.logger.Error("mock fixture load failed", zap.String("rule", rule.Name), zap.Error(err))
		return nil, err
	}
	if rule.Transform != nil {
		payload = rule.Transform(payload)
	}
	return payload, nil
}
