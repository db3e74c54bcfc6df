package httpclient

import (
	"bytes"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/xiaot623/gogo/chatclient/internal/auth"
	"github.com/xiaot623/gogo/chatclient/internal/mock"
	"github.com/xiaot623/gogo/chatclient/internal/policy"
)

// authTransport attaches the current credential to every request.
type authTransport struct {
	credentials auth.CredentialSource
	next        http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.credentials != nil {
		if token := t.credentials.Token(); token != "" {
			req = req.Clone(req.Context())
			req.Header.Set("Authorization", token)
		}
	}
	return t.next.RoundTrip(req)
}

// mockTransport answers requests that match a mock rule without touching
// the network, unless the activation policy lets them pass through.
type mockTransport struct {
	router *mock.Router
	policy *policy.Engine
	env    string
	logger *zap.Logger
	next   http.RoundTripper
}

func (t *mockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rule, ok := t.router.MatchRequest(req)
	if !ok {
		return t.next.RoundTrip(req)
	}

	if t.policy != nil {
		decision, err := t.policy.Decide(req.Context(), policy.Input{
			Env:    t.env,
			Method: req.Method,
			Path:   t.router.RelativePath(req.URL.Path),
			Rule:   rule.Name,
		})
		if err != nil {
			closeBody(req)
			return nil, err
		}
		if decision == policy.DecisionPassthrough {
			t.logger.Debug("[mock] passthrough", zap.String("rule", rule.Name))
			return t.next.RoundTrip(req)
		}
	}

	closeBody(req)
	body, err := t.router.BuildResponse(req.Context(), rule, req)
	if err != nil {
		return nil, err
	}

	return &http.Response{
		Status:        "200 OK",
		StatusCode:    http.StatusOK,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        http.Header{"Content-Type": {"application/json"}, "Content-Length": {strconv.Itoa(len(body))}},
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}, nil
}

func closeBody(req *http.Request) {
	if req.Body != nil {
		req.Body.Close()
	}
}
