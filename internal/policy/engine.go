// Package policy decides whether a request that matches a mock rule is
// answered locally or passed through to the real backend.
package policy

import (
	"context"
	"fmt"
	"os"

	"github.com/open-policy-agent/opa/rego"
)

// Decision is the outcome of a mock activation policy.
type Decision string

const (
	DecisionMock        Decision = "mock"
	DecisionPassthrough Decision = "passthrough"
)

// Input is the document a policy is evaluated against.
type Input struct {
	Env    string `json:"env"`
	Method string `json:"method"`
	Path   string `json:"path"`
	Rule   string `json:"rule"`
}

// Engine is the OPA policy engine.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine creates a new policy engine with the given policy content.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.mock_policy.decision"),
		rego.Module("mock_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// NewEngineFromFile loads a policy module from path, falling back to
// DefaultPolicy when path is empty.
func NewEngineFromFile(ctx context.Context, path string) (*Engine, error) {
	if path == "" {
		return NewEngine(ctx, DefaultPolicy)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}
	return NewEngine(ctx, string(content))
}

// Decide evaluates the policy for a request already matched by a mock rule.
// A policy that yields nothing keeps the mock in place.
func (e *Engine) Decide(ctx context.Context, input Input) (Decision, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(map[string]any{
		"env":    input.Env,
		"method": input.Method,
		"path":   input.Path,
		"rule":   input.Rule,
	}))
	if err != nil {
		return "", fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return DecisionMock, nil
	}

	s, ok := results[0].Expressions[0].Value.(string)
	if !ok {
		return "", fmt.Errorf("unexpected policy result type %T", results[0].Expressions[0].Value)
	}
	switch d := Decision(s); d {
	case DecisionMock, DecisionPassthrough:
		return d, nil
	default:
		return "", fmt.Errorf("unknown policy decision %q", s)
	}
}

// DefaultPolicy mocks every matched request outside production. The client
// only installs the mock layer in development, so the production branch
// matters when the engine is shared with a custom policy file or another
// caller that evaluates production traffic.
const DefaultPolicy = `
package mock_policy

default decision = "mock"

decision = "passthrough" {
	input.env == "production"
}
`
