package policy

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"
	"github.com/open-policy-agent/opa/v1/storage/inmem"
	"github.com/open-policy-agent/opa/v1/topdown"
)

// OPARuleName is the rule name reported when a Rego policy rejects a text
// without setting rule_name.
const OPARuleName = "opa_policy"

// OPAResult is the outcome of evaluating a text against a Rego policy.
type OPAResult struct {
	Reject  bool
	Rule    string
	Message string
}

// OPARule is a predicate backed by an embedded OPA/Rego policy.
//
// The Rego policy must live in package postfilter and may define:
//
//	reject: boolean (undefined means false)
//	message: string (optional)
//	rule_name: string (optional, reported instead of opa_policy)
//
// Input available to the policy:
//
//	input.text: string
type OPARule struct {
	mu    sync.RWMutex
	path  string
	query rego.PreparedEvalQuery
}

// NewOPARule creates a predicate from a .rego policy file.
func NewOPARule(path string) (*OPARule, error) {
	r := &OPARule{path: path}
	if err := r.Reload(context.Background()); err != nil {
		return nil, err
	}
	return r, nil
}

// NewOPARuleFromSource creates a predicate from raw Rego source.
func NewOPARuleFromSource(source string) (*OPARule, error) {
	r := &OPARule{}
	if err := r.loadSource(source); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *OPARule) Name() string { return OPARuleName }

// Match reports whether the policy rejects text. Evaluation errors reject.
func (r *OPARule) Match(text string) bool {
	res, err := r.Evaluate(context.Background(), text)
	if err != nil {
		return true
	}
	return res.Reject
}

// Explain evaluates the policy and returns the rule name and message to
// report for a rejection of text.
func (r *OPARule) Explain(text string) (rule, message string) {
	res, err := r.Evaluate(context.Background(), text)
	if err != nil {
		return OPARuleName, err.Error()
	}
	rule = res.Rule
	if rule == "" {
		rule = OPARuleName
	}
	return rule, res.Message
}

// Evaluate runs the policy against text.
func (r *OPARule) Evaluate(ctx context.Context, text string) (*OPAResult, error) {
	r.mu.RLock()
	query := r.query
	r.mu.RUnlock()

	rs, err := query.Eval(ctx, rego.EvalInput(map[string]any{"text": text}))
	if err != nil {
		if topdown.IsError(err) {
			return &OPAResult{Reject: true, Message: "OPA evaluation error: " + err.Error()}, nil
		}
		return nil, fmt.Errorf("OPA evaluation failed: %w", err)
	}

	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return &OPAResult{}, nil
	}

	m, ok := rs[0].Expressions[0].Value.(map[string]any)
	if !ok {
		return &OPAResult{Reject: true, Message: "unexpected OPA result type"}, nil
	}
	return parseOPAResult(m), nil
}

// Reload re-reads the Rego policy file from disk and recompiles.
func (r *OPARule) Reload(_ context.Context) error {
	if r.path == "" {
		return nil
	}
	data, err := os.ReadFile(r.path)
	if err != nil {
		return fmt.Errorf("reading OPA policy file: %w", err)
	}
	return r.loadSource(string(data))
}

func (r *OPARule) loadSource(source string) error {
	if _, err := ast.ParseModuleWithOpts("policy.rego", source, ast.ParserOptions{RegoVersion: ast.RegoV1}); err != nil {
		return fmt.Errorf("parsing Rego policy: %w", err)
	}

	prepared, err := rego.New(
		rego.Query("data.postfilter"),
		rego.Module("policy.rego", source),
		rego.Store(inmem.New()),
	).PrepareForEval(context.Background())
	if err != nil {
		return fmt.Errorf("preparing OPA query: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.query = prepared
	return nil
}

func parseOPAResult(m map[string]any) *OPAResult {
	res := &OPAResult{}
	switch v := m["reject"].(type) {
	case bool:
		res.Reject = v
	case nil:
	default:
		// a non-boolean verdict is a policy bug
		res.Reject = true
		res.Message = fmt.Sprintf("non-boolean reject value %v", v)
		return res
	}
	if msg, ok := m["message"].(string); ok {
		res.Message = msg
	}
	if name, ok := m["rule_name"].(string); ok {
		res.Rule = name
	}
	return res
}
