package guard

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
	exprpb "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// ExprFilter selects catalog operators with a CEL predicate over descriptor
// fields. The predicate sees one variable, `op`, a map with keys id, pattern,
// name, category, deterministic, idempotent, type_preserving, bounded,
// max_latency_ns and guards (a list of guard-type strings), e.g.
//
//	"BUDGET" in op.guards && op.max_latency_ns <= 1000000
//
// Compiled programs are cached per expression; expressions are validated for
// determinism before compilation.
type ExprFilter struct {
	env      *cel.Env
	mu       sync.RWMutex
	prgCache map[string]cel.Program
}

// Issue describes one construct the determinism validator rejected.
type Issue struct {
	Message string
}

// ValidationResult reports whether an expression is admissible as a catalog
// predicate.
type ValidationResult struct {
	Valid  bool
	Issues []Issue
}

// NewExprFilter creates a filter with a fresh CEL environment.
func NewExprFilter() (*ExprFilter, error) {
	env, err := cel.NewEnv(
		cel.Variable("op", cel.DynType),
	)
	if err != nil {
		return nil, fmt.Errorf("create CEL environment: %w", err)
	}
	return &ExprFilter{
		env:      env,
		prgCache: make(map[string]cel.Program),
	}, nil
}

// Validate parses expr and walks its AST, rejecting constructs whose result
// can vary between evaluations of the same catalog. Catalog predicates must
// be deterministic so that repeated queries agree.
func (f *ExprFilter) Validate(expr string) (*ValidationResult, error) {
	parsed, issues := f.env.Parse(expr)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}

	result := &ValidationResult{Valid: true, Issues: []Issue{}}
	ast := parsed.Expr() //nolint:staticcheck // Deprecated but no alternative for AST traversal yet
	walkExpr(ast, &result.Issues)
	if len(result.Issues) > 0 {
		result.Valid = false
	}
	return result, nil
}

// Filter returns the descriptors in r for which expr evaluates to true, in
// List order. Expressions that fail validation, compilation, or that do not
// produce a boolean are rejected with an error.
func (f *ExprFilter) Filter(r *Registry, expr string) ([]OperatorDescriptor, error) {
	result, err := f.Validate(expr)
	if err != nil {
		return nil, fmt.Errorf("parse predicate: %w", err)
	}
	if !result.Valid {
		return nil, fmt.Errorf("predicate rejected: %s", result.Issues[0].Message)
	}

	all := r.List()
	out := make([]OperatorDescriptor, 0, len(all))
	for _, d := range all {
		keep, err := f.eval(expr, map[string]any{"op": celInput(d)})
		if err != nil {
			return nil, fmt.Errorf("predicate on operator %q: %w", d.ID, err)
		}
		if keep {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *ExprFilter) eval(expr string, input map[string]any) (bool, error) {
	f.mu.RLock()
	prg, hit := f.prgCache[expr]
	f.mu.RUnlock()

	if !hit {
		f.mu.Lock()
		// Double check
		if prg, hit = f.prgCache[expr]; !hit {
			ast, issues := f.env.Compile(expr)
			if issues != nil && issues.Err() != nil {
				f.mu.Unlock()
				return false, fmt.Errorf("compile: %w", issues.Err())
			}
			p, err := f.env.Program(ast,
				cel.InterruptCheckFrequency(100),
				cel.CostLimit(10000),
			)
			if err != nil {
				f.mu.Unlock()
				return false, fmt.Errorf("program: %w", err)
			}
			f.prgCache[expr] = p
			prg = p
		}
		f.mu.Unlock()
	}

	out, _, err := prg.Eval(input)
	if err != nil {
		return false, fmt.Errorf("eval: %w", err)
	}
	val, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("result not bool")
	}
	return val, nil
}

func celInput(d OperatorDescriptor) map[string]any {
	guards := make([]string, len(d.Guards))
	for i, g := range d.Guards {
		guards[i] = string(g)
	}
	return map[string]any{
		"id":              d.ID,
		"pattern":         d.Pattern,
		"name":            d.Name,
		"category":        string(d.Category),
		"deterministic":   d.Properties.Deterministic,
		"idempotent":      d.Properties.Idempotent,
		"type_preserving": d.Properties.TypePreserving,
		"bounded":         d.Properties.Bounded,
		"max_latency_ns":  int64(d.MaxLatency),
		"guards":          guards,
	}
}

func walkExpr(e *exprpb.Expr, issues *[]Issue) {
	if e == nil {
		return
	}

	switch k := e.ExprKind.(type) {
	case *exprpb.Expr_CallExpr:
		call := k.CallExpr
		if call.Function == "now" {
			*issues = append(*issues, Issue{Message: "now() is forbidden"})
		}
		if call.Function == "keys" || call.Function == "values" {
			*issues = append(*issues, Issue{Message: "map iteration (keys/values) is forbidden due to non-determinism"})
		}
		if call.Target != nil {
			walkExpr(call.Target, issues)
		}
		for _, arg := range call.Args {
			walkExpr(arg, issues)
		}

	case *exprpb.Expr_SelectExpr:
		walkExpr(k.SelectExpr.Operand, issues)

	case *exprpb.Expr_ListExpr:
		for _, el := range k.ListExpr.Elements {
			walkExpr(el, issues)
		}

	case *exprpb.Expr_StructExpr:
		for _, entry := range k.StructExpr.Entries {
			if entry.GetMapKey() != nil {
				walkExpr(entry.GetMapKey(), issues)
			}
			walkExpr(entry.Value, issues)
		}

	case *exprpb.Expr_ComprehensionExpr:
		comp := k.ComprehensionExpr
		walkExpr(comp.IterRange, issues)
		walkExpr(comp.AccuInit, issues)
		walkExpr(comp.LoopCondition, issues)
		walkExpr(comp.LoopStep, issues)
		walkExpr(comp.Result, issues)
	}
}
