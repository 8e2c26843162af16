package toolreg

import (
	"errors"
	"fmt"
	"iter"
	"sync"

	"github.com/google/cel-go/cel"
)

// ErrInvalidSelector is returned by CompileSelector for expressions that do not compile
// or do not evaluate to a bool.
var ErrInvalidSelector = errors.New("invalid selector")

// Selector is a compiled CEL predicate over descriptors. The expression sees
// name (string), description (string), tags (list of string) and params (list of
// parameter names), for example:
//
//	"documents" in tags && name.startsWith("get_")
//	size(params) == 0
type Selector struct {
	expr string
	prg  cel.Program
}

var selectorEnv = sync.OnceValues(func() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("name", cel.StringType),
		cel.Variable("description", cel.StringType),
		cel.Variable("tags", cel.ListType(cel.StringType)),
		cel.Variable("params", cel.ListType(cel.StringType)),
	)
})

// CompileSelector parses and type-checks expr.
func CompileSelector(expr string) (*Selector, error) {
	env, err := selectorEnv()
	if err != nil {
		return nil, fmt.Errorf("selector environment: %w", err)
	}
	ast, iss := env.Compile(expr)
	if iss.Err() != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSelector, iss.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("%w: expression must evaluate to bool, got %s", ErrInvalidSelector, ast.OutputType())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSelector, err)
	}
	return &Selector{expr: expr, prg: prg}, nil
}

func (s *Selector) String() string { return s.expr }

// Match evaluates the selector against d. Evaluation errors (e.g. an out of range index)
// count as no match.
func (s *Selector) Match(d *Descriptor) bool {
	params := make([]string, len(d.schema.Params))
	for i, p := range d.schema.Params {
		params[i] = p.Name
	}
	out, _, err := s.prg.Eval(map[string]any{
		"name":        d.name,
		"description": d.description,
		"tags":        d.Tags(),
		"params":      params,
	})
	if err != nil {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}

// Select returns the descriptors carrying any of tags (all when none are given) that s
// matches, in registration order. A nil selector matches everything.
func (c *Catalog) Select(s *Selector, tags ...string) iter.Seq[*Descriptor] {
	return func(yield func(*Descriptor) bool) {
		for d := range c.List(tags...) {
			if s != nil && !s.Match(d) {
				continue
			}
			if !yield(d) {
				return
			}
		}
	}
}
