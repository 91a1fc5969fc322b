package blocks

import (
	"fmt"

	"github.com/expr-lang/expr"
)

// compileAndRun compiles src against an environment of float64 variables
// and runs it, returning the result as an `any`. This is the teacher's
// expr-lang compile/run idiom (internal/application/executor/graph.go's
// evaluateCondition), reused here for the `condition` and `evaluate`
// blocks instead of workflow-routing predicates.
func compileAndRun(src string, vars map[string]any, opts ...expr.Option) (any, error) {
	program, err := expr.Compile(src, opts...)
	if err != nil {
		return nil, fmt.Errorf("blocks: failed to compile expression %q: %w", src, err)
	}
	result, err := expr.Run(program, vars)
	if err != nil {
		return nil, fmt.Errorf("blocks: failed to evaluate expression %q: %w", src, err)
	}
	return result, nil
}

func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}
