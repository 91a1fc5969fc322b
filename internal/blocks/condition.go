package blocks

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"

	"github.com/smilemakc/blockflow/internal/domain"
)

// conditionModule implements `condition`: a scalar predicate of the form
// "op value" (e.g. "> 0.5") applied to the single scalar input, producing
// a Scalar(bool). Reuses the teacher's expr-lang compile/run idiom by
// building the full expression "in op value" and compiling it with
// expr.AsBool().
type conditionModule struct{}

func (conditionModule) PortCounts(domain.BlockParams) (int, int) { return 1, 1 }

func (conditionModule) InferOutputTypes(in []domain.Type, _ domain.BlockParams) ([]domain.Type, error) {
	if len(in) != 1 || in[0].Shape != domain.ShapeScalar {
		return nil, fmt.Errorf("condition: requires a single scalar input")
	}
	return []domain.Type{domain.ScalarType(domain.BaseBool)}, nil
}

func (conditionModule) RequiresState(domain.BlockParams) bool { return false }

func (conditionModule) Algebraic(st *domain.BlockState, inputs []domain.SignalValue, _ *domain.StepContext, params domain.BlockParams) error {
	if len(inputs) != 1 {
		return fmt.Errorf("condition: requires exactly 1 input")
	}
	p, err := domain.ParamsAs[domain.ConditionParams](params)
	if err != nil {
		return err
	}
	predicate := strings.TrimSpace(p.Condition)
	if predicate == "" {
		return fmt.Errorf("condition: empty condition predicate")
	}

	var in0 float64
	switch inputs[0].Kind {
	case domain.ValF64:
		in0 = inputs[0].F
	case domain.ValBool:
		if inputs[0].B {
			in0 = 1
		}
	default:
		return fmt.Errorf("condition: requires a scalar input")
	}

	result, err := compileAndRun(fmt.Sprintf("in0 %s", predicate), map[string]any{"in0": in0}, expr.AsBool())
	if err != nil {
		return err
	}
	b, ok := result.(bool)
	if !ok {
		return fmt.Errorf("condition: predicate %q did not evaluate to a boolean", predicate)
	}
	st.Outputs = []domain.SignalValue{domain.BoolValue(b)}
	return nil
}
