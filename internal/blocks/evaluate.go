package blocks

import (
	"fmt"

	"github.com/smilemakc/blockflow/internal/domain"
)

// evaluateModule implements `evaluate`: a free-form expr-lang expression
// over named scalar inputs in0..inN, producing Scalar(f64). This is the
// most direct reuse of the teacher's expr-lang dependency outside the
// condition-evaluation idiom it was originally built for.
type evaluateModule struct{}

func (evaluateModule) PortCounts(params domain.BlockParams) (int, int) {
	// Port count is not statically knowable from the expression text
	// alone without parsing it; callers supply it via numInputs-style
	// conventions encoded in the expression (in0, in1, ...). Default to a
	// single input; the propagator widens this by inspecting the actual
	// wires present on the block.
	return 1, 1
}

func (evaluateModule) InferOutputTypes(in []domain.Type, _ domain.BlockParams) ([]domain.Type, error) {
	if !allScalar(in) {
		return nil, fmt.Errorf("evaluate: requires scalar inputs")
	}
	return []domain.Type{domain.ScalarType(domain.BaseDouble)}, nil
}

func (evaluateModule) RequiresState(domain.BlockParams) bool { return false }

func (evaluateModule) Algebraic(st *domain.BlockState, inputs []domain.SignalValue, _ *domain.StepContext, params domain.BlockParams) error {
	p, err := domain.ParamsAs[domain.EvaluateParams](params)
	if err != nil {
		return err
	}
	vars := make(map[string]any, len(inputs))
	for i, v := range inputs {
		switch v.Kind {
		case domain.ValF64:
			vars[fmt.Sprintf("in%d", i)] = v.F
		case domain.ValBool:
			vars[fmt.Sprintf("in%d", i)] = v.B
		default:
			return fmt.Errorf("evaluate: requires scalar inputs")
		}
	}
	result, err := compileAndRun(p.Expression, vars)
	if err != nil {
		return err
	}
	f, ok := asFloat(result)
	if !ok {
		return fmt.Errorf("evaluate: expression %q did not evaluate to a number", p.Expression)
	}
	st.Outputs = []domain.SignalValue{domain.F64Value(f)}
	return nil
}
