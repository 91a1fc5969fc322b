package blocks

import (
	"fmt"

	"github.com/smilemakc/blockflow/internal/domain"
)

// ifModule implements `if`: a bool selector on port 0 chooses between two
// same-typed data inputs on ports 1 and 2.
type ifModule struct{}

func (ifModule) PortCounts(domain.BlockParams) (int, int) { return 3, 1 }

func (ifModule) InferOutputTypes(in []domain.Type, _ domain.BlockParams) ([]domain.Type, error) {
	if len(in) != 3 {
		return nil, fmt.Errorf("if: requires exactly 3 inputs (selector, thenValue, elseValue)")
	}
	if in[0].Shape != domain.ShapeScalar || in[0].Base != domain.BaseBool {
		return nil, fmt.Errorf("if: selector input must be a scalar bool")
	}
	if in[1] != in[2] {
		return nil, fmt.Errorf("if: thenValue and elseValue must share a type")
	}
	return []domain.Type{in[1]}, nil
}

func (ifModule) RequiresState(domain.BlockParams) bool { return false }

func (ifModule) Algebraic(st *domain.BlockState, inputs []domain.SignalValue, _ *domain.StepContext, _ domain.BlockParams) error {
	if len(inputs) != 3 {
		return fmt.Errorf("if: requires exactly 3 inputs")
	}
	if inputs[0].Kind != domain.ValBool {
		return fmt.Errorf("if: selector input must be a scalar bool")
	}
	if inputs[0].B {
		st.Outputs = []domain.SignalValue{inputs[1]}
	} else {
		st.Outputs = []domain.SignalValue{inputs[2]}
	}
	return nil
}
