package blocks

import (
	"fmt"
	"math"

	"github.com/smilemakc/blockflow/internal/domain"
)

// absModule implements `abs`: element-wise absolute value, pass-through shape.
type absModule struct{}

func (absModule) PortCounts(domain.BlockParams) (int, int) { return 1, 1 }

func (absModule) InferOutputTypes(in []domain.Type, _ domain.BlockParams) ([]domain.Type, error) {
	if len(in) != 1 || in[0].Base == domain.BaseBool {
		return nil, fmt.Errorf("abs: requires exactly 1 non-boolean input")
	}
	return []domain.Type{in[0]}, nil
}

func (absModule) RequiresState(domain.BlockParams) bool { return false }

func (absModule) Algebraic(st *domain.BlockState, inputs []domain.SignalValue, _ *domain.StepContext, _ domain.BlockParams) error {
	if len(inputs) != 1 {
		return fmt.Errorf("abs: requires exactly 1 input")
	}
	out, err := sameShapeFloatOp(inputs, func(xs []float64) float64 { return math.Abs(xs[0]) })
	if err != nil {
		return err
	}
	st.Outputs = []domain.SignalValue{out}
	return nil
}

// uminusModule implements `uminus`: element-wise negation, pass-through shape.
type uminusModule struct{}

func (uminusModule) PortCounts(domain.BlockParams) (int, int) { return 1, 1 }

func (uminusModule) InferOutputTypes(in []domain.Type, _ domain.BlockParams) ([]domain.Type, error) {
	if len(in) != 1 || in[0].Base == domain.BaseBool {
		return nil, fmt.Errorf("uminus: requires exactly 1 non-boolean input")
	}
	return []domain.Type{in[0]}, nil
}

func (uminusModule) RequiresState(domain.BlockParams) bool { return false }

func (uminusModule) Algebraic(st *domain.BlockState, inputs []domain.SignalValue, _ *domain.StepContext, _ domain.BlockParams) error {
	if len(inputs) != 1 {
		return fmt.Errorf("uminus: requires exactly 1 input")
	}
	out, err := sameShapeFloatOp(inputs, func(xs []float64) float64 { return -xs[0] })
	if err != nil {
		return err
	}
	st.Outputs = []domain.SignalValue{out}
	return nil
}
