package blocks

import (
	"fmt"
	"math"

	"github.com/smilemakc/blockflow/internal/domain"
)

// magModule implements `mag`: the Euclidean norm of a vector input,
// always producing a scalar double.
type magModule struct{}

func (magModule) PortCounts(domain.BlockParams) (int, int) { return 1, 1 }

func (magModule) InferOutputTypes(in []domain.Type, _ domain.BlockParams) ([]domain.Type, error) {
	if len(in) != 1 || in[0].Shape != domain.ShapeVector {
		return nil, fmt.Errorf("mag: requires exactly 1 vector input")
	}
	return []domain.Type{domain.ScalarType(domain.BaseDouble)}, nil
}

func (magModule) RequiresState(domain.BlockParams) bool { return false }

func (magModule) Algebraic(st *domain.BlockState, inputs []domain.SignalValue, _ *domain.StepContext, _ domain.BlockParams) error {
	if len(inputs) != 1 || inputs[0].Kind != domain.ValVecF {
		return fmt.Errorf("mag: requires exactly 1 vector input")
	}
	sum := 0.0
	for _, v := range inputs[0].VecF {
		sum += v * v
	}
	st.Outputs = []domain.SignalValue{domain.F64Value(math.Sqrt(sum))}
	return nil
}

// dotModule implements `dot`: the scalar dot product of two equal-length
// vector inputs.
type dotModule struct{}

func (dotModule) PortCounts(domain.BlockParams) (int, int) { return 2, 1 }

func (dotModule) InferOutputTypes(in []domain.Type, _ domain.BlockParams) ([]domain.Type, error) {
	if len(in) != 2 || in[0].Shape != domain.ShapeVector || in[1].Shape != domain.ShapeVector {
		return nil, fmt.Errorf("dot: requires exactly 2 vector inputs")
	}
	if in[0].Rows != in[1].Rows {
		return nil, fmt.Errorf("dot: vector lengths must match")
	}
	return []domain.Type{domain.ScalarType(domain.BaseDouble)}, nil
}

func (dotModule) RequiresState(domain.BlockParams) bool { return false }

func (dotModule) Algebraic(st *domain.BlockState, inputs []domain.SignalValue, _ *domain.StepContext, _ domain.BlockParams) error {
	if len(inputs) != 2 || inputs[0].Kind != domain.ValVecF || inputs[1].Kind != domain.ValVecF {
		return fmt.Errorf("dot: requires exactly 2 vector inputs")
	}
	a, b := inputs[0].VecF, inputs[1].VecF
	if len(a) != len(b) {
		return fmt.Errorf("dot: vector lengths must match")
	}
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	st.Outputs = []domain.SignalValue{domain.F64Value(sum)}
	return nil
}

// crossModule implements `cross`: the 3-D cross product of two
// length-3 vector inputs.
type crossModule struct{}

func (crossModule) PortCounts(domain.BlockParams) (int, int) { return 2, 1 }

func (crossModule) InferOutputTypes(in []domain.Type, _ domain.BlockParams) ([]domain.Type, error) {
	if len(in) != 2 || in[0].Shape != domain.ShapeVector || in[1].Shape != domain.ShapeVector {
		return nil, fmt.Errorf("cross: requires exactly 2 vector inputs")
	}
	if in[0].Rows != 3 || in[1].Rows != 3 {
		return nil, fmt.Errorf("cross: requires two length-3 vectors")
	}
	return []domain.Type{domain.VectorType(domain.BaseDouble, 3)}, nil
}

func (crossModule) RequiresState(domain.BlockParams) bool { return false }

func (crossModule) Algebraic(st *domain.BlockState, inputs []domain.SignalValue, _ *domain.StepContext, _ domain.BlockParams) error {
	if len(inputs) != 2 || inputs[0].Kind != domain.ValVecF || inputs[1].Kind != domain.ValVecF {
		return fmt.Errorf("cross: requires exactly 2 vector inputs")
	}
	a, b := inputs[0].VecF, inputs[1].VecF
	if len(a) != 3 || len(b) != 3 {
		return fmt.Errorf("cross: requires two length-3 vectors")
	}
	out := []float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
	st.Outputs = []domain.SignalValue{domain.VecFValue(out)}
	return nil
}
