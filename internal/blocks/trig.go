package blocks

import (
	"fmt"
	"math"

	"github.com/smilemakc/blockflow/internal/domain"
)

// trigModule implements `trig`: a scalar trigonometric function. sincos
// produces two outputs (sin, cos); atan2 takes two scalar inputs.
type trigModule struct{}

func (trigModule) function(params domain.BlockParams) (string, error) {
	p, err := domain.ParamsAs[domain.TrigParams](params)
	if err != nil {
		return "", err
	}
	switch p.Function {
	case "sin", "cos", "tan", "asin", "acos", "atan", "sincos", "atan2":
		return p.Function, nil
	default:
		return "", fmt.Errorf("trig: unknown function %q", p.Function)
	}
}

func (m trigModule) PortCounts(params domain.BlockParams) (int, int) {
	fn, err := m.function(params)
	if err != nil {
		return 1, 1
	}
	if fn == "atan2" {
		return 2, 1
	}
	if fn == "sincos" {
		return 1, 2
	}
	return 1, 1
}

func (m trigModule) InferOutputTypes(in []domain.Type, params domain.BlockParams) ([]domain.Type, error) {
	fn, err := m.function(params)
	if err != nil {
		return nil, err
	}
	if !allScalar(in) {
		return nil, fmt.Errorf("trig: requires scalar inputs")
	}
	wantIn, wantOut := 1, 1
	if fn == "atan2" {
		wantIn = 2
	}
	if fn == "sincos" {
		wantOut = 2
	}
	if len(in) != wantIn {
		return nil, fmt.Errorf("trig: %s expects %d input(s), got %d", fn, wantIn, len(in))
	}
	out := make([]domain.Type, wantOut)
	for i := range out {
		out[i] = domain.ScalarType(domain.BaseDouble)
	}
	return out, nil
}

func (trigModule) RequiresState(domain.BlockParams) bool { return false }

func (m trigModule) Algebraic(st *domain.BlockState, inputs []domain.SignalValue, _ *domain.StepContext, params domain.BlockParams) error {
	fn, err := m.function(params)
	if err != nil {
		return err
	}
	for _, v := range inputs {
		if v.Kind != domain.ValF64 {
			return fmt.Errorf("trig: requires scalar float inputs")
		}
	}
	switch fn {
	case "sin":
		st.Outputs = []domain.SignalValue{domain.F64Value(math.Sin(inputs[0].F))}
	case "cos":
		st.Outputs = []domain.SignalValue{domain.F64Value(math.Cos(inputs[0].F))}
	case "tan":
		st.Outputs = []domain.SignalValue{domain.F64Value(math.Tan(inputs[0].F))}
	case "asin":
		st.Outputs = []domain.SignalValue{domain.F64Value(math.Asin(inputs[0].F))}
	case "acos":
		st.Outputs = []domain.SignalValue{domain.F64Value(math.Acos(inputs[0].F))}
	case "atan":
		st.Outputs = []domain.SignalValue{domain.F64Value(math.Atan(inputs[0].F))}
	case "sincos":
		st.Outputs = []domain.SignalValue{domain.F64Value(math.Sin(inputs[0].F)), domain.F64Value(math.Cos(inputs[0].F))}
	case "atan2":
		if len(inputs) != 2 {
			return fmt.Errorf("trig: atan2 requires 2 inputs")
		}
		st.Outputs = []domain.SignalValue{domain.F64Value(math.Atan2(inputs[0].F, inputs[1].F))}
	default:
		return fmt.Errorf("trig: unknown function %q", fn)
	}
	return nil
}
