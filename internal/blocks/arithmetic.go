// Arithmetic blocks: sum, multiply, scale. Grounded on the teacher's
// ConditionalEdgeConfig-style typed parameter structs
// (internal/application/executor/node_configs.go) and on
// internal/application/executor/graph.go's elementwise traversal idiom.
package blocks

import (
	"fmt"

	"github.com/smilemakc/blockflow/internal/domain"
)

// sumModule implements the `sum` block kind: element-wise signed sum of
// 2-10 inputs, all of identical shape.
type sumModule struct{}

func (sumModule) PortCounts(params domain.BlockParams) (int, int) {
	p, _ := domain.ParamsAs[domain.SumParams](params)
	n := p.NumInputs
	if p.Signs != "" {
		n = len(p.Signs)
	}
	if n < 2 {
		n = 2
	}
	return n, 1
}

func (sumModule) signs(params domain.BlockParams) (string, error) {
	p, err := domain.ParamsAs[domain.SumParams](params)
	if err != nil {
		return "", err
	}
	signs := p.Signs
	if signs == "" {
		n := p.NumInputs
		if n < 2 {
			n = 2
		}
		b := make([]byte, n)
		for i := range b {
			b[i] = '+'
		}
		signs = string(b)
	}
	if len(signs) < 2 || len(signs) > 10 {
		return "", fmt.Errorf("sum: signs length must be in [2,10], got %d", len(signs))
	}
	for _, c := range signs {
		if c != '+' && c != '-' {
			return "", fmt.Errorf("sum: signs must contain only '+'/'-', got %q", signs)
		}
	}
	return signs, nil
}

func (m sumModule) InferOutputTypes(in []domain.Type, params domain.BlockParams) ([]domain.Type, error) {
	signs, err := m.signs(params)
	if err != nil {
		return nil, err
	}
	if len(in) != len(signs) {
		return nil, fmt.Errorf("sum: expected %d inputs, got %d", len(signs), len(in))
	}
	if !noBool(in) {
		return nil, fmt.Errorf("sum: boolean inputs are not supported")
	}
	for _, t := range in[1:] {
		if t != in[0] {
			return nil, fmt.Errorf("sum: cannot determine output type")
		}
	}
	return []domain.Type{in[0]}, nil
}

func (sumModule) RequiresState(domain.BlockParams) bool { return false }

func (m sumModule) Algebraic(st *domain.BlockState, inputs []domain.SignalValue, _ *domain.StepContext, params domain.BlockParams) error {
	signs, err := m.signs(params)
	if err != nil {
		return err
	}
	if len(inputs) != len(signs) {
		return fmt.Errorf("sum: expected %d inputs, got %d", len(signs), len(inputs))
	}
	out, err := sameShapeFloatOp(inputs, func(xs []float64) float64 {
		total := 0.0
		for i, x := range xs {
			if signs[i] == '-' {
				total -= x
			} else {
				total += x
			}
		}
		return total
	})
	if err != nil {
		return err
	}
	st.Outputs = []domain.SignalValue{out}
	return nil
}

// multiplyModule implements the `multiply` block kind: element-wise
// product, coercing scalar operands up to the shape of the first input.
type multiplyModule struct{}

func (multiplyModule) PortCounts(params domain.BlockParams) (int, int) {
	p, _ := domain.ParamsAs[domain.MultiplyParams](params)
	n := p.NumInputs
	if n < 2 {
		n = 2
	}
	return n, 1
}

func (multiplyModule) InferOutputTypes(in []domain.Type, _ domain.BlockParams) ([]domain.Type, error) {
	if len(in) < 2 {
		return nil, fmt.Errorf("multiply: requires at least 2 inputs")
	}
	if !noBool(in) {
		return nil, fmt.Errorf("multiply: boolean inputs are not supported")
	}
	for _, t := range in[1:] {
		if t != in[0] {
			return nil, fmt.Errorf("multiply: cannot determine output type")
		}
	}
	return []domain.Type{in[0]}, nil
}

func (multiplyModule) RequiresState(domain.BlockParams) bool { return false }

func (multiplyModule) Algebraic(st *domain.BlockState, inputs []domain.SignalValue, _ *domain.StepContext, _ domain.BlockParams) error {
	if len(inputs) < 2 {
		return fmt.Errorf("multiply: requires at least 2 inputs")
	}
	// Coerce any bare scalar operand up to the shape of the first input.
	shaped := make([]domain.SignalValue, len(inputs))
	like := inputs[0]
	for i, v := range inputs {
		if v.Kind == domain.ValF64 && like.Kind != domain.ValF64 {
			shaped[i] = broadcastScalarTo(v.F, like)
		} else {
			shaped[i] = v
		}
	}
	out, err := sameShapeFloatOp(shaped, func(xs []float64) float64 {
		p := 1.0
		for _, x := range xs {
			p *= x
		}
		return p
	})
	if err != nil {
		return err
	}
	st.Outputs = []domain.SignalValue{out}
	return nil
}

// scaleModule implements the `scale` block kind: multiply every element
// by a single gain factor.
type scaleModule struct{}

func (scaleModule) PortCounts(domain.BlockParams) (int, int) { return 1, 1 }

func (scaleModule) InferOutputTypes(in []domain.Type, _ domain.BlockParams) ([]domain.Type, error) {
	if len(in) != 1 {
		return nil, fmt.Errorf("scale: requires exactly 1 input")
	}
	if in[0].Base == domain.BaseBool {
		return nil, fmt.Errorf("scale: boolean input is not supported")
	}
	return []domain.Type{in[0]}, nil
}

func (scaleModule) RequiresState(domain.BlockParams) bool { return false }

func (scaleModule) Algebraic(st *domain.BlockState, inputs []domain.SignalValue, _ *domain.StepContext, params domain.BlockParams) error {
	if len(inputs) != 1 {
		return fmt.Errorf("scale: requires exactly 1 input")
	}
	p, err := domain.ParamsAs[domain.ScaleParams](params)
	if err != nil {
		return err
	}
	gain := p.EffectiveGain()
	out, err := sameShapeFloatOp(inputs, func(xs []float64) float64 {
		return xs[0] * gain
	})
	if err != nil {
		return err
	}
	st.Outputs = []domain.SignalValue{out}
	return nil
}
