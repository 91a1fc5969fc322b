package blocks

import (
	"fmt"

	"github.com/smilemakc/blockflow/internal/domain"
)

func muxElementCount(p domain.MuxParams) int {
	cols := p.Cols
	if cols < 1 {
		cols = 1
	}
	return p.Rows * cols
}

func muxBaseType(p domain.MuxParams) domain.BaseType {
	if p.BaseType == "" {
		return domain.BaseDouble
	}
	return domain.BaseType(p.BaseType)
}

func muxOutputType(p domain.MuxParams) domain.Type {
	base := muxBaseType(p)
	if p.Cols > 1 {
		return domain.MatrixType(base, p.Rows, p.Cols)
	}
	return domain.VectorType(base, p.Rows)
}

// muxModule implements `mux`: combines Rows*Cols scalar inputs into a
// single vector or matrix output, row-major.
type muxModule struct{}

func (muxModule) PortCounts(params domain.BlockParams) (int, int) {
	p, err := domain.ParamsAs[domain.MuxParams](params)
	if err != nil {
		return 0, 1
	}
	return muxElementCount(*p), 1
}

func (muxModule) InferOutputTypes(in []domain.Type, params domain.BlockParams) ([]domain.Type, error) {
	p, err := domain.ParamsAs[domain.MuxParams](params)
	if err != nil {
		return nil, err
	}
	n := muxElementCount(*p)
	if len(in) != n {
		return nil, fmt.Errorf("mux: expected %d scalar inputs, got %d", n, len(in))
	}
	if !allScalar(in) {
		return nil, fmt.Errorf("mux: all inputs must be scalar")
	}
	return []domain.Type{muxOutputType(*p)}, nil
}

func (muxModule) RequiresState(domain.BlockParams) bool { return false }

func (muxModule) Algebraic(st *domain.BlockState, inputs []domain.SignalValue, _ *domain.StepContext, params domain.BlockParams) error {
	p, err := domain.ParamsAs[domain.MuxParams](params)
	if err != nil {
		return err
	}
	n := muxElementCount(*p)
	if len(inputs) != n {
		return fmt.Errorf("mux: expected %d inputs, got %d", n, len(inputs))
	}
	flat := make([]float64, n)
	for i, v := range inputs {
		if v.Kind != domain.ValF64 {
			return fmt.Errorf("mux: input %d is not a scalar float", i)
		}
		flat[i] = v.F
	}
	if p.Cols > 1 {
		out := make([][]float64, p.Rows)
		idx := 0
		for r := 0; r < p.Rows; r++ {
			out[r] = make([]float64, p.Cols)
			for c := 0; c < p.Cols; c++ {
				out[r][c] = flat[idx]
				idx++
			}
		}
		st.Outputs = []domain.SignalValue{domain.MatFValue(out)}
	} else {
		st.Outputs = []domain.SignalValue{domain.VecFValue(flat)}
	}
	return nil
}

// demuxModule implements `demux`: splits a vector or matrix input into
// its constituent scalar outputs, row-major.
type demuxModule struct{}

func (demuxModule) PortCounts(params domain.BlockParams) (int, int) {
	p, err := domain.ParamsAs[domain.MuxParams](params)
	if err != nil {
		return 1, 0
	}
	return 1, muxElementCount(*p)
}

func (demuxModule) InferOutputTypes(in []domain.Type, params domain.BlockParams) ([]domain.Type, error) {
	if len(in) != 1 || in[0].Shape == domain.ShapeScalar {
		return nil, fmt.Errorf("demux: requires exactly 1 vector or matrix input")
	}
	p, err := domain.ParamsAs[domain.MuxParams](params)
	if err != nil {
		return nil, err
	}
	n := muxElementCount(*p)
	if in[0].ElementCount() != n {
		return nil, fmt.Errorf("demux: input has %d elements, expected %d", in[0].ElementCount(), n)
	}
	out := make([]domain.Type, n)
	for i := range out {
		out[i] = domain.ScalarType(in[0].Base)
	}
	return out, nil
}

func (demuxModule) RequiresState(domain.BlockParams) bool { return false }

func (demuxModule) Algebraic(st *domain.BlockState, inputs []domain.SignalValue, _ *domain.StepContext, _ domain.BlockParams) error {
	if len(inputs) != 1 {
		return fmt.Errorf("demux: requires exactly 1 input")
	}
	flat := inputs[0].AsFloatSlice()
	out := make([]domain.SignalValue, len(flat))
	for i, v := range flat {
		out[i] = domain.F64Value(v)
	}
	st.Outputs = out
	return nil
}
