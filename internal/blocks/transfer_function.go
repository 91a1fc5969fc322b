package blocks

import (
	"fmt"

	"github.com/smilemakc/blockflow/internal/domain"
)

// transferFunctionModule implements `transfer_function`: a continuous
// linear SISO block applied element-wise. Resolves Open Question 2 (§9)
// by realizing ANY order via the true controllable-canonical-form
// state-space matrices (A, B, C, D), rather than the dominant-pole
// approximation the source falls back to above order 2.
type transferFunctionModule struct{}

func (transferFunctionModule) PortCounts(domain.BlockParams) (int, int) { return 1, 1 }

func (transferFunctionModule) InferOutputTypes(in []domain.Type, _ domain.BlockParams) ([]domain.Type, error) {
	if len(in) != 1 || in[0].Base == domain.BaseBool {
		return nil, fmt.Errorf("transfer_function: requires exactly 1 non-boolean input")
	}
	return []domain.Type{in[0]}, nil
}

func (transferFunctionModule) RequiresState(domain.BlockParams) bool { return true }

// canonicalForm holds the normalized controllable-canonical-form
// coefficients derived from a transfer function's numerator/denominator.
type canonicalForm struct {
	order int
	a     []float64 // a[0..order-1] == a1..an, the denominator's non-leading coefficients (monic)
	c     []float64 // c[0..order-1] == c1..cn
	d     float64   // direct feedthrough
}

func buildCanonicalForm(p domain.TransferFunctionParams) (*canonicalForm, error) {
	if len(p.Denominator) == 0 {
		return nil, fmt.Errorf("transfer_function: denominator must be non-empty")
	}
	if len(p.Numerator) == 0 {
		return nil, fmt.Errorf("transfer_function: numerator must be non-empty")
	}
	a0 := p.Denominator[0]
	if a0 == 0 {
		return nil, fmt.Errorf("transfer_function: leading denominator coefficient must be non-zero")
	}

	order := len(p.Denominator) - 1
	if len(p.Numerator) > len(p.Denominator) {
		return nil, fmt.Errorf("transfer_function: numerator order must not exceed denominator order")
	}

	// Left-pad numerator with zeros so num[i]/den[i] line up by power of s.
	num := make([]float64, order+1)
	offset := (order + 1) - len(p.Numerator)
	for i, v := range p.Numerator {
		num[offset+i] = v
	}

	den := make([]float64, order+1)
	for i, v := range p.Denominator {
		den[i] = v / a0
	}
	for i := range num {
		num[i] /= a0
	}

	cf := &canonicalForm{order: order, a: make([]float64, order), c: make([]float64, order), d: num[0]}
	for i := 1; i <= order; i++ {
		cf.a[i-1] = den[i]
		cf.c[i-1] = num[i] - den[i]*cf.d
	}
	return cf, nil
}

// output evaluates y = C x + D u for one scalar element's state.
func (cf *canonicalForm) output(x []float64, u float64) float64 {
	y := cf.d * u
	for i := 0; i < cf.order; i++ {
		y += cf.c[i] * x[i]
	}
	return y
}

// derivative evaluates dx/dt for one scalar element's state.
func (cf *canonicalForm) derivative(x []float64, u float64) []float64 {
	dx := make([]float64, cf.order)
	if cf.order == 0 {
		return dx
	}
	dx[0] = u
	for i := 0; i < cf.order; i++ {
		dx[0] -= cf.a[i] * x[i]
	}
	for i := 1; i < cf.order; i++ {
		dx[i] = x[i-1]
	}
	return dx
}

func (m transferFunctionModule) InitState(inTypes []domain.Type, params domain.BlockParams) (*domain.TransferFunctionState, error) {
	p, err := domain.ParamsAs[domain.TransferFunctionParams](params)
	if err != nil {
		return nil, err
	}
	cf, err := buildCanonicalForm(*p)
	if err != nil {
		return nil, err
	}
	if len(inTypes) != 1 {
		return nil, fmt.Errorf("transfer_function: requires exactly 1 input")
	}
	return domain.NewTransferFunctionState(cf.order, inTypes[0].ElementCount()), nil
}

func (m transferFunctionModule) Algebraic(st *domain.BlockState, inputs []domain.SignalValue, _ *domain.StepContext, params domain.BlockParams) error {
	if len(inputs) != 1 {
		return fmt.Errorf("transfer_function: requires exactly 1 input")
	}
	if st.Internal == nil {
		return fmt.Errorf("transfer_function: missing integration state")
	}
	p, err := domain.ParamsAs[domain.TransferFunctionParams](params)
	if err != nil {
		return err
	}
	cf, err := buildCanonicalForm(*p)
	if err != nil {
		return err
	}

	us := inputs[0].AsFloatSlice()
	if len(us) != st.Internal.ElementCount {
		return fmt.Errorf("transfer_function: input element count %d does not match state element count %d", len(us), st.Internal.ElementCount)
	}
	ys := make([]float64, len(us))
	for i, u := range us {
		ys[i] = cf.output(st.Internal.X[i], u)
	}
	st.Outputs = []domain.SignalValue{reshapeLike(ys, inputs[0])}
	return nil
}

func (m transferFunctionModule) Derivatives(st *domain.BlockState, inputs []domain.SignalValue, _ float64, params domain.BlockParams) ([]float64, error) {
	if len(inputs) != 1 {
		return nil, fmt.Errorf("transfer_function: requires exactly 1 input")
	}
	if st.Internal == nil {
		return nil, fmt.Errorf("transfer_function: missing integration state")
	}
	p, err := domain.ParamsAs[domain.TransferFunctionParams](params)
	if err != nil {
		return nil, err
	}
	cf, err := buildCanonicalForm(*p)
	if err != nil {
		return nil, err
	}

	us := inputs[0].AsFloatSlice()
	out := make([]float64, 0, st.Internal.ElementCount*cf.order)
	for i, u := range us {
		out = append(out, cf.derivative(st.Internal.X[i], u)...)
	}
	return out, nil
}

// reshapeLike rebuilds a row-major []float64 of per-element outputs into
// the same shape as `like` (scalar, vector, or matrix).
func reshapeLike(flat []float64, like domain.SignalValue) domain.SignalValue {
	switch like.Kind {
	case domain.ValF64:
		return domain.F64Value(flat[0])
	case domain.ValVecF:
		return domain.VecFValue(append([]float64(nil), flat...))
	case domain.ValMatF:
		rows := len(like.MatF)
		cols := 0
		if rows > 0 {
			cols = len(like.MatF[0])
		}
		out := make([][]float64, rows)
		idx := 0
		for r := 0; r < rows; r++ {
			out[r] = make([]float64, cols)
			for c := 0; c < cols; c++ {
				out[r][c] = flat[idx]
				idx++
			}
		}
		return domain.MatFValue(out)
	default:
		return like
	}
}
