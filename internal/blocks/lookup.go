package blocks

import (
	"fmt"
	"sort"

	"github.com/smilemakc/blockflow/internal/domain"
)

// lookup1DModule implements `lookup_1d`: strict-monotone breakpoints with
// linear interpolation; clamp or extrapolate out of range.
type lookup1DModule struct{}

func (lookup1DModule) PortCounts(domain.BlockParams) (int, int) { return 1, 1 }

func (lookup1DModule) InferOutputTypes(in []domain.Type, _ domain.BlockParams) ([]domain.Type, error) {
	if !allScalar(in) || len(in) != 1 {
		return nil, fmt.Errorf("lookup_1d: requires a single scalar input")
	}
	return []domain.Type{domain.ScalarType(domain.BaseDouble)}, nil
}

func (lookup1DModule) RequiresState(domain.BlockParams) bool { return false }

func validateMonotone(xs []float64) error {
	for i := 1; i < len(xs); i++ {
		if xs[i] <= xs[i-1] {
			return fmt.Errorf("lookup: breakpoints must be strictly increasing")
		}
	}
	return nil
}

func interp1D(x float64, xs, ys []float64, extrapolation string) (float64, error) {
	if len(xs) != len(ys) || len(xs) < 2 {
		return 0, fmt.Errorf("lookup_1d: inputValues and outputValues must have equal length >= 2")
	}
	if err := validateMonotone(xs); err != nil {
		return 0, err
	}

	if x <= xs[0] {
		if extrapolation == "extrapolate" {
			slope := (ys[1] - ys[0]) / (xs[1] - xs[0])
			return ys[0] + slope*(x-xs[0]), nil
		}
		return ys[0], nil
	}
	n := len(xs)
	if x >= xs[n-1] {
		if extrapolation == "extrapolate" {
			slope := (ys[n-1] - ys[n-2]) / (xs[n-1] - xs[n-2])
			return ys[n-1] + slope*(x-xs[n-1]), nil
		}
		return ys[n-1], nil
	}

	i := sort.Search(n, func(i int) bool { return xs[i] >= x }) - 1
	if i < 0 {
		i = 0
	}
	t := (x - xs[i]) / (xs[i+1] - xs[i])
	return ys[i] + t*(ys[i+1]-ys[i]), nil
}

func (lookup1DModule) Algebraic(st *domain.BlockState, inputs []domain.SignalValue, _ *domain.StepContext, params domain.BlockParams) error {
	if len(inputs) != 1 || inputs[0].Kind != domain.ValF64 {
		return fmt.Errorf("lookup_1d: requires a single scalar float input")
	}
	p, err := domain.ParamsAs[domain.Lookup1DParams](params)
	if err != nil {
		return err
	}
	y, err := interp1D(inputs[0].F, p.InputValues, p.OutputValues, p.Extrapolation)
	if err != nil {
		return err
	}
	st.Outputs = []domain.SignalValue{domain.F64Value(y)}
	return nil
}

// lookup2DModule implements `lookup_2d`: strict-monotone breakpoint grid
// with bilinear interpolation.
type lookup2DModule struct{}

func (lookup2DModule) PortCounts(domain.BlockParams) (int, int) { return 2, 1 }

func (lookup2DModule) InferOutputTypes(in []domain.Type, _ domain.BlockParams) ([]domain.Type, error) {
	if !allScalar(in) || len(in) != 2 {
		return nil, fmt.Errorf("lookup_2d: requires exactly 2 scalar inputs")
	}
	return []domain.Type{domain.ScalarType(domain.BaseDouble)}, nil
}

func (lookup2DModule) RequiresState(domain.BlockParams) bool { return false }

func bilerp(x, y float64, xs, ys []float64, table [][]float64, extrapolation string) (float64, error) {
	if len(table) != len(ys) {
		return 0, fmt.Errorf("lookup_2d: outputTable row count must match input2Values length")
	}
	for _, row := range table {
		if len(row) != len(xs) {
			return 0, fmt.Errorf("lookup_2d: outputTable column count must match input1Values length")
		}
	}
	if err := validateMonotone(xs); err != nil {
		return 0, err
	}
	if err := validateMonotone(ys); err != nil {
		return 0, err
	}

	xi0, xi1, xt := locate(x, xs, extrapolation)
	yi0, yi1, yt := locate(y, ys, extrapolation)

	v00 := table[yi0][xi0]
	v01 := table[yi0][xi1]
	v10 := table[yi1][xi0]
	v11 := table[yi1][xi1]

	v0 := v00 + xt*(v01-v00)
	v1 := v10 + xt*(v11-v10)
	return v0 + yt*(v1-v0), nil
}

// locate finds the bracketing index pair and interpolation fraction for v
// in the strictly-increasing breakpoint vector xs, honoring clamp or
// extrapolate semantics at the boundary.
func locate(v float64, xs []float64, extrapolation string) (lo, hi int, t float64) {
	n := len(xs)
	if v <= xs[0] {
		if extrapolation == "extrapolate" && n > 1 {
			t = (v - xs[0]) / (xs[1] - xs[0])
			return 0, 1, t
		}
		return 0, 0, 0
	}
	if v >= xs[n-1] {
		if extrapolation == "extrapolate" && n > 1 {
			t = 1 + (v-xs[n-1])/(xs[n-1]-xs[n-2])
			return n - 2, n - 1, t
		}
		return n - 1, n - 1, 0
	}
	i := sort.Search(n, func(i int) bool { return xs[i] >= v }) - 1
	if i < 0 {
		i = 0
	}
	t = (v - xs[i]) / (xs[i+1] - xs[i])
	return i, i + 1, t
}

func (lookup2DModule) Algebraic(st *domain.BlockState, inputs []domain.SignalValue, _ *domain.StepContext, params domain.BlockParams) error {
	if len(inputs) != 2 || inputs[0].Kind != domain.ValF64 || inputs[1].Kind != domain.ValF64 {
		return fmt.Errorf("lookup_2d: requires two scalar float inputs")
	}
	p, err := domain.ParamsAs[domain.Lookup2DParams](params)
	if err != nil {
		return err
	}
	y, err := bilerp(inputs[0].F, inputs[1].F, p.Input1Values, p.Input2Values, p.OutputTable, p.Extrapolation)
	if err != nil {
		return err
	}
	st.Outputs = []domain.SignalValue{domain.F64Value(y)}
	return nil
}
