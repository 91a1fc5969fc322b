package blocks

import (
	"fmt"

	"github.com/smilemakc/blockflow/internal/domain"
)

// sameShapeFloatOp applies f element-wise across one or more SignalValues
// that all share the same shape (scalar/vector/matrix of a non-bool
// base), returning a new SignalValue of that shape. Used by sum,
// multiply and scale.
func sameShapeFloatOp(vals []domain.SignalValue, f func(xs []float64) float64) (domain.SignalValue, error) {
	if len(vals) == 0 {
		return domain.SignalValue{}, fmt.Errorf("blocks: no inputs")
	}
	kind := vals[0].Kind
	for _, v := range vals {
		if v.Kind != kind {
			return domain.SignalValue{}, fmt.Errorf("blocks: mismatched shapes across inputs")
		}
	}

	switch kind {
	case domain.ValF64:
		xs := make([]float64, len(vals))
		for i, v := range vals {
			xs[i] = v.F
		}
		return domain.F64Value(f(xs)), nil
	case domain.ValVecF:
		n := len(vals[0].VecF)
		out := make([]float64, n)
		col := make([]float64, len(vals))
		for j := 0; j < n; j++ {
			for i, v := range vals {
				if len(v.VecF) != n {
					return domain.SignalValue{}, fmt.Errorf("blocks: mismatched vector lengths")
				}
				col[i] = v.VecF[j]
			}
			out[j] = f(col)
		}
		return domain.VecFValue(out), nil
	case domain.ValMatF:
		rows := len(vals[0].MatF)
		cols := 0
		if rows > 0 {
			cols = len(vals[0].MatF[0])
		}
		out := make([][]float64, rows)
		col := make([]float64, len(vals))
		for r := 0; r < rows; r++ {
			out[r] = make([]float64, cols)
			for c := 0; c < cols; c++ {
				for i, v := range vals {
					if len(v.MatF) != rows || len(v.MatF[r]) != cols {
						return domain.SignalValue{}, fmt.Errorf("blocks: mismatched matrix shapes")
					}
					col[i] = v.MatF[r][c]
				}
				out[r][c] = f(col)
			}
		}
		return domain.MatFValue(out), nil
	default:
		return domain.SignalValue{}, fmt.Errorf("blocks: unsupported value kind for arithmetic")
	}
}

// broadcastScalarTo coerces a scalar float SignalValue to match shape's
// Kind, the way `multiply` broadcasts a scalar operand up to its sibling
// inputs' shape.
func broadcastScalarTo(scalar float64, like domain.SignalValue) domain.SignalValue {
	switch like.Kind {
	case domain.ValF64:
		return domain.F64Value(scalar)
	case domain.ValVecF:
		out := make([]float64, len(like.VecF))
		for i := range out {
			out[i] = scalar
		}
		return domain.VecFValue(out)
	case domain.ValMatF:
		out := make([][]float64, len(like.MatF))
		for i, row := range like.MatF {
			out[i] = make([]float64, len(row))
			for j := range out[i] {
				out[i][j] = scalar
			}
		}
		return domain.MatFValue(out)
	case domain.ValBool:
		return domain.BoolValue(scalar != 0)
	case domain.ValVecB:
		out := make([]bool, len(like.VecB))
		for i := range out {
			out[i] = scalar != 0
		}
		return domain.VecBValue(out)
	case domain.ValMatB:
		out := make([][]bool, len(like.MatB))
		for i, row := range like.MatB {
			out[i] = make([]bool, len(row))
			for j := range out[i] {
				out[i][j] = scalar != 0
			}
		}
		return domain.MatBValue(out)
	default:
		return like
	}
}

func allScalar(ts []domain.Type) bool {
	for _, t := range ts {
		if t.Shape != domain.ShapeScalar {
			return false
		}
	}
	return true
}

func noBool(ts []domain.Type) bool {
	for _, t := range ts {
		if t.Base == domain.BaseBool {
			return false
		}
	}
	return true
}
