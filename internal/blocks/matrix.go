package blocks

import (
	"fmt"

	"github.com/smilemakc/blockflow/internal/domain"
)

// matrixMultiplyModule implements `matrix_multiply`, dispatching across
// the nine shape-pair cases of spec.md §4.4.5.
type matrixMultiplyModule struct{}

func (matrixMultiplyModule) PortCounts(domain.BlockParams) (int, int) { return 2, 1 }

func (matrixMultiplyModule) InferOutputTypes(in []domain.Type, _ domain.BlockParams) ([]domain.Type, error) {
	if len(in) != 2 {
		return nil, fmt.Errorf("matrix_multiply: requires exactly 2 inputs")
	}
	a, b := in[0], in[1]
	if a.Base == domain.BaseBool || b.Base == domain.BaseBool {
		return nil, fmt.Errorf("matrix_multiply: boolean inputs are not supported")
	}
	switch {
	case a.Shape == domain.ShapeScalar && b.Shape == domain.ShapeScalar:
		return []domain.Type{domain.ScalarType(a.Base)}, nil
	case a.Shape == domain.ShapeScalar && b.Shape == domain.ShapeVector:
		return []domain.Type{domain.VectorType(a.Base, b.Rows)}, nil
	case a.Shape == domain.ShapeVector && b.Shape == domain.ShapeScalar:
		return []domain.Type{domain.VectorType(a.Base, a.Rows)}, nil
	case a.Shape == domain.ShapeScalar && b.Shape == domain.ShapeMatrix:
		return []domain.Type{domain.MatrixType(a.Base, b.Rows, b.Cols)}, nil
	case a.Shape == domain.ShapeMatrix && b.Shape == domain.ShapeScalar:
		return []domain.Type{domain.MatrixType(a.Base, a.Rows, a.Cols)}, nil
	case a.Shape == domain.ShapeVector && b.Shape == domain.ShapeVector:
		if a.Rows != b.Rows {
			return nil, fmt.Errorf("matrix_multiply: vector x vector requires equal length")
		}
		return []domain.Type{domain.VectorType(a.Base, a.Rows)}, nil
	case a.Shape == domain.ShapeMatrix && b.Shape == domain.ShapeVector:
		if a.Cols != b.Rows {
			return nil, fmt.Errorf("matrix_multiply: cols(A) must equal len(v)")
		}
		return []domain.Type{domain.VectorType(a.Base, a.Rows)}, nil
	case a.Shape == domain.ShapeVector && b.Shape == domain.ShapeMatrix:
		if a.Rows != b.Rows {
			return nil, fmt.Errorf("matrix_multiply: len(v) must equal rows(B)")
		}
		return []domain.Type{domain.VectorType(a.Base, b.Cols)}, nil
	case a.Shape == domain.ShapeMatrix && b.Shape == domain.ShapeMatrix:
		if a.Cols != b.Rows {
			return nil, fmt.Errorf("matrix_multiply: cols(A) must equal rows(B)")
		}
		return []domain.Type{domain.MatrixType(a.Base, a.Rows, b.Cols)}, nil
	default:
		return nil, fmt.Errorf("matrix_multiply: unsupported shape combination")
	}
}

func (matrixMultiplyModule) RequiresState(domain.BlockParams) bool { return false }

func (matrixMultiplyModule) Algebraic(st *domain.BlockState, inputs []domain.SignalValue, _ *domain.StepContext, _ domain.BlockParams) error {
	if len(inputs) != 2 {
		return fmt.Errorf("matrix_multiply: requires exactly 2 inputs")
	}
	a, b := inputs[0], inputs[1]
	out, err := matMul(a, b)
	if err != nil {
		// Dimension mismatch at runtime: zero the output and surface the
		// error (the type propagator should already have caught this).
		st.Outputs = []domain.SignalValue{domain.F64Value(0)}
		return err
	}
	st.Outputs = []domain.SignalValue{out}
	return nil
}

func matMul(a, b domain.SignalValue) (domain.SignalValue, error) {
	switch {
	case a.Kind == domain.ValF64 && b.Kind == domain.ValF64:
		return domain.F64Value(a.F * b.F), nil
	case a.Kind == domain.ValF64 && b.Kind == domain.ValVecF:
		return domain.VecFValue(scaleVec(b.VecF, a.F)), nil
	case a.Kind == domain.ValVecF && b.Kind == domain.ValF64:
		return domain.VecFValue(scaleVec(a.VecF, b.F)), nil
	case a.Kind == domain.ValF64 && b.Kind == domain.ValMatF:
		return domain.MatFValue(scaleMat(b.MatF, a.F)), nil
	case a.Kind == domain.ValMatF && b.Kind == domain.ValF64:
		return domain.MatFValue(scaleMat(a.MatF, b.F)), nil
	case a.Kind == domain.ValVecF && b.Kind == domain.ValVecF:
		if len(a.VecF) != len(b.VecF) {
			return domain.SignalValue{}, fmt.Errorf("matrix_multiply: vector length mismatch")
		}
		out := make([]float64, len(a.VecF))
		for i := range out {
			out[i] = a.VecF[i] * b.VecF[i]
		}
		return domain.VecFValue(out), nil
	case a.Kind == domain.ValMatF && b.Kind == domain.ValVecF:
		if len(a.MatF) == 0 || len(a.MatF[0]) != len(b.VecF) {
			return domain.SignalValue{}, fmt.Errorf("matrix_multiply: cols(A) must equal len(v)")
		}
		out := make([]float64, len(a.MatF))
		for r, row := range a.MatF {
			sum := 0.0
			for c, v := range row {
				sum += v * b.VecF[c]
			}
			out[r] = sum
		}
		return domain.VecFValue(out), nil
	case a.Kind == domain.ValVecF && b.Kind == domain.ValMatF:
		if len(b.MatF) != len(a.VecF) {
			return domain.SignalValue{}, fmt.Errorf("matrix_multiply: len(v) must equal rows(B)")
		}
		cols := 0
		if len(b.MatF) > 0 {
			cols = len(b.MatF[0])
		}
		out := make([]float64, cols)
		for c := 0; c < cols; c++ {
			sum := 0.0
			for i, v := range a.VecF {
				sum += v * b.MatF[i][c]
			}
			out[c] = sum
		}
		return domain.VecFValue(out), nil
	case a.Kind == domain.ValMatF && b.Kind == domain.ValMatF:
		if len(a.MatF) == 0 || len(b.MatF) == 0 || len(a.MatF[0]) != len(b.MatF) {
			return domain.SignalValue{}, fmt.Errorf("matrix_multiply: cols(A) must equal rows(B)")
		}
		rows, inner, cols := len(a.MatF), len(b.MatF), len(b.MatF[0])
		out := make([][]float64, rows)
		for r := 0; r < rows; r++ {
			out[r] = make([]float64, cols)
			for c := 0; c < cols; c++ {
				sum := 0.0
				for k := 0; k < inner; k++ {
					sum += a.MatF[r][k] * b.MatF[k][c]
				}
				out[r][c] = sum
			}
		}
		return domain.MatFValue(out), nil
	default:
		return domain.SignalValue{}, fmt.Errorf("matrix_multiply: unsupported shape combination")
	}
}

func scaleVec(v []float64, s float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x * s
	}
	return out
}

func scaleMat(m [][]float64, s float64) [][]float64 {
	out := make([][]float64, len(m))
	for i, row := range m {
		out[i] = scaleVec(row, s)
	}
	return out
}

// transposeModule implements `transpose`: swaps matrix axes; a vector
// becomes a 1-row matrix.
type transposeModule struct{}

func (transposeModule) PortCounts(domain.BlockParams) (int, int) { return 1, 1 }

func (transposeModule) InferOutputTypes(in []domain.Type, _ domain.BlockParams) ([]domain.Type, error) {
	if len(in) != 1 {
		return nil, fmt.Errorf("transpose: requires exactly 1 input")
	}
	t := in[0]
	switch t.Shape {
	case domain.ShapeMatrix:
		return []domain.Type{domain.MatrixType(t.Base, t.Cols, t.Rows)}, nil
	case domain.ShapeVector:
		return []domain.Type{domain.MatrixType(t.Base, 1, t.Rows)}, nil
	default:
		return nil, fmt.Errorf("transpose: requires a vector or matrix input")
	}
}

func (transposeModule) RequiresState(domain.BlockParams) bool { return false }

func (transposeModule) Algebraic(st *domain.BlockState, inputs []domain.SignalValue, _ *domain.StepContext, _ domain.BlockParams) error {
	if len(inputs) != 1 {
		return fmt.Errorf("transpose: requires exactly 1 input")
	}
	switch v := inputs[0]; v.Kind {
	case domain.ValVecF:
		row := append([]float64(nil), v.VecF...)
		st.Outputs = []domain.SignalValue{domain.MatFValue([][]float64{row})}
	case domain.ValMatF:
		rows, cols := len(v.MatF), 0
		if rows > 0 {
			cols = len(v.MatF[0])
		}
		out := make([][]float64, cols)
		for c := 0; c < cols; c++ {
			out[c] = make([]float64, rows)
			for r := 0; r < rows; r++ {
				out[c][r] = v.MatF[r][c]
			}
		}
		st.Outputs = []domain.SignalValue{domain.MatFValue(out)}
	default:
		return fmt.Errorf("transpose: requires a vector or matrix input")
	}
	return nil
}
