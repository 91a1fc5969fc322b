package domain

import "fmt"

// BaseType is the scalar element type a signal carries.
type BaseType string

// The closed set of element base types the type system understands.
const (
	BaseDouble BaseType = "double"
	BaseFloat  BaseType = "float"
	BaseLong   BaseType = "long"
	BaseBool   BaseType = "bool"
)

// IsValid reports whether b is one of the four recognized base types.
func (b BaseType) IsValid() bool {
	switch b {
	case BaseDouble, BaseFloat, BaseLong, BaseBool:
		return true
	default:
		return false
	}
}

// Shape distinguishes scalar, vector and matrix signal shapes.
type Shape int

const (
	ShapeScalar Shape = iota
	ShapeVector
	ShapeMatrix
)

func (s Shape) String() string {
	switch s {
	case ShapeScalar:
		return "scalar"
	case ShapeVector:
		return "vector"
	case ShapeMatrix:
		return "matrix"
	default:
		return "unknown"
	}
}

// Type is a signal type: Scalar(base), Vector(base, n) or Matrix(base, rows, cols).
// Zero value Rows/Cols are meaningless outside of their relevant Shape.
type Type struct {
	Base  BaseType
	Shape Shape
	Rows  int // vector length, or matrix row count
	Cols  int // matrix column count only
}

// ScalarType builds a Scalar(base) type.
func ScalarType(base BaseType) Type {
	return Type{Base: base, Shape: ShapeScalar}
}

// VectorType builds a Vector(base, n) type.
func VectorType(base BaseType, n int) Type {
	return Type{Base: base, Shape: ShapeVector, Rows: n}
}

// MatrixType builds a Matrix(base, rows, cols) type.
func MatrixType(base BaseType, rows, cols int) Type {
	return Type{Base: base, Shape: ShapeMatrix, Rows: rows, Cols: cols}
}

// String renders the type using the grammar base["["size"]"["["size"]"]].
func (t Type) String() string {
	switch t.Shape {
	case ShapeScalar:
		return string(t.Base)
	case ShapeVector:
		return fmt.Sprintf("%s[%d]", t.Base, t.Rows)
	case ShapeMatrix:
		return fmt.Sprintf("%s[%d][%d]", t.Base, t.Rows, t.Cols)
	default:
		return "invalid"
	}
}

// ElementCount returns how many scalar elements the shape holds.
func (t Type) ElementCount() int {
	switch t.Shape {
	case ShapeScalar:
		return 1
	case ShapeVector:
		return t.Rows
	case ShapeMatrix:
		return t.Rows * t.Cols
	default:
		return 0
	}
}

// ValueKind tags the concrete representation carried by a SignalValue.
type ValueKind int

const (
	ValF64 ValueKind = iota
	ValBool
	ValVecF
	ValVecB
	ValMatF
	ValMatB
)

// SignalValue is the tagged-sum runtime value mirroring a signal Type. Only
// the field matching Kind is meaningful; the others are the zero value.
type SignalValue struct {
	Kind ValueKind
	F    float64
	B    bool
	VecF []float64
	VecB []bool
	MatF [][]float64
	MatB [][]bool
}

// F64Value builds a scalar float SignalValue.
func F64Value(v float64) SignalValue { return SignalValue{Kind: ValF64, F: v} }

// BoolValue builds a scalar bool SignalValue.
func BoolValue(v bool) SignalValue { return SignalValue{Kind: ValBool, B: v} }

// VecFValue builds a float-vector SignalValue.
func VecFValue(v []float64) SignalValue { return SignalValue{Kind: ValVecF, VecF: v} }

// VecBValue builds a bool-vector SignalValue.
func VecBValue(v []bool) SignalValue { return SignalValue{Kind: ValVecB, VecB: v} }

// MatFValue builds a float-matrix SignalValue.
func MatFValue(v [][]float64) SignalValue { return SignalValue{Kind: ValMatF, MatF: v} }

// MatBValue builds a bool-matrix SignalValue.
func MatBValue(v [][]bool) SignalValue { return SignalValue{Kind: ValMatB, MatB: v} }

// IsBool reports whether the value's kind is one of the boolean kinds.
func (v SignalValue) IsBool() bool {
	return v.Kind == ValBool || v.Kind == ValVecB || v.Kind == ValMatB
}

// Truthy converts a value to a single bool the way enable signals do:
// bool is as-is, a number is truthy iff nonzero, and an array uses its
// first element's truthiness.
func (v SignalValue) Truthy() bool {
	switch v.Kind {
	case ValBool:
		return v.B
	case ValF64:
		return v.F != 0
	case ValVecB:
		return len(v.VecB) > 0 && v.VecB[0]
	case ValVecF:
		return len(v.VecF) > 0 && v.VecF[0] != 0
	case ValMatB:
		return len(v.MatB) > 0 && len(v.MatB[0]) > 0 && v.MatB[0][0]
	case ValMatF:
		return len(v.MatF) > 0 && len(v.MatF[0]) > 0 && v.MatF[0][0] != 0
	default:
		return false
	}
}

// AsFloatSlice flattens a value into a row-major []float64, for elementwise
// block kernels that operate uniformly over scalar/vector/matrix shapes.
func (v SignalValue) AsFloatSlice() []float64 {
	switch v.Kind {
	case ValF64:
		return []float64{v.F}
	case ValVecF:
		return v.VecF
	case ValMatF:
		out := make([]float64, 0, len(v.MatF)*len(v.MatF[0]))
		for _, row := range v.MatF {
			out = append(out, row...)
		}
		return out
	default:
		return nil
	}
}

// Clone returns a deep copy, so mutating the result never aliases v.
func (v SignalValue) Clone() SignalValue {
	out := v
	if v.VecF != nil {
		out.VecF = append([]float64(nil), v.VecF...)
	}
	if v.VecB != nil {
		out.VecB = append([]bool(nil), v.VecB...)
	}
	if v.MatF != nil {
		out.MatF = make([][]float64, len(v.MatF))
		for i, row := range v.MatF {
			out.MatF[i] = append([]float64(nil), row...)
		}
	}
	if v.MatB != nil {
		out.MatB = make([][]bool, len(v.MatB))
		for i, row := range v.MatB {
			out.MatB[i] = append([]bool(nil), row...)
		}
	}
	return out
}
