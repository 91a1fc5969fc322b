// Package typesys implements the type grammar
// `base ( "[" size "]" ( "[" size "]" )? )?` and the compatibility and
// default-value rules layered on top of it. It is grounded on the
// teacher's enum-validation idiom (domain.BlockKind.IsValid/String)
// generalized from a bare string enum to a parsed struct type.
package typesys

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/smilemakc/blockflow/internal/domain"
)

// Parse parses a type string of the grammar
// `base ( "[" size "]" ( "[" size "]" )? )?`. base is one of
// double|float|long|bool. Zero or negative sizes, more than two
// dimensions, and trailing garbage are all rejected.
func Parse(s string) (domain.Type, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return domain.Type{}, fmt.Errorf("typesys: empty type string")
	}

	i := 0
	base, n := scanIdent(s, i)
	if n == 0 {
		return domain.Type{}, fmt.Errorf("typesys: expected base type in %q", s)
	}
	i += n

	b := domain.BaseType(base)
	if !b.IsValid() {
		return domain.Type{}, fmt.Errorf("typesys: unknown base type %q", base)
	}

	if i == len(s) {
		return domain.ScalarType(b), nil
	}

	dims := make([]int, 0, 2)
	for i < len(s) {
		if s[i] != '[' {
			return domain.Type{}, fmt.Errorf("typesys: unexpected character %q at position %d in %q", s[i], i, s)
		}
		i++
		start := i
		for i < len(s) && s[i] != ']' {
			i++
		}
		if i >= len(s) {
			return domain.Type{}, fmt.Errorf("typesys: unterminated '[' in %q", s)
		}
		sizeStr := s[start:i]
		i++ // consume ']'

		size, err := strconv.Atoi(sizeStr)
		if err != nil {
			return domain.Type{}, fmt.Errorf("typesys: invalid size %q in %q: %w", sizeStr, s, err)
		}
		if size <= 0 {
			return domain.Type{}, fmt.Errorf("typesys: non-positive size %d in %q", size, s)
		}
		dims = append(dims, size)
		if len(dims) > 2 {
			return domain.Type{}, fmt.Errorf("typesys: more than two dimensions in %q", s)
		}
	}

	switch len(dims) {
	case 1:
		return domain.VectorType(b, dims[0]), nil
	case 2:
		return domain.MatrixType(b, dims[0], dims[1]), nil
	default:
		return domain.Type{}, fmt.Errorf("typesys: unreachable dimension count in %q", s)
	}
}

// scanIdent scans a maximal run of letters starting at i and returns the
// substring and its length.
func scanIdent(s string, i int) (string, int) {
	start := i
	for i < len(s) && isLetter(s[i]) {
		i++
	}
	return s[start:i], i - start
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// IsValid reports whether s parses as a well-formed type string.
func IsValid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// Compatible reports whether a and b are the same type: equal base,
// shape, and dimensions. Compatibility is reflexive, symmetric and
// conservative — scalar never unifies with vector/matrix, vector[n]
// never unifies with vector[m] for n != m, and float never unifies with
// double.
func Compatible(a, b domain.Type) bool {
	if a.Base != b.Base || a.Shape != b.Shape {
		return false
	}
	switch a.Shape {
	case domain.ShapeScalar:
		return true
	case domain.ShapeVector:
		return a.Rows == b.Rows
	case domain.ShapeMatrix:
		return a.Rows == b.Rows && a.Cols == b.Cols
	default:
		return false
	}
}

// CompatibilityError returns a human-readable diagnostic string
// describing why a and b are incompatible, or "" if they are compatible.
func CompatibilityError(a, b domain.Type) string {
	if Compatible(a, b) {
		return ""
	}
	return fmt.Sprintf("incompatible types: %s vs %s", a.String(), b.String())
}

// DefaultValue returns the zero value of t's shape: 0.0/false for a
// scalar, an all-zero/all-false slice for a vector, and an all-zero/
// all-false slice of slices for a matrix.
func DefaultValue(t domain.Type) domain.SignalValue {
	boolean := t.Base == domain.BaseBool
	switch t.Shape {
	case domain.ShapeScalar:
		if boolean {
			return domain.BoolValue(false)
		}
		return domain.F64Value(0)
	case domain.ShapeVector:
		if boolean {
			return domain.VecBValue(make([]bool, t.Rows))
		}
		return domain.VecFValue(make([]float64, t.Rows))
	case domain.ShapeMatrix:
		if boolean {
			m := make([][]bool, t.Rows)
			for i := range m {
				m[i] = make([]bool, t.Cols)
			}
			return domain.MatBValue(m)
		}
		m := make([][]float64, t.Rows)
		for i := range m {
			m[i] = make([]float64, t.Cols)
		}
		return domain.MatFValue(m)
	default:
		return domain.SignalValue{}
	}
}

// IsValueValid checks that v's shape and element kind agree with t, and
// that no float element is NaN.
func IsValueValid(v domain.SignalValue, t domain.Type) bool {
	boolean := t.Base == domain.BaseBool
	switch t.Shape {
	case domain.ShapeScalar:
		if boolean {
			return v.Kind == domain.ValBool
		}
		return v.Kind == domain.ValF64 && !math.IsNaN(v.F)
	case domain.ShapeVector:
		if boolean {
			return v.Kind == domain.ValVecB && len(v.VecB) == t.Rows
		}
		if v.Kind != domain.ValVecF || len(v.VecF) != t.Rows {
			return false
		}
		return !containsNaN(v.VecF)
	case domain.ShapeMatrix:
		if boolean {
			return v.Kind == domain.ValMatB && matShapeOK(len(v.MatB), rowLen(v.MatB), t.Rows, t.Cols)
		}
		if v.Kind != domain.ValMatF || !matShapeOK(len(v.MatF), rowLenF(v.MatF), t.Rows, t.Cols) {
			return false
		}
		for _, row := range v.MatF {
			if containsNaN(row) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func containsNaN(xs []float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) {
			return true
		}
	}
	return false
}

func rowLen(m [][]bool) int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

func rowLenF(m [][]float64) int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

func matShapeOK(rows, cols, wantRows, wantCols int) bool {
	return rows == wantRows && cols == wantCols
}
