package codegen

import (
	"fmt"

	"github.com/smilemakc/blockflow/internal/domain"
)

// cBaseType maps a signal's BaseType to its C99 element type.
func cBaseType(b domain.BaseType) string {
	switch b {
	case domain.BaseDouble:
		return "double"
	case domain.BaseFloat:
		return "float"
	case domain.BaseLong:
		return "long"
	case domain.BaseBool:
		return "bool"
	default:
		return "double"
	}
}

// cFieldDecl renders a struct member declaration for name carrying type t:
// `base name;` for a scalar, `base name[n];` for a vector, and
// `base name[r][c];` for a matrix, per spec.md §4.8's array-emission rule.
func cFieldDecl(name string, t domain.Type) string {
	base := cBaseType(t.Base)
	switch t.Shape {
	case domain.ShapeVector:
		return fmt.Sprintf("%s %s[%d];", base, name, t.Rows)
	case domain.ShapeMatrix:
		return fmt.Sprintf("%s %s[%d][%d];", base, name, t.Rows, t.Cols)
	default:
		return fmt.Sprintf("%s %s;", base, name)
	}
}

// cZeroLiteral renders the zero literal for a scalar of base type b:
// "false" for bool, "0.0" otherwise.
func cZeroLiteral(b domain.BaseType) string {
	if b == domain.BaseBool {
		return "false"
	}
	return "0.0"
}

// cBoolExpr wraps a non-trivial predicate expr as a 0/1-valued C
// expression per spec.md §4.8's boolean-expression helper.
func cBoolExpr(expr string) string {
	return "((" + expr + ") ? 1 : 0)"
}
