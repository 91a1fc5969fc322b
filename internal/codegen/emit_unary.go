package codegen

import (
	"fmt"

	"github.com/smilemakc/blockflow/internal/domain"
)

func emitUnary(w *Writer, ctx *emitContext, id domain.BlockId, kind domain.BlockKind) {
	in := ctx.inputExpr(id, 0)
	scalar := ctx.outputType(id, 0).Shape == domain.ShapeScalar
	emitElementwise(w, ctx, id, func(elem string) string {
		operand := in
		if !scalar {
			operand = fmt.Sprintf("((double *)%s)%s", in, elem)
		}
		if kind == domain.KindUMinus {
			return "-" + operand
		}
		return "fabs(" + operand + ")"
	})
}
