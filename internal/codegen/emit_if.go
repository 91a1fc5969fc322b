package codegen

import (
	"github.com/smilemakc/blockflow/internal/domain"
)

// emitIf writes an `if` block's statement: selects between its
// thenValue/elseValue inputs (ports 1, 2) based on its bool selector
// (port 0).
func emitIf(w *Writer, ctx *emitContext, id domain.BlockId) {
	sel := ctx.inputExpr(id, 0)
	t := ctx.outputType(id, 0)
	if t.Shape == domain.ShapeScalar {
		w.Line("%s = (%s) ? (%s) : (%s);", ctx.sig(id, 0), sel, ctx.inputExpr(id, 1), ctx.inputExpr(id, 2))
		return
	}
	n := t.ElementCount()
	w.Line("if (%s) {", sel)
	w.Indent()
	w.Line("memcpy(%s, %s, sizeof(double) * %d);", ctx.sig(id, 0), ctx.inputExpr(id, 1), n)
	w.Dedent()
	w.Line("} else {")
	w.Indent()
	w.Line("memcpy(%s, %s, sizeof(double) * %d);", ctx.sig(id, 0), ctx.inputExpr(id, 2), n)
	w.Dedent()
	w.Line("}")
}
