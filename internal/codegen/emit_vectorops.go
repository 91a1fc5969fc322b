package codegen

import (
	"github.com/smilemakc/blockflow/internal/domain"
)

// emitMag writes a `mag` block's statement: Euclidean norm of a vector.
func emitMag(w *Writer, ctx *emitContext, id domain.BlockId) {
	ins := ctx.inputsOf(id)
	n := ctx.outputType(ins[0].SourceBlock, ins[0].SourcePort).Rows
	w.Line("{")
	w.Indent()
	w.Line("int i;")
	w.Line("double *v = (double *)%s;", ctx.inputExpr(id, 0))
	w.Line("double sum = 0.0;")
	w.Line("for (i = 0; i < %d; i++) sum += v[i] * v[i];", n)
	w.Line("%s = sqrt(sum);", ctx.sig(id, 0))
	w.Dedent()
	w.Line("}")
}

// emitDot writes a `dot` block's statement: dot product of two equal-length vectors.
func emitDot(w *Writer, ctx *emitContext, id domain.BlockId) {
	ins := ctx.inputsOf(id)
	n := ctx.outputType(ins[0].SourceBlock, ins[0].SourcePort).Rows
	w.Line("{")
	w.Indent()
	w.Line("int i;")
	w.Line("double *a = (double *)%s, *b = (double *)%s;", ctx.inputExpr(id, 0), ctx.inputExpr(id, 1))
	w.Line("double sum = 0.0;")
	w.Line("for (i = 0; i < %d; i++) sum += a[i] * b[i];", n)
	w.Line("%s = sum;", ctx.sig(id, 0))
	w.Dedent()
	w.Line("}")
}

// emitCross writes a `cross` block's statement: the 3-D cross product.
func emitCross(w *Writer, ctx *emitContext, id domain.BlockId) {
	a := "((double *)" + ctx.inputExpr(id, 0) + ")"
	b := "((double *)" + ctx.inputExpr(id, 1) + ")"
	out := "((double *)" + ctx.sig(id, 0) + ")"
	w.Line("%s[0] = %s[1] * %s[2] - %s[2] * %s[1];", out, a, b, a, b)
	w.Line("%s[1] = %s[2] * %s[0] - %s[0] * %s[2];", out, a, b, a, b)
	w.Line("%s[2] = %s[0] * %s[1] - %s[1] * %s[0];", out, a, b, a, b)
}
