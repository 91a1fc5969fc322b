package codegen

import (
	"fmt"

	"github.com/smilemakc/blockflow/internal/domain"
)

// emitMatrixMultiply resolves, at generation time, which of
// internal/blocks/matrix.go's nine shape-pair cases this instance needs
// (its operand shapes are already fixed by the propagator) and emits only
// that one specialized loop — unlike the Go runtime, which re-dispatches
// on every step.
func emitMatrixMultiply(w *Writer, ctx *emitContext, id domain.BlockId) error {
	ins := ctx.inputsOf(id)
	if len(ins) != 2 {
		return fmt.Errorf("codegen: matrix_multiply: requires exactly 2 inputs")
	}
	a := ctx.outputType(ins[0].SourceBlock, ins[0].SourcePort)
	b := ctx.outputType(ins[1].SourceBlock, ins[1].SourcePort)
	ae, be := ctx.inputExpr(id, 0), ctx.inputExpr(id, 1)
	out := ctx.sig(id, 0)

	switch {
	case a.Shape == domain.ShapeScalar && b.Shape == domain.ShapeScalar:
		w.Line("%s = %s * %s;", out, ae, be)
	case a.Shape == domain.ShapeScalar && b.Shape == domain.ShapeVector:
		emitScaleArray(w, out, be, ae, b.Rows)
	case a.Shape == domain.ShapeVector && b.Shape == domain.ShapeScalar:
		emitScaleArray(w, out, ae, be, a.Rows)
	case a.Shape == domain.ShapeScalar && b.Shape == domain.ShapeMatrix:
		emitScaleArray(w, out, be, ae, b.Rows*b.Cols)
	case a.Shape == domain.ShapeMatrix && b.Shape == domain.ShapeScalar:
		emitScaleArray(w, out, ae, be, a.Rows*a.Cols)
	case a.Shape == domain.ShapeVector && b.Shape == domain.ShapeVector:
		w.Line("{")
		w.Indent()
		w.Line("int i;")
		w.Line("double *av = (double *)%s, *bv = (double *)%s, *ov = (double *)%s;", ae, be, out)
		w.Line("for (i = 0; i < %d; i++) ov[i] = av[i] * bv[i];", a.Rows)
		w.Dedent()
		w.Line("}")
	case a.Shape == domain.ShapeMatrix && b.Shape == domain.ShapeVector:
		w.Line("{")
		w.Indent()
		w.Line("int r, c;")
		w.Line("double (*am)[%d] = (double (*)[%d])%s;", a.Cols, a.Cols, ae)
		w.Line("double *bv = (double *)%s, *ov = (double *)%s;", be, out)
		w.Line("for (r = 0; r < %d; r++) {", a.Rows)
		w.Indent()
		w.Line("double sum = 0.0;")
		w.Line("for (c = 0; c < %d; c++) sum += am[r][c] * bv[c];", a.Cols)
		w.Line("ov[r] = sum;")
		w.Dedent()
		w.Line("}")
		w.Dedent()
		w.Line("}")
	case a.Shape == domain.ShapeVector && b.Shape == domain.ShapeMatrix:
		w.Line("{")
		w.Indent()
		w.Line("int c, k;")
		w.Line("double *av = (double *)%s;", ae)
		w.Line("double (*bm)[%d] = (double (*)[%d])%s;", b.Cols, b.Cols, be)
		w.Line("double *ov = (double *)%s;", out)
		w.Line("for (c = 0; c < %d; c++) {", b.Cols)
		w.Indent()
		w.Line("double sum = 0.0;")
		w.Line("for (k = 0; k < %d; k++) sum += av[k] * bm[k][c];", a.Rows)
		w.Line("ov[c] = sum;")
		w.Dedent()
		w.Line("}")
		w.Dedent()
		w.Line("}")
	case a.Shape == domain.ShapeMatrix && b.Shape == domain.ShapeMatrix:
		w.Line("{")
		w.Indent()
		w.Line("int r, c, k;")
		w.Line("double (*am)[%d] = (double (*)[%d])%s;", a.Cols, a.Cols, ae)
		w.Line("double (*bm)[%d] = (double (*)[%d])%s;", b.Cols, b.Cols, be)
		w.Line("double (*om)[%d] = (double (*)[%d])%s;", b.Cols, b.Cols, out)
		w.Line("for (r = 0; r < %d; r++) {", a.Rows)
		w.Indent()
		w.Line("for (c = 0; c < %d; c++) {", b.Cols)
		w.Indent()
		w.Line("double sum = 0.0;")
		w.Line("for (k = 0; k < %d; k++) sum += am[r][k] * bm[k][c];", a.Cols)
		w.Line("om[r][c] = sum;")
		w.Dedent()
		w.Line("}")
		w.Dedent()
		w.Line("}")
		w.Dedent()
		w.Line("}")
	default:
		return fmt.Errorf("codegen: matrix_multiply: unsupported shape combination %s x %s", a, b)
	}
	return nil
}

func emitScaleArray(w *Writer, out, arrExpr, scalarExpr string, n int) {
	w.Line("{")
	w.Indent()
	w.Line("int i;")
	w.Line("double *src = (double *)%s, *dst = (double *)%s;", arrExpr, out)
	w.Line("for (i = 0; i < %d; i++) dst[i] = src[i] * %s;", n, scalarExpr)
	w.Dedent()
	w.Line("}")
}

// emitTranspose writes a `transpose` block's statement: a vector input
// becomes a 1-row matrix copy; a matrix input swaps axes.
func emitTranspose(w *Writer, ctx *emitContext, id domain.BlockId) {
	ins := ctx.inputsOf(id)
	in := ctx.outputType(ins[0].SourceBlock, ins[0].SourcePort)
	ae := ctx.inputExpr(id, 0)
	out := ctx.sig(id, 0)
	if in.Shape == domain.ShapeVector {
		w.Line("memcpy(%s, %s, sizeof(double) * %d);", out, ae, in.Rows)
		return
	}
	w.Line("{")
	w.Indent()
	w.Line("int r, c;")
	w.Line("double (*src)[%d] = (double (*)[%d])%s;", in.Cols, in.Cols, ae)
	w.Line("double (*dst)[%d] = (double (*)[%d])%s;", in.Rows, in.Rows, out)
	w.Line("for (r = 0; r < %d; r++)", in.Rows)
	w.Indent()
	w.Line("for (c = 0; c < %d; c++)", in.Cols)
	w.Indent()
	w.Line("dst[c][r] = src[r][c];")
	w.Dedent()
	w.Dedent()
	w.Dedent()
	w.Line("}")
}
