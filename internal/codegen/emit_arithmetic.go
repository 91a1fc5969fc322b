package codegen

import (
	"fmt"

	"github.com/smilemakc/blockflow/internal/domain"
	"github.com/smilemakc/blockflow/internal/flatten"
)

// emitElementwise writes a for-loop (or a single statement for scalars)
// applying exprFor(i) to every element of id's output, assuming all of
// id's wired inputs share id's output shape — the same assumption
// internal/blocks's sameShapeFloatOp enforces at runtime.
func emitElementwise(w *Writer, ctx *emitContext, id domain.BlockId, exprFor func(elem string) string) {
	t := ctx.outputType(id, 0)
	if t.Shape == domain.ShapeScalar {
		w.Line("%s = %s;", ctx.sig(id, 0), exprFor(""))
		return
	}
	n := t.ElementCount()
	w.Line("{")
	w.Indent()
	w.Line("int i;")
	w.Line("double *out = (double *)%s;", ctx.sig(id, 0))
	w.Line("for (i = 0; i < %d; i++) {", n)
	w.Indent()
	w.Line("out[i] = %s;", exprFor("[i]"))
	w.Dedent()
	w.Line("}")
	w.Dedent()
	w.Line("}")
}

func emitSum(w *Writer, ctx *emitContext, id domain.BlockId, p domain.SumParams) {
	signs := p.Signs
	if signs == "" {
		n := p.NumInputs
		if n < 2 {
			n = 2
		}
		b := make([]byte, n)
		for i := range b {
			b[i] = '+'
		}
		signs = string(b)
	}
	ins := ctx.inputsOf(id)
	scalar := ctx.outputType(id, 0).Shape == domain.ShapeScalar
	elemAt := func(idx int, elem string) string {
		e := ctx.inputExpr(id, idx)
		if scalar {
			return e
		}
		return "((double *)" + e + ")" + elem
	}
	emitElementwise(w, ctx, id, func(elem string) string {
		expr := ""
		for i := range ins {
			sign := "+"
			if i < len(signs) && signs[i] == '-' {
				sign = "-"
			}
			term := elemAt(i, elem)
			if i == 0 {
				if sign == "-" {
					expr = "-" + term
				} else {
					expr = term
				}
			} else {
				expr += " " + sign + " " + term
			}
		}
		return expr
	})
}

func emitMultiply(w *Writer, ctx *emitContext, id domain.BlockId) {
	ins := ctx.inputsOf(id)
	scalar := ctx.outputType(id, 0).Shape == domain.ShapeScalar
	elemAt := func(idx int, elem string) string {
		e := ctx.inputExpr(id, idx)
		srcScalar := false
		if idx < len(ins) {
			srcScalar = ctx.outputType(ins[idx].SourceBlock, ins[idx].SourcePort).Shape == domain.ShapeScalar
		}
		if scalar || srcScalar {
			return e
		}
		return "((double *)" + e + ")" + elem
	}
	emitElementwise(w, ctx, id, func(elem string) string {
		expr := elemAt(0, elem)
		for i := 1; i < len(ins); i++ {
			expr += " * " + elemAt(i, elem)
		}
		return expr
	})
}

func emitScale(w *Writer, ctx *emitContext, id domain.BlockId, p domain.ScaleParams) {
	gain := p.EffectiveGain()
	in := ctx.inputExpr(id, 0)
	scalar := ctx.outputType(id, 0).Shape == domain.ShapeScalar
	emitElementwise(w, ctx, id, func(elem string) string {
		if scalar {
			return fmt.Sprintf("%s * %g", in, gain)
		}
		return fmt.Sprintf("((double *)%s)%s * %g", in, elem, gain)
	})
}

func emitArithmetic(w *Writer, ctx *emitContext, id domain.BlockId, fb flatten.FlatBlock) error {
	switch fb.Block.Kind {
	case domain.KindSum:
		p, err := domain.ParamsAs[domain.SumParams](fb.Block.Params)
		if err != nil {
			return err
		}
		emitSum(w, ctx, id, *p)
	case domain.KindMultiply:
		emitMultiply(w, ctx, id)
	case domain.KindScale:
		p, err := domain.ParamsAs[domain.ScaleParams](fb.Block.Params)
		if err != nil {
			return err
		}
		emitScale(w, ctx, id, *p)
	}
	return nil
}
