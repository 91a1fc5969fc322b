package codegen

import (
	"fmt"
	"strings"

	"github.com/smilemakc/blockflow/internal/domain"
)

func cDoubleArrayLiteral(xs []float64) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = fmt.Sprintf("%g", x)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func extrapolateFlag(mode string) string {
	if mode == "extrapolate" {
		return "1"
	}
	return "0"
}

// emitLookupTables writes the file-scope static const breakpoint/table
// arrays backing every lookup_1d/lookup_2d instance in the plan. Called
// once before model_step is emitted, since C requires array initializers
// at file scope to live outside any function body.
func emitLookupTables(w *Writer, ctx *emitContext, order []domain.BlockId) error {
	for _, id := range order {
		fb := ctx.plan.Blocks[id]
		bv := ctx.blockVar[id]
		switch fb.Block.Kind {
		case domain.KindLookup1D:
			p, err := domain.ParamsAs[domain.Lookup1DParams](fb.Block.Params)
			if err != nil {
				return err
			}
			w.Line("static const double %s_xs[%d] = %s;", bv, len(p.InputValues), cDoubleArrayLiteral(p.InputValues))
			w.Line("static const double %s_ys[%d] = %s;", bv, len(p.OutputValues), cDoubleArrayLiteral(p.OutputValues))
		case domain.KindLookup2D:
			p, err := domain.ParamsAs[domain.Lookup2DParams](fb.Block.Params)
			if err != nil {
				return err
			}
			w.Line("static const double %s_x1s[%d] = %s;", bv, len(p.Input1Values), cDoubleArrayLiteral(p.Input1Values))
			w.Line("static const double %s_x2s[%d] = %s;", bv, len(p.Input2Values), cDoubleArrayLiteral(p.Input2Values))
			flat := make([]float64, 0, len(p.Input1Values)*len(p.Input2Values))
			for _, row := range p.OutputTable {
				flat = append(flat, row...)
			}
			w.Line("static const double %s_table[%d] = %s;", bv, len(flat), cDoubleArrayLiteral(flat))
		}
	}
	return nil
}

func emitLookup1D(w *Writer, ctx *emitContext, id domain.BlockId, p domain.Lookup1DParams) {
	bv := ctx.blockVar[id]
	w.Line("%s = model_interp1d(%s_xs, %s_ys, %d, %s, %s);",
		ctx.sig(id, 0), bv, bv, len(p.InputValues), ctx.inputExpr(id, 0), extrapolateFlag(p.Extrapolation))
}

func emitLookup2D(w *Writer, ctx *emitContext, id domain.BlockId, p domain.Lookup2DParams) {
	bv := ctx.blockVar[id]
	w.Line("%s = model_bilerp(%s_x1s, %d, %s_x2s, %d, %s_table, %s, %s, %s);",
		ctx.sig(id, 0), bv, len(p.Input1Values), bv, len(p.Input2Values), bv,
		ctx.inputExpr(id, 0), ctx.inputExpr(id, 1), extrapolateFlag(p.Extrapolation))
}
