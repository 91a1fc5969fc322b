package codegen

import (
	"fmt"

	"github.com/smilemakc/blockflow/internal/domain"
)

var trigCFunc = map[string]string{
	"sin": "sin", "cos": "cos", "tan": "tan",
	"asin": "asin", "acos": "acos", "atan": "atan",
}

func emitTrig(w *Writer, ctx *emitContext, id domain.BlockId, p domain.TrigParams) error {
	switch p.Function {
	case "sin", "cos", "tan", "asin", "acos", "atan":
		fn := trigCFunc[p.Function]
		w.Line("%s = %s(%s);", ctx.sig(id, 0), fn, ctx.inputExpr(id, 0))
	case "sincos":
		in := ctx.inputExpr(id, 0)
		w.Line("%s = sin(%s);", ctx.sig(id, 0), in)
		w.Line("%s = cos(%s);", ctx.sig(id, 1), in)
	case "atan2":
		w.Line("%s = atan2(%s, %s);", ctx.sig(id, 0), ctx.inputExpr(id, 0), ctx.inputExpr(id, 1))
	default:
		return fmt.Errorf("codegen: trig: unknown function %q", p.Function)
	}
	return nil
}
