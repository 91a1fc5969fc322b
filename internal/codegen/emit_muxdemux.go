package codegen

import (
	"github.com/smilemakc/blockflow/internal/domain"
)

// emitMux writes a `mux` block's statement: Rows*Cols scalar inputs
// copied row-major into the vector/matrix output.
func emitMux(w *Writer, ctx *emitContext, id domain.BlockId) {
	ins := ctx.inputsOf(id)
	out := "((double *)" + ctx.sig(id, 0) + ")"
	for i := range ins {
		w.Line("%s[%d] = %s;", out, i, ctx.inputExpr(id, i))
	}
}

// emitDemux writes a `demux` block's statement: the vector/matrix
// input's elements copied row-major into its N scalar outputs.
func emitDemux(w *Writer, ctx *emitContext, id domain.BlockId) {
	in := "((double *)" + ctx.inputExpr(id, 0) + ")"
	ins := ctx.inputsOf(id)
	n := 1
	if len(ins) == 1 {
		n = ctx.outputType(ins[0].SourceBlock, ins[0].SourcePort).ElementCount()
	}
	for i := 0; i < n; i++ {
		w.Line("%s = %s[%d];", ctx.sig(id, i), in, i)
	}
}
