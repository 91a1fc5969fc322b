package codegen

import (
	"github.com/smilemakc/blockflow/internal/domain"
)

// emitDisplay writes a signal_display/signal_logger's statement: cache
// the observed input, and for a logger with logToStdout set, print it.
// Grounded on internal/blocks/display.go's signalDisplayModule, minus the
// structured zerolog path, which has no analogue in a freestanding C
// program — a plain printf is the generated program's "log line".
func emitDisplay(w *Writer, ctx *emitContext, id domain.BlockId, logger bool, p domain.SignalDisplayParams) {
	t := ctx.signalType(id)
	assignPassthrough(w, ctx, id, t, ctx.inputExpr(id, 0))
	if !logger || !p.LogToStdout {
		return
	}
	label := ctx.blockVar[id]
	if t.Shape == domain.ShapeScalar {
		w.Line(`printf("%s t=%%f value=%%f\n", m->time, %s);`, label, ctx.sig(id, 0))
		return
	}
	n := t.ElementCount()
	w.Line("{")
	w.Indent()
	w.Line("int i;")
	w.Line(`printf("%s t=%%f value=[", m->time);`, label)
	w.Line("for (i = 0; i < %d; i++) {", n)
	w.Indent()
	w.Line(`printf(i == 0 ? "%%f" : " %%f", ((double *)%s)[i]);`, ctx.sig(id, 0))
	w.Dedent()
	w.Line("}")
	w.Line(`printf("]\n");`)
	w.Dedent()
	w.Line("}")
}
