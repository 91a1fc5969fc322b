package codegen

import (
	"github.com/smilemakc/blockflow/internal/domain"
)

// emitSheetLabelSink caches its input into its own synthetic signal slot
// and also copies it into the named label variable (ctx.labelVar) so any
// sheet_label_source at the same scope can read it this step. The
// flattener orders sinks before sources within a scope (see
// internal/blocks/sheet_label.go), so by the time a source statement runs
// the label already holds this step's value.
func emitSheetLabelSink(w *Writer, ctx *emitContext, id domain.BlockId, scope domain.BlockId, p domain.SheetLabelParams) {
	t := ctx.signalType(id)
	assignPassthrough(w, ctx, id, t, ctx.inputExpr(id, 0))
	lbl := "m->labels." + ctx.labelVar[domain.SheetLabelKey{Scope: scope, Name: p.SignalName}]
	if t.Shape == domain.ShapeScalar {
		w.Line("%s = %s;", lbl, ctx.sig(id, 0))
		return
	}
	w.Line("memcpy(%s, %s, sizeof(double) * %d);", lbl, ctx.sig(id, 0), t.ElementCount())
}

// emitSheetLabelSource republishes the named label's current value.
func emitSheetLabelSource(w *Writer, ctx *emitContext, id domain.BlockId, scope domain.BlockId, p domain.SheetLabelParams) {
	lbl := "m->labels." + ctx.labelVar[domain.SheetLabelKey{Scope: scope, Name: p.SignalName}]
	assignPassthrough(w, ctx, id, ctx.outputType(id, 0), lbl)
}
