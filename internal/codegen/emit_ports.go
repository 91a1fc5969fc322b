package codegen

import (
	"github.com/smilemakc/blockflow/internal/domain"
)

// emitInputPort writes a root-level input_port's statement: read the
// host-supplied value from model_inputs_t. A subsystem-internal
// input_port is wired exactly like any other block by the flattener
// (internal/flatten's boundary rewiring), so it needs no special case
// here — ctx.inputExpr already resolves to its synthesized source.
func emitInputPort(w *Writer, ctx *emitContext, id domain.BlockId, p domain.InputPortParams) {
	if len(ctx.inputsOf(id)) == 1 {
		assignPassthrough(w, ctx, id, ctx.signalType(id), ctx.inputExpr(id, 0))
		return
	}
	field := "m->inputs." + SanitizeIdent(p.PortName)
	assignPassthrough(w, ctx, id, ctx.signalType(id), field)
}

// emitOutputPort writes an output_port's statement. It has no output
// port of its own in the domain model, but codegen still gives it a
// synthetic signal slot (port 0) so the enclosing subsystem's own output
// wire, and a root-level named model output, can both read from it
// uniformly.
func emitOutputPort(w *Writer, ctx *emitContext, id domain.BlockId) {
	assignPassthrough(w, ctx, id, ctx.signalType(id), ctx.inputExpr(id, 0))
}

// assignPassthrough copies src into id's port-0 signal slot: a plain
// assignment for a scalar, a memcpy for a vector or matrix. The port
// emitters above use it, as do emitDisplay and emitSheetLabelSink, which
// add their kind-specific behavior (stdout printf, label-map publish).
func assignPassthrough(w *Writer, ctx *emitContext, id domain.BlockId, t domain.Type, src string) {
	if t.Shape == domain.ShapeScalar {
		w.Line("%s = %s;", ctx.sig(id, 0), src)
		return
	}
	n := t.ElementCount()
	w.Line("memcpy(%s, %s, sizeof(double) * %d);", ctx.sig(id, 0), src, n)
}
