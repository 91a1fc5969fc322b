package codegen

import (
	"strconv"

	"github.com/smilemakc/blockflow/internal/domain"
)

// writeSource renders the complete <modelName>.c contents: includes, the
// file-scope lookup-table/waveform helpers, and the four functions
// spec.md §4.8 requires (model_init, model_evaluate_algebraic,
// model_derivatives, model_step), grounded on internal/runtime's
// Orchestrator/Integrator sequencing but resolved entirely at generation
// time instead of walked at runtime.
func writeSource(ctx *emitContext, modelName string, method domain.IntegrationMethod) (string, error) {
	w := NewWriter()
	w.Line("#include \"%s.h\"", SanitizeIdent(modelName))
	w.Blank()
	w.Line("#include <math.h>")
	w.Line("#include <string.h>")
	w.Line("#include <stdio.h>")
	w.Blank()
	w.Line("#ifndef M_PI")
	w.Line("#define M_PI 3.14159265358979323846")
	w.Line("#endif")
	w.Blank()

	writePreamble(w)

	if err := emitLookupTables(w, ctx, ctx.plan.Order); err != nil {
		return "", err
	}
	w.Blank()

	if err := writeModelInit(w, ctx); err != nil {
		return "", err
	}
	w.Blank()
	if err := writeModelEvaluateAlgebraic(w, ctx); err != nil {
		return "", err
	}
	w.Blank()
	writeModelRecomputeEnables(w, ctx)
	w.Blank()
	writeModelDerivatives(w, ctx)
	w.Blank()
	writeModelStep(w, ctx, method)

	return w.String(), nil
}

func writeModelInit(w *Writer, ctx *emitContext) error {
	w.Line("void model_init(model_t *m, double dt) {")
	w.Indent()
	w.Line("memset(m, 0, sizeof(*m));")
	w.Line("m->time = 0.0;")
	w.Line("m->dt = dt;")
	for _, id := range rootInputPorts(ctx) {
		fb := ctx.plan.Blocks[id]
		p, err := domain.ParamsAs[domain.InputPortParams](fb.Block.Params)
		if err != nil {
			return err
		}
		if ctx.signalType(id).Shape != domain.ShapeScalar {
			continue
		}
		name := portFieldName(ctx, id, p.PortName)
		w.Line("m->inputs.%s = %g;", name, p.DefaultValue)
	}
	for _, id := range ctx.subsystemOrder {
		w.Line("m->enable_states.%s = true;", ctx.enableVar[id])
	}
	w.Dedent()
	w.Line("}")
	return nil
}

func writeModelEvaluateAlgebraic(w *Writer, ctx *emitContext) error {
	w.Line("void model_evaluate_algebraic(model_t *m) {")
	w.Indent()
	for _, id := range ctx.plan.Order {
		if err := emitBlockStatement(w, ctx, id); err != nil {
			return err
		}
	}
	for _, id := range rootOutputPorts(ctx) {
		fb := ctx.plan.Blocks[id]
		p, err := domain.ParamsAs[domain.OutputPortParams](fb.Block.Params)
		if err != nil {
			return err
		}
		name := portFieldName(ctx, id, p.PortName)
		t := ctx.signalType(id)
		if t.Shape == domain.ShapeScalar {
			w.Line("m->outputs.%s = %s;", name, ctx.sig(id, 0))
		} else {
			w.Line("memcpy(m->outputs.%s, %s, sizeof(double) * %d);", name, ctx.sig(id, 0), t.ElementCount())
		}
	}
	w.Dedent()
	w.Line("}")
	return nil
}

func writeModelRecomputeEnables(w *Writer, ctx *emitContext) {
	w.Line("static void model_recompute_enables(model_t *m) {")
	w.Indent()
	for _, id := range ctx.subsystemOrder {
		info := ctx.plan.Subsystems[id]
		raw := "1"
		if wire, ok := ctx.plan.EnableWires[id]; ok {
			raw = ctx.sig(wire.SourceBlock, wire.SourcePort) + " != 0"
		}
		parent := "1"
		if !info.Scope.IsZero() {
			parent = "m->enable_states." + ctx.enableVar[info.Scope]
		}
		w.Line("m->enable_states.%s = (%s) && (%s);", ctx.enableVar[id], raw, parent)
	}
	w.Dedent()
	w.Line("}")
}

func writeModelDerivatives(w *Writer, ctx *emitContext) {
	w.Line("void model_derivatives(model_t *m, const double *state, double *deriv) {")
	w.Indent()
	if ctx.tfSize == 0 {
		w.Line("(void)state;")
		w.Line("(void)deriv;")
		w.Dedent()
		w.Line("}")
		return
	}
	emitStateRestore(w, ctx, "state")
	w.Line("model_evaluate_algebraic(m);")
	emitDerivativesAll(w, ctx, "deriv")
	w.Dedent()
	w.Line("}")
}

func writeModelStep(w *Writer, ctx *emitContext, method domain.IntegrationMethod) {
	w.Line("void model_step(model_t *m) {")
	w.Indent()
	w.Line("double t0 = m->time;")
	w.Line("model_evaluate_algebraic(m);")
	w.Line("model_recompute_enables(m);")

	if ctx.tfSize > 0 {
		n := strconv.Itoa(ctx.tfSize)
		w.Line("{")
		w.Indent()
		w.Line("int i, ok;")
		w.Line("double x0[%s], k1[%s], final[%s];", n, n, n)
		emitStateSnapshot(w, ctx, "x0")
		w.Line("model_derivatives(m, x0, k1);")

		if method == domain.IntegrationRK4 {
			w.Line("double trial[%s], k2[%s], k3[%s], k4[%s];", n, n, n, n)
			w.Line("for (i = 0; i < %s; i++) trial[i] = x0[i] + (m->dt / 2.0) * k1[i];", n)
			w.Line("m->time = t0 + m->dt / 2.0;")
			w.Line("model_derivatives(m, trial, k2);")
			w.Line("for (i = 0; i < %s; i++) trial[i] = x0[i] + (m->dt / 2.0) * k2[i];", n)
			w.Line("m->time = t0 + m->dt / 2.0;")
			w.Line("model_derivatives(m, trial, k3);")
			w.Line("for (i = 0; i < %s; i++) trial[i] = x0[i] + m->dt * k3[i];", n)
			w.Line("m->time = t0 + m->dt;")
			w.Line("model_derivatives(m, trial, k4);")
			w.Line("m->time = t0;")
			w.Line("for (i = 0; i < %s; i++) final[i] = x0[i] + (m->dt / 6.0) * k1[i] + (m->dt / 3.0) * k2[i] + (m->dt / 3.0) * k3[i] + (m->dt / 6.0) * k4[i];", n)
		} else {
			w.Line("for (i = 0; i < %s; i++) final[i] = x0[i] + m->dt * k1[i];", n)
		}

		w.Line("ok = 1;")
		w.Line("for (i = 0; i < %s; i++) if (!isfinite(final[i]) || final[i] > 1e10 || final[i] < -1e10) ok = 0;", n)
		w.Line("if (ok) {")
		w.Indent()
		emitStateRestore(w, ctx, "final")
		w.Dedent()
		w.Line("} else {")
		w.Indent()
		emitStateRestore(w, ctx, "x0")
		w.Dedent()
		w.Line("}")
		w.Dedent()
		w.Line("}")
	}

	w.Line("m->time = t0 + m->dt;")
	w.Dedent()
	w.Line("}")
}
