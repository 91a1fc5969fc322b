package codegen

import "github.com/smilemakc/blockflow/internal/domain"

// writeHarness renders an optional main.c driving the generated model for
// duration/dt steps and printing every root output_port value each step
// in a literal, parsable format, per spec.md §6: a Go host can replay the
// same model and diff the two traces (P8's cross-validation check).
func writeHarness(ctx *emitContext, modelName string, duration, dt float64) string {
	w := NewWriter()
	w.Line("#include \"%s.h\"", SanitizeIdent(modelName))
	w.Blank()
	w.Line("#include <stdio.h>")
	w.Blank()
	w.Line("int main(void) {")
	w.Indent()
	w.Line("model_t m;")
	w.Line("int steps = (int)(%g / %g + 0.5);", duration, dt)
	w.Line("int s;")
	w.Line("model_init(&m, %g);", dt)
	w.Line("for (s = 0; s <= steps; s++) {")
	w.Indent()
	w.Line(`printf("t=%%f", m.time);`)
	for _, id := range rootOutputPorts(ctx) {
		fb := ctx.plan.Blocks[id]
		p, err := domain.ParamsAs[domain.OutputPortParams](fb.Block.Params)
		if err != nil {
			continue
		}
		name := portFieldName(ctx, id, p.PortName)
		t := ctx.signalType(id)
		if t.Shape == domain.ShapeScalar {
			w.Line(`printf(" %s=%%f", m.outputs.%s);`, name, name)
			continue
		}
		n := t.ElementCount()
		w.Line("{")
		w.Indent()
		w.Line("int i;")
		w.Line(`printf(" %s=[");`, name)
		w.Line("for (i = 0; i < %d; i++) {", n)
		w.Indent()
		w.Line(`printf(i == 0 ? "%%f" : " %%f", ((double *)m.outputs.%s)[i]);`, name)
		w.Dedent()
		w.Line("}")
		w.Line(`printf("]");`)
		w.Dedent()
		w.Line("}")
	}
	w.Line(`printf("\n");`)
	w.Line("if (s < steps) model_step(&m);")
	w.Dedent()
	w.Line("}")
	w.Line("return 0;")
	w.Dedent()
	w.Line("}")
	return w.String()
}
