package codegen

import (
	"strconv"

	"github.com/smilemakc/blockflow/internal/domain"
)

// rootInputPorts/rootOutputPorts list the root-scope input_port/
// output_port blocks in plan order: these are the only ones that surface
// as model_inputs_t/model_outputs_t fields, since a subsystem-internal
// port is wired by the flattener like any other block (see emit_ports.go).
func rootInputPorts(ctx *emitContext) []domain.BlockId {
	var ids []domain.BlockId
	for _, id := range ctx.plan.Order {
		fb := ctx.plan.Blocks[id]
		if fb.Scope.IsZero() && fb.Block.Kind == domain.KindInputPort {
			ids = append(ids, id)
		}
	}
	return ids
}

func rootOutputPorts(ctx *emitContext) []domain.BlockId {
	var ids []domain.BlockId
	for _, id := range ctx.plan.Order {
		fb := ctx.plan.Blocks[id]
		if fb.Scope.IsZero() && fb.Block.Kind == domain.KindOutputPort {
			ids = append(ids, id)
		}
	}
	return ids
}

// portFieldName renders the sanitized model_inputs_t/model_outputs_t
// field name for a root-level input_port/output_port block.
func portFieldName(ctx *emitContext, id domain.BlockId, portName string) string {
	if portName == "" {
		return ctx.blockVar[id]
	}
	return SanitizeIdent(portName)
}

// writeHeader renders the complete <modelName>.h contents: the include
// guard, every model_*_t struct (spec.md §4.8's required names), the
// model_t aggregate, and the four entry-point prototypes.
func writeHeader(ctx *emitContext, modelName string) string {
	w := NewWriter()
	guard := IncludeGuard(modelName)
	w.Line("#ifndef %s", guard)
	w.Line("#define %s", guard)
	w.Blank()
	w.Line("// Generated by blockflow. Do not edit by hand.")
	w.Line("#define MODEL_NAME_VERSION \"%s-1\"", SanitizeIdent(modelName))
	w.Blank()
	w.Line("#include <stdbool.h>")
	w.Blank()

	w.Line("typedef struct {")
	w.Indent()
	for _, id := range rootInputPorts(ctx) {
		fb := ctx.plan.Blocks[id]
		p, err := domain.ParamsAs[domain.InputPortParams](fb.Block.Params)
		name := ctx.blockVar[id]
		if err == nil {
			name = portFieldName(ctx, id, p.PortName)
		}
		w.Line(cFieldDecl(name, ctx.signalType(id)))
	}
	w.Dedent()
	w.Line("} model_inputs_t;")
	w.Blank()

	w.Line("typedef struct {")
	w.Indent()
	if ctx.tfSize == 0 {
		w.Line("int _unused;")
	}
	for _, id := range ctx.tfOrder {
		ctx.emitStateFieldDecl(w, id)
	}
	w.Dedent()
	w.Line("} model_states_t;")
	w.Blank()

	w.Line("typedef struct {")
	w.Indent()
	for _, id := range ctx.plan.Order {
		for _, port := range ctx.signalPorts(id) {
			name := ctx.blockVar[id] + "_o" + strconv.Itoa(port)
			w.Line(cFieldDecl(name, ctx.signalSlotType(id, port)))
		}
	}
	w.Dedent()
	w.Line("} model_signals_t;")
	w.Blank()

	w.Line("typedef struct {")
	w.Indent()
	for _, id := range rootOutputPorts(ctx) {
		fb := ctx.plan.Blocks[id]
		p, err := domain.ParamsAs[domain.OutputPortParams](fb.Block.Params)
		name := ctx.blockVar[id]
		if err == nil {
			name = portFieldName(ctx, id, p.PortName)
		}
		w.Line(cFieldDecl(name, ctx.signalType(id)))
	}
	w.Dedent()
	w.Line("} model_outputs_t;")
	w.Blank()

	w.Line("typedef struct {")
	w.Indent()
	if len(ctx.plan.Subsystems) == 0 {
		w.Line("int _unused;")
	}
	for _, id := range ctx.subsystemOrder {
		w.Line("bool %s;", ctx.enableVar[id])
	}
	w.Dedent()
	w.Line("} enable_states_t;")
	w.Blank()

	w.Line("typedef struct {")
	w.Indent()
	if len(ctx.labelVar) == 0 {
		w.Line("int _unused;")
	}
	for _, key := range ctx.labelOrder {
		w.Line(cFieldDecl(ctx.labelVar[key], ctx.labelType[key]))
	}
	w.Dedent()
	w.Line("} model_labels_t;")
	w.Blank()

	w.Line("typedef struct {")
	w.Indent()
	w.Line("model_inputs_t inputs;")
	w.Line("model_states_t states;")
	w.Line("model_signals_t signals;")
	w.Line("model_outputs_t outputs;")
	w.Line("enable_states_t enable_states;")
	w.Line("model_labels_t labels;")
	w.Line("double time;")
	w.Line("double dt;")
	w.Dedent()
	w.Line("} model_t;")
	w.Blank()

	w.Line("void model_init(model_t *m, double dt);")
	w.Line("void model_evaluate_algebraic(model_t *m);")
	w.Line("void model_derivatives(model_t *m, const double *state, double *deriv);")
	w.Line("void model_step(model_t *m);")
	w.Blank()
	w.Line("#endif // %s", guard)
	return w.String()
}
