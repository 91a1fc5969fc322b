package codegen

import (
	"sort"
	"strconv"

	"github.com/smilemakc/blockflow/internal/domain"
	"github.com/smilemakc/blockflow/internal/flatten"
	"github.com/smilemakc/blockflow/internal/propagator"
)

// emitContext carries every name and shape decision made once, up front,
// over a flattened Plan, so the per-kind emitters in emit_*.go never
// invent an identifier themselves — this is what keeps a model's C and
// Go output structurally traceable back to its block ids.
type emitContext struct {
	plan  *flatten.Plan
	types map[domain.PortRef]domain.Type

	blockVar map[domain.BlockId]string
	enableVar map[domain.BlockId]string
	labelVar  map[domain.SheetLabelKey]string

	stateInfo map[domain.BlockId]*canonicalForm
	tfOffset  map[domain.BlockId]int // flat offset into the stacked derivative/state vector
	tfOrder   []domain.BlockId       // transfer_function blocks, plan order
	tfSize    int                    // total scalar state count across all transfer_function blocks

	labelType  map[domain.SheetLabelKey]domain.Type
	labelOrder []domain.SheetLabelKey // first-seen order, for deterministic struct field emission

	subsystemOrder []domain.BlockId // root-to-leaf, mirrors runtime.computeSubsystemOrder
}

func buildContext(plan *flatten.Plan, types propagator.Result) (*emitContext, error) {
	ctx := &emitContext{
		plan:      plan,
		types:     types.Types,
		blockVar:  make(map[domain.BlockId]string),
		enableVar: make(map[domain.BlockId]string),
		labelVar:  make(map[domain.SheetLabelKey]string),
		stateInfo: make(map[domain.BlockId]*canonicalForm),
		tfOffset:  make(map[domain.BlockId]int),
		labelType: make(map[domain.SheetLabelKey]domain.Type),
	}

	namer := newUniqueNamer()
	for _, id := range plan.Order {
		fb := plan.Blocks[id]
		preferred := fb.Block.Name
		if preferred == "" {
			preferred = "b_" + string(fb.Block.Kind)
		}
		ctx.blockVar[id] = namer.name(preferred)
	}

	enableNamer := newUniqueNamer()
	subsystemIds := make([]domain.BlockId, 0, len(plan.Subsystems))
	for id := range plan.Subsystems {
		subsystemIds = append(subsystemIds, id)
	}
	sort.Slice(subsystemIds, func(i, j int) bool { return subsystemIds[i].String() < subsystemIds[j].String() })
	for _, id := range subsystemIds {
		fb, ok := plan.Blocks[id]
		name := "subsystem"
		if ok && fb.Block.Name != "" {
			name = fb.Block.Name
		}
		ctx.enableVar[id] = enableNamer.name("en_" + name)
	}

	labelNamer := newUniqueNamer()
	seen := map[domain.SheetLabelKey]bool{}
	for _, id := range plan.Order {
		fb := plan.Blocks[id]
		if fb.Block.Kind != domain.KindSheetLabelSink && fb.Block.Kind != domain.KindSheetLabelSource {
			continue
		}
		p, err := domain.ParamsAs[domain.SheetLabelParams](fb.Block.Params)
		if err != nil {
			return nil, err
		}
		key := domain.SheetLabelKey{Scope: fb.Scope, Name: p.SignalName}
		if fb.Block.Kind == domain.KindSheetLabelSink {
			ctx.labelType[key] = ctx.signalType(id)
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		ctx.labelOrder = append(ctx.labelOrder, key)
		ctx.labelVar[key] = labelNamer.name("lbl_" + p.SignalName)
	}

	for _, id := range plan.Order {
		fb := plan.Blocks[id]
		if fb.Block.Kind != domain.KindTransferFunction {
			continue
		}
		p, err := domain.ParamsAs[domain.TransferFunctionParams](fb.Block.Params)
		if err != nil {
			return nil, err
		}
		cf, err := buildCanonicalForm(*p)
		if err != nil {
			return nil, err
		}
		ctx.stateInfo[id] = cf
		ctx.tfOrder = append(ctx.tfOrder, id)
		ctx.tfOffset[id] = ctx.tfSize
		ctx.tfSize += ctx.stateElementCount(id) * cf.order
	}

	ctx.subsystemOrder = computeSubsystemOrder(plan)
	return ctx, nil
}

// computeSubsystemOrder sorts plan.Subsystems root-to-leaf by scope
// nesting, the same algorithm internal/runtime.Orchestrator.computeSubsystemOrder
// uses, kept as a separate, independent copy here since the C output must
// hardcode a fixed order at generation time rather than discover it at
// runtime.
func computeSubsystemOrder(plan *flatten.Plan) []domain.BlockId {
	var order []domain.BlockId
	placed := map[domain.BlockId]bool{}
	remaining := make([]domain.BlockId, 0, len(plan.Subsystems))
	for id := range plan.Subsystems {
		remaining = append(remaining, id)
	}
	sort.Slice(remaining, func(i, j int) bool { return remaining[i].String() < remaining[j].String() })

	for len(remaining) > 0 {
		var next []domain.BlockId
		progressed := false
		for _, id := range remaining {
			info := plan.Subsystems[id]
			if info.Scope.IsZero() || placed[info.Scope] {
				order = append(order, id)
				placed[id] = true
				progressed = true
			} else {
				next = append(next, id)
			}
		}
		if !progressed {
			order = append(order, remaining...)
			break
		}
		remaining = next
	}
	return order
}

// outputType returns the resolved type of block id's port-th output.
func (ctx *emitContext) outputType(id domain.BlockId, port int) domain.Type {
	return ctx.types[domain.PortRef{Block: id, Port: port}]
}

// signalPorts lists the port numbers id needs a model_signals_t slot for:
// every port the propagator resolved a type for, or just {0} for a
// zero-declared-output sink kind (its one synthetic slot).
func (ctx *emitContext) signalPorts(id domain.BlockId) []int {
	var ports []int
	for p := 0; ; p++ {
		if _, ok := ctx.types[domain.PortRef{Block: id, Port: p}]; ok {
			ports = append(ports, p)
			continue
		}
		break
	}
	if len(ports) == 0 {
		ports = []int{0}
	}
	return ports
}

// signalSlotType returns the type backing id's port-th signal slot,
// whether that port is a real declared output (outputType) or the
// synthetic slot a sink kind gets at port 0 (signalType).
func (ctx *emitContext) signalSlotType(id domain.BlockId, port int) domain.Type {
	if _, ok := ctx.types[domain.PortRef{Block: id, Port: port}]; ok {
		return ctx.outputType(id, port)
	}
	return ctx.signalType(id)
}

// sinkType resolves the storage type for a block with zero declared
// outputs (output_port, signal_display, signal_logger, sheet_label_sink):
// codegen still gives each of these a synthetic signal slot so a parent
// subsystem output or a root-level model output can read from it
// uniformly, sized to match its single input rather than a (nonexistent)
// declared output.
func (ctx *emitContext) sinkType(id domain.BlockId) domain.Type {
	in := ctx.inputsOf(id)
	if len(in) != 1 {
		return domain.ScalarType(domain.BaseDouble)
	}
	return ctx.outputType(in[0].SourceBlock, in[0].SourcePort)
}

// signalType resolves the type backing a block's synthetic signal-struct
// slot (port 0), whether or not it has a declared output port: a
// zero-output sink block (output_port, signal_display, signal_logger,
// sheet_label_sink) is sized from its single input via sinkType, every
// other kind from its declared output via outputType. Used consistently
// for both the model_signals_t field declaration (header.go) and every
// emitter's read/write of that field.
func (ctx *emitContext) signalType(id domain.BlockId) domain.Type {
	fb, ok := ctx.plan.Blocks[id]
	if ok {
		switch fb.Block.Kind {
		case domain.KindOutputPort, domain.KindSignalDisplay, domain.KindSignalLogger, domain.KindSheetLabelSink:
			return ctx.sinkType(id)
		}
	}
	return ctx.outputType(id, 0)
}

// sig renders the C lvalue/rvalue expression for one output signal.
func (ctx *emitContext) sig(id domain.BlockId, port int) string {
	return "m->signals." + ctx.blockVar[id] + "_o" + strconv.Itoa(port)
}

// inputsOf returns the dataflow (non-enable) wires targeting id, sorted by
// TargetPort.
func (ctx *emitContext) inputsOf(id domain.BlockId) []domain.Wire {
	var ws []domain.Wire
	for _, w := range ctx.plan.Wires {
		if w.TargetBlock == id && !w.IsEnableWire() {
			ws = append(ws, w)
		}
	}
	sort.Slice(ws, func(i, j int) bool { return ws[i].TargetPort < ws[j].TargetPort })
	return ws
}

// inputExpr renders a C rvalue expression reading the value wired into
// id's input port-th. Since the generated model_signals_t is never
// cleared between steps (unlike the Go evaluator's per-sweep reset), an
// edge the flattener broke to resolve an algebraic loop (plan.BrokenEdges)
// needs no special handling here: skipping that edge's producer simply
// leaves the C field holding the previous step's value already, which is
// exactly Open Question 4's "previous-step value" semantics.
func (ctx *emitContext) inputExpr(id domain.BlockId, port int) string {
	for _, w := range ctx.inputsOf(id) {
		if w.TargetPort == port {
			return ctx.sig(w.SourceBlock, w.SourcePort)
		}
	}
	return "0"
}

// enableGuard renders the C boolean expression gating id's execution:
// the logical AND of every ancestor subsystem's effective-enable flag, or
// "1" at root scope (no guard needed).
func (ctx *emitContext) enableGuard(scope domain.BlockId) string {
	var parts []string
	for !scope.IsZero() {
		parts = append(parts, "m->enable_states."+ctx.enableVar[scope])
		info, ok := ctx.plan.Subsystems[scope]
		if !ok {
			break
		}
		scope = info.Scope
	}
	if len(parts) == 0 {
		return "1"
	}
	out := parts[0]
	for _, p := range parts[1:] {
		out += " && " + p
	}
	return out
}
