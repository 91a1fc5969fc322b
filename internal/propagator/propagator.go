// Package propagator implements the signal-type propagator: given a
// flattener Plan, it infers each block's output port types in the global
// topological order and reports any type-consistency diagnostics.
package propagator

import (
	"github.com/smilemakc/blockflow/internal/blocks"
	"github.com/smilemakc/blockflow/internal/domain"
	"github.com/smilemakc/blockflow/internal/flatten"
)

// PortType is one resolved (block, port) -> Type entry.
type PortType struct {
	Block domain.BlockId
	Port  int
	Type  domain.Type
}

// Result is the propagator's output: a (block, port) -> Type map plus any
// diagnostics raised along the way. Ports omitted from Types could not be
// determined (e.g. upstream of a type error).
type Result struct {
	Types       map[domain.PortRef]domain.Type
	Diagnostics []domain.Diagnostic
}

// Propagate infers output port types for every block in plan's global
// order, consulting each kind's registered Module.InferOutputTypes, and
// resolving sheet_label_source types from their matching sink in a second
// micro-pass once every sink in scope has been typed (spec.md §4.2 point 4).
func Propagate(plan *flatten.Plan, registry *blocks.Registry) Result {
	res := Result{Types: make(map[domain.PortRef]domain.Type)}
	inputsBySink := resolveInputsBySink(plan.Wires)

	var deferredSources []domain.BlockId

	for _, id := range plan.Order {
		fb, ok := plan.Blocks[id]
		if !ok {
			continue
		}
		b := fb.Block

		if b.Kind == domain.KindSheetLabelSource {
			deferredSources = append(deferredSources, id)
			continue
		}

		inTypes, complete := gatherInputTypes(res.Types, inputsBySink[id], b)
		if !complete {
			res.Diagnostics = append(res.Diagnostics, domain.NewDiagnostic(
				domain.SeverityWarning, domain.CategoryType, b.ID,
				"cannot determine output type: one or more inputs undetermined",
			))
			continue
		}

		mod, err := registry.Get(b.Kind)
		if err != nil {
			res.Diagnostics = append(res.Diagnostics, domain.NewDiagnostic(
				domain.SeverityError, domain.CategoryStructural, b.ID, err.Error(),
			))
			continue
		}

		outTypes, err := mod.InferOutputTypes(inTypes, b.Params)
		if err != nil {
			res.Diagnostics = append(res.Diagnostics, domain.NewDiagnostic(
				domain.SeverityError, domain.CategoryType, b.ID, err.Error(),
			))
			continue
		}
		for port, t := range outTypes {
			res.Types[domain.PortRef{Block: b.ID, Port: port}] = t
		}
		// output_port declares no outputs, but the flattener rewires a
		// subsystem's external consumers onto its port 0, so that port
		// carries the type of its single input.
		if b.Kind == domain.KindOutputPort && len(inTypes) == 1 {
			res.Types[domain.PortRef{Block: b.ID, Port: 0}] = inTypes[0]
		}
	}

	// Second pass: sheet_label_source types resolve from whichever sink in
	// the same scope was typed above (its single input's type, since the
	// sink is a transparent relay).
	for _, id := range deferredSources {
		fb := plan.Blocks[id]
		t, ok := resolveSheetLabelType(plan, res.Types, fb)
		if !ok {
			res.Diagnostics = append(res.Diagnostics, domain.NewDiagnostic(
				domain.SeverityWarning, domain.CategoryType, id,
				"sheet_label_source: no same-scope sink was typed",
			))
			continue
		}
		res.Types[domain.PortRef{Block: id, Port: 0}] = t
	}

	return res
}

// gatherInputTypes collects the resolved types feeding b's input ports, in
// port order, returning complete=false if any are still undetermined.
func gatherInputTypes(types map[domain.PortRef]domain.Type, wires []domain.Wire, b domain.Block) ([]domain.Type, bool) {
	if len(wires) == 0 {
		return nil, true
	}
	maxPort := -1
	byPort := map[int]domain.Wire{}
	for _, w := range wires {
		byPort[w.TargetPort] = w
		if w.TargetPort > maxPort {
			maxPort = w.TargetPort
		}
	}
	out := make([]domain.Type, maxPort+1)
	for port := 0; port <= maxPort; port++ {
		w, ok := byPort[port]
		if !ok {
			return nil, false
		}
		t, ok := types[domain.PortRef{Block: w.SourceBlock, Port: w.SourcePort}]
		if !ok {
			return nil, false
		}
		out[port] = t
	}
	return out, true
}

// resolveInputsBySink indexes dataflow wires by target block, for
// constant-time input gathering per block during the propagation sweep.
func resolveInputsBySink(wires []domain.Wire) map[domain.BlockId][]domain.Wire {
	out := map[domain.BlockId][]domain.Wire{}
	for _, w := range wires {
		if w.IsEnableWire() {
			continue
		}
		out[w.TargetBlock] = append(out[w.TargetBlock], w)
	}
	return out
}

func resolveSheetLabelType(plan *flatten.Plan, types map[domain.PortRef]domain.Type, source flatten.FlatBlock) (domain.Type, bool) {
	p, err := domain.ParamsAs[domain.SheetLabelParams](source.Block.Params)
	if err != nil {
		return domain.Type{}, false
	}
	for _, fb := range plan.Blocks {
		if fb.Block.Kind != domain.KindSheetLabelSink || fb.Scope != source.Scope {
			continue
		}
		sinkParams, err := domain.ParamsAs[domain.SheetLabelParams](fb.Block.Params)
		if err != nil || sinkParams.SignalName != p.SignalName {
			continue
		}
		// A sink has no output ports of its own; its effective type is
		// whatever fed its single input, found by locating the wire
		// targeting it.
		for _, w := range plan.Wires {
			if w.TargetBlock == fb.Block.ID && w.TargetPort == 0 {
				if t, ok := types[domain.PortRef{Block: w.SourceBlock, Port: w.SourcePort}]; ok {
					return t, true
				}
			}
		}
	}
	return domain.Type{}, false
}
