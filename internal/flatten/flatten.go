// Package flatten walks a Model's sheet/subsystem hierarchy into one flat,
// globally ordered execution plan: it resolves subsystem-boundary wires
// into direct edges between the blocks that actually produce and consume
// values, builds a dependency graph over the result, and topologically
// sorts it. Subsystem blocks themselves never appear in the emitted order
// — they are containers, not executable units (spec.md §4.4.8).
package flatten

import (
	"fmt"

	"github.com/katalvlaran/lvlath/core"
	"github.com/katalvlaran/lvlath/dfs"
	"github.com/rs/zerolog/log"

	"github.com/smilemakc/blockflow/internal/domain"
	domainerrors "github.com/smilemakc/blockflow/internal/domain/errors"
)

// FlatBlock is one block after hierarchy resolution: its identity, the
// sheet it physically lives on, and the subsystem scope enclosing it
// (zero BlockId for root scope).
type FlatBlock struct {
	Block domain.Block
	Sheet domain.SheetId
	Scope domain.BlockId
}

// SubsystemInfo records a subsystem block's identity and its own
// enclosing scope, so the orchestrator can walk the ancestor chain to
// compute an effective (AND-of-ancestors) enable state and to freeze the
// entire transitive subtree on disable.
type SubsystemInfo struct {
	ID      domain.BlockId
	Scope   domain.BlockId // this subsystem's own enclosing scope (zero = root)
	HasBody bool
}

// Plan is the flattener's output: every non-subsystem block in dependency
// order, the resolved global wire set used to build that order, the
// subsystem hierarchy (for enable-state computation), and any wires the
// loop-breaking policy discarded.
type Plan struct {
	Blocks      map[domain.BlockId]FlatBlock
	Order       []domain.BlockId
	Wires       []domain.Wire
	EnableWires map[domain.BlockId]domain.Wire   // subsystem block id -> its enable wire, if any
	Subsystems  map[domain.BlockId]SubsystemInfo // subsystem block id -> its hierarchy info
	BrokenEdges []domain.Wire
}

// subsystemBody returns the subsystem's single implementing sheet.
// Subsystems may declare more than one sheet in their parameters (mirroring
// a Model's own top-level sheet list) but only the first is the
// subsystem's executable body; any others are inert reference sheets, the
// same convention Model.RootSheet() applies at the top level.
func subsystemBody(p domain.SubsystemParams) (domain.Sheet, error) {
	if len(p.Sheets) == 0 {
		return domain.Sheet{}, fmt.Errorf("subsystem: no embedded sheets")
	}
	return p.Sheets[0], nil
}

// walker accumulates flattened blocks and synthesized wires as it recurses
// the sheet tree.
type walker struct {
	blocks      map[domain.BlockId]FlatBlock
	wires       []domain.Wire
	enableWires map[domain.BlockId]domain.Wire
	subsystems  map[domain.BlockId]SubsystemInfo
	diagnostics []domain.Diagnostic
}

// Flatten resolves m's subsystem hierarchy into a single execution Plan.
func Flatten(m domain.Model) (*Plan, []domain.Diagnostic, error) {
	root, ok := m.RootSheet()
	if !ok {
		return nil, nil, domainerrors.NewStructuralError("", "", "model has no sheets")
	}

	w := &walker{
		blocks:      make(map[domain.BlockId]FlatBlock),
		enableWires: make(map[domain.BlockId]domain.Wire),
		subsystems:  make(map[domain.BlockId]SubsystemInfo),
	}
	if err := w.walkSheet(root, domain.BlockId{}, nil); err != nil {
		return nil, w.diagnostics, err
	}

	order, broken, err := w.planOrder(m.GlobalSettings.EffectiveLoopPolicy())
	if err != nil {
		return nil, w.diagnostics, err
	}

	return &Plan{
		Blocks:      w.blocks,
		Order:       order,
		Wires:       w.wires,
		EnableWires: w.enableWires,
		Subsystems:  w.subsystems,
		BrokenEdges: broken,
	}, w.diagnostics, nil
}

// walkSheet records every non-subsystem block of sheet under scope, wires
// them per the dataflow rules, and recurses into any subsystem's body,
// threading outerWires (the wires on the sheet one level up that connect
// to the subsystem block we're currently descending into) so that
// input_port/output_port blocks can be rewired directly to their external
// counterparts.
func (w *walker) walkSheet(sheet domain.Sheet, scope domain.BlockId, outer *subsystemLink) error {
	byID := make(map[domain.BlockId]domain.Block, len(sheet.Blocks))
	for _, b := range sheet.Blocks {
		byID[b.ID] = b
	}

	for _, b := range sheet.Blocks {
		if b.Kind != domain.KindSubsystem {
			w.blocks[b.ID] = FlatBlock{Block: b, Sheet: sheet.ID, Scope: scope}
			continue
		}

		p, err := domain.ParamsAs[domain.SubsystemParams](b.Params)
		if err != nil {
			return fmt.Errorf("subsystem %s: %w", b.ID, err)
		}
		body, err := subsystemBody(*p)
		if err != nil {
			return fmt.Errorf("subsystem %s: %w", b.ID, err)
		}

		link := &subsystemLink{
			subsystem:   b,
			inputPorts:  p.InputPorts,
			outputPorts: p.OutputPorts,
			externalIn:  externalWiresInto(sheet.Wires, b.ID),
			externalOut: externalWiresFrom(sheet.Wires, b.ID),
		}
		if enable, ok := enableWireInto(sheet.Wires, b.ID); ok {
			w.enableWires[b.ID] = enable
		}
		w.subsystems[b.ID] = SubsystemInfo{ID: b.ID, Scope: scope, HasBody: true}

		if err := w.walkSheet(body, b.ID, link); err != nil {
			return err
		}
	}

	// Plain dataflow wires on this sheet, excluding any that target or
	// source the subsystem blocks we just inlined away (those were
	// resolved above via externalIn/externalOut) and excluding enable
	// wires (they gate, they don't feed data).
	for _, wire := range sheet.Wires {
		if wire.IsEnableWire() {
			continue
		}
		if srcIsSubsystem(byID, wire.SourceBlock) || targetIsSubsystem(byID, wire.TargetBlock) {
			continue
		}
		w.wires = append(w.wires, wire)
	}

	if outer != nil {
		w.resolveSubsystemBoundary(sheet, outer)
	}
	return nil
}

// subsystemLink carries a subsystem block's declared port names and the
// wires connecting it to its parent sheet, so its body's input_port/
// output_port blocks can be rewired to bypass the subsystem entirely.
type subsystemLink struct {
	subsystem   domain.Block
	inputPorts  []string
	outputPorts []string
	externalIn  []domain.Wire // parent-sheet wires targeting the subsystem block
	externalOut []domain.Wire // parent-sheet wires sourced from the subsystem block
}

// resolveSubsystemBoundary synthesizes direct wires between a subsystem's
// external neighbors and its internal input_port/output_port blocks,
// matching by declared port index against the subsystem's inputPorts/
// outputPorts name lists.
func (w *walker) resolveSubsystemBoundary(body domain.Sheet, link *subsystemLink) {
	inputBlockByName := map[string]domain.BlockId{}
	outputBlockByName := map[string]domain.BlockId{}
	for _, b := range body.Blocks {
		switch b.Kind {
		case domain.KindInputPort:
			if p, err := domain.ParamsAs[domain.InputPortParams](b.Params); err == nil {
				inputBlockByName[p.PortName] = b.ID
			}
		case domain.KindOutputPort:
			if p, err := domain.ParamsAs[domain.OutputPortParams](b.Params); err == nil {
				outputBlockByName[p.PortName] = b.ID
			}
		}
	}

	for _, ext := range link.externalIn {
		if ext.TargetPort < 0 || ext.TargetPort >= len(link.inputPorts) {
			continue
		}
		name := link.inputPorts[ext.TargetPort]
		if internalID, ok := inputBlockByName[name]; ok {
			w.wires = append(w.wires, domain.Wire{
				SourceBlock: ext.SourceBlock, SourcePort: ext.SourcePort,
				TargetBlock: internalID, TargetPort: 0,
			})
		}
	}
	for _, ext := range link.externalOut {
		if ext.SourcePort < 0 || ext.SourcePort >= len(link.outputPorts) {
			continue
		}
		name := link.outputPorts[ext.SourcePort]
		if internalID, ok := outputBlockByName[name]; ok {
			w.wires = append(w.wires, domain.Wire{
				SourceBlock: internalID, SourcePort: 0,
				TargetBlock: ext.TargetBlock, TargetPort: ext.TargetPort,
			})
		}
	}
}

func externalWiresInto(wires []domain.Wire, target domain.BlockId) []domain.Wire {
	var out []domain.Wire
	for _, w := range wires {
		if w.TargetBlock == target && !w.IsEnableWire() {
			out = append(out, w)
		}
	}
	return out
}

func externalWiresFrom(wires []domain.Wire, source domain.BlockId) []domain.Wire {
	var out []domain.Wire
	for _, w := range wires {
		if w.SourceBlock == source {
			out = append(out, w)
		}
	}
	return out
}

func enableWireInto(wires []domain.Wire, target domain.BlockId) (domain.Wire, bool) {
	for _, w := range wires {
		if w.TargetBlock == target && w.IsEnableWire() {
			return w, true
		}
	}
	return domain.Wire{}, false
}

func srcIsSubsystem(byID map[domain.BlockId]domain.Block, id domain.BlockId) bool {
	b, ok := byID[id]
	return ok && b.Kind == domain.KindSubsystem
}

func targetIsSubsystem(byID map[domain.BlockId]domain.Block, id domain.BlockId) bool {
	b, ok := byID[id]
	return ok && b.Kind == domain.KindSubsystem
}

// planOrder builds the global dependency graph over w.blocks/w.wires and
// topologically sorts it via lvlath/dfs, applying policy when a cycle is
// found.
func (w *walker) planOrder(policy domain.AlgebraicLoopPolicy) ([]domain.BlockId, []domain.Wire, error) {
	wires := append([]domain.Wire(nil), w.wires...)
	wires = append(wires, sheetLabelEdges(w.blocks)...)

	var broken []domain.Wire
	for {
		g := core.NewGraph(core.WithDirected(true))
		for id := range w.blocks {
			_ = g.AddVertex(id.String())
		}
		for _, wire := range wires {
			if _, err := g.AddEdge(wire.SourceBlock.String(), wire.TargetBlock.String(), 0); err != nil {
				return nil, nil, fmt.Errorf("flatten: building dependency graph: %w", err)
			}
		}

		order, err := dfs.TopologicalSort(g)
		if err == nil {
			ids := make([]domain.BlockId, 0, len(order))
			for _, s := range order {
				id, perr := domain.ParseBlockId(s)
				if perr != nil {
					return nil, nil, perr
				}
				ids = append(ids, id)
			}
			return ids, broken, nil
		}

		if policy == domain.LoopPolicyError {
			return nil, nil, domainerrors.NewTopologyError(nil, err.Error())
		}

		// "break" policy: drop one edge of a cycle and retry. findCycleEdge
		// performs its own DFS to locate a concrete back-edge, since
		// lvlath's TopologicalSort reports only that a cycle exists.
		victim, found := findCycleEdge(w.blocks, wires)
		if !found {
			return nil, nil, fmt.Errorf("flatten: algebraic cycle detected but no back-edge located: %w", err)
		}
		log.Warn().
			Str("source", victim.SourceBlock.String()).
			Str("target", victim.TargetBlock.String()).
			Msg("breaking algebraic loop: using previous-step value for this edge")
		broken = append(broken, victim)
		w.diagnostics = append(w.diagnostics, domain.NewDiagnostic(
			domain.SeverityWarning, domain.CategoryTopology, victim.TargetBlock,
			"algebraic loop broken: this input uses the previous step's value",
		))
		wires = removeWire(wires, victim)
	}
}

// sheetLabelEdges adds a dependency from every sheet_label_source to every
// sheet_label_sink sharing its (scope, name), per spec.md §4.3's fourth
// edge-contribution rule.
func sheetLabelEdges(blocks map[domain.BlockId]FlatBlock) []domain.Wire {
	type key struct {
		scope domain.BlockId
		name  string
	}
	sinks := map[key][]domain.BlockId{}
	for id, fb := range blocks {
		if fb.Block.Kind != domain.KindSheetLabelSink {
			continue
		}
		p, err := domain.ParamsAs[domain.SheetLabelParams](fb.Block.Params)
		if err != nil {
			continue
		}
		k := key{scope: fb.Scope, name: p.SignalName}
		sinks[k] = append(sinks[k], id)
	}

	var edges []domain.Wire
	for id, fb := range blocks {
		if fb.Block.Kind != domain.KindSheetLabelSource {
			continue
		}
		p, err := domain.ParamsAs[domain.SheetLabelParams](fb.Block.Params)
		if err != nil {
			continue
		}
		k := key{scope: fb.Scope, name: p.SignalName}
		for _, sinkID := range sinks[k] {
			edges = append(edges, domain.Wire{SourceBlock: sinkID, SourcePort: 0, TargetBlock: id, TargetPort: 0})
		}
	}
	return edges
}

func removeWire(wires []domain.Wire, victim domain.Wire) []domain.Wire {
	out := wires[:0]
	removed := false
	for _, w := range wires {
		if !removed && w == victim {
			removed = true
			continue
		}
		out = append(out, w)
	}
	return out
}

// findCycleEdge runs a 3-color DFS over blocks/wires and returns the first
// back-edge it encounters (an edge into a vertex currently on the
// recursion stack), the concrete wire the "break" policy discards.
func findCycleEdge(blocks map[domain.BlockId]FlatBlock, wires []domain.Wire) (domain.Wire, bool) {
	adj := map[domain.BlockId][]domain.Wire{}
	for _, w := range wires {
		adj[w.SourceBlock] = append(adj[w.SourceBlock], w)
	}

	const white, gray, black = 0, 1, 2
	state := map[domain.BlockId]int{}
	var found domain.Wire
	var ok bool

	var visit func(id domain.BlockId) bool
	visit = func(id domain.BlockId) bool {
		state[id] = gray
		for _, w := range adj[id] {
			switch state[w.TargetBlock] {
			case gray:
				found, ok = w, true
				return true
			case white:
				if visit(w.TargetBlock) {
					return true
				}
			}
		}
		state[id] = black
		return false
	}

	for id := range blocks {
		if state[id] == white {
			if visit(id) {
				return found, ok
			}
		}
	}
	return domain.Wire{}, false
}
