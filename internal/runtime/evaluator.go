// Package runtime executes a flattened Plan: the algebraic evaluator runs
// one topological sweep per step, the integrator advances stateful
// (transfer_function) state between sweeps, and the orchestrator drives
// both across the whole sheet/subsystem hierarchy per spec.md §4.5-§4.7.
// Grounded on the teacher's orphaned internal/engine.Executor, whose
// sequential topological-walk-then-propagate shape is kept; the per-edge
// domain.Edge.Traverse step is replaced by a plain (block,port)->value
// signal map, since blocks here produce typed SignalValues directly
// rather than transformed NodeOutputs.
package runtime

import (
	"github.com/smilemakc/blockflow/internal/blocks"
	"github.com/smilemakc/blockflow/internal/domain"
	"github.com/smilemakc/blockflow/internal/flatten"
)

// SkipFunc lets a caller override one block's evaluation for a sweep: when
// it reports skip=true, the evaluator neither calls the block's Algebraic
// nor resets its cached state, publishing frozenOutputs (if non-nil) as
// this block's signals instead. Used by the orchestrator to freeze a
// disabled subsystem's blocks and to inject host-supplied root input_port
// values without special-casing either inside the evaluator itself.
type SkipFunc func(id domain.BlockId) (skip bool, frozenOutputs []domain.SignalValue)

// Evaluator runs one algebraic sweep of a Plan's topologically ordered
// blocks, gathering each block's inputs from already-computed signals
// earlier in the same sweep.
type Evaluator struct {
	registry *blocks.Registry
}

// NewEvaluator builds an Evaluator dispatching through registry.
func NewEvaluator(registry *blocks.Registry) *Evaluator {
	return &Evaluator{registry: registry}
}

// Sweep evaluates every block in plan.Order once, in order, writing
// results into sim.Signals and sim.Blocks. sim.Signals is reset first:
// per spec.md §4.2 it holds only this sweep's values, never a stale
// carry-over from the previous step. When quiet is true, signal_display
// and signal_logger blocks are skipped entirely (their output feeds no
// one else, so this only suppresses their observation side effects,
// e.g. the repeated intermediate-time samples an RK4 sub-stage would
// otherwise produce).
func (e *Evaluator) Sweep(plan *flatten.Plan, sim *domain.SimulationState, skip SkipFunc, quiet bool) []domain.Diagnostic {
	var diags []domain.Diagnostic
	prev := sim.Signals
	sim.Signals = make(map[domain.PortRef]domain.SignalValue, len(prev))
	inputsBySink := inputsBySinkBlock(plan.Wires)
	broken := brokenSet(plan.BrokenEdges)

	for _, id := range plan.Order {
		fb, ok := plan.Blocks[id]
		if !ok {
			continue
		}

		st := sim.Blocks[id]
		if st == nil {
			st = &domain.BlockState{}
			sim.Blocks[id] = st
		}

		if quiet && (fb.Block.Kind == domain.KindSignalDisplay || fb.Block.Kind == domain.KindSignalLogger) {
			continue
		}

		if skip != nil {
			if doSkip, frozen := skip(id); doSkip {
				if frozen != nil {
					st.Outputs = frozen
					publish(sim, id, st.Outputs)
				}
				continue
			}
		}

		mod, err := e.registry.Get(fb.Block.Kind)
		if err != nil {
			diags = append(diags, domain.NewDiagnostic(domain.SeverityError, domain.CategoryStructural, id, err.Error()))
			continue
		}

		inputs, complete := gatherInputs(sim.Signals, prev, broken, inputsBySink[id])
		if !complete {
			diags = append(diags, domain.NewDiagnostic(domain.SeverityWarning, domain.CategoryTopology, id, "skipped: one or more inputs unavailable this step"))
			continue
		}

		ctx := &domain.StepContext{Time: sim.Time, Dt: sim.Dt, Scope: fb.Scope, Labels: sim.Labels}
		if err := mod.Algebraic(st, inputs, ctx, fb.Block.Params); err != nil {
			diags = append(diags, domain.NewDiagnostic(domain.SeverityError, domain.CategoryNumerical, id, err.Error()))
			continue
		}
		publish(sim, id, st.Outputs)
	}
	return diags
}

func publish(sim *domain.SimulationState, id domain.BlockId, outputs []domain.SignalValue) {
	for port, v := range outputs {
		sim.Signals[domain.PortRef{Block: id, Port: port}] = v
	}
}

func inputsBySinkBlock(wires []domain.Wire) map[domain.BlockId][]domain.Wire {
	out := map[domain.BlockId][]domain.Wire{}
	for _, w := range wires {
		if w.IsEnableWire() {
			continue
		}
		out[w.TargetBlock] = append(out[w.TargetBlock], w)
	}
	return out
}

// brokenSet indexes the wires the flattener's loop-breaking policy cut out
// of the dependency graph, so the evaluator knows to read their value from
// the previous sweep instead of requiring it within the current one.
func brokenSet(wires []domain.Wire) map[domain.Wire]bool {
	out := make(map[domain.Wire]bool, len(wires))
	for _, w := range wires {
		out[w] = true
	}
	return out
}

// gatherInputs assembles a block's ordered input slice from its feeding
// wires, indexed by target port. A wire the flattener flagged as
// loop-broken is read from prev (the previous sweep's signal map) rather
// than the in-progress signals map, giving the algebraic loop its
// previous-step value per spec.md Open Question 4. Reports complete=false
// if any other wired port's source hasn't produced a value yet this sweep
// (a block upstream that was itself skipped or errored), mirroring the
// propagator's own incomplete-inputs handling.
func gatherInputs(signals, prev map[domain.PortRef]domain.SignalValue, broken map[domain.Wire]bool, wires []domain.Wire) ([]domain.SignalValue, bool) {
	if len(wires) == 0 {
		return nil, true
	}
	maxPort := 0
	for _, w := range wires {
		if w.TargetPort > maxPort {
			maxPort = w.TargetPort
		}
	}
	in := make([]domain.SignalValue, maxPort+1)
	filled := make([]bool, maxPort+1)
	for _, w := range wires {
		src := signals
		if broken[w] {
			src = prev
		}
		v, ok := src[domain.PortRef{Block: w.SourceBlock, Port: w.SourcePort}]
		if !ok {
			return nil, false
		}
		in[w.TargetPort] = v
		filled[w.TargetPort] = true
	}
	for _, f := range filled {
		if !f {
			return nil, false
		}
	}
	return in, true
}
