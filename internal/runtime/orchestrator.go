package runtime

import (
	"fmt"

	"github.com/smilemakc/blockflow/internal/blocks"
	"github.com/smilemakc/blockflow/internal/domain"
	"github.com/smilemakc/blockflow/internal/flatten"
	"github.com/smilemakc/blockflow/internal/propagator"
)

// Orchestrator drives a flattened Plan across the whole simulation
// duration: one algebraic sweep plus one integration step per tick, with
// subsystem enable-state bookkeeping in between. Implements the seven-
// step tick of spec.md §4.7. Steps 2 ("algebraic sweep") and 3
// ("propagate internal output_port values outward") collapse into the
// single Evaluator.Sweep call below: the flattener already rewires a
// subsystem's internal output_port directly onto its external consumer
// (internal/flatten's boundary resolution), so one global topological
// sweep over the unified plan delivers both. Step 4 ("collect display/
// logger samples") likewise happens inline during that same sweep, since
// signal_display/signal_logger blocks are ordinary plan members whose
// Algebraic caches the observed value on their own BlockState.
type Orchestrator struct {
	plan       *flatten.Plan
	registry   *blocks.Registry
	evaluator  *Evaluator
	integrator *Integrator
	hostInputs blocks.HostInputProvider

	subsystemOrder []domain.BlockId // root-to-leaf, so parents resolve before children
}

// NewOrchestrator builds an Orchestrator for plan. hostInputs may be nil,
// in which case root-level input_port blocks always fall back to their
// declared default value.
func NewOrchestrator(plan *flatten.Plan, registry *blocks.Registry, method domain.IntegrationMethod, hostInputs blocks.HostInputProvider) *Orchestrator {
	eval := NewEvaluator(registry)
	o := &Orchestrator{
		plan:       plan,
		registry:   registry,
		evaluator:  eval,
		integrator: NewIntegrator(registry, eval, method),
		hostInputs: hostInputs,
	}
	o.subsystemOrder = o.computeSubsystemOrder()
	return o
}

// Init allocates per-block runtime state: zeroed BlockState for every
// block, integrator state for every stateful block (sized from its
// resolved input type via types), and an initially-enabled EnableState
// for every subsystem (root assumption: everything runs until a disable
// signal says otherwise, per spec.md §4.7's enable semantics).
func (o *Orchestrator) Init(sim *domain.SimulationState, types propagator.Result) error {
	for id, fb := range o.plan.Blocks {
		mod, err := o.registry.Get(fb.Block.Kind)
		if err != nil {
			return fmt.Errorf("runtime: init block %s: %w", id, err)
		}
		st := &domain.BlockState{}
		sim.Blocks[id] = st
		if !mod.RequiresState(fb.Block.Params) {
			continue
		}
		sm, ok := mod.(blocks.StatefulModule)
		if !ok {
			return fmt.Errorf("runtime: block %s declares state but has no StatefulModule", id)
		}
		inTypes := resolveInputTypes(o.plan, types.Types, id)
		state, err := sm.InitState(inTypes, fb.Block.Params)
		if err != nil {
			return fmt.Errorf("runtime: init block %s state: %w", id, err)
		}
		st.Internal = state
	}

	for id := range o.plan.Subsystems {
		sim.Enables[id] = domain.NewEnableState(true, sim.Time)
	}
	return nil
}

// Tick runs one full simulation step at sim.Time, advancing sim.Time by
// sim.Dt on return. Diagnostics accumulate across the sweep, the enable
// recompute and the integration step; a non-nil error means the
// integrator's derivative evaluation itself failed (a structural problem,
// not mere numerical divergence, which is reported as a diagnostic
// instead).
func (o *Orchestrator) Tick(sim *domain.SimulationState) ([]domain.Diagnostic, error) {
	var diags []domain.Diagnostic

	skip := o.skipFunc(sim)
	diags = append(diags, o.evaluator.Sweep(o.plan, sim, skip, false)...)

	diags = append(diags, o.recomputeEnables(sim)...)

	intDiags, err := o.integrator.Step(o.plan, sim, skip)
	diags = append(diags, intDiags...)
	if err != nil {
		return diags, err
	}

	sim.Time += sim.Dt
	return diags, nil
}

// Run ticks sim forward from its current time through sim.Duration.
func (o *Orchestrator) Run(sim *domain.SimulationState) ([]domain.Diagnostic, error) {
	var diags []domain.Diagnostic
	const epsilon = 1e-9
	for sim.Time < sim.Duration-epsilon {
		d, err := o.Tick(sim)
		diags = append(diags, d...)
		if err != nil {
			return diags, err
		}
	}
	return diags, nil
}

// skipFunc builds the per-tick SkipFunc the evaluator consults: it
// injects a host-supplied value for a root-scope input_port in place of
// calling Algebraic, and freezes every block inside a currently-disabled
// subsystem (republishing output_port's frozen snapshot so its external
// consumer still sees a steady last-known value, per I7).
func (o *Orchestrator) skipFunc(sim *domain.SimulationState) SkipFunc {
	return func(id domain.BlockId) (bool, []domain.SignalValue) {
		fb, ok := o.plan.Blocks[id]
		if !ok {
			return false, nil
		}

		if fb.Scope.IsZero() && fb.Block.Kind == domain.KindInputPort && o.hostInputs != nil {
			if p, err := domain.ParamsAs[domain.InputPortParams](fb.Block.Params); err == nil {
				if v, found := o.hostInputs.Lookup(p.PortName); found {
					return true, []domain.SignalValue{v}
				}
			}
		}

		if fb.Scope.IsZero() {
			return false, nil
		}
		es := sim.Enables[fb.Scope]
		if es == nil || es.Effective {
			return false, nil
		}

		st := sim.Blocks[id]
		if st != nil && st.FrozenOutputs != nil {
			return true, st.FrozenOutputs
		}
		if fb.Block.Kind == domain.KindOutputPort && st != nil {
			return true, st.Outputs
		}
		return true, nil
	}
}

// recomputeEnables walks subsystems root-to-leaf, computing each one's
// raw enable signal (from its enable wire's source value this sweep, or
// true if unwired) ANDed with its parent's already-updated effective
// state, and freezes the entire transitive subtree the instant a
// subsystem transitions from enabled to disabled.
func (o *Orchestrator) recomputeEnables(sim *domain.SimulationState) []domain.Diagnostic {
	for _, id := range o.subsystemOrder {
		info := o.plan.Subsystems[id]
		es := sim.Enables[id]
		if es == nil {
			es = domain.NewEnableState(true, sim.Time)
			sim.Enables[id] = es
		}

		raw := o.rawEnableSignal(sim, id)
		parentEffective := true
		if !info.Scope.IsZero() {
			if parentEs := sim.Enables[info.Scope]; parentEs != nil {
				parentEffective = parentEs.Effective
			}
		}
		effective := raw && parentEffective

		es.PrevEffective = es.Effective
		es.Raw = raw
		es.Effective = effective
		transitioned := es.Transitioned()

		if effective && transitioned {
			es.EnabledAtTime = sim.Time
		}
		if !effective && transitioned {
			o.freezeSubtree(sim, id)
		}
	}
	return nil
}

func (o *Orchestrator) rawEnableSignal(sim *domain.SimulationState, id domain.BlockId) bool {
	wire, ok := o.plan.EnableWires[id]
	if !ok {
		return true
	}
	v, ok := sim.Signals[domain.PortRef{Block: wire.SourceBlock, Port: wire.SourcePort}]
	if !ok {
		return true
	}
	return v.Truthy()
}

// freezeSubtree snapshots the current Outputs of every block whose scope
// chain passes through subsystemID, the moment that subsystem's effective
// enable state goes false.
func (o *Orchestrator) freezeSubtree(sim *domain.SimulationState, subsystemID domain.BlockId) {
	for id, fb := range o.plan.Blocks {
		if !o.scopeWithin(fb.Scope, subsystemID) {
			continue
		}
		if st := sim.Blocks[id]; st != nil {
			st.FrozenOutputs = st.CloneOutputs()
		}
	}
}

func (o *Orchestrator) scopeWithin(scope, ancestor domain.BlockId) bool {
	for !scope.IsZero() {
		if scope == ancestor {
			return true
		}
		info, ok := o.plan.Subsystems[scope]
		if !ok {
			return false
		}
		scope = info.Scope
	}
	return false
}

// computeSubsystemOrder topologically sorts plan.Subsystems by scope
// nesting (root subsystems first), so recomputeEnables always sees a
// parent's freshly updated Effective before computing its child's.
func (o *Orchestrator) computeSubsystemOrder() []domain.BlockId {
	var order []domain.BlockId
	placed := map[domain.BlockId]bool{}
	remaining := make([]domain.BlockId, 0, len(o.plan.Subsystems))
	for id := range o.plan.Subsystems {
		remaining = append(remaining, id)
	}

	for len(remaining) > 0 {
		var next []domain.BlockId
		progressed := false
		for _, id := range remaining {
			info := o.plan.Subsystems[id]
			if info.Scope.IsZero() || placed[info.Scope] {
				order = append(order, id)
				placed[id] = true
				progressed = true
			} else {
				next = append(next, id)
			}
		}
		if !progressed {
			// Malformed hierarchy (a subsystem scoped to itself or a cycle
			// through Subsystems); append what's left in arbitrary order
			// rather than looping forever.
			order = append(order, remaining...)
			break
		}
		remaining = next
	}
	return order
}

// resolveInputTypes finds the resolved types feeding a block's input
// ports from the propagator's (source-block,port)->type map, indexed by
// this block's own wiring.
func resolveInputTypes(plan *flatten.Plan, types map[domain.PortRef]domain.Type, id domain.BlockId) []domain.Type {
	var wires []domain.Wire
	for _, w := range plan.Wires {
		if w.TargetBlock == id && !w.IsEnableWire() {
			wires = append(wires, w)
		}
	}
	if len(wires) == 0 {
		return nil
	}
	maxPort := 0
	for _, w := range wires {
		if w.TargetPort > maxPort {
			maxPort = w.TargetPort
		}
	}
	out := make([]domain.Type, maxPort+1)
	for _, w := range wires {
		if t, ok := types[domain.PortRef{Block: w.SourceBlock, Port: w.SourcePort}]; ok {
			out[w.TargetPort] = t
		}
	}
	return out
}
