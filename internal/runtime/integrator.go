package runtime

import (
	"fmt"
	"math"

	"github.com/smilemakc/blockflow/internal/blocks"
	"github.com/smilemakc/blockflow/internal/domain"
	"github.com/smilemakc/blockflow/internal/flatten"
)

// stateMagnitudeLimit is the divergence guard spec.md §4.6 requires: any
// committed state component outside [-limit, limit], or any NaN/Inf
// derivative or state, rejects the step rather than committing garbage.
const stateMagnitudeLimit = 1e10

// Integrator advances every stateful (transfer_function) block's
// integration state by one timestep. RK4 re-runs the algebraic evaluator
// at each stage's midpoint/endpoint time so a stateful block's input
// reflects the rest of the diagram rather than a value frozen at the
// sweep that preceded the step, per spec.md §4.6. Grounded on the
// teacher's internal/engine.Executor sequential-walk idiom, generalized
// from a single pass to the four-stage snapshot/restore RK4 requires.
type Integrator struct {
	registry  *blocks.Registry
	evaluator *Evaluator
	method    domain.IntegrationMethod
}

// NewIntegrator builds an Integrator using method ("euler" or "rk4";
// anything else falls back to euler).
func NewIntegrator(registry *blocks.Registry, evaluator *Evaluator, method domain.IntegrationMethod) *Integrator {
	return &Integrator{registry: registry, evaluator: evaluator, method: method}
}

// Step advances sim's stateful blocks by sim.Dt, leaving sim.Time
// unchanged (the orchestrator advances it after the full tick) and
// sim.Signals holding whatever the last algebraic sweep produced. Returns
// a numerical-instability diagnostic (and leaves state untouched) instead
// of an error when a stage's result diverges, since divergence is a
// property of the model, not a structural failure of the run.
func (in *Integrator) Step(plan *flatten.Plan, sim *domain.SimulationState, skip SkipFunc) ([]domain.Diagnostic, error) {
	ids := in.statefulBlocks(plan)
	if len(ids) == 0 {
		return nil, nil
	}

	if in.method == domain.IntegrationRK4 {
		return in.stepRK4(plan, sim, ids, skip)
	}
	return in.stepEuler(plan, sim, ids, skip)
}

func (in *Integrator) statefulBlocks(plan *flatten.Plan) []domain.BlockId {
	var out []domain.BlockId
	for _, id := range plan.Order {
		fb, ok := plan.Blocks[id]
		if !ok {
			continue
		}
		mod, err := in.registry.Get(fb.Block.Kind)
		if err != nil {
			continue
		}
		if mod.RequiresState(fb.Block.Params) {
			out = append(out, id)
		}
	}
	return out
}

func (in *Integrator) stepEuler(plan *flatten.Plan, sim *domain.SimulationState, ids []domain.BlockId, skip SkipFunc) ([]domain.Diagnostic, error) {
	x0 := snapshotStates(sim, ids)
	k1, err := in.derivativesForAll(plan, sim, ids)
	if err != nil {
		return nil, err
	}

	final := combineStage(x0, []map[domain.BlockId][]float64{k1}, []float64{sim.Dt})
	if !validStates(final) {
		return diverged(), nil
	}
	commitStates(sim, ids, final)
	return nil, nil
}

// stepRK4 implements the classic four-stage Runge-Kutta scheme. Between
// stages it writes the trial state directly into each block's
// TransferFunctionState and re-runs a quiet algebraic sweep so every
// other block's output (and hence each stateful block's input) reflects
// that trial state before the next stage's derivative is sampled.
func (in *Integrator) stepRK4(plan *flatten.Plan, sim *domain.SimulationState, ids []domain.BlockId, skip SkipFunc) ([]domain.Diagnostic, error) {
	t0 := sim.Time
	x0 := snapshotStates(sim, ids)

	restore := func() {
		commitStates(sim, ids, x0)
		sim.Time = t0
	}

	k1, err := in.derivativesForAll(plan, sim, ids)
	if err != nil {
		restore()
		return nil, err
	}

	stage2 := combineStage(x0, []map[domain.BlockId][]float64{k1}, []float64{sim.Dt / 2})
	commitStates(sim, ids, stage2)
	sim.Time = t0 + sim.Dt/2
	in.evaluator.Sweep(plan, sim, skip, true)
	k2, err := in.derivativesForAll(plan, sim, ids)
	if err != nil {
		restore()
		return nil, err
	}

	stage3 := combineStage(x0, []map[domain.BlockId][]float64{k2}, []float64{sim.Dt / 2})
	commitStates(sim, ids, stage3)
	sim.Time = t0 + sim.Dt/2
	in.evaluator.Sweep(plan, sim, skip, true)
	k3, err := in.derivativesForAll(plan, sim, ids)
	if err != nil {
		restore()
		return nil, err
	}

	stage4 := combineStage(x0, []map[domain.BlockId][]float64{k3}, []float64{sim.Dt})
	commitStates(sim, ids, stage4)
	sim.Time = t0 + sim.Dt
	in.evaluator.Sweep(plan, sim, skip, true)
	k4, err := in.derivativesForAll(plan, sim, ids)
	if err != nil {
		restore()
		return nil, err
	}

	final := combineStage(x0,
		[]map[domain.BlockId][]float64{k1, k2, k3, k4},
		[]float64{sim.Dt / 6, sim.Dt / 3, sim.Dt / 3, sim.Dt / 6})
	if !validStates(final) {
		restore()
		return diverged(), nil
	}

	commitStates(sim, ids, final)
	sim.Time = t0
	return nil, nil
}

func diverged() []domain.Diagnostic {
	return []domain.Diagnostic{domain.NewDiagnostic(domain.SeverityError, domain.CategoryNumerical, domain.BlockId{},
		"integration step rejected: state diverged (NaN, Inf, or magnitude beyond 1e10)")}
}

// derivativesForAll evaluates every stateful block's current derivative
// vector from sim's present signals and time.
func (in *Integrator) derivativesForAll(plan *flatten.Plan, sim *domain.SimulationState, ids []domain.BlockId) (map[domain.BlockId][]float64, error) {
	inputsBySink := inputsBySinkBlock(plan.Wires)
	broken := brokenSet(plan.BrokenEdges)
	out := make(map[domain.BlockId][]float64, len(ids))
	for _, id := range ids {
		fb := plan.Blocks[id]
		mod, err := in.registry.Get(fb.Block.Kind)
		if err != nil {
			return nil, err
		}
		sm, ok := mod.(blocks.StatefulModule)
		if !ok {
			return nil, fmt.Errorf("runtime: block %s declares state but has no StatefulModule", id)
		}
		st := sim.Blocks[id]
		inputs, complete := gatherInputs(sim.Signals, sim.Signals, broken, inputsBySink[id])
		if !complete {
			return nil, fmt.Errorf("runtime: block %s: inputs unavailable for derivative evaluation", id)
		}
		d, err := sm.Derivatives(st, inputs, sim.Time, fb.Block.Params)
		if err != nil {
			return nil, fmt.Errorf("runtime: block %s: %w", id, err)
		}
		out[id] = d
	}
	return out, nil
}

func snapshotStates(sim *domain.SimulationState, ids []domain.BlockId) map[domain.BlockId][]float64 {
	out := make(map[domain.BlockId][]float64, len(ids))
	for _, id := range ids {
		out[id] = flattenState(sim.Blocks[id].Internal)
	}
	return out
}

func flattenState(s *domain.TransferFunctionState) []float64 {
	flat := make([]float64, 0, s.ElementCount*s.Order)
	for _, row := range s.X {
		flat = append(flat, row...)
	}
	return flat
}

func unflattenInto(s *domain.TransferFunctionState, flat []float64) {
	idx := 0
	for i := range s.X {
		for j := range s.X[i] {
			s.X[i][j] = flat[idx]
			idx++
		}
	}
}

// combineStage computes, for each block, x0 + sum(coeffs[i] * stages[i]),
// element-wise over its flat state vector.
func combineStage(x0 map[domain.BlockId][]float64, stages []map[domain.BlockId][]float64, coeffs []float64) map[domain.BlockId][]float64 {
	out := make(map[domain.BlockId][]float64, len(x0))
	for id, base := range x0 {
		acc := append([]float64(nil), base...)
		for s, stage := range stages {
			d := stage[id]
			c := coeffs[s]
			for i := range acc {
				acc[i] += c * d[i]
			}
		}
		out[id] = acc
	}
	return out
}

func validStates(states map[domain.BlockId][]float64) bool {
	for _, xs := range states {
		for _, x := range xs {
			if math.IsNaN(x) || math.IsInf(x, 0) || math.Abs(x) > stateMagnitudeLimit {
				return false
			}
		}
	}
	return true
}

func commitStates(sim *domain.SimulationState, ids []domain.BlockId, states map[domain.BlockId][]float64) {
	for _, id := range ids {
		unflattenInto(sim.Blocks[id].Internal, states[id])
	}
}
