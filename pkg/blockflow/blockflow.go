// Package blockflow is the public façade: the three entry points a host
// needs (Validate, Simulate, GenerateC), grounded on the teacher's
// root-level mbflow.go/factory.go, which likewise re-export internal
// types as the module's public API instead of letting a host reach
// into internal/ directly.
package blockflow

import (
	"fmt"

	"github.com/smilemakc/blockflow/internal/blocks"
	"github.com/smilemakc/blockflow/internal/codegen"
	"github.com/smilemakc/blockflow/internal/domain"
	"github.com/smilemakc/blockflow/internal/flatten"
	"github.com/smilemakc/blockflow/internal/propagator"
	"github.com/smilemakc/blockflow/internal/runtime"
)

// InputProvider supplies externally-held values for a Model's root
// input_port blocks by port name; re-exported so callers never need to
// import internal/blocks directly. A nil InputProvider is valid: every
// root input_port then falls back to its declared default value.
type InputProvider = blocks.HostInputProvider

// Validate flattens and type-propagates m without simulating it,
// returning every diagnostic the structural and type-checking passes
// raise. A nil-error, non-empty result is possible: warnings do not
// block Simulate/GenerateC from proceeding.
func Validate(m domain.Model) []domain.Diagnostic {
	plan, diags, err := flatten.Flatten(m)
	if err != nil {
		return append(diags, domain.NewDiagnostic(domain.SeverityError, domain.CategoryStructural, domain.BlockId{}, err.Error()))
	}
	types := propagator.Propagate(plan, blocks.Default())
	return append(diags, types.Diagnostics...)
}

// Simulate runs m to completion and returns its recorded output time
// series alongside every diagnostic raised while flattening, type
// propagation, or ticking. A non-nil error means the plan could not even
// be built or the integrator hit a structural failure, not mere
// numerical divergence (surfaced as a CategoryNumerical diagnostic
// instead, per spec.md §7).
func Simulate(m domain.Model, inputs InputProvider) (domain.SimulationResults, []domain.Diagnostic, error) {
	results := domain.NewSimulationResults()

	plan, diags, err := flatten.Flatten(m)
	if err != nil {
		return results, diags, fmt.Errorf("blockflow: flatten: %w", err)
	}

	registry := blocks.Default()
	types := propagator.Propagate(plan, registry)
	diags = append(diags, types.Diagnostics...)

	orch := runtime.NewOrchestrator(plan, registry, m.GlobalSettings.IntegrationMethod, inputs)
	sim := domain.NewSimulationState(m.GlobalSettings.SimulationTimeStep, m.GlobalSettings.SimulationDuration)
	if err := orch.Init(sim, types); err != nil {
		return results, diags, fmt.Errorf("blockflow: init: %w", err)
	}

	outputs := rootOutputPorts(plan)

	const epsilon = 1e-9
	for sim.Time < sim.Duration-epsilon {
		tickDiags, err := orch.Tick(sim)
		diags = append(diags, tickDiags...)
		if err != nil {
			return results, diags, fmt.Errorf("blockflow: tick at t=%g: %w", sim.Time, err)
		}
		// Sample after the tick, not before: at Init every root
		// output_port's BlockState.Outputs is still empty (Algebraic
		// hasn't run yet), so a pre-loop sample would record a
		// mismatched, shorter slice per port than TimePoints.
		recordSample(&results, sim, plan, outputs)
	}

	results.FinalTime = sim.Time
	return results, diags, nil
}

// GenerateC flattens and type-propagates m, then renders it to C99 via
// internal/codegen. Returns the same validation diagnostics Validate
// would, plus any structural error codegen itself encounters.
func GenerateC(m domain.Model, opts codegen.Options) (codegen.Artifact, []domain.Diagnostic, error) {
	plan, diags, err := flatten.Flatten(m)
	if err != nil {
		return codegen.Artifact{}, diags, fmt.Errorf("blockflow: flatten: %w", err)
	}
	types := propagator.Propagate(plan, blocks.Default())
	diags = append(diags, types.Diagnostics...)

	art, err := codegen.Generate(plan, m, types, opts)
	if err != nil {
		return codegen.Artifact{}, diags, fmt.Errorf("blockflow: generate: %w", err)
	}
	return art, diags, nil
}

// rootOutputPorts lists a plan's root-scope output_port blocks, the only
// ones that surface in SimulationResults — mirroring internal/codegen's
// own rootOutputPorts, since both need the same "what is externally
// observable" notion of a model's outputs.
func rootOutputPorts(plan *flatten.Plan) []domain.BlockId {
	var ids []domain.BlockId
	for _, id := range plan.Order {
		fb := plan.Blocks[id]
		if fb.Scope.IsZero() && fb.Block.Kind == domain.KindOutputPort {
			ids = append(ids, id)
		}
	}
	return ids
}

func recordSample(results *domain.SimulationResults, sim *domain.SimulationState, plan *flatten.Plan, outputs []domain.BlockId) {
	results.TimePoints = append(results.TimePoints, sim.Time)
	for _, id := range outputs {
		st := sim.Blocks[id]
		if st == nil || len(st.Outputs) == 0 {
			continue
		}
		value := st.Outputs[0]
		results.SignalData[id] = append(results.SignalData[id], value)

		fb := plan.Blocks[id]
		if p, err := domain.ParamsAs[domain.OutputPortParams](fb.Block.Params); err == nil {
			name := p.PortName
			if name == "" {
				name = id.String()
			}
			results.Outputs[name] = value
		}
	}
}
