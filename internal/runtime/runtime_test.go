package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smilemakc/blockflow/internal/blocks"
	"github.com/smilemakc/blockflow/internal/domain"
	"github.com/smilemakc/blockflow/internal/flatten"
	"github.com/smilemakc/blockflow/internal/propagator"
)

func constantSource(id domain.BlockId, value float64) domain.Block {
	return domain.Block{ID: id, Kind: domain.KindSource, Params: domain.NewBlockParams(map[string]any{
		"signalType": "constant", "dataType": "double", "value": value,
	})}
}

func scaleBy(id domain.BlockId, gain float64) domain.Block {
	return domain.Block{ID: id, Kind: domain.KindScale, Params: domain.NewBlockParams(map[string]any{"gain": gain})}
}

func buildOrchestrator(t *testing.T, m domain.Model) (*Orchestrator, *flatten.Plan, *domain.SimulationState) {
	t.Helper()
	plan, diags, err := flatten.Flatten(m)
	require.NoError(t, err)
	require.False(t, domain.HasErrors(diags))

	types := propagator.Propagate(plan, blocks.Default())
	require.Empty(t, types.Diagnostics)

	method := m.GlobalSettings.IntegrationMethod
	o := NewOrchestrator(plan, blocks.Default(), method, nil)
	sim := domain.NewSimulationState(m.GlobalSettings.SimulationTimeStep, m.GlobalSettings.SimulationDuration)
	require.NoError(t, o.Init(sim, types))
	return o, plan, sim
}

func TestOrchestrator_SimpleChainSweep(t *testing.T) {
	src := domain.NewBlockId()
	scl := domain.NewBlockId()
	sheet := domain.Sheet{
		ID:     domain.NewSheetId(),
		Blocks: []domain.Block{constantSource(src, 2.0), scaleBy(scl, 3.0)},
		Wires:  []domain.Wire{{SourceBlock: src, SourcePort: 0, TargetBlock: scl, TargetPort: 0}},
	}
	m := domain.Model{
		Sheets: []domain.Sheet{sheet},
		GlobalSettings: domain.GlobalSettings{
			SimulationDuration: 1, SimulationTimeStep: 0.1, IntegrationMethod: domain.IntegrationEuler,
		},
	}

	o, _, sim := buildOrchestrator(t, m)
	diags, err := o.Tick(sim)
	require.NoError(t, err)
	assert.Empty(t, diags)
	assert.Equal(t, 6.0, sim.Blocks[scl].Outputs[0].F)
	assert.InDelta(t, 0.1, sim.Time, 1e-12)
}

func TestOrchestrator_TransferFunctionEuler(t *testing.T) {
	// dx/dt = -x + u, y = x; a step input u=1 should integrate x upward.
	src := domain.NewBlockId()
	tf := domain.NewBlockId()
	sheet := domain.Sheet{
		ID: domain.NewSheetId(),
		Blocks: []domain.Block{
			constantSource(src, 1.0),
			{ID: tf, Kind: domain.KindTransferFunction, Params: domain.NewBlockParams(map[string]any{
				"numerator": []float64{1}, "denominator": []float64{1, 1},
			})},
		},
		Wires: []domain.Wire{{SourceBlock: src, SourcePort: 0, TargetBlock: tf, TargetPort: 0}},
	}
	m := domain.Model{
		Sheets: []domain.Sheet{sheet},
		GlobalSettings: domain.GlobalSettings{
			SimulationDuration: 1, SimulationTimeStep: 0.01, IntegrationMethod: domain.IntegrationEuler,
		},
	}

	o, _, sim := buildOrchestrator(t, m)
	require.NotNil(t, sim.Blocks[tf].Internal)
	for i := 0; i < 10; i++ {
		_, err := o.Tick(sim)
		require.NoError(t, err)
	}
	assert.Greater(t, sim.Blocks[tf].Internal.X[0][0], 0.0)
	assert.Less(t, sim.Blocks[tf].Internal.X[0][0], 1.0)
}

func TestOrchestrator_TransferFunctionRK4(t *testing.T) {
	src := domain.NewBlockId()
	tf := domain.NewBlockId()
	sheet := domain.Sheet{
		ID: domain.NewSheetId(),
		Blocks: []domain.Block{
			constantSource(src, 1.0),
			{ID: tf, Kind: domain.KindTransferFunction, Params: domain.NewBlockParams(map[string]any{
				"numerator": []float64{1}, "denominator": []float64{1, 1},
			})},
		},
		Wires: []domain.Wire{{SourceBlock: src, SourcePort: 0, TargetBlock: tf, TargetPort: 0}},
	}
	m := domain.Model{
		Sheets: []domain.Sheet{sheet},
		GlobalSettings: domain.GlobalSettings{
			SimulationDuration: 1, SimulationTimeStep: 0.1, IntegrationMethod: domain.IntegrationRK4,
		},
	}

	o, _, sim := buildOrchestrator(t, m)
	_, err := o.Tick(sim)
	require.NoError(t, err)
	// RK4's exact solution for x' = -x + 1, x(0)=0 at t=0.1 is 1-e^-0.1.
	assert.InDelta(t, 1-0.904837, sim.Blocks[tf].Internal.X[0][0], 1e-4)
	assert.InDelta(t, 0.1, sim.Time, 1e-12)
}

func TestOrchestrator_SubsystemDisableFreezesOutput(t *testing.T) {
	outer := domain.NewBlockId()
	enableSrc := domain.NewBlockId()
	src := domain.NewBlockId()
	sink := domain.NewBlockId()
	innerIn := domain.NewBlockId()
	innerGain := domain.NewBlockId()
	innerOut := domain.NewBlockId()

	inner := domain.Sheet{
		ID: domain.NewSheetId(),
		Blocks: []domain.Block{
			{ID: innerIn, Kind: domain.KindInputPort, Params: domain.NewBlockParams(map[string]any{
				"portName": "in1", "dataType": "double",
			})},
			{ID: innerGain, Kind: domain.KindScale, Params: domain.NewBlockParams(map[string]any{"gain": 2.0})},
			{ID: innerOut, Kind: domain.KindOutputPort, Params: domain.NewBlockParams(map[string]any{"portName": "out1"})},
		},
		Wires: []domain.Wire{
			{SourceBlock: innerIn, SourcePort: 0, TargetBlock: innerGain, TargetPort: 0},
			{SourceBlock: innerGain, SourcePort: 0, TargetBlock: innerOut, TargetPort: 0},
		},
	}

	root := domain.Sheet{
		ID: domain.NewSheetId(),
		Blocks: []domain.Block{
			constantSource(src, 5.0),
			{ID: enableSrc, Kind: domain.KindSource, Params: domain.NewBlockParams(map[string]any{
				"signalType": "constant", "dataType": "bool", "value": 0.0,
			})},
			{
				ID:   outer,
				Kind: domain.KindSubsystem,
				Params: domain.NewBlockParams(map[string]any{
					"inputPorts": []string{"in1"}, "outputPorts": []string{"out1"},
					"sheets": []domain.Sheet{inner}, "showEnableInput": true,
				}),
			},
			scaleBy(sink, 1.0),
		},
		Wires: []domain.Wire{
			{SourceBlock: src, SourcePort: 0, TargetBlock: outer, TargetPort: 0},
			{SourceBlock: enableSrc, SourcePort: 0, TargetBlock: outer, TargetPort: domain.EnablePort},
			{SourceBlock: outer, SourcePort: 0, TargetBlock: sink, TargetPort: 0},
		},
	}
	m := domain.Model{
		Sheets: []domain.Sheet{root},
		GlobalSettings: domain.GlobalSettings{
			SimulationDuration: 1, SimulationTimeStep: 0.1, IntegrationMethod: domain.IntegrationEuler,
		},
	}

	o, _, sim := buildOrchestrator(t, m)

	// First tick: enable state starts true (root assumption), so the
	// subsystem still runs and produces a real value this step.
	_, err := o.Tick(sim)
	require.NoError(t, err)
	assert.Equal(t, 10.0, sim.Blocks[innerOut].Outputs[0].F)

	// Enable wire carries a constant false: by the second tick, the
	// subsystem's effective state (recomputed at the end of tick 1) has
	// flipped, so this tick's sweep skips innerGain but still republishes
	// innerOut's frozen snapshot.
	_, err = o.Tick(sim)
	require.NoError(t, err)
	es := sim.Enables[outer]
	require.NotNil(t, es)
	assert.False(t, es.Effective)
	assert.NotNil(t, sim.Blocks[innerOut].FrozenOutputs)
	assert.Equal(t, 10.0, sim.Blocks[innerOut].FrozenOutputs[0].F)
	assert.Equal(t, 10.0, sim.Blocks[sink].Outputs[0].F)
}
