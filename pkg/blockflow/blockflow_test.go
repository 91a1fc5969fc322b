package blockflow_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smilemakc/blockflow/internal/codegen"
	"github.com/smilemakc/blockflow/internal/domain"
	"github.com/smilemakc/blockflow/pkg/blockflow"
)

// constantToOutputModel builds a one-sheet model: a constant source,
// scaled, surfaced on a root output_port — the smallest model exercising
// Validate/Simulate/GenerateC's full plan-build-and-run path.
func constantToOutputModel(gain float64) domain.Model {
	src := domain.NewBlockId()
	scl := domain.NewBlockId()
	out := domain.NewBlockId()
	sheet := domain.Sheet{
		ID: domain.NewSheetId(),
		Blocks: []domain.Block{
			{ID: src, Kind: domain.KindSource, Params: domain.NewBlockParams(map[string]any{
				"signalType": "constant", "dataType": "double", "value": 2.0,
			})},
			{ID: scl, Kind: domain.KindScale, Params: domain.NewBlockParams(map[string]any{"gain": gain})},
			{ID: out, Kind: domain.KindOutputPort, Params: domain.NewBlockParams(map[string]any{"portName": "y"})},
		},
		Wires: []domain.Wire{
			{SourceBlock: src, SourcePort: 0, TargetBlock: scl, TargetPort: 0},
			{SourceBlock: scl, SourcePort: 0, TargetBlock: out, TargetPort: 0},
		},
	}
	return domain.Model{
		Sheets: []domain.Sheet{sheet},
		GlobalSettings: domain.GlobalSettings{
			SimulationDuration: 0.3, SimulationTimeStep: 0.1, IntegrationMethod: domain.IntegrationEuler,
		},
	}
}

func TestValidate_CleanModelHasNoErrors(t *testing.T) {
	diags := blockflow.Validate(constantToOutputModel(3.0))
	assert.False(t, domain.HasErrors(diags))
}

func TestValidate_EmptyModelIsStructuralError(t *testing.T) {
	diags := blockflow.Validate(domain.Model{})
	require.True(t, domain.HasErrors(diags))
}

func TestSimulate_ScaledConstantSettles(t *testing.T) {
	results, diags, err := blockflow.Simulate(constantToOutputModel(3.0), nil)
	require.NoError(t, err)
	assert.False(t, domain.HasErrors(diags))

	require.NotEmpty(t, results.TimePoints)
	assert.InDelta(t, 0.3, results.FinalTime, 1e-9)

	v, ok := results.Outputs["y"]
	require.True(t, ok)
	assert.InDelta(t, 6.0, v.F, 1e-9)

	require.Len(t, results.SignalData, 1)
	for _, series := range results.SignalData {
		assert.InDelta(t, 6.0, series[len(series)-1].F, 1e-9)
	}
}

func TestSimulate_RecordsOneSamplePerTick(t *testing.T) {
	m := constantToOutputModel(1.0)
	results, _, err := blockflow.Simulate(m, nil)
	require.NoError(t, err)

	// duration 0.3, dt 0.1: one sample per tick, 3 ticks.
	assert.Len(t, results.TimePoints, 3)
}

func TestGenerateC_RendersModelContract(t *testing.T) {
	art, diags, err := blockflow.GenerateC(constantToOutputModel(3.0), codegen.Options{ModelName: "test_model"})
	require.NoError(t, err)
	assert.False(t, domain.HasErrors(diags))

	assert.Contains(t, art.Header, "model_inputs_t")
	assert.Contains(t, art.Header, "model_outputs_t")
	assert.Contains(t, art.Source, "void model_step(model_t *m)")
	assert.Empty(t, art.Main)
}

func TestGenerateC_WithHarness(t *testing.T) {
	art, _, err := blockflow.GenerateC(constantToOutputModel(3.0), codegen.Options{ModelName: "test_model", IncludeHarness: true})
	require.NoError(t, err)
	assert.Contains(t, art.Main, "int main(void)")
}
