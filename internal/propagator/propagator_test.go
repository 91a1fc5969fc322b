package propagator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smilemakc/blockflow/internal/blocks"
	"github.com/smilemakc/blockflow/internal/domain"
	"github.com/smilemakc/blockflow/internal/flatten"
)

func TestPropagate_SimpleChain(t *testing.T) {
	src := domain.NewBlockId()
	scl := domain.NewBlockId()
	sheet := domain.Sheet{
		ID: domain.NewSheetId(),
		Blocks: []domain.Block{
			{ID: src, Kind: domain.KindSource, Params: domain.NewBlockParams(map[string]any{
				"signalType": "constant", "dataType": "double", "value": 1.0,
			})},
			{ID: scl, Kind: domain.KindScale, Params: domain.NewBlockParams(map[string]any{"gain": 2.0})},
		},
		Wires: []domain.Wire{
			{SourceBlock: src, SourcePort: 0, TargetBlock: scl, TargetPort: 0},
		},
	}
	m := domain.Model{Sheets: []domain.Sheet{sheet}}

	plan, _, err := flatten.Flatten(m)
	require.NoError(t, err)

	res := Propagate(plan, blocks.Default())
	assert.Empty(t, res.Diagnostics)
	assert.Equal(t, domain.ScalarType(domain.BaseDouble), res.Types[domain.PortRef{Block: src, Port: 0}])
	assert.Equal(t, domain.ScalarType(domain.BaseDouble), res.Types[domain.PortRef{Block: scl, Port: 0}])
}

func TestPropagate_TypeMismatchDiagnostic(t *testing.T) {
	src := domain.NewBlockId()
	sum := domain.NewBlockId()
	sheet := domain.Sheet{
		ID: domain.NewSheetId(),
		Blocks: []domain.Block{
			{ID: src, Kind: domain.KindSource, Params: domain.NewBlockParams(map[string]any{
				"signalType": "constant", "dataType": "double", "value": 1.0,
			})},
			{ID: sum, Kind: domain.KindSum, Params: domain.NewBlockParams(map[string]any{"signs": "++"})},
		},
		Wires: []domain.Wire{
			// sum's signs declare 2 inputs but only 1 is wired: InferOutputTypes
			// rejects the arity with an error diagnostic
			{SourceBlock: src, SourcePort: 0, TargetBlock: sum, TargetPort: 0},
		},
	}
	m := domain.Model{Sheets: []domain.Sheet{sheet}}

	plan, _, err := flatten.Flatten(m)
	require.NoError(t, err)

	res := Propagate(plan, blocks.Default())
	assert.NotEmpty(t, res.Diagnostics)
	_, ok := res.Types[domain.PortRef{Block: sum, Port: 0}]
	assert.False(t, ok)
}
