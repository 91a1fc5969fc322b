package flatten

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smilemakc/blockflow/internal/domain"
)

func sourceBlock(id domain.BlockId) domain.Block {
	return domain.Block{
		ID:   id,
		Kind: domain.KindSource,
		Params: domain.NewBlockParams(map[string]any{
			"signalType": "constant", "dataType": "double", "value": 1.0,
		}),
	}
}

func scaleBlock(id domain.BlockId) domain.Block {
	return domain.Block{
		ID:   id,
		Kind: domain.KindScale,
		Params: domain.NewBlockParams(map[string]any{
			"gain": 2.0,
		}),
	}
}

func TestFlatten_SimpleChain(t *testing.T) {
	src := domain.NewBlockId()
	scl := domain.NewBlockId()
	sheet := domain.Sheet{
		ID: domain.NewSheetId(),
		Blocks: []domain.Block{
			sourceBlock(src),
			scaleBlock(scl),
		},
		Wires: []domain.Wire{
			{SourceBlock: src, SourcePort: 0, TargetBlock: scl, TargetPort: 0},
		},
	}
	m := domain.Model{Sheets: []domain.Sheet{sheet}, GlobalSettings: domain.GlobalSettings{}}

	plan, diags, err := Flatten(m)
	require.NoError(t, err)
	assert.Empty(t, diags)
	require.Len(t, plan.Order, 2)
	assert.Equal(t, src, plan.Order[0])
	assert.Equal(t, scl, plan.Order[1])
}

func TestFlatten_BreaksAlgebraicLoop(t *testing.T) {
	a := domain.NewBlockId()
	b := domain.NewBlockId()
	sheet := domain.Sheet{
		ID: domain.NewSheetId(),
		Blocks: []domain.Block{
			{ID: a, Kind: domain.KindUMinus},
			{ID: b, Kind: domain.KindUMinus},
		},
		Wires: []domain.Wire{
			{SourceBlock: a, SourcePort: 0, TargetBlock: b, TargetPort: 0},
			{SourceBlock: b, SourcePort: 0, TargetBlock: a, TargetPort: 0},
		},
	}
	m := domain.Model{
		Sheets:         []domain.Sheet{sheet},
		GlobalSettings: domain.GlobalSettings{AlgebraicLoopPolicy: domain.LoopPolicyBreak},
	}

	plan, _, err := Flatten(m)
	require.NoError(t, err)
	assert.Len(t, plan.Order, 2)
	assert.Len(t, plan.BrokenEdges, 1)
}

func TestFlatten_ErrorPolicyFailsOnCycle(t *testing.T) {
	a := domain.NewBlockId()
	b := domain.NewBlockId()
	sheet := domain.Sheet{
		ID: domain.NewSheetId(),
		Blocks: []domain.Block{
			{ID: a, Kind: domain.KindUMinus},
			{ID: b, Kind: domain.KindUMinus},
		},
		Wires: []domain.Wire{
			{SourceBlock: a, SourcePort: 0, TargetBlock: b, TargetPort: 0},
			{SourceBlock: b, SourcePort: 0, TargetBlock: a, TargetPort: 0},
		},
	}
	m := domain.Model{
		Sheets:         []domain.Sheet{sheet},
		GlobalSettings: domain.GlobalSettings{AlgebraicLoopPolicy: domain.LoopPolicyError},
	}

	_, _, err := Flatten(m)
	assert.Error(t, err)
}

func TestFlatten_SubsystemBoundaryRewiring(t *testing.T) {
	outer := domain.NewBlockId()
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
			{ID: innerGain, Kind: domain.KindScale, Params: domain.NewBlockParams(map[string]any{"gain": 3.0})},
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
			sourceBlock(src),
			{
				ID:   outer,
				Kind: domain.KindSubsystem,
				Params: domain.NewBlockParams(map[string]any{
					"inputPorts": []string{"in1"}, "outputPorts": []string{"out1"},
					"sheets": []domain.Sheet{inner},
				}),
			},
			scaleBlockNamed(sink),
		},
		Wires: []domain.Wire{
			{SourceBlock: src, SourcePort: 0, TargetBlock: outer, TargetPort: 0},
			{SourceBlock: outer, SourcePort: 0, TargetBlock: sink, TargetPort: 0},
		},
	}
	m := domain.Model{Sheets: []domain.Sheet{root}}

	plan, _, err := Flatten(m)
	require.NoError(t, err)
	_, hasOuter := plan.Blocks[outer]
	assert.False(t, hasOuter, "subsystem block itself must not appear in the flattened set")
	assert.Contains(t, plan.Blocks, innerIn)
	assert.Contains(t, plan.Blocks, innerGain)
	assert.Contains(t, plan.Blocks, innerOut)
	assert.Contains(t, plan.Blocks, sink)

	// src -> innerIn, innerOut -> sink should both be present as direct wires.
	foundSrcToIn, foundOutToSink := false, false
	for _, w := range plan.Wires {
		if w.SourceBlock == src && w.TargetBlock == innerIn {
			foundSrcToIn = true
		}
		if w.SourceBlock == innerOut && w.TargetBlock == sink {
			foundOutToSink = true
		}
	}
	assert.True(t, foundSrcToIn)
	assert.True(t, foundOutToSink)
}

func scaleBlockNamed(id domain.BlockId) domain.Block {
	return domain.Block{ID: id, Kind: domain.KindScale, Params: domain.NewBlockParams(map[string]any{"gain": 1.0})}
}
