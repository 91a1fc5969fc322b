package blocks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smilemakc/blockflow/internal/domain"
)

func TestDefaultRegistry_CoversAllKinds(t *testing.T) {
	kinds := []domain.BlockKind{
		domain.KindSource, domain.KindInputPort, domain.KindOutputPort,
		domain.KindSum, domain.KindMultiply, domain.KindScale,
		domain.KindAbs, domain.KindUMinus, domain.KindTrig, domain.KindEvaluate,
		domain.KindTransferFunction, domain.KindLookup1D, domain.KindLookup2D,
		domain.KindMatrixMultiply, domain.KindTranspose, domain.KindMux, domain.KindDemux,
		domain.KindMag, domain.KindDot, domain.KindCross, domain.KindIf, domain.KindCondition,
		domain.KindSignalDisplay, domain.KindSignalLogger,
		domain.KindSheetLabelSink, domain.KindSheetLabelSource, domain.KindSubsystem,
	}
	r := Default()
	for _, k := range kinds {
		m, err := r.Get(k)
		require.NoError(t, err, "kind %s", k)
		assert.NotNil(t, m)
	}
}

func TestMatrixMultiply_MatVec(t *testing.T) {
	m := matrixMultiplyModule{}
	a := domain.MatrixType(domain.BaseDouble, 2, 2)
	b := domain.VectorType(domain.BaseDouble, 2)
	out, err := m.InferOutputTypes([]domain.Type{a, b}, domain.BlockParams{})
	require.NoError(t, err)
	assert.Equal(t, domain.VectorType(domain.BaseDouble, 2), out[0])

	st := &domain.BlockState{}
	err = m.Algebraic(st, []domain.SignalValue{
		domain.MatFValue([][]float64{{1, 2}, {3, 4}}),
		domain.VecFValue([]float64{1, 1}),
	}, nil, domain.BlockParams{})
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 7}, st.Outputs[0].VecF)
}

func TestTranspose_Vector(t *testing.T) {
	m := transposeModule{}
	st := &domain.BlockState{}
	err := m.Algebraic(st, []domain.SignalValue{domain.VecFValue([]float64{1, 2, 3})}, nil, domain.BlockParams{})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 2, 3}}, st.Outputs[0].MatF)
}

func TestMag(t *testing.T) {
	m := magModule{}
	st := &domain.BlockState{}
	err := m.Algebraic(st, []domain.SignalValue{domain.VecFValue([]float64{3, 4})}, nil, domain.BlockParams{})
	require.NoError(t, err)
	assert.InDelta(t, 5.0, st.Outputs[0].F, 1e-9)
}

func TestDot(t *testing.T) {
	m := dotModule{}
	st := &domain.BlockState{}
	err := m.Algebraic(st, []domain.SignalValue{
		domain.VecFValue([]float64{1, 2, 3}),
		domain.VecFValue([]float64{4, 5, 6}),
	}, nil, domain.BlockParams{})
	require.NoError(t, err)
	assert.InDelta(t, 32.0, st.Outputs[0].F, 1e-9)
}

func TestCross(t *testing.T) {
	m := crossModule{}
	st := &domain.BlockState{}
	err := m.Algebraic(st, []domain.SignalValue{
		domain.VecFValue([]float64{1, 0, 0}),
		domain.VecFValue([]float64{0, 1, 0}),
	}, nil, domain.BlockParams{})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 1}, st.Outputs[0].VecF)
}

func TestMuxDemux_RoundTrip(t *testing.T) {
	params := domain.NewBlockParams(map[string]any{"rows": float64(3), "cols": float64(0)})
	mux := muxModule{}
	in, out := mux.PortCounts(params)
	assert.Equal(t, 3, in)
	assert.Equal(t, 1, out)

	st := &domain.BlockState{}
	err := mux.Algebraic(st, []domain.SignalValue{
		domain.F64Value(1), domain.F64Value(2), domain.F64Value(3),
	}, nil, params)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, st.Outputs[0].VecF)

	demux := demuxModule{}
	dst := &domain.BlockState{}
	err = demux.Algebraic(dst, []domain.SignalValue{st.Outputs[0]}, nil, params)
	require.NoError(t, err)
	require.Len(t, dst.Outputs, 3)
	assert.Equal(t, 2.0, dst.Outputs[1].F)
}

func TestIfModule(t *testing.T) {
	m := ifModule{}
	st := &domain.BlockState{}
	err := m.Algebraic(st, []domain.SignalValue{
		domain.BoolValue(true), domain.F64Value(10), domain.F64Value(20),
	}, nil, domain.BlockParams{})
	require.NoError(t, err)
	assert.Equal(t, 10.0, st.Outputs[0].F)
}

func TestSheetLabelSinkSource(t *testing.T) {
	sink := sheetLabelSinkModule{}
	source := sheetLabelSourceModule{}
	params := domain.NewBlockParams(map[string]any{"signalName": "shared"})
	ctx := &domain.StepContext{Labels: map[domain.SheetLabelKey]domain.SignalValue{}}

	st := &domain.BlockState{}
	err := sink.Algebraic(st, []domain.SignalValue{domain.F64Value(42)}, ctx, params)
	require.NoError(t, err)

	dst := &domain.BlockState{}
	err = source.Algebraic(dst, nil, ctx, params)
	require.NoError(t, err)
	assert.Equal(t, 42.0, dst.Outputs[0].F)
}

func TestSubsystemModule_AlgebraicRejected(t *testing.T) {
	m := subsystemModule{}
	err := m.Algebraic(&domain.BlockState{}, nil, nil, domain.BlockParams{})
	assert.Error(t, err)
}
