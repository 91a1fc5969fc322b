package blocks

import (
	"fmt"

	"github.com/smilemakc/blockflow/internal/domain"
)

// sheetLabelSinkModule implements `sheet_label_sink`: publishes its single
// input under a named label, visible only within the enclosing subsystem
// level (Open Question 1 is resolved non-transitively: a label scope is
// exactly the one subsystem the sink sits in, never nested further).
type sheetLabelSinkModule struct{}

func (sheetLabelSinkModule) PortCounts(domain.BlockParams) (int, int) { return 1, 0 }

func (sheetLabelSinkModule) InferOutputTypes(in []domain.Type, _ domain.BlockParams) ([]domain.Type, error) {
	if len(in) != 1 {
		return nil, fmt.Errorf("sheet_label_sink: requires exactly 1 input")
	}
	return nil, nil
}

func (sheetLabelSinkModule) RequiresState(domain.BlockParams) bool { return false }

func (sheetLabelSinkModule) Algebraic(st *domain.BlockState, inputs []domain.SignalValue, ctx *domain.StepContext, params domain.BlockParams) error {
	if len(inputs) != 1 {
		return fmt.Errorf("sheet_label_sink: requires exactly 1 input")
	}
	p, err := domain.ParamsAs[domain.SheetLabelParams](params)
	if err != nil {
		return err
	}
	if ctx.Labels != nil {
		ctx.Labels[domain.SheetLabelKey{Scope: ctx.Scope, Name: p.SignalName}] = inputs[0]
	}
	st.Outputs = []domain.SignalValue{inputs[0]}
	return nil
}

// sheetLabelSourceModule implements `sheet_label_source`: republishes the
// value last written to a named label by a sink at the same subsystem
// scope. The flattener orders sinks before sources within a scope so this
// read always observes the current step's published value.
type sheetLabelSourceModule struct{}

func (sheetLabelSourceModule) PortCounts(domain.BlockParams) (int, int) { return 0, 1 }

func (sheetLabelSourceModule) InferOutputTypes(in []domain.Type, params domain.BlockParams) ([]domain.Type, error) {
	if len(in) != 0 {
		return nil, fmt.Errorf("sheet_label_source: takes no wired inputs")
	}
	// The concrete element type is resolved from the matching sink during
	// the propagator's second pass; absent that information here we fall
	// back to a scalar double placeholder.
	return []domain.Type{domain.ScalarType(domain.BaseDouble)}, nil
}

func (sheetLabelSourceModule) RequiresState(domain.BlockParams) bool { return false }

func (m sheetLabelSourceModule) Algebraic(st *domain.BlockState, inputs []domain.SignalValue, ctx *domain.StepContext, params domain.BlockParams) error {
	p, err := domain.ParamsAs[domain.SheetLabelParams](params)
	if err != nil {
		return err
	}
	key := domain.SheetLabelKey{Scope: ctx.Scope, Name: p.SignalName}
	if v, ok := ctx.Labels[key]; ok {
		st.Outputs = []domain.SignalValue{v}
		return nil
	}
	// No sink has published this label yet in this scope (not yet
	// executed this step, or no matching sink at all): returns zero per
	// spec, rather than failing the run.
	st.Outputs = []domain.SignalValue{domain.F64Value(0)}
	return nil
}
