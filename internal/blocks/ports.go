package blocks

import (
	"fmt"

	"github.com/smilemakc/blockflow/internal/domain"
	"github.com/smilemakc/blockflow/internal/typesys"
)

// HostInputProvider supplies externally-held values for input_port blocks
// by port name, mirroring spec.md §4.2's "externally supplied function
// portName -> value".
type HostInputProvider interface {
	Lookup(portName string) (domain.SignalValue, bool)
}

// inputPortModule implements `input_port`. At the root sheet it has no
// wired input and its value comes from the orchestrator's host-supplied
// default; inside a subsystem, the flattener rewrites the external wire
// feeding the subsystem's declared input straight onto this block's own
// (synthetic) input, so the same Algebraic body serves both cases
// uniformly — an input_port never has more than one wired source either
// way. See internal/flatten's subsystem boundary rewiring and
// internal/runtime's orchestrator, whose SkipFunc skips calling Algebraic
// for a root input_port whose port name the host supplies a value for,
// and publishes that value as its output instead.
type inputPortModule struct{}

func (inputPortModule) PortCounts(domain.BlockParams) (int, int) { return 0, 1 }

func (inputPortModule) InferOutputTypes(in []domain.Type, params domain.BlockParams) ([]domain.Type, error) {
	// At the root sheet an input_port has no wire at all (len(in)==0); once
	// the flattener has rewired a subsystem's external source directly
	// onto its body's input_port (internal/flatten's boundary resolution),
	// the very same block carries exactly one. Both are legal here.
	if len(in) > 1 {
		return nil, fmt.Errorf("input_port: takes at most 1 wired input")
	}
	p, err := domain.ParamsAs[domain.InputPortParams](params)
	if err != nil {
		return nil, err
	}
	declared, err := typesys.Parse(p.DataType)
	if err != nil {
		return nil, err
	}
	if len(in) == 1 && in[0] != declared {
		return nil, fmt.Errorf("input_port: routed input type %s does not match declared dataType %s", in[0], declared)
	}
	return []domain.Type{declared}, nil
}

func (inputPortModule) RequiresState(domain.BlockParams) bool { return false }

func (m inputPortModule) Algebraic(st *domain.BlockState, inputs []domain.SignalValue, ctx *domain.StepContext, params domain.BlockParams) error {
	// A subsystem-internal input_port has its parent's synthesized wire
	// as its sole input: pass its value straight through.
	if len(inputs) == 1 {
		st.Outputs = []domain.SignalValue{inputs[0]}
		return nil
	}
	p, err := domain.ParamsAs[domain.InputPortParams](params)
	if err != nil {
		return err
	}
	t, err := typesys.Parse(p.DataType)
	if err != nil {
		return err
	}
	// At the root sheet, this runs only when the orchestrator has no
	// HostInputProvider value for this port name (with one, its SkipFunc
	// publishes that value in place of calling Algebraic), so the output
	// is the declared default.
	st.Outputs = []domain.SignalValue{broadcastScalarTo(p.DefaultValue, typesys.DefaultValue(t))}
	_ = ctx
	return nil
}

// outputPortModule implements `output_port`: a pass-through sink whose
// current value is republished as the enclosing subsystem block's output
// on the parent sheet (I7): internal/flatten rewires the subsystem's
// external consumers onto this block's port 0, and
// internal/runtime/orchestrator.go republishes its frozen value while the
// subsystem is disabled.
type outputPortModule struct{}

func (outputPortModule) PortCounts(domain.BlockParams) (int, int) { return 1, 0 }

func (outputPortModule) InferOutputTypes(in []domain.Type, _ domain.BlockParams) ([]domain.Type, error) {
	if len(in) != 1 {
		return nil, fmt.Errorf("output_port: requires exactly 1 input")
	}
	return nil, nil
}

func (outputPortModule) RequiresState(domain.BlockParams) bool { return false }

func (outputPortModule) Algebraic(st *domain.BlockState, inputs []domain.SignalValue, _ *domain.StepContext, _ domain.BlockParams) error {
	if len(inputs) != 1 {
		return fmt.Errorf("output_port: requires exactly 1 input")
	}
	// output_port has no output ports of its own; its "output" is its
	// single input, cached on BlockState so the orchestrator can read it
	// without re-deriving from the signal map.
	st.Outputs = []domain.SignalValue{inputs[0]}
	return nil
}
