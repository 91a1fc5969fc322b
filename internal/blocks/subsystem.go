package blocks

import (
	"fmt"

	"github.com/smilemakc/blockflow/internal/domain"
)

// subsystemModule implements `subsystem`. A subsystem is a non-executed
// routing fiction: the flattener inlines its embedded sheets' blocks
// directly into the enclosing dependency graph and rewires input_port /
// output_port blocks to the subsystem's external wires (spec.md §4.3).
// The subsystem block itself is left out of the flattened plan, so neither
// the propagator nor the evaluator calls any of this module's hooks on a
// real run.
type subsystemModule struct{}

func (subsystemModule) PortCounts(params domain.BlockParams) (int, int) {
	p, err := domain.ParamsAs[domain.SubsystemParams](params)
	if err != nil {
		return 0, 0
	}
	in := len(p.InputPorts)
	if p.ShowEnableInput {
		in++
	}
	return in, len(p.OutputPorts)
}

func (subsystemModule) InferOutputTypes(in []domain.Type, params domain.BlockParams) ([]domain.Type, error) {
	p, err := domain.ParamsAs[domain.SubsystemParams](params)
	if err != nil {
		return nil, err
	}
	wantIn := len(p.InputPorts)
	if p.ShowEnableInput {
		wantIn++
	}
	if len(in) != wantIn {
		return nil, fmt.Errorf("subsystem: expected %d inputs, got %d", wantIn, len(in))
	}
	// The real per-output types are derived by the propagator from the
	// embedded sheet's output_port blocks once the flattener has inlined
	// them; this placeholder only reports the declared arity.
	out := make([]domain.Type, len(p.OutputPorts))
	for i := range out {
		out[i] = domain.ScalarType(domain.BaseDouble)
	}
	return out, nil
}

func (subsystemModule) RequiresState(domain.BlockParams) bool { return false }

func (subsystemModule) Algebraic(st *domain.BlockState, inputs []domain.SignalValue, _ *domain.StepContext, _ domain.BlockParams) error {
	return fmt.Errorf("subsystem: block is a routing fiction, not directly evaluated; the flattener must inline its sheets before simulation")
}
