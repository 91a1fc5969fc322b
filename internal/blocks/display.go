package blocks

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/smilemakc/blockflow/internal/domain"
)

// signalDisplayModule implements both `signal_display` and `signal_logger`:
// a terminal sink that observes its single input each step. The two block
// kinds share this struct, distinguished only by whether the logger flag
// routes the observed value through structured logging in addition to the
// value cached on BlockState. SimulationResults does not include these
// cached values; it records root output_port samples only.
type signalDisplayModule struct {
	logger bool
}

func (signalDisplayModule) PortCounts(domain.BlockParams) (int, int) { return 1, 0 }

func (signalDisplayModule) InferOutputTypes(in []domain.Type, _ domain.BlockParams) ([]domain.Type, error) {
	if len(in) != 1 {
		return nil, fmt.Errorf("signal_display: requires exactly 1 input")
	}
	return nil, nil
}

func (signalDisplayModule) RequiresState(domain.BlockParams) bool { return false }

func (m signalDisplayModule) Algebraic(st *domain.BlockState, inputs []domain.SignalValue, ctx *domain.StepContext, params domain.BlockParams) error {
	if len(inputs) != 1 {
		return fmt.Errorf("signal_display: requires exactly 1 input")
	}
	// Cache the observed value on BlockState; the block carries no output
	// ports of its own.
	st.Outputs = []domain.SignalValue{inputs[0]}

	p, err := domain.ParamsAs[domain.SignalDisplayParams](params)
	if err != nil {
		return err
	}
	if m.logger && p.LogToStdout {
		log.Info().
			Float64("t", ctx.Time).
			Interface("value", flattenForLog(inputs[0])).
			Msg("signal_logger")
	}
	return nil
}

func flattenForLog(v domain.SignalValue) any {
	switch v.Kind {
	case domain.ValF64:
		return v.F
	case domain.ValBool:
		return v.B
	case domain.ValVecF:
		return v.VecF
	case domain.ValVecB:
		return v.VecB
	case domain.ValMatF:
		return v.MatF
	case domain.ValMatB:
		return v.MatB
	default:
		return nil
	}
}
