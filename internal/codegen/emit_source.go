package codegen

import (
	"fmt"

	"github.com/smilemakc/blockflow/internal/domain"
)

// sourceValueExpr renders the C expression computing a source block's
// scalar value at the current step, mirroring internal/blocks/source.go's
// sampleSource. The signal type is fixed at generation time, so unlike
// the Go runtime's per-step switch, each instance gets one specialized
// expression with no branch left in the emitted code.
func sourceValueExpr(p domain.SourceParams) (string, error) {
	t := "m->time"
	switch p.SignalType {
	case "", "constant":
		return fmt.Sprintf("%g", p.Value), nil
	case "step":
		return fmt.Sprintf("(%s >= %g ? %g : 0.0)", t, p.StepTime, p.StepValue), nil
	case "ramp":
		return fmt.Sprintf("(%s < %g ? 0.0 : %g * (%s - %g))", t, p.StartTime, p.Slope, t, p.StartTime), nil
	case "sine":
		return fmt.Sprintf("(%g * sin(2.0 * M_PI * %g * %s + %g) + %g)", p.Amplitude, p.Frequency, t, p.Phase, p.Offset), nil
	case "square":
		period := 1.0
		if p.Frequency != 0 {
			period = 1.0 / p.Frequency
		}
		return fmt.Sprintf("(fmod(%s, %g) / %g < 0.5 ? %g : -%g)", t, period, period, p.Amplitude, p.Amplitude), nil
	case "triangle":
		period := 1.0
		if p.Frequency != 0 {
			period = 1.0 / p.Frequency
		}
		return fmt.Sprintf("model_triangle_wave(%s, %g, %g)", t, period, p.Amplitude), nil
	case "chirp":
		if p.Duration <= 0 {
			return "", fmt.Errorf("codegen: source: chirp requires duration > 0")
		}
		k := (p.F1 - p.F0) / p.Duration
		return fmt.Sprintf("(%g * sin(2.0 * M_PI * (%g * %s + 0.5 * %g * %s * %s)))", p.Amplitude, p.F0, t, k, t, t), nil
	case "noise":
		return fmt.Sprintf("(%g + %g * model_pseudo_noise(%s))", p.Mean, p.Amplitude, t), nil
	default:
		return "", fmt.Errorf("codegen: source: unknown signal type %q", p.SignalType)
	}
}

func emitSource(w *Writer, ctx *emitContext, id domain.BlockId, p domain.SourceParams) error {
	expr, err := sourceValueExpr(p)
	if err != nil {
		return err
	}
	emitElementwise(w, ctx, id, func(string) string { return expr })
	return nil
}
