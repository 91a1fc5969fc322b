package blocks

import (
	"fmt"
	"math"

	"github.com/smilemakc/blockflow/internal/domain"
	"github.com/smilemakc/blockflow/internal/typesys"
)

// sourceModule implements `source`: a parameterized time-domain signal
// generator whose scalar value is broadcast to the declared output shape.
type sourceModule struct{}

func (sourceModule) PortCounts(domain.BlockParams) (int, int) { return 0, 1 }

func (sourceModule) declaredType(params domain.BlockParams) (domain.Type, error) {
	p, err := domain.ParamsAs[domain.SourceParams](params)
	if err != nil {
		return domain.Type{}, err
	}
	return typesys.Parse(p.DataType)
}

func (m sourceModule) InferOutputTypes(in []domain.Type, params domain.BlockParams) ([]domain.Type, error) {
	if len(in) != 0 {
		return nil, fmt.Errorf("source: takes no inputs")
	}
	t, err := m.declaredType(params)
	if err != nil {
		return nil, err
	}
	return []domain.Type{t}, nil
}

func (sourceModule) RequiresState(domain.BlockParams) bool { return false }

// sampleSource evaluates a source's scalar signal at time t.
func sampleSource(p domain.SourceParams, t float64) (float64, error) {
	switch p.SignalType {
	case "", "constant":
		return p.Value, nil
	case "step":
		if t >= p.StepTime {
			return p.StepValue, nil
		}
		return 0, nil
	case "ramp":
		if t < p.StartTime {
			return 0, nil
		}
		return p.Slope * (t - p.StartTime), nil
	case "sine":
		return p.Amplitude*math.Sin(2*math.Pi*p.Frequency*t+p.Phase) + p.Offset, nil
	case "square":
		period := 1.0
		if p.Frequency != 0 {
			period = 1.0 / p.Frequency
		}
		phase := math.Mod(t, period) / period
		if phase < 0.5 {
			return p.Amplitude, nil
		}
		return -p.Amplitude, nil
	case "triangle":
		period := 1.0
		if p.Frequency != 0 {
			period = 1.0 / p.Frequency
		}
		phase := math.Mod(t, period) / period
		if phase < 0.5 {
			return p.Amplitude * (4*phase - 1), nil
		}
		return p.Amplitude * (3 - 4*phase), nil
	case "chirp":
		if p.Duration <= 0 {
			return 0, fmt.Errorf("source: chirp requires duration > 0")
		}
		k := (p.F1 - p.F0) / p.Duration
		phase := 2 * math.Pi * (p.F0*t + 0.5*k*t*t)
		return p.Amplitude * math.Sin(phase), nil
	case "noise":
		// Deterministic pseudo-noise keyed on time, so runs with the same
		// timestep/duration are bit-reproducible (P4 only guarantees
		// determinism for models without noise sources, but a host that
		// re-runs the identical schedule should still see the same trace).
		return p.Mean + p.Amplitude*pseudoNoise(t), nil
	default:
		return 0, fmt.Errorf("source: unknown signal type %q", p.SignalType)
	}
}

// pseudoNoise is a deterministic hash-based substitute for true
// randomness, in [-1, 1].
func pseudoNoise(t float64) float64 {
	bits := math.Float64bits(t)
	bits ^= bits >> 33
	bits *= 0xff51afd7ed558ccd
	bits ^= bits >> 33
	bits *= 0xc4ceb9fe1a85ec53
	bits ^= bits >> 33
	frac := float64(bits%1000000) / 500000.0
	return frac - 1.0
}

func (m sourceModule) Algebraic(st *domain.BlockState, inputs []domain.SignalValue, ctx *domain.StepContext, params domain.BlockParams) error {
	if len(inputs) != 0 {
		return fmt.Errorf("source: takes no inputs")
	}
	p, err := domain.ParamsAs[domain.SourceParams](params)
	if err != nil {
		return err
	}
	v, err := sampleSource(*p, ctx.Time)
	if err != nil {
		return err
	}
	t, err := m.declaredType(params)
	if err != nil {
		return err
	}
	st.Outputs = []domain.SignalValue{broadcastScalarTo(v, typesys.DefaultValue(t))}
	return nil
}
