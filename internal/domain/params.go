package domain

import (
	"encoding/json"
	"fmt"
)

// BlockParams is the kind-tagged parameter record a Block carries. The
// concrete type stored depends on Block.Kind; ParamsAs decodes it into the
// struct of the requested kind. Keys that struct does not declare are
// ignored, so decoding fails only when a value's JSON type conflicts with
// a declared field.
type BlockParams struct {
	raw map[string]any
}

// NewBlockParams wraps a host-supplied parameter map (e.g. decoded from
// JSON) for later typed decoding via ParamsAs.
func NewBlockParams(raw map[string]any) BlockParams {
	return BlockParams{raw: raw}
}

// Raw returns the underlying untyped parameter map.
func (p BlockParams) Raw() map[string]any { return p.raw }

// MarshalJSON renders the wrapped map directly, so a Block round-trips to
// JSON with its "parameters" field looking like the host sent it.
func (p BlockParams) MarshalJSON() ([]byte, error) {
	if p.raw == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(p.raw)
}

// UnmarshalJSON accepts any JSON object into the untyped parameter map.
func (p *BlockParams) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.raw = raw
	return nil
}

// ParamsAs decodes the untyped parameter map into a kind-specific struct by
// round-tripping through JSON, the same conversion idiom the teacher uses
// to turn a map[string]any node config into a typed struct.
func ParamsAs[T any](p BlockParams) (*T, error) {
	if p.raw == nil {
		return new(T), nil
	}
	data, err := json.Marshal(p.raw)
	if err != nil {
		return nil, fmt.Errorf("marshal block parameters: %w", err)
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("unmarshal block parameters: %w", err)
	}
	return &out, nil
}

// SourceParams configures a `source` block. Exactly one of the
// signal-specific fields is meaningful, selected by SignalType.
type SourceParams struct {
	SignalType string  `json:"signalType"`
	DataType   string  `json:"dataType"`
	Value      float64 `json:"value,omitempty"`

	StepTime  float64 `json:"stepTime,omitempty"`
	StepValue float64 `json:"stepValue,omitempty"`

	Slope     float64 `json:"slope,omitempty"`
	StartTime float64 `json:"startTime,omitempty"`

	Frequency float64 `json:"frequency,omitempty"`
	Amplitude float64 `json:"amplitude,omitempty"`
	Phase     float64 `json:"phase,omitempty"`
	Offset    float64 `json:"offset,omitempty"`

	F0       float64 `json:"f0,omitempty"`
	F1       float64 `json:"f1,omitempty"`
	Duration float64 `json:"duration,omitempty"`

	Mean float64 `json:"mean,omitempty"`
}

// InputPortParams configures an `input_port` block.
type InputPortParams struct {
	PortName     string  `json:"portName"`
	DataType     string  `json:"dataType"`
	DefaultValue float64 `json:"defaultValue"`
}

// OutputPortParams configures an `output_port` block.
type OutputPortParams struct {
	PortName string `json:"portName"`
}

// SumParams configures a `sum` block: a signs string of length 2-10, or a
// bare input count (all-plus signs) when Signs is empty.
type SumParams struct {
	Signs     string `json:"signs,omitempty"`
	NumInputs int    `json:"numInputs,omitempty"`
}

// MultiplyParams configures a `multiply` block.
type MultiplyParams struct {
	NumInputs int `json:"numInputs"`
}

// ScaleParams configures a `scale` block. Factor is accepted as an alias
// for Gain.
type ScaleParams struct {
	Gain   float64 `json:"gain,omitempty"`
	Factor float64 `json:"factor,omitempty"`
}

// EffectiveGain resolves the Gain/Factor alias, Gain taking precedence.
func (s ScaleParams) EffectiveGain() float64 {
	if s.Gain != 0 {
		return s.Gain
	}
	return s.Factor
}

// TrigParams configures a `trig` block.
type TrigParams struct {
	Function string `json:"function"`
}

// EvaluateParams configures an `evaluate` block: a free-form expr-lang
// expression over named scalar inputs in0..inN.
type EvaluateParams struct {
	Expression string `json:"expression"`
}

// ConditionParams configures a `condition` block: a C-style predicate of
// the form "op value", e.g. "> 0.5".
type ConditionParams struct {
	Condition string `json:"condition"`
}

// TransferFunctionParams configures a `transfer_function` block.
type TransferFunctionParams struct {
	Numerator   []float64 `json:"numerator"`
	Denominator []float64 `json:"denominator"`
}

// Lookup1DParams configures a `lookup_1d` block.
type Lookup1DParams struct {
	InputValues    []float64 `json:"inputValues"`
	OutputValues   []float64 `json:"outputValues"`
	Extrapolation  string    `json:"extrapolation"`
}

// Lookup2DParams configures a `lookup_2d` block.
type Lookup2DParams struct {
	Input1Values  []float64   `json:"input1Values"`
	Input2Values  []float64   `json:"input2Values"`
	OutputTable   [][]float64 `json:"outputTable"`
	Extrapolation string      `json:"extrapolation"`
}

// MuxParams configures a `mux` block.
type MuxParams struct {
	Rows     int    `json:"rows"`
	Cols     int    `json:"cols"`
	BaseType string `json:"baseType"`
}

// SubsystemParams configures a `subsystem` block: its declared input and
// output port names, the embedded sheets implementing it, and whether it
// exposes an enable input port.
type SubsystemParams struct {
	InputPorts      []string `json:"inputPorts"`
	OutputPorts     []string `json:"outputPorts"`
	Sheets          []Sheet  `json:"sheets"`
	ShowEnableInput bool     `json:"showEnableInput"`
}

// SheetLabelParams configures a `sheet_label_sink` or `sheet_label_source` block.
type SheetLabelParams struct {
	SignalName string `json:"signalName"`
}

// SignalDisplayParams configures a `signal_display` or `signal_logger` block.
type SignalDisplayParams struct {
	LogToStdout bool `json:"logToStdout,omitempty"`
}
