package domain

// BlockState is the per-block runtime state carried across a simulation
// run: its current output values, an optional kind-specific internal
// state snapshot (source parameters, or transfer-function integration
// state), and the frozen-output shadow used while its containing
// subsystem is disabled.
type BlockState struct {
	// Outputs holds the current value of each output port, in order.
	Outputs []SignalValue

	// Internal holds integration state for stateful blocks (currently
	// only transfer_function); nil for stateless blocks.
	Internal *TransferFunctionState

	// FrozenOutputs mirrors Outputs as of the last true->false enable
	// transition of the block's containing subsystem; nil until frozen
	// at least once.
	FrozenOutputs []SignalValue
}

// CloneOutputs returns a deep copy of the current outputs, safe to stash
// as a frozen snapshot without aliasing future mutation.
func (s *BlockState) CloneOutputs() []SignalValue {
	out := make([]SignalValue, len(s.Outputs))
	for i, v := range s.Outputs {
		out[i] = v.Clone()
	}
	return out
}

// TransferFunctionState is the integration state owned by one
// transfer_function block: one controllable-canonical-form state vector
// per independent scalar element (vectors/matrices multiply out the
// element count).
type TransferFunctionState struct {
	// Order is the denominator order (len(denominator)-1).
	Order int
	// ElementCount is how many independent element-wise instances this
	// block owns (1 for scalar input, n for vector, rows*cols for matrix).
	ElementCount int
	// X holds ElementCount state vectors, each of length Order.
	X [][]float64
}

// NewTransferFunctionState allocates zeroed state for the given order and
// element count.
func NewTransferFunctionState(order, elementCount int) *TransferFunctionState {
	x := make([][]float64, elementCount)
	for i := range x {
		x[i] = make([]float64, order)
	}
	return &TransferFunctionState{Order: order, ElementCount: elementCount, X: x}
}

// Clone returns a deep copy of the state, used for RK4 stage snapshotting.
func (s *TransferFunctionState) Clone() *TransferFunctionState {
	if s == nil {
		return nil
	}
	x := make([][]float64, len(s.X))
	for i, row := range s.X {
		x[i] = append([]float64(nil), row...)
	}
	return &TransferFunctionState{Order: s.Order, ElementCount: s.ElementCount, X: x}
}

// EnableState tracks a subsystem's raw and effective enable signal across
// one step, and whether it just transitioned.
type EnableState struct {
	Raw             bool
	Effective       bool
	PrevEffective   bool
	EnabledAtTime   float64
	everInitialized bool
}

// NewEnableState builds an EnableState already marked initialized, with
// both Raw and Effective set to initial (and PrevEffective matching, so
// the very first recompute only reports a transition if the signal
// actually changes by then).
func NewEnableState(initial bool, atTime float64) *EnableState {
	return &EnableState{
		Raw: initial, Effective: initial, PrevEffective: initial,
		EnabledAtTime: atTime, everInitialized: true,
	}
}

// Transitioned reports whether Effective differs from PrevEffective.
func (e EnableState) Transitioned() bool {
	return e.everInitialized && e.Effective != e.PrevEffective
}

// SheetLabelKey scopes a sheet-label value to its enclosing subsystem (the
// zero BlockId means root scope).
type SheetLabelKey struct {
	Scope BlockId
	Name  string
}

// StepContext carries the read-only information a block's algebraic
// function needs besides its own inputs: current time, timestep, and
// access to the sheet-label scoreboard for sink/source blocks.
type StepContext struct {
	Time  float64
	Dt    float64
	Scope BlockId // enclosing subsystem id, or zero for root
	Labels map[SheetLabelKey]SignalValue
}

// SimulationState is the full mutable state of one simulation run: time,
// per-block state, the per-step signal map, the sheet-label scoreboard,
// and per-subsystem enable state.
type SimulationState struct {
	Time     float64
	Dt       float64
	Duration float64

	Blocks map[BlockId]*BlockState

	// Signals maps (block, port) -> value, reset at the start of every
	// algebraic sweep.
	Signals map[PortRef]SignalValue

	Labels map[SheetLabelKey]SignalValue

	Enables map[BlockId]*EnableState
}

// PortRef addresses one output port of one block.
type PortRef struct {
	Block BlockId
	Port  int
}

// NewSimulationState allocates an empty state for dt/duration.
func NewSimulationState(dt, duration float64) *SimulationState {
	return &SimulationState{
		Dt:       dt,
		Duration: duration,
		Blocks:   make(map[BlockId]*BlockState),
		Signals:  make(map[PortRef]SignalValue),
		Labels:   make(map[SheetLabelKey]SignalValue),
		Enables:  make(map[BlockId]*EnableState),
	}
}
