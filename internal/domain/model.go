package domain

// IntegrationMethod selects the state-integration scheme the orchestrator
// uses to advance dynamic-block states.
type IntegrationMethod string

const (
	IntegrationEuler IntegrationMethod = "euler"
	IntegrationRK4   IntegrationMethod = "rk4"
)

// AlgebraicLoopPolicy resolves Open Question 4: how the flattener reacts to
// a detected algebraic cycle.
type AlgebraicLoopPolicy string

const (
	// LoopPolicyBreak uses the previous-step value for one edge in the
	// cycle and continues, with a warning diagnostic. This is the default.
	LoopPolicyBreak AlgebraicLoopPolicy = "break"
	// LoopPolicyError turns the same cycle into a fatal structural
	// diagnostic; no execution plan is produced.
	LoopPolicyError AlgebraicLoopPolicy = "error"
)

// GlobalSettings are the model-wide simulation parameters.
type GlobalSettings struct {
	SimulationDuration  float64             `json:"simulationDuration"`
	SimulationTimeStep  float64             `json:"simulationTimeStep"`
	IntegrationMethod   IntegrationMethod   `json:"integrationMethod"`
	AlgebraicLoopPolicy AlgebraicLoopPolicy `json:"algebraicLoopPolicy,omitempty"`
}

// EffectiveLoopPolicy returns the configured policy, defaulting to
// LoopPolicyBreak when unset.
func (g GlobalSettings) EffectiveLoopPolicy() AlgebraicLoopPolicy {
	if g.AlgebraicLoopPolicy == "" {
		return LoopPolicyBreak
	}
	return g.AlgebraicLoopPolicy
}

// Model is the input contract: an ordered list of sheets (first is root)
// plus model-wide settings.
type Model struct {
	Sheets         []Sheet        `json:"sheets"`
	GlobalSettings GlobalSettings `json:"globalSettings"`
}

// RootSheet returns the first sheet, the model's entry point.
func (m Model) RootSheet() (Sheet, bool) {
	if len(m.Sheets) == 0 {
		return Sheet{}, false
	}
	return m.Sheets[0], true
}
