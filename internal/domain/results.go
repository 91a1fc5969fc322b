package domain

// SimulationResults is the output contract: a time series plus the final
// per-output-port values.
type SimulationResults struct {
	TimePoints []float64                    `json:"timePoints"`
	SignalData map[BlockId][]SignalValue    `json:"signalData"`
	FinalTime  float64                      `json:"finalTime"`
	Outputs    map[string]SignalValue       `json:"outputs"`
}

// NewSimulationResults allocates an empty result set.
func NewSimulationResults() SimulationResults {
	return SimulationResults{
		SignalData: make(map[BlockId][]SignalValue),
		Outputs:    make(map[string]SignalValue),
	}
}
