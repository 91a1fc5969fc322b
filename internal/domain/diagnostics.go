package domain

// Severity classifies whether a Diagnostic is merely informational or
// blocks simulation from proceeding.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// DiagnosticCategory names which of the §7 error-taxonomy kinds a
// Diagnostic belongs to.
type DiagnosticCategory string

const (
	CategoryStructural DiagnosticCategory = "structural"
	CategoryType       DiagnosticCategory = "type"
	CategoryParameter  DiagnosticCategory = "parameter"
	CategoryTopology   DiagnosticCategory = "topology"
	CategoryNumerical  DiagnosticCategory = "numerical"
	CategoryHostInput  DiagnosticCategory = "host_input"
)

// Diagnostic is a single non-fatal-or-fatal finding surfaced alongside
// results, e.g. by the propagator or the flattener.
type Diagnostic struct {
	Severity Severity           `json:"severity"`
	Category DiagnosticCategory `json:"category"`
	BlockID  BlockId            `json:"blockId,omitempty"`
	Message  string             `json:"message"`
}

// NewDiagnostic constructs a Diagnostic.
func NewDiagnostic(sev Severity, cat DiagnosticCategory, blockID BlockId, msg string) Diagnostic {
	return Diagnostic{Severity: sev, Category: cat, BlockID: blockID, Message: msg}
}

// HasErrors reports whether any diagnostic in the slice is SeverityError.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}
