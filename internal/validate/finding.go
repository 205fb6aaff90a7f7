package validate

// Severity classifies a Finding. Warnings are surfaced to the user and
// provisioning continues; errors stop it.
type Severity int

const (
	// SeverityWarning marks a non-fatal anomaly worth telling the user
	// about.
	SeverityWarning Severity = iota

	// SeverityError marks a finding that must block provisioning.
	SeverityError
)

// String returns the lowercase label used in log output.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Finding is one validation result with a severity, so callers decide
// whether to log or fail rather than each check choosing for them.
type Finding struct {
	Severity Severity
	Message  string
}
