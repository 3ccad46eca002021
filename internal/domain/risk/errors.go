package risk

import "errors"

// Sentinel kinds for model invocation faults. They never leave the
// estimator; they only appear as Outcome.Fault text.
var (
	ErrFeatureOrder     = errors.New("feature order mismatch")
	ErrProbabilityRange = errors.New("probability outside [0, 1]")
)
