package risk

import (
	"fmt"
	"math"
	"strings"

	"github.com/okian/diabrisk/internal/domain/patient"
)

// FeatureSpec describes one input a model expects, in the model's order.
type FeatureSpec struct {
	Name string  `json:"name"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// Model is a trained classifier loaded once at startup and shared read-only
// across requests. Implementations must be safe for concurrent use.
type Model interface {
	// Name identifies the model family, e.g. "Logistic Regression".
	Name() string
	// Features returns the expected inputs in the exact order PredictProba
	// consumes them.
	Features() []FeatureSpec
	// PredictProba returns the probability of the positive class.
	PredictProba(vector []float64) (float64, error)
}

// Outcome is the result of a single model invocation: either a probability
// or a fault reason, never both.
type Outcome struct {
	Probability float64
	Fault       string
}

// OK reports whether the invocation produced a usable probability.
func (o Outcome) OK() bool { return o.Fault == "" }

func faulted(format string, args ...any) Outcome {
	return Outcome{Fault: fmt.Sprintf(format, args...)}
}

// featureAliases maps lower-cased model feature names to wire field names.
// Models trained on the Pima dataset use its column names.
var featureAliases = map[string]string{
	"pregnancies":                patient.FieldPregnancies,
	"glucose":                    patient.FieldGlucose,
	"bmi":                        patient.FieldBMI,
	"dpf":                        patient.FieldDPF,
	"diabetespedigreefunction":   patient.FieldDPF,
	"diabetes_pedigree_function": patient.FieldDPF,
	"age":                        patient.FieldAge,
}

// ResolveFeature maps a model feature name to the wire field it reads.
func ResolveFeature(name string) (string, bool) {
	field, ok := featureAliases[strings.ToLower(strings.TrimSpace(name))]
	return field, ok
}

// Vector assembles the input vector in the order declared by specs.
func Vector(specs []FeatureSpec, f patient.Features) ([]float64, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("%w: model declares no features", ErrFeatureOrder)
	}
	vec := make([]float64, len(specs))
	for i, spec := range specs {
		field, ok := ResolveFeature(spec.Name)
		if !ok {
			return nil, fmt.Errorf("%w: unknown feature %q", ErrFeatureOrder, spec.Name)
		}
		vec[i], _ = f.Value(field)
	}
	return vec, nil
}

// Invoke runs m on f and folds every failure mode (vector assembly errors,
// returned errors, panics, probabilities outside [0, 1]) into an Outcome.
func Invoke(m Model, f patient.Features) (out Outcome) {
	if m == nil {
		return faulted("no model loaded")
	}
	defer func() {
		if r := recover(); r != nil {
			out = faulted("model panicked: %v", r)
		}
	}()

	vec, err := Vector(m.Features(), f)
	if err != nil {
		return faulted("%v", err)
	}
	p, err := m.PredictProba(vec)
	if err != nil {
		return faulted("%v", err)
	}
	if math.IsNaN(p) || p < 0 || p > 1 {
		return faulted("%v: %v", ErrProbabilityRange, p)
	}
	return Outcome{Probability: p}
}
