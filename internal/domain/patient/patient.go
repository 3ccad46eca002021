// Package patient defines the validated patient measurement set and the
// validator that builds it from untyped request payloads.
package patient

// Wire field names accepted in prediction payloads.
const (
	FieldPregnancies = "pregnancies"
	FieldGlucose     = "glucose"
	FieldBMI         = "bmi"
	FieldDPF         = "dpf"
	FieldAge         = "age"
)

// FieldNames lists the payload fields in their canonical order.
var FieldNames = []string{FieldPregnancies, FieldGlucose, FieldBMI, FieldDPF, FieldAge}

// Range describes the accepted interval for a numeric field.
// A nil bound means the interval is open-ended on that side.
type Range struct {
	Min          *float64
	Max          *float64
	MinExclusive bool
}

// Contains reports whether v lies within the range.
func (r Range) Contains(v float64) bool {
	if r.Min != nil {
		if r.MinExclusive && v <= *r.Min {
			return false
		}
		if !r.MinExclusive && v < *r.Min {
			return false
		}
	}
	if r.Max != nil && v > *r.Max {
		return false
	}
	return true
}

// String renders the range in interval notation, e.g. "(0, 300]" or "[0, +inf)".
func (r Range) String() string {
	lo, hi := "(-inf", "+inf)"
	if r.Min != nil {
		bracket := "["
		if r.MinExclusive {
			bracket = "("
		}
		lo = bracket + formatNumber(*r.Min)
	}
	if r.Max != nil {
		hi = formatNumber(*r.Max) + "]"
	}
	return lo + ", " + hi
}

func bound(v float64) *float64 { return &v }

// Ranges holds the accepted range of every payload field.
var Ranges = map[string]Range{
	FieldPregnancies: {Min: bound(0)},
	FieldGlucose:     {Min: bound(0), Max: bound(300), MinExclusive: true},
	FieldBMI:         {Min: bound(0), Max: bound(60), MinExclusive: true},
	FieldDPF:         {Min: bound(0)},
	FieldAge:         {Min: bound(1), Max: bound(120)},
}

// Features is an immutable, fully validated set of patient measurements.
// Values are only obtainable through Validate.
type Features struct {
	pregnancies float64
	glucose     float64
	bmi         float64
	dpf         float64
	age         float64
}

func (f Features) Pregnancies() float64 { return f.pregnancies }
func (f Features) Glucose() float64     { return f.glucose }
func (f Features) BMI() float64         { return f.bmi }
func (f Features) DPF() float64         { return f.dpf }
func (f Features) Age() float64         { return f.age }

// Value returns the measurement stored under a canonical wire field name.
func (f Features) Value(field string) (float64, bool) {
	switch field {
	case FieldPregnancies:
		return f.pregnancies, true
	case FieldGlucose:
		return f.glucose, true
	case FieldBMI:
		return f.bmi, true
	case FieldDPF:
		return f.dpf, true
	case FieldAge:
		return f.age, true
	default:
		return 0, false
	}
}

// Map returns the measurements keyed by wire field name.
func (f Features) Map() map[string]float64 {
	return map[string]float64{
		FieldPregnancies: f.pregnancies,
		FieldGlucose:     f.glucose,
		FieldBMI:         f.bmi,
		FieldDPF:         f.dpf,
		FieldAge:         f.age,
	}
}
