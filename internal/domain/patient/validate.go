package patient

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Validate converts an untyped payload into Features.
//
// Checks run in a fixed order and the first failure is returned:
//  1. the payload must be present and non-empty
//  2. every known field must coerce to a finite number
//  3. absent fields default to 0
//  4. every field must lie within its range (see Ranges)
//
// Unknown keys are ignored.
func Validate(raw map[string]any) (Features, error) {
	if len(raw) == 0 {
		return Features{}, missingPayload()
	}

	values := make(map[string]float64, len(FieldNames))
	for _, field := range FieldNames {
		v, present := raw[field]
		if !present {
			values[field] = 0
			continue
		}
		n, ok := toNumber(v)
		if !ok {
			return Features{}, typeMismatch(field)
		}
		values[field] = n
	}

	return New(
		values[FieldPregnancies],
		values[FieldGlucose],
		values[FieldBMI],
		values[FieldDPF],
		values[FieldAge],
	)
}

// New builds Features from already-typed values, applying the range checks.
func New(pregnancies, glucose, bmi, dpf, age float64) (Features, error) {
	f := Features{
		pregnancies: pregnancies,
		glucose:     glucose,
		bmi:         bmi,
		dpf:         dpf,
		age:         age,
	}
	for _, field := range FieldNames {
		v, _ := f.Value(field)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Features{}, typeMismatch(field)
		}
		if !Ranges[field].Contains(v) {
			return Features{}, outOfRange(field, v)
		}
	}
	return f, nil
}

// toNumber coerces JSON-decoded values and common Go numeric types to float64.
// Booleans, nulls, arrays and objects are rejected.
func toNumber(v any) (float64, bool) {
	var n float64
	switch t := v.(type) {
	case float64:
		n = t
	case float32:
		n = float64(t)
	case int:
		n = float64(t)
	case int32:
		n = float64(t)
	case int64:
		n = float64(t)
	case uint:
		n = float64(t)
	case uint32:
		n = float64(t)
	case uint64:
		n = float64(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		n = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		n = f
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}
