package risk

import (
	"math"

	"github.com/okian/diabrisk/internal/domain/patient"
)

// Fallback score bounds. A rule-of-thumb estimate never reports 0% or 100%.
const (
	fallbackMinScore = 5.0
	fallbackMaxScore = 95.0
)

// Per-measurement weights and caps of the clinical rule set.
const (
	pregnancyWeight = 0.05
	pregnancyCap    = 0.20
	pedigreeWeight  = 0.30
	pedigreeCap     = 0.15
)

// band maps values below upper to contribution. The last band of a table
// uses +Inf as upper.
type band struct {
	upper        float64
	contribution float64
}

var (
	glucoseBands = []band{{70, 0.10}, {100, 0.20}, {126, 0.40}, {math.Inf(1), 0.60}}
	bmiBands     = []band{{18.5, 0.05}, {25, 0.10}, {30, 0.20}, {math.Inf(1), 0.30}}
	ageBands     = []band{{30, 0.05}, {45, 0.10}, {60, 0.20}, {math.Inf(1), 0.15}}
)

func lookup(bands []band, v float64) float64 {
	for _, b := range bands {
		if v < b.upper {
			return b.contribution
		}
	}
	return bands[len(bands)-1].contribution
}

// Contributions breaks the fallback estimate down per measurement, as fractions.
type Contributions struct {
	Glucose     float64
	BMI         float64
	Age         float64
	Pregnancies float64
	Pedigree    float64
}

// Sum adds up all contributions.
func (c Contributions) Sum() float64 {
	return c.Glucose + c.BMI + c.Age + c.Pregnancies + c.Pedigree
}

// FallbackContributions evaluates the clinical rule table for f.
func FallbackContributions(f patient.Features) Contributions {
	return Contributions{
		Glucose:     lookup(glucoseBands, f.Glucose()),
		BMI:         lookup(bmiBands, f.BMI()),
		Age:         lookup(ageBands, f.Age()),
		Pregnancies: math.Min(pregnancyCap, f.Pregnancies()*pregnancyWeight),
		Pedigree:    math.Min(pedigreeCap, f.DPF()*pedigreeWeight),
	}
}

// FallbackScore returns the deterministic rule-based score on the 0-100
// scale, clamped to [5, 95] and not yet rounded.
func FallbackScore(f patient.Features) float64 {
	score := FallbackContributions(f).Sum() * percent
	return math.Max(fallbackMinScore, math.Min(fallbackMaxScore, score))
}
