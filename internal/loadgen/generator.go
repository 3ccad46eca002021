package loadgen

import (
	"context"
	"crypto/rand"
	"fmt"
	"math"
	"math/big"

	"github.com/okian/diabrisk/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
)

// Measurement ranges of generated patients, loosely following the Pima
// dataset distribution.
const (
	pregnanciesMax = 12
	glucoseMin     = 60.0
	glucoseRange   = 140.0
	bmiMin         = 18.0
	bmiRange       = 30.0
	dpfMin         = 0.08
	dpfRange       = 1.5
	ageMin         = 21
	ageRange       = 60
)

// invalidKinds enumerates the deliberately broken payload shapes.
const (
	caseEmptyPayload = iota
	caseGlucoseHigh
	caseBMIZero
	caseAgeTooOld
	caseNotANumber
	caseNegativePregnancies
	invalidKindCount
)

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// getRandomInt returns a random integer in [0, bound).
func getRandomInt(bound int64) int64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(bound))
	return n.Int64()
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

// generatePayloads creates config.NumRequests payloads. The first
// InvalidRatio share of them is broken on purpose.
func generatePayloads(ctx context.Context, config *Config, stats *Stats) ([]Payload, error) {
	logger.Get().Info(ctx, "generating payloads",
		logger.Int("numRequests", config.NumRequests),
		logger.Float64("invalidRatio", config.InvalidRatio))

	invalid := int(math.Round(float64(config.NumRequests) * config.InvalidRatio))
	payloads := make([]Payload, config.NumRequests)
	for i := range payloads {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled during payload generation: %w", err)
		}
		if i < invalid {
			payloads[i] = generateInvalidPayload(i)
			continue
		}
		payloads[i] = generateValidPayload()
	}

	stats.Generated = len(payloads)
	logger.Get().Info(ctx, "generated payloads", logger.Int("count", len(payloads)), logger.Int("invalid", invalid))
	return payloads, nil
}

// generateValidPayload creates a payload every validator accepts.
func generateValidPayload() Payload {
	return Payload{
		"pregnancies": getRandomInt(pregnanciesMax + 1),
		"glucose":     round1(glucoseMin + getRandomFloat()*glucoseRange),
		"bmi":         round1(bmiMin + getRandomFloat()*bmiRange),
		"dpf":         math.Round((dpfMin+getRandomFloat()*dpfRange)*1000) / 1000,
		"age":         ageMin + getRandomInt(ageRange),
	}
}

// generateInvalidPayload breaks a valid payload in one of several ways,
// cycling through them by index.
func generateInvalidPayload(index int) Payload {
	p := generateValidPayload()
	switch index % invalidKindCount {
	case caseEmptyPayload:
		return Payload{}
	case caseGlucoseHigh:
		p["glucose"] = 301
	case caseBMIZero:
		p["bmi"] = 0
	case caseAgeTooOld:
		p["age"] = 150
	case caseNotANumber:
		p["bmi"] = "n/a"
	case caseNegativePregnancies:
		p["pregnancies"] = -1
	}
	return p
}
