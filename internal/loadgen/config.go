package loadgen

import (
	"sync"
	"time"
)

// Config holds configuration for a load run.
type Config struct {
	BaseURL      string        // Base URL of the service
	NumRequests  int           // Number of payloads to generate and submit
	InvalidRatio float64       // Share of payloads deliberately rejected by validation, in [0, 1]
	Workers      int           // Number of concurrent workers
	Timeout      time.Duration // HTTP request timeout
	OutputFile   string        // Optional file the generated payloads are written to
	Verbose      bool          // Enable verbose logging
}

// Payload is one prediction request body. Values are kept untyped so that
// malformed payloads can be produced on purpose.
type Payload map[string]any

// PredictResponse mirrors both the success and failure bodies of POST /predict.
type PredictResponse struct {
	Success   bool    `json:"success"`
	RiskScore float64 `json:"risk_score"`
	RiskLevel string  `json:"risk_level"`
	ModelUsed string  `json:"model_used"`
	Error     string  `json:"error"`
}

// Stats holds run statistics. Counter maps are keyed by model_used and
// risk_level as reported by the service.
type Stats struct {
	mu sync.Mutex

	Generated   int
	Submitted   int
	Succeeded   int
	Rejected    int
	Failed      int
	ByModelUsed map[string]int
	ByRiskLevel map[string]int
	Rejections  map[string]int

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

func newStats() *Stats {
	return &Stats{
		ByModelUsed: make(map[string]int),
		ByRiskLevel: make(map[string]int),
		Rejections:  make(map[string]int),
		StartTime:   time.Now(),
	}
}

func (s *Stats) record(r result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Submitted++
	switch r.kind {
	case resultSuccess:
		s.Succeeded++
		s.ByModelUsed[r.resp.ModelUsed]++
		s.ByRiskLevel[r.resp.RiskLevel]++
	case resultRejected:
		s.Rejected++
		s.Rejections[r.resp.Error]++
	default:
		s.Failed++
	}
}
