package api

import (
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/okian/diabrisk/internal/app"
	"github.com/okian/diabrisk/internal/domain/patient"
	"github.com/okian/diabrisk/pkg/logger"
)

// predictResponse mirrors the OpenAPI schema for a successful POST /predict.
type predictResponse struct {
	Success      bool         `json:"success"`
	RiskScore    float64      `json:"risk_score"`
	RiskLevel    string       `json:"risk_level"`
	ModelUsed    string       `json:"model_used"`
	FeaturesUsed featuresUsed `json:"features_used"`
}

type featuresUsed struct {
	Pregnancies float64 `json:"pregnancies"`
	Glucose     float64 `json:"glucose"`
	BMI         float64 `json:"bmi"`
	DPF         float64 `json:"dpf"`
	Age         float64 `json:"age"`
}

func newFeaturesUsed(f patient.Features) featuresUsed {
	return featuresUsed{
		Pregnancies: f.Pregnancies(),
		Glucose:     f.Glucose(),
		BMI:         f.BMI(),
		DPF:         f.DPF(),
		Age:         f.Age(),
	}
}

// PredictHandler handles prediction requests.
type PredictHandler struct {
	deps         Dependencies
	maxBodyBytes int64
	log          logger.Logger
}

// NewPredictHandler creates a new predict handler.
func NewPredictHandler(deps Dependencies, maxBodyBytes int64, log logger.Logger) *PredictHandler {
	return &PredictHandler{deps: deps, maxBodyBytes: maxBodyBytes, log: log}
}

// HandlePredict handles POST /predict requests.
func (h *PredictHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	const op = "api.predict"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	ctx := r.Context()

	raw, err := decodePayload(w, r, h.maxBodyBytes)
	if err != nil {
		// An unreadable body is reported exactly like an empty one.
		h.log.Debug(ctx, "unreadable prediction body", logger.Error(WrapKind(op, ErrBadRequest, err)))
		raw = nil
	}

	p, err := h.deps.Evaluate(ctx, raw)
	if err != nil {
		var ve *patient.ValidationError
		if errors.As(err, &ve) {
			h.log.Debug(ctx, "prediction rejected",
				logger.String("kind", ve.KindName()),
				logger.Error(WrapKind(op, ErrValidation, err)),
			)
			writeError(w, http.StatusBadRequest, ve.Error())
			return
		}
		if errors.Is(err, service.ErrNotStarted) {
			h.log.Error(ctx, "prediction refused", logger.Error(WrapKind(op, ErrUnavailable, err)))
			writeError(w, http.StatusServiceUnavailable, "")
			return
		}
		h.log.Error(ctx, "prediction failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "")
		return
	}

	a := p.Assessment
	writeJSON(w, http.StatusOK, predictResponse{
		Success:      true,
		RiskScore:    a.Score,
		RiskLevel:    a.Level.String(),
		ModelUsed:    a.ModelUsed,
		FeaturesUsed: newFeaturesUsed(p.Features),
	})
}

// decodePayload reads a JSON object from the capped request body. Numbers
// are kept as json.Number so the validator sees them as written.
func decodePayload(w http.ResponseWriter, r *http.Request, limit int64) (map[string]any, error) {
	body := http.MaxBytesReader(w, r.Body, limit)
	defer func() { _ = body.Close() }()

	dec := json.NewDecoder(body)
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return raw, nil
}
