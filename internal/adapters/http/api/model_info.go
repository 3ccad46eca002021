package api

import (
	"net/http"

	"github.com/okian/diabrisk/internal/domain/patient"
	"github.com/okian/diabrisk/internal/domain/risk"
)

type modelInfoResponse struct {
	ModelLoaded      bool               `json:"model_loaded"`
	ModelName        string             `json:"model_name,omitempty"`
	Features         []risk.FeatureSpec `json:"features"`
	RequiredFeatures []string           `json:"required_features"`
	Ranges           map[string]string  `json:"ranges"`
}

// ModelInfoHandler serves the metadata surface.
type ModelInfoHandler struct {
	deps Dependencies
}

// NewModelInfoHandler creates a new model info handler.
func NewModelInfoHandler(deps Dependencies) *ModelInfoHandler {
	return &ModelInfoHandler{deps: deps}
}

// HandleModelInfo handles GET /model-info requests. Without a model the
// response lists the payload fields the fallback rule set reads.
func (h *ModelInfoHandler) HandleModelInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	ranges := make(map[string]string, len(patient.FieldNames))
	for _, field := range patient.FieldNames {
		ranges[field] = patient.Ranges[field].String()
	}

	info := h.deps.ModelInfo(r.Context())
	resp := modelInfoResponse{
		ModelLoaded:      info.Loaded,
		ModelName:        info.Name,
		Features:         []risk.FeatureSpec{},
		RequiredFeatures: patient.FieldNames,
		Ranges:           ranges,
	}
	if info.Loaded {
		resp.Features = info.Features
		resp.RequiredFeatures = make([]string, len(info.Features))
		for i, f := range info.Features {
			resp.RequiredFeatures[i] = f.Name
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
