package handler

import (
	"net/http"
	"time"

	"policyinsight/internal/service/feedback"
	"policyinsight/internal/service/insight"
	"policyinsight/internal/service/policy"
)

// ProviderInfo reports which AI providers back the gateway.
type ProviderInfo interface {
	Providers() []string
	EmbedderName() string
}

// Handler serves the JSON API over the three services.
type Handler struct {
	feedback  *feedback.Service
	insight   *insight.Service
	policy    *policy.Service
	providers ProviderInfo
	storeKind string
	started   time.Time
}

func New(fb *feedback.Service, in *insight.Service, pol *policy.Service, providers ProviderInfo, storeKind string) *Handler {
	return &Handler{
		feedback:  fb,
		insight:   in,
		policy:    pol,
		providers: providers,
		storeKind: storeKind,
		started:   time.Now(),
	}
}

type statusResponse struct {
	Status    string   `json:"status"`
	Providers []string `json:"providers"`
	Embedder  string   `json:"embedder"`
	Store     string   `json:"store"`
	Uptime    string   `json:"uptime"`
}

// Status reports the configured providers and store.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		Status:    "ok",
		Providers: []string{},
		Embedder:  "none",
		Store:     h.storeKind,
		Uptime:    time.Since(h.started).Round(time.Second).String(),
	}
	if h.providers != nil {
		if p := h.providers.Providers(); len(p) > 0 {
			resp.Providers = p
		} else {
			resp.Status = "degraded"
		}
		resp.Embedder = h.providers.EmbedderName()
	}
	writeJSON(w, http.StatusOK, resp)
}
