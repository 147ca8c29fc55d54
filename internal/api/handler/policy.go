package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"policyinsight/internal/service/policy"
)

func (h *Handler) ListPolicies(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeError(w, r, "invalid request", err)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeError(w, r, "invalid request", err)
		return
	}
	list, err := h.policy.List(r.Context(), r.URL.Query().Get("status"), limit, offset)
	if err != nil {
		writeError(w, r, "failed to load policies", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) CreatePolicy(w http.ResponseWriter, r *http.Request) {
	var req policy.CreateRequest
	if err := decodeBody(r, &req, false); err != nil {
		writeError(w, r, "invalid request", err)
		return
	}
	p, err := h.policy.Create(r.Context(), req)
	if err != nil {
		writeError(w, r, "failed to create policy", err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) ActivePolicy(w http.ResponseWriter, r *http.Request) {
	p, err := h.policy.Active(r.Context())
	if err != nil {
		writeError(w, r, "failed to load active policy", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) GetPolicy(w http.ResponseWriter, r *http.Request) {
	p, err := h.policy.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, "failed to load policy", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
