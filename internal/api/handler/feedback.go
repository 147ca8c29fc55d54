package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"policyinsight/internal/service/feedback"
)

func (h *Handler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedback.SubmitRequest
	if err := decodeBody(r, &req, false); err != nil {
		writeError(w, r, "invalid request", err)
		return
	}
	rec, err := h.feedback.Submit(r.Context(), req)
	if err != nil {
		writeError(w, r, "failed to save feedback", err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (h *Handler) ListFeedback(w http.ResponseWriter, r *http.Request) {
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
	page, err := h.feedback.List(r.Context(), r.URL.Query().Get("policyId"), limit, offset)
	if err != nil {
		writeError(w, r, "failed to retrieve feedback", err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handler) GetFeedback(w http.ResponseWriter, r *http.Request) {
	rec, err := h.feedback.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, "failed to retrieve feedback", err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) FeedbackAnalytics(w http.ResponseWriter, r *http.Request) {
	a, err := h.feedback.Analytics(r.Context(), r.URL.Query().Get("policyId"))
	if err != nil {
		writeError(w, r, "failed to compute analytics", err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}
