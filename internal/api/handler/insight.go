package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"policyinsight/internal/cluster"
	"policyinsight/internal/service/insight"
)

func (h *Handler) Clustering(w http.ResponseWriter, r *http.Request) {
	req := insight.ClusterRequest{NumClusters: cluster.DefaultK}
	if r.Method == http.MethodPost {
		if err := decodeBody(r, &req, true); err != nil {
			writeError(w, r, "invalid request", err)
			return
		}
	} else {
		k, err := queryInt(r, "num_clusters", cluster.DefaultK)
		if err != nil {
			writeError(w, r, "invalid request", err)
			return
		}
		req = insight.ClusterRequest{NumClusters: k, PolicyID: r.URL.Query().Get("policyId")}
	}
	res, err := h.insight.Cluster(r.Context(), req)
	if err != nil {
		writeError(w, r, "clustering failed", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	res, err := h.insight.Summary(r.Context(), r.URL.Query().Get("policyId"))
	if err != nil {
		writeError(w, r, "summary failed", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) WordCloud(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := h.insight.WordCloud(r.Context(), q.Get("policyId"), q.Get("language"))
	if err != nil {
		writeError(w, r, "word cloud failed", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) DebateMap(w http.ResponseWriter, r *http.Request) {
	dm, err := h.insight.DebateMap(r.Context(), r.URL.Query().Get("policyId"))
	if err != nil {
		writeError(w, r, "failed to generate debate map", err)
		return
	}
	writeJSON(w, http.StatusOK, dm)
}

func (h *Handler) GenerateDocument(w http.ResponseWriter, r *http.Request) {
	var in insight.DocumentInput
	if err := decodeBody(r, &in, false); err != nil {
		writeError(w, r, "invalid request", err)
		return
	}
	doc, err := h.insight.GenerateDocument(r.Context(), in)
	if err != nil {
		writeError(w, r, "failed to generate document", err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "docType") + "/" + chi.URLParam(r, "file")
	doc, err := h.insight.Report(r.Context(), key)
	if err != nil {
		writeError(w, r, "failed to load report", err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}
