package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"

	"policyinsight/internal/logging"
	feedbackrepo "policyinsight/internal/repository/feedback"
	policyrepo "policyinsight/internal/repository/policy"
	"policyinsight/internal/repository/report"
	"policyinsight/internal/types"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

type errorBody struct {
	Error     string `json:"error"`
	Field     string `json:"field,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps validation failures to 400 and missing records to 404.
// Anything else is logged and reported as a 500 with msg.
func writeError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	reqID := chimw.GetReqID(r.Context())
	var verr *types.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: verr.Error(), Field: verr.Field, RequestID: reqID})
	case errors.Is(err, feedbackrepo.ErrNotFound),
		errors.Is(err, policyrepo.ErrNotFound),
		errors.Is(err, report.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error(), RequestID: reqID})
	default:
		logging.Error(msg, "path", r.URL.Path, "err", err, "request_id", reqID)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: msg, RequestID: reqID})
	}
}

// decodeBody reads a JSON body into dst. An empty body leaves dst as is
// when allowEmpty is set.
func decodeBody(r *http.Request, dst any, allowEmpty bool) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) && allowEmpty {
			return nil
		}
		return types.Invalid("body", "invalid json body")
	}
	return nil
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, types.Invalid(key, "%s must be an integer", key)
	}
	return v, nil
}
