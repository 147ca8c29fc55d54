package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"policyinsight/internal/api/handler"
	"policyinsight/internal/api/middleware"
)

func NewRouter(h *handler.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID, chimw.Recoverer, middleware.RequestLog, middleware.CORS)

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", h.Status)

		r.Route("/feedback", func(r chi.Router) {
			r.Post("/", h.SubmitFeedback)
			r.Get("/", h.ListFeedback)
			r.Get("/analytics", h.FeedbackAnalytics)
			r.Get("/{id}", h.GetFeedback)
		})

		r.Get("/clustering", h.Clustering)
		r.Post("/clustering", h.Clustering)
		r.Get("/summary", h.Summary)
		r.Get("/wordcloud", h.WordCloud)
		r.Get("/ai/analytics/debate-map", h.DebateMap)
		r.Post("/generate-document", h.GenerateDocument)
		r.Get("/reports/{docType}/{file}", h.Report)

		r.Route("/policy", func(r chi.Router) {
			r.Get("/", h.ListPolicies)
			r.Post("/", h.CreatePolicy)
			r.Get("/active", h.ActivePolicy)
			r.Get("/{id}", h.GetPolicy)
		})
	})
	return r
}
