package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes mounts the public form and affiliate endpoints. Only submissions
// count against the rate limit.
func Routes(r chi.Router, fh *FormHandler, rl *RateLimiter) {
	// Set before the sub-routers are mounted so they inherit it.
	r.MethodNotAllowed(func(rw http.ResponseWriter, r *http.Request) {
		respondErr(r.Context(), rw, http.StatusMethodNotAllowed, errMethodNotAllowed)
	})

	r.Route("/form", func(r chi.Router) {
		if rl != nil {
			r.Use(RateLimit(rl))
		}
		r.Post("/submit", fh.Submit)
	})

	r.Route("/affiliate", func(r chi.Router) {
		r.Get("/config", fh.AffiliateConfig)
		r.Post("/conversions", fh.TrackConversion)
	})
}
