package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
)

// Health reports readiness from check, typically a database status check.
func Health(check func(ctx context.Context) error, log *otelzap.SugaredLogger) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := check(ctx); err != nil {
			log.Ctx(ctx).Errorw("Health", "error", err.Error())
			respondErr(ctx, rw, http.StatusServiceUnavailable, err)
			return
		}
		respond(ctx, rw, http.StatusOK, map[string]string{"status": "ok"})
	}
}
