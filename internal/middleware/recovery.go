package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/2beens/lifedash/internal/telemetry/metrics"
	"github.com/2beens/lifedash/pkg"

	log "github.com/sirupsen/logrus"
)

// PanicRecovery turns a handler panic into a JSON 500. The error log carries
// the route template, so the sentry hook groups panics per endpoint.
// http.ErrAbortHandler is re-panicked to keep its abort semantics.
func PanicRecovery(metricsManager *metrics.Manager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			defer func() {
				recovered := recover()
				if recovered == nil {
					return
				}
				if recovered == http.ErrAbortHandler {
					panic(recovered)
				}

				log.WithFields(log.Fields{
					"method": req.Method,
					"route":  routeTemplate(req),
					"panic":  fmt.Sprint(recovered),
				}).Errorf("panic serving %s\n%s", req.URL.Path, debug.Stack())
				if metricsManager != nil {
					metricsManager.CounterHandleRequestPanic.Inc()
				}
				pkg.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
			}()

			next.ServeHTTP(w, req)
		})
	}
}
