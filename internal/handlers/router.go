package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/gorilla/mux"
)

var buckets = metrics.ExponentialBuckets(1e-3, 5, 6)

// NewRouter wires the contacts API, photo serving, health and metrics endpoints
func NewRouter(h *Handler) http.Handler {
	set := metrics.NewSet()

	r := mux.NewRouter()
	r.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			slog.Error("Unable to write healthcheck", "err", err)
		}
	})
	r.HandleFunc("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		set.WritePrometheus(w)
	})

	api := r.PathPrefix("/contacts").Subrouter()
	api.Use(instrument(set))
	api.HandleFunc("", h.HandleList).Methods(http.MethodGet)
	api.HandleFunc("", h.HandleSave).Methods(http.MethodPost)
	api.HandleFunc("/photo", h.HandlePhoto).Methods(http.MethodPut)
	api.HandleFunc("/image/{filename}", h.HandleImage).Methods(http.MethodGet)
	api.HandleFunc("/{id}", h.HandleGet).Methods(http.MethodGet)
	api.HandleFunc("/{id}", h.HandleDelete).Methods(http.MethodDelete)

	return r
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// instrument records request counts and durations per route template
func instrument(set *metrics.Set) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			path := r.URL.Path
			if route := mux.CurrentRoute(r); route != nil {
				if tpl, err := route.GetPathTemplate(); err == nil {
					path = tpl
				}
			}
			labels := fmt.Sprintf(`{method=%q,path=%q,status="%d"}`, r.Method, path, rec.status)
			set.GetOrCreatePrometheusHistogramExt(`http_request_duration_seconds`+labels, buckets).UpdateDuration(start)
			set.GetOrCreateCounter(`http_requests_total` + labels).Inc()
			slog.Debug("Request served", "method", r.Method, "path", path, "status", rec.status, "duration", time.Since(start))
		})
	}
}
