package web

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/mww/stats_proxy/controller"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/unrolled/render"
)

// Sent with a 400 when a request could not be served.
const errorMessage = "An error occured "

type errorResponse struct {
	Message string `json:"message"`
}

// Player responses may be cached by clients and proxies for 100 minutes.
const playerCacheControl = "public, max-age=6000"

type routerOptions struct {
	log      logrus.FieldLogger
	gatherer prometheus.Gatherer

	adminEnabled  bool
	adminUser     string
	adminPassword string
}

func getRouter(ctrl controller.C, render *render.Render, opts routerOptions) *chi.Mux {
	if opts.log == nil {
		opts.log = logrus.StandardLogger()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(opts.log))
	r.Use(recoverer(opts.log, render))

	// Set a timeout value on the request context (ctx), that will signal
	// through ctx.Done() that the request has timed out and further
	// processing should be stopped.
	r.Use(middleware.Timeout(10 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/", rootHandler(ctrl, render))
	r.Get("/healthz", healthHandler(render))

	r.Group(func(r chi.Router) {
		r.Use(cacheControl(playerCacheControl))

		r.Get("/player", playerHandler(ctrl, render))
		r.Get("/players", playersHandler(ctrl, render))
		r.Get("/latest", latestHandler(ctrl, render))
	})

	if opts.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.gatherer, promhttp.HandlerOpts{}))
	}

	if opts.adminEnabled {
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.BasicAuth("admin", map[string]string{opts.adminUser: opts.adminPassword}))
			r.Delete("/cache/{list}", invalidateHandler(ctrl, render))
		})
	}

	return r
}

func cacheControl(value string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", value)
			next.ServeHTTP(w, r)
		})
	}
}

// recoverer turns a panic in a handler into a generic client error, the same
// answer the player routes have always given when something goes wrong.
func recoverer(logger logrus.FieldLogger, render *render.Render) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}

				logger.WithFields(logrus.Fields{
					"request_id": middleware.GetReqID(r.Context()),
					"path":       r.URL.Path,
					"panic":      rvr,
					"stack":      string(debug.Stack()),
				}).Error("recovered from a panic in a handler")

				if r.Header.Get("Connection") != "Upgrade" {
					render.JSON(w, http.StatusBadRequest, errorResponse{Message: errorMessage})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

func requestLogger(logger logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			entry := logger.WithFields(logrus.Fields{
				"request_id": middleware.GetReqID(r.Context()),
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"bytes":      ww.BytesWritten(),
				"latency":    time.Since(start),
				"client_ip":  r.RemoteAddr,
			})
			if r.URL.RawQuery != "" {
				entry = entry.WithField("query", r.URL.RawQuery)
			}

			switch status := ww.Status(); {
			case status >= 500:
				entry.Error("request failed")
			case status >= 400:
				entry.Warn("client error")
			default:
				entry.Info("request completed")
			}
		})
	}
}
