// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package launchpad

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/z5labs/launchpad/engine"
	"github.com/z5labs/launchpad/health"
	"github.com/z5labs/launchpad/logctx"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Paths of the health endpoints served by [DefaultEngine].
const (
	LivenessPath  = "/health/liveness"
	ReadinessPath = "/health/readiness"
)

// RouteTable registers the application routes.
type RouteTable func(chi.Router)

// DefaultEngine returns an [EngineBuilder] which serves routes with a chi
// router on an [engine.Engine].
//
// Every request gets a request id, its client ip and the [ApplicationContext]
// stored on its context, is logged, is traced with OpenTelemetry and is
// counted by Prometheus. Besides routes, the router serves [LivenessPath],
// [ReadinessPath] and, unless disabled, Prometheus metrics at
// [Settings.MetricsPath].
func DefaultEngine(routes RouteTable) EngineBuilder {
	return EngineBuilderFunc(func(ctx context.Context, cfg EngineConfig) (Engine, error) {
		reg := prometheus.NewRegistry()
		requests := prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "launchpad",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests served.",
			},
			[]string{"code", "method"},
		)
		duration := prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "launchpad",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"code", "method"},
		)
		state := prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: "launchpad",
				Subsystem: "server",
				Name:      "state",
				Help:      "Current lifecycle state of the server, 0 (INIT) to 4 (STOPPED).",
			},
			func() float64 {
				if cfg.State == nil {
					return float64(StateInit)
				}
				return float64(cfg.State())
			},
		)
		err := registerAll(
			reg,
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			requests,
			duration,
			state,
		)
		if err != nil {
			return nil, err
		}

		log := cfg.Log
		if log == nil {
			log = slog.New(slog.DiscardHandler)
		}

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.RealIP)
		r.Use(logctx.Middleware(cfg.Settings.SessionCookie))
		r.Use(requestLogger(log))
		r.Use(middleware.Recoverer)
		r.Use(withAppContext(cfg.AppContext))

		readiness := []health.Metric{cfg.Readiness}
		if m, ok := cfg.AppContext.(health.Metric); ok {
			readiness = append(readiness, m)
		}
		r.Method(http.MethodGet, LivenessPath, health.Handler(health.And(cfg.Liveness)))
		r.Method(http.MethodGet, ReadinessPath, health.Handler(health.And(readiness...)))

		if path := cfg.Settings.MetricsPath; path != "" {
			r.Method(http.MethodGet, path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{
				Registry:      reg,
				ErrorLog:      slog.NewLogLogger(log.Handler(), slog.LevelError),
				ErrorHandling: promhttp.ContinueOnError,
			}))
		}

		if routes != nil {
			r.Group(func(r chi.Router) {
				routes(r)
			})
		}

		var h http.Handler = r
		h = promhttp.InstrumentHandlerDuration(duration, h)
		h = promhttp.InstrumentHandlerCounter(requests, h)
		h = otelhttp.NewHandler(
			h,
			cfg.Name,
			otelhttp.WithMessageEvents(otelhttp.ReadEvents, otelhttp.WriteEvents),
			otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)

		s := cfg.Settings
		return engine.New(
			h,
			engine.ReadTimeout(s.ReadTimeout),
			engine.ReadHeaderTimeout(s.ReadHeaderTimeout),
			engine.WriteTimeout(s.WriteTimeout),
			engine.IdleTimeout(s.IdleTimeout),
			engine.MaxHeaderBytes(s.MaxHeaderBytes),
			engine.Logger(log),
		), nil
	})
}

func registerAll(reg prometheus.Registerer, cs ...prometheus.Collector) error {
	for _, c := range cs {
		err := reg.Register(c)
		if err != nil {
			return err
		}
	}
	return nil
}

func withAppContext(ac ApplicationContext) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if ac == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), ac)))
		})
	}
}

func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			log.InfoContext(
				r.Context(),
				"handled request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}
