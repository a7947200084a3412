// Package api exposes the assessment engine over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/abhisek/assessor/internal/assessment"
	"github.com/abhisek/assessor/internal/calibration"
	"github.com/abhisek/assessor/internal/followup"
	"github.com/abhisek/assessor/internal/logger"
	"github.com/abhisek/assessor/internal/mastery"
)

// Service is the engine surface served over HTTP.
type Service interface {
	SelectNext(ctx context.Context, req assessment.NextRequest) (*assessment.Selection, error)
	SubmitResponse(ctx context.Context, req assessment.SubmitRequest) (*assessment.SubmitResult, error)
	GetMasteryStatus(ctx context.Context, learnerID, objectiveID string) (*mastery.Record, error)
	GenerateFollowUp(ctx context.Context, req assessment.FollowUpRequest) (*followup.Result, error)
	CalibrationReport(ctx context.Context, learnerID, objectiveID string) (*calibration.Report, error)
	AbilityReport(ctx context.Context, learnerID, objectiveID string) (*assessment.AbilityReport, error)
}

// Options configures the router.
type Options struct {
	CORSOrigins []string
	Timeout     time.Duration
	Logger      *logger.Logger
}

// NewRouter mounts every route on a chi router.
func NewRouter(svc Service, opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, requestLogger(log), middleware.Recoverer)
	r.Use(middleware.Timeout(opts.Timeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Length"},
		MaxAge:         300,
	}))

	h := &handlers{svc: svc, log: log}
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Route("/v1", func(v chi.Router) {
		v.Post("/next", h.selectNext)
		v.Post("/responses", h.submitResponse)
		v.Post("/followup", h.generateFollowUp)
		v.Route("/learners/{learnerID}", func(lr chi.Router) {
			lr.Get("/calibration", h.calibrationReport)
			lr.Get("/objectives/{objectiveID}/mastery", h.masteryStatus)
			lr.Get("/objectives/{objectiveID}/ability", h.abilityReport)
		})
	})
	return r
}

// requestLogger logs one line per request through the service logger.
func requestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
