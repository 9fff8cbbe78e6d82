package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/dermarisk/pkg/domain/model"
	"github.com/secmon-lab/dermarisk/pkg/domain/types"
	"github.com/secmon-lab/dermarisk/pkg/usecase"
	"github.com/secmon-lab/dermarisk/pkg/utils/errutil"
	"github.com/secmon-lab/dermarisk/pkg/utils/logging"
	"github.com/secmon-lab/dermarisk/pkg/utils/safe"
)

// DefaultCORSOrigin is the frontend development server
const DefaultCORSOrigin = "http://localhost:3000"

// AssessmentUseCase is the part of the use case layer served over HTTP
type AssessmentUseCase interface {
	Taxonomy() *model.Taxonomy
	HasClassifier() bool
	AssessProbabilities(ctx context.Context, probs model.ProbabilityVector) (*model.Assessment, error)
	AnalyzeImage(ctx context.Context, image []byte, contentType string) (*model.Assessment, error)
	GetAssessment(ctx context.Context, id types.AssessmentID) (*model.Assessment, error)
	ListAssessments(ctx context.Context, opt usecase.ListOption) ([]*model.Assessment, error)
}

var _ AssessmentUseCase = &usecase.AssessmentUseCase{}

type Server struct {
	router      *chi.Mux
	assessment  AssessmentUseCase
	corsOrigins []string
}

type Options func(*Server)

// WithCORSOrigins sets the origins allowed to call the API from a browser.
// An empty list disables CORS headers.
func WithCORSOrigins(origins ...string) Options {
	return func(s *Server) {
		s.corsOrigins = origins
	}
}

func New(assessment AssessmentUseCase, opts ...Options) (*Server, error) {
	if assessment == nil {
		return nil, goerr.New("assessment use case is required")
	}

	r := chi.NewRouter()

	s := &Server{
		router:      r,
		assessment:  assessment,
		corsOrigins: []string{DefaultCORSOrigin},
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)
	if len(s.corsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.corsOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: true,
		}))
	}

	r.Get("/health", healthHandler(s.assessment))
	r.Post("/analyze", analyzeHandler(s.assessment))

	r.Route("/api", func(r chi.Router) {
		r.Get("/taxonomy", taxonomyHandler(s.assessment))
		r.Post("/assess", assessHandler(s.assessment))
		r.Get("/assessments", listAssessmentsHandler(s.assessment))
		r.Get("/assessments/{id}", getAssessmentHandler(s.assessment))
	})

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests and binds a request
// scoped logger to the context
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		logger := logging.Default().With("request_id", middleware.GetReqID(r.Context()))
		ctx := logging.With(r.Context(), logger)

		defer func() {
			logger.Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r.WithContext(ctx))
	})
}

func healthHandler(uc AssessmentUseCase) http.HandlerFunc {
	type response struct {
		Status               string `json:"status"`
		ClassifierConfigured bool   `json:"classifier_configured"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusOK, response{
			Status:               "healthy",
			ClassifierConfigured: uc.HasClassifier(),
		})
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	safe.Write(r.Context(), w, data)
}
