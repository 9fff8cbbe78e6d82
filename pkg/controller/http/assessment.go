package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/dermarisk/pkg/domain/model"
	"github.com/secmon-lab/dermarisk/pkg/domain/types"
	"github.com/secmon-lab/dermarisk/pkg/service/classifier"
	"github.com/secmon-lab/dermarisk/pkg/usecase"
	"github.com/secmon-lab/dermarisk/pkg/utils/errutil"
	"github.com/secmon-lab/dermarisk/pkg/utils/safe"
)

const (
	// MaxImageSize is the upper bound of an uploaded image
	MaxImageSize = 10 << 20

	// ImageFormField is the multipart field of the uploaded image
	ImageFormField = "file"

	maxAssessBodySize = 1 << 20
)

// statusOf maps use case errors to HTTP status codes
func statusOf(err error) int {
	switch {
	case errors.Is(err, model.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrAssessmentNotFound):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrClassifierNotConfigured):
		return http.StatusServiceUnavailable
	case errors.Is(err, classifier.ErrClassifierFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

type labelResponse struct {
	Index     int    `json:"index"`
	ID        string `json:"id"`
	Name      string `json:"name"`
	RiskLevel string `json:"risk_level"`
	Cancer    bool   `json:"cancer"`
}

type taxonomyResponse struct {
	Labels              []labelResponse    `json:"labels"`
	Thresholds          map[string]float64 `json:"thresholds"`
	MalignancyThreshold float64            `json:"malignancy_threshold"`
}

func taxonomyHandler(uc AssessmentUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tax := uc.Taxonomy()

		resp := taxonomyResponse{
			Labels:              make([]labelResponse, 0, tax.Len()),
			Thresholds:          make(map[string]float64),
			MalignancyThreshold: tax.MalignancyThreshold(),
		}
		for i, label := range tax.Labels() {
			resp.Labels = append(resp.Labels, labelResponse{
				Index:     i,
				ID:        label.ID.String(),
				Name:      label.Name,
				RiskLevel: label.Risk.String(),
				Cancer:    label.Cancer,
			})
		}
		for level, threshold := range tax.Thresholds() {
			resp.Thresholds[level.String()] = threshold
		}

		writeJSON(w, r, http.StatusOK, resp)
	}
}

type assessRequest struct {
	Probabilities []float64 `json:"probabilities"`
}

func assessHandler(uc AssessmentUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req assessRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAssessBodySize)).Decode(&req); err != nil {
			errutil.HandleHTTP(ctx, w, goerr.Wrap(model.ErrInvalidInput, "malformed request body",
				goerr.V("cause", err.Error())), http.StatusBadRequest)
			return
		}

		assessment, err := uc.AssessProbabilities(ctx, req.Probabilities)
		if err != nil {
			errutil.HandleHTTP(ctx, w, err, statusOf(err))
			return
		}

		writeVerdict(w, r, assessment)
	}
}

func analyzeHandler(uc AssessmentUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		r.Body = http.MaxBytesReader(w, r.Body, MaxImageSize+(1<<20))
		if err := r.ParseMultipartForm(MaxImageSize); err != nil {
			errutil.HandleHTTP(ctx, w, goerr.Wrap(model.ErrInvalidInput, "failed to parse multipart form",
				goerr.V("cause", err.Error())), http.StatusBadRequest)
			return
		}

		file, header, err := r.FormFile(ImageFormField)
		if err != nil {
			errutil.HandleHTTP(ctx, w, goerr.Wrap(model.ErrInvalidInput, "image file is required",
				goerr.V("field", ImageFormField)), http.StatusBadRequest)
			return
		}
		defer safe.Close(ctx, file)

		image, err := io.ReadAll(io.LimitReader(file, MaxImageSize+1))
		if err != nil {
			errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to read uploaded image"), http.StatusBadRequest)
			return
		}
		if len(image) > MaxImageSize {
			errutil.HandleHTTP(ctx, w, goerr.Wrap(model.ErrInvalidInput, "image is too large",
				goerr.V("limit", MaxImageSize)), http.StatusRequestEntityTooLarge)
			return
		}
		if len(image) == 0 {
			errutil.HandleHTTP(ctx, w, goerr.Wrap(model.ErrInvalidInput, "image is empty"), http.StatusBadRequest)
			return
		}

		assessment, err := uc.AnalyzeImage(ctx, image, header.Header.Get("Content-Type"))
		if err != nil {
			errutil.HandleHTTP(ctx, w, err, statusOf(err))
			return
		}

		writeVerdict(w, r, assessment)
	}
}

type verdictResponse struct {
	model.VerdictBody
	AssessmentID string `json:"assessment_id"`
}

// writeVerdict responds with the verdict object extended by the assessment ID
func writeVerdict(w http.ResponseWriter, r *http.Request, assessment *model.Assessment) {
	writeJSON(w, r, http.StatusOK, verdictResponse{
		VerdictBody:  assessment.Verdict.Body(),
		AssessmentID: assessment.ID.String(),
	})
}

type assessmentResponse struct {
	ID            string        `json:"id"`
	Source        string        `json:"source"`
	CreatedAt     time.Time     `json:"created_at"`
	Probabilities []float64     `json:"probabilities"`
	Verdict       model.Verdict `json:"verdict"`
}

func toAssessmentResponse(a *model.Assessment) assessmentResponse {
	return assessmentResponse{
		ID:            a.ID.String(),
		Source:        string(a.Source),
		CreatedAt:     a.CreatedAt,
		Probabilities: a.Probabilities,
		Verdict:       a.Verdict,
	}
}

func getAssessmentHandler(uc AssessmentUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := types.AssessmentID(chi.URLParam(r, "id"))

		assessment, err := uc.GetAssessment(r.Context(), id)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
			return
		}

		writeJSON(w, r, http.StatusOK, toAssessmentResponse(assessment))
	}
}

func listAssessmentsHandler(uc AssessmentUseCase) http.HandlerFunc {
	type response struct {
		Assessments []assessmentResponse `json:"assessments"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		query := r.URL.Query()

		var opt usecase.ListOption
		if v := query.Get("risk_level"); v != "" {
			level, err := types.ParseRiskLevel(v)
			if err != nil {
				errutil.HandleHTTP(ctx, w, goerr.Wrap(model.ErrInvalidInput, "invalid risk_level",
					goerr.V(model.RiskLevelKey, v)), http.StatusBadRequest)
				return
			}
			opt.RiskLevel = &level
		}
		if v := query.Get("limit"); v != "" {
			limit, err := strconv.Atoi(v)
			if err != nil || limit < 0 {
				errutil.HandleHTTP(ctx, w, goerr.Wrap(model.ErrInvalidInput, "invalid limit",
					goerr.V("limit", v)), http.StatusBadRequest)
				return
			}
			opt.Limit = limit
		}

		assessments, err := uc.ListAssessments(ctx, opt)
		if err != nil {
			errutil.HandleHTTP(ctx, w, err, statusOf(err))
			return
		}

		resp := response{Assessments: make([]assessmentResponse, 0, len(assessments))}
		for _, a := range assessments {
			resp.Assessments = append(resp.Assessments, toAssessmentResponse(a))
		}

		writeJSON(w, r, http.StatusOK, resp)
	}
}
