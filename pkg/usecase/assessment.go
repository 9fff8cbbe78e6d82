package usecase

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/dermarisk/pkg/domain/interfaces"
	"github.com/secmon-lab/dermarisk/pkg/domain/model"
	"github.com/secmon-lab/dermarisk/pkg/domain/types"
	"github.com/secmon-lab/dermarisk/pkg/service/risk"
	"github.com/secmon-lab/dermarisk/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 1000
)

type AssessmentUseCase struct {
	repo             interfaces.Repository
	engine           *risk.Engine
	classifier       interfaces.Classifier
	batchConcurrency int
	now              func() time.Time
}

func NewAssessmentUseCase(repo interfaces.Repository, engine *risk.Engine, classifier interfaces.Classifier, batchConcurrency int, now func() time.Time) *AssessmentUseCase {
	return &AssessmentUseCase{
		repo:             repo,
		engine:           engine,
		classifier:       classifier,
		batchConcurrency: batchConcurrency,
		now:              now,
	}
}

// Taxonomy returns the label set and thresholds the engine runs with
func (uc *AssessmentUseCase) Taxonomy() *model.Taxonomy {
	return uc.engine.Taxonomy()
}

// HasClassifier reports whether AnalyzeImage can be served
func (uc *AssessmentUseCase) HasClassifier() bool {
	return uc.classifier != nil
}

// AssessProbabilities evaluates a classifier output and stores the result
func (uc *AssessmentUseCase) AssessProbabilities(ctx context.Context, probs model.ProbabilityVector) (*model.Assessment, error) {
	return uc.assess(ctx, probs, model.AssessmentSourceProbabilities)
}

// AnalyzeImage sends the image to the classifier and evaluates its output.
// The image is not stored.
func (uc *AssessmentUseCase) AnalyzeImage(ctx context.Context, image []byte, contentType string) (*model.Assessment, error) {
	if uc.classifier == nil {
		return nil, goerr.Wrap(ErrClassifierNotConfigured, "cannot analyze image")
	}

	probs, err := uc.classifier.Classify(ctx, image, contentType)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to classify image",
			goerr.V("content_type", contentType), goerr.V("size", len(image)))
	}

	return uc.assess(ctx, probs, model.AssessmentSourceImage)
}

func (uc *AssessmentUseCase) assess(ctx context.Context, probs model.ProbabilityVector, source model.AssessmentSource) (*model.Assessment, error) {
	verdict, err := uc.engine.Assess(probs)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to assess probabilities", goerr.V("source", source))
	}

	assessment := &model.Assessment{
		ID:            types.NewAssessmentID(),
		Verdict:       *verdict,
		Probabilities: slices.Clone(probs),
		Source:        source,
		CreatedAt:     uc.now().UTC(),
	}

	if err := uc.repo.Assessment().Put(ctx, assessment); err != nil {
		return nil, goerr.Wrap(err, "failed to save assessment",
			goerr.V(AssessmentIDKey, assessment.ID))
	}

	logging.From(ctx).Info("Risk assessed",
		slog.String("assessment_id", assessment.ID.String()),
		slog.String("source", string(source)),
		slog.String("prediction", string(verdict.Prediction.ID)),
		slog.String("risk_level", verdict.RiskLevel.String()),
		slog.Float64("confidence", verdict.Confidence),
		slog.Bool("warning", verdict.HasWarning()),
	)

	return assessment, nil
}

func (uc *AssessmentUseCase) GetAssessment(ctx context.Context, id types.AssessmentID) (*model.Assessment, error) {
	if err := id.Validate(); err != nil {
		return nil, goerr.Wrap(ErrAssessmentNotFound, "invalid assessment ID",
			goerr.V(AssessmentIDKey, id))
	}

	assessment, err := uc.repo.Assessment().Get(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrAssessmentNotFound, "assessment does not exist",
				goerr.V(AssessmentIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get assessment", goerr.V(AssessmentIDKey, id))
	}

	return assessment, nil
}

// ListOption filters ListAssessments. A nil RiskLevel means any level and a
// non-positive Limit means DefaultListLimit.
type ListOption struct {
	RiskLevel *types.RiskLevel
	Limit     int
}

// ListAssessments returns stored assessments, newest first
func (uc *AssessmentUseCase) ListAssessments(ctx context.Context, opt ListOption) ([]*model.Assessment, error) {
	limit := opt.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	opts := []interfaces.ListAssessmentOption{interfaces.WithLimit(limit)}
	if opt.RiskLevel != nil {
		if !opt.RiskLevel.IsValid() {
			return nil, goerr.Wrap(model.ErrInvalidInput, "unknown risk level filter",
				goerr.V(model.RiskLevelKey, int(*opt.RiskLevel)))
		}
		opts = append(opts, interfaces.WithRiskLevel(*opt.RiskLevel))
	}

	assessments, err := uc.repo.Assessment().List(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list assessments")
	}

	return assessments, nil
}

// BatchResult holds the outcome for one vector of AssessBatch. Exactly one of
// Verdict and Err is set.
type BatchResult struct {
	Index   int
	Verdict *model.Verdict
	Err     error
}

// AssessBatch evaluates vectors concurrently without storing them. Results keep
// the input order and an invalid vector only fails its own entry.
func (uc *AssessmentUseCase) AssessBatch(ctx context.Context, vectors []model.ProbabilityVector) ([]BatchResult, error) {
	results := make([]BatchResult, len(vectors))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(uc.batchConcurrency)

	for i, probs := range vectors {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			results[i].Index = i
			verdict, err := uc.engine.Assess(probs)
			if err != nil {
				results[i].Err = goerr.Wrap(err, "failed to assess batch entry",
					goerr.V(BatchIndexKey, i))
				return nil
			}
			results[i].Verdict = verdict
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, goerr.Wrap(err, "batch assessment was interrupted")
	}

	return results, nil
}
