package usecase

import (
	"time"

	"github.com/secmon-lab/dermarisk/pkg/domain/interfaces"
	"github.com/secmon-lab/dermarisk/pkg/domain/model"
	"github.com/secmon-lab/dermarisk/pkg/service/risk"
)

// DefaultBatchConcurrency is the number of vectors evaluated in parallel by AssessBatch
const DefaultBatchConcurrency = 8

type UseCases struct {
	repo             interfaces.Repository
	classifier       interfaces.Classifier
	batchConcurrency int
	now              func() time.Time
	Assessment       *AssessmentUseCase
}

type Option func(*UseCases)

// WithClassifier enables image analysis through the given classifier
func WithClassifier(c interfaces.Classifier) Option {
	return func(uc *UseCases) {
		uc.classifier = c
	}
}

func WithBatchConcurrency(n int) Option {
	return func(uc *UseCases) {
		uc.batchConcurrency = n
	}
}

// WithClock replaces the time source used for assessment timestamps
func WithClock(now func() time.Time) Option {
	return func(uc *UseCases) {
		uc.now = now
	}
}

func New(repo interfaces.Repository, taxonomy *model.Taxonomy, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:             repo,
		batchConcurrency: DefaultBatchConcurrency,
		now:              time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}
	if uc.batchConcurrency < 1 {
		uc.batchConcurrency = 1
	}

	uc.Assessment = NewAssessmentUseCase(repo, risk.New(taxonomy), uc.classifier,
		uc.batchConcurrency, uc.now)

	return uc
}
