package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/dermarisk/pkg/domain/interfaces"
	"github.com/secmon-lab/dermarisk/pkg/domain/model"
	"github.com/secmon-lab/dermarisk/pkg/domain/types"
)

type assessmentRepository struct {
	mu          sync.RWMutex
	assessments map[types.AssessmentID]*model.Assessment
}

func newAssessmentRepository() *assessmentRepository {
	return &assessmentRepository{
		assessments: make(map[types.AssessmentID]*model.Assessment),
	}
}

// copyAssessment prevents callers from mutating stored records
func copyAssessment(a *model.Assessment) *model.Assessment {
	copied := *a
	copied.Probabilities = slices.Clone(a.Probabilities)
	return &copied
}

func (r *assessmentRepository) Put(ctx context.Context, assessment *model.Assessment) error {
	if err := assessment.ID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid assessment ID")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.assessments[assessment.ID] = copyAssessment(assessment)
	return nil
}

func (r *assessmentRepository) Get(ctx context.Context, id types.AssessmentID) (*model.Assessment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	assessment, exists := r.assessments[id]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "assessment not found", goerr.V(model.AssessmentKey, id))
	}

	return copyAssessment(assessment), nil
}

func (r *assessmentRepository) List(ctx context.Context, opts ...interfaces.ListAssessmentOption) ([]*model.Assessment, error) {
	cfg := interfaces.BuildListAssessmentConfig(opts...)

	r.mu.RLock()
	defer r.mu.RUnlock()

	assessments := make([]*model.Assessment, 0, len(r.assessments))
	for _, a := range r.assessments {
		if level := cfg.RiskLevel(); level != nil && a.Verdict.RiskLevel != *level {
			continue
		}
		assessments = append(assessments, copyAssessment(a))
	}

	slices.SortFunc(assessments, func(a, b *model.Assessment) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})

	if limit := cfg.Limit(); limit > 0 && len(assessments) > limit {
		assessments = assessments[:limit]
	}

	return assessments, nil
}
