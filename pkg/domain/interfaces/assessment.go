package interfaces

import (
	"context"

	"github.com/secmon-lab/dermarisk/pkg/domain/model"
	"github.com/secmon-lab/dermarisk/pkg/domain/types"
)

type AssessmentRepository interface {
	// Put stores an assessment. The ID must be set by the caller.
	Put(ctx context.Context, assessment *model.Assessment) error

	// Get retrieves an assessment by ID
	Get(ctx context.Context, id types.AssessmentID) (*model.Assessment, error)

	// List retrieves assessments ordered by CreatedAt, newest first
	List(ctx context.Context, opts ...ListAssessmentOption) ([]*model.Assessment, error)
}
