package interfaces

import (
	"context"

	"github.com/secmon-lab/dermarisk/pkg/domain/model"
)

// Classifier produces a probability vector, in taxonomy order, for an image.
// Image bytes are passed through without decoding.
type Classifier interface {
	Classify(ctx context.Context, image []byte, contentType string) (model.ProbabilityVector, error)
}
