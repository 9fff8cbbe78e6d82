package usecase

import "github.com/secmon-lab/dermarisk/pkg/domain/interfaces"

// ClassifierOf is exported for testing
func ClassifierOf(uc *UseCases) interfaces.Classifier {
	return uc.classifier
}
