package usecase_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/dermarisk/pkg/usecase"
)

func TestErrors_ErrorsAreDistinct(t *testing.T) {
	gt.Value(t, usecase.ErrAssessmentNotFound).NotNil()
	gt.Value(t, usecase.ErrClassifierNotConfigured).NotNil()
	gt.Bool(t, errors.Is(usecase.ErrAssessmentNotFound, usecase.ErrClassifierNotConfigured)).False()
}
