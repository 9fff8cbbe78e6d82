package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/dermarisk/pkg/domain/types"
)

func TestClassID_Validate(t *testing.T) {
	tests := []struct {
		name    string
		id      types.ClassID
		wantErr bool
	}{
		{"valid short code", "mel", false},
		{"valid with hyphen", "basal-cell", false},
		{"valid with numbers", "class-7", false},
		{"empty", "", true},
		{"uppercase", "MEL", true},
		{"spaces", "basal cell", true},
		{"underscore", "basal_cell", true},
		{"starting with hyphen", "-mel", true},
		{"ending with hyphen", "mel-", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.id.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("ClassID.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAssessmentID(t *testing.T) {
	id := types.NewAssessmentID()
	gt.NoError(t, id.Validate())
	gt.Value(t, types.NewAssessmentID()).NotEqual(id)

	gt.Error(t, types.AssessmentID("").Validate())
	gt.Error(t, types.AssessmentID("not-a-uuid").Validate())
}
