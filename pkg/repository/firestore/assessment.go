package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/dermarisk/pkg/domain/interfaces"
	"github.com/secmon-lab/dermarisk/pkg/domain/model"
	"github.com/secmon-lab/dermarisk/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// AssessmentCollection is the collection name used for assessments, before any prefix
const AssessmentCollection = "assessments"

type assessmentDocument struct {
	ID                string    `firestore:"id"`
	ClassID           string    `firestore:"class_id"`
	ClassName         string    `firestore:"class_name"`
	ClassRisk         string    `firestore:"class_risk"`
	ClassCancer       bool      `firestore:"class_cancer"`
	Confidence        float64   `firestore:"confidence"`
	InitialRiskLevel  string    `firestore:"initial_risk_level"`
	RiskLevel         string    `firestore:"risk_level"`
	CancerProbability float64   `firestore:"cancer_probability"`
	Warning           string    `firestore:"warning"`
	Probabilities     []float64 `firestore:"probabilities"`
	Source            string    `firestore:"source"`
	CreatedAt         time.Time `firestore:"created_at"`
}

type assessmentRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newAssessmentRepository(client *firestore.Client) *assessmentRepository {
	return &assessmentRepository{
		client:           client,
		collectionPrefix: "",
	}
}

// CollectionName returns the collection name with the optional prefix applied
func CollectionName(prefix, name string) string {
	if prefix != "" {
		return prefix + "_" + name
	}
	return name
}

func (r *assessmentRepository) assessmentsCollection() string {
	return CollectionName(r.collectionPrefix, AssessmentCollection)
}

func toAssessmentDocument(a *model.Assessment) *assessmentDocument {
	v := a.Verdict
	return &assessmentDocument{
		ID:                a.ID.String(),
		ClassID:           v.Prediction.ID.String(),
		ClassName:         v.Prediction.Name,
		ClassRisk:         v.Prediction.Risk.String(),
		ClassCancer:       v.Prediction.Cancer,
		Confidence:        v.Confidence,
		InitialRiskLevel:  v.InitialRisk.String(),
		RiskLevel:         v.RiskLevel.String(),
		CancerProbability: v.CancerProbability,
		Warning:           v.Warning,
		Probabilities:     []float64(a.Probabilities),
		Source:            string(a.Source),
		CreatedAt:         a.CreatedAt.UTC(),
	}
}

func (d *assessmentDocument) toModel() (*model.Assessment, error) {
	classRisk, err := types.ParseRiskLevel(d.ClassRisk)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid class risk in document", goerr.V(model.AssessmentKey, d.ID))
	}
	initial, err := types.ParseRiskLevel(d.InitialRiskLevel)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid initial risk level in document", goerr.V(model.AssessmentKey, d.ID))
	}
	final, err := types.ParseRiskLevel(d.RiskLevel)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid risk level in document", goerr.V(model.AssessmentKey, d.ID))
	}

	return &model.Assessment{
		ID: types.AssessmentID(d.ID),
		Verdict: model.Verdict{
			Prediction: model.ClassLabel{
				ID:     types.ClassID(d.ClassID),
				Name:   d.ClassName,
				Risk:   classRisk,
				Cancer: d.ClassCancer,
			},
			Confidence:        d.Confidence,
			InitialRisk:       initial,
			RiskLevel:         final,
			CancerProbability: d.CancerProbability,
			Warning:           d.Warning,
		},
		Probabilities: model.ProbabilityVector(d.Probabilities),
		Source:        model.AssessmentSource(d.Source),
		CreatedAt:     d.CreatedAt,
	}, nil
}

func (r *assessmentRepository) Put(ctx context.Context, assessment *model.Assessment) error {
	if err := assessment.ID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid assessment ID")
	}

	docRef := r.client.Collection(r.assessmentsCollection()).Doc(assessment.ID.String())
	if _, err := docRef.Set(ctx, toAssessmentDocument(assessment)); err != nil {
		return goerr.Wrap(err, "failed to put assessment", goerr.V(model.AssessmentKey, assessment.ID))
	}

	return nil
}

func (r *assessmentRepository) Get(ctx context.Context, id types.AssessmentID) (*model.Assessment, error) {
	doc, err := r.client.Collection(r.assessmentsCollection()).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "assessment not found", goerr.V(model.AssessmentKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get assessment", goerr.V(model.AssessmentKey, id))
	}

	var assessmentDoc assessmentDocument
	if err := doc.DataTo(&assessmentDoc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal assessment", goerr.V(model.AssessmentKey, id))
	}

	return assessmentDoc.toModel()
}

// List requires the (risk_level ASC, created_at DESC) composite index when
// filtering by risk level. See the migrate command.
func (r *assessmentRepository) List(ctx context.Context, opts ...interfaces.ListAssessmentOption) ([]*model.Assessment, error) {
	cfg := interfaces.BuildListAssessmentConfig(opts...)

	q := r.client.Collection(r.assessmentsCollection()).Query
	if level := cfg.RiskLevel(); level != nil {
		q = q.Where("risk_level", "==", level.String())
	}
	q = q.OrderBy("created_at", firestore.Desc)
	if limit := cfg.Limit(); limit > 0 {
		q = q.Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var assessments []*model.Assessment
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate assessments")
		}

		var assessmentDoc assessmentDocument
		if err := doc.DataTo(&assessmentDoc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal assessment", goerr.V("doc_id", doc.Ref.ID))
		}

		assessment, err := assessmentDoc.toModel()
		if err != nil {
			return nil, err
		}
		assessments = append(assessments, assessment)
	}

	return assessments, nil
}
