package repository

import (
	"context"
	"ftareview/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ApplicabilityRepo stores the latest applicability decision per project
type ApplicabilityRepo interface {
	Save(ctx context.Context, result *model.ProjectApplicability) error
	GetByProjectID(ctx context.Context, projectID string) (*model.ProjectApplicability, error)
	DeleteByProjectID(ctx context.Context, projectID string) error
}

type applicabilityRepo struct {
	collection *mongo.Collection
}

// NewApplicabilityRepo creates a new applicability repository
func NewApplicabilityRepo(db *mongo.Database) ApplicabilityRepo {
	return &applicabilityRepo{
		collection: db.Collection("project_applicability"),
	}
}

func (r *applicabilityRepo) Save(ctx context.Context, result *model.ProjectApplicability) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"projectId": result.ProjectID}, result, opts)
	return err
}

func (r *applicabilityRepo) GetByProjectID(ctx context.Context, projectID string) (*model.ProjectApplicability, error) {
	var result model.ProjectApplicability
	err := r.collection.FindOne(ctx, bson.M{"projectId": projectID}).Decode(&result)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *applicabilityRepo) DeleteByProjectID(ctx context.Context, projectID string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"projectId": projectID})
	return err
}
