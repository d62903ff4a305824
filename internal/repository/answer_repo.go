package repository

import (
	"context"
	"ftareview/internal/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AnswerRepo stores one answer set per project
type AnswerRepo interface {
	Save(ctx context.Context, answers *model.ProjectAnswers) error
	GetByProjectID(ctx context.Context, projectID string) (*model.ProjectAnswers, error)
	DeleteByProjectID(ctx context.Context, projectID string) error
}

type answerRepo struct {
	collection *mongo.Collection
}

// NewAnswerRepo creates a new answer repository
func NewAnswerRepo(db *mongo.Database) AnswerRepo {
	return &answerRepo{
		collection: db.Collection("project_answers"),
	}
}

// Save replaces the project's answer set
func (r *answerRepo) Save(ctx context.Context, answers *model.ProjectAnswers) error {
	if answers.SubmittedAt.IsZero() {
		answers.SubmittedAt = time.Now().UTC()
	}

	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"projectId": answers.ProjectID}, answers, opts)
	return err
}

func (r *answerRepo) GetByProjectID(ctx context.Context, projectID string) (*model.ProjectAnswers, error) {
	var answers model.ProjectAnswers
	err := r.collection.FindOne(ctx, bson.M{"projectId": projectID}).Decode(&answers)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &answers, nil
}

func (r *answerRepo) DeleteByProjectID(ctx context.Context, projectID string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"projectId": projectID})
	return err
}
