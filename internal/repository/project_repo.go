package repository

import (
	"context"
	"errors"
	"ftareview/internal/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicateKey is returned when a write violates a unique index
var ErrDuplicateKey = errors.New("duplicate key")

// ProjectRepo handles MongoDB operations for projects
type ProjectRepo interface {
	EnsureIndexes(ctx context.Context) error
	Create(ctx context.Context, project *model.Project) (string, error)
	GetByID(ctx context.Context, id string) (*model.Project, error)
	GetByName(ctx context.Context, name string) (*model.Project, error)
	List(ctx context.Context) ([]*model.Project, error)
	Update(ctx context.Context, project *model.Project) error
	Delete(ctx context.Context, id string) error
}

type projectRepo struct {
	collection *mongo.Collection
}

// NewProjectRepo creates a new project repository
func NewProjectRepo(db *mongo.Database) ProjectRepo {
	return &projectRepo{
		collection: db.Collection("projects"),
	}
}

// EnsureIndexes creates the unique index on project name
func (r *projectRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *projectRepo) Create(ctx context.Context, project *model.Project) (string, error) {
	now := time.Now().UTC()
	project.CreatedAt = now
	project.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, project)
	if mongo.IsDuplicateKeyError(err) {
		return "", ErrDuplicateKey
	}
	if err != nil {
		return "", err
	}

	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", nil
	}
	project.ID = oid.Hex()
	return project.ID, nil
}

func (r *projectRepo) GetByID(ctx context.Context, id string) (*model.Project, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// Not an ID this store could have issued
		return nil, nil
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *projectRepo) GetByName(ctx context.Context, name string) (*model.Project, error) {
	return r.findOne(ctx, bson.M{"name": name})
}

func (r *projectRepo) findOne(ctx context.Context, filter bson.M) (*model.Project, error) {
	var project model.Project
	err := r.collection.FindOne(ctx, filter).Decode(&project)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// List returns all projects, newest first
func (r *projectRepo) List(ctx context.Context) ([]*model.Project, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	projects := []*model.Project{}
	if err := cursor.All(ctx, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *projectRepo) Update(ctx context.Context, project *model.Project) error {
	oid, err := primitive.ObjectIDFromHex(project.ID)
	if err != nil {
		return err
	}

	project.UpdatedAt = time.Now().UTC()
	doc := *project
	doc.ID = ""
	_, err = r.collection.ReplaceOne(ctx, bson.M{"_id": oid}, doc)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateKey
	}
	return err
}

func (r *projectRepo) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	_, err = r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}
