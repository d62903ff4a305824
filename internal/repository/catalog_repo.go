package repository

import (
	"context"
	"fmt"
	"ftareview/internal/engine"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"
)

// CatalogRepo handles MongoDB operations for the review catalog
type CatalogRepo interface {
	Load(ctx context.Context) (engine.CatalogData, error)
	Replace(ctx context.Context, data engine.CatalogData) error
}

type catalogRepo struct {
	questions *mongo.Collection
	sections  *mongo.Collection
	subAreas  *mongo.Collection
	rules     *mongo.Collection
}

// NewCatalogRepo creates a new catalog repository
func NewCatalogRepo(db *mongo.Database) CatalogRepo {
	return &catalogRepo{
		questions: db.Collection("questions"),
		sections:  db.Collection("sections"),
		subAreas:  db.Collection("sub_areas"),
		rules:     db.Collection("applicability_rules"),
	}
}

// Load reads all four catalog collections concurrently
func (r *catalogRepo) Load(ctx context.Context) (engine.CatalogData, error) {
	var data engine.CatalogData
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return findAll(ctx, r.questions, bson.D{{Key: "displayOrder", Value: 1}}, &data.Questions)
	})
	g.Go(func() error {
		return findAll(ctx, r.sections, bson.D{{Key: "_id", Value: 1}}, &data.Sections)
	})
	g.Go(func() error {
		return findAll(ctx, r.subAreas, bson.D{{Key: "sectionId", Value: 1}, {Key: "_id", Value: 1}}, &data.SubAreas)
	})
	g.Go(func() error {
		return findAll(ctx, r.rules, bson.D{{Key: "subAreaId", Value: 1}, {Key: "ruleId", Value: 1}}, &data.Rules)
	})

	if err := g.Wait(); err != nil {
		return engine.CatalogData{}, fmt.Errorf("failed to load catalog: %w", err)
	}
	return data, nil
}

// Replace swaps the stored catalog for data, collection by collection
func (r *catalogRepo) Replace(ctx context.Context, data engine.CatalogData) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return replaceAll(ctx, r.questions, data.Questions) })
	g.Go(func() error { return replaceAll(ctx, r.sections, data.Sections) })
	g.Go(func() error { return replaceAll(ctx, r.subAreas, data.SubAreas) })
	g.Go(func() error { return replaceAll(ctx, r.rules, data.Rules) })

	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to replace catalog: %w", err)
	}
	return nil
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, sort bson.D, out *[]T) error {
	cursor, err := coll.Find(ctx, bson.M{}, options.Find().SetSort(sort))
	if err != nil {
		return fmt.Errorf("%s: %w", coll.Name(), err)
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, out); err != nil {
		return fmt.Errorf("%s: %w", coll.Name(), err)
	}
	return nil
}

func replaceAll[T any](ctx context.Context, coll *mongo.Collection, docs []T) error {
	if _, err := coll.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("%s: %w", coll.Name(), err)
	}
	if len(docs) == 0 {
		return nil
	}

	items := make([]interface{}, len(docs))
	for i := range docs {
		items[i] = docs[i]
	}
	if _, err := coll.InsertMany(ctx, items); err != nil {
		return fmt.Errorf("%s: %w", coll.Name(), err)
	}
	return nil
}
