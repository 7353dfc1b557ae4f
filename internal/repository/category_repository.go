package repository

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/internal/apperr"
	"storefront/internal/models"
)

type CategoryRepository struct {
	collection *mongo.Collection
}

func NewCategoryRepository(collection *mongo.Collection) *CategoryRepository {
	return &CategoryRepository{collection: collection}
}

func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	now := time.Now().UTC()
	category.ID = primitive.NewObjectID()
	category.CreatedAt = now
	category.UpdatedAt = now
	category.IsDeleted = false
	category.DeletedAt = nil

	_, err := r.collection.InsertOne(ctx, category)
	return apperr.Upstream("insert category", err)
}

func (r *CategoryRepository) FindByID(ctx context.Context, id string) (*models.Category, error) {
	objID, err := parseID(id, "category")
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": objID, "is_deleted": false})
}

// FindByName matches the name exactly, ignoring case.
func (r *CategoryRepository) FindByName(ctx context.Context, name string) (*models.Category, error) {
	pattern := "^" + regexp.QuoteMeta(name) + "$"
	return r.findOne(ctx, bson.M{
		"name":       primitive.Regex{Pattern: pattern, Options: "i"},
		"is_deleted": false,
	})
}

// FindByIDs returns the live categories among ids, keyed by id.
func (r *CategoryRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.Category, error) {
	out := make(map[primitive.ObjectID]*models.Category, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}, "is_deleted": false})
	if err != nil {
		return nil, apperr.Upstream("find categories", err)
	}
	defer cursor.Close(ctx)

	var categories []*models.Category
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, apperr.Upstream("decode categories", err)
	}
	for _, c := range categories {
		out[c.ID] = c
	}
	return out, nil
}

// List returns live categories, newest first.
func (r *CategoryRepository) List(ctx context.Context) ([]*models.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"is_deleted": false}, opts)
	if err != nil {
		return nil, apperr.Upstream("list categories", err)
	}
	defer cursor.Close(ctx)

	categories := make([]*models.Category, 0)
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, apperr.Upstream("decode categories", err)
	}
	return categories, nil
}

func (r *CategoryRepository) Update(ctx context.Context, id string, update bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	objID, err := parseID(id, "category")
	if err != nil {
		return err
	}
	update["updated_at"] = time.Now().UTC()

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objID, "is_deleted": false},
		bson.M{"$set": update},
	)
	if err != nil {
		return apperr.Upstream("update category", err)
	}
	if result.MatchedCount == 0 {
		return apperr.NotFound("category")
	}
	return nil
}

func (r *CategoryRepository) SoftDelete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	objID, err := parseID(id, "category")
	if err != nil {
		return err
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objID, "is_deleted": false},
		softDeleteUpdate(time.Now().UTC()),
	)
	if err != nil {
		return apperr.Upstream("delete category", err)
	}
	if result.MatchedCount == 0 {
		return apperr.NotFound("category")
	}
	return nil
}

func (r *CategoryRepository) findOne(ctx context.Context, filter bson.M) (*models.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	var category models.Category
	if err := r.collection.FindOne(ctx, filter).Decode(&category); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("category")
		}
		return nil, apperr.Upstream("find category", err)
	}
	return &category, nil
}
