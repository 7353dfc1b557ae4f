package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/internal/apperr"
	"storefront/internal/models"
)

const (
	writeTimeout = 5 * time.Second
	readTimeout  = 3 * time.Second
	queryTimeout = 10 * time.Second
)

// ProductQuery is a resolved product filter: the category is already an id.
// A nil Published includes drafts.
type ProductQuery struct {
	CategoryID *primitive.ObjectID
	Gender     string
	Size       string
	Color      string
	Text       string
	Published  *bool
}

type ProductRepository struct {
	collection *mongo.Collection
}

func NewProductRepository(collection *mongo.Collection) *ProductRepository {
	return &ProductRepository{
		collection: collection,
	}
}

// Create crea un nuevo producto
func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	now := time.Now().UTC()
	product.ID = primitive.NewObjectID()
	product.CreatedAt = now
	product.UpdatedAt = now
	product.IsDeleted = false
	product.DeletedAt = nil

	_, err := r.collection.InsertOne(ctx, product)
	return apperr.Upstream("insert product", err)
}

// FindByID obtiene un producto por ID
func (r *ProductRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	objID, err := parseID(id, "product")
	if err != nil {
		return nil, err
	}

	var product models.Product
	filter := bson.M{
		"_id":        objID,
		"is_deleted": false,
	}

	err = r.collection.FindOne(ctx, filter).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("product")
		}
		return nil, apperr.Upstream("find product", err)
	}

	return &product, nil
}

// Find lista productos que no están eliminados, los más nuevos primero
func (r *ProductRepository) Find(ctx context.Context, q ProductQuery) ([]*models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, buildProductFilter(q), findOptions)
	if err != nil {
		return nil, apperr.Upstream("find products", err)
	}
	defer cursor.Close(ctx)

	products := make([]*models.Product, 0)
	if err = cursor.All(ctx, &products); err != nil {
		return nil, apperr.Upstream("decode products", err)
	}

	return products, nil
}

// Update actualiza un producto
func (r *ProductRepository) Update(ctx context.Context, id string, update bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	objID, err := parseID(id, "product")
	if err != nil {
		return err
	}

	// Agregar updated_at automáticamente
	update["updated_at"] = time.Now().UTC()

	filter := bson.M{
		"_id":        objID,
		"is_deleted": false,
	}

	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": update})
	if err != nil {
		return apperr.Upstream("update product", err)
	}

	if result.MatchedCount == 0 {
		return apperr.NotFound("product")
	}

	return nil
}

// SoftDelete marca un producto como eliminado
func (r *ProductRepository) SoftDelete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	objID, err := parseID(id, "product")
	if err != nil {
		return err
	}

	filter := bson.M{
		"_id":        objID,
		"is_deleted": false,
	}

	result, err := r.collection.UpdateOne(ctx, filter, softDeleteUpdate(time.Now().UTC()))
	if err != nil {
		return apperr.Upstream("delete product", err)
	}

	if result.MatchedCount == 0 {
		return apperr.NotFound("product")
	}

	return nil
}

// SoftDeleteByCategory marca como eliminados todos los productos de una categoría
func (r *ProductRepository) SoftDeleteByCategory(ctx context.Context, categoryID primitive.ObjectID) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := bson.M{
		"category":   categoryID,
		"is_deleted": false,
	}

	result, err := r.collection.UpdateMany(ctx, filter, softDeleteUpdate(time.Now().UTC()))
	if err != nil {
		return 0, apperr.Upstream("delete category products", err)
	}
	return result.ModifiedCount, nil
}

func buildProductFilter(q ProductQuery) bson.M {
	filter := bson.M{"is_deleted": false}

	if q.CategoryID != nil {
		filter["category"] = *q.CategoryID
	}
	if q.Published != nil {
		filter["published"] = *q.Published
	}
	if q.Gender != "" {
		filter["gender"] = q.Gender
	}
	// sizes y colors son arreglos: la igualdad busca el elemento
	if q.Size != "" {
		filter["sizes"] = q.Size
	}
	if q.Color != "" {
		filter["colors"] = q.Color
	}
	if q.Text != "" {
		filter["$text"] = bson.M{"$search": q.Text}
	}

	return filter
}

func softDeleteUpdate(now time.Time) bson.M {
	return bson.M{
		"$set": bson.M{
			"is_deleted": true,
			"deleted_at": now,
			"updated_at": now,
		},
	}
}

func parseID(id, subject string) (primitive.ObjectID, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperr.Invalid("id", "invalid "+subject+" ID")
	}
	return objID, nil
}
