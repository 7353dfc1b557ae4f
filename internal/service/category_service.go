package service

import (
	"context"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"storefront/internal/apperr"
	"storefront/internal/models"
)

type CategoryStore interface {
	Create(ctx context.Context, category *models.Category) error
	FindByID(ctx context.Context, id string) (*models.Category, error)
	FindByName(ctx context.Context, name string) (*models.Category, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.Category, error)
	List(ctx context.Context) ([]*models.Category, error)
	Update(ctx context.Context, id string, update bson.M) error
	SoftDelete(ctx context.Context, id string) error
}

type NewCategory struct {
	Name        string
	Description string
	Image       string
}

type CategoryService struct {
	categories CategoryStore
	products   ProductStore
	logger     *zap.Logger
	validate   *validator.Validate
	creating   singleflight.Group
}

func NewCategoryService(categories CategoryStore, products ProductStore, logger *zap.Logger) *CategoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CategoryService{
		categories: categories,
		products:   products,
		logger:     logger,
		validate:   newValidator(),
	}
}

func (s *CategoryService) List(ctx context.Context) ([]*models.Category, error) {
	return s.categories.List(ctx)
}

func (s *CategoryService) Get(ctx context.Context, id string) (*models.Category, error) {
	return s.categories.FindByID(ctx, id)
}

func (s *CategoryService) Create(ctx context.Context, in NewCategory) (*models.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Missing([]string{"name"}, "")
	}
	if err := s.checkImage(in.Image); err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, name, primitive.NilObjectID); err != nil {
		return nil, err
	}

	category := &models.Category{
		Name:        name,
		Slug:        Slugify(name),
		Description: strings.TrimSpace(in.Description),
		Image:       in.Image,
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) Update(ctx context.Context, id string, patch models.CategoryUpdate) (*models.Category, error) {
	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	set := bson.M{}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, apperr.Invalid("name", "name cannot be empty")
		}
		if err := s.ensureNameFree(ctx, name, category.ID); err != nil {
			return nil, err
		}
		category.Name, category.Slug = name, Slugify(name)
		set["name"], set["slug"] = category.Name, category.Slug
	}
	if patch.Description != nil {
		category.Description = strings.TrimSpace(*patch.Description)
		set["description"] = category.Description
	}
	if patch.Image != nil {
		if err := s.checkImage(*patch.Image); err != nil {
			return nil, err
		}
		category.Image = *patch.Image
		set["image"] = category.Image
	}
	if len(set) == 0 {
		return nil, apperr.Invalid("body", "no valid fields to update")
	}

	if err := s.categories.Update(ctx, id, set); err != nil {
		return nil, err
	}
	return category, nil
}

// SoftDelete soft-deletes every product that references the category, then
// the category itself. The category stays live until its products are gone,
// so a failed call can be retried.
func (s *CategoryService) SoftDelete(ctx context.Context, id string) error {
	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return err
	}

	n, err := s.products.SoftDeleteByCategory(ctx, category.ID)
	if err != nil {
		return err
	}
	if err := s.categories.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("category deleted",
		zap.String("category_id", id),
		zap.Int64("products_deleted", n),
	)
	return nil
}

// FindOrCreate returns the live category with this name, creating it when
// none exists. Concurrent calls for the same name share one lookup.
func (s *CategoryService) FindOrCreate(ctx context.Context, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Missing([]string{"category"}, "")
	}

	v, err, _ := s.creating.Do(strings.ToLower(name), func() (interface{}, error) {
		existing, err := s.categories.FindByName(ctx, name)
		if err == nil {
			return existing, nil
		}
		if !apperr.IsNotFound(err) {
			return nil, err
		}

		created := &models.Category{Name: name, Slug: Slugify(name)}
		if err := s.categories.Create(ctx, created); err != nil {
			return nil, err
		}
		s.logger.Info("category created implicitly", zap.String("name", name))
		return created, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Category), nil
}

// resolveFilter turns a category id or name into an id for filtering. found
// is false when a name matches no live category.
func (s *CategoryService) resolveFilter(ctx context.Context, ref string) (id primitive.ObjectID, found bool, err error) {
	if oid, err := primitive.ObjectIDFromHex(ref); err == nil {
		return oid, true, nil
	}
	c, err := s.categories.FindByName(ctx, ref)
	if apperr.IsNotFound(err) {
		return primitive.NilObjectID, false, nil
	}
	if err != nil {
		return primitive.NilObjectID, false, err
	}
	return c.ID, true, nil
}

// resolveForWrite turns a category id or name into a live category. Unknown
// ids are rejected; unknown names are created.
func (s *CategoryService) resolveForWrite(ctx context.Context, ref string) (*models.Category, error) {
	ref = strings.TrimSpace(ref)
	if _, err := primitive.ObjectIDFromHex(ref); err == nil {
		c, err := s.categories.FindByID(ctx, ref)
		if apperr.IsNotFound(err) {
			return nil, apperr.Invalid("category", "category does not exist")
		}
		return c, err
	}
	return s.FindOrCreate(ctx, ref)
}

// checkRef rejects an id that names no live category. Names always pass.
func (s *CategoryService) checkRef(ctx context.Context, ref string) error {
	ref = strings.TrimSpace(ref)
	if _, err := primitive.ObjectIDFromHex(ref); err != nil {
		return nil
	}
	_, err := s.resolveForWrite(ctx, ref)
	return err
}

// expand replaces each product's category reference with the category record.
// References to missing categories stay bare ids.
func (s *CategoryService) expand(ctx context.Context, products ...*models.Product) error {
	seen := make(map[primitive.ObjectID]bool)
	var ids []primitive.ObjectID
	for _, p := range products {
		if id := p.Category.ID; !id.IsZero() && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	byID, err := s.categories.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for _, p := range products {
		if c, ok := byID[p.Category.ID]; ok {
			p.Category = models.ExpandedRef(c)
		}
	}
	return nil
}

func (s *CategoryService) ensureNameFree(ctx context.Context, name string, self primitive.ObjectID) error {
	existing, err := s.categories.FindByName(ctx, name)
	switch {
	case apperr.IsNotFound(err):
		return nil
	case err != nil:
		return err
	case existing.ID == self:
		return nil
	default:
		return apperr.Invalid("name", "a category named "+name+" already exists")
	}
}

// checkImage accepts an empty value, a data URL, or an http(s) URL.
func (s *CategoryService) checkImage(image string) error {
	if err := s.validate.Var(image, "omitempty,datauri|http_url"); err != nil {
		return apperr.Invalid("image", "image must be a data URL or an http(s) URL")
	}
	return nil
}

// Slugify lowercases name and joins its letter and digit runs with dashes.
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	return b.String()
}
