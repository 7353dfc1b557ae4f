package service

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"storefront/internal/apperr"
	"storefront/internal/media"
	"storefront/internal/models"
	"storefront/internal/repository"
)

const maxPageSize = 100

type ProductStore interface {
	Create(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id string) (*models.Product, error)
	Find(ctx context.Context, q repository.ProductQuery) ([]*models.Product, error)
	Update(ctx context.Context, id string, update bson.M) error
	SoftDelete(ctx context.Context, id string) error
	SoftDeleteByCategory(ctx context.Context, categoryID primitive.ObjectID) (int64, error)
}

// publishable lists what a product needs before it can be published.
type publishable struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Images      []string `json:"images" validate:"min=1"`
	Price       bool     `json:"price" validate:"required"`
	Category    string   `json:"category" validate:"required"`
	Brand       string   `json:"brand" validate:"required"`
	Gender      string   `json:"gender" validate:"required,oneof=male female unisex"`
}

type ProductService struct {
	products   ProductStore
	categories *CategoryService
	uploader   media.Uploader
	validate   *validator.Validate
	logger     *zap.Logger
}

func NewProductService(products ProductStore, categories *CategoryService, uploader media.Uploader, logger *zap.Logger) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		products:   products,
		categories: categories,
		uploader:   uploader,
		validate:   newValidator(),
		logger:     logger,
	}
}

// ListProducts filters, sorts and optionally paginates live products. A
// category name that matches nothing yields an empty page.
func (s *ProductService) ListProducts(ctx context.Context, f models.ProductFilter) (*models.ProductPage, error) {
	q := repository.ProductQuery{
		Gender:    strings.TrimSpace(f.Gender),
		Size:      strings.TrimSpace(f.Size),
		Color:     strings.TrimSpace(f.Color),
		Text:      strings.TrimSpace(f.Query),
		Published: f.Published,
	}

	if ref := strings.TrimSpace(f.Category); ref != "" {
		id, found, err := s.categories.resolveFilter(ctx, ref)
		if err != nil {
			return nil, err
		}
		if !found {
			return paginate(nil, f.Page, f.PageSize), nil
		}
		q.CategoryID = &id
	}

	products, err := s.products.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	SortProducts(products, f.Sort)

	page := paginate(products, f.Page, f.PageSize)
	if err := s.categories.expand(ctx, page.Products...); err != nil {
		return nil, err
	}
	return page, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.categories.expand(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// CreateProduct validates, uploads the images, resolves the category (creating
// it by name if needed) and stores the product. Drafts only need a name.
// Uploaded images are not removed when a later step fails; their URLs are
// logged instead.
func (s *ProductService) CreateProduct(ctx context.Context, in models.NewProduct, images []media.File) (*models.Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, apperr.Missing([]string{"name"}, "")
	}
	if err := checkGender(in.Gender); err != nil {
		return nil, err
	}
	if in.Published {
		placeholders := make([]string, len(images))
		if err := s.checkPublishable(in.Name, in.Description, placeholders, in.Price, in.Category, in.Brand, in.Gender); err != nil {
			return nil, err
		}
	}
	if in.Stock != nil && *in.Stock < 0 {
		return nil, apperr.Invalid("stock", "stock must be a non-negative integer")
	}
	if err := s.categories.checkRef(ctx, in.Category); err != nil {
		return nil, err
	}

	urls, err := media.UploadAll(ctx, s.uploader, images)
	if err != nil {
		s.orphaned(urls, err)
		return nil, apperr.Upstream("upload images", err)
	}

	product := &models.Product{
		Name:        in.Name,
		Description: strings.TrimSpace(in.Description),
		Images:      urls,
		Price:       in.Price,
		Stock:       in.Stock,
		Brand:       strings.TrimSpace(in.Brand),
		Gender:      in.Gender,
		Sizes:       nonNil(in.Sizes),
		Colors:      nonNil(in.Colors),
		Published:   in.Published,
		IsAvailable: in.IsAvailable == nil || *in.IsAvailable,
	}

	if ref := strings.TrimSpace(in.Category); ref != "" {
		category, err := s.categories.resolveForWrite(ctx, ref)
		if err != nil {
			s.orphaned(urls, err)
			return nil, err
		}
		product.Category = models.ExpandedRef(category)
	}

	if err := s.products.Create(ctx, product); err != nil {
		s.orphaned(urls, err)
		return nil, err
	}
	s.logger.Info("product created",
		zap.String("product_id", product.ID.Hex()),
		zap.Bool("published", product.Published),
		zap.Int("images", len(urls)),
	)
	return product, nil
}

// UpdateProduct merges the patch into a live product. When the merged product
// is published it must satisfy the same rules as a published create.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, patch models.ProductUpdate) (*models.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	set := bson.M{}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, apperr.Invalid("name", "name cannot be empty")
		}
		p.Name = name
		set["name"] = name
	}
	if patch.Description != nil {
		p.Description = strings.TrimSpace(*patch.Description)
		set["description"] = p.Description
	}
	if patch.Images != nil {
		p.Images = patch.Images
		set["images"] = patch.Images
	}
	if patch.Price != nil {
		p.Price = *patch.Price
		set["price"] = p.Price
	}
	if patch.Stock.Set {
		if v := patch.Stock.Value; v != nil && *v < 0 {
			return nil, apperr.Invalid("stock", "stock must be a non-negative integer")
		}
		p.Stock = patch.Stock.Value
		set["stock"] = patch.Stock.Value
	}
	if patch.Brand != nil {
		p.Brand = strings.TrimSpace(*patch.Brand)
		set["brand"] = p.Brand
	}
	if patch.Gender != nil {
		if err := checkGender(*patch.Gender); err != nil {
			return nil, err
		}
		p.Gender = *patch.Gender
		set["gender"] = p.Gender
	}
	if patch.Sizes != nil {
		p.Sizes = patch.Sizes
		set["sizes"] = patch.Sizes
	}
	if patch.Colors != nil {
		p.Colors = patch.Colors
		set["colors"] = patch.Colors
	}
	if patch.Category != nil {
		category, err := s.categories.resolveForWrite(ctx, *patch.Category)
		if err != nil {
			return nil, err
		}
		p.Category = models.ExpandedRef(category)
		set["category"] = category.ID
	}
	if patch.Published != nil {
		p.Published = *patch.Published
		set["published"] = p.Published
	}
	if patch.IsAvailable != nil {
		p.IsAvailable = *patch.IsAvailable
		set["is_available"] = p.IsAvailable
	}

	if len(set) == 0 {
		return nil, apperr.Invalid("body", "no valid fields to update")
	}

	if p.Published {
		category := ""
		if !p.Category.IsZero() {
			category = p.Category.ID.Hex()
		}
		if err := s.checkPublishable(p.Name, p.Description, p.Images, p.Price, category, p.Brand, p.Gender); err != nil {
			return nil, err
		}
	}

	if err := s.products.Update(ctx, id, set); err != nil {
		return nil, err
	}
	p.UpdatedAt = time.Now().UTC()
	if err := s.categories.expand(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProductService) SoftDeleteProduct(ctx context.Context, id string) error {
	return s.products.SoftDelete(ctx, id)
}

// orphaned logs image URLs left on the media host by a failed create.
func (s *ProductService) orphaned(urls []string, cause error) {
	if len(urls) == 0 {
		return
	}
	s.logger.Warn("product create failed after upload; images left on media host",
		zap.Strings("urls", urls),
		zap.Error(cause),
	)
}

func (s *ProductService) checkPublishable(name, description string, images []string, price models.Prices, category, brand string, gender models.Gender) error {
	err := s.validate.Struct(publishable{
		Name:        name,
		Description: strings.TrimSpace(description),
		Images:      images,
		Price:       !price.IsZero(),
		Category:    strings.TrimSpace(category),
		Brand:       strings.TrimSpace(brand),
		Gender:      string(gender),
	})
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return apperr.Missing(fields, "when publishing")
}

func checkGender(g models.Gender) error {
	switch g {
	case "", models.GenderMale, models.GenderFemale, models.GenderUnisex:
		return nil
	}
	return apperr.Invalid("gender", "gender must be male, female or unisex")
}

// NormalizeSort maps unknown sort keys to newest.
func NormalizeSort(key string) string {
	switch key {
	case models.SortPriceLow, models.SortPriceHigh, models.SortRating, models.SortName:
		return key
	}
	return models.SortNewest
}

// SortProducts orders products in place. Prices are compared as decimals;
// products without a readable USD price sort last in both directions.
func SortProducts(products []*models.Product, key string) {
	var compare func(a, b *models.Product) int
	switch NormalizeSort(key) {
	case models.SortPriceLow:
		compare = func(a, b *models.Product) int { return comparePrice(a, b, false) }
	case models.SortPriceHigh:
		compare = func(a, b *models.Product) int { return comparePrice(a, b, true) }
	case models.SortRating:
		compare = func(a, b *models.Product) int { return cmp.Compare(b.Rating, a.Rating) }
	case models.SortName:
		compare = func(a, b *models.Product) int { return strings.Compare(a.Name, b.Name) }
	default:
		compare = func(a, b *models.Product) int { return b.CreatedAt.Compare(a.CreatedAt) }
	}
	slices.SortStableFunc(products, compare)
}

func comparePrice(a, b *models.Product, desc bool) int {
	pa, okA := a.Price.USDAmount()
	pb, okB := b.Price.USDAmount()
	switch {
	case !okA && !okB:
		return 0
	case !okA:
		return 1
	case !okB:
		return -1
	}
	if desc {
		return pb.Cmp(pa)
	}
	return pa.Cmp(pb)
}

func paginate(products []*models.Product, page, pageSize int) *models.ProductPage {
	if products == nil {
		products = []*models.Product{}
	}
	total := len(products)

	if pageSize <= 0 {
		pages := 0
		if total > 0 {
			pages = 1
		}
		return &models.ProductPage{Products: products, Total: total, Page: 1, Pages: pages}
	}

	pageSize = min(pageSize, maxPageSize)
	page = max(page, 1)
	pages := (total + pageSize - 1) / pageSize

	start := min((page-1)*pageSize, total)
	end := min(start+pageSize, total)
	return &models.ProductPage{
		Products: products[start:end],
		Total:    total,
		Page:     page,
		Pages:    pages,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
