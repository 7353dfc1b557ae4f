package service

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/repository"
)

type fakeProducts struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]*models.Product
	clock time.Time

	createErr  error
	cascadeErr error
}

func newFakeProducts() *fakeProducts {
	return &fakeProducts{
		items: make(map[primitive.ObjectID]*models.Product),
		clock: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (f *fakeProducts) Create(_ context.Context, p *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.clock = f.clock.Add(time.Minute)
	p.ID = primitive.NewObjectID()
	p.CreatedAt, p.UpdatedAt = f.clock, f.clock
	stored := *p
	stored.Category = models.RefTo(p.Category.ID)
	f.items[p.ID] = &stored
	return nil
}

func (f *fakeProducts) FindByID(_ context.Context, id string) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.Invalid("id", "invalid product ID")
	}
	p, ok := f.items[oid]
	if !ok || p.IsDeleted {
		return nil, apperr.NotFound("product")
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProducts) Find(_ context.Context, q repository.ProductQuery) ([]*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.Product{}
	for _, p := range f.items {
		switch {
		case p.IsDeleted:
		case q.CategoryID != nil && p.Category.ID != *q.CategoryID:
		case q.Gender != "" && string(p.Gender) != q.Gender:
		case q.Size != "" && !slices.Contains(p.Sizes, q.Size):
		case q.Color != "" && !slices.Contains(p.Colors, q.Color):
		case q.Text != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(q.Text)):
		case q.Published != nil && p.Published != *q.Published:
		default:
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeProducts) Update(_ context.Context, id string, set bson.M) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	oid, _ := primitive.ObjectIDFromHex(id)
	p, ok := f.items[oid]
	if !ok || p.IsDeleted {
		return apperr.NotFound("product")
	}
	if v, ok := set["published"].(bool); ok {
		p.Published = v
	}
	if v, ok := set["name"].(string); ok {
		p.Name = v
	}
	if v, ok := set["category"].(primitive.ObjectID); ok {
		p.Category = models.RefTo(v)
	}
	return nil
}

func (f *fakeProducts) SoftDelete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	oid, _ := primitive.ObjectIDFromHex(id)
	p, ok := f.items[oid]
	if !ok || p.IsDeleted {
		return apperr.NotFound("product")
	}
	p.IsDeleted = true
	return nil
}

func (f *fakeProducts) SoftDeleteByCategory(_ context.Context, categoryID primitive.ObjectID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cascadeErr != nil {
		return 0, f.cascadeErr
	}
	var n int64
	for _, p := range f.items {
		if !p.IsDeleted && p.Category.ID == categoryID {
			p.IsDeleted = true
			n++
		}
	}
	return n, nil
}

func (f *fakeProducts) fail(create, cascade error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createErr, f.cascadeErr = create, cascade
}

// put stores p as is, bypassing Create's clock.
func (f *fakeProducts) put(p *models.Product) *models.Product {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	f.items[p.ID] = p
	return p
}

type fakeCategories struct {
	mu      sync.Mutex
	items   map[primitive.ObjectID]*models.Category
	creates int
}

func newFakeCategories() *fakeCategories {
	return &fakeCategories{items: make(map[primitive.ObjectID]*models.Category)}
}

func (f *fakeCategories) Create(_ context.Context, c *models.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	c.ID = primitive.NewObjectID()
	cp := *c
	f.items[c.ID] = &cp
	return nil
}

func (f *fakeCategories) FindByID(_ context.Context, id string) (*models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.Invalid("id", "invalid category ID")
	}
	c, ok := f.items[oid]
	if !ok || c.IsDeleted {
		return nil, apperr.NotFound("category")
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCategories) FindByName(_ context.Context, name string) (*models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.items {
		if !c.IsDeleted && strings.EqualFold(c.Name, name) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("category")
}

func (f *fakeCategories) FindByIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[primitive.ObjectID]*models.Category)
	for _, id := range ids {
		if c, ok := f.items[id]; ok && !c.IsDeleted {
			cp := *c
			out[id] = &cp
		}
	}
	return out, nil
}

func (f *fakeCategories) List(_ context.Context) ([]*models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.Category{}
	for _, c := range f.items {
		if !c.IsDeleted {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeCategories) Update(_ context.Context, id string, set bson.M) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	oid, _ := primitive.ObjectIDFromHex(id)
	c, ok := f.items[oid]
	if !ok || c.IsDeleted {
		return apperr.NotFound("category")
	}
	if v, ok := set["name"].(string); ok {
		c.Name = v
	}
	if v, ok := set["slug"].(string); ok {
		c.Slug = v
	}
	return nil
}

func (f *fakeCategories) SoftDelete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	oid, _ := primitive.ObjectIDFromHex(id)
	c, ok := f.items[oid]
	if !ok || c.IsDeleted {
		return apperr.NotFound("category")
	}
	c.IsDeleted = true
	return nil
}
