package handlers

import (
	"context"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/repository"
)

// memProducts and memCategories are minimal stores for exercising handlers.
type memProducts struct {
	mu    sync.Mutex
	items []*models.Product
}

func (m *memProducts) Create(_ context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = primitive.NewObjectID()
	cp := *p
	m.items = append(m.items, &cp)
	return nil
}

func (m *memProducts) FindByID(_ context.Context, id string) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.items {
		if p.ID.Hex() == id && !p.IsDeleted {
			cp := *p
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("product")
}

func (m *memProducts) Find(_ context.Context, q repository.ProductQuery) ([]*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Product
	for _, p := range m.items {
		if p.IsDeleted || (q.Published != nil && p.Published != *q.Published) {
			continue
		}
		if q.CategoryID != nil && p.Category.ID != *q.CategoryID {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memProducts) Update(_ context.Context, id string, set bson.M) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.items {
		if p.ID.Hex() == id && !p.IsDeleted {
			if v, ok := set["name"].(string); ok {
				p.Name = v
			}
			return nil
		}
	}
	return apperr.NotFound("product")
}

func (m *memProducts) SoftDelete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.items {
		if p.ID.Hex() == id && !p.IsDeleted {
			p.IsDeleted = true
			return nil
		}
	}
	return apperr.NotFound("product")
}

func (m *memProducts) SoftDeleteByCategory(_ context.Context, id primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, p := range m.items {
		if p.Category.ID == id && !p.IsDeleted {
			p.IsDeleted = true
			n++
		}
	}
	return n, nil
}

type memCategories struct {
	mu    sync.Mutex
	items []*models.Category
}

func (m *memCategories) Create(_ context.Context, c *models.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = primitive.NewObjectID()
	cp := *c
	m.items = append(m.items, &cp)
	return nil
}

func (m *memCategories) FindByID(_ context.Context, id string) (*models.Category, error) {
	return m.find(func(c *models.Category) bool { return c.ID.Hex() == id })
}

func (m *memCategories) FindByName(_ context.Context, name string) (*models.Category, error) {
	return m.find(func(c *models.Category) bool { return strings.EqualFold(c.Name, name) })
}

func (m *memCategories) FindByIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.Category, error) {
	out := make(map[primitive.ObjectID]*models.Category)
	for _, id := range ids {
		if c, err := m.FindByID(context.Background(), id.Hex()); err == nil {
			out[id] = c
		}
	}
	return out, nil
}

func (m *memCategories) List(_ context.Context) ([]*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.Category{}
	for _, c := range m.items {
		if !c.IsDeleted {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memCategories) Update(_ context.Context, id string, set bson.M) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.items {
		if c.ID.Hex() == id && !c.IsDeleted {
			if v, ok := set["name"].(string); ok {
				c.Name = v
			}
			return nil
		}
	}
	return apperr.NotFound("category")
}

func (m *memCategories) SoftDelete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.items {
		if c.ID.Hex() == id && !c.IsDeleted {
			c.IsDeleted = true
			return nil
		}
	}
	return apperr.NotFound("category")
}

func (m *memCategories) find(match func(*models.Category) bool) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.items {
		if !c.IsDeleted && match(c) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("category")
}
