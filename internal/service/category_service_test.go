package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/apperr"
	"storefront/internal/media"
	"storefront/internal/models"
)

func TestCategoryCreate(t *testing.T) {
	c := newCatalog(t, media.Disabled{})
	ctx := context.Background()

	cat, err := c.catSvc.Create(ctx, NewCategory{Name: " Evening Wear ", Image: "https://img.example.com/e.jpg"})
	require.NoError(t, err)
	assert.Equal(t, "Evening Wear", cat.Name)
	assert.Equal(t, "evening-wear", cat.Slug)

	_, err = c.catSvc.Create(ctx, NewCategory{Name: "evening wear"})
	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{"name"}, ve.Fields)
}

func TestCategoryCreate_ImageMustBeURLOrDataURL(t *testing.T) {
	c := newCatalog(t, media.Disabled{})
	ctx := context.Background()

	_, err := c.catSvc.Create(ctx, NewCategory{Name: "A", Image: "data:image/png;base64,iVBORw0KGgo="})
	require.NoError(t, err)

	for _, bad := range []string{"ftp://x/y.png", "not a url", "https://"} {
		_, err = c.catSvc.Create(ctx, NewCategory{Name: "B", Image: bad})
		assert.Truef(t, apperr.IsValidation(err), "image %q", bad)
	}
}

func TestCategoryUpdate(t *testing.T) {
	c := newCatalog(t, media.Disabled{})
	ctx := context.Background()

	a, err := c.catSvc.Create(ctx, NewCategory{Name: "Bags"})
	require.NoError(t, err)
	_, err = c.catSvc.Create(ctx, NewCategory{Name: "Shoes"})
	require.NoError(t, err)

	updated, err := c.catSvc.Update(ctx, a.ID.Hex(), models.CategoryUpdate{Name: ptr("Handbags")})
	require.NoError(t, err)
	assert.Equal(t, "handbags", updated.Slug)

	_, err = c.catSvc.Update(ctx, a.ID.Hex(), models.CategoryUpdate{Name: ptr("shoes")})
	assert.True(t, apperr.IsValidation(err))

	_, err = c.catSvc.Update(ctx, a.ID.Hex(), models.CategoryUpdate{Name: ptr("handbags")})
	assert.NoError(t, err, "renaming to its own name")

	_, err = c.catSvc.Update(ctx, a.ID.Hex(), models.CategoryUpdate{})
	assert.True(t, apperr.IsValidation(err))
}

func TestCategorySoftDelete_NotFoundTwice(t *testing.T) {
	c := newCatalog(t, media.Disabled{})
	ctx := context.Background()

	a, err := c.catSvc.Create(ctx, NewCategory{Name: "Bags"})
	require.NoError(t, err)
	require.NoError(t, c.catSvc.SoftDelete(ctx, a.ID.Hex()))

	assert.True(t, apperr.IsNotFound(c.catSvc.SoftDelete(ctx, a.ID.Hex())))
	_, err = c.catSvc.Get(ctx, a.ID.Hex())
	assert.True(t, apperr.IsNotFound(err))

	list, err := c.catSvc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCategorySoftDelete_FailedCascadeCanBeRetried(t *testing.T) {
	c := newCatalog(t, stubUploader{})
	ctx := context.Background()

	shirt, err := c.svc.CreateProduct(ctx, publishedInput("Shirts"), []media.File{image("a.png")})
	require.NoError(t, err)
	categoryID := shirt.Category.ID.Hex()

	c.products.fail(nil, errors.New("db down"))
	require.EqualError(t, c.catSvc.SoftDelete(ctx, categoryID), "db down")

	_, err = c.catSvc.Get(ctx, categoryID)
	require.NoError(t, err, "category stays live while its products are")

	c.products.fail(nil, nil)
	require.NoError(t, c.catSvc.SoftDelete(ctx, categoryID))

	_, err = c.svc.GetProduct(ctx, shirt.ID.Hex())
	assert.True(t, apperr.IsNotFound(err))
	_, err = c.catSvc.Get(ctx, categoryID)
	assert.True(t, apperr.IsNotFound(err))
}

func TestFindOrCreate_ConcurrentCallsCreateOnce(t *testing.T) {
	c := newCatalog(t, media.Disabled{})
	ctx := context.Background()

	var wg sync.WaitGroup
	ids := make([]string, 8)
	for i := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cat, err := c.catSvc.FindOrCreate(ctx, "Accessories")
			if assert.NoError(t, err) {
				ids[i] = cat.ID.Hex()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, c.categories.creates)
	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Evening Wear":       "evening-wear",
		"  T-Shirts & Tops ": "t-shirts-tops",
		"Été Collection":     "été-collection",
		"100% Cotton":        "100-cotton",
		"":                   "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}
