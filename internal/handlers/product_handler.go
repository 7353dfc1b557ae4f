package handlers

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/apperr"
	"storefront/internal/media"
	"storefront/internal/models"
	"storefront/internal/service"
)

type ProductHandler struct {
	svc            *service.ProductService
	logger         *zap.Logger
	maxUploadBytes int64
}

func NewProductHandler(svc *service.ProductService, logger *zap.Logger, maxUploadBytes int64) *ProductHandler {
	return &ProductHandler{svc: svc, logger: logger, maxUploadBytes: maxUploadBytes}
}

// ListProducts lista productos publicados; ?id= devuelve uno solo.
// GET /api/product, GET /api/products-filter
func (h *ProductHandler) ListProducts(c *gin.Context) {
	h.list(c, true)
}

// ListAllProducts incluye borradores salvo que se pida ?published=.
// GET /api/dashboard/products
func (h *ProductHandler) ListAllProducts(c *gin.Context) {
	h.list(c, false)
}

func (h *ProductHandler) list(c *gin.Context, publishedOnly bool) {
	if id := c.Query("id"); id != "" {
		h.getProduct(c, id)
		return
	}

	filter, err := h.buildFilter(c, publishedOnly)
	if err != nil {
		respondError(c, h.logger, err, "failed to list products")
		return
	}

	page, err := h.svc.ListProducts(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err, "failed to list products")
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *ProductHandler) getProduct(c *gin.Context, id string) {
	product, err := h.svc.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err, "failed to get product")
		return
	}
	c.JSON(http.StatusOK, product)
}

// CreateProduct crea un producto desde un formulario multipart.
// POST /api/product
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}
	form, err := c.MultipartForm()
	if err != nil {
		badRequest(c, "expected a multipart form: "+err.Error())
		return
	}

	in, err := newProductFromForm(form)
	if err != nil {
		respondError(c, h.logger, err, "failed to create product")
		return
	}

	product, err := h.svc.CreateProduct(c.Request.Context(), in, imagesFromForm(form))
	if err != nil {
		respondError(c, h.logger, err, "failed to create product")
		return
	}
	c.JSON(http.StatusCreated, product)
}

type productUpdateRequest struct {
	ID string `json:"id"`
	models.ProductUpdate
}

// UpdateProduct aplica un parche JSON {id, ...campos}.
// PUT /api/product
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var req productUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body: "+err.Error())
		return
	}
	if req.ID == "" {
		badRequest(c, "product id is required", "id")
		return
	}

	product, err := h.svc.UpdateProduct(c.Request.Context(), req.ID, req.ProductUpdate)
	if err != nil {
		respondError(c, h.logger, err, "failed to update product")
		return
	}
	c.JSON(http.StatusOK, product)
}

// DeleteProduct hace soft delete.
// DELETE /api/product
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id := targetID(c)
	if id == "" {
		badRequest(c, "product id is required", "id")
		return
	}
	if err := h.svc.SoftDeleteProduct(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err, "failed to delete product")
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "product deleted successfully"})
}

// --- Métodos auxiliares ---

// buildFilter construye el filtro basado en query params
func (h *ProductHandler) buildFilter(c *gin.Context, publishedOnly bool) (models.ProductFilter, error) {
	page, _ := strconv.Atoi(c.Query("page"))
	pageSize, _ := strconv.Atoi(c.Query("page_size"))

	filter := models.ProductFilter{
		Category: c.Query("category"),
		Gender:   c.Query("gender"),
		Size:     c.Query("size"),
		Color:    c.Query("color"),
		Query:    c.Query("q"),
		Sort:     c.Query("sort"),
		Page:     page,
		PageSize: pageSize,
	}

	if raw, ok := c.GetQuery("published"); ok && raw != "" {
		published, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, apperr.Invalid("published", "published must be true or false")
		}
		filter.Published = &published
	} else if publishedOnly {
		published := true
		filter.Published = &published
	}
	return filter, nil
}

func newProductFromForm(form *multipart.Form) (models.NewProduct, error) {
	in := models.NewProduct{
		Name:        formValue(form, "name"),
		Description: formValue(form, "description"),
		Brand:       formValue(form, "brand"),
		Gender:      models.Gender(strings.ToLower(formValue(form, "gender"))),
		Category:    formValue(form, "category"),
		Sizes:       formValues(form, "sizes"),
		Colors:      formValues(form, "colors"),
	}

	price, err := priceFromForm(form)
	if err != nil {
		return in, err
	}
	in.Price = price

	if raw := formValue(form, "stock"); raw != "" {
		stock, err := strconv.Atoi(raw)
		if err != nil || stock < 0 {
			return in, apperr.Invalid("stock", "stock must be a non-negative integer")
		}
		in.Stock = &stock
	}
	if raw := formValue(form, "published"); raw != "" {
		in.Published, err = strconv.ParseBool(raw)
		if err != nil {
			return in, apperr.Invalid("published", "published must be true or false")
		}
	}
	if raw := formValue(form, "is_available"); raw != "" {
		available, err := strconv.ParseBool(raw)
		if err != nil {
			return in, apperr.Invalid("is_available", "is_available must be true or false")
		}
		in.IsAvailable = &available
	}
	return in, nil
}

// priceFromForm accepts either a JSON object in "price" or one field per
// currency (price_ngn, price_usd, price_gbp).
func priceFromForm(form *multipart.Form) (models.Prices, error) {
	var p models.Prices
	if raw := formValue(form, "price"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return p, apperr.Invalid("price", `price must be a JSON object like {"USD":"10.00"}`)
		}
		return p, nil
	}
	p.NGN = formValue(form, "price_ngn")
	p.USD = formValue(form, "price_usd")
	p.GBP = formValue(form, "price_gbp")
	return p, nil
}

func imagesFromForm(form *multipart.Form) []media.File {
	headers := form.File["images"]
	files := make([]media.File, 0, len(headers))
	for _, fh := range headers {
		files = append(files, media.File{
			Name: fh.Filename,
			Open: func() (io.ReadCloser, error) { return fh.Open() },
		})
	}
	return files
}

func formValue(form *multipart.Form, key string) string {
	if v := form.Value[key]; len(v) > 0 {
		return strings.TrimSpace(v[0])
	}
	return ""
}

// formValues collects repeated fields, also splitting comma-separated values.
func formValues(form *multipart.Form, key string) []string {
	var out []string
	for _, v := range form.Value[key] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
