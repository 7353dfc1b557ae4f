package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/models"
	"storefront/internal/service"
)

type CategoryHandler struct {
	svc    *service.CategoryService
	logger *zap.Logger
}

func NewCategoryHandler(svc *service.CategoryService, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{svc: svc, logger: logger}
}

type createCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

type updateCategoryRequest struct {
	ID string `json:"id"`
	models.CategoryUpdate
}

// GET /api/category, GET /api/category?id=
func (h *CategoryHandler) List(c *gin.Context) {
	if id := c.Query("id"); id != "" {
		category, err := h.svc.Get(c.Request.Context(), id)
		if err != nil {
			respondError(c, h.logger, err, "failed to get category")
			return
		}
		c.JSON(http.StatusOK, category)
		return
	}

	categories, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "failed to list categories")
		return
	}
	c.JSON(http.StatusOK, categories)
}

// POST /api/category
func (h *CategoryHandler) Create(c *gin.Context) {
	var req createCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body: "+err.Error())
		return
	}

	category, err := h.svc.Create(c.Request.Context(), service.NewCategory{
		Name:        req.Name,
		Description: req.Description,
		Image:       req.Image,
	})
	if err != nil {
		respondError(c, h.logger, err, "failed to create category")
		return
	}
	c.JSON(http.StatusCreated, category)
}

// PUT /api/category
func (h *CategoryHandler) Update(c *gin.Context) {
	var req updateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body: "+err.Error())
		return
	}
	if req.ID == "" {
		badRequest(c, "category id is required", "id")
		return
	}

	category, err := h.svc.Update(c.Request.Context(), req.ID, req.CategoryUpdate)
	if err != nil {
		respondError(c, h.logger, err, "failed to update category")
		return
	}
	c.JSON(http.StatusOK, category)
}

// DELETE /api/category soft-deletes the category and its products.
func (h *CategoryHandler) Delete(c *gin.Context) {
	id := targetID(c)
	if id == "" {
		badRequest(c, "category id is required", "id")
		return
	}
	if err := h.svc.SoftDelete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err, "failed to delete category")
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "category deleted successfully"})
}
