package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/internal/models"
	"storefront/internal/service"
)

const cartCookie = "cartId"

type CartHandler struct {
	svc       *service.CartService
	logger    *zap.Logger
	cookieTTL time.Duration
}

func NewCartHandler(svc *service.CartService, logger *zap.Logger, cookieTTL time.Duration) *CartHandler {
	return &CartHandler{svc: svc, logger: logger, cookieTTL: cookieTTL}
}

type cartResponse struct {
	Message string       `json:"message,omitempty"`
	CartID  string       `json:"cartId"`
	Cart    *models.Cart `json:"cart"`
}

type addItemRequest struct {
	ProductID string          `json:"productId"`
	Quantity  *int            `json:"quantity"`
	Size      string          `json:"size"`
	Color     string          `json:"color"`
	Price     decimal.Decimal `json:"price"`
}

type updateItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  *int   `json:"quantity"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

// GET /api/cart
func (h *CartHandler) GetCart(c *gin.Context) {
	cartID := h.session(c)
	cart, err := h.svc.GetCart(c.Request.Context(), cartID)
	if err != nil {
		respondError(c, h.logger, err, "failed to fetch cart")
		return
	}
	c.JSON(http.StatusOK, cartResponse{CartID: cartID, Cart: cart})
}

// POST /api/cart
func (h *CartHandler) AddItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body: "+err.Error())
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	cartID := h.session(c)
	cart, err := h.svc.AddItem(c.Request.Context(), cartID, service.AddItemInput{
		ProductID: req.ProductID,
		Price:     req.Price,
		Quantity:  quantity,
		Size:      req.Size,
		Color:     req.Color,
	})
	if err != nil {
		respondError(c, h.logger, err, "failed to add item to cart")
		return
	}
	c.JSON(http.StatusOK, cartResponse{Message: "Item added to cart", CartID: cartID, Cart: cart})
}

// PUT /api/cart
func (h *CartHandler) UpdateItem(c *gin.Context) {
	cartID, ok := h.existingSession(c)
	if !ok {
		return
	}
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body: "+err.Error())
		return
	}
	if req.ProductID == "" || req.Quantity == nil {
		badRequest(c, "productId and quantity are required", "productId", "quantity")
		return
	}

	key := models.LineKey{ProductID: req.ProductID, Size: req.Size, Color: req.Color}
	cart, err := h.svc.UpdateItem(c.Request.Context(), cartID, key, *req.Quantity)
	if err != nil {
		respondError(c, h.logger, err, "failed to update cart")
		return
	}
	c.JSON(http.StatusOK, cartResponse{Message: "Cart updated", CartID: cartID, Cart: cart})
}

// DELETE /api/cart?productId=&size=&color=
func (h *CartHandler) RemoveItem(c *gin.Context) {
	cartID, ok := h.existingSession(c)
	if !ok {
		return
	}
	productID := c.Query("productId")
	if productID == "" {
		badRequest(c, "productId is required", "productId")
		return
	}

	key := models.LineKey{ProductID: productID, Size: c.Query("size"), Color: c.Query("color")}
	cart, err := h.svc.RemoveItem(c.Request.Context(), cartID, key)
	if err != nil {
		respondError(c, h.logger, err, "failed to remove item from cart")
		return
	}
	c.JSON(http.StatusOK, cartResponse{Message: "Item removed from cart", CartID: cartID, Cart: cart})
}

// DELETE /api/cart/all
func (h *CartHandler) ClearCart(c *gin.Context) {
	cartID, err := c.Cookie(cartCookie)
	if err != nil || cartID == "" {
		c.JSON(http.StatusOK, SuccessResponse{Message: "Cart cleared"})
		return
	}
	if err := h.svc.ClearCart(c.Request.Context(), cartID); err != nil {
		respondError(c, h.logger, err, "failed to clear cart")
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Cart cleared"})
}

// session returns the caller's cart token, issuing a new cookie when absent.
func (h *CartHandler) session(c *gin.Context) string {
	if id, err := c.Cookie(cartCookie); err == nil && id != "" {
		return id
	}
	id := "cart-" + uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cartCookie, id, int(h.cookieTTL.Seconds()), "/", "", c.Request.TLS != nil, true)
	return id
}

func (h *CartHandler) existingSession(c *gin.Context) (string, bool) {
	id, err := c.Cookie(cartCookie)
	if err != nil || id == "" {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "cart not found"})
		return "", false
	}
	return id, true
}
