package service

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/internal/apperr"
	"storefront/internal/cache"
	"storefront/internal/metrics"
	"storefront/internal/models"
)

// Fixed pricing rules.
var (
	taxRate               = decimal.RequireFromString("0.10")
	freeShippingThreshold = decimal.NewFromInt(100)
	flatShipping          = decimal.NewFromInt(10)
)

// ProductLookup lets the cart check that a product can be bought.
type ProductLookup interface {
	FindByID(ctx context.Context, id string) (*models.Product, error)
}

// CartService keeps one cart per session token in a cache.Store. There is no
// locking: two concurrent writes to the same session may race, and the last
// write wins.
type CartService struct {
	store    cache.Store
	products ProductLookup
	logger   *zap.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewCartService builds the service. products may be nil, in which case
// AddItem trusts the product id it is given.
func NewCartService(store cache.Store, products ProductLookup, logger *zap.Logger, m *metrics.Metrics) *CartService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartService{
		store:    store,
		products: products,
		logger:   logger,
		metrics:  m,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

type AddItemInput struct {
	ProductID string
	Price     decimal.Decimal
	Quantity  int
	Size      string
	Color     string
}

// GetCart returns the session's cart, creating and storing an empty one on
// first use.
func (s *CartService) GetCart(ctx context.Context, sessionID string) (cart *models.Cart, err error) {
	defer func() { s.metrics.CartOp("get", err) }()

	cart, found, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !found {
		cart = s.emptyCart()
		if err := s.save(ctx, sessionID, cart); err != nil {
			return nil, err
		}
	}
	cart.Totals = ComputeTotals(cart)
	return cart, nil
}

// AddItem merges the item into the line with the same product, size and
// color, or appends a new line.
func (s *CartService) AddItem(ctx context.Context, sessionID string, in AddItemInput) (cart *models.Cart, err error) {
	defer func() { s.metrics.CartOp("add", err) }()

	in.ProductID = strings.TrimSpace(in.ProductID)
	if in.ProductID == "" {
		return nil, apperr.Missing([]string{"productId"}, "")
	}
	if !in.Price.IsPositive() {
		return nil, apperr.Invalid("price", "price must be greater than 0")
	}
	if in.Quantity < 1 {
		return nil, apperr.Invalid("quantity", "quantity must be at least 1")
	}
	if err := s.checkPurchasable(ctx, in.ProductID); err != nil {
		return nil, err
	}

	cart, found, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !found {
		cart = s.emptyCart()
	}

	line := models.CartLine{
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
		Size:      in.Size,
		Color:     in.Color,
		Price:     in.Price,
	}
	if i := cart.Find(line.Key()); i >= 0 {
		cart.Lines[i].Quantity += in.Quantity
	} else {
		cart.Lines = append(cart.Lines, line)
	}

	cart.UpdatedAt = s.now()
	if err := s.save(ctx, sessionID, cart); err != nil {
		return nil, err
	}
	s.logger.Debug("cart item added",
		zap.String("session_id", sessionID),
		zap.String("product_id", in.ProductID),
		zap.Int("quantity", in.Quantity),
	)
	cart.Totals = ComputeTotals(cart)
	return cart, nil
}

// UpdateItem sets the quantity of a line; a quantity of zero or less removes it.
func (s *CartService) UpdateItem(ctx context.Context, sessionID string, key models.LineKey, quantity int) (cart *models.Cart, err error) {
	defer func() { s.metrics.CartOp("update", err) }()

	cart, i, err := s.locate(ctx, sessionID, key)
	if err != nil {
		return nil, err
	}

	if quantity <= 0 {
		cart.Lines = append(cart.Lines[:i], cart.Lines[i+1:]...)
	} else {
		cart.Lines[i].Quantity = quantity
	}

	cart.UpdatedAt = s.now()
	if err := s.save(ctx, sessionID, cart); err != nil {
		return nil, err
	}
	cart.Totals = ComputeTotals(cart)
	return cart, nil
}

// RemoveItem deletes a line. A missing cart or line leaves the store untouched.
func (s *CartService) RemoveItem(ctx context.Context, sessionID string, key models.LineKey) (cart *models.Cart, err error) {
	defer func() { s.metrics.CartOp("remove", err) }()

	cart, i, err := s.locate(ctx, sessionID, key)
	if err != nil {
		return nil, err
	}

	cart.Lines = append(cart.Lines[:i], cart.Lines[i+1:]...)
	cart.UpdatedAt = s.now()
	if err := s.save(ctx, sessionID, cart); err != nil {
		return nil, err
	}
	cart.Totals = ComputeTotals(cart)
	return cart, nil
}

// ClearCart drops every line of the session's cart.
func (s *CartService) ClearCart(ctx context.Context, sessionID string) (err error) {
	defer func() { s.metrics.CartOp("clear", err) }()

	if err := s.store.Delete(ctx, sessionID); err != nil {
		return apperr.Upstream("clear cart", err)
	}
	return nil
}

// ComputeTotals applies the pricing rules: 10% tax rounded to cents, and a
// flat 10 shipping unless the subtotal is strictly above 100.
func ComputeTotals(cart *models.Cart) models.Totals {
	subtotal := decimal.Zero
	for _, l := range cart.Lines {
		subtotal = subtotal.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}

	tax := subtotal.Mul(taxRate).Round(2)
	shipping := flatShipping
	if subtotal.GreaterThan(freeShippingThreshold) {
		shipping = decimal.Zero
	}

	return models.Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Total:    subtotal.Add(tax).Add(shipping),
	}
}

func (s *CartService) checkPurchasable(ctx context.Context, productID string) error {
	if s.products == nil {
		return nil
	}
	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return err
	}
	if !p.Published {
		return apperr.NotFound("product")
	}
	return nil
}

func (s *CartService) locate(ctx context.Context, sessionID string, key models.LineKey) (*models.Cart, int, error) {
	cart, found, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, 0, err
	}
	if !found {
		return nil, 0, apperr.NotFound("cart")
	}
	i := cart.Find(key)
	if i < 0 {
		return nil, 0, apperr.NotFound("cart item")
	}
	return cart, i, nil
}

func (s *CartService) load(ctx context.Context, sessionID string) (*models.Cart, bool, error) {
	var cart models.Cart
	found, err := cache.GetJSON(ctx, s.store, sessionID, &cart)
	if err != nil {
		return nil, false, apperr.Upstream("load cart", err)
	}
	if !found {
		return nil, false, nil
	}
	if cart.Lines == nil {
		cart.Lines = []models.CartLine{}
	}
	return &cart, true, nil
}

func (s *CartService) save(ctx context.Context, sessionID string, cart *models.Cart) error {
	return apperr.Upstream("save cart", cache.PutJSON(ctx, s.store, sessionID, cart))
}

func (s *CartService) emptyCart() *models.Cart {
	return &models.Cart{Lines: []models.CartLine{}, UpdatedAt: s.now()}
}
