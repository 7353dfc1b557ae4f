package routes

import (
	"context"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"storefront/internal/handlers"
	"storefront/internal/metrics"
	"storefront/internal/middleware"
)

type Deps struct {
	Products       *handlers.ProductHandler
	Categories     *handlers.CategoryHandler
	Cart           *handlers.CartHandler
	Ping           func(context.Context) error
	Logger         *zap.Logger
	Metrics        *metrics.Metrics
	CORSOrigins    []string
	RequestTimeout time.Duration
}

func RegisterRoutes(router *gin.Engine, d Deps) {
	router.Use(
		middleware.Observability(d.Logger, d.Metrics),
		middleware.Recovery(d.Logger),
		corsMiddleware(d.CORSOrigins),
	)

	if d.Metrics != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Metrics.Registry, promhttp.HandlerOpts{})))
	}

	api := router.Group("/api", middleware.Timeout(d.RequestTimeout))
	{
		api.GET("/health", handlers.Health(d.Ping, d.Logger))
		api.GET("/services", handlers.ListServices)

		api.GET("/cart", d.Cart.GetCart)
		api.POST("/cart", d.Cart.AddItem)
		api.PUT("/cart", d.Cart.UpdateItem)
		api.DELETE("/cart", d.Cart.RemoveItem)
		api.DELETE("/cart/all", d.Cart.ClearCart)

		api.GET("/product", d.Products.ListProducts)
		api.GET("/products-filter", d.Products.ListProducts)
		api.POST("/product", d.Products.CreateProduct)
		api.PUT("/product", d.Products.UpdateProduct)
		api.DELETE("/product", d.Products.DeleteProduct)
		api.GET("/dashboard/products", d.Products.ListAllProducts)

		api.GET("/category", d.Categories.List)
		api.POST("/category", d.Categories.Create)
		api.PUT("/category", d.Categories.Update)
		api.DELETE("/category", d.Categories.Delete)
	}
}

// corsMiddleware allows credentials (the cart cookie) only for an explicit
// origin list; "*" opens every origin without credentials.
func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}
