package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/handlers"
	"storefront/internal/logging"
	"storefront/internal/media"
	"storefront/internal/metrics"
	"storefront/internal/repository"
	"storefront/internal/routes"
	"storefront/internal/service"
)

func main() {
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}

	logger := logging.MustNewLogger("storefront", cfg.AppEnv, cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	client, err := database.Connect(connectCtx, cfg.MongoURI)
	cancel()
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(disconnectCtx)
	}()
	db := client.Database(cfg.MongoDB)

	indexCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	err = database.EnsureIndexes(indexCtx, db, cfg.CartTTL)
	cancel()
	if err != nil {
		return err
	}
	logger.Info("mongodb ready", zap.String("database", cfg.MongoDB))

	m := metrics.New("storefront")

	store, closeStore, err := newCartStore(ctx, cfg, db, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	uploader, err := newUploader(cfg, logger)
	if err != nil {
		return err
	}
	uploader = media.WithMetrics(uploader, m)

	products := repository.NewProductRepository(db.Collection(database.ProductsCollection))
	categories := repository.NewCategoryRepository(db.Collection(database.CategoriesCollection))

	categorySvc := service.NewCategoryService(categories, products, logger)
	productSvc := service.NewProductService(products, categorySvc, uploader, logger)
	cartSvc := service.NewCartService(store, products, logger, m)

	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.MaxMultipartMemory = cfg.MaxUploadBytes
	routes.RegisterRoutes(router, routes.Deps{
		Products:       handlers.NewProductHandler(productSvc, logger, cfg.MaxUploadBytes),
		Categories:     handlers.NewCategoryHandler(categorySvc, logger),
		Cart:           handlers.NewCartHandler(cartSvc, logger, cfg.CartTTL),
		Ping:           func(ctx context.Context) error { return client.Ping(ctx, readpref.Primary()) },
		Logger:         logger,
		Metrics:        m,
		CORSOrigins:    cfg.CORSOrigins,
		RequestTimeout: cfg.RequestTimeout,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server running", zap.String("addr", srv.Addr), zap.String("cart_store", cfg.CartStore))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newCartStore picks the session backend named by CART_STORE.
func newCartStore(ctx context.Context, cfg *config.Config, db *mongo.Database, logger *zap.Logger) (cache.Store, func(), error) {
	switch cfg.CartStore {
	case config.CartStoreRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("failed to ping redis: %w", err)
		}
		logger.Info("cart store: redis", zap.String("addr", cfg.Redis.Addr))
		return cache.NewRedisStore(rdb, cfg.CartTTL), func() { _ = rdb.Close() }, nil

	case config.CartStoreMongo:
		logger.Info("cart store: mongodb")
		return repository.NewSessionRepository(db.Collection(database.CartSessionsCollection)), func() {}, nil

	default:
		logger.Warn("cart store: memory; carts are lost on restart and not shared between instances")
		mem := cache.NewMemory(cfg.CartTTL)
		go mem.RunJanitor(ctx, time.Minute)
		return mem, func() {}, nil
	}
}

func newUploader(cfg *config.Config, logger *zap.Logger) (media.Uploader, error) {
	if cfg.CloudinaryURL == "" {
		logger.Warn("CLOUDINARY_URL not set; product image uploads are disabled")
		return media.Disabled{}, nil
	}
	return media.NewCloudinaryUploader(cfg.CloudinaryURL, "storefront/products")
}
