package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"plantfinder/internal/catalog"
	"plantfinder/internal/plants"
	"plantfinder/internal/provider"
	"plantfinder/internal/session"
	"plantfinder/pkg/database"
	"plantfinder/pkg/logger"
	"plantfinder/pkg/utils"
)

func main() {
	cfg := utils.LoadConfig()

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat, "api-server")
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("api server failed", zap.Error(err))
	}
}

func run(cfg utils.Config, log *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	cat, db, err := loadCatalog(ctx, cfg, log)
	cancel()
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	if cfg.Primary.APIKey == "" {
		log.Warn("primary provider key not set, searches will use the catalog")
	}
	if cfg.Secondary.APIKey == "" {
		log.Warn("secondary provider key not set, details will not be enriched")
	}

	primary := provider.NewPerenual(cfg.Primary.BaseURL, cfg.Primary.APIKey, cfg.HTTPTimeout, log)
	secondary := provider.NewTrefle(cfg.Secondary.BaseURL, cfg.Secondary.APIKey, cfg.HTTPTimeout, log)
	svc := plants.NewService(primary, secondary, cat, log)

	hub := session.NewHub(log)
	sessions := session.NewRegistry(svc, hub, cfg.Session.TTL, log)
	tokens := session.NewSessionTokens([]byte(cfg.Session.Secret), cfg.Session.Issuer, cfg.Session.TTL)

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log))

	// Optional: avoid “trusted all proxies” warning
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "catalog_plants": cat.Len()})
	})

	router.GET("/ready", func(c *gin.Context) {
		stats := hub.Stats()
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":   "not_ready",
					"db_error": err.Error(),
				})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"status":     "ready",
			"sessions":   sessions.Len(),
			"ws_clients": stats.Clients,
		})
	})

	session.NewHandler(sessions, tokens, cat, hub).RegisterRoutes(router.Group(""))

	httpSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP API server listening", zap.String("addr", cfg.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}

// loadCatalog picks the static dataset: the SQLite catalog when configured,
// then a JSON file, then the embedded copy. The returned *sql.DB is nil
// unless the SQLite catalog is in use.
func loadCatalog(ctx context.Context, cfg utils.Config, log *zap.Logger) (*catalog.Catalog, *sql.DB, error) {
	if cfg.CatalogDB != "" {
		db, err := database.Open(database.Config{Path: cfg.CatalogDB})
		if err != nil {
			return nil, nil, err
		}
		if err := database.Migrate(db); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("migrate catalog db: %w", err)
		}
		records, err := catalog.NewStore(db).Load(ctx)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		if len(records) > 0 {
			log.Info("catalog loaded from sqlite", zap.String("path", cfg.CatalogDB), zap.Int("plants", len(records)))
			return catalog.New(records, log), db, nil
		}
		log.Warn("sqlite catalog is empty, using embedded dataset", zap.String("path", cfg.CatalogDB))
		records, err = catalog.Embedded()
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return catalog.New(records, log), db, nil
	}

	if cfg.CatalogPath != "" {
		records, err := catalog.LoadFile(cfg.CatalogPath)
		if err != nil {
			return nil, nil, err
		}
		log.Info("catalog loaded from file", zap.String("path", cfg.CatalogPath), zap.Int("plants", len(records)))
		return catalog.New(records, log), nil, nil
	}

	records, err := catalog.Embedded()
	if err != nil {
		return nil, nil, err
	}
	log.Info("catalog loaded from embedded dataset", zap.Int("plants", len(records)))
	return catalog.New(records, log), nil, nil
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
