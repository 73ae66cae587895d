package api

import (
	"net/http"
	"os"
	"time"

	"catalog_api/internal/api/handler"
	"catalog_api/internal/api/middleware"
	"catalog_api/internal/app/service"
	"catalog_api/internal/platform/logger"
	"catalog_api/internal/platform/metrics"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterConfig struct {
	AllowedOrigins []string
	RequestTimeout time.Duration
	ImagesDir      string
	MaxUploadBytes int64
}

func NewRouter(authService *service.AuthService, productService *service.ProductService, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Total-Count"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(metrics.HTTPMetricsMiddleware)
	r.Use(chiMiddleware.RequestLogger(&chiMiddleware.DefaultLogFormatter{Logger: logger.Default(), NoColor: true}))
	r.Use(chiMiddleware.Recoverer)
	if cfg.RequestTimeout > 0 {
		r.Use(chiMiddleware.Timeout(cfg.RequestTimeout))
	}
	// Token is verified here, enforced per route by middleware.Authenticator.
	r.Use(middleware.Verifier)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	if cfg.ImagesDir != "" {
		images := http.StripPrefix("/images/", http.FileServer(noListingFS{http.Dir(cfg.ImagesDir)}))
		r.Get("/images/*", images.ServeHTTP)
	}

	authHandler := handler.NewAuthHandler(authService)
	r.Group(authHandler.RegisterRoutes)

	productHandler := handler.NewProductHandler(productService, cfg.MaxUploadBytes)
	r.Route("/products", productHandler.RegisterRoutes)

	adminHandler := handler.NewAdminProductHandler(productHandler)
	r.Route("/admin/products", adminHandler.RegisterRoutes)

	return r
}

// noListingFS hides directories so /images/ cannot be enumerated.
type noListingFS struct {
	fs http.FileSystem
}

func (n noListingFS) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.IsDir() {
		f.Close()
		return nil, os.ErrNotExist
	}
	return f, nil
}
