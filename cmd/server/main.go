package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Deekshi23/portfolio/internal/config"
	"github.com/Deekshi23/portfolio/internal/handler"
	"github.com/Deekshi23/portfolio/internal/logging"
	"github.com/Deekshi23/portfolio/internal/repository"
	"github.com/Deekshi23/portfolio/internal/service"
	"github.com/Deekshi23/portfolio/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (overrides CONFIG_FILE)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.Log.Level)

	ctx := context.Background()
	backend, err := repository.Open(ctx, cfg)
	if err != nil {
		logging.Fatal("failed to connect to database", "driver", cfg.Database.Driver, "error", err)
	}
	defer backend.Close(context.Background())

	var images storage.ImageStore
	switch cfg.Images.Store {
	case config.ImageStoreGridFS:
		images = storage.NewGridFSStorage(backend.Mongo)
	default:
		images = storage.NewLocalStorage(cfg.Images.Dir)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := handler.NewMetrics(reg)

	contactService := service.NewContactService(backend.Contacts)

	h := handler.New(backend.DB, cfg.HTTP.FrontendURL)
	contactHandler := handler.NewContactHandler(contactService, handler.ContactConfig{
		DefaultLimit:      cfg.Contact.DefaultLimit,
		MaxLimit:          cfg.Contact.MaxLimit,
		MaxBodyBytes:      cfg.HTTP.MaxBodyBytes,
		TrustedProxyCount: cfg.HTTP.TrustedProxyCount,
	}, metrics)
	imageHandler := handler.NewImageHandler(images, cfg.Images.MaxBytes)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", h.Health)
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	// お問い合わせ API
	mux.HandleFunc("POST /api/contact/message", contactHandler.Submit)
	mux.HandleFunc("GET /api/contact/messages", contactHandler.List)
	mux.HandleFunc("PATCH /api/contact/messages/{id}/read", contactHandler.MarkRead)
	mux.HandleFunc("DELETE /api/contact/messages/{id}", contactHandler.Delete)

	// プロフィール画像 API
	mux.HandleFunc("POST /api/profile/upload", imageHandler.Upload)
	mux.HandleFunc("GET /api/profile/image/latest", imageHandler.Latest)
	mux.HandleFunc("GET /api/profile/image/{id}", imageHandler.Get)
	mux.HandleFunc("GET /api/profile/latest-image", imageHandler.LatestID)

	// Admin passthrough (no auth; enable only on private deployments)
	switch {
	case !cfg.Admin.Enabled:
	case backend.Admin == nil:
		slog.Warn("admin routes requested but not supported by driver", "driver", cfg.Database.Driver)
	default:
		adminHandler := handler.NewAdminHandler(backend.Admin, cfg.HTTP.MaxBodyBytes)
		mux.HandleFunc("GET /api/admin/collections", adminHandler.Collections)
		mux.HandleFunc("GET /api/admin/collections/{name}", adminHandler.Documents)
		mux.HandleFunc("POST /api/admin/collections/{name}", adminHandler.Insert)
		mux.HandleFunc("DELETE /api/admin/collections/{name}/{id}", adminHandler.Delete)
		slog.Warn("admin collection routes enabled")
	}

	// metrics must wrap the mux directly to see the matched route pattern
	var root http.Handler = metrics.Middleware(mux)
	root = handler.Timeout(cfg.HTTP.RequestTimeout)(root)
	root = h.CORS(root)
	root = handler.SecurityHeaders(root)
	root = handler.Recover(root)
	root = handler.RequestLogger(cfg.HTTP.TrustedProxyCount)(root)

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      root,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	go func() {
		slog.Info("server listening",
			"addr", server.Addr,
			"db_driver", cfg.Database.Driver,
			"image_store", cfg.Images.Store,
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}
