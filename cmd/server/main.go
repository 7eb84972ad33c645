// Command server runs the simple-cms admin UI and JSON API with a small
// blog content model.
//
// Configuration comes from CMS_-prefixed environment variables, e.g.:
//
//	CMS_PORT=8080
//	CMS_DATABASE_URL=sqlite://cms.db
//	CMS_STORAGE_URL=file://./data/uploads
//	CMS_JWT_SECRET=change-me
//
// See pkg/simplecms/config.WithEnv for the full list. With no environment
// at all the server runs fully in memory.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth"
	"github.com/lmittmann/tint"
	"github.com/tendant/simple-cms/pkg/simplecms"
	"github.com/tendant/simple-cms/pkg/simplecms/app"
	"github.com/tendant/simple-cms/pkg/simplecms/config"
)

func main() {
	cfg, err := config.Load(config.WithEnv("CMS_"))
	if err != nil {
		slog.Error("Failed to load configuration", "err", err)
		os.Exit(1)
	}

	setupLogger(cfg.Environment)

	// Fail fast when Postgres or its schema is unreachable.
	if cfg.DatabaseType == "postgres" {
		if err := config.PingPostgres(cfg.DatabaseURL, cfg.DBSchema); err != nil {
			slog.Error("Failed to reach Postgres", "err", err)
			os.Exit(1)
		}
	}

	repo, err := cfg.BuildRepository()
	if err != nil {
		slog.Error("Failed to build repository", "err", err)
		os.Exit(1)
	}
	store, err := cfg.BuildBlobStore()
	if err != nil {
		slog.Error("Failed to build blob store", "err", err)
		os.Exit(1)
	}

	options := []app.Option{
		app.WithRepository(repo),
		app.WithBlobStore(store),
		app.WithEditorConfig(cfg.EditorConfig()),
		app.WithEntities(&Post{}, &Author{}),
		app.WithHooks(simplecms.Hooks{
			AfterCreate: []simplecms.AfterCreateHook{logContentChange("created")},
			AfterUpdate: []simplecms.AfterUpdateHook{logContentChange("updated")},
		}),
	}
	if cfg.JWTSecret != "" {
		tokenAuth := jwtauth.New("HS256", []byte(cfg.JWTSecret), nil)
		options = append(options, app.WithAPIMiddleware(
			jwtauth.Verifier(tokenAuth),
			jwtauth.Authenticator,
		))
	}

	cmsApp, err := app.New(options...)
	if err != nil {
		slog.Error("Failed to assemble app", "err", err)
		os.Exit(1)
	}

	if err := cmsApp.Migrate(context.Background()); err != nil {
		slog.Error("Failed to migrate schemas", "err", err)
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: routes(cmsApp, cfg),
	}

	// Start server in a goroutine
	go func() {
		slog.Info("Simple CMS starting",
			"port", cfg.Port,
			"environment", cfg.Environment,
			"database", cfg.DatabaseType,
			"storage", cfg.StorageType,
			"api_guarded", cfg.JWTSecret != "")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", "err", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "err", err)
		os.Exit(1)
	}
	slog.Info("Server exiting")
}

// setupLogger switches between human-readable development logs and JSON
// production logs.
func setupLogger(environment string) {
	var handler slog.Handler
	if environment == "development" {
		handler = tint.NewHandler(os.Stderr, &tint.Options{TimeFormat: time.Kitchen})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, nil)
	}
	slog.SetDefault(slog.New(handler))
}

func routes(cmsApp *app.App, cfg *config.ServerConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS for development
	if cfg.Environment == "development" {
		r.Use(devCORS)
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","environment":%q,"database":%q,"storage":%q}`,
			cfg.Environment, cfg.DatabaseType, cfg.StorageType)
	})

	r.Mount("/", cmsApp.Handler())

	return r
}

func devCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// logContentChange records every write through the CMS, whichever surface
// it came from.
func logContentChange(action string) func(ctx context.Context, schema *simplecms.Schema, entity any) error {
	return func(ctx context.Context, schema *simplecms.Schema, entity any) error {
		id, _ := schema.ID(entity)
		slog.Info("Content changed", "entity", schema.Name, "id", id, "action", action)
		return nil
	}
}
