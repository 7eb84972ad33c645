// Command server-simple is the smallest possible simple-cms server: one
// entity type, everything in memory, no external services. Useful as a
// starting point for embedding the CMS into an existing application.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/tendant/simple-cms/pkg/simplecms"
	"github.com/tendant/simple-cms/pkg/simplecms/app"
	memoryrepo "github.com/tendant/simple-cms/pkg/simplecms/repo/memory"
	memorystorage "github.com/tendant/simple-cms/pkg/simplecms/storage/memory"
)

type Config struct {
	Port string `env:"PORT" env-default:"8080"`
}

// Page is a plain content type: a title and a markdown body.
type Page struct {
	ID    uuid.UUID          `json:"id" cms:"id"`
	Title string             `json:"title"`
	Body  simplecms.Markdown `json:"body"`
}

func main() {
	var config Config
	if err := cleanenv.ReadEnv(&config); err != nil {
		log.Fatalf("Failed to read configuration: %v", err)
	}

	cmsApp, err := app.New(
		app.WithRepository(memoryrepo.New()),
		app.WithBlobStore(memorystorage.New()),
		app.WithEntities(&Page{}),
	)
	if err != nil {
		log.Fatalf("Failed to assemble app: %v", err)
	}

	// Set up router
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Mount("/", cmsApp.Handler())

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", config.Port),
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on port %s", config.Port)
		log.Printf("Admin UI:  http://localhost:%s/pages", config.Port)
		log.Printf("JSON API:  http://localhost:%s/api/v1/pages", config.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Create a deadline to wait for
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown server gracefully
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
