package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/fio-node/internal/api/handlers"
	"github.com/dvloznov/fio-node/internal/api/middleware"
	"github.com/dvloznov/fio-node/internal/config"
	"github.com/dvloznov/fio-node/internal/fio"
	"github.com/dvloznov/fio-node/internal/logger"
	"github.com/dvloznov/fio-node/internal/node"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logger.New(logger.Options{Format: "console"})
		boot.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Parse command-line flags
	port := flag.String("port", cfg.API.Port, "HTTP server port")
	flag.Parse()

	// Initialize logger
	log := logger.New(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	if cfg.API.AuthToken == "" {
		log.Warn().Msg("No api.auth_token configured - endpoints are unauthenticated")
	}

	// Initialize bank client and dispatcher
	client := fio.NewClient(cfg.Fio.Token,
		fio.WithBaseURL(cfg.Fio.BaseURL),
		fio.WithHTTPClient(&http.Client{Timeout: cfg.Fio.Timeout}),
		fio.WithLogger(log),
	)
	dispatcher := node.NewDispatcher(client, log)
	nodeHandler := handlers.NewNodeHandler(dispatcher, cfg.Node.ContinueOnFail, log)

	// Create router
	mux := http.NewServeMux()

	mux.HandleFunc("/api/execute", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			nodeHandler.Execute(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/columns", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			nodeHandler.Columns(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.RequestID(
			middleware.Logger(log)(
				middleware.Auth(cfg.API.AuthToken, "/health")(mux),
			),
		),
	)

	// Payment imports can be slow; leave room for the bank client timeout.
	writeTimeout := cfg.Fio.Timeout + 15*time.Second

	server := &http.Server{
		Addr:         ":" + *port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", *port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
