package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"nodeflow/pkg/config"
	"nodeflow/pkg/db"
	"nodeflow/services/execserver"
	"nodeflow/services/graphstore"
	"nodeflow/services/meta"
)

func main() {
	configPath := flag.String("config", "./nodeflow.yaml", "config file path")
	flag.Parse()

	ctx := context.Background()
	logHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	slog.SetDefault(slog.New(logHandler))

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "path", *configPath, "error", err)
		return
	}

	dbURL, ok := os.LookupEnv("DATABASE_URL")
	if !ok {
		slog.Error("DATABASE_URL is not set")
		return
	}

	pool, err := db.Connect(ctx, dbURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		return
	}
	defer pool.Close()

	// Initialize database schema
	if err := graphstore.InitDB(ctx, pool); err != nil {
		slog.Error("Failed to initialize database", "error", err)
		return
	}

	registry, err := meta.NewRegistry(meta.BuiltinTypes())
	if err != nil {
		slog.Error("Failed to build node-type catalog", "error", err)
		return
	}

	// setup router
	mainRouter := mux.NewRouter()

	apiRouter := mainRouter.PathPrefix("/api/v1").Subrouter()

	meta.NewService(registry).LoadRoutes(apiRouter)
	graphstore.NewService(pool).LoadRoutes(apiRouter)

	stepDelay := time.Duration(cfg.Server.StepDelayMilli) * time.Millisecond
	execserver.NewService(stepDelay).LoadRoutes(apiRouter)

	corsHandler := handlers.CORS(
		// Frontend URL
		handlers.AllowedOrigins([]string{cfg.Server.AllowedOrigin}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		handlers.AllowCredentials(),
	)(mainRouter)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: corsHandler,
	}

	serverErrors := make(chan error, 1)

	go func() {
		slog.Info("Starting server", "addr", cfg.Server.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		slog.Error("Server error", "error", err)

	case sig := <-shutdown:
		slog.Info("Shutdown signal received", "signal", sig)

		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			slog.Error("Could not stop server gracefully", "error", err)
			srv.Close()
		}
	}
}
