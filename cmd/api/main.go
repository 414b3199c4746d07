package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ewilliams-labs/segue/internal/adapters/catalog"
	"github.com/ewilliams-labs/segue/internal/adapters/rest"
	"github.com/ewilliams-labs/segue/internal/config"
	"github.com/ewilliams-labs/segue/internal/core/services"
	"github.com/ewilliams-labs/segue/internal/worker"
)

func main() {
	// 1. Configuration. Crash early if required config is missing.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}

	// 2. Initialize the catalog adapter: token lifecycle, HTTP client,
	// optional metadata cache with its writeback pool.
	httpClient := &http.Client{Timeout: 15 * time.Second}
	tokens := catalog.NewTokenManager(httpClient, cfg.Catalog.TokenURL, cfg.Catalog.ClientID, cfg.Catalog.ClientSecret)
	client := catalog.NewClient(httpClient, catalog.Config{
		BaseURL:      cfg.Catalog.BaseURL,
		MaxRetries:   cfg.Catalog.MaxRetries,
		BaseBackoff:  time.Duration(cfg.Catalog.RetryBackoffMs) * time.Millisecond,
		RateLimitRPS: cfg.Catalog.RateLimitRPS,
	}, tokens)

	if cfg.Catalog.CachePath != "" {
		cache, err := catalog.NewMetadataCache(cfg.Catalog.CachePath)
		if err != nil {
			log.Fatalf("FATAL: failed to initialize metadata cache: %v", err)
		}
		defer cache.Close()

		pool := worker.NewPool(cache, 2, 100)
		pool.Start()
		defer pool.Stop()

		client.EnableCache(cache, pool)
	}

	// 3. Initialize the core resolver and inject the adapter.
	resolver := services.NewResolver(client, services.ResolverConfig{
		PerStrategyLimit:   cfg.Resolve.PerStrategyLimit,
		PerStrategyTimeout: time.Duration(cfg.Catalog.SearchTimeoutMs) * time.Millisecond,
	})

	// 4. Initialize the HTTP adapter.
	handler := rest.NewHandler(resolver, time.Duration(cfg.Resolve.TimeoutMs)*time.Millisecond)

	// 5. Start the server with graceful shutdown.
	log.Printf("Segue API is running on %s", cfg.Server.Addr)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		err := srv.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serverErr:
		if err != nil {
			log.Fatal(err)
		}
	case <-ctx.Done():
		log.Println("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown error: %v", err)
		}
	}
}
