package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/suyanik/Einkauflist/internal/backup"
	"github.com/suyanik/Einkauflist/internal/database"
	"github.com/suyanik/Einkauflist/internal/logging"
	"github.com/suyanik/Einkauflist/internal/notify"
	"github.com/suyanik/Einkauflist/internal/server"
)

func main() {
	logger := logging.Setup(os.Getenv("EINKAUF_LOG_LEVEL"))

	// Prices go over the wire as JSON numbers, matching the existing clients.
	decimal.MarshalJSONWithoutQuotes = true

	port := os.Getenv("EINKAUF_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("EINKAUF_DB_PATH")
	if dbPath == "" {
		dbPath = "einkauflist.db"
	}

	db, err := database.Open(dbPath)
	if err != nil {
		logger.Error("open database", "path", dbPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	srv := server.New(db, server.Config{
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		Push: notify.Config{
			VAPIDPublicKey:  os.Getenv("EINKAUF_VAPID_PUBLIC_KEY"),
			VAPIDPrivateKey: os.Getenv("EINKAUF_VAPID_PRIVATE_KEY"),
		},
		// Production runs behind a TLS-terminating proxy, so r.TLS alone
		// cannot drive the Secure cookie flag.
		SecureCookies: os.Getenv("EINKAUF_ENV") == "production",
	}, logger)

	backupMgr := backup.NewManager(backup.Config{
		S3: backup.S3Config{
			Endpoint:  os.Getenv("EINKAUF_S3_ENDPOINT"),
			Bucket:    os.Getenv("EINKAUF_S3_BUCKET"),
			Region:    os.Getenv("EINKAUF_S3_REGION"),
			AccessKey: os.Getenv("EINKAUF_S3_ACCESS_KEY"),
			SecretKey: os.Getenv("EINKAUF_S3_SECRET_KEY"),
			Prefix:    os.Getenv("EINKAUF_S3_PREFIX"),
		},
	}, db, logger.With("component", "backup"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backupMgr.Start(ctx)
	defer backupMgr.Stop()

	// Drop stale rate limiter windows so the map stays small.
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				srv.RateLimiter().Cleanup()
			}
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("listening", "port", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
