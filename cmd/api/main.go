package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sourcingagent/backend/internal/logging"
	"sourcingagent/backend/internal/server"
)

func main() {
	log := logging.New(os.Getenv("LOG_LEVEL"))
	defer log.Sync()

	ctx := context.Background()

	srv, err := server.NewServer(ctx, log)
	if err != nil {
		log.Fatal("server startup failed", "error", err)
	}

	go func() {
		log.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", "error", err)
	}
	log.Info("server exiting")
}
