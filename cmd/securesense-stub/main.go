// securesense-stub - local stand-in for the Secure Sense analysis backend.
//
// Copyright (c) 2025 Madhura Bhatsoori
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MadhuraBhatsoori/secure-sense/internal/logging"
	"github.com/MadhuraBhatsoori/secure-sense/internal/stubserver"
)

// Environment variables read at startup.
const (
	envAddr      = "SECURESENSE_STUB_ADDR"
	envMaxUpload = "SECURESENSE_STUB_MAX_UPLOAD_MB"
	envLogLevel  = "SECURESENSE_LOG_LEVEL"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	logger := logging.NewWriter(os.Stderr, getenv(envLogLevel, "info"))

	opts := stubserver.Options{Logger: logger}
	if mb, err := strconv.Atoi(os.Getenv(envMaxUpload)); err == nil && mb > 0 {
		opts.MaxUploadBytes = int64(mb) << 20
	}

	srv := &http.Server{
		Addr:              getenv(envAddr, ":5000"),
		Handler:           stubserver.NewRouter(opts),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("stub backend listening", "addr", srv.Addr)
	if err := runServer(ctx, srv); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
	logger.Info("stub backend stopped")
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
