package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"
)

// run serves HTTP until ctx is canceled, then shuts down gracefully.
func (app *application) run(ctx context.Context) error {
	server := &http.Server{
		Addr:              net.JoinHostPort("", strconv.Itoa(app.config.Server.Port)),
		Handler:           app.setupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	listener, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", server.Addr, err)
	}

	return app.serve(ctx, server, listener)
}

// serve runs server on listener and shuts it down when ctx ends or the
// server fails.
func (app *application) serve(ctx context.Context, server *http.Server, listener net.Listener) error {
	serverErr := make(chan error, 1)
	go func() {
		app.logger.Info("Starting server", "addr", listener.Addr().String())
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		app.closeDeps()
		if err != nil {
			app.logger.Error("Server failed", "error", err)
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		app.logger.Info("Shutting down server...")
	}

	timeout := time.Duration(app.config.Server.ShutdownTimeoutSeconds) * time.Second
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		app.logger.Error("Server shutdown failed", "error", err)
		app.closeDeps()
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	app.closeDeps()
	app.logger.Info("Server shutdown completed")
	return nil
}

// closeDeps flushes telemetry with its own deadline so a slow HTTP drain
// cannot starve it.
func (app *application) closeDeps() {
	timeout := time.Duration(app.config.Server.ShutdownTimeoutSeconds) * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := app.deps.Close(ctx); err != nil {
		app.logger.Warn("failed to flush telemetry", "error", err)
	}
}
