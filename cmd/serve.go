package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/urfave/cli/v3"

	"github.com/AnouckGaloppin/BookMark/internal/server"
	"github.com/AnouckGaloppin/BookMark/internal/shared"
)

// Serve runs the local catalog rewrite proxy until the context is cancelled.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	host := cmd.String("host")
	if host == "" {
		host = r.config.Server.Host
	}
	port := int(cmd.Int("port"))
	if port == 0 {
		port = r.config.Server.Port
	}

	logger := shared.WithLogger(r.logger, "component", "proxy")

	proxy, err := server.NewCatalogProxy(r.config.Catalog.OpenLibraryURL, logger)
	if err != nil {
		return err
	}

	router := server.NewBasicRouter()
	router.Use(server.LoggingMiddleware(logger))
	router.Handler(proxy)
	router.Handle(http.MethodGet, "/health", http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		fmt.Fprint(w, "ok")
	}))

	addr := fmt.Sprintf("%s:%d", host, port)
	srv := &http.Server{Addr: addr, Handler: router}

	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	r.logger.Info("catalog proxy listening", "addr", addr, "origin", r.config.Catalog.OpenLibraryURL)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("proxy server failed: %w", err)
	}
	return nil
}
