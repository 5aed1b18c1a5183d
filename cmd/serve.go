package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/desertthunder/tempo/internal/server"
	"github.com/urfave/cli/v3"
)

// Serve runs the local report viewer over HTTP.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	dir := cmd.String("dir")
	if dir == "" {
		dir = r.config.Server.Dir
	}
	dataPath := cmd.String("file")
	if dataPath == "" {
		dataPath = r.config.Output.Path
	}
	port := cmd.Int("port")

	router := server.NewBasicRouter()
	router.Use(server.LoggingMiddleware(r.logger))
	router.Handler(server.NewStaticHandler(dir, dataPath))

	addr := fmt.Sprintf("%s:%d", r.config.Server.Host, port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Info("serving report viewer", "addr", addr, "dir", dir, "data", dataPath)
		r.writePlain("Serving report viewer at http://%s (ctrl+c to stop)\n", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		r.logger.Info("shutting down viewer server")
		return httpServer.Shutdown(context.Background())
	}
}
