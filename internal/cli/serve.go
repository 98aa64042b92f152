package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ganot/motion-collector/internal/app"
	"github.com/ganot/motion-collector/internal/mcp"
)

const shutdownTimeout = 5 * time.Second

func NewServeCmd(deps *Dependencies) *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run replication and the MCP server",
		Long:  "Run the upload scanner in the background and expose recording control over MCP.\nIn http mode /mcp, /health and /metrics are served.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := deps.App
			if mode == "" {
				mode = a.Config.Transport.Mode
			}
			if mode != "stdio" && mode != "http" {
				return fmt.Errorf("unknown transport mode %q", mode)
			}

			server := mcp.NewServer(mcp.Config{
				Services: mcp.Services{
					Recordings: a.Recordings,
					Capture:    a.Capture,
					Uploads:    a.Scanner,
					Activity:   a.Activity,
					NewSource:  a.NewSource,
				},
				TransportMode: mode,
				Logger:        a.Logger,
			})

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return a.Run(ctx)
			})

			switch mode {
			case "stdio":
				g.Go(func() error {
					defer cancel()
					a.Logger.Info("starting stdio transport")
					err := server.Run(ctx, &sdkmcp.StdioTransport{})
					if errors.Is(err, context.Canceled) {
						return nil
					}
					return err
				})
			default:
				httpServer := &http.Server{
					Addr:    fmt.Sprintf("%s:%d", a.Config.Server.Host, a.Config.Server.Port),
					Handler: newRouter(a, server),
				}
				g.Go(func() error {
					a.Logger.Info("server listening", "addr", httpServer.Addr)
					if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						return err
					}
					return nil
				})
				g.Go(func() error {
					<-ctx.Done()
					shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
					defer done()
					a.Logger.Info("shutting down")
					return httpServer.Shutdown(shutdownCtx)
				})
			}

			err := g.Wait()
			stopCapture(a)
			return err
		},
	}

	cmd.Flags().StringVar(&mode, "transport", "", "MCP transport: stdio or http (default from config)")

	return cmd
}

func newRouter(a *app.App, server *sdkmcp.Server) http.Handler {
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(r *http.Request) *sdkmcp.Server { return server },
		&sdkmcp.StreamableHTTPOptions{
			SessionTimeout: 30 * time.Minute,
		},
	)

	router := http.NewServeMux()
	router.Handle("/mcp", mcpHandler)
	router.Handle("/mcp/", mcpHandler)
	router.Handle("/metrics", a.Metrics.Handler())
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := a.DB.PingContext(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return router
}

// stopCapture finishes a session left open when the server exits so its
// samples reach disk.
func stopCapture(a *app.App) {
	if _, ok := a.Capture.Active(); !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	rec, result := a.Capture.Stop(ctx)
	err := <-result
	if rec == nil {
		return
	}
	if err != nil {
		a.Logger.Error("failed to finish recording on shutdown", "id", rec.ID, "error", err)
		return
	}
	a.Logger.Info("finished recording on shutdown", "id", rec.ID)
}
