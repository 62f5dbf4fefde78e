package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/zjrosen/typstmath/internal/api"
	"github.com/zjrosen/typstmath/internal/log"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve decorations over HTTP",
	Long: `Serve exposes the decoration engine as a JSON API:

  POST /decorations      decorate {"text", "rendering_mode", "render_outside_math"}
  GET  /symbols          list symbol names
  GET  /symbols/{name}   resolve one symbol
  GET  /health           liveness and cache counters

Example:
  typstmath serve                  # listen on serve.addr (localhost:7117)
  typstmath serve --addr :0        # let the OS pick a port`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "address to listen on (overrides serve.addr)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	eng, provider, shutdown, err := newEngine()
	if err != nil {
		return err
	}
	defer shutdown()

	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = cfg.Serve.Addr
	}

	server, err := api.NewServer(api.ServerConfig{
		Addr: addr,
		Handler: api.HandlerConfig{
			Engine:       eng,
			Defaults:     cfg.WalkOptions(),
			Tracer:       provider.Tracer(),
			MaxBodyBytes: cfg.Serve.MaxBodyBytes,
		},
		ReadTimeout:  cfg.Serve.ReadTimeout,
		WriteTimeout: cfg.Serve.WriteTimeout,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "typstmath serving on port %d\n", server.Port())

	select {
	case <-ctx.Done():
		fmt.Fprintln(out, "shutting down...")
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		log.ErrorErr(log.CatAPI, "stopping API server", err)
	}
	return nil
}
