package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpAdapter "github.com/aretw0/pious/pkg/adapters/http"
	"github.com/aretw0/pious/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Starts a pool of solver sessions and exposes lines, tree info and nodes
as a JSON API over HTTP. Prometheus metrics are served on /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := appConfig.Server.Addr
		if cmd.Flags().Changed("addr") {
			addr, _ = cmd.Flags().GetString("addr")
		}
		tree := appConfig.Server.Tree
		if cmd.Flags().Changed("tree") {
			tree, _ = cmd.Flags().GetString("tree")
		}
		lineOnly, _ := cmd.Flags().GetBool("no-engine")
		mode, _ := cmd.Flags().GetString("load-mode")

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		var pool *session.Pool
		if !lineOnly {
			setup, err := newEngineSetup(cmd, reg)
			if err != nil {
				return err
			}
			defer setup.close()
			pool = setup.pool(appConfig.Server.PoolSize)
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := pool.Close(ctx); err != nil {
					logger.Warn("closing sessions", "error", err)
				}
			}()
		}

		srv := &http.Server{
			Addr: addr,
			Handler: httpAdapter.NewHandler(pool,
				httpAdapter.WithTree(tree),
				httpAdapter.WithLoadMode(session.LoadMode(mode)),
				httpAdapter.WithGatherer(reg),
				httpAdapter.WithLogger(logger),
			),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			fmt.Fprintf(cmd.ErrOrStderr(), "Starting pious server on %s\n", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		case sig := <-shutdown:
			logger.Info("shutting down", "signal", sig.String())
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				_ = srv.Close()
				return fmt.Errorf("graceful shutdown did not complete: %w", err)
			}
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "Address to listen on")
	serveCmd.Flags().String("tree", "", "Tree loaded when a request names none")
	serveCmd.Flags().String("load-mode", "", "load_tree mode: full, fast or auto")
	serveCmd.Flags().Bool("no-engine", false, "Serve the line endpoints only")
}
