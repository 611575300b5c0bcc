package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/utm"
	"github.com/aretw0/utm/internal/cli"
	httpAdapter "github.com/aretw0/utm/pkg/adapters/http"
	"github.com/aretw0/utm/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Serves the machines in --dir over a JSON API: list and inspect machines, draw them,
start runs and read run records. Prometheus metrics are exposed on /metrics.`,
	Run: func(cmd *cobra.Command, args []string) {
		dir, _ := cmd.Flags().GetString("dir")
		port, _ := cmd.Flags().GetString("port")
		kind, _ := cmd.Flags().GetString("store")
		logger := loggerFor(cmd)

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics := observability.NewMetrics(reg)

		opts := []utm.Option{
			utm.WithLogger(logger),
			utm.WithLifecycleHooks(observability.Combine(metrics.Hooks(), observability.LoggingHooks(logger))),
		}
		if cmd.Flags().Changed("max-steps") {
			maxSteps, _ := cmd.Flags().GetInt("max-steps")
			opts = append(opts, utm.WithMaxSteps(maxSteps))
		}
		engine, err := utm.New(dir, opts...)
		if err != nil {
			fail("Error initializing utm: %v", err)
		}

		runs, closeRuns, err := cli.OpenRuns(context.Background(), kind, dir, logger)
		if err != nil {
			fail("Error opening store: %v", err)
		}
		defer closeRuns()

		server := httpAdapter.NewServer(engine.Loader(), runs,
			httpAdapter.WithRunner(engine.Runner()),
			httpAdapter.WithGatherer(reg),
			httpAdapter.WithLogger(logger),
			httpAdapter.WithVersion(utm.Version),
		)

		srv := &http.Server{
			Addr:              ":" + port,
			Handler:           httpAdapter.NewHandler(server),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			fmt.Printf("Starting utm server on %s\n", srv.Addr)
			fmt.Printf("Serving machines from: %s\n", dir)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			closeRuns()
			fail("Server error: %v", err)

		case sig := <-shutdown:
			fmt.Printf("\nStart shutdown... Signal: %v\n", sig)

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
				if err := srv.Close(); err != nil {
					fmt.Printf("Error killing server: %v\n", err)
				}
			}
			fmt.Println("utm server stopped gracefully")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().String("store", cli.StoreMemory, "Run store: memory, file, redis or sqlite")
	serveCmd.Flags().Int("max-steps", 0, "Default step budget for runs (0 uses UTM_MAX_STEPS or the built-in default)")
}
