package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/kalambet/newsetl/internal/api"
	"github.com/kalambet/newsetl/internal/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve an in-memory record service for local runs",
	Long: `Serve GET/PUT /usuario/{id} from memory, seeded from a JSON array of users.

Examples:
  newsetl serve --seed data/users.json
  newsetl serve --seed users.json --addr 127.0.0.1:9000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		seed, _ := cmd.Flags().GetString("seed")
		addr, _ := cmd.Flags().GetString("addr")

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		setupLogging(cfg.Log.SlogLevel())

		store := api.NewMemoryStore()
		if seed != "" {
			if store, err = api.LoadSeedFile(seed); err != nil {
				return err
			}
		}

		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("listening on %s: %w", addr, err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		printSuccess("record service listening on http://%s (%d users)", ln.Addr(), len(store.IDs()))
		return serveRecords(ctx, ln, store)
	},
}

func init() {
	serveCmd.Flags().String("seed", "", "JSON file with the initial users")
	serveCmd.Flags().String("addr", "127.0.0.1:8000", "listen address")
}

// serveRecords serves store on ln until ctx is cancelled.
func serveRecords(ctx context.Context, ln net.Listener, store *api.MemoryStore) error {
	srv := &http.Server{
		Handler:           api.NewRecordHandler(store),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		printStep("shutting down...")

		// Graceful shutdown with timeout.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
