package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alfagnish/users-gateway/internal/config"
	"github.com/alfagnish/users-gateway/internal/events"
	"github.com/alfagnish/users-gateway/internal/server"
	"github.com/alfagnish/users-gateway/internal/users"
	"github.com/spf13/cobra"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "usersd",
	Short:         "HTTP CRUD service for users",
	Long:          "usersd serves a JSON REST API for a single user resource backed by an in-memory list or a SQLite table.",
	SilenceErrors: true,
	SilenceUsage:  true,
	// No Run; prints help by default.
}

// serveOptions holds the flags of the serve command.
type serveOptions struct {
	configFile string
	listen     string
	store      string
	db         string
}

func init() {
	rootCmd.AddCommand(newServeCmd(&serveOptions{}))
}

func newServeCmd(opts *serveOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.resolveConfig(cmd)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&opts.configFile, "config", "", "YAML config file (overrides environment)")
	cmd.Flags().StringVar(&opts.listen, "listen", "", "listen address (default $LISTEN_ADDR or :3000)")
	cmd.Flags().StringVar(&opts.store, "store", "", "store backend: memory|sqlite (default $STORE_BACKEND or memory)")
	cmd.Flags().StringVar(&opts.db, "db", "", "SQLite database path (default $DB_PATH or users.db)")
	return cmd
}

// resolveConfig layers env, config file, then explicitly set flags.
func (o *serveOptions) resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Load()
	if o.configFile != "" {
		var err error
		if cfg, err = config.LoadFile(o.configFile, cfg); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("listen") {
		cfg.ListenAddr = o.listen
	}
	if cmd.Flags().Changed("store") {
		cfg.StoreBackend = o.store
	}
	if cmd.Flags().Changed("db") {
		cfg.DBPath = o.db
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runServe(ctx context.Context, cfg *config.Config) error {
	log.Printf("config: listen=%s store=%s db=%s", cfg.ListenAddr, cfg.StoreBackend, cfg.DBPath)

	// 1. Open the user store.
	store, err := users.Open(cfg.StoreBackend, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening %s store: %w", cfg.StoreBackend, err)
	}
	defer store.Close()

	// 2. Create the change-event hub.
	hub := events.NewHub(events.DefaultBuffer)
	defer hub.Close()

	// 3. Start the HTTP server.
	srv := &http.Server{
		Addr:        cfg.ListenAddr,
		Handler:     server.New(cfg, store, hub),
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM.
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("users service listening on %s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}
	log.Println("shutting down...")

	// Close WebSocket subscribers first; Shutdown does not wait for
	// hijacked connections.
	hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown error: %v", err)
	}

	log.Println("server stopped")
	return nil
}
