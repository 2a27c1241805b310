package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"galleryserv/src/app"
	"galleryserv/src/auth"
	"galleryserv/src/server"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("port", "", "HTTP port (overrides HTTP_PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if port, _ := cmd.Flags().GetString("port"); port != "" {
		config.Server.Port = port
	}

	store, err := newStore(ctx, config)
	if err != nil {
		return fmt.Errorf("object store: %w", err)
	}
	if err := store.Ping(ctx); err != nil {
		log.Warnf("object store is not reachable yet: %v", err)
	}

	verifier, err := auth.New(ctx, config.Auth)
	if err != nil {
		return fmt.Errorf("identity verifier: %w", err)
	}
	log.Infof("auth mode %s, storage driver %s, bucket %s", config.Auth.Mode, config.S3.Driver, config.S3.Bucket)

	gallery := app.NewGallery(store, log)
	router := server.NewRouter(config, gallery, verifier, log)
	return server.RunServer(ctx, config, router, log)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate configuration and probe the object store",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), config.Server.ShutdownTimeout)
		defer cancel()

		store, err := newStore(ctx, config)
		if err != nil {
			return fmt.Errorf("object store: %w", err)
		}
		if err := store.Ping(ctx); err != nil {
			return fmt.Errorf("object store ping: %w", err)
		}
		if _, err := auth.New(ctx, config.Auth); err != nil {
			return fmt.Errorf("identity verifier: %w", err)
		}
		log.Info("configuration ok")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
