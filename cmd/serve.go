package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/lehigh-university-libraries/contacts/internal/handlers"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var port string
	var photoDir string
	var publicURL string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start an in-memory contacts API for development",
		Long: `Starts an in-memory implementation of the contacts REST API.

Contacts live only as long as the process; photos are written to --photo-dir.
The API is served under /contacts, with /healthcheck and /metrics alongside.`,
		Example: `  # Start server on default port 8080
  contacts serve

  # Start server on custom port with photo URLs behind a proxy
  contacts serve --port 3000 --public-url https://contacts.example.com`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			handler := handlers.New(
				handlers.WithPhotoDir(photoDir),
				handlers.WithPublicURL(publicURL),
			)

			addr := ":" + port
			server := &http.Server{
				Addr:              addr,
				Handler:           handlers.NewRouter(handler),
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Contacts API available", "addr", addr, "url", "http://localhost"+addr+"/contacts")
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "8080", "Port to listen on")
	cmd.Flags().StringVar(&photoDir, "photo-dir", "uploads", "Directory for uploaded photos")
	cmd.Flags().StringVar(&publicURL, "public-url", "", "Base URL used in photo links (defaults to the request host)")

	return cmd
}
