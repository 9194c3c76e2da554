package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/CTAG07/markovdot/pkg/markov"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve <files...>",
		Short: "Build the chain and serve it over a read-only HTTP API",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				a.config.Server.ApiAddr = addr
			}
			model, err := a.buildModel(cmd.Context(), args)
			if err != nil {
				return err
			}
			return a.serve(cmd.Context(), model)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", DefaultConfig().Server.ApiAddr, "Address for the API server to listen on")
	return cmd
}

// newAPIMux wires every API route onto a fresh mux.
func (a *app) newAPIMux(model *markov.Model) *http.ServeMux {
	mux := http.NewServeMux()
	NewMarkovAPI(model, a.config.Server, a.logger).RegisterRoutes(mux)
	NewServerAPI(a.config, a.logger).RegisterRoutes(mux)
	return mux
}

// serve runs the API server until ctx is done, then shuts it down gracefully.
func (a *app) serve(ctx context.Context, model *markov.Model) error {
	apiHttpServer := &http.Server{
		Addr:              a.config.Server.ApiAddr,
		Handler:           a.newAPIMux(model),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		a.logger.Info("Starting api server", "address", apiHttpServer.Addr)
		if err := apiHttpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("api server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down api server...")
	timeout := time.Duration(a.config.Server.ShutdownTimeoutSec) * time.Second
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := apiHttpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("Api server shutdown error", "error", err)
		return err
	}
	a.logger.Info("Api server stopped")
	return nil
}
