// Copyright 2025 the mcp-hetzner authors
// SPDX-License-Identifier: MIT

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/alexliesenfeld/health"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mcp-hetzner/mcp-hetzner/internal/hetzner"
	"github.com/mcp-hetzner/mcp-hetzner/internal/utils"
)

const healthCheckTimeout = 3 * time.Second

// createLivenessChecker creates and returns a liveness health check handler.
func createLivenessChecker(ctx context.Context, serveOpts *ServeOptions) http.Handler {
	if serveOpts == nil {
		serveOpts = &ServeOptions{}
	}

	// This check just performs a minimal check to prevent undesired restarts.
	livenessChecker := health.NewChecker(
		health.WithInfo(map[string]any{
			"name":    serveOpts.Name,
			"version": serveOpts.Version,
		}),
	)

	slog.InfoContext(ctx, "creating liveness health check")

	return health.NewHandler(livenessChecker)
}

// createReadinessChecker creates and returns a readiness health check handler.
// It always probes the MCP endpoint itself and, when a default token is
// configured, the Hetzner Cloud API as well.
func createReadinessChecker(ctx context.Context, provider *hetzner.Provider, serveOpts *ServeOptions) http.Handler {
	options := []health.CheckerOption{
		health.WithCheck(health.Check{
			Name: "mcp-server",
			Check: func(ctx context.Context) error {
				return checkMCPServer(ctx, serveOpts)
			},
		}),
	}

	slog.InfoContext(ctx, "creating health check for MCP server")

	if client := provider.Default(); client != nil {
		options = append(options, health.WithCheck(health.Check{
			Name: "hcloud-api",
			Check: func(ctx context.Context) error {
				return checkHetznerAPI(ctx, client)
			},
		}))

		slog.InfoContext(ctx, "creating health check for the Hetzner Cloud API")
	}

	readinessChecker := health.NewChecker(options...)

	return health.NewHandler(readinessChecker)
}

// checkMCPServer checks if the MCP server can connect using an MCP client.
func checkMCPServer(ctx context.Context, serveOpts *ServeOptions) error {
	clientImpl := &mcp.Implementation{
		Name:    "health-check-client",
		Version: serveOpts.Version,
	}

	client := mcp.NewClient(clientImpl, nil)

	var mcpTransport mcp.Transport

	switch serveOpts.Transport {
	case utils.TransportSSE:
		mcpTransport = &mcp.SSEClientTransport{
			Endpoint: (&url.URL{
				Scheme: "http",
				Host:   fmt.Sprintf("localhost:%d", serveOpts.Port),
				Path:   "/sse",
			}).String(),
			HTTPClient: &http.Client{
				Timeout: healthCheckTimeout,
			},
		}
	case utils.TransportStreamable:
		mcpTransport = &mcp.StreamableClientTransport{
			Endpoint: (&url.URL{
				Scheme: "http",
				Host:   fmt.Sprintf("localhost:%d", serveOpts.Port),
				Path:   "/mcp",
			}).String(),
			HTTPClient: &http.Client{
				Timeout: healthCheckTimeout,
			},
		}
	default:
		return fmt.Errorf("unknown transport type: %s", serveOpts.Transport)
	}

	checkCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	session, err := client.Connect(checkCtx, mcpTransport, nil)
	if err != nil {
		return fmt.Errorf("MCP client failed to connect: %w", err)
	}

	defer func() {
		_ = session.Close()
	}()

	err = session.Ping(checkCtx, nil)
	if err != nil {
		return fmt.Errorf("MCP server ping failed: %w", err)
	}

	return nil
}

// checkHetznerAPI verifies the Hetzner Cloud API is reachable with the
// configured token. Listing locations is cheap and needs no resources
// in the project.
func checkHetznerAPI(ctx context.Context, client hetzner.Client) error {
	checkCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	_, err := client.AllLocations(checkCtx)
	if err != nil {
		return fmt.Errorf("failed to reach the Hetzner Cloud API: %w", err)
	}

	return nil
}

// startHealthServer starts the health check server on the specified port.
func startHealthServer(
	ctx context.Context,
	provider *hetzner.Provider,
	serveOpts *ServeOptions,
	errChan chan<- error,
) *http.Server {
	// Separate liveness and readiness handlers following Kubernetes conventions.
	livenessHandler := createLivenessChecker(ctx, serveOpts)
	readinessHandler := createReadinessChecker(ctx, provider, serveOpts)

	livenessEndpoint := "/livez"
	readinessEndpoint := "/readyz"

	mux := http.NewServeMux()
	mux.Handle(readinessEndpoint, readinessHandler)
	mux.Handle(livenessEndpoint, livenessHandler)

	healthAddr := fmt.Sprintf(":%d", serveOpts.HealthPort)

	healthServer := &http.Server{
		Addr:              healthAddr,
		Handler:           mux,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       15 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "the health check server is listening",
			"server.address", healthAddr,
			"endpoint.liveness", livenessEndpoint,
			"endpoint.readiness", readinessEndpoint,
		)

		err := healthServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.ErrorContext(ctx, "health server failed",
				"error", err,
			)

			errChan <- fmt.Errorf("health server error: %w", err)
		}
	}()

	return healthServer
}
