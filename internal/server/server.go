// Copyright 2025 the mcp-hetzner authors
// SPDX-License-Identifier: MIT

// Package server wires the Hetzner Cloud tools into an MCP server and
// runs it over the chosen transport.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mcp-hetzner/mcp-hetzner/internal/hetzner"
	"github.com/mcp-hetzner/mcp-hetzner/internal/tools"
	"github.com/mcp-hetzner/mcp-hetzner/internal/utils"
)

// ServeOptions encapsulates the available command-line options.
// The mapstructure tags match the viper keys bound in cmd.
type ServeOptions struct {
	Name              string
	Version           string
	Token             string              `mapstructure:"TOKEN"`
	Endpoint          string              `mapstructure:"ENDPOINT"`
	HeaderName        string              `mapstructure:"HEADER_NAME"`
	Port              int                 `mapstructure:"PORT"`
	HealthPort        int                 `mapstructure:"HEALTH_PORT"`
	Transport         utils.TransportType `mapstructure:"TRANSPORT"`
	OtelEnable        bool                `mapstructure:"OTEL_ENABLE"`
	OtelDebug         bool                `mapstructure:"OTEL_DEBUG"`
	OtelEnableTracer  bool                `mapstructure:"OTEL_ENABLE_TRACER"`
	OtelEnableMetrics bool                `mapstructure:"OTEL_ENABLE_METRICS"`
	OtelEnableLogger  bool                `mapstructure:"OTEL_ENABLE_LOGGER"`
}

// shutdownTimeout bounds the graceful shutdown of all servers.
const shutdownTimeout = 5 * time.Second

// Serve runs the MCP server until the context is cancelled, an
// interrupt arrives or a server fails.
func Serve(ctx context.Context, serveOpts *ServeOptions) error {
	slog.DebugContext(ctx, "starting Serve() command",
		"server.transport", serveOpts.Transport,
		"server.port", serveOpts.Port,
	)

	// Bootstrap the OpenTelemetry pipeline.
	otelShutdown, err := setupOTelSDK(ctx, serveOpts)
	if err != nil {
		return fmt.Errorf("failed to set up OpenTelemetry: %w", err)
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		err = errors.Join(err, otelShutdown(shutdownCtx))
	}()

	// Over stdio there is no request header to carry a token, so a
	// configured token is the only way to reach the API.
	if serveOpts.Token == "" {
		if serveOpts.Transport == utils.TransportStdio {
			return errors.New("no API token configured, set the HCLOUD_TOKEN environment variable or the --token flag")
		}

		slog.WarnContext(ctx, "no default API token configured, clients must send one in the token header",
			"server.header", serveOpts.HeaderName,
		)
	}

	provider := hetzner.NewProvider(hetzner.Config{
		Token:      serveOpts.Token,
		Endpoint:   serveOpts.Endpoint,
		AppName:    serveOpts.Name,
		AppVersion: serveOpts.Version,
	})

	srv := createMCPServer(ctx, serveOpts)

	registered := tools.Register(srv, provider)

	slog.InfoContext(ctx, fmt.Sprintf("the MCP server %s has %d registered tools", serveOpts.Name, len(registered)))
	slog.DebugContext(ctx, "the tools have been registered",
		"mcp.tools", fmt.Sprintf("%+v", registered),
	)

	if serveOpts.Transport == utils.TransportStdio {
		slog.InfoContext(ctx, "the MCP server is running on stdio")

		return srv.Run(ctx, &mcp.StdioTransport{})
	}

	return handleServerRun(ctx, srv, provider, serveOpts)
}

// handleServerRun starts the HTTP-based MCP server and the health
// check server, then blocks until shutdown.
func handleServerRun(ctx context.Context, srv *mcp.Server, provider *hetzner.Provider, serveOpts *ServeOptions) error {
	listenAddr := fmt.Sprintf(":%d", serveOpts.Port)

	slog.DebugContext(ctx, "about to start the MCP server",
		"server.address", listenAddr,
		"server.transport", serveOpts.Transport,
	)

	serverErrChan := make(chan error, 2)

	var (
		mcpServer utils.StoppableServer
		err       error
	)

	switch serveOpts.Transport {
	case utils.TransportSSE:
		mcpServer, err = startSSEServer(ctx, srv, provider, listenAddr, serveOpts.HeaderName, serverErrChan)

	case utils.TransportStreamable:
		mcpServer, err = startStreamableHTTPServer(ctx, srv, provider, listenAddr, serveOpts.HeaderName, serverErrChan)

	default:
		return fmt.Errorf("invalid transport type: %s", serveOpts.Transport)
	}

	if err != nil {
		return err
	}

	healthServer := startHealthServer(ctx, provider, serveOpts, serverErrChan)

	group := utils.NewServerGroup()
	group.Add(mcpServer)
	group.Add(healthServer)

	return waitForShutdown(ctx, group, serverErrChan)
}

// waitForShutdown blocks until an interrupt, context cancellation or a
// server error, then gracefully shuts down every server in the group.
func waitForShutdown(ctx context.Context, group *utils.ServerGroup, serverErrChan <-chan error) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)

	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
		slog.DebugContext(ctx, "interrupt signal received, shutting down")
	case <-ctx.Done():
		slog.DebugContext(ctx, "context cancelled, shutting down")
	}

	signal.Stop(quit)
	close(quit)

	slog.DebugContext(ctx, "gracefully shutting down the servers")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := group.Shutdown(shutdownCtx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to shut down the servers, forcing exit",
			"error", err,
		)

		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.InfoContext(ctx, "the MCP server was shut down successfully")

	return nil
}
