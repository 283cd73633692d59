// Copyright 2025 the mcp-hetzner authors
// SPDX-License-Identifier: MIT

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mcp-hetzner/mcp-hetzner/internal/hetzner"
	"github.com/mcp-hetzner/mcp-hetzner/internal/utils"
)

// createMCPServer creates the MCP server, but does not start serving it yet.
func createMCPServer(ctx context.Context, serveOpts *ServeOptions) *mcp.Server {
	opts := &mcp.ServerOptions{
		KeepAlive: 30 * time.Second,
		PageSize:  mcp.DefaultPageSize,
	}

	impl := &mcp.Implementation{
		Name:    serveOpts.Name,
		Title:   serveOpts.Name,
		Version: serveOpts.Version,
	}

	srv := mcp.NewServer(impl, opts)

	// Add a logging middleware.
	srv.AddReceivingMiddleware(withLogger(slog.Default()))

	slog.DebugContext(ctx, "the MCP server has been created",
		"mcp.name", serveOpts.Name,
		"mcp.version", serveOpts.Version,
	)

	return srv
}

// startServer starts an HTTP server for a given MCP handler in a goroutine.
func startServer(
	ctx context.Context,
	listenAddr string,
	handler http.Handler,
	transportType utils.TransportType,
	errChan chan<- error,
) *http.Server {
	httpSrv := &http.Server{
		Addr:              listenAddr,
		Handler:           handler,
		IdleTimeout:       30 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "the MCP server is listening",
			"server.address", listenAddr,
			"server.transport", transportType,
		)

		err := httpSrv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.ErrorContext(ctx, fmt.Sprintf("failed to serve MCP server via %s", transportType),
				"error", err,
			)

			errChan <- err
		}
	}()

	return httpSrv
}

// startStreamableHTTPServer initializes and starts a streamable HTTP server.
func startStreamableHTTPServer(
	ctx context.Context,
	mcpSrv *mcp.Server,
	provider *hetzner.Provider,
	listenAddr string,
	headerName string,
	errChan chan<- error,
) (utils.StoppableServer, error) {
	streamableHandler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server {
			return mcpSrv
		},
		&mcp.StreamableHTTPOptions{},
	)

	handler := withTokenHeader(provider, headerName, streamableHandler)
	httpServer := startServer(ctx, listenAddr, handler, utils.TransportStreamable, errChan)

	return httpServer, nil
}

// startSSEServer initializes and starts a Server-Sent Events (SSE) server.
func startSSEServer(
	ctx context.Context,
	mcpSrv *mcp.Server,
	provider *hetzner.Provider,
	listenAddr string,
	headerName string,
	errChan chan<- error,
) (utils.StoppableServer, error) {
	sseHandler := mcp.NewSSEHandler(
		func(_ *http.Request) *mcp.Server {
			return mcpSrv
		},
		&mcp.SSEOptions{},
	)

	handler := withTokenHeader(provider, headerName, sseHandler)
	httpServer := startServer(ctx, listenAddr, handler, utils.TransportSSE, errChan)

	return httpServer, nil
}

// withTokenHeader injects the API client for the request's token into
// the context. Requests without the header fall through to the default
// client, tools reject the call when neither is available.
func withTokenHeader(provider *hetzner.Provider, headerName string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get(headerName)
		if token != "" {
			slog.DebugContext(r.Context(), "API token found in request header",
				"header", headerName,
			)

			ctx := hetzner.NewContext(r.Context(), provider.ForToken(token))
			r = r.WithContext(ctx)
		}

		next.ServeHTTP(w, r)
	})
}

// withLogger returns a middleware to log each invocation of the MCP server.
func withLogger(logger *slog.Logger) mcp.Middleware {
	return func(next mcp.MethodHandler) mcp.MethodHandler {
		return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
			session := req.GetSession()
			params := req.GetParams()

			logger.DebugContext(ctx, "MCP method started",
				"method", method,
				"session_id", session.ID(),
				"has_params", params != nil,
			)

			start := time.Now()

			result, err := next(ctx, method, req)

			duration := time.Since(start)

			if err != nil {
				logger.ErrorContext(ctx, "MCP method failed",
					"method", method,
					"session_id", session.ID(),
					"duration_ms", duration.Milliseconds(),
					"error", err,
				)
			}

			return result, err
		}
	}
}
