// Copyright 2025 the mcp-hetzner authors
// SPDX-License-Identifier: MIT

//nolint:gochecknoglobals
package server

var (
	CheckHetznerAPI           = checkHetznerAPI
	CheckMCPServer            = checkMCPServer
	CreateLivenessChecker     = createLivenessChecker
	CreateMCPServer           = createMCPServer
	CreateReadinessChecker    = createReadinessChecker
	HandleServerRun           = handleServerRun
	StartHealthServer         = startHealthServer
	StartSSEServer            = startSSEServer
	StartServer               = startServer
	StartStreamableHTTPServer = startStreamableHTTPServer
	WaitForShutdown           = waitForShutdown
	WithLogger                = withLogger
	WithTokenHeader           = withTokenHeader
)
