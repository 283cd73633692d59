// Copyright 2025 the mcp-hetzner authors
// SPDX-License-Identifier: MIT

// Package cmd holds the definition of CLI commands.
package cmd

import (
	"os"

	"github.com/carlmjohnson/versioninfo"
	"github.com/spf13/cobra"

	"github.com/mcp-hetzner/mcp-hetzner/internal/server"
	"github.com/mcp-hetzner/mcp-hetzner/internal/utils"
)

var (
	// version will be set via ldflags.
	version string //nolint:gochecknoglobals

	// serveOpts are the options passed to the server.
	serveOpts server.ServeOptions //nolint:gochecknoglobals

	// rootCmd represents the base command when called without any subcommands.
	rootCmd *cobra.Command //nolint:gochecknoglobals

	// Default values.
	//nolint:gochecknoglobals
	defaultTransport = string(utils.TransportStdio)
	//nolint:gochecknoglobals
	defaultConfigPaths = []string{"/etc/mcp-hetzner/", "$HOME/.config/mcp-hetzner/"}
)

const (
	name = "mcp-hetzner"

	// Default values.
	defaultVerbosity  = "info"
	defaultPort       = 8080
	defaultHealthPort = 8081
	defaultHeaderName = "X-HCLOUD-TOKEN"
	defaultToken      = ""
	defaultEndpoint   = ""
	defaultConfig     = ""
	defaultEnvFile    = ""

	// Configuration keys.
	configKeyPort              = "PORT"
	configKeyHealthPort        = "HEALTH_PORT"
	configKeyTransport         = "TRANSPORT"
	configKeyToken             = "TOKEN"
	configKeyEndpoint          = "ENDPOINT"
	configKeyHeaderName        = "HEADER_NAME"
	configKeyVerbosity         = "VERBOSITY"
	configKeyConfig            = "CONFIG"
	configKeyEnvFile           = "ENV_FILE"
	configKeyOtelEnable        = "OTEL_ENABLE"
	configKeyOtelDebug         = "OTEL_DEBUG"
	configKeyOtelEnableTracer  = "OTEL_ENABLE_TRACER"
	configKeyOtelEnableMetrics = "OTEL_ENABLE_METRICS"
	configKeyOtelEnableLogger  = "OTEL_ENABLE_LOGGER"
)

// init creates a new command, append the runtime version and set flags.
// note that here the flags have not being parsed yet.
func init() {
	rootCmd = newRootCmd()
	setFlags(rootCmd)
	rootCmd.SetVersionTemplate(`{{printf "%s" .Version}}
`)
}

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:               name,
		Short:             "Hetzner Cloud MCP Server",
		Long:              `MCP server to manage Hetzner Cloud resources`,
		PersistentPreRunE: configureCLI,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return server.Serve(cmd.Context(), &serveOpts)
		},
		Version: Version(),
	}
}

// flagConfigs returns the config flags for this CLI.
func flagConfigs() []utils.FlagConfig {
	return []utils.FlagConfig{
		{
			Key:          configKeyPort,
			DefaultValue: defaultPort,
			FlagType:     utils.FlagTypeInt,
			FlagName:     "port",
			Short:        "p",
			Description:  "The port on which to run the server (HTTP transports only)",
		},
		{
			Key:          configKeyHealthPort,
			DefaultValue: defaultHealthPort,
			FlagType:     utils.FlagTypeInt,
			FlagName:     "health-port",
			Short:        "z",
			Description:  "The port on which to expose the health check endpoints",
		},
		{
			Key:          configKeyTransport,
			DefaultValue: defaultTransport,
			FlagType:     utils.FlagTypeString,
			FlagName:     "transport",
			Short:        "t",
			Description:  `The protocol to use, choose "stdio", "streamable" or "sse"`,
		},
		{
			Key:          configKeyToken,
			DefaultValue: defaultToken,
			FlagType:     utils.FlagTypeString,
			FlagName:     "token",
			Short:        "k",
			Description:  "The Hetzner Cloud API token",
		},
		{
			Key:          configKeyEndpoint,
			DefaultValue: defaultEndpoint,
			FlagType:     utils.FlagTypeString,
			FlagName:     "endpoint",
			Short:        "e",
			Description:  "Override the Hetzner Cloud API endpoint",
		},
		{
			Key:          configKeyHeaderName,
			DefaultValue: defaultHeaderName,
			FlagType:     utils.FlagTypeString,
			FlagName:     "header-name",
			Short:        "H",
			Description:  "The header name used to pass a Hetzner Cloud API token per request",
		},
		{
			Key:          configKeyEnvFile,
			DefaultValue: defaultEnvFile,
			FlagType:     utils.FlagTypeString,
			FlagName:     "env-file",
			Short:        "E",
			Description:  "Load environment variables from this dotenv file before reading the configuration",
		},
		{
			Key:          configKeyOtelEnable,
			DefaultValue: false,
			FlagType:     utils.FlagTypeBool,
			FlagName:     "otel-enable",
			Description:  "Enable the OpenTelemetry instrumentation",
		},
		{
			Key:          configKeyOtelDebug,
			DefaultValue: false,
			FlagType:     utils.FlagTypeBool,
			FlagName:     "otel-debug",
			Description:  "Also export telemetry to stdout",
		},
		{
			Key:          configKeyOtelEnableTracer,
			DefaultValue: true,
			FlagType:     utils.FlagTypeBool,
			FlagName:     "otel-enable-tracer",
			Description:  "Enable the OpenTelemetry tracer",
		},
		{
			Key:          configKeyOtelEnableMetrics,
			DefaultValue: true,
			FlagType:     utils.FlagTypeBool,
			FlagName:     "otel-enable-metrics",
			Description:  "Enable the OpenTelemetry metrics",
		},
		{
			Key:          configKeyOtelEnableLogger,
			DefaultValue: true,
			FlagType:     utils.FlagTypeBool,
			FlagName:     "otel-enable-logger",
			Description:  "Enable the OpenTelemetry logger",
		},
		{
			Key:          configKeyVerbosity,
			DefaultValue: defaultVerbosity,
			FlagType:     utils.FlagTypeString,
			FlagName:     "verbosity",
			IsPersistent: true,
			Short:        "v",
			Description:  "log level verbosity (debug, info, warning, error)",
		},
		{
			Key:          configKeyConfig,
			DefaultValue: defaultConfig,
			FlagType:     utils.FlagTypeString,
			FlagName:     "config",
			IsPersistent: true,
			Short:        "c",
			Description:  getConfigDescription(),
		},
	}
}

// ServeOpts returns the serveOpts set by the command args.
func ServeOpts() server.ServeOptions {
	return serveOpts
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// Version returns the ver "version" is set via ldflags,
// if not set, just the go debug vcs info.
func Version() string {
	if version != "" {
		return version
	}

	return versioninfo.Short()
}
