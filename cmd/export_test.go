// Copyright 2025 the mcp-hetzner authors
// SPDX-License-Identifier: MIT

//nolint:gochecknoglobals
package cmd

// Exports for testing.
var (
	ConfigureCLI         = configureCLI
	CreateAndBindFlags   = createAndBindFlags
	FlagConfigs          = flagConfigs
	GetConfigDescription = getConfigDescription
	InitLogger           = initLogger
	LoadEnvFile          = loadEnvFile
	NewRootCmd           = newRootCmd
	ReadConfigFile       = readConfigFile
	SetFlags             = setFlags
)

// Configuration keys exported for testing.
const (
	ConfigKeyConfig  = configKeyConfig
	ConfigKeyEnvFile = configKeyEnvFile
)
