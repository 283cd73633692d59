// Copyright 2025 the mcp-hetzner authors
// SPDX-License-Identifier: MIT

package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mcp-hetzner/mcp-hetzner/internal/utils"
)

const (
	// Configuration file settings.
	configFileName = "mcp-hetzner"
	configFileType = "toml"

	// Environment variable prefix.
	envPrefix = "HCLOUD_MCP"

	// tokenEnvVar is the conventional Hetzner Cloud token variable,
	// honored next to the prefixed one.
	tokenEnvVar = "HCLOUD_TOKEN"
)

// setFlags defines which flags this CLI command will accept.
func setFlags(cmd *cobra.Command) {
	// Define all flag configurations
	flagConfigs := flagConfigs()

	// Set default values for viper
	for _, config := range flagConfigs {
		viper.SetDefault(config.Key, config.DefaultValue)
	}

	// Initialize Viper
	viper.SetConfigName(configFileName)
	viper.SetConfigType(configFileType)

	// Add configuration search paths
	for _, path := range defaultConfigPaths {
		viper.AddConfigPath(path)
	}

	// Enable environment variables with prefix
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	// The token is also read from the conventional HCLOUD_TOKEN
	// variable, the same one the official tooling uses.
	err := viper.BindEnv(configKeyToken, envPrefix+"_"+configKeyToken, tokenEnvVar)
	if err != nil {
		panic(fmt.Sprintf("failed to bind token env var: %v", err))
	}

	// Define and bind the flags with viper
	createAndBindFlags(flagConfigs, cmd)

	// Set version and name
	serveOpts.Version = Version()
	serveOpts.Name = name
}

// configureCLI prepares the CLI, loads the dotenv file if any,
// initializes the logger and reads the config file. Finally, it
// unmarshals the configuration into the server options passed through.
func configureCLI(_ *cobra.Command, _ []string) error {
	// Set the logger temporarily, it can change once the config file is read
	err := initLogger()
	if err != nil {
		return fmt.Errorf("failed init logger before reading config file: %w", err)
	}

	// Load environment variables from a dotenv file, if requested
	err = loadEnvFile()
	if err != nil {
		return fmt.Errorf("failed to load the env file: %w", err)
	}

	// Try reading a file with the configuration
	err = readConfigFile()
	if err != nil {
		return fmt.Errorf("failed read config file: %w", err)
	}

	// Set the global logger, with the proper level
	err = initLogger()
	if err != nil {
		return fmt.Errorf("failed init logger: %w", err)
	}

	// Set serveOpts from Viper after flags are parsed
	err = viper.Unmarshal(&serveOpts)
	if err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return nil
}

// initLogger creates a new logger once the flags have been parsed,
// this way, the log level is being properly set.
func initLogger() error {
	lvl := viper.GetString(configKeyVerbosity)
	if lvl == "" {
		lvl = defaultVerbosity // fallback to default
	}

	var logLevel utils.LogLevel

	err := logLevel.Set(lvl)
	if err != nil {
		return err
	}

	// Over stdio the protocol owns stdout, so logs go to stderr there.
	var w io.Writer = os.Stdout
	if viper.GetString(configKeyTransport) == string(utils.TransportStdio) {
		w = os.Stderr
	}

	logger := utils.CreateLogger(logLevel, w)

	slog.SetDefault(logger)

	slog.Debug("logger initialization completed",
		"logger.level", lvl,
	)

	return nil
}

// loadEnvFile loads environment variables from the dotenv file named by
// the env-file flag, falling back to a .env in the working directory.
func loadEnvFile() error {
	envFile := viper.GetString(configKeyEnvFile)
	if envFile == "" {
		// Best effort, a missing .env is the normal case.
		err := godotenv.Load()
		if err == nil {
			slog.Debug("environment variables loaded",
				"env.file", ".env",
			)
		}

		return nil
	}

	err := godotenv.Load(envFile)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	slog.Debug("environment variables loaded",
		"env.file", envFile,
	)

	return nil
}

// readConfigFile tries to read the configuration from a file.
func readConfigFile() error {
	// Log configuration search paths for user visibility
	slog.Debug("configuration search paths initialized",
		"config.name", configFileName,
		"config.type", configFileType,
		"search.paths", defaultConfigPaths,
		"env.prefix", envPrefix,
	)

	// Handle custom config file path if specified
	configPath := viper.GetString(configKeyConfig)
	if configPath != "" {
		slog.Debug("using custom configuration file",
			"config.path", configPath,
		)
		viper.SetConfigFile(configPath)
	}

	// Ensure we use the desired config parser
	viper.SetConfigType(configFileType)

	// Read config file after logger is initialized
	err := viper.ReadInConfig()
	if err != nil {
		var configErr viper.ConfigFileNotFoundError
		if errors.As(err, &configErr) {
			slog.Debug("no configuration file found, using default values",
				"config.path", configPath,
				"used", viper.ConfigFileUsed(),
			)
		} else {
			slog.Warn("failed to read configuration file",
				"config.path", configPath,
				"config.used", viper.ConfigFileUsed(),
				"error", err,
			)
		}
	} else {
		slog.Debug("configuration file read successfully",
			"config.used", viper.ConfigFileUsed(),
		)
	}

	return nil
}

// createAndBindFlags defines and binds the flags with viper.
func createAndBindFlags(flagConfigs []utils.FlagConfig, cmd *cobra.Command) {
	// Define flags
	for _, config := range flagConfigs {
		flagSet := cmd.Flags()
		if config.IsPersistent {
			flagSet = cmd.PersistentFlags()
		}

		switch config.FlagType {
		case utils.FlagTypeInt:
			if intVal, ok := config.DefaultValue.(int); ok {
				flagSet.IntP(config.FlagName, config.Short, intVal, config.Description)
			}
		case utils.FlagTypeString:
			if stringVal, ok := config.DefaultValue.(string); ok {
				flagSet.StringP(config.FlagName, config.Short, stringVal, config.Description)
			}
		case utils.FlagTypeBool:
			if boolVal, ok := config.DefaultValue.(bool); ok {
				flagSet.BoolP(config.FlagName, config.Short, boolVal, config.Description)
			}
		default:
			panic(fmt.Sprintf("unknown flag type: %s", config.FlagType))
		}
	}

	// Bind flags to viper keys
	for _, config := range flagConfigs {
		flagSet := cmd.Flags()
		if config.IsPersistent {
			flagSet = cmd.PersistentFlags()
		}

		err := viper.BindPFlag(config.Key, flagSet.Lookup(config.FlagName))
		if err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", config.Key, err))
		}
	}
}

// getConfigDescription generates the dynamic description for the config flag.
func getConfigDescription() string {
	paths := make([]string, len(defaultConfigPaths))

	for i, path := range defaultConfigPaths {
		// Trim trailing slashes to avoid double slashes
		cleanPath := strings.TrimSuffix(path, "/")
		paths[i] = fmt.Sprintf("%s/%s.%s", cleanPath, configFileName, configFileType)
	}

	return fmt.Sprintf("Configuration file path (default search: %s)", strings.Join(paths, " or "))
}
