// Config loading for the pagemark CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/mesh-intelligence/pagemark/internal/oracle"
	"github.com/mesh-intelligence/pagemark/internal/paths"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	// Config keys.
	cfgKeyStoreEndpoint = "store_endpoint"
	cfgKeyStoreAPIKey   = "store_api_key"
	cfgKeyOracleBase    = "oracle_endpoint"
	cfgKeyOracleAPIKey  = "oracle_api_key"
	cfgKeyOracleModel   = "oracle_model"
	cfgKeyVerify        = "verify_flags"
	cfgKeyDataDir       = "data_dir"

	defaultStoreEndpoint = "http://localhost:3000"
)

// defaultConfigYAML is written to config.yaml on first run.
const defaultConfigYAML = `# Pagemark CLI configuration

# PostgREST-compatible store. A loopback endpoint runs header-less;
# anything else is treated as hosted Supabase and needs store_api_key.
store_endpoint: http://localhost:3000
# store_api_key:

# Verification / scan oracle (OpenAI-compatible API). Leave the key
# unset to run with verification disabled.
# oracle_api_key:
# oracle_endpoint: https://api.openai.com/v1
# oracle_model: gpt-4o-mini
verify_flags: true

# Data directory for local state (optional; overridable by --data-dir)
# data_dir:
`

// config holds the loaded viper instance, set by PersistentPreRunE.
var config *viper.Viper

// loadConfig reads config.yaml from the resolved config directory,
// creating the directory and a default file on first run. A missing
// config.yaml is not an error.
func loadConfig() error {
	configDir, err := paths.ResolveConfigDir(flagConfigDir)
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyStoreEndpoint, defaultStoreEndpoint)
	v.SetDefault(cfgKeyOracleBase, oracle.DefaultBaseURL)
	v.SetDefault(cfgKeyOracleModel, oracle.DefaultModel)
	v.SetDefault(cfgKeyVerify, true)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("read config: %w", err)
		}
	}

	config = v
	return nil
}

// ensureDefaultConfigFile creates a default config.yaml if none exists.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}

// storeEndpoint returns the effective store endpoint: flag > config.
func storeEndpoint() string {
	if flagEndpoint != "" {
		return flagEndpoint
	}
	return config.GetString(cfgKeyStoreEndpoint)
}

// storeAPIKey returns the effective store API key: flag > config.
func storeAPIKey() string {
	if flagAPIKey != "" {
		return flagAPIKey
	}
	return config.GetString(cfgKeyStoreAPIKey)
}

// oracleConfig builds the oracle client settings from config.
func oracleConfig() oracle.Config {
	return oracle.Config{
		APIKey:  config.GetString(cfgKeyOracleAPIKey),
		BaseURL: config.GetString(cfgKeyOracleBase),
		Model:   config.GetString(cfgKeyOracleModel),
		Enabled: config.GetBool(cfgKeyVerify),
	}
}
