package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir string
	homeDir string
}

// NewLoader creates a loader that looks for .cortex/refactor.yml under
// rootDir and then under the user's home directory.
func NewLoader(rootDir string) Loader {
	home, _ := os.UserHomeDir()
	return &loader{rootDir: rootDir, homeDir: home}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (CORTEX_REFACTOR_*)
// 2. Project config file (.cortex/refactor.yml), else ~/.cortex/refactor.yml
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("refactor")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(l.rootDir, ".cortex"))
	if l.homeDir != "" {
		v.AddConfigPath(filepath.Join(l.homeDir, ".cortex"))
	}

	// CORTEX_REFACTOR_ENGINE_RELOCATION_WINDOW etc.
	v.SetEnvPrefix("CORTEX_REFACTOR")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for _, key := range []string{
		"engine.relocation_window",
		"engine.default_dialect",
		"extraction.indent",
		"extraction.default_name",
		"extraction.emit_types",
		"log.level",
	} {
		_ = v.BindEnv(key)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("engine.relocation_window", defaults.Engine.RelocationWindow)
	v.SetDefault("engine.default_dialect", defaults.Engine.DefaultDialect)

	v.SetDefault("extraction.indent", defaults.Extraction.Indent)
	v.SetDefault("extraction.default_name", defaults.Extraction.DefaultName)
	v.SetDefault("extraction.emit_types", defaults.Extraction.EmitTypes)

	v.SetDefault("dialects.typescript", defaults.Dialects.TypeScript)
	v.SetDefault("dialects.tsx", defaults.Dialects.TSX)
	v.SetDefault("dialects.javascript", defaults.Dialects.JavaScript)

	v.SetDefault("log.level", defaults.Log.Level)
}

// LoadConfig loads configuration rooted at the working directory.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}
