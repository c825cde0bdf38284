// Package config loads cortex-refactor settings from .cortex/refactor.yml
// with CORTEX_REFACTOR_* environment overrides.
package config

// Config represents the complete cortex-refactor configuration.
type Config struct {
	Engine     EngineConfig     `yaml:"engine" mapstructure:"engine"`
	Extraction ExtractionConfig `yaml:"extraction" mapstructure:"extraction"`
	Dialects   DialectsConfig   `yaml:"dialects" mapstructure:"dialects"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// EngineConfig tunes query behaviour.
type EngineConfig struct {
	RelocationWindow int    `yaml:"relocation_window" mapstructure:"relocation_window"` // lines searched around the expected cursor line
	DefaultDialect   string `yaml:"default_dialect" mapstructure:"default_dialect"`     // used when no dialect glob matches
}

// ExtractionConfig controls generated functions.
type ExtractionConfig struct {
	Indent      string `yaml:"indent" mapstructure:"indent"`
	DefaultName string `yaml:"default_name" mapstructure:"default_name"`
	EmitTypes   bool   `yaml:"emit_types" mapstructure:"emit_types"`
}

// DialectsConfig maps file globs to parser dialects.
type DialectsConfig struct {
	TypeScript []string `yaml:"typescript" mapstructure:"typescript"`
	TSX        []string `yaml:"tsx" mapstructure:"tsx"`
	JavaScript []string `yaml:"javascript" mapstructure:"javascript"`
}

// LogConfig sets the log level: debug, info, warn or error.
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			RelocationWindow: 10,
			DefaultDialect:   "typescript",
		},
		Extraction: ExtractionConfig{
			Indent:      "    ",
			DefaultName: "extracted",
			EmitTypes:   true,
		},
		Dialects: DialectsConfig{
			TypeScript: []string{"**/*.ts", "**/*.mts", "**/*.cts"},
			TSX:        []string{"**/*.tsx"},
			JavaScript: []string{"**/*.js", "**/*.jsx", "**/*.mjs", "**/*.cjs"},
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}
