package config

import (
	"log/slog"

	"github.com/mvp-joe/cortex-refactor/internal/engine"
	"github.com/mvp-joe/cortex-refactor/internal/extract"
)

// EngineOptions converts the configuration into engine options.
func (c *Config) EngineOptions(logger *slog.Logger) []engine.Option {
	return []engine.Option{
		engine.WithLogger(logger),
		engine.WithRelocationWindow(c.Engine.RelocationWindow),
		engine.WithDefaultFunctionName(c.Extraction.DefaultName),
		engine.WithExtractionOptions(extract.Options{
			Indent:    c.Extraction.Indent,
			EmitTypes: c.Extraction.EmitTypes,
		}),
	}
}
