package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gobwas/glob"

	"github.com/mvp-joe/cortex-refactor/internal/extract"
	"github.com/mvp-joe/cortex-refactor/internal/syntax"
)

var (
	// ErrInvalidRelocationWindow indicates a non-positive relocation window
	ErrInvalidRelocationWindow = errors.New("invalid relocation window")

	// ErrInvalidDialect indicates an unknown default dialect
	ErrInvalidDialect = errors.New("invalid dialect")

	// ErrInvalidIndent indicates an indent that is not spaces or tabs
	ErrInvalidIndent = errors.New("invalid indent")

	// ErrInvalidFunctionName indicates an unusable default function name
	ErrInvalidFunctionName = errors.New("invalid default function name")

	// ErrInvalidPattern indicates a dialect glob that does not compile
	ErrInvalidPattern = errors.New("invalid dialect pattern")

	// ErrInvalidLogLevel indicates an unknown log level
	ErrInvalidLogLevel = errors.New("invalid log level")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if err := validateEngine(&cfg.Engine); err != nil {
		errs = append(errs, err)
	}
	if err := validateExtraction(&cfg.Extraction); err != nil {
		errs = append(errs, err)
	}
	if err := validateDialects(&cfg.Dialects); err != nil {
		errs = append(errs, err)
	}
	if _, err := ParseLevel(cfg.Log.Level); err != nil {
		errs = append(errs, err)
	}

	return joinErrors(errs)
}

func validateEngine(cfg *EngineConfig) error {
	var errs []error

	if cfg.RelocationWindow <= 0 {
		errs = append(errs, fmt.Errorf("%w: relocation_window must be positive, got %d", ErrInvalidRelocationWindow, cfg.RelocationWindow))
	}
	if _, err := syntax.ParseDialect(cfg.DefaultDialect); err != nil {
		errs = append(errs, fmt.Errorf("%w: %v", ErrInvalidDialect, err))
	}

	return joinErrors(errs)
}

func validateExtraction(cfg *ExtractionConfig) error {
	var errs []error

	if cfg.Indent == "" || strings.Trim(cfg.Indent, " \t") != "" {
		errs = append(errs, fmt.Errorf("%w: must be spaces or tabs, got %q", ErrInvalidIndent, cfg.Indent))
	}
	if err := extract.ValidateName(cfg.DefaultName); err != nil {
		errs = append(errs, fmt.Errorf("%w: %v", ErrInvalidFunctionName, err))
	}

	return joinErrors(errs)
}

func validateDialects(cfg *DialectsConfig) error {
	var errs []error

	for _, patterns := range [][]string{cfg.TypeScript, cfg.TSX, cfg.JavaScript} {
		for _, p := range patterns {
			if _, err := glob.Compile(p, '/'); err != nil {
				errs = append(errs, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, p, err))
			}
		}
	}

	return joinErrors(errs)
}

// ParseLevel maps a configured level name to a slog level. An empty name
// is warn.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning", "":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("%w: %q (valid: debug, info, warn, error)", ErrInvalidLogLevel, name)
}

// validationError lists several problems while still matching each
// wrapped sentinel with errors.Is.
type validationError struct {
	errs []error
}

func (e *validationError) Error() string {
	msgs := make([]string, 0, len(e.errs))
	for _, err := range e.errs {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

func (e *validationError) Unwrap() []error {
	return e.errs
}

// joinErrors combines multiple errors into a single error with clear formatting.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	return &validationError{errs: errs}
}
