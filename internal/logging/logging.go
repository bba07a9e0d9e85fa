// Package logging builds the zap logger shared by the CLI and the cache.
package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// New builds a production logger at the given level ("debug", "info", ...).
func New(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	return cfg.Build()
}
