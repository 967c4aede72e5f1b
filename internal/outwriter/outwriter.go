// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/huangsam/csmstyle/internal/contract"
	"github.com/huangsam/csmstyle/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteCheck prints check results using the configured output format.
func (ow *OutWriter) WriteCheck(results []DocumentResult, cfg *contract.Config, duration time.Duration) error {
	return WriteCheckResults(results, cfg, duration)
}

// WriteIgnored prints suppressed violations using the configured output format.
func (ow *OutWriter) WriteIgnored(entries []schema.ViolationEntry, cfg *contract.Config) error {
	return WriteIgnored(entries, cfg)
}
