// Package testutils provides testing utilities for the monitoring subsystem:
// loggers, chain fixtures and fake collaborators. This package is intended
// for testing purposes only and should not be used in production code.
package testutils

import (
	"os"
	"testing"

	"github.com/rs/zerolog"
)

// Logger returns a zerolog.Logger configured for testing.
func Logger(t *testing.T) zerolog.Logger {
	t.Helper()
	return zerolog.New(os.Stdout).Level(zerolog.DebugLevel)
}
