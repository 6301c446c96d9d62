// Package logging configures the arbor logger used across the CLI.
package logging

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/arbor/models"
)

// DefaultLevel is used when no level is configured.
const DefaultLevel = "info"

// New returns a console logger at the given level ("trace", "debug",
// "info", "warn", "error"). An empty level means DefaultLevel.
func New(level string) arbor.ILogger {
	if level == "" {
		level = DefaultLevel
	}

	return arbor.NewLogger().
		WithConsoleWriter(models.WriterConfiguration{
			Type:             models.LogWriterTypeConsole,
			TimeFormat:       "15:04:05",
			DisableTimestamp: false,
		}).
		WithLevelFromString(level)
}
