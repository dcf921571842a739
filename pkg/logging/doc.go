// Package logging configures the process-wide structured logger. Components
// derive their own loggers from the default via
// slog.Default().With("component", ...).
package logging
